package disasm

import (
	"encoding"
	"io"

	"github.com/pkg/errors"

	"github.com/dhamidi/jdis/classfile"
)

var _ encoding.TextMarshaler = (*Encoder)(nil)

// Encoder writes the text form of class files.
type Encoder struct {
	w      io.Writer
	opts   Options
	class  *classfile.ClassFile
	source []string
	issues []*ConstantIssue
}

func NewEncoder(w io.Writer, opts Options) *Encoder {
	return &Encoder{w: w, opts: opts}
}

// SetSource supplies the lines of the source file for source-line mode.
func (e *Encoder) SetSource(lines []string) {
	e.source = lines
}

// Issues returns the constant references the last render could not
// resolve, in the order they were met.
func (e *Encoder) Issues() []*ConstantIssue {
	return e.issues
}

// Encode writes the whole text of cf, then reports the first constant
// issue, if any.
func (e *Encoder) Encode(cf *classfile.ClassFile) error {
	e.class = cf
	text, err := e.MarshalText()
	if _, werr := e.w.Write(text); werr != nil {
		return errors.Wrap(werr, "failed to write output")
	}
	return err
}

func (e *Encoder) MarshalText() ([]byte, error) {
	if e.class == nil {
		return nil, errors.New("no class to encode")
	}
	p := newPrinter(e.class, e.opts, e.source)
	p.printClass()
	e.issues = p.issues

	text := []byte(p.sb.String())
	if len(p.issues) > 0 {
		if e.opts.Has(Debug) {
			for _, issue := range p.issues {
				p.log.Debugf("%s: %s", e.class.ClassName(), issue)
			}
		}
		return text, errors.Wrapf(p.issues[0], "%s", e.class.ClassName())
	}
	return text, nil
}
