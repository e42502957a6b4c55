package disasm

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/jdis/classfile"
)

// logger is looked up on use so that a backend registered by the caller's
// imports is picked up.
func logger() commonlog.Logger {
	return commonlog.GetLogger("jdis.disasm")
}

// Disassembler turns class files on disk into text.
type Disassembler struct {
	Options Options
	log     commonlog.Logger
}

func New(opts Options) *Disassembler {
	return &Disassembler{Options: opts, log: logger()}
}

// DisassembleFile parses the class file at path and renders it. When
// constants could not be resolved the text is still returned together with
// the error.
func (d *Disassembler) DisassembleFile(path string) (string, error) {
	d.log.Infof("disassembling %s", path)
	cf, err := classfile.ParseFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to parse %s", path)
	}
	d.log.Debugf("parsed %s: %d constants, %d fields, %d methods",
		cf.ClassName(), len(cf.ConstantPool), len(cf.Fields), len(cf.Methods))

	var out strings.Builder
	enc := NewEncoder(&out, d.Options)
	if d.Options.Has(PrintSourceLines) {
		enc.SetSource(d.loadSource(path, cf))
	}
	err = enc.Encode(cf)
	return out.String(), err
}

// Run disassembles every path in order and writes each text to w. A file
// that fails does not stop the run; the failures are reported together as
// a *BatchError.
func (d *Disassembler) Run(paths []string, w io.Writer) error {
	var failed []string
	for _, path := range paths {
		out, err := d.DisassembleFile(path)
		if out != "" {
			if _, werr := io.WriteString(w, out); werr != nil {
				return errors.Wrap(werr, "failed to write output")
			}
		}
		if err != nil {
			d.log.Errorf("%s", err)
			failed = append(failed, path)
		}
	}
	if len(failed) > 0 {
		return &BatchError{Failed: failed}
	}
	return nil
}

// maxSourceLine is the longest source line loadSource accepts.
const maxSourceLine = 4 << 20

// loadSource reads the file named by the SourceFile attribute from the
// directory of the class file. Missing sources yield no lines.
func (d *Disassembler) loadSource(path string, cf *classfile.ClassFile) []string {
	name, ok := cf.SourceFile()
	if !ok {
		return nil
	}
	f, err := os.Open(filepath.Join(filepath.Dir(path), filepath.Base(name)))
	if err != nil {
		d.log.Debugf("no source for %s: %s", path, err)
		return nil
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxSourceLine)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		d.log.Warningf("source for %s read up to line %d: %s", path, len(lines), err)
	}
	return lines
}
