package disasm

import (
	"fmt"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/jdis/classfile"
)

// printer renders one class file. It is the resolution context every
// print function works against and is discarded after the render.
type printer struct {
	sb     strings.Builder
	opts   Options
	cf     *classfile.ClassFile
	cp     classfile.ConstantPool
	pkg    string
	source []string
	log    commonlog.Logger

	issues   []*ConstantIssue
	flagged  map[uint16]bool
	visiting map[uint16]bool
	rendered map[uint16]renderedConstant
}

func newPrinter(cf *classfile.ClassFile, opts Options, source []string) *printer {
	return &printer{
		opts:     opts,
		cf:       cf,
		cp:       cf.ConstantPool,
		pkg:      cf.PackagePrefix(),
		source:   source,
		log:      logger(),
		flagged:  map[uint16]bool{},
		visiting: map[uint16]bool{},
		rendered: map[uint16]renderedConstant{},
	}
}

func (p *printer) printf(format string, args ...any) {
	fmt.Fprintf(&p.sb, format, args...)
}

func (p *printer) line(s string) {
	p.sb.WriteString(s)
	p.sb.WriteByte('\n')
}

// flag records an issue for index once; later reports are dropped.
func (p *printer) flag(index uint16, format string, args ...any) {
	if p.flagged[index] {
		return
	}
	p.flagged[index] = true
	p.issues = append(p.issues, &ConstantIssue{Index: index, Reason: fmt.Sprintf(format, args...)})
}

// sourceLine returns line n (1-based) of the source file, if loaded.
func (p *printer) sourceLine(n int) (string, bool) {
	if n < 1 || n > len(p.source) {
		return "", false
	}
	return p.source[n-1], true
}
