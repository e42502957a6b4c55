package disasm

import (
	"strings"

	"github.com/dhamidi/jdis/classfile"
)

func (p *printer) printClass() {
	if p.cf.IsModule() {
		p.printModule()
		return
	}

	if p.pkg != "" {
		p.printf("package %s;\n\n", quoteName(strings.TrimSuffix(p.pkg, "/")))
	}
	p.printAnnotations("", p.cf.Attributes)

	name := p.className(p.cf.ThisClass)
	p.line(p.classHeader() + name)
	if p.cf.SuperClass != 0 {
		p.line("\textends " + p.className(p.cf.SuperClass))
	}
	if len(p.cf.Interfaces) > 0 {
		p.line("\timplements " + p.classNames(p.cf.Interfaces))
	}
	p.printf("\tversion %d:%d\n", p.cf.MajorVersion, p.cf.MinorVersion)
	p.line("{")

	if p.opts.verbose() {
		p.printConstantPool()
	}
	for i := range p.cf.Fields {
		p.printField(&p.cf.Fields[i])
	}
	if len(p.cf.Fields) > 0 {
		p.line("")
	}
	for i := range p.cf.Methods {
		p.printMethod(&p.cf.Methods[i])
		p.line("")
	}
	if rec := p.cf.Record(); rec != nil {
		p.printRecord(rec)
	}
	p.printClassAttributes()
	p.line("} // end Class " + name)
}

// classHeader renders the keywords and flags in front of the class name.
// The interface flag turns into the keyword itself, and abstract is
// implied for interfaces unless constants are printed verbatim.
func (p *printer) classHeader() string {
	flags := p.cf.AccessFlags
	keyword := "class "
	if flags.IsInterface() {
		keyword = "interface "
		if !p.opts.verbose() && !p.opts.Has(PrintCPIndices) {
			flags &^= classfile.AccAbstract
		}
	}
	return attributeKeywords(p.cf.Attributes, flags) + flagString(flags, classFlagNames) + keyword
}
