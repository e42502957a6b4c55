package disasm

import (
	"slices"
	"strings"

	"github.com/dhamidi/jdis/classfile"
)

type classAttrPrinter struct {
	name  string
	print func(p *printer, attr classfile.Attribute)
}

// classAttrOrder is the order class-level attributes print in, whatever
// their order in the file.
var classAttrOrder = []classAttrPrinter{
	{"SourceFile", printSourceFile},
	{"Signature", printClassSignature},
	{"SourceDebugExtension", printSourceDebugExtension},
	{"EnclosingMethod", printEnclosingMethod},
	{"NestHost", printNestHost},
	{"NestMembers", printClassList},
	{"PermittedSubclasses", printClassList},
	{"Preload", printClassList},
	{"InnerClasses", printInnerClasses},
	{"BootstrapMethods", printBootstrapMethods},
}

// classAttrElsewhere are class-level attributes printed outside
// printClassAttributes.
var classAttrElsewhere = []string{
	"RuntimeVisibleAnnotations",
	"RuntimeInvisibleAnnotations",
	"RuntimeVisibleTypeAnnotations",
	"RuntimeInvisibleTypeAnnotations",
	"Record",
	"Deprecated",
	"Synthetic",
}

func classAttrHandled(name string) bool {
	if slices.Contains(classAttrElsewhere, name) {
		return true
	}
	return slices.ContainsFunc(classAttrOrder, func(ap classAttrPrinter) bool { return ap.name == name })
}

// printClassAttributes writes the class-level attributes in classAttrOrder.
// Every other attribute that is not printed elsewhere follows as raw bytes
// in file order, including known attributes out of place.
func (p *printer) printClassAttributes() {
	for _, ap := range classAttrOrder {
		for i := range p.cf.Attributes {
			if info := &p.cf.Attributes[i]; info.Name == ap.name {
				ap.print(p, info.Parsed)
			}
		}
	}
	for i := range p.cf.Attributes {
		info := &p.cf.Attributes[i]
		if !classAttrHandled(info.Name) {
			p.line("\t" + rawAttr(&classfile.UnknownAttribute{Name: info.Name, Info: info.Info}) + ";")
		}
	}
}

func (p *printer) quotedUtf8(index uint16) string {
	s, ok := p.cp.Utf8(index)
	if !ok {
		p.flag(index, "expected a Utf8 constant")
		return unresolved(index)
	}
	return quote(s)
}

func printSourceFile(p *printer, attr classfile.Attribute) {
	sf := attr.(*classfile.SourceFileAttribute)
	p.line("\tSourceFile " + p.quotedUtf8(sf.SourceFileIndex) + ";")
}

func printClassSignature(p *printer, attr classfile.Attribute) {
	sig := attr.(*classfile.SignatureAttribute)
	p.line("\tSignature " + p.quotedUtf8(sig.SignatureIndex) + ";")
}

func printEnclosingMethod(p *printer, attr classfile.Attribute) {
	em := attr.(*classfile.EnclosingMethodAttribute)
	s := "\tEnclosingMethod " + p.className(em.ClassIndex)
	if em.MethodIndex != 0 {
		nat, ok := classfile.Lookup[*classfile.ConstantNameAndTypeInfo](p.cp, em.MethodIndex)
		if ok {
			s += "." + p.nameAndType(nat.NameIndex, nat.DescriptorIndex)
		} else {
			p.flag(em.MethodIndex, "expected a NameAndType constant")
			s += "." + unresolved(em.MethodIndex)
		}
	}
	p.line(s + ";")
}

func printNestHost(p *printer, attr classfile.Attribute) {
	nh := attr.(*classfile.NestHostAttribute)
	p.line("\tNestHost " + p.className(nh.HostClassIndex) + ";")
}

func printClassList(p *printer, attr classfile.Attribute) {
	cl := attr.(*classfile.ClassListAttribute)
	p.line("\t" + cl.Name + " " + p.classNames(cl.Classes) + ";")
}

func printInnerClasses(p *printer, attr classfile.Attribute) {
	for _, ic := range attr.(*classfile.InnerClassesAttribute).Classes {
		var sb strings.Builder
		sb.WriteString("\t")
		sb.WriteString(flagString(ic.InnerClassAccessFlags, innerClassFlagNames))
		sb.WriteString("InnerClass ")
		if ic.InnerNameIndex != 0 {
			sb.WriteString(p.utf8(ic.InnerNameIndex))
			sb.WriteByte('=')
		}
		sb.WriteString(p.className(ic.InnerClassInfoIndex))
		if ic.OuterClassInfoIndex != 0 {
			sb.WriteString(" of ")
			sb.WriteString(p.className(ic.OuterClassInfoIndex))
		}
		sb.WriteByte(';')
		p.line(sb.String())
	}
}

func printBootstrapMethods(p *printer, attr classfile.Attribute) {
	if !p.opts.verbose() {
		return
	}
	for _, bsm := range attr.(*classfile.BootstrapMethodsAttribute).BootstrapMethods {
		var sb strings.Builder
		sb.WriteString("\tBootstrapMethod ")
		sb.WriteString(unresolved(bsm.BootstrapMethodRef))
		for _, arg := range bsm.BootstrapArguments {
			sb.WriteByte(' ')
			sb.WriteString(unresolved(arg))
		}
		sb.WriteByte(';')
		p.line(sb.String())
	}
}

func printSourceDebugExtension(p *printer, attr classfile.Attribute) {
	sde := attr.(*classfile.SourceDebugExtensionAttribute)
	p.line("\tSourceDebugExtension " + quote(sde.DebugExtension) + ";")
}
