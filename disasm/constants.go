package disasm

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dhamidi/jdis/classfile"
)

var constantKinds = map[classfile.ConstantTag]string{
	classfile.ConstantUtf8:               "Asciz",
	classfile.ConstantInteger:            "int",
	classfile.ConstantFloat:              "float",
	classfile.ConstantLong:               "long",
	classfile.ConstantDouble:             "double",
	classfile.ConstantClass:              "class",
	classfile.ConstantString:             "String",
	classfile.ConstantFieldref:           "Field",
	classfile.ConstantMethodref:          "Method",
	classfile.ConstantInterfaceMethodref: "InterfaceMethod",
	classfile.ConstantNameAndType:        "NameAndType",
	classfile.ConstantMethodHandle:       "MethodHandle",
	classfile.ConstantMethodType:         "MethodType",
	classfile.ConstantDynamic:            "Dynamic",
	classfile.ConstantInvokeDynamic:      "InvokeDynamic",
	classfile.ConstantModule:             "Module",
	classfile.ConstantPackage:            "Package",
}

// constant renders the entry at index with its kind, e.g.
// `Method java/io/PrintStream.println:"(I)V"`. Unresolvable and circular
// references render as placeholders and are recorded as issues.
func (p *printer) constant(index uint16) string {
	entry := p.cp.Get(index)
	if entry == nil {
		p.flag(index, "unresolved constant reference")
		return unresolved(index)
	}
	body, ok := p.constantBody(index)
	if !ok {
		return body
	}
	return constantKinds[entry.Tag()] + " " + body
}

// maxConstantText caps the rendered text of one dynamic constant. Nested
// bootstrap arguments can share entries, so the expansion of a small pool
// would otherwise grow exponentially.
const maxConstantText = 64 << 10

type renderedConstant struct {
	text string
	ok   bool
}

// constantBody renders the entry at index without its kind. ok is false
// when a placeholder was returned instead. Each entry is rendered once per
// printer.
func (p *printer) constantBody(index uint16) (string, bool) {
	entry := p.cp.Get(index)
	if entry == nil {
		p.flag(index, "unresolved constant reference")
		return unresolved(index), false
	}
	if r, ok := p.rendered[index]; ok {
		return r.text, r.ok
	}
	if p.visiting[index] {
		p.flag(index, "circular constant reference")
		return fmt.Sprintf("<circular #%d>", index), false
	}
	p.visiting[index] = true
	text, ok := p.renderBody(index, entry)
	delete(p.visiting, index)
	p.rendered[index] = renderedConstant{text: text, ok: ok}
	return text, ok
}

func (p *printer) renderBody(index uint16, entry classfile.ConstantPoolEntry) (string, bool) {
	switch c := entry.(type) {
	case *classfile.ConstantUtf8Info:
		return quote(c.Value), true
	case *classfile.ConstantIntegerInfo:
		return p.intLiteral(int64(c.Value)), true
	case *classfile.ConstantFloatInfo:
		if bits := math.Float32bits(c.Value); math.IsNaN(float64(c.Value)) && bits != canonicalFloatNaN {
			return fmt.Sprintf("NaN(0x%08x)f", bits), true
		}
		return floatLiteral(float64(c.Value), 32) + "f", true
	case *classfile.ConstantLongInfo:
		return p.intLiteral(c.Value) + "l", true
	case *classfile.ConstantDoubleInfo:
		if bits := math.Float64bits(c.Value); math.IsNaN(c.Value) && bits != canonicalDoubleNaN {
			return fmt.Sprintf("NaN(0x%016x)d", bits), true
		}
		return floatLiteral(c.Value, 64) + "d", true
	case *classfile.ConstantClassInfo:
		name, ok := p.nameBody(c.NameIndex)
		if !ok {
			return name, true
		}
		return quoteName(p.shortName(name)), true
	case *classfile.ConstantStringInfo:
		return p.stringBody(c.StringIndex), true
	case *classfile.ConstantFieldrefInfo:
		return p.memberBody(c.ConstantMemberrefInfo), true
	case *classfile.ConstantMethodrefInfo:
		return p.memberBody(c.ConstantMemberrefInfo), true
	case *classfile.ConstantInterfaceMethodrefInfo:
		return p.memberBody(c.ConstantMemberrefInfo), true
	case *classfile.ConstantNameAndTypeInfo:
		return p.nameAndType(c.NameIndex, c.DescriptorIndex), true
	case *classfile.ConstantMethodHandleInfo:
		return c.ReferenceKind.String() + ":" + p.constant(c.ReferenceIndex), true
	case *classfile.ConstantMethodTypeInfo:
		return p.utf8(c.DescriptorIndex), true
	case *classfile.ConstantDynamicInfo:
		return p.dynamicBody(index, c)
	case *classfile.ConstantModuleInfo:
		s, _ := p.nameBody(c.NameIndex)
		return s, true
	case *classfile.ConstantPackageInfo:
		s, _ := p.nameBody(c.NameIndex)
		return s, true
	}
	return unresolved(index), false
}

// nameBody resolves a Utf8 index used as a name by another entry.
func (p *printer) nameBody(index uint16) (string, bool) {
	s, ok := p.cp.Utf8(index)
	if !ok {
		p.flag(index, "expected a Utf8 constant")
		return unresolved(index), false
	}
	return s, true
}

func (p *printer) stringBody(index uint16) string {
	s, ok := p.cp.Utf8(index)
	if !ok {
		p.flag(index, "expected a Utf8 constant")
		return unresolved(index)
	}
	return quote(s)
}

func (p *printer) nameAndType(nameIndex, descIndex uint16) string {
	return p.utf8(nameIndex) + ":" + p.utf8(descIndex)
}

// isThisClass reports whether index names the class being printed.
func (p *printer) isThisClass(index uint16) bool {
	if index == p.cf.ThisClass {
		return true
	}
	name, ok := p.cp.ClassName(index)
	if !ok {
		return false
	}
	this, ok := p.cp.ClassName(p.cf.ThisClass)
	return ok && name == this
}

// memberBody renders Class.name:descriptor, leaving out the class when it
// is the class being printed.
func (p *printer) memberBody(ref classfile.ConstantMemberrefInfo) string {
	var sb strings.Builder
	if !p.isThisClass(ref.ClassIndex) {
		cls, ok := p.constantBody(ref.ClassIndex)
		if ok && p.cp.Get(ref.ClassIndex).Tag() != classfile.ConstantClass {
			p.flag(ref.ClassIndex, "expected a class reference")
			cls = unresolved(ref.ClassIndex)
		}
		sb.WriteString(cls)
		sb.WriteByte('.')
	}
	nat, ok := classfile.Lookup[*classfile.ConstantNameAndTypeInfo](p.cp, ref.NameAndTypeIndex)
	if !ok {
		p.flag(ref.NameAndTypeIndex, "expected a NameAndType constant")
		sb.WriteString(unresolved(ref.NameAndTypeIndex))
		return sb.String()
	}
	sb.WriteString(p.nameAndType(nat.NameIndex, nat.DescriptorIndex))
	return sb.String()
}

// dynamicBody renders a dynamic call site or constant together with its
// bootstrap method and static arguments:
//
//	REF_invokeStatic:Method Boot.bsm:"(...)":name:"desc" { int 1, String "x" }
//
// A rendering longer than maxConstantText is replaced by #index.
func (p *printer) dynamicBody(index uint16, c *classfile.ConstantDynamicInfo) (string, bool) {
	var sb strings.Builder
	bsms := p.cf.BootstrapMethods()
	var args []uint16
	if int(c.BootstrapMethodAttrIndex) < len(bsms) {
		bsm := bsms[c.BootstrapMethodAttrIndex]
		body, _ := p.methodHandleBody(bsm.BootstrapMethodRef)
		sb.WriteString(body)
		args = bsm.BootstrapArguments
	} else {
		p.flag(index, "bootstrap method %d does not exist", c.BootstrapMethodAttrIndex)
		fmt.Fprintf(&sb, "#bsm%d", c.BootstrapMethodAttrIndex)
	}
	sb.WriteByte(':')

	nat, ok := classfile.Lookup[*classfile.ConstantNameAndTypeInfo](p.cp, c.NameAndTypeIndex)
	if ok {
		sb.WriteString(p.nameAndType(nat.NameIndex, nat.DescriptorIndex))
	} else {
		p.flag(c.NameAndTypeIndex, "expected a NameAndType constant")
		sb.WriteString(unresolved(c.NameAndTypeIndex))
	}

	if len(args) > 0 {
		sb.WriteString(" { ")
		for i, arg := range args {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(p.constant(arg))
			if sb.Len() > maxConstantText {
				p.flag(index, "rendered constant exceeds %d bytes", maxConstantText)
				return unresolved(index), false
			}
		}
		sb.WriteString(" }")
	}
	return sb.String(), true
}

func (p *printer) methodHandleBody(index uint16) (string, bool) {
	if _, ok := classfile.Lookup[*classfile.ConstantMethodHandleInfo](p.cp, index); !ok {
		p.flag(index, "expected a MethodHandle constant")
		return unresolved(index), false
	}
	return p.constantBody(index)
}

// literal renders the value of a numeric or Utf8 constant without its kind,
// as used by annotation element values.
func (p *printer) literal(index uint16) string {
	body, _ := p.constantBody(index)
	return body
}

func (p *printer) intLiteral(v int64) string {
	if p.opts.Has(PrintHex) {
		if v < 0 {
			return "-0x" + strconv.FormatUint(uint64(-v), 16)
		}
		return "0x" + strconv.FormatInt(v, 16)
	}
	return strconv.FormatInt(v, 10)
}

// NaN payloads other than these print with their bits.
const (
	canonicalFloatNaN  = 0x7fc00000
	canonicalDoubleNaN = 0x7ff8000000000000
)

func floatLiteral(v float64, bits int) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}
	s := strconv.FormatFloat(v, 'g', -1, bits)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// printConstantPool lists every entry in index order. The unused slot
// after a long or double is skipped.
func (p *printer) printConstantPool() {
	for i := 1; i < len(p.cp); i++ {
		index := uint16(i)
		entry := p.cp[i]
		if entry == nil {
			continue
		}
		kind := constantKinds[entry.Tag()]
		switch c := entry.(type) {
		case *classfile.ConstantUtf8Info:
			p.printf("\tconst #%d = %s %s;\n", index, kind, quote(c.Value))
		case *classfile.ConstantIntegerInfo, *classfile.ConstantFloatInfo,
			*classfile.ConstantLongInfo, *classfile.ConstantDoubleInfo:
			p.printf("\tconst #%d = %s;\n", index, p.constant(index))
		default:
			p.printf("\tconst #%d = %s %s;\t// %s\n", index, kind, operands(c), p.literal(index))
		}
	}
	p.line("")
}

// operands renders the raw index operands of a reference entry.
func operands(entry classfile.ConstantPoolEntry) string {
	switch c := entry.(type) {
	case *classfile.ConstantClassInfo:
		return unresolved(c.NameIndex)
	case *classfile.ConstantStringInfo:
		return unresolved(c.StringIndex)
	case *classfile.ConstantFieldrefInfo:
		return memberOperands(c.ConstantMemberrefInfo)
	case *classfile.ConstantMethodrefInfo:
		return memberOperands(c.ConstantMemberrefInfo)
	case *classfile.ConstantInterfaceMethodrefInfo:
		return memberOperands(c.ConstantMemberrefInfo)
	case *classfile.ConstantNameAndTypeInfo:
		return fmt.Sprintf("#%d:#%d", c.NameIndex, c.DescriptorIndex)
	case *classfile.ConstantMethodHandleInfo:
		return fmt.Sprintf("%d:#%d", c.ReferenceKind, c.ReferenceIndex)
	case *classfile.ConstantMethodTypeInfo:
		return unresolved(c.DescriptorIndex)
	case *classfile.ConstantDynamicInfo:
		return fmt.Sprintf("%d:#%d", c.BootstrapMethodAttrIndex, c.NameAndTypeIndex)
	case *classfile.ConstantModuleInfo:
		return unresolved(c.NameIndex)
	case *classfile.ConstantPackageInfo:
		return unresolved(c.NameIndex)
	}
	return ""
}

func memberOperands(ref classfile.ConstantMemberrefInfo) string {
	return fmt.Sprintf("#%d.#%d", ref.ClassIndex, ref.NameAndTypeIndex)
}
