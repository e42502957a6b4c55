package disasm

import (
	"fmt"
	"strings"

	"github.com/dhamidi/jdis/classfile"
)

// attributeKeywords renders the Deprecated and Synthetic attributes as
// leading keywords. Synthetic is left out when the access flags already
// carry it.
func attributeKeywords(attrs classfile.Attributes, flags classfile.AccessFlags) string {
	var sb strings.Builder
	if attrs.IsDeprecated() {
		sb.WriteString("deprecated ")
	}
	if attrs.IsSynthetic() && !flags.IsSynthetic() {
		sb.WriteString("synthetic ")
	}
	return sb.String()
}

// signature renders ":<sig>" when attrs carry a generic signature.
func (p *printer) signature(attrs classfile.Attributes) string {
	if sig, ok := attrs.Signature(); ok {
		return ":" + p.utf8(sig)
	}
	return ""
}

// finish writes a member head followed by its tail lines and terminates
// the last line with a semicolon.
func (p *printer) finish(head string, tail []string) {
	if len(tail) == 0 {
		p.line(head + ";")
		return
	}
	p.line(head)
	for i, t := range tail {
		if i == len(tail)-1 {
			t += ";"
		}
		p.line(t)
	}
}

func rawAttr(u *classfile.UnknownAttribute) string {
	if len(u.Info) == 0 {
		return fmt.Sprintf("Attr(%s, 0) { }", quoteName(u.Name))
	}
	return fmt.Sprintf("Attr(%s, %d) { % x }", quoteName(u.Name), len(u.Info), u.Info)
}

func (p *printer) unknownTail(attrs classfile.Attributes) []string {
	var tail []string
	for _, u := range attrs.Unknown() {
		tail = append(tail, "\t\t"+rawAttr(u))
	}
	return tail
}

func (p *printer) printField(f *classfile.FieldInfo) {
	p.printAnnotations("\t", f.Attributes)

	var sb strings.Builder
	sb.WriteString("\t")
	sb.WriteString(attributeKeywords(f.Attributes, f.AccessFlags))
	sb.WriteString(flagString(f.AccessFlags, fieldFlagNames))
	sb.WriteString("Field ")
	sb.WriteString(p.nameAndType(f.NameIndex, f.DescriptorIndex))
	sb.WriteString(p.signature(f.Attributes))
	if cv, ok := f.ConstantValue(); ok {
		sb.WriteString(" = ")
		sb.WriteString(p.constant(cv))
	}
	p.finish(sb.String(), p.unknownTail(f.Attributes))
}

func (p *printer) printMethod(m *classfile.MethodInfo) {
	p.printAnnotations("\t", m.Attributes)

	var sb strings.Builder
	sb.WriteString("\t")
	sb.WriteString(attributeKeywords(m.Attributes, m.AccessFlags))
	sb.WriteString(flagString(m.AccessFlags, methodFlagNames))
	sb.WriteString("Method ")
	sb.WriteString(p.nameAndType(m.NameIndex, m.DescriptorIndex))
	sb.WriteString(p.signature(m.Attributes))
	head := sb.String()

	var tail []string
	if ex := m.Exceptions(); len(ex) > 0 {
		tail = append(tail, "\t\tthrows "+p.classNames(ex))
	}
	if params := m.Parameters(); len(params) > 0 {
		parts := make([]string, len(params))
		for i, param := range params {
			name := unresolved(0)
			if param.NameIndex != 0 {
				name = p.utf8(param.NameIndex)
			}
			parts[i] = flagString(param.AccessFlags, parameterFlagNames) + name
		}
		tail = append(tail, "\t\tparameters "+strings.Join(parts, ", "))
	}
	for _, visible := range []bool{true, false} {
		for i, anns := range m.ParameterAnnotations(visible) {
			for _, a := range anns {
				tail = append(tail, fmt.Sprintf("\t\tparameter %d %s", i, p.annotation(a, visible)))
			}
		}
	}
	if def, ok := classfile.Find[*classfile.AnnotationDefaultAttribute](m.Attributes); ok {
		tail = append(tail, "\t\tdefault "+p.elementValue(def.DefaultValue, true))
	}
	tail = append(tail, p.unknownTail(m.Attributes)...)

	code := m.Code()
	if code == nil {
		p.finish(head, tail)
		return
	}
	if p.opts.Has(Debug) {
		p.log.Debugf("decoding %s", strings.TrimSpace(head))
		if slots, ok := m.ArgumentSlots(p.cp); ok && slots > int(code.MaxLocals) {
			p.log.Debugf("arguments take %d slots but max_locals is %d", slots, code.MaxLocals)
		}
	}
	p.line(head)
	for _, t := range tail {
		p.line(t)
	}
	p.printf("\t\tstack %d locals %d\n", code.MaxStack, code.MaxLocals)
	p.printCode(code)
}

func (p *printer) printRecord(rec *classfile.RecordAttribute) {
	p.line("\tRecord {")
	for i := range rec.Components {
		rc := &rec.Components[i]
		p.printAnnotations("\t\t", rc.Attributes)
		var tail []string
		for _, t := range p.unknownTail(rc.Attributes) {
			tail = append(tail, "\t"+t)
		}
		p.finish("\t\t"+p.nameAndType(rc.NameIndex, rc.DescriptorIndex)+p.signature(rc.Attributes), tail)
	}
	p.line("\t}")
}
