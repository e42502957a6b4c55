package disasm

import (
	"fmt"
	"strings"

	"github.com/dhamidi/jdis/classfile"
)

func annotationSign(visible bool) string {
	if visible {
		return "+"
	}
	return "-"
}

// annotation renders @+Type { name = value, ... }.
func (p *printer) annotation(a classfile.Annotation, visible bool) string {
	var sb strings.Builder
	sb.WriteString("@")
	sb.WriteString(annotationSign(visible))
	sb.WriteString(p.typeName(a.TypeIndex))
	p.writePairs(&sb, a.ElementValuePairs, visible)
	return sb.String()
}

func (p *printer) writePairs(sb *strings.Builder, pairs []classfile.ElementValuePair, visible bool) {
	if len(pairs) == 0 {
		return
	}
	sb.WriteString(" { ")
	for i, pair := range pairs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.utf8(pair.ElementNameIndex))
		sb.WriteString(" = ")
		sb.WriteString(p.elementValue(pair.Value, visible))
	}
	sb.WriteString(" }")
}

func (p *printer) elementValue(v classfile.ElementValue, visible bool) string {
	switch ev := v.(type) {
	case *classfile.ConstElementValue:
		return string(ev.Tag) + " " + p.literal(ev.ConstValueIndex)
	case *classfile.EnumElementValue:
		return "e " + p.typeName(ev.TypeNameIndex) + "." + p.utf8(ev.ConstNameIndex)
	case *classfile.ClassElementValue:
		return "c " + p.utf8(ev.ClassInfoIndex)
	case *classfile.AnnotationElementValue:
		return p.annotation(ev.Annotation, visible)
	case *classfile.ArrayElementValue:
		if len(ev.Values) == 0 {
			return "{ }"
		}
		parts := make([]string, len(ev.Values))
		for i, item := range ev.Values {
			parts[i] = p.elementValue(item, visible)
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	}
	return "?"
}

// typeAnnotation renders @T+Type { ... } target NAME info path [...].
func (p *printer) typeAnnotation(ta classfile.TypeAnnotation, visible bool) string {
	var sb strings.Builder
	sb.WriteString("@T")
	sb.WriteString(annotationSign(visible))
	sb.WriteString(p.typeName(ta.TypeIndex))
	p.writePairs(&sb, ta.ElementValuePairs, visible)
	sb.WriteString(" target ")
	sb.WriteString(classfile.TargetTypeName(ta.TargetType))
	if info := targetInfo(ta.Target); info != "" {
		sb.WriteByte(' ')
		sb.WriteString(info)
	}
	if len(ta.TargetPath) > 0 {
		parts := make([]string, len(ta.TargetPath))
		for i, e := range ta.TargetPath {
			parts[i] = typePathEntry(e)
		}
		sb.WriteString(" path [")
		sb.WriteString(strings.Join(parts, ", "))
		sb.WriteString("]")
	}
	return sb.String()
}

func targetInfo(t classfile.TargetInfo) string {
	switch ti := t.(type) {
	case classfile.TypeParameterTarget:
		return fmt.Sprint(ti.Index)
	case classfile.SupertypeTarget:
		return fmt.Sprint(ti.Index)
	case classfile.TypeParameterBoundTarget:
		return fmt.Sprintf("%d, %d", ti.ParameterIndex, ti.BoundIndex)
	case classfile.FormalParameterTarget:
		return fmt.Sprint(ti.Index)
	case classfile.ThrowsTarget:
		return fmt.Sprint(ti.Index)
	case classfile.LocalVarTarget:
		parts := make([]string, len(ti.Table))
		for i, e := range ti.Table {
			parts[i] = fmt.Sprintf("%d %d %d", e.StartPC, e.Length, e.Index)
		}
		return "{ " + strings.Join(parts, "; ") + " }"
	case classfile.CatchTarget:
		return fmt.Sprint(ti.ExceptionTableIndex)
	case classfile.OffsetTarget:
		return fmt.Sprint(ti.Offset)
	case classfile.TypeArgumentTarget:
		return fmt.Sprintf("%d, %d", ti.Offset, ti.Index)
	}
	return ""
}

var typePathKinds = map[uint8]string{
	classfile.PathArray:        "ARRAY",
	classfile.PathInnerType:    "INNER_TYPE",
	classfile.PathWildcard:     "WILDCARD",
	classfile.PathTypeArgument: "TYPE_ARGUMENT",
}

func typePathEntry(e classfile.TypePathEntry) string {
	name, ok := typePathKinds[e.TypePathKind]
	if !ok {
		name = fmt.Sprintf("PATH_%d", e.TypePathKind)
	}
	if e.TypePathKind == classfile.PathTypeArgument {
		return fmt.Sprintf("%s(%d)", name, e.TypeArgumentIndex)
	}
	return name
}

// printAnnotations writes the annotations of attrs one per line. Visible
// annotations come before invisible ones, plain before type annotations.
func (p *printer) printAnnotations(indent string, attrs classfile.Attributes) {
	for _, visible := range []bool{true, false} {
		for _, a := range attrs.Annotations(visible) {
			p.line(indent + p.annotation(a, visible))
		}
	}
	for _, visible := range []bool{true, false} {
		for _, ta := range attrs.TypeAnnotations(visible) {
			p.line(indent + p.typeAnnotation(ta, visible))
		}
	}
}
