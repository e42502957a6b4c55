package classfile

import "fmt"

type TypeAnnotation struct {
	TargetType uint8
	Target     TargetInfo
	TargetPath []TypePathEntry
	Annotation
}

type TypePathEntry struct {
	TypePathKind      uint8
	TypeArgumentIndex uint8
}

// Type path kinds.
const (
	PathArray        uint8 = 0
	PathInnerType    uint8 = 1
	PathWildcard     uint8 = 2
	PathTypeArgument uint8 = 3
)

// TargetInfo describes which construct a type annotation is attached to.
type TargetInfo interface {
	targetInfo()
}

type TypeParameterTarget struct {
	Index uint8
}

type SupertypeTarget struct {
	// Index is 65535 for the superclass, otherwise an interfaces index.
	Index uint16
}

type TypeParameterBoundTarget struct {
	ParameterIndex uint8
	BoundIndex     uint8
}

type EmptyTarget struct{}

type FormalParameterTarget struct {
	Index uint8
}

type ThrowsTarget struct {
	Index uint16
}

type LocalVarTarget struct {
	Table []LocalVarTargetEntry
}

type LocalVarTargetEntry struct {
	StartPC uint16
	Length  uint16
	Index   uint16
}

type CatchTarget struct {
	ExceptionTableIndex uint16
}

type OffsetTarget struct {
	Offset uint16
}

type TypeArgumentTarget struct {
	Offset uint16
	Index  uint8
}

func (TypeParameterTarget) targetInfo()      {}
func (SupertypeTarget) targetInfo()          {}
func (TypeParameterBoundTarget) targetInfo() {}
func (EmptyTarget) targetInfo()              {}
func (FormalParameterTarget) targetInfo()    {}
func (ThrowsTarget) targetInfo()             {}
func (LocalVarTarget) targetInfo()           {}
func (CatchTarget) targetInfo()              {}
func (OffsetTarget) targetInfo()             {}
func (TypeArgumentTarget) targetInfo()       {}

type targetType struct {
	name   string
	decode func(r *reader) TargetInfo
}

func readTypeParameterTarget(r *reader) TargetInfo {
	return TypeParameterTarget{Index: r.readU1()}
}

func readSupertypeTarget(r *reader) TargetInfo {
	return SupertypeTarget{Index: r.readU2()}
}

func readTypeParameterBoundTarget(r *reader) TargetInfo {
	return TypeParameterBoundTarget{ParameterIndex: r.readU1(), BoundIndex: r.readU1()}
}

func readEmptyTarget(*reader) TargetInfo {
	return EmptyTarget{}
}

func readFormalParameterTarget(r *reader) TargetInfo {
	return FormalParameterTarget{Index: r.readU1()}
}

func readThrowsTarget(r *reader) TargetInfo {
	return ThrowsTarget{Index: r.readU2()}
}

func readLocalVarTarget(r *reader) TargetInfo {
	count := r.readU2()
	t := LocalVarTarget{Table: make([]LocalVarTargetEntry, 0, count)}
	for i := uint16(0); i < count && r.err == nil; i++ {
		t.Table = append(t.Table, LocalVarTargetEntry{
			StartPC: r.readU2(),
			Length:  r.readU2(),
			Index:   r.readU2(),
		})
	}
	return t
}

func readCatchTarget(r *reader) TargetInfo {
	return CatchTarget{ExceptionTableIndex: r.readU2()}
}

func readOffsetTarget(r *reader) TargetInfo {
	return OffsetTarget{Offset: r.readU2()}
}

func readTypeArgumentTarget(r *reader) TargetInfo {
	return TypeArgumentTarget{Offset: r.readU2(), Index: r.readU1()}
}

var targetTypes = map[uint8]targetType{
	0x00: {"CLASS_TYPE_PARAMETER", readTypeParameterTarget},
	0x01: {"METHOD_TYPE_PARAMETER", readTypeParameterTarget},
	0x10: {"CLASS_EXTENDS", readSupertypeTarget},
	0x11: {"CLASS_TYPE_PARAMETER_BOUND", readTypeParameterBoundTarget},
	0x12: {"METHOD_TYPE_PARAMETER_BOUND", readTypeParameterBoundTarget},
	0x13: {"FIELD", readEmptyTarget},
	0x14: {"METHOD_RETURN", readEmptyTarget},
	0x15: {"METHOD_RECEIVER", readEmptyTarget},
	0x16: {"METHOD_FORMAL_PARAMETER", readFormalParameterTarget},
	0x17: {"THROWS", readThrowsTarget},
	0x40: {"LOCAL_VARIABLE", readLocalVarTarget},
	0x41: {"RESOURCE_VARIABLE", readLocalVarTarget},
	0x42: {"EXCEPTION_PARAMETER", readCatchTarget},
	0x43: {"INSTANCEOF", readOffsetTarget},
	0x44: {"NEW", readOffsetTarget},
	0x45: {"CONSTRUCTOR_REFERENCE", readOffsetTarget},
	0x46: {"METHOD_REFERENCE", readOffsetTarget},
	0x47: {"CAST", readTypeArgumentTarget},
	0x48: {"CONSTRUCTOR_INVOCATION_TYPE_ARGUMENT", readTypeArgumentTarget},
	0x49: {"METHOD_INVOCATION_TYPE_ARGUMENT", readTypeArgumentTarget},
	0x4A: {"CONSTRUCTOR_REFERENCE_TYPE_ARGUMENT", readTypeArgumentTarget},
	0x4B: {"METHOD_REFERENCE_TYPE_ARGUMENT", readTypeArgumentTarget},
}

// TargetTypeName returns the symbolic name of a type annotation target type.
func TargetTypeName(t uint8) string {
	if tt, ok := targetTypes[t]; ok {
		return tt.name
	}
	return fmt.Sprintf("TARGET_0x%02X", t)
}

func readTypeAnnotation(r *reader) TypeAnnotation {
	ta := TypeAnnotation{TargetType: r.readU1()}
	if r.err != nil {
		return ta
	}
	tt, ok := targetTypes[ta.TargetType]
	if !ok {
		r.fail("unknown type annotation target type 0x%02X", ta.TargetType)
		return ta
	}
	ta.Target = tt.decode(r)

	pathLength := r.readU1()
	ta.TargetPath = make([]TypePathEntry, 0, pathLength)
	for i := uint8(0); i < pathLength && r.err == nil; i++ {
		ta.TargetPath = append(ta.TargetPath, TypePathEntry{
			TypePathKind:      r.readU1(),
			TypeArgumentIndex: r.readU1(),
		})
	}
	ta.Annotation = readAnnotation(r)
	return ta
}

// TypeAnnotationsAttribute is RuntimeVisibleTypeAnnotations or
// RuntimeInvisibleTypeAnnotations.
type TypeAnnotationsAttribute struct {
	Visible     bool
	Annotations []TypeAnnotation
}

func (a *TypeAnnotationsAttribute) AttributeName() string {
	if a.Visible {
		return "RuntimeVisibleTypeAnnotations"
	}
	return "RuntimeInvisibleTypeAnnotations"
}

func typeAnnotationsDecoder(visible bool) attributeDecoder {
	return func(r *reader, _ ConstantPool) (Attribute, error) {
		count := r.readU2()
		a := &TypeAnnotationsAttribute{Visible: visible, Annotations: make([]TypeAnnotation, 0, count)}
		for i := uint16(0); i < count && r.err == nil; i++ {
			a.Annotations = append(a.Annotations, readTypeAnnotation(r))
		}
		return a, nil
	}
}
