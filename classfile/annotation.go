package classfile

type Annotation struct {
	TypeIndex         uint16
	ElementValuePairs []ElementValuePair
}

type ElementValuePair struct {
	ElementNameIndex uint16
	Value            ElementValue
}

// ElementValue is one of ConstElementValue, EnumElementValue,
// ClassElementValue, AnnotationElementValue or ArrayElementValue.
type ElementValue interface {
	ElementTag() byte
}

// ConstElementValue covers the primitive tags BCDFIJSZ and 's' for strings.
type ConstElementValue struct {
	Tag             byte
	ConstValueIndex uint16
}

func (v *ConstElementValue) ElementTag() byte { return v.Tag }

type EnumElementValue struct {
	TypeNameIndex  uint16
	ConstNameIndex uint16
}

func (v *EnumElementValue) ElementTag() byte { return 'e' }

type ClassElementValue struct {
	ClassInfoIndex uint16
}

func (v *ClassElementValue) ElementTag() byte { return 'c' }

type AnnotationElementValue struct {
	Annotation Annotation
}

func (v *AnnotationElementValue) ElementTag() byte { return '@' }

type ArrayElementValue struct {
	Values []ElementValue
}

func (v *ArrayElementValue) ElementTag() byte { return '[' }

func readElementValue(r *reader) ElementValue {
	tag := r.readU1()
	if r.err != nil {
		return nil
	}
	switch tag {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z', 's':
		return &ConstElementValue{Tag: tag, ConstValueIndex: r.readU2()}
	case 'e':
		return &EnumElementValue{TypeNameIndex: r.readU2(), ConstNameIndex: r.readU2()}
	case 'c':
		return &ClassElementValue{ClassInfoIndex: r.readU2()}
	case '@':
		return &AnnotationElementValue{Annotation: readAnnotation(r)}
	case '[':
		count := r.readU2()
		arr := &ArrayElementValue{Values: make([]ElementValue, 0, count)}
		for i := uint16(0); i < count && r.err == nil; i++ {
			arr.Values = append(arr.Values, readElementValue(r))
		}
		return arr
	default:
		r.fail("unknown element value tag %q", tag)
		return nil
	}
}

func readAnnotation(r *reader) Annotation {
	ann := Annotation{TypeIndex: r.readU2()}
	ann.ElementValuePairs = readElementValuePairs(r)
	return ann
}

func readElementValuePairs(r *reader) []ElementValuePair {
	count := r.readU2()
	pairs := make([]ElementValuePair, 0, count)
	for i := uint16(0); i < count && r.err == nil; i++ {
		pair := ElementValuePair{ElementNameIndex: r.readU2()}
		pair.Value = readElementValue(r)
		pairs = append(pairs, pair)
	}
	return pairs
}

func readAnnotations(r *reader) []Annotation {
	count := r.readU2()
	out := make([]Annotation, 0, count)
	for i := uint16(0); i < count && r.err == nil; i++ {
		out = append(out, readAnnotation(r))
	}
	return out
}

// RuntimeAnnotationsAttribute is RuntimeVisibleAnnotations or
// RuntimeInvisibleAnnotations.
type RuntimeAnnotationsAttribute struct {
	Visible     bool
	Annotations []Annotation
}

func (a *RuntimeAnnotationsAttribute) AttributeName() string {
	if a.Visible {
		return "RuntimeVisibleAnnotations"
	}
	return "RuntimeInvisibleAnnotations"
}

func annotationsDecoder(visible bool) attributeDecoder {
	return func(r *reader, _ ConstantPool) (Attribute, error) {
		return &RuntimeAnnotationsAttribute{Visible: visible, Annotations: readAnnotations(r)}, nil
	}
}

type ParameterAnnotationsAttribute struct {
	Visible    bool
	Parameters [][]Annotation
}

func (a *ParameterAnnotationsAttribute) AttributeName() string {
	if a.Visible {
		return "RuntimeVisibleParameterAnnotations"
	}
	return "RuntimeInvisibleParameterAnnotations"
}

func parameterAnnotationsDecoder(visible bool) attributeDecoder {
	return func(r *reader, _ ConstantPool) (Attribute, error) {
		count := r.readU1()
		a := &ParameterAnnotationsAttribute{Visible: visible, Parameters: make([][]Annotation, 0, count)}
		for i := uint8(0); i < count && r.err == nil; i++ {
			a.Parameters = append(a.Parameters, readAnnotations(r))
		}
		return a, nil
	}
}

type AnnotationDefaultAttribute struct {
	DefaultValue ElementValue
}

func (a *AnnotationDefaultAttribute) AttributeName() string { return "AnnotationDefault" }

func decodeAnnotationDefault(r *reader, _ ConstantPool) (Attribute, error) {
	return &AnnotationDefaultAttribute{DefaultValue: readElementValue(r)}, nil
}
