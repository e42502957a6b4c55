package classfile

import (
	"errors"
	"fmt"
	"io"
)

// Attribute is the decoded body of one class-file attribute.
type Attribute interface {
	AttributeName() string
}

type AttributeInfo struct {
	NameIndex uint16
	Name      string
	// Offset is the position of Info within the class file.
	Offset int64
	Info   []byte
	Parsed Attribute
}

// Attributes is the attribute table shared by classes, fields, methods,
// record components and code bodies.
type Attributes []AttributeInfo

func (as Attributes) Get(name string) *AttributeInfo {
	for i := range as {
		if as[i].Name == name {
			return &as[i]
		}
	}
	return nil
}

// Find returns the first decoded attribute of type T.
func Find[T Attribute](as Attributes) (T, bool) {
	for i := range as {
		if a, ok := as[i].Parsed.(T); ok {
			return a, true
		}
	}
	var zero T
	return zero, false
}

func (as Attributes) IsSynthetic() bool {
	_, ok := Find[*SyntheticAttribute](as)
	return ok
}

func (as Attributes) IsDeprecated() bool {
	_, ok := Find[*DeprecatedAttribute](as)
	return ok
}

// Signature returns the generic signature index, if present.
func (as Attributes) Signature() (uint16, bool) {
	sig, ok := Find[*SignatureAttribute](as)
	if !ok {
		return 0, false
	}
	return sig.SignatureIndex, true
}

// Annotations returns the runtime annotations with the given visibility.
func (as Attributes) Annotations(visible bool) []Annotation {
	for i := range as {
		if a, ok := as[i].Parsed.(*RuntimeAnnotationsAttribute); ok && a.Visible == visible {
			return a.Annotations
		}
	}
	return nil
}

func (as Attributes) TypeAnnotations(visible bool) []TypeAnnotation {
	for i := range as {
		if a, ok := as[i].Parsed.(*TypeAnnotationsAttribute); ok && a.Visible == visible {
			return a.Annotations
		}
	}
	return nil
}

// Unknown returns the attributes that were kept as raw bytes.
func (as Attributes) Unknown() []*UnknownAttribute {
	var out []*UnknownAttribute
	for i := range as {
		if u, ok := as[i].Parsed.(*UnknownAttribute); ok {
			out = append(out, u)
		}
	}
	return out
}

type attributeDecoder func(r *reader, cp ConstantPool) (Attribute, error)

var attributeDecoders map[string]attributeDecoder

func init() {
	attributeDecoders = map[string]attributeDecoder{
		"Code":                                 decodeCode,
		"ConstantValue":                        decodeConstantValue,
		"SourceFile":                           decodeSourceFile,
		"Signature":                            decodeSignature,
		"Exceptions":                           decodeExceptions,
		"InnerClasses":                         decodeInnerClasses,
		"BootstrapMethods":                     decodeBootstrapMethods,
		"EnclosingMethod":                      decodeEnclosingMethod,
		"Synthetic":                            decodeSynthetic,
		"Deprecated":                           decodeDeprecated,
		"SourceDebugExtension":                 decodeSourceDebugExtension,
		"MethodParameters":                     decodeMethodParameters,
		"NestHost":                             decodeNestHost,
		"NestMembers":                          classListDecoder("NestMembers"),
		"PermittedSubclasses":                  classListDecoder("PermittedSubclasses"),
		"Preload":                              classListDecoder("Preload"),
		"Record":                               decodeRecord,
		"Module":                               decodeModule,
		"ModulePackages":                       decodeModulePackages,
		"ModuleMainClass":                      decodeModuleMainClass,
		"LineNumberTable":                      decodeLineNumberTable,
		"LocalVariableTable":                   localVariableDecoder(false),
		"LocalVariableTypeTable":               localVariableDecoder(true),
		"StackMapTable":                        decodeStackMapTable,
		"RuntimeVisibleAnnotations":            annotationsDecoder(true),
		"RuntimeInvisibleAnnotations":          annotationsDecoder(false),
		"RuntimeVisibleParameterAnnotations":   parameterAnnotationsDecoder(true),
		"RuntimeInvisibleParameterAnnotations": parameterAnnotationsDecoder(false),
		"RuntimeVisibleTypeAnnotations":        typeAnnotationsDecoder(true),
		"RuntimeInvisibleTypeAnnotations":      typeAnnotationsDecoder(false),
		"AnnotationDefault":                    decodeAnnotationDefault,
	}
}

func readAttributes(r *reader, cp ConstantPool) (Attributes, error) {
	count := r.readU2()
	if r.err != nil {
		return nil, r.err
	}
	attrs := make(Attributes, 0, count)
	for i := uint16(0); i < count; i++ {
		attr, err := readAttributeInfo(r, cp)
		if err != nil {
			return nil, fmt.Errorf("failed to read attribute %d: %w", i, err)
		}
		attrs = append(attrs, attr)
	}
	return attrs, nil
}

func readAttributeInfo(r *reader, cp ConstantPool) (AttributeInfo, error) {
	nameIndex := r.readU2()
	length := r.readU4()
	offset := r.offset()
	info := r.readBytes(int(length))
	if r.err != nil {
		return AttributeInfo{}, r.err
	}

	name, _ := cp.Utf8(nameIndex)
	attr := AttributeInfo{
		NameIndex: nameIndex,
		Name:      name,
		Offset:    offset,
		Info:      info,
	}

	decode, ok := attributeDecoders[name]
	if !ok {
		attr.Parsed = &UnknownAttribute{Name: name, NameIndex: nameIndex, Info: info}
		return attr, nil
	}

	br := newBytesReader(info, offset)
	parsed, err := decode(br, cp)
	if err == nil {
		err = br.err
	}
	switch {
	case errors.Is(err, io.ErrUnexpectedEOF):
		return attr, &FormatError{
			Offset: offset,
			Msg:    fmt.Sprintf("%s: declared length %d is too short", name, length),
			Err:    ErrAttributeLength,
		}
	case err != nil:
		return attr, fmt.Errorf("%s: %w", name, err)
	case br.pos != int64(length):
		return attr, &FormatError{
			Offset: offset,
			Msg:    fmt.Sprintf("%s: declared length %d, decoded %d", name, length, br.pos),
			Err:    ErrAttributeLength,
		}
	}
	attr.Parsed = parsed
	return attr, nil
}

// UnknownAttribute keeps the body of an attribute this package does not
// decode.
type UnknownAttribute struct {
	Name      string
	NameIndex uint16
	Info      []byte
}

func (a *UnknownAttribute) AttributeName() string { return a.Name }

type SourceFileAttribute struct {
	SourceFileIndex uint16
}

func (a *SourceFileAttribute) AttributeName() string { return "SourceFile" }

func decodeSourceFile(r *reader, _ ConstantPool) (Attribute, error) {
	return &SourceFileAttribute{SourceFileIndex: r.readU2()}, nil
}

type ConstantValueAttribute struct {
	ConstantValueIndex uint16
}

func (a *ConstantValueAttribute) AttributeName() string { return "ConstantValue" }

func decodeConstantValue(r *reader, _ ConstantPool) (Attribute, error) {
	return &ConstantValueAttribute{ConstantValueIndex: r.readU2()}, nil
}

type SignatureAttribute struct {
	SignatureIndex uint16
}

func (a *SignatureAttribute) AttributeName() string { return "Signature" }

func decodeSignature(r *reader, _ ConstantPool) (Attribute, error) {
	return &SignatureAttribute{SignatureIndex: r.readU2()}, nil
}

type ExceptionsAttribute struct {
	ExceptionIndexTable []uint16
}

func (a *ExceptionsAttribute) AttributeName() string { return "Exceptions" }

func decodeExceptions(r *reader, _ ConstantPool) (Attribute, error) {
	return &ExceptionsAttribute{ExceptionIndexTable: r.readU2s()}, nil
}

type InnerClassesAttribute struct {
	Classes []InnerClassEntry
}

type InnerClassEntry struct {
	InnerClassInfoIndex   uint16
	OuterClassInfoIndex   uint16
	InnerNameIndex        uint16
	InnerClassAccessFlags AccessFlags
}

func (a *InnerClassesAttribute) AttributeName() string { return "InnerClasses" }

func decodeInnerClasses(r *reader, _ ConstantPool) (Attribute, error) {
	count := r.readU2()
	a := &InnerClassesAttribute{Classes: make([]InnerClassEntry, 0, count)}
	for i := uint16(0); i < count && r.err == nil; i++ {
		a.Classes = append(a.Classes, InnerClassEntry{
			InnerClassInfoIndex:   r.readU2(),
			OuterClassInfoIndex:   r.readU2(),
			InnerNameIndex:        r.readU2(),
			InnerClassAccessFlags: AccessFlags(r.readU2()),
		})
	}
	return a, nil
}

type BootstrapMethodsAttribute struct {
	BootstrapMethods []BootstrapMethod
}

type BootstrapMethod struct {
	BootstrapMethodRef uint16
	BootstrapArguments []uint16
}

func (a *BootstrapMethodsAttribute) AttributeName() string { return "BootstrapMethods" }

func decodeBootstrapMethods(r *reader, _ ConstantPool) (Attribute, error) {
	count := r.readU2()
	a := &BootstrapMethodsAttribute{BootstrapMethods: make([]BootstrapMethod, 0, count)}
	for i := uint16(0); i < count && r.err == nil; i++ {
		a.BootstrapMethods = append(a.BootstrapMethods, BootstrapMethod{
			BootstrapMethodRef: r.readU2(),
			BootstrapArguments: r.readU2s(),
		})
	}
	return a, nil
}

type EnclosingMethodAttribute struct {
	ClassIndex  uint16
	MethodIndex uint16
}

func (a *EnclosingMethodAttribute) AttributeName() string { return "EnclosingMethod" }

func decodeEnclosingMethod(r *reader, _ ConstantPool) (Attribute, error) {
	return &EnclosingMethodAttribute{ClassIndex: r.readU2(), MethodIndex: r.readU2()}, nil
}

type SyntheticAttribute struct{}

func (a *SyntheticAttribute) AttributeName() string { return "Synthetic" }

func decodeSynthetic(_ *reader, _ ConstantPool) (Attribute, error) {
	return &SyntheticAttribute{}, nil
}

type DeprecatedAttribute struct{}

func (a *DeprecatedAttribute) AttributeName() string { return "Deprecated" }

func decodeDeprecated(_ *reader, _ ConstantPool) (Attribute, error) {
	return &DeprecatedAttribute{}, nil
}

type SourceDebugExtensionAttribute struct {
	DebugExtension string
}

func (a *SourceDebugExtensionAttribute) AttributeName() string { return "SourceDebugExtension" }

func decodeSourceDebugExtension(r *reader, _ ConstantPool) (Attribute, error) {
	data, err := io.ReadAll(r.r)
	r.pos += int64(len(data))
	if err != nil {
		return nil, err
	}
	return &SourceDebugExtensionAttribute{DebugExtension: decodeModifiedUtf8(data)}, nil
}

type MethodParametersAttribute struct {
	Parameters []MethodParameter
}

type MethodParameter struct {
	NameIndex   uint16
	AccessFlags AccessFlags
}

func (a *MethodParametersAttribute) AttributeName() string { return "MethodParameters" }

func decodeMethodParameters(r *reader, _ ConstantPool) (Attribute, error) {
	count := r.readU1()
	a := &MethodParametersAttribute{Parameters: make([]MethodParameter, 0, count)}
	for i := uint8(0); i < count && r.err == nil; i++ {
		a.Parameters = append(a.Parameters, MethodParameter{
			NameIndex:   r.readU2(),
			AccessFlags: AccessFlags(r.readU2()),
		})
	}
	return a, nil
}

type NestHostAttribute struct {
	HostClassIndex uint16
}

func (a *NestHostAttribute) AttributeName() string { return "NestHost" }

func decodeNestHost(r *reader, _ ConstantPool) (Attribute, error) {
	return &NestHostAttribute{HostClassIndex: r.readU2()}, nil
}

// ClassListAttribute is the shared layout of NestMembers,
// PermittedSubclasses and Preload: a counted list of class indices.
type ClassListAttribute struct {
	Name    string
	Classes []uint16
}

func (a *ClassListAttribute) AttributeName() string { return a.Name }

func classListDecoder(name string) attributeDecoder {
	return func(r *reader, _ ConstantPool) (Attribute, error) {
		return &ClassListAttribute{Name: name, Classes: r.readU2s()}, nil
	}
}

type RecordAttribute struct {
	Components []RecordComponentInfo
}

func (a *RecordAttribute) AttributeName() string { return "Record" }

func decodeRecord(r *reader, cp ConstantPool) (Attribute, error) {
	count := r.readU2()
	a := &RecordAttribute{Components: make([]RecordComponentInfo, 0, count)}
	for i := uint16(0); i < count && r.err == nil; i++ {
		rc := RecordComponentInfo{
			NameIndex:       r.readU2(),
			DescriptorIndex: r.readU2(),
		}
		attrs, err := readAttributes(r, cp)
		if err != nil {
			return nil, fmt.Errorf("record component %d: %w", i, err)
		}
		rc.Attributes = attrs
		a.Components = append(a.Components, rc)
	}
	return a, nil
}
