package classfile

type MethodInfo struct {
	AccessFlags     AccessFlags
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      Attributes
}

func (m *MethodInfo) Descriptor(cp ConstantPool) string {
	return cp.GetUtf8(m.DescriptorIndex)
}

func (m *MethodInfo) Code() *CodeAttribute {
	code, _ := Find[*CodeAttribute](m.Attributes)
	return code
}

// Exceptions returns the class indices of the declared checked exceptions.
func (m *MethodInfo) Exceptions() []uint16 {
	ex, ok := Find[*ExceptionsAttribute](m.Attributes)
	if !ok {
		return nil
	}
	return ex.ExceptionIndexTable
}

func (m *MethodInfo) Parameters() []MethodParameter {
	mp, ok := Find[*MethodParametersAttribute](m.Attributes)
	if !ok {
		return nil
	}
	return mp.Parameters
}

// ParameterAnnotations returns the per-parameter annotation lists with the
// given visibility.
func (m *MethodInfo) ParameterAnnotations(visible bool) [][]Annotation {
	for i := range m.Attributes {
		if a, ok := m.Attributes[i].Parsed.(*ParameterAnnotationsAttribute); ok && a.Visible == visible {
			return a.Parameters
		}
	}
	return nil
}

// ArgumentSlots is the number of local slots the arguments occupy on
// entry, counting the receiver of instance methods. ok is false when the
// descriptor does not parse.
func (m *MethodInfo) ArgumentSlots(cp ConstantPool) (int, bool) {
	md := ParseMethodDescriptor(m.Descriptor(cp))
	if md == nil {
		return 0, false
	}
	n := md.ParameterSlots()
	if !m.AccessFlags.IsStatic() {
		n++
	}
	return n, true
}

func readMethodInfo(r *reader, cp ConstantPool) (*MethodInfo, error) {
	method := &MethodInfo{
		AccessFlags:     AccessFlags(r.readU2()),
		NameIndex:       r.readU2(),
		DescriptorIndex: r.readU2(),
	}
	attrs, err := readAttributes(r, cp)
	if err != nil {
		return nil, err
	}
	method.Attributes = attrs
	return method, nil
}
