package classfile

type FieldInfo struct {
	AccessFlags     AccessFlags
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      Attributes
}

// ConstantValue returns the constant pool index of the field's initial
// value, if it has one.
func (f *FieldInfo) ConstantValue() (uint16, bool) {
	cv, ok := Find[*ConstantValueAttribute](f.Attributes)
	if !ok {
		return 0, false
	}
	return cv.ConstantValueIndex, true
}

// RecordComponentInfo is one entry of the Record attribute. It carries no
// access flags.
type RecordComponentInfo struct {
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      Attributes
}

func readFieldInfo(r *reader, cp ConstantPool) (*FieldInfo, error) {
	field := &FieldInfo{
		AccessFlags:     AccessFlags(r.readU2()),
		NameIndex:       r.readU2(),
		DescriptorIndex: r.readU2(),
	}
	attrs, err := readAttributes(r, cp)
	if err != nil {
		return nil, err
	}
	field.Attributes = attrs
	return field, nil
}
