package classfile

import (
	"fmt"
	"math"
)

type ConstantPoolEntry interface {
	Tag() ConstantTag
}

type ConstantUtf8Info struct {
	Value string
}

func (c *ConstantUtf8Info) Tag() ConstantTag { return ConstantUtf8 }

type ConstantIntegerInfo struct {
	Value int32
}

func (c *ConstantIntegerInfo) Tag() ConstantTag { return ConstantInteger }

type ConstantFloatInfo struct {
	Value float32
}

func (c *ConstantFloatInfo) Tag() ConstantTag { return ConstantFloat }

type ConstantLongInfo struct {
	Value int64
}

func (c *ConstantLongInfo) Tag() ConstantTag { return ConstantLong }

type ConstantDoubleInfo struct {
	Value float64
}

func (c *ConstantDoubleInfo) Tag() ConstantTag { return ConstantDouble }

type ConstantClassInfo struct {
	NameIndex uint16
}

func (c *ConstantClassInfo) Tag() ConstantTag { return ConstantClass }

type ConstantStringInfo struct {
	StringIndex uint16
}

func (c *ConstantStringInfo) Tag() ConstantTag { return ConstantString }

// ConstantMemberrefInfo is the shared layout of field, method and
// interface-method references.
type ConstantMemberrefInfo struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

type ConstantFieldrefInfo struct {
	ConstantMemberrefInfo
}

func (c *ConstantFieldrefInfo) Tag() ConstantTag { return ConstantFieldref }

type ConstantMethodrefInfo struct {
	ConstantMemberrefInfo
}

func (c *ConstantMethodrefInfo) Tag() ConstantTag { return ConstantMethodref }

type ConstantInterfaceMethodrefInfo struct {
	ConstantMemberrefInfo
}

func (c *ConstantInterfaceMethodrefInfo) Tag() ConstantTag { return ConstantInterfaceMethodref }

type ConstantNameAndTypeInfo struct {
	NameIndex       uint16
	DescriptorIndex uint16
}

func (c *ConstantNameAndTypeInfo) Tag() ConstantTag { return ConstantNameAndType }

type ConstantMethodHandleInfo struct {
	ReferenceKind  MethodHandleKind
	ReferenceIndex uint16
}

func (c *ConstantMethodHandleInfo) Tag() ConstantTag { return ConstantMethodHandle }

type ConstantMethodTypeInfo struct {
	DescriptorIndex uint16
}

func (c *ConstantMethodTypeInfo) Tag() ConstantTag { return ConstantMethodType }

// ConstantDynamicInfo covers both CONSTANT_Dynamic and
// CONSTANT_InvokeDynamic; Invoke tells them apart.
type ConstantDynamicInfo struct {
	BootstrapMethodAttrIndex uint16
	NameAndTypeIndex         uint16
	Invoke                   bool
}

func (c *ConstantDynamicInfo) Tag() ConstantTag {
	if c.Invoke {
		return ConstantInvokeDynamic
	}
	return ConstantDynamic
}

type ConstantModuleInfo struct {
	NameIndex uint16
}

func (c *ConstantModuleInfo) Tag() ConstantTag { return ConstantModule }

type ConstantPackageInfo struct {
	NameIndex uint16
}

func (c *ConstantPackageInfo) Tag() ConstantTag { return ConstantPackage }

// ConstantPool is indexed exactly like the class file: slot 0 is always nil,
// and so is the slot following every long or double.
type ConstantPool []ConstantPoolEntry

// Get returns the entry at index, or nil when index is 0, out of range, or
// the placeholder slot after a long/double.
func (cp ConstantPool) Get(index uint16) ConstantPoolEntry {
	if index == 0 || int(index) >= len(cp) {
		return nil
	}
	return cp[index]
}

// Lookup returns the entry at index if it has the requested type.
func Lookup[T ConstantPoolEntry](cp ConstantPool, index uint16) (T, bool) {
	entry, ok := cp.Get(index).(T)
	return entry, ok
}

func unresolved(index uint16) string {
	return fmt.Sprintf("#%d", index)
}

// Utf8 returns the string value of the Utf8 entry at index.
func (cp ConstantPool) Utf8(index uint16) (string, bool) {
	entry, ok := Lookup[*ConstantUtf8Info](cp, index)
	if !ok {
		return "", false
	}
	return entry.Value, true
}

// GetUtf8 returns the Utf8 entry at index or the placeholder "#index".
func (cp ConstantPool) GetUtf8(index uint16) string {
	if s, ok := cp.Utf8(index); ok {
		return s
	}
	return unresolved(index)
}

func (cp ConstantPool) ClassName(index uint16) (string, bool) {
	entry, ok := Lookup[*ConstantClassInfo](cp, index)
	if !ok {
		return "", false
	}
	return cp.Utf8(entry.NameIndex)
}

func (cp ConstantPool) GetClassName(index uint16) string {
	if s, ok := cp.ClassName(index); ok {
		return s
	}
	return unresolved(index)
}

func (cp ConstantPool) GetNameAndType(index uint16) (name, descriptor string) {
	entry, ok := Lookup[*ConstantNameAndTypeInfo](cp, index)
	if !ok {
		return unresolved(index), unresolved(index)
	}
	return cp.GetUtf8(entry.NameIndex), cp.GetUtf8(entry.DescriptorIndex)
}

func (cp ConstantPool) GetString(index uint16) string {
	entry, ok := Lookup[*ConstantStringInfo](cp, index)
	if !ok {
		return unresolved(index)
	}
	return cp.GetUtf8(entry.StringIndex)
}

func (cp ConstantPool) GetModuleName(index uint16) string {
	entry, ok := Lookup[*ConstantModuleInfo](cp, index)
	if !ok {
		return unresolved(index)
	}
	return cp.GetUtf8(entry.NameIndex)
}

func (cp ConstantPool) GetPackageName(index uint16) string {
	entry, ok := Lookup[*ConstantPackageInfo](cp, index)
	if !ok {
		return unresolved(index)
	}
	return cp.GetUtf8(entry.NameIndex)
}

func (cp ConstantPool) GetInteger(index uint16) (int32, bool) {
	entry, ok := Lookup[*ConstantIntegerInfo](cp, index)
	if !ok {
		return 0, false
	}
	return entry.Value, true
}

func (cp ConstantPool) GetLong(index uint16) (int64, bool) {
	entry, ok := Lookup[*ConstantLongInfo](cp, index)
	if !ok {
		return 0, false
	}
	return entry.Value, true
}

func readConstantPool(r *reader) (ConstantPool, error) {
	count := r.readU2()
	if r.err != nil {
		return nil, fmt.Errorf("failed to read constant pool count: %w", r.err)
	}
	if count == 0 {
		return nil, &FormatError{Offset: r.offset(), Msg: "constant pool count is zero"}
	}

	cp := make(ConstantPool, count)
	for i := uint16(1); i < count; i++ {
		entry, wide, err := readConstantPoolEntry(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read constant pool entry %d: %w", i, err)
		}
		cp[i] = entry
		if wide {
			// the following slot stays nil
			i++
		}
	}
	return cp, nil
}

func readConstantPoolEntry(r *reader) (ConstantPoolEntry, bool, error) {
	start := r.offset()
	tag := ConstantTag(r.readU1())
	if r.err != nil {
		return nil, false, r.err
	}

	var entry ConstantPoolEntry
	wide := false
	switch tag {
	case ConstantUtf8:
		length := r.readU2()
		entry = &ConstantUtf8Info{Value: decodeModifiedUtf8(r.readBytes(int(length)))}
	case ConstantInteger:
		entry = &ConstantIntegerInfo{Value: int32(r.readU4())}
	case ConstantFloat:
		entry = &ConstantFloatInfo{Value: math.Float32frombits(r.readU4())}
	case ConstantLong:
		high, low := r.readU4(), r.readU4()
		entry = &ConstantLongInfo{Value: int64(uint64(high)<<32 | uint64(low))}
		wide = true
	case ConstantDouble:
		high, low := r.readU4(), r.readU4()
		entry = &ConstantDoubleInfo{Value: math.Float64frombits(uint64(high)<<32 | uint64(low))}
		wide = true
	case ConstantClass:
		entry = &ConstantClassInfo{NameIndex: r.readU2()}
	case ConstantString:
		entry = &ConstantStringInfo{StringIndex: r.readU2()}
	case ConstantFieldref:
		entry = &ConstantFieldrefInfo{readMemberref(r)}
	case ConstantMethodref:
		entry = &ConstantMethodrefInfo{readMemberref(r)}
	case ConstantInterfaceMethodref:
		entry = &ConstantInterfaceMethodrefInfo{readMemberref(r)}
	case ConstantNameAndType:
		entry = &ConstantNameAndTypeInfo{
			NameIndex:       r.readU2(),
			DescriptorIndex: r.readU2(),
		}
	case ConstantMethodHandle:
		entry = &ConstantMethodHandleInfo{
			ReferenceKind:  MethodHandleKind(r.readU1()),
			ReferenceIndex: r.readU2(),
		}
	case ConstantMethodType:
		entry = &ConstantMethodTypeInfo{DescriptorIndex: r.readU2()}
	case ConstantDynamic, ConstantInvokeDynamic:
		entry = &ConstantDynamicInfo{
			BootstrapMethodAttrIndex: r.readU2(),
			NameAndTypeIndex:         r.readU2(),
			Invoke:                   tag == ConstantInvokeDynamic,
		}
	case ConstantModule:
		entry = &ConstantModuleInfo{NameIndex: r.readU2()}
	case ConstantPackage:
		entry = &ConstantPackageInfo{NameIndex: r.readU2()}
	default:
		return nil, false, &FormatError{Offset: start, Msg: fmt.Sprintf("tag %d", tag), Err: ErrUnknownConstantTag}
	}
	if r.err != nil {
		return nil, false, r.err
	}
	return entry, wide, nil
}

func readMemberref(r *reader) ConstantMemberrefInfo {
	return ConstantMemberrefInfo{
		ClassIndex:       r.readU2(),
		NameAndTypeIndex: r.readU2(),
	}
}
