package classfile

type ClassFile struct {
	MinorVersion uint16
	MajorVersion uint16
	ConstantPool ConstantPool
	AccessFlags  AccessFlags
	ThisClass    uint16
	SuperClass   uint16
	Interfaces   []uint16
	Fields       []FieldInfo
	Methods      []MethodInfo
	Attributes   Attributes
}

func (cf *ClassFile) ClassName() string {
	return cf.ConstantPool.GetClassName(cf.ThisClass)
}

// PackagePrefix is the package of this class with a trailing slash, used
// to shorten names of classes in the same package.
func (cf *ClassFile) PackagePrefix() string {
	name, ok := cf.ConstantPool.ClassName(cf.ThisClass)
	if !ok {
		return ""
	}
	return PackageOf(name)
}

func (cf *ClassFile) IsModule() bool {
	return cf.AccessFlags.IsModule()
}

func (cf *ClassFile) SourceFile() (string, bool) {
	sf, ok := Find[*SourceFileAttribute](cf.Attributes)
	if !ok {
		return "", false
	}
	return cf.ConstantPool.Utf8(sf.SourceFileIndex)
}

func (cf *ClassFile) BootstrapMethods() []BootstrapMethod {
	bsm, ok := Find[*BootstrapMethodsAttribute](cf.Attributes)
	if !ok {
		return nil
	}
	return bsm.BootstrapMethods
}

func (cf *ClassFile) Module() *ModuleAttribute {
	m, _ := Find[*ModuleAttribute](cf.Attributes)
	return m
}

func (cf *ClassFile) Record() *RecordAttribute {
	rec, _ := Find[*RecordAttribute](cf.Attributes)
	return rec
}
