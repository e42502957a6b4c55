package classfile

type ModuleAttribute struct {
	ModuleNameIndex    uint16
	ModuleFlags        AccessFlags
	ModuleVersionIndex uint16
	Requires           []ModuleRequires
	Exports            []ModulePackageTargets
	Opens              []ModulePackageTargets
	Uses               []uint16
	Provides           []ModuleProvides
}

func (a *ModuleAttribute) AttributeName() string { return "Module" }

type ModuleRequires struct {
	RequiresIndex        uint16
	RequiresFlags        AccessFlags
	RequiresVersionIndex uint16
}

// ModulePackageTargets is one exports or opens directive.
type ModulePackageTargets struct {
	PackageIndex uint16
	Flags        AccessFlags
	ToIndex      []uint16
}

type ModuleProvides struct {
	ProvidesIndex     uint16
	ProvidesWithIndex []uint16
}

func decodeModule(r *reader, _ ConstantPool) (Attribute, error) {
	m := &ModuleAttribute{
		ModuleNameIndex:    r.readU2(),
		ModuleFlags:        AccessFlags(r.readU2()),
		ModuleVersionIndex: r.readU2(),
	}

	count := r.readU2()
	for i := uint16(0); i < count && r.err == nil; i++ {
		m.Requires = append(m.Requires, ModuleRequires{
			RequiresIndex:        r.readU2(),
			RequiresFlags:        AccessFlags(r.readU2()),
			RequiresVersionIndex: r.readU2(),
		})
	}
	m.Exports = readPackageTargets(r)
	m.Opens = readPackageTargets(r)
	m.Uses = r.readU2s()

	count = r.readU2()
	for i := uint16(0); i < count && r.err == nil; i++ {
		m.Provides = append(m.Provides, ModuleProvides{
			ProvidesIndex:     r.readU2(),
			ProvidesWithIndex: r.readU2s(),
		})
	}
	return m, nil
}

func readPackageTargets(r *reader) []ModulePackageTargets {
	count := r.readU2()
	var out []ModulePackageTargets
	for i := uint16(0); i < count && r.err == nil; i++ {
		out = append(out, ModulePackageTargets{
			PackageIndex: r.readU2(),
			Flags:        AccessFlags(r.readU2()),
			ToIndex:      r.readU2s(),
		})
	}
	return out
}

type ModulePackagesAttribute struct {
	PackageIndex []uint16
}

func (a *ModulePackagesAttribute) AttributeName() string { return "ModulePackages" }

func decodeModulePackages(r *reader, _ ConstantPool) (Attribute, error) {
	return &ModulePackagesAttribute{PackageIndex: r.readU2s()}, nil
}

type ModuleMainClassAttribute struct {
	MainClassIndex uint16
}

func (a *ModuleMainClassAttribute) AttributeName() string { return "ModuleMainClass" }

func decodeModuleMainClass(r *reader, _ ConstantPool) (Attribute, error) {
	return &ModuleMainClassAttribute{MainClassIndex: r.readU2()}, nil
}
