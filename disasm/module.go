package disasm

import (
	"strings"

	"github.com/dhamidi/jdis/classfile"
)

func (p *printer) moduleName(index uint16) string {
	m, ok := classfile.Lookup[*classfile.ConstantModuleInfo](p.cp, index)
	if !ok {
		p.flag(index, "expected a Module constant")
		return unresolved(index)
	}
	name, _ := p.nameBody(m.NameIndex)
	return name
}

func (p *printer) packageName(index uint16) string {
	pkg, ok := classfile.Lookup[*classfile.ConstantPackageInfo](p.cp, index)
	if !ok {
		p.flag(index, "expected a Package constant")
		return unresolved(index)
	}
	name, _ := p.nameBody(pkg.NameIndex)
	return name
}

func (p *printer) moduleNames(indices []uint16) string {
	names := make([]string, len(indices))
	for i, idx := range indices {
		names[i] = p.moduleName(idx)
	}
	return strings.Join(names, ", ")
}

func (p *printer) version(index uint16) string {
	if index == 0 {
		return ""
	}
	return " version " + p.quotedUtf8(index)
}

// printModule renders module-info. The constant pool is never listed for
// a module.
func (p *printer) printModule() {
	m := p.cf.Module()
	p.printAnnotations("", p.cf.Attributes)
	if m == nil {
		name := p.className(p.cf.ThisClass)
		p.line("module " + name)
		p.line("{")
		p.line("} // end Module " + name)
		return
	}

	name := p.moduleName(m.ModuleNameIndex)
	p.line(flagString(m.ModuleFlags, moduleFlagNames) + "module " + name + p.version(m.ModuleVersionIndex))
	p.line("{")
	for _, r := range m.Requires {
		p.line("\trequires " + flagString(r.RequiresFlags, requiresFlagNames) + p.moduleName(r.RequiresIndex) + p.version(r.RequiresVersionIndex) + ";")
	}
	p.printPackageTargets("exports", m.Exports)
	p.printPackageTargets("opens", m.Opens)
	for _, u := range m.Uses {
		p.line("\tuses " + p.className(u) + ";")
	}
	for _, pr := range m.Provides {
		p.line("\tprovides " + p.className(pr.ProvidesIndex) + " with " + p.classNames(pr.ProvidesWithIndex) + ";")
	}
	if pkgs, ok := classfile.Find[*classfile.ModulePackagesAttribute](p.cf.Attributes); ok && p.opts.verbose() {
		names := make([]string, len(pkgs.PackageIndex))
		for i, idx := range pkgs.PackageIndex {
			names[i] = p.packageName(idx)
		}
		p.line("\tpackages " + strings.Join(names, ", ") + ";")
	}
	if mc, ok := classfile.Find[*classfile.ModuleMainClassAttribute](p.cf.Attributes); ok {
		p.line("\tmain " + p.className(mc.MainClassIndex) + ";")
	}
	for _, u := range p.cf.Attributes.Unknown() {
		p.line("\t" + rawAttr(u) + ";")
	}
	p.line("} // end Module " + name)
}

func (p *printer) printPackageTargets(keyword string, targets []classfile.ModulePackageTargets) {
	for _, t := range targets {
		s := "\t" + keyword + " " + flagString(t.Flags, directiveFlagNames) + p.packageName(t.PackageIndex)
		if len(t.ToIndex) > 0 {
			s += " to " + p.moduleNames(t.ToIndex)
		}
		p.line(s + ";")
	}
}
