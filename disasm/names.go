package disasm

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/dhamidi/jdis/classfile"
)

func isIdentRune(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// isPlainName reports whether s can be printed without quotes: identifier
// characters and slashes only.
func isPlainName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r != '/' && !isIdentRune(r) {
			return false
		}
	}
	return true
}

// quoteName returns s unchanged when it is a plain name, otherwise as a
// quoted string literal.
func quoteName(s string) string {
	if isPlainName(s) {
		return s
	}
	return quote(s)
}

func quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		default:
			if r < 0x20 || r == 0x7f || !unicode.IsPrint(r) {
				if r > 0xffff {
					fmt.Fprintf(&sb, `\U%08x`, r)
				} else {
					fmt.Fprintf(&sb, `\u%04x`, r)
				}
				continue
			}
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// shortName strips the package prefix of the class being printed from
// name when what remains is a simple name.
func (p *printer) shortName(name string) string {
	if p.pkg != "" && strings.HasPrefix(name, p.pkg) {
		rest := name[len(p.pkg):]
		if rest != "" && !strings.Contains(rest, "/") {
			return rest
		}
	}
	return name
}

// className renders a class reference, shortened and quoted as needed.
func (p *printer) className(index uint16) string {
	name, ok := p.cp.ClassName(index)
	if !ok {
		p.flag(index, "expected a class reference")
		return unresolved(index)
	}
	return quoteName(p.shortName(name))
}

// classNames renders a list of class references separated by commas.
func (p *printer) classNames(indices []uint16) string {
	names := make([]string, len(indices))
	for i, idx := range indices {
		names[i] = p.className(idx)
	}
	return strings.Join(names, ", ")
}

// utf8 renders a Utf8 constant as a name, quoted when needed.
func (p *printer) utf8(index uint16) string {
	s, ok := p.cp.Utf8(index)
	if !ok {
		p.flag(index, "expected a Utf8 constant")
		return unresolved(index)
	}
	return quoteName(s)
}

// typeName renders a field descriptor naming a class type as that class,
// e.g. "Ljava/lang/Deprecated;" as "java/lang/Deprecated".
func (p *printer) typeName(index uint16) string {
	s, ok := p.cp.Utf8(index)
	if !ok {
		p.flag(index, "expected a type descriptor")
		return unresolved(index)
	}
	if len(s) > 2 && s[0] == 'L' && s[len(s)-1] == ';' {
		return quoteName(p.shortName(s[1 : len(s)-1]))
	}
	return quoteName(s)
}

func unresolved(index uint16) string {
	return fmt.Sprintf("#%d", index)
}

type flagName struct {
	flag classfile.AccessFlags
	name string
}

var (
	classFlagNames = []flagName{
		{classfile.AccPublic, "public"},
		{classfile.AccFinal, "final"},
		{classfile.AccSuper, "super"},
		{classfile.AccAbstract, "abstract"},
		{classfile.AccSynthetic, "synthetic"},
		{classfile.AccAnnotation, "annotation"},
		{classfile.AccEnum, "enum"},
	}
	innerClassFlagNames = []flagName{
		{classfile.AccPublic, "public"},
		{classfile.AccPrivate, "private"},
		{classfile.AccProtected, "protected"},
		{classfile.AccStatic, "static"},
		{classfile.AccFinal, "final"},
		{classfile.AccInterface, "interface"},
		{classfile.AccAbstract, "abstract"},
		{classfile.AccSynthetic, "synthetic"},
		{classfile.AccAnnotation, "annotation"},
		{classfile.AccEnum, "enum"},
	}
	fieldFlagNames = []flagName{
		{classfile.AccPublic, "public"},
		{classfile.AccPrivate, "private"},
		{classfile.AccProtected, "protected"},
		{classfile.AccStatic, "static"},
		{classfile.AccFinal, "final"},
		{classfile.AccVolatile, "volatile"},
		{classfile.AccTransient, "transient"},
		{classfile.AccSynthetic, "synthetic"},
		{classfile.AccEnum, "enum"},
	}
	methodFlagNames = []flagName{
		{classfile.AccPublic, "public"},
		{classfile.AccPrivate, "private"},
		{classfile.AccProtected, "protected"},
		{classfile.AccStatic, "static"},
		{classfile.AccFinal, "final"},
		{classfile.AccSynchronized, "synchronized"},
		{classfile.AccBridge, "bridge"},
		{classfile.AccVarargs, "varargs"},
		{classfile.AccNative, "native"},
		{classfile.AccAbstract, "abstract"},
		{classfile.AccStrict, "strict"},
		{classfile.AccSynthetic, "synthetic"},
	}
	parameterFlagNames = []flagName{
		{classfile.AccFinal, "final"},
		{classfile.AccSynthetic, "synthetic"},
		{classfile.AccMandated, "mandated"},
	}
	moduleFlagNames = []flagName{
		{classfile.AccOpen, "open"},
		{classfile.AccSynthetic, "synthetic"},
		{classfile.AccMandated, "mandated"},
	}
	requiresFlagNames = []flagName{
		{classfile.AccTransitive, "transitive"},
		{classfile.AccStaticPhase, "static"},
		{classfile.AccSynthetic, "synthetic"},
		{classfile.AccMandated, "mandated"},
	}
	directiveFlagNames = []flagName{
		{classfile.AccSynthetic, "synthetic"},
		{classfile.AccMandated, "mandated"},
	}
)

// flagString renders the set flags in table order, each followed by a
// space, so the result can be put directly in front of a keyword.
func flagString(flags classfile.AccessFlags, names []flagName) string {
	var sb strings.Builder
	for _, fn := range names {
		if flags&fn.flag != 0 {
			sb.WriteString(fn.name)
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}
