package disasm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dhamidi/jdis/internal/classtest"
)

func TestQuoteName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Foo", "Foo"},
		{"java/lang/Object", "java/lang/Object"},
		{"$x_1", "$x_1"},
		{"Foo;", `"Foo;"`},
		{"<init>", `"<init>"`},
		{"()V", `"()V"`},
		{"", `""`},
		{"a\"b\\c", `"a\"b\\c"`},
		{"line\nbreak\t", `"line\nbreak\t"`},
		{"\x01", `"\u0001"`},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, quoteName(tt.in), "quoteName(%q)", tt.in)
	}
}

func TestShortName(t *testing.T) {
	b := classtest.New("com/example/Hello", "java/lang/Object")
	p := newPrinter(parse(t, b), DefaultOptions(), nil)

	require.Equal(t, "Other", p.shortName("com/example/Other"))
	require.Equal(t, "com/example/sub/Other", p.shortName("com/example/sub/Other"))
	require.Equal(t, "java/lang/String", p.shortName("java/lang/String"))
	require.Equal(t, "com/example/", p.shortName("com/example/"))
}

func TestConstantRendering(t *testing.T) {
	b := classtest.New("com/example/Hello", "java/lang/Object")
	run := b.Methodref("com/example/Other", "run", "()V")
	tests := []struct {
		index uint16
		want  string
	}{
		{b.Integer(5), "int 5"},
		{b.Float(1.5), "float 1.5f"},
		{b.Long(5), "long 5l"},
		{b.Double(2.5), "double 2.5d"},
		{b.Raw(4, u4(0x7fc00000)), "float NaNf"},
		{b.Raw(4, u4(0x7fc00001)), "float NaN(0x7fc00001)f"},
		{b.Double(math.Float64frombits(0x7ff8000000000000)), "double NaNd"},
		{b.Double(math.Float64frombits(0x7ff8000000000001)), "double NaN(0x7ff8000000000001)d"},
		{b.Double(math.Inf(-1)), "double -Infinityd"},
		{b.Class("com/example/Other"), "class Other"},
		{b.Class("java/lang/String"), "class java/lang/String"},
		{b.Class("[Ljava/lang/String;"), `class "[Ljava/lang/String;"`},
		{b.String("hi"), `String "hi"`},
		{b.Fieldref("com/example/Hello", "x", "I"), "Field x:I"},
		{run, `Method Other.run:"()V"`},
		{b.InterfaceMethodref("java/util/List", "size", "()I"), `InterfaceMethod java/util/List.size:"()I"`},
		{b.NameAndType("<init>", "()V"), `NameAndType "<init>":"()V"`},
		{b.MethodType("()V"), `MethodType "()V"`},
		{b.MethodHandle(6, run), `MethodHandle REF_invokeStatic:Method Other.run:"()V"`},
		{b.Module("java.base"), "Module java.base"},
		{b.Package("com/example"), "Package com/example"},
	}

	p := newPrinter(parse(t, b), DefaultOptions(), nil)
	for _, tt := range tests {
		require.Equal(t, tt.want, p.constant(tt.index), "constant(#%d)", tt.index)
	}
	require.Empty(t, p.issues)
}

func TestConstantHexLiterals(t *testing.T) {
	b := classtest.New("Hex", "java/lang/Object")
	pos := b.Integer(255)
	neg := b.Integer(-16)
	p := newPrinter(parse(t, b), DefaultOptions().With(PrintHex), nil)

	require.Equal(t, "int 0xff", p.constant(pos))
	require.Equal(t, "int -0x10", p.constant(neg))
}

func TestConstantIssuesAreRecordedOnce(t *testing.T) {
	b := classtest.New("Hello", "java/lang/Object")
	bad := b.Raw(8, u2(500))
	p := newPrinter(parse(t, b), DefaultOptions(), nil)

	require.Equal(t, "#300", p.constant(300))
	require.Equal(t, "#300", p.constant(300))
	require.Equal(t, "String #500", p.constant(bad))
	require.Len(t, p.issues, 2)
	require.Equal(t, uint16(300), p.issues[0].Index)
	require.Equal(t, uint16(500), p.issues[1].Index)
	require.EqualError(t, p.issues[0], "constant #300: unresolved constant reference")
}

func TestSharedBootstrapArgumentsStayBounded(t *testing.T) {
	const depth = 40
	b := classtest.New("Deep", "java/lang/Object")
	mh := b.MethodHandle(6, b.Methodref("Deep", "bsm", "()I"))
	leaf := b.Integer(1)
	dyns := make([]uint16, depth)
	for i := range dyns {
		dyns[i] = b.Dynamic(uint16(i), "c", "I")
	}
	var table [][]byte
	for i := range dyns {
		arg := leaf
		if i > 0 {
			arg = dyns[i-1]
		}
		table = append(table, u2(mh), u2(2), u2(arg), u2(arg))
	}
	b.ClassAttr(b.Attr("BootstrapMethods", u2(depth), concat(table...)))
	code := concat([]byte{0x13}, u2(dyns[depth-1]), []byte{0x57, 0xb1})
	b.Method(0x0008, "run", "()V", b.Code(1, 0, code, nil))

	got, issues := render(t, b, DefaultOptions())
	require.Less(t, len(got), 1<<20)
	require.Contains(t, got, "} // end Class Deep\n")
	require.NotEmpty(t, issues)
	for _, issue := range issues {
		require.Contains(t, issue.Reason, "exceeds")
	}

	p := newPrinter(parse(t, b), DefaultOptions(), nil)
	require.Equal(t, `Dynamic REF_invokeStatic:Method bsm:"()I":c:I { int 1, int 1 }`, p.constant(dyns[0]))
}
