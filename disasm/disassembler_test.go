package disasm

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dhamidi/jdis/internal/classtest"
)

func writeClass(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestRunContinuesAfterFailure(t *testing.T) {
	dir := t.TempDir()
	hello, _ := helloClass()
	bad := writeClass(t, dir, "Bad.class", []byte("nope"))
	good := writeClass(t, dir, "Hello.class", hello.Bytes())

	var out strings.Builder
	err := New(DefaultOptions()).Run([]string{bad, good}, &out)

	var batch *BatchError
	require.ErrorAs(t, err, &batch)
	require.Equal(t, []string{bad}, batch.Failed)
	require.Contains(t, out.String(), "} // end Class Hello\n")
}

func TestRunAllGood(t *testing.T) {
	dir := t.TempDir()
	hello, _ := helloClass()
	a := writeClass(t, dir, "A.class", hello.Bytes())
	b := writeClass(t, dir, "B.class", hello.Bytes())

	var out strings.Builder
	require.NoError(t, New(DefaultOptions()).Run([]string{a, b}, &out))
	require.Equal(t, 2, strings.Count(out.String(), "} // end Class Hello\n"))
}

func TestDisassembleFileSourceLines(t *testing.T) {
	dir := t.TempDir()
	b := classtest.New("Hello", "java/lang/Object")
	lines := b.Attr("LineNumberTable", u2(1), u2(0), u2(3))
	b.Method(0, "f", "()V", b.Code(0, 1, []byte{0xb1}, nil, lines))
	b.ClassAttr(b.Attr("SourceFile", u2(b.Utf8("Hello.java"))))
	path := writeClass(t, dir, "Hello.class", b.Bytes())

	src := "class Hello {\n  void f() {\n    System.out.println();\n  }\n}\n"
	d := New(DefaultOptions().With(PrintSourceLines))

	got, err := d.DisassembleFile(path)
	require.NoError(t, err)
	require.Contains(t, got, "\t\t// line 3\n\t\treturn;\n")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "Hello.java"), []byte(src), 0o644))
	got, err = d.DisassembleFile(path)
	require.NoError(t, err)
	require.Contains(t, got, "\t\t// line 3: System.out.println();\n\t\treturn;\n")
}

func TestDisassembleFileLongSourceLine(t *testing.T) {
	dir := t.TempDir()
	b := classtest.New("Wide", "java/lang/Object")
	lines := b.Attr("LineNumberTable", u2(1), u2(0), u2(3))
	b.Method(0, "f", "()V", b.Code(0, 1, []byte{0xb1}, nil, lines))
	b.ClassAttr(b.Attr("SourceFile", u2(b.Utf8("Wide.java"))))
	path := writeClass(t, dir, "Wide.class", b.Bytes())

	src := "// " + strings.Repeat("x", 200<<10) + "\nclass Wide {\n  void f() { return; }\n}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Wide.java"), []byte(src), 0o644))

	got, err := New(DefaultOptions().With(PrintSourceLines)).DisassembleFile(path)
	require.NoError(t, err)
	require.Contains(t, got, "\t\t// line 3: void f() { return; }\n\t\treturn;\n")
}

func TestDisassembleFileLocalVars(t *testing.T) {
	dir := t.TempDir()
	b := classtest.New("Vars", "java/lang/Object")
	vars := b.Attr("LocalVariableTable", u2(1), u2(0), u2(2), u2(b.Utf8("args")), u2(b.Utf8("[Ljava/lang/String;")), u2(0))
	b.Method(0x0009, "main", "([Ljava/lang/String;)V", b.Code(0, 1, []byte{0x00, 0xb1}, nil, vars))
	path := writeClass(t, dir, "Vars.class", b.Bytes())

	got, err := New(DefaultOptions().With(PrintLocalVars)).DisassembleFile(path)
	require.NoError(t, err)
	require.Contains(t, got, "\t\tvar 0; // java.lang.String[] args\n\t\tnop;\n\t\treturn;\n\t\tendvar 0;\n\t}\n")
}

func TestDisassembleFileParseError(t *testing.T) {
	dir := t.TempDir()
	path := writeClass(t, dir, "Short.class", []byte{0xca, 0xfe})

	got, err := New(DefaultOptions()).DisassembleFile(path)
	require.Error(t, err)
	require.Empty(t, got)
	require.Contains(t, err.Error(), path)
}
