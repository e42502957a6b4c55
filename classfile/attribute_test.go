package classfile

import (
	"bytes"
	"errors"
	"testing"

	"github.com/dhamidi/jdis/internal/classtest"
)

var (
	u2     = classtest.U2
	u4     = classtest.U4
	concat = classtest.Concat
)

func parseBuilt(t *testing.T, b *classtest.Builder) *ClassFile {
	t.Helper()
	cf, err := Parse(bytes.NewReader(b.Bytes()))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return cf
}

func TestAnnotationAttributes(t *testing.T) {
	b := classtest.New("Foo", "java/lang/Object")
	deprecated := b.Utf8("Ljava/lang/Deprecated;")
	retention := b.Utf8("Ljava/lang/annotation/Retention;")
	policy := b.Utf8("Ljava/lang/annotation/RetentionPolicy;")
	value := b.Utf8("value")
	runtime := b.Utf8("RUNTIME")
	seven := b.Integer(7)

	visible := concat(u2(2),
		u2(deprecated), u2(0),
		u2(retention), u2(1), u2(value), []byte{'e'}, u2(policy), u2(runtime),
	)
	invisible := concat(u2(1),
		u2(b.Utf8("LMarker;")), u2(2),
		u2(value), []byte{'['}, u2(2), []byte{'I'}, u2(seven), []byte{'c'}, u2(b.Utf8("Ljava/lang/String;")),
		u2(b.Utf8("nested")), []byte{'@'}, u2(deprecated), u2(0),
	)
	b.ClassAttr(b.Attr("RuntimeVisibleAnnotations", visible))
	b.ClassAttr(b.Attr("RuntimeInvisibleAnnotations", invisible))
	b.ClassAttr(b.Attr("Deprecated"))

	cf := parseBuilt(t, b)

	vis := cf.Attributes.Annotations(true)
	if len(vis) != 2 {
		t.Fatalf("visible annotations = %d, want 2", len(vis))
	}
	if cf.ConstantPool.GetUtf8(vis[0].TypeIndex) != "Ljava/lang/Deprecated;" {
		t.Errorf("annotation type = %q", cf.ConstantPool.GetUtf8(vis[0].TypeIndex))
	}
	enum, ok := vis[1].ElementValuePairs[0].Value.(*EnumElementValue)
	if !ok || cf.ConstantPool.GetUtf8(enum.ConstNameIndex) != "RUNTIME" {
		t.Errorf("enum value = %+v", vis[1].ElementValuePairs[0].Value)
	}

	invis := cf.Attributes.Annotations(false)
	if len(invis) != 1 || len(invis[0].ElementValuePairs) != 2 {
		t.Fatalf("invisible annotations = %+v", invis)
	}
	arr, ok := invis[0].ElementValuePairs[0].Value.(*ArrayElementValue)
	if !ok || len(arr.Values) != 2 {
		t.Fatalf("array value = %+v", invis[0].ElementValuePairs[0].Value)
	}
	if c, ok := arr.Values[0].(*ConstElementValue); !ok || c.Tag != 'I' || c.ConstValueIndex != seven {
		t.Errorf("const value = %+v", arr.Values[0])
	}
	if arr.Values[1].ElementTag() != 'c' {
		t.Errorf("class value tag = %q", arr.Values[1].ElementTag())
	}
	if nested, ok := invis[0].ElementValuePairs[1].Value.(*AnnotationElementValue); !ok || nested.Annotation.TypeIndex != deprecated {
		t.Errorf("nested value = %+v", invis[0].ElementValuePairs[1].Value)
	}
	if !cf.Attributes.IsDeprecated() {
		t.Error("Expected IsDeprecated() to be true")
	}

	t.Run("unknown element tag", func(t *testing.T) {
		b := classtest.New("Foo", "java/lang/Object")
		b.ClassAttr(b.Attr("RuntimeVisibleAnnotations", u2(1), u2(b.Utf8("LA;")), u2(1), u2(b.Utf8("v")), []byte{'x'}, u2(0)))
		_, err := Parse(bytes.NewReader(b.Bytes()))
		var fe *FormatError
		if !errors.As(err, &fe) {
			t.Fatalf("err = %v, want FormatError", err)
		}
	})
}

func TestTypeAnnotationAttribute(t *testing.T) {
	b := classtest.New("Foo", "java/lang/Object")
	nonNull := b.Utf8("LNonNull;")
	body := concat(u2(3),
		// field type, path [type argument 0]
		[]byte{0x13, 1, 3, 0}, u2(nonNull), u2(0),
		// local variable with one range
		[]byte{0x40}, u2(1), u2(0), u2(5), u2(1), []byte{0}, u2(nonNull), u2(0),
		// cast with type argument 1
		[]byte{0x47}, u2(3), []byte{1}, []byte{0}, u2(nonNull), u2(0),
	)
	b.ClassAttr(b.Attr("RuntimeVisibleTypeAnnotations", body))
	cf := parseBuilt(t, b)

	tas := cf.Attributes.TypeAnnotations(true)
	if len(tas) != 3 {
		t.Fatalf("type annotations = %d, want 3", len(tas))
	}
	if _, ok := tas[0].Target.(EmptyTarget); !ok || len(tas[0].TargetPath) != 1 || tas[0].TargetPath[0].TypePathKind != PathTypeArgument {
		t.Errorf("field annotation = %+v", tas[0])
	}
	lv, ok := tas[1].Target.(LocalVarTarget)
	if !ok || len(lv.Table) != 1 || lv.Table[0].Length != 5 || lv.Table[0].Index != 1 {
		t.Errorf("local variable target = %+v", tas[1].Target)
	}
	if ta, ok := tas[2].Target.(TypeArgumentTarget); !ok || ta.Offset != 3 || ta.Index != 1 {
		t.Errorf("cast target = %+v", tas[2].Target)
	}
	if tas[2].TypeIndex != nonNull {
		t.Errorf("TypeIndex = %d, want %d", tas[2].TypeIndex, nonNull)
	}
	if got := TargetTypeName(0x47); got != "CAST" {
		t.Errorf("TargetTypeName(0x47) = %q", got)
	}
	if got := TargetTypeName(0x30); got != "TARGET_0x30" {
		t.Errorf("TargetTypeName(0x30) = %q", got)
	}
}

func TestCodeAttributes(t *testing.T) {
	b := classtest.New("Foo", "java/lang/Object")
	exc := b.Class("java/lang/Exception")
	code := []byte{0x03, 0x3c, 0xa7, 0x00, 0x03, 0x4c, 0xb1}
	stackMap := concat(u2(3),
		[]byte{5},
		[]byte{64 + 2, 7}, u2(exc),
		[]byte{255}, u2(0), u2(1), []byte{1}, u2(0),
	)
	lvt := concat(u2(1), u2(0), u2(7), u2(b.Utf8("i")), u2(b.Utf8("I")), u2(1))
	b.Method(0x0009, "f", "()V",
		b.Code(1, 2, code, []classtest.Trap{{0, 2, 5, exc}},
			b.Attr("StackMapTable", stackMap),
			b.Attr("LocalVariableTable", lvt),
			b.Attr("LocalVariableTypeTable", u2(0)),
		),
		b.Attr("MethodParameters", []byte{1}, u2(b.Utf8("arg")), u2(0x0010)),
		b.Attr("RuntimeVisibleParameterAnnotations", []byte{1}, u2(1), u2(b.Utf8("LA;")), u2(0)),
	)
	cf := parseBuilt(t, b)
	m := findMethod(cf, "f")
	c := m.Code()
	if c == nil {
		t.Fatal("Expected code attribute")
	}

	t.Run("exception table", func(t *testing.T) {
		if len(c.ExceptionTable) != 1 || c.ExceptionTable[0].HandlerPC != 5 || c.ExceptionTable[0].CatchType != exc {
			t.Errorf("ExceptionTable = %+v", c.ExceptionTable)
		}
	})

	t.Run("stack map", func(t *testing.T) {
		smt := c.StackMap()
		if smt == nil || len(smt.Entries) != 3 {
			t.Fatalf("StackMap() = %+v", smt)
		}
		pcs := smt.PCs()
		want := []int{5, 8, 9}
		for i := range want {
			if pcs[i] != want[i] {
				t.Errorf("PCs()[%d] = %d, want %d", i, pcs[i], want[i])
			}
		}
		if smt.Entries[1].Kind() != FrameSameLocals1StackItem || smt.Entries[1].Stack[0].Tag != VerifyObject || smt.Entries[1].Stack[0].Index != exc {
			t.Errorf("frame 1 = %+v", smt.Entries[1])
		}
		if smt.Entries[2].Kind() != FrameFull || len(smt.Entries[2].Locals) != 1 || len(smt.Entries[2].Stack) != 0 {
			t.Errorf("frame 2 = %+v", smt.Entries[2])
		}
	})

	t.Run("local variables", func(t *testing.T) {
		vars := c.LocalVariables(false)
		if len(vars) != 1 || vars[0].EndPC() != 7 || cf.ConstantPool.GetUtf8(vars[0].NameIndex) != "i" {
			t.Errorf("LocalVariables(false) = %+v", vars)
		}
		if len(c.LocalVariables(true)) != 0 {
			t.Errorf("LocalVariables(true) = %+v", c.LocalVariables(true))
		}
	})

	t.Run("parameters", func(t *testing.T) {
		params := m.Parameters()
		if len(params) != 1 || params[0].AccessFlags&AccFinal == 0 {
			t.Errorf("Parameters() = %+v", params)
		}
		pa := m.ParameterAnnotations(true)
		if len(pa) != 1 || len(pa[0]) != 1 {
			t.Errorf("ParameterAnnotations(true) = %+v", pa)
		}
		if m.ParameterAnnotations(false) != nil {
			t.Error("Expected no invisible parameter annotations")
		}
	})

	t.Run("chop and append frames", func(t *testing.T) {
		chop := StackMapFrame{FrameType: 249}
		if chop.Kind() != FrameChop || chop.Chopped() != 2 {
			t.Errorf("chop frame kind %d chopped %d", chop.Kind(), chop.Chopped())
		}
		if (&StackMapFrame{FrameType: 253}).Kind() != FrameAppend {
			t.Error("253 should be an append frame")
		}
		if (&StackMapFrame{FrameType: 247}).Kind() != FrameSameLocals1StackItemExtended {
			t.Error("247 should be same_locals_1_stack_item_extended")
		}
	})

	t.Run("reserved frame type", func(t *testing.T) {
		b := classtest.New("Foo", "java/lang/Object")
		b.Method(0x0009, "f", "()V", b.Code(0, 0, []byte{0xb1}, nil, b.Attr("StackMapTable", u2(1), []byte{200})))
		if _, err := Parse(bytes.NewReader(b.Bytes())); err == nil {
			t.Error("Expected error for reserved frame type")
		}
	})
}

func TestClassLevelAttributes(t *testing.T) {
	b := classtest.New("p/Outer", "java/lang/Object")
	inner := b.Class("p/Outer$Inner")
	b.ClassAttr(b.Attr("InnerClasses", u2(1), u2(inner), u2(b.This), u2(b.Utf8("Inner")), u2(0x0009)))
	b.ClassAttr(b.Attr("NestMembers", u2(1), u2(inner)))
	b.ClassAttr(b.Attr("PermittedSubclasses", u2(2), u2(inner), u2(b.Class("p/Other"))))
	b.ClassAttr(b.Attr("Preload", u2(1), u2(inner)))
	b.ClassAttr(b.Attr("EnclosingMethod", u2(b.Class("p/Host")), u2(0)))
	b.ClassAttr(b.Attr("Signature", u2(b.Utf8("Ljava/lang/Object;"))))
	b.ClassAttr(b.Attr("SourceDebugExtension", []byte("SMAP")))
	mh := b.MethodHandle(6, b.Methodref("p/Outer", "bsm", "()V"))
	b.ClassAttr(b.Attr("BootstrapMethods", u2(1), u2(mh), u2(1), u2(b.Integer(1))))
	b.ClassAttr(b.Attr("Record", u2(1), u2(b.Utf8("x")), u2(b.Utf8("I")),
		u2(1), b.Attr("Signature", u2(b.Utf8("TT;")))))
	cf := parseBuilt(t, b)

	classList := func(name string) []uint16 {
		for i := range cf.Attributes {
			if cl, ok := cf.Attributes[i].Parsed.(*ClassListAttribute); ok && cl.Name == name {
				return cl.Classes
			}
		}
		return nil
	}

	var ic []InnerClassEntry
	if a, ok := Find[*InnerClassesAttribute](cf.Attributes); ok {
		ic = a.Classes
	}
	if len(ic) != 1 || ic[0].InnerClassInfoIndex != inner || ic[0].OuterClassInfoIndex != cf.ThisClass || !ic[0].InnerClassAccessFlags.IsStatic() {
		t.Errorf("InnerClasses = %+v", ic)
	}
	if got := classList("NestMembers"); len(got) != 1 || got[0] != inner {
		t.Errorf("NestMembers = %v", got)
	}
	if got := classList("PermittedSubclasses"); len(got) != 2 {
		t.Errorf("PermittedSubclasses = %v", got)
	}
	if got := classList("Preload"); len(got) != 1 {
		t.Errorf("Preload = %v", got)
	}
	if em, ok := Find[*EnclosingMethodAttribute](cf.Attributes); !ok || em.MethodIndex != 0 {
		t.Errorf("EnclosingMethod = %+v", em)
	}
	if idx, ok := cf.Attributes.Signature(); !ok || cf.ConstantPool.GetUtf8(idx) != "Ljava/lang/Object;" {
		t.Errorf("Signature() = %d, %v", idx, ok)
	}
	if sde, ok := Find[*SourceDebugExtensionAttribute](cf.Attributes); !ok || sde.DebugExtension != "SMAP" {
		t.Errorf("SourceDebugExtension = %+v", sde)
	}
	if bsm := cf.BootstrapMethods(); len(bsm) != 1 || bsm[0].BootstrapMethodRef != mh || len(bsm[0].BootstrapArguments) != 1 {
		t.Errorf("BootstrapMethods() = %+v", bsm)
	}
	rec := cf.Record()
	if rec == nil || len(rec.Components) != 1 {
		t.Fatalf("Record() = %+v", rec)
	}
	if cf.ConstantPool.GetUtf8(rec.Components[0].NameIndex) != "x" || cf.ConstantPool.GetUtf8(rec.Components[0].DescriptorIndex) != "I" {
		t.Errorf("component = %+v", rec.Components[0])
	}
	if _, ok := rec.Components[0].Attributes.Signature(); !ok {
		t.Error("Expected component signature")
	}
}

func TestModuleAttribute(t *testing.T) {
	b := classtest.New("module-info", "")
	b.Flags = 0x8000
	name := b.Module("m.a")
	base := b.Module("java.base")
	pkg := b.Package("p/api")
	svc := b.Class("p/api/Service")
	impl := b.Class("p/impl/ServiceImpl")
	body := concat(
		u2(name), u2(0x0020), u2(b.Utf8("1.0")),
		u2(1), u2(base), u2(0x8000), u2(0),
		u2(1), u2(pkg), u2(0), u2(1), u2(b.Module("m.b")),
		u2(0),
		u2(1), u2(svc),
		u2(1), u2(svc), u2(1), u2(impl),
	)
	b.ClassAttr(b.Attr("Module", body))
	b.ClassAttr(b.Attr("ModulePackages", u2(1), u2(pkg)))
	b.ClassAttr(b.Attr("ModuleMainClass", u2(impl)))
	cf := parseBuilt(t, b)

	if !cf.IsModule() || cf.AccessFlags.IsInterface() {
		t.Error("Expected a module")
	}
	m := cf.Module()
	if m == nil {
		t.Fatal("Expected Module attribute")
	}
	if cf.ConstantPool.GetModuleName(m.ModuleNameIndex) != "m.a" || m.ModuleFlags&AccOpen == 0 {
		t.Errorf("module header = %+v", m)
	}
	if len(m.Requires) != 1 || m.Requires[0].RequiresFlags != AccMandated {
		t.Errorf("Requires = %+v", m.Requires)
	}
	if len(m.Exports) != 1 || len(m.Exports[0].ToIndex) != 1 || len(m.Opens) != 0 {
		t.Errorf("Exports = %+v Opens = %+v", m.Exports, m.Opens)
	}
	if len(m.Uses) != 1 || len(m.Provides) != 1 || m.Provides[0].ProvidesWithIndex[0] != impl {
		t.Errorf("Uses = %v Provides = %+v", m.Uses, m.Provides)
	}
	if mp, ok := Find[*ModulePackagesAttribute](cf.Attributes); !ok || len(mp.PackageIndex) != 1 {
		t.Errorf("ModulePackages = %+v", mp)
	}
	if mc, ok := Find[*ModuleMainClassAttribute](cf.Attributes); !ok || mc.MainClassIndex != impl {
		t.Errorf("ModuleMainClass = %+v", mc)
	}
}
