package classfile

import "fmt"

type CodeAttribute struct {
	MaxStack       uint16
	MaxLocals      uint16
	Code           []byte
	ExceptionTable []ExceptionTableEntry
	Attributes     Attributes
}

func (a *CodeAttribute) AttributeName() string { return "Code" }

// ExceptionTableEntry is one trap: [StartPC, EndPC) is protected and control
// transfers to HandlerPC. CatchType 0 catches everything.
type ExceptionTableEntry struct {
	StartPC   uint16
	EndPC     uint16
	HandlerPC uint16
	CatchType uint16
}

func decodeCode(r *reader, cp ConstantPool) (Attribute, error) {
	code := &CodeAttribute{
		MaxStack:  r.readU2(),
		MaxLocals: r.readU2(),
	}
	codeLength := r.readU4()
	if r.err != nil {
		return nil, r.err
	}
	code.Code = r.readBytes(int(codeLength))

	count := r.readU2()
	code.ExceptionTable = make([]ExceptionTableEntry, 0, count)
	for i := uint16(0); i < count && r.err == nil; i++ {
		start := r.offset()
		e := ExceptionTableEntry{
			StartPC:   r.readU2(),
			EndPC:     r.readU2(),
			HandlerPC: r.readU2(),
			CatchType: r.readU2(),
		}
		if r.err == nil && (e.StartPC >= e.EndPC || int(e.EndPC) > len(code.Code) || int(e.HandlerPC) >= len(code.Code)) {
			return nil, &FormatError{
				Offset: start,
				Msg:    fmt.Sprintf("exception table entry %d: range [%d, %d) handler %d outside code of length %d", i, e.StartPC, e.EndPC, e.HandlerPC, len(code.Code)),
			}
		}
		code.ExceptionTable = append(code.ExceptionTable, e)
	}
	if r.err != nil {
		return nil, r.err
	}

	attrs, err := readAttributes(r, cp)
	if err != nil {
		return nil, err
	}
	code.Attributes = attrs
	return code, nil
}

// LineNumbers merges every LineNumberTable attached to the code body.
func (a *CodeAttribute) LineNumbers() []LineNumberEntry {
	var out []LineNumberEntry
	for i := range a.Attributes {
		if lnt, ok := a.Attributes[i].Parsed.(*LineNumberTableAttribute); ok {
			out = append(out, lnt.LineNumberTable...)
		}
	}
	return out
}

// LocalVariables merges every LocalVariableTable (types == false) or
// LocalVariableTypeTable (types == true) attached to the code body.
func (a *CodeAttribute) LocalVariables(types bool) []LocalVariableEntry {
	var out []LocalVariableEntry
	for i := range a.Attributes {
		if lvt, ok := a.Attributes[i].Parsed.(*LocalVariableTableAttribute); ok && lvt.Types == types {
			out = append(out, lvt.LocalVariableTable...)
		}
	}
	return out
}

func (a *CodeAttribute) StackMap() *StackMapTableAttribute {
	smt, _ := Find[*StackMapTableAttribute](a.Attributes)
	return smt
}

type LineNumberTableAttribute struct {
	LineNumberTable []LineNumberEntry
}

type LineNumberEntry struct {
	StartPC    uint16
	LineNumber uint16
}

func (a *LineNumberTableAttribute) AttributeName() string { return "LineNumberTable" }

func decodeLineNumberTable(r *reader, _ ConstantPool) (Attribute, error) {
	count := r.readU2()
	a := &LineNumberTableAttribute{LineNumberTable: make([]LineNumberEntry, 0, count)}
	for i := uint16(0); i < count && r.err == nil; i++ {
		a.LineNumberTable = append(a.LineNumberTable, LineNumberEntry{
			StartPC:    r.readU2(),
			LineNumber: r.readU2(),
		})
	}
	return a, nil
}

// LocalVariableTableAttribute holds either a LocalVariableTable or, when
// Types is set, a LocalVariableTypeTable whose DescriptorIndex entries are
// generic signatures.
type LocalVariableTableAttribute struct {
	Types              bool
	LocalVariableTable []LocalVariableEntry
}

type LocalVariableEntry struct {
	StartPC         uint16
	Length          uint16
	NameIndex       uint16
	DescriptorIndex uint16
	Index           uint16
}

func (e LocalVariableEntry) EndPC() int {
	return int(e.StartPC) + int(e.Length)
}

func (a *LocalVariableTableAttribute) AttributeName() string {
	if a.Types {
		return "LocalVariableTypeTable"
	}
	return "LocalVariableTable"
}

func localVariableDecoder(types bool) attributeDecoder {
	return func(r *reader, _ ConstantPool) (Attribute, error) {
		count := r.readU2()
		a := &LocalVariableTableAttribute{Types: types, LocalVariableTable: make([]LocalVariableEntry, 0, count)}
		for i := uint16(0); i < count && r.err == nil; i++ {
			a.LocalVariableTable = append(a.LocalVariableTable, LocalVariableEntry{
				StartPC:         r.readU2(),
				Length:          r.readU2(),
				NameIndex:       r.readU2(),
				DescriptorIndex: r.readU2(),
				Index:           r.readU2(),
			})
		}
		return a, nil
	}
}

// Verification type tags used in stack-map frames.
const (
	VerifyTop               uint8 = 0
	VerifyInteger           uint8 = 1
	VerifyFloat             uint8 = 2
	VerifyDouble            uint8 = 3
	VerifyLong              uint8 = 4
	VerifyNull              uint8 = 5
	VerifyUninitializedThis uint8 = 6
	VerifyObject            uint8 = 7
	VerifyUninitialized     uint8 = 8
)

// VerificationType is one slot of a stack-map frame. Index is the class
// index for VerifyObject and the offset of the creating new instruction for
// VerifyUninitialized.
type VerificationType struct {
	Tag   uint8
	Index uint16
}

// Stack-map frame kinds, derived from the frame type byte.
const (
	FrameSame = iota
	FrameSameLocals1StackItem
	FrameSameLocals1StackItemExtended
	FrameChop
	FrameSameExtended
	FrameAppend
	FrameFull
)

type StackMapFrame struct {
	FrameType   uint8
	OffsetDelta uint16
	Locals      []VerificationType
	Stack       []VerificationType
}

func (f *StackMapFrame) Kind() int {
	switch t := f.FrameType; {
	case t <= 63:
		return FrameSame
	case t <= 127:
		return FrameSameLocals1StackItem
	case t == 247:
		return FrameSameLocals1StackItemExtended
	case t >= 248 && t <= 250:
		return FrameChop
	case t == 251:
		return FrameSameExtended
	case t >= 252 && t <= 254:
		return FrameAppend
	default:
		return FrameFull
	}
}

// Chopped is the number of locals removed by a chop frame.
func (f *StackMapFrame) Chopped() int {
	if f.Kind() != FrameChop {
		return 0
	}
	return 251 - int(f.FrameType)
}

type StackMapTableAttribute struct {
	Entries []StackMapFrame
}

func (a *StackMapTableAttribute) AttributeName() string { return "StackMapTable" }

// PCs returns the bytecode offset of every frame. The first frame sits at
// its offset delta, each later one at previous + delta + 1.
func (a *StackMapTableAttribute) PCs() []int {
	pcs := make([]int, len(a.Entries))
	pc := -1
	for i, f := range a.Entries {
		pc += int(f.OffsetDelta) + 1
		pcs[i] = pc
	}
	return pcs
}

func decodeStackMapTable(r *reader, _ ConstantPool) (Attribute, error) {
	count := r.readU2()
	a := &StackMapTableAttribute{Entries: make([]StackMapFrame, 0, count)}
	for i := uint16(0); i < count && r.err == nil; i++ {
		f := StackMapFrame{FrameType: r.readU1()}
		t := f.FrameType
		switch {
		case t <= 63:
			f.OffsetDelta = uint16(t)
		case t <= 127:
			f.OffsetDelta = uint16(t - 64)
			f.Stack = readVerificationTypes(r, 1)
		case t < 247:
			r.fail("stack map frame %d: reserved frame type %d", i, t)
		case t == 247:
			f.OffsetDelta = r.readU2()
			f.Stack = readVerificationTypes(r, 1)
		case t <= 251:
			f.OffsetDelta = r.readU2()
		case t <= 254:
			f.OffsetDelta = r.readU2()
			f.Locals = readVerificationTypes(r, int(t)-251)
		default:
			f.OffsetDelta = r.readU2()
			f.Locals = readVerificationTypes(r, int(r.readU2()))
			f.Stack = readVerificationTypes(r, int(r.readU2()))
		}
		a.Entries = append(a.Entries, f)
	}
	return a, nil
}

func readVerificationTypes(r *reader, n int) []VerificationType {
	out := make([]VerificationType, 0, n)
	for i := 0; i < n && r.err == nil; i++ {
		vt := VerificationType{Tag: r.readU1()}
		switch {
		case vt.Tag == VerifyObject || vt.Tag == VerifyUninitialized:
			vt.Index = r.readU2()
		case vt.Tag > VerifyUninitialized:
			r.fail("unknown verification type %d", vt.Tag)
		}
		out = append(out, vt)
	}
	return out
}
