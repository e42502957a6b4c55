package classfile

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	ErrUnknownOpcode        = errors.New("unknown opcode")
	ErrTruncatedInstruction = errors.New("truncated instruction")
	ErrBranchTarget         = errors.New("branch target outside code")
)

type Opcode uint8

const (
	OpBipush          Opcode = 0x10
	OpSipush          Opcode = 0x11
	OpLdc             Opcode = 0x12
	OpLdcW            Opcode = 0x13
	OpLdc2W           Opcode = 0x14
	OpIload           Opcode = 0x15
	OpAload           Opcode = 0x19
	OpIstore          Opcode = 0x36
	OpAstore          Opcode = 0x3a
	OpIinc            Opcode = 0x84
	OpIfeq            Opcode = 0x99
	OpGoto            Opcode = 0xa7
	OpJsr             Opcode = 0xa8
	OpRet             Opcode = 0xa9
	OpTableswitch     Opcode = 0xaa
	OpLookupswitch    Opcode = 0xab
	OpReturn          Opcode = 0xb1
	OpGetstatic       Opcode = 0xb2
	OpInvokevirtual   Opcode = 0xb6
	OpInvokeinterface Opcode = 0xb9
	OpInvokedynamic   Opcode = 0xba
	OpNew             Opcode = 0xbb
	OpNewarray        Opcode = 0xbc
	OpWide            Opcode = 0xc4
	OpMultianewarray  Opcode = 0xc5
	OpGotoW           Opcode = 0xc8
	OpBreakpoint      Opcode = 0xca
	OpNonpriv         Opcode = 0xfe
	OpPriv            Opcode = 0xff
)

// OperandKind groups opcodes by the layout of their operands.
type OperandKind uint8

const (
	OperandNone OperandKind = iota
	OperandByte
	OperandShort
	OperandLocal
	OperandConst1
	OperandConst2
	OperandIinc
	OperandBranch2
	OperandBranch4
	OperandNewArray
	OperandInvokeInterface
	OperandInvokeDynamic
	OperandMultiANewArray
	OperandTableSwitch
	OperandLookupSwitch
	OperandWide
	OperandPrefixed
)

type opcodeInfo struct {
	name string
	kind OperandKind
}

var opcodeNames = [...]string{
	"nop", "aconst_null", "iconst_m1", "iconst_0", "iconst_1", "iconst_2", "iconst_3", "iconst_4",
	"iconst_5", "lconst_0", "lconst_1", "fconst_0", "fconst_1", "fconst_2", "dconst_0", "dconst_1",
	"bipush", "sipush", "ldc", "ldc_w", "ldc2_w", "iload", "lload", "fload",
	"dload", "aload", "iload_0", "iload_1", "iload_2", "iload_3", "lload_0", "lload_1",
	"lload_2", "lload_3", "fload_0", "fload_1", "fload_2", "fload_3", "dload_0", "dload_1",
	"dload_2", "dload_3", "aload_0", "aload_1", "aload_2", "aload_3", "iaload", "laload",
	"faload", "daload", "aaload", "baload", "caload", "saload", "istore", "lstore",
	"fstore", "dstore", "astore", "istore_0", "istore_1", "istore_2", "istore_3", "lstore_0",
	"lstore_1", "lstore_2", "lstore_3", "fstore_0", "fstore_1", "fstore_2", "fstore_3", "dstore_0",
	"dstore_1", "dstore_2", "dstore_3", "astore_0", "astore_1", "astore_2", "astore_3", "iastore",
	"lastore", "fastore", "dastore", "aastore", "bastore", "castore", "sastore", "pop",
	"pop2", "dup", "dup_x1", "dup_x2", "dup2", "dup2_x1", "dup2_x2", "swap",
	"iadd", "ladd", "fadd", "dadd", "isub", "lsub", "fsub", "dsub",
	"imul", "lmul", "fmul", "dmul", "idiv", "ldiv", "fdiv", "ddiv",
	"irem", "lrem", "frem", "drem", "ineg", "lneg", "fneg", "dneg",
	"ishl", "lshl", "ishr", "lshr", "iushr", "lushr", "iand", "land",
	"ior", "lor", "ixor", "lxor", "iinc", "i2l", "i2f", "i2d",
	"l2i", "l2f", "l2d", "f2i", "f2l", "f2d", "d2i", "d2l",
	"d2f", "i2b", "i2c", "i2s", "lcmp", "fcmpl", "fcmpg", "dcmpl",
	"dcmpg", "ifeq", "ifne", "iflt", "ifge", "ifgt", "ifle", "if_icmpeq",
	"if_icmpne", "if_icmplt", "if_icmpge", "if_icmpgt", "if_icmple", "if_acmpeq", "if_acmpne", "goto",
	"jsr", "ret", "tableswitch", "lookupswitch", "ireturn", "lreturn", "freturn", "dreturn",
	"areturn", "return", "getstatic", "putstatic", "getfield", "putfield", "invokevirtual", "invokespecial",
	"invokestatic", "invokeinterface", "invokedynamic", "new", "newarray", "anewarray", "arraylength", "athrow",
	"checkcast", "instanceof", "monitorenter", "monitorexit", "wide", "multianewarray", "ifnull", "ifnonnull",
	"goto_w", "jsr_w", "breakpoint",
}

var opcodeTable [256]opcodeInfo

func init() {
	for i, name := range opcodeNames {
		opcodeTable[i] = opcodeInfo{name: name}
	}
	opcodeTable[OpNonpriv] = opcodeInfo{name: "nonpriv", kind: OperandPrefixed}
	opcodeTable[OpPriv] = opcodeInfo{name: "priv", kind: OperandPrefixed}

	setKind := func(kind OperandKind, ops ...Opcode) {
		for _, op := range ops {
			opcodeTable[op].kind = kind
		}
	}
	setKind(OperandByte, OpBipush)
	setKind(OperandShort, OpSipush)
	setKind(OperandConst1, OpLdc)
	setKind(OperandConst2, OpLdcW, OpLdc2W, 0xb2, 0xb3, 0xb4, 0xb5, 0xb6, 0xb7, 0xb8, OpNew, 0xbd, 0xc0, 0xc1)
	setKind(OperandLocal, OpRet)
	for op := OpIload; op <= OpAload; op++ {
		setKind(OperandLocal, op)
	}
	for op := OpIstore; op <= OpAstore; op++ {
		setKind(OperandLocal, op)
	}
	setKind(OperandIinc, OpIinc)
	for op := OpIfeq; op <= OpJsr; op++ {
		setKind(OperandBranch2, op)
	}
	setKind(OperandBranch2, 0xc6, 0xc7)
	setKind(OperandBranch4, OpGotoW, 0xc9)
	setKind(OperandNewArray, OpNewarray)
	setKind(OperandInvokeInterface, OpInvokeinterface)
	setKind(OperandInvokeDynamic, OpInvokedynamic)
	setKind(OperandMultiANewArray, OpMultianewarray)
	setKind(OperandTableSwitch, OpTableswitch)
	setKind(OperandLookupSwitch, OpLookupswitch)
	setKind(OperandWide, OpWide)
}

func (op Opcode) Name() string {
	return opcodeTable[op].name
}

func (op Opcode) Kind() OperandKind {
	return opcodeTable[op].kind
}

func (op Opcode) Known() bool {
	return opcodeTable[op].name != ""
}

func (op Opcode) String() string {
	if op.Known() {
		return op.Name()
	}
	return fmt.Sprintf("bytecode %d", uint8(op))
}

// Switch is the decoded operand block of tableswitch or lookupswitch.
// For tableswitch Keys runs from Low to High.
type Switch struct {
	Padding int
	Default int
	Low     int32
	High    int32
	Keys    []int32
	Targets []int
}

// Instruction is one decoded bytecode instruction. Which operand fields
// are meaningful depends on Opcode.Kind().
type Instruction struct {
	PC     int
	Opcode Opcode
	Length int
	// Wide is set when the instruction was prefixed by wide; Opcode is then
	// the modified opcode.
	Wide bool
	// Invalid marks a placeholder for an unknown or truncated opcode.
	Invalid bool
	// Index is a constant pool index or a local variable slot.
	Index uint16
	// Value is the immediate operand: bipush/sipush value, iinc delta,
	// newarray type, invokeinterface count, multianewarray dimensions, or
	// the sub-opcode of nonpriv/priv.
	Value  int32
	Target int
	Switch *Switch
}

// Targets returns every pc the instruction may transfer control to.
func (in *Instruction) Targets() []int {
	if in.Invalid {
		return nil
	}
	switch in.Opcode.Kind() {
	case OperandBranch2, OperandBranch4:
		return []int{in.Target}
	case OperandTableSwitch, OperandLookupSwitch:
		out := make([]int, 0, len(in.Switch.Targets)+1)
		out = append(out, in.Switch.Targets...)
		return append(out, in.Switch.Default)
	}
	return nil
}

type codeCursor struct {
	code []byte
	pos  int
	err  error
}

func (c *codeCursor) need(n int) bool {
	if c.err != nil {
		return false
	}
	if c.pos+n > len(c.code) {
		c.err = ErrTruncatedInstruction
		return false
	}
	return true
}

func (c *codeCursor) u1() uint8 {
	if !c.need(1) {
		return 0
	}
	v := c.code[c.pos]
	c.pos++
	return v
}

func (c *codeCursor) u2() uint16 {
	if !c.need(2) {
		return 0
	}
	v := binary.BigEndian.Uint16(c.code[c.pos:])
	c.pos += 2
	return v
}

func (c *codeCursor) s4() int32 {
	if !c.need(4) {
		return 0
	}
	v := int32(binary.BigEndian.Uint32(c.code[c.pos:]))
	c.pos += 4
	return v
}

func (c *codeCursor) target(pc int, offset int32) int {
	t := pc + int(offset)
	if c.err == nil && (t < 0 || t > len(c.code)) {
		c.err = fmt.Errorf("%w: %d", ErrBranchTarget, t)
	}
	return t
}

// DecodeInstruction decodes the instruction starting at pc. Switch operand
// blocks are aligned to a multiple of four from the start of code.
func DecodeInstruction(code []byte, pc int) (Instruction, error) {
	if pc < 0 || pc >= len(code) {
		return Instruction{}, ErrTruncatedInstruction
	}
	op := Opcode(code[pc])
	in := Instruction{PC: pc, Opcode: op}
	if !op.Known() {
		return in, fmt.Errorf("%w %d at pc %d", ErrUnknownOpcode, op, pc)
	}
	c := &codeCursor{code: code, pos: pc + 1}

	switch op.Kind() {
	case OperandByte:
		in.Value = int32(int8(c.u1()))
	case OperandShort:
		in.Value = int32(int16(c.u2()))
	case OperandLocal:
		in.Index = uint16(c.u1())
	case OperandConst1:
		in.Index = uint16(c.u1())
	case OperandConst2:
		in.Index = c.u2()
	case OperandIinc:
		in.Index = uint16(c.u1())
		in.Value = int32(int8(c.u1()))
	case OperandBranch2:
		in.Target = c.target(pc, int32(int16(c.u2())))
	case OperandBranch4:
		in.Target = c.target(pc, c.s4())
	case OperandNewArray:
		in.Value = int32(c.u1())
	case OperandInvokeInterface:
		in.Index = c.u2()
		in.Value = int32(c.u1())
		c.u1()
	case OperandInvokeDynamic:
		in.Index = c.u2()
		c.u2()
	case OperandMultiANewArray:
		in.Index = c.u2()
		in.Value = int32(c.u1())
	case OperandTableSwitch, OperandLookupSwitch:
		in.Switch = decodeSwitch(c, op, pc)
	case OperandWide:
		modified := Opcode(c.u1())
		switch modified.Kind() {
		case OperandLocal:
			in.Index = c.u2()
		case OperandIinc:
			in.Index = c.u2()
			in.Value = int32(int16(c.u2()))
		default:
			if c.err == nil {
				return in, fmt.Errorf("%w: wide %d at pc %d", ErrUnknownOpcode, modified, pc)
			}
		}
		in.Opcode = modified
		in.Wide = true
	case OperandPrefixed:
		in.Value = int32(c.u1())
	}
	if c.err != nil {
		return in, fmt.Errorf("%s at pc %d: %w", op.Name(), pc, c.err)
	}
	in.Length = c.pos - pc
	return in, nil
}

func decodeSwitch(c *codeCursor, op Opcode, pc int) *Switch {
	sw := &Switch{Padding: (4 - (pc+1)%4) % 4}
	if !c.need(sw.Padding) {
		return sw
	}
	c.pos += sw.Padding
	sw.Default = c.target(pc, c.s4())

	if op == OpTableswitch {
		sw.Low = c.s4()
		sw.High = c.s4()
		if c.err != nil {
			return sw
		}
		if sw.High < sw.Low {
			c.err = fmt.Errorf("tableswitch high %d below low %d", sw.High, sw.Low)
			return sw
		}
		n := int64(sw.High) - int64(sw.Low) + 1
		if !c.need(int(min(n, int64(len(c.code)))) * 4) {
			return sw
		}
		for i := int64(0); i < n; i++ {
			sw.Keys = append(sw.Keys, int32(int64(sw.Low)+i))
			sw.Targets = append(sw.Targets, c.target(pc, c.s4()))
		}
		return sw
	}

	npairs := c.s4()
	if c.err != nil {
		return sw
	}
	if npairs < 0 || !c.need(int(min(int64(npairs), int64(len(c.code))))*8) {
		if c.err == nil {
			c.err = fmt.Errorf("lookupswitch pair count %d", npairs)
		}
		return sw
	}
	for i := int32(0); i < npairs; i++ {
		sw.Keys = append(sw.Keys, c.s4())
		sw.Targets = append(sw.Targets, c.target(pc, c.s4()))
	}
	return sw
}

// Instructions decodes the whole code array. Undecodable bytes become
// one-byte Invalid placeholders so decoding always reaches the end.
func Instructions(code []byte) []Instruction {
	var out []Instruction
	for pc := 0; pc < len(code); {
		in, err := DecodeInstruction(code, pc)
		if err != nil {
			in = Instruction{PC: pc, Opcode: Opcode(code[pc]), Length: 1, Invalid: true}
		}
		out = append(out, in)
		pc += in.Length
	}
	return out
}
