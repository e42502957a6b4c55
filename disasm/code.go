package disasm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dhamidi/jdis/classfile"
)

// site collects everything printed in front of the instruction at one pc.
type site struct {
	endTries []int
	catches  []int
	tries    []int
	frame    *classfile.StackMapFrame
	lines    []uint16
	endVars  []classfile.LocalVariableEntry
	vars     []classfile.LocalVariableEntry
}

// codeIndex is built for one method right before it is printed.
type codeIndex struct {
	labels map[int]bool
	sites  map[int]*site
}

func (ci *codeIndex) at(pc int) *site {
	s, ok := ci.sites[pc]
	if !ok {
		s = &site{}
		ci.sites[pc] = s
	}
	return s
}

// indexCode marks every branch target as a label and files the trap,
// stack map, line number and local variable tables under their pcs.
// Table entries outside the code array are left out.
func indexCode(code *classfile.CodeAttribute, ins []classfile.Instruction) *codeIndex {
	ci := &codeIndex{labels: map[int]bool{}, sites: map[int]*site{}}
	for i := range ins {
		for _, t := range ins[i].Targets() {
			ci.labels[t] = true
		}
	}

	n := len(code.Code)
	for i, trap := range code.ExceptionTable {
		start, end, handler := ci.at(int(trap.StartPC)), ci.at(int(trap.EndPC)), ci.at(int(trap.HandlerPC))
		start.tries = append(start.tries, i)
		end.endTries = append(end.endTries, i)
		handler.catches = append(handler.catches, i)
	}

	if smt := code.StackMap(); smt != nil {
		for i, pc := range smt.PCs() {
			if pc >= n {
				break
			}
			ci.at(pc).frame = &smt.Entries[i]
			for _, vts := range [][]classfile.VerificationType{smt.Entries[i].Locals, smt.Entries[i].Stack} {
				for _, vt := range vts {
					if vt.Tag == classfile.VerifyUninitialized && int(vt.Index) < n {
						ci.labels[int(vt.Index)] = true
					}
				}
			}
		}
	}

	for _, ln := range code.LineNumbers() {
		if int(ln.StartPC) < n {
			s := ci.at(int(ln.StartPC))
			s.lines = append(s.lines, ln.LineNumber)
		}
	}

	for _, lv := range code.LocalVariables(false) {
		if int(lv.StartPC) >= n || lv.EndPC() > n {
			continue
		}
		start, end := ci.at(int(lv.StartPC)), ci.at(lv.EndPC())
		start.vars = append(start.vars, lv)
		end.endVars = append(end.endVars, lv)
	}
	return ci
}

func (p *printer) printCode(code *classfile.CodeAttribute) {
	ins := classfile.Instructions(code.Code)
	ci := indexCode(code, ins)
	if p.opts.Has(Debug) {
		p.log.Debugf("decoded %d instructions from %d bytes, %d labels", len(ins), len(code.Code), len(ci.labels))
	}

	p.line("\t{")
	for _, in := range ins {
		if s, ok := ci.sites[in.PC]; ok {
			p.printSite(code, s)
		}
		p.printInstruction(in, ci)
	}
	if s, ok := ci.sites[len(code.Code)]; ok {
		p.printSite(code, s)
	}
	if p.opts.Has(PrintCodeDetails) {
		p.printCodeDetails(code)
	}
	p.printAnnotations("\t\t", code.Attributes)
	for _, u := range code.Attributes.Unknown() {
		p.line("\t\t" + rawAttr(u) + ";")
	}
	p.line("\t}")
}

func (p *printer) pcRef(pc int) string {
	if p.opts.labels() {
		return "L" + strconv.Itoa(pc)
	}
	return strconv.Itoa(pc)
}

func (p *printer) printSite(code *classfile.CodeAttribute, s *site) {
	for _, t := range s.endTries {
		p.printf("\tendtry t%d;\n", t)
	}
	for _, t := range s.catches {
		p.printf("\tcatch t%d %s;\n", t, p.catchType(code.ExceptionTable[t].CatchType))
	}
	for _, t := range s.tries {
		p.printf("\ttry t%d;\n", t)
	}
	if s.frame != nil {
		p.printFrame(s.frame)
	}
	if p.opts.Has(PrintSourceLines) {
		for _, n := range s.lines {
			if src, ok := p.sourceLine(int(n)); ok {
				p.printf("\t\t// line %d: %s\n", n, strings.TrimSpace(src))
			} else {
				p.printf("\t\t// line %d\n", n)
			}
		}
	}
	if p.opts.Has(PrintLocalVars) {
		for _, lv := range s.endVars {
			p.printf("\t\tendvar %d;\n", lv.Index)
		}
		for _, lv := range s.vars {
			p.printf("\t\tvar %d; // %s\n", lv.Index, p.localVariable(lv))
		}
	}
}

func (p *printer) catchType(index uint16) string {
	if index == 0 {
		return "any"
	}
	return p.className(index)
}

// localVariable renders "<type> <name>" with the type in source form.
func (p *printer) localVariable(lv classfile.LocalVariableEntry) string {
	name := p.utf8(lv.NameIndex)
	desc, ok := p.cp.Utf8(lv.DescriptorIndex)
	if !ok {
		return p.utf8(lv.DescriptorIndex) + " " + name
	}
	if ft := classfile.ParseFieldDescriptor(desc); ft != nil {
		return ft.String() + " " + name
	}
	return quoteName(desc) + " " + name
}

var frameKindNames = map[int]string{
	classfile.FrameSame:                         "same",
	classfile.FrameSameLocals1StackItem:         "stack1",
	classfile.FrameSameLocals1StackItemExtended: "stack1_ex",
	classfile.FrameSameExtended:                 "same_ex",
	classfile.FrameAppend:                       "append",
	classfile.FrameFull:                         "full",
}

func (p *printer) printFrame(f *classfile.StackMapFrame) {
	kind := f.Kind()
	name := frameKindNames[kind]
	if kind == classfile.FrameChop {
		name = fmt.Sprintf("chop%d", f.Chopped())
	}
	p.printf("\t\tstack_frame_type %s;\n", name)
	if len(f.Locals) > 0 {
		p.printf("\t\tlocals_map %s;\n", p.verificationTypes(f.Locals))
	}
	if len(f.Stack) > 0 {
		p.printf("\t\tstack_map %s;\n", p.verificationTypes(f.Stack))
	}
}

var verificationTypeNames = [...]string{
	classfile.VerifyTop:               "top",
	classfile.VerifyInteger:           "int",
	classfile.VerifyFloat:             "float",
	classfile.VerifyDouble:            "double",
	classfile.VerifyLong:              "long",
	classfile.VerifyNull:              "null",
	classfile.VerifyUninitializedThis: "uninitialized_this",
	classfile.VerifyObject:            "class",
	classfile.VerifyUninitialized:     "uninitialized",
}

func (p *printer) verificationTypes(vts []classfile.VerificationType) string {
	parts := make([]string, len(vts))
	for i, vt := range vts {
		name := verificationTypeNames[vt.Tag]
		switch vt.Tag {
		case classfile.VerifyObject:
			if p.opts.Has(PrintCPIndices) {
				name += " " + unresolved(vt.Index)
			} else {
				name += " " + p.className(vt.Index)
			}
		case classfile.VerifyUninitialized:
			name += " " + p.pcRef(int(vt.Index))
		}
		parts[i] = name
	}
	return strings.Join(parts, ", ")
}

func (p *printer) printInstruction(in classfile.Instruction, ci *codeIndex) {
	prefix := ""
	switch {
	case p.opts.Has(PrintPC):
		prefix = strconv.Itoa(in.PC) + ":"
	case p.opts.labels() && ci.labels[in.PC]:
		prefix = "L" + strconv.Itoa(in.PC) + ":"
	}

	if in.Invalid {
		p.printf("\t%s\tbytecode %d;\n", prefix, uint8(in.Opcode))
		return
	}

	switch in.Opcode.Kind() {
	case classfile.OperandTableSwitch, classfile.OperandLookupSwitch:
		p.printSwitch(prefix, in)
		return
	}

	name := in.Opcode.Name()
	if in.Wide {
		name += "_w"
	}
	var sb strings.Builder
	sb.WriteString("\t")
	sb.WriteString(prefix)
	sb.WriteString("\t")
	sb.WriteString(name)
	operands, comment := p.instructionOperands(in)
	if operands != "" {
		sb.WriteByte(' ')
		sb.WriteString(operands)
	}
	sb.WriteByte(';')
	if comment != "" {
		sb.WriteString(" // ")
		sb.WriteString(comment)
	}
	p.line(sb.String())
}

var newArrayTypes = map[int32]string{
	4:  "boolean",
	5:  "char",
	6:  "float",
	7:  "double",
	8:  "byte",
	9:  "short",
	10: "int",
	11: "long",
}

// instructionOperands returns the operand text and, in index mode, the
// rendered constant for the trailing comment.
func (p *printer) instructionOperands(in classfile.Instruction) (string, string) {
	switch in.Opcode.Kind() {
	case classfile.OperandByte, classfile.OperandShort:
		return p.intLiteral(int64(in.Value)), ""
	case classfile.OperandLocal:
		return strconv.Itoa(int(in.Index)), ""
	case classfile.OperandIinc:
		return fmt.Sprintf("%d, %s", in.Index, p.intLiteral(int64(in.Value))), ""
	case classfile.OperandConst1, classfile.OperandConst2, classfile.OperandInvokeDynamic:
		return p.constantOperand(in.Index)
	case classfile.OperandInvokeInterface, classfile.OperandMultiANewArray:
		operand, comment := p.constantOperand(in.Index)
		return fmt.Sprintf("%s, %d", operand, in.Value), comment
	case classfile.OperandBranch2, classfile.OperandBranch4:
		return p.pcRef(in.Target), ""
	case classfile.OperandNewArray:
		if t, ok := newArrayTypes[in.Value]; ok {
			return t, ""
		}
		return strconv.Itoa(int(in.Value)), ""
	case classfile.OperandPrefixed:
		return classfile.Opcode(in.Value).String(), ""
	}
	return "", ""
}

func (p *printer) constantOperand(index uint16) (string, string) {
	if p.opts.Has(PrintCPIndices) {
		return unresolved(index), p.constant(index)
	}
	return p.constant(index), ""
}

func (p *printer) printSwitch(prefix string, in classfile.Instruction) {
	sw := in.Switch
	if in.Opcode == classfile.OpTableswitch {
		p.printf("\t%s\ttableswitch{ //%d to %d\n", prefix, sw.Low, sw.High)
	} else {
		p.printf("\t%s\tlookupswitch{ //%d\n", prefix, len(sw.Keys))
	}
	for i, key := range sw.Keys {
		p.printf("\t\t%s: %s;\n", p.intLiteral(int64(key)), p.pcRef(sw.Targets[i]))
	}
	p.printf("\t\tdefault: %s };\n", p.pcRef(sw.Default))
}

// printCodeDetails lists the raw tables of a code body as comments,
// including entries that point outside the code.
func (p *printer) printCodeDetails(code *classfile.CodeAttribute) {
	if len(code.ExceptionTable) > 0 {
		p.line("\t\t// exception table: trap from to target type")
		for i, t := range code.ExceptionTable {
			p.printf("\t\t//   t%d %d %d %d %s\n", i, t.StartPC, t.EndPC, t.HandlerPC, p.catchType(t.CatchType))
		}
	}
	if lines := code.LineNumbers(); len(lines) > 0 {
		p.line("\t\t// line numbers: pc line")
		for _, ln := range lines {
			p.printf("\t\t//   %d %d\n", ln.StartPC, ln.LineNumber)
		}
	}
	for _, types := range []bool{false, true} {
		vars := code.LocalVariables(types)
		if len(vars) == 0 {
			continue
		}
		if types {
			p.line("\t\t// local variable types: start length slot name signature")
		} else {
			p.line("\t\t// local variables: start length slot name descriptor")
		}
		for _, lv := range vars {
			p.printf("\t\t//   %d %d %d %s %s\n", lv.StartPC, lv.Length, lv.Index, p.utf8(lv.NameIndex), p.utf8(lv.DescriptorIndex))
		}
	}
}
