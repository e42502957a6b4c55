package disasm

// Flag selects one rendering option.
type Flag uint16

const (
	// PrintConstantPool is the verbose mode: constant pool, bootstrap
	// methods and module packages are printed and interface headers keep
	// their abstract flag.
	PrintConstantPool Flag = 1 << iota
	// PrintCodeDetails lists the exception, line number and local variable
	// tables of each method after its instructions.
	PrintCodeDetails
	// PrintPC prefixes every instruction with its pc and prints branch
	// targets as pcs. It takes precedence over PrintLabels.
	PrintPC
	PrintLabels
	PrintCPIndices
	PrintSourceLines
	PrintHex
	PrintLocalVars
	// Debug traces decoding of every method and each constant issue.
	Debug
)

// Options is passed by value and never changes during a render.
type Options struct {
	Flags Flag
}

func DefaultOptions() Options {
	return Options{Flags: PrintLabels}
}

func (o Options) Has(f Flag) bool {
	return o.Flags&f != 0
}

func (o Options) With(f Flag) Options {
	o.Flags |= f
	return o
}

func (o Options) Without(f Flag) Options {
	o.Flags &^= f
	return o
}

func (o Options) verbose() bool {
	return o.Has(PrintConstantPool)
}

func (o Options) labels() bool {
	return o.Has(PrintLabels) && !o.Has(PrintPC)
}
