package main

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/jdis/disasm"
)

type rootFlags struct {
	constantPool bool
	details      bool
	pc           bool
	labels       bool
	indices      bool
	source       bool
	hex          bool
	vars         bool
	debug        bool
	verbose      int
	output       string
}

func (f *rootFlags) register(fs *pflag.FlagSet) {
	fs.BoolVarP(&f.constantPool, "constant-pool", "c", false, "print the constant pool and bootstrap methods")
	fs.BoolVarP(&f.details, "details", "d", false, "list exception, line number and local variable tables")
	fs.BoolVar(&f.pc, "pc", false, "prefix every instruction with its pc")
	fs.BoolVar(&f.labels, "labels", true, "print branch targets as labels")
	fs.BoolVarP(&f.indices, "indices", "i", false, "print constant pool indices for instruction operands")
	fs.BoolVarP(&f.source, "source", "s", false, "interleave source lines")
	fs.BoolVarP(&f.hex, "hex", "x", false, "print integer operands in hex")
	fs.BoolVarP(&f.vars, "vars", "l", false, "print local variable declarations")
	fs.BoolVar(&f.debug, "debug", false, "trace parsing and decoding")
	fs.CountVarP(&f.verbose, "verbose", "v", "increase log verbosity")
	fs.StringVarP(&f.output, "output", "o", "", "write to `file` instead of stdout")
}

func (f *rootFlags) options() disasm.Options {
	opts := disasm.Options{}
	set := func(on bool, flag disasm.Flag) {
		if on {
			opts = opts.With(flag)
		}
	}
	set(f.constantPool, disasm.PrintConstantPool)
	set(f.details, disasm.PrintCodeDetails)
	set(f.pc, disasm.PrintPC)
	set(f.labels, disasm.PrintLabels)
	set(f.indices, disasm.PrintCPIndices)
	set(f.source, disasm.PrintSourceLines)
	set(f.hex, disasm.PrintHex)
	set(f.vars, disasm.PrintLocalVars)
	set(f.debug, disasm.Debug)
	return opts
}

func (f *rootFlags) verbosity() int {
	if f.debug {
		return 4
	}
	return f.verbose
}

// run disassembles paths to the output file, or to stdout when none is
// set. Per-file failures are logged by the disassembler and come back as a
// *disasm.BatchError.
func (f *rootFlags) run(paths []string, stdout io.Writer) (err error) {
	w := stdout
	if f.output != "" {
		out, cerr := os.Create(f.output)
		if cerr != nil {
			return errors.Wrap(cerr, "failed to create output")
		}
		defer func() {
			if cerr := out.Close(); cerr != nil && err == nil {
				err = errors.Wrap(cerr, "failed to close output")
			}
		}()
		w = out
	}
	return disasm.New(f.options()).Run(paths, w)
}

func newRootCmd() *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:           "jdis <file.class>...",
		Short:         "Disassemble JVM class files into assembler text",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			commonlog.Configure(flags.verbosity(), nil)

			err := flags.run(args, cmd.OutOrStdout())
			var batch *disasm.BatchError
			switch {
			case errors.As(err, &batch):
				log.Noticef("%d of %d files failed", len(batch.Failed), len(args))
			case err != nil:
				log.Errorf("%s", err)
			default:
				log.Debugf("disassembled %d files", len(args))
			}
			return err
		},
	}
	flags.register(cmd.Flags())
	return cmd
}
