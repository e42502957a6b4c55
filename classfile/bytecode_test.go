package classfile

import (
	"errors"
	"testing"

	"github.com/dhamidi/jdis/internal/classtest"
)

func TestDecodeBranch(t *testing.T) {
	code := make([]byte, 10)
	code = append(code, 0xa7, 0xff, 0xfd)

	in, err := DecodeInstruction(code, 10)
	if err != nil {
		t.Fatalf("DecodeInstruction() error = %v", err)
	}
	if in.Opcode != OpGoto || in.Target != 7 || in.Length != 3 {
		t.Errorf("got %s target %d length %d, want goto target 7 length 3", in.Opcode, in.Target, in.Length)
	}
	if targets := in.Targets(); len(targets) != 1 || targets[0] != 7 {
		t.Errorf("Targets() = %v", targets)
	}

	_, err = DecodeInstruction([]byte{0xa7, 0x00, 0x64}, 0)
	if !errors.Is(err, ErrBranchTarget) {
		t.Errorf("goto +100 err = %v, want ErrBranchTarget", err)
	}
}

func TestDecodeSwitch(t *testing.T) {
	t.Run("tableswitch", func(t *testing.T) {
		code := classtest.Concat(
			[]byte{0x00, 0xaa, 0x00, 0x00},
			classtest.U4(27), classtest.U4(1), classtest.U4(3),
			classtest.U4(27), classtest.U4(27), classtest.U4(27),
			[]byte{0xb1},
		)
		in, err := DecodeInstruction(code, 1)
		if err != nil {
			t.Fatalf("DecodeInstruction() error = %v", err)
		}
		if in.Length != 27 {
			t.Errorf("Length = %d, want 27", in.Length)
		}
		sw := in.Switch
		if sw.Padding != 2 || sw.Low != 1 || sw.High != 3 || sw.Default != 28 {
			t.Errorf("Switch = %+v", sw)
		}
		if len(sw.Keys) != 3 || sw.Keys[0] != 1 || sw.Keys[2] != 3 {
			t.Errorf("Keys = %v, want [1 2 3]", sw.Keys)
		}
		if len(in.Targets()) != 4 {
			t.Errorf("Targets() = %v, want 3 cases plus default", in.Targets())
		}
	})

	t.Run("lookupswitch", func(t *testing.T) {
		code := classtest.Concat(
			[]byte{0xab, 0x00, 0x00, 0x00},
			classtest.U4(28), classtest.U4(2),
			classtest.U4(10), classtest.U4(28),
			classtest.U4(20), classtest.U4(28),
			[]byte{0xb1},
		)
		in, err := DecodeInstruction(code, 0)
		if err != nil {
			t.Fatalf("DecodeInstruction() error = %v", err)
		}
		if in.Length != 28 || in.Switch.Padding != 3 {
			t.Errorf("Length = %d padding %d, want 28 and 3", in.Length, in.Switch.Padding)
		}
		if len(in.Switch.Keys) != 2 || in.Switch.Keys[1] != 20 {
			t.Errorf("Keys = %v", in.Switch.Keys)
		}
	})

	t.Run("high below low", func(t *testing.T) {
		code := classtest.Concat(
			[]byte{0xaa, 0x00, 0x00, 0x00},
			classtest.U4(0), classtest.U4(5), classtest.U4(1),
		)
		if _, err := DecodeInstruction(code, 0); err == nil {
			t.Error("Expected error for high < low")
		}
	})

	t.Run("negative pair count", func(t *testing.T) {
		code := classtest.Concat(
			[]byte{0xab, 0x00, 0x00, 0x00},
			classtest.U4(0), classtest.U4(0xffffffff),
		)
		if _, err := DecodeInstruction(code, 0); err == nil {
			t.Error("Expected error for negative npairs")
		}
	})
}

func TestDecodeOperands(t *testing.T) {
	tests := []struct {
		name   string
		code   []byte
		op     Opcode
		length int
		index  uint16
		value  int32
		wide   bool
	}{
		{"bipush", []byte{0x10, 0xfe}, OpBipush, 2, 0, -2, false},
		{"sipush", []byte{0x11, 0x01, 0x00}, OpSipush, 3, 0, 256, false},
		{"ldc", []byte{0x12, 0x07}, OpLdc, 2, 7, 0, false},
		{"iload", []byte{0x15, 0x03}, OpIload, 2, 3, 0, false},
		{"iinc", []byte{0x84, 0x01, 0xff}, OpIinc, 3, 1, -1, false},
		{"wide iload", []byte{0xc4, 0x15, 0x01, 0x2c}, OpIload, 4, 300, 0, true},
		{"wide iinc", []byte{0xc4, 0x84, 0x01, 0x00, 0xff, 0xfe}, OpIinc, 6, 256, -2, true},
		{"invokeinterface", []byte{0xb9, 0x00, 0x05, 0x02, 0x00}, OpInvokeinterface, 5, 5, 2, false},
		{"invokedynamic", []byte{0xba, 0x00, 0x09, 0x00, 0x00}, OpInvokedynamic, 5, 9, 0, false},
		{"multianewarray", []byte{0xc5, 0x00, 0x04, 0x03}, OpMultianewarray, 4, 4, 3, false},
		{"newarray", []byte{0xbc, 0x0a}, OpNewarray, 2, 0, 10, false},
		{"nonpriv", []byte{0xfe, 0x2a}, OpNonpriv, 2, 0, 0x2a, false},
		{"return", []byte{0xb1}, OpReturn, 1, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := DecodeInstruction(tt.code, 0)
			if err != nil {
				t.Fatalf("DecodeInstruction() error = %v", err)
			}
			if in.Opcode != tt.op || in.Length != tt.length || in.Index != tt.index || in.Value != tt.value || in.Wide != tt.wide {
				t.Errorf("got %s length %d index %d value %d wide %v", in.Opcode, in.Length, in.Index, in.Value, in.Wide)
			}
		})
	}
}

func TestDecodeInvalid(t *testing.T) {
	if _, err := DecodeInstruction([]byte{0xcb}, 0); !errors.Is(err, ErrUnknownOpcode) {
		t.Errorf("err = %v, want ErrUnknownOpcode", err)
	}
	if _, err := DecodeInstruction([]byte{0x11, 0x00}, 0); !errors.Is(err, ErrTruncatedInstruction) {
		t.Errorf("err = %v, want ErrTruncatedInstruction", err)
	}
	if _, err := DecodeInstruction([]byte{0xc4, 0x00, 0x00, 0x00}, 0); !errors.Is(err, ErrUnknownOpcode) {
		t.Errorf("wide nop err = %v, want ErrUnknownOpcode", err)
	}
	if got := Opcode(0xcb).String(); got != "bytecode 203" {
		t.Errorf("String() = %q, want %q", got, "bytecode 203")
	}
}

func TestInstructions(t *testing.T) {
	code := []byte{0x2a, 0xcb, 0x11, 0x00, 0x01, 0xb1, 0x10}
	ins := Instructions(code)

	wantPCs := []int{0, 1, 2, 5, 6}
	if len(ins) != len(wantPCs) {
		t.Fatalf("len(Instructions) = %d, want %d", len(ins), len(wantPCs))
	}
	total := 0
	for i, in := range ins {
		if in.PC != wantPCs[i] {
			t.Errorf("ins[%d].PC = %d, want %d", i, in.PC, wantPCs[i])
		}
		total += in.Length
	}
	if total != len(code) {
		t.Errorf("lengths sum to %d, want %d", total, len(code))
	}
	if !ins[1].Invalid || ins[1].Length != 1 {
		t.Errorf("unknown opcode = %+v, want one-byte invalid placeholder", ins[1])
	}
	if !ins[4].Invalid {
		t.Errorf("truncated bipush = %+v, want invalid placeholder", ins[4])
	}
}
