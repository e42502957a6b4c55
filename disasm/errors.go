package disasm

import (
	"fmt"
	"strings"
)

// ConstantIssue is a constant pool reference that could not be rendered,
// either because it does not resolve or because it refers back to itself.
type ConstantIssue struct {
	Index  uint16
	Reason string
}

func (e *ConstantIssue) Error() string {
	return fmt.Sprintf("constant #%d: %s", e.Index, e.Reason)
}

// BatchError lists the files a batch run could not disassemble.
type BatchError struct {
	Failed []string
}

func (e *BatchError) Error() string {
	if len(e.Failed) == 1 {
		return fmt.Sprintf("failed to disassemble %s", e.Failed[0])
	}
	return fmt.Sprintf("failed to disassemble %d files: %s", len(e.Failed), strings.Join(e.Failed, ", "))
}
