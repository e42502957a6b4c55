package classfile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

var (
	ErrInvalidMagic       = errors.New("invalid magic number")
	ErrUnknownConstantTag = errors.New("unknown constant pool tag")
	ErrAttributeLength    = errors.New("attribute length mismatch")
)

// FormatError reports malformed input together with the byte offset at
// which it was detected.
type FormatError struct {
	Offset int64
	Msg    string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("offset %d: %s: %v", e.Offset, e.Msg, e.Err)
	}
	return fmt.Sprintf("offset %d: %s", e.Offset, e.Msg)
}

func (e *FormatError) Unwrap() error { return e.Err }

// reader is a forward-only cursor. The first error sticks and turns every
// later read into a no-op returning zero values.
type reader struct {
	r   io.Reader
	err error
	pos int64
	// base is the offset of this reader's first byte within the class file.
	base int64
}

func newReader(r io.Reader) *reader {
	return &reader{r: r}
}

func newBytesReader(b []byte, base int64) *reader {
	return &reader{r: bytes.NewReader(b), base: base}
}

func (r *reader) offset() int64 {
	return r.base + r.pos
}

func (r *reader) read(buf []byte) {
	if r.err != nil {
		return
	}
	n, err := io.ReadFull(r.r, buf)
	r.pos += int64(n)
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		r.err = &FormatError{Offset: r.offset(), Msg: "truncated input", Err: err}
	}
}

func (r *reader) readU1() uint8 {
	var buf [1]byte
	r.read(buf[:])
	return buf[0]
}

func (r *reader) readU2() uint16 {
	var buf [2]byte
	r.read(buf[:])
	return binary.BigEndian.Uint16(buf[:])
}

func (r *reader) readU4() uint32 {
	var buf [4]byte
	r.read(buf[:])
	return binary.BigEndian.Uint32(buf[:])
}

// readChunk bounds the up-front allocation of readBytes. Longer blocks
// grow with the data actually read, so a declared length larger than the
// input fails before it is allocated.
const readChunk = 64 << 10

func (r *reader) readBytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n <= readChunk {
		buf := make([]byte, n)
		r.read(buf)
		return buf
	}
	var buf bytes.Buffer
	buf.Grow(readChunk)
	copied, err := io.CopyN(&buf, r.r, int64(n))
	r.pos += copied
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		r.err = &FormatError{Offset: r.offset(), Msg: "truncated input", Err: err}
		return nil
	}
	return buf.Bytes()
}

func (r *reader) readU2s() []uint16 {
	count := r.readU2()
	if r.err != nil {
		return nil
	}
	out := make([]uint16, count)
	for i := range out {
		out[i] = r.readU2()
	}
	return out
}

func (r *reader) fail(format string, args ...any) {
	if r.err == nil {
		r.err = &FormatError{Offset: r.offset(), Msg: fmt.Sprintf(format, args...)}
	}
}
