// Package classtest assembles class files byte by byte so tests do not
// depend on a Java compiler or checked-in binaries.
package classtest

import (
	"bytes"
	"encoding/binary"
	"math"
)

func U2(v uint16) []byte {
	return binary.BigEndian.AppendUint16(nil, v)
}

func U4(v uint32) []byte {
	return binary.BigEndian.AppendUint32(nil, v)
}

func Concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// Trap is one exception table row: start, end, handler, catch type.
type Trap [4]uint16

type Builder struct {
	Minor      uint16
	Major      uint16
	Flags      uint16
	This       uint16
	Super      uint16
	Interfaces []uint16

	pool    bytes.Buffer
	next    uint16
	utf8s   map[string]uint16
	fields  [][]byte
	methods [][]byte
	attrs   [][]byte
}

// New returns a builder for a public class with the given name extending
// java/lang/Object. An empty super leaves the super index at 0.
func New(name, super string) *Builder {
	b := &Builder{Major: 65, Flags: 0x0021, next: 1, utf8s: map[string]uint16{}}
	b.This = b.Class(name)
	if super != "" {
		b.Super = b.Class(super)
	}
	return b
}

// Next is the index the next pool entry will get.
func (b *Builder) Next() uint16 {
	return b.next
}

func (b *Builder) entry(tag byte, size uint16, body ...[]byte) uint16 {
	idx := b.next
	b.pool.WriteByte(tag)
	for _, p := range body {
		b.pool.Write(p)
	}
	b.next += size
	return idx
}

// Raw appends an entry verbatim, which allows unknown tags and dangling
// references.
func (b *Builder) Raw(tag byte, body ...[]byte) uint16 {
	return b.entry(tag, 1, body...)
}

func (b *Builder) Utf8(s string) uint16 {
	if idx, ok := b.utf8s[s]; ok {
		return idx
	}
	idx := b.RawUtf8([]byte(s))
	b.utf8s[s] = idx
	return idx
}

func (b *Builder) RawUtf8(data []byte) uint16 {
	return b.entry(1, 1, U2(uint16(len(data))), data)
}

func (b *Builder) Integer(v int32) uint16 {
	return b.entry(3, 1, U4(uint32(v)))
}

func (b *Builder) Float(v float32) uint16 {
	return b.entry(4, 1, U4(math.Float32bits(v)))
}

func (b *Builder) Long(v int64) uint16 {
	return b.entry(5, 2, U4(uint32(uint64(v)>>32)), U4(uint32(v)))
}

func (b *Builder) Double(v float64) uint16 {
	bits := math.Float64bits(v)
	return b.entry(6, 2, U4(uint32(bits>>32)), U4(uint32(bits)))
}

func (b *Builder) Class(name string) uint16 {
	return b.entry(7, 1, U2(b.Utf8(name)))
}

func (b *Builder) String(s string) uint16 {
	return b.entry(8, 1, U2(b.Utf8(s)))
}

func (b *Builder) NameAndType(name, desc string) uint16 {
	n, d := b.Utf8(name), b.Utf8(desc)
	return b.entry(12, 1, U2(n), U2(d))
}

func (b *Builder) ref(tag byte, class, name, desc string) uint16 {
	c := b.Class(class)
	nt := b.NameAndType(name, desc)
	return b.entry(tag, 1, U2(c), U2(nt))
}

func (b *Builder) Fieldref(class, name, desc string) uint16 {
	return b.ref(9, class, name, desc)
}

func (b *Builder) Methodref(class, name, desc string) uint16 {
	return b.ref(10, class, name, desc)
}

func (b *Builder) InterfaceMethodref(class, name, desc string) uint16 {
	return b.ref(11, class, name, desc)
}

func (b *Builder) MethodHandle(kind byte, ref uint16) uint16 {
	return b.entry(15, 1, []byte{kind}, U2(ref))
}

func (b *Builder) MethodType(desc string) uint16 {
	return b.entry(16, 1, U2(b.Utf8(desc)))
}

func (b *Builder) Dynamic(bsm uint16, name, desc string) uint16 {
	nt := b.NameAndType(name, desc)
	return b.entry(17, 1, U2(bsm), U2(nt))
}

func (b *Builder) InvokeDynamic(bsm uint16, name, desc string) uint16 {
	nt := b.NameAndType(name, desc)
	return b.entry(18, 1, U2(bsm), U2(nt))
}

func (b *Builder) Module(name string) uint16 {
	return b.entry(19, 1, U2(b.Utf8(name)))
}

func (b *Builder) Package(name string) uint16 {
	return b.entry(20, 1, U2(b.Utf8(name)))
}

// Attr encodes one attribute with a correct length prefix.
func (b *Builder) Attr(name string, body ...[]byte) []byte {
	data := Concat(body...)
	return Concat(U2(b.Utf8(name)), U4(uint32(len(data))), data)
}

// AttrLen encodes an attribute with an explicit, possibly wrong, length.
func (b *Builder) AttrLen(name string, length uint32, body ...[]byte) []byte {
	return Concat(U2(b.Utf8(name)), U4(length), Concat(body...))
}

func attrTable(attrs [][]byte) []byte {
	return Concat(U2(uint16(len(attrs))), Concat(attrs...))
}

// Code encodes a Code attribute.
func (b *Builder) Code(maxStack, maxLocals uint16, code []byte, traps []Trap, attrs ...[]byte) []byte {
	var table []byte
	for _, t := range traps {
		table = Concat(table, U2(t[0]), U2(t[1]), U2(t[2]), U2(t[3]))
	}
	return b.Attr("Code",
		U2(maxStack), U2(maxLocals),
		U4(uint32(len(code))), code,
		U2(uint16(len(traps))), table,
		attrTable(attrs),
	)
}

func (b *Builder) member(flags uint16, name, desc string, attrs [][]byte) []byte {
	return Concat(U2(flags), U2(b.Utf8(name)), U2(b.Utf8(desc)), attrTable(attrs))
}

func (b *Builder) Field(flags uint16, name, desc string, attrs ...[]byte) {
	b.fields = append(b.fields, b.member(flags, name, desc, attrs))
}

func (b *Builder) Method(flags uint16, name, desc string, attrs ...[]byte) {
	b.methods = append(b.methods, b.member(flags, name, desc, attrs))
}

func (b *Builder) ClassAttr(attr []byte) {
	b.attrs = append(b.attrs, attr)
}

func (b *Builder) Bytes() []byte {
	out := Concat(U4(0xCAFEBABE), U2(b.Minor), U2(b.Major), U2(b.next), b.pool.Bytes())
	out = Concat(out, U2(b.Flags), U2(b.This), U2(b.Super), U2(uint16(len(b.Interfaces))))
	for _, i := range b.Interfaces {
		out = append(out, U2(i)...)
	}
	out = Concat(out, U2(uint16(len(b.fields))), Concat(b.fields...))
	out = Concat(out, U2(uint16(len(b.methods))), Concat(b.methods...))
	return Concat(out, attrTable(b.attrs))
}
