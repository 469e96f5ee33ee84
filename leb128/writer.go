package leb128

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Writer accumulates bytes for the synth-side encode path. Every Writer
// method is the symmetric counterpart of a Cursor read: LEB128 output is
// always the shortest encoding, matching spec.md §4.1.
type Writer struct {
	buf bytes.Buffer
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the accumulated output.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Len reports the number of bytes written so far.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// WriteByte writes a single byte. Satisfies io.ByteWriter.
func (w *Writer) WriteByte(b byte) error {
	return w.buf.WriteByte(b)
}

// Write writes raw bytes verbatim. Satisfies io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *Writer) writeUnsignedLEB(v uint64) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			w.buf.WriteByte(b | 0x80)
			continue
		}
		w.buf.WriteByte(b)
		return
	}
}

func (w *Writer) writeSignedLEB(v int64) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		signBitSet := b&0x40 != 0
		done := (v == 0 && !signBitSet) || (v == -1 && signBitSet)
		if done {
			w.buf.WriteByte(b)
			return
		}
		w.buf.WriteByte(b | 0x80)
	}
}

// WriteUint32 writes v as an unsigned LEB128.
func (w *Writer) WriteUint32(v uint32) {
	w.writeUnsignedLEB(uint64(v))
}

// WriteUint64 writes v as an unsigned LEB128.
func (w *Writer) WriteUint64(v uint64) {
	w.writeUnsignedLEB(v)
}

// WriteInt32 writes v as a signed LEB128.
func (w *Writer) WriteInt32(v int32) {
	w.writeSignedLEB(int64(v))
}

// WriteInt64 writes v as a signed LEB128.
func (w *Writer) WriteInt64(v int64) {
	w.writeSignedLEB(v)
}

// WriteSignedBounded writes an arbitrary-width signed LEB128, used by the
// s33 block-type-index encoding.
func (w *Writer) WriteSignedBounded(v int64) {
	w.writeSignedLEB(v)
}

// WriteF32 writes 4 little-endian IEEE-754 bytes.
func (w *Writer) WriteF32(v float32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
	w.buf.Write(b[:])
}

// WriteF64 writes 8 little-endian IEEE-754 bytes.
func (w *Writer) WriteF64(v float64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
	w.buf.Write(b[:])
}

// WriteName writes a length-prefixed UTF-8 name.
func (w *Writer) WriteName(s string) {
	w.WriteUint32(uint32(len(s)))
	w.buf.WriteString(s)
}

// WriteVector writes items as a length-prefixed vector using enc to
// serialize each element.
func WriteVector[T any](w *Writer, items []T, enc func(*Writer, T)) {
	w.WriteUint32(uint32(len(items)))
	for _, item := range items {
		enc(w, item)
	}
}
