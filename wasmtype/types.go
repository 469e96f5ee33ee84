// Package wasmtype holds the small value-level vocabulary shared by both
// the parse and synth sides of the toolkit: value types, reference types,
// function types, limits, and the memory/table/global type headers.
// Grounded on the teacher's wasm/module.go (ValueType, Limits, Table, Mem,
// GlobalType, FuncType) and on original_source/src/wasm_types.rs, extended
// with v128/funcref/externref per spec.md §3.
package wasmtype

import (
	"fmt"

	"github.com/wasynth/wasynth-go/leb128"
	"github.com/wasynth/wasynth-go/wasynth"
)

// ValueType is one of the seven value types spec.md §3 defines.
type ValueType byte

const (
	I32       ValueType = 0x7F
	I64       ValueType = 0x7E
	F32       ValueType = 0x7D
	F64       ValueType = 0x7C
	V128      ValueType = 0x7B
	FuncRef   ValueType = 0x70
	ExternRef ValueType = 0x6F
)

func (v ValueType) String() string {
	switch v {
	case I32:
		return "i32"
	case I64:
		return "i64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	case V128:
		return "v128"
	case FuncRef:
		return "funcref"
	case ExternRef:
		return "externref"
	default:
		return fmt.Sprintf("valtype(0x%02x)", byte(v))
	}
}

// IsReference reports whether v is one of the two reference types.
func (v ValueType) IsReference() bool {
	return v == FuncRef || v == ExternRef
}

// DecodeValueType reads a single value-type byte.
func DecodeValueType(c *leb128.Cursor) (ValueType, error) {
	b, err := c.AdvanceByte()
	if err != nil {
		return 0, err
	}
	switch ValueType(b) {
	case I32, I64, F32, F64, V128, FuncRef, ExternRef:
		return ValueType(b), nil
	default:
		return 0, wasynth.ErrInvalidValTypeID(b)
	}
}

// Encode writes the value-type byte.
func (v ValueType) Encode(w *leb128.Writer) {
	w.WriteByte(byte(v))
}

// ReferenceType is the subset of ValueType usable as a table element type.
type ReferenceType byte

const (
	RefFunc   ReferenceType = ReferenceType(FuncRef)
	RefExtern ReferenceType = ReferenceType(ExternRef)
)

func (r ReferenceType) String() string {
	return ValueType(r).String()
}

// AsValueType widens a ReferenceType to the common ValueType vocabulary.
func (r ReferenceType) AsValueType() ValueType {
	return ValueType(r)
}

// DecodeReferenceType reads a single reference-type byte.
func DecodeReferenceType(c *leb128.Cursor) (ReferenceType, error) {
	b, err := c.AdvanceByte()
	if err != nil {
		return 0, err
	}
	switch ReferenceType(b) {
	case RefFunc, RefExtern:
		return ReferenceType(b), nil
	default:
		return 0, wasynth.ErrInvalidRefTypeID(b)
	}
}

// Encode writes the reference-type byte.
func (r ReferenceType) Encode(w *leb128.Writer) {
	w.WriteByte(byte(r))
}

// ResultType is an ordered sequence of value types.
type ResultType []ValueType

// DecodeResultType reads a length-prefixed vector of value types.
func DecodeResultType(c *leb128.Cursor) (ResultType, error) {
	vts, err := leb128.Collect(c, DecodeValueType)
	if err != nil {
		return nil, err
	}
	return ResultType(vts), nil
}

// Encode writes the result type as a length-prefixed vector.
func (r ResultType) Encode(w *leb128.Writer) {
	leb128.WriteVector(w, []ValueType(r), func(w *leb128.Writer, v ValueType) { v.Encode(w) })
}

// FuncType is a (param, result) pair, tagged with the 0x60 marker byte on
// the wire.
type FuncType struct {
	Param  ResultType
	Result ResultType
}

const funcTypeTag = 0x60

// DecodeFuncType reads a tagged function type.
func DecodeFuncType(c *leb128.Cursor) (FuncType, error) {
	tag, err := c.AdvanceByte()
	if err != nil {
		return FuncType{}, err
	}
	if tag != funcTypeTag {
		return FuncType{}, wasynth.ErrInvalidFuncTypeID(tag)
	}
	param, err := DecodeResultType(c)
	if err != nil {
		return FuncType{}, err
	}
	result, err := DecodeResultType(c)
	if err != nil {
		return FuncType{}, err
	}
	return FuncType{Param: param, Result: result}, nil
}

// Encode writes the tagged function type.
func (f FuncType) Encode(w *leb128.Writer) {
	w.WriteByte(funcTypeTag)
	f.Param.Encode(w)
	f.Result.Encode(w)
}

func (f FuncType) String() string {
	return fmt.Sprintf("%v -> %v", []ValueType(f.Param), []ValueType(f.Result))
}

// Limits is either {min} or {min, max}, tagged on the wire.
type Limits struct {
	Min    uint32
	Max    uint32
	HasMax bool
}

// DecodeLimits reads a tagged limits pair.
func DecodeLimits(c *leb128.Cursor) (Limits, error) {
	tag, err := c.AdvanceByte()
	if err != nil {
		return Limits{}, err
	}
	switch tag {
	case 0x00:
		min, err := c.Uint32()
		if err != nil {
			return Limits{}, err
		}
		return Limits{Min: min}, nil
	case 0x01:
		min, err := c.Uint32()
		if err != nil {
			return Limits{}, err
		}
		max, err := c.Uint32()
		if err != nil {
			return Limits{}, err
		}
		return Limits{Min: min, Max: max, HasMax: true}, nil
	default:
		return Limits{}, wasynth.ErrInvalidLimitsTag(tag)
	}
}

// Encode writes the tagged limits pair.
func (l Limits) Encode(w *leb128.Writer) {
	if l.HasMax {
		w.WriteByte(0x01)
		w.WriteUint32(l.Min)
		w.WriteUint32(l.Max)
		return
	}
	w.WriteByte(0x00)
	w.WriteUint32(l.Min)
}

// MemType is a memory's limits, measured in 64KiB pages.
type MemType struct {
	Limits Limits
}

func DecodeMemType(c *leb128.Cursor) (MemType, error) {
	l, err := DecodeLimits(c)
	return MemType{Limits: l}, err
}

func (m MemType) Encode(w *leb128.Writer) {
	m.Limits.Encode(w)
}

// TableType is an element reference type plus limits.
type TableType struct {
	Element ReferenceType
	Limits  Limits
}

func DecodeTableType(c *leb128.Cursor) (TableType, error) {
	elem, err := DecodeReferenceType(c)
	if err != nil {
		return TableType{}, err
	}
	limits, err := DecodeLimits(c)
	if err != nil {
		return TableType{}, err
	}
	return TableType{Element: elem, Limits: limits}, nil
}

func (t TableType) Encode(w *leb128.Writer) {
	t.Element.Encode(w)
	t.Limits.Encode(w)
}

// GlobalType is a value type plus a mutability bit.
type GlobalType struct {
	Value   ValueType
	Mutable bool
}

func DecodeGlobalType(c *leb128.Cursor) (GlobalType, error) {
	vt, err := DecodeValueType(c)
	if err != nil {
		return GlobalType{}, err
	}
	mb, err := c.AdvanceByte()
	if err != nil {
		return GlobalType{}, err
	}
	var mutable bool
	switch mb {
	case 0x00:
		mutable = false
	case 0x01:
		mutable = true
	default:
		return GlobalType{}, wasynth.ErrInvalidGlobalTypeMut(mb)
	}
	return GlobalType{Value: vt, Mutable: mutable}, nil
}

func (g GlobalType) Encode(w *leb128.Writer) {
	g.Value.Encode(w)
	if g.Mutable {
		w.WriteByte(0x01)
	} else {
		w.WriteByte(0x00)
	}
}
