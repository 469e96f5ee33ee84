package instr

import (
	"github.com/wasynth/wasynth-go/wasmtype"
)

// BlockType is the signature attached to block/loop/if. It is encoded on
// the wire as a signed s33 LEB128: 0x40 means "no result", a single
// ValueType byte means "one result of that type", and any other value is a
// signed type-section index (spec.md §3 "Block type").
type BlockType struct {
	Empty   bool
	Value   wasmtype.ValueType
	HasType bool
	TypeIdx uint32
}

// MemArg is the (align, offset) pair carried by every load/store.
type MemArg struct {
	Align  uint32
	Offset uint32
}

// Expression is a sequence of instructions terminated implicitly by its
// containing construct (function body, block, else arm); it never stores
// the 0x0B/0x05 terminator byte itself.
type Expression []Instruction

// Instruction is the single tagged-union representation for every opcode
// in all three address spaces. Only the fields relevant to Op are
// meaningful; this mirrors the flat-struct-plus-opcode shape the standard
// library's cmd/internal/obj/x86 family and golang.org/x/arch/x86/x86asm use
// for machine instructions with heterogeneous immediates, rather than one
// Go type per opcode.
type Instruction struct {
	Op Op

	// Structured control: Block, Loop, If.
	Block BlockType
	Then  Expression
	Else  Expression
	HasElse bool

	// Branches.
	LabelIdx     uint32   // Br, BrIf
	Labels       []uint32 // BrTable: all but the last target
	DefaultLabel uint32   // BrTable: the last (default) target

	// Calls and indices.
	FuncIdx  uint32 // Call, RefFunc
	TypeIdx  uint32 // CallIndirect
	TableIdx uint32 // CallIndirect, TableGet/Set/Init/Copy/Grow/Size/Fill
	LocalIdx uint32
	GlobalIdx uint32
	ElemIdx  uint32 // TableInit, ElemDrop
	DataIdx  uint32 // MemoryInit, DataDrop
	SrcTableIdx uint32 // TableCopy source (TableIdx is destination)

	SelectTypes []wasmtype.ValueType // typed Select (0x1C)
	RefType     wasmtype.ReferenceType // RefNull

	MemArg MemArg

	// Numeric constants.
	I32 int32
	I64 int64
	F32 float32
	F64 float64

	// SIMD.
	V128      [16]byte // V128Const, raw bytes
	Lane      byte     // extract/replace lane index
	ShuffleLanes [16]byte // I8x16Shuffle
}

// isTerminator reports whether b is one of the two bytes that end a
// structured construct rather than naming a standalone instruction.
func isTerminator(b byte) bool {
	return b == byte(opEnd) || b == byte(opElse)
}
