package parse

import (
	"github.com/wasynth/wasynth-go/instr"
	"github.com/wasynth/wasynth-go/wasmtype"
)

// Import descriptor kinds, spec.md §3 "Import".
const (
	ImportFunc   byte = 0
	ImportTable  byte = 1
	ImportMem    byte = 2
	ImportGlobal byte = 3
)

// Import is one entry of the import section.
type Import struct {
	Module string
	Name   string
	Kind   byte
	TypeIdx uint32       // ImportFunc
	Table   wasmtype.TableType  // ImportTable
	Mem     wasmtype.MemType    // ImportMem
	Global  wasmtype.GlobalType // ImportGlobal
}

// Export descriptor kinds, spec.md §3 "Export". Numerically identical to
// the import kinds, kept as a separate set of constants since they tag a
// different field in practice (export index space, not an import).
const (
	ExportFunc   byte = 0
	ExportTable  byte = 1
	ExportMem    byte = 2
	ExportGlobal byte = 3
)

// Export is one entry of the export section.
type Export struct {
	Name string
	Kind byte
	Idx  uint32
}

// Global is one entry of the global section: a type and a constant
// initializer expression.
type Global struct {
	Type wasmtype.GlobalType
	Init instr.Expression
}

// Element segment modes, spec.md §3 "Element segment".
const (
	ElemActive     byte = 0
	ElemPassive    byte = 1
	ElemDeclarative byte = 2
)

// ElementSegment is one entry of the element section, generalized to the
// eight binary encodings the bulk-memory/reference-types proposal defines
// (active-implicit-table-funcidx, passive, active-explicit-table,
// declarative, and their function-index-list vs. expression-list variants).
type ElementSegment struct {
	Mode    byte
	Table   uint32 // ElemActive only
	Offset  instr.Expression // ElemActive only
	Type    wasmtype.ReferenceType
	Funcs   []uint32         // set when the wire form used a raw funcidx vector
	Exprs   []instr.Expression // set when the wire form used an expression vector
}

// Data segment modes, spec.md §3 "Data segment".
const (
	DataActive  byte = 0
	DataPassive byte = 1
)

// DataSegment is one entry of the data section.
type DataSegment struct {
	Mode   byte
	Memory uint32 // DataActive only
	Offset instr.Expression // DataActive only
	Bytes  []byte
}

// LocalGroup is one run-length-encoded run of same-typed locals in a
// function body.
type LocalGroup struct {
	Count uint32
	Type  wasmtype.ValueType
}

// CodeEntry is one function body: its local declarations (expanded lazily
// by the caller if needed) and its instruction sequence.
type CodeEntry struct {
	Locals []LocalGroup
	Body   instr.Expression
}
