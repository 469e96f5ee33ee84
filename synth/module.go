// Package synth is the owning, mutable half of the toolkit (spec.md §5
// "Synth model"): every section is lifted out of a parse.Module into plain
// owned Go values, safe to mutate and re-encode, which is what the
// instrument package builds on.
//
// Grounded on the teacher's wasm.Module (wasm/module.go), which is itself
// already a fully-owned in-memory model built once at load time; synth
// generalizes it to the full section set and splits it from the borrowing
// decode step, matching the parse/synth split spec.md §4 and §5 describe.
package synth

import (
	"github.com/wasynth/wasynth-go/parse"
	"github.com/wasynth/wasynth-go/wasmtype"
	"github.com/wasynth/wasynth-go/wasynth"
)

// Module is the fully-owned, mutable model of a Wasm binary. Unlike
// parse.Module, which stores sections as an ordered list that can contain
// duplicates (an error condition detected lazily), Module holds each
// section as a single field: duplicates are structurally impossible by the
// time a binary has been lifted.
type Module struct {
	Types     []wasmtype.FuncType
	Imports   []parse.Import
	Functions []uint32
	Tables    []wasmtype.TableType
	Memories  []wasmtype.MemType
	Globals   []parse.Global
	Exports   []parse.Export
	HasStart  bool
	Start     uint32
	Elements  []parse.ElementSegment
	Code      []parse.CodeEntry
	Data      []parse.DataSegment

	HasDataCount bool
	DataCount    uint32

	Names       *parse.NameSection
	OtherCustom []parse.RawSection
}

// Validate checks the cross-section invariants that a plain field-for-field
// lift cannot rule out by construction: the data-count section, if present,
// must match the number of data segments actually lifted (spec.md §6 open
// question 2).
func (m *Module) Validate() error {
	if m.HasDataCount && int(m.DataCount) != len(m.Data) {
		return wasynth.ErrDataCountMismatch(int(m.DataCount), len(m.Data))
	}
	return nil
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
