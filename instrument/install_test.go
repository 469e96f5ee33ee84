package instrument

import (
	"testing"

	"github.com/wasynth/wasynth-go/instr"
	"github.com/wasynth/wasynth-go/parse"
	"github.com/wasynth/wasynth-go/synth"
	"github.com/wasynth/wasynth-go/wasmtype"
)

func identityModule() *synth.Module {
	ft := wasmtype.FuncType{Param: wasmtype.ResultType{wasmtype.I32}, Result: wasmtype.ResultType{wasmtype.I32}}
	return &synth.Module{
		Types:     []wasmtype.FuncType{ft},
		Functions: []uint32{0},
		Code:      []parse.CodeEntry{{Body: instr.Expression{{Op: instr.OpLocalGet, LocalIdx: 0}}}},
		Exports:   []parse.Export{{Name: "identity", Kind: parse.ExportFunc, Idx: 0}},
	}
}

func TestInstallAllWrapsSingleFunction(t *testing.T) {
	m := identityModule()
	if err := InstallAll(m); err != nil {
		t.Fatalf("InstallAll: %v", err)
	}

	if len(m.Types) != 2 {
		t.Fatalf("expected hook type appended, got %d types", len(m.Types))
	}
	if len(m.Imports) != 2 || m.Imports[0].Name != "enter" || m.Imports[1].Name != "leave" {
		t.Fatalf("unexpected imports: %+v", m.Imports)
	}
	if len(m.Code) != 2 || len(m.Functions) != 2 {
		t.Fatalf("expected trampoline + clone, got %d code entries", len(m.Code))
	}

	trampoline := m.Code[0].Body
	want := []instr.Op{instr.OpI32Const, instr.OpCall, instr.OpLocalGet, instr.OpCall, instr.OpI32Const, instr.OpCall}
	if len(trampoline) != len(want) {
		t.Fatalf("trampoline length = %d, want %d", len(trampoline), len(want))
	}
	for i, op := range want {
		if trampoline[i].Op != op {
			t.Fatalf("trampoline[%d].Op = %v, want %v", i, trampoline[i].Op, op)
		}
	}
	if trampoline[1].FuncIdx != 0 || trampoline[3].FuncIdx != 3 || trampoline[5].FuncIdx != 1 {
		t.Fatalf("trampoline call targets wrong: enter=%d clone=%d leave=%d",
			trampoline[1].FuncIdx, trampoline[3].FuncIdx, trampoline[5].FuncIdx)
	}
	// S3: the reported i32.const immediate is the trampoline's own
	// post-insert index (importFuncCount+2+i = 0+2+0 = 2), not the bare
	// pre-insert ordinal 0.
	if trampoline[0].I32 != 2 || trampoline[4].I32 != 2 {
		t.Fatalf("trampoline i32.const immediate wrong: enter=%d leave=%d, want 2 and 2",
			trampoline[0].I32, trampoline[4].I32)
	}

	clone := m.Code[1].Body
	if len(clone) != 1 || clone[0].Op != instr.OpLocalGet || clone[0].LocalIdx != 0 {
		t.Fatalf("clone body not preserved: %+v", clone)
	}

	if m.Exports[0].Idx != 2 {
		t.Fatalf("export index not shifted to trampoline: got %d, want 2", m.Exports[0].Idx)
	}

	if !IsInstrumented(m) {
		t.Fatal("expected IsInstrumented to report true after InstallAll")
	}
	if m.Names == nil || m.Names.Function[0] != "wasynth_hooks.enter" || m.Names.Function[1] != "wasynth_hooks.leave" {
		t.Fatalf("hook names not recorded: %+v", m.Names)
	}
}

func TestInstallAllRenumbersCallsWithinBodies(t *testing.T) {
	ft := wasmtype.FuncType{}
	m := &synth.Module{
		Types:     []wasmtype.FuncType{ft},
		Functions: []uint32{0, 0},
		Code: []parse.CodeEntry{
			{Body: instr.Expression{{Op: instr.OpCall, FuncIdx: 1}}}, // fn0 calls fn1
			{Body: instr.Expression{{Op: instr.OpNop}}},
		},
	}
	if err := InstallAll(m); err != nil {
		t.Fatalf("InstallAll: %v", err)
	}
	// fn0's clone is at index cloneBase+0 = 0+2+2+0 = 4; its call to old fn1
	// must now target shift(1) = 3 (fn1's trampoline).
	cloneOfFn0 := m.Code[2].Body
	if len(cloneOfFn0) != 1 || cloneOfFn0[0].Op != instr.OpCall || cloneOfFn0[0].FuncIdx != 3 {
		t.Fatalf("call renumbering wrong: %+v", cloneOfFn0)
	}
}
