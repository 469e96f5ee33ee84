package wasmvalidate

import (
	"testing"

	"github.com/wasynth/wasynth-go/instr"
	"github.com/wasynth/wasynth-go/parse"
	"github.com/wasynth/wasynth-go/synth"
	"github.com/wasynth/wasynth-go/wasmtype"
)

// buildIdentityModule returns a minimal single-function module with no
// imports: a func (i32)->(i32) that returns its argument, exported as
// "identity". Kept import-free deliberately -- see the package-level note
// in roundtrip_test.go's TestInstrumentedModuleIsNotWagonValidated for why.
func buildIdentityModule() *synth.Module {
	ft := wasmtype.FuncType{Param: wasmtype.ResultType{wasmtype.I32}, Result: wasmtype.ResultType{wasmtype.I32}}
	return &synth.Module{
		Types:     []wasmtype.FuncType{ft},
		Functions: []uint32{0},
		Code:      []parse.CodeEntry{{Body: instr.Expression{{Op: instr.OpLocalGet, LocalIdx: 0}}}},
		Exports:   []parse.Export{{Name: "identity", Kind: parse.ExportFunc, Idx: 0}},
	}
}

func TestEmptyModuleValidates(t *testing.T) {
	encoded := (&synth.Module{}).Encode()
	if err := Validate(encoded); err != nil {
		t.Fatalf("wagon rejected an empty module: %v", err)
	}
}

func TestIdentityFunctionValidates(t *testing.T) {
	encoded := buildIdentityModule().Encode()
	if err := Validate(encoded); err != nil {
		t.Fatalf("wagon rejected the identity module: %v", err)
	}
}

func TestTwoParamAddAndMemoryModuleValidates(t *testing.T) {
	addType := wasmtype.FuncType{
		Param:  wasmtype.ResultType{wasmtype.I32, wasmtype.I32},
		Result: wasmtype.ResultType{wasmtype.I32},
	}
	body := instr.Expression{
		{Op: instr.OpLocalGet, LocalIdx: 0},
		{Op: instr.OpLocalGet, LocalIdx: 1},
		{Op: instr.Op(0x6A)}, // i32.add: no immediate, carries no named constant
	}
	m := &synth.Module{
		Types:     []wasmtype.FuncType{addType},
		Functions: []uint32{0},
		Memories:  []wasmtype.MemType{{Limits: wasmtype.Limits{Min: 1}}},
		Code:      []parse.CodeEntry{{Body: body}},
		Exports: []parse.Export{
			{Name: "add", Kind: parse.ExportFunc, Idx: 0},
			{Name: "memory", Kind: parse.ExportMem, Idx: 0},
		},
	}
	if err := Validate(m.Encode()); err != nil {
		t.Fatalf("wagon rejected the add/memory module: %v", err)
	}
}

func TestCorruptModuleFailsValidation(t *testing.T) {
	encoded := buildIdentityModule().Encode()
	corrupt := append([]byte(nil), encoded...)
	corrupt[0] = 0xFF
	if MustBeValid(corrupt) {
		t.Fatal("expected corrupted magic to fail wagon validation")
	}
}

// TestInstrumentedModuleIsNotWagonValidated documents a deliberate scope
// boundary rather than asserting a positive property: an instrumented
// module always carries two function imports (the enter/leave hooks), and
// wagon.ReadModule(r, nil) -- the nil-resolver call the teacher's own
// vm_test.go uses -- cannot resolve those. The teacher's own wasm_spec_test.go
// test list excludes the "imports" suite for exactly this reason ("missing
// imports from spec"), alongside "elem" and "data" ("wagon parsing failed").
// Instrumentation correctness for import-bearing output is instead checked
// directly in instrument/install_test.go, which asserts on the trampoline
// and renumbering structure without going through any Wasm reader.
func TestInstrumentedModuleIsNotWagonValidated(t *testing.T) {
	t.Skip("wagon's nil-resolver ReadModule cannot resolve function imports; see instrument/install_test.go instead")
}

func TestParseThenEncodeThenValidate(t *testing.T) {
	raw := buildIdentityModule().Encode()
	pm, err := parse.ParseModule(raw)
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	sm, err := synth.Lift(pm)
	if err != nil {
		t.Fatalf("Lift: %v", err)
	}
	if err := Validate(sm.Encode()); err != nil {
		t.Fatalf("re-encoded module failed wagon validation: %v", err)
	}
}
