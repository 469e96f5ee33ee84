package parse

import (
	"testing"

	"github.com/wasynth/wasynth-go/instr"
	"github.com/wasynth/wasynth-go/leb128"
	"github.com/wasynth/wasynth-go/wasmtype"
)

func sectionBytes(id byte, payload []byte) []byte {
	w := leb128.NewWriter()
	w.WriteByte(id)
	w.WriteUint32(uint32(len(payload)))
	w.Write(payload)
	return w.Bytes()
}

func buildModule(sections ...[]byte) []byte {
	w := leb128.NewWriter()
	w.Write([]byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00})
	for _, s := range sections {
		w.Write(s)
	}
	return w.Bytes()
}

func TestParseEmptyModule(t *testing.T) {
	m, err := ParseModule(buildModule())
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	if len(m.Sections) != 0 {
		t.Fatalf("expected no sections, got %d", len(m.Sections))
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestParseRejectsBadMagic(t *testing.T) {
	b := buildModule()
	b[0] = 0xFF
	if _, err := ParseModule(b); err == nil {
		t.Fatal("expected bad-magic error")
	}
}

func emptyVectorSection(id byte) []byte {
	w := leb128.NewWriter()
	w.WriteUint32(0)
	return sectionBytes(id, w.Bytes())
}

// ParseModule itself does not reject section order or duplicates -- per
// spec.md §4.5/§4.7 and scenario S7, that invariant is checked at lift
// time (Module.CheckAtMostOnce, called from synth.Lift), not at parse
// time. spec.md §5 requires ParseModule to preserve source order as-is.
func TestParseOutOfOrderSectionsPreservesSourceOrder(t *testing.T) {
	typeSec := emptyVectorSection(SecType)
	funcSec := emptyVectorSection(SecFunction)
	b := buildModule(funcSec, typeSec) // function section before type section
	m, err := ParseModule(b)
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	if len(m.Sections) != 2 || m.Sections[0].ID != SecFunction || m.Sections[1].ID != SecType {
		t.Fatalf("source order not preserved: %+v", m.Sections)
	}
}

// The real Wasm canonical layout places DataCount (id 12) before Code (id
// 10) and Data (id 11) even though its id numbers higher -- a purely
// monotonic-id check would reject this. ParseModule must accept it.
func TestParseAcceptsCanonicalDataCountBeforeCode(t *testing.T) {
	b := buildModule(
		emptyVectorSection(SecElement),
		sectionBytes(SecDataCount, func() []byte {
			w := leb128.NewWriter()
			w.WriteUint32(0)
			return w.Bytes()
		}()),
		emptyVectorSection(SecCode),
		emptyVectorSection(SecData),
	)
	m, err := ParseModule(b)
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if _, ok, err := m.DataCount(); err != nil || !ok {
		t.Fatalf("DataCount: ok=%v err=%v", ok, err)
	}
}

func TestCheckAtMostOnceRejectsDuplicateSection(t *testing.T) {
	b := buildModule(emptyVectorSection(SecType), emptyVectorSection(SecType))
	m, err := ParseModule(b)
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	if err := m.CheckAtMostOnce(); err == nil {
		t.Fatal("expected duplicate-section error")
	}
}

func TestCheckAtMostOnceIgnoresCustomSections(t *testing.T) {
	custom := func() []byte {
		w := leb128.NewWriter()
		w.WriteName("a")
		return sectionBytes(SecCustom, w.Bytes())
	}
	b := buildModule(custom(), custom())
	m, err := ParseModule(b)
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	if err := m.CheckAtMostOnce(); err != nil {
		t.Fatalf("duplicate custom sections should not trip the at-most-once check: %v", err)
	}
}

func buildIdentityModule(t *testing.T) []byte {
	t.Helper()
	ft := wasmtype.FuncType{Param: wasmtype.ResultType{wasmtype.I32}, Result: wasmtype.ResultType{wasmtype.I32}}
	typeW := leb128.NewWriter()
	leb128.WriteVector(typeW, []wasmtype.FuncType{ft}, func(w *leb128.Writer, f wasmtype.FuncType) { f.Encode(w) })

	funcW := leb128.NewWriter()
	leb128.WriteVector(funcW, []uint32{0}, func(w *leb128.Writer, v uint32) { w.WriteUint32(v) })

	body := instr.Expression{{Op: instr.OpLocalGet, LocalIdx: 0}}
	bodyW := leb128.NewWriter()
	instr.EncodeExpression(bodyW, body)

	entryW := leb128.NewWriter()
	entryW.WriteUint32(0) // zero local groups
	entryW.Write(bodyW.Bytes())

	codeW := leb128.NewWriter()
	codeW.WriteUint32(1) // one code entry
	codeW.WriteUint32(uint32(entryW.Len()))
	codeW.Write(entryW.Bytes())

	return buildModule(
		sectionBytes(SecType, typeW.Bytes()),
		sectionBytes(SecFunction, funcW.Bytes()),
		sectionBytes(SecCode, codeW.Bytes()),
	)
}

func TestParseIdentityFunction(t *testing.T) {
	m, err := ParseModule(buildIdentityModule(t))
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	types, err := m.TypeSection()
	if err != nil {
		t.Fatalf("TypeSection: %v", err)
	}
	if len(types) != 1 || len(types[0].Param) != 1 || types[0].Param[0] != wasmtype.I32 {
		t.Fatalf("unexpected types: %+v", types)
	}
	code, err := m.Code()
	if err != nil {
		t.Fatalf("Code: %v", err)
	}
	if len(code) != 1 || len(code[0].Body) != 1 || code[0].Body[0].Op != instr.OpLocalGet {
		t.Fatalf("unexpected code: %+v", code)
	}
}

func TestParseNameSectionModuleAndFunctionNames(t *testing.T) {
	w := leb128.NewWriter()
	w.WriteByte(NameSubModule)
	modW := leb128.NewWriter()
	modW.WriteName("example")
	w.WriteUint32(uint32(modW.Len()))
	w.Write(modW.Bytes())

	w.WriteByte(NameSubFunction)
	fnW2 := leb128.NewWriter()
	fnW2.WriteUint32(1)
	fnW2.WriteUint32(0)
	fnW2.WriteName("identity")
	w.WriteUint32(uint32(fnW2.Len()))
	w.Write(fnW2.Bytes())

	ns, err := ParseNameSection(w.Bytes())
	if err != nil {
		t.Fatalf("ParseNameSection: %v", err)
	}
	if !ns.HasModule || ns.Module != "example" {
		t.Fatalf("module name: %+v", ns)
	}
	if ns.Function[0] != "identity" {
		t.Fatalf("function name: %+v", ns.Function)
	}
}
