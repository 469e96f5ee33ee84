package synth

import (
	"reflect"
	"testing"

	"github.com/wasynth/wasynth-go/instr"
	"github.com/wasynth/wasynth-go/leb128"
	"github.com/wasynth/wasynth-go/parse"
	"github.com/wasynth/wasynth-go/wasmtype"
)

func buildIdentityModuleBytes(t *testing.T) []byte {
	t.Helper()
	ft := wasmtype.FuncType{Param: wasmtype.ResultType{wasmtype.I32}, Result: wasmtype.ResultType{wasmtype.I32}}

	typeW := leb128.NewWriter()
	leb128.WriteVector(typeW, []wasmtype.FuncType{ft}, func(w *leb128.Writer, f wasmtype.FuncType) { f.Encode(w) })

	funcW := leb128.NewWriter()
	leb128.WriteVector(funcW, []uint32{0}, func(w *leb128.Writer, v uint32) { w.WriteUint32(v) })

	expW := leb128.NewWriter()
	expW.WriteName("identity")
	expW.WriteByte(parse.ExportFunc)
	expW.WriteUint32(0)
	exportW := leb128.NewWriter()
	exportW.WriteUint32(1)
	exportW.Write(expW.Bytes())

	bodyW := leb128.NewWriter()
	instr.EncodeExpression(bodyW, instr.Expression{{Op: instr.OpLocalGet, LocalIdx: 0}})
	entryW := leb128.NewWriter()
	entryW.WriteUint32(0)
	entryW.Write(bodyW.Bytes())
	codeW := leb128.NewWriter()
	codeW.WriteUint32(1)
	codeW.WriteUint32(uint32(entryW.Len()))
	codeW.Write(entryW.Bytes())

	w := leb128.NewWriter()
	w.Write([]byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00})

	writeSec := func(id byte, payload []byte) {
		w.WriteByte(id)
		w.WriteUint32(uint32(len(payload)))
		w.Write(payload)
	}
	writeSec(parse.SecType, typeW.Bytes())
	writeSec(parse.SecFunction, funcW.Bytes())
	writeSec(parse.SecExport, exportW.Bytes())
	writeSec(parse.SecCode, codeW.Bytes())
	return w.Bytes()
}

func TestLiftEncodeRoundTrip(t *testing.T) {
	raw := buildIdentityModuleBytes(t)
	pm, err := parse.ParseModule(raw)
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	sm, err := Lift(pm)
	if err != nil {
		t.Fatalf("Lift: %v", err)
	}
	if len(sm.Exports) != 1 || sm.Exports[0].Name != "identity" {
		t.Fatalf("unexpected exports: %+v", sm.Exports)
	}

	encoded := sm.Encode()
	pm2, err := parse.ParseModule(encoded)
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	sm2, err := Lift(pm2)
	if err != nil {
		t.Fatalf("re-lift: %v", err)
	}

	if !reflect.DeepEqual(sm.Types, sm2.Types) {
		t.Fatalf("types mismatch: %+v vs %+v", sm.Types, sm2.Types)
	}
	if !reflect.DeepEqual(sm.Exports, sm2.Exports) {
		t.Fatalf("exports mismatch: %+v vs %+v", sm.Exports, sm2.Exports)
	}
	if !reflect.DeepEqual(sm.Code, sm2.Code) {
		t.Fatalf("code mismatch: %+v vs %+v", sm.Code, sm2.Code)
	}
}

func TestEmptyModuleRoundTrip(t *testing.T) {
	w := leb128.NewWriter()
	w.Write([]byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00})
	pm, err := parse.ParseModule(w.Bytes())
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	sm, err := Lift(pm)
	if err != nil {
		t.Fatalf("Lift: %v", err)
	}
	encoded := sm.Encode()
	if len(encoded) != 8 {
		t.Fatalf("expected bare 8-byte header, got %d bytes", len(encoded))
	}
}

func TestDataCountMismatchRejected(t *testing.T) {
	sm := &Module{HasDataCount: true, DataCount: 3}
	if err := sm.Validate(); err == nil {
		t.Fatal("expected data-count-mismatch error")
	}
}

// spec.md §4.5/§4.7 and scenario S7 locate the at-most-one-section check
// at lift time; Lift must reject a module with two Type sections even
// though parse.ParseModule itself accepted it.
func TestLiftRejectsDuplicateSection(t *testing.T) {
	emptyVec := func() []byte {
		w := leb128.NewWriter()
		w.WriteUint32(0)
		return w.Bytes()
	}
	w := leb128.NewWriter()
	w.Write([]byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00})
	for i := 0; i < 2; i++ {
		w.WriteByte(parse.SecType)
		payload := emptyVec()
		w.WriteUint32(uint32(len(payload)))
		w.Write(payload)
	}
	pm, err := parse.ParseModule(w.Bytes())
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	if _, err := Lift(pm); err == nil {
		t.Fatal("expected duplicate-section error from Lift")
	}
}
