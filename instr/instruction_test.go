package instr

import (
	"testing"

	"github.com/wasynth/wasynth-go/leb128"
	"github.com/wasynth/wasynth-go/wasmtype"
)

func roundTrip(t *testing.T, expr Expression) Expression {
	t.Helper()
	w := leb128.NewWriter()
	EncodeExpression(w, expr)
	c := leb128.NewCursor(w.Bytes())
	got, err := DecodeExpression(c)
	if err != nil {
		t.Fatalf("DecodeExpression: %v", err)
	}
	if c.Len() != 0 {
		t.Fatalf("trailing bytes after decode: %d", c.Len())
	}
	return got
}

func TestEmptyExpressionRoundTrip(t *testing.T) {
	got := roundTrip(t, Expression{})
	if len(got) != 0 {
		t.Fatalf("got %d instructions, want 0", len(got))
	}
}

func TestIdentityFunctionRoundTrip(t *testing.T) {
	expr := Expression{{Op: OpLocalGet, LocalIdx: 0}}
	got := roundTrip(t, expr)
	if len(got) != 1 || got[0].Op != OpLocalGet || got[0].LocalIdx != 0 {
		t.Fatalf("got %+v", got)
	}
}

func TestBlockLoopIfElseRoundTrip(t *testing.T) {
	expr := Expression{
		{Op: OpBlock, Block: BlockType{Empty: true}, Then: Expression{
			{Op: OpLoop, Block: BlockType{Empty: true}, Then: Expression{
				{Op: OpBr, LabelIdx: 0},
			}},
		}},
		{Op: OpIf, Block: BlockType{Value: wasmtype.I32}, HasElse: true,
			Then: Expression{{Op: OpI32Const, I32: 1}},
			Else: Expression{{Op: OpI32Const, I32: 0}},
		},
	}
	got := roundTrip(t, expr)
	if len(got) != 2 {
		t.Fatalf("got %d top-level instructions, want 2", len(got))
	}
	if got[0].Op != OpBlock || len(got[0].Then) != 1 || got[0].Then[0].Op != OpLoop {
		t.Fatalf("block/loop nesting lost: %+v", got[0])
	}
	ifIns := got[1]
	if !ifIns.HasElse || ifIns.Then[0].I32 != 1 || ifIns.Else[0].I32 != 0 {
		t.Fatalf("if/else arms lost: %+v", ifIns)
	}
}

func TestIfWithoutElseRoundTrip(t *testing.T) {
	expr := Expression{
		{Op: OpIf, Block: BlockType{Empty: true}, Then: Expression{{Op: OpNop}}},
		{Op: OpI32Const, I32: 7},
	}
	got := roundTrip(t, expr)
	if len(got) != 2 || got[0].HasElse || len(got[0].Then) != 1 || got[1].I32 != 7 {
		t.Fatalf("got %+v", got)
	}
}

func TestBrTableRoundTrip(t *testing.T) {
	expr := Expression{{Op: OpBrTable, Labels: []uint32{0, 1, 2, 3}, DefaultLabel: 4}}
	got := roundTrip(t, expr)
	if len(got) != 1 || len(got[0].Labels) != 4 || got[0].DefaultLabel != 4 {
		t.Fatalf("got %+v", got)
	}
}

func TestSIMDConstRoundTrip(t *testing.T) {
	var v [16]byte
	for i := range v {
		v[i] = byte(i * 17)
	}
	expr := Expression{{Op: OpV128Const, V128: v}}
	got := roundTrip(t, expr)
	if len(got) != 1 || got[0].Op != OpV128Const || got[0].V128 != v {
		t.Fatalf("got %+v", got)
	}
}

func TestSIMDShuffleAndLaneOpsRoundTrip(t *testing.T) {
	var lanes [16]byte
	for i := range lanes {
		lanes[i] = byte(15 - i)
	}
	expr := Expression{
		{Op: OpI8x16Shuffle, ShuffleLanes: lanes},
		{Op: OpI32x4ExtractLane, Lane: 2},
		{Op: OpF64x2ReplaceLane, Lane: 1},
	}
	got := roundTrip(t, expr)
	if len(got) != 3 || got[0].ShuffleLanes != lanes || got[1].Lane != 2 || got[2].Lane != 1 {
		t.Fatalf("got %+v", got)
	}
}

func TestBulkMemoryAndTableOpsRoundTrip(t *testing.T) {
	expr := Expression{
		{Op: OpMemoryInit, DataIdx: 3},
		{Op: OpDataDrop, DataIdx: 3},
		{Op: OpMemoryCopy},
		{Op: OpMemoryFill},
		{Op: OpTableInit, ElemIdx: 1, TableIdx: 0},
		{Op: OpElemDrop, ElemIdx: 1},
		{Op: OpTableCopy, TableIdx: 0, SrcTableIdx: 1},
		{Op: OpTableGrow, TableIdx: 0},
		{Op: OpTableGet, TableIdx: 0},
		{Op: OpTableSet, TableIdx: 0},
	}
	got := roundTrip(t, expr)
	if len(got) != len(expr) {
		t.Fatalf("got %d instructions, want %d", len(got), len(expr))
	}
	for i := range expr {
		if got[i].Op != expr[i].Op {
			t.Fatalf("instruction %d: got op %v want %v", i, got[i].Op, expr[i].Op)
		}
	}
}

func TestMemoryInstrReservedByteNonzeroRejected(t *testing.T) {
	cases := []struct {
		name string
		raw  func(w *leb128.Writer)
	}{
		{"memory.init", func(w *leb128.Writer) {
			w.WriteByte(0xFC)
			w.WriteUint32(8)  // memory.init
			w.WriteUint32(0)  // dataidx
			w.WriteByte(0x01) // reserved memidx, must be 0x00
			w.WriteByte(byte(opEnd))
		}},
		{"memory.copy dst", func(w *leb128.Writer) {
			w.WriteByte(0xFC)
			w.WriteUint32(10) // memory.copy
			w.WriteByte(0x01) // reserved dst memidx, must be 0x00
			w.WriteByte(0x00)
			w.WriteByte(byte(opEnd))
		}},
		{"memory.copy src", func(w *leb128.Writer) {
			w.WriteByte(0xFC)
			w.WriteUint32(10) // memory.copy
			w.WriteByte(0x00)
			w.WriteByte(0x01) // reserved src memidx, must be 0x00
			w.WriteByte(byte(opEnd))
		}},
		{"memory.fill", func(w *leb128.Writer) {
			w.WriteByte(0xFC)
			w.WriteUint32(11) // memory.fill
			w.WriteByte(0x01) // reserved memidx, must be 0x00
			w.WriteByte(byte(opEnd))
		}},
	}
	for _, tc := range cases {
		w := leb128.NewWriter()
		tc.raw(w)
		c := leb128.NewCursor(w.Bytes())
		if _, err := DecodeExpression(c); err == nil {
			t.Errorf("%s: expected memory-instr-no-trailing-zero error, got nil", tc.name)
		}
	}
}

func TestDeeplyNestedBlocksDoNotRecurse(t *testing.T) {
	const depth = 10000
	expr := Expression{{Op: OpI32Const, I32: 42}}
	for i := 0; i < depth; i++ {
		expr = Expression{{Op: OpBlock, Block: BlockType{Empty: true}, Then: expr}}
	}
	got := roundTrip(t, expr)
	for i := 0; i < depth; i++ {
		if len(got) != 1 || got[0].Op != OpBlock {
			t.Fatalf("nesting level %d: lost structure", i)
		}
		got = got[0].Then
	}
	if len(got) != 1 || got[0].Op != OpI32Const || got[0].I32 != 42 {
		t.Fatalf("innermost instruction lost: %+v", got)
	}
}

func TestUnknownOpcodeRejected(t *testing.T) {
	w := leb128.NewWriter()
	w.WriteByte(0xD3) // unassigned primary-space byte
	w.WriteByte(byte(opEnd))
	c := leb128.NewCursor(w.Bytes())
	if _, err := DecodeExpression(c); err == nil {
		t.Fatal("expected unknown-opcode error")
	}
}
