package instr

import (
	"github.com/wasynth/wasynth-go/leb128"
)

// encFrame mirrors frame in decode.go: an explicit work-stack entry so
// EncodeExpression never recurses into nested block/loop/if bodies.
type encFrame struct {
	items     Expression
	idx       int
	isIf      bool
	hasElse   bool
	inElseArm bool
	elseItems Expression
}

// EncodeExpression writes expr followed by its closing 0x0B, the inverse of
// DecodeExpression. Nested control structures are walked with an explicit
// stack rather than recursion, matching decode's stack-safety guarantee.
func EncodeExpression(w *leb128.Writer, expr Expression) {
	stack := []encFrame{{items: expr}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]

		if top.idx >= len(top.items) {
			if top.isIf && !top.inElseArm {
				top.inElseArm = true
				if top.hasElse {
					w.WriteByte(byte(opElse))
					top.items = top.elseItems
					top.idx = 0
					continue
				}
			}
			w.WriteByte(byte(opEnd))
			stack = stack[:len(stack)-1]
			continue
		}

		ins := top.items[top.idx]
		top.idx++

		switch ins.Op {
		case OpBlock, OpLoop, OpIf:
			w.WriteByte(byte(ins.Op))
			encodeBlockType(w, ins.Block)
			nf := encFrame{items: ins.Then}
			if ins.Op == OpIf {
				nf.isIf = true
				nf.hasElse = ins.HasElse
				nf.elseItems = ins.Else
			}
			stack = append(stack, nf)
		default:
			encodeLeaf(w, ins)
		}
	}
}

func encodeBlockType(w *leb128.Writer, bt BlockType) {
	switch {
	case bt.Empty:
		w.WriteSignedBounded(-0x40)
	case bt.HasType:
		w.WriteSignedBounded(int64(bt.TypeIdx))
	default:
		w.WriteSignedBounded(int64(bt.Value) - 0x80)
	}
}

func encodeMemArg(w *leb128.Writer, ma MemArg) {
	w.WriteUint32(ma.Align)
	w.WriteUint32(ma.Offset)
}

// encodeLeaf writes every instruction that does not open a nested body.
func encodeLeaf(w *leb128.Writer, ins Instruction) {
	switch ins.Op {
	case OpUnreachable, OpNop, OpReturn, OpDrop, OpSelectNumeric, OpRefIsNull:
		w.WriteByte(byte(ins.Op))

	case OpBr, OpBrIf:
		w.WriteByte(byte(ins.Op))
		w.WriteUint32(ins.LabelIdx)

	case OpBrTable:
		w.WriteByte(byte(ins.Op))
		leb128.WriteVector(w, ins.Labels, func(w *leb128.Writer, v uint32) { w.WriteUint32(v) })
		w.WriteUint32(ins.DefaultLabel)

	case OpCall:
		w.WriteByte(byte(ins.Op))
		w.WriteUint32(ins.FuncIdx)

	case OpCallIndirect:
		w.WriteByte(byte(ins.Op))
		w.WriteUint32(ins.TypeIdx)
		w.WriteUint32(ins.TableIdx)

	case OpRefNull:
		w.WriteByte(byte(ins.Op))
		ins.RefType.Encode(w)

	case OpRefFunc:
		w.WriteByte(byte(ins.Op))
		w.WriteUint32(ins.FuncIdx)

	case OpSelect:
		w.WriteByte(byte(ins.Op))
		w.WriteUint32(uint32(len(ins.SelectTypes)))
		for _, vt := range ins.SelectTypes {
			vt.Encode(w)
		}

	case OpLocalGet, OpLocalSet, OpLocalTee:
		w.WriteByte(byte(ins.Op))
		w.WriteUint32(ins.LocalIdx)

	case OpGlobalGet, OpGlobalSet:
		w.WriteByte(byte(ins.Op))
		w.WriteUint32(ins.GlobalIdx)

	case OpTableGet, OpTableSet:
		w.WriteByte(byte(ins.Op))
		w.WriteUint32(ins.TableIdx)

	case OpMemorySize, OpMemoryGrow:
		w.WriteByte(byte(ins.Op))
		w.WriteByte(0x00)

	case OpI32Const:
		w.WriteByte(byte(ins.Op))
		w.WriteInt32(ins.I32)
	case OpI64Const:
		w.WriteByte(byte(ins.Op))
		w.WriteInt64(ins.I64)
	case OpF32Const:
		w.WriteByte(byte(ins.Op))
		w.WriteF32(ins.F32)
	case OpF64Const:
		w.WriteByte(byte(ins.Op))
		w.WriteF64(ins.F64)

	default:
		if isMemArgOp(byte(ins.Op)) {
			w.WriteByte(byte(ins.Op))
			encodeMemArg(w, ins.MemArg)
			return
		}
		if uint32(ins.Op) <= 0xC4 {
			if _, ok := numericNames[byte(ins.Op)]; ok {
				w.WriteByte(byte(ins.Op))
				return
			}
		}
		if uint32(ins.Op)&fcSpace != 0 {
			encodeFC(w, ins)
			return
		}
		if uint32(ins.Op)&fdSpace != 0 {
			encodeFD(w, ins)
			return
		}
		panic("instr: encode: unrepresentable opcode " + ins.Op.Name())
	}
}

func encodeFC(w *leb128.Writer, ins Instruction) {
	sub := uint32(ins.Op) &^ fcSpace
	w.WriteByte(0xFC)
	w.WriteUint32(sub)
	switch ins.Op {
	case OpMemoryInit:
		w.WriteUint32(ins.DataIdx)
		w.WriteByte(0x00)
	case OpDataDrop:
		w.WriteUint32(ins.DataIdx)
	case OpMemoryCopy:
		w.WriteByte(0x00)
		w.WriteByte(0x00)
	case OpMemoryFill:
		w.WriteByte(0x00)
	case OpTableInit:
		w.WriteUint32(ins.ElemIdx)
		w.WriteUint32(ins.TableIdx)
	case OpElemDrop:
		w.WriteUint32(ins.ElemIdx)
	case OpTableCopy:
		w.WriteUint32(ins.TableIdx)
		w.WriteUint32(ins.SrcTableIdx)
	case OpTableGrow, OpTableSize, OpTableFill:
		w.WriteUint32(ins.TableIdx)
	}
}

func encodeFD(w *leb128.Writer, ins Instruction) {
	sub := uint32(ins.Op) &^ fdSpace
	w.WriteByte(0xFD)
	w.WriteUint32(sub)
	switch ins.Op {
	case OpV128Load, OpV128Load8x8S, OpV128Load8x8U, OpV128Load16x4S, OpV128Load16x4U,
		OpV128Load32x2S, OpV128Load32x2U, OpV128Load8Splat, OpV128Load16Splat,
		OpV128Load32Splat, OpV128Load64Splat, OpV128Store, OpV128Load32Zero, OpV128Load64Zero:
		encodeMemArg(w, ins.MemArg)
	case OpV128Load8Lane, OpV128Load16Lane, OpV128Load32Lane, OpV128Load64Lane,
		OpV128Store8Lane, OpV128Store16Lane, OpV128Store32Lane, OpV128Store64Lane:
		encodeMemArg(w, ins.MemArg)
		w.WriteByte(ins.Lane)
	case OpV128Const:
		w.Write(ins.V128[:])
	case OpI8x16Shuffle:
		w.Write(ins.ShuffleLanes[:])
	case OpI8x16ExtractLaneS, OpI8x16ExtractLaneU, OpI8x16ReplaceLane,
		OpI16x8ExtractLaneS, OpI16x8ExtractLaneU, OpI16x8ReplaceLane,
		OpI32x4ExtractLane, OpI32x4ReplaceLane,
		OpI64x2ExtractLane, OpI64x2ReplaceLane,
		OpF32x4ExtractLane, OpF32x4ReplaceLane,
		OpF64x2ExtractLane, OpF64x2ReplaceLane:
		w.WriteByte(ins.Lane)
	}
}
