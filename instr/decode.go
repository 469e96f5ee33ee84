package instr

import (
	"github.com/wasynth/wasynth-go/leb128"
	"github.com/wasynth/wasynth-go/wasmtype"
	"github.com/wasynth/wasynth-go/wasynth"
)

// frame is one level of an explicit work stack standing in for the call
// stack a recursive decoder would use. spec.md §9 requires decode to stay
// stack-safe for deeply nested block/loop/if structures (S6: ten thousand
// levels), so DecodeExpression never calls itself.
type frame struct {
	op      Op
	block   BlockType
	insns   Expression
	thenArm Expression
	inElse  bool
}

// DecodeExpression decodes one instruction sequence up to and including its
// closing 0x0B, returning the instructions without the terminator. Used
// both for top-level function bodies and, via the internal stack, for
// nested block/loop/if bodies.
func DecodeExpression(c *leb128.Cursor) (Expression, error) {
	stack := []frame{{op: 0, block: BlockType{}}}

	for {
		b, err := c.AdvanceByte()
		if err != nil {
			return nil, err
		}

		if isTerminator(b) {
			top := &stack[len(stack)-1]
			if b == byte(opElse) {
				if top.op != OpIf || top.inElse {
					return nil, wasynth.ErrUnknownOpcode(b)
				}
				top.thenArm = top.insns
				top.insns = nil
				top.inElse = true
				continue
			}
			// b == opEnd: close the current frame.
			if len(stack) == 1 {
				return stack[0].insns, nil
			}
			closed := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			ins := Instruction{Op: closed.op, Block: closed.block}
			if closed.inElse {
				ins.Then = closed.thenArm
				ins.Else = closed.insns
				ins.HasElse = true
			} else {
				ins.Then = closed.insns
			}
			parent := &stack[len(stack)-1]
			parent.insns = append(parent.insns, ins)
			continue
		}

		if b == byte(OpBlock) || b == byte(OpLoop) || b == byte(OpIf) {
			bt, err := decodeBlockType(c)
			if err != nil {
				return nil, err
			}
			stack = append(stack, frame{op: Op(b), block: bt})
			continue
		}

		ins, err := decodeLeaf(c, b)
		if err != nil {
			return nil, err
		}
		top := &stack[len(stack)-1]
		top.insns = append(top.insns, ins)
	}
}

// decodeBlockType reads the s33 LEB128 block-type immediate: 0x40 (empty),
// a single ValueType byte, or a signed type-section index.
func decodeBlockType(c *leb128.Cursor) (BlockType, error) {
	v, err := c.SignedBounded(33)
	if err != nil {
		return BlockType{}, err
	}
	if v == -0x40 {
		return BlockType{Empty: true}, nil
	}
	if v < 0 {
		switch byte(int64(v) & 0x7f) {
		case byte(wasmtype.I32), byte(wasmtype.I64), byte(wasmtype.F32), byte(wasmtype.F64),
			byte(wasmtype.V128), byte(wasmtype.FuncRef), byte(wasmtype.ExternRef):
			return BlockType{Value: wasmtype.ValueType(int64(v) & 0x7f)}, nil
		}
		return BlockType{}, wasynth.ErrInvalidValTypeID(byte(v))
	}
	return BlockType{HasType: true, TypeIdx: uint32(v)}, nil
}

// decodeLeaf decodes a single instruction whose opening byte b has already
// been consumed, for every opcode that does not open a nested body.
func decodeLeaf(c *leb128.Cursor, b byte) (Instruction, error) {
	op := Op(b)
	switch op {
	case OpUnreachable, OpNop, OpReturn, OpDrop, OpSelectNumeric, OpRefIsNull:
		return Instruction{Op: op}, nil

	case OpBr, OpBrIf:
		idx, err := c.Uint32()
		return Instruction{Op: op, LabelIdx: idx}, err

	case OpBrTable:
		labels, err := leb128.Collect(c, func(c *leb128.Cursor) (uint32, error) { return c.Uint32() })
		if err != nil {
			return Instruction{}, err
		}
		def, err := c.Uint32()
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{Op: op, Labels: labels, DefaultLabel: def}, nil

	case OpCall:
		idx, err := c.Uint32()
		return Instruction{Op: op, FuncIdx: idx}, err

	case OpCallIndirect:
		ty, err := c.Uint32()
		if err != nil {
			return Instruction{}, err
		}
		tbl, err := c.Uint32()
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{Op: op, TypeIdx: ty, TableIdx: tbl}, nil

	case OpRefNull:
		rt, err := wasmtype.DecodeReferenceType(c)
		return Instruction{Op: op, RefType: rt}, err

	case OpRefFunc:
		idx, err := c.Uint32()
		return Instruction{Op: op, FuncIdx: idx}, err

	case OpSelect:
		types, err := wasmtype.DecodeResultType(c)
		return Instruction{Op: op, SelectTypes: []wasmtype.ValueType(types)}, err

	case OpLocalGet, OpLocalSet, OpLocalTee:
		idx, err := c.Uint32()
		return Instruction{Op: op, LocalIdx: idx}, err

	case OpGlobalGet, OpGlobalSet:
		idx, err := c.Uint32()
		return Instruction{Op: op, GlobalIdx: idx}, err

	case OpTableGet, OpTableSet:
		idx, err := c.Uint32()
		return Instruction{Op: op, TableIdx: idx}, err

	case OpMemorySize, OpMemoryGrow:
		zero, err := c.AdvanceByte()
		if err != nil {
			return Instruction{}, err
		}
		if zero != 0x00 {
			return Instruction{}, wasynth.ErrMemoryInstrNoTrailingZero(op.Name(), zero)
		}
		return Instruction{Op: op}, nil

	case OpI32Const:
		v, err := c.Int32()
		return Instruction{Op: op, I32: v}, err
	case OpI64Const:
		v, err := c.Int64()
		return Instruction{Op: op, I64: v}, err
	case OpF32Const:
		v, err := c.F32()
		return Instruction{Op: op, F32: v}, err
	case OpF64Const:
		v, err := c.F64()
		return Instruction{Op: op, F64: v}, err
	}

	if isMemArgOp(b) {
		ma, err := decodeMemArg(c)
		return Instruction{Op: op, MemArg: ma}, err
	}

	if b >= 0x45 && b <= 0xC4 {
		if _, ok := numericNames[b]; ok {
			return Instruction{Op: op}, nil
		}
	}

	switch b {
	case 0xFC:
		return decodeFC(c)
	case 0xFD:
		return decodeFD(c)
	}

	return Instruction{}, wasynth.ErrUnknownOpcode(b)
}

func decodeMemArg(c *leb128.Cursor) (MemArg, error) {
	align, err := c.Uint32()
	if err != nil {
		return MemArg{}, err
	}
	offset, err := c.Uint32()
	if err != nil {
		return MemArg{}, err
	}
	return MemArg{Align: align, Offset: offset}, nil
}

// expectReservedMemIdx reads the reserved memidx byte the FC-space bulk
// memory instructions (memory.init, memory.copy, memory.fill) carry and
// rejects a nonzero value, matching spec.md §3's invariant that
// memory-family reserved bytes carry exactly 0x00 and §4.3/§7's
// memory-instr-no-trailing-zero error -- the same check decodeLeaf already
// applies to the primary-space memory.size/memory.grow reserved byte.
func expectReservedMemIdx(c *leb128.Cursor, op Op) error {
	b, err := c.AdvanceByte()
	if err != nil {
		return err
	}
	if b != 0x00 {
		return wasynth.ErrMemoryInstrNoTrailingZero(op.Name(), b)
	}
	return nil
}

func decodeFC(c *leb128.Cursor) (Instruction, error) {
	sub, err := c.Uint32()
	if err != nil {
		return Instruction{}, err
	}
	op := fcOp(sub)
	switch op {
	case OpI32TruncSatF32S, OpI32TruncSatF32U, OpI32TruncSatF64S, OpI32TruncSatF64U,
		OpI64TruncSatF32S, OpI64TruncSatF32U, OpI64TruncSatF64S, OpI64TruncSatF64U:
		return Instruction{Op: op}, nil

	case OpMemoryInit:
		dataIdx, err := c.Uint32()
		if err != nil {
			return Instruction{}, err
		}
		if err := expectReservedMemIdx(c, op); err != nil {
			return Instruction{}, err
		}
		return Instruction{Op: op, DataIdx: dataIdx}, nil

	case OpDataDrop:
		idx, err := c.Uint32()
		return Instruction{Op: op, DataIdx: idx}, err

	case OpMemoryCopy:
		if err := expectReservedMemIdx(c, op); err != nil {
			return Instruction{}, err
		}
		if err := expectReservedMemIdx(c, op); err != nil {
			return Instruction{}, err
		}
		return Instruction{Op: op}, nil

	case OpMemoryFill:
		if err := expectReservedMemIdx(c, op); err != nil {
			return Instruction{}, err
		}
		return Instruction{Op: op}, nil

	case OpTableInit:
		elemIdx, err := c.Uint32()
		if err != nil {
			return Instruction{}, err
		}
		tblIdx, err := c.Uint32()
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{Op: op, ElemIdx: elemIdx, TableIdx: tblIdx}, nil

	case OpElemDrop:
		idx, err := c.Uint32()
		return Instruction{Op: op, ElemIdx: idx}, err

	case OpTableCopy:
		dst, err := c.Uint32()
		if err != nil {
			return Instruction{}, err
		}
		src, err := c.Uint32()
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{Op: op, TableIdx: dst, SrcTableIdx: src}, nil

	case OpTableGrow, OpTableSize, OpTableFill:
		idx, err := c.Uint32()
		return Instruction{Op: op, TableIdx: idx}, err
	}
	return Instruction{}, wasynth.ErrUnknownFCSubopcode(sub)
}

func decodeFD(c *leb128.Cursor) (Instruction, error) {
	sub, err := c.Uint32()
	if err != nil {
		return Instruction{}, err
	}
	op := fdOp(sub)
	switch op {
	case OpV128Load, OpV128Load8x8S, OpV128Load8x8U, OpV128Load16x4S, OpV128Load16x4U,
		OpV128Load32x2S, OpV128Load32x2U, OpV128Load8Splat, OpV128Load16Splat,
		OpV128Load32Splat, OpV128Load64Splat, OpV128Store, OpV128Load32Zero, OpV128Load64Zero:
		ma, err := decodeMemArg(c)
		return Instruction{Op: op, MemArg: ma}, err

	case OpV128Load8Lane, OpV128Load16Lane, OpV128Load32Lane, OpV128Load64Lane,
		OpV128Store8Lane, OpV128Store16Lane, OpV128Store32Lane, OpV128Store64Lane:
		ma, err := decodeMemArg(c)
		if err != nil {
			return Instruction{}, err
		}
		lane, err := c.AdvanceByte()
		return Instruction{Op: op, MemArg: ma, Lane: lane}, err

	case OpV128Const:
		raw, err := c.Advance(16)
		if err != nil {
			return Instruction{}, err
		}
		var v [16]byte
		copy(v[:], raw)
		return Instruction{Op: op, V128: v}, nil

	case OpI8x16Shuffle:
		raw, err := c.Advance(16)
		if err != nil {
			return Instruction{}, err
		}
		var lanes [16]byte
		copy(lanes[:], raw)
		return Instruction{Op: op, ShuffleLanes: lanes}, nil

	case OpI8x16ExtractLaneS, OpI8x16ExtractLaneU, OpI8x16ReplaceLane,
		OpI16x8ExtractLaneS, OpI16x8ExtractLaneU, OpI16x8ReplaceLane,
		OpI32x4ExtractLane, OpI32x4ReplaceLane,
		OpI64x2ExtractLane, OpI64x2ReplaceLane,
		OpF32x4ExtractLane, OpF32x4ReplaceLane,
		OpF64x2ExtractLane, OpF64x2ReplaceLane:
		lane, err := c.AdvanceByte()
		return Instruction{Op: op, Lane: lane}, err
	}

	if _, ok := simdNiladicNames[sub]; ok {
		return Instruction{Op: op}, nil
	}
	return Instruction{}, wasynth.ErrUnknownSIMDSubopcode(sub)
}
