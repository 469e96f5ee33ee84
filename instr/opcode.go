// Package instr is the instruction codec: a tagged representation of the
// full MVP + bulk-memory + reference-types + SIMD instruction set (spec.md
// §4.3), with matched decode and encode paths driven by an explicit work
// stack rather than recursion (spec.md §9 "Recursion").
//
// There is no teacher precedent for a full opcode table in Go (the teacher
// VM interprets raw bytes on the fly instead of building a typed model), so
// the table here is grounded directly on
// _examples/original_source/src/instructions.rs, the Rust source spec.md
// was distilled from, which enumerates every opcode/sub-opcode byte this
// package must agree with.
package instr

import "fmt"

// Op identifies an instruction's opcode across all three address spaces.
// Primary single-byte opcodes occupy 0x00-0xFF directly; the 0xFC
// (bulk-memory / saturating-truncation / table) and 0xFD (SIMD) prefix
// sub-opcode spaces are folded into the same integer space by OR-ing a
// space tag, since Wasm sub-opcodes are LEB128 u32 values with no fixed
// upper bound.
type Op uint32

const (
	fcSpace uint32 = 1 << 16
	fdSpace uint32 = 1 << 17
)

func fcOp(sub uint32) Op { return Op(fcSpace | sub) }
func fdOp(sub uint32) Op { return Op(fdSpace | sub) }

// Space reports which opcode address space op belongs to.
func (op Op) Space() string {
	switch {
	case uint32(op)&fdSpace != 0:
		return "0xFD"
	case uint32(op)&fcSpace != 0:
		return "0xFC"
	default:
		return "primary"
	}
}

// Control instructions (primary space).
const (
	OpUnreachable Op = 0x00
	OpNop         Op = 0x01
	OpBlock       Op = 0x02
	OpLoop        Op = 0x03
	OpIf          Op = 0x04
	opElse        Op = 0x05 // terminator byte, never a standalone Instruction.Op
	opEnd         Op = 0x0B // terminator byte, never a standalone Instruction.Op
	OpBr          Op = 0x0C
	OpBrIf        Op = 0x0D
	OpBrTable     Op = 0x0E
	OpReturn      Op = 0x0F
	OpCall        Op = 0x10
	OpCallIndirect Op = 0x11
)

// Reference instructions.
const (
	OpRefNull   Op = 0xD0
	OpRefIsNull Op = 0xD1
	OpRefFunc   Op = 0xD2
)

// Parametric instructions.
const (
	OpDrop          Op = 0x1A
	OpSelectNumeric Op = 0x1B
	OpSelect        Op = 0x1C
)

// Variable instructions.
const (
	OpLocalGet  Op = 0x20
	OpLocalSet  Op = 0x21
	OpLocalTee  Op = 0x22
	OpGlobalGet Op = 0x23
	OpGlobalSet Op = 0x24
)

// Table instructions living in the primary space (the spec.md open
// question: the source sometimes mis-decoded these as GlobalSet; here they
// are TableGet/TableSet per the Wasm spec, as spec.md §9 mandates).
const (
	OpTableGet Op = 0x25
	OpTableSet Op = 0x26
)

// Memory instructions (primary space): loads/stores carry a MemArg; size
// and grow carry a reserved zero byte.
const (
	OpI32Load    Op = 0x28
	OpI64Load    Op = 0x29
	OpF32Load    Op = 0x2A
	OpF64Load    Op = 0x2B
	OpI32Load8S  Op = 0x2C
	OpI32Load8U  Op = 0x2D
	OpI32Load16S Op = 0x2E
	OpI32Load16U Op = 0x2F
	OpI64Load8S  Op = 0x30
	OpI64Load8U  Op = 0x31
	OpI64Load16S Op = 0x32
	OpI64Load16U Op = 0x33
	OpI64Load32S Op = 0x34
	OpI64Load32U Op = 0x35
	OpI32Store   Op = 0x36
	OpI64Store   Op = 0x37
	OpF32Store   Op = 0x38
	OpF64Store   Op = 0x39
	OpI32Store8  Op = 0x3A
	OpI32Store16 Op = 0x3B
	OpI64Store8  Op = 0x3C
	OpI64Store16 Op = 0x3D
	OpI64Store32 Op = 0x3E
	OpMemorySize Op = 0x3F
	OpMemoryGrow Op = 0x40
)

// Numeric constant instructions.
const (
	OpI32Const Op = 0x41
	OpI64Const Op = 0x42
	OpF32Const Op = 0x43
	OpF64Const Op = 0x44
)

// isMemArgOp reports whether b is a primary-space instruction whose sole
// immediate is a MemArg (align, offset) -- 0x28 through 0x3E, a contiguous run.
func isMemArgOp(b byte) bool { return b >= 0x28 && b <= 0x3E }

// numericNames covers the long contiguous block 0x45..0xC4: comparisons,
// arithmetic, conversions and sign-extension, none of which carry an
// immediate. This block has no gaps in the Wasm 1.0 + sign-extension
// encoding, so decode dispatches on range membership rather than one
// named Go constant per opcode.
var numericNames = map[byte]string{
	0x45: "i32.eqz", 0x46: "i32.eq", 0x47: "i32.ne", 0x48: "i32.lt_s", 0x49: "i32.lt_u",
	0x4A: "i32.gt_s", 0x4B: "i32.gt_u", 0x4C: "i32.le_s", 0x4D: "i32.le_u", 0x4E: "i32.ge_s", 0x4F: "i32.ge_u",
	0x50: "i64.eqz", 0x51: "i64.eq", 0x52: "i64.ne", 0x53: "i64.lt_s", 0x54: "i64.lt_u",
	0x55: "i64.gt_s", 0x56: "i64.gt_u", 0x57: "i64.le_s", 0x58: "i64.le_u", 0x59: "i64.ge_s", 0x5A: "i64.ge_u",
	0x5B: "f32.eq", 0x5C: "f32.ne", 0x5D: "f32.lt", 0x5E: "f32.gt", 0x5F: "f32.le", 0x60: "f32.ge",
	0x61: "f64.eq", 0x62: "f64.ne", 0x63: "f64.lt", 0x64: "f64.gt", 0x65: "f64.le", 0x66: "f64.ge",
	0x67: "i32.clz", 0x68: "i32.ctz", 0x69: "i32.popcnt", 0x6A: "i32.add", 0x6B: "i32.sub", 0x6C: "i32.mul",
	0x6D: "i32.div_s", 0x6E: "i32.div_u", 0x6F: "i32.rem_s", 0x70: "i32.rem_u", 0x71: "i32.and", 0x72: "i32.or",
	0x73: "i32.xor", 0x74: "i32.shl", 0x75: "i32.shr_s", 0x76: "i32.shr_u", 0x77: "i32.rotl", 0x78: "i32.rotr",
	0x79: "i64.clz", 0x7A: "i64.ctz", 0x7B: "i64.popcnt", 0x7C: "i64.add", 0x7D: "i64.sub", 0x7E: "i64.mul",
	0x7F: "i64.div_s", 0x80: "i64.div_u", 0x81: "i64.rem_s", 0x82: "i64.rem_u", 0x83: "i64.and", 0x84: "i64.or",
	0x85: "i64.xor", 0x86: "i64.shl", 0x87: "i64.shr_s", 0x88: "i64.shr_u", 0x89: "i64.rotl", 0x8A: "i64.rotr",
	0x8B: "f32.abs", 0x8C: "f32.neg", 0x8D: "f32.ceil", 0x8E: "f32.floor", 0x8F: "f32.trunc", 0x90: "f32.nearest",
	0x91: "f32.sqrt", 0x92: "f32.add", 0x93: "f32.sub", 0x94: "f32.mul", 0x95: "f32.div", 0x96: "f32.min",
	0x97: "f32.max", 0x98: "f32.copysign",
	0x99: "f64.abs", 0x9A: "f64.neg", 0x9B: "f64.ceil", 0x9C: "f64.floor", 0x9D: "f64.trunc", 0x9E: "f64.nearest",
	0x9F: "f64.sqrt", 0xA0: "f64.add", 0xA1: "f64.sub", 0xA2: "f64.mul", 0xA3: "f64.div", 0xA4: "f64.min",
	0xA5: "f64.max", 0xA6: "f64.copysign",
	0xA7: "i32.wrap_i64", 0xA8: "i32.trunc_f32_s", 0xA9: "i32.trunc_f32_u", 0xAA: "i32.trunc_f64_s", 0xAB: "i32.trunc_f64_u",
	0xAC: "i64.extend_i32_s", 0xAD: "i64.extend_i32_u", 0xAE: "i64.trunc_f32_s", 0xAF: "i64.trunc_f32_u",
	0xB0: "i64.trunc_f64_s", 0xB1: "i64.trunc_f64_u",
	0xB2: "f32.convert_i32_s", 0xB3: "f32.convert_i32_u", 0xB4: "f32.convert_i64_s", 0xB5: "f32.convert_i64_u",
	0xB6: "f32.demote_f64",
	0xB7: "f64.convert_i32_s", 0xB8: "f64.convert_i32_u", 0xB9: "f64.convert_i64_s", 0xBA: "f64.convert_i64_u",
	0xBB: "f64.promote_f32",
	0xBC: "i32.reinterpret_f32", 0xBD: "i64.reinterpret_f64", 0xBE: "f32.reinterpret_i32", 0xBF: "f64.reinterpret_i64",
	0xC0: "i32.extend8_s", 0xC1: "i32.extend16_s", 0xC2: "i64.extend8_s", 0xC3: "i64.extend16_s", 0xC4: "i64.extend32_s",
}

// 0xFC sub-opcodes: saturating truncation (0-7), bulk memory (8-11) and
// table ops (12-17).
const (
	OpI32TruncSatF32S Op = fcOp(0)
	OpI32TruncSatF32U Op = fcOp(1)
	OpI32TruncSatF64S Op = fcOp(2)
	OpI32TruncSatF64U Op = fcOp(3)
	OpI64TruncSatF32S Op = fcOp(4)
	OpI64TruncSatF32U Op = fcOp(5)
	OpI64TruncSatF64S Op = fcOp(6)
	OpI64TruncSatF64U Op = fcOp(7)
	OpMemoryInit      Op = fcOp(8)
	OpDataDrop        Op = fcOp(9)
	OpMemoryCopy      Op = fcOp(10)
	OpMemoryFill      Op = fcOp(11)
	OpTableInit       Op = fcOp(12)
	OpElemDrop        Op = fcOp(13)
	OpTableCopy       Op = fcOp(14)
	OpTableGrow       Op = fcOp(15)
	OpTableSize       Op = fcOp(16)
	OpTableFill       Op = fcOp(17)
)

// 0xFD sub-opcodes needing a non-MemArg, non-bare immediate.
const (
	OpV128Load       Op = fdOp(0)
	OpV128Load8x8S   Op = fdOp(1)
	OpV128Load8x8U   Op = fdOp(2)
	OpV128Load16x4S  Op = fdOp(3)
	OpV128Load16x4U  Op = fdOp(4)
	OpV128Load32x2S  Op = fdOp(5)
	OpV128Load32x2U  Op = fdOp(6)
	OpV128Load8Splat Op = fdOp(7)
	OpV128Load16Splat Op = fdOp(8)
	OpV128Load32Splat Op = fdOp(9)
	OpV128Load64Splat Op = fdOp(10)
	OpV128Store       Op = fdOp(11)
	OpV128Const       Op = fdOp(12)
	OpI8x16Shuffle    Op = fdOp(13)
	OpI8x16ExtractLaneS Op = fdOp(21)
	OpI8x16ExtractLaneU Op = fdOp(22)
	OpI8x16ReplaceLane  Op = fdOp(23)
	OpI16x8ExtractLaneS Op = fdOp(24)
	OpI16x8ExtractLaneU Op = fdOp(25)
	OpI16x8ReplaceLane  Op = fdOp(26)
	OpI32x4ExtractLane  Op = fdOp(27)
	OpI32x4ReplaceLane  Op = fdOp(28)
	OpI64x2ExtractLane  Op = fdOp(29)
	OpI64x2ReplaceLane  Op = fdOp(30)
	OpF32x4ExtractLane  Op = fdOp(31)
	OpF32x4ReplaceLane  Op = fdOp(32)
	OpF64x2ExtractLane  Op = fdOp(33)
	OpF64x2ReplaceLane  Op = fdOp(34)
	OpV128Load32Zero    Op = fdOp(92)
	OpV128Load64Zero    Op = fdOp(93)
	OpV128Load8Lane     Op = fdOp(84)
	OpV128Load16Lane    Op = fdOp(85)
	OpV128Load32Lane    Op = fdOp(86)
	OpV128Load64Lane    Op = fdOp(87)
	OpV128Store8Lane    Op = fdOp(88)
	OpV128Store16Lane   Op = fdOp(89)
	OpV128Store32Lane   Op = fdOp(90)
	OpV128Store64Lane   Op = fdOp(91)
)

// simdNiladicNames is every 0xFD sub-opcode that carries no immediate at
// all beyond the sub-opcode itself: splats, lane-wise comparisons,
// bitwise/arithmetic/conversion ops. Transcribed from
// original_source/src/instructions.rs's 0xFD match arm.
var simdNiladicNames = map[uint32]string{
	14: "i8x16.swizzle", 15: "i8x16.splat", 16: "i16x8.splat", 17: "i32x4.splat", 18: "i64x2.splat",
	19: "f32x4.splat", 20: "f64x2.splat",
	35: "i8x16.eq", 36: "i8x16.ne", 37: "i8x16.lt_s", 38: "i8x16.lt_u", 39: "i8x16.gt_s", 40: "i8x16.gt_u",
	41: "i8x16.le_s", 42: "i8x16.le_u", 43: "i8x16.ge_s", 44: "i8x16.ge_u",
	45: "i16x8.eq", 46: "i16x8.ne", 47: "i16x8.lt_s", 48: "i16x8.lt_u", 49: "i16x8.gt_s", 50: "i16x8.gt_u",
	51: "i16x8.le_s", 52: "i16x8.le_u", 53: "i16x8.ge_s", 54: "i16x8.ge_u",
	55: "i32x4.eq", 56: "i32x4.ne", 57: "i32x4.lt_s", 58: "i32x4.lt_u", 59: "i32x4.gt_s", 60: "i32x4.gt_u",
	61: "i32x4.le_s", 62: "i32x4.le_u", 63: "i32x4.ge_s", 64: "i32x4.ge_u",
	214: "i64x2.eq", 215: "i64x2.ne", 216: "i64x2.lt_s", 217: "i64x2.gt_s", 218: "i64x2.le_s", 219: "i64x2.ge_s",
	65: "f32x4.eq", 66: "f32x4.ne", 67: "f32x4.lt", 68: "f32x4.gt", 69: "f32x4.le", 70: "f32x4.ge",
	71: "f64x2.eq", 72: "f64x2.ne", 73: "f64x2.lt", 74: "f64x2.gt", 75: "f64x2.le", 76: "f64x2.ge",
	77: "v128.not", 78: "v128.and", 79: "v128.andnot", 80: "v128.or", 81: "v128.xor", 82: "v128.bitselect", 83: "v128.any_true",
	96: "i8x16.abs", 97: "i8x16.neg", 98: "i8x16.popcnt", 99: "i8x16.all_true", 100: "i8x16.bitmask",
	101: "i8x16.narrow_i16x8_s", 102: "i8x16.narrow_i16x8_u",
	107: "i8x16.shl", 108: "i8x16.shr_s", 109: "i8x16.shr_u", 110: "i8x16.add", 111: "i8x16.add_sat_s",
	112: "i8x16.add_sat_u", 113: "i8x16.sub", 114: "i8x16.sub_sat_s", 115: "i8x16.sub_sat_u",
	118: "i8x16.min_s", 119: "i8x16.min_u", 120: "i8x16.max_s", 121: "i8x16.max_u", 123: "i8x16.avgr_u",
	124: "i16x8.extadd_pairwise_i8x16_s", 125: "i16x8.extadd_pairwise_i8x16_u",
	128: "i16x8.abs", 129: "i16x8.neg", 130: "i16x8.q15mulr_sat_s", 131: "i16x8.all_true", 132: "i16x8.bitmask",
	133: "i16x8.narrow_i32x4_s", 134: "i16x8.narrow_i32x4_u",
	135: "i16x8.extend_low_i8x16_s", 136: "i16x8.extend_high_i8x16_s", 137: "i16x8.extend_low_i8x16_u", 138: "i16x8.extend_high_i8x16_u",
	139: "i16x8.shl", 140: "i16x8.shr_s", 141: "i16x8.shr_u", 142: "i16x8.add", 143: "i16x8.add_sat_s",
	144: "i16x8.add_sat_u", 145: "i16x8.sub", 146: "i16x8.sub_sat_s", 147: "i16x8.sub_sat_u",
	149: "i16x8.mul", 150: "i16x8.min_s", 151: "i16x8.min_u", 152: "i16x8.max_s", 153: "i16x8.max_u", 155: "i16x8.avgr_u",
	156: "i16x8.extmul_low_i8x16_s", 157: "i16x8.extmul_high_i8x16_s", 158: "i16x8.extmul_low_i8x16_u", 159: "i16x8.extmul_high_i8x16_u",
	126: "i32x4.extadd_pairwise_i16x8_s", 127: "i32x4.extadd_pairwise_i16x8_u",
	160: "i32x4.abs", 161: "i32x4.neg", 163: "i32x4.all_true", 164: "i32x4.bitmask",
	167: "i32x4.extend_low_i16x8_s", 168: "i32x4.extend_high_i16x8_s", 169: "i32x4.extend_low_i16x8_u", 170: "i32x4.extend_high_i16x8_u",
	171: "i32x4.shl", 172: "i32x4.shr_s", 173: "i32x4.shr_u", 174: "i32x4.add", 177: "i32x4.sub", 181: "i32x4.mul",
	182: "i32x4.min_s", 183: "i32x4.min_u", 184: "i32x4.max_s", 185: "i32x4.max_u", 186: "i32x4.dot_i16x8_s",
	188: "i32x4.extmul_low_i16x8_s", 189: "i32x4.extmul_high_i16x8_s", 190: "i32x4.extmul_low_i16x8_u", 191: "i32x4.extmul_high_i16x8_u",
	192: "i64x2.abs", 193: "i64x2.neg", 195: "i64x2.all_true", 196: "i64x2.bitmask",
	199: "i64x2.extend_low_i32x4_s", 200: "i64x2.extend_high_i32x4_s", 201: "i64x2.extend_low_i32x4_u", 202: "i64x2.extend_high_i32x4_u",
	203: "i64x2.shl", 204: "i64x2.shr_s", 205: "i64x2.shr_u", 206: "i64x2.add", 209: "i64x2.sub", 213: "i64x2.mul",
	220: "i64x2.extmul_low_i32x4_s", 221: "i64x2.extmul_high_i32x4_s", 222: "i64x2.extmul_low_i32x4_u", 223: "i64x2.extmul_high_i32x4_u",
	103: "f32x4.ceil", 104: "f32x4.floor", 105: "f32x4.trunc", 106: "f32x4.nearest",
	224: "f32x4.abs", 225: "f32x4.neg", 227: "f32x4.sqrt", 228: "f32x4.add", 229: "f32x4.sub", 230: "f32x4.mul",
	231: "f32x4.div", 232: "f32x4.min", 233: "f32x4.max", 234: "f32x4.pmin", 235: "f32x4.pmax",
	116: "f64x2.ceil", 117: "f64x2.floor", 122: "f64x2.trunc", 148: "f64x2.nearest",
	236: "f64x2.abs", 237: "f64x2.neg", 239: "f64x2.sqrt", 240: "f64x2.add", 241: "f64x2.sub", 242: "f64x2.mul",
	243: "f64x2.div", 244: "f64x2.min", 245: "f64x2.max", 246: "f64x2.pmin", 247: "f64x2.pmax",
	248: "i32x4.trunc_sat_f32x4_s", 249: "i32x4.trunc_sat_f32x4_u", 250: "f32x4.convert_i32x4_s", 251: "f32x4.convert_i32x4_u",
	252: "i32x4.trunc_sat_f64x2_s_zero", 253: "i32x4.trunc_sat_f64x2_u_zero", 254: "f64x2.convert_low_i32x4_s", 255: "f64x2.convert_low_i32x4_u",
	94: "f32x4.demote_f64x2_zero", 95: "f64x2.promote_low_f32x4",
}

// fcNames maps every 0xFC sub-opcode (0-17) to its mnemonic and backs
// Name()/String(); decode and encode dispatch on the named constants above.
var fcNames = map[uint32]string{
	0: "i32.trunc_sat_f32_s", 1: "i32.trunc_sat_f32_u", 2: "i32.trunc_sat_f64_s", 3: "i32.trunc_sat_f64_u",
	4: "i64.trunc_sat_f32_s", 5: "i64.trunc_sat_f32_u", 6: "i64.trunc_sat_f64_s", 7: "i64.trunc_sat_f64_u",
	8: "memory.init", 9: "data.drop", 10: "memory.copy", 11: "memory.fill",
	12: "table.init", 13: "elem.drop", 14: "table.copy", 15: "table.grow", 16: "table.size", 17: "table.fill",
}

var primaryNames = map[Op]string{
	OpUnreachable: "unreachable", OpNop: "nop", OpBlock: "block", OpLoop: "loop", OpIf: "if",
	OpBr: "br", OpBrIf: "br_if", OpBrTable: "br_table", OpReturn: "return", OpCall: "call", OpCallIndirect: "call_indirect",
	OpRefNull: "ref.null", OpRefIsNull: "ref.is_null", OpRefFunc: "ref.func",
	OpDrop: "drop", OpSelectNumeric: "select", OpSelect: "select",
	OpLocalGet: "local.get", OpLocalSet: "local.set", OpLocalTee: "local.tee",
	OpGlobalGet: "global.get", OpGlobalSet: "global.set",
	OpTableGet: "table.get", OpTableSet: "table.set",
	OpMemorySize: "memory.size", OpMemoryGrow: "memory.grow",
	OpI32Const: "i32.const", OpI64Const: "i64.const", OpF32Const: "f32.const", OpF64Const: "f64.const",
	OpI32Load: "i32.load", OpI64Load: "i64.load", OpF32Load: "f32.load", OpF64Load: "f64.load",
	OpI32Load8S: "i32.load8_s", OpI32Load8U: "i32.load8_u", OpI32Load16S: "i32.load16_s", OpI32Load16U: "i32.load16_u",
	OpI64Load8S: "i64.load8_s", OpI64Load8U: "i64.load8_u", OpI64Load16S: "i64.load16_s", OpI64Load16U: "i64.load16_u",
	OpI64Load32S: "i64.load32_s", OpI64Load32U: "i64.load32_u",
	OpI32Store: "i32.store", OpI64Store: "i64.store", OpF32Store: "f32.store", OpF64Store: "f64.store",
	OpI32Store8: "i32.store8", OpI32Store16: "i32.store16", OpI64Store8: "i64.store8", OpI64Store16: "i64.store16", OpI64Store32: "i64.store32",
}

// Name returns a human-readable mnemonic for op, used in error messages and
// debug dumps; it is not part of the wire format.
func (op Op) Name() string {
	if n, ok := primaryNames[op]; ok {
		return n
	}
	if n, ok := numericNames[byte(op)]; ok && uint32(op) == uint32(byte(op)) {
		return n
	}
	switch {
	case uint32(op)&fcSpace != 0:
		sub := uint32(op) &^ fcSpace
		if n, ok := fcNames[sub]; ok {
			return n
		}
	case uint32(op)&fdSpace != 0:
		sub := uint32(op) &^ fdSpace
		if n, ok := simdNiladicNames[sub]; ok {
			return n
		}
		switch op {
		case OpV128Load:
			return "v128.load"
		case OpV128Store:
			return "v128.store"
		case OpV128Const:
			return "v128.const"
		case OpI8x16Shuffle:
			return "i8x16.shuffle"
		}
	}
	return fmt.Sprintf("op(%s:0x%x)", op.Space(), uint32(op))
}

func (op Op) String() string { return op.Name() }
