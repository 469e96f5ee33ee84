package synth

import (
	"github.com/wasynth/wasynth-go/instr"
	"github.com/wasynth/wasynth-go/leb128"
	"github.com/wasynth/wasynth-go/parse"
	"github.com/wasynth/wasynth-go/wasmtype"
)

var magic = []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}

func wrapSection(out *leb128.Writer, id byte, payload []byte) {
	out.WriteByte(id)
	out.WriteUint32(uint32(len(payload)))
	out.Write(payload)
}

func encodeImport(w *leb128.Writer, imp parse.Import) {
	w.WriteName(imp.Module)
	w.WriteName(imp.Name)
	w.WriteByte(imp.Kind)
	switch imp.Kind {
	case parse.ImportFunc:
		w.WriteUint32(imp.TypeIdx)
	case parse.ImportTable:
		imp.Table.Encode(w)
	case parse.ImportMem:
		imp.Mem.Encode(w)
	case parse.ImportGlobal:
		imp.Global.Encode(w)
	}
}

func encodeExport(w *leb128.Writer, exp parse.Export) {
	w.WriteName(exp.Name)
	w.WriteByte(exp.Kind)
	w.WriteUint32(exp.Idx)
}

func encodeGlobal(w *leb128.Writer, g parse.Global) {
	g.Type.Encode(w)
	instr.EncodeExpression(w, g.Init)
}

func encodeElement(w *leb128.Writer, seg parse.ElementSegment) {
	usesExprs := seg.Exprs != nil
	isDefaultFuncref := seg.Type == wasmtype.RefFunc
	switch {
	case seg.Mode == parse.ElemActive && seg.Table == 0 && !usesExprs && isDefaultFuncref:
		w.WriteUint32(0)
		instr.EncodeExpression(w, seg.Offset)
		leb128.WriteVector(w, seg.Funcs, func(w *leb128.Writer, v uint32) { w.WriteUint32(v) })
	case seg.Mode == parse.ElemPassive && !usesExprs && isDefaultFuncref:
		w.WriteUint32(1)
		w.WriteByte(0x00)
		leb128.WriteVector(w, seg.Funcs, func(w *leb128.Writer, v uint32) { w.WriteUint32(v) })
	case seg.Mode == parse.ElemActive && !usesExprs:
		w.WriteUint32(2)
		w.WriteUint32(seg.Table)
		instr.EncodeExpression(w, seg.Offset)
		w.WriteByte(0x00)
		leb128.WriteVector(w, seg.Funcs, func(w *leb128.Writer, v uint32) { w.WriteUint32(v) })
	case seg.Mode == parse.ElemDeclarative && !usesExprs && isDefaultFuncref:
		w.WriteUint32(3)
		w.WriteByte(0x00)
		leb128.WriteVector(w, seg.Funcs, func(w *leb128.Writer, v uint32) { w.WriteUint32(v) })
	case seg.Mode == parse.ElemActive && seg.Table == 0 && usesExprs:
		w.WriteUint32(4)
		instr.EncodeExpression(w, seg.Offset)
		leb128.WriteVector(w, seg.Exprs, func(w *leb128.Writer, e instr.Expression) { instr.EncodeExpression(w, e) })
	case seg.Mode == parse.ElemPassive:
		w.WriteUint32(5)
		seg.Type.Encode(w)
		leb128.WriteVector(w, seg.Exprs, func(w *leb128.Writer, e instr.Expression) { instr.EncodeExpression(w, e) })
	case seg.Mode == parse.ElemActive:
		w.WriteUint32(6)
		w.WriteUint32(seg.Table)
		instr.EncodeExpression(w, seg.Offset)
		seg.Type.Encode(w)
		leb128.WriteVector(w, seg.Exprs, func(w *leb128.Writer, e instr.Expression) { instr.EncodeExpression(w, e) })
	default: // ElemDeclarative with explicit reftype/expr list
		w.WriteUint32(7)
		seg.Type.Encode(w)
		leb128.WriteVector(w, seg.Exprs, func(w *leb128.Writer, e instr.Expression) { instr.EncodeExpression(w, e) })
	}
}

func encodeCodeEntry(w *leb128.Writer, entry parse.CodeEntry) {
	body := leb128.NewWriter()
	leb128.WriteVector(body, entry.Locals, func(w *leb128.Writer, g parse.LocalGroup) {
		w.WriteUint32(g.Count)
		g.Type.Encode(w)
	})
	instr.EncodeExpression(body, entry.Body)
	w.WriteUint32(uint32(body.Len()))
	w.Write(body.Bytes())
}

func encodeData(w *leb128.Writer, seg parse.DataSegment) {
	switch seg.Mode {
	case parse.DataActive:
		if seg.Memory == 0 {
			w.WriteUint32(0)
			instr.EncodeExpression(w, seg.Offset)
		} else {
			w.WriteUint32(2)
			w.WriteUint32(seg.Memory)
			instr.EncodeExpression(w, seg.Offset)
		}
	case parse.DataPassive:
		w.WriteUint32(1)
	}
	w.WriteUint32(uint32(len(seg.Bytes)))
	w.Write(seg.Bytes)
}

// Encode serializes m back into a Wasm binary, writing sections in the
// canonical order spec.md §5 specifies (type, import, function, table,
// memory, global, export, start, element, code, data, data-count),
// followed by custom sections in their original relative order with the
// name section (if any) written last among them.
func (m *Module) Encode() []byte {
	out := leb128.NewWriter()
	out.Write(magic)

	if len(m.Types) > 0 {
		w := leb128.NewWriter()
		leb128.WriteVector(w, m.Types, func(w *leb128.Writer, f wasmtype.FuncType) { f.Encode(w) })
		wrapSection(out, parse.SecType, w.Bytes())
	}
	if len(m.Imports) > 0 {
		w := leb128.NewWriter()
		leb128.WriteVector(w, m.Imports, encodeImport)
		wrapSection(out, parse.SecImport, w.Bytes())
	}
	if len(m.Functions) > 0 {
		w := leb128.NewWriter()
		leb128.WriteVector(w, m.Functions, func(w *leb128.Writer, v uint32) { w.WriteUint32(v) })
		wrapSection(out, parse.SecFunction, w.Bytes())
	}
	if len(m.Tables) > 0 {
		w := leb128.NewWriter()
		leb128.WriteVector(w, m.Tables, func(w *leb128.Writer, t wasmtype.TableType) { t.Encode(w) })
		wrapSection(out, parse.SecTable, w.Bytes())
	}
	if len(m.Memories) > 0 {
		w := leb128.NewWriter()
		leb128.WriteVector(w, m.Memories, func(w *leb128.Writer, mt wasmtype.MemType) { mt.Encode(w) })
		wrapSection(out, parse.SecMemory, w.Bytes())
	}
	if len(m.Globals) > 0 {
		w := leb128.NewWriter()
		leb128.WriteVector(w, m.Globals, encodeGlobal)
		wrapSection(out, parse.SecGlobal, w.Bytes())
	}
	if len(m.Exports) > 0 {
		w := leb128.NewWriter()
		leb128.WriteVector(w, m.Exports, encodeExport)
		wrapSection(out, parse.SecExport, w.Bytes())
	}
	if m.HasStart {
		w := leb128.NewWriter()
		w.WriteUint32(m.Start)
		wrapSection(out, parse.SecStart, w.Bytes())
	}
	if len(m.Elements) > 0 {
		w := leb128.NewWriter()
		leb128.WriteVector(w, m.Elements, encodeElement)
		wrapSection(out, parse.SecElement, w.Bytes())
	}
	if len(m.Code) > 0 {
		w := leb128.NewWriter()
		leb128.WriteVector(w, m.Code, encodeCodeEntry)
		wrapSection(out, parse.SecCode, w.Bytes())
	}
	if len(m.Data) > 0 {
		w := leb128.NewWriter()
		leb128.WriteVector(w, m.Data, encodeData)
		wrapSection(out, parse.SecData, w.Bytes())
	}
	if m.HasDataCount {
		w := leb128.NewWriter()
		w.WriteUint32(m.DataCount)
		wrapSection(out, parse.SecDataCount, w.Bytes())
	}

	for _, cs := range m.OtherCustom {
		w := leb128.NewWriter()
		w.WriteName(cs.Name)
		w.Write(cs.Payload)
		wrapSection(out, parse.SecCustom, w.Bytes())
	}
	if m.Names != nil {
		w := leb128.NewWriter()
		w.WriteName(nameSectionName)
		w.Write(EncodeNameSection(m.Names))
		wrapSection(out, parse.SecCustom, w.Bytes())
	}

	return out.Bytes()
}
