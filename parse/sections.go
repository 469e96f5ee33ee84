package parse

import (
	"github.com/wasynth/wasynth-go/instr"
	"github.com/wasynth/wasynth-go/leb128"
	"github.com/wasynth/wasynth-go/wasmtype"
	"github.com/wasynth/wasynth-go/wasynth"
)

// TypeSection decodes the type section, if present.
func (m *Module) TypeSection() ([]wasmtype.FuncType, error) {
	payload, ok := m.find(SecType)
	if !ok {
		return nil, nil
	}
	c := leb128.NewCursor(payload)
	types, err := leb128.Collect(c, wasmtype.DecodeFuncType)
	if err != nil {
		return nil, err
	}
	if c.Len() != 0 {
		return nil, wasynth.ErrTrailingBytes()
	}
	return types, nil
}

func decodeImport(c *leb128.Cursor) (Import, error) {
	mod, err := c.Name()
	if err != nil {
		return Import{}, err
	}
	name, err := c.Name()
	if err != nil {
		return Import{}, err
	}
	kind, err := c.AdvanceByte()
	if err != nil {
		return Import{}, err
	}
	imp := Import{Module: mod, Name: name, Kind: kind}
	switch kind {
	case ImportFunc:
		imp.TypeIdx, err = c.Uint32()
	case ImportTable:
		imp.Table, err = wasmtype.DecodeTableType(c)
	case ImportMem:
		imp.Mem, err = wasmtype.DecodeMemType(c)
	case ImportGlobal:
		imp.Global, err = wasmtype.DecodeGlobalType(c)
	default:
		return Import{}, wasynth.ErrInvalidImportDesc(kind)
	}
	return imp, err
}

// Imports decodes the import section, if present.
func (m *Module) Imports() ([]Import, error) {
	payload, ok := m.find(SecImport)
	if !ok {
		return nil, nil
	}
	c := leb128.NewCursor(payload)
	imports, err := leb128.Collect(c, decodeImport)
	if err != nil {
		return nil, err
	}
	if c.Len() != 0 {
		return nil, wasynth.ErrTrailingBytes()
	}
	return imports, nil
}

// Functions decodes the function section (a vector of type indices), if
// present.
func (m *Module) Functions() ([]uint32, error) {
	payload, ok := m.find(SecFunction)
	if !ok {
		return nil, nil
	}
	c := leb128.NewCursor(payload)
	idxs, err := leb128.Collect(c, func(c *leb128.Cursor) (uint32, error) { return c.Uint32() })
	if err != nil {
		return nil, err
	}
	if c.Len() != 0 {
		return nil, wasynth.ErrTrailingBytes()
	}
	return idxs, nil
}

// Tables decodes the table section, if present.
func (m *Module) Tables() ([]wasmtype.TableType, error) {
	payload, ok := m.find(SecTable)
	if !ok {
		return nil, nil
	}
	c := leb128.NewCursor(payload)
	tables, err := leb128.Collect(c, wasmtype.DecodeTableType)
	if err != nil {
		return nil, err
	}
	if c.Len() != 0 {
		return nil, wasynth.ErrTrailingBytes()
	}
	return tables, nil
}

// Memories decodes the memory section, if present.
func (m *Module) Memories() ([]wasmtype.MemType, error) {
	payload, ok := m.find(SecMemory)
	if !ok {
		return nil, nil
	}
	c := leb128.NewCursor(payload)
	mems, err := leb128.Collect(c, wasmtype.DecodeMemType)
	if err != nil {
		return nil, err
	}
	if c.Len() != 0 {
		return nil, wasynth.ErrTrailingBytes()
	}
	return mems, nil
}

func decodeGlobal(c *leb128.Cursor) (Global, error) {
	gt, err := wasmtype.DecodeGlobalType(c)
	if err != nil {
		return Global{}, err
	}
	init, err := instr.DecodeExpression(c)
	if err != nil {
		return Global{}, err
	}
	return Global{Type: gt, Init: init}, nil
}

// Globals decodes the global section, if present.
func (m *Module) Globals() ([]Global, error) {
	payload, ok := m.find(SecGlobal)
	if !ok {
		return nil, nil
	}
	c := leb128.NewCursor(payload)
	globals, err := leb128.Collect(c, decodeGlobal)
	if err != nil {
		return nil, err
	}
	if c.Len() != 0 {
		return nil, wasynth.ErrTrailingBytes()
	}
	return globals, nil
}

func decodeExport(c *leb128.Cursor) (Export, error) {
	name, err := c.Name()
	if err != nil {
		return Export{}, err
	}
	kind, err := c.AdvanceByte()
	if err != nil {
		return Export{}, err
	}
	switch kind {
	case ExportFunc, ExportTable, ExportMem, ExportGlobal:
	default:
		return Export{}, wasynth.ErrInvalidExportDesc(kind)
	}
	idx, err := c.Uint32()
	if err != nil {
		return Export{}, err
	}
	return Export{Name: name, Kind: kind, Idx: idx}, nil
}

// Exports decodes the export section, if present.
func (m *Module) Exports() ([]Export, error) {
	payload, ok := m.find(SecExport)
	if !ok {
		return nil, nil
	}
	c := leb128.NewCursor(payload)
	exports, err := leb128.Collect(c, decodeExport)
	if err != nil {
		return nil, err
	}
	if c.Len() != 0 {
		return nil, wasynth.ErrTrailingBytes()
	}
	return exports, nil
}

// Start decodes the start section, if present. The bool result reports
// presence.
func (m *Module) Start() (uint32, bool, error) {
	payload, ok := m.find(SecStart)
	if !ok {
		return 0, false, nil
	}
	c := leb128.NewCursor(payload)
	idx, err := c.Uint32()
	if err != nil {
		return 0, false, err
	}
	if c.Len() != 0 {
		return 0, false, wasynth.ErrTrailingBytes()
	}
	return idx, true, nil
}

func decodeElemKindByte(c *leb128.Cursor) error {
	b, err := c.AdvanceByte()
	if err != nil {
		return err
	}
	if b != 0x00 {
		return wasynth.ErrInvalidElementKind(b)
	}
	return nil
}

func decodeElement(c *leb128.Cursor) (ElementSegment, error) {
	discriminator, err := c.Uint32()
	if err != nil {
		return ElementSegment{}, err
	}
	var seg ElementSegment
	seg.Type = wasmtype.RefFunc
	switch discriminator {
	case 0:
		seg.Mode = ElemActive
		seg.Offset, err = instr.DecodeExpression(c)
		if err != nil {
			return ElementSegment{}, err
		}
		seg.Funcs, err = leb128.Collect(c, func(c *leb128.Cursor) (uint32, error) { return c.Uint32() })
	case 1:
		seg.Mode = ElemPassive
		if err = decodeElemKindByte(c); err != nil {
			return ElementSegment{}, err
		}
		seg.Funcs, err = leb128.Collect(c, func(c *leb128.Cursor) (uint32, error) { return c.Uint32() })
	case 2:
		seg.Mode = ElemActive
		seg.Table, err = c.Uint32()
		if err != nil {
			return ElementSegment{}, err
		}
		seg.Offset, err = instr.DecodeExpression(c)
		if err != nil {
			return ElementSegment{}, err
		}
		if err = decodeElemKindByte(c); err != nil {
			return ElementSegment{}, err
		}
		seg.Funcs, err = leb128.Collect(c, func(c *leb128.Cursor) (uint32, error) { return c.Uint32() })
	case 3:
		seg.Mode = ElemDeclarative
		if err = decodeElemKindByte(c); err != nil {
			return ElementSegment{}, err
		}
		seg.Funcs, err = leb128.Collect(c, func(c *leb128.Cursor) (uint32, error) { return c.Uint32() })
	case 4:
		seg.Mode = ElemActive
		seg.Offset, err = instr.DecodeExpression(c)
		if err != nil {
			return ElementSegment{}, err
		}
		seg.Exprs, err = leb128.Collect(c, instr.DecodeExpression)
	case 5:
		seg.Mode = ElemPassive
		seg.Type, err = wasmtype.DecodeReferenceType(c)
		if err != nil {
			return ElementSegment{}, err
		}
		seg.Exprs, err = leb128.Collect(c, instr.DecodeExpression)
	case 6:
		seg.Mode = ElemActive
		seg.Table, err = c.Uint32()
		if err != nil {
			return ElementSegment{}, err
		}
		seg.Offset, err = instr.DecodeExpression(c)
		if err != nil {
			return ElementSegment{}, err
		}
		seg.Type, err = wasmtype.DecodeReferenceType(c)
		if err != nil {
			return ElementSegment{}, err
		}
		seg.Exprs, err = leb128.Collect(c, instr.DecodeExpression)
	case 7:
		seg.Mode = ElemDeclarative
		seg.Type, err = wasmtype.DecodeReferenceType(c)
		if err != nil {
			return ElementSegment{}, err
		}
		seg.Exprs, err = leb128.Collect(c, instr.DecodeExpression)
	default:
		return ElementSegment{}, wasynth.ErrInvalidElementMode(discriminator)
	}
	if err != nil {
		return ElementSegment{}, err
	}
	return seg, nil
}

// Elements decodes the element section, if present.
func (m *Module) Elements() ([]ElementSegment, error) {
	payload, ok := m.find(SecElement)
	if !ok {
		return nil, nil
	}
	c := leb128.NewCursor(payload)
	segs, err := leb128.Collect(c, decodeElement)
	if err != nil {
		return nil, err
	}
	if c.Len() != 0 {
		return nil, wasynth.ErrTrailingBytes()
	}
	return segs, nil
}

func decodeLocalGroup(c *leb128.Cursor) (LocalGroup, error) {
	n, err := c.Uint32()
	if err != nil {
		return LocalGroup{}, err
	}
	vt, err := wasmtype.DecodeValueType(c)
	if err != nil {
		return LocalGroup{}, err
	}
	return LocalGroup{Count: n, Type: vt}, nil
}

func decodeCodeEntry(c *leb128.Cursor) (CodeEntry, error) {
	size, err := c.Uint32()
	if err != nil {
		return CodeEntry{}, err
	}
	raw, err := c.Advance(int(size))
	if err != nil {
		return CodeEntry{}, err
	}
	body := leb128.NewCursor(raw)
	locals, err := leb128.Collect(body, decodeLocalGroup)
	if err != nil {
		return CodeEntry{}, err
	}
	expr, err := instr.DecodeExpression(body)
	if err != nil {
		return CodeEntry{}, err
	}
	if body.Len() != 0 {
		return CodeEntry{}, wasynth.ErrTrailingBytes()
	}
	return CodeEntry{Locals: locals, Body: expr}, nil
}

// Code decodes the code section, if present.
func (m *Module) Code() ([]CodeEntry, error) {
	payload, ok := m.find(SecCode)
	if !ok {
		return nil, nil
	}
	c := leb128.NewCursor(payload)
	entries, err := leb128.Collect(c, decodeCodeEntry)
	if err != nil {
		return nil, err
	}
	if c.Len() != 0 {
		return nil, wasynth.ErrTrailingBytes()
	}
	return entries, nil
}

func decodeData(c *leb128.Cursor) (DataSegment, error) {
	tag, err := c.Uint32()
	if err != nil {
		return DataSegment{}, err
	}
	var seg DataSegment
	switch tag {
	case 0:
		seg.Mode = DataActive
		seg.Offset, err = instr.DecodeExpression(c)
		if err != nil {
			return DataSegment{}, err
		}
	case 1:
		seg.Mode = DataPassive
	case 2:
		seg.Mode = DataActive
		seg.Memory, err = c.Uint32()
		if err != nil {
			return DataSegment{}, err
		}
		seg.Offset, err = instr.DecodeExpression(c)
		if err != nil {
			return DataSegment{}, err
		}
	default:
		return DataSegment{}, wasynth.ErrInvalidDataSegmentTag(tag)
	}
	n, err := c.Uint32()
	if err != nil {
		return DataSegment{}, err
	}
	b, err := c.Advance(int(n))
	if err != nil {
		return DataSegment{}, err
	}
	seg.Bytes = b
	return seg, nil
}

// Data decodes the data section, if present.
func (m *Module) Data() ([]DataSegment, error) {
	payload, ok := m.find(SecData)
	if !ok {
		return nil, nil
	}
	c := leb128.NewCursor(payload)
	segs, err := leb128.Collect(c, decodeData)
	if err != nil {
		return nil, err
	}
	if c.Len() != 0 {
		return nil, wasynth.ErrTrailingBytes()
	}
	return segs, nil
}

// DataCount decodes the data-count section, if present.
func (m *Module) DataCount() (uint32, bool, error) {
	payload, ok := m.find(SecDataCount)
	if !ok {
		return 0, false, nil
	}
	c := leb128.NewCursor(payload)
	n, err := c.Uint32()
	if err != nil {
		return 0, false, err
	}
	if c.Len() != 0 {
		return 0, false, wasynth.ErrTrailingBytes()
	}
	return n, true, nil
}
