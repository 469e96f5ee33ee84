// Package parse is the borrowing half of the toolkit (spec.md §4 "Parse
// model"): it decodes a Wasm binary without copying payload bytes, exposing
// each section's contents through the same lazy, single-pass vector
// iterators leb128 provides. Nothing here mutates; Module aliases the input
// slice for as long as the caller holds it.
//
// Grounded on the teacher's wasm.ReadModule (wasm/module.go), which walks a
// section stream the same way, generalized to every section kind spec.md
// §3 names instead of the teacher's narrower subset.
package parse

import (
	"github.com/wasynth/wasynth-go/leb128"
	"github.com/wasynth/wasynth-go/wasynth"
)

// Section ids, spec.md §3 "Section".
const (
	SecCustom    byte = 0
	SecType      byte = 1
	SecImport    byte = 2
	SecFunction  byte = 3
	SecTable     byte = 4
	SecMemory    byte = 5
	SecGlobal    byte = 6
	SecExport    byte = 7
	SecStart     byte = 8
	SecElement   byte = 9
	SecCode      byte = 10
	SecData      byte = 11
	SecDataCount byte = 12
)

// RawSection is one section exactly as it appeared on the wire: an id and
// its payload, borrowed from the input.
type RawSection struct {
	ID      byte
	Name    string // custom sections only
	Payload []byte
}

// Module is a parsed-but-not-yet-lifted view over a Wasm binary: the
// section stream in file order, with typed, lazy accessors for each known
// section kind.
type Module struct {
	Version  uint32
	Sections []RawSection
}

var magic = [4]byte{0x00, 0x61, 0x73, 0x6D} // "\0asm"

// ParseModule reads the header and section stream of b, preserving source
// order exactly as spec.md §5 requires -- it does not reject out-of-order
// or duplicate non-custom sections itself, since spec.md §4.5/§4.7 and
// scenario S7 locate that check at lift time, matching
// _examples/original_source/src/parse.rs's own split (its `into_synth`
// does the at-most-once check, not its section-stream reader). No
// section's payload is decoded yet -- that happens lazily through
// Module's typed accessors.
func ParseModule(b []byte) (*Module, error) {
	c := leb128.NewCursor(b)
	hdr, err := c.Advance(4)
	if err != nil {
		return nil, err
	}
	var got [4]byte
	copy(got[:], hdr)
	if got != magic {
		return nil, wasynth.ErrBadMagic(got)
	}
	ver, err := readU32LE(c)
	if err != nil {
		return nil, err
	}
	if ver != 1 {
		return nil, wasynth.ErrUnsupportedVersion(ver)
	}

	m := &Module{Version: ver}
	for c.Len() > 0 {
		id, err := c.AdvanceByte()
		if err != nil {
			return nil, err
		}
		size, err := c.Uint32()
		if err != nil {
			return nil, err
		}
		payload, err := c.Advance(int(size))
		if err != nil {
			return nil, err
		}
		sec := RawSection{ID: id, Payload: payload}
		if id == SecCustom {
			name, rest, err := readCustomName(payload)
			if err != nil {
				return nil, err
			}
			sec.Name = name
			sec.Payload = rest
		}
		m.Sections = append(m.Sections, sec)
	}
	return m, nil
}

// CheckAtMostOnce enforces spec.md §4.5/§4.7's at-most-one-per-kind
// invariant over m's non-custom sections, independent of their order in
// the section stream. Called from synth.Lift rather than from
// ParseModule, per spec.md §4.5 ("enforces the at-most-one invariant ...
// on lift") and scenario S7 ("rejected ... on lift").
func (m *Module) CheckAtMostOnce() error {
	seen := make(map[byte]bool)
	for _, s := range m.Sections {
		if s.ID == SecCustom {
			continue
		}
		if seen[s.ID] {
			return wasynth.ErrDuplicateSection(sectionName(s.ID))
		}
		seen[s.ID] = true
	}
	return nil
}

// readU32LE reads the 4-byte little-endian version field, which is not
// itself LEB128-encoded.
func readU32LE(c *leb128.Cursor) (uint32, error) {
	b, err := c.Advance(4)
	if err != nil {
		return 0, err
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, nil
}

func readCustomName(payload []byte) (string, []byte, error) {
	c := leb128.NewCursor(payload)
	name, err := c.Name()
	if err != nil {
		return "", nil, err
	}
	return name, c.Remaining(), nil
}

func sectionName(id byte) string {
	switch id {
	case SecType:
		return "type"
	case SecImport:
		return "import"
	case SecFunction:
		return "function"
	case SecTable:
		return "table"
	case SecMemory:
		return "memory"
	case SecGlobal:
		return "global"
	case SecExport:
		return "export"
	case SecStart:
		return "start"
	case SecElement:
		return "element"
	case SecCode:
		return "code"
	case SecData:
		return "data"
	case SecDataCount:
		return "data-count"
	default:
		return "custom"
	}
}

// find returns the payload of the first non-custom section with id, or
// (nil, false) if absent. A duplicate occurrence is not rejected here --
// that is CheckAtMostOnce's job, run at lift time -- so a caller reading
// straight from Module before lifting sees only the first occurrence.
func (m *Module) find(id byte) ([]byte, bool) {
	for _, s := range m.Sections {
		if s.ID == id {
			return s.Payload, true
		}
	}
	return nil, false
}

// CustomSections returns every custom section in file order, including
// ones interleaved between known sections.
func (m *Module) CustomSections() []RawSection {
	var out []RawSection
	for _, s := range m.Sections {
		if s.ID == SecCustom {
			out = append(out, s)
		}
	}
	return out
}

// Validate forces every lazy section reader to fully decode, surfacing any
// deferred structural error without the caller needing to consume each
// iterator by hand (spec.md §4.2 "validate()").
func (m *Module) Validate() error {
	if _, err := m.TypeSection(); err != nil {
		return err
	}
	if _, err := m.Imports(); err != nil {
		return err
	}
	if _, err := m.Functions(); err != nil {
		return err
	}
	if _, err := m.Tables(); err != nil {
		return err
	}
	if _, err := m.Memories(); err != nil {
		return err
	}
	if _, err := m.Globals(); err != nil {
		return err
	}
	if _, err := m.Exports(); err != nil {
		return err
	}
	if _, _, err := m.Start(); err != nil {
		return err
	}
	if _, err := m.Elements(); err != nil {
		return err
	}
	if _, err := m.Code(); err != nil {
		return err
	}
	if _, err := m.Data(); err != nil {
		return err
	}
	if _, _, err := m.DataCount(); err != nil {
		return err
	}
	return nil
}
