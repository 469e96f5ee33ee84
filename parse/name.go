package parse

import (
	"github.com/wasynth/wasynth-go/leb128"
	"github.com/wasynth/wasynth-go/wasynth"
)

// Name subsection ids. 0-2 are the original MVP name section
// (_examples/original_source/src/... covers only these); 3-9 come from the
// later tool-conventions extension and are supplemented here per spec.md
// §5's "fuller name section" requirement.
const (
	NameSubModule   byte = 0
	NameSubFunction byte = 1
	NameSubLocal    byte = 2
	NameSubLabel    byte = 3
	NameSubType     byte = 4
	NameSubTable    byte = 5
	NameSubMemory   byte = 6
	NameSubGlobal   byte = 7
	NameSubElem     byte = 8
	NameSubData     byte = 9
)

// NameMap is a sparse idx -> name table, used directly for simple
// subsections and nested for the nested kind.
type NameMap map[uint32]string

// NameSection is the fully decoded "name" custom section.
type NameSection struct {
	Module   string
	HasModule bool
	Function NameMap
	Local    map[uint32]NameMap // funcidx -> localidx -> name
	Label    map[uint32]NameMap // funcidx -> labelidx -> name
	Type     NameMap
	Table    NameMap
	Memory   NameMap
	Global   NameMap
	Elem     NameMap
	Data     NameMap
}

func decodeNameMap(c *leb128.Cursor) (NameMap, error) {
	pairs, err := leb128.Collect(c, func(c *leb128.Cursor) (struct {
		idx  uint32
		name string
	}, error) {
		idx, err := c.Uint32()
		if err != nil {
			return struct {
				idx  uint32
				name string
			}{}, err
		}
		name, err := c.Name()
		return struct {
			idx  uint32
			name string
		}{idx, name}, err
	})
	if err != nil {
		return nil, err
	}
	m := make(NameMap, len(pairs))
	for _, p := range pairs {
		m[p.idx] = p.name
	}
	return m, nil
}

func decodeIndirectNameMap(c *leb128.Cursor) (map[uint32]NameMap, error) {
	type entry struct {
		idx uint32
		nm  NameMap
	}
	entries, err := leb128.Collect(c, func(c *leb128.Cursor) (entry, error) {
		idx, err := c.Uint32()
		if err != nil {
			return entry{}, err
		}
		size, err := c.Uint32()
		if err != nil {
			return entry{}, err
		}
		raw, err := c.Advance(int(size))
		if err != nil {
			return entry{}, err
		}
		nm, err := decodeNameMap(leb128.NewCursor(raw))
		return entry{idx, nm}, err
	})
	if err != nil {
		return nil, err
	}
	out := make(map[uint32]NameMap, len(entries))
	for _, e := range entries {
		out[e.idx] = e.nm
	}
	return out, nil
}

// ParseNameSection decodes the payload of a custom section named "name"
// (the section-name prefix must already be stripped, as ParseModule does
// for every custom section).
func ParseNameSection(payload []byte) (*NameSection, error) {
	ns := &NameSection{}
	c := leb128.NewCursor(payload)
	seen := make(map[byte]bool)
	for c.Len() > 0 {
		id, err := c.AdvanceByte()
		if err != nil {
			return nil, err
		}
		size, err := c.Uint32()
		if err != nil {
			return nil, err
		}
		raw, err := c.Advance(int(size))
		if err != nil {
			return nil, err
		}
		if seen[id] {
			return nil, wasynth.ErrDuplicateNameSubsection(nameSubsectionName(id))
		}
		seen[id] = true
		sub := leb128.NewCursor(raw)
		switch id {
		case NameSubModule:
			name, err := sub.Name()
			if err != nil {
				return nil, err
			}
			ns.Module = name
			ns.HasModule = true
		case NameSubFunction:
			ns.Function, err = decodeNameMap(sub)
		case NameSubLocal:
			ns.Local, err = decodeIndirectNameMap(sub)
		case NameSubLabel:
			ns.Label, err = decodeIndirectNameMap(sub)
		case NameSubType:
			ns.Type, err = decodeNameMap(sub)
		case NameSubTable:
			ns.Table, err = decodeNameMap(sub)
		case NameSubMemory:
			ns.Memory, err = decodeNameMap(sub)
		case NameSubGlobal:
			ns.Global, err = decodeNameMap(sub)
		case NameSubElem:
			ns.Elem, err = decodeNameMap(sub)
		case NameSubData:
			ns.Data, err = decodeNameMap(sub)
		default:
			// Unknown subsection ids are skipped, not rejected: the
			// tool-conventions name section is explicitly open-ended.
			continue
		}
		if err != nil {
			return nil, err
		}
	}
	return ns, nil
}

func nameSubsectionName(id byte) string {
	switch id {
	case NameSubModule:
		return "module"
	case NameSubFunction:
		return "function"
	case NameSubLocal:
		return "local"
	case NameSubLabel:
		return "label"
	case NameSubType:
		return "type"
	case NameSubTable:
		return "table"
	case NameSubMemory:
		return "memory"
	case NameSubGlobal:
		return "global"
	case NameSubElem:
		return "elem"
	case NameSubData:
		return "data"
	default:
		return "unknown"
	}
}
