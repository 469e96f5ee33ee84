package synth

import (
	"github.com/wasynth/wasynth-go/parse"
)

const nameSectionName = "name"

// Lift decodes every section of m fully and copies it into an owned
// Module, cloning any byte slice that would otherwise still alias the
// original input (raw data-segment bytes and unrecognized custom section
// payloads).
func Lift(m *parse.Module) (*Module, error) {
	if err := m.CheckAtMostOnce(); err != nil {
		return nil, err
	}

	out := &Module{}
	var err error

	if out.Types, err = m.TypeSection(); err != nil {
		return nil, err
	}
	if out.Imports, err = m.Imports(); err != nil {
		return nil, err
	}
	if out.Functions, err = m.Functions(); err != nil {
		return nil, err
	}
	if out.Tables, err = m.Tables(); err != nil {
		return nil, err
	}
	if out.Memories, err = m.Memories(); err != nil {
		return nil, err
	}
	if out.Globals, err = m.Globals(); err != nil {
		return nil, err
	}
	if out.Exports, err = m.Exports(); err != nil {
		return nil, err
	}
	if out.Start, out.HasStart, err = m.Start(); err != nil {
		return nil, err
	}
	if out.Elements, err = m.Elements(); err != nil {
		return nil, err
	}
	if out.Code, err = m.Code(); err != nil {
		return nil, err
	}
	if out.Data, err = m.Data(); err != nil {
		return nil, err
	}
	for i := range out.Data {
		out.Data[i].Bytes = cloneBytes(out.Data[i].Bytes)
	}
	if out.DataCount, out.HasDataCount, err = m.DataCount(); err != nil {
		return nil, err
	}

	for _, cs := range m.CustomSections() {
		if cs.Name == nameSectionName && out.Names == nil {
			ns, err := parse.ParseNameSection(cs.Payload)
			if err != nil {
				return nil, err
			}
			out.Names = ns
			continue
		}
		out.OtherCustom = append(out.OtherCustom, parse.RawSection{
			ID:      cs.ID,
			Name:    cs.Name,
			Payload: cloneBytes(cs.Payload),
		})
	}

	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}
