package synth

import (
	"sort"

	"github.com/wasynth/wasynth-go/leb128"
	"github.com/wasynth/wasynth-go/parse"
)

func sortedKeys(m parse.NameMap) []uint32 {
	keys := make([]uint32, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func encodeNameMap(w *leb128.Writer, m parse.NameMap) {
	keys := sortedKeys(m)
	w.WriteUint32(uint32(len(keys)))
	for _, k := range keys {
		w.WriteUint32(k)
		w.WriteName(m[k])
	}
}

func encodeIndirectNameMap(w *leb128.Writer, m map[uint32]parse.NameMap) {
	keys := make([]uint32, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	w.WriteUint32(uint32(len(keys)))
	for _, k := range keys {
		w.WriteUint32(k)
		inner := leb128.NewWriter()
		encodeNameMap(inner, m[k])
		w.WriteUint32(uint32(inner.Len()))
		w.Write(inner.Bytes())
	}
}

func writeNameSubsection(w *leb128.Writer, id byte, payload []byte) {
	w.WriteByte(id)
	w.WriteUint32(uint32(len(payload)))
	w.Write(payload)
}

// EncodeNameSection serializes ns back into a "name" custom section
// payload (the section-name prefix is not included; callers write that
// separately, matching how parse.ParseNameSection receives it stripped).
func EncodeNameSection(ns *parse.NameSection) []byte {
	out := leb128.NewWriter()
	if ns.HasModule {
		w := leb128.NewWriter()
		w.WriteName(ns.Module)
		writeNameSubsection(out, parse.NameSubModule, w.Bytes())
	}
	if len(ns.Function) > 0 {
		w := leb128.NewWriter()
		encodeNameMap(w, ns.Function)
		writeNameSubsection(out, parse.NameSubFunction, w.Bytes())
	}
	if len(ns.Local) > 0 {
		w := leb128.NewWriter()
		encodeIndirectNameMap(w, ns.Local)
		writeNameSubsection(out, parse.NameSubLocal, w.Bytes())
	}
	if len(ns.Label) > 0 {
		w := leb128.NewWriter()
		encodeIndirectNameMap(w, ns.Label)
		writeNameSubsection(out, parse.NameSubLabel, w.Bytes())
	}
	if len(ns.Type) > 0 {
		w := leb128.NewWriter()
		encodeNameMap(w, ns.Type)
		writeNameSubsection(out, parse.NameSubType, w.Bytes())
	}
	if len(ns.Table) > 0 {
		w := leb128.NewWriter()
		encodeNameMap(w, ns.Table)
		writeNameSubsection(out, parse.NameSubTable, w.Bytes())
	}
	if len(ns.Memory) > 0 {
		w := leb128.NewWriter()
		encodeNameMap(w, ns.Memory)
		writeNameSubsection(out, parse.NameSubMemory, w.Bytes())
	}
	if len(ns.Global) > 0 {
		w := leb128.NewWriter()
		encodeNameMap(w, ns.Global)
		writeNameSubsection(out, parse.NameSubGlobal, w.Bytes())
	}
	if len(ns.Elem) > 0 {
		w := leb128.NewWriter()
		encodeNameMap(w, ns.Elem)
		writeNameSubsection(out, parse.NameSubElem, w.Bytes())
	}
	if len(ns.Data) > 0 {
		w := leb128.NewWriter()
		encodeNameMap(w, ns.Data)
		writeNameSubsection(out, parse.NameSubData, w.Bytes())
	}
	return out.Bytes()
}
