// Package instrument implements the one operation spec.md §6 calls
// "install_all": wrap every defined function in a module with enter/leave
// hook calls, without disturbing the module's externally observable
// behavior or call graph shape.
//
// Grounded directly on
// _examples/original_source/src/instrument.rs, the Rust implementation
// this pass is distilled from: it injects a (i32)->() hook type, two
// function imports, clones every defined function's body into a freshly
// appended function, and replaces the original with a short trampoline
// that reports entry and exit around a call to the clone. Every function
// index at or past the point of insertion is renumbered across every
// section that can reference one.
package instrument

import (
	"github.com/wasynth/wasynth-go/instr"
	"github.com/wasynth/wasynth-go/parse"
	"github.com/wasynth/wasynth-go/synth"
	"github.com/wasynth/wasynth-go/wasmtype"
)

const (
	hooksModule  = "wasynth_hooks"
	enterName    = "enter"
	leaveName    = "leave"
	sentinelName = "wasynth.instrumented"
)

func countImportFuncs(imports []parse.Import) uint32 {
	var n uint32
	for _, imp := range imports {
		if imp.Kind == parse.ImportFunc {
			n++
		}
	}
	return n
}

// IsInstrumented reports whether m already carries the sentinel custom
// section InstallAll writes. InstallAll itself does not consult this --
// spec.md §6 open question 1 leaves idempotence to the caller, since a
// second, unconditional install would double-wrap every function rather
// than error or no-op.
func IsInstrumented(m *synth.Module) bool {
	for _, cs := range m.OtherCustom {
		if cs.Name == sentinelName {
			return true
		}
	}
	return false
}

// buildTrampoline produces the replacement body for a function whose
// post-insert (trampoline) index is selfIdx: report entry, forward every
// parameter to the cloned original, report exit, and leave the clone's
// results on the stack. The i32.const immediate reported to enter/leave is
// selfIdx itself, not the function's pre-insert ordinal -- scenario S3
// (spec.md:235) pins this to the trampoline's own index (e.g. `i32.const 2`
// for the first defined function once the two hook imports are accounted
// for), matching how every other section reference is renumbered via
// shift(). The parameter-forwarding local.get run is not present in the
// distilled 5-instruction description in instrument.rs (whose worked
// examples happen to take no parameters); it is added here so instrumented
// output stays well-typed for functions of any arity.
func buildTrampoline(selfIdx uint32, paramCount int, enterIdx, leaveIdx, cloneIdx uint32) instr.Expression {
	expr := make(instr.Expression, 0, 5+paramCount)
	expr = append(expr, instr.Instruction{Op: instr.OpI32Const, I32: int32(selfIdx)})
	expr = append(expr, instr.Instruction{Op: instr.OpCall, FuncIdx: enterIdx})
	for p := 0; p < paramCount; p++ {
		expr = append(expr, instr.Instruction{Op: instr.OpLocalGet, LocalIdx: uint32(p)})
	}
	expr = append(expr, instr.Instruction{Op: instr.OpCall, FuncIdx: cloneIdx})
	expr = append(expr, instr.Instruction{Op: instr.OpI32Const, I32: int32(selfIdx)})
	expr = append(expr, instr.Instruction{Op: instr.OpCall, FuncIdx: leaveIdx})
	return expr
}

// InstallAll wraps every function m.Code defines with enter/leave hook
// calls, in place.
func InstallAll(m *synth.Module) error {
	hookType := wasmtype.FuncType{Param: wasmtype.ResultType{wasmtype.I32}}
	m.Types = append(m.Types, hookType)
	hookTypeIdx := uint32(len(m.Types) - 1)

	importFuncCount := countImportFuncs(m.Imports)
	n := uint32(len(m.Code))

	enterIdx := importFuncCount
	leaveIdx := importFuncCount + 1
	cloneBase := importFuncCount + 2 + n

	m.Imports = append(m.Imports,
		parse.Import{Module: hooksModule, Name: enterName, Kind: parse.ImportFunc, TypeIdx: hookTypeIdx},
		parse.Import{Module: hooksModule, Name: leaveName, Kind: parse.ImportFunc, TypeIdx: hookTypeIdx},
	)

	shift := func(idx uint32) uint32 {
		if idx >= importFuncCount {
			return idx + 2
		}
		return idx
	}

	if m.HasStart {
		m.Start = shift(m.Start)
	}
	for i := range m.Exports {
		if m.Exports[i].Kind == parse.ExportFunc {
			m.Exports[i].Idx = shift(m.Exports[i].Idx)
		}
	}
	for i := range m.Elements {
		seg := &m.Elements[i]
		for j := range seg.Funcs {
			seg.Funcs[j] = shift(seg.Funcs[j])
		}
		for j := range seg.Exprs {
			instr.VisitFuncIndices(seg.Exprs[j], func(idx *uint32) { *idx = shift(*idx) })
		}
		instr.VisitFuncIndices(seg.Offset, func(idx *uint32) { *idx = shift(*idx) })
	}
	for i := range m.Globals {
		instr.VisitFuncIndices(m.Globals[i].Init, func(idx *uint32) { *idx = shift(*idx) })
	}
	for i := range m.Data {
		instr.VisitFuncIndices(m.Data[i].Offset, func(idx *uint32) { *idx = shift(*idx) })
	}

	origFunctions := append([]uint32(nil), m.Functions...)
	origCode := make([]parse.CodeEntry, n)
	for i := range m.Code {
		origCode[i] = m.Code[i]
		instr.VisitFuncIndices(origCode[i].Body, func(idx *uint32) { *idx = shift(*idx) })
	}

	for i := uint32(0); i < n; i++ {
		ft := m.Types[origFunctions[i]]
		trampolineIdx := shift(importFuncCount + i)
		m.Code[i] = parse.CodeEntry{Body: buildTrampoline(trampolineIdx, len(ft.Param), enterIdx, leaveIdx, cloneBase+i)}
	}
	m.Functions = append(m.Functions, origFunctions...)
	m.Code = append(m.Code, origCode...)

	if m.Names == nil {
		m.Names = &parse.NameSection{}
	}
	renumberNames(m.Names, importFuncCount, cloneBase)
	if m.Names.Function == nil {
		m.Names.Function = parse.NameMap{}
	}
	m.Names.Function[enterIdx] = hooksModule + "." + enterName
	m.Names.Function[leaveIdx] = hooksModule + "." + leaveName

	m.OtherCustom = append(m.OtherCustom, parse.RawSection{Name: sentinelName, Payload: []byte{}})
	return nil
}

func renumberNames(ns *parse.NameSection, importFuncCount, cloneBase uint32) {
	if ns.Function != nil {
		next := make(parse.NameMap, len(ns.Function))
		for k, v := range ns.Function {
			if k < importFuncCount {
				next[k] = v
				continue
			}
			i := k - importFuncCount
			next[k+2] = v
			next[cloneBase+i] = v + ".impl"
		}
		ns.Function = next
	}
	ns.Local = renumberIndirectToClone(ns.Local, importFuncCount, cloneBase)
	ns.Label = renumberIndirectToClone(ns.Label, importFuncCount, cloneBase)
}

func renumberIndirectToClone(old map[uint32]parse.NameMap, importFuncCount, cloneBase uint32) map[uint32]parse.NameMap {
	if old == nil {
		return nil
	}
	next := make(map[uint32]parse.NameMap, len(old))
	for k, v := range old {
		if k < importFuncCount {
			next[k] = v
			continue
		}
		next[cloneBase+(k-importFuncCount)] = v
	}
	return next
}
