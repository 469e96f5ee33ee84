// Package trace ports the original implementation's bytes_trace
// diagnostics: a push/pop stack recording which decode step is currently
// in progress, so a decode error can report the nested path of actions
// that led to it (e.g. "vec > name >") alongside the raw
// bytes being decoded at that point.
//
// Grounded on _examples/original_source/src/bytes_trace.rs, which keeps a
// thread-local stack of (pointer, Action) pairs pushed on trace_start and
// popped on trace_end. Go has no implicit thread-local storage and this
// toolkit's decode path is not expected to run concurrently over a single
// buffer, so the thread-local is replaced by one package-level stack
// guarded by a mutex -- cheap enough to leave compiled in, and a no-op
// until Enable is called.
package trace

import "sync"

// Action names the decode step being traced, matching the original's enum.
type Action int

const (
	Advance Action = iota
	AdvanceSlice
	AdvanceU32
	AdvanceU64
	AdvanceS32
	AdvanceS64
	AdvanceF32
	AdvanceF64
	AdvanceVector
	AdvanceName
)

func (a Action) String() string {
	switch a {
	case Advance:
		return "const"
	case AdvanceSlice:
		return "slice"
	case AdvanceU32:
		return "u32"
	case AdvanceU64:
		return "u64"
	case AdvanceS32:
		return "s32"
	case AdvanceS64:
		return "s64"
	case AdvanceF32:
		return "f32"
	case AdvanceF64:
		return "f64"
	case AdvanceVector:
		return "vec"
	case AdvanceName:
		return "name"
	default:
		return "?"
	}
}

type frame struct {
	action Action
	offset int
}

var (
	mu      sync.Mutex
	enabled bool
	stack   []frame
	payload []byte
)

// Enable turns tracing on for the given payload. Disabled by default, so
// decode's hot path pays no cost unless a caller opts in (a failing
// fuzz/test run, typically).
func Enable(b []byte) {
	mu.Lock()
	defer mu.Unlock()
	enabled = true
	stack = stack[:0]
	payload = b
}

// Disable turns tracing back off and drops any retained payload reference.
func Disable() {
	mu.Lock()
	defer mu.Unlock()
	enabled = false
	stack = nil
	payload = nil
}

// Push records the start of a decode step at the given byte offset.
func Push(action Action, offset int) {
	mu.Lock()
	defer mu.Unlock()
	if !enabled {
		return
	}
	stack = append(stack, frame{action: action, offset: offset})
}

// Pop closes out the most recently pushed step, asserting it matches
// action, and returns a formatted path-plus-bytes line describing the
// span just closed. Returns "" when tracing is disabled.
func Pop(action Action, endOffset int) string {
	mu.Lock()
	defer mu.Unlock()
	if !enabled {
		return ""
	}
	if len(stack) == 0 {
		panic("trace: Pop called with an empty stack")
	}
	top := stack[len(stack)-1]
	stack = stack[:len(stack)-1]
	if top.action != action {
		panic("trace: popped action does not match the expected action")
	}

	var sb []byte
	for _, f := range stack {
		sb = append(sb, []byte(f.action.String()+" > ")...)
	}
	sb = append(sb, []byte(action.String()+" >")...)

	start, end := top.offset, endOffset
	if start >= 0 && end <= len(payload) && start <= end {
		for _, b := range payload[start:end] {
			sb = append(sb, ' ')
			sb = append(sb, hexDigits[b>>4], hexDigits[b&0xF])
		}
	}
	return string(sb)
}

const hexDigits = "0123456789ABCDEF"

// Enabled reports whether tracing is currently active.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}
