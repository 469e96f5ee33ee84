package trace

import "testing"

func TestDisabledByDefaultProducesNoOutput(t *testing.T) {
	Disable()
	Push(AdvanceU32, 0)
	if got := Pop(AdvanceU32, 4); got != "" {
		t.Fatalf("expected no output while disabled, got %q", got)
	}
}

func TestPushPopReportsNestedPathAndBytes(t *testing.T) {
	payload := []byte{0x01, 0x02, 0x03, 0x04}
	Enable(payload)
	defer Disable()

	Push(AdvanceVector, 0)
	Push(AdvanceU32, 1)
	got := Pop(AdvanceU32, 3)
	want := "vec > u32 > 02 03"
	if got != want {
		t.Fatalf("Pop = %q, want %q", got, want)
	}

	got = Pop(AdvanceVector, 4)
	want = "vec > 01 02 03 04"
	if got != want {
		t.Fatalf("Pop = %q, want %q", got, want)
	}
}

func TestPopMismatchedActionPanics(t *testing.T) {
	Enable([]byte{0x00})
	defer Disable()
	Push(AdvanceU32, 0)
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic on mismatched action")
		}
	}()
	Pop(AdvanceName, 1)
}

func TestActionStringNames(t *testing.T) {
	cases := map[Action]string{
		Advance:       "const",
		AdvanceSlice:  "slice",
		AdvanceU32:    "u32",
		AdvanceU64:    "u64",
		AdvanceS32:    "s32",
		AdvanceS64:    "s64",
		AdvanceF32:    "f32",
		AdvanceF64:    "f64",
		AdvanceVector: "vec",
		AdvanceName:   "name",
	}
	for action, want := range cases {
		if got := action.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", action, got, want)
		}
	}
}
