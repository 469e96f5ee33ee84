// Package wasmvalidate wraps github.com/go-interpreter/wagon's binary
// reader as an independent check on this toolkit's own encoder: if wagon
// (a separate, unrelated Wasm implementation) accepts a module this
// toolkit produced, that is strong evidence the encoder is wire-correct,
// independent of any bug this toolkit's own decoder might share with its
// own encoder.
//
// The teacher used wagon as its interpreter's reference oracle
// (vm/vm_test.go, vm/wasm_spec_test.go, both reading spec test modules with
// wagon.ReadModule before feeding them to the teacher's own VM); spec.md
// §8's round-trip property tests repurpose the same dependency the same
// way, just without ever executing the result.
package wasmvalidate

import (
	"bytes"

	wagon "github.com/go-interpreter/wagon/wasm"
)

// Validate reports whether b parses as a well-formed Wasm binary according
// to wagon's independent reader.
func Validate(b []byte) error {
	_, err := wagon.ReadModule(bytes.NewReader(b), nil)
	return err
}

// MustBeValid is a test helper: it returns true if b validates, false
// otherwise, without requiring callers to import wagon's error types.
func MustBeValid(b []byte) bool {
	return Validate(b) == nil
}
