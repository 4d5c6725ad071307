package fuzz

import (
	"bytes"
	"testing"

	"github.com/onoffswitchrespiratorycenter178/beaconfuzz/internal/script"
)

// FuzzSubcomponentResetIsolation checks the reset-isolation invariant that
// the run engine depends on: however Altered is overwritten during an
// iteration, Reset must restore exactly the load-time Original bytes, never
// a former Altered value.
//
// Run with: go test -fuzz=FuzzSubcomponentResetIsolation -fuzztime=10000x ./tests/fuzz/
func FuzzSubcomponentResetIsolation(f *testing.F) {
	f.Add([]byte("hello"), []byte("goodbye"))
	f.Add([]byte{}, []byte{0x00, 0x01, 0x02})
	f.Add([]byte{0xff}, []byte{})

	f.Fuzz(func(t *testing.T, original, scratch []byte) {
		sc := script.NewSubcomponent(original, true)
		sc.SetAltered(scratch)
		sc.Reset()

		if !bytes.Equal(sc.GetAltered(), sc.GetOriginal()) {
			t.Fatalf("Reset() left Altered = %x, want it to match Original = %x", sc.GetAltered(), sc.GetOriginal())
		}
		if !bytes.Equal(sc.GetOriginal(), original) {
			t.Fatalf("GetOriginal() = %x, want unchanged load-time bytes %x", sc.GetOriginal(), original)
		}

		// A second Reset must be idempotent.
		sc.Reset()
		if !bytes.Equal(sc.GetAltered(), original) {
			t.Fatalf("second Reset() = %x, want %x", sc.GetAltered(), original)
		}
	})
}
