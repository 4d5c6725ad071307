// Package fuzz fuzz-tests the script-file loader against malformed input.
//
// Script files arrive from outside the process (written by hand, or by a
// campaign-generation tool upstream of this one), so the JSON decode path in
// config.Load must never panic on arbitrary bytes.
package fuzz

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/onoffswitchrespiratorycenter178/beaconfuzz/internal/config"
)

// FuzzLoadScript feeds arbitrary bytes through config.Load by way of a
// temporary file, since Load's public surface only accepts a path.
//
// Run with: go test -fuzz=FuzzLoadScript -fuzztime=10000x ./tests/fuzz/
func FuzzLoadScript(f *testing.F) {
	valid := []byte(`{
		"transport": 0,
		"host": "127.0.0.1",
		"port": 9999,
		"receiveTimeout": 1.0,
		"failureThreshold": 3,
		"failureBackoff": 0.5,
		"messageCollection": {
			"messages": [
				{"direction": 0, "subcomponents": [{"original": "aGVsbG8=", "isFuzzed": true}]}
			]
		}
	}`)
	f.Add(valid)
	f.Add([]byte(`{}`))
	f.Add([]byte(`not json at all`))
	f.Add([]byte(`{"messageCollection":{"messages":[]}}`))
	f.Add([]byte(`{"messageCollection":{"messages":[{"subcomponents":[]}]}}`))

	f.Fuzz(func(t *testing.T, data []byte) {
		dir := t.TempDir()
		path := filepath.Join(dir, "script.json")
		if err := os.WriteFile(path, data, 0o600); err != nil {
			t.Fatalf("write temp script: %v", err)
		}

		// Load may legitimately return an error for malformed or
		// semantically-invalid input; it must never panic.
		_, _ = config.Load(path)
	})
}
