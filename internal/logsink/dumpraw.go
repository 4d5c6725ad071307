package logsink

import (
	"fmt"
	"os"
	"path/filepath"
)

// DumpWriter writes the literal bytes sent/received for each message to
// <dir>/<msg-index>-{outbound|inbound}-seed-<seed>[-fuzzed]. It is a
// separate, narrower collaborator from Sink: the run engine writes to it
// directly from C5, not through the iteration-boundary Sink contract.
type DumpWriter struct {
	dir string
}

// NewDumpWriter creates dir (the log directory in normal mode, a sibling
// dumpraw/ directory otherwise) if it does not already exist.
func NewDumpWriter(dir string) (*DumpWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create dumpraw directory %s: %w", dir, err)
	}
	return &DumpWriter{dir: dir}, nil
}

// WriteOutbound writes an outbound payload for msgIndex at the given seed.
// fuzzed is appended to the filename when the payload underwent mutation.
func (w *DumpWriter) WriteOutbound(msgIndex, seed int, fuzzed bool, payload []byte) error {
	name := fmt.Sprintf("%d-outbound-seed-%d", msgIndex, seed)
	if fuzzed {
		name += "-fuzzed"
	}
	return os.WriteFile(filepath.Join(w.dir, name), payload, 0o644)
}

// WriteInbound writes an inbound payload for msgIndex at the given seed.
func (w *DumpWriter) WriteInbound(msgIndex, seed int, payload []byte) error {
	name := fmt.Sprintf("%d-inbound-seed-%d", msgIndex, seed)
	return os.WriteFile(filepath.Join(w.dir, name), payload, 0o644)
}
