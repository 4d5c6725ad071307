package logsink

import "github.com/onoffswitchrespiratorycenter178/beaconfuzz/internal/script"

// Noop is the quiet-mode sink: every call is a no-op, and no log directory
// is ever created.
type Noop struct{}

func (Noop) StartNewRun()                  {}
func (Noop) RecordInboundData(int, []byte) {}
func (Noop) RecordHighestMessageIndex(int) {}

func (Noop) EmitTranscript(int, *script.Collection, string) error {
	return nil
}

func (Noop) EmitPreviousTranscript(int, *script.Collection, string) error {
	return nil
}

var _ Sink = Noop{}
