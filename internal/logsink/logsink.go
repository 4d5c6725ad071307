// Package logsink persists per-iteration transcripts on request. It follows
// the teacher's functional-options construction style (see responder.Option)
// and logs its own lifecycle events — directory creation, collisions — via
// a *slog.Logger rather than the standard log package.
package logsink

import (
	"log/slog"

	"github.com/onoffswitchrespiratorycenter178/beaconfuzz/internal/script"
)

// Sink is the abstract logger the iteration controller drives. Quiet mode
// is represented by Noop, which makes every call a no-op rather than the
// controller branching on a nil sink everywhere.
type Sink interface {
	// StartNewRun is called by the run engine at the top of each run.
	StartNewRun()

	// RecordInboundData stores the bytes received for messageIndex during
	// the run currently in progress.
	RecordInboundData(messageIndex int, data []byte)

	// RecordHighestMessageIndex records how far the current run progressed.
	// FileSink keeps the value but does not write it into transcripts.
	RecordHighestMessageIndex(messageIndex int)

	// EmitTranscript writes the transcript for iterationIndex's messages,
	// tagged with reasonLabel (e.g. "crash", "halt", "logall").
	EmitTranscript(iterationIndex int, messages *script.Collection, reasonLabel string) error

	// EmitPreviousTranscript writes previousMessages, the collection of the
	// run before the current one, as the transcript for iterationIndex; the
	// caller passes that previous run's iteration index. Used by
	// LogLastAndHalt.
	EmitPreviousTranscript(iterationIndex int, previousMessages *script.Collection, reasonLabel string) error
}

// Option configures a *FileSink.
type Option func(*FileSink)

// WithLogger attaches a structured logger used for the sink's own lifecycle
// events (directory creation, filename collisions). Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *FileSink) {
		s.logger = l
	}
}
