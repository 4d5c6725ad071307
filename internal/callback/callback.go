// Package callback models the message processor the run engine invokes at
// well-defined points while replaying a script: a capability set of
// optionally-present hooks behind one interface, with identity/no-op
// defaults when a hook (or the whole processor) is absent. This mirrors the
// teacher's functional-options construction style, but the processor itself
// is loaded at runtime as a Go plugin rather than built into the binary,
// since per spec it is arbitrary user code external to this build.
package callback

import "github.com/onoffswitchrespiratorycenter178/beaconfuzz/internal/script"

// Context carries everything a hook needs to know about the message it is
// being called for. ActualSubcomponents is re-snapshotted immediately before
// every call so earlier callbacks' edits within the same message are
// visible; OriginalSubcomponents is a single snapshot taken once per message
// before any mutation.
type Context struct {
	MessageIndex          int
	SubcomponentIndex     int // -1 for whole-message hooks
	IsFuzzed              bool
	OriginalSubcomponents []*script.Subcomponent
	ActualSubcomponents   []*script.Subcomponent
}

// Processor is the message processor's capability set. Every method may be
// a no-op/identity implementation; DefaultProcessor supplies exactly that.
type Processor interface {
	// PreConnect runs once per iteration, before the socket is created.
	PreConnect(seed int, host string, port int) error

	// PreFuzzSubcomponentProcess runs for each subcomponent of a
	// multi-subcomponent outbound message, before mutation.
	PreFuzzSubcomponentProcess(b []byte, ctx Context) ([]byte, error)

	// PreFuzzProcess runs for the sole subcomponent of a single-subcomponent
	// outbound message, before mutation.
	PreFuzzProcess(b []byte, ctx Context) ([]byte, error)

	// PreSendSubcomponentProcess runs after mutation, per subcomponent.
	PreSendSubcomponentProcess(b []byte, ctx Context) ([]byte, error)

	// PreSendProcess runs after the per-subcomponent preSend sweep, on the
	// whole concatenated outbound message; its return value is the final
	// payload sent on the wire.
	PreSendProcess(full []byte, ctx Context) ([]byte, error)

	// PostReceiveProcess runs after each inbound receive.
	PostReceiveProcess(b []byte, ctx Context) error
}

// ExceptionProcessor handles an error the engine itself did not recognize as
// one of the control-flow signals in ferrors.Kind: transport errors, mutator
// errors, ConnectionClosed, or anything else. It may rethrow a signal, or
// swallow the error (return nil) in which case the engine logs an "ignored"
// note and continues.
type ExceptionProcessor interface {
	HandleException(err error) error
}

// Monitor is the external crash-detection task's interface into the
// callback bus' loading path: the binary only starts it and stops it. Start
// takes no arguments and nothing hands a loaded monitor the iteration
// controller's crash edge (see internal/monitor), so a crash the monitor
// observes is not reported to the controller.
type Monitor interface {
	// Start launches the monitor's background work. Start must return
	// promptly; long-running monitoring happens in a goroutine it spawns.
	Start() error
	// Stop releases any resources the monitor holds.
	Stop() error
}

// DefaultProcessor implements Processor with identity/no-op behavior for
// every hook, used whenever the processor directory does not supply one.
type DefaultProcessor struct{}

func (DefaultProcessor) PreConnect(int, string, int) error { return nil }

func (DefaultProcessor) PreFuzzSubcomponentProcess(b []byte, _ Context) ([]byte, error) {
	return b, nil
}

func (DefaultProcessor) PreFuzzProcess(b []byte, _ Context) ([]byte, error) {
	return b, nil
}

func (DefaultProcessor) PreSendSubcomponentProcess(b []byte, _ Context) ([]byte, error) {
	return b, nil
}

func (DefaultProcessor) PreSendProcess(full []byte, _ Context) ([]byte, error) {
	return full, nil
}

func (DefaultProcessor) PostReceiveProcess([]byte, Context) error { return nil }

var _ Processor = DefaultProcessor{}

// RethrowingExceptionProcessor is the default ExceptionProcessor: it returns
// the error unchanged, so the engine's "ignored" note never fires unless a
// loaded processor explicitly chooses to swallow something.
type RethrowingExceptionProcessor struct{}

func (RethrowingExceptionProcessor) HandleException(err error) error { return err }

var _ ExceptionProcessor = RethrowingExceptionProcessor{}

// NoopMonitor never reports a crash; used when the processor directory
// supplies no monitor.
type NoopMonitor struct{}

func (NoopMonitor) Start() error { return nil }
func (NoopMonitor) Stop() error  { return nil }

var _ Monitor = NoopMonitor{}
