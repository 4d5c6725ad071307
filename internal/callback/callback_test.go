package callback

import "testing"

func TestDefaultProcessorIsIdentity(t *testing.T) {
	var p Processor = DefaultProcessor{}

	if err := p.PreConnect(1, "127.0.0.1", 9999); err != nil {
		t.Fatalf("PreConnect() error = %v", err)
	}

	in := []byte("payload")
	out, err := p.PreFuzzProcess(in, Context{SubcomponentIndex: -1})
	if err != nil {
		t.Fatalf("PreFuzzProcess() error = %v", err)
	}
	if string(out) != "payload" {
		t.Fatalf("PreFuzzProcess() = %q, want identity", out)
	}

	if err := p.PostReceiveProcess([]byte("reply"), Context{}); err != nil {
		t.Fatalf("PostReceiveProcess() error = %v", err)
	}
}

func TestRethrowingExceptionProcessorPassesThrough(t *testing.T) {
	var e ExceptionProcessor = RethrowingExceptionProcessor{}
	want := errUnrecognized
	if got := e.HandleException(want); got != want {
		t.Fatalf("HandleException() = %v, want %v", got, want)
	}
}

func TestNoopMonitorNeverErrors(t *testing.T) {
	var m Monitor = NoopMonitor{}
	if err := m.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := m.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
}

var errUnrecognized = &testErr{"transport blew up"}

type testErr struct{ msg string }

func (e *testErr) Error() string { return e.msg }
