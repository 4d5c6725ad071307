package iteration

import (
	"context"
	"testing"
	"time"

	"github.com/onoffswitchrespiratorycenter178/beaconfuzz/internal/callback"
	"github.com/onoffswitchrespiratorycenter178/beaconfuzz/internal/config"
	"github.com/onoffswitchrespiratorycenter178/beaconfuzz/internal/ferrors"
	"github.com/onoffswitchrespiratorycenter178/beaconfuzz/internal/logsink"
	"github.com/onoffswitchrespiratorycenter178/beaconfuzz/internal/monitor"
	"github.com/onoffswitchrespiratorycenter178/beaconfuzz/internal/script"
)

func sampleData(performDryRun bool, failureThreshold int) *script.FuzzerData {
	return &script.FuzzerData{
		FailureThreshold: failureThreshold,
		PerformDryRun:    performDryRun,
		Messages: &script.Collection{Messages: []*script.Message{
			{Direction: script.Outbound, Subcomponents: []*script.Subcomponent{
				script.NewSubcomponent([]byte("hi"), false),
			}},
		}},
	}
}

// scriptedRunner replays a fixed plan of (error-or-nil) per call, recording
// every seed it was invoked with.
type scriptedRunner struct {
	plan  []error
	seeds []int
	calls int
}

func (r *scriptedRunner) Run(_ context.Context, seed int, _ *script.Collection) error {
	r.seeds = append(r.seeds, seed)
	var err error
	if r.calls < len(r.plan) {
		err = r.plan[r.calls]
	}
	r.calls++
	return err
}

func newTestController(t *testing.T, runner Runner, data *script.FuzzerData, params *config.RunParameters) *Controller {
	t.Helper()
	c := New(runner, logsink.Noop{}, monitor.NewEdge(), callback.RethrowingExceptionProcessor{}, nil, nil, params, data)
	c.SleepBetweenRuns = func(context.Context, time.Duration) {}
	return c
}

func TestDryRunThenAdvancesToMin(t *testing.T) {
	data := sampleData(true, 1)
	params := &config.RunParameters{Min: 0, Max: 0}
	runner := &scriptedRunner{}
	c := newTestController(t, runner, data, params)

	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(runner.seeds) != 2 {
		t.Fatalf("got %d runs, want 2 (dry run + i=0)", len(runner.seeds))
	}
	if runner.seeds[0] != -1 {
		t.Fatalf("first seed = %d, want -1 (dry run)", runner.seeds[0])
	}
	if runner.seeds[1] != 0 {
		t.Fatalf("second seed = %d, want 0", runner.seeds[1])
	}
}

func TestFiniteSeedCycle(t *testing.T) {
	data := sampleData(false, 1)
	params := &config.RunParameters{
		Min: 0, Max: 5,
		SeedMode:  config.SeedModeLoop,
		LoopSeeds: []int{100, 200, 300},
	}
	runner := &scriptedRunner{}
	c := newTestController(t, runner, data, params)

	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []int{100, 200, 300, 100, 200, 300}
	if len(runner.seeds) != len(want) {
		t.Fatalf("got %d runs, want %d", len(runner.seeds), len(want))
	}
	for i, s := range want {
		if runner.seeds[i] != s {
			t.Fatalf("seed[%d] = %d, want %d", i, runner.seeds[i], s)
		}
	}
}

func TestRetryNeverAdvancesSeed(t *testing.T) {
	data := sampleData(false, 1)
	params := &config.RunParameters{Min: 0, Max: 2}
	runner := &scriptedRunner{plan: []error{
		ferrors.NewSignal(ferrors.KindRetryCurrentRun, "transient"),
		nil,
		nil,
		nil,
	}}
	c := newTestController(t, runner, data, params)

	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if runner.seeds[0] != 0 || runner.seeds[1] != 0 {
		t.Fatalf("seeds = %v, want the first two both 0 (retry must not advance)", runner.seeds)
	}
}

func TestFailureThresholdOfTwoAdvancesAndResets(t *testing.T) {
	data := sampleData(false, 2)
	params := &config.RunParameters{Min: 5, Max: 6}
	runner := &scriptedRunner{plan: []error{
		ferrors.NewSignal(ferrors.KindLogCrash, "first crash"),
		ferrors.NewSignal(ferrors.KindLogCrash, "second crash"),
		nil,
	}}
	c := newTestController(t, runner, data, params)

	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []int{5, 5, 6}
	if len(runner.seeds) != len(want) {
		t.Fatalf("got %d runs, want %d: %v", len(runner.seeds), len(want), runner.seeds)
	}
	for i, s := range want {
		if runner.seeds[i] != s {
			t.Fatalf("seed[%d] = %d, want %d", i, runner.seeds[i], s)
		}
	}
	if c.retry.count != 0 {
		t.Fatalf("retry.count after threshold reached = %d, want 0", c.retry.count)
	}
}

func TestLogAndHaltStopsImmediately(t *testing.T) {
	data := sampleData(false, 1)
	params := &config.RunParameters{Min: 0, Max: -1}
	runner := &scriptedRunner{plan: []error{
		ferrors.NewSignal(ferrors.KindLogAndHalt, "stop here"),
	}}
	c := newTestController(t, runner, data, params)

	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(runner.seeds) != 1 {
		t.Fatalf("got %d runs, want exactly 1", len(runner.seeds))
	}
}

// recordingSink counts how many transcripts were ever emitted, so a test can
// assert a combined crash-edge-plus-signal iteration is logged exactly once.
type recordingSink struct {
	logsink.Noop
	emitted int
}

func (s *recordingSink) EmitTranscript(i int, m *script.Collection, reason string) error {
	s.emitted++
	return nil
}

func TestLogCrashWithCrashEdgeAlreadySetLogsOnceAndCounts(t *testing.T) {
	data := sampleData(false, 2)
	params := &config.RunParameters{Min: 5, Max: 6}
	runner := &scriptedRunner{plan: []error{
		ferrors.NewSignal(ferrors.KindLogCrash, "first crash"),
		nil,
	}}

	edge := monitor.NewEdge()
	edge.SetCrashed()
	sink := &recordingSink{}
	c := New(runner, sink, edge, callback.RethrowingExceptionProcessor{}, nil, nil, params, data)
	c.SleepBetweenRuns = func(context.Context, time.Duration) {}

	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// One crash below the threshold of 2 holds i at 5; the next (clean) run
	// advances to 6, and Max=6 lets one more clean run through before exit.
	want := []int{5, 5, 6}
	if len(runner.seeds) != len(want) {
		t.Fatalf("got %d runs, want %d: %v", len(runner.seeds), len(want), runner.seeds)
	}
	for i, s := range want {
		if runner.seeds[i] != s {
			t.Fatalf("seed[%d] = %d, want %d", i, runner.seeds[i], s)
		}
	}
	if sink.emitted != 1 {
		t.Fatalf("transcripts emitted = %d, want exactly 1 (logged once, not zero or twice)", sink.emitted)
	}
}

func TestAbortCurrentRunSkipsWithoutLogging(t *testing.T) {
	data := sampleData(false, 1)
	params := &config.RunParameters{Min: 0, Max: 1}
	runner := &scriptedRunner{plan: []error{
		ferrors.NewSignal(ferrors.KindAbortCurrentRun, "nothing meaningful"),
		nil,
	}}
	c := newTestController(t, runner, data, params)

	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if runner.seeds[0] != 0 || runner.seeds[1] != 1 {
		t.Fatalf("seeds = %v, want [0 1] (abort still advances)", runner.seeds)
	}
}
