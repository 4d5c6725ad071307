// Package iteration implements the iteration controller (C6): seed
// selection, retry/abort/halt interpretation, and failure-count/back-off
// policy around repeated calls to the run engine. The retry/failure-
// threshold ledger is modeled on the teacher's security.RateLimiter
// cooldown-window idiom — a per-key counter with a timed cooldown — kept
// in-domain rather than borrowing a priority queue from an unrelated
// fuzzer, since this controller only ever tracks one counter at a time (the
// current seed's consecutive-crash count), not a per-source map.
package iteration

import (
	"context"
	"log/slog"
	"time"

	"github.com/onoffswitchrespiratorycenter178/beaconfuzz/internal/config"
	"github.com/onoffswitchrespiratorycenter178/beaconfuzz/internal/ferrors"
	"github.com/onoffswitchrespiratorycenter178/beaconfuzz/internal/logsink"
	"github.com/onoffswitchrespiratorycenter178/beaconfuzz/internal/metrics"
	"github.com/onoffswitchrespiratorycenter178/beaconfuzz/internal/monitor"
	"github.com/onoffswitchrespiratorycenter178/beaconfuzz/internal/script"
)

// Runner is the subset of engine.Engine the controller depends on.
type Runner interface {
	Run(ctx context.Context, seed int, messages *script.Collection) error
}

// ExceptionProcessor handles an error the controller did not recognize as
// one of the ferrors.Signal kinds.
type ExceptionProcessor interface {
	HandleException(err error) error
}

// Controller drives repeated calls to a Runner, choosing each iteration's
// seed and interpreting the result per the signal table. It is the single
// thread that ever advances the seed index i; the monitor edge never
// advances i on its own.
type Controller struct {
	Runner    Runner
	Sink      logsink.Sink
	Edge      *monitor.Edge
	Exception ExceptionProcessor
	Metrics   *metrics.Metrics
	Logger    *slog.Logger

	Params *config.RunParameters
	Data   *script.FuzzerData

	// SleepBetweenRuns is called between iterations, and again (for the
	// configured failure back-off) after a crash below the failure
	// threshold. It must return early if ctx is canceled or the monitor
	// edge fires, so a pending sleep never blocks a user interrupt or a
	// monitor-driven wakeup. Overridable in tests to avoid real sleeps.
	SleepBetweenRuns func(ctx context.Context, d time.Duration)

	i                int
	retry            *retryState
	lastLoggedReason string
	previousMessages *script.Collection
	previousSeed     int
	haveRunBefore    bool
}

// New constructs a Controller with i initialized per §4.6: MIN-1 if a dry
// run is requested (so the first iteration is the unfuzzed dry run), else
// MIN.
func New(runner Runner, sink logsink.Sink, edge *monitor.Edge, exc ExceptionProcessor, m *metrics.Metrics, logger *slog.Logger, params *config.RunParameters, data *script.FuzzerData) *Controller {
	start := params.Min
	if data.PerformDryRun {
		start = params.Min - 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		Runner:    runner,
		Sink:      sink,
		Edge:      edge,
		Exception: exc,
		Metrics:   m,
		Logger:    logger,
		Params:    params,
		Data:      data,
		SleepBetweenRuns: func(ctx context.Context, d time.Duration) {
			if d <= 0 {
				return
			}
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-timer.C:
			case <-ctx.Done():
			case <-edge.Notify:
			}
		},
		i:     start,
		retry: newRetryState(data.FailureThreshold),
	}
}

// seedFor resolves the seed to use for the current value of i, per §4.6.
func (c *Controller) seedFor() int {
	if c.Params.SeedMode == config.SeedModeDumpRaw {
		return c.Params.DumpSeed
	}
	if c.i == c.Params.Min-1 {
		return -1
	}
	if c.Params.SeedMode == config.SeedModeLoop && len(c.Params.LoopSeeds) > 0 {
		return c.Params.LoopSeeds[((c.i%len(c.Params.LoopSeeds))+len(c.Params.LoopSeeds))%len(c.Params.LoopSeeds)]
	}
	return c.i
}

// Run drives the campaign until a halt signal, MAX is exceeded, a user
// interrupt is honored, or (in dumpraw mode) exactly one iteration has
// completed.
func (c *Controller) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		seed := c.seedFor()
		messages := c.Data.Messages.Clone()
		iterIndex := c.i

		start := time.Now()
		err := c.Runner.Run(ctx, seed, messages)
		if c.Metrics != nil {
			c.Metrics.Duration.Observe(time.Since(start).Seconds())
			c.Metrics.Iterations.Inc()
		}

		// Log-all mode emits a transcript for every iteration, regardless of
		// outcome and with no de-duplication against the crash/halt paths.
		if c.Params.LogAll {
			if err := c.Sink.EmitTranscript(iterIndex, messages, "logall"); err != nil {
				c.Logger.Warn("failed to emit log-all transcript", "error", err)
			}
		}

		halt, haltErr := c.interpret(ctx, seed, messages, err)
		if c.i != iterIndex {
			c.lastLoggedReason = ""
		}
		c.previousMessages = messages
		c.previousSeed = seed
		c.haveRunBefore = true

		if halt {
			return haltErr
		}

		if c.Params.SeedMode == config.SeedModeDumpRaw {
			return nil
		}
		if c.Params.Max >= 0 && c.i > c.Params.Max {
			return nil
		}

		c.SleepBetweenRuns(ctx, c.Params.SleepTime)
	}
}

// interpret applies the crash-edge/signal dispatch table in §7 and §4.6,
// returning (true, err) when the campaign must halt.
func (c *Controller) interpret(ctx context.Context, seed int, messages *script.Collection, runErr error) (bool, error) {
	crashed := c.Edge.Consume()

	if runErr == nil {
		if crashed {
			return c.onCrash(ctx, seed, messages, "crash")
		}
		c.retry.reset()
		c.i++
		return false, nil
	}

	if sig, ok := ferrors.AsSignal(runErr); ok {
		switch sig.Kind {
		case ferrors.KindLogCrash:
			// The crash edge being independently set too still leaves this
			// iteration's crash logged and counted exactly once, via a
			// single onCrash call.
			return c.onCrash(ctx, seed, messages, "crash")

		case ferrors.KindAbortCurrentRun:
			c.retry.reset()
			c.i++
			return false, nil

		case ferrors.KindRetryCurrentRun:
			if c.Metrics != nil {
				c.Metrics.Retries.Inc()
			}
			return false, nil

		case ferrors.KindLogAndHalt:
			if err := c.Sink.EmitTranscript(c.i, messages, "halt"); err != nil {
				c.Logger.Warn("failed to emit halt transcript", "error", err)
			}
			return true, nil

		case ferrors.KindLogLastAndHalt:
			return true, c.emitLogLastAndHalt(messages)

		case ferrors.KindHalt:
			return true, nil
		}
	}

	if crashed {
		// An unrecognized error plus an independently-set crash edge both
		// apply; the crash takes precedence per the dispatch table before
		// handing off to the exception processor.
		halt, err := c.onCrash(ctx, seed, messages, "crash")
		if halt {
			return halt, err
		}
	}

	handled := c.Exception.HandleException(runErr)
	if handled == nil {
		c.Logger.Info("exception processor swallowed an error, continuing", "error", runErr)
		c.retry.reset()
		c.i++
		return false, nil
	}
	if sig, ok := ferrors.AsSignal(handled); ok {
		return c.interpret(ctx, seed, messages, sig)
	}
	return true, handled
}

// onCrash implements the shared crash path: log (once per distinct cause
// for this i), then either retry the same i or advance past it once the
// failure threshold is reached.
func (c *Controller) onCrash(ctx context.Context, seed int, messages *script.Collection, reason string) (bool, error) {
	if c.Metrics != nil {
		c.Metrics.Crashes.Inc()
	}
	if c.lastLoggedReason != reason {
		if err := c.Sink.EmitTranscript(c.i, messages, reason); err != nil {
			c.Logger.Warn("failed to emit crash transcript", "error", err)
		}
		c.lastLoggedReason = reason
	}

	if !c.retry.recordCrash() {
		c.SleepBetweenRuns(ctx, backoff(c.Data.FailureBackoffDuration()))
		return false, nil
	}

	c.i++
	c.lastLoggedReason = ""
	return false, nil
}

// emitLogLastAndHalt emits the previous iteration's transcript, or the
// current one if this is the very first run. The dry run is never eligible
// as the previous transcript: a previous run at seed -1 falls back to the
// current one too.
func (c *Controller) emitLogLastAndHalt(current *script.Collection) error {
	if !c.haveRunBefore || c.previousMessages == nil || c.previousSeed == -1 {
		return c.Sink.EmitTranscript(c.i, current, "logLast")
	}
	return c.Sink.EmitPreviousTranscript(c.i-1, c.previousMessages, "logLast")
}

