// Command beaconfuzz is the CLI entry point wiring the run engine, the
// iteration controller, the mutation oracle adapter, and the logger sink
// into one executable. Argument parsing itself stays on the standard
// library's flag package — per design, a CLI framework is explicitly out of
// scope, and introducing one would contradict that.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/onoffswitchrespiratorycenter178/beaconfuzz/internal/callback"
	"github.com/onoffswitchrespiratorycenter178/beaconfuzz/internal/config"
	"github.com/onoffswitchrespiratorycenter178/beaconfuzz/internal/engine"
	"github.com/onoffswitchrespiratorycenter178/beaconfuzz/internal/iteration"
	"github.com/onoffswitchrespiratorycenter178/beaconfuzz/internal/logsink"
	"github.com/onoffswitchrespiratorycenter178/beaconfuzz/internal/metrics"
	"github.com/onoffswitchrespiratorycenter178/beaconfuzz/internal/monitor"
	"github.com/onoffswitchrespiratorycenter178/beaconfuzz/internal/mutate"
	"github.com/onoffswitchrespiratorycenter178/beaconfuzz/internal/script"
	"github.com/onoffswitchrespiratorycenter178/beaconfuzz/internal/transport"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("beaconfuzz exited with an error", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	var (
		scriptPath  = flag.String("script", "", "path to a script file or a directory of script files")
		host        = flag.String("host", "", "target host: literal IPv4/IPv6/UNIX path, or localhost")
		sleep       = flag.Duration("sleep", time.Second, "inter-run sleep interval")
		rangeFlag   = flag.String("range", "", "seed range: X, X-, or X-Y")
		loopFlag    = flag.String("loop", "", "comma-separated finite seed list to cycle through")
		dumpraw     = flag.Int("dumpraw", -1, "run exactly one iteration at this seed and dump raw bytes")
		dumpDir     = flag.String("dumpdir", "dumpraw", "directory for --dumpraw output")
		quiet       = flag.Bool("quiet", false, "suppress the log sink entirely; no transcript is ever emitted")
		logAll      = flag.Bool("logAll", false, "emit a transcript on every iteration, not just crashes")
		mutatorPath = flag.String("mutator", "mutator", "path to the external mutation oracle binary")
		metricsAddr = flag.String("metrics-addr", "", "optional host:port to serve /metrics; absent by default")
	)
	flag.Parse()

	if *scriptPath == "" || *host == "" {
		return fmt.Errorf("-script and -host are required")
	}
	if *quiet && *logAll {
		return fmt.Errorf("-quiet and -logAll are mutually exclusive")
	}

	params, err := buildParams(*scriptPath, *host, *sleep, *rangeFlag, *loopFlag, *dumpraw, *dumpDir, *quiet, *logAll)
	if err != nil {
		return err
	}

	cycle, err := config.NewScriptCycle(params.ScriptPath)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: *metricsAddr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server failed", "error", err)
			}
		}()
		logger.Info("metrics endpoint listening", "addr", *metricsAddr)
	}

	oracle, err := mutate.New(*mutatorPath)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	for path := range cycleForever(ctx, cycle) {
		if err := runOneScript(ctx, path, params, oracle, m, logger); err != nil {
			return err
		}
	}
	return nil
}

// cycleForever yields cycle.Next() endlessly, round-robining every script in
// a directory (or replaying the single script forever when Len() == 1),
// until ctx is canceled.
func cycleForever(ctx context.Context, cycle *config.ScriptCycle) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		for {
			if ctx.Err() != nil {
				return
			}
			select {
			case ch <- cycle.Next():
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

func buildParams(scriptPath, host string, sleep time.Duration, rangeFlag, loopFlag string, dumpraw int, dumpDir string, quiet, logAll bool) (*config.RunParameters, error) {
	p := &config.RunParameters{
		ScriptPath: scriptPath,
		Host:       host,
		SleepTime:  sleep,
		Quiet:      quiet,
		LogAll:     logAll,
		DumpDir:    dumpDir,
	}

	switch {
	case dumpraw >= 0:
		p.SeedMode = config.SeedModeDumpRaw
		p.DumpSeed = dumpraw
	case loopFlag != "":
		seeds, err := config.ParseLoopSeeds(loopFlag)
		if err != nil {
			return nil, err
		}
		p.SeedMode = config.SeedModeLoop
		p.LoopSeeds = seeds
		p.Min, p.Max = 0, -1
	case rangeFlag != "":
		min, max, err := config.ParseSeedRange(rangeFlag)
		if err != nil {
			return nil, err
		}
		p.SeedMode = config.SeedModeRange
		p.Min, p.Max = min, max
	default:
		return nil, fmt.Errorf("exactly one of -range, -loop, -dumpraw must be specified")
	}
	return p, nil
}

func runOneScript(ctx context.Context, path string, params *config.RunParameters, oracle *mutate.Oracle, m *metrics.Metrics, logger *slog.Logger) error {
	data, err := config.Load(path)
	if err != nil {
		return err
	}

	processorDir := data.ProcessorDir
	if processorDir == "default" {
		processorDir = filepath.Dir(path)
	}
	bundle, err := callback.Load(processorDir)
	if err != nil {
		return err
	}

	sink, dump, err := buildSink(path, params)
	if err != nil {
		return err
	}

	tOpts := transport.Options{
		Kind:           transportKind(data.Transport),
		Host:           data.Host,
		Port:           data.Port,
		SourceIP:       data.SourceIP,
		SourcePort:     data.SourcePort,
		RawL3Proto:     data.RawL3Proto,
		Iface:          data.Iface,
		ReceiveTimeout: data.ReceiveTimeoutDuration(),
	}

	e := &engine.Engine{
		Transport: tOpts,
		Processor: bundle.Processor,
		Mutator:   oracle,
		Sink:      sink,
		DumpDir:   dump,
		Logger:    logger,
	}

	edge := monitor.NewEdge()
	go watchMonitor(ctx, bundle.Monitor, edge, logger)

	controller := iteration.New(e, sink, edge, bundle.Exception, m, logger, params, data)
	return controller.Run(ctx)
}

// buildSink resolves the three-valued verbosity model: quiet suppresses the
// sink entirely; the default ("normal") mode and log-all mode both construct
// a real sink, the difference in how much each logs being handled by the
// iteration controller, not here.
func buildSink(scriptPath string, params *config.RunParameters) (logsink.Sink, *logsink.DumpWriter, error) {
	var sink logsink.Sink = logsink.Noop{}
	if !params.Quiet {
		fileSink, err := logsink.New(scriptPath, time.Now())
		if err != nil {
			return nil, nil, err
		}
		sink = fileSink
	}

	var dump *logsink.DumpWriter
	if params.SeedMode == config.SeedModeDumpRaw {
		w, err := logsink.NewDumpWriter(params.DumpDir)
		if err != nil {
			return nil, nil, err
		}
		dump = w
	}
	return sink, dump, nil
}

func watchMonitor(ctx context.Context, m callback.Monitor, edge *monitor.Edge, logger *slog.Logger) {
	if err := m.Start(); err != nil {
		logger.Warn("monitor failed to start", "error", err)
		return
	}
	<-ctx.Done()
	if err := m.Stop(); err != nil {
		logger.Warn("monitor failed to stop cleanly", "error", err)
	}
}

func transportKind(t script.Transport) transport.Kind {
	switch t {
	case script.TLS:
		return transport.TLS
	case script.UDP:
		return transport.UDP
	case script.RawL3:
		return transport.RawL3
	case script.RawL2:
		return transport.RawL2
	case script.Unix:
		return transport.Unix
	default:
		return transport.TCP
	}
}
