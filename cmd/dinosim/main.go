package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/signalsfoundry/dinosim/core"
	"github.com/signalsfoundry/dinosim/internal/config"
	"github.com/signalsfoundry/dinosim/internal/export"
	"github.com/signalsfoundry/dinosim/internal/logging"
	"github.com/signalsfoundry/dinosim/internal/observability"
	"github.com/signalsfoundry/dinosim/kb"
)

// Options are the command-line overrides applied on top of the loaded config.
type Options struct {
	ConfigPath          string
	ScenarioPath        string
	OutputDir           string
	NoAntennaCorrection bool
}

func main() {
	var opts Options
	flag.StringVar(&opts.ConfigPath, "config", "", "Path to a YAML run configuration (defaults to $DINOSIM_CONFIG)")
	flag.StringVar(&opts.ScenarioPath, "scenario", "", "Path to a YAML scenario; overrides the config's scenario")
	flag.StringVar(&opts.OutputDir, "out", "", "Directory for CSV output; overrides output.dir")
	flag.BoolVar(&opts.NoAntennaCorrection, "no-antenna-correction", false, "Ignore antenna gain when computing received power")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "dinosim: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts Options, stdout io.Writer) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	applyOptions(&cfg, opts)
	if cfg.Scenario == "" {
		return fmt.Errorf("%w: no scenario given (use -scenario or set scenario in the config)", config.ErrInvalid)
	}

	log := logging.New(cfg.Logging())

	shutdown, err := observability.InitTracing(ctx, cfg.TraceSettings(), log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdown, log)

	collector, err := observability.NewCoverageCollector(prometheus.NewRegistry())
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	store := kb.NewKnowledgeBase()
	unsubscribe := store.Subscribe(func(ev kb.Event) {
		switch ev.Type {
		case kb.EventSpacecraftAdded:
			log.Debug(ctx, "spacecraft added", logging.String("spacecraft", ev.Spacecraft))
		case kb.EventSpacecraftConfigured:
			log.Debug(ctx, "spacecraft configured",
				logging.String("spacecraft", ev.Spacecraft),
				logging.Float64("frequency_hz", ev.Params.FrequencyHz),
				logging.Float64("antenna_gain_db", ev.Params.AntennaGainDB),
			)
		}
	})
	defer unsubscribe()

	scenario, err := loadScenario(store, cfg.Scenario)
	if err != nil {
		return err
	}
	log.Info(ctx, "loaded scenario",
		logging.String("path", cfg.Scenario),
		logging.Int("bodies", len(scenario.Bodies)),
		logging.Int("spacecraft", len(scenario.Spacecraft)),
		logging.Int("configured", scenario.Configured),
	)

	for _, b := range store.ListBodies() {
		fmt.Fprintln(stdout, b.String())
	}
	for _, sc := range store.ListSpacecraft() {
		fmt.Fprintln(stdout, sc.Summary())
		if !sc.HasCommParams() {
			log.Warn(ctx, "spacecraft has no comm params; excluded from coverage", logging.String("spacecraft", sc.Name))
		}
	}

	svc := core.NewCoverageService(configuredOnly{store})
	svc.MinPowerDBm = cfg.Coverage.MinPowerDBm
	svc.Log = log
	svc.Metrics = collector

	cov, err := svc.Evaluate(ctx, cfg.FieldRequest())
	if err != nil {
		return fmt.Errorf("coverage run: %w", err)
	}
	fmt.Fprintf(stdout, "Coverage: %d spacecraft, best power %.1f dBm, %.1f%% of grid acquired by at least one, max %d acquired.\n",
		len(cov.Fields), cov.Best.Max(), 100*cov.CoveredFraction(1), cov.MaxAcquired())

	out, err := export.NewOutputManager(cfg.Output.Dir)
	if err != nil {
		return err
	}
	if out != nil {
		if err := out.WriteScene(store.ListBodies(), store.ListSpacecraft()); err != nil {
			return err
		}
		if err := out.WriteCoverage(cov); err != nil {
			return err
		}
		if err := out.WritePatterns(store.ListSpacecraft()); err != nil {
			return err
		}
		log.Info(ctx, "wrote CSV output", logging.String("dir", out.Dir()))
	}

	if cfg.Metrics.Textfile != "" {
		if err := collector.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			return fmt.Errorf("write metrics textfile: %w", err)
		}
		log.Info(ctx, "wrote metrics textfile", logging.String("path", cfg.Metrics.Textfile))
	}
	return nil
}

func applyOptions(cfg *config.Config, opts Options) {
	if opts.ScenarioPath != "" {
		cfg.Scenario = opts.ScenarioPath
	}
	if opts.OutputDir != "" {
		cfg.Output.Dir = opts.OutputDir
	}
	if opts.NoAntennaCorrection {
		cfg.Grid.AntennaCorrection = false
	}
}

func loadScenario(store *kb.KnowledgeBase, path string) (*kb.Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenario %q: %w", path, err)
	}
	defer f.Close()

	scenario, err := kb.LoadScenario(store, f)
	if err != nil {
		return nil, fmt.Errorf("load scenario %q: %w", path, err)
	}
	return scenario, nil
}

// configuredOnly lists the spacecraft that can take part in a coverage run.
type configuredOnly struct {
	store *kb.KnowledgeBase
}

func (c configuredOnly) ListSpacecraft() []*core.Spacecraft {
	all := c.store.ListSpacecraft()
	out := all[:0:0]
	for _, sc := range all {
		if sc.HasCommParams() {
			out = append(out, sc)
		}
	}
	return out
}
