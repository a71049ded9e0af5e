package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/signalsfoundry/orbit-kinematics/core"
	"github.com/signalsfoundry/orbit-kinematics/internal/config"
	"github.com/signalsfoundry/orbit-kinematics/internal/logging"
	"github.com/signalsfoundry/orbit-kinematics/internal/observability"
	"github.com/signalsfoundry/orbit-kinematics/kb"
	"github.com/signalsfoundry/orbit-kinematics/timectrl"
)

func main() {
	configPath := flag.String("config", "", "optional runtime config file (toml, yaml or json)")
	scenarioPath := flag.String("scenario", "", "scenario file; overrides the configured path")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if *scenarioPath != "" {
		cfg.ScenarioPath = *scenarioPath
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	ctx, log := logging.WithRunLogger(ctx, logging.New(cfg.Log))

	sum, err := run(ctx, cfg, log, prometheus.NewRegistry())
	stop()
	if err != nil {
		log.Error(ctx, "simulation failed", logging.Err(err))
		os.Exit(1)
	}
	log.Info(ctx, "simulation complete",
		logging.Int("ticks", sum.Ticks),
		logging.Int("links", sum.Links),
		logging.Int("link_events", sum.LinkEvents),
		logging.String("sim_end", sum.SimEnd.Format(time.RFC3339)),
	)
}

type summary struct {
	Ticks          int
	Links          int
	LinkEvents     int
	ContactWindows int

	SimEnd     time.Time // simulation time when the run stopped
	SimSeconds float64   // simulation seconds covered
}

// stamp records where clock stopped.
func (s *summary) stamp(clock timectrl.SimClock) {
	s.SimEnd = clock.Now()
	s.SimSeconds = clock.Elapsed()
}

// run loads the scenario and drives connectivity updates until the configured
// duration has elapsed or ctx is cancelled.
func run(ctx context.Context, cfg config.Config, log logging.Logger, reg *prometheus.Registry) (summary, error) {
	var sum summary

	shutdown, err := observability.InitTracing(ctx, cfg.Tracing, log)
	if err != nil {
		return sum, fmt.Errorf("init tracing: %w", err)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdown, log)

	sc, err := core.LoadScenarioFile(cfg.ScenarioPath)
	if err != nil {
		return sum, err
	}
	m, tracked, err := sc.Build(nil)
	if err != nil {
		return sum, fmt.Errorf("build scenario %s: %w", cfg.ScenarioPath, err)
	}
	log.Info(ctx, "loaded scenario",
		logging.String("path", cfg.ScenarioPath),
		logging.Int("planes", len(m.Planes())),
		logging.Int("satellites", len(m.Satellites())),
		logging.Int("tracked", len(tracked)),
	)

	collector, err := observability.NewConstellationCollector(reg)
	if err != nil {
		return sum, fmt.Errorf("metrics: %w", err)
	}
	collector.SetModelCounts(len(m.Planes()), len(m.Satellites()))
	if srv := serveMetrics(ctx, cfg.MetricsAddr, collector, log); srv != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	store := kb.NewKnowledgeBase()
	unsubscribe := store.Subscribe(func(ev kb.Event) {
		collector.RecordLinkEvent(ev.Type.String())
		sum.LinkEvents++
	})
	defer unsubscribe()

	strategy, err := strategyFromConfig(cfg)
	if err != nil {
		return sum, err
	}
	if cfg.ContactHorizon > 0 {
		plan, err := core.SampleContactWindows(ctx, m, strategy, 0, cfg.ContactHorizon.Seconds(), cfg.Tick.Seconds())
		if err != nil {
			return sum, fmt.Errorf("contact plan: %w", err)
		}
		for _, windows := range plan {
			sum.ContactWindows += len(windows)
		}
		log.Info(ctx, "computed contact plan",
			logging.String("horizon", cfg.ContactHorizon.String()),
			logging.Int("links", len(plan)),
			logging.Int("windows", sum.ContactWindows),
		)
	}

	svc := core.NewConnectivityService(m, strategy,
		core.WithKnowledgeBase(store),
		core.WithLogger(log),
	)

	start := sc.Epoch
	if start.IsZero() {
		start = time.Now().UTC()
	}
	mode := timectrl.RealTime
	if cfg.Accelerated {
		mode = timectrl.Accelerated
	}
	tc := timectrl.NewTimeController(start, cfg.Tick, mode, timectrl.WithMaxRate(cfg.MaxTicksPerSecond))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var tickErr error
	evaluate := func(simTime time.Time, elapsed float64) {
		began := time.Now()
		topology, delta, err := svc.UpdateConnectivity(runCtx, elapsed)
		if err != nil {
			tickErr = fmt.Errorf("tick at %s: %w", simTime.Format(time.RFC3339), err)
			cancel()
			return
		}
		sum.Ticks++
		sum.Links = topology.LinkCount()
		collector.ObserveTick(elapsed, topology.LinkCount(), time.Since(began))

		log.Debug(runCtx, "tick evaluated",
			logging.String("sim_time", simTime.Format(time.RFC3339)),
			logging.Int("links", topology.LinkCount()),
			logging.Int("added", len(delta.Added)),
			logging.Int("removed", len(delta.Removed)),
		)
		for _, obj := range tracked {
			sat, dist := core.NearestSatellite(obj, m.Satellites(), elapsed)
			if sat == nil {
				continue
			}
			log.Info(runCtx, "nearest satellite",
				logging.String("object", obj.Name),
				logging.Int("satellite", sat.ID()),
				logging.Float64("distance_m", dist),
			)
		}
	}

	// Initial topology at the epoch, before the first tick.
	evaluate(start, 0)
	if tickErr != nil {
		return sum, tickErr
	}
	tc.AddListener(evaluate)

	log.Info(ctx, "starting simulation",
		logging.String("duration", cfg.Duration.String()),
		logging.String("tick", cfg.Tick.String()),
		logging.String("mode", mode.String()),
		logging.String("strategy", cfg.Strategy),
	)
	<-tc.Start(runCtx, cfg.Duration)
	sum.stamp(tc)

	if tickErr != nil {
		return sum, tickErr
	}
	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return sum, err
	}
	return sum, nil
}

func strategyFromConfig(cfg config.Config) (core.ConnectionStrategy, error) {
	switch cfg.Strategy {
	case config.StrategyGrid:
		return core.NewGridStrategy(), nil
	case config.StrategyRange:
		rs := core.NewRangeStrategy(cfg.MaxRange)
		if cfg.BlockingRadius > 0 {
			rs.BlockingRadius = cfg.BlockingRadius
		}
		rs.Workers = cfg.Workers
		return rs, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", cfg.Strategy)
	}
}

func serveMetrics(ctx context.Context, addr string, collector *observability.ConstellationCollector, log logging.Logger) *http.Server {
	if addr == "" || collector == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn(ctx, "metrics server exited", logging.Err(err))
		}
	}()

	log.Info(ctx, "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
