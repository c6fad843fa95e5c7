package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/alvmarrod/peer-metrics/internal/analysis"
	"github.com/alvmarrod/peer-metrics/internal/config"
	"github.com/alvmarrod/peer-metrics/internal/export"
	"github.com/alvmarrod/peer-metrics/internal/metrics"
	"github.com/alvmarrod/peer-metrics/internal/storage"
	"github.com/alvmarrod/peer-metrics/internal/version"
	"github.com/sirupsen/logrus"
)

const (
	resultsSuffix = "_results.csv"
	radarFile     = "radar.csv"
)

// session bundles what every subcommand needs after loading the config
type session struct {
	cfg     *config.Config
	tracker *metrics.Tracker
	opts    analysis.Options
	open    storage.Opener
}

func newSession(configPath string) (*session, error) {
	logrus.Infof("Peer Metrics v%s starting...", version.Version)

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logrus.Infof("Configuration loaded: source=%s, databases=%v, sample_size=%d, workers=%d, guard=%s",
		cfg.Source, cfg.Databases, cfg.SampleSize, cfg.Workers, cfg.CentralizationGuard)

	tracker := metrics.NewTracker()
	return &session{
		cfg:     cfg,
		tracker: tracker,
		opts: analysis.Options{
			SampleSize: cfg.SampleSize,
			BinWidth:   cfg.BinWidth,
			Guard:      cfg.Guard(),
			Tracker:    tracker,
		},
		open: opener(cfg),
	}, nil
}

func opener(cfg *config.Config) storage.Opener {
	if cfg.Source == config.SourceSQLite {
		return storage.SQLiteOpener(cfg.SQLiteDir)
	}
	return storage.PostgresOpener(storage.PostgresOptions{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		SSLMode:  cfg.Postgres.SSLMode,
	})
}

// startProgress logs tracker progress every 10 seconds until the returned
// function is called
func (s *session) startProgress() func() {
	stop := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				logrus.Info(s.tracker.LogProgress())
			case <-stop:
				return
			}
		}
	}()

	return func() {
		close(stop)
		wg.Wait()
	}
}

// finish writes the run metrics. The reason is "signal" when the run was
// interrupted.
func (s *session) finish(ctx context.Context) {
	reason := "completed"
	if ctx.Err() != nil {
		reason = "signal"
	}

	logrus.Info("Final stats: " + s.tracker.LogProgress())
	if stats := s.tracker.GetSnapshot(); stats.NetworksFailed > 0 {
		logrus.Warnf("%d of %d networks could not be read", stats.NetworksFailed,
			stats.NetworksFailed+stats.NetworksProcessed)
	}

	if err := s.tracker.WriteToFile(s.cfg.MetricsPath, reason); err != nil {
		logrus.Errorf("Failed to write metrics: %v", err)
	} else {
		logrus.Infof("Metrics written to %s", s.cfg.MetricsPath)
	}
}

func runAnalyses(ctx context.Context, configPath, only string) error {
	s, err := newSession(configPath)
	if err != nil {
		return err
	}
	defer s.finish(ctx)

	analyses, err := analysis.New(splitNames(only), s.opts)
	if err != nil {
		return err
	}

	stopProgress := s.startProgress()
	runner := analysis.NewRunner(s.open, analyses, s.cfg.Workers, s.tracker)
	reports := runner.Run(ctx, s.cfg.Databases)
	stopProgress()

	if err := os.MkdirAll(s.cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	for _, a := range analyses {
		path := filepath.Join(s.cfg.OutputDir, a.Name()+resultsSuffix)
		columns := a.Columns()
		err := writeFile(path, func(w io.Writer) error {
			return export.WriteResults(w, columns, reports)
		})
		if err != nil {
			return err
		}
		logrus.Infof("Results saved to %s", path)
	}

	radarPath := filepath.Join(s.cfg.OutputDir, radarFile)
	table := export.FromReports(analysis.Columns(analyses), reports)
	if err := writeFile(radarPath, func(w io.Writer) error { return export.WriteRadar(w, table) }); err != nil {
		return err
	}
	logrus.Infof("Radar matrix saved to %s", radarPath)

	export.RenderSummary(os.Stdout, analysis.Columns(analyses), reports)
	return nil
}

// detail is a single-network analysis with tabular output
type detail struct {
	name string
	run  func(ctx context.Context, src storage.Source, crawlID int64, opts analysis.Options) (func(io.Writer) error, error)
}

var degreeDistribution = detail{
	name: "degree_distribution",
	run: func(ctx context.Context, src storage.Source, _ int64, opts analysis.Options) (func(io.Writer) error, error) {
		bins, err := analysis.DegreeDistribution(ctx, src, opts)
		if err != nil {
			return nil, err
		}
		return func(w io.Writer) error { return export.WriteBins(w, bins) }, nil
	},
}

var unreachable = detail{
	name: "unreachable",
	run: func(ctx context.Context, src storage.Source, crawlID int64, opts analysis.Options) (func(io.Writer) error, error) {
		h, err := analysis.UnreachableDistribution(ctx, src, crawlID, opts)
		if err != nil {
			return nil, err
		}
		return func(w io.Writer) error { return export.WriteHistogram(w, h) }, nil
	},
}

var neighborRatio = detail{
	name: "neighbor_ratio",
	run: func(ctx context.Context, src storage.Source, crawlID int64, opts analysis.Options) (func(io.Writer) error, error) {
		points, err := analysis.NeighborRatios(ctx, src, crawlID, opts)
		if err != nil {
			return nil, err
		}
		return func(w io.Writer) error { return export.WriteRatios(w, points) }, nil
	},
}

// runDetail runs a detail analysis on one database, or on every configured
// database when none is given. A failing network is logged and skipped.
func runDetail(ctx context.Context, configPath, database string, crawlID int64, d detail) error {
	s, err := newSession(configPath)
	if err != nil {
		return err
	}
	defer s.finish(ctx)

	databases := s.cfg.Databases
	if database != "" {
		databases = []string{database}
	}

	if err := os.MkdirAll(s.cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	written := 0
	for _, db := range databases {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		path := filepath.Join(s.cfg.OutputDir, db+"_"+d.name+".csv")
		if err := s.detailNetwork(ctx, db, crawlID, d, path); err != nil {
			logrus.Errorf("%s on %s failed: %v", d.name, db, err)
			s.tracker.IncrementNetworksFailed()
			continue
		}
		s.tracker.IncrementNetworksProcessed()
		logrus.Infof("Results saved to %s", path)
		written++
	}

	if written == 0 {
		return fmt.Errorf("%s produced no output for %v", d.name, databases)
	}
	return nil
}

func (s *session) detailNetwork(ctx context.Context, database string, crawlID int64, d detail, path string) error {
	logrus.Infof("Processing database: %s", database)

	src, err := s.open(ctx, database)
	if err != nil {
		return err
	}
	defer src.Close()

	write, err := d.run(ctx, src, crawlID, s.opts)
	if err != nil {
		return err
	}
	return writeFile(path, write)
}

// runRadar merges every results file in the output dir into radar.csv, so
// runs restricted with --only combine into one matrix
func runRadar(configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	paths, err := filepath.Glob(filepath.Join(cfg.OutputDir, "*"+resultsSuffix))
	if err != nil {
		return fmt.Errorf("failed to list results: %w", err)
	}
	if len(paths) == 0 {
		return fmt.Errorf("no results files in %s, run the analyses first", cfg.OutputDir)
	}

	merged := export.NewTable()
	for _, p := range paths {
		t, err := readResults(p)
		if err != nil {
			return err
		}
		merged.Merge(t)
		logrus.Debugf("Merged %s: %d networks, %d metrics", p, len(t.Networks), len(t.Columns))
	}

	path := filepath.Join(cfg.OutputDir, radarFile)
	if err := writeFile(path, func(w io.Writer) error { return export.WriteRadar(w, merged) }); err != nil {
		return err
	}

	logrus.Infof("Radar matrix with %d metrics and %d networks saved to %s",
		len(merged.Columns), len(merged.Networks), path)
	return nil
}

func readResults(path string) (*export.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	t, err := export.ReadResults(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

func splitNames(list string) []string {
	var names []string
	for _, n := range strings.Split(list, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}
