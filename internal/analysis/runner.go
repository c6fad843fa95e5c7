package analysis

import (
	"context"
	"fmt"
	"sync"

	"github.com/alvmarrod/peer-metrics/internal/metrics"
	"github.com/alvmarrod/peer-metrics/internal/stats"
	"github.com/alvmarrod/peer-metrics/internal/storage"
	"github.com/sirupsen/logrus"
)

// Runner executes a set of analyses over every configured network
type Runner struct {
	open     storage.Opener
	analyses []Analysis
	workers  int
	tracker  *metrics.Tracker
}

// NewRunner creates a runner. workers below 1 is treated as 1.
func NewRunner(open storage.Opener, analyses []Analysis, workers int, tracker *metrics.Tracker) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		open:     open,
		analyses: analyses,
		workers:  workers,
		tracker:  tracker,
	}
}

// Run analyzes each database and returns one report per database, in input
// order. A failure on one network never stops the others. Duplicate names
// are reported once; later duplicates get an empty report.
func (r *Runner) Run(ctx context.Context, databases []string) []Report {
	reports := make([]Report, len(databases))
	for i, db := range databases {
		reports[i].Database = db
	}

	queue := NewQueue()
	for i, db := range databases {
		if !queue.Push(job{Slot: i, Database: db}) {
			logrus.Warnf("Database %s listed more than once, skipping duplicate", db)
		}
	}
	queue.Stop()

	workers := r.workers
	if workers > len(databases) {
		workers = len(databases)
	}
	logrus.Infof("Queued %d networks for %d workers", queue.Size(), workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for {
				j, ok := queue.Pop()
				if !ok {
					return
				}
				logrus.Debugf("Worker %d: analyzing %s", id, j.Database)
				// each slot is written by exactly one worker
				reports[j.Slot] = r.runNetwork(ctx, j.Database)
			}
		}(i + 1)
	}
	wg.Wait()

	return reports
}

func (r *Runner) runNetwork(ctx context.Context, database string) Report {
	report := Report{Database: database}
	logrus.Infof("Processing database: %s", database)

	if err := ctx.Err(); err != nil {
		return r.failAll(report, fmt.Errorf("run cancelled: %w", err))
	}

	src, err := r.open(ctx, database)
	if err != nil {
		logrus.Errorf("Error opening database %s: %v", database, err)
		r.tracker.IncrementNetworksFailed()
		return r.failAll(report, err)
	}
	defer src.Close()
	r.tracker.IncrementNetworksProcessed()

	for _, a := range r.analyses {
		res := Result{Database: database, Analysis: a.Name()}

		values, err := a.Run(ctx, src)
		res.Reason = classify(err)
		res.Err = err

		switch res.Reason {
		case ReasonOK:
			res.Metrics = values
			logrus.Infof("%s on %s: %v", a.Name(), database, formatMetrics(a.Columns(), values))
		case ReasonNoData:
			res.Metrics = nullMetrics(a.Columns())
			logrus.Warnf("%s on %s: no usable data: %v", a.Name(), database, err)
		default:
			res.Metrics = nullMetrics(a.Columns())
			logrus.Errorf("%s on %s failed: %v", a.Name(), database, err)
		}

		report.Results = append(report.Results, res)
	}

	return report
}

func (r *Runner) failAll(report Report, err error) Report {
	for _, a := range r.analyses {
		report.Results = append(report.Results, Result{
			Database: report.Database,
			Analysis: a.Name(),
			Reason:   ReasonDataAccess,
			Err:      err,
			Metrics:  nullMetrics(a.Columns()),
		})
	}
	return report
}

func formatMetrics(columns []string, values map[string]stats.Optional) string {
	s := ""
	for i, c := range columns {
		if i > 0 {
			s += ", "
		}
		v := values[c].String()
		if v == "" {
			v = "null"
		}
		s += c + "=" + v
	}
	return s
}
