package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/location-weather/internal/logging"
	"github.com/i474232898/location-weather/internal/weather"
)

const sampleTimeout = 30 * time.Second

// Reporter produces the current temperature report.
type Reporter interface {
	Report(ctx context.Context) (weather.Report, error)
}

// Sink receives every sampled report.
type Sink interface {
	Name() string
	Write(ctx context.Context, readings []weather.Reading) error
}

// Scheduler periodically samples temperatures for every saved location and
// forwards the readings to the configured sinks.
type Scheduler struct {
	scheduler *gocron.Scheduler
	reporter  Reporter
	sinks     []Sink
	interval  time.Duration
	logger    *logging.Logger
}

// New creates a new Scheduler. An interval of zero disables sampling.
func New(reporter Reporter, interval time.Duration, logger *logging.Logger, sinks ...Sink) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		reporter:  reporter,
		sinks:     sinks,
		interval:  interval,
		logger:    logger.With("component", "scheduler"),
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.logger.Info("sampler disabled")
		return nil
	}
	if len(s.sinks) == 0 {
		s.logger.Info("no sinks configured; nothing to schedule")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), sampleTimeout)
		defer cancel()
		s.RunOnce(ctx)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("sampler started", "interval", s.interval.String(), "sinks", len(s.sinks))
	return nil
}

// RunOnce takes one sample and writes it to every sink concurrently. A
// failing sink does not affect the others.
func (s *Scheduler) RunOnce(ctx context.Context) {
	report, err := s.reporter.Report(ctx)
	if err != nil {
		s.logger.Warn("sample failed", "error", err)
		return
	}
	if report.Empty() {
		return
	}

	var wg sync.WaitGroup
	for _, sink := range s.sinks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := sink.Write(ctx, report.Readings); err != nil {
				s.logger.Warn("sink write failed", "sink", sink.Name(), "error", err)
			}
		}()
	}
	wg.Wait()

	s.logger.Debug("sample written", "readings", len(report.Readings))
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
