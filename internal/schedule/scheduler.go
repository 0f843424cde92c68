package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jonathan/pts-radar/internal/logger"
)

// Job is one scheduled unit of work. The context is cancelled when the
// scheduler stops.
type Job func(ctx context.Context) error

// Options tune a Scheduler
type Options struct {
	// RunOnStart fires the job once immediately, before the first tick
	RunOnStart bool
}

// parser accepts the standard 5-field format and descriptors such as @hourly or @every 1m.
var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Scheduler fires a Job on a cron schedule. Overlapping ticks are skipped,
// so at most one run is in flight.
type Scheduler struct {
	expr     string
	schedule cron.Schedule
	job      Job
	opts     Options
	logger   logger.Logger
}

// New parses expr and returns a Scheduler for job.
func New(expr string, job Job, opts Options, log logger.Logger) (*Scheduler, error) {
	if job == nil {
		return nil, &Error{Expr: expr, Message: "no job given"}
	}
	schedule, err := Parse(expr)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Scheduler{
		expr:     expr,
		schedule: schedule,
		job:      job,
		opts:     opts,
		logger:   log.With(logger.String("schedule", expr)),
	}, nil
}

// Parse validates a schedule expression.
func Parse(expr string) (cron.Schedule, error) {
	schedule, err := parser.Parse(expr)
	if err != nil {
		return nil, &Error{Expr: expr, Message: "failed to parse cron expression", Cause: err}
	}
	return schedule, nil
}

// Next returns the first tick after t.
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t)
}

// Run blocks, firing the job on every tick until ctx is cancelled. It waits
// for an in-flight job to return before returning itself.
func (s *Scheduler) Run(ctx context.Context) error {
	cl := cronLogger{log: s.logger}
	c := cron.New(
		cron.WithParser(parser),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	entryID := c.Schedule(s.schedule, cron.FuncJob(func() { s.fire(ctx) }))

	c.Start()
	s.logger.Info("Scheduler started", logger.String("next_run", s.Next(time.Now()).Format(time.RFC3339)))

	var wg sync.WaitGroup
	if s.opts.RunOnStart {
		// Routed through the entry so the skip-if-running guard covers it.
		wrapped := c.Entry(entryID).WrappedJob
		wg.Add(1)
		go func() {
			defer wg.Done()
			wrapped.Run()
		}()
	}

	<-ctx.Done()
	s.logger.Info("Stopping scheduler")
	<-c.Stop().Done()
	wg.Wait()
	s.logger.Info("Scheduler stopped")
	return nil
}

func (s *Scheduler) fire(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	s.logger.Info("Scheduled run triggered")
	if err := s.job(ctx); err != nil {
		s.logger.Error("Scheduled run failed", logger.Error(err), logger.Duration("elapsed", time.Since(start)))
		return
	}
	s.logger.Info("Scheduled run finished", logger.Duration("elapsed", time.Since(start)))
}

// cronLogger adapts Logger to cron's key/value logger.
type cronLogger struct {
	log logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	if msg == "skip" {
		l.log.Warn("Scheduled run skipped; previous run still in progress")
		return
	}
	l.log.Debug("cron: "+msg, kvFields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error("cron: "+msg, append(kvFields(keysAndValues), logger.Error(err))...)
}

func kvFields(keysAndValues []any) []logger.Field {
	fields := make([]logger.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields = append(fields, logger.Any(fmt.Sprint(keysAndValues[i]), keysAndValues[i+1]))
	}
	return fields
}
