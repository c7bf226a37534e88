// Package schedule repeats the scan-and-consolidate pipeline on a fixed
// cadence. Recurring cadences run until the surrounding context is
// cancelled; due jobs are found by polling rather than by computing
// exact deadlines, so drift is bounded by the poll interval.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Cadence is the recurrence policy for scheduled scans.
type Cadence string

const (
	Once    Cadence = "once"
	Daily   Cadence = "daily"
	Weekly  Cadence = "weekly"
	Monthly Cadence = "monthly"
)

// DefaultPollInterval is how often the scheduler checks for due jobs.
const DefaultPollInterval = 60 * time.Second

// ParseCadence validates a cadence string. Invalid values are rejected
// here, before any job is registered.
func ParseCadence(s string) (Cadence, error) {
	switch Cadence(strings.ToLower(strings.TrimSpace(s))) {
	case Once:
		return Once, nil
	case Daily:
		return Daily, nil
	case Weekly:
		return Weekly, nil
	case Monthly:
		return Monthly, nil
	default:
		return "", fmt.Errorf("invalid schedule %q: must be one of once, daily, weekly, monthly", s)
	}
}

// Interval returns the recurrence interval. Once has no interval. A
// month counts as 30 days.
func (c Cadence) Interval() time.Duration {
	switch c {
	case Daily:
		return 24 * time.Hour
	case Weekly:
		return 7 * 24 * time.Hour
	case Monthly:
		return 30 * 24 * time.Hour
	default:
		return 0
	}
}

// Recurring reports whether the cadence fires more than once.
func (c Cadence) Recurring() bool { return c != Once }

// Job is one firing of the pipeline. Its error marks the firing failed;
// the scheduler logs it and keeps going.
type Job func(ctx context.Context) error

// Scheduler drives a Job on a cadence.
type Scheduler struct {
	cadence Cadence
	job     Job
	logger  *slog.Logger

	// pollInterval overrides DefaultPollInterval, for tests.
	pollInterval time.Duration

	// interval overrides the cadence's recurrence interval, for tests.
	interval time.Duration
}

// New creates a Scheduler for the given cadence and job.
func New(cadence Cadence, job Job, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cadence:      cadence,
		job:          job,
		logger:       logger,
		pollInterval: DefaultPollInterval,
		interval:     cadence.Interval(),
	}
}

// SetPollInterval changes how often the waiting loop checks for due
// jobs. Must be called before Run.
func (s *Scheduler) SetPollInterval(d time.Duration) {
	if d > 0 {
		s.pollInterval = d
	}
}

// Run executes the schedule. For Once the job fires immediately, exactly
// one time, and Run returns its error. For recurring cadences the first
// firing comes one full interval after Run starts, then repeats
// indefinitely; a firing's failure is logged and never stops the loop.
// Run returns nil once ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.cadence == Once {
		return s.job(ctx)
	}

	interval := s.interval
	next := time.Now().Add(interval)
	s.logger.Info("scan scheduled", "cadence", string(s.cadence), "next_run", next.Format(time.RFC3339))

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopping")
			return nil
		case <-ticker.C:
			if time.Now().Before(next) {
				continue
			}
			s.logger.Info("starting scheduled scan")
			if err := s.job(ctx); err != nil {
				if ctx.Err() != nil {
					s.logger.Info("scheduler stopping")
					return nil
				}
				s.logger.Error("scheduled scan failed", "error", err)
			} else {
				s.logger.Info("scheduled scan completed")
			}
			next = next.Add(interval)
		}
	}
}
