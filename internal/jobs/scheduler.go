// Package jobs runs background work on cron schedules.
package jobs

import (
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Job is a named unit of scheduled work.
type Job interface {
	Name() string
	Run() error
}

// Scheduler wraps robfig/cron with structured logging around each run.
type Scheduler struct {
	cron   *cron.Cron
	logger *logrus.Entry
}

func NewScheduler(logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		logger: logger.WithField("component", "scheduler"),
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started")
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// Add registers a job on a cron schedule (standard 5-field specs plus
// descriptors like "@every 30m").
func (s *Scheduler) Add(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		if err := job.Run(); err != nil {
			s.logger.WithError(err).WithField("job", job.Name()).Error("job failed")
			return
		}
		s.logger.WithField("job", job.Name()).Debug("job completed")
	})
	if err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{"job": job.Name(), "schedule": schedule}).Info("job registered")
	return nil
}
