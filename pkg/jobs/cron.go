package jobs

import (
	"context"
	"time"

	"github.com/jordanlanch/clientintel/pkg/logger"
	"github.com/robfig/cron/v3"
)

// DefaultRecomputeSchedule runs the bulk recompute nightly at 2 AM.
const DefaultRecomputeSchedule = "0 2 * * *"

const recomputeTimeout = 30 * time.Minute

// CronManager manages scheduled jobs
type CronManager struct {
	cron       *cron.Cron
	recomputer *Recomputer
	logger     logger.Logger
}

// NewCronManager creates a new cron manager
func NewCronManager(recomputer *Recomputer, log logger.Logger) *CronManager {
	if log == nil {
		log = logger.Discard()
	}

	return &CronManager{
		cron:       cron.New(),
		recomputer: recomputer,
		logger:     log,
	}
}

// SetupJobs configures all scheduled jobs. An empty schedule disables the
// nightly recompute.
func (cm *CronManager) SetupJobs(recomputeSchedule string) error {
	if recomputeSchedule == "" {
		cm.logger.Info("nightly recompute disabled")
		return nil
	}

	_, err := cm.cron.AddFunc(recomputeSchedule, cm.runRecompute)
	if err != nil {
		return err
	}

	cm.logger.Info("cron jobs configured", "recompute_schedule", recomputeSchedule)
	return nil
}

func (cm *CronManager) runRecompute() {
	cm.logger.Info("running scheduled recompute")

	ctx, cancel := context.WithTimeout(context.Background(), recomputeTimeout)
	defer cancel()

	if _, err := cm.recomputer.RunOnce(ctx); err != nil {
		cm.logger.Error("scheduled recompute failed", "error", err)
	}
}

// Entries returns the number of scheduled jobs.
func (cm *CronManager) Entries() int {
	return len(cm.cron.Entries())
}

// Start starts the cron scheduler
func (cm *CronManager) Start() {
	cm.logger.Info("starting cron scheduler")
	cm.cron.Start()
}

// Stop stops the cron scheduler and waits for running jobs.
func (cm *CronManager) Stop() {
	cm.logger.Info("stopping cron scheduler")
	<-cm.cron.Stop().Done()
}

// Recomputer returns the recomputer (for manual triggers)
func (cm *CronManager) Recomputer() *Recomputer {
	return cm.recomputer
}
