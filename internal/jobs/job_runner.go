package jobs

import (
	"fleetrental-backend/internal/adapters"
	"fleetrental-backend/internal/clock"
	"fleetrental-backend/internal/config"
	"fleetrental-backend/internal/logger"
	"fleetrental-backend/internal/service"
)

// JobRunner holds the dependencies for scheduled sweeps.
type JobRunner struct {
	cfg          *config.Config
	clk          clock.Clock
	rentals      service.RentalService
	inventory    service.InventoryService
	gate         service.MaintenanceService
	reservations service.ReservationService
	notifier     adapters.NotificationPort

	// reminded tracks reservations already sent a pickup reminder so
	// successive sweeps do not repeat themselves. Only the reminder
	// sweep touches it.
	reminded map[int]bool
}

func NewJobRunner(cfg *config.Config, clk clock.Clock, rentals service.RentalService,
	inventory service.InventoryService, gate service.MaintenanceService,
	reservations service.ReservationService, notifier adapters.NotificationPort) *JobRunner {
	return &JobRunner{
		cfg:          cfg,
		clk:          clk,
		rentals:      rentals,
		inventory:    inventory,
		gate:         gate,
		reservations: reservations,
		notifier:     notifier,
		reminded:     make(map[int]bool),
	}
}

// Config returns the configuration used by the runner
func (jr *JobRunner) Config() *config.Config {
	return jr.cfg
}

// runWithRecovery wraps job execution with panic recovery so one bad
// sweep cannot take down the scheduler.
func (jr *JobRunner) runWithRecovery(jobName string, job func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()
	logger.Debug("Job starting", "job", jobName)
	job()
	logger.Debug("Job finished", "job", jobName)
}
