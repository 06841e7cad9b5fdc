package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/aquaexport/seatrace/internal/config"
	"github.com/aquaexport/seatrace/internal/repository/mongodb"
	"github.com/aquaexport/seatrace/internal/repository/sheets"
	"github.com/aquaexport/seatrace/internal/service/reconcile"
	"github.com/aquaexport/seatrace/internal/service/shipment"
)

// Scheduler runs the periodic reconciliation sweep: every shipment touched
// since the previous run is re-scanned, and any mismatches are stored and
// exported. Like all scans this is advisory; a failed sweep only logs.
type Scheduler struct {
	cron     *cron.Cron
	cfg      config.ReconcileConfig
	scanner  *reconcile.Scanner
	cache    *shipment.SessionCache
	store    mongodb.Repository
	exporter sheets.Exporter
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance. exporter may be nil when
// the sheets export is not configured.
func NewScheduler(cfg config.ReconcileConfig, scanner *reconcile.Scanner, cache *shipment.SessionCache, store mongodb.Repository, exporter sheets.Exporter, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		cron:     cron.New(),
		cfg:      cfg,
		scanner:  scanner,
		cache:    cache,
		store:    store,
		exporter: exporter,
		logger:   logger,
	}
}

// Start registers the sweep job and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.CronSchedule))

	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.sweep); err != nil {
		s.logger.Error("failed to schedule reconciliation sweep", zap.Error(err))
		return
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) sweep() {
	shipmentIDs := s.cache.DrainTouched()
	if len(shipmentIDs) == 0 {
		return
	}

	s.logger.Info("reconciliation sweep starting", zap.Int("shipments", len(shipmentIDs)))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	for _, shipmentID := range shipmentIDs {
		reports := s.scanner.ScanShipment(ctx, shipmentID)
		if len(reports) == 0 {
			continue
		}

		if err := s.store.SaveMismatchReports(ctx, reports); err != nil {
			s.logger.Error("failed to store sweep findings",
				zap.String("shipment_id", shipmentID), zap.Error(err))
		}

		if s.exporter != nil {
			if err := s.exporter.AppendReports(ctx, reports); err != nil {
				s.logger.Error("failed to export sweep findings",
					zap.String("shipment_id", shipmentID), zap.Error(err))
			}
		}
	}
}
