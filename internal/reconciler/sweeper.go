package reconciler

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/leozw/launchpad/internal/core"
	"github.com/leozw/launchpad/internal/metrics"
	"github.com/leozw/launchpad/internal/storage"
)

const stuckLogs = "build did not complete before the deadline; forced to error by reconciliation"

// Sweeper is the recovery path for the crash window between a deployment
// being recorded and its completion write: any deployment still building
// past the deadline is forced to error, along with its project. Without
// this, a worker crash leaves the project stuck in building forever.
type Sweeper struct {
	deployments storage.DeploymentRepository
	metrics     *metrics.Collector
	logger      *zap.Logger
	interval    time.Duration
	deadline    time.Duration
}

func NewSweeper(deployments storage.DeploymentRepository, collector *metrics.Collector, logger *zap.Logger, interval, deadline time.Duration) *Sweeper {
	return &Sweeper{
		deployments: deployments,
		metrics:     collector,
		logger:      logger,
		interval:    interval,
		deadline:    deadline,
	}
}

func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("starting reconciliation sweep",
		zap.Duration("interval", s.interval),
		zap.Duration("deadline", s.deadline),
	)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("stopping reconciliation sweep")
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.logger.Error("reconciliation sweep failed", zap.Error(err))
			}
		}
	}
}

// Sweep forces every over-deadline building deployment to error and returns
// how many it corrected.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-s.deadline)
	stuck, err := s.deployments.ListBuildingBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	corrected := 0
	for _, d := range stuck {
		status := core.DeploymentError
		logs := stuckLogs
		duration := int(time.Since(d.CreatedAt).Seconds())
		upd := core.DeploymentUpdate{
			Status:   &status,
			Duration: &duration,
			Logs:     &logs,
		}

		if err := s.deployments.FinishDeployment(ctx, d.ID, upd, core.ProjectError); err != nil {
			if errors.Is(err, core.ErrConflict) {
				// The build completed between the listing and this write.
				continue
			}
			s.logger.Error("failed to reconcile stuck deployment",
				zap.Error(err),
				zap.String("deployment_id", d.ID),
			)
			continue
		}

		corrected++
		s.logger.Warn("forced stuck deployment to error",
			zap.String("deployment_id", d.ID),
			zap.String("project_id", d.ProjectID),
			zap.Time("created_at", d.CreatedAt),
		)
	}

	s.metrics.RecordSweep(corrected)
	return corrected, nil
}
