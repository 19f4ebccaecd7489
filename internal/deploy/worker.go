package deploy

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/leozw/launchpad/internal/queue"
)

// WorkerPool consumes build jobs from the queue and drives them through
// Service.Execute. It lives in its own process (cmd/worker) so builds
// survive API restarts.
type WorkerPool struct {
	jobs       queue.Consumer
	svc        *Service
	logger     *zap.Logger
	count      int
	popTimeout time.Duration
	wg         sync.WaitGroup
}

func NewWorkerPool(jobs queue.Consumer, svc *Service, logger *zap.Logger, count int, popTimeout time.Duration) *WorkerPool {
	if count < 1 {
		count = 1
	}
	if popTimeout <= 0 {
		popTimeout = 5 * time.Second
	}
	return &WorkerPool{
		jobs:       jobs,
		svc:        svc,
		logger:     logger,
		count:      count,
		popTimeout: popTimeout,
	}
}

func (p *WorkerPool) Start(ctx context.Context) {
	p.logger.Info("starting build workers", zap.Int("worker_count", p.count))

	for i := 0; i < p.count; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			p.run(ctx, id)
		}(i)
	}

	<-ctx.Done()
	p.wg.Wait()
}

func (p *WorkerPool) run(ctx context.Context, id int) {
	logger := p.logger.With(zap.Int("worker_id", id))
	logger.Info("worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("worker stopped")
			return
		default:
		}

		job, err := p.jobs.Pop(ctx, p.popTimeout)
		if err != nil {
			if errors.Is(err, queue.ErrTimeout) || ctx.Err() != nil {
				continue
			}
			logger.Error("failed to pop build job", zap.Error(err))
			continue
		}

		logger.Debug("processing build job",
			zap.String("job_id", job.ID),
			zap.String("deployment_id", job.DeploymentID),
		)

		if err := p.svc.Execute(ctx, job.DeploymentID); err != nil {
			logger.Error("build job failed",
				zap.Error(err),
				zap.String("deployment_id", job.DeploymentID),
			)
		}
	}
}
