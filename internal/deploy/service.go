package deploy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leozw/launchpad/internal/core"
	"github.com/leozw/launchpad/internal/metrics"
	"github.com/leozw/launchpad/internal/queue"
	"github.com/leozw/launchpad/internal/storage"
)

// Service is the deployment orchestrator. Deploy runs in the API process
// and only records intent: one deployment row, one project status flip, one
// queued job. Execute runs in the worker process and drives the build to a
// terminal state. The two never share process memory; the queue and the
// database are the only hand-off points.
type Service struct {
	projects       storage.ProjectRepository
	deployments    storage.DeploymentRepository
	jobs           queue.Publisher
	builder        Builder
	metrics        *metrics.Collector
	logger         *zap.Logger
	platformDomain string
}

func NewService(
	projects storage.ProjectRepository,
	deployments storage.DeploymentRepository,
	jobs queue.Publisher,
	builder Builder,
	collector *metrics.Collector,
	logger *zap.Logger,
	platformDomain string,
) *Service {
	return &Service{
		projects:       projects,
		deployments:    deployments,
		jobs:           jobs,
		builder:        builder,
		metrics:        collector,
		logger:         logger,
		platformDomain: platformDomain,
	}
}

// Deploy starts a build for the project. At most one deployment may be in
// flight per project: if the project is already building (or paused) the
// call fails with core.ErrConflict. The caller gets the building deployment
// back immediately; completion is observable only by polling.
func (s *Service) Deploy(ctx context.Context, projectID, customerID, commitHash, commitMessage string) (*core.Deployment, error) {
	project, err := s.projects.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.CustomerID != customerID {
		return nil, core.ErrForbidden
	}

	now := time.Now().UTC()
	deployment := &core.Deployment{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Status:    core.DeploymentBuilding,
		CreatedAt: now,
	}
	if commitHash != "" {
		deployment.CommitHash = &commitHash
	}
	if commitMessage != "" {
		deployment.CommitMessage = &commitMessage
	}

	if err := s.deployments.BeginDeployment(ctx, deployment, now); err != nil {
		return nil, err
	}

	job := &queue.Job{
		ID:           uuid.New().String(),
		DeploymentID: deployment.ID,
		ProjectID:    projectID,
		CustomerID:   customerID,
		CreatedAt:    now,
	}
	if err := s.jobs.Push(ctx, job); err != nil {
		// The deployment exists but will never be picked up; fail it now
		// rather than leaving the reconciler to find it.
		s.logger.Error("failed to enqueue build job",
			zap.Error(err),
			zap.String("deployment_id", deployment.ID),
		)
		s.fail(ctx, deployment.ID, "failed to enqueue build job")
		return nil, err
	}

	s.metrics.RecordDeploymentStarted()
	s.logger.Info("deployment started",
		zap.String("deployment_id", deployment.ID),
		zap.String("project_id", projectID),
		zap.String("customer_id", customerID),
	)

	return deployment, nil
}

// Execute runs the build for a queued job and reconciles both the
// deployment and its project with the outcome. Every failure path ends in
// an error status write; nothing escapes to the caller except storage
// errors the worker should retry on.
func (s *Service) Execute(ctx context.Context, deploymentID string) error {
	deployment, err := s.deployments.GetDeployment(ctx, deploymentID)
	if err != nil {
		return err
	}
	if deployment.Status.Terminal() {
		// Already reconciled, likely by the sweep. Stale queue entry.
		s.logger.Warn("skipping deployment in terminal state",
			zap.String("deployment_id", deploymentID),
			zap.String("status", string(deployment.Status)),
		)
		return nil
	}

	project, err := s.projects.GetProject(ctx, deployment.ProjectID)
	if err != nil {
		s.fail(ctx, deploymentID, "project no longer exists")
		return nil
	}

	start := time.Now()
	buildErr := s.builder.Build(ctx, project, deployment)
	duration := int(time.Since(start).Seconds())

	if buildErr != nil {
		logs := buildErr.Error()
		status := core.DeploymentError
		upd := core.DeploymentUpdate{
			Status:   &status,
			Duration: &duration,
			Logs:     &logs,
		}
		if err := s.deployments.FinishDeployment(ctx, deploymentID, upd, core.ProjectError); err != nil {
			if errors.Is(err, core.ErrConflict) {
				s.logDiscardedOutcome(deploymentID)
				return nil
			}
			return err
		}
		s.metrics.RecordDeploymentFinished(string(core.DeploymentError), float64(duration))
		s.logger.Warn("deployment failed",
			zap.String("deployment_id", deploymentID),
			zap.String("project_id", project.ID),
			zap.Error(buildErr),
		)
		return nil
	}

	url := fmt.Sprintf("https://%s.%s", project.Name, s.platformDomain)
	status := core.DeploymentSuccess
	upd := core.DeploymentUpdate{
		Status:   &status,
		Duration: &duration,
		URL:      &url,
	}
	if err := s.deployments.FinishDeployment(ctx, deploymentID, upd, core.ProjectActive); err != nil {
		if errors.Is(err, core.ErrConflict) {
			s.logDiscardedOutcome(deploymentID)
			return nil
		}
		return err
	}

	s.metrics.RecordDeploymentFinished(string(core.DeploymentSuccess), float64(duration))
	s.logger.Info("deployment succeeded",
		zap.String("deployment_id", deploymentID),
		zap.String("project_id", project.ID),
		zap.String("url", url),
		zap.Int("duration", duration),
	)
	return nil
}

// ListByProject returns recent deployments, newest first.
func (s *Service) ListByProject(ctx context.Context, projectID, customerID string, limit int) ([]*core.Deployment, error) {
	if _, err := s.ownedProject(ctx, projectID, customerID); err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = 10
	}
	return s.deployments.ListDeploymentsByProject(ctx, projectID, limit)
}

// Get returns one deployment for completion polling.
func (s *Service) Get(ctx context.Context, projectID, deploymentID, customerID string) (*core.Deployment, error) {
	if _, err := s.ownedProject(ctx, projectID, customerID); err != nil {
		return nil, err
	}
	deployment, err := s.deployments.GetDeployment(ctx, deploymentID)
	if err != nil {
		return nil, err
	}
	if deployment.ProjectID != projectID {
		return nil, core.ErrNotFound
	}
	return deployment, nil
}

func (s *Service) ownedProject(ctx context.Context, projectID, customerID string) (*core.Project, error) {
	project, err := s.projects.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.CustomerID != customerID {
		return nil, core.ErrForbidden
	}
	return project, nil
}

func (s *Service) fail(ctx context.Context, deploymentID, reason string) {
	status := core.DeploymentError
	upd := core.DeploymentUpdate{
		Status: &status,
		Logs:   &reason,
	}
	err := s.deployments.FinishDeployment(ctx, deploymentID, upd, core.ProjectError)
	if err != nil && !errors.Is(err, core.ErrConflict) {
		s.logger.Error("failed to mark deployment as errored",
			zap.Error(err),
			zap.String("deployment_id", deploymentID),
		)
	}
}

// logDiscardedOutcome covers the race where the reconciliation sweep forced
// the deployment terminal while the build was still running. The build
// result is dropped; whatever is in the database already won.
func (s *Service) logDiscardedOutcome(deploymentID string) {
	s.logger.Warn("build outcome discarded; deployment already terminal",
		zap.String("deployment_id", deploymentID),
	)
}
