package projects

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leozw/launchpad/internal/core"
	"github.com/leozw/launchpad/internal/storage"
)

// Service is the tenant-scoped project registry. Every operation that
// reveals or mutates a project checks ownership first; a mismatch is
// core.ErrForbidden, distinct from core.ErrNotFound.
type Service struct {
	repo   storage.ProjectRepository
	logger *zap.Logger
}

func NewService(repo storage.ProjectRepository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

type CreateInput struct {
	Name            string
	Description     *string
	GithubRepo      *string
	BuildCommand    *string
	OutputDirectory *string
}

func (s *Service) Create(ctx context.Context, customerID string, in CreateInput) (*core.Project, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: project name is required", core.ErrValidation)
	}

	now := time.Now().UTC()
	project := &core.Project{
		ID:              uuid.New().String(),
		Name:            in.Name,
		Description:     in.Description,
		CustomerID:      customerID,
		Status:          core.ProjectActive,
		Domains:         core.StringSlice{},
		GithubRepo:      in.GithubRepo,
		BuildCommand:    in.BuildCommand,
		OutputDirectory: in.OutputDirectory,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.CreateProject(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("project created",
		zap.String("project_id", project.ID),
		zap.String("customer_id", customerID),
	)

	return project, nil
}

func (s *Service) List(ctx context.Context, customerID string) ([]*core.Project, error) {
	return s.repo.ListProjectsByCustomer(ctx, customerID)
}

func (s *Service) Get(ctx context.Context, id, customerID string) (*core.Project, error) {
	project, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if project.CustomerID != customerID {
		return nil, core.ErrForbidden
	}
	return project, nil
}

// Update replaces the provided fields. The owning customer can never change;
// ProjectUpdate has no customer_id field so the caller cannot even express
// the attempt.
func (s *Service) Update(ctx context.Context, id, customerID string, upd core.ProjectUpdate) (*core.Project, error) {
	if _, err := s.Get(ctx, id, customerID); err != nil {
		return nil, err
	}

	if upd.Status != nil && !core.ValidProjectStatus(*upd.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", core.ErrValidation, *upd.Status)
	}
	if upd.Name != nil && *upd.Name == "" {
		return nil, fmt.Errorf("%w: project name cannot be empty", core.ErrValidation)
	}

	if err := s.repo.UpdateProject(ctx, id, upd); err != nil {
		return nil, err
	}

	return s.repo.GetProject(ctx, id)
}

// Delete removes the project. Deployment history is deliberately kept as an
// audit trail; nothing cascades.
func (s *Service) Delete(ctx context.Context, id, customerID string) error {
	if _, err := s.Get(ctx, id, customerID); err != nil {
		return err
	}

	if err := s.repo.DeleteProject(ctx, id); err != nil {
		return err
	}

	s.logger.Info("project deleted",
		zap.String("project_id", id),
		zap.String("customer_id", customerID),
	)
	return nil
}
