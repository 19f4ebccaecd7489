package customers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leozw/launchpad/internal/core"
	"github.com/leozw/launchpad/internal/storage"
)

// Service owns customer records. Identity establishment (OAuth, credential
// login) happens outside this core; callers arrive here with a validated
// subject.
type Service struct {
	repo   storage.CustomerRepository
	logger *zap.Logger
}

func NewService(repo storage.CustomerRepository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

type RegisterInput struct {
	Name     string
	Email    string
	PlanType core.PlanType
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*core.Customer, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", core.ErrValidation)
	}
	if in.Email == "" {
		return nil, fmt.Errorf("%w: email is required", core.ErrValidation)
	}
	if in.PlanType == "" {
		in.PlanType = core.PlanStarter
	}

	now := time.Now().UTC()
	customer := &core.Customer{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Email:     in.Email,
		PlanType:  in.PlanType,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreateCustomer(ctx, customer); err != nil {
		return nil, err
	}

	s.logger.Info("customer registered",
		zap.String("customer_id", customer.ID),
		zap.String("plan_type", string(customer.PlanType)),
	)

	return customer, nil
}

func (s *Service) Get(ctx context.Context, id string) (*core.Customer, error) {
	return s.repo.GetCustomer(ctx, id)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*core.Customer, error) {
	return s.repo.GetCustomerByEmail(ctx, email)
}

func (s *Service) GetByGithubID(ctx context.Context, githubID string) (*core.Customer, error) {
	return s.repo.GetCustomerByGithubID(ctx, githubID)
}

func (s *Service) Update(ctx context.Context, id string, upd core.CustomerUpdate) (*core.Customer, error) {
	return s.repo.UpdateCustomer(ctx, id, upd)
}
