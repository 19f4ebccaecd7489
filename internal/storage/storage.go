package storage

import (
	"context"
	"time"

	"github.com/leozw/launchpad/internal/core"
)

// Repository interfaces decouple services from Postgres so tests can swap
// in fakes. The postgres package provides the real implementations.

type CustomerRepository interface {
	CreateCustomer(ctx context.Context, c *core.Customer) error
	GetCustomer(ctx context.Context, id string) (*core.Customer, error)
	GetCustomerByEmail(ctx context.Context, email string) (*core.Customer, error)
	GetCustomerByGithubID(ctx context.Context, githubID string) (*core.Customer, error)
	UpdateCustomer(ctx context.Context, id string, upd core.CustomerUpdate) (*core.Customer, error)
}

type ProjectRepository interface {
	CreateProject(ctx context.Context, p *core.Project) error
	GetProject(ctx context.Context, id string) (*core.Project, error)
	ListProjectsByCustomer(ctx context.Context, customerID string) ([]*core.Project, error)
	UpdateProject(ctx context.Context, id string, upd core.ProjectUpdate) error
	DeleteProject(ctx context.Context, id string) error
}

type DeploymentRepository interface {
	// BeginDeployment atomically flips the parent project to building and
	// inserts the deployment row. It fails with core.ErrConflict if the
	// project is not in a deployable state (active or error), so overlapping
	// Deploy calls cannot both win.
	BeginDeployment(ctx context.Context, d *core.Deployment, startedAt time.Time) error

	// FinishDeployment atomically applies the terminal deployment update and
	// sets the parent project status in the same transaction. It only
	// succeeds while the deployment is still building; once terminal, later
	// completion attempts fail with core.ErrConflict and leave the project
	// untouched.
	FinishDeployment(ctx context.Context, deploymentID string, upd core.DeploymentUpdate, projectStatus core.ProjectStatus) error

	GetDeployment(ctx context.Context, id string) (*core.Deployment, error)
	ListDeploymentsByProject(ctx context.Context, projectID string, limit int) ([]*core.Deployment, error)
	UpdateDeployment(ctx context.Context, id string, upd core.DeploymentUpdate) error

	// ListBuildingBefore returns deployments still building that were
	// created before the cutoff. Used by the reconciliation sweep.
	ListBuildingBefore(ctx context.Context, cutoff time.Time) ([]*core.Deployment, error)
}

type DispatchRepository interface {
	UpsertDispatchLimits(ctx context.Context, l *core.DispatchLimits) error
	GetDispatchLimits(ctx context.Context, scriptID string) (*core.DispatchLimits, error)
	UpsertOutboundWorker(ctx context.Context, w *core.OutboundWorker) error
	GetOutboundWorker(ctx context.Context, scriptID string) (*core.OutboundWorker, error)
}
