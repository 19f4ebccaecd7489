package deploy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/leozw/launchpad/internal/core"
	"github.com/leozw/launchpad/internal/queue"
)

func TestDeployFlipsProjectToBuilding(t *testing.T) {
	store := newFakeStore()
	q := &fakeQueue{}
	svc := newTestService(store, q, nil)

	project := store.addProject("c1", "demo", core.ProjectActive)

	d, err := svc.Deploy(context.Background(), project.ID, "c1", "abc123", "initial commit")
	if err != nil {
		t.Fatalf("Deploy returned error: %v", err)
	}

	if d.Status != core.DeploymentBuilding {
		t.Fatalf("expected deployment status building, got %s", d.Status)
	}
	if d.CommitHash == nil || *d.CommitHash != "abc123" {
		t.Fatalf("expected commit hash to be recorded, got %v", d.CommitHash)
	}

	got := store.projects[project.ID]
	if got.Status != core.ProjectBuilding {
		t.Fatalf("expected project status building, got %s", got.Status)
	}
	if got.LastDeployment == nil {
		t.Fatal("expected last_deployment to be set")
	}

	if len(q.jobs) != 1 {
		t.Fatalf("expected one queued job, got %d", len(q.jobs))
	}
	if q.jobs[0].DeploymentID != d.ID {
		t.Fatalf("queued job references deployment %s, want %s", q.jobs[0].DeploymentID, d.ID)
	}
}

func TestDeployUnknownProject(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeQueue{}, nil)

	_, err := svc.Deploy(context.Background(), "missing", "c1", "", "")
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeployRejectsForeignProject(t *testing.T) {
	store := newFakeStore()
	q := &fakeQueue{}
	svc := newTestService(store, q, nil)

	project := store.addProject("c1", "demo", core.ProjectActive)

	_, err := svc.Deploy(context.Background(), project.ID, "c2", "", "")
	if !errors.Is(err, core.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if len(q.jobs) != 0 {
		t.Fatalf("expected no queued jobs, got %d", len(q.jobs))
	}
	if store.projects[project.ID].Status != core.ProjectActive {
		t.Fatal("expected project status to be untouched")
	}
}

func TestDeployRejectsInFlightBuild(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeQueue{}, nil)

	project := store.addProject("c1", "demo", core.ProjectActive)

	if _, err := svc.Deploy(context.Background(), project.ID, "c1", "", ""); err != nil {
		t.Fatalf("first Deploy returned error: %v", err)
	}
	_, err := svc.Deploy(context.Background(), project.ID, "c1", "", "")
	if !errors.Is(err, core.ErrConflict) {
		t.Fatalf("expected ErrConflict for overlapping deploy, got %v", err)
	}
}

func TestDeployRejectsPausedProject(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeQueue{}, nil)

	project := store.addProject("c1", "demo", core.ProjectPaused)

	_, err := svc.Deploy(context.Background(), project.ID, "c1", "", "")
	if !errors.Is(err, core.ErrConflict) {
		t.Fatalf("expected ErrConflict for paused project, got %v", err)
	}
}

func TestDeployRetriesAfterError(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeQueue{}, nil)

	project := store.addProject("c1", "demo", core.ProjectError)

	if _, err := svc.Deploy(context.Background(), project.ID, "c1", "", ""); err != nil {
		t.Fatalf("Deploy on errored project returned error: %v", err)
	}
	if store.projects[project.ID].Status != core.ProjectBuilding {
		t.Fatalf("expected project status building, got %s", store.projects[project.ID].Status)
	}
}

func TestDeployQueueFailureFailsDeployment(t *testing.T) {
	store := newFakeStore()
	q := &fakeQueue{pushErr: errors.New("redis unavailable")}
	svc := newTestService(store, q, nil)

	project := store.addProject("c1", "demo", core.ProjectActive)

	_, err := svc.Deploy(context.Background(), project.ID, "c1", "", "")
	if err == nil {
		t.Fatal("expected Deploy to surface the queue error")
	}

	if store.projects[project.ID].Status != core.ProjectError {
		t.Fatalf("expected project status error, got %s", store.projects[project.ID].Status)
	}
	for _, d := range store.deployments {
		if d.Status != core.DeploymentError {
			t.Fatalf("expected deployment status error, got %s", d.Status)
		}
	}
}

func TestExecuteSuccessReconcilesBoth(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeQueue{}, &stubBuilder{})

	project := store.addProject("c1", "demo", core.ProjectActive)
	d, err := svc.Deploy(context.Background(), project.ID, "c1", "", "")
	if err != nil {
		t.Fatalf("Deploy returned error: %v", err)
	}

	if err := svc.Execute(context.Background(), d.ID); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	got := store.deployments[d.ID]
	if got.Status != core.DeploymentSuccess {
		t.Fatalf("expected deployment success, got %s", got.Status)
	}
	if got.URL == nil || *got.URL != "https://demo.paas.dev" {
		t.Fatalf("expected url https://demo.paas.dev, got %v", got.URL)
	}
	if got.Duration == nil {
		t.Fatal("expected duration to be recorded")
	}
	if store.projects[project.ID].Status != core.ProjectActive {
		t.Fatalf("expected project active after success, got %s", store.projects[project.ID].Status)
	}
}

func TestExecuteFailureReconcilesBoth(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeQueue{}, &stubBuilder{err: errors.New("npm install exited with code 1")})

	project := store.addProject("c1", "demo", core.ProjectActive)
	d, err := svc.Deploy(context.Background(), project.ID, "c1", "", "")
	if err != nil {
		t.Fatalf("Deploy returned error: %v", err)
	}

	if err := svc.Execute(context.Background(), d.ID); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	got := store.deployments[d.ID]
	if got.Status != core.DeploymentError {
		t.Fatalf("expected deployment error, got %s", got.Status)
	}
	if got.Logs == nil || !strings.Contains(*got.Logs, "npm install") {
		t.Fatalf("expected diagnostic logs, got %v", got.Logs)
	}
	if store.projects[project.ID].Status != core.ProjectError {
		t.Fatalf("expected project error after failure, got %s", store.projects[project.ID].Status)
	}
}

func TestExecuteSkipsTerminalDeployment(t *testing.T) {
	store := newFakeStore()
	builder := &stubBuilder{}
	svc := newTestService(store, &fakeQueue{}, builder)

	project := store.addProject("c1", "demo", core.ProjectActive)
	d, _ := svc.Deploy(context.Background(), project.ID, "c1", "", "")

	// The sweep got there first.
	status := core.DeploymentError
	store.UpdateDeployment(context.Background(), d.ID, core.DeploymentUpdate{Status: &status})

	if err := svc.Execute(context.Background(), d.ID); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if builder.calls != 0 {
		t.Fatalf("expected no build for terminal deployment, got %d calls", builder.calls)
	}
}

func TestExecuteProjectDeletedMidBuild(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeQueue{}, &stubBuilder{})

	project := store.addProject("c1", "demo", core.ProjectActive)
	d, _ := svc.Deploy(context.Background(), project.ID, "c1", "", "")

	if err := store.DeleteProject(context.Background(), project.ID); err != nil {
		t.Fatalf("DeleteProject returned error: %v", err)
	}

	if err := svc.Execute(context.Background(), d.ID); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if store.deployments[d.ID].Status != core.DeploymentError {
		t.Fatalf("expected deployment error, got %s", store.deployments[d.ID].Status)
	}
}

func TestStaleBuildCannotOverwriteSweptDeployment(t *testing.T) {
	store := newFakeStore()
	builder := &gateBuilder{entered: make(chan struct{}), release: make(chan struct{})}
	svc := newTestService(store, &fakeQueue{}, builder)

	project := store.addProject("c1", "demo", core.ProjectActive)
	d1, err := svc.Deploy(context.Background(), project.ID, "c1", "", "")
	if err != nil {
		t.Fatalf("Deploy returned error: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- svc.Execute(context.Background(), d1.ID)
	}()
	<-builder.entered

	// Reconciliation forces the overdue deployment to error while the build
	// is still running.
	status := core.DeploymentError
	logs := "forced to error"
	if err := store.FinishDeployment(context.Background(), d1.ID, core.DeploymentUpdate{Status: &status, Logs: &logs}, core.ProjectError); err != nil {
		t.Fatalf("FinishDeployment returned error: %v", err)
	}

	// The owner retries; the project is in error so a new build starts.
	d2, err := svc.Deploy(context.Background(), project.ID, "c1", "", "")
	if err != nil {
		t.Fatalf("retry Deploy returned error: %v", err)
	}

	close(builder.release)
	if err := <-done; err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	got, _ := store.GetDeployment(context.Background(), d1.ID)
	if got.Status != core.DeploymentError {
		t.Fatalf("swept deployment overwritten: got %s, want error", got.Status)
	}
	got, _ = store.GetDeployment(context.Background(), d2.ID)
	if got.Status != core.DeploymentBuilding {
		t.Fatalf("in-flight deployment disturbed: got %s", got.Status)
	}
	if store.projects[project.ID].Status != core.ProjectBuilding {
		t.Fatalf("project flipped under the in-flight build: got %s", store.projects[project.ID].Status)
	}
}

func TestListByProjectChecksOwnership(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeQueue{}, nil)

	project := store.addProject("c1", "demo", core.ProjectActive)

	if _, err := svc.ListByProject(context.Background(), project.ID, "c2", 10); !errors.Is(err, core.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestGetRejectsDeploymentFromOtherProject(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeQueue{}, nil)

	p1 := store.addProject("c1", "demo", core.ProjectActive)
	p2 := store.addProject("c1", "other", core.ProjectActive)
	d, _ := svc.Deploy(context.Background(), p1.ID, "c1", "", "")

	if _, err := svc.Get(context.Background(), p2.ID, d.ID, "c1"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for cross-project lookup, got %v", err)
	}
}

// --- fakes ---

type stubBuilder struct {
	calls int
	err   error
}

// gateBuilder signals when a build starts and blocks until released, so
// tests can interleave other writes with a running build.
type gateBuilder struct {
	entered chan struct{}
	release chan struct{}
}

func (b *gateBuilder) Build(ctx context.Context, p *core.Project, d *core.Deployment) error {
	b.entered <- struct{}{}
	<-b.release
	return nil
}

func (b *stubBuilder) Build(ctx context.Context, p *core.Project, d *core.Deployment) error {
	b.calls++
	return b.err
}

type fakeQueue struct {
	mu      sync.Mutex
	jobs    []*queue.Job
	pushErr error
}

func (q *fakeQueue) Push(ctx context.Context, job *queue.Job) error {
	if q.pushErr != nil {
		return q.pushErr
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return nil
}

// fakeStore implements storage.ProjectRepository and
// storage.DeploymentRepository in memory, mirroring how postgres.DB backs
// both interfaces.
type fakeStore struct {
	mu          sync.Mutex
	nextID      int
	projects    map[string]*core.Project
	deployments map[string]*core.Deployment
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		projects:    make(map[string]*core.Project),
		deployments: make(map[string]*core.Deployment),
	}
}

func (s *fakeStore) addProject(customerID, name string, status core.ProjectStatus) *core.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	p := &core.Project{
		ID:         fmt.Sprintf("p-%d", s.nextID),
		Name:       name,
		CustomerID: customerID,
		Status:     status,
		Domains:    core.StringSlice{},
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	s.projects[p.ID] = p
	return p
}

func (s *fakeStore) CreateProject(ctx context.Context, p *core.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[p.ID] = p
	return nil
}

func (s *fakeStore) GetProject(ctx context.Context, id string) (*core.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *fakeStore) ListProjectsByCustomer(ctx context.Context, customerID string) ([]*core.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*core.Project
	for _, p := range s.projects {
		if p.CustomerID == customerID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeStore) UpdateProject(ctx context.Context, id string, upd core.ProjectUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return core.ErrNotFound
	}
	if upd.Status != nil {
		p.Status = *upd.Status
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Domains != nil {
		p.Domains = *upd.Domains
	}
	return nil
}

func (s *fakeStore) DeleteProject(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.projects, id)
	return nil
}

func (s *fakeStore) BeginDeployment(ctx context.Context, d *core.Deployment, startedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[d.ProjectID]
	if !ok {
		return core.ErrNotFound
	}
	if p.Status != core.ProjectActive && p.Status != core.ProjectError {
		return fmt.Errorf("%w: project is %s", core.ErrConflict, p.Status)
	}
	p.Status = core.ProjectBuilding
	at := startedAt
	p.LastDeployment = &at
	cp := *d
	s.deployments[d.ID] = &cp
	return nil
}

func (s *fakeStore) FinishDeployment(ctx context.Context, deploymentID string, upd core.DeploymentUpdate, projectStatus core.ProjectStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.deployments[deploymentID]
	if !ok {
		return core.ErrNotFound
	}
	if d.Status.Terminal() {
		return fmt.Errorf("%w: deployment already terminal", core.ErrConflict)
	}
	applyDeploymentUpdate(d, upd)
	if p, ok := s.projects[d.ProjectID]; ok {
		p.Status = projectStatus
	}
	return nil
}

func (s *fakeStore) GetDeployment(ctx context.Context, id string) (*core.Deployment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.deployments[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *fakeStore) ListDeploymentsByProject(ctx context.Context, projectID string, limit int) ([]*core.Deployment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*core.Deployment
	for _, d := range s.deployments {
		if d.ProjectID == projectID && len(out) < limit {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeStore) UpdateDeployment(ctx context.Context, id string, upd core.DeploymentUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.deployments[id]
	if !ok {
		return core.ErrNotFound
	}
	applyDeploymentUpdate(d, upd)
	return nil
}

func (s *fakeStore) ListBuildingBefore(ctx context.Context, cutoff time.Time) ([]*core.Deployment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*core.Deployment
	for _, d := range s.deployments {
		if d.Status == core.DeploymentBuilding && d.CreatedAt.Before(cutoff) {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func applyDeploymentUpdate(d *core.Deployment, upd core.DeploymentUpdate) {
	if upd.Status != nil {
		d.Status = *upd.Status
	}
	if upd.Duration != nil {
		d.Duration = upd.Duration
	}
	if upd.URL != nil {
		d.URL = upd.URL
	}
	if upd.Logs != nil {
		d.Logs = upd.Logs
	}
}

func newTestService(store *fakeStore, q *fakeQueue, b Builder) *Service {
	return NewService(store, store, q, b, nil, zap.NewNop(), "paas.dev")
}
