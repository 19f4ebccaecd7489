package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/leozw/launchpad/internal/core"
)

// BeginDeployment flips the project to building and inserts the deployment
// row in one transaction. The conditional UPDATE is the per-project
// serialization point: only active and error projects accept a new
// deployment, so concurrent Deploy calls resolve to exactly one winner.
func (db *DB) BeginDeployment(ctx context.Context, d *core.Deployment, startedAt time.Time) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	flip := `
        UPDATE projects SET
            status = $1,
            last_deployment = $2,
            updated_at = $2
        WHERE id = $3 AND status IN ($4, $5)`

	res, err := tx.ExecContext(ctx, flip,
		core.ProjectBuilding, startedAt, d.ProjectID,
		core.ProjectActive, core.ProjectError,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Distinguish a missing project from one that is busy or paused.
		var status core.ProjectStatus
		err := tx.GetContext(ctx, &status, `SELECT status FROM projects WHERE id = $1`, d.ProjectID)
		if errors.Is(err, sql.ErrNoRows) {
			return core.ErrNotFound
		}
		if err != nil {
			return err
		}
		return fmt.Errorf("%w: project is %s", core.ErrConflict, status)
	}

	insert := `
        INSERT INTO deployments (
            id, project_id, status, created_at, duration, url,
            commit_hash, commit_message, logs
        ) VALUES (
            :id, :project_id, :status, :created_at, :duration, :url,
            :commit_hash, :commit_message, :logs
        )`

	if _, err := tx.NamedExecContext(ctx, insert, d); err != nil {
		return err
	}

	return tx.Commit()
}

// FinishDeployment applies the terminal update and reconciles the parent
// project status in the same transaction. The update only lands while the
// deployment is still building: once a terminal status is written, by the
// worker or by the sweep, every later completion attempt loses with
// core.ErrConflict and the project is left alone. A stale worker therefore
// cannot resurrect a swept deployment or flip a project out from under a
// newer build.
func (db *DB) FinishDeployment(ctx context.Context, deploymentID string, upd core.DeploymentUpdate, projectStatus core.ProjectStatus) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var projectID string
	err = tx.GetContext(ctx, &projectID, `SELECT project_id FROM deployments WHERE id = $1`, deploymentID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrNotFound
	}
	if err != nil {
		return err
	}

	query, args, ok := buildDeploymentUpdate(deploymentID, upd)
	if !ok {
		return fmt.Errorf("%w: no deployment fields to update", core.ErrValidation)
	}
	args = append(args, core.DeploymentBuilding)
	query += fmt.Sprintf(" AND status = $%d", len(args))

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: deployment already terminal", core.ErrConflict)
	}

	// The project may have been deleted while the build ran; its deployment
	// record still gets the terminal status.
	_, err = tx.ExecContext(ctx,
		`UPDATE projects SET status = $1, updated_at = $2 WHERE id = $3`,
		projectStatus, time.Now().UTC(), projectID,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (db *DB) GetDeployment(ctx context.Context, id string) (*core.Deployment, error) {
	var d core.Deployment
	query := `SELECT * FROM deployments WHERE id = $1`
	err := db.GetContext(ctx, &d, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (db *DB) ListDeploymentsByProject(ctx context.Context, projectID string, limit int) ([]*core.Deployment, error) {
	deployments := []*core.Deployment{}
	query := `
        SELECT * FROM deployments
        WHERE project_id = $1
        ORDER BY created_at DESC
        LIMIT $2`

	err := db.SelectContext(ctx, &deployments, query, projectID, limit)
	return deployments, err
}

func (db *DB) UpdateDeployment(ctx context.Context, id string, upd core.DeploymentUpdate) error {
	query, args, ok := buildDeploymentUpdate(id, upd)
	if !ok {
		return nil
	}
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (db *DB) ListBuildingBefore(ctx context.Context, cutoff time.Time) ([]*core.Deployment, error) {
	deployments := []*core.Deployment{}
	query := `
        SELECT * FROM deployments
        WHERE status = $1 AND created_at < $2
        ORDER BY created_at`

	err := db.SelectContext(ctx, &deployments, query, core.DeploymentBuilding, cutoff)
	return deployments, err
}

// buildDeploymentUpdate returns ok=false when the update carries no fields,
// which would otherwise render an UPDATE with an empty SET list.
func buildDeploymentUpdate(id string, upd core.DeploymentUpdate) (string, []interface{}, bool) {
	sets := []string{}
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if upd.Status != nil {
		sets = append(sets, "status = "+arg(*upd.Status))
	}
	if upd.Duration != nil {
		sets = append(sets, "duration = "+arg(*upd.Duration))
	}
	if upd.URL != nil {
		sets = append(sets, "url = "+arg(*upd.URL))
	}
	if upd.Logs != nil {
		sets = append(sets, "logs = "+arg(*upd.Logs))
	}
	if len(sets) == 0 {
		return "", nil, false
	}

	query := fmt.Sprintf(`UPDATE deployments SET %s WHERE id = %s`,
		strings.Join(sets, ", "), arg(id))
	return query, args, true
}
