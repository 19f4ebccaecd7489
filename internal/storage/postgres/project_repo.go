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

func (db *DB) CreateProject(ctx context.Context, p *core.Project) error {
	query := `
        INSERT INTO projects (
            id, name, description, customer_id, status, last_deployment,
            domains, github_repo, build_command, output_directory,
            created_at, updated_at
        ) VALUES (
            :id, :name, :description, :customer_id, :status, :last_deployment,
            :domains, :github_repo, :build_command, :output_directory,
            :created_at, :updated_at
        )`

	_, err := db.NamedExecContext(ctx, query, p)
	return translateError(err)
}

func (db *DB) GetProject(ctx context.Context, id string) (*core.Project, error) {
	var p core.Project
	query := `SELECT * FROM projects WHERE id = $1`
	err := db.GetContext(ctx, &p, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (db *DB) ListProjectsByCustomer(ctx context.Context, customerID string) ([]*core.Project, error) {
	projects := []*core.Project{}
	query := `
        SELECT * FROM projects
        WHERE customer_id = $1
        ORDER BY created_at DESC`

	err := db.SelectContext(ctx, &projects, query, customerID)
	return projects, err
}

// UpdateProject replaces the provided fields. customer_id is not part of
// ProjectUpdate and therefore can never change here.
func (db *DB) UpdateProject(ctx context.Context, id string, upd core.ProjectUpdate) error {
	sets := []string{}
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if upd.Name != nil {
		sets = append(sets, "name = "+arg(*upd.Name))
	}
	if upd.Description != nil {
		sets = append(sets, "description = "+arg(*upd.Description))
	}
	if upd.Status != nil {
		sets = append(sets, "status = "+arg(*upd.Status))
	}
	if upd.LastDeployment != nil {
		sets = append(sets, "last_deployment = "+arg(*upd.LastDeployment))
	}
	if upd.Domains != nil {
		sets = append(sets, "domains = "+arg(*upd.Domains))
	}
	if upd.GithubRepo != nil {
		sets = append(sets, "github_repo = "+arg(*upd.GithubRepo))
	}
	if upd.BuildCommand != nil {
		sets = append(sets, "build_command = "+arg(*upd.BuildCommand))
	}
	if upd.OutputDirectory != nil {
		sets = append(sets, "output_directory = "+arg(*upd.OutputDirectory))
	}
	sets = append(sets, "updated_at = "+arg(time.Now().UTC()))

	query := fmt.Sprintf(`UPDATE projects SET %s WHERE id = %s`,
		strings.Join(sets, ", "), arg(id))

	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return translateError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// DeleteProject removes the project row only. Deployment history is kept.
func (db *DB) DeleteProject(ctx context.Context, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}
