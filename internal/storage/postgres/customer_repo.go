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

func (db *DB) CreateCustomer(ctx context.Context, c *core.Customer) error {
	query := `
        INSERT INTO customers (
            id, name, email, plan_type, avatar_url, github_id,
            created_at, updated_at
        ) VALUES (
            :id, :name, :email, :plan_type, :avatar_url, :github_id,
            :created_at, :updated_at
        )`

	_, err := db.NamedExecContext(ctx, query, c)
	return translateError(err)
}

func (db *DB) GetCustomer(ctx context.Context, id string) (*core.Customer, error) {
	var c core.Customer
	query := `SELECT * FROM customers WHERE id = $1`
	err := db.GetContext(ctx, &c, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (db *DB) GetCustomerByEmail(ctx context.Context, email string) (*core.Customer, error) {
	var c core.Customer
	query := `SELECT * FROM customers WHERE email = $1`
	err := db.GetContext(ctx, &c, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (db *DB) GetCustomerByGithubID(ctx context.Context, githubID string) (*core.Customer, error) {
	var c core.Customer
	query := `SELECT * FROM customers WHERE github_id = $1`
	err := db.GetContext(ctx, &c, query, githubID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (db *DB) UpdateCustomer(ctx context.Context, id string, upd core.CustomerUpdate) (*core.Customer, error) {
	sets := []string{}
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if upd.Name != nil {
		sets = append(sets, "name = "+arg(*upd.Name))
	}
	if upd.Email != nil {
		sets = append(sets, "email = "+arg(*upd.Email))
	}
	if upd.PlanType != nil {
		sets = append(sets, "plan_type = "+arg(*upd.PlanType))
	}
	if upd.AvatarURL != nil {
		sets = append(sets, "avatar_url = "+arg(*upd.AvatarURL))
	}
	if upd.GithubID != nil {
		sets = append(sets, "github_id = "+arg(*upd.GithubID))
	}
	sets = append(sets, "updated_at = "+arg(time.Now().UTC()))

	query := fmt.Sprintf(`UPDATE customers SET %s WHERE id = %s`,
		strings.Join(sets, ", "), arg(id))

	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, translateError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, core.ErrNotFound
	}

	return db.GetCustomer(ctx, id)
}
