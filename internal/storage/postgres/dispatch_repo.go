package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/leozw/launchpad/internal/core"
)

func (db *DB) UpsertDispatchLimits(ctx context.Context, l *core.DispatchLimits) error {
	query := `
        INSERT INTO dispatch_limits (script_id, cpu_ms, memory)
        VALUES ($1, $2, $3)
        ON CONFLICT (script_id) DO UPDATE SET
            cpu_ms = $2,
            memory = $3`

	_, err := db.ExecContext(ctx, query, l.ScriptID, l.CPUMs, l.Memory)
	return err
}

func (db *DB) GetDispatchLimits(ctx context.Context, scriptID string) (*core.DispatchLimits, error) {
	var l core.DispatchLimits
	query := `SELECT * FROM dispatch_limits WHERE script_id = $1`
	err := db.GetContext(ctx, &l, query, scriptID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (db *DB) UpsertOutboundWorker(ctx context.Context, w *core.OutboundWorker) error {
	query := `
        INSERT INTO outbound_workers (script_id, outbound_script_id)
        VALUES ($1, $2)
        ON CONFLICT (script_id) DO UPDATE SET
            outbound_script_id = $2`

	_, err := db.ExecContext(ctx, query, w.ScriptID, w.OutboundScriptID)
	return err
}

func (db *DB) GetOutboundWorker(ctx context.Context, scriptID string) (*core.OutboundWorker, error) {
	var w core.OutboundWorker
	query := `SELECT * FROM outbound_workers WHERE script_id = $1`
	err := db.GetContext(ctx, &w, query, scriptID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}
