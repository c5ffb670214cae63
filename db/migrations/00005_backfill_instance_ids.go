package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/LLAppelOffre/llao-application/internal/dashboard"
	"github.com/LLAppelOffre/llao-application/models"
	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upBackfillInstanceIDs, downBackfillInstanceIDs)
}

// upBackfillInstanceIDs один раз проставляет instance_id виджетам старых дашбордов.
// Дашборды с нечитаемым graphiques не трогаем.
func upBackfillInstanceIDs(ctx context.Context, tx *sql.Tx) error {
	_, err := backfillInstanceIDs(ctx, tx)
	return err
}

func downBackfillInstanceIDs(ctx context.Context, tx *sql.Tx) error {
	return nil
}

func backfillInstanceIDs(ctx context.Context, tx *sql.Tx) (int, error) {
	rows, err := tx.QueryContext(ctx, `
        SELECT id, graphiques FROM dashboards
        WHERE jsonb_typeof(graphiques) = 'array'
          AND EXISTS (
              SELECT 1 FROM jsonb_array_elements(graphiques) AS g
              WHERE COALESCE(g->>'instance_id', '') = ''
          )
        FOR UPDATE`)
	if err != nil {
		return 0, fmt.Errorf("select legacy dashboards: %w", err)
	}

	var pending []models.Dashboard
	for rows.Next() {
		var d models.Dashboard
		var raw []byte
		if err := rows.Scan(&d.ID, &raw); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan dashboard: %w", err)
		}
		if err := d.Graphiques.Scan(raw); err != nil {
			continue
		}
		if dashboard.EnsureInstanceIDs(&d) > 0 {
			pending = append(pending, d)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, err
	}
	rows.Close()

	for _, d := range pending {
		if _, err := tx.ExecContext(ctx, `UPDATE dashboards SET graphiques=$1 WHERE id=$2`, d.Graphiques, d.ID); err != nil {
			return 0, fmt.Errorf("update dashboard %d: %w", d.ID, err)
		}
	}
	return len(pending), nil
}
