package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/LLAppelOffre/llao-application/models"
)

const dashboardColumns = `id, user_id, nom, graphiques, filtres_globaux, date_creation, date_maj`

// dashboardRow сырая строка: JSONB разбирается в decode.
type dashboardRow struct {
	ID             int       `db:"id"`
	UserID         string    `db:"user_id"`
	Nom            string    `db:"nom"`
	Graphiques     []byte    `db:"graphiques"`
	FiltresGlobaux []byte    `db:"filtres_globaux"`
	DateCreation   time.Time `db:"date_creation"`
	DateMaj        time.Time `db:"date_maj"`
}

func (r *dashboardRow) decode() (*models.Dashboard, error) {
	d := &models.Dashboard{
		ID:           r.ID,
		UserID:       r.UserID,
		Nom:          r.Nom,
		DateCreation: r.DateCreation,
		DateMaj:      r.DateMaj,
	}
	if err := d.Graphiques.Scan(r.Graphiques); err != nil {
		return nil, fmt.Errorf("dashboard %d graphiques: %w", r.ID, err)
	}
	if err := d.FiltresGlobaux.Scan(r.FiltresGlobaux); err != nil {
		return nil, fmt.Errorf("dashboard %d filtres_globaux: %w", r.ID, err)
	}
	return d, nil
}

// ListDashboards возвращает дашборды пользователя.
// Документы, которые не удалось разобрать, пропускаются с записью в лог.
func (s *Storage) ListDashboards(ctx context.Context, username string) ([]models.Dashboard, error) {
	rows := []dashboardRow{}
	query := `SELECT ` + dashboardColumns + ` FROM dashboards WHERE user_id=$1 ORDER BY date_creation ASC, id ASC`
	if err := s.db.SelectContext(ctx, &rows, query, username); err != nil {
		return nil, fmt.Errorf("list dashboards: %w", err)
	}

	dashboards := make([]models.Dashboard, 0, len(rows))
	for i := range rows {
		d, err := rows[i].decode()
		if err != nil {
			s.logger.WarnContext(ctx, "skipping malformed dashboard",
				slog.Int("dashboard_id", rows[i].ID),
				slog.String("error", err.Error()))
			continue
		}
		dashboards = append(dashboards, *d)
	}
	return dashboards, nil
}

// GetDashboard ищет дашборд владельца. Чужой дашборд неотличим от отсутствующего.
func (s *Storage) GetDashboard(ctx context.Context, id int, username string) (*models.Dashboard, error) {
	var row dashboardRow
	query := `SELECT ` + dashboardColumns + ` FROM dashboards WHERE id=$1 AND user_id=$2`
	if err := s.db.GetContext(ctx, &row, query, id, username); err != nil {
		return nil, notFound(err)
	}
	return row.decode()
}

func (s *Storage) CreateDashboard(ctx context.Context, d *models.Dashboard) error {
	if d.Graphiques == nil {
		d.Graphiques = models.Charts{}
	}
	if d.FiltresGlobaux == nil {
		d.FiltresGlobaux = models.Filters{}
	}
	query := `
        INSERT INTO dashboards (user_id, nom, graphiques, filtres_globaux)
        VALUES ($1, $2, $3, $4)
        RETURNING id, date_creation, date_maj`
	err := s.db.QueryRowContext(ctx, query, d.UserID, d.Nom, d.Graphiques, d.FiltresGlobaux).
		Scan(&d.ID, &d.DateCreation, &d.DateMaj)
	if err != nil {
		return fmt.Errorf("create dashboard: %w", err)
	}
	return nil
}

// UpdateDashboard сохраняет nom и graphiques. filtres_globaux здесь не меняются.
func (s *Storage) UpdateDashboard(ctx context.Context, d *models.Dashboard) error {
	if d.Graphiques == nil {
		d.Graphiques = models.Charts{}
	}
	query := `
        UPDATE dashboards
        SET nom=$1, graphiques=$2, date_maj=NOW()
        WHERE id=$3 AND user_id=$4
        RETURNING date_maj`
	err := s.db.QueryRowContext(ctx, query, d.Nom, d.Graphiques, d.ID, d.UserID).Scan(&d.DateMaj)
	if err != nil {
		return notFound(err)
	}
	return nil
}

// SaveGlobalFilters заменяет filtres_globaux целиком
func (s *Storage) SaveGlobalFilters(ctx context.Context, d *models.Dashboard) error {
	if d.FiltresGlobaux == nil {
		d.FiltresGlobaux = models.Filters{}
	}
	query := `
        UPDATE dashboards
        SET filtres_globaux=$1, date_maj=NOW()
        WHERE id=$2 AND user_id=$3
        RETURNING date_maj`
	err := s.db.QueryRowContext(ctx, query, d.FiltresGlobaux, d.ID, d.UserID).Scan(&d.DateMaj)
	if err != nil {
		return notFound(err)
	}
	return nil
}

func (s *Storage) DeleteDashboard(ctx context.Context, id int, username string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM dashboards WHERE id=$1 AND user_id=$2`, id, username)
	if err != nil {
		return fmt.Errorf("delete dashboard: %w", err)
	}
	return affectedOrNotFound(res)
}
