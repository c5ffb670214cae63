package db

import (
	"context"
	"fmt"

	"github.com/LLAppelOffre/llao-application/models"
)

// AddFavorite добавляет тендер в избранное.
// Возвращает false, если он уже там был. ErrNotFound, если тендера нет.
func (s *Storage) AddFavorite(ctx context.Context, username string, tenderID int) (bool, error) {
	query := `
        INSERT INTO ao_favorites (user_id, ao_id)
        SELECT $1, id FROM appels_offres WHERE id = $2
        ON CONFLICT (user_id, ao_id) DO NOTHING`
	res, err := s.db.ExecContext(ctx, query, username, tenderID)
	if err != nil {
		return false, fmt.Errorf("add favorite: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 1 {
		return true, nil
	}

	var exists bool
	if err := s.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM appels_offres WHERE id=$1)`, tenderID); err != nil {
		return false, fmt.Errorf("check tender: %w", err)
	}
	if !exists {
		return false, ErrNotFound
	}
	return false, nil
}

// RemoveFavorite идемпотентно убирает тендер из избранного
func (s *Storage) RemoveFavorite(ctx context.Context, username string, tenderID int) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM ao_favorites WHERE user_id=$1 AND ao_id=$2`, username, tenderID)
	if err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	return nil
}

func (s *Storage) ListFavoriteTenders(ctx context.Context, username string) ([]models.Tender, error) {
	query := `
        SELECT ` + tenderColumns + `
        FROM appels_offres
        WHERE id IN (SELECT ao_id FROM ao_favorites WHERE user_id = $1)
        ORDER BY date_emission DESC, id DESC`
	tenders := []models.Tender{}
	if err := s.db.SelectContext(ctx, &tenders, query, username); err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return tenders, nil
}
