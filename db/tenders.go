package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/LLAppelOffre/llao-application/models"
)

// MaxTenders ограничение выдачи списка и экспорта
const MaxTenders = 1000

const tenderColumns = `id, nom_ao, categorie, pole, statut, date_emission, date_reponse, annee_trimestre,
        prix_client, prix_gagnant, positionnement_prix, note_technique, note_prix, score_client,
        score_gagnant, delai_jours, tranche_delai, ecart_score, ecart_prix, commentaires_ia,
        raison_perte, equipe_projet, date_creation, date_maj`

// TenderFilter фильтры списка, статистики и экспорта.
// Пустые поля не фильтруют, даты включительно.
type TenderFilter struct {
	Categorie string
	Statut    string
	Pole      string
	DateDebut *time.Time
	DateFin   *time.Time
}

// where собирает WHERE с плейсхолдерами $1..$n, extra добавляются как есть.
func (f TenderFilter) where(extra ...string) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Categorie != "" {
		add("categorie = $%d", f.Categorie)
	}
	if f.Statut != "" {
		add("statut = $%d", f.Statut)
	}
	if f.Pole != "" {
		add("pole = $%d", f.Pole)
	}
	if f.DateDebut != nil {
		add("date_emission >= $%d", *f.DateDebut)
	}
	if f.DateFin != nil {
		add("date_emission <= $%d", *f.DateFin)
	}
	conds = append(conds, extra...)
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (s *Storage) ListTenders(ctx context.Context, f TenderFilter) ([]models.Tender, error) {
	where, args := f.where()
	query := `SELECT ` + tenderColumns + ` FROM appels_offres` + where +
		fmt.Sprintf(" ORDER BY date_emission DESC, id DESC LIMIT %d", MaxTenders)

	tenders := []models.Tender{}
	if err := s.db.SelectContext(ctx, &tenders, query, args...); err != nil {
		return nil, fmt.Errorf("list tenders: %w", err)
	}
	return tenders, nil
}

func (s *Storage) GetTender(ctx context.Context, id int) (*models.Tender, error) {
	t := &models.Tender{}
	query := `SELECT ` + tenderColumns + ` FROM appels_offres WHERE id=$1`
	if err := s.db.GetContext(ctx, t, query, id); err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

// SearchTenders ищет по подстроке в nom_ao без учета регистра
func (s *Storage) SearchTenders(ctx context.Context, q string, limit int) ([]models.TenderRef, error) {
	query := `
        SELECT id, nom_ao FROM appels_offres
        WHERE nom_ao ILIKE '%' || $1 || '%' ESCAPE '\'
        ORDER BY nom_ao ASC
        LIMIT $2`
	refs := []models.TenderRef{}
	if err := s.db.SelectContext(ctx, &refs, query, escapeLike(q), limit); err != nil {
		return nil, fmt.Errorf("search tenders: %w", err)
	}
	return refs, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (s *Storage) GetFilterOptions(ctx context.Context) (*models.FilterOptions, error) {
	opts := &models.FilterOptions{}
	for _, col := range []struct {
		name string
		dst  *[]string
	}{
		{"categorie", &opts.Categories},
		{"statut", &opts.Statuts},
		{"pole", &opts.Poles},
	} {
		values := []string{}
		query := fmt.Sprintf(`SELECT DISTINCT %[1]s FROM appels_offres WHERE %[1]s <> '' ORDER BY %[1]s`, col.name)
		if err := s.db.SelectContext(ctx, &values, query); err != nil {
			return nil, fmt.Errorf("distinct %s: %w", col.name, err)
		}
		*col.dst = values
	}
	return opts, nil
}

func (s *Storage) ListReports(ctx context.Context, tenderID int) ([]models.Report, error) {
	query := `
        SELECT id, ao_id, titre, contenu, created_at
        FROM ao_reports
        WHERE ao_id = $1
        ORDER BY created_at DESC`
	reports := []models.Report{}
	if err := s.db.SelectContext(ctx, &reports, query, tenderID); err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}
