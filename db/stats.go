package db

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/LLAppelOffre/llao-application/models"
	"github.com/lib/pq"
)

var ErrUnknownStatistic = errors.New("unknown statistic")

const (
	// statLimit ограничение групп в агрегатах
	statLimit = 100
	// boxLimit ограничение точек для box plot
	boxLimit = MaxTenders
	topLimit = 5
	// delayRankingLimit размер выдачи delais-par-ao
	delayRankingLimit = 20
)

var wonLiteral = pq.QuoteLiteral(models.StatusWon)

const (
	delayBucket = `CASE WHEN delai_jours <= 7 THEN '0-7 jours'
                WHEN delai_jours <= 15 THEN '8-15 jours'
                ELSE '16+ jours' END`
	scoreBucket = `CASE WHEN note_technique <= 10 THEN '0-10'
                WHEN note_technique <= 15 THEN '11-15'
                WHEN note_technique <= 20 THEN '16-20'
                ELSE '20+' END`
	priceBucket = `CASE WHEN prix_client <= 20000 THEN '0-20k€'
                WHEN prix_client <= 50000 THEN '20k-50k€'
                WHEN prix_client <= 100000 THEN '50k-100k€'
                ELSE '100k€+' END`
	pricePositioning = `CASE WHEN prix_client > prix_gagnant THEN 'Trop cher'
                WHEN prix_client < prix_gagnant * 0.8 THEN 'Trop bas'
                ELSE 'Aligné' END`
	scoreGap  = `(score_gagnant - score_client)`
	gapBucket = `CASE WHEN abs` + scoreGap + ` <= 5 THEN '0-5 points'
                WHEN abs` + scoreGap + ` <= 10 THEN '6-10 points'
                WHEN abs` + scoreGap + ` <= 20 THEN '11-20 points'
                ELSE '20+ points' END`
	hasScores = `score_client IS NOT NULL AND score_gagnant IS NOT NULL`
)

type statFunc func(s *Storage, ctx context.Context, f TenderFilter) (any, error)

// statistics все доступные агрегаты по имени маршрута
var statistics = map[string]statFunc{
	"stats/gagne-perdu":                       wrap((*Storage).StatusCounts),
	"stats/gagne-perdu-evolution-mois":        wrap((*Storage).MonthlyStatusCounts),
	"stats/gagne-perdu-taux-succes-categorie": wrap((*Storage).SuccessRateByCategory),
	"stats/gagne-perdu-taux-succes-pole":      wrap((*Storage).SuccessRateByPole),
	"stats/par-categorie":                     wrap((*Storage).BreakdownByCategory),
	"stats/par-pole":                          wrap((*Storage).BreakdownByPole),
	"stats/delais":                            wrap((*Storage).DelayStats),
	"stats/delais-par-ao":                     wrap((*Storage).DelayRanking),
	"stats/delais-tranches":                   wrap((*Storage).DelayBuckets),
	"top5/delais":                             wrap((*Storage).TopDelays),
	"stats/notes":                             wrap((*Storage).ScoreStats),
	"stats/notes-tranches":                    wrap((*Storage).ScoreBuckets),
	"stats/notes-qualitatives":                wrap((*Storage).QualitativeScores),
	"stats/notes-box":                         wrap((*Storage).ScoreBox),
	"top5/notes":                              wrap((*Storage).TopScores),
	"stats/prix":                              wrap((*Storage).PriceStats),
	"stats/prix-tranches":                     wrap((*Storage).PriceBuckets),
	"stats/positionnement-prix":               wrap((*Storage).PricePositioning),
	"stats/prix-box":                          wrap((*Storage).PriceBox),
	"stats/taux-succes-prix":                  wrap((*Storage).SuccessRateByPrice),
	"stats/comparaison":                       wrap((*Storage).ComparisonStats),
	"stats/ecarts-categorie":                  wrap((*Storage).GapStats),
	"stats/ecarts-tranches":                   wrap((*Storage).GapBuckets),
	"stats/ecarts-box":                        wrap((*Storage).GapBox),
	"top5/ecarts":                             wrap((*Storage).TopStoredGaps),
	"top5/ecarts-faibles":                     wrap((*Storage).SmallestGaps),
	"top5/ecarts-forts":                       wrap((*Storage).LargestGaps),
}

func wrap[T any](fn func(s *Storage, ctx context.Context, f TenderFilter) ([]T, error)) statFunc {
	return func(s *Storage, ctx context.Context, f TenderFilter) (any, error) {
		return fn(s, ctx, f)
	}
}

// StatisticNames имена агрегатов в порядке сортировки
func StatisticNames() []string {
	names := make([]string, 0, len(statistics))
	for name := range statistics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Statistic выполняет агрегат по имени вида "stats/delais" или "top5/notes"
func (s *Storage) Statistic(ctx context.Context, name string, f TenderFilter) (any, error) {
	fn, ok := statistics[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStatistic, name)
	}
	return fn(s, ctx, f)
}

func selectRows[T any](ctx context.Context, s *Storage, query string, args []any) ([]T, error) {
	rows := []T{}
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("stat query: %w", err)
	}
	return rows, nil
}

func (s *Storage) StatusCounts(ctx context.Context, f TenderFilter) ([]models.KeyCount, error) {
	where, args := f.where()
	query := `SELECT statut AS key, COUNT(*) AS count FROM appels_offres` + where +
		fmt.Sprintf(` GROUP BY statut ORDER BY count DESC, key LIMIT %d`, statLimit)
	return selectRows[models.KeyCount](ctx, s, query, args)
}

func (s *Storage) MonthlyStatusCounts(ctx context.Context, f TenderFilter) ([]models.MonthlyStatus, error) {
	where, args := f.where()
	query := `
        SELECT to_char(date_emission, 'YYYY-MM') AS mois,
               to_char(date_emission, 'YYYY') AS annee,
               to_char(date_emission, 'MM') AS mois_num,
               statut,
               COUNT(*) AS count
        FROM appels_offres` + where + `
        GROUP BY 1, 2, 3, 4` +
		fmt.Sprintf(` ORDER BY annee, mois_num, statut LIMIT %d`, statLimit)

	type row struct {
		models.MonthKey
		Count int `db:"count"`
	}
	rows, err := selectRows[row](ctx, s, query, args)
	if err != nil {
		return nil, err
	}
	out := make([]models.MonthlyStatus, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.MonthlyStatus{ID: r.MonthKey, Count: r.Count})
	}
	return out, nil
}

// SuccessRateBy доля выигранных тендеров в процентах по categorie или pole
func (s *Storage) SuccessRateBy(ctx context.Context, column string, f TenderFilter) ([]models.SuccessRate, error) {
	if column != "categorie" && column != "pole" {
		return nil, fmt.Errorf("%w: success rate by %s", ErrUnknownStatistic, column)
	}
	where, args := f.where()
	query := fmt.Sprintf(`
        SELECT %[1]s AS key,
               COUNT(*) AS total,
               COUNT(*) FILTER (WHERE statut = %[2]s) AS gagne,
               COUNT(*) FILTER (WHERE statut = %[2]s)::float8 * 100 / COUNT(*) AS taux_succes
        FROM appels_offres`, column, wonLiteral) + where +
		fmt.Sprintf(` GROUP BY %s ORDER BY taux_succes DESC, key LIMIT %d`, column, statLimit)
	return selectRows[models.SuccessRate](ctx, s, query, args)
}

// SuccessRateByPrice доля выигранных (0..1) по ценовым диапазонам
func (s *Storage) SuccessRateByPrice(ctx context.Context, f TenderFilter) ([]models.SuccessRate, error) {
	where, args := f.where("prix_client IS NOT NULL")
	query := fmt.Sprintf(`
        SELECT %[1]s AS key,
               COUNT(*) AS total,
               COUNT(*) FILTER (WHERE statut = %[2]s) AS gagne,
               COUNT(*) FILTER (WHERE statut = %[2]s)::float8 / COUNT(*) AS taux_succes
        FROM appels_offres`, priceBucket, wonLiteral) + where +
		` GROUP BY 1 ORDER BY key`
	return selectRows[models.SuccessRate](ctx, s, query, args)
}

func (s *Storage) StatusBreakdownBy(ctx context.Context, column string, f TenderFilter) ([]models.StatusBreakdown, error) {
	if column != "categorie" && column != "pole" {
		return nil, fmt.Errorf("%w: breakdown by %s", ErrUnknownStatistic, column)
	}
	where, args := f.where()
	query := fmt.Sprintf(`SELECT %s AS grp, statut, COUNT(*) AS count FROM appels_offres`, column) + where +
		fmt.Sprintf(` GROUP BY 1, 2 ORDER BY grp, statut LIMIT %d`, statLimit)

	type row struct {
		Group  string `db:"grp"`
		Statut string `db:"statut"`
		Count  int    `db:"count"`
	}
	rows, err := selectRows[row](ctx, s, query, args)
	if err != nil {
		return nil, err
	}
	out := make([]models.StatusBreakdown, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.StatusBreakdown{
			ID:    map[string]string{column: r.Group, "statut": r.Statut},
			Count: r.Count,
		})
	}
	return out, nil
}

func (s *Storage) bucketCounts(ctx context.Context, bucket, present string, f TenderFilter) ([]models.KeyCount, error) {
	where, args := f.where(present)
	query := `SELECT ` + bucket + ` AS key, COUNT(*) AS count FROM appels_offres` + where +
		` GROUP BY 1 ORDER BY key`
	return selectRows[models.KeyCount](ctx, s, query, args)
}

func (s *Storage) DelayStats(ctx context.Context, f TenderFilter) ([]models.DelayStats, error) {
	where, args := f.where()
	query := `
        SELECT categorie AS key,
               AVG(delai_jours)::float8 AS delai_moyen,
               MIN(delai_jours)::float8 AS delai_min,
               MAX(delai_jours)::float8 AS delai_max,
               COUNT(*) AS count
        FROM appels_offres` + where +
		fmt.Sprintf(` GROUP BY categorie ORDER BY delai_moyen DESC NULLS LAST, key LIMIT %d`, statLimit)
	return selectRows[models.DelayStats](ctx, s, query, args)
}

// LongestDelays тендеры с самым долгим delai_jours
func (s *Storage) LongestDelays(ctx context.Context, f TenderFilter, limit int) ([]models.TenderDelay, error) {
	where, args := f.where("delai_jours IS NOT NULL")
	query := `SELECT id, nom_ao, delai_jours, categorie, statut FROM appels_offres` + where +
		fmt.Sprintf(` ORDER BY delai_jours DESC NULLS LAST, id LIMIT %d`, limit)
	return selectRows[models.TenderDelay](ctx, s, query, args)
}

func (s *Storage) ScoreStats(ctx context.Context, f TenderFilter) ([]models.ScoreStats, error) {
	where, args := f.where()
	query := `
        SELECT categorie AS key,
               AVG(note_technique)::float8 AS note_moyenne,
               MIN(note_technique)::float8 AS note_min,
               MAX(note_technique)::float8 AS note_max,
               COUNT(*) AS count
        FROM appels_offres` + where +
		fmt.Sprintf(` GROUP BY categorie ORDER BY note_moyenne DESC NULLS LAST, key LIMIT %d`, statLimit)
	return selectRows[models.ScoreStats](ctx, s, query, args)
}

func (s *Storage) QualitativeScores(ctx context.Context, f TenderFilter) ([]models.QualitativeScores, error) {
	where, args := f.where()
	query := `
        SELECT categorie AS key,
               AVG(note_technique)::float8 AS note_technique_moyenne,
               AVG(note_prix)::float8 AS note_prix_moyenne,
               COUNT(*) AS count
        FROM appels_offres` + where +
		fmt.Sprintf(` GROUP BY categorie ORDER BY note_technique_moyenne DESC NULLS LAST, key LIMIT %d`, statLimit)
	return selectRows[models.QualitativeScores](ctx, s, query, args)
}

func (s *Storage) ScoreBox(ctx context.Context, f TenderFilter) ([]models.TenderScore, error) {
	where, args := f.where("note_technique IS NOT NULL")
	query := `SELECT id, nom_ao, categorie, note_technique, note_prix, statut FROM appels_offres` + where +
		fmt.Sprintf(` ORDER BY note_technique DESC NULLS LAST, id LIMIT %d`, boxLimit)
	return selectRows[models.TenderScore](ctx, s, query, args)
}

func (s *Storage) TopScores(ctx context.Context, f TenderFilter) ([]models.TenderScore, error) {
	where, args := f.where("note_technique IS NOT NULL")
	query := `SELECT id, nom_ao, categorie, note_technique, NULL::float8 AS note_prix, statut FROM appels_offres` + where +
		fmt.Sprintf(` ORDER BY note_technique DESC NULLS LAST, id LIMIT %d`, topLimit)
	return selectRows[models.TenderScore](ctx, s, query, args)
}

func (s *Storage) PriceStats(ctx context.Context, f TenderFilter) ([]models.PriceStats, error) {
	where, args := f.where()
	query := `
        SELECT categorie AS key,
               AVG(prix_client)::float8 AS prix_moyen,
               MIN(prix_client)::float8 AS prix_min,
               MAX(prix_client)::float8 AS prix_max,
               AVG(ecart_prix)::float8 AS ecart_prix_moyen,
               COUNT(*) AS count
        FROM appels_offres` + where +
		fmt.Sprintf(` GROUP BY categorie ORDER BY prix_moyen DESC NULLS LAST, key LIMIT %d`, statLimit)
	return selectRows[models.PriceStats](ctx, s, query, args)
}

// PricePositioning учитывает только тендеры с обеими ценами
func (s *Storage) PricePositioning(ctx context.Context, f TenderFilter) ([]models.KeyCount, error) {
	where, args := f.where("prix_client IS NOT NULL", "prix_gagnant IS NOT NULL")
	query := `SELECT ` + pricePositioning + ` AS key, COUNT(*) AS count FROM appels_offres` + where +
		` GROUP BY 1 ORDER BY count DESC, key`
	return selectRows[models.KeyCount](ctx, s, query, args)
}

func (s *Storage) PriceBox(ctx context.Context, f TenderFilter) ([]models.TenderPrice, error) {
	where, args := f.where("prix_client IS NOT NULL")
	query := `SELECT id, nom_ao, categorie, prix_client, prix_gagnant, statut FROM appels_offres` + where +
		fmt.Sprintf(` ORDER BY prix_client DESC NULLS LAST, id LIMIT %d`, boxLimit)
	return selectRows[models.TenderPrice](ctx, s, query, args)
}

func (s *Storage) ComparisonStats(ctx context.Context, f TenderFilter) ([]models.ComparisonStats, error) {
	where, args := f.where()
	query := `
        SELECT categorie AS key,
               AVG(ecart_score)::float8 AS ecart_score_moyen,
               MIN(ecart_score)::float8 AS ecart_score_min,
               MAX(ecart_score)::float8 AS ecart_score_max,
               COUNT(*) AS count
        FROM appels_offres` + where +
		fmt.Sprintf(` GROUP BY categorie ORDER BY ecart_score_moyen DESC NULLS LAST, key LIMIT %d`, statLimit)
	return selectRows[models.ComparisonStats](ctx, s, query, args)
}

func (s *Storage) GapStats(ctx context.Context, f TenderFilter) ([]models.GapStats, error) {
	where, args := f.where()
	query := `
        SELECT categorie AS key,
               AVG` + scoreGap + `::float8 AS ecart_moyen,
               MIN` + scoreGap + `::float8 AS ecart_min,
               MAX` + scoreGap + `::float8 AS ecart_max,
               COUNT(*) AS count
        FROM appels_offres` + where +
		fmt.Sprintf(` GROUP BY categorie ORDER BY ecart_moyen DESC NULLS LAST, key LIMIT %d`, statLimit)
	return selectRows[models.GapStats](ctx, s, query, args)
}

func (s *Storage) GapBox(ctx context.Context, f TenderFilter) ([]models.TenderGap, error) {
	where, args := f.where(hasScores)
	query := `
        SELECT id, nom_ao, categorie, ` + scoreGap + `::float8 AS ecart_score, score_client, score_gagnant, statut
        FROM appels_offres` + where +
		fmt.Sprintf(` ORDER BY ecart_score DESC NULLS LAST, id LIMIT %d`, boxLimit)
	return selectRows[models.TenderGap](ctx, s, query, args)
}

// TopStoredGaps самые большие сохраненные ecart_score
func (s *Storage) TopStoredGaps(ctx context.Context, f TenderFilter) ([]models.TenderGap, error) {
	where, args := f.where("ecart_score IS NOT NULL")
	query := `
        SELECT id, nom_ao, categorie, ecart_score, NULL::float8 AS score_client, NULL::float8 AS score_gagnant, statut
        FROM appels_offres` + where +
		fmt.Sprintf(` ORDER BY ecart_score DESC NULLS LAST, id LIMIT %d`, topLimit)
	return selectRows[models.TenderGap](ctx, s, query, args)
}

// TopGaps пять наименьших (smallest) или наибольших |score_gagnant - score_client|
func (s *Storage) TopGaps(ctx context.Context, f TenderFilter, smallest bool) ([]models.TenderGap, error) {
	order := "DESC"
	if smallest {
		order = "ASC"
	}
	where, args := f.where(hasScores)
	query := `
        SELECT id, nom_ao, categorie, abs` + scoreGap + `::float8 AS ecart_score,
               NULL::float8 AS score_client, NULL::float8 AS score_gagnant, statut
        FROM appels_offres` + where +
		fmt.Sprintf(` ORDER BY ecart_score %s, id LIMIT %d`, order, topLimit)
	return selectRows[models.TenderGap](ctx, s, query, args)
}

func (s *Storage) SuccessRateByCategory(ctx context.Context, f TenderFilter) ([]models.SuccessRate, error) {
	return s.SuccessRateBy(ctx, "categorie", f)
}

func (s *Storage) SuccessRateByPole(ctx context.Context, f TenderFilter) ([]models.SuccessRate, error) {
	return s.SuccessRateBy(ctx, "pole", f)
}

func (s *Storage) BreakdownByCategory(ctx context.Context, f TenderFilter) ([]models.StatusBreakdown, error) {
	return s.StatusBreakdownBy(ctx, "categorie", f)
}

func (s *Storage) BreakdownByPole(ctx context.Context, f TenderFilter) ([]models.StatusBreakdown, error) {
	return s.StatusBreakdownBy(ctx, "pole", f)
}

func (s *Storage) DelayRanking(ctx context.Context, f TenderFilter) ([]models.TenderDelay, error) {
	return s.LongestDelays(ctx, f, delayRankingLimit)
}

func (s *Storage) TopDelays(ctx context.Context, f TenderFilter) ([]models.TenderDelay, error) {
	return s.LongestDelays(ctx, f, topLimit)
}

func (s *Storage) DelayBuckets(ctx context.Context, f TenderFilter) ([]models.KeyCount, error) {
	return s.bucketCounts(ctx, delayBucket, "delai_jours IS NOT NULL", f)
}

func (s *Storage) ScoreBuckets(ctx context.Context, f TenderFilter) ([]models.KeyCount, error) {
	return s.bucketCounts(ctx, scoreBucket, "note_technique IS NOT NULL", f)
}

func (s *Storage) PriceBuckets(ctx context.Context, f TenderFilter) ([]models.KeyCount, error) {
	return s.bucketCounts(ctx, priceBucket, "prix_client IS NOT NULL", f)
}

func (s *Storage) GapBuckets(ctx context.Context, f TenderFilter) ([]models.KeyCount, error) {
	return s.bucketCounts(ctx, gapBucket, hasScores, f)
}

func (s *Storage) SmallestGaps(ctx context.Context, f TenderFilter) ([]models.TenderGap, error) {
	return s.TopGaps(ctx, f, true)
}

func (s *Storage) LargestGaps(ctx context.Context, f TenderFilter) ([]models.TenderGap, error) {
	return s.TopGaps(ctx, f, false)
}
