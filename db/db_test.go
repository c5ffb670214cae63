package db

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/LLAppelOffre/llao-application/models"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func newMockStorage(t *testing.T) (*Storage, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewStorage(sqlx.NewDb(conn, "sqlmock"), logger), mock
}

func date(s string) *time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return &d
}

func TestTenderFilterWhere(t *testing.T) {
	where, args := TenderFilter{}.where()
	require.Empty(t, where)
	require.Empty(t, args)

	f := TenderFilter{Categorie: "IT", Pole: "Nord", DateDebut: date("2024-01-01"), DateFin: date("2024-12-31")}
	where, args = f.where("prix_client IS NOT NULL")
	require.Equal(t, " WHERE categorie = $1 AND pole = $2 AND date_emission >= $3 AND date_emission <= $4 AND prix_client IS NOT NULL", where)
	require.Equal(t, []any{"IT", "Nord", *date("2024-01-01"), *date("2024-12-31")}, args)

	where, args = TenderFilter{}.where("delai_jours IS NOT NULL")
	require.Equal(t, " WHERE delai_jours IS NOT NULL", where)
	require.Empty(t, args)
}

func TestListTenders(t *testing.T) {
	s, mock := newMockStorage(t)
	emitted := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "nom_ao", "categorie", "pole", "statut", "date_emission", "equipe_projet"}).
		AddRow(7, "Refonte SI", "IT", "Nord", "Gagné", emitted, []byte(`[{"nom":"Alice","role":"Chef"}]`))
	mock.ExpectQuery(`(?s)SELECT .* FROM appels_offres WHERE statut = \$1 ORDER BY date_emission DESC, id DESC LIMIT 1000`).
		WithArgs("Gagné").
		WillReturnRows(rows)

	tenders, err := s.ListTenders(context.Background(), TenderFilter{Statut: "Gagné"})
	require.NoError(t, err)
	require.Len(t, tenders, 1)
	require.Equal(t, "Refonte SI", tenders[0].NomAO)
	require.Equal(t, models.Team{{Nom: "Alice", Role: "Chef"}}, tenders[0].EquipeProjet)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTenderNotFound(t *testing.T) {
	s, mock := newMockStorage(t)
	mock.ExpectQuery(`(?s)SELECT .* FROM appels_offres WHERE id=\$1`).WithArgs(42).WillReturnError(sql.ErrNoRows)

	_, err := s.GetTender(context.Background(), 42)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSearchTendersEscapesPattern(t *testing.T) {
	s, mock := newMockStorage(t)
	mock.ExpectQuery(`SELECT id, nom_ao FROM appels_offres`).
		WithArgs(`100\%`, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "nom_ao"}).AddRow(1, "Remise 100% digitale"))

	refs, err := s.SearchTenders(context.Background(), "100%", 10)
	require.NoError(t, err)
	require.Equal(t, []models.TenderRef{{ID: 1, NomAO: "Remise 100% digitale"}}, refs)
}

func TestCreateUserDuplicate(t *testing.T) {
	s, mock := newMockStorage(t)
	mock.ExpectQuery(`INSERT INTO users`).WillReturnError(&pq.Error{Code: "23505"})

	err := s.CreateUser(context.Background(), &models.User{Username: "alice", Role: models.RoleUser})
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestSetUserDisabledUnknownUser(t *testing.T) {
	s, mock := newMockStorage(t)
	mock.ExpectExec(`UPDATE users SET disabled=\$1 WHERE username=\$2`).
		WithArgs(true, "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.ErrorIs(t, s.SetUserDisabled(context.Background(), "ghost", true), ErrNotFound)
}

func TestAddFavorite(t *testing.T) {
	s, mock := newMockStorage(t)
	ctx := context.Background()

	mock.ExpectExec(`INSERT INTO ao_favorites`).WithArgs("alice", 1).WillReturnResult(sqlmock.NewResult(0, 1))
	added, err := s.AddFavorite(ctx, "alice", 1)
	require.NoError(t, err)
	require.True(t, added)

	mock.ExpectExec(`INSERT INTO ao_favorites`).WithArgs("alice", 1).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT EXISTS`).WithArgs(1).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	added, err = s.AddFavorite(ctx, "alice", 1)
	require.NoError(t, err)
	require.False(t, added)

	mock.ExpectExec(`INSERT INTO ao_favorites`).WithArgs("alice", 99).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT EXISTS`).WithArgs(99).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	_, err = s.AddFavorite(ctx, "alice", 99)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func dashboardCols() []string {
	return []string{"id", "user_id", "nom", "graphiques", "filtres_globaux", "date_creation", "date_maj"}
}

func TestListDashboardsSkipsMalformed(t *testing.T) {
	s, mock := newMockStorage(t)
	now := time.Now()
	rows := sqlmock.NewRows(dashboardCols()).
		AddRow(1, "alice", "Q1", []byte(`[{"chart_id":"pie1","titre":"Pie","instance_id":"a","filtres":{"pole":"Nord"}}]`), []byte(`{}`), now, now).
		AddRow(2, "alice", "Broken", []byte(`{not json`), []byte(`{}`), now, now).
		AddRow(3, "alice", "Empty", []byte(`[]`), []byte(`{"dateDebut":["2024-01-01"]}`), now, now)
	mock.ExpectQuery(`SELECT .* FROM dashboards WHERE user_id=\$1`).WithArgs("alice").WillReturnRows(rows)

	dashboards, err := s.ListDashboards(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, dashboards, 2)
	require.Equal(t, 1, dashboards[0].ID)
	require.Equal(t, []string{"Nord"}, dashboards[0].Graphiques[0].Filtres["pole"])
	require.Equal(t, 3, dashboards[1].ID)
	require.Equal(t, "2024-01-01", dashboards[1].FiltresGlobaux["dateDebut"])
}

func TestGetDashboardOtherOwner(t *testing.T) {
	s, mock := newMockStorage(t)
	mock.ExpectQuery(`SELECT .* FROM dashboards WHERE id=\$1 AND user_id=\$2`).
		WithArgs(5, "bob").
		WillReturnRows(sqlmock.NewRows(dashboardCols()))

	_, err := s.GetDashboard(context.Background(), 5, "bob")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateDashboardKeepsGlobalFilters(t *testing.T) {
	s, mock := newMockStorage(t)
	now := time.Now()
	d := &models.Dashboard{ID: 1, UserID: "alice", Nom: "Q2", FiltresGlobaux: models.Filters{"pole": []string{"Sud"}}}
	mock.ExpectQuery(`UPDATE dashboards\s+SET nom=\$1, graphiques=\$2, date_maj=NOW\(\)\s+WHERE id=\$3 AND user_id=\$4`).
		WithArgs("Q2", sqlmock.AnyArg(), 1, "alice").
		WillReturnRows(sqlmock.NewRows([]string{"date_maj"}).AddRow(now))

	require.NoError(t, s.UpdateDashboard(context.Background(), d))
	require.Equal(t, now, d.DateMaj)
	require.NotNil(t, d.Graphiques)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteDashboardMissing(t *testing.T) {
	s, mock := newMockStorage(t)
	mock.ExpectExec(`DELETE FROM dashboards`).WithArgs(9, "alice").WillReturnResult(sqlmock.NewResult(0, 0))
	require.ErrorIs(t, s.DeleteDashboard(context.Background(), 9, "alice"), ErrNotFound)
}

func TestStatisticUnknown(t *testing.T) {
	s, _ := newMockStorage(t)
	_, err := s.Statistic(context.Background(), "stats/nope", TenderFilter{})
	require.ErrorIs(t, err, ErrUnknownStatistic)
}

func TestStatisticNamesCoverRoutes(t *testing.T) {
	names := StatisticNames()
	require.Len(t, names, len(statistics))
	for _, want := range []string{"stats/gagne-perdu", "stats/delais-tranches", "stats/positionnement-prix", "top5/ecarts-forts"} {
		require.Contains(t, names, want)
	}
}

func TestStatusCounts(t *testing.T) {
	s, mock := newMockStorage(t)
	mock.ExpectQuery(`SELECT statut AS key, COUNT\(\*\) AS count FROM appels_offres WHERE pole = \$1 GROUP BY statut`).
		WithArgs("Nord").
		WillReturnRows(sqlmock.NewRows([]string{"key", "count"}).AddRow("Gagné", 3).AddRow("Perdu", 1))

	res, err := s.Statistic(context.Background(), "stats/gagne-perdu", TenderFilter{Pole: "Nord"})
	require.NoError(t, err)
	require.Equal(t, []models.KeyCount{{Key: "Gagné", Count: 3}, {Key: "Perdu", Count: 1}}, res)
}

func TestDelayBucketsSkipMissingDelays(t *testing.T) {
	s, mock := newMockStorage(t)
	mock.ExpectQuery(`(?s)SELECT CASE WHEN delai_jours <= 7 THEN '0-7 jours'.* WHERE delai_jours IS NOT NULL GROUP BY 1 ORDER BY key`).
		WillReturnRows(sqlmock.NewRows([]string{"key", "count"}).AddRow("0-7 jours", 2).AddRow("16+ jours", 1))

	res, err := s.Statistic(context.Background(), "stats/delais-tranches", TenderFilter{})
	require.NoError(t, err)
	require.Len(t, res, 2)
}

func TestBreakdownByPole(t *testing.T) {
	s, mock := newMockStorage(t)
	mock.ExpectQuery(`SELECT pole AS grp, statut, COUNT\(\*\) AS count FROM appels_offres`).
		WillReturnRows(sqlmock.NewRows([]string{"grp", "statut", "count"}).AddRow("Nord", "Gagné", 4))

	res, err := s.BreakdownByPole(context.Background(), TenderFilter{})
	require.NoError(t, err)
	require.Equal(t, []models.StatusBreakdown{{ID: map[string]string{"pole": "Nord", "statut": "Gagné"}, Count: 4}}, res)
}

func TestBoxAndTopQueriesSkipNullMeasures(t *testing.T) {
	ctx := context.Background()
	f := TenderFilter{Pole: "Nord"}
	tests := []struct {
		name    string
		pattern string
		run     func(s *Storage) error
	}{
		{"score box", `(?s)FROM appels_offres WHERE pole = \$1 AND note_technique IS NOT NULL ORDER BY note_technique DESC`,
			func(s *Storage) error { _, err := s.ScoreBox(ctx, f); return err }},
		{"top scores", `(?s)FROM appels_offres WHERE pole = \$1 AND note_technique IS NOT NULL ORDER BY`,
			func(s *Storage) error { _, err := s.TopScores(ctx, f); return err }},
		{"price box", `(?s)FROM appels_offres WHERE pole = \$1 AND prix_client IS NOT NULL ORDER BY prix_client DESC`,
			func(s *Storage) error { _, err := s.PriceBox(ctx, f); return err }},
		{"gap box", `(?s)FROM appels_offres WHERE pole = \$1 AND score_client IS NOT NULL AND score_gagnant IS NOT NULL ORDER BY`,
			func(s *Storage) error { _, err := s.GapBox(ctx, f); return err }},
		{"stored gaps", `(?s)FROM appels_offres WHERE pole = \$1 AND ecart_score IS NOT NULL ORDER BY ecart_score DESC`,
			func(s *Storage) error { _, err := s.TopStoredGaps(ctx, f); return err }},
		{"longest delays", `(?s)FROM appels_offres WHERE pole = \$1 AND delai_jours IS NOT NULL ORDER BY delai_jours DESC`,
			func(s *Storage) error { _, err := s.LongestDelays(ctx, f, 5); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMockStorage(t)
			mock.ExpectQuery(tt.pattern).WithArgs("Nord").WillReturnRows(sqlmock.NewRows([]string{"id"}))
			require.NoError(t, tt.run(s))
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
