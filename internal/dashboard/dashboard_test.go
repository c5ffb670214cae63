package dashboard_test

import (
	"fmt"
	"testing"

	"github.com/LLAppelOffre/llao-application/internal/dashboard"
	"github.com/LLAppelOffre/llao-application/models"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int { return &v }

func sequentialIDs(t *testing.T) {
	t.Helper()
	n := 0
	orig := dashboard.NewInstanceID
	dashboard.NewInstanceID = func() string {
		n++
		return fmt.Sprintf("inst-%d", n)
	}
	t.Cleanup(func() { dashboard.NewInstanceID = orig })
}

func sampleDashboard() *models.Dashboard {
	return &models.Dashboard{
		ID:     1,
		UserID: "alice",
		Nom:    "Q1",
		Graphiques: models.Charts{
			{ChartID: "pie1", Titre: "Pie", InstanceID: "a", Filtres: models.Filters{}, X: intp(0), Y: intp(0), W: intp(4), H: intp(3)},
			{ChartID: "bar1", Titre: "Bar", InstanceID: "b", Filtres: models.Filters{}, X: intp(4), Y: intp(0), W: intp(4), H: intp(3)},
		},
		FiltresGlobaux: models.Filters{},
	}
}

func TestAddThenRemoveRestoresCharts(t *testing.T) {
	d := sampleDashboard()
	before := append(models.Charts(nil), d.Graphiques...)

	added := dashboard.AddChart(d, models.Chart{ChartID: "pie1", Titre: "Pie again"})
	require.NotEmpty(t, added.InstanceID)
	require.Len(t, d.Graphiques, 3)

	require.NoError(t, dashboard.RemoveChart(d, added.InstanceID))
	require.Equal(t, before, d.Graphiques)
}

func TestAddChartCleansFilters(t *testing.T) {
	d := &models.Dashboard{}
	added := dashboard.AddChart(d, models.Chart{ChartID: "line", Filtres: models.Filters{"pole": "Nord"}})
	require.Equal(t, []string{"Nord"}, added.Filtres["pole"])
	require.Equal(t, added, d.Graphiques[0])
}

func TestAddChartGeneratesUniqueIDs(t *testing.T) {
	d := &models.Dashboard{}
	first := dashboard.AddChart(d, models.Chart{ChartID: "pie1"})
	second := dashboard.AddChart(d, models.Chart{ChartID: "pie1"})
	require.NotEqual(t, first.InstanceID, second.InstanceID)
}

func TestRemoveChartUnknownID(t *testing.T) {
	d := sampleDashboard()
	err := dashboard.RemoveChart(d, "missing")
	require.ErrorIs(t, err, dashboard.ErrChartNotFound)
	require.Len(t, d.Graphiques, 2)
}

func TestRemoveChartBackfillsLegacyWidgets(t *testing.T) {
	sequentialIDs(t)
	d := sampleDashboard()
	d.Graphiques = append(d.Graphiques, models.Chart{ChartID: "legacy"})

	require.NoError(t, dashboard.RemoveChart(d, "a"))
	require.Len(t, d.Graphiques, 2)
	require.Equal(t, "inst-1", d.Graphiques[1].InstanceID)
}

func TestEnsureInstanceIDs(t *testing.T) {
	sequentialIDs(t)
	d := &models.Dashboard{Graphiques: models.Charts{{ChartID: "x"}, {ChartID: "y", InstanceID: "keep"}, {ChartID: "z"}}}
	require.Equal(t, 2, dashboard.EnsureInstanceIDs(d))
	require.Equal(t, "inst-1", d.Graphiques[0].InstanceID)
	require.Equal(t, "keep", d.Graphiques[1].InstanceID)
	require.Equal(t, "inst-2", d.Graphiques[2].InstanceID)
	require.Equal(t, 0, dashboard.EnsureInstanceIDs(d))
}

func TestEnsureInstanceIDsReplacesDuplicates(t *testing.T) {
	sequentialIDs(t)
	d := &models.Dashboard{Graphiques: models.Charts{
		{ChartID: "x", InstanceID: "dup"},
		{ChartID: "y", InstanceID: "dup"},
		{ChartID: "z", InstanceID: "other"},
	}}
	require.Equal(t, 1, dashboard.EnsureInstanceIDs(d))
	require.Equal(t, "dup", d.Graphiques[0].InstanceID)
	require.Equal(t, "inst-1", d.Graphiques[1].InstanceID)
	require.Equal(t, "other", d.Graphiques[2].InstanceID)

	require.NoError(t, dashboard.RemoveChart(d, "dup"))
	require.Len(t, d.Graphiques, 2)
}

func TestApplyLayoutEmptyIsNoop(t *testing.T) {
	d := sampleDashboard()
	before := append(models.Charts(nil), d.Graphiques...)
	dashboard.ApplyLayout(d, nil)
	require.Equal(t, before, d.Graphiques)
}

func TestApplyLayoutUnknownIDIgnored(t *testing.T) {
	d := sampleDashboard()
	before := append(models.Charts(nil), d.Graphiques...)
	dashboard.ApplyLayout(d, []models.LayoutItem{{InstanceID: "nope", X: 9, Y: 9, W: 9, H: 9}})
	require.Equal(t, before, d.Graphiques)
}

func TestApplyLayoutUpdatesOnlyMatching(t *testing.T) {
	d := sampleDashboard()
	dashboard.ApplyLayout(d, []models.LayoutItem{{InstanceID: "b", X: 0, Y: 3, W: 8, H: 2}})

	require.Equal(t, "a", d.Graphiques[0].InstanceID)
	require.Equal(t, 4, *d.Graphiques[0].W)
	require.Equal(t, 0, *d.Graphiques[1].X)
	require.Equal(t, 3, *d.Graphiques[1].Y)
	require.Equal(t, 8, *d.Graphiques[1].W)
	require.Equal(t, 2, *d.Graphiques[1].H)
}

func TestUpdateChartByChartID(t *testing.T) {
	d := sampleDashboard()
	d.Graphiques = append(d.Graphiques, models.Chart{ChartID: "pie1", InstanceID: "c"})

	require.NoError(t, dashboard.UpdateChartTitle(d, "pie1", "Répartition"))
	require.Equal(t, "Répartition", *d.Graphiques[0].CustomTitle)
	require.Equal(t, "Répartition", *d.Graphiques[2].CustomTitle)
	require.Nil(t, d.Graphiques[1].CustomTitle)

	require.NoError(t, dashboard.UpdateChartText(d, "bar1", "Section"))
	require.Equal(t, "Section", *d.Graphiques[1].Text)

	require.NoError(t, dashboard.UpdateChartFilters(d, "pie1", map[string]any{"categorie": "IT", "dateFin": []any{"2024-06-30"}}))
	require.Equal(t, models.Filters{"categorie": []string{"IT"}, "dateFin": "2024-06-30"}, d.Graphiques[0].Filtres)
	require.Equal(t, d.Graphiques[0].Filtres, d.Graphiques[2].Filtres)
}

func TestUpdateChartUnknownChartID(t *testing.T) {
	d := sampleDashboard()
	require.ErrorIs(t, dashboard.UpdateChartTitle(d, "nope", "x"), dashboard.ErrChartNotFound)
	require.ErrorIs(t, dashboard.UpdateChartText(d, "nope", "x"), dashboard.ErrChartNotFound)
	require.ErrorIs(t, dashboard.UpdateChartFilters(d, "nope", nil), dashboard.ErrChartNotFound)
}

func TestPrepare(t *testing.T) {
	sequentialIDs(t)
	charts := dashboard.Prepare(models.Charts{
		{ChartID: "pie1", Filtres: models.Filters{"statut": "Gagné"}},
		{ChartID: "bar1", InstanceID: "given"},
	})
	require.Equal(t, "inst-1", charts[0].InstanceID)
	require.Equal(t, []string{"Gagné"}, charts[0].Filtres["statut"])
	require.Equal(t, "given", charts[1].InstanceID)
	require.Equal(t, models.Filters{}, charts[1].Filtres)
}

func TestPrepareReplacesDuplicateIDs(t *testing.T) {
	sequentialIDs(t)
	charts := dashboard.Prepare(models.Charts{
		{ChartID: "pie1", InstanceID: "inst-1"},
		{ChartID: "bar1", InstanceID: "inst-1"},
		{ChartID: "line", InstanceID: "inst-1"},
	})
	ids := map[string]bool{}
	for _, c := range charts {
		ids[c.InstanceID] = true
	}
	require.Len(t, ids, 3)
	require.Equal(t, "inst-1", charts[0].InstanceID)
	require.Equal(t, "inst-2", charts[1].InstanceID)
	require.Equal(t, "inst-3", charts[2].InstanceID)
}
