package handlers

import (
	"errors"
	"net/http"

	"github.com/LLAppelOffre/llao-application/db"
	"github.com/LLAppelOffre/llao-application/internal/dashboard"
	"github.com/LLAppelOffre/llao-application/internal/metrics"
	"github.com/LLAppelOffre/llao-application/models"
	"github.com/go-chi/chi/v5"
)

const (
	dashboardNotFound = "Tableau de bord non trouvé"
	chartNotFound     = "Graphique non trouvé dans le tableau de bord"
)

type createDashboardRequest struct {
	Nom            string         `json:"nom" validate:"required,max=100"`
	Graphiques     models.Charts  `json:"graphiques" validate:"omitempty,dive"`
	FiltresGlobaux models.Filters `json:"filtres_globaux"`
}

type renameRequest struct {
	Nom string `json:"nom" validate:"required,max=100"`
}

type patchDashboardRequest struct {
	Nom        *string        `json:"nom" validate:"omitnil,min=1,max=100"`
	Graphiques *models.Charts `json:"graphiques"`
}

type chartFiltersRequest struct {
	ChartID string         `json:"chart_id"`
	Filtres map[string]any `json:"filtres"`
}

type chartTitleRequest struct {
	ChartID     string  `json:"chart_id"`
	CustomTitle *string `json:"customTitle"`
}

type chartTextRequest struct {
	ChartID string  `json:"chart_id"`
	Text    *string `json:"text"`
}

type globalFiltersRequest struct {
	Filtres map[string]any `json:"filtres"`
}

// ListDashboardsHandler обрабатывает GET /api/dashboards
func (h *Handler) ListDashboardsHandler(w http.ResponseWriter, r *http.Request) {
	dashboards, err := h.Store.ListDashboards(r.Context(), currentUser(r).Username)
	if err != nil {
		h.serverError(w, r, "failed to list dashboards", err)
		return
	}
	writeJSON(w, http.StatusOK, dashboards)
}

// CreateDashboardHandler обрабатывает POST /api/dashboards
func (h *Handler) CreateDashboardHandler(w http.ResponseWriter, r *http.Request) {
	var req createDashboardRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	d := &models.Dashboard{
		UserID:         currentUser(r).Username,
		Nom:            req.Nom,
		Graphiques:     dashboard.Prepare(req.Graphiques),
		FiltresGlobaux: models.CleanFilters(req.FiltresGlobaux),
	}
	if err := h.Store.CreateDashboard(r.Context(), d); err != nil {
		h.serverError(w, r, "failed to create dashboard", err)
		return
	}
	metrics.ObserveDashboardOperation("create")
	writeJSON(w, http.StatusCreated, d)
}

// loadDashboard читает дашборд текущего пользователя по {id}
func (h *Handler) loadDashboard(w http.ResponseWriter, r *http.Request) (*models.Dashboard, bool) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return nil, false
	}
	d, err := h.Store.GetDashboard(r.Context(), id, currentUser(r).Username)
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusNotFound, dashboardNotFound)
		return nil, false
	}
	if err != nil {
		h.serverError(w, r, "failed to get dashboard", err)
		return nil, false
	}
	return d, true
}

// saveDashboard сохраняет nom и graphiques и отвечает обновленным дашбордом
func (h *Handler) saveDashboard(w http.ResponseWriter, r *http.Request, d *models.Dashboard, operation string) {
	if err := h.Store.UpdateDashboard(r.Context(), d); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, dashboardNotFound)
			return
		}
		h.serverError(w, r, "failed to update dashboard", err)
		return
	}
	metrics.ObserveDashboardOperation(operation)
	writeJSON(w, http.StatusOK, d)
}

func (h *Handler) chartError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, dashboard.ErrChartNotFound) {
		writeError(w, http.StatusNotFound, chartNotFound)
		return
	}
	h.serverError(w, r, "failed to update chart", err)
}

// GetDashboardHandler обрабатывает GET /api/dashboards/{id}
func (h *Handler) GetDashboardHandler(w http.ResponseWriter, r *http.Request) {
	d, ok := h.loadDashboard(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// DeleteDashboardHandler обрабатывает DELETE /api/dashboards/{id}
func (h *Handler) DeleteDashboardHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Store.DeleteDashboard(r.Context(), id, currentUser(r).Username); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, dashboardNotFound)
			return
		}
		h.serverError(w, r, "failed to delete dashboard", err)
		return
	}
	metrics.ObserveDashboardOperation("delete")
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Tableau de bord supprimé"})
}

// RenameDashboardHandler обрабатывает PATCH /api/dashboards/{id}/rename
func (h *Handler) RenameDashboardHandler(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	d, ok := h.loadDashboard(w, r)
	if !ok {
		return
	}
	d.Nom = req.Nom
	dashboard.EnsureInstanceIDs(d)
	h.saveDashboard(w, r, d, "rename")
}

// PatchDashboardHandler частично обновляет nom и graphiques.
// Глобальные фильтры этим запросом не меняются.
func (h *Handler) PatchDashboardHandler(w http.ResponseWriter, r *http.Request) {
	var req patchDashboardRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	d, ok := h.loadDashboard(w, r)
	if !ok {
		return
	}
	if req.Nom != nil {
		d.Nom = *req.Nom
	}
	if req.Graphiques != nil {
		d.Graphiques = dashboard.Prepare(*req.Graphiques)
	}
	dashboard.EnsureInstanceIDs(d)
	h.saveDashboard(w, r, d, "update")
}

// AddChartHandler обрабатывает POST /api/dashboards/{id}/add-chart
func (h *Handler) AddChartHandler(w http.ResponseWriter, r *http.Request) {
	var chart models.Chart
	if !h.decodeValid(w, r, &chart) {
		return
	}
	d, ok := h.loadDashboard(w, r)
	if !ok {
		return
	}
	dashboard.EnsureInstanceIDs(d)
	dashboard.AddChart(d, chart)
	h.saveDashboard(w, r, d, "add_chart")
}

// RemoveChartHandler обрабатывает DELETE /api/dashboards/{id}/remove-chart/{instance_id}
func (h *Handler) RemoveChartHandler(w http.ResponseWriter, r *http.Request) {
	d, ok := h.loadDashboard(w, r)
	if !ok {
		return
	}
	if err := dashboard.RemoveChart(d, chi.URLParam(r, "instance_id")); err != nil {
		h.chartError(w, r, err)
		return
	}
	h.saveDashboard(w, r, d, "remove_chart")
}

// UpdateChartFiltersHandler заменяет фильтры всех виджетов с данным chart_id
func (h *Handler) UpdateChartFiltersHandler(w http.ResponseWriter, r *http.Request) {
	var req chartFiltersRequest
	if err := decodeJSON(w, r, &req); err != nil || req.ChartID == "" || req.Filtres == nil {
		writeError(w, http.StatusBadRequest, "chart_id et filtres requis")
		return
	}
	d, ok := h.loadDashboard(w, r)
	if !ok {
		return
	}
	if err := dashboard.UpdateChartFilters(d, req.ChartID, req.Filtres); err != nil {
		h.chartError(w, r, err)
		return
	}
	h.saveDashboard(w, r, d, "update_chart_filters")
}

// UpdateChartTitleHandler задает customTitle виджетам с данным chart_id
func (h *Handler) UpdateChartTitleHandler(w http.ResponseWriter, r *http.Request) {
	var req chartTitleRequest
	if err := decodeJSON(w, r, &req); err != nil || req.ChartID == "" || req.CustomTitle == nil {
		writeError(w, http.StatusBadRequest, "chart_id et customTitle requis")
		return
	}
	d, ok := h.loadDashboard(w, r)
	if !ok {
		return
	}
	if err := dashboard.UpdateChartTitle(d, req.ChartID, *req.CustomTitle); err != nil {
		h.chartError(w, r, err)
		return
	}
	h.saveDashboard(w, r, d, "update_chart_title")
}

// UpdateChartTextHandler задает текст виджетам-секциям с данным chart_id
func (h *Handler) UpdateChartTextHandler(w http.ResponseWriter, r *http.Request) {
	var req chartTextRequest
	if err := decodeJSON(w, r, &req); err != nil || req.ChartID == "" || req.Text == nil {
		writeError(w, http.StatusBadRequest, "chart_id et text requis")
		return
	}
	d, ok := h.loadDashboard(w, r)
	if !ok {
		return
	}
	if err := dashboard.UpdateChartText(d, req.ChartID, *req.Text); err != nil {
		h.chartError(w, r, err)
		return
	}
	h.saveDashboard(w, r, d, "update_chart_text")
}

// UpdateGlobalFiltersHandler заменяет filtres_globaux
func (h *Handler) UpdateGlobalFiltersHandler(w http.ResponseWriter, r *http.Request) {
	var req globalFiltersRequest
	if err := decodeJSON(w, r, &req); err != nil || req.Filtres == nil {
		writeError(w, http.StatusBadRequest, "filtres requis")
		return
	}
	d, ok := h.loadDashboard(w, r)
	if !ok {
		return
	}
	d.FiltresGlobaux = models.CleanFilters(req.Filtres)
	if err := h.Store.SaveGlobalFilters(r.Context(), d); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, dashboardNotFound)
			return
		}
		h.serverError(w, r, "failed to save global filters", err)
		return
	}
	metrics.ObserveDashboardOperation("update_global_filters")
	writeJSON(w, http.StatusOK, d)
}

// LayoutHandler применяет новую геометрию к виджетам по instance_id
func (h *Handler) LayoutHandler(w http.ResponseWriter, r *http.Request) {
	var layout []models.LayoutItem
	if err := decodeJSON(w, r, &layout); err != nil {
		writeError(w, http.StatusBadRequest, "Corps de requête invalide")
		return
	}
	if err := h.validate.Var(layout, "dive"); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}
	d, ok := h.loadDashboard(w, r)
	if !ok {
		return
	}
	dashboard.ApplyLayout(d, layout)
	h.saveDashboard(w, r, d, "layout")
}
