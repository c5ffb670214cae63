package handlers

import (
	"github.com/go-chi/chi/v5"
)

// Routes собирает маршруты /api
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/ping", h.PingHandler)
	r.Post("/register", h.RegisterHandler)
	r.Post("/token", h.TokenHandler)

	r.Group(func(r chi.Router) {
		r.Use(h.Authenticate)

		r.Route("/users", func(r chi.Router) {
			r.Get("/me", h.MeHandler)
			r.Patch("/me/password", h.ChangePasswordHandler)
			r.Patch("/{username}/disable", h.DisableUserHandler)
			r.Patch("/{username}/password", h.ResetPasswordHandler)
			r.Delete("/{username}", h.DeleteUserHandler)
		})

		r.Route("/appels_offres", func(r chi.Router) {
			r.Get("/", h.ListTendersHandler)
			r.Get("/search", h.SearchTendersHandler)
			r.Get("/filtres/options", h.FilterOptionsHandler)
			r.Get("/stats/{name}", h.StatisticHandler("stats"))
			r.Get("/top5/{name}", h.StatisticHandler("top5"))
			r.Get("/export/excel", h.ExportExcelHandler)
			r.Get("/favorites", h.ListFavoritesHandler)
			r.Post("/favorites/{id}", h.AddFavoriteHandler)
			r.Delete("/favorites/{id}", h.RemoveFavoriteHandler)
			r.Get("/{id}", h.GetTenderHandler)
			r.Get("/{id}/reports", h.TenderReportsHandler)
			r.Get("/{id}/export/pdf", h.ExportPDFHandler)
		})

		r.Route("/dashboards", func(r chi.Router) {
			r.Get("/", h.ListDashboardsHandler)
			r.Post("/", h.CreateDashboardHandler)
			r.Get("/{id}", h.GetDashboardHandler)
			r.Patch("/{id}", h.PatchDashboardHandler)
			r.Delete("/{id}", h.DeleteDashboardHandler)
			r.Patch("/{id}/rename", h.RenameDashboardHandler)
			r.Post("/{id}/add-chart", h.AddChartHandler)
			r.Delete("/{id}/remove-chart/{instance_id}", h.RemoveChartHandler)
			r.Post("/{id}/update-chart-filters", h.UpdateChartFiltersHandler)
			r.Post("/{id}/update-chart-title", h.UpdateChartTitleHandler)
			r.Post("/{id}/update-chart-text", h.UpdateChartTextHandler)
			r.Post("/{id}/update-global-filters", h.UpdateGlobalFiltersHandler)
			r.Post("/{id}/layout", h.LayoutHandler)
		})
	})

	return r
}
