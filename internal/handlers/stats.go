package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/LLAppelOffre/llao-application/db"
	"github.com/go-chi/chi/v5"
)

// StatisticHandler отдает агрегат по имени из пути.
// prefix "stats" или "top5"; неизвестное имя дает 404.
func (h *Handler) StatisticHandler(prefix string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, ok := tenderFilter(w, r)
		if !ok {
			return
		}
		name := prefix + "/" + chi.URLParam(r, "name")
		result, err := h.Store.Statistic(r.Context(), name, f)
		if errors.Is(err, db.ErrUnknownStatistic) {
			writeError(w, http.StatusNotFound, "Statistique inconnue")
			return
		}
		if err != nil {
			h.Logger.ErrorContext(r.Context(), "statistic failed", slog.String("name", name), slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "Erreur interne du serveur")
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}
