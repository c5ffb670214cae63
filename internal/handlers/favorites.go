package handlers

import (
	"errors"
	"net/http"

	"github.com/LLAppelOffre/llao-application/db"
)

// ListFavoritesHandler обрабатывает GET /api/appels_offres/favorites
func (h *Handler) ListFavoritesHandler(w http.ResponseWriter, r *http.Request) {
	tenders, err := h.Store.ListFavoriteTenders(r.Context(), currentUser(r).Username)
	if err != nil {
		h.serverError(w, r, "failed to list favorites", err)
		return
	}
	writeJSON(w, http.StatusOK, tenders)
}

// AddFavoriteHandler идемпотентно добавляет тендер в избранное
func (h *Handler) AddFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	added, err := h.Store.AddFavorite(r.Context(), currentUser(r).Username, id)
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Appel d'offres non trouvé")
		return
	}
	if err != nil {
		h.serverError(w, r, "failed to add favorite", err)
		return
	}
	msg := "Ajouté aux favoris"
	if !added {
		msg = "Déjà en favori"
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

// RemoveFavoriteHandler обрабатывает DELETE /api/appels_offres/favorites/{id}
func (h *Handler) RemoveFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Store.RemoveFavorite(r.Context(), currentUser(r).Username, id); err != nil {
		h.serverError(w, r, "failed to remove favorite", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Retiré des favoris"})
}
