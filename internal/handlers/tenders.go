package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/LLAppelOffre/llao-application/db"
	"github.com/LLAppelOffre/llao-application/models"
)

const (
	dateLayout     = "2006-01-02"
	searchLimit    = 10
	searchMinRunes = 2
)

// parseTenderFilter читает categorie, statut, pole, date_debut и date_fin из query
func parseTenderFilter(r *http.Request) (db.TenderFilter, error) {
	q := r.URL.Query()
	f := db.TenderFilter{
		Categorie: strings.TrimSpace(q.Get("categorie")),
		Statut:    strings.TrimSpace(q.Get("statut")),
		Pole:      strings.TrimSpace(q.Get("pole")),
	}
	for _, p := range []struct {
		name string
		dst  **time.Time
	}{
		{"date_debut", &f.DateDebut},
		{"date_fin", &f.DateFin},
	} {
		v := strings.TrimSpace(q.Get(p.name))
		if v == "" {
			continue
		}
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return f, fmt.Errorf("%s doit être au format AAAA-MM-JJ", p.name)
		}
		*p.dst = &t
	}
	return f, nil
}

// tenderFilter разбирает фильтры и отвечает 400 при ошибке
func tenderFilter(w http.ResponseWriter, r *http.Request) (db.TenderFilter, bool) {
	f, err := parseTenderFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return f, false
	}
	return f, true
}

// ListTendersHandler обрабатывает GET /api/appels_offres
func (h *Handler) ListTendersHandler(w http.ResponseWriter, r *http.Request) {
	f, ok := tenderFilter(w, r)
	if !ok {
		return
	}
	tenders, err := h.Store.ListTenders(r.Context(), f)
	if err != nil {
		h.serverError(w, r, "failed to list tenders", err)
		return
	}
	writeJSON(w, http.StatusOK, tenders)
}

// SearchTendersHandler ищет по названию, короткий запрос дает пустой список
func (h *Handler) SearchTendersHandler(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if utf8.RuneCountInString(q) < searchMinRunes {
		writeJSON(w, http.StatusOK, []models.TenderRef{})
		return
	}
	refs, err := h.Store.SearchTenders(r.Context(), q, searchLimit)
	if err != nil {
		h.serverError(w, r, "failed to search tenders", err)
		return
	}
	writeJSON(w, http.StatusOK, refs)
}

// FilterOptionsHandler обрабатывает GET /api/appels_offres/filtres/options
func (h *Handler) FilterOptionsHandler(w http.ResponseWriter, r *http.Request) {
	opts, err := h.Store.GetFilterOptions(r.Context())
	if err != nil {
		h.serverError(w, r, "failed to load filter options", err)
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

// loadTender читает тендер по {id}; ответ об ошибке уже записан, если ok == false
func (h *Handler) loadTender(w http.ResponseWriter, r *http.Request) (*models.Tender, bool) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return nil, false
	}
	t, err := h.Store.GetTender(r.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Appel d'offres non trouvé")
		return nil, false
	}
	if err != nil {
		h.serverError(w, r, "failed to get tender", err)
		return nil, false
	}
	return t, true
}

// GetTenderHandler обрабатывает GET /api/appels_offres/{id}
func (h *Handler) GetTenderHandler(w http.ResponseWriter, r *http.Request) {
	t, ok := h.loadTender(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// TenderReportsHandler отдает AI-отчеты тендера
func (h *Handler) TenderReportsHandler(w http.ResponseWriter, r *http.Request) {
	t, ok := h.loadTender(w, r)
	if !ok {
		return
	}
	reports, err := h.Store.ListReports(r.Context(), t.ID)
	if err != nil {
		h.serverError(w, r, "failed to list reports", err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}
