package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/LLAppelOffre/llao-application/internal/export"
	"github.com/LLAppelOffre/llao-application/internal/metrics"
)

func writeAttachment(w http.ResponseWriter, contentType, filename string, body *bytes.Buffer) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", strconv.Itoa(body.Len()))
	w.WriteHeader(http.StatusOK)
	body.WriteTo(w)
}

// ExportExcelHandler выгружает отфильтрованные тендеры в xlsx
func (h *Handler) ExportExcelHandler(w http.ResponseWriter, r *http.Request) {
	f, ok := tenderFilter(w, r)
	if !ok {
		return
	}
	tenders, err := h.Store.ListTenders(r.Context(), f)
	if err != nil {
		h.serverError(w, r, "failed to list tenders for export", err)
		return
	}
	if len(tenders) == 0 {
		writeError(w, http.StatusNotFound, "Aucun appel d'offres trouvé pour l'export")
		return
	}

	var buf bytes.Buffer
	if err := export.WriteTendersXLSX(&buf, tenders); err != nil {
		h.serverError(w, r, "failed to build xlsx", err)
		return
	}
	metrics.ObserveExport("xlsx")
	writeAttachment(w, export.XLSXContentType, export.XLSXFilename, &buf)
}

// ExportPDFHandler печатает карточку тендера
func (h *Handler) ExportPDFHandler(w http.ResponseWriter, r *http.Request) {
	t, ok := h.loadTender(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WriteTenderPDF(&buf, t); err != nil {
		h.serverError(w, r, "failed to build pdf", err)
		return
	}
	metrics.ObserveExport("pdf")
	writeAttachment(w, export.PDFContentType, export.PDFFilename(t.ID), &buf)
}
