package export

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/LLAppelOffre/llao-application/models"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func ptr[T any](v T) *T { return &v }

func sampleTender() models.Tender {
	return models.Tender{
		ID:           12,
		NomAO:        "Refonte portail",
		Categorie:    "IT",
		Pole:         "Nord",
		Statut:       models.StatusWon,
		DateEmission: time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC),
		PrixClient:   ptr(45000.5),
		DelaiJours:   ptr(12),
		EquipeProjet: models.Team{{Nom: "Alice", Role: "Chef de projet"}},
	}
}

func TestWriteTendersXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTendersXLSX(&buf, []models.Tender{sampleTender()}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{SheetName}, f.GetSheetList())
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, xlsxColumns[:5], rows[0][:5])
	require.Equal(t, "12", rows[1][0])
	require.Equal(t, "Refonte portail", rows[1][1])
	require.Equal(t, "2024-02-10", rows[1][5])
	require.Equal(t, "45000.5", rows[1][8])
	require.Equal(t, "Alice (Chef de projet)", rows[1][21])
}

func TestTenderFieldsSkipEmpty(t *testing.T) {
	tender := sampleTender()
	var printed []string
	for _, f := range tenderFields(&tender) {
		if f.value != "" {
			printed = append(printed, f.label)
		}
	}
	require.Equal(t, []string{"Catégorie", "Pôle", "Statut", "Date émission", "Prix client", "Délai (jours)"}, printed)
}

func TestWriteTenderPDF(t *testing.T) {
	tender := sampleTender()
	var buf bytes.Buffer
	require.NoError(t, WriteTenderPDF(&buf, &tender))
	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
	require.Equal(t, "fiche_ao_12.pdf", PDFFilename(tender.ID))
}

func TestTenderPDFBreaksPages(t *testing.T) {
	tender := sampleTender()
	for i := 0; i < 60; i++ {
		tender.EquipeProjet = append(tender.EquipeProjet, models.TeamMember{Nom: fmt.Sprintf("Membre %d", i), Role: "Consultant"})
	}
	pdf := renderTenderPDF(&tender)
	require.NoError(t, pdf.Error())
	require.Greater(t, pdf.PageCount(), 1)
}
