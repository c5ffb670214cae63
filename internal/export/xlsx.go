package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/LLAppelOffre/llao-application/models"
	"github.com/xuri/excelize/v2"
)

const (
	SheetName        = "AppelsOffres"
	XLSXContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	XLSXFilename     = "appels_offres.xlsx"
	defaultSheetName = "Sheet1"
)

var xlsxColumns = []string{
	"_id", "nom_ao", "categorie", "pole", "statut", "date_emission", "date_reponse", "annee_trimestre",
	"prix_client", "prix_gagnant", "positionnement_prix", "note_technique", "note_prix", "score_client",
	"score_gagnant", "delai_jours", "tranche_delai", "ecart_score", "ecart_prix", "commentaires_ia",
	"raison_perte", "equipe_projet", "date_creation", "date_maj",
}

func xlsxRow(t *models.Tender) []any {
	return []any{
		strconv.Itoa(t.ID), t.NomAO, t.Categorie, t.Pole, t.Statut,
		formatDate(&t.DateEmission), formatDate(t.DateReponse), formatString(t.AnneeTrimestre),
		floatCell(t.PrixClient), floatCell(t.PrixGagnant), formatString(t.PositionnementPrix),
		floatCell(t.NoteTechnique), floatCell(t.NotePrix), floatCell(t.ScoreClient),
		floatCell(t.ScoreGagnant), intCell(t.DelaiJours), formatString(t.TrancheDelai),
		floatCell(t.EcartScore), floatCell(t.EcartPrix), formatString(t.CommentairesIA),
		formatString(t.RaisonPerte), formatTeam(t.EquipeProjet),
		t.DateCreation.Format("2006-01-02 15:04:05"), t.DateMaj.Format("2006-01-02 15:04:05"),
	}
}

// числа пишутся числами, отсутствующие значения пустыми ячейками
func floatCell(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func intCell(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

// WriteTendersXLSX пишет тендеры в книгу с листом AppelsOffres: заголовок и строка на тендер
func WriteTendersXLSX(w io.Writer, tenders []models.Tender) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(defaultSheetName, SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(xlsxColumns))
	for i, c := range xlsxColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	if err := f.SetRowStyle(SheetName, 1, 1, bold); err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	for i := range tenders {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := xlsxRow(&tenders[i])
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
