package export

import (
	"strconv"
	"strings"
	"time"

	"github.com/LLAppelOffre/llao-application/models"
)

const dateLayout = "2006-01-02"

type field struct {
	label string
	value string
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func formatDate(v *time.Time) string {
	if v == nil || v.IsZero() {
		return ""
	}
	return v.Format(dateLayout)
}

func formatTeam(team models.Team) string {
	parts := make([]string, 0, len(team))
	for _, m := range team {
		parts = append(parts, m.Nom+" ("+m.Role+")")
	}
	return strings.Join(parts, "; ")
}

// tenderFields поля карточки тендера в порядке вывода
func tenderFields(t *models.Tender) []field {
	return []field{
		{"Catégorie", t.Categorie},
		{"Pôle", t.Pole},
		{"Statut", t.Statut},
		{"Date émission", formatDate(&t.DateEmission)},
		{"Date réponse", formatDate(t.DateReponse)},
		{"Année/Trimestre", formatString(t.AnneeTrimestre)},
		{"Prix client", formatFloat(t.PrixClient)},
		{"Prix gagnant", formatFloat(t.PrixGagnant)},
		{"Positionnement prix", formatString(t.PositionnementPrix)},
		{"Note technique", formatFloat(t.NoteTechnique)},
		{"Note prix", formatFloat(t.NotePrix)},
		{"Score client", formatFloat(t.ScoreClient)},
		{"Score gagnant", formatFloat(t.ScoreGagnant)},
		{"Délai (jours)", formatInt(t.DelaiJours)},
		{"Tranche délai", formatString(t.TrancheDelai)},
		{"Ecart score", formatFloat(t.EcartScore)},
		{"Ecart prix", formatFloat(t.EcartPrix)},
		{"Commentaires IA", formatString(t.CommentairesIA)},
		{"Raison perte", formatString(t.RaisonPerte)},
	}
}
