package models

// Результаты статистических запросов по тендерам.
// Ключ группировки отдается в поле _id.

type KeyCount struct {
	Key   string `db:"key" json:"_id"`
	Count int    `db:"count" json:"count"`
}

type SuccessRate struct {
	Key        string  `db:"key" json:"_id"`
	Total      int     `db:"total" json:"total"`
	Gagne      int     `db:"gagne" json:"gagne"`
	TauxSucces float64 `db:"taux_succes" json:"taux_succes"`
}

type MonthKey struct {
	Mois    string `db:"mois" json:"mois"`
	Annee   string `db:"annee" json:"annee"`
	MoisNum string `db:"mois_num" json:"mois_num"`
	Statut  string `db:"statut" json:"statut"`
}

type MonthlyStatus struct {
	ID    MonthKey `json:"_id"`
	Count int      `json:"count"`
}

// StatusBreakdown число тендеров по паре (группа, статус)
type StatusBreakdown struct {
	ID    map[string]string `json:"_id"`
	Count int               `json:"count"`
}

type DelayStats struct {
	Key        string   `db:"key" json:"_id"`
	DelaiMoyen *float64 `db:"delai_moyen" json:"delai_moyen"`
	DelaiMin   *float64 `db:"delai_min" json:"delai_min"`
	DelaiMax   *float64 `db:"delai_max" json:"delai_max"`
	Count      int      `db:"count" json:"count"`
}

type ScoreStats struct {
	Key         string   `db:"key" json:"_id"`
	NoteMoyenne *float64 `db:"note_moyenne" json:"note_moyenne"`
	NoteMin     *float64 `db:"note_min" json:"note_min"`
	NoteMax     *float64 `db:"note_max" json:"note_max"`
	Count       int      `db:"count" json:"count"`
}

type QualitativeScores struct {
	Key                  string   `db:"key" json:"_id"`
	NoteTechniqueMoyenne *float64 `db:"note_technique_moyenne" json:"note_technique_moyenne"`
	NotePrixMoyenne      *float64 `db:"note_prix_moyenne" json:"note_prix_moyenne"`
	Count                int      `db:"count" json:"count"`
}

type PriceStats struct {
	Key            string   `db:"key" json:"_id"`
	PrixMoyen      *float64 `db:"prix_moyen" json:"prix_moyen"`
	PrixMin        *float64 `db:"prix_min" json:"prix_min"`
	PrixMax        *float64 `db:"prix_max" json:"prix_max"`
	EcartPrixMoyen *float64 `db:"ecart_prix_moyen" json:"ecart_prix_moyen"`
	Count          int      `db:"count" json:"count"`
}

// ComparisonStats статистика по сохраненному ecart_score
type ComparisonStats struct {
	Key             string   `db:"key" json:"_id"`
	EcartScoreMoyen *float64 `db:"ecart_score_moyen" json:"ecart_score_moyen"`
	EcartScoreMin   *float64 `db:"ecart_score_min" json:"ecart_score_min"`
	EcartScoreMax   *float64 `db:"ecart_score_max" json:"ecart_score_max"`
	Count           int      `db:"count" json:"count"`
}

// GapStats статистика по score_gagnant - score_client
type GapStats struct {
	Key        string   `db:"key" json:"_id"`
	EcartMoyen *float64 `db:"ecart_moyen" json:"ecart_moyen"`
	EcartMin   *float64 `db:"ecart_min" json:"ecart_min"`
	EcartMax   *float64 `db:"ecart_max" json:"ecart_max"`
	Count      int      `db:"count" json:"count"`
}

type TenderDelay struct {
	ID         int    `db:"id" json:"_id"`
	NomAO      string `db:"nom_ao" json:"nom_ao"`
	DelaiJours *int   `db:"delai_jours" json:"delai_jours"`
	Categorie  string `db:"categorie" json:"categorie"`
	Statut     string `db:"statut" json:"statut"`
}

type TenderScore struct {
	ID            int      `db:"id" json:"_id"`
	NomAO         string   `db:"nom_ao" json:"nom_ao"`
	Categorie     string   `db:"categorie" json:"categorie"`
	NoteTechnique *float64 `db:"note_technique" json:"note_technique"`
	NotePrix      *float64 `db:"note_prix" json:"note_prix,omitempty"`
	Statut        string   `db:"statut" json:"statut"`
}

type TenderPrice struct {
	ID          int      `db:"id" json:"_id"`
	NomAO       string   `db:"nom_ao" json:"nom_ao"`
	Categorie   string   `db:"categorie" json:"categorie"`
	PrixClient  *float64 `db:"prix_client" json:"prix_client"`
	PrixGagnant *float64 `db:"prix_gagnant" json:"prix_gagnant"`
	Statut      string   `db:"statut" json:"statut"`
}

type TenderGap struct {
	ID           int      `db:"id" json:"_id"`
	NomAO        string   `db:"nom_ao" json:"nom_ao"`
	Categorie    string   `db:"categorie" json:"categorie"`
	EcartScore   *float64 `db:"ecart_score" json:"ecart_score"`
	ScoreClient  *float64 `db:"score_client" json:"score_client,omitempty"`
	ScoreGagnant *float64 `db:"score_gagnant" json:"score_gagnant,omitempty"`
	Statut       string   `db:"statut" json:"statut"`
}
