package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Роли пользователей
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// StatusWon статус выигранного тендера
const StatusWon = "Gagné"

// Сущность Тендера (appel d'offres)
type Tender struct {
	ID                 int        `db:"id" json:"_id"`
	NomAO              string     `db:"nom_ao" json:"nom_ao"`
	Categorie          string     `db:"categorie" json:"categorie"`
	Pole               string     `db:"pole" json:"pole"`
	Statut             string     `db:"statut" json:"statut"`
	DateEmission       time.Time  `db:"date_emission" json:"date_emission"`
	DateReponse        *time.Time `db:"date_reponse" json:"date_reponse,omitempty"`
	AnneeTrimestre     *string    `db:"annee_trimestre" json:"annee_trimestre,omitempty"`
	PrixClient         *float64   `db:"prix_client" json:"prix_client,omitempty"`
	PrixGagnant        *float64   `db:"prix_gagnant" json:"prix_gagnant,omitempty"`
	PositionnementPrix *string    `db:"positionnement_prix" json:"positionnement_prix,omitempty"`
	NoteTechnique      *float64   `db:"note_technique" json:"note_technique,omitempty"`
	NotePrix           *float64   `db:"note_prix" json:"note_prix,omitempty"`
	ScoreClient        *float64   `db:"score_client" json:"score_client,omitempty"`
	ScoreGagnant       *float64   `db:"score_gagnant" json:"score_gagnant,omitempty"`
	DelaiJours         *int       `db:"delai_jours" json:"delai_jours,omitempty"`
	TrancheDelai       *string    `db:"tranche_delai" json:"tranche_delai,omitempty"`
	EcartScore         *float64   `db:"ecart_score" json:"ecart_score,omitempty"`
	EcartPrix          *float64   `db:"ecart_prix" json:"ecart_prix,omitempty"`
	CommentairesIA     *string    `db:"commentaires_ia" json:"commentaires_ia,omitempty"`
	RaisonPerte        *string    `db:"raison_perte" json:"raison_perte,omitempty"`
	EquipeProjet       Team       `db:"equipe_projet" json:"equipe_projet,omitempty"`
	DateCreation       time.Time  `db:"date_creation" json:"date_creation"`
	DateMaj            time.Time  `db:"date_maj" json:"date_maj"`
}

// TeamMember участник проектной команды тендера
type TeamMember struct {
	Nom  string `json:"nom"`
	Role string `json:"role"`
}

// Team проектная команда, хранится в JSONB
type Team []TeamMember

// Scan не падает на битом equipe_projet: команда просто пустая.
func (t *Team) Scan(src any) error {
	data, err := jsonBytes(src)
	if err != nil {
		return err
	}
	var team []TeamMember
	if data != nil && json.Unmarshal(data, &team) != nil {
		team = nil
	}
	*t = team
	return nil
}

func (t Team) Value() (driver.Value, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]TeamMember(t))
}

// TenderRef короткая ссылка на тендер для поиска
type TenderRef struct {
	ID    int    `db:"id" json:"_id"`
	NomAO string `db:"nom_ao" json:"nom_ao"`
}

// FilterOptions значения для выпадающих фильтров
type FilterOptions struct {
	Categories []string `json:"categories"`
	Statuts    []string `json:"statuts"`
	Poles      []string `json:"poles"`
}

// Report отчет ИИ, привязанный к тендеру
type Report struct {
	ID        int       `db:"id" json:"_id"`
	AOID      int       `db:"ao_id" json:"ao_id"`
	Titre     string    `db:"titre" json:"titre"`
	Contenu   string    `db:"contenu" json:"contenu"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Сущность Пользователя
type User struct {
	ID             int       `db:"id" json:"id"`
	Username       string    `db:"username" json:"username"`
	FullName       *string   `db:"full_name" json:"full_name"`
	Role           string    `db:"role" json:"role"`
	Disabled       bool      `db:"disabled" json:"disabled"`
	HashedPassword string    `db:"hashed_password" json:"-"`
	DateCreation   time.Time `db:"date_creation" json:"date_creation"`
}

// IsAdmin проверяет роль администратора
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Favorite связь пользователя с тендером
type Favorite struct {
	UserID    string    `db:"user_id" json:"user_id"`
	AOID      int       `db:"ao_id" json:"ao_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
