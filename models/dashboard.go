package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Ключи фильтров-дат хранятся строкой, остальные фильтры списком.
var dateFilterKeys = map[string]bool{
	"dateDebut": true,
	"dateFin":   true,
}

// Filters набор фильтров графика или дашборда.
// Значение: string для дат и []string для остальных ключей.
type Filters map[string]any

// CleanFilters приводит произвольный ввод к нормальной форме Filters.
// Повторный вызов на результате ничего не меняет.
func CleanFilters(in map[string]any) Filters {
	cleaned := Filters{}
	for key, value := range in {
		if dateFilterKeys[key] {
			cleaned[key] = firstString(value)
			continue
		}
		cleaned[key] = stringList(value)
	}
	return cleaned
}

func firstString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []string:
		if len(val) > 0 {
			return val[0]
		}
	case []any:
		if len(val) > 0 {
			if s, ok := val[0].(string); ok {
				return s
			}
		}
	}
	return ""
}

func stringList(v any) []string {
	switch val := v.(type) {
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			} else if item != nil {
				out = append(out, fmt.Sprint(item))
			}
		}
		return out
	case string:
		if val != "" {
			return []string{val}
		}
	}
	return []string{}
}

func (f Filters) MarshalJSON() ([]byte, error) {
	if f == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]any(f))
}

// UnmarshalJSON нормализует фильтры сразу при разборе.
func (f *Filters) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*f = CleanFilters(raw)
	return nil
}

func (f Filters) Value() (driver.Value, error) {
	return json.Marshal(f)
}

func (f *Filters) Scan(src any) error {
	data, err := jsonBytes(src)
	if err != nil {
		return err
	}
	if data == nil {
		*f = Filters{}
		return nil
	}
	return json.Unmarshal(data, f)
}

// Chart виджет дашборда
type Chart struct {
	ChartID     string  `json:"chart_id" validate:"required"`
	Titre       string  `json:"titre"`
	InstanceID  string  `json:"instance_id,omitempty"`
	Filtres     Filters `json:"filtres"`
	Text        *string `json:"text,omitempty"`
	CustomTitle *string `json:"customTitle,omitempty"`
	X           *int    `json:"x,omitempty"`
	Y           *int    `json:"y,omitempty"`
	W           *int    `json:"w,omitempty"`
	H           *int    `json:"h,omitempty"`
	Size        *string `json:"size,omitempty"`
	Height      *string `json:"height,omitempty"`
	Order       *int    `json:"order,omitempty"`
}

// Charts упорядоченный список виджетов, хранится в JSONB
type Charts []Chart

func (c Charts) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Chart(c))
}

func (c Charts) Value() (driver.Value, error) {
	return json.Marshal(c)
}

func (c *Charts) Scan(src any) error {
	data, err := jsonBytes(src)
	if err != nil {
		return err
	}
	if data == nil {
		*c = Charts{}
		return nil
	}
	var charts []Chart
	if err := json.Unmarshal(data, &charts); err != nil {
		return err
	}
	*c = charts
	return nil
}

// Dashboard пользовательский дашборд
type Dashboard struct {
	ID             int       `db:"id" json:"_id"`
	UserID         string    `db:"user_id" json:"user_id"`
	Nom            string    `db:"nom" json:"nom"`
	Graphiques     Charts    `db:"graphiques" json:"graphiques"`
	FiltresGlobaux Filters   `db:"filtres_globaux" json:"filtres_globaux"`
	DateCreation   time.Time `db:"date_creation" json:"date_creation"`
	DateMaj        time.Time `db:"date_maj" json:"date_maj"`
}

// LayoutItem новое положение виджета
type LayoutItem struct {
	InstanceID string `json:"instance_id" validate:"required"`
	X          int    `json:"x" validate:"min=0"`
	Y          int    `json:"y" validate:"min=0"`
	W          int    `json:"w" validate:"min=0"`
	H          int    `json:"h" validate:"min=0"`
}

func jsonBytes(src any) ([]byte, error) {
	switch v := src.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, errors.New("unsupported json column type")
	}
}
