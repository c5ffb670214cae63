// Package dashboard изменяет список виджетов дашборда в памяти.
// Сохранение делает вызывающий код.
package dashboard

import (
	"errors"

	"github.com/LLAppelOffre/llao-application/models"
	"github.com/google/uuid"
)

var ErrChartNotFound = errors.New("chart not found in dashboard")

// NewInstanceID генерирует идентификатор экземпляра виджета
var NewInstanceID = func() string {
	return uuid.NewString()
}

// Prepare готовит виджеты от клиента: уникальные id экземпляров и чистые фильтры.
func Prepare(charts models.Charts) models.Charts {
	out := make(models.Charts, 0, len(charts))
	seen := make(map[string]struct{}, len(charts))
	for _, c := range charts {
		c.InstanceID = uniqueID(c.InstanceID, seen)
		c.Filtres = models.CleanFilters(c.Filtres)
		out = append(out, c)
	}
	return out
}

// EnsureInstanceIDs проставляет id виджетам без него или с повтором.
// Первый виджет с данным id его сохраняет.
// Возвращает число измененных виджетов.
func EnsureInstanceIDs(d *models.Dashboard) int {
	n := 0
	seen := make(map[string]struct{}, len(d.Graphiques))
	for i := range d.Graphiques {
		id := uniqueID(d.Graphiques[i].InstanceID, seen)
		if id != d.Graphiques[i].InstanceID {
			d.Graphiques[i].InstanceID = id
			n++
		}
	}
	return n
}

func uniqueID(id string, seen map[string]struct{}) string {
	_, dup := seen[id]
	for id == "" || dup {
		id = NewInstanceID()
		_, dup = seen[id]
	}
	seen[id] = struct{}{}
	return id
}

// AddChart добавляет виджет в конец списка и возвращает его с новым instance_id.
func AddChart(d *models.Dashboard, c models.Chart) models.Chart {
	c.InstanceID = NewInstanceID()
	c.Filtres = models.CleanFilters(c.Filtres)
	d.Graphiques = append(d.Graphiques, c)
	return c
}

// RemoveChart удаляет виджет по instance_id.
func RemoveChart(d *models.Dashboard, instanceID string) error {
	EnsureInstanceIDs(d)

	kept := make(models.Charts, 0, len(d.Graphiques))
	for _, c := range d.Graphiques {
		if c.InstanceID != instanceID {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(d.Graphiques) {
		return ErrChartNotFound
	}
	d.Graphiques = kept
	return nil
}

// Изменения ищут виджеты по chart_id (типу графика), а не по instance_id:
// меняются все виджеты этого типа.
func updateByChartID(d *models.Dashboard, chartID string, apply func(c *models.Chart)) error {
	EnsureInstanceIDs(d)

	updated := false
	for i := range d.Graphiques {
		if d.Graphiques[i].ChartID == chartID {
			apply(&d.Graphiques[i])
			updated = true
		}
	}
	if !updated {
		return ErrChartNotFound
	}
	return nil
}

func UpdateChartFilters(d *models.Dashboard, chartID string, filters map[string]any) error {
	cleaned := models.CleanFilters(filters)
	return updateByChartID(d, chartID, func(c *models.Chart) {
		c.Filtres = models.CleanFilters(cleaned)
	})
}

func UpdateChartTitle(d *models.Dashboard, chartID, title string) error {
	return updateByChartID(d, chartID, func(c *models.Chart) {
		c.CustomTitle = &title
	})
}

func UpdateChartText(d *models.Dashboard, chartID, text string) error {
	return updateByChartID(d, chartID, func(c *models.Chart) {
		c.Text = &text
	})
}

// ApplyLayout переносит геометрию на виджеты с совпадающим instance_id.
// Неизвестные id игнорируются, остальные виджеты не меняются, порядок сохраняется.
func ApplyLayout(d *models.Dashboard, layout []models.LayoutItem) {
	EnsureInstanceIDs(d)

	byInstance := make(map[string]*models.Chart, len(d.Graphiques))
	for i := range d.Graphiques {
		byInstance[d.Graphiques[i].InstanceID] = &d.Graphiques[i]
	}

	for _, item := range layout {
		c, ok := byInstance[item.InstanceID]
		if !ok {
			continue
		}
		x, y, w, h := item.X, item.Y, item.W, item.H
		c.X, c.Y, c.W, c.H = &x, &y, &w, &h
	}
}
