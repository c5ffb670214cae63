package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/LLAppelOffre/llao-application/db"
	"github.com/LLAppelOffre/llao-application/internal/handlers"
	"github.com/LLAppelOffre/llao-application/models"
)

var _ handlers.StorageInterface = (*MockStorage)(nil)

// MockStorage реализует StorageInterface в памяти
type MockStorage struct {
	mu         sync.Mutex
	users      map[string]models.User
	tenders    map[int]models.Tender
	reports    map[int][]models.Report
	favorites  map[string]map[int]bool
	dashboards map[int]models.Dashboard
	nextID     int

	pingErr       error
	lastStatistic string
	lastFilter    db.TenderFilter
}

func NewMockStorage() *MockStorage {
	return &MockStorage{
		users:      map[string]models.User{},
		tenders:    map[int]models.Tender{},
		reports:    map[int][]models.Report{},
		favorites:  map[string]map[int]bool{},
		dashboards: map[int]models.Dashboard{},
		nextID:     1,
	}
}

func (m *MockStorage) id() int {
	id := m.nextID
	m.nextID++
	return id
}

func (m *MockStorage) Ping(ctx context.Context) error { return m.pingErr }

func (m *MockStorage) CreateUser(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Username]; ok {
		return db.ErrUsernameTaken
	}
	u.ID = m.id()
	u.DateCreation = time.Now()
	m.users[u.Username] = *u
	return nil
}

func (m *MockStorage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &u, nil
}

func (m *MockStorage) UpdateUserPassword(ctx context.Context, username, hashedPassword string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return db.ErrNotFound
	}
	u.HashedPassword = hashedPassword
	m.users[username] = u
	return nil
}

func (m *MockStorage) SetUserDisabled(ctx context.Context, username string, disabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return db.ErrNotFound
	}
	u.Disabled = disabled
	m.users[username] = u
	return nil
}

func (m *MockStorage) DeleteUser(ctx context.Context, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[username]; !ok {
		return db.ErrNotFound
	}
	delete(m.users, username)
	return nil
}

func (m *MockStorage) ListTenders(ctx context.Context, f db.TenderFilter) ([]models.Tender, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastFilter = f
	tenders := []models.Tender{}
	for _, t := range m.tenders {
		if f.Categorie != "" && t.Categorie != f.Categorie {
			continue
		}
		tenders = append(tenders, t)
	}
	sort.Slice(tenders, func(i, j int) bool { return tenders[i].ID < tenders[j].ID })
	return tenders, nil
}

func (m *MockStorage) GetTender(ctx context.Context, id int) (*models.Tender, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tenders[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &t, nil
}

func (m *MockStorage) SearchTenders(ctx context.Context, q string, limit int) ([]models.TenderRef, error) {
	return []models.TenderRef{{ID: 1, NomAO: "match " + q}}, nil
}

func (m *MockStorage) GetFilterOptions(ctx context.Context) (*models.FilterOptions, error) {
	return &models.FilterOptions{Categories: []string{"IT"}, Statuts: []string{models.StatusWon}, Poles: []string{"Nord"}}, nil
}

func (m *MockStorage) ListReports(ctx context.Context, tenderID int) ([]models.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	reports := m.reports[tenderID]
	if reports == nil {
		reports = []models.Report{}
	}
	return reports, nil
}

func (m *MockStorage) Statistic(ctx context.Context, name string, f db.TenderFilter) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastStatistic = name
	m.lastFilter = f
	if name != "stats/gagne-perdu" {
		return nil, fmt.Errorf("%w: %s", db.ErrUnknownStatistic, name)
	}
	return []models.KeyCount{{Key: models.StatusWon, Count: 3}}, nil
}

func (m *MockStorage) AddFavorite(ctx context.Context, username string, tenderID int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tenders[tenderID]; !ok {
		return false, db.ErrNotFound
	}
	if m.favorites[username] == nil {
		m.favorites[username] = map[int]bool{}
	}
	if m.favorites[username][tenderID] {
		return false, nil
	}
	m.favorites[username][tenderID] = true
	return true, nil
}

func (m *MockStorage) RemoveFavorite(ctx context.Context, username string, tenderID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.favorites[username], tenderID)
	return nil
}

func (m *MockStorage) ListFavoriteTenders(ctx context.Context, username string) ([]models.Tender, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tenders := []models.Tender{}
	for id := range m.favorites[username] {
		tenders = append(tenders, m.tenders[id])
	}
	return tenders, nil
}

// cloneDashboard имитирует запись и чтение JSONB
func cloneDashboard(d models.Dashboard) models.Dashboard {
	data, err := json.Marshal(d)
	if err != nil {
		panic(err)
	}
	var out models.Dashboard
	if err := json.Unmarshal(data, &out); err != nil {
		panic(err)
	}
	return out
}

func (m *MockStorage) ListDashboards(ctx context.Context, username string) ([]models.Dashboard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	dashboards := []models.Dashboard{}
	for _, d := range m.dashboards {
		if d.UserID == username {
			dashboards = append(dashboards, cloneDashboard(d))
		}
	}
	sort.Slice(dashboards, func(i, j int) bool { return dashboards[i].ID < dashboards[j].ID })
	return dashboards, nil
}

func (m *MockStorage) GetDashboard(ctx context.Context, id int, username string) (*models.Dashboard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.dashboards[id]
	if !ok || d.UserID != username {
		return nil, db.ErrNotFound
	}
	out := cloneDashboard(d)
	return &out, nil
}

func (m *MockStorage) CreateDashboard(ctx context.Context, d *models.Dashboard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d.ID = m.id()
	d.DateCreation = time.Now().UTC()
	d.DateMaj = d.DateCreation
	m.dashboards[d.ID] = cloneDashboard(*d)
	return nil
}

func (m *MockStorage) UpdateDashboard(ctx context.Context, d *models.Dashboard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.dashboards[d.ID]
	if !ok || stored.UserID != d.UserID {
		return db.ErrNotFound
	}
	next := cloneDashboard(*d)
	stored.Nom = next.Nom
	stored.Graphiques = next.Graphiques
	stored.DateMaj = time.Now().UTC()
	d.DateMaj = stored.DateMaj
	m.dashboards[d.ID] = stored
	return nil
}

func (m *MockStorage) SaveGlobalFilters(ctx context.Context, d *models.Dashboard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.dashboards[d.ID]
	if !ok || stored.UserID != d.UserID {
		return db.ErrNotFound
	}
	stored.FiltresGlobaux = cloneDashboard(*d).FiltresGlobaux
	m.dashboards[d.ID] = stored
	return nil
}

func (m *MockStorage) DeleteDashboard(ctx context.Context, id int, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.dashboards[id]
	if !ok || d.UserID != username {
		return db.ErrNotFound
	}
	delete(m.dashboards, id)
	return nil
}
