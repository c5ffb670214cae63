package handlers

import (
	"context"

	"github.com/LLAppelOffre/llao-application/db"
	"github.com/LLAppelOffre/llao-application/models"
)

type StorageInterface interface {
	Ping(ctx context.Context) error

	CreateUser(ctx context.Context, u *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateUserPassword(ctx context.Context, username, hashedPassword string) error
	SetUserDisabled(ctx context.Context, username string, disabled bool) error
	DeleteUser(ctx context.Context, username string) error

	ListTenders(ctx context.Context, f db.TenderFilter) ([]models.Tender, error)
	GetTender(ctx context.Context, id int) (*models.Tender, error)
	SearchTenders(ctx context.Context, q string, limit int) ([]models.TenderRef, error)
	GetFilterOptions(ctx context.Context) (*models.FilterOptions, error)
	ListReports(ctx context.Context, tenderID int) ([]models.Report, error)
	Statistic(ctx context.Context, name string, f db.TenderFilter) (any, error)

	AddFavorite(ctx context.Context, username string, tenderID int) (bool, error)
	RemoveFavorite(ctx context.Context, username string, tenderID int) error
	ListFavoriteTenders(ctx context.Context, username string) ([]models.Tender, error)

	ListDashboards(ctx context.Context, username string) ([]models.Dashboard, error)
	GetDashboard(ctx context.Context, id int, username string) (*models.Dashboard, error)
	CreateDashboard(ctx context.Context, d *models.Dashboard) error
	UpdateDashboard(ctx context.Context, d *models.Dashboard) error
	SaveGlobalFilters(ctx context.Context, d *models.Dashboard) error
	DeleteDashboard(ctx context.Context, id int, username string) error
}
