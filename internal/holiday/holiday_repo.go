package holiday

import (
	"context"

	"go-hris-leave/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=holiday_repo.go -destination=mock/holiday_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, h *Holiday) error
	// FindByCompanyYear returns the holidays dated in year plus every recurring
	// holiday of the company, whatever year it was first recorded in.
	FindByCompanyYear(ctx context.Context, companyID string, year int) ([]Holiday, error)
	ExistsOnDate(ctx context.Context, companyID string, date string) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, h *Holiday) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *repository) FindByCompanyYear(ctx context.Context, companyID string, year int) ([]Holiday, error) {
	var holidays []Holiday
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("(EXTRACT(YEAR FROM date) = ? OR recurring = ?)", year, true).
		Order("date ASC").
		Find(&holidays).Error
	return holidays, err
}

func (r *repository) ExistsOnDate(ctx context.Context, companyID string, date string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Holiday{}).
		Scopes(tenant.Scope(companyID)).
		Where("date = ?", date).
		Count(&count).Error
	return count > 0, err
}
