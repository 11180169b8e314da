package entitlement

import (
	"context"
	"database/sql"
	"time"

	"go-hris-leave/internal/shared/connection"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	// FindForUpdate returns the entitlements overlapping [from, to] oldest
	// first, row locked until the surrounding transaction ends.
	FindForUpdate(ctx context.Context, employeeID, leaveTypeID string, from, to time.Time) ([]Entitlement, error)
	AddDaysUsed(ctx context.Context, id uuid.UUID, days decimal.Decimal) error
	CreateUsages(ctx context.Context, usages []Usage) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) FindForUpdate(ctx context.Context, employeeID, leaveTypeID string, from, to time.Time) ([]Entitlement, error) {
	var entitlements []Entitlement
	err := connection.Conn(ctx, r.db, r.tx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("employee_id = ? AND leave_type_id = ?", employeeID, leaveTypeID).
		Where("from_date <= ? AND to_date >= ?", to, from).
		Order("from_date ASC, created_at ASC").
		Find(&entitlements).Error
	return entitlements, err
}

func (r *repository) AddDaysUsed(ctx context.Context, id uuid.UUID, days decimal.Decimal) error {
	return connection.Conn(ctx, r.db, r.tx).
		Model(&Entitlement{}).
		Where("id = ?", id).
		Update("days_used", gorm.Expr("days_used + ?", days)).Error
}

func (r *repository) CreateUsages(ctx context.Context, usages []Usage) error {
	if len(usages) == 0 {
		return nil
	}
	return connection.Conn(ctx, r.db, r.tx).Create(&usages).Error
}
