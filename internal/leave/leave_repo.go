package leave

import (
	"context"
	"database/sql"

	"go-hris-leave/internal/shared/connection"
	"go-hris-leave/internal/tenant"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	// SaveLeaveRequest inserts the request together with its days.
	SaveLeaveRequest(ctx context.Context, req *LeaveRequest) error
	SaveComment(ctx context.Context, comment *LeaveRequestComment) error
	FindLeaveType(ctx context.Context, companyID, id string) (*LeaveType, error)
	EmployeeBelongsToCompany(ctx context.Context, companyID, employeeID string) (bool, error)
	FindAllByCompany(ctx context.Context, companyID string) ([]LeaveRequest, error)
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*LeaveRequest, error)
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

func (r *repository) SaveLeaveRequest(ctx context.Context, req *LeaveRequest) error {
	return connection.Conn(ctx, r.db, r.tx).
		Omit("LeaveType", "Comments").
		Create(req).Error
}

func (r *repository) SaveComment(ctx context.Context, comment *LeaveRequestComment) error {
	return connection.Conn(ctx, r.db, r.tx).Create(comment).Error
}

func (r *repository) FindLeaveType(ctx context.Context, companyID, id string) (*LeaveType, error) {
	var lt LeaveType
	err := connection.Conn(ctx, r.db, r.tx).
		Scopes(tenant.Scope(companyID)).
		First(&lt, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &lt, nil
}

func (r *repository) EmployeeBelongsToCompany(ctx context.Context, companyID, employeeID string) (bool, error) {
	var count int64
	err := connection.Conn(ctx, r.db, r.tx).
		Table("employees").
		Where("id = ?", employeeID).
		Scopes(tenant.Scope(companyID)).
		Where("deleted_at IS NULL").
		Count(&count).Error
	return count > 0, err
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]LeaveRequest, error) {
	var requests []LeaveRequest
	err := r.db.WithContext(ctx).
		Preload("LeaveType").
		Preload("Days", func(db *gorm.DB) *gorm.DB { return db.Order("date ASC") }).
		Scopes(tenant.Scope(companyID)).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*LeaveRequest, error) {
	var req LeaveRequest
	err := r.db.WithContext(ctx).
		Preload("LeaveType").
		Preload("Days", func(db *gorm.DB) *gorm.DB { return db.Order("date ASC") }).
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Scopes(tenant.Scope(companyID)).
		First(&req, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}
