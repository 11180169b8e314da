package rbac

import (
	"context"

	"go-hris-leave/internal/tenant"

	"gorm.io/gorm"
)

type Repository interface {
	GetEmployeeRoles(ctx context.Context, companyID string) ([]EmployeeRoleRow, error)
	GetRolePermissions(ctx context.Context, companyID string) ([]RolePermissionRow, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Roles are grouped by name so workflow transitions can reference them
// without knowing company specific role ids.
type EmployeeRoleRow struct {
	EmployeeID string
	RoleName   string
}

type RolePermissionRow struct {
	RoleName string
	Resource string
	Action   string
}

func (r *repository) GetEmployeeRoles(ctx context.Context, companyID string) ([]EmployeeRoleRow, error) {
	var result []EmployeeRoleRow

	err := r.db.WithContext(ctx).
		Table("employee_roles").
		Select("employee_roles.employee_id, roles.name AS role_name").
		Joins("JOIN roles ON roles.id = employee_roles.role_id").
		Scopes(tenant.TableScope("roles", companyID)).
		Scan(&result).Error

	return result, err
}

func (r *repository) GetRolePermissions(ctx context.Context, companyID string) ([]RolePermissionRow, error) {
	var result []RolePermissionRow

	err := r.db.WithContext(ctx).
		Table("role_permissions").
		Select("roles.name AS role_name, permissions.resource, permissions.action").
		Joins("JOIN roles ON roles.id = role_permissions.role_id").
		Joins("JOIN permissions ON permissions.id = role_permissions.permission_id").
		Scopes(tenant.TableScope("roles", companyID)).
		Scan(&result).Error

	return result, err
}
