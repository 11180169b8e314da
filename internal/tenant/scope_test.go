package tenant_test

import (
	"testing"

	"go-hris-leave/internal/tenant"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type row struct {
	ID        string
	CompanyID string
}

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{DryRun: true})
	require.NoError(t, err)
	return gormDB
}

func TestScope(t *testing.T) {
	db := dryRunDB(t)

	stmt := db.Table("holidays").Scopes(tenant.Scope("c-1")).Find(&[]row{}).Statement

	assert.Equal(t, `SELECT * FROM "holidays" WHERE company_id = $1`, stmt.SQL.String())
	assert.Equal(t, []interface{}{"c-1"}, stmt.Vars)
}

func TestTableScope(t *testing.T) {
	db := dryRunDB(t)

	stmt := db.Table("employee_roles").
		Joins("JOIN roles ON roles.id = employee_roles.role_id").
		Scopes(tenant.TableScope("roles", "c-2")).
		Find(&[]row{}).Statement

	assert.Contains(t, stmt.SQL.String(), "WHERE roles.company_id = $1")
	assert.Equal(t, []interface{}{"c-2"}, stmt.Vars)
}
