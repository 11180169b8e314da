package app

import (
	"context"
	"fmt"

	"go-hris-leave/internal/entitlement"
	"go-hris-leave/internal/holiday"
	"go-hris-leave/internal/leave"
	"go-hris-leave/internal/workflow"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// sharedTables are owned by the wider HRIS and read here through raw SQL.
var sharedTables = []string{
	`CREATE TABLE IF NOT EXISTS employees (
		id uuid PRIMARY KEY,
		company_id uuid NOT NULL,
		deleted_at timestamptz
	)`,
	`CREATE TABLE IF NOT EXISTS roles (
		id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		company_id uuid NOT NULL,
		name varchar(100) NOT NULL,
		UNIQUE (company_id, name)
	)`,
	`CREATE TABLE IF NOT EXISTS permissions (
		id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		resource varchar(100) NOT NULL,
		action varchar(50) NOT NULL,
		UNIQUE (resource, action)
	)`,
	`CREATE TABLE IF NOT EXISTS employee_roles (
		employee_id uuid NOT NULL,
		role_id uuid NOT NULL REFERENCES roles(id),
		PRIMARY KEY (employee_id, role_id)
	)`,
	`CREATE TABLE IF NOT EXISTS role_permissions (
		role_id uuid NOT NULL REFERENCES roles(id),
		permission_id uuid NOT NULL REFERENCES permissions(id),
		PRIMARY KEY (role_id, permission_id)
	)`,
	`CREATE TABLE IF NOT EXISTS company_counters (
		company_id uuid NOT NULL,
		counter_type varchar(50) NOT NULL,
		last_value bigint NOT NULL DEFAULT 0,
		updated_at timestamptz NOT NULL DEFAULT now(),
		PRIMARY KEY (company_id, counter_type)
	)`,
	`CREATE TABLE IF NOT EXISTS outbox_events (
		id uuid PRIMARY KEY,
		request_id varchar(100),
		aggregate_type varchar(100) NOT NULL,
		aggregate_id varchar(100) NOT NULL,
		event_type varchar(100) NOT NULL,
		topic varchar(200) NOT NULL,
		payload jsonb NOT NULL,
		status varchar(20) NOT NULL DEFAULT 'PENDING',
		retry_count int NOT NULL DEFAULT 0,
		next_retry_at timestamptz,
		error_message text,
		processed_at timestamptz,
		created_at timestamptz NOT NULL DEFAULT now(),
		updated_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_outbox_events_pending ON outbox_events (status, next_retry_at)`,
}

// Migrate creates the leave schema. It is safe to run on every start.
func Migrate(ctx context.Context, db *gorm.DB, logger *zap.Logger) error {
	for _, stmt := range sharedTables {
		if err := db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("create shared table: %w", err)
		}
	}

	err := db.WithContext(ctx).AutoMigrate(
		&holiday.Holiday{},
		&workflow.Transition{},
		&leave.LeaveType{},
		&leave.LeaveRequest{},
		&leave.Leave{},
		&leave.LeaveRequestComment{},
		&entitlement.Entitlement{},
		&entitlement.Usage{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	logger.Named("app.migrate").Info("schema migrated")
	return nil
}
