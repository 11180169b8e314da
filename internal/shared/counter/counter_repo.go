package counter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go-hris-leave/internal/shared/connection"

	"gorm.io/gorm"
)

// Sequence is a per-company numbering series rendered as PREFIX-000123.
type Sequence struct {
	Kind   string
	Prefix string
	Width  int
}

var LeaveRequestSequence = Sequence{Kind: "leave_request", Prefix: "LR", Width: 6}

func (s Sequence) Format(n int64) string {
	return fmt.Sprintf("%s-%0*d", s.Prefix, s.Width, n)
}

var errEmptyCompany = errors.New("counter: company id is required")

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	// NextReference allocates the next number of seq for the company and
	// returns it formatted. Inside a transaction the row stays locked until
	// commit, so two applications never share a reference.
	NextReference(ctx context.Context, companyID string, seq Sequence) (string, error)
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

const nextValueQuery = `
INSERT INTO company_counters (company_id, counter_type, last_value, updated_at)
VALUES (?, ?, 1, now())
ON CONFLICT (company_id, counter_type)
DO UPDATE SET last_value = company_counters.last_value + 1, updated_at = now()
RETURNING last_value`

func (r *repository) NextReference(ctx context.Context, companyID string, seq Sequence) (string, error) {
	if companyID == "" {
		return "", errEmptyCompany
	}

	var value int64
	err := connection.Conn(ctx, r.db, r.tx).Raw(nextValueQuery, companyID, seq.Kind).Scan(&value).Error
	if err != nil {
		return "", fmt.Errorf("next %s number: %w", seq.Kind, err)
	}
	return seq.Format(value), nil
}
