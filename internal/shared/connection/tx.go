package connection

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// Conn returns a gorm session bound to ctx that runs on tx when one is given.
// Repositories use it so WithTx(tx) actually routes their queries through the
// service-owned *sql.Tx.
func Conn(ctx context.Context, db *gorm.DB, tx *sql.Tx) *gorm.DB {
	session := db.WithContext(ctx)
	if tx != nil {
		session.Statement.ConnPool = tx
	}
	return session
}
