package service

import (
	"context"
	"saasanalytics/database"

	"gorm.io/gorm"
)

// readOnly runs fn where the store refuses writes. PostgreSQL gets a
// READ ONLY transaction. SQLite has no such transaction mode, so fn runs on a
// pinned connection with query_only set, and the flag is cleared again before
// the connection goes back to the pool.
func readOnly(ctx context.Context, db *gorm.DB, dialect string, fn func(tx *gorm.DB) error) error {
	db = db.WithContext(ctx)

	if dialect == database.DialectPostgres {
		return db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec("SET TRANSACTION READ ONLY").Error; err != nil {
				return err
			}
			return fn(tx)
		})
	}

	return db.Connection(func(conn *gorm.DB) (err error) {
		if err := conn.Exec("PRAGMA query_only = ON").Error; err != nil {
			return err
		}
		defer func() {
			// Cleared even when ctx has expired
			restore := conn.WithContext(context.WithoutCancel(ctx)).Exec("PRAGMA query_only = OFF").Error
			if err == nil {
				err = restore
			}
		}()
		return fn(conn)
	})
}
