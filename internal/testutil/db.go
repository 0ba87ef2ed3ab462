package testutil

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/Skotchmaster/quickcart/internal/repo"
	pkgdb "github.com/Skotchmaster/quickcart/pkg/db"
)

// NewDB opens a fresh migrated in-memory sqlite database for one test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := pkgdb.Open(context.Background(), pkgdb.Options{
		Driver: pkgdb.DriverSQLite,
		DSN:    ":memory:",
		Silent: true,
	})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := repo.Migrate(context.Background(), db); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	t.Cleanup(func() { _ = pkgdb.Close(db) })
	return db
}

func Ptr[T any](v T) *T { return &v }
