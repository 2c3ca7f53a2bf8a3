package repository_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fieldmed/fieldsales-api/internal/domain"
	"github.com/fieldmed/fieldsales-api/internal/repository"
)

// scope tests only inspect generated SQL, an in-memory database is enough
func newSQLOnlyDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db
}

func TestActiveOnlyScope(t *testing.T) {
	db := newSQLOnlyDB(t)

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return tx.Scopes(repository.ActiveOnly).Find(&[]domain.Clinic{})
	})

	assert.Contains(t, sql, "is_active = true")
}

func TestInAreaScope(t *testing.T) {
	db := newSQLOnlyDB(t)

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return tx.Scopes(repository.InArea("cairo-east")).Find(&[]domain.Warehouse{})
	})

	assert.Contains(t, sql, "area_id")
	assert.Contains(t, sql, "cairo-east")
}

func TestPaginateScope(t *testing.T) {
	db := newSQLOnlyDB(t)

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return tx.Scopes(repository.Paginate(3, 25)).Find(&[]domain.Order{})
	})
	assert.Contains(t, sql, "LIMIT 25")
	assert.Contains(t, sql, "OFFSET 50")

	// out-of-range values fall back to the defaults
	sql = db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return tx.Scopes(repository.Paginate(0, 0)).Find(&[]domain.Order{})
	})
	assert.Contains(t, sql, "LIMIT 20")
	assert.NotContains(t, sql, "OFFSET")
}
