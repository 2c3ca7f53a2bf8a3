package testutil

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fieldmed/fieldsales-api/internal/database"
	"github.com/fieldmed/fieldsales-api/internal/domain"
)

// SetupTestDB creates a connection to the test PostgreSQL database.
// It uses environment variables or falls back to docker-compose defaults.
func SetupTestDB(t *testing.T) *gorm.DB {
	host := getEnvOrDefault("DATABASE_HOST", "localhost")
	port := getEnvOrDefault("DATABASE_PORT", "5432")
	user := getEnvOrDefault("DATABASE_USER", "fieldsales_user")
	password := getEnvOrDefault("DATABASE_PASSWORD", "fieldsales_password")
	dbname := getEnvOrDefault("DATABASE_NAME", "fieldsales_test")

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
		host, port, user, password, dbname)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err, "Failed to connect to test database. Ensure PostgreSQL is running.")

	require.NoError(t, database.AutoMigrate(db))

	return db
}

// SetupCleanTestDB connects to the test database and wipes all data
func SetupCleanTestDB(t *testing.T) *gorm.DB {
	db := SetupTestDB(t)
	CleanupTestData(t, db)
	return db
}

// CleanupTestData removes test data from all tables in FK order
func CleanupTestData(t *testing.T, db *gorm.DB) {
	tables := []string{
		"audit_logs",
		"profile_access_logs",
		"files",
		"visits",
		"order_items",
		"orders",
		"invoices",
		"warehouses",
		"products",
		"clinics",
		"users",
	}

	for _, table := range tables {
		err := db.Exec(fmt.Sprintf("DELETE FROM %s WHERE id IS NOT NULL", table)).Error
		if err != nil {
			t.Logf("Note: Could not clean table %s: %v", table, err)
		}
	}
}

// CreateTestUser creates a user with the given role
func CreateTestUser(t *testing.T, db *gorm.DB, name string, role domain.Role) *domain.User {
	user := &domain.User{
		Name:     name,
		Email:    fmt.Sprintf("%s-%d@test.fieldmed.io", role, time.Now().UnixNano()),
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTestClinic creates a clinic
func CreateTestClinic(t *testing.T, db *gorm.DB, name string) *domain.Clinic {
	clinic := &domain.Clinic{
		Name:     name,
		City:     "Cairo",
		AreaID:   "cairo-east",
		ERPCode:  fmt.Sprintf("ERP-%d", time.Now().UnixNano()),
		IsActive: true,
	}
	require.NoError(t, db.Create(clinic).Error)
	return clinic
}

// CreateTestInvoice creates an invoice for a clinic
func CreateTestInvoice(t *testing.T, db *gorm.DB, clinicID uuid.UUID, total float64, status domain.PaymentStatus, dueDate time.Time) *domain.Invoice {
	invoice := &domain.Invoice{
		ClinicID:      clinicID,
		InvoiceNumber: fmt.Sprintf("INV-%d", time.Now().UnixNano()),
		TotalAmount:   total,
		PaymentStatus: status,
		DueDate:       dueDate,
		ERPReference:  fmt.Sprintf("REF-%d", time.Now().UnixNano()),
	}
	require.NoError(t, db.Create(invoice).Error)
	return invoice
}

// CreateTestProduct creates an active product
func CreateTestProduct(t *testing.T, db *gorm.DB, name string, unitPrice float64) *domain.Product {
	product := &domain.Product{
		Name:      name,
		Code:      fmt.Sprintf("P-%d", time.Now().UnixNano()),
		UnitPrice: unitPrice,
		Line:      domain.LineGeneral,
		IsActive:  true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

// CreateTestWarehouse creates an active warehouse
func CreateTestWarehouse(t *testing.T, db *gorm.DB, name string) *domain.Warehouse {
	warehouse := &domain.Warehouse{
		Name:     name,
		AreaID:   "cairo-east",
		IsActive: true,
	}
	require.NoError(t, db.Create(warehouse).Error)
	return warehouse
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
