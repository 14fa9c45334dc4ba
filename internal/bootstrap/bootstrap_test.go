package bootstrap

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/chaussup/shop/internal/hash"
	"github.com/chaussup/shop/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	return db
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunCreatesAdminAndCatalog(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, Run(db, discardLogger(), "admin", "Chauss2024!"))

	var admin models.User
	require.NoError(t, db.Where("username = ?", "admin").First(&admin).Error)
	require.NotEqual(t, "Chauss2024!", admin.PasswordHash)
	require.True(t, hash.CheckPassword(admin.PasswordHash, "Chauss2024!"))

	var products int64
	require.NoError(t, db.Model(&models.Product{}).Count(&products).Error)
	require.Equal(t, int64(4), products)
}

func TestRunIsIdempotent(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, Run(db, discardLogger(), "admin", "Chauss2024!"))
	require.NoError(t, Run(db, discardLogger(), "admin", "Chauss2024!"))

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.Equal(t, int64(1), users)

	var products int64
	require.NoError(t, db.Model(&models.Product{}).Count(&products).Error)
	require.Equal(t, int64(4), products)
}

func TestRunNeverReseedsOnceProductsExist(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, Run(db, discardLogger(), "admin", "Chauss2024!"))
	require.NoError(t, db.Where("name = ?", "Pack Rebelle Arc-en-ciel").Delete(&models.Product{}).Error)

	require.NoError(t, Run(db, discardLogger(), "admin", "Chauss2024!"))

	var products int64
	require.NoError(t, db.Model(&models.Product{}).Count(&products).Error)
	require.Equal(t, int64(3), products)
}

func TestRunKeepsExistingAdminPassword(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, Run(db, discardLogger(), "admin", "first-password"))
	require.NoError(t, Run(db, discardLogger(), "admin", "other-password"))

	var admin models.User
	require.NoError(t, db.Where("username = ?", "admin").First(&admin).Error)
	require.True(t, hash.CheckPassword(admin.PasswordHash, "first-password"))
}

func TestRunContinuesAfterFailedStep(t *testing.T) {
	db := newTestDB(t)

	// bcrypt rejects passwords longer than 72 bytes, so the admin step
	// fails; the catalog must still be seeded.
	longPassword := strings.Repeat("x", 80)
	require.NoError(t, Run(db, discardLogger(), "admin", longPassword))

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.Equal(t, int64(0), users)

	var products int64
	require.NoError(t, db.Model(&models.Product{}).Count(&products).Error)
	require.Equal(t, int64(4), products)
}

func TestRunNilDB(t *testing.T) {
	require.Error(t, Run(nil, discardLogger(), "admin", "x"))
}
