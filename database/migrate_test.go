package database

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/table-order/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	return db
}

func TestMigrateCreatesTables(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, Migrate(db))

	for _, m := range models.All() {
		assert.True(t, db.Migrator().HasTable(m))
	}
}

func TestSeedAdmin(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, Migrate(db))

	require.NoError(t, SeedAdmin(db, "Admin@Example.com", "secret123"))
	require.NoError(t, SeedAdmin(db, "admin@example.com", "other-pass"))

	var users []models.User
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "admin@example.com", users[0].Email)
	assert.Equal(t, models.RoleAdmin, users[0].Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users[0].Password), []byte("secret123")))
}

func TestSeedAdminSkipsWithoutCredentials(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, Migrate(db))

	require.NoError(t, SeedAdmin(db, "", ""))

	var count int64
	db.Model(&models.User{}).Count(&count)
	assert.Zero(t, count)
}
