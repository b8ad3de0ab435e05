package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/table-order/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func testOptions() Options {
	return Options{
		QueryTimeout: 2 * time.Second,
		ReadRetries:  2,
		RetryBackoff: time.Millisecond,
	}
}

func seedMenuItem(t *testing.T, db *gorm.DB, name string, price int64) models.MenuItem {
	t.Helper()
	item := models.MenuItem{Name: name, Price: price, ImageURL: "http://test/uploads/images/" + name}
	require.NoError(t, db.Create(&item).Error)
	return item
}

// seedFrozenRow stores a confirmed cart row for table, which freezes its cart.
func seedFrozenRow(t *testing.T, db *gorm.DB, table int) {
	t.Helper()
	menu := seedMenuItem(t, db, "Frozen Tea", 500)
	require.NoError(t, db.Create(&models.CartItem{
		TableNum:   table,
		MenuItemID: menu.ID,
		Quantity:   1,
		Status:     models.CartStatusConfirmed,
		Version:    1,
	}).Error)
}

var ctx = context.Background()
