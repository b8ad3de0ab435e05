package services

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/table-order/models"
	"github.com/yeremiapane/table-order/storage"
	"github.com/yeremiapane/table-order/utils"
)

type brokenDeleteStore struct {
	storage.BlobStore
}

func (brokenDeleteStore) Delete(context.Context, string) error {
	return errors.New("disk unavailable")
}

func fixedClock(opts Options) Options {
	opts.Now = func() time.Time { return time.UnixMilli(1700000000000) }
	return opts
}

func upload(name, body string) *Upload {
	return &Upload{Name: name, Body: strings.NewReader(body)}
}

func TestCreateMenuItem(t *testing.T) {
	db := setupTestDB(t)
	dir := t.TempDir()
	svc := NewMenuService(db, storage.NewLocalStore(dir, "http://test/uploads"), fixedClock(testOptions()))

	item, err := svc.CreateMenuItem(ctx, MenuInput{Name: " Mohinga ", Price: 1500, Image: upload("fish soup.png", "png-bytes")})
	require.NoError(t, err)
	assert.Equal(t, "Mohinga", item.Name)
	assert.Equal(t, int64(1500), item.Price)
	assert.Equal(t, "images/1700000000000-fish-soup.png", item.ImageKey)
	assert.Equal(t, "http://test/uploads/images/1700000000000-fish-soup.png", item.ImageURL)

	data, err := os.ReadFile(filepath.Join(dir, "images", "1700000000000-fish-soup.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	menus, err := svc.ListMenu(ctx)
	require.NoError(t, err)
	require.Len(t, menus, 1)

	got, err := svc.GetMenuItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.Name, got.Name)
}

func TestCreateMenuItemValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMenuService(db, storage.NewLocalStore(t.TempDir(), "http://test/uploads"), testOptions())

	_, err := svc.CreateMenuItem(ctx, MenuInput{Name: "", Price: 1, Image: upload("a.png", "x")})
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	_, err = svc.CreateMenuItem(ctx, MenuInput{Name: "Tea", Price: -1, Image: upload("a.png", "x")})
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	_, err = svc.CreateMenuItem(ctx, MenuInput{Name: "Tea", Price: 1})
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	_, err = svc.CreateMenuItem(ctx, MenuInput{Name: "Tea", Price: MaxMenuPrice + 1, Image: upload("a.png", "x")})
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	item, err := svc.CreateMenuItem(ctx, MenuInput{Name: "Tea", Price: MaxMenuPrice, Image: upload("a.png", "x")})
	require.NoError(t, err)

	tooHigh := MaxMenuPrice + 1
	_, err = svc.UpdateMenuItem(ctx, item.ID, MenuUpdate{Price: &tooHigh})
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	got, err := svc.GetMenuItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, MaxMenuPrice, got.Price)
}

func TestCreateMenuItemRemovesBlobWhenInsertFails(t *testing.T) {
	db := setupTestDB(t)
	dir := t.TempDir()
	svc := NewMenuService(db, storage.NewLocalStore(dir, "http://test/uploads"), fixedClock(testOptions()))
	require.NoError(t, db.Migrator().DropTable(&models.MenuItem{}))

	_, err := svc.CreateMenuItem(ctx, MenuInput{Name: "Tea", Price: 500, Image: upload("tea.png", "x")})
	assert.Equal(t, utils.KindStorage, utils.KindOf(err))

	_, statErr := os.Stat(filepath.Join(dir, "images", "1700000000000-tea.png"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestCreateMenuItemPartialFailure(t *testing.T) {
	db := setupTestDB(t)
	store := brokenDeleteStore{storage.NewLocalStore(t.TempDir(), "http://test/uploads")}
	svc := NewMenuService(db, store, testOptions())
	require.NoError(t, db.Migrator().DropTable(&models.MenuItem{}))

	_, err := svc.CreateMenuItem(ctx, MenuInput{Name: "Tea", Price: 500, Image: upload("tea.png", "x")})
	assert.Equal(t, utils.KindPartialFailure, utils.KindOf(err))
}

func TestUpdateMenuItem(t *testing.T) {
	db := setupTestDB(t)
	dir := t.TempDir()
	svc := NewMenuService(db, storage.NewLocalStore(dir, "http://test/uploads"), testOptions())

	item, err := svc.CreateMenuItem(ctx, MenuInput{Name: "Tea", Price: 500, Image: upload("old.png", "old")})
	require.NoError(t, err)
	oldPath := filepath.Join(dir, filepath.FromSlash(item.ImageKey))

	price := int64(650)
	updated, err := svc.UpdateMenuItem(ctx, item.ID, MenuUpdate{Price: &price, Image: upload("new.png", "new")})
	require.NoError(t, err)
	assert.Equal(t, "Tea", updated.Name)
	assert.Equal(t, int64(650), updated.Price)
	assert.NotEqual(t, item.ImageKey, updated.ImageKey)

	_, statErr := os.Stat(oldPath)
	assert.True(t, os.IsNotExist(statErr))

	f, err := os.Open(filepath.Join(dir, filepath.FromSlash(updated.ImageKey)))
	require.NoError(t, err)
	defer f.Close()
	body, _ := io.ReadAll(f)
	assert.Equal(t, "new", string(body))

	empty := " "
	_, err = svc.UpdateMenuItem(ctx, item.ID, MenuUpdate{Name: &empty})
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	_, err = svc.UpdateMenuItem(ctx, 999, MenuUpdate{Price: &price})
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
}

func TestDeleteMenuItemClearsCartRows(t *testing.T) {
	db := setupTestDB(t)
	dir := t.TempDir()
	svc := NewMenuService(db, storage.NewLocalStore(dir, "http://test/uploads"), testOptions())
	carts := NewCartService(db, testOptions())
	orders := NewOrderService(db, testOptions())

	item, err := svc.CreateMenuItem(ctx, MenuInput{Name: "Tea", Price: 500, Image: upload("tea.png", "x")})
	require.NoError(t, err)

	_, err = carts.AddItem(ctx, 1, item.ID, "")
	require.NoError(t, err)
	_, err = orders.ConfirmOrder(ctx, 1)
	require.NoError(t, err)
	_, err = carts.AddItem(ctx, 2, item.ID, "")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteMenuItem(ctx, item.ID))

	var cartRows int64
	db.Model(&models.CartItem{}).Count(&cartRows)
	assert.Zero(t, cartRows)

	tableOrders, err := orders.ListTableOrders(ctx, 1)
	require.NoError(t, err)
	require.Len(t, tableOrders, 1)
	assert.Equal(t, "Tea", tableOrders[0].Lines[0].ItemName)

	_, statErr := os.Stat(filepath.Join(dir, filepath.FromSlash(item.ImageKey)))
	assert.True(t, os.IsNotExist(statErr))

	err = svc.DeleteMenuItem(ctx, item.ID)
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
}

func TestLogoService(t *testing.T) {
	db := setupTestDB(t)
	store := storage.NewLocalStore(t.TempDir(), "http://test/uploads")
	svc := NewLogoService(db, store, fixedClock(testOptions()))

	_, err := svc.CurrentLogo(ctx)
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))

	first, err := svc.UploadLogo(ctx, Upload{Name: "brand.png", Body: strings.NewReader("a")})
	require.NoError(t, err)
	assert.Equal(t, "http://test/uploads/logos/logo-1700000000000-brand.png", first.URL)

	second, err := svc.UploadLogo(ctx, Upload{Name: "brand2.png", Body: strings.NewReader("b")})
	require.NoError(t, err)

	current, err := svc.CurrentLogo(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, current.ID)
}
