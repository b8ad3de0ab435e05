package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/table-order/models"
	"github.com/yeremiapane/table-order/storage"
	"github.com/yeremiapane/table-order/utils"
	"gorm.io/gorm"
)

// Upload is a file received from a client.
type Upload struct {
	Name string
	Body io.Reader
}

type MenuInput struct {
	Name  string
	Price int64
	Image *Upload
}

// MenuUpdate carries the fields to change; nil fields are left alone.
type MenuUpdate struct {
	Name  *string
	Price *int64
	Image *Upload
}

type MenuService struct {
	base
	blobs storage.BlobStore
}

func NewMenuService(db *gorm.DB, blobs storage.BlobStore, opts Options) *MenuService {
	return &MenuService{base: newBase(db, opts), blobs: blobs}
}

func (s *MenuService) ListMenu(ctx context.Context) ([]models.MenuItem, error) {
	items := []models.MenuItem{}
	err := s.read(ctx, "menu.list", func(db *gorm.DB) error {
		return db.Order("id asc").Find(&items).Error
	})
	return items, err
}

func (s *MenuService) GetMenuItem(ctx context.Context, id uint) (models.MenuItem, error) {
	var item models.MenuItem
	err := s.read(ctx, "menu.get", func(db *gorm.DB) error {
		return db.First(&item, id).Error
	})
	return item, err
}

// CreateMenuItem uploads the image and inserts the item. The upload is
// removed again when the insert fails.
func (s *MenuService) CreateMenuItem(ctx context.Context, in MenuInput) (models.MenuItem, error) {
	const op = "menu.create"
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.MenuItem{}, utils.NewValidationError(op, "name is required")
	}
	if err := checkPrice(op, in.Price); err != nil {
		return models.MenuItem{}, err
	}
	if in.Image == nil {
		return models.MenuItem{}, utils.NewValidationError(op, "image is required")
	}

	key, url, err := s.upload(ctx, op, "images/%d-%s", in.Image)
	if err != nil {
		return models.MenuItem{}, err
	}

	item := models.MenuItem{Name: name, Price: in.Price, ImageURL: url, ImageKey: key}
	err = s.write(ctx, op, func(tx *gorm.DB) error {
		return tx.Create(&item).Error
	})
	if err != nil {
		if delErr := s.blobs.Delete(context.Background(), key); delErr != nil {
			return models.MenuItem{}, utils.NewPartialFailureError(op, "menu item not saved and image cleanup failed", delErr)
		}
		return models.MenuItem{}, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{"menu_id": item.ID, "name": item.Name}).Info("Menu item created")
	return item, nil
}

// UpdateMenuItem changes a menu item. Existing order lines keep their
// snapshot; carts see the new price on their next read.
func (s *MenuService) UpdateMenuItem(ctx context.Context, id uint, in MenuUpdate) (models.MenuItem, error) {
	const op = "menu.update"
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return models.MenuItem{}, utils.NewValidationError(op, "name must not be empty")
	}
	if in.Price != nil {
		if err := checkPrice(op, *in.Price); err != nil {
			return models.MenuItem{}, err
		}
	}

	var newKey, newURL string
	if in.Image != nil {
		var err error
		newKey, newURL, err = s.upload(ctx, op, "images/%d-%s", in.Image)
		if err != nil {
			return models.MenuItem{}, err
		}
	}

	var item models.MenuItem
	var oldKey string
	err := s.write(ctx, op, func(tx *gorm.DB) error {
		if err := tx.First(&item, id).Error; err != nil {
			return err
		}
		if in.Name != nil {
			item.Name = strings.TrimSpace(*in.Name)
		}
		if in.Price != nil {
			item.Price = *in.Price
		}
		if newKey != "" {
			oldKey = item.ImageKey
			item.ImageKey = newKey
			item.ImageURL = newURL
		}
		return tx.Save(&item).Error
	})
	if err != nil {
		if newKey != "" {
			s.removeBlob(newKey)
		}
		return models.MenuItem{}, err
	}

	if oldKey != "" {
		s.removeBlob(oldKey)
	}
	return item, nil
}

// DeleteMenuItem removes the item and any cart rows that still point at it.
func (s *MenuService) DeleteMenuItem(ctx context.Context, id uint) error {
	const op = "menu.delete"

	var item models.MenuItem
	err := s.write(ctx, op, func(tx *gorm.DB) error {
		if err := tx.First(&item, id).Error; err != nil {
			return err
		}
		if err := tx.Where("menu_item_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&item).Error
	})
	if err != nil {
		return err
	}

	if item.ImageKey != "" {
		s.removeBlob(item.ImageKey)
	}
	utils.InfoLogger.WithField("menu_id", id).Info("Menu item deleted")
	return nil
}

func (s *MenuService) upload(ctx context.Context, op, pattern string, up *Upload) (string, string, error) {
	return uploadBlob(ctx, s.blobs, s.now().UnixMilli(), op, pattern, up)
}

func (s *MenuService) removeBlob(key string) {
	if err := s.blobs.Delete(context.Background(), key); err != nil {
		utils.ErrorLogger.WithField("key", key).Errorf("Failed to remove image: %v", err)
	}
}

// uploadBlob stores up under a key built from pattern, the timestamp and the
// sanitized file name.
func uploadBlob(ctx context.Context, blobs storage.BlobStore, stamp int64, op, pattern string, up *Upload) (string, string, error) {
	if up.Body == nil {
		return "", "", utils.NewValidationError(op, "file is empty")
	}
	key := fmt.Sprintf(pattern, stamp, storage.SanitizeName(up.Name))
	url, err := blobs.Put(ctx, key, up.Body)
	if err != nil {
		return "", "", utils.NewStorageError(op, err)
	}
	return key, url, nil
}

func checkPrice(op string, price int64) error {
	if price < 0 {
		return utils.NewValidationError(op, "price must not be negative")
	}
	if price > MaxMenuPrice {
		return utils.NewValidationError(op, fmt.Sprintf("price must not exceed %d", MaxMenuPrice))
	}
	return nil
}
