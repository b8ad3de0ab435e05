package services

import (
	"context"

	"github.com/yeremiapane/table-order/models"
	"github.com/yeremiapane/table-order/storage"
	"github.com/yeremiapane/table-order/utils"
	"gorm.io/gorm"
)

type LogoService struct {
	base
	blobs storage.BlobStore
}

func NewLogoService(db *gorm.DB, blobs storage.BlobStore, opts Options) *LogoService {
	return &LogoService{base: newBase(db, opts), blobs: blobs}
}

func (s *LogoService) UploadLogo(ctx context.Context, up Upload) (models.Logo, error) {
	const op = "logo.upload"

	key, url, err := uploadBlob(ctx, s.blobs, s.now().UnixMilli(), op, "logos/logo-%d-%s", &up)
	if err != nil {
		return models.Logo{}, err
	}

	logo := models.Logo{URL: url, CreatedAt: s.now()}
	err = s.write(ctx, op, func(tx *gorm.DB) error {
		return tx.Create(&logo).Error
	})
	if err != nil {
		if delErr := s.blobs.Delete(context.Background(), key); delErr != nil {
			utils.ErrorLogger.WithField("key", key).Errorf("Failed to remove logo: %v", delErr)
		}
		return models.Logo{}, err
	}
	return logo, nil
}

// CurrentLogo returns the most recently uploaded logo.
func (s *LogoService) CurrentLogo(ctx context.Context) (models.Logo, error) {
	var logo models.Logo
	err := s.read(ctx, "logo.current", func(db *gorm.DB) error {
		return db.Order("created_at desc, id desc").First(&logo).Error
	})
	return logo, err
}
