package services

import (
	"context"

	"github.com/yeremiapane/table-order/models"
	"gorm.io/gorm"
)

type HistoryService struct {
	base
}

func NewHistoryService(db *gorm.DB, opts Options) *HistoryService {
	return &HistoryService{base: newBase(db, opts)}
}

// ListHistory returns served orders, most recently archived first.
func (s *HistoryService) ListHistory(ctx context.Context) ([]models.HistoryRecord, error) {
	records := []models.HistoryRecord{}
	err := s.read(ctx, "history.list", func(db *gorm.DB) error {
		return db.Preload("Order").
			Preload("Order.Lines", orderLinesByID).
			Order("archived_at desc, id desc").
			Find(&records).Error
	})
	return records, err
}
