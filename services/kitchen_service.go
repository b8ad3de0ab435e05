package services

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/table-order/models"
	"github.com/yeremiapane/table-order/utils"
	"gorm.io/gorm"
)

type KitchenService struct {
	base
}

func NewKitchenService(db *gorm.DB, opts Options) *KitchenService {
	return &KitchenService{base: newBase(db, opts)}
}

// ListPending returns unserved orders, oldest first.
func (s *KitchenService) ListPending(ctx context.Context) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.read(ctx, "kitchen.list_pending", func(db *gorm.DB) error {
		return db.Preload("Lines", orderLinesByID).
			Where("status = ?", models.OrderStatusNotServed).
			Order("created_at asc, id asc").
			Find(&orders).Error
	})
	return orders, err
}

// MarkServed moves an order to served, marks its lines and archives it.
// Serving an already served order returns it unchanged.
func (s *KitchenService) MarkServed(ctx context.Context, orderID uint) (models.Order, error) {
	const op = "kitchen.mark_served"
	if orderID == 0 {
		return models.Order{}, utils.NewValidationError(op, "order id is required")
	}

	var order models.Order
	alreadyServed := false
	err := s.write(ctx, op, func(tx *gorm.DB) error {
		now := s.now()
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, models.OrderStatusNotServed).
			Updates(map[string]interface{}{"status": models.OrderStatusServed, "updated_at": now})
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			if err := tx.Preload("Lines", orderLinesByID).First(&order, orderID).Error; err != nil {
				return err
			}
			alreadyServed = true
			return nil
		}

		if err := tx.Model(&models.OrderLine{}).
			Where("order_id = ?", orderID).
			Updates(map[string]interface{}{"status": models.OrderStatusServed, "updated_at": now}).Error; err != nil {
			return err
		}

		if err := tx.Create(&models.HistoryRecord{OrderID: orderID, ArchivedAt: now}).Error; err != nil {
			return err
		}

		if err := tx.Preload("Lines", orderLinesByID).First(&order, orderID).Error; err != nil {
			return err
		}

		return enqueueEvent(tx, models.EventOrderServed, order.ID, order)
	})
	if err != nil {
		if utils.KindOf(err) == utils.KindNotFound {
			return models.Order{}, utils.NewNotFoundError(op, "order not found")
		}
		return models.Order{}, err
	}

	fields := logrus.Fields{"order_id": order.ID, "table": order.TableNum, "ticket": order.Label()}
	if alreadyServed {
		utils.InfoLogger.WithFields(fields).Info("Order was already served")
	} else {
		utils.InfoLogger.WithFields(fields).Info("Order served")
	}
	return order, nil
}
