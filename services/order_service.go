package services

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/table-order/models"
	"github.com/yeremiapane/table-order/utils"
	"gorm.io/gorm"
)

type OrderService struct {
	base
}

func NewOrderService(db *gorm.DB, opts Options) *OrderService {
	return &OrderService{base: newBase(db, opts)}
}

// ConfirmOrder turns the table's cart into an order with snapshotted lines
// and empties the cart, all in one transaction.
func (s *OrderService) ConfirmOrder(ctx context.Context, table int) (models.Order, error) {
	const op = "order.confirm"
	if table < 1 {
		return models.Order{}, utils.NewValidationError(op, "table number must be at least 1")
	}

	var order models.Order
	err := s.write(ctx, op, func(tx *gorm.DB) error {
		lines, err := loadCartLines(tx, op, table)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return utils.NewValidationError(op, "cart is empty")
		}

		var total int64
		for _, line := range lines {
			if line.Status == models.CartStatusConfirmed {
				return errCartFrozen(op)
			}
			var ok bool
			if total, ok = addTotal(total, line.LineTotal); !ok {
				return errTotalTooLarge(op)
			}
		}

		// Delete exactly the rows we priced. A row added, changed or removed
		// by a concurrent request makes the counts differ and aborts.
		for _, line := range lines {
			res := tx.Where("id = ? AND version = ?", line.ID, line.Version).Delete(&models.CartItem{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected != 1 {
				return utils.NewConflictError(op, "cart changed while confirming, retry")
			}
		}
		var remaining int64
		if err := tx.Model(&models.CartItem{}).Where("table_num = ?", table).Count(&remaining).Error; err != nil {
			return err
		}
		if remaining != 0 {
			return utils.NewConflictError(op, "cart changed while confirming, retry")
		}

		now := s.now()
		order = models.Order{
			TableNum:  table,
			Total:     total,
			Status:    models.OrderStatusNotServed,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		orderLines := make([]models.OrderLine, 0, len(lines))
		for _, line := range lines {
			orderLines = append(orderLines, models.OrderLine{
				OrderID:    order.ID,
				TableNum:   table,
				MenuItemID: line.ItemID,
				ItemName:   line.Name,
				Price:      line.Price,
				Quantity:   line.Quantity,
				LineTotal:  line.LineTotal,
				Status:     models.OrderStatusNotServed,
				CreatedAt:  now,
				UpdatedAt:  now,
			})
		}
		if err := tx.Create(&orderLines).Error; err != nil {
			return err
		}
		order.Lines = orderLines

		return enqueueEvent(tx, models.EventOrderConfirmed, order.ID, order)
	})
	if err != nil {
		return models.Order{}, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"table":    table,
		"order_id": order.ID,
		"total":    order.Total,
	}).Info("Order confirmed")
	return order, nil
}

// ListTableOrders returns the table's orders still waiting for the kitchen,
// newest first.
func (s *OrderService) ListTableOrders(ctx context.Context, table int) ([]models.Order, error) {
	const op = "order.list_table"
	if table < 1 {
		return nil, utils.NewValidationError(op, "table number must be at least 1")
	}

	orders := []models.Order{}
	err := s.read(ctx, op, func(db *gorm.DB) error {
		return db.Preload("Lines", orderLinesByID).
			Where("table_num = ? AND status = ?", table, models.OrderStatusNotServed).
			Order("id desc").
			Find(&orders).Error
	})
	return orders, err
}

func orderLinesByID(db *gorm.DB) *gorm.DB {
	return db.Order("id asc")
}
