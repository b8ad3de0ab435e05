package services

import (
	"context"
	"errors"
	"math"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/table-order/models"
	"github.com/yeremiapane/table-order/utils"
	"gorm.io/gorm"
)

const (
	MaxCartQuantity = 999
	// MaxMenuPrice keeps MaxCartQuantity units of any item well inside int64.
	MaxMenuPrice int64 = 1_000_000_000
)

// CartLine is a cart row joined with the live menu name and price.
type CartLine struct {
	ID        uint   `json:"id"`
	TableNum  int    `json:"table_num"`
	ItemID    uint   `json:"item_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	Status    string `json:"status"`
	Version   int    `json:"version"`
	LineTotal int64  `json:"line_total"`
}

type CartView struct {
	TableNum     int        `json:"table_num"`
	Items        []CartLine `json:"items"`
	Total        int64      `json:"total"`
	TotalDisplay string     `json:"total_display"`
	Frozen       bool       `json:"frozen"`
}

type CartService struct {
	base
}

func NewCartService(db *gorm.DB, opts Options) *CartService {
	return &CartService{base: newBase(db, opts)}
}

func errCartFrozen(op string) error {
	return utils.NewConflictError(op, "order already confirmed for this table")
}

// AddItem puts one more unit of itemID into the table's cart. A repeated add
// increments the existing row. A non-empty idempotencyKey that was already
// used returns the row from the first call without changing it.
func (s *CartService) AddItem(ctx context.Context, table int, itemID uint, idempotencyKey string) (models.CartItem, error) {
	const op = "cart.add"
	if table < 1 {
		return models.CartItem{}, utils.NewValidationError(op, "table number must be at least 1")
	}
	if itemID == 0 {
		return models.CartItem{}, utils.NewValidationError(op, "item_id is required")
	}
	if len(idempotencyKey) > 128 {
		return models.CartItem{}, utils.NewValidationError(op, "idempotency key must be at most 128 characters")
	}

	var item models.CartItem
	err := s.write(ctx, op, func(tx *gorm.DB) error {
		if idempotencyKey != "" {
			var req models.CartRequest
			err := tx.Where("idempotency_key = ?", idempotencyKey).First(&req).Error
			if err == nil {
				if req.TableNum != table {
					return utils.NewConflictError(op, "idempotency key already used by another table")
				}
				if err := tx.Preload("MenuItem").First(&item, req.CartItemID).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return utils.NewConflictError(op, "request already applied")
					}
					return err
				}
				return nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		frozen, err := isFrozen(tx, table)
		if err != nil {
			return err
		}
		if frozen {
			return errCartFrozen(op)
		}

		var menu models.MenuItem
		if err := tx.First(&menu, itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewNotFoundError(op, "menu item not found")
			}
			return err
		}

		err = tx.Where("table_num = ? AND menu_item_id = ?", table, itemID).First(&item).Error
		switch {
		case err == nil:
			if item.Quantity >= MaxCartQuantity {
				return utils.NewValidationError(op, "quantity is too large")
			}
			res := tx.Model(&models.CartItem{}).
				Where("id = ? AND version = ?", item.ID, item.Version).
				Updates(map[string]interface{}{
					"quantity":   gorm.Expr("quantity + ?", 1),
					"version":    gorm.Expr("version + ?", 1),
					"updated_at": s.now(),
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return utils.NewConflictError(op, "cart row changed concurrently, retry")
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			item = models.CartItem{
				TableNum:   table,
				MenuItemID: itemID,
				Quantity:   1,
				Status:     models.CartStatusPending,
				Version:    1,
			}
			if err := tx.Create(&item).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return utils.NewConflictError(op, "cart row changed concurrently, retry")
				}
				return err
			}
		default:
			return err
		}

		if idempotencyKey != "" {
			if err := tx.Create(&models.CartRequest{
				IdempotencyKey: idempotencyKey,
				TableNum:       table,
				CartItemID:     item.ID,
			}).Error; err != nil {
				return err
			}
		}

		return tx.Preload("MenuItem").First(&item, item.ID).Error
	})
	if err != nil {
		return models.CartItem{}, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"table":    table,
		"cart_id":  item.ID,
		"quantity": item.Quantity,
	}).Debug("Cart item added")
	return item, nil
}

// SetQuantity updates a cart row of table; quantity < 1 removes it and
// returns a nil item. With expectedVersion set, a row that changed since
// the caller read it is rejected.
func (s *CartService) SetQuantity(ctx context.Context, table int, cartID uint, quantity int, expectedVersion *int) (*models.CartItem, error) {
	const op = "cart.set_quantity"
	if quantity > MaxCartQuantity {
		return nil, utils.NewValidationError(op, "quantity is too large")
	}

	var item models.CartItem
	deleted := false
	err := s.write(ctx, op, func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND table_num = ?", cartID, table).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewNotFoundError(op, "cart item not found")
			}
			return err
		}

		frozen, err := isFrozen(tx, table)
		if err != nil {
			return err
		}
		if frozen {
			return errCartFrozen(op)
		}

		if expectedVersion != nil && *expectedVersion != item.Version {
			return utils.NewConflictError(op, "cart item was changed by someone else")
		}

		cas := tx.Where("id = ? AND version = ?", item.ID, item.Version)
		if quantity < 1 {
			res := cas.Delete(&models.CartItem{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return utils.NewConflictError(op, "cart item was changed by someone else")
			}
			deleted = true
			return nil
		}

		res := cas.Model(&models.CartItem{}).Updates(map[string]interface{}{
			"quantity":   quantity,
			"version":    gorm.Expr("version + ?", 1),
			"updated_at": s.now(),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.NewConflictError(op, "cart item was changed by someone else")
		}
		return tx.Preload("MenuItem").First(&item, item.ID).Error
	})
	if err != nil {
		return nil, err
	}

	if deleted {
		utils.InfoLogger.WithFields(logrus.Fields{"table": table, "cart_id": cartID}).Debug("Cart item removed")
		return nil, nil
	}
	return &item, nil
}

// ListCart returns the table's cart with live prices. Total covers pending
// rows only.
func (s *CartService) ListCart(ctx context.Context, table int) (CartView, error) {
	const op = "cart.list"
	if table < 1 {
		return CartView{}, utils.NewValidationError(op, "table number must be at least 1")
	}

	var lines []CartLine
	err := s.read(ctx, op, func(db *gorm.DB) error {
		var err error
		lines, err = loadCartLines(db, op, table)
		return err
	})
	if err != nil {
		return CartView{}, err
	}

	return buildCartView(op, table, lines)
}

func buildCartView(op string, table int, lines []CartLine) (CartView, error) {
	view := CartView{TableNum: table, Items: lines}
	if view.Items == nil {
		view.Items = []CartLine{}
	}
	for _, line := range lines {
		if line.Status == models.CartStatusConfirmed {
			view.Frozen = true
			continue
		}
		total, ok := addTotal(view.Total, line.LineTotal)
		if !ok {
			return CartView{}, errTotalTooLarge(op)
		}
		view.Total = total
	}
	view.TotalDisplay = utils.FormatKyats(view.Total)
	return view, nil
}

func loadCartLines(db *gorm.DB, op string, table int) ([]CartLine, error) {
	var lines []CartLine
	err := db.Table("cart_items").
		Select(`cart_items.id, cart_items.table_num, cart_items.menu_item_id AS item_id,
			menu_items.name, menu_items.price, cart_items.quantity, cart_items.status,
			cart_items.version`).
		Joins("JOIN menu_items ON menu_items.id = cart_items.menu_item_id").
		Where("cart_items.table_num = ?", table).
		Order("cart_items.id asc").
		Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	for i := range lines {
		total, ok := lineTotal(lines[i].Price, lines[i].Quantity)
		if !ok {
			return nil, errTotalTooLarge(op)
		}
		lines[i].LineTotal = total
	}
	return lines, nil
}

func errTotalTooLarge(op string) error {
	return utils.NewValidationError(op, "cart total is too large")
}

// lineTotal multiplies price by quantity, reporting false on a negative
// operand or int64 overflow.
func lineTotal(price int64, quantity int) (int64, bool) {
	if price < 0 || quantity < 0 {
		return 0, false
	}
	if price != 0 && int64(quantity) > math.MaxInt64/price {
		return 0, false
	}
	return price * int64(quantity), true
}

func addTotal(a, b int64) (int64, bool) {
	if b < 0 || a > math.MaxInt64-b {
		return 0, false
	}
	return a + b, true
}

func isFrozen(tx *gorm.DB, table int) (bool, error) {
	var count int64
	err := tx.Model(&models.CartItem{}).
		Where("table_num = ? AND status = ?", table, models.CartStatusConfirmed).
		Count(&count).Error
	return count > 0, err
}
