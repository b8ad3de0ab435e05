package services

import (
	"context"

	"github.com/yeremiapane/table-order/models"
	"gorm.io/gorm"
)

type DashboardStats struct {
	PendingOrders int64 `json:"pending_orders"`
	ServedOrders  int64 `json:"served_orders"`
	Revenue       int64 `json:"revenue"`
	MenuItems     int64 `json:"menu_items"`
	OpenCarts     int64 `json:"open_carts"`
}

type DashboardService struct {
	base
}

func NewDashboardService(db *gorm.DB, opts Options) *DashboardService {
	return &DashboardService{base: newBase(db, opts)}
}

func (s *DashboardService) Stats(ctx context.Context) (DashboardStats, error) {
	var stats DashboardStats
	err := s.read(ctx, "dashboard.stats", func(db *gorm.DB) error {
		if err := db.Model(&models.Order{}).Where("status = ?", models.OrderStatusNotServed).Count(&stats.PendingOrders).Error; err != nil {
			return err
		}
		if err := db.Model(&models.Order{}).Where("status = ?", models.OrderStatusServed).Count(&stats.ServedOrders).Error; err != nil {
			return err
		}
		if err := db.Model(&models.Order{}).Where("status = ?", models.OrderStatusServed).
			Select("COALESCE(SUM(total), 0)").Scan(&stats.Revenue).Error; err != nil {
			return err
		}
		if err := db.Model(&models.MenuItem{}).Count(&stats.MenuItems).Error; err != nil {
			return err
		}
		return db.Model(&models.CartItem{}).Distinct("table_num").Count(&stats.OpenCarts).Error
	})
	return stats, err
}
