package models

import (
	"fmt"
	"time"
)

const (
	OrderStatusNotServed = "not_served"
	OrderStatusServed    = "served"
)

type Order struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	TableNum  int         `gorm:"not null;index" json:"table_num"`
	Total     int64       `gorm:"not null;default:0" json:"total"`
	Status    string      `gorm:"type:varchar(20);not null;default:'not_served';index" json:"status"`
	CreatedAt time.Time   `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time   `gorm:"not null" json:"updated_at"`
	Lines     []OrderLine `gorm:"foreignKey:OrderID" json:"confirmed_orders"`
}

// OrderLine snapshots the menu item at confirmation time. MenuItemID is kept
// without a foreign key so later menu edits or deletes never touch it.
type OrderLine struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OrderID    uint      `gorm:"not null;index" json:"order_id"`
	TableNum   int       `gorm:"not null" json:"table_num"`
	MenuItemID uint      `gorm:"not null" json:"item_id"`
	ItemName   string    `gorm:"type:varchar(255);not null" json:"item_name"`
	Price      int64     `gorm:"not null" json:"price"`
	Quantity   int       `gorm:"not null" json:"quantity"`
	LineTotal  int64     `gorm:"not null" json:"line_total"`
	Status     string    `gorm:"type:varchar(20);not null;default:'not_served'" json:"status"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

type HistoryRecord struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OrderID    uint      `gorm:"not null;uniqueIndex" json:"order_id"`
	Order      Order     `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"orders"`
	ArchivedAt time.Time `gorm:"not null;index" json:"created_at"`
}

// Label is the short identifier shown on kitchen tickets.
func (o *Order) Label() string {
	return fmt.Sprintf("T%d-#%d", o.TableNum, o.ID)
}
