package models

import "time"

const (
	CartStatusPending   = "pending"
	CartStatusConfirmed = "confirmed"
)

type CartItem struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TableNum   int       `gorm:"not null;uniqueIndex:idx_cart_table_item" json:"table_num"`
	MenuItemID uint      `gorm:"not null;uniqueIndex:idx_cart_table_item" json:"item_id"`
	MenuItem   MenuItem  `gorm:"foreignKey:MenuItemID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"menu"`
	Quantity   int       `gorm:"not null" json:"quantity"`
	Status     string    `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Version    int       `gorm:"not null;default:1" json:"version"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

// CartRequest remembers an Idempotency-Key sent with an add-to-cart call.
type CartRequest struct {
	ID             uint      `gorm:"primaryKey"`
	IdempotencyKey string    `gorm:"type:varchar(128);uniqueIndex;not null"`
	TableNum       int       `gorm:"not null"`
	CartItemID     uint      `gorm:"not null"`
	CreatedAt      time.Time `gorm:"not null;index"`
}
