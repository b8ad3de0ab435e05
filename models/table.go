package models

import "time"

// TableToken is the secret printed in a table's QR code. One row per table.
type TableToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TableNum  int       `gorm:"uniqueIndex;not null" json:"table_num"`
	Token     string    `gorm:"type:varchar(64);not null" json:"token"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
