package models

import "time"

type MenuItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Price     int64     `gorm:"not null;check:price >= 0" json:"price"`
	ImageURL  string    `gorm:"type:varchar(512)" json:"image"`
	ImageKey  string    `gorm:"type:varchar(512)" json:"-"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// Logo rows are never updated, the newest row is the current logo.
type Logo struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	URL       string    `gorm:"type:varchar(512);not null" json:"logo_url"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
