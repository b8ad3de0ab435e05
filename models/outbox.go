package models

import "time"

const (
	EventOrderConfirmed = "order.confirmed"
	EventOrderServed    = "order.served"
)

// OutboxEvent is written in the same transaction as the state change it
// describes and relayed to subscribers afterwards.
type OutboxEvent struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	EventType   string     `gorm:"type:varchar(50);not null;index" json:"event_type"`
	AggregateID uint       `gorm:"not null" json:"aggregate_id"`
	Payload     string     `gorm:"type:text;not null" json:"payload"`
	Processed   bool       `gorm:"default:false;index:idx_outbox_processed" json:"processed"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	ProcessedAt *time.Time `gorm:"index" json:"processed_at,omitempty"`
}

// All lists every model for AutoMigrate, parents first.
func All() []interface{} {
	return []interface{}{
		&User{},
		&MenuItem{},
		&Logo{},
		&TableToken{},
		&CartItem{},
		&CartRequest{},
		&Order{},
		&OrderLine{},
		&HistoryRecord{},
		&OutboxEvent{},
	}
}
