package services

import (
	"encoding/json"
	"fmt"

	"github.com/yeremiapane/table-order/models"
	"gorm.io/gorm"
)

// enqueueEvent stores an outbox row inside tx so the event commits or rolls
// back together with the change it describes.
func enqueueEvent(tx *gorm.DB, eventType string, aggregateID uint, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", eventType, err)
	}

	return tx.Create(&models.OutboxEvent{
		EventType:   eventType,
		AggregateID: aggregateID,
		Payload:     string(body),
	}).Error
}
