package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/table-order/models"
	"github.com/yeremiapane/table-order/utils"
	"gorm.io/gorm"
)

// EventPublisher delivers an outbox event to one downstream consumer.
type EventPublisher interface {
	Publish(ctx context.Context, event string, payload []byte) error
}

const sweepEvery = time.Minute

// OutboxRelay polls the outbox table and hands unprocessed events to every
// publisher in id order. Delivery is at-least-once.
//
// Processed events and add-to-cart idempotency keys older than Retention are
// deleted by Sweep, which Start runs about once a minute. A client retrying
// with a key after that window adds the item again.
type OutboxRelay struct {
	DB         *gorm.DB
	Publishers []EventPublisher
	Interval   time.Duration
	BatchSize  int
	Retention  time.Duration
	StopChan   chan struct{}
}

func NewOutboxRelay(db *gorm.DB, interval time.Duration, publishers ...EventPublisher) *OutboxRelay {
	if interval <= 0 {
		interval = time.Second
	}
	return &OutboxRelay{
		DB:         db,
		Publishers: publishers,
		Interval:   interval,
		BatchSize:  100,
		Retention:  72 * time.Hour,
		StopChan:   make(chan struct{}),
	}
}

func (r *OutboxRelay) Start() {
	go func() {
		ticker := time.NewTicker(r.Interval)
		defer ticker.Stop()
		var lastSweep time.Time

		for {
			select {
			case <-ticker.C:
				if _, err := r.ProcessOnce(context.Background()); err != nil {
					utils.ErrorLogger.Errorf("Outbox relay: %v", err)
				}
				if time.Since(lastSweep) >= sweepEvery {
					lastSweep = time.Now()
					if _, err := r.Sweep(context.Background(), lastSweep); err != nil {
						utils.ErrorLogger.Errorf("Outbox sweep: %v", err)
					}
				}
			case <-r.StopChan:
				return
			}
		}
	}()
}

func (r *OutboxRelay) Stop() {
	close(r.StopChan)
}

// ProcessOnce publishes one batch and returns how many events were marked
// processed. A publisher failure stops the batch; the failed event and the
// ones after it are retried on the next call.
func (r *OutboxRelay) ProcessOnce(ctx context.Context) (int, error) {
	var events []models.OutboxEvent
	if err := r.DB.WithContext(ctx).
		Where("processed = ?", false).
		Order("id ASC").
		Limit(r.BatchSize).
		Find(&events).Error; err != nil {
		return 0, err
	}

	done := 0
	for _, event := range events {
		for _, p := range r.Publishers {
			if err := p.Publish(ctx, event.EventType, []byte(event.Payload)); err != nil {
				utils.ErrorLogger.WithFields(logrus.Fields{
					"event_id": event.ID,
					"event":    event.EventType,
				}).Errorf("Failed to publish event: %v", err)
				return done, err
			}
		}

		processedAt := time.Now()
		if err := r.DB.WithContext(ctx).Model(&models.OutboxEvent{}).
			Where("id = ?", event.ID).
			Updates(map[string]interface{}{"processed": true, "processed_at": processedAt}).Error; err != nil {
			return done, err
		}
		done++
	}

	if done > 0 {
		utils.InfoLogger.Debugf("Relayed %d outbox events", done)
	}
	return done, nil
}

// Sweep deletes processed events and idempotency keys older than Retention
// as of now. Unprocessed events are never removed. It returns the number of
// rows deleted.
func (r *OutboxRelay) Sweep(ctx context.Context, now time.Time) (int64, error) {
	if r.Retention <= 0 {
		return 0, nil
	}
	cutoff := now.Add(-r.Retention)

	events := r.DB.WithContext(ctx).
		Where("processed = ? AND processed_at < ?", true, cutoff).
		Delete(&models.OutboxEvent{})
	if events.Error != nil {
		return 0, events.Error
	}

	keys := r.DB.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.CartRequest{})
	if keys.Error != nil {
		return events.RowsAffected, keys.Error
	}

	removed := events.RowsAffected + keys.RowsAffected
	if removed > 0 {
		utils.InfoLogger.WithFields(logrus.Fields{
			"events":           events.RowsAffected,
			"idempotency_keys": keys.RowsAffected,
		}).Debug("Swept outbox")
	}
	return removed, nil
}
