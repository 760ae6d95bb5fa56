package services

import (
	"context"
	"fmt"

	"github.com/huangang/taskflow/backend/internal/metrics"
	"github.com/huangang/taskflow/backend/internal/models"
	"github.com/huangang/taskflow/backend/pkg/logger"
	"github.com/rs/zerolog"
)

// NotificationStore persists a notification for an intent.
type NotificationStore interface {
	Record(ctx context.Context, in Intent) (*models.Notification, error)
}

// Publisher pushes a stored notification to the recipient's live
// connections and reports how many took it.
type Publisher interface {
	Publish(userID string, n *models.Notification) int
}

// Dispatcher turns intents into stored notifications and live pushes.
// Nothing it does is reported back to the mutation that produced the intents.
type Dispatcher struct {
	store NotificationStore
	pub   Publisher
	log   zerolog.Logger
}

func NewDispatcher(store NotificationStore, pub Publisher) *Dispatcher {
	return &Dispatcher{
		store: store,
		pub:   pub,
		log:   logger.Component("dispatcher"),
	}
}

// Dispatch handles intents in order and returns how many were persisted.
func (d *Dispatcher) Dispatch(ctx context.Context, intents []Intent) int {
	if d == nil || len(intents) == 0 {
		return 0
	}

	stored := 0
	for _, in := range intents {
		n, err := d.store.Record(ctx, in)
		if err != nil {
			metrics.DispatchFailures.WithLabelValues("persist").Inc()
			d.log.Error().Err(err).
				Str("user_id", in.UserID).
				Str("type", in.Type).
				Msg("failed to store notification")
			continue
		}
		stored++
		metrics.NotificationsDispatched.WithLabelValues(in.Type).Inc()

		if d.pub == nil {
			continue
		}
		if err := d.publish(in.UserID, n); err != nil {
			metrics.DispatchFailures.WithLabelValues("publish").Inc()
			d.log.Error().Err(err).
				Str("user_id", in.UserID).
				Str("type", in.Type).
				Msg("failed to push notification")
		}
	}
	return stored
}

func (d *Dispatcher) publish(userID string, n *models.Notification) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("publisher panic: %v", r)
		}
	}()
	delivered := d.pub.Publish(userID, n)
	d.log.Debug().
		Str("user_id", userID).
		Str("notification_id", n.ID).
		Int("connections", delivered).
		Msg("notification pushed")
	return nil
}
