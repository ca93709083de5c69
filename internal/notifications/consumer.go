package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/deliverly/deliverly-backend/pkg/db/models"
	"github.com/deliverly/deliverly-backend/pkg/enums"
	"github.com/deliverly/deliverly-backend/pkg/logger"
	"github.com/deliverly/deliverly-backend/pkg/metrics"
	"github.com/deliverly/deliverly-backend/pkg/outbox"
	"github.com/deliverly/deliverly-backend/pkg/outbox/payloads"
)

const consumerName = "notifications"

type idempotencyChecker interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Delete(ctx context.Context, consumer string, eventID uuid.UUID) error
}

type partnerSource interface {
	FindPartner(ctx context.Context, partnerID uuid.UUID) (*models.Partner, error)
}

// Consumer turns domain events into in-app notification rows. It is the
// delivery-side half of the dispatcher; emission happens through the outbox.
type Consumer struct {
	repo     Repository
	partners partnerSource
	manager  idempotencyChecker
	logg     *logger.Logger
	metrics  *metrics.OutboxMetrics
}

// NewConsumer builds the notification consumer.
func NewConsumer(repo Repository, partners partnerSource, manager idempotencyChecker, logg *logger.Logger, m *metrics.OutboxMetrics) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if partners == nil {
		return nil, fmt.Errorf("partner source required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{repo: repo, partners: partners, manager: manager, logg: logg, metrics: m}, nil
}

// Process writes the notifications for one event. Unknown event types are
// acked without effect; failures release the dedupe claim so redelivery can
// retry.
func (c *Consumer) Process(ctx context.Context, eventType enums.OutboxEventType, envelope outbox.PayloadEnvelope) error {
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"event_id":   envelope.EventID,
		"event_type": eventType,
	})

	if envelope.EventID == "" {
		return fmt.Errorf("event id missing")
	}
	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		return fmt.Errorf("parse event id: %w", err)
	}

	already, err := c.manager.CheckAndMarkProcessed(ctx, consumerName, eventID)
	if err != nil {
		return fmt.Errorf("idempotency check: %w", err)
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		c.metrics.IncConsumed(string(eventType), "duplicate")
		return nil
	}

	rows, err := c.buildNotifications(ctx, eventType, envelope)
	if err != nil {
		c.logg.Error(logCtx, "failed to build notifications", err)
		_ = c.manager.Delete(ctx, consumerName, eventID)
		c.metrics.IncConsumed(string(eventType), "error")
		return err
	}
	if len(rows) == 0 {
		c.logg.Info(logCtx, "event not handled by notifications consumer")
		c.metrics.IncConsumed(string(eventType), "skipped")
		return nil
	}

	for i := range rows {
		if err := c.repo.Create(ctx, &rows[i]); err != nil {
			c.logg.Error(logCtx, "failed to store notification", err)
			_ = c.manager.Delete(ctx, consumerName, eventID)
			c.metrics.IncConsumed(string(eventType), "error")
			return err
		}
	}

	c.logg.Info(logCtx, "notifications stored")
	c.metrics.IncConsumed(string(eventType), "ack")
	return nil
}

func (c *Consumer) buildNotifications(ctx context.Context, eventType enums.OutboxEventType, envelope outbox.PayloadEnvelope) ([]models.Notification, error) {
	switch eventType {
	case enums.EventOrderCreated:
		var payload payloads.OrderCreated
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
		rows := []models.Notification{{
			UserID:  payload.UserID,
			Type:    enums.NotificationOrderCreated,
			Title:   "Order received",
			Message: fmt.Sprintf("Your order for %s is confirmed and waiting for the kitchen.", payload.Total.StringFixed(2)),
		}}
		if owner, err := c.partnerOwner(ctx, payload.PartnerID); err == nil {
			rows = append(rows, models.Notification{
				UserID:  owner,
				Type:    enums.NotificationOrderCreated,
				Title:   "New order",
				Message: "A new order just came in.",
			})
		}
		return rows, nil

	case enums.EventOrderStatusChanged:
		var payload payloads.OrderStatusChanged
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
		return []models.Notification{{
			UserID:  payload.UserID,
			Type:    enums.NotificationOrderStatusChanged,
			Title:   "Order update",
			Message: fmt.Sprintf("Your order moved from %s to %s.", payload.PreviousStatus, payload.NewStatus),
		}}, nil

	case enums.EventOrderAssigned:
		var payload payloads.OrderAssigned
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
		return []models.Notification{{
			UserID:  payload.UserID,
			Type:    enums.NotificationOrderAssigned,
			Title:   "Driver on the way",
			Message: "A driver accepted your order.",
		}}, nil

	case enums.EventOrderDelivered:
		var payload payloads.OrderDelivered
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
		return []models.Notification{{
			UserID:  payload.UserID,
			Type:    enums.NotificationOrderDelivered,
			Title:   "Order delivered",
			Message: "Your order has arrived. Enjoy!",
		}}, nil

	case enums.EventRatingSubmitted:
		var payload payloads.RatingSubmitted
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
		owner, err := c.partnerOwner(ctx, payload.PartnerID)
		if err != nil {
			return nil, err
		}
		return []models.Notification{{
			UserID:  owner,
			Type:    enums.NotificationRatingReceived,
			Title:   "New rating",
			Message: fmt.Sprintf("A customer rated their order %d out of 5.", payload.Value),
		}}, nil
	}
	return nil, nil
}

func (c *Consumer) partnerOwner(ctx context.Context, partnerID uuid.UUID) (uuid.UUID, error) {
	partner, err := c.partners.FindPartner(ctx, partnerID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("load partner: %w", err)
	}
	return partner.OwnerUserID, nil
}
