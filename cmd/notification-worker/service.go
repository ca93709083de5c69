package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/deliverly/deliverly-backend/pkg/config"
	"github.com/deliverly/deliverly-backend/pkg/enums"
	"github.com/deliverly/deliverly-backend/pkg/logger"
	"github.com/deliverly/deliverly-backend/pkg/outbox"
)

type subscription interface {
	Receive(ctx context.Context, f func(ctx context.Context, m *gcppubsub.Message)) error
}

type eventProcessor interface {
	Process(ctx context.Context, eventType enums.OutboxEventType, envelope outbox.PayloadEnvelope) error
}

type pinger func(context.Context) error

type ServiceParams struct {
	Config       *config.Config
	Logger       *logger.Logger
	Subscription subscription
	Consumer     eventProcessor

	// Pings run before the receive loop starts.
	Pings map[string]pinger
}

// Service pulls order domain events off the orders subscription and hands
// them to the notification consumer.
type Service struct {
	cfg          *config.Config
	logg         *logger.Logger
	subscription subscription
	consumer     eventProcessor
	pings        map[string]pinger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Config == nil {
		return nil, errors.New("config is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.Subscription == nil {
		return nil, errors.New("orders subscription is required")
	}
	if params.Consumer == nil {
		return nil, errors.New("notification consumer is required")
	}
	return &Service{
		cfg:          params.Config,
		logg:         params.Logger,
		subscription: params.Subscription,
		consumer:     params.Consumer,
		pings:        params.Pings,
	}, nil
}

func (s *Service) ensureReadiness(ctx context.Context) error {
	for name, fn := range s.pings {
		if err := fn(ctx); err != nil {
			s.logg.Error(ctx, fmt.Sprintf("%s ping failed", name), err)
			return fmt.Errorf("%s ping failed: %w", name, err)
		}
	}
	return nil
}

// Run blocks on the receive loop until the context is canceled.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := s.ensureReadiness(ctx); err != nil {
		return err
	}

	return s.subscription.Receive(ctx, func(ctx context.Context, msg *gcppubsub.Message) {
		if s.handleMessage(ctx, msg) {
			msg.Ack()
			return
		}
		msg.Nack()
	})
}

// handleMessage reports whether the message should be acked. Malformed
// messages are acked; processing failures are nacked for redelivery.
func (s *Service) handleMessage(ctx context.Context, msg *gcppubsub.Message) bool {
	eventType := enums.OutboxEventType(msg.Attributes["event_type"])
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	})

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		s.logg.Error(logCtx, "failed to decode envelope", err)
		return true
	}
	if _, err := uuid.Parse(envelope.EventID); err != nil {
		s.logg.Error(logCtx, "invalid event id", err)
		return true
	}

	if err := s.consumer.Process(ctx, eventType, envelope); err != nil {
		s.logg.Error(logCtx, "event processing failed", err)
		return false
	}
	return true
}
