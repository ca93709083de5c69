package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/deliverly/deliverly-backend/pkg/config"
	"github.com/deliverly/deliverly-backend/pkg/enums"
	"github.com/deliverly/deliverly-backend/pkg/logger"
	"github.com/deliverly/deliverly-backend/pkg/outbox"
)

func TestHandleMessageAcksProcessedEvent(t *testing.T) {
	processor := &fakeProcessor{}
	service := newTestWorker(t, processor)

	msg := eventMessage(t, enums.EventOrderCreated, uuid.NewString())
	if !service.handleMessage(context.Background(), msg) {
		t.Fatalf("expected processed event to ack")
	}
	if processor.calls != 1 {
		t.Fatalf("expected one process call, got %d", processor.calls)
	}
	if processor.lastType != enums.EventOrderCreated {
		t.Fatalf("unexpected event type: %s", processor.lastType)
	}
}

func TestHandleMessageNacksProcessingFailure(t *testing.T) {
	processor := &fakeProcessor{err: errors.New("db down")}
	service := newTestWorker(t, processor)

	msg := eventMessage(t, enums.EventOrderDelivered, uuid.NewString())
	if service.handleMessage(context.Background(), msg) {
		t.Fatalf("expected processing failure to nack")
	}
}

func TestHandleMessageAcksMalformedEnvelope(t *testing.T) {
	processor := &fakeProcessor{}
	service := newTestWorker(t, processor)

	msg := &gcppubsub.Message{
		Data:       []byte("not json"),
		Attributes: map[string]string{"event_type": string(enums.EventOrderCreated)},
	}
	if !service.handleMessage(context.Background(), msg) {
		t.Fatalf("expected malformed envelope to ack")
	}
	if processor.calls != 0 {
		t.Fatalf("expected no process calls, got %d", processor.calls)
	}
}

func TestHandleMessageAcksInvalidEventID(t *testing.T) {
	processor := &fakeProcessor{}
	service := newTestWorker(t, processor)

	msg := eventMessage(t, enums.EventRatingSubmitted, "not-a-uuid")
	if !service.handleMessage(context.Background(), msg) {
		t.Fatalf("expected invalid event id to ack")
	}
	if processor.calls != 0 {
		t.Fatalf("expected no process calls, got %d", processor.calls)
	}
}

func newTestWorker(t *testing.T, processor eventProcessor) *Service {
	t.Helper()
	logg := logger.New(logger.Options{
		ServiceName: "notification-worker-test",
		Output:      io.Discard,
	})
	service, err := NewService(ServiceParams{
		Config:       &config.Config{},
		Logger:       logg,
		Subscription: &fakeSubscription{},
		Consumer:     processor,
	})
	if err != nil {
		t.Fatalf("failed to construct service: %v", err)
	}
	return service
}

func eventMessage(t *testing.T, eventType enums.OutboxEventType, eventID string) *gcppubsub.Message {
	t.Helper()
	envelope := outbox.PayloadEnvelope{
		Version:    1,
		EventID:    eventID,
		OccurredAt: time.Now(),
		Data:       json.RawMessage(`{}`),
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return &gcppubsub.Message{
		Data:       data,
		Attributes: map[string]string{"event_type": string(eventType)},
	}
}

type fakeProcessor struct {
	err      error
	calls    int
	lastType enums.OutboxEventType
}

func (f *fakeProcessor) Process(_ context.Context, eventType enums.OutboxEventType, _ outbox.PayloadEnvelope) error {
	f.calls++
	f.lastType = eventType
	return f.err
}

type fakeSubscription struct{}

func (f *fakeSubscription) Receive(context.Context, func(context.Context, *gcppubsub.Message)) error {
	return nil
}
