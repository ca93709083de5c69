package notifications

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/deliverly/deliverly-backend/pkg/db/models"
	"github.com/deliverly/deliverly-backend/pkg/enums"
	"github.com/deliverly/deliverly-backend/pkg/logger"
	"github.com/deliverly/deliverly-backend/pkg/outbox"
	"github.com/deliverly/deliverly-backend/pkg/outbox/payloads"
	"github.com/deliverly/deliverly-backend/pkg/pagination"
)

type stubNotificationsRepo struct {
	created   []models.Notification
	createErr error
}

func (s *stubNotificationsRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubNotificationsRepo) Create(ctx context.Context, notification *models.Notification) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, *notification)
	return nil
}

func (s *stubNotificationsRepo) List(ctx context.Context, params listNotificationsParams) ([]models.Notification, *pagination.Cursor, error) {
	return nil, nil, nil
}

func (s *stubNotificationsRepo) MarkRead(ctx context.Context, userID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error) {
	return notificationMarkResult{}, nil
}

func (s *stubNotificationsRepo) MarkAllRead(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	return 0, nil
}

type stubPartnerSource struct {
	partner *models.Partner
}

func (s *stubPartnerSource) FindPartner(ctx context.Context, partnerID uuid.UUID) (*models.Partner, error) {
	if s.partner == nil || s.partner.ID != partnerID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.partner, nil
}

type stubManager struct {
	processed map[uuid.UUID]bool
	deleted   []uuid.UUID
}

func (s *stubManager) CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error) {
	if s.processed == nil {
		s.processed = make(map[uuid.UUID]bool)
	}
	if s.processed[eventID] {
		return true, nil
	}
	s.processed[eventID] = true
	return false, nil
}

func (s *stubManager) Delete(ctx context.Context, consumer string, eventID uuid.UUID) error {
	s.deleted = append(s.deleted, eventID)
	delete(s.processed, eventID)
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
}

func envelopeFor(t *testing.T, data any) outbox.PayloadEnvelope {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	return outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       raw,
	}
}

func newTestConsumer(t *testing.T, repo *stubNotificationsRepo, partners *stubPartnerSource, manager *stubManager) *Consumer {
	t.Helper()
	if partners == nil {
		partners = &stubPartnerSource{}
	}
	consumer, err := NewConsumer(repo, partners, manager, testLogger(), nil)
	require.NoError(t, err)
	return consumer
}

func TestConsumerStatusChangedNotifiesCustomer(t *testing.T) {
	repo := &stubNotificationsRepo{}
	manager := &stubManager{}
	consumer := newTestConsumer(t, repo, nil, manager)

	userID := uuid.New()
	envelope := envelopeFor(t, payloads.OrderStatusChanged{
		OrderID:        uuid.New(),
		UserID:         userID,
		PartnerID:      uuid.New(),
		PreviousStatus: enums.OrderStatusPending,
		NewStatus:      enums.OrderStatusPreparing,
	})

	require.NoError(t, consumer.Process(context.Background(), enums.EventOrderStatusChanged, envelope))

	require.Len(t, repo.created, 1)
	assert.Equal(t, userID, repo.created[0].UserID)
	assert.Equal(t, enums.NotificationOrderStatusChanged, repo.created[0].Type)
}

func TestConsumerOrderCreatedNotifiesBothSides(t *testing.T) {
	ownerID := uuid.New()
	partner := &models.Partner{ID: uuid.New(), OwnerUserID: ownerID, Name: "Corner Deli"}
	repo := &stubNotificationsRepo{}
	consumer := newTestConsumer(t, repo, &stubPartnerSource{partner: partner}, &stubManager{})

	customerID := uuid.New()
	envelope := envelopeFor(t, payloads.OrderCreated{
		OrderID:   uuid.New(),
		UserID:    customerID,
		PartnerID: partner.ID,
		Total:     decimal.RequireFromString("54.50"),
	})

	require.NoError(t, consumer.Process(context.Background(), enums.EventOrderCreated, envelope))

	require.Len(t, repo.created, 2)
	assert.Equal(t, customerID, repo.created[0].UserID)
	assert.Equal(t, ownerID, repo.created[1].UserID)
}

func TestConsumerRatingSubmittedNotifiesPartnerOwner(t *testing.T) {
	ownerID := uuid.New()
	partner := &models.Partner{ID: uuid.New(), OwnerUserID: ownerID, Name: "Corner Deli"}
	repo := &stubNotificationsRepo{}
	consumer := newTestConsumer(t, repo, &stubPartnerSource{partner: partner}, &stubManager{})

	envelope := envelopeFor(t, payloads.RatingSubmitted{
		RatingID:  uuid.New(),
		OrderID:   uuid.New(),
		PartnerID: partner.ID,
		Value:     5,
	})

	require.NoError(t, consumer.Process(context.Background(), enums.EventRatingSubmitted, envelope))

	require.Len(t, repo.created, 1)
	assert.Equal(t, ownerID, repo.created[0].UserID)
	assert.Equal(t, enums.NotificationRatingReceived, repo.created[0].Type)
}

func TestConsumerDuplicateEventSkipped(t *testing.T) {
	repo := &stubNotificationsRepo{}
	manager := &stubManager{}
	consumer := newTestConsumer(t, repo, nil, manager)

	envelope := envelopeFor(t, payloads.OrderDelivered{
		OrderID: uuid.New(),
		UserID:  uuid.New(),
	})

	require.NoError(t, consumer.Process(context.Background(), enums.EventOrderDelivered, envelope))
	require.NoError(t, consumer.Process(context.Background(), enums.EventOrderDelivered, envelope))

	assert.Len(t, repo.created, 1)
}

func TestConsumerFailureReleasesClaim(t *testing.T) {
	repo := &stubNotificationsRepo{createErr: assert.AnError}
	manager := &stubManager{}
	consumer := newTestConsumer(t, repo, nil, manager)

	envelope := envelopeFor(t, payloads.OrderDelivered{
		OrderID: uuid.New(),
		UserID:  uuid.New(),
	})

	err := consumer.Process(context.Background(), enums.EventOrderDelivered, envelope)
	require.Error(t, err)
	require.Len(t, manager.deleted, 1)

	// Redelivery succeeds once the repo recovers.
	repo.createErr = nil
	require.NoError(t, consumer.Process(context.Background(), enums.EventOrderDelivered, envelope))
	assert.Len(t, repo.created, 1)
}

func TestConsumerUnknownEventAcked(t *testing.T) {
	repo := &stubNotificationsRepo{}
	consumer := newTestConsumer(t, repo, nil, &stubManager{})

	envelope := envelopeFor(t, map[string]any{"foo": "bar"})
	require.NoError(t, consumer.Process(context.Background(), enums.OutboxEventType("billing.settled"), envelope))
	assert.Empty(t, repo.created)
}
