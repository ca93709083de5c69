package ratings

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/deliverly/deliverly-backend/pkg/db"
	"github.com/deliverly/deliverly-backend/pkg/db/models"
	"github.com/deliverly/deliverly-backend/pkg/enums"
	pkgerrors "github.com/deliverly/deliverly-backend/pkg/errors"
	"github.com/deliverly/deliverly-backend/pkg/logger"
	"github.com/deliverly/deliverly-backend/pkg/outbox"
	"github.com/deliverly/deliverly-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// SubmitInput carries a rating submission resolved from the request.
type SubmitInput struct {
	OrderID   uuid.UUID
	PartnerID uuid.UUID
	UserID    uuid.UUID
	Value     int
	Comment   *string
}

// Service gates post-delivery ratings: one per order, owner only, strict
// create-once semantics.
type Service interface {
	CanRate(ctx context.Context, orderID, userID uuid.UUID) (bool, error)
	Submit(ctx context.Context, input SubmitInput) (*models.Rating, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	logg   *logger.Logger
}

// NewService builds the rating service with the required dependencies.
func NewService(repo Repository, tx txRunner, outboxPub outboxPublisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ratings repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxPub == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, tx: tx, outbox: outboxPub, logg: logg}, nil
}

func (s *service) CanRate(ctx context.Context, orderID, userID uuid.UUID) (bool, error) {
	if orderID == uuid.Nil || userID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "order id and user id required")
	}

	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.Status != enums.OrderStatusDelivered || order.UserID != userID {
		return false, nil
	}

	_, err = s.repo.FindByOrderAndUser(ctx, orderID, userID)
	if err == gorm.ErrRecordNotFound {
		return true, nil
	}
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing rating")
	}
	return false, nil
}

func (s *service) Submit(ctx context.Context, input SubmitInput) (*models.Rating, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	// Range check fires before any persistence attempt.
	if input.Value < 1 || input.Value > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating value must be between 1 and 5").
			WithDetails(map[string]any{"value": input.Value})
	}

	rating := &models.Rating{
		OrderID:   input.OrderID,
		UserID:    input.UserID,
		PartnerID: input.PartnerID,
		Value:     input.Value,
		Comment:   input.Comment,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrder(ctx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.UserID != input.UserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to caller")
		}
		if order.PartnerID != input.PartnerID {
			return pkgerrors.New(pkgerrors.CodeValidation, "partner does not match order")
		}
		if order.Status != enums.OrderStatusDelivered {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not delivered yet").
				WithDetails(map[string]any{"status": string(order.Status)})
		}

		if err := repo.CreateRating(ctx, rating); err != nil {
			if db.IsUniqueViolation(err, "ux_ratings_order_user") {
				return pkgerrors.New(pkgerrors.CodeConflict, "rating already exists for this order")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create rating")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventRatingSubmitted,
			AggregateType: enums.AggregateRating,
			AggregateID:   rating.ID,
			Actor:         &outbox.ActorRef{UserID: input.UserID, Role: string(enums.RoleCustomer)},
			Data: payloads.RatingSubmitted{
				RatingID:  rating.ID,
				OrderID:   rating.OrderID,
				PartnerID: rating.PartnerID,
				Value:     rating.Value,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	// Aggregate recompute is best-effort: the submitted rating stands even
	// if the denormalized partner columns lag behind.
	s.recomputeAggregate(ctx, input.PartnerID)

	return rating, nil
}

func (s *service) recomputeAggregate(ctx context.Context, partnerID uuid.UUID) {
	avg, count, err := s.repo.PartnerAggregate(ctx, partnerID)
	if err == nil {
		err = s.repo.UpdatePartnerAggregate(ctx, partnerID, avg, count)
	}
	if err != nil && s.logg != nil {
		logCtx := s.logg.WithField(ctx, "partner_id", partnerID.String())
		s.logg.Warn(logCtx, fmt.Sprintf("partner rating aggregate recompute failed: %v", err))
	}
}
