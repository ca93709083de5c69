package ratings

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/deliverly/deliverly-backend/pkg/db/models"
)

// Repository defines persistence operations for ratings and the partner
// aggregate they feed.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateRating(ctx context.Context, rating *models.Rating) error
	FindByOrderAndUser(ctx context.Context, orderID, userID uuid.UUID) (*models.Rating, error)
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	// PartnerAggregate computes the mean and count over all ratings for the
	// partner straight from the ratings table.
	PartnerAggregate(ctx context.Context, partnerID uuid.UUID) (decimal.Decimal, int64, error)
	UpdatePartnerAggregate(ctx context.Context, partnerID uuid.UUID, avg decimal.Decimal, count int64) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a ratings repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateRating(ctx context.Context, rating *models.Rating) error {
	return r.db.WithContext(ctx).Create(rating).Error
}

func (r *repository) FindByOrderAndUser(ctx context.Context, orderID, userID uuid.UUID) (*models.Rating, error) {
	var rating models.Rating
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND user_id = ?", orderID, userID).
		First(&rating).Error
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

func (r *repository) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Where("id = ?", orderID).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) PartnerAggregate(ctx context.Context, partnerID uuid.UUID) (decimal.Decimal, int64, error) {
	var row struct {
		Avg   *float64
		Count int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Rating{}).
		Select("AVG(value) AS avg, COUNT(*) AS count").
		Where("partner_id = ?", partnerID).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, 0, err
	}
	if row.Avg == nil {
		return decimal.Zero, 0, nil
	}
	return decimal.NewFromFloat(*row.Avg).Round(2), row.Count, nil
}

func (r *repository) UpdatePartnerAggregate(ctx context.Context, partnerID uuid.UUID, avg decimal.Decimal, count int64) error {
	return r.db.WithContext(ctx).
		Model(&models.Partner{}).
		Where("id = ?", partnerID).
		Updates(map[string]any{
			"rating_avg":   avg,
			"rating_count": count,
		}).Error
}
