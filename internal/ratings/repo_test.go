package ratings

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/deliverly/deliverly-backend/pkg/db"
	"github.com/deliverly/deliverly-backend/pkg/db/models"
	"github.com/deliverly/deliverly-backend/pkg/enums"
)

func setupRatingsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  partner_id TEXT NOT NULL,
  address_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  scheduled_at DATETIME,
  coupon_id TEXT,
  subtotal TEXT NOT NULL,
  discount TEXT NOT NULL,
  shipping_fee TEXT NOT NULL,
  service_fee TEXT NOT NULL,
  tip_amount TEXT NOT NULL,
  total TEXT NOT NULL,
  instructions TEXT,
  delivered_at DATETIME,
  cancelled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	ratings := `
CREATE TABLE IF NOT EXISTS ratings (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  partner_id TEXT NOT NULL,
  value INTEGER NOT NULL,
  comment TEXT,
  created_at DATETIME,
  CONSTRAINT ux_ratings_order_user UNIQUE (order_id, user_id)
);`
	partners := `
CREATE TABLE IF NOT EXISTS partners (
  id TEXT PRIMARY KEY,
  owner_user_id TEXT NOT NULL,
  name TEXT NOT NULL,
  rating_avg TEXT NOT NULL DEFAULT '0',
  rating_count INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(orders).Error)
	require.NoError(t, conn.Exec(ratings).Error)
	require.NoError(t, conn.Exec(partners).Error)
	return conn
}

func seedRating(t *testing.T, repo Repository, orderID, userID, partnerID uuid.UUID, value int) *models.Rating {
	t.Helper()

	rating := &models.Rating{
		ID:        uuid.New(),
		OrderID:   orderID,
		UserID:    userID,
		PartnerID: partnerID,
		Value:     value,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.CreateRating(context.Background(), rating))
	return rating
}

func TestRepositoryDuplicateRatingHitsUniqueIndex(t *testing.T) {
	conn := setupRatingsTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	orderID := uuid.New()
	userID := uuid.New()
	partnerID := uuid.New()
	seedRating(t, repo, orderID, userID, partnerID, 5)

	err := repo.CreateRating(ctx, &models.Rating{
		ID:        uuid.New(),
		OrderID:   orderID,
		UserID:    userID,
		PartnerID: partnerID,
		Value:     3,
	})
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err, "ux_ratings_order_user"))

	// Same user, different order is fine.
	err = repo.CreateRating(ctx, &models.Rating{
		ID:        uuid.New(),
		OrderID:   uuid.New(),
		UserID:    userID,
		PartnerID: partnerID,
		Value:     4,
	})
	require.NoError(t, err)
}

func TestRepositoryPartnerAggregate(t *testing.T) {
	conn := setupRatingsTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	partnerID := uuid.New()
	require.NoError(t, conn.Create(&models.Partner{
		ID:          partnerID,
		OwnerUserID: uuid.New(),
		Name:        "Corner Deli",
		RatingAvg:   decimal.Zero,
	}).Error)

	avg, count, err := repo.PartnerAggregate(ctx, partnerID)
	require.NoError(t, err)
	assert.True(t, avg.IsZero())
	assert.Equal(t, int64(0), count)

	seedRating(t, repo, uuid.New(), uuid.New(), partnerID, 5)
	seedRating(t, repo, uuid.New(), uuid.New(), partnerID, 4)
	seedRating(t, repo, uuid.New(), uuid.New(), partnerID, 4)
	// Another partner's ratings stay out of the mean.
	seedRating(t, repo, uuid.New(), uuid.New(), uuid.New(), 1)

	avg, count, err = repo.PartnerAggregate(ctx, partnerID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.True(t, avg.Equal(decimal.RequireFromString("4.33")), "avg %s", avg)

	require.NoError(t, repo.UpdatePartnerAggregate(ctx, partnerID, avg, count))

	var partner models.Partner
	require.NoError(t, conn.Where("id = ?", partnerID).First(&partner).Error)
	assert.Equal(t, 3, partner.RatingCount)
	assert.True(t, partner.RatingAvg.Equal(decimal.RequireFromString("4.33")))
}

func TestRepositoryFindOrderScopesStatus(t *testing.T) {
	conn := setupRatingsTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	order := &models.Order{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		PartnerID:   uuid.New(),
		AddressID:   uuid.New(),
		Status:      enums.OrderStatusDelivered,
		Subtotal:    decimal.RequireFromString("20.00"),
		Discount:    decimal.Zero,
		ShippingFee: decimal.RequireFromString("3.00"),
		ServiceFee:  decimal.RequireFromString("2.00"),
		TipAmount:   decimal.Zero,
		Total:       decimal.RequireFromString("25.00"),
	}
	require.NoError(t, conn.Create(order).Error)

	found, err := repo.FindOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusDelivered, found.Status)

	_, err = repo.FindOrder(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
