package partners

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/deliverly/deliverly-backend/pkg/db/models"
)

// Repository exposes read access to partners.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindPartner(ctx context.Context, partnerID uuid.UUID) (*models.Partner, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a partners repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindPartner(ctx context.Context, partnerID uuid.UUID) (*models.Partner, error) {
	var partner models.Partner
	err := r.db.WithContext(ctx).Where("id = ?", partnerID).First(&partner).Error
	if err != nil {
		return nil, err
	}
	return &partner, nil
}
