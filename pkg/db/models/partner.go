package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Partner is the merchant fulfilling orders. RatingAvg/RatingCount are the
// denormalized aggregate recomputed after each rating submission.
type Partner struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OwnerUserID uuid.UUID       `gorm:"column:owner_user_id;type:uuid;not null" json:"owner_user_id"`
	Name        string          `gorm:"column:name;not null" json:"name"`
	RatingAvg   decimal.Decimal `gorm:"column:rating_avg;type:numeric(3,2);not null;default:0" json:"rating_avg"`
	RatingCount int             `gorm:"column:rating_count;not null;default:0" json:"rating_count"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
