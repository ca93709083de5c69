package models

import (
	"time"

	"github.com/google/uuid"
)

// Rating is a post-delivery score. The unique (order_id, user_id) index backs
// the single-rating-per-order guarantee.
type Rating struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID   uuid.UUID `gorm:"column:order_id;type:uuid;not null;uniqueIndex:ux_ratings_order_user" json:"order_id"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_ratings_order_user" json:"user_id"`
	PartnerID uuid.UUID `gorm:"column:partner_id;type:uuid;not null" json:"partner_id"`
	Value     int       `gorm:"column:value;not null" json:"value"`
	Comment   *string   `gorm:"column:comment" json:"comment,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
