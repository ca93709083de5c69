package enums

// CouponDiscountType distinguishes percentage from flat discounts.
type CouponDiscountType string

const (
	CouponDiscountPercentage  CouponDiscountType = "percentage"
	CouponDiscountFixedAmount CouponDiscountType = "fixed_amount"
)

// CouponStatus is the administrative state of a coupon.
type CouponStatus string

const (
	CouponStatusActive   CouponStatus = "active"
	CouponStatusInactive CouponStatus = "inactive"
	CouponStatusExpired  CouponStatus = "expired"
)
