package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/deliverly/deliverly-backend/pkg/db/models"
	"github.com/deliverly/deliverly-backend/pkg/enums"
	"github.com/deliverly/deliverly-backend/pkg/errors"
	"github.com/deliverly/deliverly-backend/pkg/types"
)

// CartLine is an immutable pricing input. Unit prices arrive already
// resolved; the engine never consults the live catalog.
type CartLine struct {
	ProductID uuid.UUID
	PartnerID uuid.UUID
	UnitPrice decimal.Decimal
	Quantity  int
	Extras    types.LineExtras
}

// CouponRejectReason explains why an attached coupon produced no discount.
type CouponRejectReason string

const (
	CouponRejectNone          CouponRejectReason = ""
	CouponRejectInactive      CouponRejectReason = "inactive"
	CouponRejectOutsideWindow CouponRejectReason = "outside_window"
	CouponRejectMinimumNotMet CouponRejectReason = "minimum_purchase_not_met"
	CouponRejectEmptyCart     CouponRejectReason = "empty_cart"
	CouponRejectNotFound      CouponRejectReason = "not_found"
)

// CouponOutcome reports whether the coupon applied, so callers can surface
// a rejection instead of a silent zero discount.
type CouponOutcome struct {
	Applied bool               `json:"applied"`
	Reason  CouponRejectReason `json:"reason,omitempty"`
}

// Result is the frozen money breakdown stored on the order at creation.
type Result struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	Discount    decimal.Decimal `json:"discount"`
	ShippingFee decimal.Decimal `json:"shipping_fee"`
	ServiceFee  decimal.Decimal `json:"service_fee"`
	TipAmount   decimal.Decimal `json:"tip_amount"`
	Total       decimal.Decimal `json:"total"`
	Coupon      CouponOutcome   `json:"coupon"`
}

var oneHundred = decimal.NewFromInt(100)

// Engine computes order pricing. It is stateless; Now is injectable so
// coupon windows can be tested deterministically.
type Engine struct {
	now func() time.Time
}

func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

func NewEngineAt(now func() time.Time) *Engine {
	return &Engine{now: now}
}

// Compute derives the full pricing breakdown for a cart. The only failure
// path is rejecting negative inputs; every coupon problem resolves to a
// zero discount with a populated CouponOutcome.
func (e *Engine) Compute(lines []CartLine, coupon *models.Coupon, tipPercent, shippingFee, serviceFee decimal.Decimal) (Result, error) {
	if tipPercent.IsNegative() {
		return Result{}, errors.New(errors.CodeValidation, "tip percent must not be negative")
	}
	if shippingFee.IsNegative() || serviceFee.IsNegative() {
		return Result{}, errors.New(errors.CodeValidation, "fees must not be negative")
	}

	subtotal := decimal.Zero
	for _, line := range lines {
		if line.Quantity < 1 {
			return Result{}, errors.New(errors.CodeValidation, "line quantity must be at least 1")
		}
		if line.UnitPrice.IsNegative() {
			return Result{}, errors.New(errors.CodeValidation, "line unit price must not be negative")
		}
		lineTotal := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		for _, extra := range line.Extras {
			if extra.Quantity < 1 {
				return Result{}, errors.New(errors.CodeValidation, "extra quantity must be at least 1")
			}
			if extra.UnitPrice.IsNegative() {
				return Result{}, errors.New(errors.CodeValidation, "extra unit price must not be negative")
			}
			lineTotal = lineTotal.Add(extra.UnitPrice.Mul(decimal.NewFromInt(int64(extra.Quantity))))
		}
		subtotal = subtotal.Add(lineTotal)
	}
	subtotal = roundMoney(subtotal)

	discount := decimal.Zero
	outcome := CouponOutcome{}
	if coupon != nil {
		outcome = e.evaluateCoupon(coupon, subtotal)
		if outcome.Applied {
			switch coupon.DiscountType {
			case enums.CouponDiscountFixedAmount:
				discount = decimal.Min(subtotal, coupon.DiscountValue)
			default:
				discount = subtotal.Mul(coupon.DiscountValue).Div(oneHundred)
			}
			discount = roundMoney(discount)
		}
	}

	// Tip is computed on the pre-discount subtotal.
	tip := roundMoney(subtotal.Mul(tipPercent).Div(oneHundred))

	discounted := subtotal.Sub(discount)
	if discounted.IsNegative() {
		discounted = decimal.Zero
	}
	total := roundMoney(discounted.Add(shippingFee).Add(serviceFee).Add(tip))

	return Result{
		Subtotal:    subtotal,
		Discount:    discount,
		ShippingFee: roundMoney(shippingFee),
		ServiceFee:  roundMoney(serviceFee),
		TipAmount:   tip,
		Total:       total,
		Coupon:      outcome,
	}, nil
}

// LineTotal returns the extended price of a single line including extras,
// rounded to 2 decimals. Used when freezing line snapshots onto the order.
func LineTotal(line CartLine) decimal.Decimal {
	total := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
	for _, extra := range line.Extras {
		total = total.Add(extra.UnitPrice.Mul(decimal.NewFromInt(int64(extra.Quantity))))
	}
	return roundMoney(total)
}

func (e *Engine) evaluateCoupon(coupon *models.Coupon, subtotal decimal.Decimal) CouponOutcome {
	if coupon.Status != enums.CouponStatusActive {
		return CouponOutcome{Reason: CouponRejectInactive}
	}
	now := e.now()
	if now.Before(coupon.StartsAt) || now.After(coupon.EndsAt) {
		return CouponOutcome{Reason: CouponRejectOutsideWindow}
	}
	if subtotal.IsZero() {
		return CouponOutcome{Reason: CouponRejectEmptyCart}
	}
	if subtotal.LessThan(coupon.MinimumPurchaseAmount) {
		return CouponOutcome{Reason: CouponRejectMinimumNotMet}
	}
	return CouponOutcome{Applied: true}
}

func roundMoney(value decimal.Decimal) decimal.Decimal {
	return value.Round(2)
}
