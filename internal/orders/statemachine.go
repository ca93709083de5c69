package orders

import (
	"github.com/deliverly/deliverly-backend/pkg/enums"
	"github.com/deliverly/deliverly-backend/pkg/errors"
)

// statusRank orders the happy path. Cancellation is handled separately and
// has no rank.
var statusRank = map[enums.OrderStatus]int{
	enums.OrderStatusPending:        0,
	enums.OrderStatusPreparing:      1,
	enums.OrderStatusOutForDelivery: 2,
	enums.OrderStatusDelivered:      3,
}

// ValidateTransition enforces the order lifecycle rules:
//   - the requested value must be a member of the status enum,
//   - terminal orders reject every transition, including repeats of the same
//     terminal value,
//   - cancellation is reachable from any non-terminal state,
//   - forward jumps along the happy path are allowed (pending straight to
//     delivered is legal), backward moves and no-op repeats are not.
func ValidateTransition(current enums.OrderStatus, requested enums.OrderStatus) error {
	if !enums.ValidOrderStatus(string(requested)) {
		return errors.New(errors.CodeValidation, "unknown order status").
			WithDetails(map[string]any{"status": string(requested)})
	}
	if current.IsTerminal() {
		return errors.New(errors.CodeStateConflict, "order already finalized").
			WithDetails(map[string]any{"status": string(current)})
	}
	if requested == enums.OrderStatusCancelled {
		return nil
	}
	if statusRank[requested] <= statusRank[current] {
		return errors.New(errors.CodeStateConflict, "status cannot move backward").
			WithDetails(map[string]any{"from": string(current), "to": string(requested)})
	}
	return nil
}
