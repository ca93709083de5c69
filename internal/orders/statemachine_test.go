package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deliverly/deliverly-backend/pkg/enums"
	"github.com/deliverly/deliverly-backend/pkg/errors"
)

func TestValidateTransitionHappyPath(t *testing.T) {
	require.NoError(t, ValidateTransition(enums.OrderStatusPending, enums.OrderStatusPreparing))
	require.NoError(t, ValidateTransition(enums.OrderStatusPreparing, enums.OrderStatusOutForDelivery))
	require.NoError(t, ValidateTransition(enums.OrderStatusOutForDelivery, enums.OrderStatusDelivered))
}

func TestValidateTransitionForwardJumps(t *testing.T) {
	require.NoError(t, ValidateTransition(enums.OrderStatusPending, enums.OrderStatusOutForDelivery))
	require.NoError(t, ValidateTransition(enums.OrderStatusPending, enums.OrderStatusDelivered))
}

func TestValidateTransitionCancelFromAnyNonTerminal(t *testing.T) {
	for _, from := range []enums.OrderStatus{
		enums.OrderStatusPending,
		enums.OrderStatusPreparing,
		enums.OrderStatusOutForDelivery,
	} {
		require.NoError(t, ValidateTransition(from, enums.OrderStatusCancelled), "from %s", from)
	}
}

func TestValidateTransitionTerminalRejectsEverything(t *testing.T) {
	targets := []enums.OrderStatus{
		enums.OrderStatusPending,
		enums.OrderStatusPreparing,
		enums.OrderStatusOutForDelivery,
		enums.OrderStatusDelivered,
		enums.OrderStatusCancelled,
	}
	for _, from := range []enums.OrderStatus{enums.OrderStatusDelivered, enums.OrderStatusCancelled} {
		for _, to := range targets {
			err := ValidateTransition(from, to)
			require.Error(t, err, "%s -> %s", from, to)
			assert.True(t, errors.HasCode(err, errors.CodeStateConflict), "%s -> %s", from, to)
		}
	}
}

func TestValidateTransitionIdempotentRepeatStaysConflict(t *testing.T) {
	// Same terminal target twice yields the same conflict both times.
	for i := 0; i < 2; i++ {
		err := ValidateTransition(enums.OrderStatusDelivered, enums.OrderStatusDelivered)
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.CodeStateConflict))
	}
}

func TestValidateTransitionRejectsBackwardAndRepeat(t *testing.T) {
	err := ValidateTransition(enums.OrderStatusOutForDelivery, enums.OrderStatusPreparing)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeStateConflict))

	err = ValidateTransition(enums.OrderStatusPreparing, enums.OrderStatusPreparing)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeStateConflict))
}

func TestValidateTransitionUnknownStatusRejectedFirst(t *testing.T) {
	// Validation fires before any state check, even on a terminal order.
	err := ValidateTransition(enums.OrderStatusDelivered, enums.OrderStatus("shipped"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeValidation))
}
