package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataForKnownCodes(t *testing.T) {
	assert.Equal(t, http.StatusConflict, MetadataFor(CodeConflict).HTTPStatus)
	assert.Equal(t, http.StatusConflict, MetadataFor(CodeStateConflict).HTTPStatus)
	assert.Equal(t, http.StatusServiceUnavailable, MetadataFor(CodeDependency).HTTPStatus)
	assert.True(t, MetadataFor(CodeDependency).Retryable)
}

func TestMetadataForUnknownCodeFallsBackToInternal(t *testing.T) {
	meta := MetadataFor(Code("SOMETHING_ELSE"))
	assert.Equal(t, http.StatusInternalServerError, meta.HTTPStatus)
}

func TestAsUnwrapsThroughChain(t *testing.T) {
	inner := New(CodeNotFound, "order not found")
	wrapped := fmt.Errorf("loading order: %w", inner)

	typed := As(wrapped)
	require.NotNil(t, typed)
	assert.Equal(t, CodeNotFound, typed.Code())
	assert.Equal(t, "order not found", typed.Message())
}

func TestHasCode(t *testing.T) {
	err := Wrap(CodeDependency, fmt.Errorf("dial tcp"), "store unavailable")
	assert.True(t, HasCode(err, CodeDependency))
	assert.False(t, HasCode(err, CodeConflict))
	assert.False(t, HasCode(nil, CodeConflict))
}

func TestDumpCollectsChain(t *testing.T) {
	err := Wrap(CodeConflict, fmt.Errorf("root"), "shipment already assigned")
	dump := Dump(err)
	assert.Equal(t, CodeConflict, dump.Code)
	require.Len(t, dump.Chain, 2)
	assert.Contains(t, dump.TopMessage, "shipment already assigned")
}
