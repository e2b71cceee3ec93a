package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	tests := map[string]int{
		CodeValidation: http.StatusBadRequest,
		CodeDataSource: http.StatusInternalServerError,
		CodeConfig:     http.StatusInternalServerError,
		CodeUpstream:   http.StatusBadGateway,
		CodeNotFound:   http.StatusNotFound,
		CodeInternal:   http.StatusInternalServerError,
		"Unknown":      http.StatusInternalServerError,
	}
	for code, status := range tests {
		assert.Equal(t, status, NewStandardError(code, "m", "").HTTPStatus(), code)
	}
}

func TestDataSourceErrorKeepsCauseOutOfJSON(t *testing.T) {
	cause := errors.New("TCP Provider: connection refused")
	err := NewDataSourceError("search barcode", cause)

	assert.Equal(t, "database query failed", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Details, "connection refused")

	raw, jerr := json.Marshal(err)
	require.NoError(t, jerr)
	assert.NotContains(t, string(raw), "connection refused")
}

func TestAsAndHasCode(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", NewNotFoundError("no rate found"))

	se, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeNotFound, se.Code)
	assert.True(t, HasCode(wrapped, CodeNotFound))
	assert.False(t, HasCode(wrapped, CodeUpstream))

	_, ok = As(errors.New("plain"))
	assert.False(t, ok)
}
