package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lineRequest struct {
	Handle    string `json:"handle" validate:"required"`
	VariantID string `json:"variant_id,omitempty"`
	Quantity  int    `json:"quantity" validate:"gte=1,lte=99"`
}

func jsonRequest(t *testing.T, body interface{}) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/carts/x/lines", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// Feature: http-api, Property 3: Quantity bounds are enforced at decode time
func TestProperty_QuantityRangeValidation(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("quantities outside 1..99 are rejected with a field error", prop.ForAll(
		func(quantity int) bool {
			var req lineRequest
			err := DecodeAndValidate(jsonRequest(t, map[string]interface{}{
				"handle":   "amber-oud",
				"quantity": quantity,
			}), &req)

			if quantity >= 1 && quantity <= 99 {
				return err == nil && req.Quantity == quantity
			}
			fields := FormatValidationErrors(err)
			return len(fields) == 1 && fields[0].Field == "quantity"
		},
		gen.IntRange(-50, 150),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestDecodeAndValidate_ReportsJSONFieldNames(t *testing.T) {
	var req lineRequest
	err := DecodeAndValidate(jsonRequest(t, map[string]interface{}{"quantity": 1}), &req)

	fields := FormatValidationErrors(err)
	require.Len(t, fields, 1)
	assert.Equal(t, "handle", fields[0].Field)
	assert.Equal(t, "This field is required", fields[0].Message)
}

func TestDecodeAndValidate_MalformedBodies(t *testing.T) {
	var req lineRequest

	err := DecodeAndValidate(httptest.NewRequest(http.MethodPost, "/", strings.NewReader("")), &req)
	assert.True(t, errors.Is(err, ErrEmptyBody))

	err = DecodeAndValidate(httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json")), &req)
	require.Error(t, err)
	assert.Nil(t, FormatValidationErrors(err))
	assert.Contains(t, err.Error(), "invalid JSON body")
}

func TestRespondWithDecodeError(t *testing.T) {
	var req lineRequest
	err := DecodeAndValidate(jsonRequest(t, map[string]interface{}{"handle": "amber-oud", "quantity": 0}), &req)

	w := httptest.NewRecorder()
	RespondWithDecodeError(w, nil, err)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "validation_errors")
	assert.Contains(t, w.Body.String(), "Value must be greater than or equal to 1")

	w = httptest.NewRecorder()
	RespondWithDecodeError(w, nil, ErrEmptyBody)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "request body is empty")
}
