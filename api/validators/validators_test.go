package validators

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/importops-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/importops-backend/pkg/errors"
)

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello", SanitizeString("  hello \x00 ", 0))
	assert.Equal(t, "line one\nline two", SanitizeString("line one\nline\x07 two", 0))
	assert.Equal(t, "añej", SanitizeString("añejo", 4))
	assert.Equal(t, "ab", SanitizeString("ab   cd", 3))
	assert.Equal(t, "", SanitizeString(" \t ", 10))
}

type paymentBody struct {
	Amount decimal.Decimal `json:"amount" validate:"gte=0"`
	Lines  []lineBody      `json:"lines" validate:"required,min=1,dive"`
}

type lineBody struct {
	Quantity int `json:"quantity" validate:"gt=0"`
}

func jsonRequest(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func requireValidation(t *testing.T, err error) *pkgerrors.Error {
	t.Helper()
	var typed *pkgerrors.Error
	require.True(t, errors.As(err, &typed), "expected *errors.Error, got %T", err)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
	return typed
}

func TestDecodeJSONBodyAcceptsValidPayload(t *testing.T) {
	var body paymentBody
	require.NoError(t, DecodeJSONBody(jsonRequest(`{"amount":"12.50","lines":[{"quantity":2}]}`), &body))
	assert.True(t, body.Amount.Equal(decimal.RequireFromString("12.5")))
}

func TestDecodeJSONBodyRejects(t *testing.T) {
	cases := map[string]string{
		"empty":           ``,
		"unknown field":   `{"amount":"1","lines":[{"quantity":1}],"extra":true}`,
		"trailing object": `{"amount":"1","lines":[{"quantity":1}]}{"amount":"2"}`,
		"negative amount": `{"amount":"-1","lines":[{"quantity":1}]}`,
		"nested quantity": `{"amount":"1","lines":[{"quantity":0}]}`,
		"wrong type":      `{"amount":"1","lines":"nope"}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			var body paymentBody
			requireValidation(t, DecodeJSONBody(jsonRequest(raw), &body))
		})
	}
}

func TestDecodeJSONBodyReportsNestedFieldPath(t *testing.T) {
	var body paymentBody
	typed := requireValidation(t, DecodeJSONBody(jsonRequest(`{"amount":"1","lines":[{"quantity":1},{"quantity":0}]}`), &body))
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "must be greater than 0", details["lines[1].quantity"])
}

func TestDecodeJSONBodyRejectsOversizedBody(t *testing.T) {
	var body paymentBody
	raw := `{"amount":"1","lines":[{"quantity":1}],"pad":"` + strings.Repeat("x", MaxBodyBytes) + `"}`
	typed := requireValidation(t, DecodeJSONBody(jsonRequest(raw), &body))
	assert.Equal(t, "request body too large", typed.Message())
}

func TestParseQueryHelpers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=7&status=confirmed&supplierId=nope", nil)

	limit, err := ParseQueryInt(req, "limit", 25, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 7, limit)

	status, err := ParseQueryEnum(req, "status", enums.ParseDispatchOrderStatus)
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, enums.DispatchOrderStatusConfirmed, *status)

	missing, err := ParseQueryUUID(req, "logisticsCompanyId")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = ParseQueryUUID(req, "supplierId")
	requireValidation(t, err)
}
