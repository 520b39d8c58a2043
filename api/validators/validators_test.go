package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/eggtrade-backend/pkg/errors"
)

type itemBody struct {
	EggType  string `json:"egg_type" validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"gte=0"`
}

type saleBody struct {
	SaleType string     `json:"sale_type" validate:"required,oneof=retail wholesale"`
	Items    []itemBody `json:"items" validate:"required,min=1,dive"`
}

func TestDecodeJSONBodyReportsFieldPaths(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"sale_type":"barter","items":[{"egg_type":"nope","quantity":-1}]}`))
	var body saleBody
	err := DecodeJSONBody(req, &body)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	details, ok := pkgerrors.As(err).Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "must be one of: retail wholesale", details["sale_type"])
	assert.Equal(t, "must be a valid uuid", details["items[0].egg_type"])
	assert.Equal(t, "must be greater than or equal to 0", details["items[0].quantity"])
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"sale_type":"retail","total_amount":"5.00"}`))
	var body saleBody
	err := DecodeJSONBody(req, &body)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Equal(t, "invalid request body", pkgerrors.As(err).Message())
}

func TestQueryParsers(t *testing.T) {
	id := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/?limit=5&active=true&egg_type="+id.String()+"&as_of=2024-06-01&price_per_crate=12.50&cursor=abc", nil)

	limit, err := ParseQueryInt(req, "limit", 25, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 5, limit)

	active, err := ParseQueryBool(req, "active", false)
	require.NoError(t, err)
	assert.True(t, active)

	parsed, err := ParseQueryUUID(req, "egg_type")
	require.NoError(t, err)
	assert.Equal(t, id, *parsed)

	missing, err := ParseQueryUUID(req, "customer")
	require.NoError(t, err)
	assert.Nil(t, missing)

	asOf, err := ParseQueryDate(req, "as_of")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", asOf.String())

	price, err := ParseQueryDecimal(req, "price_per_crate")
	require.NoError(t, err)
	assert.True(t, price.Valid)
	assert.Equal(t, "12.50", price.Decimal.StringFixed(2))

	page, err := ParsePage(req)
	require.NoError(t, err)
	assert.Equal(t, 5, page.Limit)
	assert.Equal(t, "abc", page.Cursor)
}

func TestQueryParsersRejectBadValues(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=500&active=maybe&egg_type=x&as_of=06/01/2024&price_per_crate=ten", nil)

	_, err := ParseQueryInt(req, "limit", 25, 1, 100)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = ParseQueryBool(req, "active", false)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = ParseQueryUUID(req, "egg_type")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = ParseQueryDate(req, "as_of")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = ParseQueryDecimal(req, "price_per_crate")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestParseURLUUID(t *testing.T) {
	id := uuid.New()
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("saleId", id.String())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	got, err := ParseURLUUID(req, "saleId")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = ParseURLUUID(req, "customerId")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
