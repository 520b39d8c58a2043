package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/eggtrade-backend/internal/sales"
	"github.com/angelmondragon/eggtrade-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/eggtrade-backend/pkg/errors"
)

type stubSales struct {
	created *sales.CreateSaleInput
	updated *sales.UpdateSaleInput
	quoted  *sales.CreateSaleInput
	listed  *sales.ListParams
	deleted uuid.UUID
	sale    *sales.SaleDTO
	err     error
}

func (s *stubSales) Create(_ context.Context, input sales.CreateSaleInput) (*sales.SaleDTO, error) {
	s.created = &input
	return s.sale, s.err
}

func (s *stubSales) Update(_ context.Context, _ uuid.UUID, input sales.UpdateSaleInput) (*sales.SaleDTO, error) {
	s.updated = &input
	return s.sale, s.err
}

func (s *stubSales) Get(context.Context, uuid.UUID) (*sales.SaleDTO, error) {
	return s.sale, s.err
}

func (s *stubSales) List(_ context.Context, params sales.ListParams) (*sales.ListResult, error) {
	s.listed = &params
	return &sales.ListResult{Items: []sales.SaleDTO{}}, s.err
}

func (s *stubSales) Delete(_ context.Context, id uuid.UUID) error {
	s.deleted = id
	return s.err
}

func (s *stubSales) Quote(_ context.Context, input sales.CreateSaleInput) (*sales.QuoteDTO, error) {
	s.quoted = &input
	if s.err != nil {
		return nil, s.err
	}
	return &sales.QuoteDTO{SaleType: input.SaleType, TotalAmount: decimal.RequireFromString("300.00")}, nil
}

func TestSaleCreateDecodesPayload(t *testing.T) {
	saleID := uuid.New()
	eggType := uuid.New()
	customer := uuid.New()
	stub := &stubSales{sale: &sales.SaleDTO{ID: saleID, TotalAmount: decimal.RequireFromString("138.00")}}

	body := `{"sale_type":"wholesale","customer":"` + customer.String() + `","sale_datetime":"2024-06-01T10:00:00Z",` +
		`"notes":"morning","items":[{"egg_type":"` + eggType.String() + `","quantity":4,"price_per_crate":"22.50"},` +
		`{"egg_type":"` + eggType.String() + `","quantity":0}]}`

	resp := serve(SaleCreate(stub, nil), newJSONRequest(http.MethodPost, "/api/v1/sales", body))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}

	input := stub.created
	if input == nil {
		t.Fatal("service not called")
	}
	if input.SaleType != enums.SaleTypeWholesale || input.CustomerID == nil || *input.CustomerID != customer {
		t.Fatalf("unexpected header %+v", input)
	}
	if input.SaleDatetime == nil || !input.SaleDatetime.Equal(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected sale datetime %v", input.SaleDatetime)
	}
	if len(input.Items) != 2 {
		t.Fatalf("expected zero quantity line passed through, got %d items", len(input.Items))
	}
	if !input.Items[0].PricePerCrate.Valid || !input.Items[0].PricePerCrate.Decimal.Equal(decimal.RequireFromString("22.5")) {
		t.Fatalf("unexpected explicit price %+v", input.Items[0].PricePerCrate)
	}
	if input.Items[1].PricePerCrate.Valid {
		t.Fatalf("omitted price should stay null")
	}

	var envelope struct {
		Data sales.SaleDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.ID != saleID || !envelope.Data.TotalAmount.Equal(decimal.RequireFromString("138")) {
		t.Fatalf("unexpected sale %+v", envelope.Data)
	}
}

func TestSaleCreateRejectsMissingSaleType(t *testing.T) {
	stub := &stubSales{}
	resp := serve(SaleCreate(stub, nil), newJSONRequest(http.MethodPost, "/api/v1/sales", `{"items":[]}`))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if stub.created != nil {
		t.Fatal("service should not be called")
	}
	if envelope := decodeError(t, resp); envelope.Error.Details["sale_type"] == nil {
		t.Fatalf("expected sale_type detail, got %+v", envelope.Error.Details)
	}
}

func TestSaleCreateRejectsUnknownFields(t *testing.T) {
	resp := serve(SaleCreate(&stubSales{}, nil), newJSONRequest(http.MethodPost, "/api/v1/sales", `{"sale_type":"retail","total_amount":"1.00","items":[]}`))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestSaleCreateSurfacesServiceValidation(t *testing.T) {
	stub := &stubSales{err: pkgerrors.New(pkgerrors.CodeValidation, "at least one item must have a positive quantity")}
	resp := serve(SaleCreate(stub, nil), newJSONRequest(http.MethodPost, "/api/v1/sales", `{"sale_type":"retail","items":[]}`))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if envelope := decodeError(t, resp); envelope.Error.Message != "at least one item must have a positive quantity" {
		t.Fatalf("unexpected message %q", envelope.Error.Message)
	}
	if stub.created == nil || stub.created.Items == nil {
		t.Fatal("empty items should reach the service as an empty slice")
	}
}

func TestSaleQuote(t *testing.T) {
	stub := &stubSales{}
	body := `{"sale_type":"retail","items":[{"egg_type":"` + uuid.NewString() + `","quantity":10}]}`

	resp := serve(SaleQuote(stub, nil), newJSONRequest(http.MethodPost, "/api/v1/sales/quote", body))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if stub.quoted == nil || stub.created != nil {
		t.Fatal("quote must not create")
	}
}

func TestSaleUpdateDistinguishesClearedCustomer(t *testing.T) {
	saleID := uuid.New()
	stub := &stubSales{sale: &sales.SaleDTO{ID: saleID}}
	req := withURLParams(newJSONRequest(http.MethodPut, "/api/v1/sales/"+saleID.String(), `{"sale_type":"retail","customer":null}`),
		map[string]string{"saleId": saleID.String()})

	resp := serve(SaleUpdate(stub, nil), req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	input := stub.updated
	if input == nil || !input.Customer.Valid || input.Customer.Value != nil {
		t.Fatalf("expected explicit null customer, got %+v", input)
	}
	if input.Items != nil {
		t.Fatal("omitted items should stay nil so existing lines are repriced")
	}
}

func TestSaleGetNotFound(t *testing.T) {
	saleID := uuid.New()
	stub := &stubSales{err: pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")}
	req := withURLParams(newJSONRequest(http.MethodGet, "/api/v1/sales/"+saleID.String(), ""), map[string]string{"saleId": saleID.String()})

	resp := serve(SaleGet(stub, nil), req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestSaleListParsesPage(t *testing.T) {
	stub := &stubSales{}
	resp := serve(SaleList(stub, nil), newJSONRequest(http.MethodGet, "/api/v1/sales?limit=5&cursor=abc", ""))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if stub.listed == nil || stub.listed.Limit != 5 || stub.listed.Cursor != "abc" {
		t.Fatalf("unexpected params %+v", stub.listed)
	}

	resp = serve(SaleList(stub, nil), newJSONRequest(http.MethodGet, "/api/v1/sales?limit=500", ""))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for oversized limit got %d", resp.Code)
	}
}

func TestSaleDelete(t *testing.T) {
	saleID := uuid.New()
	stub := &stubSales{}
	req := withURLParams(newJSONRequest(http.MethodDelete, "/api/v1/sales/"+saleID.String(), ""), map[string]string{"saleId": saleID.String()})

	resp := serve(SaleDelete(stub, nil), req)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", resp.Code)
	}
	if stub.deleted != mustID(t, saleID.String()) {
		t.Fatalf("unexpected deleted id %s", stub.deleted)
	}
}
