package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/eggtrade-backend/api/responses"
	"github.com/angelmondragon/eggtrade-backend/api/validators"
	"github.com/angelmondragon/eggtrade-backend/internal/sales"
	"github.com/angelmondragon/eggtrade-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/eggtrade-backend/pkg/errors"
	"github.com/angelmondragon/eggtrade-backend/pkg/logger"
	"github.com/angelmondragon/eggtrade-backend/pkg/types"
)

type saleItemPayload struct {
	EggTypeID     uuid.UUID           `json:"egg_type" validate:"required"`
	Quantity      int                 `json:"quantity"`
	PricePerCrate decimal.NullDecimal `json:"price_per_crate"`
}

type createSaleRequest struct {
	SaleType     enums.SaleType    `json:"sale_type" validate:"required"`
	CustomerID   *uuid.UUID        `json:"customer"`
	SaleDatetime *time.Time        `json:"sale_datetime"`
	Notes        string            `json:"notes"`
	Items        []saleItemPayload `json:"items" validate:"dive"`
}

type updateSaleRequest struct {
	SaleType     *enums.SaleType    `json:"sale_type"`
	Customer     types.NullableUUID `json:"customer"`
	SaleDatetime *time.Time         `json:"sale_datetime"`
	Notes        *string            `json:"notes"`
	Items        []saleItemPayload  `json:"items" validate:"omitempty,dive"`
}

func saleItems(payload []saleItemPayload) []sales.ItemInput {
	if payload == nil {
		return nil
	}
	items := make([]sales.ItemInput, 0, len(payload))
	for _, item := range payload {
		items = append(items, sales.ItemInput{
			EggTypeID:     item.EggTypeID,
			Quantity:      item.Quantity,
			PricePerCrate: item.PricePerCrate,
		})
	}
	return items
}

func (p createSaleRequest) toInput() sales.CreateSaleInput {
	items := saleItems(p.Items)
	if items == nil {
		items = []sales.ItemInput{}
	}
	return sales.CreateSaleInput{
		SaleType:     p.SaleType,
		CustomerID:   p.CustomerID,
		SaleDatetime: p.SaleDatetime,
		Notes:        p.Notes,
		Items:        items,
	}
}

func (p updateSaleRequest) toInput() sales.UpdateSaleInput {
	return sales.UpdateSaleInput{
		SaleType:     p.SaleType,
		Customer:     p.Customer,
		SaleDatetime: p.SaleDatetime,
		Notes:        p.Notes,
		Items:        saleItems(p.Items),
	}
}

// SaleCreate prices and persists a sale. Totals are always computed server side.
func SaleCreate(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		var payload createSaleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sale, err := svc.Create(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, sale)
	}
}

// SaleQuote runs the same computation as SaleCreate without persisting anything.
func SaleQuote(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		var payload createSaleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Quote(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

func SaleUpdate(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		saleID, err := validators.ParseURLUUID(r, "saleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateSaleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sale, err := svc.Update(r.Context(), saleID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sale)
	}
}

func SaleGet(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		saleID, err := validators.ParseURLUUID(r, "saleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sale, err := svc.Get(r.Context(), saleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sale)
	}
}

func SaleList(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		page, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), sales.ListParams{Params: page})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func SaleDelete(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		saleID, err := validators.ParseURLUUID(r, "saleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), saleID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
