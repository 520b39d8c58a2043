package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/eggtrade-backend/api/responses"
	"github.com/angelmondragon/eggtrade-backend/api/validators"
	"github.com/angelmondragon/eggtrade-backend/internal/catalog"
	"github.com/angelmondragon/eggtrade-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/eggtrade-backend/pkg/errors"
	"github.com/angelmondragon/eggtrade-backend/pkg/logger"
	"github.com/angelmondragon/eggtrade-backend/pkg/types"
)

type createEggTypeRequest struct {
	Name         string `json:"name" validate:"required,max=50"`
	Description  string `json:"description"`
	IsActive     *bool  `json:"is_active"`
	DisplayOrder int    `json:"order" validate:"gte=0"`
}

type updateEggTypeRequest struct {
	Name         *string `json:"name" validate:"omitempty,max=50"`
	Description  *string `json:"description"`
	IsActive     *bool   `json:"is_active"`
	DisplayOrder *int    `json:"order" validate:"omitempty,gte=0"`
}

type createPriceTierRequest struct {
	Tier          enums.PriceTier `json:"tier" validate:"required"`
	EggTypeID     uuid.UUID       `json:"egg_type" validate:"required"`
	PricePerCrate decimal.Decimal `json:"price_per_crate"`
	EffectiveDate types.Date      `json:"effective_date"`
	IsActive      *bool           `json:"is_active"`
}

type updatePriceTierRequest struct {
	PricePerCrate *decimal.Decimal `json:"price_per_crate"`
	EffectiveDate *types.Date      `json:"effective_date"`
	IsActive      *bool            `json:"is_active"`
}

func catalogUnavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
}

func EggTypeCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			catalogUnavailable(w, r, logg)
			return
		}

		var payload createEggTypeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		eggType, err := svc.CreateEggType(r.Context(), catalog.CreateEggTypeInput{
			Name:         payload.Name,
			Description:  payload.Description,
			IsActive:     payload.IsActive,
			DisplayOrder: payload.DisplayOrder,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, eggType)
	}
}

// EggTypeList returns egg types in display order. ?active=true hides inactive ones.
func EggTypeList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			catalogUnavailable(w, r, logg)
			return
		}

		activeOnly, err := validators.ParseQueryBool(r, "active", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		eggTypes, err := svc.ListEggTypes(r.Context(), activeOnly)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, eggTypes)
	}
}

func EggTypeGet(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			catalogUnavailable(w, r, logg)
			return
		}

		id, err := validators.ParseURLUUID(r, "eggTypeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		eggType, err := svc.GetEggType(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, eggType)
	}
}

func EggTypeUpdate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			catalogUnavailable(w, r, logg)
			return
		}

		id, err := validators.ParseURLUUID(r, "eggTypeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateEggTypeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		eggType, err := svc.UpdateEggType(r.Context(), id, catalog.UpdateEggTypeInput{
			Name:         payload.Name,
			Description:  payload.Description,
			IsActive:     payload.IsActive,
			DisplayOrder: payload.DisplayOrder,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, eggType)
	}
}

// EggTypeDelete fails with CONFLICT while any sale still references the type.
func EggTypeDelete(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			catalogUnavailable(w, r, logg)
			return
		}

		id, err := validators.ParseURLUUID(r, "eggTypeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteEggType(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

func PriceTierCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			catalogUnavailable(w, r, logg)
			return
		}

		var payload createPriceTierRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.CreatePriceTier(r.Context(), catalog.CreatePriceTierInput{
			Tier:          payload.Tier,
			EggTypeID:     payload.EggTypeID,
			PricePerCrate: payload.PricePerCrate,
			EffectiveDate: payload.EffectiveDate,
			IsActive:      payload.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, entry)
	}
}

// PriceTierList filters by ?egg_type=, ?tier= and ?active=true.
func PriceTierList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			catalogUnavailable(w, r, logg)
			return
		}

		var filter catalog.PriceTierFilter
		var err error
		if filter.EggTypeID, err = validators.ParseQueryUUID(r, "egg_type"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if raw := r.URL.Query().Get("tier"); raw != "" {
			tier := enums.PriceTier(raw)
			filter.Tier = &tier
		}
		if filter.ActiveOnly, err = validators.ParseQueryBool(r, "active", false); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, err := svc.ListPriceTiers(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entries)
	}
}

func PriceTierGet(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			catalogUnavailable(w, r, logg)
			return
		}

		id, err := validators.ParseURLUUID(r, "priceTierId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.GetPriceTier(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entry)
	}
}

func PriceTierUpdate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			catalogUnavailable(w, r, logg)
			return
		}

		id, err := validators.ParseURLUUID(r, "priceTierId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updatePriceTierRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.UpdatePriceTier(r.Context(), id, catalog.UpdatePriceTierInput{
			PricePerCrate: payload.PricePerCrate,
			EffectiveDate: payload.EffectiveDate,
			IsActive:      payload.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entry)
	}
}

func PriceTierDelete(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			catalogUnavailable(w, r, logg)
			return
		}

		id, err := validators.ParseURLUUID(r, "priceTierId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeletePriceTier(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
