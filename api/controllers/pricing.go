package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/eggtrade-backend/api/responses"
	"github.com/angelmondragon/eggtrade-backend/api/validators"
	"github.com/angelmondragon/eggtrade-backend/internal/pricing"
	"github.com/angelmondragon/eggtrade-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/eggtrade-backend/pkg/errors"
	"github.com/angelmondragon/eggtrade-backend/pkg/logger"
)

// PricingUnitPrice resolves one unit price from query parameters:
// sale_type and egg_type are required, customer, as_of and price_per_crate optional.
func PricingUnitPrice(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing service unavailable"))
			return
		}

		input, err := unitPriceInputFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ResolveUnitPrice(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func unitPriceInputFromQuery(r *http.Request) (pricing.UnitPriceInput, error) {
	var input pricing.UnitPriceInput

	rawType := strings.TrimSpace(r.URL.Query().Get("sale_type"))
	if rawType == "" {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "sale_type is required").WithDetails(map[string]any{"field": "sale_type"})
	}
	input.SaleType = enums.SaleType(rawType)

	eggType, err := validators.ParseQueryUUID(r, "egg_type")
	if err != nil {
		return input, err
	}
	if eggType == nil {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "egg_type is required").WithDetails(map[string]any{"field": "egg_type"})
	}
	input.EggTypeID = *eggType

	if input.CustomerID, err = validators.ParseQueryUUID(r, "customer"); err != nil {
		return input, err
	}
	if input.AsOf, err = validators.ParseQueryDate(r, "as_of"); err != nil {
		return input, err
	}
	if input.PricePerCrate, err = validators.ParseQueryDecimal(r, "price_per_crate"); err != nil {
		return input, err
	}
	return input, nil
}
