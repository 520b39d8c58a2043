package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/eggtrade-backend/api/responses"
	"github.com/angelmondragon/eggtrade-backend/api/validators"
	"github.com/angelmondragon/eggtrade-backend/internal/inventory"
	pkgerrors "github.com/angelmondragon/eggtrade-backend/pkg/errors"
	"github.com/angelmondragon/eggtrade-backend/pkg/logger"
	"github.com/angelmondragon/eggtrade-backend/pkg/types"
)

type intakeItemPayload struct {
	EggTypeID uuid.UUID `json:"egg_type" validate:"required"`
	Crates    int       `json:"crates" validate:"gte=0"`
}

type createIntakeLogRequest struct {
	RecordedDate types.Date          `json:"recorded_date"`
	Notes        string              `json:"notes"`
	Items        []intakeItemPayload `json:"items" validate:"dive"`
}

type updateIntakeLogRequest struct {
	RecordedDate *types.Date         `json:"recorded_date"`
	Notes        *string             `json:"notes"`
	Items        []intakeItemPayload `json:"items" validate:"omitempty,dive"`
}

func intakeItems(payload []intakeItemPayload) []inventory.ItemInput {
	if payload == nil {
		return nil
	}
	items := make([]inventory.ItemInput, 0, len(payload))
	for _, item := range payload {
		items = append(items, inventory.ItemInput{EggTypeID: item.EggTypeID, Crates: item.Crates})
	}
	return items
}

func inventoryUnavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
}

// IntakeLogCreate records the day's intake. A missing recorded_date means today.
func IntakeLogCreate(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			inventoryUnavailable(w, r, logg)
			return
		}

		var payload createIntakeLogRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		log, err := svc.Create(r.Context(), inventory.CreateIntakeLogInput{
			RecordedDate: payload.RecordedDate,
			Notes:        payload.Notes,
			Items:        intakeItems(payload.Items),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, log)
	}
}

func IntakeLogList(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			inventoryUnavailable(w, r, logg)
			return
		}

		page, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), inventory.ListParams{Params: page})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func IntakeLogGet(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			inventoryUnavailable(w, r, logg)
			return
		}

		id, err := validators.ParseURLUUID(r, "intakeLogId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		log, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, log)
	}
}

func IntakeLogUpdate(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			inventoryUnavailable(w, r, logg)
			return
		}

		id, err := validators.ParseURLUUID(r, "intakeLogId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateIntakeLogRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		log, err := svc.Update(r.Context(), id, inventory.UpdateIntakeLogInput{
			RecordedDate: payload.RecordedDate,
			Notes:        payload.Notes,
			Items:        intakeItems(payload.Items),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, log)
	}
}

func IntakeLogDelete(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			inventoryUnavailable(w, r, logg)
			return
		}

		id, err := validators.ParseURLUUID(r, "intakeLogId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
