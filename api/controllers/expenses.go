package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/eggtrade-backend/api/responses"
	"github.com/angelmondragon/eggtrade-backend/api/validators"
	"github.com/angelmondragon/eggtrade-backend/internal/expenses"
	"github.com/angelmondragon/eggtrade-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/eggtrade-backend/pkg/errors"
	"github.com/angelmondragon/eggtrade-backend/pkg/logger"
	"github.com/angelmondragon/eggtrade-backend/pkg/types"
)

type createCategoryRequest struct {
	Name         string `json:"name" validate:"required,max=100"`
	Description  string `json:"description"`
	IsActive     *bool  `json:"is_active"`
	DisplayOrder int    `json:"order" validate:"gte=0"`
}

type createExpenseRequest struct {
	Date              types.Date               `json:"date"`
	CategoryID        uuid.UUID                `json:"category" validate:"required"`
	Description       string                   `json:"description" validate:"required,max=500"`
	Amount            decimal.Decimal          `json:"amount"`
	PaymentMethod     enums.PaymentMethod      `json:"payment_method"`
	IsRecurring       bool                     `json:"is_recurring"`
	RecurrencePattern *enums.RecurrencePattern `json:"recurrence_pattern"`
	RecurrenceEndDate *types.Date              `json:"recurrence_end_date"`
	Notes             string                   `json:"notes"`
}

type updateExpenseRequest struct {
	Date              *types.Date              `json:"date"`
	CategoryID        *uuid.UUID               `json:"category"`
	Description       *string                  `json:"description" validate:"omitempty,max=500"`
	Amount            *decimal.Decimal         `json:"amount"`
	PaymentMethod     *enums.PaymentMethod     `json:"payment_method"`
	IsRecurring       *bool                    `json:"is_recurring"`
	RecurrencePattern *enums.RecurrencePattern `json:"recurrence_pattern"`
	RecurrenceEndDate *types.Date              `json:"recurrence_end_date"`
	Notes             *string                  `json:"notes"`
}

func expensesUnavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "expenses service unavailable"))
}

func ExpenseCategoryCreate(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			expensesUnavailable(w, r, logg)
			return
		}

		var payload createCategoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := svc.CreateCategory(r.Context(), expenses.CreateCategoryInput{
			Name:         payload.Name,
			Description:  payload.Description,
			IsActive:     payload.IsActive,
			DisplayOrder: payload.DisplayOrder,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, category)
	}
}

func ExpenseCategoryList(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			expensesUnavailable(w, r, logg)
			return
		}

		activeOnly, err := validators.ParseQueryBool(r, "active", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		categories, err := svc.ListCategories(r.Context(), activeOnly)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, categories)
	}
}

func ExpenseCreate(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			expensesUnavailable(w, r, logg)
			return
		}

		var payload createExpenseRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		expense, err := svc.Create(r.Context(), expenses.CreateExpenseInput{
			Date:              payload.Date,
			CategoryID:        payload.CategoryID,
			Description:       payload.Description,
			Amount:            payload.Amount,
			PaymentMethod:     payload.PaymentMethod,
			IsRecurring:       payload.IsRecurring,
			RecurrencePattern: payload.RecurrencePattern,
			RecurrenceEndDate: payload.RecurrenceEndDate,
			Notes:             payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, expense)
	}
}

func ExpenseList(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			expensesUnavailable(w, r, logg)
			return
		}

		page, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), expenses.ListParams{Params: page})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func ExpenseGet(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			expensesUnavailable(w, r, logg)
			return
		}

		id, err := validators.ParseURLUUID(r, "expenseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		expense, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, expense)
	}
}

func ExpenseUpdate(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			expensesUnavailable(w, r, logg)
			return
		}

		id, err := validators.ParseURLUUID(r, "expenseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateExpenseRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		expense, err := svc.Update(r.Context(), id, expenses.UpdateExpenseInput{
			Date:              payload.Date,
			CategoryID:        payload.CategoryID,
			Description:       payload.Description,
			Amount:            payload.Amount,
			PaymentMethod:     payload.PaymentMethod,
			IsRecurring:       payload.IsRecurring,
			RecurrencePattern: payload.RecurrencePattern,
			RecurrenceEndDate: payload.RecurrenceEndDate,
			Notes:             payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, expense)
	}
}

func ExpenseDelete(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			expensesUnavailable(w, r, logg)
			return
		}

		id, err := validators.ParseURLUUID(r, "expenseId")
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
