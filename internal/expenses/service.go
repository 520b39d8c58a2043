package expenses

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/eggtrade-backend/pkg/db"
	"github.com/angelmondragon/eggtrade-backend/pkg/db/models"
	"github.com/angelmondragon/eggtrade-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/eggtrade-backend/pkg/errors"
	pkgpagination "github.com/angelmondragon/eggtrade-backend/pkg/pagination"
	"github.com/angelmondragon/eggtrade-backend/pkg/types"
)

const (
	maxCategoryName = 100
	maxDescription  = 500
	moneyPlaces     = 2
)

type expensesRepository interface {
	CreateCategory(ctx context.Context, category *models.ExpenseCategory) error
	ListCategories(ctx context.Context, activeOnly bool) ([]models.ExpenseCategory, error)
	CategoryExists(ctx context.Context, id uuid.UUID) (bool, error)

	Create(ctx context.Context, expense *models.Expense) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Expense, error)
	List(ctx context.Context, opts listQuery) ([]models.Expense, error)
	Save(ctx context.Context, expense *models.Expense) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service manages expense categories and business expenses.
type Service interface {
	CreateCategory(ctx context.Context, input CreateCategoryInput) (*CategoryDTO, error)
	ListCategories(ctx context.Context, activeOnly bool) ([]CategoryDTO, error)

	Create(ctx context.Context, input CreateExpenseInput) (*ExpenseDTO, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*ExpenseDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateExpenseInput) (*ExpenseDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo expensesRepository
	loc  *time.Location
	now  func() time.Time
}

func NewService(repo expensesRepository, loc *time.Location) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("expenses repository required")
	}
	if loc == nil {
		loc = time.UTC
	}
	return &service{repo: repo, loc: loc, now: time.Now}, nil
}

func (s *service) CreateCategory(ctx context.Context, input CreateCategoryInput) (*CategoryDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fieldError("name", "category name cannot be empty")
	}
	if utf8.RuneCountInString(name) > maxCategoryName {
		return nil, fieldError("name", fmt.Sprintf("category name must be at most %d characters", maxCategoryName))
	}

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}
	category := &models.ExpenseCategory{
		Name:         name,
		Description:  strings.TrimSpace(input.Description),
		IsActive:     active,
		DisplayOrder: input.DisplayOrder,
	}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "an expense category with this name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create expense category")
	}
	return categoryFromModel(category), nil
}

func (s *service) ListCategories(ctx context.Context, activeOnly bool) ([]CategoryDTO, error) {
	rows, err := s.repo.ListCategories(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list expense categories")
	}
	items := make([]CategoryDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *categoryFromModel(&rows[i]))
	}
	return items, nil
}

func (s *service) Create(ctx context.Context, input CreateExpenseInput) (*ExpenseDTO, error) {
	date := input.Date
	if date.IsZero() {
		date = types.DateIn(s.now(), s.loc)
	}
	method := input.PaymentMethod
	if method == "" {
		method = enums.PaymentMethodCash
	}

	expense := &models.Expense{
		Date:              date,
		CategoryID:        input.CategoryID,
		Description:       strings.TrimSpace(input.Description),
		Amount:            input.Amount,
		PaymentMethod:     method,
		IsRecurring:       input.IsRecurring,
		RecurrencePattern: input.RecurrencePattern,
		RecurrenceEndDate: input.RecurrenceEndDate,
		Notes:             strings.TrimSpace(input.Notes),
	}
	if err := validateExpense(expense); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, expense.CategoryID); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, expense); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create expense")
	}
	return s.Get(ctx, expense.ID)
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	query := listQuery{limit: pkgpagination.LimitWithBuffer(params.Limit)}
	if params.Cursor != "" {
		cursor, err := pkgpagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.cursor = cursor
	}

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list expenses")
	}
	items := make([]ExpenseDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *expenseFromModel(&rows[i]))
	}
	page := pkgpagination.BuildPage(items, params.Limit, func(e ExpenseDTO) pkgpagination.Cursor {
		return pkgpagination.Cursor{At: e.Date.Time(), ID: e.ID}
	})
	return &page, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ExpenseDTO, error) {
	expense, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return expenseFromModel(expense), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateExpenseInput) (*ExpenseDTO, error) {
	expense, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Date != nil {
		expense.Date = *input.Date
	}
	if input.CategoryID != nil && *input.CategoryID != expense.CategoryID {
		if err := s.checkCategory(ctx, *input.CategoryID); err != nil {
			return nil, err
		}
		expense.CategoryID = *input.CategoryID
		expense.Category = nil
	}
	if input.Description != nil {
		expense.Description = strings.TrimSpace(*input.Description)
	}
	if input.Amount != nil {
		expense.Amount = *input.Amount
	}
	if input.PaymentMethod != nil {
		expense.PaymentMethod = *input.PaymentMethod
	}
	if input.RecurrencePattern != nil {
		expense.RecurrencePattern = input.RecurrencePattern
	}
	if input.RecurrenceEndDate != nil {
		expense.RecurrenceEndDate = input.RecurrenceEndDate
	}
	if input.IsRecurring != nil {
		expense.IsRecurring = *input.IsRecurring
		if !expense.IsRecurring {
			expense.RecurrencePattern = nil
			expense.RecurrenceEndDate = nil
		}
	}
	if input.Notes != nil {
		expense.Notes = strings.TrimSpace(*input.Notes)
	}
	if err := validateExpense(expense); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, expense); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update expense")
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "expense not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete expense")
	}
	return nil
}

func (s *service) find(ctx context.Context, id uuid.UUID) (*models.Expense, error) {
	expense, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "expense not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup expense")
	}
	return expense, nil
}

func (s *service) checkCategory(ctx context.Context, id uuid.UUID) error {
	ok, err := s.repo.CategoryExists(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup expense category")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "expense category not found").
			WithDetails(map[string]any{"field": "category"})
	}
	return nil
}

func validateExpense(e *models.Expense) error {
	if e.CategoryID == uuid.Nil {
		return fieldError("category", "category is required")
	}
	if e.Description == "" {
		return fieldError("description", "description cannot be empty")
	}
	if utf8.RuneCountInString(e.Description) > maxDescription {
		return fieldError("description", fmt.Sprintf("description must be at most %d characters", maxDescription))
	}
	if !e.Amount.IsPositive() {
		return fieldError("amount", "amount must be greater than zero")
	}
	if !e.Amount.Equal(e.Amount.Truncate(moneyPlaces)) {
		return fieldError("amount", "amount must have at most 2 decimal places")
	}
	if !e.PaymentMethod.IsValid() {
		return fieldError("payment_method", "invalid payment method")
	}
	if e.RecurrencePattern != nil && !e.RecurrencePattern.IsValid() {
		return fieldError("recurrence_pattern", "invalid recurrence pattern")
	}
	if e.IsRecurring && e.RecurrencePattern == nil {
		return fieldError("recurrence_pattern", "recurring expenses must have a recurrence pattern")
	}
	if e.RecurrenceEndDate != nil && e.RecurrenceEndDate.Before(e.Date) {
		return fieldError("recurrence_end_date", "recurrence end date cannot be before expense date")
	}
	return nil
}

func fieldError(field, message string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, message).
		WithDetails(map[string]any{"field": field})
}
