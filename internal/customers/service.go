package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/eggtrade-backend/internal/pricing"
	"github.com/angelmondragon/eggtrade-backend/pkg/db"
	"github.com/angelmondragon/eggtrade-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/eggtrade-backend/pkg/errors"
	pkgpagination "github.com/angelmondragon/eggtrade-backend/pkg/pagination"
)

type customersRepository interface {
	Create(ctx context.Context, customer *models.WholesaleCustomer) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.WholesaleCustomer, error)
	List(ctx context.Context, opts listQuery) ([]models.WholesaleCustomer, error)
	Save(ctx context.Context, customer *models.WholesaleCustomer) error

	CreateOverride(ctx context.Context, override *models.CustomerPriceOverride) error
	ListOverrides(ctx context.Context, customerID uuid.UUID) ([]models.CustomerPriceOverride, error)
	DeleteOverride(ctx context.Context, customerID, overrideID uuid.UUID) error
	EggTypeExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Service manages wholesale customers and their per-egg-type price overrides.
type Service interface {
	Create(ctx context.Context, input CreateCustomerInput) (*CustomerDTO, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*CustomerDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateCustomerInput) (*CustomerDTO, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*CustomerDTO, error)

	CreateOverride(ctx context.Context, customerID uuid.UUID, input CreateOverrideInput) (*OverrideDTO, error)
	ListOverrides(ctx context.Context, customerID uuid.UUID) ([]OverrideDTO, error)
	DeleteOverride(ctx context.Context, customerID, overrideID uuid.UUID) error
}

type service struct {
	repo customersRepository
}

func NewService(repo customersRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customers repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateCustomerInput) (*CustomerDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errBlankName()
	}

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}
	customer := &models.WholesaleCustomer{
		Name:          name,
		ContactPerson: strings.TrimSpace(input.ContactPerson),
		Phone:         strings.TrimSpace(input.Phone),
		Email:         strings.TrimSpace(input.Email),
		Address:       strings.TrimSpace(input.Address),
		IsActive:      active,
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create customer")
	}
	return customerFromModel(customer), nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	query := listQuery{
		activeOnly: params.ActiveOnly,
		limit:      pkgpagination.LimitWithBuffer(params.Limit),
	}
	if params.Cursor != "" {
		cursor, err := pkgpagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.cursor = cursor
	}

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customers")
	}

	items := make([]CustomerDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *customerFromModel(&rows[i]))
	}
	page := pkgpagination.BuildPage(items, params.Limit, func(c CustomerDTO) pkgpagination.Cursor {
		return pkgpagination.Cursor{At: c.CreatedAt, ID: c.ID}
	})
	return &page, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*CustomerDTO, error) {
	customer, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return customerFromModel(customer), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateCustomerInput) (*CustomerDTO, error) {
	customer, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, errBlankName()
		}
		customer.Name = name
	}
	if input.ContactPerson != nil {
		customer.ContactPerson = strings.TrimSpace(*input.ContactPerson)
	}
	if input.Phone != nil {
		customer.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.Email != nil {
		customer.Email = strings.TrimSpace(*input.Email)
	}
	if input.Address != nil {
		customer.Address = strings.TrimSpace(*input.Address)
	}
	if input.IsActive != nil {
		customer.IsActive = *input.IsActive
	}

	if err := s.repo.Save(ctx, customer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update customer")
	}
	return customerFromModel(customer), nil
}

// Deactivate hides a customer from active listings. Customers are never hard
// deleted.
func (s *service) Deactivate(ctx context.Context, id uuid.UUID) (*CustomerDTO, error) {
	inactive := false
	return s.Update(ctx, id, UpdateCustomerInput{IsActive: &inactive})
}

func (s *service) CreateOverride(ctx context.Context, customerID uuid.UUID, input CreateOverrideInput) (*OverrideDTO, error) {
	if input.EggTypeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "egg_type is required").
			WithDetails(map[string]any{"field": "egg_type"})
	}
	if input.PricePerCrate.Valid {
		if err := pricing.ValidatePrice(input.PricePerCrate.Decimal, "price_per_crate"); err != nil {
			return nil, err
		}
	}
	if input.EffectiveDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "effective_date is required").
			WithDetails(map[string]any{"field": "effective_date"})
	}

	if _, err := s.find(ctx, customerID); err != nil {
		return nil, err
	}
	ok, err := s.repo.EggTypeExists(ctx, input.EggTypeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup egg type")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "egg type not found")
	}

	override := &models.CustomerPriceOverride{
		CustomerID:    customerID,
		EggTypeID:     input.EggTypeID,
		PricePerCrate: input.PricePerCrate,
		EffectiveDate: input.EffectiveDate,
		Notes:         strings.TrimSpace(input.Notes),
	}
	if err := s.repo.CreateOverride(ctx, override); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "an override for this egg type and effective date already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create override")
	}
	return overrideFromModel(override), nil
}

func (s *service) ListOverrides(ctx context.Context, customerID uuid.UUID) ([]OverrideDTO, error) {
	if _, err := s.find(ctx, customerID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListOverrides(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list overrides")
	}
	items := make([]OverrideDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *overrideFromModel(&rows[i]))
	}
	return items, nil
}

func (s *service) DeleteOverride(ctx context.Context, customerID, overrideID uuid.UUID) error {
	if err := s.repo.DeleteOverride(ctx, customerID, overrideID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "override not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete override")
	}
	return nil
}

func (s *service) find(ctx context.Context, id uuid.UUID) (*models.WholesaleCustomer, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup customer")
	}
	return customer, nil
}

func errBlankName() error {
	return pkgerrors.New(pkgerrors.CodeValidation, "customer name cannot be empty").
		WithDetails(map[string]any{"field": "name"})
}
