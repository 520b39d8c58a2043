package customers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/eggtrade-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/eggtrade-backend/pkg/errors"
	"github.com/angelmondragon/eggtrade-backend/pkg/types"
)

type stubCustomersRepo struct {
	customers map[uuid.UUID]*models.WholesaleCustomer
	eggTypes  map[uuid.UUID]bool
	overrides []*models.CustomerPriceOverride
}

func newStubRepo() *stubCustomersRepo {
	return &stubCustomersRepo{customers: map[uuid.UUID]*models.WholesaleCustomer{}, eggTypes: map[uuid.UUID]bool{}}
}

func (s *stubCustomersRepo) Create(ctx context.Context, customer *models.WholesaleCustomer) error {
	customer.ID = uuid.New()
	s.customers[customer.ID] = customer
	return nil
}

func (s *stubCustomersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.WholesaleCustomer, error) {
	if customer, ok := s.customers[id]; ok {
		cpy := *customer
		return &cpy, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCustomersRepo) List(ctx context.Context, opts listQuery) ([]models.WholesaleCustomer, error) {
	return nil, nil
}

func (s *stubCustomersRepo) Save(ctx context.Context, customer *models.WholesaleCustomer) error {
	s.customers[customer.ID] = customer
	return nil
}

func (s *stubCustomersRepo) CreateOverride(ctx context.Context, override *models.CustomerPriceOverride) error {
	override.ID = uuid.New()
	s.overrides = append(s.overrides, override)
	return nil
}

func (s *stubCustomersRepo) ListOverrides(ctx context.Context, customerID uuid.UUID) ([]models.CustomerPriceOverride, error) {
	return nil, nil
}

func (s *stubCustomersRepo) DeleteOverride(ctx context.Context, customerID, overrideID uuid.UUID) error {
	return gorm.ErrRecordNotFound
}

func (s *stubCustomersRepo) EggTypeExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.eggTypes[id], nil
}

func TestNewServiceRequiresRepo(t *testing.T) {
	if _, err := NewService(nil); err == nil {
		t.Fatal("expected error creating service without repo")
	}
}

func TestCreateCustomerRejectsBlankName(t *testing.T) {
	svc, _ := NewService(newStubRepo())
	_, err := svc.Create(context.Background(), CreateCustomerInput{Name: " \t "})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if typed.Message() != "customer name cannot be empty" {
		t.Fatalf("unexpected message %q", typed.Message())
	}
}

func TestDeactivateCustomer(t *testing.T) {
	repo := newStubRepo()
	svc, _ := NewService(repo)
	created, err := svc.Create(context.Background(), CreateCustomerInput{Name: "Acme Foods", Phone: " 0244000000 "})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	if !created.IsActive || created.Phone != "0244000000" {
		t.Fatalf("unexpected customer %+v", created)
	}

	deactivated, err := svc.Deactivate(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if deactivated.IsActive {
		t.Fatal("expected customer to be inactive")
	}
	if repo.customers[created.ID].IsActive {
		t.Fatal("expected stored customer to be inactive")
	}

	if _, err := svc.Deactivate(context.Background(), uuid.New()); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateOverrideValidation(t *testing.T) {
	repo := newStubRepo()
	svc, _ := NewService(repo)
	customer, _ := svc.Create(context.Background(), CreateCustomerInput{Name: "Acme"})
	eggType := uuid.New()
	repo.eggTypes[eggType] = true
	day := types.NewDate(2024, 1, 1)

	cases := []struct {
		name     string
		customer uuid.UUID
		input    CreateOverrideInput
		code     pkgerrors.Code
	}{
		{name: "missing egg type", customer: customer.ID, input: CreateOverrideInput{EffectiveDate: day}, code: pkgerrors.CodeValidation},
		{name: "negative price", customer: customer.ID, input: CreateOverrideInput{EggTypeID: eggType, EffectiveDate: day, PricePerCrate: decimal.NewNullDecimal(decimal.NewFromInt(-2))}, code: pkgerrors.CodeValidation},
		{name: "price above column range", customer: customer.ID, input: CreateOverrideInput{EggTypeID: eggType, EffectiveDate: day, PricePerCrate: decimal.NewNullDecimal(decimal.RequireFromString("100000000.00"))}, code: pkgerrors.CodeValidation},
		{name: "missing date", customer: customer.ID, input: CreateOverrideInput{EggTypeID: eggType}, code: pkgerrors.CodeValidation},
		{name: "unknown customer", customer: uuid.New(), input: CreateOverrideInput{EggTypeID: eggType, EffectiveDate: day}, code: pkgerrors.CodeNotFound},
		{name: "unknown egg type", customer: customer.ID, input: CreateOverrideInput{EggTypeID: uuid.New(), EffectiveDate: day}, code: pkgerrors.CodeNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.CreateOverride(context.Background(), tc.customer, tc.input); !pkgerrors.IsCode(err, tc.code) {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
		})
	}

	deferred, err := svc.CreateOverride(context.Background(), customer.ID, CreateOverrideInput{EggTypeID: eggType, EffectiveDate: day})
	if err != nil {
		t.Fatalf("create deferred override: %v", err)
	}
	if deferred.PricePerCrate.Valid {
		t.Fatal("expected null price to be kept as a deferral")
	}
}

func TestDeleteOverrideNotFound(t *testing.T) {
	svc, _ := NewService(newStubRepo())
	if err := svc.DeleteOverride(context.Background(), uuid.New(), uuid.New()); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
