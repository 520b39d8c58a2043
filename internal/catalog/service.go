package catalog

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
)

const maxEggTypeName = 50

type catalogRepository interface {
	CreateEggType(ctx context.Context, eggType *models.EggType) error
	FindEggType(ctx context.Context, id uuid.UUID) (*models.EggType, error)
	ListEggTypes(ctx context.Context, activeOnly bool) ([]models.EggType, error)
	SaveEggType(ctx context.Context, eggType *models.EggType) error
	DeleteEggType(ctx context.Context, id uuid.UUID) error

	CreatePriceTier(ctx context.Context, entry *models.PriceTierEntry) error
	FindPriceTier(ctx context.Context, id uuid.UUID) (*models.PriceTierEntry, error)
	ListPriceTiers(ctx context.Context, opts priceTierQuery) ([]models.PriceTierEntry, error)
	SavePriceTier(ctx context.Context, entry *models.PriceTierEntry) error
	DeletePriceTier(ctx context.Context, id uuid.UUID) error
}

// Service manages egg types and their dated base prices.
type Service interface {
	CreateEggType(ctx context.Context, input CreateEggTypeInput) (*EggTypeDTO, error)
	ListEggTypes(ctx context.Context, activeOnly bool) ([]EggTypeDTO, error)
	GetEggType(ctx context.Context, id uuid.UUID) (*EggTypeDTO, error)
	UpdateEggType(ctx context.Context, id uuid.UUID, input UpdateEggTypeInput) (*EggTypeDTO, error)
	DeleteEggType(ctx context.Context, id uuid.UUID) error

	CreatePriceTier(ctx context.Context, input CreatePriceTierInput) (*PriceTierDTO, error)
	ListPriceTiers(ctx context.Context, filter PriceTierFilter) ([]PriceTierDTO, error)
	GetPriceTier(ctx context.Context, id uuid.UUID) (*PriceTierDTO, error)
	UpdatePriceTier(ctx context.Context, id uuid.UUID, input UpdatePriceTierInput) (*PriceTierDTO, error)
	DeletePriceTier(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo catalogRepository
}

func NewService(repo catalogRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateEggType(ctx context.Context, input CreateEggTypeInput) (*EggTypeDTO, error) {
	name, err := validateEggTypeName(input.Name)
	if err != nil {
		return nil, err
	}

	eggType := &models.EggType{
		Name:         name,
		Description:  strings.TrimSpace(input.Description),
		IsActive:     boolOr(input.IsActive, true),
		DisplayOrder: input.DisplayOrder,
	}
	if err := s.repo.CreateEggType(ctx, eggType); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "an egg type with this name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create egg type")
	}
	return eggTypeFromModel(eggType), nil
}

func (s *service) ListEggTypes(ctx context.Context, activeOnly bool) ([]EggTypeDTO, error) {
	rows, err := s.repo.ListEggTypes(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list egg types")
	}
	items := make([]EggTypeDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *eggTypeFromModel(&rows[i]))
	}
	return items, nil
}

func (s *service) GetEggType(ctx context.Context, id uuid.UUID) (*EggTypeDTO, error) {
	eggType, err := s.findEggType(ctx, id)
	if err != nil {
		return nil, err
	}
	return eggTypeFromModel(eggType), nil
}

func (s *service) UpdateEggType(ctx context.Context, id uuid.UUID, input UpdateEggTypeInput) (*EggTypeDTO, error) {
	eggType, err := s.findEggType(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name, err := validateEggTypeName(*input.Name)
		if err != nil {
			return nil, err
		}
		eggType.Name = name
	}
	if input.Description != nil {
		eggType.Description = strings.TrimSpace(*input.Description)
	}
	if input.IsActive != nil {
		eggType.IsActive = *input.IsActive
	}
	if input.DisplayOrder != nil {
		eggType.DisplayOrder = *input.DisplayOrder
	}

	if err := s.repo.SaveEggType(ctx, eggType); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "an egg type with this name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update egg type")
	}
	return eggTypeFromModel(eggType), nil
}

// DeleteEggType removes an unreferenced egg type together with its prices and
// overrides. Types used by sales or intake logs must be deactivated instead.
func (s *service) DeleteEggType(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteEggType(ctx, id); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return pkgerrors.New(pkgerrors.CodeNotFound, "egg type not found")
		case db.IsForeignKeyViolation(err, ""):
			return pkgerrors.New(pkgerrors.CodeConflict, "egg type is referenced by sales or intake logs; deactivate it instead")
		default:
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete egg type")
		}
	}
	return nil
}

func (s *service) CreatePriceTier(ctx context.Context, input CreatePriceTierInput) (*PriceTierDTO, error) {
	if !input.Tier.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid price tier").
			WithDetails(map[string]any{"field": "tier"})
	}
	if input.EggTypeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "egg_type is required").
			WithDetails(map[string]any{"field": "egg_type"})
	}
	if err := pricing.ValidatePrice(input.PricePerCrate, "price_per_crate"); err != nil {
		return nil, err
	}
	if input.EffectiveDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "effective_date is required").
			WithDetails(map[string]any{"field": "effective_date"})
	}

	eggType, err := s.findEggType(ctx, input.EggTypeID)
	if err != nil {
		return nil, err
	}

	entry := &models.PriceTierEntry{
		Tier:          input.Tier,
		EggTypeID:     eggType.ID,
		PricePerCrate: input.PricePerCrate,
		EffectiveDate: input.EffectiveDate,
		IsActive:      boolOr(input.IsActive, true),
	}
	if err := s.repo.CreatePriceTier(ctx, entry); err != nil {
		return nil, mapPriceTierWriteErr(err, "create price tier")
	}
	entry.EggType = eggType
	return priceTierFromModel(entry), nil
}

func (s *service) ListPriceTiers(ctx context.Context, filter PriceTierFilter) ([]PriceTierDTO, error) {
	if filter.Tier != nil && !filter.Tier.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid price tier").
			WithDetails(map[string]any{"field": "tier"})
	}
	rows, err := s.repo.ListPriceTiers(ctx, priceTierQuery{
		eggTypeID:  filter.EggTypeID,
		tier:       filter.Tier,
		activeOnly: filter.ActiveOnly,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list price tiers")
	}
	items := make([]PriceTierDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *priceTierFromModel(&rows[i]))
	}
	return items, nil
}

func (s *service) GetPriceTier(ctx context.Context, id uuid.UUID) (*PriceTierDTO, error) {
	entry, err := s.findPriceTier(ctx, id)
	if err != nil {
		return nil, err
	}
	return priceTierFromModel(entry), nil
}

// UpdatePriceTier edits a dated price in place. Price changes over time are
// new entries with a later effective date.
func (s *service) UpdatePriceTier(ctx context.Context, id uuid.UUID, input UpdatePriceTierInput) (*PriceTierDTO, error) {
	entry, err := s.findPriceTier(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.PricePerCrate != nil {
		if err := pricing.ValidatePrice(*input.PricePerCrate, "price_per_crate"); err != nil {
			return nil, err
		}
		entry.PricePerCrate = *input.PricePerCrate
	}
	if input.EffectiveDate != nil {
		if input.EffectiveDate.IsZero() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "effective_date is required").
				WithDetails(map[string]any{"field": "effective_date"})
		}
		entry.EffectiveDate = *input.EffectiveDate
	}
	if input.IsActive != nil {
		entry.IsActive = *input.IsActive
	}

	if err := s.repo.SavePriceTier(ctx, entry); err != nil {
		return nil, mapPriceTierWriteErr(err, "update price tier")
	}
	return priceTierFromModel(entry), nil
}

func (s *service) DeletePriceTier(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeletePriceTier(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "price tier not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete price tier")
	}
	return nil
}

func (s *service) findEggType(ctx context.Context, id uuid.UUID) (*models.EggType, error) {
	eggType, err := s.repo.FindEggType(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "egg type not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup egg type")
	}
	return eggType, nil
}

func (s *service) findPriceTier(ctx context.Context, id uuid.UUID) (*models.PriceTierEntry, error) {
	entry, err := s.repo.FindPriceTier(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "price tier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup price tier")
	}
	return entry, nil
}

func validateEggTypeName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "name is required").
			WithDetails(map[string]any{"field": "name"})
	}
	if len(name) > maxEggTypeName {
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("name must be at most %d characters", maxEggTypeName)).
			WithDetails(map[string]any{"field": "name"})
	}
	return name, nil
}

func mapPriceTierWriteErr(err error, action string) error {
	if db.IsUniqueViolation(err, "") {
		return pkgerrors.New(pkgerrors.CodeConflict, "a price for this tier, egg type and effective date already exists")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}
