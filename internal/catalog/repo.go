package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/eggtrade-backend/internal/repo"
	"github.com/angelmondragon/eggtrade-backend/pkg/db/models"
	"github.com/angelmondragon/eggtrade-backend/pkg/enums"
)

// Repository persists egg types and price tier entries.
type Repository struct {
	base repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(db)}
}

func (r *Repository) CreateEggType(ctx context.Context, eggType *models.EggType) error {
	return r.base.DB(ctx).Create(eggType).Error
}

func (r *Repository) FindEggType(ctx context.Context, id uuid.UUID) (*models.EggType, error) {
	var eggType models.EggType
	if err := r.base.DB(ctx).Where("id = ?", id).First(&eggType).Error; err != nil {
		return nil, err
	}
	return &eggType, nil
}

// ListEggTypes returns egg types by display order, then name.
func (r *Repository) ListEggTypes(ctx context.Context, activeOnly bool) ([]models.EggType, error) {
	query := r.base.DB(ctx).Model(&models.EggType{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var rows []models.EggType
	if err := query.Order("display_order ASC").Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) SaveEggType(ctx context.Context, eggType *models.EggType) error {
	return r.base.DB(ctx).Save(eggType).Error
}

// DeleteEggType removes the row. A sale or intake item still referencing the
// type surfaces as a foreign key violation.
func (r *Repository) DeleteEggType(ctx context.Context, id uuid.UUID) error {
	res := r.base.DB(ctx).Where("id = ?", id).Delete(&models.EggType{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type priceTierQuery struct {
	eggTypeID  *uuid.UUID
	tier       *enums.PriceTier
	activeOnly bool
}

func (r *Repository) CreatePriceTier(ctx context.Context, entry *models.PriceTierEntry) error {
	return r.base.DB(ctx).Create(entry).Error
}

func (r *Repository) FindPriceTier(ctx context.Context, id uuid.UUID) (*models.PriceTierEntry, error) {
	var entry models.PriceTierEntry
	if err := r.base.DB(ctx).Preload("EggType").Where("id = ?", id).First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListPriceTiers returns entries newest effective date first.
func (r *Repository) ListPriceTiers(ctx context.Context, opts priceTierQuery) ([]models.PriceTierEntry, error) {
	query := r.base.DB(ctx).Model(&models.PriceTierEntry{}).Preload("EggType")
	if opts.eggTypeID != nil {
		query = query.Where("egg_type_id = ?", *opts.eggTypeID)
	}
	if opts.tier != nil {
		query = query.Where("tier = ?", *opts.tier)
	}
	if opts.activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var rows []models.PriceTierEntry
	if err := query.Order("effective_date DESC").Order("tier ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) SavePriceTier(ctx context.Context, entry *models.PriceTierEntry) error {
	return r.base.DB(ctx).Omit("EggType").Save(entry).Error
}

func (r *Repository) DeletePriceTier(ctx context.Context, id uuid.UUID) error {
	res := r.base.DB(ctx).Where("id = ?", id).Delete(&models.PriceTierEntry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
