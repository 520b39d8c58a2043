package customers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/eggtrade-backend/internal/repo"
	"github.com/angelmondragon/eggtrade-backend/pkg/db/models"
)

// Repository persists wholesale customers and their price overrides.
type Repository struct {
	base repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, customer *models.WholesaleCustomer) error {
	return r.base.DB(ctx).Create(customer).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.WholesaleCustomer, error) {
	var customer models.WholesaleCustomer
	if err := r.base.DB(ctx).Where("id = ?", id).First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// List returns customers newest first using cursor pagination.
func (r *Repository) List(ctx context.Context, opts listQuery) ([]models.WholesaleCustomer, error) {
	query := r.base.DB(ctx).Model(&models.WholesaleCustomer{})
	if opts.activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if opts.cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", opts.cursor.At, opts.cursor.At, opts.cursor.ID)
	}
	query = query.Order("created_at DESC").Order("id DESC").Limit(opts.limit)

	var rows []models.WholesaleCustomer
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) Save(ctx context.Context, customer *models.WholesaleCustomer) error {
	return r.base.DB(ctx).Save(customer).Error
}

func (r *Repository) CreateOverride(ctx context.Context, override *models.CustomerPriceOverride) error {
	return r.base.DB(ctx).Omit("Customer", "EggType").Create(override).Error
}

// ListOverrides returns a customer's overrides, newest effective date first.
func (r *Repository) ListOverrides(ctx context.Context, customerID uuid.UUID) ([]models.CustomerPriceOverride, error) {
	var rows []models.CustomerPriceOverride
	err := r.base.DB(ctx).
		Preload("EggType").
		Where("customer_id = ?", customerID).
		Order("effective_date DESC").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) DeleteOverride(ctx context.Context, customerID, overrideID uuid.UUID) error {
	res := r.base.DB(ctx).
		Where("id = ? AND customer_id = ?", overrideID, customerID).
		Delete(&models.CustomerPriceOverride{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// EggTypeExists is used to reject overrides for unknown egg types up front.
func (r *Repository) EggTypeExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.base.DB(ctx).Model(&models.EggType{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
