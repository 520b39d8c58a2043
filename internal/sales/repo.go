package sales

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/eggtrade-backend/internal/repo"
	"github.com/angelmondragon/eggtrade-backend/pkg/db/models"
)

type repository struct {
	base repo.Base
}

// NewRepository builds a sales repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{base: r.base.WithTx(tx)}
}

// Create inserts the header and its items in one statement batch.
func (r *repository) Create(ctx context.Context, sale *models.Sale) error {
	return r.base.DB(ctx).Create(sale).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	var sale models.Sale
	err := r.base.DB(ctx).
		Preload("Customer").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sale_items.line_no ASC")
		}).
		Preload("Items.EggType").
		Where("id = ?", id).
		First(&sale).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// List returns sales by sale_datetime descending using cursor pagination.
func (r *repository) List(ctx context.Context, opts listQuery) ([]models.Sale, error) {
	query := r.base.DB(ctx).
		Model(&models.Sale{}).
		Preload("Customer").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sale_items.line_no ASC")
		}).
		Preload("Items.EggType")
	if opts.cursor != nil {
		query = query.Where("(sale_datetime < ?) OR (sale_datetime = ? AND id < ?)", opts.cursor.At, opts.cursor.At, opts.cursor.ID)
	}
	query = query.Order("sale_datetime DESC").Order("id DESC").Limit(opts.limit)

	var rows []models.Sale
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateHeader writes the header columns, including a cleared customer and
// the recomputed total.
func (r *repository) UpdateHeader(ctx context.Context, sale *models.Sale) error {
	res := r.base.DB(ctx).
		Model(&models.Sale{}).
		Where("id = ?", sale.ID).
		Select("sale_type", "customer_id", "sale_datetime", "notes", "total_amount", "updated_at").
		Updates(map[string]any{
			"sale_type":     sale.SaleType,
			"customer_id":   sale.CustomerID,
			"sale_datetime": sale.SaleDatetime,
			"notes":         sale.Notes,
			"total_amount":  sale.TotalAmount,
			"updated_at":    sale.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ReplaceItems deletes every item of the sale and inserts the given ones.
func (r *repository) ReplaceItems(ctx context.Context, saleID uuid.UUID, items []models.SaleItem) error {
	db := r.base.DB(ctx)
	if err := db.Where("sale_id = ?", saleID).Delete(&models.SaleItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].SaleID = saleID
	}
	return db.Omit("EggType").Create(&items).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.base.DB(ctx).Where("id = ?", id).Delete(&models.Sale{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) CustomerExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.base.DB(ctx).Model(&models.WholesaleCustomer{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// MissingEggTypes returns the ids with no egg type row.
func (r *repository) MissingEggTypes(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []uuid.UUID
	if err := r.base.DB(ctx).Model(&models.EggType{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, err
	}
	present := make(map[uuid.UUID]struct{}, len(found))
	for _, id := range found {
		present[id] = struct{}{}
	}
	var missing []uuid.UUID
	for _, id := range ids {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}
