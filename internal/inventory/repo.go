package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/eggtrade-backend/internal/repo"
	"github.com/angelmondragon/eggtrade-backend/pkg/db/models"
	"github.com/angelmondragon/eggtrade-backend/pkg/types"
)

type repository struct {
	base repo.Base
}

// NewRepository builds an intake log repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{base: r.base.WithTx(tx)}
}

func (r *repository) Create(ctx context.Context, log *models.IntakeLog) error {
	return r.base.DB(ctx).Create(log).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.IntakeLog, error) {
	var log models.IntakeLog
	err := withItems(r.base.DB(ctx)).Where("id = ?", id).First(&log).Error
	if err != nil {
		return nil, err
	}
	return &log, nil
}

// List returns logs newest recorded_date first using cursor pagination.
func (r *repository) List(ctx context.Context, opts listQuery) ([]models.IntakeLog, error) {
	query := withItems(r.base.DB(ctx).Model(&models.IntakeLog{}))
	if opts.cursor != nil {
		day := types.DateOf(opts.cursor.At)
		query = query.Where("(recorded_date < ?) OR (recorded_date = ? AND id < ?)", day, day, opts.cursor.ID)
	}
	query = query.Order("recorded_date DESC").Order("id DESC").Limit(opts.limit)

	var rows []models.IntakeLog
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) UpdateHeader(ctx context.Context, log *models.IntakeLog) error {
	res := r.base.DB(ctx).
		Model(&models.IntakeLog{}).
		Where("id = ?", log.ID).
		Select("recorded_date", "notes", "updated_at").
		Updates(map[string]any{
			"recorded_date": log.RecordedDate,
			"notes":         log.Notes,
			"updated_at":    log.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) ReplaceItems(ctx context.Context, logID uuid.UUID, items []models.IntakeLogItem) error {
	db := r.base.DB(ctx)
	if err := db.Where("intake_log_id = ?", logID).Delete(&models.IntakeLogItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].IntakeLogID = logID
	}
	return db.Omit("EggType").Create(&items).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.base.DB(ctx).Where("id = ?", id).Delete(&models.IntakeLog{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

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

// withItems preloads items in egg type display order.
func withItems(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.
				Select("intake_log_items.*").
				Joins("JOIN egg_types ON egg_types.id = intake_log_items.egg_type_id").
				Order("egg_types.display_order ASC").
				Order("egg_types.name ASC")
		}).
		Preload("Items.EggType")
}
