package expenses

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/eggtrade-backend/internal/repo"
	"github.com/angelmondragon/eggtrade-backend/pkg/db/models"
	"github.com/angelmondragon/eggtrade-backend/pkg/types"
)

// Repository persists expense categories and expenses.
type Repository struct {
	base repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(db)}
}

func (r *Repository) CreateCategory(ctx context.Context, category *models.ExpenseCategory) error {
	return r.base.DB(ctx).Create(category).Error
}

// ListCategories returns categories in display order.
func (r *Repository) ListCategories(ctx context.Context, activeOnly bool) ([]models.ExpenseCategory, error) {
	query := r.base.DB(ctx).Model(&models.ExpenseCategory{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var rows []models.ExpenseCategory
	if err := query.Order("display_order ASC").Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) CategoryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.base.DB(ctx).Model(&models.ExpenseCategory{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *Repository) Create(ctx context.Context, expense *models.Expense) error {
	return r.base.DB(ctx).Omit("Category", "RecurrenceParent").Create(expense).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Expense, error) {
	var expense models.Expense
	if err := r.base.DB(ctx).Preload("Category").Where("id = ?", id).First(&expense).Error; err != nil {
		return nil, err
	}
	return &expense, nil
}

// List returns expenses newest date first using cursor pagination.
func (r *Repository) List(ctx context.Context, opts listQuery) ([]models.Expense, error) {
	query := r.base.DB(ctx).Model(&models.Expense{}).Preload("Category")
	if opts.cursor != nil {
		day := types.DateOf(opts.cursor.At)
		query = query.Where("(expenses.date < ?) OR (expenses.date = ? AND expenses.id < ?)", day, day, opts.cursor.ID)
	}
	query = query.Order("expenses.date DESC").Order("expenses.id DESC").Limit(opts.limit)

	var rows []models.Expense
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) Save(ctx context.Context, expense *models.Expense) error {
	return r.base.DB(ctx).Omit("Category", "RecurrenceParent").Save(expense).Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.base.DB(ctx).Where("id = ?", id).Delete(&models.Expense{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListDueTemplates returns recurring expenses that started before asOf and
// are not themselves generated occurrences.
func (r *Repository) ListDueTemplates(ctx context.Context, asOf types.Date) ([]models.Expense, error) {
	var rows []models.Expense
	err := r.base.DB(ctx).
		Where("is_recurring = ? AND recurrence_pattern IS NOT NULL AND recurrence_parent_id IS NULL", true).
		Where("date < ?", asOf).
		Where("recurrence_end_date IS NULL OR recurrence_end_date > date").
		Order("date ASC").Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// OccurrenceDates lists the dates already generated for a template.
func (r *Repository) OccurrenceDates(ctx context.Context, parentID uuid.UUID) ([]types.Date, error) {
	var dates []types.Date
	err := r.base.DB(ctx).Model(&models.Expense{}).
		Where("recurrence_parent_id = ?", parentID).
		Pluck("date", &dates).Error
	if err != nil {
		return nil, err
	}
	return dates, nil
}
