package sales

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/eggtrade-backend/pkg/db/models"
)

// Repository defines persistence operations for sales and their items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, sale *models.Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Sale, error)
	List(ctx context.Context, opts listQuery) ([]models.Sale, error)
	UpdateHeader(ctx context.Context, sale *models.Sale) error
	ReplaceItems(ctx context.Context, saleID uuid.UUID, items []models.SaleItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	CustomerExists(ctx context.Context, id uuid.UUID) (bool, error)
	MissingEggTypes(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)
}
