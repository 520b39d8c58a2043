package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/eggtrade-backend/pkg/db/models"
)

// Repository defines persistence operations for intake logs.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, log *models.IntakeLog) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.IntakeLog, error)
	List(ctx context.Context, opts listQuery) ([]models.IntakeLog, error)
	UpdateHeader(ctx context.Context, log *models.IntakeLog) error
	ReplaceItems(ctx context.Context, logID uuid.UUID, items []models.IntakeLogItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	MissingEggTypes(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)
}
