package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/eggtrade-backend/pkg/db"
	"github.com/angelmondragon/eggtrade-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/eggtrade-backend/pkg/errors"
	"github.com/angelmondragon/eggtrade-backend/pkg/logger"
	pkgpagination "github.com/angelmondragon/eggtrade-backend/pkg/pagination"
	"github.com/angelmondragon/eggtrade-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service records daily crate intake. There is at most one log per day.
type Service interface {
	Create(ctx context.Context, input CreateIntakeLogInput) (*IntakeLogDTO, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*IntakeLogDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateIntakeLogInput) (*IntakeLogDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
	tx   txRunner
	loc  *time.Location
	logg *logger.Logger
	now  func() time.Time
}

type ServiceParams struct {
	Repo     Repository
	Tx       txRunner
	Location *time.Location
	Logger   *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("intake log repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: params.Repo, tx: params.Tx, loc: loc, logg: logg, now: time.Now}, nil
}

func (s *service) Create(ctx context.Context, input CreateIntakeLogInput) (*IntakeLogDTO, error) {
	if err := validateItems(input.Items); err != nil {
		return nil, err
	}
	day := input.RecordedDate
	if day.IsZero() {
		day = types.DateIn(s.now(), s.loc)
	}

	var logID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := checkEggTypes(ctx, repo, input.Items); err != nil {
			return err
		}
		log := &models.IntakeLog{
			RecordedDate: day,
			Notes:        strings.TrimSpace(input.Notes),
			Items:        itemsFromInput(input.Items),
		}
		if err := repo.Create(ctx, log); err != nil {
			return mapWriteErr(err, day, "create intake log")
		}
		logID = log.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto, err := s.Get(ctx, logID)
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"intake_log_id": dto.ID,
		"recorded_date": dto.RecordedDate.String(),
		"total_crates":  dto.TotalCrates,
	}), "intake_log.created")
	return dto, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	query := listQuery{limit: pkgpagination.LimitWithBuffer(params.Limit)}
	if params.Cursor != "" {
		cursor, err := pkgpagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.cursor = cursor
	}

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list intake logs")
	}
	items := make([]IntakeLogDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *logFromModel(&rows[i]))
	}
	page := pkgpagination.BuildPage(items, params.Limit, func(log IntakeLogDTO) pkgpagination.Cursor {
		return pkgpagination.Cursor{At: log.RecordedDate.Time(), ID: log.ID}
	})
	return &page, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*IntakeLogDTO, error) {
	log, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupErr(err)
	}
	return logFromModel(log), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateIntakeLogInput) (*IntakeLogDTO, error) {
	if input.Items != nil {
		if err := validateItems(input.Items); err != nil {
			return nil, err
		}
	}
	if input.RecordedDate != nil && input.RecordedDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recorded_date cannot be empty").
			WithDetails(map[string]any{"field": "recorded_date"})
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		log, err := repo.FindByID(ctx, id)
		if err != nil {
			return mapLookupErr(err)
		}
		if input.RecordedDate != nil {
			log.RecordedDate = *input.RecordedDate
		}
		if input.Notes != nil {
			log.Notes = strings.TrimSpace(*input.Notes)
		}
		log.UpdatedAt = s.now().UTC()
		if err := repo.UpdateHeader(ctx, log); err != nil {
			return mapWriteErr(err, log.RecordedDate, "update intake log")
		}

		if input.Items == nil {
			return nil
		}
		if err := checkEggTypes(ctx, repo, input.Items); err != nil {
			return err
		}
		if err := repo.ReplaceItems(ctx, log.ID, itemsFromInput(input.Items)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace intake log items")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapLookupErr(err)
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"intake_log_id": id}), "intake_log.deleted")
	return nil
}

func validateItems(items []ItemInput) error {
	seen := make(map[uuid.UUID]struct{}, len(items))
	for i, item := range items {
		if item.EggTypeID == uuid.Nil {
			return itemError(i, "egg_type", "egg_type is required")
		}
		if item.Crates < 0 {
			return itemError(i, "crates", "crates cannot be negative")
		}
		if _, dup := seen[item.EggTypeID]; dup {
			return itemError(i, "egg_type", "egg type is listed more than once")
		}
		seen[item.EggTypeID] = struct{}{}
	}
	return nil
}

func itemError(index int, field, message string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, message).
		WithDetails(map[string]any{"field": fmt.Sprintf("items[%d].%s", index, field)})
}

func checkEggTypes(ctx context.Context, repo Repository, items []ItemInput) error {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.EggTypeID)
	}
	missing, err := repo.MissingEggTypes(ctx, ids)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup egg types")
	}
	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for _, id := range missing {
			names = append(names, id.String())
		}
		return pkgerrors.New(pkgerrors.CodeNotFound, "egg type not found").
			WithDetails(map[string]any{"egg_types": names})
	}
	return nil
}

func mapLookupErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "intake log not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup intake log")
}

func mapWriteErr(err error, day types.Date, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "intake log not found")
	}
	if db.IsUniqueViolation(err, "") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "an intake log already exists for this date").
			WithDetails(map[string]any{"recorded_date": day.String()})
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}
