package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/eggtrade-backend/internal/pricing"
	"github.com/angelmondragon/eggtrade-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/eggtrade-backend/pkg/errors"
	"github.com/angelmondragon/eggtrade-backend/pkg/logger"
	"github.com/angelmondragon/eggtrade-backend/pkg/metrics"
	pkgpagination "github.com/angelmondragon/eggtrade-backend/pkg/pagination"
)

const (
	opCreate = "create"
	opUpdate = "update"
	opQuote  = "quote"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type saleComputer interface {
	ComputeSale(ctx context.Context, tx *gorm.DB, header pricing.SaleHeader, lines []pricing.LineInput) (*pricing.ComputedSale, error)
}

// Service records sales. Totals are always derived from the catalog state
// read inside the writing transaction.
type Service interface {
	Create(ctx context.Context, input CreateSaleInput) (*SaleDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateSaleInput) (*SaleDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*SaleDTO, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Quote(ctx context.Context, input CreateSaleInput) (*QuoteDTO, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	pricing saleComputer
	metrics *metrics.PricingMetrics
	logg    *logger.Logger
	now     func() time.Time
}

// ServiceParams wires the sales service.
type ServiceParams struct {
	Repo    Repository
	Tx      txRunner
	Pricing saleComputer
	Metrics *metrics.PricingMetrics
	Logger  *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Pricing == nil {
		return nil, fmt.Errorf("pricing engine required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:    params.Repo,
		tx:      params.Tx,
		pricing: params.Pricing,
		metrics: params.Metrics,
		logg:    logg,
		now:     time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateSaleInput) (dto *SaleDTO, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveSale(opCreate, err, time.Since(start)) }()

	header := s.header(input)
	lines := linesFromInput(input.Items)
	if _, err := pricing.ValidateSale(header, lines); err != nil {
		return nil, err
	}

	var saleID uuid.UUID
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := checkReferences(ctx, repo, header.CustomerID, lines); err != nil {
			return err
		}

		computed, err := s.pricing.ComputeSale(ctx, tx, header, lines)
		if err != nil {
			return err
		}

		sale := &models.Sale{
			SaleType:     computed.SaleType,
			CustomerID:   computed.CustomerID,
			SaleDatetime: computed.SaleDatetime.UTC(),
			TotalAmount:  computed.TotalAmount,
			Notes:        strings.TrimSpace(input.Notes),
			Items:        itemsFromComputed(computed),
		}
		if err := repo.Create(ctx, sale); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create sale")
		}
		saleID = sale.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto, err = s.Get(ctx, saleID)
	if err != nil {
		return nil, err
	}
	logCtx := s.logg.WithSaleID(ctx, saleID.String())
	logCtx = s.logg.WithFields(logCtx, map[string]any{"sale_type": dto.SaleType, "total_amount": dto.TotalAmount.StringFixed(pricing.MoneyPlaces)})
	s.logg.Info(logCtx, "sale.created")
	return dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateSaleInput) (dto *SaleDTO, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveSale(opUpdate, err, time.Since(start)) }()

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup sale")
		}

		header := pricing.SaleHeader{
			SaleType:     existing.SaleType,
			CustomerID:   input.Customer.Apply(existing.CustomerID),
			SaleDatetime: existing.SaleDatetime,
		}
		if input.SaleType != nil {
			header.SaleType = *input.SaleType
		}
		if input.SaleDatetime != nil {
			header.SaleDatetime = *input.SaleDatetime
		}
		lines := linesFromModel(existing.Items)
		if input.Items != nil {
			lines = linesFromInput(input.Items)
		}

		// nothing is written until the merged sale validates
		if _, err := pricing.ValidateSale(header, lines); err != nil {
			return err
		}
		if err := checkReferences(ctx, repo, header.CustomerID, lines); err != nil {
			return err
		}

		computed, err := s.pricing.ComputeSale(ctx, tx, header, lines)
		if err != nil {
			return err
		}

		existing.SaleType = computed.SaleType
		existing.CustomerID = computed.CustomerID
		existing.SaleDatetime = computed.SaleDatetime.UTC()
		existing.TotalAmount = computed.TotalAmount
		existing.UpdatedAt = s.now().UTC()
		if input.Notes != nil {
			existing.Notes = strings.TrimSpace(*input.Notes)
		}
		if err := repo.UpdateHeader(ctx, existing); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update sale")
		}
		if err := repo.ReplaceItems(ctx, existing.ID, itemsFromComputed(computed)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace sale items")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto, err = s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithSaleID(ctx, id.String()), "sale.updated")
	return dto, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*SaleDTO, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup sale")
	}
	return saleFromModel(sale), nil
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sales")
	}
	items := make([]SaleDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *saleFromModel(&rows[i]))
	}
	page := pkgpagination.BuildPage(items, params.Limit, func(sale SaleDTO) pkgpagination.Cursor {
		return pkgpagination.Cursor{At: sale.SaleDatetime, ID: sale.ID}
	})
	return &page, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete sale")
	}
	s.logg.Info(s.logg.WithSaleID(ctx, id.String()), "sale.deleted")
	return nil
}

// Quote prices a sale exactly as Create would, without writing anything.
func (s *service) Quote(ctx context.Context, input CreateSaleInput) (quote *QuoteDTO, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveSale(opQuote, err, time.Since(start)) }()

	header := s.header(input)
	lines := linesFromInput(input.Items)
	if _, err := pricing.ValidateSale(header, lines); err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := checkReferences(ctx, repo, header.CustomerID, lines); err != nil {
			return err
		}
		computed, err := s.pricing.ComputeSale(ctx, tx, header, lines)
		if err != nil {
			return err
		}
		quote = quoteFromComputed(computed)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

func (s *service) header(input CreateSaleInput) pricing.SaleHeader {
	when := s.now()
	if input.SaleDatetime != nil {
		when = *input.SaleDatetime
	}
	return pricing.SaleHeader{
		SaleType:     input.SaleType,
		CustomerID:   input.CustomerID,
		SaleDatetime: when,
	}
}

// checkReferences turns unknown customer or egg type ids into NOT_FOUND
// before any insert trips a foreign key.
func checkReferences(ctx context.Context, repo Repository, customerID *uuid.UUID, lines []pricing.LineInput) error {
	if customerID != nil {
		ok, err := repo.CustomerExists(ctx, *customerID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup customer")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found").
				WithDetails(map[string]any{"field": "customer"})
		}
	}

	seen := make(map[uuid.UUID]struct{}, len(lines))
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		if line.Quantity == 0 {
			continue
		}
		if _, ok := seen[line.EggTypeID]; ok {
			continue
		}
		seen[line.EggTypeID] = struct{}{}
		ids = append(ids, line.EggTypeID)
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
