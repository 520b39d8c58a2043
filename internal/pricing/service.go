package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/eggtrade-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/eggtrade-backend/pkg/errors"
	"github.com/angelmondragon/eggtrade-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type referenceChecker interface {
	EggTypeExists(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error)
	CustomerExists(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error)
}

// Service exposes standalone unit price resolution.
type Service interface {
	ResolveUnitPrice(ctx context.Context, input UnitPriceInput) (*UnitPriceResult, error)
}

// UnitPriceInput mirrors one sale line without a quantity. A zero AsOf means
// today in the business timezone.
type UnitPriceInput struct {
	SaleType      enums.SaleType
	CustomerID    *uuid.UUID
	EggTypeID     uuid.UUID
	AsOf          types.Date
	PricePerCrate decimal.NullDecimal
}

type UnitPriceResult struct {
	SaleType      enums.SaleType    `json:"sale_type"`
	CustomerID    *uuid.UUID        `json:"customer"`
	EggTypeID     uuid.UUID         `json:"egg_type"`
	AsOf          types.Date        `json:"as_of"`
	Tier          enums.PriceTier   `json:"tier"`
	UnitPrice     decimal.Decimal   `json:"unit_price"`
	PriceSource   enums.PriceSource `json:"price_source"`
	OverrideState string            `json:"override_state"`
}

type service struct {
	tx     txRunner
	refs   referenceChecker
	engine *Engine
	now    func() time.Time
}

func NewService(tx txRunner, refs referenceChecker, engine *Engine) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if refs == nil {
		return nil, fmt.Errorf("reference checker required")
	}
	if engine == nil {
		return nil, fmt.Errorf("pricing engine required")
	}
	return &service{tx: tx, refs: refs, engine: engine, now: time.Now}, nil
}

func (s *service) ResolveUnitPrice(ctx context.Context, input UnitPriceInput) (*UnitPriceResult, error) {
	if !input.SaleType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid sale type").
			WithDetails(map[string]any{"field": "sale_type"})
	}
	if input.EggTypeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "egg_type is required").
			WithDetails(map[string]any{"field": "egg_type"})
	}
	if input.SaleType == enums.SaleTypeRetail && input.CustomerID != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "retail sales must not have a customer").
			WithDetails(map[string]any{"field": "customer"})
	}

	asOf := input.AsOf
	if asOf.IsZero() {
		asOf = types.DateIn(s.now(), s.engine.Location())
	}

	var res Resolution
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ok, err := s.refs.EggTypeExists(ctx, tx, input.EggTypeID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup egg type")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, "egg type not found")
		}
		if input.CustomerID != nil {
			ok, err := s.refs.CustomerExists(ctx, tx, *input.CustomerID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup customer")
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
			}
		}

		res, err = s.engine.ResolveUnitPrice(ctx, tx, PriceQuery{
			SaleType:      input.SaleType,
			CustomerID:    input.CustomerID,
			EggTypeID:     input.EggTypeID,
			AsOf:          asOf,
			ExplicitPrice: input.PricePerCrate,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return &UnitPriceResult{
		SaleType:      input.SaleType,
		CustomerID:    input.CustomerID,
		EggTypeID:     input.EggTypeID,
		AsOf:          asOf,
		Tier:          res.Tier,
		UnitPrice:     res.UnitPrice,
		PriceSource:   res.Source,
		OverrideState: res.Override.String(),
	}, nil
}
