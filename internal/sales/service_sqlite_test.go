package sales

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/eggtrade-backend/internal/pricing"
	"github.com/angelmondragon/eggtrade-backend/internal/repo"
	"github.com/angelmondragon/eggtrade-backend/pkg/db"
	"github.com/angelmondragon/eggtrade-backend/pkg/db/models"
	"github.com/angelmondragon/eggtrade-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/eggtrade-backend/pkg/errors"
	"github.com/angelmondragon/eggtrade-backend/pkg/metrics"
	"github.com/angelmondragon/eggtrade-backend/pkg/types"
)

type env struct {
	conn  *gorm.DB
	svc   Service
	reg   *prometheus.Registry
	small uuid.UUID
	big   uuid.UUID
	acme  uuid.UUID
}

func newEnv(t *testing.T) env {
	return newEnvWithRepo(t, func(r Repository) Repository { return r })
}

func newEnvWithRepo(t *testing.T, wrap func(Repository) Repository) env {
	t.Helper()
	conn := repo.NewTestDB(t)

	small := models.EggType{Name: "Small", IsActive: true}
	big := models.EggType{Name: "Big", IsActive: true}
	require.NoError(t, conn.Create(&small).Error)
	require.NoError(t, conn.Create(&big).Error)
	acme := models.WholesaleCustomer{Name: "Acme Foods", IsActive: true}
	require.NoError(t, conn.Create(&acme).Error)

	start := types.NewDate(2024, 1, 1)
	tiers := []models.PriceTierEntry{
		{Tier: enums.PriceTierRetail, EggTypeID: small.ID, PricePerCrate: decimal.RequireFromString("30.00"), EffectiveDate: start, IsActive: true},
		{Tier: enums.PriceTierRetail, EggTypeID: small.ID, PricePerCrate: decimal.RequireFromString("45.00"), EffectiveDate: types.NewDate(2024, 7, 1), IsActive: true},
		{Tier: enums.PriceTierRetail, EggTypeID: big.ID, PricePerCrate: decimal.RequireFromString("40.00"), EffectiveDate: start, IsActive: true},
		{Tier: enums.PriceTierWholesaleBase, EggTypeID: small.ID, PricePerCrate: decimal.RequireFromString("25.00"), EffectiveDate: start, IsActive: true},
		{Tier: enums.PriceTierWholesaleBase, EggTypeID: big.ID, PricePerCrate: decimal.RequireFromString("26.00"), EffectiveDate: start, IsActive: true},
	}
	require.NoError(t, conn.Create(&tiers).Error)
	override := models.CustomerPriceOverride{
		CustomerID:    acme.ID,
		EggTypeID:     big.ID,
		PricePerCrate: decimal.NewNullDecimal(decimal.RequireFromString("22.00")),
		EffectiveDate: start,
	}
	require.NoError(t, conn.Create(&override).Error)

	reg := prometheus.NewRegistry()
	pm := metrics.NewPricingMetrics(reg)
	engine, err := pricing.NewEngine(pricing.EngineConfig{
		Loader:   pricing.NewRepository(conn),
		Location: time.UTC,
		Metrics:  pm,
	})
	require.NoError(t, err)

	svc, err := NewService(ServiceParams{
		Repo:    wrap(NewRepository(conn)),
		Tx:      db.NewFromConn(conn),
		Pricing: engine,
		Metrics: pm,
	})
	require.NoError(t, err)
	return env{conn: conn, svc: svc, reg: reg, small: small.ID, big: big.ID, acme: acme.ID}
}

func (e env) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.conn.Model(model).Count(&n).Error)
	return n
}

func at(s string) *time.Time {
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &ts
}

func TestCreateRetailSaleFromTierPrice(t *testing.T) {
	e := newEnv(t)

	sale, err := e.svc.Create(context.Background(), CreateSaleInput{
		SaleType:     enums.SaleTypeRetail,
		SaleDatetime: at("2024-06-01T10:00:00Z"),
		Notes:        "  market stall ",
		Items:        []ItemInput{{EggTypeID: e.small, Quantity: 10}},
	})
	require.NoError(t, err)

	assert.Equal(t, "300.00", sale.TotalAmount.StringFixed(2))
	assert.Equal(t, "market stall", sale.Notes)
	require.Len(t, sale.Items, 1)
	assert.Equal(t, "Small", sale.Items[0].EggTypeName)
	assert.Equal(t, enums.PriceSourceTier, sale.Items[0].PriceSource)
	assert.Equal(t, "30.00", sale.Items[0].UnitPrice.StringFixed(2))
	assert.Nil(t, sale.CustomerID)
}

func TestCreateWholesaleSaleUsesCustomerOverride(t *testing.T) {
	e := newEnv(t)

	sale, err := e.svc.Create(context.Background(), CreateSaleInput{
		SaleType:     enums.SaleTypeWholesale,
		CustomerID:   &e.acme,
		SaleDatetime: at("2024-06-01T10:00:00Z"),
		Items: []ItemInput{
			{EggTypeID: e.big, Quantity: 4},
			{EggTypeID: e.small, Quantity: 2},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "138.00", sale.TotalAmount.StringFixed(2))
	assert.Equal(t, "Acme Foods", sale.CustomerName)
	require.Len(t, sale.Items, 2)
	assert.Equal(t, e.big, sale.Items[0].EggTypeID, "items keep submission order")
	assert.Equal(t, enums.PriceSourceOverride, sale.Items[0].PriceSource)
	assert.Equal(t, "88.00", sale.Items[0].LineTotal.StringFixed(2))
	assert.Equal(t, enums.PriceSourceTier, sale.Items[1].PriceSource)
	assert.Equal(t, "50.00", sale.Items[1].LineTotal.StringFixed(2))

	sum := decimal.Zero
	for _, item := range sale.Items {
		sum = sum.Add(item.LineTotal)
	}
	assert.True(t, sum.Equal(sale.TotalAmount))
}

func TestCreateRejectedSalesPersistNothing(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.Create(ctx, CreateSaleInput{
		SaleType: enums.SaleTypeWholesale,
		Items:    []ItemInput{{EggTypeID: e.small, Quantity: 3}},
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)

	_, err = e.svc.Create(ctx, CreateSaleInput{
		SaleType: enums.SaleTypeRetail,
		Items:    []ItemInput{{EggTypeID: e.small}, {EggTypeID: e.big}},
	})
	require.Error(t, err)
	assert.Equal(t, "at least one item must have a positive quantity", pkgerrors.As(err).Message())

	_, err = e.svc.Create(ctx, CreateSaleInput{
		SaleType: enums.SaleTypeRetail,
		Items:    []ItemInput{{EggTypeID: uuid.New(), Quantity: 1}},
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)

	assert.Zero(t, e.count(t, &models.Sale{}))
	assert.Zero(t, e.count(t, &models.SaleItem{}))
}

func TestCreateDropsZeroQuantityLines(t *testing.T) {
	e := newEnv(t)

	sale, err := e.svc.Create(context.Background(), CreateSaleInput{
		SaleType:     enums.SaleTypeRetail,
		SaleDatetime: at("2024-06-01T10:00:00Z"),
		Items: []ItemInput{
			{EggTypeID: e.small, Quantity: 0},
			{EggTypeID: e.big, Quantity: 5},
		},
	})
	require.NoError(t, err)
	require.Len(t, sale.Items, 1)
	assert.Equal(t, e.big, sale.Items[0].EggTypeID)
	assert.Equal(t, "200.00", sale.TotalAmount.StringFixed(2))
	assert.Equal(t, int64(1), e.count(t, &models.SaleItem{}))
}

func TestUpdateReplacesItemsAndTotal(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	created, err := e.svc.Create(ctx, CreateSaleInput{
		SaleType:     enums.SaleTypeRetail,
		SaleDatetime: at("2024-06-01T10:00:00Z"),
		Items:        []ItemInput{{EggTypeID: e.small, Quantity: 10}, {EggTypeID: e.big, Quantity: 1}},
	})
	require.NoError(t, err)

	updated, err := e.svc.Update(ctx, created.ID, UpdateSaleInput{
		Items: []ItemInput{{EggTypeID: e.big, Quantity: 2, PricePerCrate: decimal.NewNullDecimal(decimal.RequireFromString("35.50"))}},
	})
	require.NoError(t, err)

	assert.Equal(t, "71.00", updated.TotalAmount.StringFixed(2))
	require.Len(t, updated.Items, 1)
	assert.Equal(t, enums.PriceSourceExplicit, updated.Items[0].PriceSource)
	for _, old := range created.Items {
		assert.NotEqual(t, old.ID, updated.Items[0].ID)
	}

	var items []models.SaleItem
	require.NoError(t, e.conn.Where("sale_id = ?", created.ID).Find(&items).Error)
	require.Len(t, items, 1)
}

func TestUpdateWithoutItemsRepricesExistingLines(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	created, err := e.svc.Create(ctx, CreateSaleInput{
		SaleType:     enums.SaleTypeRetail,
		SaleDatetime: at("2024-06-01T10:00:00Z"),
		Items:        []ItemInput{{EggTypeID: e.small, Quantity: 10}},
	})
	require.NoError(t, err)
	require.Equal(t, "300.00", created.TotalAmount.StringFixed(2))

	updated, err := e.svc.Update(ctx, created.ID, UpdateSaleInput{SaleDatetime: at("2024-07-15T10:00:00Z")})
	require.NoError(t, err)
	assert.Equal(t, "450.00", updated.TotalAmount.StringFixed(2))

	wholesale := enums.SaleTypeWholesale
	updated, err = e.svc.Update(ctx, created.ID, UpdateSaleInput{
		SaleType: &wholesale,
		Customer: types.NullableUUID{Valid: true, Value: &e.acme},
	})
	require.NoError(t, err)
	assert.Equal(t, "250.00", updated.TotalAmount.StringFixed(2))
	assert.Equal(t, "Acme Foods", updated.CustomerName)
}

func TestUpdateFailuresLeaveSaleUnchanged(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	created, err := e.svc.Create(ctx, CreateSaleInput{
		SaleType:     enums.SaleTypeRetail,
		SaleDatetime: at("2024-06-01T10:00:00Z"),
		Items:        []ItemInput{{EggTypeID: e.small, Quantity: 10}},
	})
	require.NoError(t, err)

	wholesale := enums.SaleTypeWholesale
	_, err = e.svc.Update(ctx, created.ID, UpdateSaleInput{SaleType: &wholesale})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)

	_, err = e.svc.Update(ctx, created.ID, UpdateSaleInput{Items: []ItemInput{{EggTypeID: e.small, Quantity: -1}}})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)

	_, err = e.svc.Update(ctx, created.ID, UpdateSaleInput{Items: []ItemInput{{EggTypeID: uuid.New(), Quantity: 1}}})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)

	current, err := e.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.SaleTypeRetail, current.SaleType)
	assert.Equal(t, "300.00", current.TotalAmount.StringFixed(2))
	require.Len(t, current.Items, 1)
	assert.Equal(t, created.Items[0].ID, current.Items[0].ID)
}

type replaceThenFail struct {
	Repository
}

func (r replaceThenFail) WithTx(tx *gorm.DB) Repository {
	return replaceThenFail{Repository: r.Repository.WithTx(tx)}
}

func (r replaceThenFail) ReplaceItems(ctx context.Context, saleID uuid.UUID, items []models.SaleItem) error {
	if err := r.Repository.ReplaceItems(ctx, saleID, items); err != nil {
		return err
	}
	return errBoom
}

func TestUpdateRollsBackWhenItemWriteFails(t *testing.T) {
	e := newEnvWithRepo(t, func(r Repository) Repository { return replaceThenFail{Repository: r} })
	ctx := context.Background()

	created, err := e.svc.Create(ctx, CreateSaleInput{
		SaleType:     enums.SaleTypeRetail,
		SaleDatetime: at("2024-06-01T10:00:00Z"),
		Notes:        "original",
		Items:        []ItemInput{{EggTypeID: e.small, Quantity: 10}},
	})
	require.NoError(t, err)

	notes := "changed"
	_, err = e.svc.Update(ctx, created.ID, UpdateSaleInput{
		Notes: &notes,
		Items: []ItemInput{{EggTypeID: e.big, Quantity: 3}},
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency), "got %v", err)

	current, err := e.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", current.Notes)
	assert.Equal(t, "300.00", current.TotalAmount.StringFixed(2))
	require.Len(t, current.Items, 1)
	assert.Equal(t, e.small, current.Items[0].EggTypeID)
	assert.Equal(t, int64(1), e.count(t, &models.SaleItem{}))
}

func TestQuotePersistsNothing(t *testing.T) {
	e := newEnv(t)

	quote, err := e.svc.Quote(context.Background(), CreateSaleInput{
		SaleType:     enums.SaleTypeWholesale,
		CustomerID:   &e.acme,
		SaleDatetime: at("2024-06-01T23:30:00Z"),
		Items:        []ItemInput{{EggTypeID: e.big, Quantity: 4}},
	})
	require.NoError(t, err)
	assert.Equal(t, "88.00", quote.TotalAmount.StringFixed(2))
	assert.Equal(t, "2024-06-01", quote.AsOf.String())
	assert.Zero(t, e.count(t, &models.Sale{}))
	assert.Zero(t, e.count(t, &models.SaleItem{}))
}

func TestDeleteCascadesItems(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	created, err := e.svc.Create(ctx, CreateSaleInput{
		SaleType: enums.SaleTypeRetail,
		Items:    []ItemInput{{EggTypeID: e.small, Quantity: 1}, {EggTypeID: e.big, Quantity: 1}},
	})
	require.NoError(t, err)

	require.NoError(t, e.svc.Delete(ctx, created.ID))
	assert.Zero(t, e.count(t, &models.SaleItem{}))

	_, err = e.svc.Get(ctx, created.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)
	assert.True(t, pkgerrors.IsCode(e.svc.Delete(ctx, created.ID), pkgerrors.CodeNotFound))
}

func TestListPagesNewestFirst(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	for _, when := range []string{"2024-06-01T08:00:00Z", "2024-06-03T08:00:00Z", "2024-06-02T08:00:00Z"} {
		_, err := e.svc.Create(ctx, CreateSaleInput{
			SaleType:     enums.SaleTypeRetail,
			SaleDatetime: at(when),
			Items:        []ItemInput{{EggTypeID: e.small, Quantity: 1}},
		})
		require.NoError(t, err)
	}

	params := ListParams{}
	params.Limit = 2
	first, err := e.svc.List(ctx, params)
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	assert.Equal(t, 3, first.Items[0].SaleDatetime.Day())
	assert.Equal(t, 2, first.Items[1].SaleDatetime.Day())
	require.NotEmpty(t, first.NextCursor)
	require.Len(t, first.Items[0].Items, 1)

	params.Cursor = first.NextCursor
	second, err := e.svc.List(ctx, params)
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	assert.Equal(t, 1, second.Items[0].SaleDatetime.Day())
	assert.Empty(t, second.NextCursor)
}

func TestSaleMetricsCountOutcomes(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.Create(ctx, CreateSaleInput{SaleType: enums.SaleTypeRetail, Items: []ItemInput{{EggTypeID: e.small, Quantity: 1}}})
	require.NoError(t, err)
	_, err = e.svc.Create(ctx, CreateSaleInput{SaleType: enums.SaleTypeRetail})
	require.Error(t, err)

	mfs, err := e.reg.Gather()
	require.NoError(t, err)
	outcomes := map[string]float64{}
	for _, mf := range mfs {
		if mf.GetName() != "pricing_sale_computations_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			outcomes[labels["operation"]+"/"+labels["outcome"]] += m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, float64(1), outcomes["create/success"])
	assert.Equal(t, float64(1), outcomes["create/failure"])
}
