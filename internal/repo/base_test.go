package repo

import (
	"context"
	"testing"

	"github.com/angelmondragon/eggtrade-backend/pkg/db/models"
)

func TestNewBaseStoresConnection(t *testing.T) {
	db := NewTestDB(t)
	base := NewBase(db)

	if base.db != db {
		t.Fatalf("expected base db to match provided connection")
	}
}

func TestBaseDB_BindsContext(t *testing.T) {
	db := NewTestDB(t)
	base := NewBase(db)

	ctx := context.WithValue(context.Background(), struct{}{}, "value")
	withCtx := base.DB(ctx)

	if withCtx == nil {
		t.Fatalf("expected non-nil DB when context provided")
	}
	if withCtx.Statement == nil {
		t.Fatalf("expected statement created after WithContext")
	}
	if withCtx.Statement.Context != ctx {
		t.Fatalf("expected context to flow through, got %v", withCtx.Statement.Context)
	}

	withoutCtx := base.DB(nil)
	if withoutCtx != db {
		t.Fatalf("expected nil context to return raw connection")
	}
}

func TestBaseWithTx(t *testing.T) {
	db := NewTestDB(t)
	base := NewBase(db)

	tx := db.Begin()
	defer tx.Rollback()

	bound := base.WithTx(tx)
	if bound.db != tx {
		t.Fatalf("expected tx-bound base")
	}
	if base.WithTx(nil).db != db {
		t.Fatalf("nil tx should keep the original connection")
	}

	if err := bound.DB(context.Background()).Create(&models.EggType{Name: "Small"}).Error; err != nil {
		t.Fatalf("create in tx: %v", err)
	}
}

func TestNewTestDBMigratesModels(t *testing.T) {
	db := NewTestDB(t)
	for _, table := range []string{"egg_types", "price_tier_entries", "customer_price_overrides", "sales", "sale_items", "intake_logs", "expenses"} {
		if !db.Migrator().HasTable(table) {
			t.Fatalf("expected table %s to exist", table)
		}
	}
}
