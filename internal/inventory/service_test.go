package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/eggtrade-backend/internal/repo"
	"github.com/angelmondragon/eggtrade-backend/pkg/db"
	"github.com/angelmondragon/eggtrade-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/eggtrade-backend/pkg/errors"
	"github.com/angelmondragon/eggtrade-backend/pkg/types"
)

type fixture struct {
	conn   *gorm.DB
	svc    Service
	small  uuid.UUID
	big    uuid.UUID
	broken uuid.UUID
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	conn := repo.NewTestDB(t)
	eggTypes := []models.EggType{
		{Name: "Broken", DisplayOrder: 3, IsActive: true},
		{Name: "Small", DisplayOrder: 1, IsActive: true},
		{Name: "Big", DisplayOrder: 2, IsActive: true},
	}
	require.NoError(t, conn.Create(&eggTypes).Error)

	accra, err := time.LoadLocation("Africa/Accra")
	require.NoError(t, err)
	svc, err := NewService(ServiceParams{
		Repo:     NewRepository(conn),
		Tx:       db.NewFromConn(conn),
		Location: accra,
	})
	require.NoError(t, err)
	return fixture{conn: conn, svc: svc, broken: eggTypes[0].ID, small: eggTypes[1].ID, big: eggTypes[2].ID}
}

func day(t *testing.T, s string) types.Date {
	t.Helper()
	d, err := types.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestCreateIntakeLog(t *testing.T) {
	f := newFixture(t)

	log, err := f.svc.Create(context.Background(), CreateIntakeLogInput{
		RecordedDate: day(t, "2024-06-01"),
		Notes:        " morning delivery ",
		Items: []ItemInput{
			{EggTypeID: f.broken, Crates: 1},
			{EggTypeID: f.big, Crates: 12},
			{EggTypeID: f.small, Crates: 20},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "2024-06-01", log.RecordedDate.String())
	assert.Equal(t, "morning delivery", log.Notes)
	assert.Equal(t, 33, log.TotalCrates)
	require.Len(t, log.Items, 3)
	assert.Equal(t, []string{"Small", "Big", "Broken"}, []string{log.Items[0].EggTypeName, log.Items[1].EggTypeName, log.Items[2].EggTypeName})
}

func TestCreateDefaultsToTodayInBusinessTimezone(t *testing.T) {
	f := newFixture(t)
	f.svc.(*service).now = func() time.Time { return time.Date(2024, 6, 1, 23, 30, 0, 0, time.UTC) }

	log, err := f.svc.Create(context.Background(), CreateIntakeLogInput{})
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", log.RecordedDate.String())
	assert.Zero(t, log.TotalCrates)
	assert.Empty(t, log.Items)
}

func TestCreateOneLogPerDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, CreateIntakeLogInput{RecordedDate: day(t, "2024-06-01")})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, CreateIntakeLogInput{RecordedDate: day(t, "2024-06-01"), Items: []ItemInput{{EggTypeID: f.small, Crates: 2}}})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)

	var items int64
	require.NoError(t, f.conn.Model(&models.IntakeLogItem{}).Count(&items).Error)
	assert.Zero(t, items)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name  string
		items []ItemInput
		code  pkgerrors.Code
		field string
	}{
		{name: "negative crates", items: []ItemInput{{EggTypeID: f.small, Crates: -1}}, code: pkgerrors.CodeValidation, field: "items[0].crates"},
		{name: "duplicate egg type", items: []ItemInput{{EggTypeID: f.small, Crates: 1}, {EggTypeID: f.small, Crates: 2}}, code: pkgerrors.CodeValidation, field: "items[1].egg_type"},
		{name: "missing egg type", items: []ItemInput{{Crates: 1}}, code: pkgerrors.CodeValidation, field: "items[0].egg_type"},
		{name: "unknown egg type", items: []ItemInput{{EggTypeID: uuid.New(), Crates: 1}}, code: pkgerrors.CodeNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), CreateIntakeLogInput{RecordedDate: day(t, "2024-06-02"), Items: tc.items})
			require.True(t, pkgerrors.IsCode(err, tc.code), "got %v", err)
			if tc.field != "" {
				details, ok := pkgerrors.As(err).Details().(map[string]any)
				require.True(t, ok)
				assert.Equal(t, tc.field, details["field"])
			}
		})
	}
}

func TestUpdateReplacesItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, CreateIntakeLogInput{
		RecordedDate: day(t, "2024-06-01"),
		Items:        []ItemInput{{EggTypeID: f.small, Crates: 20}, {EggTypeID: f.big, Crates: 5}},
	})
	require.NoError(t, err)

	notes := "recount"
	updated, err := f.svc.Update(ctx, created.ID, UpdateIntakeLogInput{
		Notes: &notes,
		Items: []ItemInput{{EggTypeID: f.big, Crates: 7}},
	})
	require.NoError(t, err)
	assert.Equal(t, "recount", updated.Notes)
	assert.Equal(t, 7, updated.TotalCrates)
	require.Len(t, updated.Items, 1)

	kept, err := f.svc.Update(ctx, created.ID, UpdateIntakeLogInput{RecordedDate: ptr(day(t, "2024-06-03"))})
	require.NoError(t, err)
	assert.Equal(t, "2024-06-03", kept.RecordedDate.String())
	assert.Equal(t, 7, kept.TotalCrates, "omitted items keep the current counts")
}

func TestUpdateIntoTakenDateConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, CreateIntakeLogInput{RecordedDate: day(t, "2024-06-01")})
	require.NoError(t, err)
	second, err := f.svc.Create(ctx, CreateIntakeLogInput{RecordedDate: day(t, "2024-06-02"), Items: []ItemInput{{EggTypeID: f.small, Crates: 4}}})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, second.ID, UpdateIntakeLogInput{
		RecordedDate: ptr(day(t, "2024-06-01")),
		Items:        []ItemInput{{EggTypeID: f.big, Crates: 9}},
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)

	current, err := f.svc.Get(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-02", current.RecordedDate.String())
	assert.Equal(t, 4, current.TotalCrates)
}

func TestListAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ids := map[string]uuid.UUID{}
	for _, d := range []string{"2024-06-02", "2024-06-01", "2024-06-03"} {
		log, err := f.svc.Create(ctx, CreateIntakeLogInput{RecordedDate: day(t, d), Items: []ItemInput{{EggTypeID: f.small, Crates: 1}}})
		require.NoError(t, err)
		ids[d] = log.ID
	}

	params := ListParams{}
	params.Limit = 2
	first, err := f.svc.List(ctx, params)
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	assert.Equal(t, "2024-06-03", first.Items[0].RecordedDate.String())
	assert.Equal(t, "2024-06-02", first.Items[1].RecordedDate.String())
	require.NotEmpty(t, first.NextCursor)

	params.Cursor = first.NextCursor
	second, err := f.svc.List(ctx, params)
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	assert.Equal(t, "2024-06-01", second.Items[0].RecordedDate.String())
	assert.Empty(t, second.NextCursor)

	require.NoError(t, f.svc.Delete(ctx, ids["2024-06-01"]))
	var items int64
	require.NoError(t, f.conn.Model(&models.IntakeLogItem{}).Where("intake_log_id = ?", ids["2024-06-01"]).Count(&items).Error)
	assert.Zero(t, items)

	assert.True(t, pkgerrors.IsCode(f.svc.Delete(ctx, ids["2024-06-01"]), pkgerrors.CodeNotFound))
	_, err = f.svc.Get(ctx, ids["2024-06-01"])
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{Tx: db.NewFromConn(nil)})
	assert.Error(t, err)
	_, err = NewService(ServiceParams{Repo: NewRepository(nil)})
	assert.Error(t, err)
}

func ptr[T any](v T) *T {
	return &v
}
