package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"fencecost/core/output"
	"fencecost/core/types"
	"fencecost/internal/errors"
)

func quote(customer, project string, total string) *output.Quote {
	return &output.Quote{
		Kind:        output.KindEstimate,
		Customer:    customer,
		Project:     project,
		Currency:    types.CurrencyUSD,
		GeneratedAt: time.Date(2025, 3, 4, 9, 30, 0, 0, time.UTC),
		Breakdown: &types.EstimateBreakdown{
			Total: decimal.RequireFromString(total),
			LineItems: []types.PricedLine{
				{SKU: "POST", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.RequireFromString("18.50")},
			},
		},
	}
}

func backends(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	file, err := NewFileStore(filepath.Join(dir, "quotes"))
	require.NoError(t, err)
	sqlite, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   file,
		"sqlite": sqlite,
	}
}

func TestSaveGetDelete(t *testing.T) {
	ctx := context.Background()
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			sq := NewStoredQuote(quote("Acme", "Yard", "313.50"))
			require.NoError(t, store.Save(ctx, sq))
			require.NotEmpty(t, sq.ID)
			require.False(t, sq.CreatedAt.IsZero())
			require.Equal(t, sq.ID, sq.Quote.ID)

			got, err := store.Get(ctx, sq.ID)
			require.NoError(t, err)
			require.Equal(t, "Acme", got.Customer)
			require.Equal(t, output.KindEstimate, got.Kind)
			require.True(t, decimal.RequireFromString("313.5").Equal(got.Total))
			require.Equal(t, sq.ID, got.Quote.ID)
			require.Len(t, got.Quote.Breakdown.LineItems, 1)
			require.True(t, decimal.RequireFromString("18.5").Equal(got.Quote.Breakdown.LineItems[0].UnitPrice))

			require.NoError(t, store.Delete(ctx, sq.ID))
			_, err = store.Get(ctx, sq.ID)
			require.True(t, errors.IsType(err, errors.TypeNotFound), "got %v", err)
			require.True(t, errors.IsType(store.Delete(ctx, sq.ID), errors.TypeNotFound))
		})
	}
}

func TestListFiltersAndOrders(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for i, c := range []struct{ customer, project string }{
				{"Acme", "Yard"},
				{"Acme", "Pool"},
				{"Bolt", "Yard"},
			} {
				sq := NewStoredQuote(quote(c.customer, c.project, "100"))
				sq.CreatedAt = base.Add(time.Duration(i) * time.Hour)
				require.NoError(t, store.Save(ctx, sq))
			}

			all, err := store.List(ctx, nil)
			require.NoError(t, err)
			require.Len(t, all, 3)
			require.Equal(t, "Bolt", all[0].Customer, "newest first")

			tests := []struct {
				name   string
				filter *ListFilter
				want   int
			}{
				{name: "by customer", filter: &ListFilter{Customer: "Acme"}, want: 2},
				{name: "by project", filter: &ListFilter{Project: "Yard"}, want: 2},
				{name: "by kind", filter: &ListFilter{Kind: output.KindPurchaseOrder}, want: 0},
				{name: "since", filter: &ListFilter{Since: base.Add(30 * time.Minute)}, want: 2},
				{name: "until", filter: &ListFilter{Until: base.Add(30 * time.Minute)}, want: 1},
				{name: "limit", filter: &ListFilter{Limit: 2}, want: 2},
				{name: "offset", filter: &ListFilter{Offset: 2}, want: 1},
				{name: "offset past end", filter: &ListFilter{Offset: 5}, want: 0},
			}
			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					got, err := store.List(ctx, tt.filter)
					require.NoError(t, err)
					require.Len(t, got, tt.want)
				})
			}

			latest, err := Latest(ctx, store, "Yard")
			require.NoError(t, err)
			require.Equal(t, "Bolt", latest.Customer)

			_, err = Latest(ctx, store, "Driveway")
			require.True(t, errors.IsType(err, errors.TypeNotFound))
		})
	}
}

func TestCompare(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	old := NewStoredQuote(quote("Acme", "Yard", "200.00"))
	require.NoError(t, store.Save(ctx, old))
	updated := NewStoredQuote(quote("Acme", "Yard", "250.00"))
	require.NoError(t, store.Save(ctx, updated))

	cmp, err := Compare(ctx, store, old.ID, updated.ID)
	require.NoError(t, err)
	require.True(t, decimal.NewFromInt(50).Equal(cmp.Delta))
	require.True(t, decimal.NewFromInt(25).Equal(cmp.DeltaPercent))

	_, err = Compare(ctx, store, old.ID, "missing")
	require.True(t, errors.IsType(err, errors.TypeNotFound))
}

func TestUUIDSpellingsShareOneQuote(t *testing.T) {
	ctx := context.Background()
	const id = "6ba7b810-9dad-11d1-80b4-00c04fd430c8"

	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			sq := NewStoredQuote(quote("Acme", "Yard", "10"))
			sq.ID = "{6BA7B810-9DAD-11D1-80B4-00C04FD430C8}"
			require.NoError(t, store.Save(ctx, sq))
			require.Equal(t, id, sq.ID)

			got, err := store.Get(ctx, "urn:uuid:"+id)
			require.NoError(t, err)
			require.Equal(t, id, got.ID)

			all, err := store.List(ctx, nil)
			require.NoError(t, err)
			require.Len(t, all, 1)

			require.NoError(t, store.Delete(ctx, "{"+id+"}"))
			_, err = store.Get(ctx, id)
			require.True(t, errors.IsType(err, errors.TypeNotFound))
		})
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    time.Time
		wantErr bool
	}{
		{name: "empty", value: ""},
		{name: "date", value: "2025-03-04", want: time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)},
		{name: "rfc3339", value: "2025-03-04T09:30:00Z", want: time.Date(2025, 3, 4, 9, 30, 0, 0, time.UTC)},
		{name: "garbage", value: "last week", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTime(tt.value, "since")
			if tt.wantErr {
				require.True(t, errors.IsType(err, errors.TypeValidation))
				return
			}
			require.NoError(t, err)
			require.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestFileStoreRejectsNonUUID(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "../../etc/passwd")
	require.True(t, errors.IsType(err, errors.TypeNotFound))

	sq := NewStoredQuote(quote("Acme", "Yard", "1"))
	sq.ID = "not-a-uuid"
	require.True(t, errors.IsType(store.Save(context.Background(), sq), errors.TypeValidation))
}

func TestSaveRejectsEmptyQuote(t *testing.T) {
	require.Error(t, NewMemoryStore().Save(context.Background(), &StoredQuote{}))
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{name: "default memory", opts: Options{}},
		{name: "file", opts: Options{Backend: BackendFile, Path: filepath.Join(t.TempDir(), "q")}},
		{name: "sqlite", opts: Options{Backend: BackendSQLite, Path: filepath.Join(t.TempDir(), "q.db")}},
		{name: "unknown", opts: Options{Backend: "s3"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(tt.opts)
			if tt.wantErr {
				require.Error(t, err)
				require.True(t, errors.IsType(err, errors.TypeConfig))
				return
			}
			require.NoError(t, err)
			require.NoError(t, s.Close())
		})
	}
}
