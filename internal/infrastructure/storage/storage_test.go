package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/foodtracker/internal/domain/order"
)

var zomatoPartition = Partition{
	Platform:      "zomato",
	DataKey:       "zomatoData",
	LastSyncKey:   "lastSyncZomato",
	LegacyDataKey: "orders",
	LegacySyncKey: "lastSync",
}

var swiggyPartition = Partition{
	Platform:    "swiggy",
	DataKey:     "swiggyData",
	LastSyncKey: "lastSyncSwiggy",
}

// backends returns one fresh instance of every KV implementation.
func backends(t *testing.T) map[string]KV {
	t.Helper()
	ctx := context.Background()

	sqlite, err := NewSQLite(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	pebbleDisk, err := NewPebble(filepath.Join(t.TempDir(), "pebble"))
	require.NoError(t, err)

	pebbleMem, err := NewPebbleInMemory()
	require.NoError(t, err)

	kvs := map[string]KV{
		"sqlite":     sqlite,
		"pebble":     pebbleDisk,
		"pebble-mem": pebbleMem,
		"memory":     NewMemory(),
	}
	t.Cleanup(func() {
		for _, kv := range kvs {
			_ = kv.Close()
		}
	})
	return kvs
}

func TestKV_GetSet(t *testing.T) {
	ctx := context.Background()
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := kv.Get(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, kv.Set(ctx, "k", []byte(`[1,2]`)))
			v, ok, err := kv.Get(ctx, "k")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `[1,2]`, string(v))

			require.NoError(t, kv.Set(ctx, "k", []byte(`[]`)))
			v, _, err = kv.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, `[]`, string(v))
		})
	}
}

func TestOrderStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := NewOrderStore(kv)
			orders := []order.Order{
				{OrderID: "1", TotalCost: order.TextAmount("₹1,200"), OrderDate: "March 15, 2024 at 08:30 PM", RestaurantName: "Tandoor"},
				{OrderID: "2", TotalCost: order.NumberAmount(450), OrderDate: "1710513000", RestaurantName: "Dosa Hut", DishString: "1 x Dosa", Status: "delivered"},
			}

			require.NoError(t, store.SaveOrders(ctx, swiggyPartition, orders))
			got, err := store.Orders(ctx, swiggyPartition)
			require.NoError(t, err)
			assert.Equal(t, orders, got)

			// Partitions never mix.
			other, err := store.Orders(ctx, zomatoPartition)
			require.NoError(t, err)
			assert.Empty(t, other)
		})
	}
}

func TestOrderStore_LegacyMigration(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	require.NoError(t, kv.Set(ctx, "orders", []byte(`[{"orderId":"L1","totalCost":"₹100","orderDate":"January 1, 2023","restaurantName":"Old Place","dishString":""}]`)))
	require.NoError(t, kv.Set(ctx, "lastSync", []byte(`"2023-01-02T10:00:00.000Z"`)))

	store := NewOrderStore(kv)

	got, err := store.Orders(ctx, zomatoPartition)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "L1", got[0].OrderID)

	// Copied into the current key.
	raw, ok, err := kv.Get(ctx, "zomatoData")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, string(raw), `"L1"`)

	last, ok, err := store.LastSync(ctx, zomatoPartition)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, time.Date(2023, 1, 2, 10, 0, 0, 0, time.UTC), last.UTC())

	_, ok, err = kv.Get(ctx, "lastSyncZomato")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOrderStore_LegacyIgnoredWhenCurrentHasData(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	store := NewOrderStore(kv)
	require.NoError(t, kv.Set(ctx, "orders", []byte(`[{"orderId":"L1"}]`)))
	require.NoError(t, store.SaveOrders(ctx, zomatoPartition, []order.Order{{OrderID: "N1"}}))

	got, err := store.Orders(ctx, zomatoPartition)
	require.NoError(t, err)
	assert.Equal(t, []string{"N1"}, order.IDs(got))
}

func TestOrderStore_LastSync(t *testing.T) {
	ctx := context.Background()
	store := NewOrderStore(NewMemory())

	_, ok, err := store.LastSync(ctx, swiggyPartition)
	require.NoError(t, err)
	assert.False(t, ok)

	at := time.Date(2024, 3, 15, 20, 30, 0, 0, time.UTC)
	require.NoError(t, store.SetLastSync(ctx, swiggyPartition, at))

	got, ok, err := store.LastSync(ctx, swiggyPartition)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, at.Equal(got))
}

func TestOrderStore_CorruptPartition(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	require.NoError(t, kv.Set(ctx, "swiggyData", []byte(`{not json`)))

	_, err := NewOrderStore(kv).Orders(ctx, swiggyPartition)
	assert.Error(t, err)
}

func TestOrderStore_DriftedRecords(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	require.NoError(t, kv.Set(ctx, "swiggyData", []byte(`[
		{"orderId": "1", "totalCost": true, "orderDate": "2024-03-01T10:00:00Z", "status": 6},
		{"orderId": 2, "totalCost": "₹50", "restaurantName": {"name": "Moved"}},
		42
	]`)))
	store := NewOrderStore(kv)

	orders, err := store.Orders(ctx, swiggyPartition)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	assert.Equal(t, "1", orders[0].OrderID)
	assert.Equal(t, order.Amount{}, orders[0].TotalCost)
	assert.Equal(t, "6", orders[0].Status)
	assert.Equal(t, "2024-03-01T10:00:00Z", orders[0].OrderDate)

	assert.Equal(t, "2", orders[1].OrderID)
	assert.Equal(t, "₹50", orders[1].TotalCost.Text())
	assert.Equal(t, order.UnknownRestaurant, orders[1].Restaurant())

	// The readable records survive a rewrite.
	require.NoError(t, store.SaveOrders(ctx, swiggyPartition, orders))
	again, err := store.Orders(ctx, swiggyPartition)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, order.IDs(again))
}

func TestOrderStore_BackendErrors(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	kv.GetErr = errors.New("disk gone")
	store := NewOrderStore(kv)

	_, err := store.Orders(ctx, swiggyPartition)
	assert.ErrorIs(t, err, kv.GetErr)

	kv.GetErr = nil
	kv.SetErr = errors.New("read only")
	err = store.SaveOrders(ctx, swiggyPartition, nil)
	assert.ErrorIs(t, err, kv.SetErr)
}

func TestOrderStore_Runs(t *testing.T) {
	ctx := context.Background()
	store := NewOrderStore(NewMemory())

	for i := 0; i < MaxSyncRuns+5; i++ {
		require.NoError(t, store.RecordRun(ctx, swiggyPartition, SyncRun{ID: string(rune('a' + i%26)), Platform: "swiggy", Added: i}))
	}

	runs, err := store.Runs(ctx, swiggyPartition)
	require.NoError(t, err)
	assert.Len(t, runs, MaxSyncRuns)
	assert.Equal(t, MaxSyncRuns+4, runs[0].Added, "newest first")

	none, err := store.Runs(ctx, zomatoPartition)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	kv, err := Open(ctx, BackendMemory, "")
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, kv)

	kv, err = Open(ctx, BackendSQLite, filepath.Join(t.TempDir(), "nested", "food.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, kv)
	require.NoError(t, kv.Close())

	_, err = Open(ctx, "redis", "")
	assert.ErrorIs(t, err, ErrUnknownBackend)
}
