// Package storage persists each platform's order partition, last-sync
// timestamp and sync history in a key-value backend (SQLite, Pebble or
// memory).
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/eshaffer321/foodtracker/internal/domain/order"
)

// Open creates the backend named by backend. path is the SQLite file or the
// Pebble directory and is ignored for memory.
func Open(ctx context.Context, backend, path string) (KV, error) {
	switch backend {
	case BackendSQLite, "":
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create data dir: %w", err)
			}
		}
		return NewSQLite(ctx, path)
	case BackendPebble:
		return NewPebble(path)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, backend)
	}
}

// OrderStore reads and writes platform partitions on top of a KV.
type OrderStore struct {
	kv     KV
	logger *slog.Logger
}

// NewOrderStore wraps kv.
func NewOrderStore(kv KV) *OrderStore {
	return &OrderStore{kv: kv, logger: slog.Default()}
}

// WithLogger sets the logger used for storage warnings.
func (s *OrderStore) WithLogger(logger *slog.Logger) *OrderStore {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Close closes the underlying backend.
func (s *OrderStore) Close() error {
	return s.kv.Close()
}

// Orders returns the stored history for a partition. If the partition is
// empty and a legacy key holds data, the legacy orders are copied into the
// partition first.
func (s *OrderStore) Orders(ctx context.Context, p Partition) ([]order.Order, error) {
	orders, found, err := s.readOrders(ctx, p.DataKey)
	if err != nil {
		return nil, err
	}
	if (found && len(orders) > 0) || p.LegacyDataKey == "" {
		return orders, nil
	}

	legacy, legacyFound, err := s.readOrders(ctx, p.LegacyDataKey)
	if err != nil {
		return nil, err
	}
	if !legacyFound || len(legacy) == 0 {
		return orders, nil
	}

	if err := s.SaveOrders(ctx, p, legacy); err != nil {
		return nil, fmt.Errorf("migrate legacy orders: %w", err)
	}
	if _, ok, err := s.readTime(ctx, p.LastSyncKey); err == nil && !ok && p.LegacySyncKey != "" {
		if t, ok, err := s.readTime(ctx, p.LegacySyncKey); err == nil && ok {
			_ = s.SetLastSync(ctx, p, t)
		}
	}
	return legacy, nil
}

// SaveOrders replaces the partition's history.
func (s *OrderStore) SaveOrders(ctx context.Context, p Partition, orders []order.Order) error {
	if orders == nil {
		orders = []order.Order{}
	}
	data, err := json.Marshal(orders)
	if err != nil {
		return fmt.Errorf("encode orders: %w", err)
	}
	return s.kv.Set(ctx, p.DataKey, data)
}

// LastSync returns the time of the last successful sync, falling back to the
// legacy key. The bool is false when no sync has been recorded.
func (s *OrderStore) LastSync(ctx context.Context, p Partition) (time.Time, bool, error) {
	t, ok, err := s.readTime(ctx, p.LastSyncKey)
	if err != nil || ok || p.LegacySyncKey == "" {
		return t, ok, err
	}
	return s.readTime(ctx, p.LegacySyncKey)
}

// SetLastSync records t as an RFC 3339 string.
func (s *OrderStore) SetLastSync(ctx context.Context, p Partition, t time.Time) error {
	data, err := json.Marshal(t.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, p.LastSyncKey, data)
}

// RecordRun prepends run to the partition's sync history, keeping the most
// recent MaxSyncRuns entries.
func (s *OrderStore) RecordRun(ctx context.Context, p Partition, run SyncRun) error {
	runs, err := s.Runs(ctx, p)
	if err != nil {
		return err
	}
	runs = append([]SyncRun{run}, runs...)
	if len(runs) > MaxSyncRuns {
		runs = runs[:MaxSyncRuns]
	}
	data, err := json.Marshal(runs)
	if err != nil {
		return fmt.Errorf("encode sync runs: %w", err)
	}
	return s.kv.Set(ctx, runsKey(p), data)
}

// Runs returns the sync history, newest first.
func (s *OrderStore) Runs(ctx context.Context, p Partition) ([]SyncRun, error) {
	data, ok, err := s.kv.Get(ctx, runsKey(p))
	if err != nil || !ok {
		return nil, err
	}
	var runs []SyncRun
	if err := json.Unmarshal(data, &runs); err != nil {
		return nil, fmt.Errorf("decode sync runs: %w", err)
	}
	return runs, nil
}

func runsKey(p Partition) string {
	return "syncRuns:" + p.Platform
}

func (s *OrderStore) readOrders(ctx context.Context, key string) ([]order.Order, bool, error) {
	data, ok, err := s.kv.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	orders, skipped, err := order.DecodeList(data)
	if err != nil {
		return nil, true, fmt.Errorf("decode %s: %w", key, err)
	}
	if skipped > 0 {
		s.logger.Warn("dropped unreadable stored orders", "key", key, "count", skipped)
	}
	return orders, true, nil
}

// readTime accepts a JSON string in RFC 3339 or the browser's ISO form.
func (s *OrderStore) readTime(ctx context.Context, key string) (time.Time, bool, error) {
	data, ok, err := s.kv.Get(ctx, key)
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return time.Time{}, false, fmt.Errorf("decode %s: %w", key, err)
	}
	t, err := time.Parse(time.RFC3339Nano, text)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse %s: %w", key, err)
	}
	return t, true, nil
}
