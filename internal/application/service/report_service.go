package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/eshaffer321/foodtracker/internal/adapters/providers"
	"github.com/eshaffer321/foodtracker/internal/domain/analytics"
	"github.com/eshaffer321/foodtracker/internal/domain/history"
	"github.com/eshaffer321/foodtracker/internal/domain/normalizer"
	"github.com/eshaffer321/foodtracker/internal/domain/order"
	"github.com/eshaffer321/foodtracker/internal/infrastructure/storage"
)

// ErrInvalidRange is returned for a quick range or date bound that cannot
// be parsed.
var ErrInvalidRange = errors.New("invalid date range")

// DayLayout is the date format accepted for range bounds.
const DayLayout = "2006-01-02"

// QuickRanges are the accepted quick filter values besides "all".
var QuickRanges = []int{7, 30, 90, 365}

// PlatformReport is the analytics view for one platform and range.
type PlatformReport struct {
	Platform    string
	DisplayName string
	Range       analytics.Range
	Report      *analytics.Report
	LastSync    *time.Time
	// Stored is the number of orders in the partition after repair.
	Stored int
	// Invalid counts orders left out because their date did not parse.
	Invalid int
	// Repaired is the number of duplicate orders removed on this load.
	Repaired int
}

// PlatformSummary is one row of the platform list.
type PlatformSummary struct {
	Name        string
	DisplayName string
	Strategy    providers.Strategy
	MaxPages    int
	Orders      int
	LastSync    *time.Time
}

// ReportService reads stored partitions and computes analytics over them.
type ReportService struct {
	registry *providers.Registry
	store    *storage.OrderStore
	loc      *time.Location
	logger   *slog.Logger
}

// NewReportService creates a report service. Dates without a zone are read
// in loc; nil means local time.
func NewReportService(registry *providers.Registry, store *storage.OrderStore, loc *time.Location, logger *slog.Logger) *ReportService {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{
		registry: registry,
		store:    store,
		loc:      loc,
		logger:   logger,
	}
}

// Location is the zone used for dates and ranges.
func (s *ReportService) Location() *time.Location {
	return s.loc
}

// Orders loads a platform's history, migrating legacy data and removing
// duplicates. The cleaned history is written back only when it changed.
func (s *ReportService) Orders(ctx context.Context, platform string) ([]order.Order, error) {
	orders, _, err := s.load(ctx, platform)
	return orders, err
}

func (s *ReportService) load(ctx context.Context, platform string) ([]order.Order, int, error) {
	p, err := s.registry.Platform(platform)
	if err != nil {
		return nil, 0, err
	}
	part := PartitionFor(p)

	stored, err := s.store.Orders(ctx, part)
	if err != nil {
		return nil, 0, fmt.Errorf("load %s orders: %w", p.DisplayName, err)
	}

	cleaned, changed := history.Dedupe(stored)
	removed := len(stored) - len(cleaned)
	if changed {
		if err := s.store.SaveOrders(ctx, part, cleaned); err != nil {
			return nil, 0, fmt.Errorf("save repaired %s orders: %w", p.DisplayName, err)
		}
		s.logger.Info("removed duplicate orders", "platform", p.Name, "removed", removed)
	}
	return cleaned, removed, nil
}

// Report computes analytics for platform over r.
func (s *ReportService) Report(ctx context.Context, platform string, r analytics.Range) (*PlatformReport, error) {
	p, err := s.registry.Platform(platform)
	if err != nil {
		return nil, err
	}

	orders, removed, err := s.load(ctx, platform)
	if err != nil {
		return nil, err
	}

	parsed, invalid := normalizer.Orders(orders, s.loc)
	if invalid > 0 {
		s.logger.Debug("orders with unparsable dates left out", "platform", p.Name, "count", invalid)
	}

	out := &PlatformReport{
		Platform:    p.Name,
		DisplayName: p.DisplayName,
		Range:       r,
		Report:      analytics.Summarize(r.Filter(parsed)),
		Stored:      len(orders),
		Invalid:     invalid,
		Repaired:    removed,
	}

	last, ok, err := s.store.LastSync(ctx, PartitionFor(p))
	if err != nil {
		s.logger.Warn("failed to read last sync", "platform", p.Name, "error", err)
	} else if ok {
		out.LastSync = &last
	}
	return out, nil
}

// Platforms lists the registered platforms with their stored order count
// and last sync time.
func (s *ReportService) Platforms(ctx context.Context) ([]PlatformSummary, error) {
	var out []PlatformSummary
	for _, p := range s.registry.Platforms() {
		part := PartitionFor(p)
		orders, err := s.store.Orders(ctx, part)
		if err != nil {
			return nil, fmt.Errorf("load %s orders: %w", p.DisplayName, err)
		}
		summary := PlatformSummary{
			Name:        p.Name,
			DisplayName: p.DisplayName,
			Strategy:    p.Strategy,
			MaxPages:    p.MaxPages,
			Orders:      len(orders),
		}
		if last, ok, err := s.store.LastSync(ctx, part); err == nil && ok {
			summary.LastSync = &last
		}
		out = append(out, summary)
	}
	return out, nil
}

// ParseRange builds a range from either a quick filter ("all", "7", "30",
// "90", "365") or explicit YYYY-MM-DD bounds. Explicit bounds win when both
// are given. Everything empty means all time.
func ParseRange(quick, start, end string, now time.Time, loc *time.Location) (analytics.Range, error) {
	if loc == nil {
		loc = time.Local
	}
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)

	if start != "" || end != "" {
		var from, to *time.Time
		if start != "" {
			t, err := time.ParseInLocation(DayLayout, start, loc)
			if err != nil {
				return analytics.Range{}, fmt.Errorf("%w: start %q", ErrInvalidRange, start)
			}
			from = &t
		}
		if end != "" {
			t, err := time.ParseInLocation(DayLayout, end, loc)
			if err != nil {
				return analytics.Range{}, fmt.Errorf("%w: end %q", ErrInvalidRange, end)
			}
			to = &t
		}
		if from != nil && to != nil && to.Before(*from) {
			return analytics.Range{}, fmt.Errorf("%w: end %s is before start %s", ErrInvalidRange, end, start)
		}
		return analytics.NewRange(from, to, loc), nil
	}

	switch q := strings.ToLower(strings.TrimSpace(quick)); q {
	case "", "all":
		return analytics.AllTime, nil
	default:
		days, err := strconv.Atoi(strings.TrimSuffix(q, "d"))
		if err != nil {
			return analytics.Range{}, fmt.Errorf("%w: %q", ErrInvalidRange, quick)
		}
		for _, allowed := range QuickRanges {
			if days == allowed {
				return analytics.LastDays(now, days, loc), nil
			}
		}
		return analytics.Range{}, fmt.Errorf("%w: %q", ErrInvalidRange, quick)
	}
}
