// Package zomato fetches order history from Zomato's page-numbered
// web route. Each page is a map of order entities keyed by order id.
package zomato

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/eshaffer321/foodtracker/internal/adapters/providers"
	"github.com/eshaffer321/foodtracker/internal/domain/classifier"
	"github.com/eshaffer321/foodtracker/internal/domain/order"
)

const (
	Name        = "zomato"
	DisplayName = "Zomato"

	DefaultBaseURL  = "https://www.zomato.com"
	DefaultMaxPages = 20

	ordersPath = "/webroutes/user/orders"
)

// Platform returns the default Zomato descriptor.
func Platform() providers.Platform {
	rules := classifier.Default
	return providers.Platform{
		Name:          Name,
		DisplayName:   DisplayName,
		DataKey:       "zomatoData",
		LastSyncKey:   "lastSyncZomato",
		LegacyDataKey: "orders",
		LegacySyncKey: "lastSync",
		BaseURL:       DefaultBaseURL,
		Strategy:      providers.PageNumber,
		MaxPages:      DefaultMaxPages,
		Delay:         time.Second,
		Jitter:        time.Second,
		Rules:         &rules,
	}
}

// Provider is the Zomato adapter.
type Provider struct {
	platform providers.Platform
	client   providers.Doer
	logger   *slog.Logger
}

// NewProvider creates an adapter for the given descriptor.
func NewProvider(platform providers.Platform, client providers.Doer, logger *slog.Logger) *Provider {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		platform: platform,
		client:   client,
		logger:   logger.With(slog.String("platform", Name)),
	}
}

var _ providers.Adapter = (*Provider)(nil)

// Platform implements providers.Adapter.
func (p *Provider) Platform() providers.Platform { return p.platform }

// InitialState implements providers.Adapter.
func (p *Provider) InitialState() providers.PageState {
	return providers.PageState{Page: 1}
}

// FetchPage requests one page of orders. An empty entity map ends the
// history.
func (p *Provider) FetchPage(ctx context.Context, state providers.PageState) (*providers.Page, error) {
	page := state.Page
	if page < 1 {
		page = 1
	}

	endpoint := strings.TrimRight(p.platform.BaseURL, "/") + ordersPath + "?" + url.Values{"page": {strconv.Itoa(page)}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	var body response
	if err := providers.GetJSON(p.client, req, p.platform, &body); err != nil {
		return nil, err
	}

	records, skipped := body.orders()
	if skipped > 0 {
		p.logger.Warn("skipped unreadable order records", "page", page, "skipped", skipped)
	}
	p.logger.Debug("fetched page", "page", page, "records", len(records))

	out := make([]providers.RawOrder, len(records))
	for i, r := range records {
		out[i] = r
	}
	return &providers.Page{
		Records: out,
		Next:    providers.PageState{Page: page + 1},
		More:    len(records) > 0,
	}, nil
}

// response is the subset of the web route payload we read.
type response struct {
	Entities *struct {
		Order map[string]json.RawMessage `json:"ORDER"`
	} `json:"entities"`
}

// orders decodes the entity map values ordered by numeric key. Non-numeric
// keys sort after, lexically. A missing map yields no orders; entries that
// do not decode are counted in skipped.
func (r response) orders() (out []*RawOrder, skipped int) {
	if r.Entities == nil || len(r.Entities.Order) == 0 {
		return nil, 0
	}
	decoded := make(map[string]*RawOrder, len(r.Entities.Order))
	keys := make([]string, 0, len(r.Entities.Order))
	for k, raw := range r.Entities.Order {
		o, ok := providers.DecodeRecord[RawOrder](raw)
		if !ok {
			if !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
				skipped++
			}
			continue
		}
		decoded[k] = o
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, aErr := strconv.ParseUint(keys[i], 10, 64)
		b, bErr := strconv.ParseUint(keys[j], 10, 64)
		switch {
		case aErr == nil && bErr == nil:
			return a < b
		case aErr == nil:
			return true
		case bErr == nil:
			return false
		default:
			return keys[i] < keys[j]
		}
	})

	out = make([]*RawOrder, len(keys))
	for i, k := range keys {
		o := decoded[k]
		if o.OrderID == "" {
			o.OrderID = order.FlexString(k)
		}
		out[i] = o
	}
	return out, skipped
}
