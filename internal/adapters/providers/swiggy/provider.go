// Package swiggy fetches order history from Swiggy's order API, which pages
// by cursor: the id of the last order of the previous response.
package swiggy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/eshaffer321/foodtracker/internal/adapters/providers"
)

const (
	Name        = "swiggy"
	DisplayName = "Swiggy"

	DefaultBaseURL  = "https://www.swiggy.com"
	DefaultMaxPages = 200

	ordersPath = "/dapi/order/all"
)

// Platform returns the default Swiggy descriptor. Swiggy lists only
// completed orders, so no classifier is attached.
func Platform() providers.Platform {
	return providers.Platform{
		Name:        Name,
		DisplayName: DisplayName,
		DataKey:     "swiggyData",
		LastSyncKey: "lastSyncSwiggy",
		BaseURL:     DefaultBaseURL,
		Strategy:    providers.Cursor,
		MaxPages:    DefaultMaxPages,
		Delay:       time.Second,
	}
}

// Provider is the Swiggy adapter.
type Provider struct {
	platform providers.Platform
	client   providers.Doer
	loc      *time.Location
	logger   *slog.Logger
}

// NewProvider creates an adapter. loc is the zone order times are rendered
// in; nil means time.Local.
func NewProvider(platform providers.Platform, client providers.Doer, loc *time.Location, logger *slog.Logger) *Provider {
	if client == nil {
		client = http.DefaultClient
	}
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		platform: platform,
		client:   client,
		loc:      loc,
		logger:   logger.With(slog.String("platform", Name)),
	}
}

var _ providers.Adapter = (*Provider)(nil)

// Platform implements providers.Adapter.
func (p *Provider) Platform() providers.Platform { return p.platform }

// InitialState implements providers.Adapter.
func (p *Provider) InitialState() providers.PageState {
	return providers.PageState{}
}

// FetchPage requests the first page when the cursor is empty, otherwise the
// page after the cursor.
func (p *Provider) FetchPage(ctx context.Context, state providers.PageState) (*providers.Page, error) {
	query := url.Values{}
	if state.Cursor == "" {
		query.Set("page", "1")
	} else {
		query.Set("order_id", state.Cursor)
	}

	endpoint := strings.TrimRight(p.platform.BaseURL, "/") + ordersPath + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	var body response
	if err := providers.GetJSON(p.client, req, p.platform, &body); err != nil {
		return nil, err
	}

	if body.Data == nil || body.Data.Orders == nil {
		p.logger.Debug("response has no orders list", "cursor", state.Cursor)
		return &providers.Page{Next: state}, nil
	}

	raw := body.Data.Orders
	records := make([]providers.RawOrder, 0, len(raw))
	skipped := 0
	for _, r := range raw {
		o, ok := providers.DecodeRecord[RawOrder](r)
		if !ok {
			if !bytes.Equal(bytes.TrimSpace(r), []byte("null")) {
				skipped++
			}
			continue
		}
		o.loc = p.loc
		records = append(records, o)
	}
	if skipped > 0 {
		p.logger.Warn("skipped unreadable order records", "cursor", state.Cursor, "skipped", skipped)
	}
	p.logger.Debug("fetched page", "cursor", state.Cursor, "records", len(records))

	// The cursor is the last record that carries an id.
	next := state
	for i := len(records) - 1; i >= 0; i-- {
		if id := records[i].ID(); id != "" {
			next = providers.PageState{Cursor: id}
			break
		}
	}
	return &providers.Page{
		Records: records,
		Next:    next,
		More:    len(records) > 0 && next.Cursor != "",
	}, nil
}

type response struct {
	Data *struct {
		Orders []json.RawMessage `json:"orders"`
	} `json:"data"`
}
