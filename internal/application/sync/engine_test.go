package sync

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/eshaffer321/foodtracker/internal/adapters/providers"
	"github.com/eshaffer321/foodtracker/internal/domain/classifier"
	"github.com/eshaffer321/foodtracker/internal/domain/order"
	"github.com/eshaffer321/foodtracker/internal/infrastructure/metrics"
)

type fakeOrder struct {
	providers.Variant
	id     string
	status string
}

func (o fakeOrder) ID() string { return o.id }

func (o fakeOrder) StatusSignal() (string, bool) { return o.status, o.status != "" }

func (o fakeOrder) Normalize() order.Order {
	return order.Order{OrderID: o.id, TotalCost: order.NumberAmount(100), RestaurantName: "R"}
}

func batch(ids ...string) []providers.RawOrder {
	out := make([]providers.RawOrder, len(ids))
	for i, id := range ids {
		out[i] = fakeOrder{id: id}
	}
	return out
}

// scriptedAdapter serves pages in order; a nil entry is an empty page.
type scriptedAdapter struct {
	platform providers.Platform
	pages    [][]providers.RawOrder
	errAt    int // 1-based call that fails, 0 for never
	err      error
	calls    []providers.PageState
}

func (a *scriptedAdapter) Platform() providers.Platform { return a.platform }

func (a *scriptedAdapter) InitialState() providers.PageState { return providers.PageState{Page: 1} }

func (a *scriptedAdapter) FetchPage(_ context.Context, state providers.PageState) (*providers.Page, error) {
	a.calls = append(a.calls, state)
	n := len(a.calls)
	if a.errAt == n {
		return nil, a.err
	}
	if n > len(a.pages) {
		return &providers.Page{Next: state}, nil
	}
	records := a.pages[n-1]
	return &providers.Page{
		Records: records,
		Next:    providers.PageState{Page: state.Page + 1},
		More:    len(records) > 0,
	}, nil
}

// endlessAdapter always returns a full page of new ids.
type endlessAdapter struct {
	platform providers.Platform
	calls    int
}

func (a *endlessAdapter) Platform() providers.Platform { return a.platform }

func (a *endlessAdapter) InitialState() providers.PageState { return providers.PageState{} }

func (a *endlessAdapter) FetchPage(_ context.Context, _ providers.PageState) (*providers.Page, error) {
	a.calls++
	ids := make([]string, 10)
	for i := range ids {
		ids[i] = fmt.Sprintf("%d-%d", a.calls, i)
	}
	return &providers.Page{
		Records: batch(ids...),
		Next:    providers.PageState{Cursor: ids[len(ids)-1]},
		More:    true,
	}, nil
}

type noWait struct{}

func (noWait) Wait(ctx context.Context) error { return ctx.Err() }

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(p Progress) { m.Called(p) }

func pagePlatform(maxPages int) providers.Platform {
	rules := classifier.Default
	return providers.Platform{
		Name:        "zomato",
		DisplayName: "Zomato",
		Strategy:    providers.PageNumber,
		MaxPages:    maxPages,
		Rules:       &rules,
	}
}

func cursorPlatform(maxPages int) providers.Platform {
	return providers.Platform{
		Name:        "swiggy",
		DisplayName: "Swiggy",
		Strategy:    providers.Cursor,
		MaxPages:    maxPages,
	}
}

func TestEngine_Run_PagesUntilEmpty(t *testing.T) {
	adapter := &scriptedAdapter{
		platform: pagePlatform(20),
		pages: [][]providers.RawOrder{
			batch("1", "2"),
			batch("3"),
			nil,
		},
	}

	result, err := NewEngine(adapter, nil, nil).Run(context.Background(), Options{Pacer: noWait{}})
	require.NoError(t, err)

	assert.Equal(t, StateDone, result.State)
	assert.Nil(t, result.Err)
	assert.Equal(t, 3, result.Pages)
	assert.Equal(t, []string{"1", "2", "3"}, order.IDs(result.Orders))
	assert.Equal(t, []providers.PageState{{Page: 1}, {Page: 2}, {Page: 3}}, adapter.calls)
}

func TestEngine_Run_SafetyCeiling(t *testing.T) {
	adapter := &endlessAdapter{platform: cursorPlatform(200)}

	result, err := NewEngine(adapter, nil, nil).Run(context.Background(), Options{MaxPages: 20, Pacer: noWait{}})
	require.NoError(t, err)

	assert.Equal(t, 20, adapter.calls)
	assert.Equal(t, 20, result.Pages)
	assert.Len(t, result.Orders, 200)
	assert.Equal(t, StateDone, result.State)
}

func TestEngine_Run_PlatformCeiling(t *testing.T) {
	adapter := &endlessAdapter{platform: cursorPlatform(5)}

	result, err := NewEngine(adapter, nil, nil).Run(context.Background(), Options{Pacer: noWait{}})
	require.NoError(t, err)

	assert.Equal(t, 5, adapter.calls)
	assert.Equal(t, 5, result.Pages)
}

func TestEngine_Run_ClassificationSkipsRejectedPage(t *testing.T) {
	adapter := &scriptedAdapter{
		platform: pagePlatform(20),
		pages: [][]providers.RawOrder{
			{fakeOrder{id: "1", status: "Delivered"}, fakeOrder{id: "2", status: "cancelled"}},
			{fakeOrder{id: "3", status: "1"}, fakeOrder{id: "4", status: "unpaid"}},
			{fakeOrder{id: "5"}, fakeOrder{id: "6", status: "weird-new-status"}},
			nil,
		},
	}

	result, err := NewEngine(adapter, nil, nil).Run(context.Background(), Options{Pacer: noWait{}})
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "5", "6"}, order.IDs(result.Orders))
	assert.Equal(t, 3, result.Rejected)
	assert.Equal(t, 4, result.Pages)
}

func TestEngine_Run_StopsWhenNothingUnseen(t *testing.T) {
	adapter := &scriptedAdapter{
		platform: cursorPlatform(200),
		pages: [][]providers.RawOrder{
			batch("a", "b", "a"),
			batch("b", "a"),
			batch("c"),
		},
	}

	result, err := NewEngine(adapter, nil, nil).Run(context.Background(), Options{Pacer: noWait{}})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, order.IDs(result.Orders))
	assert.Equal(t, 2, result.Pages)
	assert.Equal(t, StateDone, result.State)
}

func TestEngine_Run_KnownIDsEndIncrementalSync(t *testing.T) {
	adapter := &scriptedAdapter{
		platform: cursorPlatform(200),
		pages: [][]providers.RawOrder{
			batch("new-1", "old-1"),
			batch("old-2", "old-3"),
			batch("older"),
		},
	}

	result, err := NewEngine(adapter, nil, nil).Run(context.Background(), Options{
		KnownIDs: []string{"old-1", "old-2", "old-3"},
		Pacer:    noWait{},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"new-1"}, order.IDs(result.Orders))
	assert.Equal(t, 2, result.Pages)
}

func TestEngine_Run_AuthFailureKeepsPartial(t *testing.T) {
	adapter := &scriptedAdapter{
		platform: cursorPlatform(200),
		pages:    [][]providers.RawOrder{batch("1", "2")},
		errAt:    2,
		err:      providers.AuthError("Swiggy"),
	}

	result, err := NewEngine(adapter, nil, nil).Run(context.Background(), Options{Pacer: noWait{}})

	require.ErrorIs(t, err, providers.ErrAuthRequired)
	require.NotNil(t, result)
	assert.Equal(t, StateFailed, result.State)
	assert.Equal(t, []string{"1", "2"}, order.IDs(result.Orders))
}

func TestEngine_Run_PageFailureIsAbsorbed(t *testing.T) {
	boom := errors.New("connection reset")
	adapter := &scriptedAdapter{
		platform: pagePlatform(20),
		pages:    [][]providers.RawOrder{batch("1")},
		errAt:    2,
		err:      boom,
	}

	result, err := NewEngine(adapter, nil, nil).Run(context.Background(), Options{Pacer: noWait{}})

	require.NoError(t, err)
	assert.Equal(t, StateFailed, result.State)
	assert.ErrorIs(t, result.Err, boom)
	assert.Equal(t, []string{"1"}, order.IDs(result.Orders))
	assert.Equal(t, 1, result.Pages)
}

type cancellingPacer struct {
	cancel context.CancelFunc
}

func (p cancellingPacer) Wait(ctx context.Context) error {
	p.cancel()
	return ctx.Err()
}

func TestEngine_Run_CancellationKeepsPartial(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	adapter := &endlessAdapter{platform: cursorPlatform(200)}
	result, err := NewEngine(adapter, nil, nil).Run(ctx, Options{Pacer: cancellingPacer{cancel: cancel}})

	require.NoError(t, err)
	assert.Equal(t, StateFailed, result.State)
	assert.ErrorIs(t, result.Err, context.Canceled)
	assert.Len(t, result.Orders, 10)
	assert.Equal(t, 1, adapter.calls)
}

func TestEngine_Run_ProgressMessages(t *testing.T) {
	t.Run("page number", func(t *testing.T) {
		n := &mockNotifier{}
		n.On("Notify", Progress{Platform: "zomato", Message: "Fetched Page 1 (2 orders so far)...", Page: 1, Count: 2, Percent: 5}).Once()
		n.On("Notify", Progress{Platform: "zomato", Message: "Fetched Page 2 (2 orders so far)...", Page: 2, Count: 2, Percent: 100}).Once()

		adapter := &scriptedAdapter{platform: pagePlatform(20), pages: [][]providers.RawOrder{batch("1", "2"), nil}}
		_, err := NewEngine(adapter, nil, nil).Run(context.Background(), Options{Notifier: n, Pacer: noWait{}})

		require.NoError(t, err)
		n.AssertExpectations(t)
	})

	t.Run("cursor", func(t *testing.T) {
		var messages []string
		notifier := NotifierFunc(func(p Progress) { messages = append(messages, p.Message) })

		adapter := &scriptedAdapter{platform: cursorPlatform(200), pages: [][]providers.RawOrder{batch("1", "2", "3"), nil}}
		_, err := NewEngine(adapter, nil, nil).Run(context.Background(), Options{Notifier: notifier, Pacer: noWait{}})

		require.NoError(t, err)
		assert.Equal(t, []string{"Fetched 3 orders...", "Fetched 3 orders..."}, messages)
	})
}

func TestEngine_Run_RecordsSpansAndMetrics(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	reg := metrics.NewRegistry()

	adapter := &scriptedAdapter{platform: pagePlatform(20), pages: [][]providers.RawOrder{batch("1"), nil}}
	engine := NewEngine(adapter, reg, nil).WithTracer(tp.Tracer("test"))

	_, err := engine.Run(context.Background(), Options{Pacer: noWait{}})
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "Adapter.FetchPage", spans[0].Name())
}

func TestDelayPacer_HonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := DelayPacer{Base: 0, Jitter: 0}.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	err = DelayPacer{}.Wait(context.Background())
	assert.NoError(t, err)
}
