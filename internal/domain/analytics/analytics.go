// Package analytics computes spending and ordering patterns over normalized
// orders: totals, a chronological monthly series, a restaurant ranking, a
// time-of-day histogram and the most frequently ordered dishes.
//
// Input orders must already be date-filtered and normalized; records with an
// unparsable date never reach this package.
package analytics

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/foodtracker/internal/domain/normalizer"
)

const (
	// LeaderboardSize is the length of the top restaurants list.
	LeaderboardSize = 10
	// ChartSize is the number of restaurants shown in the spend chart.
	ChartSize = 5
	// FavoriteDishCount is the number of dishes kept in FavoriteDishes.
	FavoriteDishCount = 5

	monthLayout = "Jan 2006"
)

// Report is the full set of aggregates for one platform and range.
type Report struct {
	TotalSpent     float64           `json:"total_spent"`
	OrderCount     int               `json:"order_count"`
	AverageOrder   float64           `json:"average_order"`
	Monthly        []MonthTotal      `json:"monthly"`
	Restaurants    []RestaurantTotal `json:"restaurants"`
	TimeOfDay      []Bucket          `json:"time_of_day"`
	FavoriteDishes []DishCount       `json:"favorite_dishes"`
}

// MonthTotal is the spend for one calendar month, keyed like "Jan 2024".
type MonthTotal struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

// RestaurantTotal is the spend at one restaurant.
type RestaurantTotal struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// DishCount is how many times a dish appeared across orders.
type DishCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// TopRestaurants returns at most n restaurants from the ranking.
func (r *Report) TopRestaurants(n int) []RestaurantTotal {
	if n >= len(r.Restaurants) {
		return r.Restaurants
	}
	return r.Restaurants[:n]
}

// RestaurantChart is the short ranking used for the spend chart.
func (r *Report) RestaurantChart() []RestaurantTotal {
	return r.TopRestaurants(ChartSize)
}

// Summarize aggregates the given orders.
func Summarize(orders []normalizer.ParsedOrder) *Report {
	total := decimal.Zero
	monthly := newLedger()
	restaurants := newLedger()
	buckets := newBuckets()

	for _, o := range orders {
		amount := decimal.NewFromFloat(o.Amount)
		total = total.Add(amount)
		monthly.add(o.Date.Format(monthLayout), amount)
		restaurants.add(o.Restaurant(), amount)
		buckets.count(o.Date)
	}

	report := &Report{
		TotalSpent:     total.InexactFloat64(),
		OrderCount:     len(orders),
		Monthly:        monthlySeries(monthly),
		Restaurants:    restaurantRanking(restaurants),
		TimeOfDay:      buckets,
		FavoriteDishes: FavoriteDishes(orders, FavoriteDishCount),
	}
	if report.OrderCount > 0 {
		report.AverageOrder = total.Div(decimal.NewFromInt(int64(report.OrderCount))).InexactFloat64()
	}
	return report
}

// ledger sums amounts per key and remembers first-seen key order.
type ledger struct {
	keys   []string
	totals map[string]decimal.Decimal
}

func newLedger() *ledger {
	return &ledger{totals: make(map[string]decimal.Decimal)}
}

func (l *ledger) add(key string, amount decimal.Decimal) {
	cur, ok := l.totals[key]
	if !ok {
		l.keys = append(l.keys, key)
	}
	l.totals[key] = cur.Add(amount)
}

func monthlySeries(l *ledger) []MonthTotal {
	series := make([]MonthTotal, 0, len(l.keys))
	for _, k := range l.keys {
		series = append(series, MonthTotal{Month: k, Amount: l.totals[k].InexactFloat64()})
	}
	slices.SortStableFunc(series, func(a, b MonthTotal) int {
		return monthStart(a.Month).Compare(monthStart(b.Month))
	})
	return series
}

// monthStart re-parses a month key to the first of that month.
func monthStart(key string) time.Time {
	t, err := time.Parse(monthLayout, key)
	if err != nil {
		return time.Time{}
	}
	return t
}

func restaurantRanking(l *ledger) []RestaurantTotal {
	ranking := make([]RestaurantTotal, 0, len(l.keys))
	for _, k := range l.keys {
		ranking = append(ranking, RestaurantTotal{Name: k, Amount: l.totals[k].InexactFloat64()})
	}
	slices.SortStableFunc(ranking, func(a, b RestaurantTotal) int {
		switch {
		case a.Amount > b.Amount:
			return -1
		case a.Amount < b.Amount:
			return 1
		default:
			return 0
		}
	})
	return ranking
}
