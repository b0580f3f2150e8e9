package analytics

import "time"

// Bucket counts orders placed within a part of the day.
type Bucket struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Part-of-day names, in report order.
const (
	Morning   = "Morning"
	Afternoon = "Afternoon"
	Evening   = "Evening"
	LateNight = "Late Night"
)

type timeOfDay []Bucket

func newBuckets() timeOfDay {
	return timeOfDay{
		{Name: Morning, Label: "Morning (6-12)"},
		{Name: Afternoon, Label: "Afternoon (12-17)"},
		{Name: Evening, Label: "Evening (17-21)"},
		{Name: LateNight, Label: "Late Night (21-6)"},
	}
}

func (b timeOfDay) count(t time.Time) {
	switch PartOfDay(t.Hour()) {
	case Morning:
		b[0].Count++
	case Afternoon:
		b[1].Count++
	case Evening:
		b[2].Count++
	default:
		b[3].Count++
	}
}

// PartOfDay maps a local hour to its bucket name. Late Night wraps midnight:
// [21,24) and [0,6).
func PartOfDay(hour int) string {
	switch {
	case hour >= 6 && hour < 12:
		return Morning
	case hour >= 12 && hour < 17:
		return Afternoon
	case hour >= 17 && hour < 21:
		return Evening
	default:
		return LateNight
	}
}
