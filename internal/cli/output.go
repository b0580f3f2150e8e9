package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/eshaffer321/foodtracker/internal/application/service"
	"github.com/eshaffer321/foodtracker/internal/domain/analytics"
)

const rule = 60

// PrintHeader prints the command header.
func PrintHeader(w io.Writer, command, platform string) {
	fmt.Fprintf(w, "foodtracker %s: %s\n", command, platform)
}

// PrintSyncSummary prints the result of a sync session.
func PrintSyncSummary(w io.Writer, outcome *service.SyncOutcome) {
	fmt.Fprintln(w, strings.Repeat("-", rule))
	fmt.Fprintf(w, "Summary: Collected=%d Added=%d Stored=%d Pages=%d State=%s\n",
		outcome.Count,
		outcome.Added,
		outcome.Total,
		outcome.Pages,
		outcome.State)

	if outcome.Err != nil {
		fmt.Fprintf(w, "\nStopped early: %v\n", outcome.Err)
	}
	if outcome.Added > 0 {
		fmt.Fprintf(w, "\nSynced %d new %s orders.\n", outcome.Added, outcome.DisplayName)
	} else {
		fmt.Fprintf(w, "\nNo new %s orders.\n", outcome.DisplayName)
	}
}

// PrintReport prints an analytics report as text.
func PrintReport(w io.Writer, pr *service.PlatformReport, loc *time.Location) {
	r := pr.Report

	fmt.Fprintf(w, "%s | %s\n", pr.DisplayName, describeRange(pr.Range, loc))
	if pr.LastSync != nil {
		fmt.Fprintf(w, "Last synced: %s\n", pr.LastSync.In(loc).Format("Jan 2, 2006 3:04 PM"))
	} else {
		fmt.Fprintln(w, "Last synced: never")
	}
	fmt.Fprintln(w, strings.Repeat("-", rule))

	fmt.Fprintf(w, "Total spent:   %s\n", formatMoney(r.TotalSpent))
	fmt.Fprintf(w, "Orders:        %d\n", r.OrderCount)
	fmt.Fprintf(w, "Average order: %s\n", formatMoney(r.AverageOrder))
	if pr.Invalid > 0 {
		fmt.Fprintf(w, "Skipped %d orders with unreadable dates\n", pr.Invalid)
	}
	if r.OrderCount == 0 {
		fmt.Fprintln(w, "\nNo orders in this range.")
		return
	}

	fmt.Fprintln(w, "\nMonthly:")
	for _, m := range r.Monthly {
		fmt.Fprintf(w, "  %-10s %12s\n", m.Month, formatMoney(m.Amount))
	}

	fmt.Fprintln(w, "\nTop restaurants:")
	for i, rest := range r.TopRestaurants(analytics.LeaderboardSize) {
		fmt.Fprintf(w, "  %2d. %-32s %12s\n", i+1, truncate(rest.Name, 32), formatMoney(rest.Amount))
	}

	fmt.Fprintln(w, "\nTime of day:")
	for _, b := range r.TimeOfDay {
		fmt.Fprintf(w, "  %-20s %d\n", b.Label, b.Count)
	}

	if len(r.FavoriteDishes) > 0 {
		fmt.Fprintln(w, "\nFavorite dishes:")
		for _, d := range r.FavoriteDishes {
			fmt.Fprintf(w, "  %-32s x%d\n", truncate(d.Name, 32), d.Count)
		}
	}
}

// PrintReportJSON writes the report as indented JSON.
func PrintReportJSON(w io.Writer, pr *service.PlatformReport) error {
	out := struct {
		Platform     string            `json:"platform"`
		DisplayName  string            `json:"display_name"`
		Start        *time.Time        `json:"start,omitempty"`
		End          *time.Time        `json:"end,omitempty"`
		LastSync     *time.Time        `json:"last_sync,omitempty"`
		StoredOrders int               `json:"stored_orders"`
		InvalidDates int               `json:"invalid_dates"`
		Summary      *analytics.Report `json:"summary"`
	}{
		Platform:     pr.Platform,
		DisplayName:  pr.DisplayName,
		LastSync:     pr.LastSync,
		StoredOrders: pr.Stored,
		InvalidDates: pr.Invalid,
		Summary:      pr.Report,
	}
	if !pr.Range.Start.IsZero() {
		out.Start = &pr.Range.Start
	}
	if !pr.Range.End.IsZero() {
		out.End = &pr.Range.End
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func describeRange(r analytics.Range, loc *time.Location) string {
	switch {
	case r.IsAllTime():
		return "all time"
	case r.End.IsZero():
		return "from " + r.Start.In(loc).Format(service.DayLayout)
	case r.Start.IsZero():
		return "through " + r.End.In(loc).Format(service.DayLayout)
	default:
		return r.Start.In(loc).Format(service.DayLayout) + " to " + r.End.In(loc).Format(service.DayLayout)
	}
}

// formatMoney renders an amount in rupees with thousands separators.
func formatMoney(amount float64) string {
	s := fmt.Sprintf("%.2f", amount)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	whole, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}

	out := "₹" + b.String() + "." + frac
	if neg {
		out = "-" + out
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
