package cli

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/eshaffer321/foodtracker/internal/application/service"
)

// RunSync runs one sync session and prints its summary to w. A partial
// outcome is printed even when the session ends on an expired login.
func RunSync(ctx context.Context, flags SyncFlags, w io.Writer) error {
	app, err := NewApp(ctx, flags.Load(), "sync", flags.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	return syncWith(ctx, app, flags, w)
}

func syncWith(ctx context.Context, app *App, flags SyncFlags, w io.Writer) error {
	p, err := app.Registry.Platform(flags.Platform)
	if err != nil {
		return err
	}
	PrintHeader(w, "sync", p.DisplayName)

	start := time.Now()
	outcome, err := app.Sync.SyncWith(ctx, flags.ToSyncRequest())
	if outcome != nil {
		PrintSyncSummary(w, outcome)
	}
	if err != nil {
		app.Logger.Error("sync failed", slog.String("platform", p.Name), slog.Any("error", err))
		return err
	}

	app.Logger.Info("sync finished",
		slog.String("platform", p.Name),
		slog.Int("added", outcome.Added),
		slog.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// RunReport prints the analytics report for one platform and range.
func RunReport(ctx context.Context, flags ReportFlags, w io.Writer) error {
	app, err := NewApp(ctx, flags.Load(), "report", flags.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	return reportWith(ctx, app, flags, w)
}

func reportWith(ctx context.Context, app *App, flags ReportFlags, w io.Writer) error {
	r, err := service.ParseRange(flags.Range, flags.Start, flags.End, time.Now(), app.Location)
	if err != nil {
		return err
	}

	pr, err := app.Reports.Report(ctx, flags.Platform, r)
	if err != nil {
		return err
	}

	if flags.JSON {
		return PrintReportJSON(w, pr)
	}
	PrintReport(w, pr, app.Location)
	return nil
}
