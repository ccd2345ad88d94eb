package market

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Backfill collects historical market summaries for the trailing number
// of days, writing one dated artifact per day. Days that already have
// an artifact, or that yield no trading data (weekends, holidays), are
// skipped. Returns the number of artifacts written.
func Backfill(ctx context.Context, crawler *Crawler, dir string, days int) int {
	written := 0
	today := time.Now()

	for i := days; i >= 0; i-- {
		date := today.AddDate(0, 0, -i)
		dateStr := date.Format("2006-01-02")

		path := filepath.Join(dir, fmt.Sprintf("global_point_%s.json", dateStr))
		if _, err := os.Stat(path); err == nil {
			slog.Debug("Market artifact already exists, skipping", "date", dateStr)
			continue
		}

		summary := crawler.GetHistoricalMarketSummary(ctx, date)
		if summary.TotalCount == 0 {
			slog.Debug("No market data for date", "date", dateStr)
			continue
		}

		if _, err := WriteSummary(dir, dateStr, summary); err != nil {
			slog.Warn("Failed to write market artifact", "date", dateStr, "error", err)
			continue
		}

		slog.Info("Market artifact written", "date", dateStr, "indices", summary.TotalCount)
		written++
	}

	return written
}
