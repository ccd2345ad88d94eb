package crawler

import (
	"context"
	"log/slog"
	"time"
)

// Accumulator drives the page counter and extractor across every
// listing page for a date, deduplicating records by title within the
// run. Pages are fetched sequentially with a fixed pacing delay to
// bound the request rate.
type Accumulator struct {
	client    *Client
	counter   *PageCounter
	extractor *Extractor
	pageDelay time.Duration
}

func NewAccumulator(client *Client, counter *PageCounter, extractor *Extractor, pageDelay time.Duration) *Accumulator {
	return &Accumulator{
		client:    client,
		counter:   counter,
		extractor: extractor,
		pageDelay: pageDelay,
	}
}

// CrawlDate collects the deduplicated record set for a date, ordered by
// first-seen page then discovery order. A failed page is logged and
// skipped; if every page fails the result is empty, signaling "no data
// available" rather than an error.
func (a *Accumulator) CrawlDate(ctx context.Context, date string) []Record {
	count := a.counter.CountPages(ctx, date)
	pages := count.Pages
	if pages < 1 {
		// Zero means inference failed: assume exactly one page.
		pages = 1
	}

	slog.Info("Starting crawl", "date", date, "pages", pages, "confident", count.Confident)

	var collected []Record
	seen := make(map[string]bool)

	for page := 1; page <= pages; page++ {
		if page > 1 {
			select {
			case <-ctx.Done():
				slog.Warn("Crawl cancelled", "date", date, "page", page)
				return collected
			case <-time.After(a.pageDelay):
			}
		}

		pageURL := a.client.ListingPageURL(date, page)
		doc, err := a.client.FetchDocument(ctx, pageURL)
		if err != nil {
			slog.Warn("Failed to fetch listing page, skipping", "date", date, "page", page, "error", err)
			continue
		}

		added := 0
		for _, rec := range a.extractor.Extract(doc, a.client.BaseURL()) {
			if seen[rec.Title] {
				continue
			}
			seen[rec.Title] = true
			rec.Page = page
			collected = append(collected, rec)
			added++
		}

		slog.Debug("Page collected", "date", date, "page", page, "new", added)
	}

	slog.Info("Crawl finished", "date", date, "records", len(collected))

	return collected
}
