package collector

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/hjpark/finnews/app/crawler"
	"github.com/hjpark/finnews/app/database"
	"github.com/hjpark/finnews/app/snapshot"
	"github.com/hjpark/finnews/app/summary"
)

// Result reports what a single collection run did.
type Result struct {
	Date       string
	Swept      int
	Records    int
	Duplicate  bool
	Identity   string
	Summary    string
	TopStock   string
	PersistErr error
}

// DataObtained reports whether the run produced any data, which decides
// the process exit status.
func (r *Result) DataObtained() bool {
	return r.Records > 0
}

// Collector runs the collection pipeline for one date: retention sweep,
// crawl, duplicate check, snapshot persistence, and the optional
// summarize/store steps.
type Collector struct {
	accumulator *crawler.Accumulator
	articles    *crawler.ArticleFetcher
	store       *snapshot.Store
	sweeper     *snapshot.Sweeper
	allocator   *snapshot.Allocator
	fingerprint *snapshot.Fingerprint
	summarizer  *summary.Summarizer
	newsRepo    database.NewsRepository

	retentionDays int
}

// NewCollector wires the pipeline. articles and newsRepo may be nil,
// which disables article body fetching and the durable store
// respectively.
func NewCollector(accumulator *crawler.Accumulator, articles *crawler.ArticleFetcher,
	store *snapshot.Store, summarizer *summary.Summarizer, newsRepo database.NewsRepository,
	retentionDays int) *Collector {
	return &Collector{
		accumulator:   accumulator,
		articles:      articles,
		store:         store,
		sweeper:       snapshot.NewSweeper(store.Dir()),
		allocator:     snapshot.NewAllocator(store),
		fingerprint:   snapshot.NewFingerprint(store),
		summarizer:    summarizer,
		newsRepo:      newsRepo,
		retentionDays: retentionDays,
	}
}

// Run executes one collection for the date (YYYY-MM-DD). Housekeeping
// runs first; a crawl that yields nothing returns a Result with zero
// records rather than an error. Persistence failure is reported on the
// Result without undoing completed steps.
func (c *Collector) Run(ctx context.Context, date string) *Result {
	result := &Result{Date: date}

	result.Swept = c.sweeper.Sweep(c.retentionDays)
	if result.Swept > 0 {
		slog.Info("Retention sweep removed artifacts", "count", result.Swept)
	}

	records := c.accumulator.CrawlDate(ctx, date)
	result.Records = len(records)
	if len(records) == 0 {
		slog.Warn("No news data obtained", "date", date)
		return result
	}

	if c.articles != nil {
		c.fetchArticleBodies(ctx, records)
	}

	if c.fingerprint.IsDuplicateOfLatest(records, date) {
		slog.Info("Record set matches latest snapshot, skipping persistence", "date", date, "records", len(records))
		result.Duplicate = true
		return result
	}

	sequence := c.allocator.NextSequence(date)
	identity := snapshot.FormatIdentity(date, sequence)
	payload := snapshot.NewPayload(date, records)

	if err := c.store.Write(identity, payload); err != nil {
		slog.Error("Failed to persist snapshot", "identity", identity, "error", err)
		result.PersistErr = err
		return result
	}
	result.Identity = identity
	slog.Info("Snapshot persisted", "identity", identity, "records", len(records))

	c.summarizeAndStore(ctx, date, records, result)

	return result
}

func (c *Collector) fetchArticleBodies(ctx context.Context, records []crawler.Record) {
	fetched := 0
	for i := range records {
		if records[i].Link == "" {
			continue
		}
		if content := c.articles.FetchContent(ctx, records[i].Link); content != "" {
			records[i].Content = content
			fetched++
		}
	}
	slog.Info("Article bodies fetched", "fetched", fetched, "total", len(records))
}

func (c *Collector) summarizeAndStore(ctx context.Context, date string, records []crawler.Record, result *Result) {
	titles := make([]string, 0, len(records))
	for _, rec := range records {
		titles = append(titles, rec.Title)
	}

	sum := c.summarizer.Summarize(ctx, titles)
	result.Summary = sum.Summary
	result.TopStock = sum.Tickers

	if c.newsRepo == nil {
		return
	}

	content := strings.Join(titles, "\n")
	if err := c.newsRepo.InsertRunSummary(content, sum.Summary, date, sum.Tickers); err != nil {
		// Store failures never fail the run.
		slog.Warn("Failed to store run summary", "date", date, "error", err)
	}
}

// Today returns the current date in the configured local timezone,
// formatted for artifact identities.
func Today() string {
	return time.Now().Format("2006-01-02")
}
