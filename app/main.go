package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hjpark/finnews/app/api"
	"github.com/hjpark/finnews/app/cfg"
	"github.com/hjpark/finnews/app/collector"
	"github.com/hjpark/finnews/app/crawler"
	"github.com/hjpark/finnews/app/database"
	"github.com/hjpark/finnews/app/market"
	"github.com/hjpark/finnews/app/snapshot"
	"github.com/hjpark/finnews/app/summary"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	if appCfg.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	slog.Info("Starting finnews", "version", appCfg.Version)

	source, err := cfg.LoadSource(appCfg.SourceFile)
	if err != nil {
		slog.Error("Failed to load source configuration", "error", err)
		os.Exit(1)
	}

	fetchTimeout := time.Duration(appCfg.FetchTimeout) * time.Second

	client, err := crawler.NewClient(appCfg.ListingURL, fetchTimeout, source)
	if err != nil {
		slog.Error("Invalid crawl configuration", "error", err)
		os.Exit(1)
	}

	counter := crawler.NewPageCounter(client, source.NavSelector)
	extractor := crawler.NewExtractor(source.ListSelector, source.NavSelector)
	accumulator := crawler.NewAccumulator(client, counter, extractor,
		time.Duration(appCfg.PageDelayMs)*time.Millisecond)

	var articles *crawler.ArticleFetcher
	if appCfg.FetchArticles {
		articles = crawler.NewArticleFetcher(client)
	}

	var newsRepo database.NewsRepository
	if appCfg.DBPath != "" {
		db, err := database.NewConnection(appCfg.DBPath)
		if err != nil {
			slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
			os.Exit(1)
		}
		defer db.Close()
		newsRepo = database.NewNewsRepository(db)
		slog.Info("Durable store enabled", "path", appCfg.DBPath)
	}

	summarizer := summary.New(summary.Config{
		Endpoint: appCfg.SummaryEndpoint,
		APIKey:   appCfg.SummaryAPIKey,
		Model:    appCfg.SummaryModel,
	})
	if !summarizer.Enabled() {
		slog.Info("Summarization endpoint not configured, using naive fallback")
	}

	store := snapshot.NewStore(appCfg.DataDir)
	runner := collector.NewCollector(accumulator, articles, store, summarizer, newsRepo, appCfg.RetentionDays)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	marketCrawler := market.NewCrawler("", fetchTimeout)

	if appCfg.MarketBackfillDays > 0 {
		written := market.Backfill(ctx, marketCrawler, appCfg.DataDir, appCfg.MarketBackfillDays)
		slog.Info("Market backfill finished", "written", written)
	}

	if appCfg.CollectMarket {
		collectMarket(ctx, marketCrawler, appCfg.DataDir)
	}

	date := appCfg.Date
	if date == "" {
		date = collector.Today()
	}

	result := runner.Run(ctx, date)
	logResult(result)

	if appCfg.Serve {
		serve(ctx, cancel, store, marketCrawler, newsRepo, appCfg)
		return
	}

	if !result.DataObtained() {
		os.Exit(1)
	}
}

func collectMarket(ctx context.Context, marketCrawler *market.Crawler, dataDir string) {
	summary := marketCrawler.GetMarketSummary(ctx)
	if summary.TotalCount == 0 {
		slog.Warn("Market data collection yielded nothing")
		return
	}

	path, err := market.WriteSummary(dataDir, collector.Today(), summary)
	if err != nil {
		slog.Error("Failed to write market summary", "error", err)
		return
	}
	slog.Info("Market summary written", "file", path, "indices", summary.TotalCount)
}

func logResult(result *collector.Result) {
	switch {
	case result.PersistErr != nil:
		slog.Error("Run finished with persistence failure", "date", result.Date, "records", result.Records, "error", result.PersistErr)
	case result.Duplicate:
		slog.Info("Run finished, data unchanged since last snapshot", "date", result.Date, "records", result.Records)
	case result.Identity != "":
		slog.Info("Run finished", "date", result.Date, "identity", result.Identity, "records", result.Records)
	default:
		slog.Warn("Run finished without data", "date", result.Date)
	}
}

func serve(ctx context.Context, cancel context.CancelFunc, store *snapshot.Store,
	marketCrawler *market.Crawler, newsRepo database.NewsRepository, appCfg *cfg.Cfg) {
	handler := api.NewHandler(store, marketCrawler, newsRepo, appCfg.Version)
	router := api.NewServer(handler)

	server := &http.Server{
		Addr:    ":" + appCfg.Port,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server failed", "error", err)
			cancel()
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		slog.Info("Shutdown signal received")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}

	slog.Info("Server stopped")
}
