package cfg

import (
	"cmp"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Crawl configuration
	ListingURL    string `long:"listing-url" env:"LISTING_URL" default:"https://finance.naver.com/news/mainnews.naver" description:"Paginated news listing URL"`
	DataDir       string `long:"data-dir" env:"DATA_DIR" default:"./data" description:"Directory for snapshot artifacts"`
	Date          string `long:"date" env:"COLLECT_DATE" description:"Target date (YYYY-MM-DD, defaults to today)"`
	RetentionDays int    `long:"retention-days" env:"RETENTION_DAYS" default:"5" description:"Delete snapshot artifacts older than this many days"`
	FetchTimeout  int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"10" description:"Per-request timeout in seconds"`
	PageDelayMs   int    `long:"page-delay" env:"PAGE_DELAY_MS" default:"500" description:"Delay between listing page fetches in milliseconds"`
	FetchArticles bool   `long:"fetch-articles" env:"FETCH_ARTICLES" description:"Fetch article bodies for collected records"`
	SourceFile    string `long:"source-config" env:"SOURCE_CONFIG" description:"Optional YAML file with source extraction tuning"`

	// Summarization configuration
	SummaryEndpoint string `long:"summary-endpoint" env:"SUMMARY_ENDPOINT" description:"OpenAI-compatible chat completions endpoint (summarization disabled if empty)"`
	SummaryAPIKey   string `long:"summary-api-key" env:"SUMMARY_API_KEY" description:"API key for the summarization endpoint"`
	SummaryModel    string `long:"summary-model" env:"SUMMARY_MODEL" default:"gpt-4o-mini" description:"Model name for summarization requests"`

	// Durable store configuration
	DBPath string `long:"db-path" env:"DB_PATH" description:"SQLite database path for run summaries (store disabled if empty)"`

	// Market index collection
	CollectMarket      bool `long:"market" env:"COLLECT_MARKET" description:"Also collect overseas market index data"`
	MarketBackfillDays int  `long:"market-backfill-days" env:"MARKET_BACKFILL_DAYS" default:"0" description:"Backfill this many days of historical market data"`

	// HTTP server configuration
	Serve bool   `long:"serve" env:"SERVE" description:"Run the HTTP server after collection"`
	Port  string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"Asia/Seoul" description:"Timezone for date arithmetic (e.g., Asia/Seoul, UTC)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		ListingURL:         raw.ListingURL,
		DataDir:            raw.DataDir,
		Date:               raw.Date,
		RetentionDays:      raw.RetentionDays,
		FetchTimeout:       raw.FetchTimeout,
		PageDelayMs:        raw.PageDelayMs,
		FetchArticles:      raw.FetchArticles,
		SourceFile:         raw.SourceFile,
		SummaryEndpoint:    raw.SummaryEndpoint,
		SummaryAPIKey:      raw.SummaryAPIKey,
		SummaryModel:       raw.SummaryModel,
		DBPath:             raw.DBPath,
		CollectMarket:      raw.CollectMarket,
		MarketBackfillDays: raw.MarketBackfillDays,
		Serve:              raw.Serve,
		Port:               raw.Port,
		Timezone:           raw.Timezone,
		Debug:              raw.Debug,
		Version:            GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// LoadSource reads the optional YAML source tuning file. A missing path
// yields an empty Source so built-in defaults apply.
func LoadSource(path string) (*Source, error) {
	var src Source
	if path == "" {
		return &src, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source config: %w", err)
	}

	if err := yaml.Unmarshal(data, &src); err != nil {
		return nil, fmt.Errorf("failed to parse source config: %w", err)
	}

	return &src, nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
