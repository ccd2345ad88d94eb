package market

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
)

var indexSymbols = map[string]string{
	// US
	"dow":    "^DJI",
	"sp500":  "^GSPC",
	"nasdaq": "^IXIC",

	// Asia
	"nikkei":   "^N225",
	"hangseng": "^HSI",
	"shanghai": "000001.SS",
	"shenzhen": "399001.SZ",

	// Europe
	"stoxx50": "^STOXX50E",
	"ftse":    "^FTSE",
	"dax":     "^GDAXI",
}

var indexNames = map[string]string{
	"dow":      "다우존스",
	"sp500":    "S&P 500",
	"nasdaq":   "나스닥",
	"nikkei":   "닛케이225",
	"hangseng": "항셍",
	"shanghai": "상해종합",
	"shenzhen": "심천성분",
	"stoxx50":  "STOXX 50",
	"ftse":     "FTSE 100",
	"dax":      "DAX",
}

var regionSymbols = map[string][]string{
	"us":     {"dow", "sp500", "nasdaq"},
	"asia":   {"nikkei", "hangseng", "shanghai", "shenzhen"},
	"europe": {"stoxx50", "ftse", "dax"},
}

// Regions returns the supported region filters.
func Regions() []string {
	return []string{"us", "asia", "europe"}
}

// ValidRegion reports whether a region filter is supported.
func ValidRegion(region string) bool {
	_, ok := regionSymbols[region]
	return ok
}

const defaultEndpoint = "https://query1.finance.yahoo.com"

// Pacing between per-symbol requests during historical collection.
const historicalPacing = 100 * time.Millisecond

// Crawler fetches overseas index quotes from the Yahoo Finance chart
// API. Per-symbol failures are logged and skipped, never fatal.
type Crawler struct {
	endpoint   string
	httpClient *http.Client
	userAgent  string
}

func NewCrawler(endpoint string, timeout time.Duration) *Crawler {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &Crawler{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				PreviousClose      float64 `json:"previousClose"`
				Currency           string  `json:"currency"`
				MarketState        string  `json:"marketState"`
				RegularMarketTime  int64   `json:"regularMarketTime"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open  []*float64 `json:"open"`
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
	} `json:"chart"`
}

func (c *Crawler) fetchChart(ctx context.Context, symbol, query string) (*chartResponse, error) {
	url := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.endpoint, symbol, query)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	var parsed chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode chart response: %w", err)
	}
	if len(parsed.Chart.Result) == 0 {
		return nil, fmt.Errorf("empty chart result for %s", symbol)
	}

	return &parsed, nil
}

// GetIndexData returns the current quote for one index key, or nil when
// the key is unknown or the fetch fails.
func (c *Crawler) GetIndexData(ctx context.Context, key string) *Index {
	symbol, ok := indexSymbols[key]
	if !ok {
		slog.Error("Unknown index key", "key", key)
		return nil
	}

	parsed, err := c.fetchChart(ctx, symbol, "interval=1d&range=1d")
	if err != nil {
		slog.Warn("Failed to fetch index", "key", key, "error", err)
		return nil
	}

	meta := parsed.Chart.Result[0].Meta
	change := meta.RegularMarketPrice - meta.PreviousClose
	changePercent := 0.0
	if meta.PreviousClose != 0 {
		changePercent = change / meta.PreviousClose * 100
	}

	currency := meta.Currency
	if currency == "" {
		currency = "USD"
	}
	state := meta.MarketState
	if state == "" {
		state = "UNKNOWN"
	}

	return &Index{
		Symbol:        key,
		Name:          indexName(key),
		CurrentPrice:  round2(meta.RegularMarketPrice),
		PreviousClose: round2(meta.PreviousClose),
		Change:        round2(change),
		ChangePercent: round2(changePercent),
		Currency:      currency,
		MarketState:   state,
		Timestamp:     time.Unix(meta.RegularMarketTime, 0).Format(time.RFC3339),
	}
}

// GetAllIndices returns quotes for a region, or for every known index
// when region is empty or unknown.
func (c *Crawler) GetAllIndices(ctx context.Context, region string) []Index {
	keys, ok := regionSymbols[region]
	if !ok {
		keys = []string{"dow", "sp500", "nasdaq", "nikkei", "hangseng", "shanghai", "shenzhen", "stoxx50", "ftse", "dax"}
	}

	var indices []Index
	for _, key := range keys {
		if data := c.GetIndexData(ctx, key); data != nil {
			indices = append(indices, *data)
		}
	}
	return indices
}

// GetMarketSummary returns current quotes grouped by region.
func (c *Crawler) GetMarketSummary(ctx context.Context) *Summary {
	us := c.GetAllIndices(ctx, "us")
	asia := c.GetAllIndices(ctx, "asia")
	europe := c.GetAllIndices(ctx, "europe")

	return &Summary{
		UpdateTime:   time.Now().Format(time.RFC3339),
		USMarket:     us,
		AsiaMarket:   asia,
		EuropeMarket: europe,
		TotalCount:   len(us) + len(asia) + len(europe),
	}
}

// GetHistoricalData returns the closing quote for one index key on a
// specific date, or nil when no trading data exists (weekends,
// holidays) or the fetch fails.
func (c *Crawler) GetHistoricalData(ctx context.Context, key string, date time.Time) *Index {
	symbol, ok := indexSymbols[key]
	if !ok {
		slog.Error("Unknown index key", "key", key)
		return nil
	}

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	query := fmt.Sprintf("period1=%d&period2=%d&interval=1d", day.Unix(), day.AddDate(0, 0, 1).Unix())

	parsed, err := c.fetchChart(ctx, symbol, query)
	if err != nil {
		slog.Warn("Failed to fetch historical index", "key", key, "date", day.Format("2006-01-02"), "error", err)
		return nil
	}

	result := parsed.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 || len(result.Timestamp) == 0 {
		slog.Debug("No trading data", "key", key, "date", day.Format("2006-01-02"))
		return nil
	}

	quote := result.Indicators.Quote[0]
	if len(quote.Close) == 0 || quote.Close[0] == nil {
		slog.Debug("No closing data", "key", key, "date", day.Format("2006-01-02"))
		return nil
	}

	closePrice := *quote.Close[0]
	openPrice := closePrice
	if len(quote.Open) > 0 && quote.Open[0] != nil {
		openPrice = *quote.Open[0]
	}

	previousClose := result.Meta.PreviousClose
	if previousClose == 0 {
		previousClose = openPrice
	}

	change := closePrice - previousClose
	changePercent := 0.0
	if previousClose != 0 {
		changePercent = change / previousClose * 100
	}

	currency := result.Meta.Currency
	if currency == "" {
		currency = "USD"
	}

	return &Index{
		Symbol:        key,
		Name:          indexName(key),
		CurrentPrice:  round2(closePrice),
		PreviousClose: round2(previousClose),
		Change:        round2(change),
		ChangePercent: round2(changePercent),
		Currency:      currency,
		MarketState:   "CLOSED",
		Timestamp:     day.Format(time.RFC3339),
		Date:          day.Format("2006-01-02"),
	}
}

// GetHistoricalMarketSummary returns closing quotes for a date grouped
// by region, pacing per-symbol requests.
func (c *Crawler) GetHistoricalMarketSummary(ctx context.Context, date time.Time) *Summary {
	summary := &Summary{
		UpdateTime: time.Now().Format(time.RFC3339),
		TargetDate: date.Format("2006-01-02"),
	}

	collect := func(region string) []Index {
		var indices []Index
		for _, key := range regionSymbols[region] {
			if data := c.GetHistoricalData(ctx, key, date); data != nil {
				indices = append(indices, *data)
			}
			select {
			case <-ctx.Done():
				return indices
			case <-time.After(historicalPacing):
			}
		}
		return indices
	}

	summary.USMarket = collect("us")
	summary.AsiaMarket = collect("asia")
	summary.EuropeMarket = collect("europe")
	summary.TotalCount = len(summary.USMarket) + len(summary.AsiaMarket) + len(summary.EuropeMarket)

	return summary
}

// WriteSummary persists a summary as global_point_<date>.json under
// dir. The retention sweeper ignores these files by naming pattern.
func WriteSummary(dir string, date string, summary *Summary) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode market summary: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("global_point_%s.json", date))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write market summary: %w", err)
	}

	return path, nil
}

func indexName(key string) string {
	if name, ok := indexNames[key]; ok {
		return name
	}
	return key
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
