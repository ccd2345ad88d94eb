package market

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func chartServer(t *testing.T, price, previousClose float64) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/v8/finance/chart/") {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		fmt.Fprintf(w, `{"chart":{"result":[{"meta":{"regularMarketPrice":%g,"previousClose":%g,"currency":"USD","marketState":"REGULAR","regularMarketTime":1756339200}}]}}`,
			price, previousClose)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestCrawler_GetIndexData(t *testing.T) {
	server := chartServer(t, 44150.25, 44000.0)
	crawler := NewCrawler(server.URL, 5*time.Second)

	index := crawler.GetIndexData(t.Context(), "dow")
	if index == nil {
		t.Fatal("Expected index data, got nil")
	}

	if index.Symbol != "dow" {
		t.Errorf("Expected symbol dow, got %s", index.Symbol)
	}
	if index.Name != "다우존스" {
		t.Errorf("Expected localized name, got %s", index.Name)
	}
	if index.CurrentPrice != 44150.25 {
		t.Errorf("Expected price 44150.25, got %g", index.CurrentPrice)
	}
	if index.Change != 150.25 {
		t.Errorf("Expected change 150.25, got %g", index.Change)
	}
	if index.ChangePercent != 0.34 {
		t.Errorf("Expected change percent 0.34, got %g", index.ChangePercent)
	}
	if index.MarketState != "REGULAR" {
		t.Errorf("Expected market state REGULAR, got %s", index.MarketState)
	}
}

func TestCrawler_GetIndexData_UnknownKey(t *testing.T) {
	crawler := NewCrawler("http://127.0.0.1:0", time.Second)

	if index := crawler.GetIndexData(t.Context(), "kospi"); index != nil {
		t.Errorf("Expected nil for unknown index key, got %+v", index)
	}
}

func TestCrawler_GetIndexData_FetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	crawler := NewCrawler(server.URL, time.Second)

	if index := crawler.GetIndexData(t.Context(), "nasdaq"); index != nil {
		t.Errorf("Expected nil on fetch failure, got %+v", index)
	}
}

func TestCrawler_GetAllIndices_RegionFilter(t *testing.T) {
	server := chartServer(t, 100, 99)
	crawler := NewCrawler(server.URL, 5*time.Second)

	us := crawler.GetAllIndices(t.Context(), "us")
	if len(us) != 3 {
		t.Errorf("Expected 3 US indices, got %d", len(us))
	}

	all := crawler.GetAllIndices(t.Context(), "")
	if len(all) != 10 {
		t.Errorf("Expected all 10 indices for empty region, got %d", len(all))
	}
}

func TestValidRegion(t *testing.T) {
	for _, region := range Regions() {
		if !ValidRegion(region) {
			t.Errorf("Expected %s to be a valid region", region)
		}
	}
	if ValidRegion("mars") {
		t.Errorf("Expected mars to be invalid")
	}
}

func TestCrawler_GetHistoricalData_NoTradingDay(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Weekend response: a result with no timestamps or quotes.
		fmt.Fprint(w, `{"chart":{"result":[{"meta":{"previousClose":0},"timestamp":[],"indicators":{"quote":[]}}]}}`)
	}))
	defer server.Close()

	crawler := NewCrawler(server.URL, time.Second)

	if index := crawler.GetHistoricalData(t.Context(), "dow", time.Now()); index != nil {
		t.Errorf("Expected nil for a non-trading day, got %+v", index)
	}
}

func TestCrawler_GetHistoricalData_Close(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[{"meta":{"previousClose":200,"currency":"JPY"},"timestamp":[1756339200],"indicators":{"quote":[{"open":[201.5],"close":[210.0]}]}}]}}`)
	}))
	defer server.Close()

	crawler := NewCrawler(server.URL, time.Second)
	date := time.Date(2026, 8, 27, 0, 0, 0, 0, time.Local)

	index := crawler.GetHistoricalData(t.Context(), "nikkei", date)
	if index == nil {
		t.Fatal("Expected historical index data, got nil")
	}

	if index.CurrentPrice != 210 {
		t.Errorf("Expected closing price 210, got %g", index.CurrentPrice)
	}
	if index.Change != 10 {
		t.Errorf("Expected change 10, got %g", index.Change)
	}
	if index.MarketState != "CLOSED" {
		t.Errorf("Expected market state CLOSED, got %s", index.MarketState)
	}
	if index.Date != "2026-08-27" {
		t.Errorf("Expected date 2026-08-27, got %s", index.Date)
	}
	if index.Currency != "JPY" {
		t.Errorf("Expected currency JPY, got %s", index.Currency)
	}
}

func TestWriteSummary(t *testing.T) {
	dir := t.TempDir()
	summary := &Summary{
		UpdateTime: time.Now().Format(time.RFC3339),
		TargetDate: "2026-08-27",
		USMarket:   []Index{{Symbol: "dow", CurrentPrice: 44150.25}},
		TotalCount: 1,
	}

	path, err := WriteSummary(dir, "2026-08-27", summary)
	if err != nil {
		t.Fatalf("WriteSummary failed: %v", err)
	}

	if filepath.Base(path) != "global_point_2026-08-27.json" {
		t.Errorf("Unexpected artifact name: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read artifact: %v", err)
	}
	if !strings.Contains(string(data), `"dow"`) {
		t.Errorf("Expected serialized index data, got %s", data)
	}
}

func TestBackfill_SkipsExistingArtifacts(t *testing.T) {
	dir := t.TempDir()

	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		fmt.Fprint(w, `{"chart":{"result":[{"meta":{"previousClose":100},"timestamp":[1756339200],"indicators":{"quote":[{"open":[100.0],"close":[101.0]}]}}]}}`)
	}))
	defer server.Close()

	today := time.Now().Format("2006-01-02")
	if _, err := WriteSummary(dir, today, &Summary{TotalCount: 1}); err != nil {
		t.Fatalf("WriteSummary failed: %v", err)
	}

	crawler := NewCrawler(server.URL, time.Second)
	written := Backfill(t.Context(), crawler, dir, 0)

	if written != 0 {
		t.Errorf("Expected no artifacts written over existing ones, got %d", written)
	}
	if requests != 0 {
		t.Errorf("Expected no requests for already-collected dates, got %d", requests)
	}
}

func TestBackfill_WritesMissingArtifacts(t *testing.T) {
	dir := t.TempDir()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[{"meta":{"previousClose":100},"timestamp":[1756339200],"indicators":{"quote":[{"open":[100.0],"close":[101.0]}]}}]}}`)
	}))
	defer server.Close()

	crawler := NewCrawler(server.URL, time.Second)
	written := Backfill(t.Context(), crawler, dir, 0)

	if written != 1 {
		t.Fatalf("Expected 1 artifact written, got %d", written)
	}

	today := time.Now().Format("2006-01-02")
	if _, err := os.Stat(filepath.Join(dir, "global_point_"+today+".json")); err != nil {
		t.Errorf("Expected artifact for today: %v", err)
	}
}
