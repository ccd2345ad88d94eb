package summary

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func titlesFixture(n int) []string {
	titles := make([]string, 0, n)
	for i := 0; i < n; i++ {
		titles = append(titles, fmt.Sprintf("뉴스 제목 %d", i+1))
	}
	return titles
}

func TestSummarizer_FallbackWhenUnconfigured(t *testing.T) {
	s := New(Config{})

	if s.Enabled() {
		t.Fatal("Expected summarizer disabled without endpoint")
	}

	result := s.Summarize(t.Context(), titlesFixture(15))

	if result.Tickers != "" {
		t.Errorf("Expected no tickers from fallback, got %q", result.Tickers)
	}
	if !strings.Contains(result.Summary, "뉴스 제목 1") {
		t.Errorf("Expected fallback summary to contain titles, got %q", result.Summary)
	}
	// Fallback concatenates at most ten titles.
	if strings.Contains(result.Summary, "뉴스 제목 11") {
		t.Errorf("Expected fallback limited to 10 titles, got %q", result.Summary)
	}
}

func TestSummarizer_FallbackTruncation(t *testing.T) {
	long := strings.Repeat("가", 200)
	s := New(Config{})

	result := s.Summarize(t.Context(), []string{long, long, long})

	if got := len([]rune(result.Summary)); got > maxSummaryLen {
		t.Errorf("Expected summary capped at %d chars, got %d", maxSummaryLen, got)
	}
}

func TestSummarizer_CallsEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Expected bearer auth, got %q", auth)
		}
		fmt.Fprint(w, `{"choices":[{"message":{"content":"{\"summary\":\"증시 요약\",\"tickers\":\"삼성전자, SK하이닉스\"}"}}]}`)
	}))
	defer server.Close()

	s := New(Config{Endpoint: server.URL, APIKey: "test-key", Model: "test-model"})

	result := s.Summarize(t.Context(), []string{"코스피 상승", "반도체 강세"})

	if result.Summary != "증시 요약" {
		t.Errorf("Expected parsed summary, got %q", result.Summary)
	}
	if result.Tickers != "삼성전자, SK하이닉스" {
		t.Errorf("Expected parsed tickers, got %q", result.Tickers)
	}
}

func TestSummarizer_NonJSONContentBecomesSummary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[{"message":{"content":"그냥 평문 요약"}}]}`)
	}))
	defer server.Close()

	s := New(Config{Endpoint: server.URL, Model: "test-model"})

	result := s.Summarize(t.Context(), []string{"제목"})

	if result.Summary != "그냥 평문 요약" {
		t.Errorf("Expected raw content as summary, got %q", result.Summary)
	}
	if result.Tickers != "" {
		t.Errorf("Expected no tickers, got %q", result.Tickers)
	}
}

func TestSummarizer_MemoizesByTitleSet(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"choices":[{"message":{"content":"{\"summary\":\"요약\",\"tickers\":\"\"}"}}]}`)
	}))
	defer server.Close()

	s := New(Config{Endpoint: server.URL, Model: "test-model"})

	s.Summarize(t.Context(), []string{"첫 기사", "둘째 기사"})
	// Same set, different order: must hit the memoization cache.
	s.Summarize(t.Context(), []string{"둘째 기사", "첫 기사"})

	if calls != 1 {
		t.Errorf("Expected 1 API call for identical title sets, got %d", calls)
	}

	s.Summarize(t.Context(), []string{"다른 기사"})
	if calls != 2 {
		t.Errorf("Expected new API call for a new title set, got %d", calls)
	}
}

func TestSummarizer_APIFailureFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	s := New(Config{Endpoint: server.URL, Model: "test-model"})

	result := s.Summarize(t.Context(), []string{"장 마감 시황"})

	if !strings.Contains(result.Summary, "장 마감 시황") {
		t.Errorf("Expected naive fallback on API failure, got %q", result.Summary)
	}
}
