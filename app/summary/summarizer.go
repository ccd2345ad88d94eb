package summary

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

const (
	maxTitles      = 50
	maxSummaryLen  = 500
	maxTickersLen  = 255
	fallbackTitles = 10
)

const systemPrompt = "You are a financial news analyst. Given a list of Korean " +
	"financial news headlines, respond with a JSON object containing two keys: " +
	"\"summary\" (a concise Korean summary of the day's market news, at most 500 " +
	"characters) and \"tickers\" (a comma-separated list of stock names or tickers " +
	"the news recommends watching, at most 255 characters, empty if none)."

// Result is a summarization outcome: a bounded summary of the collected
// titles and an optional list of recommended tickers.
type Result struct {
	Summary string
	Tickers string
}

type Config struct {
	Endpoint string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// Summarizer calls an OpenAI-compatible chat completions endpoint to
// summarize collected headlines. When no endpoint is configured, or a
// call fails, it degrades to a naive concatenation of the first few
// titles. Results are memoized by a hash of the input title set for the
// lifetime of the Summarizer.
type Summarizer struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client

	mu    sync.Mutex
	cache map[string]Result
}

func New(cfg Config) *Summarizer {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Summarizer{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		client:   &http.Client{Timeout: timeout},
		cache:    make(map[string]Result),
	}
}

// Enabled reports whether a summarization endpoint is configured.
func (s *Summarizer) Enabled() bool {
	return s.endpoint != ""
}

// Summarize produces a Result for the title set. It never fails: an
// unconfigured or failing endpoint degrades to the naive fallback.
func (s *Summarizer) Summarize(ctx context.Context, titles []string) Result {
	if len(titles) > maxTitles {
		titles = titles[:maxTitles]
	}

	key := titleSetKey(titles)

	s.mu.Lock()
	if cached, ok := s.cache[key]; ok {
		s.mu.Unlock()
		return cached
	}
	s.mu.Unlock()

	var result Result
	if !s.Enabled() {
		result = naive(titles)
	} else {
		var err error
		result, err = s.callAPI(ctx, titles)
		if err != nil {
			slog.Warn("Summarization call failed, using fallback", "error", err)
			result = naive(titles)
		}
	}

	s.mu.Lock()
	s.cache[key] = result
	s.mu.Unlock()

	return result
}

// titleSetKey hashes the sorted title set so memoization is insensitive
// to input order.
func titleSetKey(titles []string) string {
	sorted := make([]string, len(titles))
	copy(sorted, titles)
	sort.Strings(sorted)

	digest := sha256.Sum256([]byte(strings.Join(sorted, "\n")))
	return hex.EncodeToString(digest[:])
}

// naive joins up to ten titles and truncates, with no ticker output.
func naive(titles []string) Result {
	n := len(titles)
	if n > fallbackTitles {
		n = fallbackTitles
	}
	return Result{Summary: truncate(strings.Join(titles[:n], "; "), maxSummaryLen)}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type summaryContent struct {
	Summary string `json:"summary"`
	Tickers string `json:"tickers"`
}

func (s *Summarizer) callAPI(ctx context.Context, titles []string) (Result, error) {
	body, err := json.Marshal(chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: strings.Join(titles, "\n")},
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.endpoint+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Result{}, fmt.Errorf("HTTP error: %d: %s", resp.StatusCode, string(data))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Result{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return Result{}, fmt.Errorf("empty response from summarization endpoint")
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)

	// Models usually honor the JSON instruction; treat the raw content
	// as the summary when they do not.
	var sc summaryContent
	if err := json.Unmarshal([]byte(content), &sc); err != nil {
		sc = summaryContent{Summary: content}
	}

	return Result{
		Summary: truncate(sc.Summary, maxSummaryLen),
		Tickers: truncate(sc.Tickers, maxTickersLen),
	}, nil
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
