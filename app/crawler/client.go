package crawler

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/hjpark/finnews/app/cfg"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// Rotated per request to avoid trivial bot fingerprints.
var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.0 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:109.0) Gecko/20100101 Firefox/117.0",
}

var defaultAcceptLanguages = []string{
	"ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7",
	"ko,en-US;q=0.9,en;q=0.8",
	"en-US,en;q=0.9,ko-KR;q=0.8,ko;q=0.7",
}

const defaultReferer = "https://finance.naver.com/"

// Client fetches listing and article pages. It owns the request headers
// (rotating User-Agent and Accept-Language, fixed Referer and
// Cache-Control), the per-request timeout, and the EUC-KR body decode.
type Client struct {
	httpClient      *http.Client
	listingURL      *url.URL
	userAgents      []string
	acceptLanguages []string
	referer         string
	encoding        string
	timeout         time.Duration
}

func NewClient(listingURL string, timeout time.Duration, src *cfg.Source) (*Client, error) {
	if src != nil && src.ListingURL != "" {
		listingURL = src.ListingURL
	}

	base, err := url.Parse(listingURL)
	if err != nil {
		return nil, fmt.Errorf("invalid listing URL: %w", err)
	}

	c := &Client{
		httpClient:      &http.Client{Timeout: timeout},
		listingURL:      base,
		userAgents:      defaultUserAgents,
		acceptLanguages: defaultAcceptLanguages,
		referer:         defaultReferer,
		encoding:        "euc-kr",
		timeout:         timeout,
	}

	if src != nil {
		if len(src.UserAgents) > 0 {
			c.userAgents = src.UserAgents
		}
		if len(src.AcceptLanguages) > 0 {
			c.acceptLanguages = src.AcceptLanguages
		}
		if src.Referer != "" {
			c.referer = src.Referer
		}
		if src.Encoding != "" {
			c.encoding = src.Encoding
		}
	}

	return c, nil
}

// BaseURL returns the listing URL used to resolve relative links.
func (c *Client) BaseURL() *url.URL {
	return c.listingURL
}

// ListingPageURL builds the listing URL for a date and page number.
func (c *Client) ListingPageURL(date string, page int) string {
	u := *c.listingURL
	q := u.Query()
	q.Set("date", date)
	q.Set("page", fmt.Sprintf("%d", page))
	u.RawQuery = q.Encode()
	return u.String()
}

// FetchDocument fetches a page and parses it into a goquery document.
// Non-2xx responses are failures.
func (c *Client) FetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgents[rand.Intn(len(c.userAgents))])
	req.Header.Set("Accept-Language", c.acceptLanguages[rand.Intn(len(c.acceptLanguages))])
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Referer", c.referer)
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(c.decodeBody(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return doc, nil
}

// The source site serves EUC-KR; goquery expects UTF-8.
func (c *Client) decodeBody(body io.Reader) io.Reader {
	if c.encoding == "utf-8" {
		return body
	}
	return transform.NewReader(body, korean.EUCKR.NewDecoder())
}
