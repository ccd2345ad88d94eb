package crawler

import (
	"context"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const navSelector = ".Nnavi"

// Query parameter names that commonly carry a page number.
var pageParamNames = []string{"page", "p", "pageno", "pagenum", "pageNum"}

// Anchor texts that point at the last page of a pagination block.
var lastPageKeywords = []string{"마지막", "Last", "끝"}

var integerToken = regexp.MustCompile(`\b(\d+)\b`)

// PageCounter infers the pagination depth of the listing for a date by
// scanning the navigation region of page 1.
type PageCounter struct {
	client      *Client
	navSelector string
}

func NewPageCounter(client *Client, navSel string) *PageCounter {
	if navSel == "" {
		navSel = navSelector
	}
	return &PageCounter{client: client, navSelector: navSel}
}

// CountPages returns the inferred page count for the date. The result
// is the maximum page number seen in the navigation region when one
// exists; otherwise the number of distinct page-looking integers, with
// Confident=false because unrelated numeric text can leak into that
// fallback. Fetch or parse failures yield zero rather than an error;
// callers treat zero as a single page.
func (p *PageCounter) CountPages(ctx context.Context, date string) PageCount {
	pageURL := p.client.ListingPageURL(date, 1)

	doc, err := p.client.FetchDocument(ctx, pageURL)
	if err != nil {
		slog.Warn("Failed to fetch listing for page count", "date", date, "error", err)
		return PageCount{}
	}

	return p.scan(doc)
}

func (p *PageCounter) scan(doc *goquery.Document) PageCount {
	candidates := make(map[int]bool)
	maxPage := 0

	note := func(n int) {
		candidates[n] = true
		if n > maxPage {
			maxPage = n
		}
	}

	nav := doc.Find(p.navSelector)
	if nav.Length() == 0 {
		return PageCount{}
	}

	nav.Each(func(_ int, container *goquery.Selection) {
		container.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
			text := strings.TrimSpace(link.Text())
			href, _ := link.Attr("href")

			// Pure-integer anchor text is a page number candidate; only
			// values >= 1 can become the maximum.
			if n, err := strconv.Atoi(text); err == nil && n >= 0 {
				note(n)
			}

			// "Last"-style anchors encode the final page in their URL.
			if containsAny(text, lastPageKeywords) {
				for _, n := range pageNumbersFromURL(href) {
					note(n)
				}
				return
			}

			for _, n := range pageNumbersFromURL(href) {
				note(n)
			}
		})

		// Plain-text integer tokens in the region, e.g. "1 2 3 ... 10".
		for _, m := range integerToken.FindAllString(container.Text(), -1) {
			if n, err := strconv.Atoi(m); err == nil && n >= 1 && n <= 1000 {
				note(n)
			}
		}
	})

	if maxPage > 0 {
		return PageCount{Pages: maxPage, Confident: true}
	}
	return PageCount{Pages: len(candidates)}
}

// pageNumbersFromURL extracts page number candidates from an href's
// query parameters and path segments.
func pageNumbersFromURL(href string) []int {
	if href == "" {
		return nil
	}

	u, err := url.Parse(href)
	if err != nil {
		return nil
	}

	var nums []int

	query := u.Query()
	for _, param := range pageParamNames {
		if v := query.Get(param); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 1 {
				nums = append(nums, n)
			}
		}
	}

	for _, part := range strings.Split(u.Path, "/") {
		if n, err := strconv.Atoi(part); err == nil && n >= 1 && n <= 1000 {
			nums = append(nums, n)
		}
	}

	return nums
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
