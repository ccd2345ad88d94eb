package crawler

import (
	"context"
	"log/slog"
	"strings"

	"codeberg.org/readeck/go-readability"
	"github.com/PuerkitoBio/goquery"
)

// Known article body containers, most specific first.
var articleBodySelectors = []string{
	"#articleBodyContents",
	"#articleBody",
	".article_body",
	".articleBody",
	".news_end_body",
	".article_view",
	"#newsEndContents",
	".article_info",
}

// Lines containing these markers are boilerplate, not article text.
var adLineKeywords = []string{"광고", "AD", "Advertisement", "무단전재", "저작권"}

const minContentLen = 50

// ArticleFetcher retrieves the body text of a single article page. It
// tries the known structural selectors in order and falls back to a
// readability pass when none match.
type ArticleFetcher struct {
	client *Client
}

func NewArticleFetcher(client *Client) *ArticleFetcher {
	return &ArticleFetcher{client: client}
}

// FetchContent returns the cleaned body text for the linked article, or
// an empty string when the page yields nothing usable. It never fails
// the run: fetch and parse problems are logged and swallowed.
func (f *ArticleFetcher) FetchContent(ctx context.Context, link string) string {
	if link == "" {
		return ""
	}

	doc, err := f.client.FetchDocument(ctx, link)
	if err != nil {
		slog.Debug("Failed to fetch article", "link", link, "error", err)
		return ""
	}

	for _, selector := range articleBodySelectors {
		if content := extractBody(doc.Find(selector).First()); content != "" {
			return content
		}
	}

	// Looser structural guesses before the readability fallback.
	for _, sel := range []string{"div[id*=body]", "article", "div[class*=article]"} {
		if content := extractBody(doc.Find(sel).First()); content != "" {
			return content
		}
	}

	return f.readabilityFallback(doc, link)
}

func (f *ArticleFetcher) readabilityFallback(doc *goquery.Document, link string) string {
	html, err := doc.Html()
	if err != nil {
		return ""
	}

	article, err := readability.FromReader(strings.NewReader(html), nil)
	if err != nil {
		slog.Debug("Readability fallback failed", "link", link, "error", err)
		return ""
	}

	content := cleanContent(article.TextContent)
	if len(content) < minContentLen {
		return ""
	}
	return content
}

func extractBody(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}

	sel.Find("script, style, iframe, noscript").Remove()

	content := cleanContent(sel.Text())
	if len(content) < minContentLen {
		return ""
	}
	return content
}

// cleanContent collapses whitespace and drops short or ad-looking
// lines.
func cleanContent(text string) string {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if len([]rune(line)) <= 10 {
			continue
		}
		if containsAny(line, adLineKeywords) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, " ")
}
