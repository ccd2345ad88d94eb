package crawler

import (
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
)

const (
	listSelector     = ".newsList"
	placeholderTitle = "제목 없음"

	// Titles from the navigation region shorter than this are assumed
	// to be pagination labels, not headlines.
	minNavTitleLen = 6
)

// Secondary selectors tried when the primary listing container is
// absent from the document.
var fallbackListSelectors = "ul.newsList, div.newsList, .newsList ul, .newsList li"

// Extractor parses one listing page into candidate records. It walks
// the primary listing container first, then scans the navigation
// region as a secondary source, deduplicating by exact title within
// the page.
type Extractor struct {
	listSelector string
	navSelector  string
}

func NewExtractor(listSel, navSel string) *Extractor {
	if listSel == "" {
		listSel = listSelector
	}
	if navSel == "" {
		navSel = navSelector
	}
	return &Extractor{listSelector: listSel, navSelector: navSel}
}

// Extract returns the records found on one listing page. It never
// fails: per-item anomalies are logged and skipped, and a document
// without recognizable structure yields an empty slice.
func (e *Extractor) Extract(doc *goquery.Document, base *url.URL) []Record {
	var records []Record
	seen := make(map[string]bool)

	add := func(rec Record) {
		if rec.Title == "" || rec.Title == placeholderTitle || seen[rec.Title] {
			return
		}
		seen[rec.Title] = true
		records = append(records, rec)
	}

	containers := doc.Find(e.listSelector)
	if containers.Length() > 0 {
		containers.Each(func(_ int, container *goquery.Selection) {
			e.extractFromContainer(container, base, add)
		})
	} else {
		// Degraded markup: try looser list shapes before giving up.
		doc.Find(fallbackListSelectors).Each(func(_ int, item *goquery.Selection) {
			link := item.Find("a").First()
			if link.Length() == 0 {
				return
			}
			rec := Record{Title: normalizeTitle(link.Text())}
			if href, ok := link.Attr("href"); ok {
				rec.Link = resolveLink(base, href)
			}
			rec.PublishedAt = publishedAt(item)
			add(rec)
		})
	}

	e.extractFromNav(doc, base, seen, &records)

	return records
}

func (e *Extractor) extractFromContainer(container *goquery.Selection, base *url.URL, add func(Record)) {
	items := container.Find("li, article, div").FilterFunction(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		class = strings.ToLower(class)
		return strings.Contains(class, "news") || strings.Contains(class, "item")
	})

	// No classed items: fall back to bare anchors.
	if items.Length() == 0 {
		items = container.Find("a[href]")
	}

	items.Each(func(_ int, item *goquery.Selection) {
		title := itemTitle(item, "a, strong, span, h3, h4")
		if title == "" {
			slog.Debug("Skipping listing item without title")
			return
		}

		rec := Record{
			Title:       title,
			Link:        itemLink(item, base),
			PublishedAt: publishedAt(item),
		}
		add(rec)
	})
}

// extractFromNav scans the navigation region as a secondary record
// source, cross-deduplicated by exact title against the primary
// container's records.
func (e *Extractor) extractFromNav(doc *goquery.Document, base *url.URL, seen map[string]bool, records *[]Record) {
	doc.Find(e.navSelector).Each(func(_ int, nav *goquery.Selection) {
		nav.Find("li, article, div, a").Each(func(_ int, item *goquery.Selection) {
			title := itemTitle(item, "a, strong, span, h3, h4, dt, dd")
			if title == "" || title == placeholderTitle {
				return
			}
			if len([]rune(title)) < minNavTitleLen {
				return
			}
			if seen[title] {
				return
			}
			seen[title] = true

			*records = append(*records, Record{
				Title:       title,
				Link:        itemLink(item, base),
				Source:      "nav",
				PublishedAt: publishedAt(item),
			})
		})
	})
}

// itemTitle picks the first matching title-like descendant, falling
// back to the item's own text.
func itemTitle(item *goquery.Selection, selector string) string {
	titleElem := item.Find(selector).First()
	if titleElem.Length() > 0 {
		return normalizeTitle(titleElem.Text())
	}
	return normalizeTitle(item.Text())
}

// itemLink returns the first href on or within the item, resolved
// absolute against the listing base URL.
func itemLink(item *goquery.Selection, base *url.URL) string {
	if href, ok := item.Attr("href"); ok {
		return resolveLink(base, href)
	}
	if link := item.Find("a[href]").First(); link.Length() > 0 {
		if href, ok := link.Attr("href"); ok {
			return resolveLink(base, href)
		}
	}
	return ""
}

func publishedAt(item *goquery.Selection) *time.Time {
	text := strings.TrimSpace(item.Find(".articleSummary .wdate").First().Text())
	if text == "" {
		return nil
	}

	ts, err := dateparse.ParseLocal(text)
	if err != nil {
		slog.Debug("Unparseable article timestamp", "text", text)
		return nil
	}
	return &ts
}

func resolveLink(base *url.URL, href string) string {
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}

// normalizeTitle collapses runs of whitespace so dedup compares exact
// visible text.
func normalizeTitle(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
