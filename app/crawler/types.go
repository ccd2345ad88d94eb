package crawler

import "time"

// Record is a single article entry extracted from the news listing.
// Identity for deduplication is the exact normalized title.
type Record struct {
	Title       string     `json:"title"`
	Link        string     `json:"link,omitempty"`
	Source      string     `json:"source,omitempty"`
	Page        int        `json:"page"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Content     string     `json:"content,omitempty"`
}

// PageCount is the inferred pagination depth of a listing. Confident is
// false when the count came from the permissive fallback (number of
// distinct page-looking integers) rather than an observed maximum page
// number, and when no pages could be inferred at all.
type PageCount struct {
	Pages     int
	Confident bool
}
