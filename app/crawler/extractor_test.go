package crawler

import (
	"net/url"
	"testing"
)

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("Failed to parse URL: %v", err)
	}
	return u
}

const listingFixture = `
<html><body>
	<ul class="newsList">
		<li class="newsItem">
			<a href="/news/read.naver?id=1">코스피 상승 마감</a>
			<div class="articleSummary">요약 <span class="wdate">2026-08-28 09:30</span></div>
		</li>
		<li class="newsItem">
			<a href="/news/read.naver?id=2">환율 하락세 지속</a>
		</li>
		<li class="newsItem">
			<a href="/news/read.naver?id=3">코스피 상승 마감</a>
		</li>
	</ul>
</body></html>`

func TestExtractor_Extract_PrimaryContainer(t *testing.T) {
	extractor := NewExtractor("", "")
	base := mustParseURL(t, "https://finance.naver.com/news/mainnews.naver")

	records := extractor.Extract(docFromHTML(t, listingFixture), base)

	if len(records) != 2 {
		t.Fatalf("Expected 2 records after in-page dedup, got %d", len(records))
	}

	if records[0].Title != "코스피 상승 마감" {
		t.Errorf("Unexpected first title: %q", records[0].Title)
	}
	if records[0].Link != "https://finance.naver.com/news/read.naver?id=1" {
		t.Errorf("Expected absolute link, got %q", records[0].Link)
	}
	if records[0].PublishedAt == nil {
		t.Errorf("Expected published timestamp from .wdate")
	}
	if records[1].Title != "환율 하락세 지속" {
		t.Errorf("Unexpected second title: %q", records[1].Title)
	}
}

func TestExtractor_Extract_NavSecondarySource(t *testing.T) {
	fixture := `
	<html><body>
		<ul class="newsList">
			<li class="newsItem"><a href="/a">금리 인하 기대감 확산</a></li>
		</ul>
		<div class="Nnavi">
			<a href="/b">반도체 수출 회복 조짐</a>
			<a href="/c">금리 인하 기대감 확산</a>
			<a href="/d">다음</a>
		</div>
	</body></html>`

	extractor := NewExtractor("", "")
	base := mustParseURL(t, "https://finance.naver.com/")

	records := extractor.Extract(docFromHTML(t, fixture), base)

	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d: %+v", len(records), records)
	}

	if records[1].Title != "반도체 수출 회복 조짐" {
		t.Errorf("Expected nav record second, got %q", records[1].Title)
	}
	if records[1].Source != "nav" {
		t.Errorf("Expected nav record tagged with source, got %q", records[1].Source)
	}
	if records[0].Source != "" {
		t.Errorf("Primary record should carry no source tag, got %q", records[0].Source)
	}
}

func TestExtractor_Extract_DiscardsPlaceholderAndShortNavTitles(t *testing.T) {
	fixture := `
	<html><body>
		<ul class="newsList">
			<li class="newsItem"><a href="/a">제목 없음</a></li>
			<li class="newsItem"><a href="/b">유가 급등에 정유주 강세</a></li>
		</ul>
		<div class="Nnavi">
			<a href="/1">1</a>
			<a href="/2">2</a>
		</div>
	</body></html>`

	extractor := NewExtractor("", "")
	records := extractor.Extract(docFromHTML(t, fixture), mustParseURL(t, "https://finance.naver.com/"))

	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d: %+v", len(records), records)
	}
	if records[0].Title != "유가 급등에 정유주 강세" {
		t.Errorf("Unexpected record: %q", records[0].Title)
	}
}

func TestExtractor_Extract_AnchorFallbackWithinContainer(t *testing.T) {
	// Items without news/item classes fall back to bare anchors.
	fixture := `
	<html><body>
		<div class="newsList">
			<a href="/x">외국인 순매수 전환</a>
			<a href="/y">기관 매도세 둔화</a>
		</div>
	</body></html>`

	extractor := NewExtractor("", "")
	records := extractor.Extract(docFromHTML(t, fixture), mustParseURL(t, "https://finance.naver.com/"))

	if len(records) != 2 {
		t.Fatalf("Expected 2 records from anchor fallback, got %d", len(records))
	}
}

func TestExtractor_Extract_EmptyDocument(t *testing.T) {
	extractor := NewExtractor("", "")
	records := extractor.Extract(docFromHTML(t, `<html><body></body></html>`), nil)

	if len(records) != 0 {
		t.Errorf("Expected no records from empty document, got %d", len(records))
	}
}

func TestNormalizeTitle(t *testing.T) {
	got := normalizeTitle("  코스피   2,500   돌파  ")
	want := "코스피 2,500 돌파"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
