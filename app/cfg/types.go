package cfg

type Cfg struct {
	// Crawl configuration
	ListingURL    string
	DataDir       string
	Date          string
	RetentionDays int
	FetchTimeout  int
	PageDelayMs   int
	FetchArticles bool
	SourceFile    string

	// Summarization configuration (optional)
	SummaryEndpoint string
	SummaryAPIKey   string
	SummaryModel    string

	// Durable store configuration (optional)
	DBPath string

	// Market index collection
	CollectMarket      bool
	MarketBackfillDays int

	// HTTP server configuration
	Serve bool
	Port  string

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}

// Source carries per-site extraction tuning loaded from an optional
// YAML file. Zero values fall back to the built-in Naver Finance
// defaults.
type Source struct {
	ListingURL      string   `yaml:"listing_url"`
	Encoding        string   `yaml:"encoding"`
	UserAgents      []string `yaml:"user_agents"`
	AcceptLanguages []string `yaml:"accept_languages"`
	Referer         string   `yaml:"referer"`
	ListSelector    string   `yaml:"list_selector"`
	NavSelector     string   `yaml:"nav_selector"`
}
