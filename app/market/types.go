package market

// Index is one overseas market index quote.
type Index struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	CurrentPrice  float64 `json:"current_price"`
	PreviousClose float64 `json:"previous_close"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	Currency      string  `json:"currency"`
	MarketState   string  `json:"market_state"`
	Timestamp     string  `json:"timestamp"`
	Date          string  `json:"date,omitempty"`
}

// Summary groups index quotes by region.
type Summary struct {
	UpdateTime   string  `json:"update_time"`
	TargetDate   string  `json:"target_date,omitempty"`
	USMarket     []Index `json:"us_market"`
	AsiaMarket   []Index `json:"asia_market"`
	EuropeMarket []Index `json:"europe_market"`
	TotalCount   int     `json:"total_count"`
}
