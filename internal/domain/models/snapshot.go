package models

import "time"

// MarketSnapshot holds the per-token metrics one evaluation runs on. It is
// fetched fresh each run and never persisted. Nil fields mean the metric was
// unavailable from the provider; scoring treats absence as maximum risk
// rather than substituting zeros.
type MarketSnapshot struct {
	Token     string    `json:"token"`
	FetchedAt time.Time `json:"fetched_at"`

	Price     *float64 `json:"price,omitempty"`
	MarketCap *float64 `json:"market_cap,omitempty"`
	Volume24h *float64 `json:"volume_24h,omitempty"`
	TVL       *float64 `json:"tvl,omitempty"`

	// Volatility30d is the annualized rolling stdev of daily returns.
	Volatility30d *float64 `json:"volatility_30d,omitempty"`
	CorrBTC       *float64 `json:"corr_btc,omitempty"`
	CorrETH       *float64 `json:"corr_eth,omitempty"`
}

// HasMarketData reports whether the core market fields (price, cap, volume)
// were fetched at all. A snapshot without them excludes the holding from
// portfolio aggregation.
func (s MarketSnapshot) HasMarketData() bool {
	return s.Price != nil || s.MarketCap != nil || s.Volume24h != nil
}

// Float is a convenience for building optional metric fields.
func Float(v float64) *float64 { return &v }
