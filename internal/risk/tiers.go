package risk

// Score scale shared by every category tier table.
const (
	ScoreMin = 1.0
	ScoreMax = 5.0

	scoreMid = 3.0
)

// Tiers holds the bucket thresholds mapping continuous metrics onto the 1-5
// scale. Defaults reproduce the model's published tiers; all of them can be
// overridden from config.
type Tiers struct {
	// Annualized volatility buckets: below Low -> 1, below High -> 3, else 5.
	VolLow  float64 `yaml:"vol_low" default:"0.5"`
	VolHigh float64 `yaml:"vol_high" default:"1.0"`

	// Market cap tiers: above Large -> 1, above Mid -> 3, else 5.
	CapLarge float64 `yaml:"cap_large" default:"10000000000"`
	CapMid   float64 `yaml:"cap_mid" default:"1000000000"`

	// Average |correlation| to BTC/ETH: below Low -> 1, below High -> 3, else 5.
	CorrLow  float64 `yaml:"corr_low" default:"0.4"`
	CorrHigh float64 `yaml:"corr_high" default:"0.7"`

	// 24h volume to market cap ratio: above High -> 1, above Low -> 3, else 5.
	LiqRatioHigh float64 `yaml:"liq_ratio_high" default:"0.1"`
	LiqRatioLow  float64 `yaml:"liq_ratio_low" default:"0.02"`

	// Protocol TVL tiers: above Large -> 1, above Mid -> 3, else 5.
	TVLLarge float64 `yaml:"tvl_large" default:"1000000000"`
	TVLMid   float64 `yaml:"tvl_mid" default:"100000000"`
}

// ascendingTier buckets a metric where bigger means riskier.
func ascendingTier(v, low, high float64) float64 {
	switch {
	case v < low:
		return ScoreMin
	case v < high:
		return scoreMid
	default:
		return ScoreMax
	}
}

// descendingTier buckets a metric where bigger means safer.
func descendingTier(v, mid, large float64) float64 {
	switch {
	case v > large:
		return ScoreMin
	case v > mid:
		return scoreMid
	default:
		return ScoreMax
	}
}
