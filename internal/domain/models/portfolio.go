package models

// Classification buckets a holding for the regulatory heuristic.
type Classification string

const (
	ClassStable   Classification = "stable"
	ClassBlueChip Classification = "blue-chip"
	ClassOther    Classification = "other"
)

// IsValidClassification returns true if c is a supported classification tag.
func IsValidClassification(c Classification) bool {
	switch c {
	case ClassStable, ClassBlueChip, ClassOther:
		return true
	default:
		return false
	}
}

// Holding is one position in the model portfolio. Weight is the allocation
// fraction of total NAV; weights across the portfolio sum to 1.0.
type Holding struct {
	Token         string         `yaml:"token" json:"token" validate:"required"`
	CoingeckoID   string         `yaml:"coingecko_id" json:"coingecko_id" validate:"required"`
	DefillamaSlug string         `yaml:"defillama_slug" json:"defillama_slug,omitempty"`
	Weight        float64        `yaml:"weight" json:"weight" validate:"gt=0,lte=1"`
	Class         Classification `yaml:"class" json:"class" validate:"required"`
}

// IsStable reports whether the holding is a stablecoin sleeve.
func (h Holding) IsStable() bool { return h.Class == ClassStable }

// Portfolio is the static model portfolio evaluated on each refresh.
type Portfolio struct {
	StartingNAV float64   `yaml:"starting_nav" json:"starting_nav"`
	Holdings    []Holding `yaml:"holdings" json:"holdings" validate:"required,min=1,dive"`
}
