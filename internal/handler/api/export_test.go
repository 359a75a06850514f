package api

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	models "RiskPulse/internal/domain/models"
)

func TestRenderCSV(t *testing.T) {
	res := models.PortfolioAssessment{
		Holdings: []models.HoldingAssessment{
			{
				Token:  "BTC",
				Class:  models.ClassBlueChip,
				Weight: 0.6,
				Snapshot: models.MarketSnapshot{
					Token:         "BTC",
					Price:         models.Float(50000),
					MarketCap:     models.Float(1.2e12),
					Volume24h:     models.Float(4e10),
					Volatility30d: models.Float(0.62),
				},
				Scores: models.CategoryScores{
					models.CategoryMarket:     1.8,
					models.CategoryLiquidity:  3,
					models.CategoryProtocol:   5,
					models.CategoryRegulatory: 2,
				},
				Composites: map[models.Horizon]float64{
					models.HorizonShort:  2.62,
					models.HorizonMedium: 2.8,
					models.HorizonLong:   3.02,
				},
			},
		},
	}

	out, err := renderCSV(res)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t,
		"Token,Class,Alloc_%,Price,MktCap,Vol24h,TVL,Volatility_30d,Corr_BTC,Corr_ETH,"+
			"Market_Risk,Liquidity_Risk,Protocol_Risk,Regulatory_Risk,"+
			"ShortTerm_Risk,MediumTerm_Risk,LongTerm_Risk,Degraded",
		strings.TrimSpace(lines[0]))

	row := lines[1]
	assert.Contains(t, row, "BTC,blue-chip,60,")
	assert.Contains(t, row, "50000")
	assert.Contains(t, row, "2.62")
	// missing metrics export as empty cells, not zeros
	assert.Contains(t, row, ",,")
}

func TestRenderCSVEmpty(t *testing.T) {
	out, err := renderCSV(models.PortfolioAssessment{})
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 1)
	assert.Contains(t, lines[0], "Token,Class")
}
