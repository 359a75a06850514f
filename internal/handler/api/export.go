package api

import (
	"github.com/gocarina/gocsv"

	models "RiskPulse/internal/domain/models"
)

// exportRow mirrors the dashboard table columns of one holding.
type exportRow struct {
	Token        string   `csv:"Token"`
	Class        string   `csv:"Class"`
	AllocPct     float64  `csv:"Alloc_%"`
	Price        *float64 `csv:"Price"`
	MarketCap    *float64 `csv:"MktCap"`
	Volume24h    *float64 `csv:"Vol24h"`
	TVL          *float64 `csv:"TVL"`
	Volatility   *float64 `csv:"Volatility_30d"`
	CorrBTC      *float64 `csv:"Corr_BTC"`
	CorrETH      *float64 `csv:"Corr_ETH"`
	MarketRisk   float64  `csv:"Market_Risk"`
	Liquidity    float64  `csv:"Liquidity_Risk"`
	Protocol     float64  `csv:"Protocol_Risk"`
	Regulatory   float64  `csv:"Regulatory_Risk"`
	ShortRisk    float64  `csv:"ShortTerm_Risk"`
	MediumRisk   float64  `csv:"MediumTerm_Risk"`
	LongRisk     float64  `csv:"LongTerm_Risk"`
	Degraded     bool     `csv:"Degraded"`
}

func renderCSV(res models.PortfolioAssessment) (string, error) {
	rows := make([]exportRow, 0, len(res.Holdings))
	for _, ha := range res.Holdings {
		rows = append(rows, exportRow{
			Token:      ha.Token,
			Class:      string(ha.Class),
			AllocPct:   ha.Weight * 100,
			Price:      ha.Snapshot.Price,
			MarketCap:  ha.Snapshot.MarketCap,
			Volume24h:  ha.Snapshot.Volume24h,
			TVL:        ha.Snapshot.TVL,
			Volatility: ha.Snapshot.Volatility30d,
			CorrBTC:    ha.Snapshot.CorrBTC,
			CorrETH:    ha.Snapshot.CorrETH,
			MarketRisk: ha.Scores[models.CategoryMarket],
			Liquidity:  ha.Scores[models.CategoryLiquidity],
			Protocol:   ha.Scores[models.CategoryProtocol],
			Regulatory: ha.Scores[models.CategoryRegulatory],
			ShortRisk:  ha.Composites[models.HorizonShort],
			MediumRisk: ha.Composites[models.HorizonMedium],
			LongRisk:   ha.Composites[models.HorizonLong],
			Degraded:   ha.Degraded,
		})
	}
	return gocsv.MarshalString(&rows)
}
