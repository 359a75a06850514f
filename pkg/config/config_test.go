package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RiskPulse/internal/domain/models"
	"RiskPulse/internal/risk"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const minimalConfig = `
model:
  portfolio:
    holdings:
      - { token: BTC, coingecko_id: bitcoin, weight: 0.6, class: blue-chip }
      - { token: USDC, coingecko_id: usd-coin, weight: 0.4, class: stable }
`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "https://api.coingecko.com/api/v3", cfg.Coingecko.BaseURL)
	assert.Equal(t, 2, cfg.Coingecko.Attempts)
	assert.Equal(t, 90, cfg.Model.HistoryDays)
	assert.Equal(t, 30, cfg.Model.VolWindow)
	assert.Equal(t, 100_000.0, cfg.Model.Portfolio.StartingNAV)
	assert.Equal(t, risk.DefaultHorizons(), cfg.Model.Risk.Horizons)
	assert.Equal(t, 0.5, cfg.Model.Risk.Tiers.VolLow)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadWeightsMustSumToOne(t *testing.T) {
	_, err := Load(writeConfig(t, `
model:
  portfolio:
    holdings:
      - { token: BTC, coingecko_id: bitcoin, weight: 0.6, class: blue-chip }
      - { token: ETH, coingecko_id: ethereum, weight: 0.3, class: blue-chip }
`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "sum")
}

func TestLoadRejectsUnknownClass(t *testing.T) {
	_, err := Load(writeConfig(t, `
model:
  portfolio:
    holdings:
      - { token: BTC, coingecko_id: bitcoin, weight: 1.0, class: memecoin }
`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLoadRejectsDuplicateTokens(t *testing.T) {
	_, err := Load(writeConfig(t, `
model:
  portfolio:
    holdings:
      - { token: BTC, coingecko_id: bitcoin, weight: 0.5, class: blue-chip }
      - { token: BTC, coingecko_id: bitcoin, weight: 0.5, class: blue-chip }
`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLoadRejectsEmptyPortfolio(t *testing.T) {
	_, err := Load(writeConfig(t, "environment: production\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLoadRejectsBadHorizonWeights(t *testing.T) {
	_, err := Load(writeConfig(t, minimalConfig+`
  risk:
    horizons:
      short:  { market: 0.9, liquidity: 0.4, protocol: 0.1, regulatory: 0.1 }
      medium: { market: 0.3, liquidity: 0.2, protocol: 0.3, regulatory: 0.2 }
      long:   { market: 0.2, liquidity: 0.1, protocol: 0.4, regulatory: 0.3 }
`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "short")
}

func TestLoadRejectsMissingHorizon(t *testing.T) {
	_, err := Load(writeConfig(t, minimalConfig+`
  risk:
    horizons:
      short: { market: 0.4, liquidity: 0.4, protocol: 0.1, regulatory: 0.1 }
`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLoadRejectsUnorderedTiers(t *testing.T) {
	_, err := Load(writeConfig(t, minimalConfig+`
  risk:
    tiers:
      vol_low: 2.0
      vol_high: 1.0
`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "tier")
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("COINGECKO_API_KEY", "cg-test-key")
	t.Setenv("COINGECKO_BASE", "http://localhost:9999/v3")
	t.Setenv("PORT", "9090")
	t.Setenv("REDIS_ADDR", "redis.internal:6380")

	cfg, err := LoadWithEnv(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "cg-test-key", cfg.Coingecko.APIKey)
	assert.Equal(t, "http://localhost:9999/v3", cfg.Coingecko.BaseURL)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.Cache.Redis.Enabled)
	assert.Equal(t, "redis.internal", cfg.Cache.Redis.Host)
	assert.Equal(t, 6380, cfg.Cache.Redis.Port)
}

func TestValidateHorizonEmphasisSafe(t *testing.T) {
	// tilting market weight must stay a valid distribution
	base := risk.DefaultHorizons()
	tilted := risk.EmphasizeMarket(base, models.HorizonShort, 0.1)
	var sum float64
	for _, w := range tilted[models.HorizonShort] {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, weightTolerance)
}
