package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"

	"RiskPulse/internal/domain/models"
	"RiskPulse/internal/risk"
	"RiskPulse/pkg/util"
)

// ErrInvalid marks configuration errors that are fatal at startup.
var ErrInvalid = errors.New("invalid config")

const weightTolerance = 1e-6

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Coingecko struct {
		BaseURL string        `yaml:"base_url" default:"https://api.coingecko.com/api/v3"`
		APIKey  string        `yaml:"api_key"`
		Timeout time.Duration `yaml:"timeout" default:"25s"`
		// Attempts is the total tries per call: 2 means one retry.
		Attempts     int     `yaml:"attempts" default:"2"`
		RateCapacity float64 `yaml:"rate_capacity" default:"10"`
		RatePerSec   float64 `yaml:"rate_per_sec" default:"0.5"`
	} `yaml:"coingecko"`
	Defillama struct {
		BaseURL  string        `yaml:"base_url" default:"https://api.llama.fi"`
		Timeout  time.Duration `yaml:"timeout" default:"25s"`
		Attempts int           `yaml:"attempts" default:"2"`
	} `yaml:"defillama"`
	Cache struct {
		HistoryTTL time.Duration `yaml:"history_ttl" default:"10m"`
		Redis      struct {
			Enabled  bool   `yaml:"enabled"`
			Host     string `yaml:"host" default:"localhost"`
			Port     int    `yaml:"port" default:"6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Model struct {
		HistoryDays          int  `yaml:"history_days" default:"90"`
		VolWindow            int  `yaml:"vol_window" default:"30"`
		ExcludeStablesForVol bool `yaml:"exclude_stables_for_vol" default:"true"`

		Portfolio models.Portfolio `yaml:"portfolio"`
		Risk      risk.Model       `yaml:"risk"`
	} `yaml:"model"`
}

// Load reads and parses a YAML configuration file, applies defaults and
// validates. Invalid configuration is fatal at startup.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	if c.Model.Portfolio.StartingNAV == 0 {
		c.Model.Portfolio.StartingNAV = 100_000
	}
	if len(c.Model.Risk.Horizons) == 0 {
		c.Model.Risk.Horizons = risk.DefaultHorizons()
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("COINGECKO_API_KEY"); v != "" {
		c.Coingecko.APIKey = v
	}
	if v := os.Getenv("COINGECKO_BASE"); v != "" {
		c.Coingecko.BaseURL = v
	}
	if v := os.Getenv("DEFILLAMA_BASE"); v != "" {
		c.Defillama.BaseURL = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = util.ParseIntDefault(v, c.Server.Port)
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Enabled = true
		host, port := splitHostPort(v, c.Cache.Redis.Port)
		c.Cache.Redis.Host = host
		c.Cache.Redis.Port = port
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("%w: environment is required", ErrInvalid)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalid, c.Server.Port)
	}
	if c.Coingecko.Attempts < 1 {
		return fmt.Errorf("%w: coingecko.attempts must be >= 1", ErrInvalid)
	}
	if c.Model.VolWindow < 2 {
		return fmt.Errorf("%w: model.vol_window must be >= 2", ErrInvalid)
	}
	if c.Model.HistoryDays < c.Model.VolWindow {
		return fmt.Errorf("%w: model.history_days must cover the vol window", ErrInvalid)
	}
	if err := validatePortfolio(c.Model.Portfolio); err != nil {
		return err
	}
	return validateModel(c.Model.Risk)
}

func validatePortfolio(p models.Portfolio) error {
	if len(p.Holdings) == 0 {
		return fmt.Errorf("%w: portfolio.holdings cannot be empty", ErrInvalid)
	}
	seen := make(map[string]bool, len(p.Holdings))
	var sum float64
	for _, h := range p.Holdings {
		if h.Token == "" || h.CoingeckoID == "" {
			return fmt.Errorf("%w: holding token and coingecko_id are required", ErrInvalid)
		}
		if seen[h.Token] {
			return fmt.Errorf("%w: duplicate holding %s", ErrInvalid, h.Token)
		}
		seen[h.Token] = true
		if !models.IsValidClassification(h.Class) {
			return fmt.Errorf("%w: holding %s has unknown class %q", ErrInvalid, h.Token, h.Class)
		}
		if h.Weight <= 0 || h.Weight > 1 {
			return fmt.Errorf("%w: holding %s weight %v out of (0,1]", ErrInvalid, h.Token, h.Weight)
		}
		sum += h.Weight
	}
	if math.Abs(sum-1.0) > weightTolerance {
		return fmt.Errorf("%w: allocation weights sum to %.6f, want 1.0", ErrInvalid, sum)
	}
	return nil
}

func validateModel(m risk.Model) error {
	mix := m.MarketVolWeight + m.MarketCapWeight + m.MarketCorrWeight
	if math.Abs(mix-1.0) > weightTolerance {
		return fmt.Errorf("%w: market sub-score weights sum to %.6f, want 1.0", ErrInvalid, mix)
	}
	t := m.Tiers
	ordered := t.VolLow < t.VolHigh && t.CapMid < t.CapLarge &&
		t.CorrLow < t.CorrHigh && t.LiqRatioLow < t.LiqRatioHigh && t.TVLMid < t.TVLLarge
	if !ordered {
		return fmt.Errorf("%w: tier thresholds must be strictly increasing", ErrInvalid)
	}
	for _, horizon := range models.Horizons() {
		weights, ok := m.Horizons[horizon]
		if !ok {
			return fmt.Errorf("%w: horizon %s weights missing", ErrInvalid, horizon)
		}
		var sum float64
		for cat, w := range weights {
			valid := false
			for _, known := range models.Categories() {
				if cat == known {
					valid = true
					break
				}
			}
			if !valid {
				return fmt.Errorf("%w: horizon %s has unknown category %q", ErrInvalid, horizon, cat)
			}
			sum += w
		}
		if math.Abs(sum-1.0) > weightTolerance {
			return fmt.Errorf("%w: horizon %s weights sum to %.6f, want 1.0", ErrInvalid, horizon, sum)
		}
	}
	for horizon := range m.Horizons {
		if !models.IsValidHorizon(horizon) {
			return fmt.Errorf("%w: unknown horizon %q", ErrInvalid, horizon)
		}
	}
	return nil
}

func splitHostPort(addr string, defPort int) (string, int) {
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			if p, err := strconv.Atoi(addr[i+1:]); err == nil {
				return addr[:i], p
			}
			return addr[:i], defPort
		}
	}
	return addr, defPort
}
