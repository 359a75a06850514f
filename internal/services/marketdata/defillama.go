package marketdata

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	drepo "RiskPulse/internal/domain/repository"
	"RiskPulse/pkg/config"
	xhttp "RiskPulse/pkg/http"
)

// DefiLlama implements TVLSource against the DefiLlama REST API. The /tvl
// endpoint returns a bare number per protocol slug.
type DefiLlama struct {
	baseURL  string
	attempts int
	client   *xhttp.Client
}

// NewDefiLlama creates a DefiLlama TVL source from config.
func NewDefiLlama(cfg *config.Config) *DefiLlama {
	return &DefiLlama{
		baseURL:  strings.TrimRight(cfg.Defillama.BaseURL, "/"),
		attempts: cfg.Defillama.Attempts,
		client:   xhttp.NewClient(xhttp.WithTimeout(cfg.Defillama.Timeout)),
	}
}

// TVL fetches total value locked for a protocol slug.
func (d *DefiLlama) TVL(ctx context.Context, slug string) (float64, error) {
	if slug == "" {
		return 0, fmt.Errorf("%w: empty slug", ErrFetch)
	}

	var tvl float64
	var err error
	for attempt := 1; attempt <= d.attempts; attempt++ {
		err = d.client.SendAndParse(ctx, &xhttp.RequestOptions{
			Method: xhttp.MethodGet,
			URL:    d.baseURL + "/tvl/" + slug,
		}, &tvl)
		if err == nil {
			return tvl, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			break
		}
		select {
		case <-time.After(time.Duration(attempt) * 250 * time.Millisecond):
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	return 0, fmt.Errorf("%w: tvl %s: %v", ErrFetch, slug, err)
}

var _ drepo.TVLSource = (*DefiLlama)(nil)
