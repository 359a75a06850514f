package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefiLlamaTVL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tvl/aave-v3", r.URL.Path)
		// the /tvl endpoint returns a bare number
		w.Write([]byte(`12345678901.5`))
	}))
	defer srv.Close()

	dl := NewDefiLlama(testConfig(srv.URL))
	tvl, err := dl.TVL(context.Background(), "aave-v3")
	require.NoError(t, err)
	assert.Equal(t, 12345678901.5, tvl)
}

func TestDefiLlamaTVLEmptySlug(t *testing.T) {
	dl := NewDefiLlama(testConfig("http://unused.invalid"))
	_, err := dl.TVL(context.Background(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetch)
}

func TestDefiLlamaTVLRetriesThenFails(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	dl := NewDefiLlama(testConfig(srv.URL))
	_, err := dl.TVL(context.Background(), "uniswap-v3")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetch)
	assert.Equal(t, int32(2), calls.Load())
}

func TestDefiLlamaTVLRecoversOnRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`250000000`))
	}))
	defer srv.Close()

	dl := NewDefiLlama(testConfig(srv.URL))
	tvl, err := dl.TVL(context.Background(), "pendle")
	require.NoError(t, err)
	assert.Equal(t, 2.5e8, tvl)
}
