package rates

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
	"github.com/light-bringer/tariff-billing/internal/pkg/clock"
	"github.com/light-bringer/tariff-billing/internal/pkg/config"
)

type rateServer struct {
	*httptest.Server
	calls atomic.Int32
	down  atomic.Bool
}

func newRateServer(t *testing.T) *rateServer {
	s := &rateServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.calls.Add(1)
		if s.down.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		assert.Equal(t, "/latest", r.URL.Path)
		assert.Equal(t, "EUR", r.URL.Query().Get("base"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"base":"EUR","rates":{"USD":1.1,"GBP":0.85}}`))
	}))
	t.Cleanup(s.Close)
	return s
}

func newProvider(t *testing.T, url string, clk clock.Clock) *Provider {
	p, err := NewProvider(config.Rates{
		URL:       url,
		Timeout:   time.Second,
		MaxStale:  24 * time.Hour,
		CacheSize: 16,
		TTL:       time.Hour,
	}, clk, zap.NewNop())
	require.NoError(t, err)
	return p
}

func TestProvider_Rate(t *testing.T) {
	ctx := context.Background()
	srv := newRateServer(t)
	clk := clock.NewMockClock(time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC))
	p := newProvider(t, srv.URL, clk)

	t.Run("same currency never calls the source", func(t *testing.T) {
		rate, err := p.Rate(ctx, "EUR", "EUR")
		require.NoError(t, err)
		assert.Equal(t, "1", rate.String())
		assert.Zero(t, srv.calls.Load())
	})

	t.Run("fetches and caches the whole answer", func(t *testing.T) {
		rate, err := p.Rate(ctx, "EUR", "USD")
		require.NoError(t, err)
		assert.Equal(t, "1.1", rate.String())

		rate, err = p.Rate(ctx, "EUR", "GBP")
		require.NoError(t, err)
		assert.Equal(t, "0.85", rate.String())
		assert.EqualValues(t, 1, srv.calls.Load())
	})

	t.Run("falls back to a stale rate", func(t *testing.T) {
		srv.down.Store(true)
		clk.Advance(2 * time.Hour)

		rate, err := p.Rate(ctx, "EUR", "USD")
		require.NoError(t, err)
		assert.Equal(t, "1.1", rate.String())
	})

	t.Run("too stale is unavailable", func(t *testing.T) {
		clk.Advance(48 * time.Hour)

		_, err := p.Rate(ctx, "EUR", "USD")
		assert.ErrorIs(t, err, domain.ErrRateUnavailable)
	})

	t.Run("unknown target is unavailable", func(t *testing.T) {
		srv.down.Store(false)

		_, err := p.Rate(ctx, "EUR", "JPY")
		assert.ErrorIs(t, err, domain.ErrRateUnavailable)
	})
}

func TestProvider_NoSource(t *testing.T) {
	p := newProvider(t, "", clock.NewRealClock())

	_, err := p.Rate(context.Background(), "EUR", "USD")
	assert.ErrorIs(t, err, domain.ErrRateUnavailable)
}
