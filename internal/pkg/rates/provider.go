package rates

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
	"github.com/light-bringer/tariff-billing/internal/pkg/clock"
	"github.com/light-bringer/tariff-billing/internal/pkg/config"
)

// latestAnswer is the JSON body of GET {url}/latest?base=XXX.
type latestAnswer struct {
	Base  string                     `json:"base"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

type cachedRate struct {
	rate      decimal.Decimal
	fetchedAt time.Time
}

// Provider fetches exchange rates over HTTP and caches them. A rate
// younger than ttl is served from the cache; when a fetch fails a cached
// rate younger than maxStale is used instead.
type Provider struct {
	client   *resty.Client
	url      string
	cache    *lru.Cache[string, cachedRate]
	ttl      time.Duration
	maxStale time.Duration
	clock    clock.Clock
	logger   *zap.Logger
}

// NewProvider creates a new Provider.
func NewProvider(cfg config.Rates, clk clock.Clock, logger *zap.Logger) (*Provider, error) {
	cache, err := lru.New[string, cachedRate](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate cache: %w", err)
	}
	return &Provider{
		client:   resty.New().SetTimeout(cfg.Timeout),
		url:      cfg.URL,
		cache:    cache,
		ttl:      cfg.TTL,
		maxStale: cfg.MaxStale,
		clock:    clk,
		logger:   logger,
	}, nil
}

func cacheKey(base, target domain.Currency) string {
	return string(base) + "/" + string(target)
}

// Rate returns how many units of target one unit of base buys.
func (p *Provider) Rate(ctx context.Context, base, target domain.Currency) (decimal.Decimal, error) {
	if base == target {
		return decimal.NewFromInt(1), nil
	}

	now := p.clock.Now()
	key := cacheKey(base, target)
	cached, ok := p.cache.Get(key)
	if ok && now.Sub(cached.fetchedAt) < p.ttl {
		return cached.rate, nil
	}

	rate, err := p.fetch(ctx, base, target, now)
	if err == nil {
		return rate, nil
	}

	if ok && now.Sub(cached.fetchedAt) <= p.maxStale {
		p.logger.Warn("serving stale exchange rate",
			zap.String("base", string(base)),
			zap.String("target", string(target)),
			zap.Time("fetched_at", cached.fetchedAt),
			zap.Error(err),
		)
		return cached.rate, nil
	}
	return decimal.Zero, fmt.Errorf("%w: %s/%s: %v", domain.ErrRateUnavailable, base, target, err)
}

// fetch loads all rates for base and caches them.
func (p *Provider) fetch(ctx context.Context, base, target domain.Currency, now time.Time) (decimal.Decimal, error) {
	if p.url == "" {
		return decimal.Zero, fmt.Errorf("no rate source configured")
	}

	var answer latestAnswer
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParam("base", string(base)).
		SetResult(&answer).
		Get(p.url + "/latest")
	if err != nil {
		return decimal.Zero, err
	}
	if resp.StatusCode() != http.StatusOK {
		return decimal.Zero, fmt.Errorf("rates request status: %d", resp.StatusCode())
	}

	for code, rate := range answer.Rates {
		if !rate.IsPositive() {
			continue
		}
		p.cache.Add(cacheKey(base, domain.Currency(code)), cachedRate{rate: rate, fetchedAt: now})
	}

	rate, ok := answer.Rates[string(target)]
	if !ok || !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("no rate for %s in answer", target)
	}
	return rate, nil
}
