package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/velora-shop/velora-backend/models"
)

const (
	TaxRate         = 0.08
	baseShippingUSD = 9.99
)

// countryCurrency maps ISO-3166 alpha-2 codes to the currency orders are
// priced in. Anything not listed settles in USD.
var countryCurrency = map[string]string{
	"US": "USD",
	"IN": "INR",
	"GB": "GBP",
	"DE": "EUR",
	"FR": "EUR",
	"IT": "EUR",
	"ES": "EUR",
	"NL": "EUR",
	"CA": "CAD",
	"AU": "AUD",
	"JP": "JPY",
	"AE": "AED",
	"SG": "SGD",
}

// freeShippingThresholds are maintained per currency rather than converted,
// so marketing can pick round numbers (₹4000, not ₹4163.20).
var freeShippingThresholds = map[string]float64{
	"USD": 50,
	"INR": 4000,
	"EUR": 45,
	"GBP": 40,
	"CAD": 65,
	"AUD": 75,
	"JPY": 7500,
	"AED": 180,
	"SGD": 65,
}

func CurrencyForCountry(code string) string {
	if cur, ok := countryCurrency[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return cur
	}
	return "USD"
}

func FreeShippingThreshold(currency string, rate float64) float64 {
	if t, ok := freeShippingThresholds[currency]; ok {
		return t
	}
	return Round2(50 * rate)
}

// Round2 rounds to two decimals, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

type PricedItem struct {
	UnitPriceUSD float64
	Quantity     int
}

// ComputePricing converts USD base prices into the order currency and builds
// the pricing breakdown: per-unit prices rounded after conversion, 8% tax on
// the subtotal, and a flat shipping fee waived above the currency's
// free-shipping threshold.
func ComputePricing(items []PricedItem, currency string, rate float64) models.Pricing {
	var subtotal float64
	for _, it := range items {
		subtotal += Round2(it.UnitPriceUSD*rate) * float64(it.Quantity)
	}
	subtotal = Round2(subtotal)

	tax := Round2(subtotal * TaxRate)

	shipping := 0.0
	if subtotal < FreeShippingThreshold(currency, rate) {
		shipping = Round2(baseShippingUSD * rate)
	}

	return models.Pricing{
		Currency: currency,
		Rate:     rate,
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Total:    Round2(subtotal + tax + shipping),
	}
}

// RateFetcher resolves the USD→currency multiplier from an upstream API.
type RateFetcher func(ctx context.Context, currency string) (float64, error)

type rateEntry struct {
	rate      float64
	fetchedAt time.Time
	failed    bool
}

// RateCache memoizes FX rates per currency for a fixed TTL. The fetch-if-stale
// check runs under the lock, so concurrent requests after expiry cannot issue
// duplicate upstream fetches. A failed fetch caches rate 1 for one minute.
type RateCache struct {
	mu      sync.Mutex
	fetch   RateFetcher
	ttl     time.Duration
	entries map[string]rateEntry
	now     func() time.Time
}

func NewRateCache(fetch RateFetcher, ttl time.Duration) *RateCache {
	return &RateCache{
		fetch:   fetch,
		ttl:     ttl,
		entries: make(map[string]rateEntry),
		now:     time.Now,
	}
}

func (rc *RateCache) Rate(ctx context.Context, currency string) float64 {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" || currency == "USD" {
		return 1
	}

	rc.mu.Lock()
	defer rc.mu.Unlock()

	now := rc.now()
	if e, ok := rc.entries[currency]; ok {
		ttl := rc.ttl
		if e.failed {
			ttl = time.Minute
		}
		if now.Sub(e.fetchedAt) < ttl {
			return e.rate
		}
	}

	rate, err := rc.fetch(ctx, currency)
	if err != nil || rate <= 0 {
		// Fall back to settling in USD; retry after a minute.
		rc.entries[currency] = rateEntry{rate: 1, fetchedAt: now, failed: true}
		return 1
	}

	rc.entries[currency] = rateEntry{rate: rate, fetchedAt: now}
	return rate
}

// NewHTTPRateFetcher calls the configured FX rates API
// (FX_API_URL, FX_API_KEY). The response is expected to carry a
// {"rates": {"INR": 83.2, ...}} object with USD as base.
func NewHTTPRateFetcher(client *http.Client) RateFetcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return func(ctx context.Context, currency string) (float64, error) {
		baseURL := os.Getenv("FX_API_URL")
		if baseURL == "" {
			return 0, fmt.Errorf("FX_API_URL not configured")
		}

		url := fmt.Sprintf("%s?base=USD&symbols=%s", strings.TrimRight(baseURL, "/"), currency)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return 0, err
		}
		if key := os.Getenv("FX_API_KEY"); key != "" {
			req.Header.Set("apikey", key)
		}

		resp, err := client.Do(req)
		if err != nil {
			return 0, fmt.Errorf("fx fetch: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return 0, fmt.Errorf("fx fetch: status %d", resp.StatusCode)
		}

		var body struct {
			Rates map[string]float64 `json:"rates"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return 0, fmt.Errorf("fx decode: %w", err)
		}

		rate, ok := body.Rates[currency]
		if !ok {
			return 0, fmt.Errorf("fx fetch: no rate for %s", currency)
		}
		return rate, nil
	}
}
