package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputePricingUSD(t *testing.T) {
	items := []PricedItem{
		{UnitPriceUSD: 10, Quantity: 2},
		{UnitPriceUSD: 25, Quantity: 1},
	}

	p := ComputePricing(items, "USD", 1)

	assert.Equal(t, 45.00, p.Subtotal)
	assert.Equal(t, 3.60, p.Tax)
	assert.Equal(t, 9.99, p.Shipping)
	assert.Equal(t, 58.59, p.Total)
	assert.Equal(t, "USD", p.Currency)
}

func TestComputePricingFreeShipping(t *testing.T) {
	items := []PricedItem{{UnitPriceUSD: 50, Quantity: 1}}

	p := ComputePricing(items, "USD", 1)

	assert.Equal(t, 50.00, p.Subtotal)
	assert.Equal(t, 0.0, p.Shipping)
	assert.Equal(t, 54.00, p.Total)
}

func TestComputePricingConvertedCurrency(t *testing.T) {
	// ₹4000 threshold applies to the converted subtotal
	items := []PricedItem{{UnitPriceUSD: 40, Quantity: 1}}

	p := ComputePricing(items, "INR", 83.20)

	assert.Equal(t, 3328.00, p.Subtotal)
	assert.Equal(t, Round2(9.99*83.20), p.Shipping)
	assert.Equal(t, "INR", p.Currency)

	// above the threshold shipping is waived
	big := ComputePricing([]PricedItem{{UnitPriceUSD: 60, Quantity: 1}}, "INR", 83.20)
	assert.Equal(t, 0.0, big.Shipping)
}

func TestComputePricingUnknownCurrencyThreshold(t *testing.T) {
	// no configured threshold: 50 USD converted at the current rate
	assert.Equal(t, 100.0, FreeShippingThreshold("XYZ", 2))
	assert.Equal(t, 50.0, FreeShippingThreshold("USD", 1))
	assert.Equal(t, 4000.0, FreeShippingThreshold("INR", 83.20))
}

func TestCurrencyForCountry(t *testing.T) {
	assert.Equal(t, "USD", CurrencyForCountry("US"))
	assert.Equal(t, "INR", CurrencyForCountry("in"))
	assert.Equal(t, "EUR", CurrencyForCountry(" DE "))
	assert.Equal(t, "USD", CurrencyForCountry("BR"))
	assert.Equal(t, "USD", CurrencyForCountry(""))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 3.60, Round2(3.6000000000000005))
	assert.Equal(t, 10.0, Round2(9.999))
	assert.Equal(t, 3.14, Round2(3.14159))
	assert.Equal(t, 0.0, Round2(0))
}

func TestRateCacheUSDShortCircuit(t *testing.T) {
	calls := 0
	rc := NewRateCache(func(ctx context.Context, currency string) (float64, error) {
		calls++
		return 2, nil
	}, time.Hour)

	assert.Equal(t, 1.0, rc.Rate(context.Background(), "USD"))
	assert.Equal(t, 1.0, rc.Rate(context.Background(), ""))
	assert.Equal(t, 0, calls)
}

func TestRateCacheCachesWithinTTL(t *testing.T) {
	calls := 0
	rc := NewRateCache(func(ctx context.Context, currency string) (float64, error) {
		calls++
		return 83.20, nil
	}, time.Hour)

	current := time.Now()
	rc.now = func() time.Time { return current }

	require.Equal(t, 83.20, rc.Rate(context.Background(), "INR"))
	require.Equal(t, 83.20, rc.Rate(context.Background(), "INR"))
	assert.Equal(t, 1, calls)

	// past the TTL the rate is fetched again
	current = current.Add(time.Hour + time.Second)
	require.Equal(t, 83.20, rc.Rate(context.Background(), "INR"))
	assert.Equal(t, 2, calls)
}

func TestRateCacheFailureFallsBackToUSD(t *testing.T) {
	calls := 0
	rc := NewRateCache(func(ctx context.Context, currency string) (float64, error) {
		calls++
		return 0, errors.New("upstream down")
	}, time.Hour)

	current := time.Now()
	rc.now = func() time.Time { return current }

	assert.Equal(t, 1.0, rc.Rate(context.Background(), "EUR"))
	assert.Equal(t, 1, calls)

	// the failure is cached for a minute, not the full TTL
	current = current.Add(30 * time.Second)
	assert.Equal(t, 1.0, rc.Rate(context.Background(), "EUR"))
	assert.Equal(t, 1, calls)

	current = current.Add(31 * time.Second)
	assert.Equal(t, 1.0, rc.Rate(context.Background(), "EUR"))
	assert.Equal(t, 2, calls)
}

func TestRateCacheRejectsNonPositiveRate(t *testing.T) {
	rc := NewRateCache(func(ctx context.Context, currency string) (float64, error) {
		return -3, nil
	}, time.Hour)

	assert.Equal(t, 1.0, rc.Rate(context.Background(), "GBP"))
}
