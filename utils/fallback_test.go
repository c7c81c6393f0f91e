package utils

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateFallbackRecord(t *testing.T) {
	rec := GenerateFallbackRecord(testRNG(), testNow)

	assert.Contains(t, fallbackVendors, rec.Vendor)
	assert.Contains(t, fallbackCategories, rec.Category)
	assert.Contains(t, paymentMethods, rec.PaymentMethod)
	assert.Equal(t, "2025-08-28", rec.Date)
	assert.Equal(t, 0.0, rec.Confidence)
	assertSyntheticRange(t, rec)
}

func TestGenerateFallbackRecordDeterministicWithSeed(t *testing.T) {
	a := GenerateFallbackRecord(rand.New(rand.NewSource(7)), testNow)
	b := GenerateFallbackRecord(rand.New(rand.NewSource(7)), testNow)

	assert.Equal(t, a, b)
}

func TestRandomAmountStaysInRange(t *testing.T) {
	rng := testRNG()
	for i := 0; i < 1000; i++ {
		n := RandomAmount(rng).IntPart()
		assert.GreaterOrEqual(t, n, int64(1250))
		assert.LessOrEqual(t, n, int64(25000))
	}
}

func TestRandomPaymentMethod(t *testing.T) {
	rng := testRNG()
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		m := RandomPaymentMethod(rng)
		assert.Contains(t, paymentMethods, m)
		seen[m] = true
	}
	// Uniform draw over five options should hit all of them in 200 tries.
	assert.Len(t, seen, len(paymentMethods))
}
