package utils

import (
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/financesaathi/expense-engine/dto"
)

// Fixed pools for synthetic records. Unlike the extractor's vendor table,
// the fallback path draws vendor and category independently.
var fallbackVendors = []string{
	"Swiggy", "Zomato", "Amazon", "Flipkart", "Uber", "Ola",
	"Airtel", "Jio", "Croma", "Reliance Digital",
}

var fallbackCategories = []dto.Category{
	dto.CategoryFood,
	dto.CategoryOffice,
	dto.CategoryTravel,
	dto.CategoryUtility,
	dto.CategoryGeneral,
}

var paymentMethods = []string{"UPI", "Credit Card", "Debit Card", "Net Banking", "Cash"}

const (
	minSyntheticAmount = 1250
	maxSyntheticAmount = 25000
)

// GenerateFallbackRecord produces a complete synthetic expense record for
// uploads where text acquisition itself failed. Confidence 0 flags the
// record as synthetic for downstream display.
func GenerateFallbackRecord(rng *rand.Rand, now time.Time) dto.ExpenseRecord {
	return dto.ExpenseRecord{
		Vendor:        fallbackVendors[rng.Intn(len(fallbackVendors))],
		Amount:        RandomAmount(rng),
		Category:      fallbackCategories[rng.Intn(len(fallbackCategories))],
		Date:          now.Format("2006-01-02"),
		InvoiceNumber: GenerateInvoiceNumber(rng, now),
		PaymentMethod: RandomPaymentMethod(rng),
		Confidence:    0,
	}
}

// RandomAmount draws a whole-rupee amount from the plausible invoice range.
func RandomAmount(rng *rand.Rand) decimal.Decimal {
	n := minSyntheticAmount + rng.Intn(maxSyntheticAmount-minSyntheticAmount+1)
	return decimal.NewFromInt(int64(n))
}

// RandomPaymentMethod picks uniformly from the fixed set; payment method is
// never parsed from document text.
func RandomPaymentMethod(rng *rand.Rand) string {
	return paymentMethods[rng.Intn(len(paymentMethods))]
}
