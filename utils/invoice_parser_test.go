package utils

import (
	"math/rand"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/financesaathi/expense-engine/dto"
)

var testNow = time.Date(2025, time.August, 28, 12, 0, 0, 0, time.UTC)

func testRNG() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

func TestParseAmountLabeledTotal(t *testing.T) {
	text := `
		Swiggy Order #12345
		2x Paneer Roll ₹1,180.00
		Grand Total: ₹1,250.50
	`

	amount := ParseAmount(text)

	assert.Equal(t, "1250.5", amount.String())
}

func TestParseAmountLabeledBeatsLargerBareFigure(t *testing.T) {
	text := `
		Some line with ₹9,999.00
		Total: Rs. 1,234.00
		Another figure ₹5,000.00
	`

	amount := ParseAmount(text)

	assert.Equal(t, "1234", amount.String())
}

func TestParseAmountMaxOfBareFigures(t *testing.T) {
	text := `
		Line item one ₹500
		Line item two ₹12,000
		Line item three ₹3,000
	`

	amount := ParseAmount(text)

	assert.Equal(t, "12000", amount.String())
}

func TestParseAmountNoMatch(t *testing.T) {
	amount := ParseAmount("nothing numeric about money here")

	assert.True(t, amount.IsZero())
}

func TestParseInvoiceDate(t *testing.T) {
	date := ParseInvoiceDate("Invoice dated 5/1/25 for services", testNow)

	assert.Equal(t, "2025-01-05", date)
}

func TestParseInvoiceDateFourDigitYear(t *testing.T) {
	date := ParseInvoiceDate("Date: 15-10-2024", testNow)

	assert.Equal(t, "2024-10-15", date)
}

func TestParseInvoiceDateDefaultsToToday(t *testing.T) {
	date := ParseInvoiceDate("no date anywhere", testNow)

	assert.Equal(t, "2025-08-28", date)
}

func TestDetectVendorFromText(t *testing.T) {
	vendor, category := DetectVendor("SWIGGY ORDER CONFIRMATION", "receipt.png")

	assert.Equal(t, "Swiggy", vendor)
	assert.Equal(t, dto.CategoryFood, category)
}

func TestDetectVendorFromFilename(t *testing.T) {
	vendor, category := DetectVendor("illegible scan", "uber-trip-receipt.pdf")

	assert.Equal(t, "Uber", vendor)
	assert.Equal(t, dto.CategoryTravel, category)
}

func TestDetectVendorUnknown(t *testing.T) {
	vendor, category := DetectVendor("Corner tea stall bill", "scan001.jpg")

	assert.Equal(t, dto.UnknownVendor, vendor)
	assert.Equal(t, dto.CategoryGeneral, category)
}

func TestExtractInvoiceFieldsHighConfidence(t *testing.T) {
	text := `
		Zomato Order
		Date: 12/08/2025
		Grand Total: ₹840.00
	`

	rec := ExtractInvoiceFields(text, 92, "zomato.png", testRNG(), testNow)

	assert.Equal(t, "Zomato", rec.Vendor)
	assert.Equal(t, dto.CategoryFood, rec.Category)
	assert.Equal(t, "840", rec.Amount.String())
	assert.Equal(t, "2025-08-12", rec.Date)
	assert.Equal(t, 92.0, rec.Confidence)
}

func TestLowConfidenceOverrideReplacesAmount(t *testing.T) {
	text := "Airtel Postpaid Bill Total: ₹30,000.00"

	rec := ExtractInvoiceFields(text, 45, "airtel.png", testRNG(), testNow)

	// The parsed 30000 must not survive a low-confidence extraction; the
	// redraw range tops out at 25000.
	assert.NotEqual(t, "30000", rec.Amount.String())
	assertSyntheticRange(t, rec)
	// Vendor was resolved, so it is kept even though the amount is redrawn.
	assert.Equal(t, "Airtel", rec.Vendor)
	assert.Equal(t, dto.CategoryUtility, rec.Category)
}

func TestZeroAmountOverrideFiresAtHighConfidence(t *testing.T) {
	rec := ExtractInvoiceFields("Flipkart order, no price printed", 90, "flipkart.png", testRNG(), testNow)

	assert.True(t, rec.Amount.IsPositive())
	assertSyntheticRange(t, rec)
	assert.Equal(t, "Flipkart", rec.Vendor)
}

func TestOverrideRedrawsUnknownVendor(t *testing.T) {
	rec := ExtractInvoiceFields("completely garbled", 10, "blur.jpg", testRNG(), testNow)

	assert.NotEqual(t, dto.UnknownVendor, rec.Vendor)
	assert.Equal(t, CategoryForVendor(rec.Vendor), rec.Category)
	assertSyntheticRange(t, rec)
}

func TestInvoiceNumberIsAlwaysGenerated(t *testing.T) {
	text := "Invoice Number: ZM-998877 Total: ₹500.00 swiggy"

	rec := ExtractInvoiceFields(text, 95, "inv.png", testRNG(), testNow)

	assert.Regexp(t, regexp.MustCompile(`^INV-2025-\d{3}$`), rec.InvoiceNumber)
	assert.NotContains(t, rec.InvoiceNumber, "ZM-998877")
}

func TestSnippetTruncation(t *testing.T) {
	text := strings.Repeat("x", 1200) + " swiggy Total: ₹100.00"

	rec := ExtractInvoiceFields(text, 95, "long.png", testRNG(), testNow)

	assert.Len(t, rec.ExtractedTextSnippet, 500)
}

func assertSyntheticRange(t *testing.T, rec dto.ExpenseRecord) {
	t.Helper()
	n := rec.Amount.IntPart()
	assert.GreaterOrEqual(t, n, int64(1250))
	assert.LessOrEqual(t, n, int64(25000))
}
