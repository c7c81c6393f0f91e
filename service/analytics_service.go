package service

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/financesaathi/expense-engine/dto"
	"github.com/financesaathi/expense-engine/store"
)

// categoryOrder is the fixed iteration order used for top-category ties.
var categoryOrder = []dto.Category{
	dto.CategoryFood,
	dto.CategoryOffice,
	dto.CategoryTravel,
	dto.CategoryUtility,
	dto.CategoryGeneral,
}

const recentActivityLimit = 10

// AnalyticsService exposes the derived dashboard views. Every call
// recomputes from the full store snapshot; the store mutates between calls
// and nothing here caches.
type AnalyticsService struct {
	recordStore *store.RecordStore
	now         func() time.Time
}

func NewAnalyticsService(recordStore *store.RecordStore) *AnalyticsService {
	return &AnalyticsService{
		recordStore: recordStore,
		now:         time.Now,
	}
}

func (s *AnalyticsService) Summary() dto.ExpenseSummary {
	return Summarize(s.recordStore.Records(), s.now())
}

func (s *AnalyticsService) Breakdown() []dto.CategoryBreakdown {
	return BreakdownByCategory(s.recordStore.Records())
}

func (s *AnalyticsService) Search(query, category string) []dto.ExpenseRecord {
	return FilterRecords(s.recordStore.Records(), query, category)
}

func (s *AnalyticsService) Recent() []dto.ExpenseRecord {
	return RecentActivity(s.recordStore.Records())
}

// Summarize computes the dashboard summary cards over a record snapshot.
// An empty snapshot yields all zeroes and the General sentinel, never a
// division by zero.
func Summarize(records []dto.ExpenseRecord, now time.Time) dto.ExpenseSummary {
	summary := dto.ExpenseSummary{
		Total:              decimal.Zero,
		ThisMonth:          decimal.Zero,
		AverageTransaction: decimal.Zero,
		TopCategory:        dto.CategoryGeneral,
	}

	monthPrefix := now.Format("2006-01")
	byCategory := map[dto.Category]decimal.Decimal{}

	for _, rec := range records {
		summary.Total = summary.Total.Add(rec.Amount)
		if strings.HasPrefix(rec.Date, monthPrefix) {
			summary.ThisMonth = summary.ThisMonth.Add(rec.Amount)
		}
		byCategory[rec.Category] = byCategory[rec.Category].Add(rec.Amount)
	}

	summary.TransactionCount = len(records)
	if summary.TransactionCount > 0 {
		summary.AverageTransaction = summary.Total.
			DivRound(decimal.NewFromInt(int64(summary.TransactionCount)), 2)
	}

	// Strict greater-than over the fixed order breaks ties toward the
	// earlier category.
	best := decimal.Zero
	for _, cat := range categoryOrder {
		if sum, ok := byCategory[cat]; ok && sum.GreaterThan(best) {
			best = sum
			summary.TopCategory = cat
		}
	}

	return summary
}

// BreakdownByCategory returns per-category sums with integer percentages of
// the grand total, categories ordered by first appearance in the snapshot.
func BreakdownByCategory(records []dto.ExpenseRecord) []dto.CategoryBreakdown {
	sums := map[dto.Category]decimal.Decimal{}
	var order []dto.Category
	total := decimal.Zero

	for _, rec := range records {
		if _, seen := sums[rec.Category]; !seen {
			order = append(order, rec.Category)
		}
		sums[rec.Category] = sums[rec.Category].Add(rec.Amount)
		total = total.Add(rec.Amount)
	}

	breakdown := make([]dto.CategoryBreakdown, 0, len(order))
	for _, cat := range order {
		pct := 0
		if total.IsPositive() {
			pct = int(sums[cat].Div(total).Mul(decimal.NewFromInt(100)).Round(0).IntPart())
		}
		breakdown = append(breakdown, dto.CategoryBreakdown{
			Category:   cat,
			Amount:     sums[cat],
			Percentage: pct,
		})
	}
	return breakdown
}

// FilterRecords applies the free-text query (case-insensitive substring over
// vendor, category and invoice number) intersected with an optional exact
// category filter. "All" or empty disables the category filter.
func FilterRecords(records []dto.ExpenseRecord, query, category string) []dto.ExpenseRecord {
	q := strings.ToLower(strings.TrimSpace(query))
	filtered := make([]dto.ExpenseRecord, 0, len(records))

	for _, rec := range records {
		if category != "" && category != "All" && string(rec.Category) != category {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(rec.Vendor), q) &&
			!strings.Contains(strings.ToLower(string(rec.Category)), q) &&
			!strings.Contains(strings.ToLower(rec.InvoiceNumber), q) {
			continue
		}
		filtered = append(filtered, rec)
	}
	return filtered
}

// RecentActivity returns the latest records by date, insertion-stable on
// ties, capped to the ten most recent.
func RecentActivity(records []dto.ExpenseRecord) []dto.ExpenseRecord {
	recent := make([]dto.ExpenseRecord, len(records))
	copy(recent, records)

	// ISO dates compare correctly as strings.
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Date > recent[j].Date
	})

	if len(recent) > recentActivityLimit {
		recent = recent[:recentActivityLimit]
	}
	return recent
}
