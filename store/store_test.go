package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/financesaathi/expense-engine/dto"
)

func testEntry(id string) (dto.UploadedDocument, dto.ExpenseRecord) {
	doc := dto.UploadedDocument{
		ID:              "doc-" + id,
		Filename:        "invoice-" + id + ".png",
		SizeBytes:       1024,
		UploadTimestamp: time.Date(2025, time.August, 28, 12, 0, 0, 0, time.UTC),
		Confidence:      90,
	}
	rec := dto.ExpenseRecord{
		ID:             "rec-" + id,
		Vendor:         "Swiggy",
		Amount:         decimal.NewFromInt(450),
		Category:       dto.CategoryFood,
		Date:           "2025-08-28",
		InvoiceNumber:  "INV-2025-001",
		PaymentMethod:  "UPI",
		Status:         dto.StatusProcessed,
		SourceUploadID: doc.ID,
		Confidence:     90,
	}
	return doc, rec
}

func TestOpenMissingFileStartsEmpty(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "expenses.json"))

	require.NoError(t, err)
	assert.Empty(t, s.Records())
	assert.Empty(t, s.Documents())
}

func TestAppendResultPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "expenses.json")

	s, err := Open(path)
	require.NoError(t, err)

	doc1, rec1 := testEntry("1")
	doc2, rec2 := testEntry("2")
	require.NoError(t, s.AppendResult(doc1, rec1))
	require.NoError(t, s.AppendResult(doc2, rec2))

	reopened, err := Open(path)
	require.NoError(t, err)

	records := reopened.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "rec-1", records[0].ID)
	assert.Equal(t, "rec-2", records[1].ID)
	assert.Equal(t, "450", records[0].Amount.String())

	docs := reopened.Documents()
	require.Len(t, docs, 2)
	assert.Equal(t, "doc-1", docs[0].ID)
	assert.Equal(t, records[0].SourceUploadID, docs[0].ID)
}

func TestSnapshotsAreCopies(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "expenses.json"))
	require.NoError(t, err)

	doc, rec := testEntry("1")
	require.NoError(t, s.AppendResult(doc, rec))

	snapshot := s.Records()
	snapshot[0].Vendor = "mutated"

	assert.Equal(t, "Swiggy", s.Records()[0].Vendor)
}

func TestOpenRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expenses.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Open(path)
	assert.Error(t, err)
}
