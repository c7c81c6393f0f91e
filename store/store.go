package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/financesaathi/expense-engine/dto"
)

// storeData is the on-disk layout: two named append-only collections in a
// single JSON document. There is no schema versioning; added fields are
// backward-compatible by convention only.
type storeData struct {
	UploadedDocuments []dto.UploadedDocument `json:"uploaded_documents"`
	ExpenseRecords    []dto.ExpenseRecord    `json:"expense_records"`
}

// RecordStore owns the persisted document and expense collections. It is
// created once at the application root and handed to the pipeline and the
// analytics service; nothing accesses the file behind its back.
type RecordStore struct {
	mu   sync.Mutex
	path string
	data storeData
}

// Open loads the store file if it exists and otherwise starts empty.
func Open(path string) (*RecordStore, error) {
	s := &RecordStore{path: path}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("failed to parse store file %s: %w", path, err)
	}
	return s, nil
}

// AppendResult persists an uploaded document together with its expense
// record as one unit. A document always has exactly one record; no partial
// state is ever written.
func (s *RecordStore) AppendResult(doc dto.UploadedDocument, rec dto.ExpenseRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.UploadedDocuments = append(s.data.UploadedDocuments, doc)
	s.data.ExpenseRecords = append(s.data.ExpenseRecords, rec)

	if err := s.save(); err != nil {
		// Roll back the in-memory append so memory and disk stay in step.
		s.data.UploadedDocuments = s.data.UploadedDocuments[:len(s.data.UploadedDocuments)-1]
		s.data.ExpenseRecords = s.data.ExpenseRecords[:len(s.data.ExpenseRecords)-1]
		return err
	}
	return nil
}

// Records returns a snapshot copy of the expense collection in insertion
// order.
func (s *RecordStore) Records() []dto.ExpenseRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]dto.ExpenseRecord, len(s.data.ExpenseRecords))
	copy(out, s.data.ExpenseRecords)
	return out
}

// Documents returns a snapshot copy of the uploaded-document collection.
func (s *RecordStore) Documents() []dto.UploadedDocument {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]dto.UploadedDocument, len(s.data.UploadedDocuments))
	copy(out, s.data.UploadedDocuments)
	return out
}

func (s *RecordStore) save() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal store data: %w", err)
	}

	// Write-then-rename keeps a crash from leaving a truncated store file.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write store file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace store file: %w", err)
	}
	return nil
}
