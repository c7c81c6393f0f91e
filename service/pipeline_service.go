package service

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/financesaathi/expense-engine/dto"
	"github.com/financesaathi/expense-engine/store"
	"github.com/financesaathi/expense-engine/utils"
)

// PipelineState tracks an upload through the processing state machine.
type PipelineState string

const (
	StateIdle       PipelineState = "idle"
	StateValidating PipelineState = "validating"
	StateUploading  PipelineState = "uploading"
	StateAcquiring  PipelineState = "acquiring"
	StateExtracting PipelineState = "extracting"
	StateGenerating PipelineState = "generating"
	StatePersisted  PipelineState = "persisted"
	StateComplete   PipelineState = "complete"
	StateFailed     PipelineState = "failed"
)

var allowedMediaTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
}

var mediaTypeByExt = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// PipelineService orchestrates one upload end to end: validate, acquire,
// extract or generate, persist. Acquisition gets exactly one attempt; any
// failure is absorbed by the synthetic fallback so an upload never fails
// past validation. A mutex keeps a single pipeline in flight at a time.
type PipelineService struct {
	acquirer    Acquirer
	recordStore *store.RecordStore
	maxFileSize int64

	mu    sync.Mutex
	state PipelineState

	rng *rand.Rand
	now func() time.Time
}

func NewPipelineService(acquirer Acquirer, recordStore *store.RecordStore, maxFileSize int64) *PipelineService {
	return &PipelineService{
		acquirer:    acquirer,
		recordStore: recordStore,
		maxFileSize: maxFileSize,
		state:       StateIdle,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		now:         time.Now,
	}
}

// State returns the state of the most recent pipeline run.
func (s *PipelineService) State() PipelineState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ProcessUpload runs the full pipeline for one uploaded file and returns the
// persisted document and record. The only error it ever returns to the user
// path is a validation error (or a store write failure).
func (s *PipelineService) ProcessUpload(ctx context.Context, filename, declaredType string, data []byte) (*dto.UploadResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transition(StateValidating)
	mediaType, err := s.validate(filename, declaredType, int64(len(data)))
	if err != nil {
		s.transition(StateFailed)
		return nil, err
	}

	// Transfer already happened by the time we hold the bytes; the state
	// exists for parity with the dashboard's progress display.
	s.transition(StateUploading)

	doc := dto.UploadedDocument{
		ID:              uuid.NewString(),
		Filename:        filename,
		SizeBytes:       int64(len(data)),
		UploadTimestamp: s.now(),
	}

	s.transition(StateAcquiring)
	var rec dto.ExpenseRecord
	result, err := s.acquirer.AcquireText(ctx, data, filename, mediaType)
	if err != nil {
		// At-most-one-attempt policy: absorb the failure and synthesize a
		// record instead of blocking the user on a flaky dependency.
		log.Printf("Text acquisition failed for %s, generating synthetic record: %v", filename, err)
		s.transition(StateGenerating)
		rec = utils.GenerateFallbackRecord(s.rng, s.now())
		doc.Confidence = 0
	} else {
		s.transition(StateExtracting)
		rec = utils.ExtractInvoiceFields(result.Text, result.Confidence, filename, s.rng, s.now())
		rec.PaymentMethod = utils.RandomPaymentMethod(s.rng)
		doc.ExtractedText = result.Text
		doc.Confidence = result.Confidence
	}

	rec.ID = uuid.NewString()
	rec.Status = dto.StatusProcessed
	rec.SourceUploadID = doc.ID

	s.transition(StatePersisted)
	if err := s.recordStore.AppendResult(doc, rec); err != nil {
		s.transition(StateFailed)
		return nil, fmt.Errorf("failed to persist expense record: %w", err)
	}

	s.transition(StateComplete)
	log.Printf("Processed %s -> %s %s (%s, confidence %.0f)",
		filename, rec.Vendor, rec.Amount.String(), rec.Category, rec.Confidence)

	return &dto.UploadResponse{
		Document:    doc,
		Record:      rec,
		ProcessedAt: s.now().Format(time.RFC3339),
	}, nil
}

// validate enforces the media-type allowlist and the size ceiling. The
// declared type wins; a generic or missing type falls back to the file
// extension.
func (s *PipelineService) validate(filename, declaredType string, size int64) (string, error) {
	if size == 0 {
		return "", dto.ErrEmptyFile
	}
	if size > s.maxFileSize {
		return "", dto.ErrFileTooLarge
	}

	mediaType := strings.ToLower(strings.TrimSpace(declaredType))
	if i := strings.Index(mediaType, ";"); i >= 0 {
		mediaType = strings.TrimSpace(mediaType[:i])
	}
	if mediaType == "" || mediaType == "application/octet-stream" {
		mediaType = mediaTypeByExt[strings.ToLower(filepath.Ext(filename))]
	}
	if mediaType == "image/jpg" {
		mediaType = "image/jpeg"
	}

	if !allowedMediaTypes[mediaType] {
		return "", dto.ErrUnsupportedMediaType
	}
	return mediaType, nil
}

func (s *PipelineService) transition(next PipelineState) {
	log.Debugf("pipeline: %s -> %s", s.state, next)
	s.state = next
}
