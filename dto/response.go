package dto

import "errors"

// Validation errors surfaced to the user. Everything else in the pipeline is
// absorbed by the fallback path and never reaches the client as a failure.
var (
	ErrUnsupportedMediaType = errors.New("unsupported file type: only PDF, JPEG and PNG are accepted")
	ErrFileTooLarge         = errors.New("file exceeds the upload size limit")
	ErrEmptyFile            = errors.New("uploaded file is empty")
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// UploadResponse is returned after a pipeline run completes.
type UploadResponse struct {
	Document    UploadedDocument `json:"document"`
	Record      ExpenseRecord    `json:"record"`
	ProcessedAt string           `json:"processed_at"`
}

// ExpenseListResponse wraps a filtered record listing.
type ExpenseListResponse struct {
	Expenses []ExpenseRecord `json:"expenses"`
	Count    int             `json:"count"`
}
