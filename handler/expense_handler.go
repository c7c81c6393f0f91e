package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/financesaathi/expense-engine/dto"
	"github.com/financesaathi/expense-engine/service"
	"github.com/financesaathi/expense-engine/store"
)

type ExpenseHandler struct {
	pipeline    *service.PipelineService
	analytics   *service.AnalyticsService
	recordStore *store.RecordStore
}

func NewExpenseHandler(
	pipeline *service.PipelineService,
	analytics *service.AnalyticsService,
	recordStore *store.RecordStore,
) *ExpenseHandler {
	return &ExpenseHandler{
		pipeline:    pipeline,
		analytics:   analytics,
		recordStore: recordStore,
	}
}

// UploadInvoice handles POST /invoices/upload. Validation failures come back
// as 400; everything past validation succeeds from the caller's point of
// view, synthetic fallback included.
func (h *ExpenseHandler) UploadInvoice(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "No file provided", err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "Failed to open uploaded file", err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "Failed to read uploaded file", err)
		return
	}

	log.Printf("Received invoice upload: %s (%d bytes)", fileHeader.Filename, len(data))

	declaredType := fileHeader.Header.Get("Content-Type")
	response, err := h.pipeline.ProcessUpload(c.Request.Context(), fileHeader.Filename, declaredType, data)
	if err != nil {
		if isValidationError(err) {
			h.sendError(c, http.StatusBadRequest, err.Error(), err)
			return
		}
		h.sendError(c, http.StatusInternalServerError, "Failed to process invoice", err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ListExpenses handles GET /expenses with optional q and category filters.
func (h *ExpenseHandler) ListExpenses(c *gin.Context) {
	query := c.Query("q")
	category := c.DefaultQuery("category", "All")

	expenses := h.analytics.Search(query, category)
	c.JSON(http.StatusOK, dto.ExpenseListResponse{
		Expenses: expenses,
		Count:    len(expenses),
	})
}

// GetSummary handles GET /expenses/summary.
func (h *ExpenseHandler) GetSummary(c *gin.Context) {
	c.JSON(http.StatusOK, h.analytics.Summary())
}

// GetBreakdown handles GET /expenses/breakdown.
func (h *ExpenseHandler) GetBreakdown(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"breakdown": h.analytics.Breakdown()})
}

// GetRecent handles GET /expenses/recent.
func (h *ExpenseHandler) GetRecent(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"expenses": h.analytics.Recent()})
}

// ListDocuments handles GET /documents, the upload audit trail.
func (h *ExpenseHandler) ListDocuments(c *gin.Context) {
	docs := h.recordStore.Documents()
	c.JSON(http.StatusOK, gin.H{"documents": docs, "count": len(docs)})
}

func isValidationError(err error) bool {
	return errors.Is(err, dto.ErrUnsupportedMediaType) ||
		errors.Is(err, dto.ErrFileTooLarge) ||
		errors.Is(err, dto.ErrEmptyFile)
}

// sendError sends a structured error response
func (h *ExpenseHandler) sendError(c *gin.Context, statusCode int, message string, err error) {
	errorMsg := message
	if err != nil {
		errorMsg = err.Error()
		log.Printf("Error: %s - %v", message, err)
	}

	c.JSON(statusCode, dto.ErrorResponse{
		Error:   "UPLOAD_FAILED",
		Message: errorMsg,
		Code:    statusCode,
	})
}
