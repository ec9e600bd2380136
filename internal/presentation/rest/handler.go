package rest

import (
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bibbank/fraudwatch/internal/application/dto"
	"github.com/bibbank/fraudwatch/internal/application/usecase"
	"github.com/bibbank/fraudwatch/internal/domain/model"
	"github.com/bibbank/fraudwatch/internal/infrastructure/ingest"
)

// MaxUploadSize bounds the multipart body accepted by the upload endpoint.
const MaxUploadSize = 64 << 20

// maxLimit caps the limit query parameter on list endpoints.
const maxLimit = 10000

// FraudHandler serves the dashboard API over the fraud pipeline use cases.
type FraudHandler struct {
	processBatch  *usecase.ProcessBatch
	listFlagged   *usecase.ListFlagged
	listLogs      *usecase.ListLogs
	getStatistics *usecase.GetStatistics
	getGeo        *usecase.GetGeoDistribution
	clearData     *usecase.ClearData
	logger        *slog.Logger
	uploadLimit   gin.HandlerFunc
}

// NewFraudHandler creates a new dashboard handler.
func NewFraudHandler(
	processBatch *usecase.ProcessBatch,
	listFlagged *usecase.ListFlagged,
	listLogs *usecase.ListLogs,
	getStatistics *usecase.GetStatistics,
	getGeo *usecase.GetGeoDistribution,
	clearData *usecase.ClearData,
	logger *slog.Logger,
) *FraudHandler {
	return &FraudHandler{
		processBatch:  processBatch,
		listFlagged:   listFlagged,
		listLogs:      listLogs,
		getStatistics: getStatistics,
		getGeo:        getGeo,
		clearData:     clearData,
		logger:        logger,
		uploadLimit:   RateLimit(0),
	}
}

// WithUploadLimit caps the write endpoints at rps requests per second.
func (h *FraudHandler) WithUploadLimit(rps int) *FraudHandler {
	h.uploadLimit = RateLimit(rps)
	return h
}

// RegisterRoutes sets up the dashboard routes.
func (h *FraudHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/upload", h.uploadLimit, h.Upload)
	r.POST("/batches", h.uploadLimit, h.SubmitBatch)
	r.GET("/fraud-transactions", h.ListFlagged)
	r.GET("/logs", h.ListLogs)
	r.GET("/fraud-stats", h.Statistics)
	r.GET("/fraud-geo-data", h.GeoDistribution)
	r.DELETE("/clear-data", h.ClearData)
}

// SubmitBatchRequest is the JSON form of an upload.
type SubmitBatchRequest struct {
	Filename string                 `json:"filename"`
	Records  []model.RawTransaction `json:"records"`
}

// Upload handles POST /api/upload with a multipart "file" field holding a
// CSV file or an Excel workbook.
func (h *FraudHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadSize)

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no_file", "message": "No file provided"})
		return
	}
	if header.Filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no_file", "message": "No file selected"})
		return
	}
	if !ingest.Supported(header.Filename) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_file_type",
			"message": "Invalid file type. Please upload a CSV or Excel file (" + strings.Join(ingest.Extensions(), ", ") + ").",
		})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "read_failed", "message": "Error reading file: " + err.Error()})
		return
	}
	defer file.Close()

	rows, err := ingest.Read(header.Filename, file)
	if err != nil {
		var validationErr *model.ValidationError
		if errors.As(err, &validationErr) {
			h.writeBatchError(c, err)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "read_failed", "message": "Error reading file: " + err.Error()})
		return
	}

	h.process(c, filepath.Base(header.Filename), model.NormalizeAll(rows))
}

// SubmitBatch handles POST /api/batches with a JSON body of raw records.
func (h *FraudHandler) SubmitBatch(c *gin.Context) {
	var req SubmitBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request body",
		})
		return
	}
	if req.Filename == "" {
		req.Filename = "api"
	}

	h.process(c, req.Filename, model.NormalizeAll(req.Records))
}

func (h *FraudHandler) process(c *gin.Context, filename string, records []model.TransactionRecord) {
	resp, err := h.processBatch.Execute(c.Request.Context(), dto.ProcessBatchRequest{
		Filename: filename,
		Records:  records,
	})
	if err != nil {
		h.writeBatchError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *FraudHandler) writeBatchError(c *gin.Context, err error) {
	var validationErr *model.ValidationError
	var configErr *model.ConfigurationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "missing_columns",
			"message": "Missing required columns: " + strings.Join(validationErr.Missing, ", "),
			"missing": validationErr.Missing,
		})
	case errors.As(err, &configErr):
		h.logger.ErrorContext(c.Request.Context(), "batch rejected", slog.String("error", err.Error()))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "scorer_unavailable", "message": err.Error()})
	default:
		h.logger.ErrorContext(c.Request.Context(), "batch failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "processing_failed", "message": err.Error()})
	}
}

// ListFlagged handles GET /api/fraud-transactions
func (h *FraudHandler) ListFlagged(c *gin.Context) {
	limit, ok := parseLimit(c, usecase.DefaultFlaggedLimit)
	if !ok {
		return
	}

	rows, err := h.listFlagged.Execute(c.Request.Context(), limit)
	if err != nil {
		h.internalError(c, "Error fetching transactions", err)
		return
	}

	c.JSON(http.StatusOK, rows)
}

// ListLogs handles GET /api/logs
func (h *FraudHandler) ListLogs(c *gin.Context) {
	limit, ok := parseLimit(c, usecase.DefaultLogLimit)
	if !ok {
		return
	}

	logs, err := h.listLogs.Execute(c.Request.Context(), limit)
	if err != nil {
		h.internalError(c, "Error fetching logs", err)
		return
	}

	c.JSON(http.StatusOK, logs)
}

// Statistics handles GET /api/fraud-stats
func (h *FraudHandler) Statistics(c *gin.Context) {
	stats, err := h.getStatistics.Execute(c.Request.Context())
	if err != nil {
		h.internalError(c, "Error generating statistics", err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GeoDistribution handles GET /api/fraud-geo-data
func (h *FraudHandler) GeoDistribution(c *gin.Context) {
	geo, err := h.getGeo.Execute(c.Request.Context())
	if err != nil {
		h.internalError(c, "Error generating geo data", err)
		return
	}

	c.JSON(http.StatusOK, geo)
}

// ClearData handles DELETE /api/clear-data
func (h *FraudHandler) ClearData(c *gin.Context) {
	if err := h.clearData.Execute(c.Request.Context()); err != nil {
		h.internalError(c, "Error clearing data", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "All data cleared successfully"})
}

func (h *FraudHandler) internalError(c *gin.Context, message string, err error) {
	h.logger.ErrorContext(c.Request.Context(), message, slog.String("error", err.Error()))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": message + ": " + err.Error()})
}

// parseLimit reads the limit query parameter. It writes a 400 and returns
// false when the value is not a non-negative integer.
func parseLimit(c *gin.Context, defaultLimit int) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return defaultLimit, true
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_limit",
			"message": "limit must be a non-negative integer",
		})
		return 0, false
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return limit, true
}
