package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"foodsafe/internal/domain"
	"foodsafe/internal/middleware"
	"foodsafe/internal/service"
)

// Multipart form field names for an analysis upload.
const (
	FieldFoodLabel     = "food_label"
	FieldMedicalReport = "medical_report"
	FieldModel         = "model"
	FieldLanguage      = "language"
)

// multipartMemory is how much of a multipart body is kept in memory before
// spilling file parts to disk.
const multipartMemory = 8 << 20

// OptionsResponse lists the selectable models and languages.
type OptionsResponse struct {
	Models          []domain.Model    `json:"models"`
	Languages       []domain.Language `json:"languages"`
	DefaultModel    domain.Model      `json:"default_model"`
	DefaultLanguage domain.Language   `json:"default_language"`
}

// AnalysisHandler handles food-safety analysis endpoints.
type AnalysisHandler struct {
	analysisService service.AnalysisService
	maxUploadBytes  int64
	tempDir         string
}

// NewAnalysisHandler creates a new AnalysisHandler. Requests larger than
// maxUploadBytes are rejected; zero disables the limit. Uploaded images are
// spooled under tempDir, or the system temp directory when empty.
func NewAnalysisHandler(analysisService service.AnalysisService, maxUploadBytes int64, tempDir string) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
		maxUploadBytes:  maxUploadBytes,
		tempDir:         tempDir,
	}
}

// Create handles POST /api/v1/analyses
func (h *AnalysisHandler) Create(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		if c.Request.ContentLength > h.maxUploadBytes {
			RespondError(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "upload exceeds maximum allowed size")
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}
	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			RespondError(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "upload exceeds maximum allowed size")
			return
		}
		RespondError(c, http.StatusBadRequest, "INVALID_FORM", "request must be multipart/form-data")
		return
	}

	input := service.AnalyzeInput{}
	if raw := c.PostForm(FieldModel); raw != "" {
		model, err := domain.ParseModel(raw)
		if err != nil {
			HandleError(c, err)
			return
		}
		input.Model = model
	}
	if raw := c.PostForm(FieldLanguage); raw != "" {
		language, err := domain.ParseLanguage(raw)
		if err != nil {
			HandleError(c, err)
			return
		}
		input.Language = language
	}

	foodPath, err := h.spool(c, FieldFoodLabel)
	if err != nil {
		HandleError(c, err)
		return
	}
	defer h.remove(c, foodPath)

	reportPath, err := h.spool(c, FieldMedicalReport)
	if err != nil {
		HandleError(c, err)
		return
	}
	defer h.remove(c, reportPath)

	input.FoodImagePath = foodPath
	input.ReportImagePath = reportPath

	analysis, err := h.analysisService.Analyze(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, analysis)
}

// Options handles GET /api/v1/options
func (h *AnalysisHandler) Options(c *gin.Context) {
	RespondOK(c, OptionsResponse{
		Models:          domain.Models,
		Languages:       domain.Languages,
		DefaultModel:    domain.DefaultModel,
		DefaultLanguage: domain.DefaultLanguage,
	})
}

// spool copies the uploaded image in field to a temp file and returns its path.
func (h *AnalysisHandler) spool(c *gin.Context, field string) (string, error) {
	file, header, err := c.Request.FormFile(field)
	if err != nil {
		return "", &domain.MissingInputError{Field: field}
	}
	defer func() { _ = file.Close() }()

	if _, err := domain.FileTypeFromName(header.Filename); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(h.tempDir, "foodsafe-*"+filepath.Ext(header.Filename))
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := io.Copy(tmp, file); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("spooling %s: %w", field, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("spooling %s: %w", field, err)
	}
	return tmp.Name(), nil
}

func (h *AnalysisHandler) remove(c *gin.Context, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		middleware.GetLogger(c).Warn("temp file not removed", zap.String("path", path), zap.Error(err))
	}
}
