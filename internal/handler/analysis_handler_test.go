package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"foodsafe/internal/domain"
	"foodsafe/internal/handler"
	"foodsafe/internal/inference"
	"foodsafe/internal/service"
	"foodsafe/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type upload struct {
	field    string
	filename string
	content  []byte
}

func multipartBody(t *testing.T, files []upload, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, f := range files {
		part, err := writer.CreateFormFile(f.field, f.filename)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func bothImages() []upload {
	return []upload{
		{field: handler.FieldFoodLabel, filename: "label.jpg", content: []byte("food-bytes")},
		{field: handler.FieldMedicalReport, filename: "report.PNG", content: []byte("report-bytes")},
	}
}

func performCreate(t *testing.T, h *handler.AnalysisHandler, files []upload, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, files, fields)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/analyses", body)
	c.Request.Header.Set("Content-Type", contentType)

	h.Create(c)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) handler.APIResponse {
	t.Helper()
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestAnalysisHandler_Create_Success(t *testing.T) {
	mockSvc := new(mocks.MockAnalysisService)
	h := handler.NewAnalysisHandler(mockSvc, 1<<20, t.TempDir())

	var spooled []string
	mockSvc.On("Analyze", mock.Anything, mock.MatchedBy(func(in service.AnalyzeInput) bool {
		return in.Model == domain.ModelDeepSeekR1Llama && in.Language == domain.LanguageHindi
	})).
		Run(func(args mock.Arguments) {
			in := args.Get(1).(service.AnalyzeInput)
			spooled = []string{in.FoodImagePath, in.ReportImagePath}
			food, err := os.ReadFile(in.FoodImagePath)
			require.NoError(t, err)
			assert.Equal(t, "food-bytes", string(food))
			report, err := os.ReadFile(in.ReportImagePath)
			require.NoError(t, err)
			assert.Equal(t, "report-bytes", string(report))
		}).
		Return(&domain.Analysis{
			ID:             uuid.New(),
			NutritionText:  "Sugar: 30g",
			MedicalText:    "Diabetes",
			Recommendation: "Avoid.",
			Model:          domain.ModelDeepSeekR1Llama,
			Language:       domain.LanguageHindi,
			CreatedAt:      time.Now(),
		}, nil)

	w := performCreate(t, h, bothImages(), map[string]string{
		handler.FieldModel:    "deepseek-r1-distill-llama-70b",
		handler.FieldLanguage: "hindi",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.True(t, resp.Success)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "Avoid.", data["recommendation"])

	require.Len(t, spooled, 2)
	for _, p := range spooled {
		_, err := os.Stat(p)
		assert.True(t, errors.Is(err, os.ErrNotExist), "temp file %s should be removed", p)
	}
	mockSvc.AssertExpectations(t)
}

func TestAnalysisHandler_Create_DefaultsLeftToService(t *testing.T) {
	mockSvc := new(mocks.MockAnalysisService)
	h := handler.NewAnalysisHandler(mockSvc, 0, t.TempDir())

	mockSvc.On("Analyze", mock.Anything, mock.MatchedBy(func(in service.AnalyzeInput) bool {
		return in.Model == "" && in.Language == ""
	})).Return(&domain.Analysis{Recommendation: "Safe."}, nil)

	w := performCreate(t, h, bothImages(), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestAnalysisHandler_Create_MissingFile(t *testing.T) {
	mockSvc := new(mocks.MockAnalysisService)
	h := handler.NewAnalysisHandler(mockSvc, 0, t.TempDir())

	w := performCreate(t, h, bothImages()[:1], nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "MISSING_INPUT", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, handler.FieldMedicalReport)
	mockSvc.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything)
}

func TestAnalysisHandler_Create_UnsupportedFileType(t *testing.T) {
	mockSvc := new(mocks.MockAnalysisService)
	h := handler.NewAnalysisHandler(mockSvc, 0, t.TempDir())

	files := []upload{
		{field: handler.FieldFoodLabel, filename: "label.pdf", content: []byte("%PDF-1.4")},
		{field: handler.FieldMedicalReport, filename: "report.png", content: []byte("x")},
	}
	w := performCreate(t, h, files, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "UNSUPPORTED_FILE_TYPE", decode(t, w).Error.Code)
	mockSvc.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything)
}

func TestAnalysisHandler_Create_InvalidSelection(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
		code   string
	}{
		{"model", map[string]string{handler.FieldModel: "gpt-4o"}, "INVALID_MODEL"},
		{"language", map[string]string{handler.FieldLanguage: "Klingon"}, "INVALID_LANGUAGE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(mocks.MockAnalysisService)
			h := handler.NewAnalysisHandler(mockSvc, 0, t.TempDir())

			w := performCreate(t, h, bothImages(), tt.fields)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.code, decode(t, w).Error.Code)
			mockSvc.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything)
		})
	}
}

func TestAnalysisHandler_Create_TooLarge(t *testing.T) {
	mockSvc := new(mocks.MockAnalysisService)
	h := handler.NewAnalysisHandler(mockSvc, 64, t.TempDir())

	files := []upload{
		{field: handler.FieldFoodLabel, filename: "label.jpg", content: bytes.Repeat([]byte("a"), 1024)},
		{field: handler.FieldMedicalReport, filename: "report.png", content: []byte("x")},
	}
	w := performCreate(t, h, files, nil)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "FILE_TOO_LARGE", decode(t, w).Error.Code)
}

func TestAnalysisHandler_Create_NotMultipart(t *testing.T) {
	mockSvc := new(mocks.MockAnalysisService)
	h := handler.NewAnalysisHandler(mockSvc, 0, t.TempDir())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/analyses", bytes.NewBufferString(`{}`))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_FORM", decode(t, w).Error.Code)
}

func TestAnalysisHandler_Create_ServiceErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{
			name:   "ocr failure",
			err:    &domain.OCRFailureError{Path: "x.png", Err: domain.ErrNoTextDetected},
			status: http.StatusUnprocessableEntity,
			code:   "OCR_FAILED",
		},
		{
			name:   "remote failure",
			err:    &domain.RemoteServiceError{Provider: "groq", StatusCode: 500, Err: errors.New("boom")},
			status: http.StatusBadGateway,
			code:   "REMOTE_SERVICE_ERROR",
		},
		{
			name: "rate limited",
			err: &domain.RemoteServiceError{
				Provider:   "groq",
				StatusCode: 429,
				Err:        inference.NewRateLimitError("groq", errors.New("slow down"), 12),
			},
			status: http.StatusTooManyRequests,
			code:   "RATE_LIMITED",
		},
		{
			name:   "timeout",
			err:    &domain.RemoteServiceError{Provider: "groq", Err: fmt.Errorf("sending request: %w", context.DeadlineExceeded)},
			status: http.StatusGatewayTimeout,
			code:   "TIMEOUT",
		},
		{
			name:   "unexpected",
			err:    errors.New("disk on fire"),
			status: http.StatusInternalServerError,
			code:   "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(mocks.MockAnalysisService)
			h := handler.NewAnalysisHandler(mockSvc, 0, t.TempDir())
			mockSvc.On("Analyze", mock.Anything, mock.Anything).Return(nil, tt.err)

			w := performCreate(t, h, bothImages(), nil)

			assert.Equal(t, tt.status, w.Code)
			resp := decode(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestAnalysisHandler_Create_RetryAfterHeader(t *testing.T) {
	mockSvc := new(mocks.MockAnalysisService)
	h := handler.NewAnalysisHandler(mockSvc, 0, t.TempDir())
	mockSvc.On("Analyze", mock.Anything, mock.Anything).
		Return(nil, &domain.RemoteServiceError{
			Provider:   "groq",
			StatusCode: 429,
			Err:        inference.NewRateLimitError("groq", errors.New("slow down"), 12),
		})

	w := performCreate(t, h, bothImages(), nil)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "12", w.Header().Get("Retry-After"))
}

func TestAnalysisHandler_Options(t *testing.T) {
	h := handler.NewAnalysisHandler(new(mocks.MockAnalysisService), 0, "")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/options", nil)

	h.Options(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success bool                    `json:"success"`
		Data    handler.OptionsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, domain.Models, resp.Data.Models)
	assert.Equal(t, domain.Languages, resp.Data.Languages)
	assert.Equal(t, domain.DefaultModel, resp.Data.DefaultModel)
	assert.Equal(t, domain.DefaultLanguage, resp.Data.DefaultLanguage)
}
