package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"foodsafe/internal/config"
	"foodsafe/internal/domain"
	"foodsafe/internal/metrics"
	"foodsafe/internal/port"
	"foodsafe/internal/prompt"
	"foodsafe/internal/textclean"
)

// Pipeline stage names, used in logs and metrics.
const (
	StageNutrition  = "nutrition"
	StageMedical    = "medical"
	StageEvaluation = "evaluation"
)

// AnalysisConfig holds the decoding parameters and limits for the pipeline.
type AnalysisConfig struct {
	RefineModel     domain.Model
	Temperature     float64
	TopP            float64
	RefineMaxTokens int
	EvalMaxTokens   int
	Timeout         time.Duration
}

// NewAnalysisConfig derives an AnalysisConfig from application config.
func NewAnalysisConfig(inf *config.InferenceConfig, pipe *config.PipelineConfig) AnalysisConfig {
	return AnalysisConfig{
		RefineModel:     domain.Model(inf.RefineModel),
		Temperature:     inf.Temperature,
		TopP:            inf.TopP,
		RefineMaxTokens: inf.RefineMaxTokens,
		EvalMaxTokens:   inf.EvalMaxTokens,
		Timeout:         pipe.Timeout(),
	}
}

// AnalyzeInput is the DTO for a full three-stage analysis.
type AnalyzeInput struct {
	FoodImagePath   string
	ReportImagePath string
	Model           domain.Model
	Language        domain.Language
}

// AnalysisService defines the food-safety analysis pipeline contract.
type AnalysisService interface {
	RefineNutrition(ctx context.Context, imagePath string) (string, error)
	RefineMedical(ctx context.Context, imagePath string) (string, error)
	EvaluateSafety(ctx context.Context, nutrition, medical string, model domain.Model, language domain.Language) (string, error)
	Analyze(ctx context.Context, input AnalyzeInput) (*domain.Analysis, error)
}

type analysisService struct {
	ocr       port.OCREngine
	completer port.ChatCompleter
	records   port.RecordStore
	cfg       AnalysisConfig
	logger    *zap.Logger
}

// NewAnalysisService creates a new AnalysisService implementation.
func NewAnalysisService(
	ocr port.OCREngine,
	completer port.ChatCompleter,
	records port.RecordStore,
	cfg AnalysisConfig,
	logger *zap.Logger,
) AnalysisService {
	if cfg.RefineModel == "" {
		cfg.RefineModel = domain.DefaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &analysisService{
		ocr:       ocr,
		completer: completer,
		records:   records,
		cfg:       cfg,
		logger:    logger,
	}
}

func (s *analysisService) RefineNutrition(ctx context.Context, imagePath string) (string, error) {
	return s.refineNutrition(ctx, s.logger, imagePath)
}

func (s *analysisService) RefineMedical(ctx context.Context, imagePath string) (string, error) {
	return s.refineMedical(ctx, s.logger, imagePath)
}

func (s *analysisService) EvaluateSafety(ctx context.Context, nutrition, medical string, model domain.Model, language domain.Language) (string, error) {
	model, language, err := selection(model, language)
	if err != nil {
		return "", err
	}
	return s.evaluateSafety(ctx, s.logger, nutrition, medical, model, language)
}

// Analyze runs the nutrition, medical and evaluation stages in order and stops
// at the first failure. No partial result is returned alongside an error.
func (s *analysisService) Analyze(ctx context.Context, input AnalyzeInput) (*domain.Analysis, error) {
	if input.FoodImagePath == "" {
		return nil, &domain.MissingInputError{Field: "food_label"}
	}
	if input.ReportImagePath == "" {
		return nil, &domain.MissingInputError{Field: "medical_report"}
	}
	model, language, err := selection(input.Model, input.Language)
	if err != nil {
		return nil, err
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	id := uuid.New()
	log := s.logger.With(zap.String("analysis_id", id.String()))
	log.Info("analysis started", zap.String("model", string(model)), zap.String("language", string(language)))

	nutrition, err := s.refineNutrition(ctx, log, input.FoodImagePath)
	if err != nil {
		return nil, err
	}
	medical, err := s.refineMedical(ctx, log, input.ReportImagePath)
	if err != nil {
		return nil, err
	}
	recommendation, err := s.evaluateSafety(ctx, log, nutrition, medical, model, language)
	if err != nil {
		return nil, err
	}

	log.Info("analysis completed")
	return &domain.Analysis{
		ID:             id,
		NutritionText:  nutrition,
		MedicalText:    medical,
		Recommendation: recommendation,
		Model:          model,
		Language:       language,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

func (s *analysisService) refineNutrition(ctx context.Context, log *zap.Logger, imagePath string) (text string, err error) {
	log = log.With(zap.String("stage", StageNutrition))
	defer s.track(log, StageNutrition, time.Now(), &err)

	if imagePath == "" {
		return "", &domain.MissingInputError{Field: "food_label"}
	}
	cleaned, err := s.extract(ctx, log, imagePath)
	if err != nil {
		return "", err
	}
	text, err = s.complete(ctx, prompt.Nutrition(cleaned), s.cfg.RefineModel, s.cfg.RefineMaxTokens)
	if err != nil {
		return "", err
	}

	if recErr := s.records.Append(ctx, text); recErr != nil {
		metrics.RecordWriteFailures.Inc()
		log.Warn("refined text not recorded", zap.Error(recErr))
	}
	return text, nil
}

func (s *analysisService) refineMedical(ctx context.Context, log *zap.Logger, imagePath string) (text string, err error) {
	log = log.With(zap.String("stage", StageMedical))
	defer s.track(log, StageMedical, time.Now(), &err)

	if imagePath == "" {
		return "", &domain.MissingInputError{Field: "medical_report"}
	}
	cleaned, err := s.extract(ctx, log, imagePath)
	if err != nil {
		return "", err
	}
	return s.complete(ctx, prompt.Medical(cleaned), s.cfg.RefineModel, s.cfg.RefineMaxTokens)
}

func (s *analysisService) evaluateSafety(ctx context.Context, log *zap.Logger, nutrition, medical string, model domain.Model, language domain.Language) (text string, err error) {
	log = log.With(zap.String("stage", StageEvaluation))
	defer s.track(log, StageEvaluation, time.Now(), &err)

	return s.complete(ctx, prompt.Safety(nutrition, medical, language), model, s.cfg.EvalMaxTokens)
}

// selection applies defaults to an empty model or language and rejects values
// outside the selectable sets.
func selection(model domain.Model, language domain.Language) (domain.Model, domain.Language, error) {
	if model == "" {
		model = domain.DefaultModel
	}
	if !model.Valid() {
		return "", "", &domain.ValidationError{Field: "model", Value: string(model), Err: domain.ErrInvalidModel}
	}
	if language == "" {
		language = domain.DefaultLanguage
	}
	if !language.Valid() {
		return "", "", &domain.ValidationError{Field: "language", Value: string(language), Err: domain.ErrInvalidLanguage}
	}
	return model, language, nil
}

// extract runs OCR on imagePath and cleans the result. An image with no
// detected text regions is an OCR failure.
func (s *analysisService) extract(ctx context.Context, log *zap.Logger, imagePath string) ([]string, error) {
	lines, err := s.ocr.Recognize(ctx, imagePath)
	if err != nil {
		var ocrErr *domain.OCRFailureError
		if errors.As(err, &ocrErr) {
			return nil, err
		}
		return nil, &domain.OCRFailureError{Path: imagePath, Err: err}
	}
	if len(lines) == 0 {
		return nil, &domain.OCRFailureError{Path: imagePath, Err: domain.ErrNoTextDetected}
	}
	cleaned := textclean.Clean(lines)
	log.Debug("ocr text extracted", zap.Int("regions", len(lines)), zap.Int("kept", len(cleaned)))
	return cleaned, nil
}

func (s *analysisService) complete(ctx context.Context, p prompt.Prompt, model domain.Model, maxTokens int) (string, error) {
	text, err := s.completer.Complete(ctx, port.ChatRequest{
		Model:       string(model),
		Messages:    p.Messages(),
		Temperature: s.cfg.Temperature,
		MaxTokens:   maxTokens,
		TopP:        s.cfg.TopP,
		Stream:      false,
	})
	if err != nil {
		var remoteErr *domain.RemoteServiceError
		if errors.As(err, &remoteErr) {
			return "", err
		}
		return "", &domain.RemoteServiceError{Provider: "inference", Err: err}
	}
	return text, nil
}

func (s *analysisService) track(log *zap.Logger, stage string, started time.Time, err *error) {
	metrics.ObserveStage(stage, started, *err)
	if *err != nil {
		log.Error("stage failed", zap.Duration("duration", time.Since(started)), zap.Error(*err))
		return
	}
	log.Info("stage completed", zap.Duration("duration", time.Since(started)))
}
