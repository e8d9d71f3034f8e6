// Package app wires configuration, logging and the analysis pipeline for the
// command-line entry points.
package app

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"foodsafe/internal/config"
	"foodsafe/internal/inference"
	"foodsafe/internal/inference/openaicompat"
	"foodsafe/internal/logger"
	"foodsafe/internal/ocr/tesseract"
	"foodsafe/internal/recordlog"
	"foodsafe/internal/service"
)

// App holds the long-lived components shared by every entry point.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Records  *recordlog.CSVStore
	Analysis service.AnalysisService

	engine *tesseract.Engine
}

// Load reads and validates configuration, then builds the logger.
func Load() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return cfg, log, nil
}

// New constructs the inference client, OCR engine, record store and analysis
// service from cfg.
func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	openaicompat.Register()

	completer, err := inference.NewCompleterWithFallback(&cfg.Inference, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize inference client: %w", err)
	}

	engine, err := tesseract.NewEngine(cfg.OCR.Languages)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OCR engine: %w", err)
	}

	records := recordlog.NewCSVStore(cfg.Record.Path)
	analysis := service.NewAnalysisService(
		engine,
		completer,
		records,
		service.NewAnalysisConfig(&cfg.Inference, &cfg.Pipeline),
		log,
	)

	log.Info("pipeline ready",
		zap.String("provider", cfg.Inference.Provider),
		zap.String("refine_model", cfg.Inference.RefineModel),
		zap.Strings("ocr_languages", cfg.OCR.Languages),
		zap.String("record_path", cfg.Record.Path),
	)

	return &App{
		Config:   cfg,
		Logger:   log,
		Records:  records,
		Analysis: analysis,
		engine:   engine,
	}, nil
}

// Close releases the OCR engine and flushes the logger.
func (a *App) Close() error {
	var errs []error
	if a.engine != nil {
		errs = append(errs, a.engine.Close())
	}
	_ = a.Logger.Sync()
	return errors.Join(errs...)
}
