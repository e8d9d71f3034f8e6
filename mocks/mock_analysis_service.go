package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"foodsafe/internal/domain"
	"foodsafe/internal/service"
)

// MockAnalysisService is a mock implementation of service.AnalysisService.
type MockAnalysisService struct {
	mock.Mock
}

func (m *MockAnalysisService) RefineNutrition(ctx context.Context, imagePath string) (string, error) {
	args := m.Called(ctx, imagePath)
	return args.String(0), args.Error(1)
}

func (m *MockAnalysisService) RefineMedical(ctx context.Context, imagePath string) (string, error) {
	args := m.Called(ctx, imagePath)
	return args.String(0), args.Error(1)
}

func (m *MockAnalysisService) EvaluateSafety(ctx context.Context, nutrition, medical string, model domain.Model, language domain.Language) (string, error) {
	args := m.Called(ctx, nutrition, medical, model, language)
	return args.String(0), args.Error(1)
}

func (m *MockAnalysisService) Analyze(ctx context.Context, input service.AnalyzeInput) (*domain.Analysis, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Analysis), args.Error(1)
}
