package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"foodsafe/internal/domain"
)

// MockOCREngine is a mock implementation of port.OCREngine.
type MockOCREngine struct {
	mock.Mock
}

func (m *MockOCREngine) Recognize(ctx context.Context, imagePath string) ([]domain.OCRLine, error) {
	args := m.Called(ctx, imagePath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OCRLine), args.Error(1)
}
