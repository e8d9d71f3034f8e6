package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockRecordStore is a mock implementation of port.RecordStore.
type MockRecordStore struct {
	mock.Mock
}

func (m *MockRecordStore) Append(ctx context.Context, text string) error {
	args := m.Called(ctx, text)
	return args.Error(0)
}
