package testutil

import (
	"context"

	"github.com/poyrazK/nsec3gen/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

type MockWriter struct {
	mock.Mock
}

func (m *MockWriter) Write(ctx context.Context, id string, record *domain.CacheRecord) (string, error) {
	args := m.Called(id, record)
	return args.String(0), args.Error(1)
}

type MockSource struct {
	mock.Mock
}

func (m *MockSource) Labels(ctx context.Context) ([]string, error) {
	args := m.Called()
	labels, _ := args.Get(0).([]string)
	return labels, args.Error(1)
}

func (m *MockSource) Describe() string {
	return "mock"
}
