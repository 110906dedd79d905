package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/lbraga/studytrack/internal/suggest"
)

// MockSuggestProvider is a mock implementation of suggest.Provider
type MockSuggestProvider struct {
	mock.Mock
}

func (m *MockSuggestProvider) Suggestions(ctx context.Context, topic string, limit int) ([]suggest.Suggestion, error) {
	args := m.Called(ctx, topic, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]suggest.Suggestion), args.Error(1)
}
