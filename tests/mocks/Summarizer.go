package mocks

import (
	"context"

	mock "github.com/stretchr/testify/mock"
)

type MockSummarizer struct {
	mock.Mock
}

func (_m *MockSummarizer) Summarize(ctx context.Context, reviews []string, appName string) (string, error) {
	ret := _m.Called(ctx, reviews, appName)
	return ret.String(0), ret.Error(1)
}
