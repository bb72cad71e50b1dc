package mocks

import (
	"context"

	"github.com/flokiorg/appinion/reviews"
	mock "github.com/stretchr/testify/mock"
)

type MockReviewsService struct {
	mock.Mock
}

func (_m *MockReviewsService) FetchReviews(ctx context.Context, appID string, limit int) ([]string, error) {
	ret := _m.Called(ctx, appID, limit)
	texts, _ := ret.Get(0).([]string)
	return texts, ret.Error(1)
}

func (_m *MockReviewsService) FetchEntries(ctx context.Context, appID string, limit int) ([]reviews.Review, error) {
	ret := _m.Called(ctx, appID, limit)
	entries, _ := ret.Get(0).([]reviews.Review)
	return entries, ret.Error(1)
}
