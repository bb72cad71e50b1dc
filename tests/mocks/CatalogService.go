package mocks

import (
	"context"

	"github.com/flokiorg/appinion/catalog"
	mock "github.com/stretchr/testify/mock"
)

type MockCatalogService struct {
	mock.Mock
}

func (_m *MockCatalogService) Search(ctx context.Context, term string) ([]catalog.SearchResult, error) {
	ret := _m.Called(ctx, term)
	results, _ := ret.Get(0).([]catalog.SearchResult)
	return results, ret.Error(1)
}

func (_m *MockCatalogService) Lookup(ctx context.Context, id string) (*catalog.App, error) {
	ret := _m.Called(ctx, id)
	app, _ := ret.Get(0).(*catalog.App)
	return app, ret.Error(1)
}
