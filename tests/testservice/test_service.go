// Package testservice wires a service.Service from an in-memory database and
// mocked remote clients.
package testservice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/flokiorg/appinion/apps"
	"github.com/flokiorg/appinion/catalog"
	"github.com/flokiorg/appinion/config"
	"github.com/flokiorg/appinion/events"
	"github.com/flokiorg/appinion/orchestrator"
	"github.com/flokiorg/appinion/reviews"
	"github.com/flokiorg/appinion/summarizer"
	"github.com/flokiorg/appinion/tests"
	"github.com/flokiorg/appinion/tests/mocks"
)

const Debounce = 50 * time.Millisecond

type TestService struct {
	DB             *gorm.DB
	Cfg            config.Config
	EventPublisher events.EventPublisher
	AppsSvc        apps.AppsService
	Catalog        *mocks.MockCatalogService
	Reviews        *mocks.MockReviewsService
	Summarizer     *mocks.MockSummarizer
	Orchestrator   *orchestrator.Orchestrator
}

func CreateTestService(t *testing.T) *TestService {
	t.Helper()

	gormDB := tests.CreateTestDB(t)
	appConfig := &config.AppConfig{
		Workdir:         t.TempDir(),
		OpenAIAPIKey:    "sk-test",
		SearchDebounce:  Debounce,
		RecentAppsLimit: 10,
	}
	cfg, err := config.NewConfig(appConfig, gormDB)
	require.NoError(t, err)

	eventPublisher := events.NewEventPublisher()
	svc := &TestService{
		DB:             gormDB,
		Cfg:            cfg,
		EventPublisher: eventPublisher,
		AppsSvc:        apps.NewAppsService(gormDB, eventPublisher, cfg.GetRecentAppsLimit()),
		Catalog:        &mocks.MockCatalogService{},
		Reviews:        &mocks.MockReviewsService{},
		Summarizer:     &mocks.MockSummarizer{},
	}
	svc.Orchestrator = orchestrator.NewOrchestrator(svc.Catalog, svc.Reviews, svc.Summarizer, svc.AppsSvc,
		eventPublisher, cfg.GetSearchDebounce(), cfg.GetRecentAppsLimit())
	t.Cleanup(svc.Orchestrator.Close)

	return svc
}

func (svc *TestService) Shutdown() {
	svc.Orchestrator.Close()
}

func (svc *TestService) GetEventPublisher() events.EventPublisher {
	return svc.EventPublisher
}

func (svc *TestService) GetDB() *gorm.DB {
	return svc.DB
}

func (svc *TestService) GetConfig() config.Config {
	return svc.Cfg
}

func (svc *TestService) GetOrchestrator() *orchestrator.Orchestrator {
	return svc.Orchestrator
}

func (svc *TestService) GetAppsService() apps.AppsService {
	return svc.AppsSvc
}

func (svc *TestService) GetCatalogService() catalog.Service {
	return svc.Catalog
}

func (svc *TestService) GetReviewsService() reviews.Service {
	return svc.Reviews
}

func (svc *TestService) GetSummarizer() summarizer.Summarizer {
	return svc.Summarizer
}
