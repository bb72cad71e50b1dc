package service

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"gorm.io/gorm"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/flokiorg/appinion/apps"
	"github.com/flokiorg/appinion/catalog"
	"github.com/flokiorg/appinion/config"
	"github.com/flokiorg/appinion/constants"
	"github.com/flokiorg/appinion/db"
	"github.com/flokiorg/appinion/events"
	"github.com/flokiorg/appinion/logger"
	"github.com/flokiorg/appinion/orchestrator"
	"github.com/flokiorg/appinion/pkg/version"
	"github.com/flokiorg/appinion/reviews"
	"github.com/flokiorg/appinion/summarizer"
)

type service struct {
	cfg config.Config

	db             *gorm.DB
	eventPublisher events.EventPublisher
	ctx            context.Context
	appsSvc        apps.AppsService
	catalogSvc     catalog.Service
	reviewsSvc     reviews.Service
	summarizerSvc  summarizer.Summarizer
	orchestrator   *orchestrator.Orchestrator
}

// LoadAppConfig reads .env and the environment.
func LoadAppConfig() (*config.AppConfig, error) {
	godotenv.Load(".env")
	appConfig := &config.AppConfig{}
	err := envconfig.Process("", appConfig)
	if err != nil {
		return nil, err
	}
	return appConfig, nil
}

func NewService(ctx context.Context) (*service, error) {
	appConfig, err := LoadAppConfig()
	if err != nil {
		return nil, err
	}
	return NewServiceWithConfig(ctx, appConfig)
}

func NewServiceWithConfig(ctx context.Context, appConfig *config.AppConfig) (*service, error) {
	logger.Init(appConfig.LogLevel)
	logger.Logger.Info().Msg("Appinion " + version.Tag)

	if appConfig.Workdir == "" {
		appConfig.Workdir = filepath.Join(xdg.DataHome, constants.APP_IDENTIFIER)
		logger.Logger.Info().Interface("workdir", appConfig.Workdir).Msg("No workdir specified, using default")
	}
	// make sure workdir exists
	os.MkdirAll(appConfig.Workdir, os.ModePerm)

	if appConfig.LogToFile {
		err := logger.AddFileLogger(appConfig.Workdir)
		if err != nil {
			return nil, err
		}
	}

	// If DATABASE_URI is a URI or a path, leave it unchanged.
	// If it only contains a filename, prepend the workdir.
	if !strings.HasPrefix(appConfig.DatabaseUri, "file:") {
		databasePath, _ := filepath.Split(appConfig.DatabaseUri)
		if databasePath == "" {
			appConfig.DatabaseUri = filepath.Join(appConfig.Workdir, appConfig.DatabaseUri)
		}
	}

	gormDB, err := db.NewDB(appConfig.DatabaseUri, appConfig.LogDBQueries)
	if err != nil {
		return nil, err
	}

	cfg, err := config.NewConfig(appConfig, gormDB)
	if err != nil {
		db.Stop(gormDB)
		return nil, err
	}
	if !cfg.HasOpenAIAPIKey() {
		logger.Logger.Warn().Msg("No valid OpenAI API key configured, summaries are disabled")
	}

	eventPublisher := events.NewEventPublisher()
	eventPublisher.SetGlobalProperty("version", version.Tag)

	appsSvc := apps.NewAppsService(gormDB, eventPublisher, cfg.GetRecentAppsLimit())
	catalogSvc := catalog.NewCatalogService(cfg.GetCatalogURL(), cfg.GetUserAgent(), cfg.GetHTTPTimeout())
	reviewsSvc := reviews.NewReviewsService(cfg.GetReviewFeedURL(), cfg.GetUserAgent(), cfg.GetHTTPTimeout())
	summarizerSvc := summarizer.NewSummarizerService(cfg, &http.Client{})

	svc := &service{
		cfg:            cfg,
		ctx:            ctx,
		db:             gormDB,
		eventPublisher: eventPublisher,
		appsSvc:        appsSvc,
		catalogSvc:     catalogSvc,
		reviewsSvc:     reviewsSvc,
		summarizerSvc:  summarizerSvc,
		orchestrator: orchestrator.NewOrchestrator(catalogSvc, reviewsSvc, summarizerSvc, appsSvc,
			eventPublisher, cfg.GetSearchDebounce(), cfg.GetRecentAppsLimit()),
	}

	eventPublisher.RegisterSubscriber(&appEventsConsumer{})

	eventPublisher.Publish(&events.Event{
		Event: constants.EVENT_APPINION_STARTED,
		Properties: map[string]interface{}{
			"version": version.Tag,
		},
	})

	return svc, nil
}

func (svc *service) Shutdown() {
	svc.orchestrator.Close()
	svc.eventPublisher.PublishSync(&events.Event{
		Event: constants.EVENT_APPINION_STOPPED,
	})
	db.Stop(svc.db)
}

func (svc *service) GetDB() *gorm.DB {
	return svc.db
}

func (svc *service) GetConfig() config.Config {
	return svc.cfg
}

func (svc *service) GetEventPublisher() events.EventPublisher {
	return svc.eventPublisher
}

func (svc *service) GetOrchestrator() *orchestrator.Orchestrator {
	return svc.orchestrator
}

func (svc *service) GetAppsService() apps.AppsService {
	return svc.appsSvc
}

func (svc *service) GetCatalogService() catalog.Service {
	return svc.catalogSvc
}

func (svc *service) GetReviewsService() reviews.Service {
	return svc.reviewsSvc
}

func (svc *service) GetSummarizer() summarizer.Summarizer {
	return svc.summarizerSvc
}
