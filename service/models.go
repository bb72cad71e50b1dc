package service

import (
	"gorm.io/gorm"

	"github.com/flokiorg/appinion/apps"
	"github.com/flokiorg/appinion/catalog"
	"github.com/flokiorg/appinion/config"
	"github.com/flokiorg/appinion/events"
	"github.com/flokiorg/appinion/orchestrator"
	"github.com/flokiorg/appinion/reviews"
	"github.com/flokiorg/appinion/summarizer"
)

type Service interface {
	Shutdown()

	GetEventPublisher() events.EventPublisher
	GetDB() *gorm.DB
	GetConfig() config.Config
	GetOrchestrator() *orchestrator.Orchestrator
	GetAppsService() apps.AppsService
	GetCatalogService() catalog.Service
	GetReviewsService() reviews.Service
	GetSummarizer() summarizer.Summarizer
}
