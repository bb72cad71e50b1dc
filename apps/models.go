package apps

import (
	"github.com/flokiorg/appinion/catalog"
	"github.com/flokiorg/appinion/db"
)

type AppsService interface {
	Upsert(candidate *catalog.SearchResult) error
	GetApp(id string) (*db.AppRecord, error)
	RecentApps(limit int) ([]db.AppRecord, error)
	TouchApp(id string) error
	UpdateSummary(id string, summary string, appVersion *string) error
	DeleteApp(id string) error
	ClearAll() error
}
