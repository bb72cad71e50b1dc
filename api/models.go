package api

import (
	"context"
	"time"

	"github.com/flokiorg/appinion/catalog"
	"github.com/flokiorg/appinion/orchestrator"
	"github.com/flokiorg/appinion/reviews"
)

type API interface {
	GetInfo(ctx context.Context) (*InfoResponse, error)
	UpdateSettings(updateSettingsRequest *UpdateSettingsRequest) error
	GetLogOutput(ctx context.Context, getLogRequest *GetLogOutputRequest) (*GetLogOutputResponse, error)

	GetState() *StateResponse
	SetSearchQuery(setSearchQueryRequest *SetSearchQueryRequest) *StateResponse
	ClearSearch() *StateResponse
	DismissError() *StateResponse
	SelectSearchResult(id string) (*AppResponse, error)
	SearchCatalog(ctx context.Context, term string) ([]catalog.SearchResult, error)
	LookupCatalogApp(ctx context.Context, id string) (*CatalogAppResponse, error)
	SelectCatalogApp(ctx context.Context, id string) (*AppResponse, error)

	ListRecentApps(limit int) ([]AppResponse, error)
	GetApp(id string) (*AppResponse, error)
	SelectRecentApp(id string) (*AppResponse, error)
	GenerateSummary(ctx context.Context, id string) (*AppResponse, error)
	ListReviews(ctx context.Context, id string, limit int) (*ListReviewsResponse, error)
	DeleteApp(id string) error
	ClearAllApps() error
}

type InfoResponse struct {
	Version             string `json:"version"`
	WorkDir             string `json:"workDir"`
	SummariesConfigured bool   `json:"summariesConfigured"`
	OpenAIModel         string `json:"openAIModel"`
	CatalogURL          string `json:"catalogUrl"`
	ReviewFeedURL       string `json:"reviewFeedUrl"`
	SearchDebounceMs    int64  `json:"searchDebounceMs"`
	RecentAppsLimit     int    `json:"recentAppsLimit"`
	LogFileEnabled      bool   `json:"logFileEnabled"`
}

type UpdateSettingsRequest struct {
	OpenAIModel *string `json:"openAIModel"`
}

type GetLogOutputRequest struct {
	MaxLen int `query:"maxLen"`
}

type GetLogOutputResponse struct {
	Log string `json:"logs"`
}

type SetSearchQueryRequest struct {
	Query string `json:"query"`
}

type AppResponse struct {
	ID                   string     `json:"id"`
	Name                 string     `json:"name"`
	BundleID             string     `json:"bundleId"`
	IconURL              *string    `json:"iconUrl"`
	Version              *string    `json:"version"`
	LastSearched         time.Time  `json:"lastSearched"`
	ReviewSummary        *string    `json:"reviewSummary"`
	SummaryGeneratedDate *time.Time `json:"summaryGeneratedDate"`
	SummaryAppVersion    *string    `json:"summaryAppVersion"`
	SummaryStale         bool       `json:"summaryStale"`
}

type StateResponse struct {
	Revision                uint64                 `json:"revision"`
	Phase                   orchestrator.Phase     `json:"phase"`
	Query                   string                 `json:"query"`
	Results                 []catalog.SearchResult `json:"results"`
	IsSearching             bool                   `json:"isSearching"`
	IsSummarizing           bool                   `json:"isSummarizing"`
	ErrorMessage            *string                `json:"errorMessage"`
	Selected                *AppResponse           `json:"selected"`
	RecentApps              []AppResponse          `json:"recentApps"`
	ShouldShowSearchResults bool                   `json:"shouldShowSearchResults"`
	ShouldShowRecentApps    bool                   `json:"shouldShowRecentApps"`
	ShouldShowEmptyState    bool                   `json:"shouldShowEmptyState"`
}

type CatalogAppResponse struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	ArtistName        string   `json:"artistName"`
	BundleID          string   `json:"bundleId"`
	IconURL           *string  `json:"iconUrl"`
	StoreURL          string   `json:"storeUrl"`
	Description       *string  `json:"description"`
	AverageUserRating *float64 `json:"averageUserRating"`
	UserRatingCount   *int     `json:"userRatingCount"`
	Version           string   `json:"version"`
	Price             float64  `json:"price"`
	Currency          string   `json:"currency"`
	Genres            []string `json:"genres"`
	ReleaseDate       string   `json:"releaseDate"`
	MinimumOsVersion  string   `json:"minimumOsVersion"`
	Saved             bool     `json:"saved"`
}

type ListReviewsResponse struct {
	AppID   string           `json:"appId"`
	Reviews []reviews.Review `json:"reviews"`
}
