package api

import (
	"context"
	"errors"
	"strings"

	"github.com/Masterminds/semver/v3"
	"golang.org/x/sync/singleflight"

	"github.com/flokiorg/appinion/apperrors"
	"github.com/flokiorg/appinion/apps"
	"github.com/flokiorg/appinion/catalog"
	"github.com/flokiorg/appinion/config"
	"github.com/flokiorg/appinion/db"
	"github.com/flokiorg/appinion/logger"
	"github.com/flokiorg/appinion/orchestrator"
	"github.com/flokiorg/appinion/pkg/version"
	"github.com/flokiorg/appinion/reviews"
	"github.com/flokiorg/appinion/service"
	"github.com/flokiorg/appinion/utils"
)

type api struct {
	svc          service.Service
	cfg          config.Config
	orchestrator *orchestrator.Orchestrator
	appsSvc      apps.AppsService
	catalogSvc   catalog.Service
	reviewsSvc   reviews.Service
	summaries    singleflight.Group
}

func NewAPI(svc service.Service) *api {
	return &api{
		svc:          svc,
		cfg:          svc.GetConfig(),
		orchestrator: svc.GetOrchestrator(),
		appsSvc:      svc.GetAppsService(),
		catalogSvc:   svc.GetCatalogService(),
		reviewsSvc:   svc.GetReviewsService(),
	}
}

func (api *api) GetInfo(ctx context.Context) (*InfoResponse, error) {
	info := InfoResponse{}
	info.Version = version.Tag
	info.WorkDir = api.cfg.GetDefaultWorkDir()
	info.SummariesConfigured = api.cfg.HasOpenAIAPIKey()
	info.OpenAIModel = api.cfg.GetOpenAIModel()
	info.CatalogURL = api.cfg.GetCatalogURL()
	info.ReviewFeedURL = api.cfg.GetReviewFeedURL()
	info.SearchDebounceMs = api.cfg.GetSearchDebounce().Milliseconds()
	info.RecentAppsLimit = api.cfg.GetRecentAppsLimit()
	info.LogFileEnabled = logger.GetLogFilePath() != ""
	return &info, nil
}

func (api *api) UpdateSettings(updateSettingsRequest *UpdateSettingsRequest) error {
	if updateSettingsRequest.OpenAIModel != nil {
		model := strings.TrimSpace(*updateSettingsRequest.OpenAIModel)
		if model == "" {
			return apperrors.InvalidInput("update settings", "OpenAI model must not be empty")
		}
		err := api.cfg.SetOpenAIModel(model)
		if err != nil {
			return err
		}
	}
	return nil
}

func (api *api) GetLogOutput(ctx context.Context, getLogRequest *GetLogOutputRequest) (*GetLogOutputResponse, error) {
	var logData []byte

	logFileName := logger.GetLogFilePath()
	if logFileName == "" {
		logData = []byte("file log is disabled")
	} else {
		var err error
		logData, err = utils.ReadFileTail(logFileName, getLogRequest.MaxLen)
		if err != nil {
			return nil, err
		}
	}

	return &GetLogOutputResponse{Log: string(logData)}, nil
}

func (api *api) GetState() *StateResponse {
	return toStateResponse(api.orchestrator.State())
}

func (api *api) SetSearchQuery(setSearchQueryRequest *SetSearchQueryRequest) *StateResponse {
	api.orchestrator.SetQuery(setSearchQueryRequest.Query)
	return api.GetState()
}

func (api *api) ClearSearch() *StateResponse {
	api.orchestrator.ClearSearch()
	return api.GetState()
}

func (api *api) DismissError() *StateResponse {
	api.orchestrator.DismissError()
	return api.GetState()
}

// SelectSearchResult selects one of the results currently shown.
func (api *api) SelectSearchResult(id string) (*AppResponse, error) {
	state := api.orchestrator.State()
	for _, result := range state.Results {
		if result.ID == id {
			record, err := api.orchestrator.SelectSearchResult(result)
			if err != nil {
				return nil, err
			}
			return toAppResponse(record), nil
		}
	}
	return nil, apperrors.NoData("select search result", "Search result not found")
}

// SearchCatalog runs a single search without debounce and without touching
// the shared state.
func (api *api) SearchCatalog(ctx context.Context, term string) ([]catalog.SearchResult, error) {
	results, err := api.catalogSvc.Search(ctx, term)
	if err != nil {
		logger.Logger.Error().Err(err).Str("term", term).Msg("Failed to search catalog")
		return nil, err
	}
	return results, nil
}

func (api *api) LookupCatalogApp(ctx context.Context, id string) (*CatalogAppResponse, error) {
	app, err := api.catalogSvc.Lookup(ctx, id)
	if err != nil {
		logger.Logger.Error().Err(err).Str("app_id", id).Msg("Failed to look up catalog app")
		return nil, err
	}

	record, err := api.appsSvc.GetApp(app.ID())
	if err != nil {
		return nil, err
	}

	return &CatalogAppResponse{
		ID:                app.ID(),
		Name:              app.TrackName,
		ArtistName:        app.ArtistName,
		BundleID:          app.BundleID,
		IconURL:           app.IconURL(),
		StoreURL:          app.TrackViewURL,
		Description:       app.Description,
		AverageUserRating: app.AverageUserRating,
		UserRatingCount:   app.UserRatingCount,
		Version:           app.Version,
		Price:             app.Price,
		Currency:          app.Currency,
		Genres:            app.Genres,
		ReleaseDate:       app.ReleaseDate,
		MinimumOsVersion:  app.MinimumOsVersion,
		Saved:             record != nil,
	}, nil
}

// SelectCatalogApp looks an app up by id and selects it as if it had been
// picked from the search results.
func (api *api) SelectCatalogApp(ctx context.Context, id string) (*AppResponse, error) {
	app, err := api.catalogSvc.Lookup(ctx, id)
	if err != nil {
		logger.Logger.Error().Err(err).Str("app_id", id).Msg("Failed to look up catalog app")
		return nil, err
	}
	record, err := api.orchestrator.SelectSearchResult(app.ToSearchResult())
	if err != nil {
		return nil, err
	}
	return toAppResponse(record), nil
}

func (api *api) ListRecentApps(limit int) ([]AppResponse, error) {
	records, err := api.appsSvc.RecentApps(limit)
	if err != nil {
		return nil, err
	}
	return toAppResponses(records), nil
}

func (api *api) GetApp(id string) (*AppResponse, error) {
	record, err := api.appsSvc.GetApp(id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, apperrors.NoData("get app", "App not found")
	}
	return toAppResponse(record), nil
}

func (api *api) SelectRecentApp(id string) (*AppResponse, error) {
	record, err := api.orchestrator.SelectRecentApp(id)
	if err != nil {
		return nil, err
	}
	return toAppResponse(record), nil
}

// GenerateSummary collapses concurrent requests for the same app into a
// single pipeline run.
func (api *api) GenerateSummary(ctx context.Context, id string) (*AppResponse, error) {
	result, err, shared := api.summaries.Do(id, func() (interface{}, error) {
		return api.orchestrator.GenerateSummary(ctx, id)
	})
	if shared {
		logger.Logger.Debug().Str("app_id", id).Msg("Joined in-flight summary generation")
	}
	if err != nil {
		return nil, err
	}
	record, ok := result.(*db.AppRecord)
	if !ok || record == nil {
		return nil, errors.New("summary generation returned no record")
	}
	return toAppResponse(record), nil
}

func (api *api) ListReviews(ctx context.Context, id string, limit int) (*ListReviewsResponse, error) {
	entries, err := api.reviewsSvc.FetchEntries(ctx, id, limit)
	if err != nil {
		logger.Logger.Error().Err(err).Str("app_id", id).Msg("Failed to fetch reviews")
		return nil, err
	}
	return &ListReviewsResponse{AppID: id, Reviews: entries}, nil
}

func (api *api) DeleteApp(id string) error {
	return api.orchestrator.DeleteApp(id)
}

func (api *api) ClearAllApps() error {
	return api.orchestrator.ClearAll()
}

func toStateResponse(state orchestrator.State) *StateResponse {
	response := &StateResponse{
		Revision:                state.Revision,
		Phase:                   state.Phase,
		Query:                   state.Query,
		Results:                 state.Results,
		IsSearching:             state.IsSearching,
		IsSummarizing:           state.IsSummarizing,
		ErrorMessage:            state.ErrorMessage,
		RecentApps:              toAppResponses(state.RecentApps),
		ShouldShowSearchResults: state.ShouldShowSearchResults(),
		ShouldShowRecentApps:    state.ShouldShowRecentApps(),
		ShouldShowEmptyState:    state.ShouldShowEmptyState(),
	}
	if state.Selected != nil {
		response.Selected = toAppResponse(state.Selected)
	}
	return response
}

func toAppResponses(records []db.AppRecord) []AppResponse {
	responses := make([]AppResponse, 0, len(records))
	for i := range records {
		responses = append(responses, *toAppResponse(&records[i]))
	}
	return responses
}

func toAppResponse(record *db.AppRecord) *AppResponse {
	return &AppResponse{
		ID:                   record.ID,
		Name:                 record.Name,
		BundleID:             record.BundleID,
		IconURL:              record.IconURL,
		Version:              record.Version,
		LastSearched:         record.LastSearched,
		ReviewSummary:        record.ReviewSummary,
		SummaryGeneratedDate: record.SummaryGeneratedDate,
		SummaryAppVersion:    record.SummaryAppVersion,
		SummaryStale:         isSummaryStale(record),
	}
}

// isSummaryStale reports whether the app has been updated since its summary
// was generated.
func isSummaryStale(record *db.AppRecord) bool {
	if !record.HasSummary() || record.Version == nil || record.SummaryAppVersion == nil {
		return false
	}
	current, summarized := *record.Version, *record.SummaryAppVersion
	newer, err := isVersionNewer(current, summarized)
	if err != nil {
		return current != summarized
	}
	return newer
}

func isVersionNewer(v1, v2 string) (bool, error) {
	ver1, err := semver.NewVersion(v1)
	if err != nil {
		return false, err
	}
	ver2, err := semver.NewVersion(v2)
	if err != nil {
		return false, err
	}
	return ver1.GreaterThan(ver2), nil
}
