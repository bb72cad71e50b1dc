package api

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/flokiorg/appinion/apperrors"
	"github.com/flokiorg/appinion/catalog"
	"github.com/flokiorg/appinion/db"
	"github.com/flokiorg/appinion/orchestrator"
	"github.com/flokiorg/appinion/reviews"
	"github.com/flokiorg/appinion/tests/testservice"
)

func spotifyApp() *catalog.App {
	icon := "https://example.com/spotify-512.jpg"
	return &catalog.App{
		TrackID:       324684580,
		TrackName:     "Spotify - Music and Podcasts",
		ArtistName:    "Spotify",
		BundleID:      "com.spotify.client",
		ArtworkURL512: &icon,
		TrackViewURL:  "https://apps.apple.com/us/app/spotify/id324684580",
		Version:       "9.0.2",
	}
}

func newTestAPI(t *testing.T) (*api, *testservice.TestService) {
	t.Helper()
	svc := testservice.CreateTestService(t)
	return NewAPI(svc), svc
}

func searchAndWait(t *testing.T, theAPI *api, svc *testservice.TestService, query string, results []catalog.SearchResult) {
	t.Helper()
	svc.Catalog.On("Search", mock.Anything, query).Return(results, nil).Once()
	theAPI.SetSearchQuery(&SetSearchQueryRequest{Query: query})
	require.Eventually(t, func() bool {
		return theAPI.GetState().Phase == orchestrator.PhaseResults
	}, 2*time.Second, 5*time.Millisecond)
}

func TestGetInfo(t *testing.T) {
	theAPI, svc := newTestAPI(t)

	info, err := theAPI.GetInfo(context.Background())
	require.NoError(t, err)
	assert.True(t, info.SummariesConfigured)
	assert.Equal(t, "gpt-3.5-turbo", info.OpenAIModel)
	assert.Equal(t, testservice.Debounce.Milliseconds(), info.SearchDebounceMs)
	assert.Equal(t, 10, info.RecentAppsLimit)
	assert.Equal(t, svc.Cfg.GetDefaultWorkDir(), info.WorkDir)
}

func TestUpdateSettings(t *testing.T) {
	theAPI, svc := newTestAPI(t)

	model := "gpt-4o-mini"
	require.NoError(t, theAPI.UpdateSettings(&UpdateSettingsRequest{OpenAIModel: &model}))
	assert.Equal(t, model, svc.Cfg.GetOpenAIModel())

	empty := "  "
	err := theAPI.UpdateSettings(&UpdateSettingsRequest{OpenAIModel: &empty})
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput))
	assert.Equal(t, model, svc.Cfg.GetOpenAIModel())
}

func TestGetLogOutput_FileLogDisabled(t *testing.T) {
	theAPI, _ := newTestAPI(t)

	response, err := theAPI.GetLogOutput(context.Background(), &GetLogOutputRequest{MaxLen: 100})
	require.NoError(t, err)
	assert.Equal(t, "file log is disabled", response.Log)
}

func TestSelectSearchResult(t *testing.T) {
	theAPI, svc := newTestAPI(t)
	searchAndWait(t, theAPI, svc, "spotify", []catalog.SearchResult{spotifyApp().ToSearchResult()})

	app, err := theAPI.SelectSearchResult("324684580")
	require.NoError(t, err)
	assert.Equal(t, "Spotify - Music and Podcasts", app.Name)
	assert.False(t, app.SummaryStale)

	state := theAPI.GetState()
	require.NotNil(t, state.Selected)
	assert.Equal(t, "324684580", state.Selected.ID)
	require.Len(t, state.RecentApps, 1)
}

func TestSelectSearchResult_NotInResults(t *testing.T) {
	theAPI, _ := newTestAPI(t)

	_, err := theAPI.SelectSearchResult("42")
	assert.True(t, apperrors.IsKind(err, apperrors.KindNoData))
}

func TestSetSearchQuery_ReturnsDebouncingState(t *testing.T) {
	theAPI, svc := newTestAPI(t)
	svc.Catalog.On("Search", mock.Anything, "maps").Return([]catalog.SearchResult{}, nil).Maybe()

	state := theAPI.SetSearchQuery(&SetSearchQueryRequest{Query: "maps"})
	assert.Equal(t, orchestrator.PhaseDebouncing, state.Phase)
	assert.Equal(t, "maps", state.Query)

	state = theAPI.ClearSearch()
	assert.Equal(t, orchestrator.PhaseIdle, state.Phase)
	assert.True(t, state.ShouldShowEmptyState)
}

func TestSelectCatalogApp(t *testing.T) {
	theAPI, svc := newTestAPI(t)
	svc.Catalog.On("Lookup", mock.Anything, "324684580").Return(spotifyApp(), nil)

	app, err := theAPI.SelectCatalogApp(context.Background(), "324684580")
	require.NoError(t, err)
	assert.Equal(t, "com.spotify.client", app.BundleID)
	require.NotNil(t, app.IconURL)

	stored, err := theAPI.GetApp("324684580")
	require.NoError(t, err)
	assert.Equal(t, "9.0.2", *stored.Version)
}

func TestLookupCatalogApp_ReportsSaved(t *testing.T) {
	theAPI, svc := newTestAPI(t)
	svc.Catalog.On("Lookup", mock.Anything, "324684580").Return(spotifyApp(), nil)

	app, err := theAPI.LookupCatalogApp(context.Background(), "324684580")
	require.NoError(t, err)
	assert.False(t, app.Saved)
	assert.Equal(t, "https://apps.apple.com/us/app/spotify/id324684580", app.StoreURL)

	result := spotifyApp().ToSearchResult()
	require.NoError(t, svc.AppsSvc.Upsert(&result))

	app, err = theAPI.LookupCatalogApp(context.Background(), "324684580")
	require.NoError(t, err)
	assert.True(t, app.Saved)
}

func TestGetApp_NotFound(t *testing.T) {
	theAPI, _ := newTestAPI(t)

	_, err := theAPI.GetApp("missing")
	assert.True(t, apperrors.IsKind(err, apperrors.KindNoData))
}

func TestGenerateSummary(t *testing.T) {
	theAPI, svc := newTestAPI(t)
	result := spotifyApp().ToSearchResult()
	require.NoError(t, svc.AppsSvc.Upsert(&result))

	svc.Reviews.On("FetchReviews", mock.Anything, "324684580", mock.Anything).Return([]string{"Great - Love it"}, nil)
	svc.Summarizer.On("Summarize", mock.Anything, []string{"Great - Love it"}, "Spotify - Music and Podcasts").
		Return("Users love it.", nil)

	app, err := theAPI.GenerateSummary(context.Background(), "324684580")
	require.NoError(t, err)
	require.NotNil(t, app.ReviewSummary)
	assert.Equal(t, "Users love it.", *app.ReviewSummary)
	assert.Equal(t, "9.0.2", *app.SummaryAppVersion)
	assert.NotNil(t, app.SummaryGeneratedDate)
	assert.False(t, app.SummaryStale)
}

func TestGenerateSummary_CollapsesConcurrentRequests(t *testing.T) {
	theAPI, svc := newTestAPI(t)
	result := spotifyApp().ToSearchResult()
	require.NoError(t, svc.AppsSvc.Upsert(&result))

	release := make(chan struct{})
	svc.Reviews.On("FetchReviews", mock.Anything, "324684580", mock.Anything).Return([]string{"Great - Love it"}, nil)
	svc.Summarizer.On("Summarize", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { <-release }).
		Return("Users love it.", nil)

	var wg sync.WaitGroup
	responses := make([]*AppResponse, 2)
	errs := make([]error, 2)
	start := func(i int) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			responses[i], errs[i] = theAPI.GenerateSummary(context.Background(), "324684580")
		}()
	}

	start(0)
	require.Eventually(t, func() bool {
		return theAPI.GetState().IsSummarizing
	}, 2*time.Second, 5*time.Millisecond)
	start(1)
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := range responses {
		require.NoError(t, errs[i])
		assert.Equal(t, "Users love it.", *responses[i].ReviewSummary)
	}
	svc.Summarizer.AssertNumberOfCalls(t, "Summarize", 1)
}

func TestGenerateSummary_UnknownApp(t *testing.T) {
	theAPI, _ := newTestAPI(t)

	_, err := theAPI.GenerateSummary(context.Background(), "missing")
	assert.True(t, apperrors.IsKind(err, apperrors.KindNoData))
}

func TestListReviews(t *testing.T) {
	theAPI, svc := newTestAPI(t)
	entries := []reviews.Review{{ID: "1", Title: "Great", Content: "Love it", Rating: 5}}
	svc.Reviews.On("FetchEntries", mock.Anything, "324684580", 20).Return(entries, nil)

	response, err := theAPI.ListReviews(context.Background(), "324684580", 20)
	require.NoError(t, err)
	assert.Equal(t, "324684580", response.AppID)
	assert.Equal(t, entries, response.Reviews)
}

func TestDeleteAndClearApps(t *testing.T) {
	theAPI, svc := newTestAPI(t)
	for _, id := range []string{"1", "2"} {
		require.NoError(t, svc.AppsSvc.Upsert(&catalog.SearchResult{ID: id, Name: "App " + id, BundleID: "com.example." + id}))
	}

	require.NoError(t, theAPI.DeleteApp("1"))
	recent, err := theAPI.ListRecentApps(0)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "2", recent[0].ID)

	require.NoError(t, theAPI.ClearAllApps())
	recent, err = theAPI.ListRecentApps(0)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestIsSummaryStale(t *testing.T) {
	summary := "summary"
	tests := []struct {
		name       string
		version    string
		summarized string
		expected   bool
	}{
		{name: "same version", version: "9.0.2", summarized: "9.0.2", expected: false},
		{name: "newer version", version: "9.1.0", summarized: "9.0.2", expected: true},
		{name: "older version", version: "9.0.1", summarized: "9.0.2", expected: false},
		{name: "unparseable and different", version: "2024.05 build 7", summarized: "2024.04 build 3", expected: true},
		{name: "unparseable and equal", version: "build 7", summarized: "build 7", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, summarized := tt.version, tt.summarized
			record := &db.AppRecord{ReviewSummary: &summary, Version: &version, SummaryAppVersion: &summarized}
			assert.Equal(t, tt.expected, isSummaryStale(record))
		})
	}

	assert.False(t, isSummaryStale(&db.AppRecord{}))
}
