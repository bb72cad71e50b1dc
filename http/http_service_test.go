package http

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/flokiorg/appinion/api"
	"github.com/flokiorg/appinion/apperrors"
	"github.com/flokiorg/appinion/catalog"
	"github.com/flokiorg/appinion/orchestrator"
	"github.com/flokiorg/appinion/tests/testservice"
)

func newTestServer(t *testing.T) (*echo.Echo, *testservice.TestService) {
	t.Helper()
	svc := testservice.CreateTestService(t)
	e := echo.New()
	NewHttpService(svc, svc.GetEventPublisher()).RegisterSharedRoutes(e)
	return e, svc
}

func doRequest(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestInfoHandler(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doRequest(e, http.MethodGet, "/api/info", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var info api.InfoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.True(t, info.SummariesConfigured)
	assert.Equal(t, int64(50), info.SearchDebounceMs)
}

func TestSearchHandlers(t *testing.T) {
	e, svc := newTestServer(t)
	svc.Catalog.On("Search", mock.Anything, "spotify").
		Return([]catalog.SearchResult{{ID: "324684580", Name: "Spotify", BundleID: "com.spotify.client"}}, nil)

	rec := doRequest(e, http.MethodPut, "/api/search", `{"query":"spotify"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var state api.StateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, orchestrator.PhaseDebouncing, state.Phase)

	require.Eventually(t, func() bool {
		rec := doRequest(e, http.MethodGet, "/api/state", "")
		var state api.StateResponse
		return json.Unmarshal(rec.Body.Bytes(), &state) == nil && state.Phase == orchestrator.PhaseResults
	}, 2*time.Second, 10*time.Millisecond)

	rec = doRequest(e, http.MethodPost, "/api/search/results/324684580/select", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var app api.AppResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &app))
	assert.Equal(t, "com.spotify.client", app.BundleID)

	rec = doRequest(e, http.MethodGet, "/api/apps/recent?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var recent []api.AppResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &recent))
	require.Len(t, recent, 1)

	rec = doRequest(e, http.MethodDelete, "/api/search", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, orchestrator.PhaseIdle, state.Phase)
	assert.True(t, state.ShouldShowRecentApps)
}

func TestSearchHandler_BadBody(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doRequest(e, http.MethodPut, "/api/search", `{"query":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecentAppsHandler_InvalidLimit(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doRequest(e, http.MethodGet, "/api/apps/recent?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestErrorStatusCodes(t *testing.T) {
	e, svc := newTestServer(t)
	require.NoError(t, svc.AppsSvc.Upsert(&catalog.SearchResult{ID: "1", Name: "App", BundleID: "com.example.app"}))
	svc.Reviews.On("FetchReviews", mock.Anything, "1", mock.Anything).Return([]string{"Nice - Works"}, nil)
	svc.Summarizer.On("Summarize", mock.Anything, mock.Anything, "App").
		Return("", apperrors.Configuration("summarizer", "OpenAI API key required"))
	svc.Catalog.On("Lookup", mock.Anything, "2").
		Return(nil, apperrors.RemoteStatus("catalog", 503, "Catalog request failed with status code: 503"))

	rec := doRequest(e, http.MethodGet, "/api/apps/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(e, http.MethodPost, "/api/search/results/missing/select", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(e, http.MethodPost, "/api/apps/1/summary", "")
	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)
	var errResponse ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResponse))
	assert.Equal(t, "OpenAI API key required", errResponse.Message)

	rec = doRequest(e, http.MethodGet, "/api/catalog/2", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec = doRequest(e, http.MethodGet, "/api/state", "")
	var state api.StateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, orchestrator.PhaseError, state.Phase)

	rec = doRequest(e, http.MethodDelete, "/api/error", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Nil(t, state.ErrorMessage)
}

func TestDeleteHandlers(t *testing.T) {
	e, svc := newTestServer(t)
	require.NoError(t, svc.AppsSvc.Upsert(&catalog.SearchResult{ID: "1", Name: "One", BundleID: "com.example.one"}))
	require.NoError(t, svc.AppsSvc.Upsert(&catalog.SearchResult{ID: "2", Name: "Two", BundleID: "com.example.two"}))

	rec := doRequest(e, http.MethodDelete, "/api/apps/1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = doRequest(e, http.MethodGet, "/api/apps/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(e, http.MethodDelete, "/api/apps", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = doRequest(e, http.MethodGet, "/api/apps/2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateSettingsHandler(t *testing.T) {
	e, svc := newTestServer(t)

	rec := doRequest(e, http.MethodPatch, "/api/settings", `{"openAIModel":"gpt-4o-mini"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "gpt-4o-mini", svc.Cfg.GetOpenAIModel())

	rec = doRequest(e, http.MethodPatch, "/api/settings", `{"openAIModel":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsHandler(t *testing.T) {
	e, _ := newTestServer(t)
	doRequest(e, http.MethodGet, "/api/state", "")

	rec := doRequest(e, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "appinion_http_requests_total")
}

func TestEventsHandler_StreamsStateChanges(t *testing.T) {
	e, svc := newTestServer(t)
	svc.Catalog.On("Search", mock.Anything, mock.Anything).Return([]catalog.SearchResult{}, nil).Maybe()
	server := httptest.NewServer(e)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get(echo.HeaderContentType))

	reader := bufio.NewReader(resp.Body)
	nextEventName := func() string {
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			if strings.HasPrefix(line, "event: ") {
				return strings.TrimSpace(strings.TrimPrefix(line, "event: "))
			}
		}
	}

	assert.Equal(t, "state", nextEventName())

	svc.Orchestrator.SetQuery("maps")
	assert.Equal(t, "state_changed", nextEventName())
}
