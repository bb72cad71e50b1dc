package apps

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flokiorg/appinion/catalog"
	"github.com/flokiorg/appinion/constants"
	"github.com/flokiorg/appinion/events"
	"github.com/flokiorg/appinion/tests"
	"github.com/flokiorg/appinion/tests/mocks"
)

func strPtr(s string) *string {
	return &s
}

// newTestAppsService returns a service whose clock advances one second per
// mutation.
func newTestAppsService(t *testing.T, eventPublisher events.EventPublisher) *appsService {
	t.Helper()
	svc := NewAppsService(tests.CreateTestDB(t), eventPublisher, 0)
	clock := time.Date(2025, 6, 24, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return svc
}

func spotify() *catalog.SearchResult {
	return &catalog.SearchResult{
		ID:       "324684580",
		Name:     "Spotify - Music and Podcasts",
		BundleID: "com.spotify.client",
		IconURL:  strPtr("https://example.com/spotify-512.jpg"),
		Version:  "9.0.2",
	}
}

func TestUpsert_Idempotent(t *testing.T) {
	svc := newTestAppsService(t, nil)

	require.NoError(t, svc.Upsert(spotify()))
	first, err := svc.GetApp("324684580")
	require.NoError(t, err)
	require.NotNil(t, first)

	require.NoError(t, svc.Upsert(spotify()))
	second, err := svc.GetApp("324684580")
	require.NoError(t, err)

	var count int64
	require.NoError(t, svc.db.Table("app_records").Count(&count).Error)
	assert.Equal(t, int64(1), count)
	assert.True(t, second.LastSearched.After(first.LastSearched))
	assert.Equal(t, "Spotify - Music and Podcasts", second.Name)
	require.NotNil(t, second.Version)
	assert.Equal(t, "9.0.2", *second.Version)
}

func TestUpsert_KeepsIconWhenCandidateHasNone(t *testing.T) {
	svc := newTestAppsService(t, nil)
	require.NoError(t, svc.Upsert(spotify()))

	candidate := spotify()
	candidate.IconURL = nil
	candidate.Version = ""
	require.NoError(t, svc.Upsert(candidate))

	record, err := svc.GetApp("324684580")
	require.NoError(t, err)
	require.NotNil(t, record.IconURL)
	assert.Equal(t, "https://example.com/spotify-512.jpg", *record.IconURL)
	require.NotNil(t, record.Version)
	assert.Equal(t, "9.0.2", *record.Version)

	candidate.IconURL = strPtr("https://example.com/new.jpg")
	require.NoError(t, svc.Upsert(candidate))
	record, err = svc.GetApp("324684580")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/new.jpg", *record.IconURL)
}

func TestUpsert_InvalidCandidate(t *testing.T) {
	svc := newTestAppsService(t, nil)
	assert.Error(t, svc.Upsert(nil))
	assert.Error(t, svc.Upsert(&catalog.SearchResult{Name: "No id"}))
}

func TestGetApp_Missing(t *testing.T) {
	svc := newTestAppsService(t, nil)

	record, err := svc.GetApp("missing")
	assert.NoError(t, err)
	assert.Nil(t, record)
}

func TestRecentApps_BoundAndOrder(t *testing.T) {
	svc := newTestAppsService(t, nil)
	for _, id := range []string{"1", "2", "3", "4", "5"} {
		require.NoError(t, svc.Upsert(&catalog.SearchResult{ID: id, Name: "App " + id}))
	}
	require.NoError(t, svc.TouchApp("2"))

	recent, err := svc.RecentApps(3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "2", recent[0].ID)
	assert.Equal(t, "5", recent[1].ID)
	assert.Equal(t, "4", recent[2].ID)

	all, err := svc.RecentApps(100)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestRecentApps_DefaultLimit(t *testing.T) {
	svc := newTestAppsService(t, nil)
	for i := 0; i < constants.RECENT_APPS_LIMIT+2; i++ {
		id := string(rune('a' + i))
		require.NoError(t, svc.Upsert(&catalog.SearchResult{ID: id, Name: id}))
	}

	recent, err := svc.RecentApps(0)
	require.NoError(t, err)
	assert.Len(t, recent, constants.RECENT_APPS_LIMIT)
}

func TestTouchApp_Missing(t *testing.T) {
	svc := newTestAppsService(t, nil)
	err := svc.TouchApp("missing")
	assert.True(t, IsNotFound(err))
}

func TestUpdateSummary(t *testing.T) {
	svc := newTestAppsService(t, nil)
	require.NoError(t, svc.Upsert(spotify()))

	require.NoError(t, svc.UpdateSummary("324684580", "Users love it.", strPtr("9.0.2")))

	record, err := svc.GetApp("324684580")
	require.NoError(t, err)
	assert.True(t, record.HasSummary())
	assert.Equal(t, "Users love it.", *record.ReviewSummary)
	require.NotNil(t, record.SummaryGeneratedDate)
	require.NotNil(t, record.SummaryAppVersion)
	assert.Equal(t, "9.0.2", *record.SummaryAppVersion)

	// unknown apps are ignored
	assert.NoError(t, svc.UpdateSummary("missing", "x", nil))
	missing, err := svc.GetApp("missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDeleteAndClear(t *testing.T) {
	svc := newTestAppsService(t, nil)
	require.NoError(t, svc.Upsert(spotify()))
	require.NoError(t, svc.Upsert(&catalog.SearchResult{ID: "1", Name: "Other"}))

	require.NoError(t, svc.DeleteApp("324684580"))
	record, err := svc.GetApp("324684580")
	require.NoError(t, err)
	assert.Nil(t, record)
	assert.NoError(t, svc.DeleteApp("324684580"))

	require.NoError(t, svc.ClearAll())
	recent, err := svc.RecentApps(10)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestMutationsPublishEvents(t *testing.T) {
	publisher := events.NewEventPublisher()
	subscriber := &mocks.RecordingSubscriber{}
	publisher.RegisterSubscriber(subscriber)
	svc := newTestAppsService(t, publisher)

	require.NoError(t, svc.Upsert(spotify()))
	require.NoError(t, svc.UpdateSummary("324684580", "ok", nil))
	require.NoError(t, svc.DeleteApp("324684580"))
	require.NoError(t, svc.ClearAll())

	for _, event := range []string{
		constants.EVENT_APP_SAVED,
		constants.EVENT_APP_SUMMARY_UPDATED,
		constants.EVENT_APP_DELETED,
		constants.EVENT_APPS_CLEARED,
	} {
		assert.Eventually(t, func() bool { return len(subscriber.Events(event)) > 0 }, time.Second, 10*time.Millisecond, event)
	}
}
