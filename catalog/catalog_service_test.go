package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flokiorg/appinion/apperrors"
)

const spotifySearchResponse = `{
  "resultCount": 2,
  "results": [
    {
      "trackId": 324684580,
      "trackName": "Spotify - Music and Podcasts",
      "artistName": "Spotify",
      "bundleId": "com.spotify.client",
      "artworkUrl100": "https://example.com/spotify-100.jpg",
      "artworkUrl512": "https://example.com/spotify-512.jpg",
      "trackViewUrl": "https://apps.apple.com/us/app/spotify/id324684580",
      "version": "9.0.2",
      "price": 0,
      "currency": "USD",
      "genres": ["Music"],
      "releaseDate": "2011-07-14T07:00:00Z",
      "minimumOsVersion": "15.0"
    },
    {
      "trackId": 1017492454,
      "trackName": "Spotify Lite",
      "artistName": "Spotify",
      "bundleId": "com.spotify.lite",
      "artworkUrl100": "https://example.com/lite-100.jpg",
      "trackViewUrl": "https://apps.apple.com/us/app/spotify-lite/id1017492454",
      "version": "1.0",
      "price": 0,
      "currency": "USD",
      "genres": [],
      "releaseDate": "2015-07-14T07:00:00Z",
      "minimumOsVersion": "12.0"
    }
  ]
}`

func newTestServer(t *testing.T, handler http.HandlerFunc) (*catalogService, *int32) {
	t.Helper()
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)
	return NewCatalogService(server.URL, "appinion-test", 5*time.Second), &calls
}

func TestSearch_Spotify(t *testing.T) {
	var rawQuery, path, userAgent string
	svc, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		path = r.URL.Path
		userAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
		w.Write([]byte(spotifySearchResponse))
	})

	results, err := svc.Search(context.Background(), "  spotify music ")
	require.NoError(t, err)

	assert.Equal(t, "/search", path)
	assert.Equal(t, "term=spotify%20music&entity=software&limit=50&country=US", rawQuery)
	assert.Equal(t, "appinion-test", userAgent)

	require.Len(t, results, 2)
	assert.Equal(t, "324684580", results[0].ID)
	assert.Equal(t, "Spotify - Music and Podcasts", results[0].Name)
	assert.Equal(t, "com.spotify.client", results[0].BundleID)
	require.NotNil(t, results[0].IconURL)
	assert.Equal(t, "https://example.com/spotify-512.jpg", *results[0].IconURL)
	assert.Equal(t, "9.0.2", results[0].Version)

	require.NotNil(t, results[1].IconURL)
	assert.Equal(t, "https://example.com/lite-100.jpg", *results[1].IconURL)
}

func TestSearch_EmptyTermSkipsNetwork(t *testing.T) {
	svc, calls := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(spotifySearchResponse))
	})

	results, err := svc.Search(context.Background(), "   \t")
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestSearch_EmptyResults(t *testing.T) {
	svc, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"resultCount":0,"results":[]}`))
	})

	results, err := svc.Search(context.Background(), "zzzzzz")
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestSearch_RemoteStatus(t *testing.T) {
	svc, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := svc.Search(context.Background(), "spotify")
	require.Error(t, err)

	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.KindRemoteStatus, appErr.Kind)
	assert.Equal(t, http.StatusServiceUnavailable, appErr.StatusCode)
	assert.Equal(t, "Catalog request failed with status code: 503", err.Error())
}

func TestSearch_MalformedBody(t *testing.T) {
	svc, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": [`))
	})

	_, err := svc.Search(context.Background(), "spotify")
	assert.True(t, apperrors.IsKind(err, apperrors.KindDecode))
}

func TestSearch_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()
	svc := NewCatalogService(server.URL, "appinion-test", time.Second)

	_, err := svc.Search(context.Background(), "spotify")
	assert.True(t, apperrors.IsKind(err, apperrors.KindNetwork))
}

func TestSearch_Cancelled(t *testing.T) {
	release := make(chan struct{})
	svc, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := svc.Search(ctx, "spotify")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLookup(t *testing.T) {
	var rawQuery string
	svc, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		assert.Equal(t, "/lookup", r.URL.Path)
		w.Write([]byte(spotifySearchResponse))
	})

	app, err := svc.Lookup(context.Background(), "324684580")
	require.NoError(t, err)
	assert.Equal(t, "id=324684580&entity=software", rawQuery)
	assert.Equal(t, int64(324684580), app.TrackID)
	assert.Equal(t, "324684580", app.ID())
}

func TestLookup_NotFound(t *testing.T) {
	svc, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"resultCount":0,"results":[]}`))
	})

	_, err := svc.Lookup(context.Background(), "1")
	assert.True(t, apperrors.IsKind(err, apperrors.KindNoData))

	_, err = svc.Lookup(context.Background(), " ")
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput))
}

func TestEncodeTerm(t *testing.T) {
	assert.Equal(t, "spotify", EncodeTerm("spotify"))
	assert.Equal(t, "rock%20&%20roll+", EncodeTerm("rock & roll+"))
	assert.Equal(t, "caf%C3%A9%23", EncodeTerm("café#"))
}

func TestIconURL(t *testing.T) {
	large := "https://example.com/512.jpg"
	small := "https://example.com/100.jpg"
	empty := ""

	assert.Equal(t, large, *(&App{ArtworkURL512: &large, ArtworkURL100: &small}).IconURL())
	assert.Equal(t, small, *(&App{ArtworkURL512: &empty, ArtworkURL100: &small}).IconURL())
	assert.Nil(t, (&App{}).IconURL())
}
