package catalog

import (
	"context"
	"strconv"
)

type Service interface {
	Search(ctx context.Context, term string) ([]SearchResult, error)
	Lookup(ctx context.Context, id string) (*App, error)
}

// App is a software record as returned by the catalog search and lookup
// endpoints.
type App struct {
	TrackID           int64    `json:"trackId"`
	TrackName         string   `json:"trackName"`
	ArtistName        string   `json:"artistName"`
	BundleID          string   `json:"bundleId"`
	ArtworkURL512     *string  `json:"artworkUrl512,omitempty"`
	ArtworkURL100     *string  `json:"artworkUrl100,omitempty"`
	TrackViewURL      string   `json:"trackViewUrl"`
	Description       *string  `json:"description,omitempty"`
	AverageUserRating *float64 `json:"averageUserRating,omitempty"`
	UserRatingCount   *int     `json:"userRatingCount,omitempty"`
	Version           string   `json:"version"`
	Price             float64  `json:"price"`
	Currency          string   `json:"currency"`
	Genres            []string `json:"genres"`
	ReleaseDate       string   `json:"releaseDate"`
	MinimumOsVersion  string   `json:"minimumOsVersion"`
}

// IconURL prefers the 512px artwork over the 100px one.
func (a *App) IconURL() *string {
	if a.ArtworkURL512 != nil && *a.ArtworkURL512 != "" {
		url := *a.ArtworkURL512
		return &url
	}
	if a.ArtworkURL100 != nil && *a.ArtworkURL100 != "" {
		url := *a.ArtworkURL100
		return &url
	}
	return nil
}

func (a *App) ID() string {
	return strconv.FormatInt(a.TrackID, 10)
}

func (a *App) ToSearchResult() SearchResult {
	return SearchResult{
		ID:         a.ID(),
		Name:       a.TrackName,
		BundleID:   a.BundleID,
		IconURL:    a.IconURL(),
		ArtistName: a.ArtistName,
		Version:    a.Version,
	}
}

// SearchResult is the normalized projection of a catalog record.
type SearchResult struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	BundleID   string  `json:"bundleId"`
	IconURL    *string `json:"iconUrl"`
	ArtistName string  `json:"artistName"`
	Version    string  `json:"version"`
}

type searchResponse struct {
	ResultCount int   `json:"resultCount"`
	Results     []App `json:"results"`
}
