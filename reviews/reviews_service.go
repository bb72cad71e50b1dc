package reviews

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"github.com/flokiorg/appinion/apperrors"
	"github.com/flokiorg/appinion/constants"
	"github.com/flokiorg/appinion/logger"
	"github.com/flokiorg/appinion/metrics"
)

const op = "reviews"

type reviewsService struct {
	baseURL    string
	httpClient *resty.Client
}

func NewReviewsService(baseURL string, userAgent string, timeout time.Duration) *reviewsService {
	client := resty.New().
		SetHeader("User-Agent", userAgent).
		SetTimeout(timeout)

	return &reviewsService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

func (svc *reviewsService) FetchReviews(ctx context.Context, appID string, limit int) ([]string, error) {
	entries, err := svc.FetchEntries(ctx, appID, limit)
	if err != nil {
		return nil, err
	}

	reviews := make([]string, 0, len(entries))
	for i := range entries {
		reviews = append(reviews, entries[i].Text())
	}
	return reviews, nil
}

// FetchEntries returns at most limit of the most recent reviews. The first
// feed entry describes the app itself and is always skipped.
func (svc *reviewsService) FetchEntries(ctx context.Context, appID string, limit int) ([]Review, error) {
	appID = strings.TrimSpace(appID)
	if appID == "" {
		return nil, apperrors.InvalidInput(op, "App id is required")
	}
	if limit <= 0 {
		limit = constants.REVIEW_FETCH_LIMIT
	}

	start := time.Now()
	body, err := svc.fetchFeed(ctx, appID)
	metrics.RecordRemoteCall(op, err, time.Since(start))
	if err != nil {
		return nil, err
	}

	entries, err := parseFeed(body)
	if err != nil {
		logger.Logger.Error().Err(err).Str("app_id", appID).Msg("Failed to parse review feed")
		return nil, err
	}

	if len(entries) > 0 {
		entries = entries[1:]
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}

	logger.Logger.Debug().Str("app_id", appID).Int("reviews", len(entries)).Msg("Fetched reviews")
	return entries, nil
}

func (svc *reviewsService) fetchFeed(ctx context.Context, appID string) ([]byte, error) {
	feedURL := fmt.Sprintf("%s/id=%s/sortBy=mostRecent/json", svc.baseURL, url.PathEscape(appID))

	resp, err := svc.httpClient.R().
		SetContext(ctx).
		Get(feedURL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Logger.Error().Err(err).Str("url", feedURL).Msg("Review feed request failed")
		return nil, apperrors.Network(op, err)
	}

	if resp.StatusCode() != http.StatusOK {
		logger.Logger.Error().
			Int("status_code", resp.StatusCode()).
			Str("url", feedURL).
			Msg("Review feed returned unexpected status")
		return nil, apperrors.RemoteStatus(op, resp.StatusCode(),
			fmt.Sprintf("Review feed request failed with status code: %d", resp.StatusCode()))
	}

	return resp.Body(), nil
}

// parseFeed extracts every entry of the feed, including the leading app
// metadata entry. The feed encodes a single entry as an object instead of an
// array and omits the field entirely when there are none.
func parseFeed(body []byte) ([]Review, error) {
	if !gjson.ValidBytes(body) {
		return nil, apperrors.Decode(op, errors.New("invalid JSON in review feed"))
	}

	feed := gjson.GetBytes(body, "feed")
	if !feed.IsObject() {
		return nil, apperrors.NoData(op, "No review data available")
	}

	entry := feed.Get("entry")
	if !entry.Exists() {
		return []Review{}, nil
	}

	var raw []gjson.Result
	switch {
	case entry.IsArray():
		raw = entry.Array()
	case entry.IsObject():
		raw = []gjson.Result{entry}
	default:
		return nil, apperrors.Decode(op, errors.New("unexpected feed entry type"))
	}

	entries := make([]Review, 0, len(raw))
	for _, item := range raw {
		entries = append(entries, parseEntry(item))
	}
	return entries, nil
}

func parseEntry(item gjson.Result) Review {
	review := Review{
		ID:      item.Get("id.label").String(),
		Title:   item.Get("title.label").String(),
		Content: item.Get("content.label").String(),
		Author:  item.Get("author.name.label").String(),
	}

	if rating, err := strconv.Atoi(item.Get("im:rating.label").String()); err == nil {
		review.Rating = rating
	}
	if updated, err := time.Parse(time.RFC3339, item.Get("updated.label").String()); err == nil {
		review.Updated = updated
	}
	return review
}
