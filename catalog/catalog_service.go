package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/flokiorg/appinion/apperrors"
	"github.com/flokiorg/appinion/constants"
	"github.com/flokiorg/appinion/logger"
	"github.com/flokiorg/appinion/metrics"
)

const op = "catalog"

type catalogService struct {
	baseURL    string
	httpClient *resty.Client
}

func NewCatalogService(baseURL string, userAgent string, timeout time.Duration) *catalogService {
	client := resty.New().
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)

	return &catalogService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

func (svc *catalogService) Search(ctx context.Context, term string) ([]SearchResult, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []SearchResult{}, nil
	}

	url := fmt.Sprintf("%s/search?term=%s&entity=%s&limit=%d&country=%s",
		svc.baseURL, EncodeTerm(term), constants.CATALOG_ENTITY, constants.CATALOG_SEARCH_LIMIT, constants.CATALOG_COUNTRY)

	response, err := svc.get(ctx, url)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(response.Results))
	for i := range response.Results {
		results = append(results, response.Results[i].ToSearchResult())
	}

	logger.Logger.Debug().Str("term", term).Int("results", len(results)).Msg("Catalog search completed")
	return results, nil
}

func (svc *catalogService) Lookup(ctx context.Context, id string) (*App, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.InvalidInput(op, "App id is required")
	}

	url := fmt.Sprintf("%s/lookup?id=%s&entity=%s", svc.baseURL, EncodeTerm(id), constants.CATALOG_ENTITY)

	response, err := svc.get(ctx, url)
	if err != nil {
		return nil, err
	}
	if len(response.Results) == 0 {
		return nil, apperrors.NoData(op, fmt.Sprintf("App %s not found in catalog", id))
	}

	return &response.Results[0], nil
}

func (svc *catalogService) get(ctx context.Context, url string) (*searchResponse, error) {
	start := time.Now()
	response, err := svc.doGet(ctx, url)
	metrics.RecordRemoteCall(op, err, time.Since(start))
	return response, err
}

func (svc *catalogService) doGet(ctx context.Context, url string) (*searchResponse, error) {
	resp, err := svc.httpClient.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Logger.Error().Err(err).Str("url", url).Msg("Catalog request failed")
		return nil, apperrors.Network(op, err)
	}

	if resp.StatusCode() != http.StatusOK {
		logger.Logger.Error().
			Int("status_code", resp.StatusCode()).
			Str("url", url).
			Msg("Catalog returned unexpected status")
		return nil, apperrors.RemoteStatus(op, resp.StatusCode(),
			fmt.Sprintf("Catalog request failed with status code: %d", resp.StatusCode()))
	}

	response := &searchResponse{}
	if err := json.Unmarshal(resp.Body(), response); err != nil {
		logger.Logger.Error().Err(err).Str("url", url).Msg("Failed to decode catalog response")
		return nil, apperrors.Decode(op, err)
	}
	for i := range response.Results {
		if response.Results[i].TrackID == 0 {
			err := errors.New("catalog record without trackId")
			logger.Logger.Error().Err(err).Str("url", url).Msg("Failed to decode catalog response")
			return nil, apperrors.Decode(op, err)
		}
	}

	return response, nil
}

// EncodeTerm percent-encodes a search term for the query string. Query-safe
// characters, including '+' and '&', are passed through unescaped.
func EncodeTerm(term string) string {
	var sb strings.Builder
	for i := 0; i < len(term); i++ {
		c := term[i]
		if isQueryAllowed(c) {
			sb.WriteByte(c)
			continue
		}
		fmt.Fprintf(&sb, "%%%02X", c)
	}
	return sb.String()
}

func isQueryAllowed(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-._~!$&'()*+,;=:@/?", c) >= 0
}
