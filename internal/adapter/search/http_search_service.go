package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"nalar/internal/config"
	"nalar/internal/domain"
	"nalar/internal/logger"

	"go.uber.org/zap"
)

// HTTPSearchService implements domain.ResourceSearchService against an
// external search API. Search is a best-effort enrichment step: every failure
// is logged and degraded to an empty result list, never propagated.
type HTTPSearchService struct {
	baseURL string
	apiKey  string
	limit   int
	client  *http.Client
}

// NewHTTPSearchService creates a search client. An empty base URL yields a
// disabled service that always returns no results.
func NewHTTPSearchService(cfg config.SearchConfig) domain.ResourceSearchService {
	limit := cfg.Limit
	if limit <= 0 {
		limit = 3
	}
	return &HTTPSearchService{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		limit:   limit,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type searchResult struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Type  string `json:"type"`
}

// Search queries the external endpoint for learning resources.
func (s *HTTPSearchService) Search(ctx context.Context, query string, limit int) ([]domain.StepResource, error) {
	if s.baseURL == "" {
		return nil, nil
	}
	if limit <= 0 || limit > s.limit {
		limit = s.limit
	}

	endpoint := fmt.Sprintf("%s/search?q=%s&limit=%d", s.baseURL, url.QueryEscape(query), limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		logger.Get().Warn("Failed to build resource search request", zap.Error(err))
		return nil, nil
	}
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		logger.Get().Warn("Resource search failed", zap.String("query", query), zap.Error(err))
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Get().Warn("Resource search returned non-200",
			zap.String("query", query),
			zap.Int("status", resp.StatusCode),
		)
		return nil, nil
	}

	var payload struct {
		Results []searchResult `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		logger.Get().Warn("Failed to decode resource search response", zap.Error(err))
		return nil, nil
	}

	resources := make([]domain.StepResource, 0, len(payload.Results))
	for _, r := range payload.Results {
		resources = append(resources, domain.StepResource{
			Title: r.Title,
			URL:   r.URL,
			Type:  r.Type,
		})
	}
	return resources, nil
}

var _ domain.ResourceSearchService = (*HTTPSearchService)(nil)
