package areena

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/s0up4200/areena/cache"
)

// Client resolves catalog entities through the cached, paginated fetch layer
type Client struct {
	creds       Credentials
	apiURL      string
	areenaURL   string
	catalogTTL  time.Duration
	listingTTL  time.Duration
	emptyResult EmptyResultPolicy
	fetcher     *Fetcher
	paginator   *Paginator
	logger      zerolog.Logger
}

// SeriesQuery filters a series search by category ids
type SeriesQuery struct {
	IncludeCategories []string
	ExcludeCategories []string
}

// ProgramQuery filters a program search. Empty fields are not sent.
type ProgramQuery struct {
	Query             string
	ID                string
	Series            string
	Publisher         string
	IncludeCategories []string
	ExcludeCategories []string
}

// NewClient creates a new catalog client
func NewClient(creds Credentials, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if creds.AppID == "" {
		return nil, fmt.Errorf("%w: app id is required", ErrInvalidConfig)
	}
	if creds.AppKey == "" {
		return nil, fmt.Errorf("%w: app key is required", ErrInvalidConfig)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	for _, base := range []string{o.apiURL, o.areenaURL} {
		if _, err := url.ParseRequestURI(base); err != nil {
			return nil, fmt.Errorf("%w: base url %q: %v", ErrInvalidConfig, base, err)
		}
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: o.timeout}
	}

	store := o.store
	if store == nil {
		store = cache.NewFileStore(o.cacheDir, cache.WithClock(o.now))
	}

	fetcher := NewFetcher(store, httpClient, o.requestDelay, logger)

	return &Client{
		creds:       creds,
		apiURL:      o.apiURL,
		areenaURL:   o.areenaURL,
		catalogTTL:  o.catalogTTL,
		listingTTL:  o.listingTTL,
		emptyResult: o.emptyResult,
		fetcher:     fetcher,
		paginator:   NewPaginator(fetcher, o.pageSize, logger),
		logger:      logger,
	}, nil
}

// query returns a fresh query carrying the credentials
func (c *Client) query() url.Values {
	return url.Values{
		cache.ParamAppID:  {c.creds.AppID},
		cache.ParamAppKey: {c.creds.AppKey},
	}
}

// categoryFilter joins include ids and "-"-prefixed exclude ids
func categoryFilter(include, exclude []string) string {
	ids := make([]string, 0, len(include)+len(exclude))
	for _, id := range include {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	for _, id := range exclude {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, "-"+id)
		}
	}
	return strings.Join(ids, ",")
}

func (c *Client) apiEndpoint(path string) string {
	return c.apiURL + path
}

// ListCategories returns every program category
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	items, err := c.paginator.Paginate(ctx, c.apiEndpoint("/v1/programs/categories.json"), c.query(), c.catalogTTL, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	categories := make([]Category, 0, len(items))
	for _, raw := range items {
		category, ok, err := normalizeCategory(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to list categories: %w", err)
		}
		if ok {
			categories = append(categories, category)
		}
	}

	c.logger.Debug().Msgf("Retrieved %d categories", len(categories))
	return categories, nil
}

// ListServices returns the raw service records
func (c *Client) ListServices(ctx context.Context) ([]json.RawMessage, error) {
	items, err := c.paginator.Paginate(ctx, c.apiEndpoint("/v1/programs/services.json"), c.query(), c.catalogTTL, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return items, nil
}

// ListSchedules returns the raw schedule records
func (c *Client) ListSchedules(ctx context.Context) ([]json.RawMessage, error) {
	items, err := c.paginator.Paginate(ctx, c.apiEndpoint("/v1/programs/schedules.json"), c.query(), c.catalogTTL, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	return items, nil
}

// SearchSeries returns on-demand series matching the category filter.
// Series without any title are skipped.
func (c *Client) SearchSeries(ctx context.Context, q SeriesQuery) ([]Series, error) {
	params := c.query()
	params.Set("availability", "ondemand")
	if categories := categoryFilter(q.IncludeCategories, q.ExcludeCategories); categories != "" {
		params.Set("category", categories)
	}

	items, err := c.paginator.Paginate(ctx, c.apiEndpoint("/v1/series/items.json"), params, c.listingTTL, SeriesSearchCeiling)
	if err != nil {
		return nil, fmt.Errorf("failed to search series: %w", err)
	}

	series := make([]Series, 0, len(items))
	for _, raw := range items {
		s, ok, err := normalizeSeries(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to search series: %w", err)
		}
		if ok {
			series = append(series, s)
		}
	}

	c.logger.Debug().
		Int("count", len(series)).
		Int("skipped", len(items)-len(series)).
		Msg("Series search complete")
	return series, nil
}

// ListEpisodesBySeries returns the on-demand episodes of seriesID in the
// order the server returns them. seasonID is optional.
func (c *Client) ListEpisodesBySeries(ctx context.Context, seriesID, seasonID string) ([]Episode, error) {
	if seriesID == "" {
		return nil, fmt.Errorf("%w: series id is required", ErrInvalidConfig)
	}

	params := c.query()
	params.Set("order", EpisodeOrder)
	params.Set("type", "program")
	params.Set("availability", "ondemand")
	if seasonID != "" {
		params.Set("season", seasonID)
	}

	endpoint := fmt.Sprintf("%s/api/programs/v1/episodes/%s.json", c.areenaURL, url.PathEscape(seriesID))
	items, err := c.paginator.Paginate(ctx, endpoint, params, c.listingTTL, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list episodes of %s: %w", seriesID, err)
	}

	if len(items) == 0 && c.emptyResult == EmptyResultError {
		return nil, &NotFoundError{URL: cache.Redact(endpoint + "?" + params.Encode())}
	}

	episodes := make([]Episode, 0, len(items))
	for _, raw := range items {
		ep, err := normalizeEpisode(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to list episodes of %s: %w", seriesID, err)
		}
		if ep.Season <= 0 || ep.Number <= 0 {
			c.logger.Warn().
				Str("series", seriesID).
				Str("episode", ep.ID).
				Int("season_number", ep.Season).
				Int("episode_number", ep.Number).
				Msg("Episode has no season or episode number")
		}
		episodes = append(episodes, ep)
	}

	c.logger.Debug().Str("series", seriesID).Str("season", seasonID).Msgf("Retrieved %d episodes", len(episodes))
	return episodes, nil
}

// ListSeasonsBySeries returns the seasons of seriesID
func (c *Client) ListSeasonsBySeries(ctx context.Context, seriesID string) ([]Season, error) {
	if seriesID == "" {
		return nil, fmt.Errorf("%w: series id is required", ErrInvalidConfig)
	}

	requestURL := fmt.Sprintf("%s/v1/series/items/%s.json?%s", c.apiURL, url.PathEscape(seriesID), c.query().Encode())

	var resp struct {
		Data rawSeriesDetail `json:"data"`
	}
	if err := c.fetcher.Fetch(ctx, requestURL, c.listingTTL, &resp); err != nil {
		return nil, fmt.Errorf("failed to list seasons of %s: %w", seriesID, err)
	}

	seasons := normalizeSeasons(resp.Data)
	for _, season := range seasons {
		if season.Number <= 0 {
			c.logger.Warn().
				Str("series", seriesID).
				Str("season", season.ID).
				Int("season_number", season.Number).
				Msg("Season has no season number")
		}
	}
	if len(seasons) == 0 && c.emptyResult == EmptyResultError {
		return nil, &NotFoundError{URL: cache.Redact(requestURL)}
	}
	return seasons, nil
}

// GetProgramByID returns a single program
func (c *Client) GetProgramByID(ctx context.Context, id string) (Program, error) {
	if id == "" {
		return Program{}, fmt.Errorf("%w: program id is required", ErrInvalidConfig)
	}

	requestURL := fmt.Sprintf("%s/v1/programs/items/%s.json?%s", c.apiURL, url.PathEscape(id), c.query().Encode())

	var resp struct {
		Data json.RawMessage `json:"data"`
	}
	if err := c.fetcher.Fetch(ctx, requestURL, c.listingTTL, &resp); err != nil {
		return Program{}, fmt.Errorf("failed to get program %s: %w", id, err)
	}
	if len(resp.Data) == 0 || string(resp.Data) == "null" {
		return Program{}, &NotFoundError{URL: cache.Redact(requestURL)}
	}

	program, _, err := normalizeProgram(resp.Data, false)
	if err != nil {
		return Program{}, fmt.Errorf("failed to get program %s: %w", id, err)
	}
	return program, nil
}

// SearchPrograms returns on-demand programs matching q. Programs without any
// title are skipped.
func (c *Client) SearchPrograms(ctx context.Context, q ProgramQuery) ([]Program, error) {
	params := c.query()
	params.Set("availability", "ondemand")
	params.Set("order", EpisodeOrder)
	if q.Query != "" {
		params.Set("q", q.Query)
	}
	if q.ID != "" {
		params.Set("id", q.ID)
	}
	if q.Series != "" {
		params.Set("series", q.Series)
	}
	if q.Publisher != "" {
		params.Set("publisher", q.Publisher)
	}
	if categories := categoryFilter(q.IncludeCategories, q.ExcludeCategories); categories != "" {
		params.Set("category", categories)
	}

	items, err := c.paginator.Paginate(ctx, c.apiEndpoint("/v1/programs/items.json"), params, c.listingTTL, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to search programs: %w", err)
	}

	programs := make([]Program, 0, len(items))
	for _, raw := range items {
		p, ok, err := normalizeProgram(raw, true)
		if err != nil {
			return nil, fmt.Errorf("failed to search programs: %w", err)
		}
		if ok {
			programs = append(programs, p)
		}
	}

	c.logger.Debug().Int("count", len(programs)).Msg("Program search complete")
	return programs, nil
}
