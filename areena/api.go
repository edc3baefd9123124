package areena

import (
	"context"
	"encoding/json"
)

// API defines the catalog queries the CLI depends on
type API interface {
	// ListCategories returns every program category
	ListCategories(ctx context.Context) ([]Category, error)

	// ListServices returns the raw service records
	ListServices(ctx context.Context) ([]json.RawMessage, error)

	// ListSchedules returns the raw schedule records
	ListSchedules(ctx context.Context) ([]json.RawMessage, error)

	// SearchSeries returns on-demand series matching the category filter
	SearchSeries(ctx context.Context, q SeriesQuery) ([]Series, error)

	// ListEpisodesBySeries returns the on-demand episodes of a series,
	// optionally limited to one season
	ListEpisodesBySeries(ctx context.Context, seriesID, seasonID string) ([]Episode, error)

	// ListSeasonsBySeries returns the seasons of a series
	ListSeasonsBySeries(ctx context.Context, seriesID string) ([]Season, error)

	// GetProgramByID returns a single program
	GetProgramByID(ctx context.Context, id string) (Program, error)

	// SearchPrograms returns programs matching the query
	SearchPrograms(ctx context.Context, q ProgramQuery) ([]Program, error)
}

var _ API = (*Client)(nil)
