package areena

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// DefaultPageSize is the limit requested per page
const DefaultPageSize = 100

// SeriesSearchCeiling bounds the offset of series searches, whose reported
// totals are not stable.
const SeriesSearchCeiling = 15000

// EpisodeOrder is requested from listing endpoints so that pages do not
// shift between requests.
const EpisodeOrder = "episode.hash:asc,publication.starttime:asc,title.fi:asc"

// page is the envelope of every list endpoint
type page struct {
	Meta struct {
		Count int `json:"count"`
	} `json:"meta"`
	Data []json.RawMessage `json:"data"`
}

// jsonFetcher is the part of Fetcher the paginator needs
type jsonFetcher interface {
	Fetch(ctx context.Context, rawURL string, ttl time.Duration, out any) error
}

// Paginator walks offset/limit pages until the first page's meta.count is reached
type Paginator struct {
	fetcher  jsonFetcher
	pageSize int
	logger   zerolog.Logger
}

// NewPaginator creates a paginator requesting pageSize items per page
func NewPaginator(fetcher jsonFetcher, pageSize int, logger zerolog.Logger) *Paginator {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Paginator{fetcher: fetcher, pageSize: pageSize, logger: logger}
}

// PageSize returns the limit requested per page
func (p *Paginator) PageSize() int {
	return p.pageSize
}

// Paginate collects the data items of every page of endpoint in server order.
//
// It stops once the accumulated count reaches the total reported by the first
// page, when a page comes back empty, or, if ceiling is positive, once the
// next offset would exceed ceiling. Reaching the ceiling is not an error.
func (p *Paginator) Paginate(ctx context.Context, endpoint string, query url.Values, ttl time.Duration, ceiling int) ([]json.RawMessage, error) {
	items := make([]json.RawMessage, 0)
	total := -1

	for offset := 0; total < 0 || len(items) < total; offset += p.pageSize {
		if ceiling > 0 && offset > ceiling {
			p.logger.Debug().
				Str("endpoint", endpoint).
				Int("ceiling", ceiling).
				Int("count", len(items)).
				Int("total", total).
				Msg("Offset ceiling reached")
			break
		}

		q := cloneValues(query)
		q.Set("limit", strconv.Itoa(p.pageSize))
		q.Set("offset", strconv.Itoa(offset))

		var pg page
		if err := p.fetcher.Fetch(ctx, endpoint+"?"+q.Encode(), ttl, &pg); err != nil {
			return nil, err
		}

		if total < 0 {
			total = pg.Meta.Count
		}
		items = append(items, pg.Data...)

		p.logger.Debug().
			Str("endpoint", endpoint).
			Int("offset", offset).
			Int("count", len(pg.Data)).
			Int("accumulated", len(items)).
			Int("total", total).
			Msg("Retrieved page")

		if len(pg.Data) == 0 {
			break
		}
	}

	return items, nil
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v)+2)
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
