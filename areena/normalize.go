package areena

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"
)

// OnDemandService identifies publication events on the on-demand service
const OnDemandService = "yle-areena"

// localePriority is the order in which localized strings are resolved
var localePriority = []string{"fi", "en", "sv"}

// Localized is a language code to text map as returned by the API
type Localized map[string]string

type rawCategory struct {
	ID    string    `json:"id"`
	Title Localized `json:"title"`
}

type rawPublicationEvent struct {
	Service struct {
		ID string `json:"id"`
	} `json:"service"`
	Publisher []struct {
		ID string `json:"id"`
	} `json:"publisher"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type rawSeries struct {
	ID      string        `json:"id"`
	Title   Localized     `json:"title"`
	Subject []rawCategory `json:"subject"`
}

type rawSeason struct {
	ID           string    `json:"id"`
	SeasonNumber int       `json:"seasonNumber"`
	Title        Localized `json:"title"`
}

type rawSeriesDetail struct {
	ID     string      `json:"id"`
	Season []rawSeason `json:"season"`
}

type rawEpisode struct {
	ID           string `json:"id"`
	PartOfSeason struct {
		SeasonNumber int `json:"seasonNumber"`
	} `json:"partOfSeason"`
	EpisodeNumber    int                   `json:"episodeNumber"`
	Title            Localized             `json:"title"`
	Description      Localized             `json:"description"`
	PublicationEvent []rawPublicationEvent `json:"publicationEvent"`
}

type rawProgram struct {
	ID               string                `json:"id"`
	Title            Localized             `json:"title"`
	Description      Localized             `json:"description"`
	Subject          []rawCategory         `json:"subject"`
	PublicationEvent []rawPublicationEvent `json:"publicationEvent"`
}

// ResolveLocalized picks fi, en, then sv. Any other language falls back to the
// lexicographically smallest language code. An empty map yields "".
func ResolveLocalized(m Localized) string {
	for _, lang := range localePriority {
		if v, ok := m[lang]; ok {
			return v
		}
	}
	if len(m) == 0 {
		return ""
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return m[keys[0]]
}

// ParseTimestamp parses an RFC 3339 timestamp and drops its offset. The wall
// clock fields are kept as-is, see WallClock.
func ParseTimestamp(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: timestamp %q: %v", ErrMalformed, raw, err)
	}
	return WallClock(t), nil
}

// WallClock re-anchors the wall clock of t, read in its own location, in UTC.
// Window timestamps are stored this way so that no zone rule (such as a
// daylight saving gap) can move them, and "now" is compared the same way.
func WallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

func (e rawPublicationEvent) onDemand() bool {
	if len(e.Publisher) == 0 {
		return false
	}
	return strings.Contains(e.Service.ID, OnDemandService) &&
		strings.Contains(e.Publisher[0].ID, OnDemandService)
}

// resolveWindow takes the window of the first on-demand publication event.
// Without such an event the window is unknown.
func resolveWindow(events []rawPublicationEvent) (Availability, error) {
	for _, ev := range events {
		if !ev.onDemand() {
			continue
		}

		var window Availability
		if ev.StartTime != "" {
			start, err := ParseTimestamp(ev.StartTime)
			if err != nil {
				return Availability{}, err
			}
			window.From = start
		}
		if ev.EndTime != "" {
			end, err := ParseTimestamp(ev.EndTime)
			if err != nil {
				return Availability{}, err
			}
			window.Until = end
		}
		if window.Known() && !window.OpenEnded() && window.Until.Before(window.From) {
			window.Until = window.From
		}
		return window, nil
	}
	return Availability{}, nil
}

func describe(m Localized) string {
	if d := ResolveLocalized(m); d != "" {
		return d
	}
	return NoDescription
}

func normalizeSubjects(subjects []rawCategory) []Category {
	categories := make([]Category, 0, len(subjects))
	for _, s := range subjects {
		if s.ID == "" {
			continue
		}
		categories = append(categories, Category{ID: s.ID, Name: ResolveLocalized(s.Title)})
	}
	return categories
}

// decodeItem unmarshals one raw item, tagging failures as malformed
func decodeItem(raw json.RawMessage, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// normalizeCategory takes the Finnish title verbatim. ok is false for records
// without an id.
func normalizeCategory(raw json.RawMessage) (Category, bool, error) {
	var rc rawCategory
	if err := decodeItem(raw, &rc); err != nil {
		return Category{}, false, err
	}
	if rc.ID == "" {
		return Category{}, false, nil
	}
	return Category{ID: rc.ID, Name: rc.Title["fi"]}, true, nil
}

// normalizeSeries returns ok=false for records with an empty title map
func normalizeSeries(raw json.RawMessage) (Series, bool, error) {
	var rs rawSeries
	if err := decodeItem(raw, &rs); err != nil {
		return Series{}, false, err
	}
	if len(rs.Title) == 0 {
		return Series{}, false, nil
	}
	return Series{
		ID:         rs.ID,
		Name:       ResolveLocalized(rs.Title),
		Categories: normalizeSubjects(rs.Subject),
	}, true, nil
}

func normalizeSeasons(detail rawSeriesDetail) []Season {
	seasons := make([]Season, 0, len(detail.Season))
	for _, s := range detail.Season {
		seasons = append(seasons, Season{
			ID:     s.ID,
			Number: s.SeasonNumber,
			Name:   ResolveLocalized(s.Title),
		})
	}
	return seasons
}

func normalizeEpisode(raw json.RawMessage) (Episode, error) {
	var re rawEpisode
	if err := decodeItem(raw, &re); err != nil {
		return Episode{}, err
	}
	window, err := resolveWindow(re.PublicationEvent)
	if err != nil {
		return Episode{}, fmt.Errorf("episode %s: %w", re.ID, err)
	}
	return Episode{
		ID:           re.ID,
		Season:       re.PartOfSeason.SeasonNumber,
		Number:       re.EpisodeNumber,
		Title:        ResolveLocalized(re.Title),
		Description:  describe(re.Description),
		Availability: window,
	}, nil
}

// normalizeProgram returns ok=false for records with an empty title map when
// skipUntitled is set.
func normalizeProgram(raw json.RawMessage, skipUntitled bool) (Program, bool, error) {
	var rp rawProgram
	if err := decodeItem(raw, &rp); err != nil {
		return Program{}, false, err
	}
	if skipUntitled && len(rp.Title) == 0 {
		return Program{}, false, nil
	}
	window, err := resolveWindow(rp.PublicationEvent)
	if err != nil {
		return Program{}, false, fmt.Errorf("program %s: %w", rp.ID, err)
	}
	return Program{
		ID:           rp.ID,
		Title:        ResolveLocalized(rp.Title),
		Description:  describe(rp.Description),
		Availability: window,
		Categories:   normalizeSubjects(rp.Subject),
	}, true, nil
}
