package areena

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// FarFuture is how far past "now" an open-ended availability window is
// rendered. It is only applied when a window is serialized.
const FarFuture = 520 * 7 * 24 * time.Hour

// NoDescription replaces missing descriptions
const NoDescription = "-"

// isoLayout matches the offset-less timestamps the windows are stored in
const isoLayout = "2006-01-02T15:04:05"

// Category is a catalog category snapshot
type Category struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

func (c Category) String() string {
	return fmt.Sprintf("%15s %s", c.ID, c.Name)
}

// Season is one season of a series
type Season struct {
	ID     string
	Number int
	Name   string
}

type seasonView struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Number int    `json:"s" yaml:"s"`
}

func (s Season) String() string {
	return fmt.Sprintf("%s\t\t[S%02d] %s", s.ID, s.Number, s.Name)
}

// MarshalJSON renders the season with a fixed field order
func (s Season) MarshalJSON() ([]byte, error) {
	return json.Marshal(seasonView{ID: s.ID, Name: s.Name, Number: s.Number})
}

// MarshalYAML renders the season with a fixed field order
func (s Season) MarshalYAML() (any, error) {
	return seasonView{ID: s.ID, Name: s.Name, Number: s.Number}, nil
}

// Availability is the on-demand window of an episode or program. A zero From
// means no window was published; a zero Until means the window has no end.
// Both carry the published wall clock in UTC.
type Availability struct {
	From  time.Time
	Until time.Time
}

// Known reports whether a publication window was found
func (a Availability) Known() bool {
	return !a.From.IsZero()
}

// OpenEnded reports whether the window has no published end
func (a Availability) OpenEnded() bool {
	return a.Until.IsZero()
}

// End returns the end of the window, substituting now+FarFuture when the
// window is open-ended. now is taken by its wall clock.
func (a Availability) End(now time.Time) time.Time {
	if a.Until.IsZero() {
		return WallClock(now).Add(FarFuture)
	}
	return a.Until
}

// Remaining returns the time left until End, truncated to whole seconds
func (a Availability) Remaining(now time.Time) time.Duration {
	return a.End(now).Sub(WallClock(now)).Truncate(time.Second)
}

type windowView struct {
	Start            *string `json:"start" yaml:"start"`
	End              string  `json:"end" yaml:"end"`
	AvailableSeconds int64   `json:"availableSeconds" yaml:"availableSeconds"`
	AvailableHuman   string  `json:"availableHuman" yaml:"availableHuman"`
}

func (a Availability) view(now time.Time) windowView {
	var start *string
	if a.Known() {
		s := a.From.Format(isoLayout)
		start = &s
	}
	remaining := a.Remaining(now)
	return windowView{
		Start:            start,
		End:              a.End(now).Format(isoLayout),
		AvailableSeconds: int64(remaining / time.Second),
		AvailableHuman:   formatRemaining(remaining),
	}
}

func (a Availability) text(now time.Time) string {
	start := "?"
	if a.Known() {
		start = a.From.Format(isoLayout)
	}
	remaining := a.Remaining(now)
	return fmt.Sprintf("%s - %s, %s", start, a.End(now).Format(isoLayout), formatRemaining(remaining))
}

// formatRemaining renders d as "N days, H:MM:SS"
func formatRemaining(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	seconds := d / time.Second

	clock := fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	switch days {
	case 0:
		return sign + clock
	case 1:
		return fmt.Sprintf("%s1 day, %s", sign, clock)
	default:
		return fmt.Sprintf("%s%d days, %s", sign, days, clock)
	}
}

// Episode is one on-demand episode of a series
type Episode struct {
	ID           string
	Season       int
	Number       int
	Title        string
	Description  string
	Availability Availability
}

// EpisodeView is the serialized form of an Episode at a given instant
type EpisodeView struct {
	Season           int     `json:"s" yaml:"s"`
	Episode          int     `json:"e" yaml:"e"`
	Start            *string `json:"start" yaml:"start"`
	End              string  `json:"end" yaml:"end"`
	ID               string  `json:"id" yaml:"id"`
	Name             string  `json:"name" yaml:"name"`
	AvailableSeconds int64   `json:"availableSeconds" yaml:"availableSeconds"`
	AvailableHuman   string  `json:"availableHuman" yaml:"availableHuman"`
	Description      string  `json:"descr" yaml:"descr"`
}

// View renders the episode, materializing an open-ended window relative to now
func (e Episode) View(now time.Time) EpisodeView {
	w := e.Availability.view(now)
	return EpisodeView{
		Season:           e.Season,
		Episode:          e.Number,
		Start:            w.Start,
		End:              w.End,
		ID:               e.ID,
		Name:             e.Title,
		AvailableSeconds: w.AvailableSeconds,
		AvailableHuman:   w.AvailableHuman,
		Description:      e.Description,
	}
}

// MarshalJSON implements json.Marshaler
func (e Episode) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.View(time.Now()))
}

// MarshalYAML implements yaml.Marshaler
func (e Episode) MarshalYAML() (any, error) {
	return e.View(time.Now()), nil
}

// Text renders the episode for terminals relative to now
func (e Episode) Text(now time.Time) string {
	return fmt.Sprintf("S%02dE%02d [%s] %s\n  %s\n  %s",
		e.Season, e.Number, e.ID, e.Availability.text(now), e.Title, e.Description)
}

func (e Episode) String() string {
	return e.Text(time.Now())
}

// Series is a series search hit
type Series struct {
	ID         string     `json:"id" yaml:"id"`
	Name       string     `json:"name" yaml:"name"`
	Categories []Category `json:"categories" yaml:"categories"`
}

func (s Series) String() string {
	return fmt.Sprintf("%s\t\t%s", s.ID, s.Name)
}

// Program is a single program (episode, clip or movie) from the programs API
type Program struct {
	ID           string
	Title        string
	Description  string
	Availability Availability
	Categories   []Category
}

// ProgramView is the serialized form of a Program at a given instant
type ProgramView struct {
	ID               string     `json:"id" yaml:"id"`
	Name             string     `json:"name" yaml:"name"`
	Description      string     `json:"descr" yaml:"descr"`
	Start            *string    `json:"start" yaml:"start"`
	End              string     `json:"end" yaml:"end"`
	AvailableSeconds int64      `json:"availableSeconds" yaml:"availableSeconds"`
	AvailableHuman   string     `json:"availableHuman" yaml:"availableHuman"`
	Categories       []Category `json:"categories" yaml:"categories"`
}

// View renders the program, materializing an open-ended window relative to now
func (p Program) View(now time.Time) ProgramView {
	w := p.Availability.view(now)
	categories := p.Categories
	if categories == nil {
		categories = []Category{}
	}
	return ProgramView{
		ID:               p.ID,
		Name:             p.Title,
		Description:      p.Description,
		Start:            w.Start,
		End:              w.End,
		AvailableSeconds: w.AvailableSeconds,
		AvailableHuman:   w.AvailableHuman,
		Categories:       categories,
	}
}

// MarshalJSON implements json.Marshaler
func (p Program) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.View(time.Now()))
}

// MarshalYAML implements yaml.Marshaler
func (p Program) MarshalYAML() (any, error) {
	return p.View(time.Now()), nil
}

// Text renders the program for terminals relative to now
func (p Program) Text(now time.Time) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s\n  %s\n  %s", p.ID, p.Availability.text(now), p.Title, p.Description)
	if len(p.Categories) > 0 {
		names := make([]string, 0, len(p.Categories))
		for _, c := range p.Categories {
			names = append(names, c.Name)
		}
		fmt.Fprintf(&sb, "\n  Categories: %s", strings.Join(names, ", "))
	}
	return sb.String()
}

func (p Program) String() string {
	return p.Text(time.Now())
}
