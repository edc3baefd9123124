package areena

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveLocalized(t *testing.T) {
	tests := []struct {
		name     string
		input    Localized
		expected string
	}{
		{"finnish first", Localized{"fi": "A", "en": "B"}, "A"},
		{"english when no finnish", Localized{"en": "B", "sv": "C"}, "B"},
		{"swedish when no finnish or english", Localized{"sv": "C", "se": "D"}, "C"},
		{"smallest other language", Localized{"se": "D", "ru": "E", "und": "F"}, "E"},
		{"empty map", Localized{}, ""},
		{"nil map", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ResolveLocalized(tt.input))
		})
	}
}

func TestResolveLocalizedDeterministic(t *testing.T) {
	m := Localized{"x1": "one", "a9": "two", "m": "three", "b": "four"}
	for i := 0; i < 50; i++ {
		assert.Equal(t, "two", ResolveLocalized(m))
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  [6]int
	}{
		{"helsinki summer offset", "2020-05-01T21:30:00+03:00", [6]int{2020, 5, 1, 21, 30, 0}},
		{"helsinki winter offset", "2021-01-15T08:05:09+02:00", [6]int{2021, 1, 15, 8, 5, 9}},
		{"utc designator", "2022-12-31T23:59:59Z", [6]int{2022, 12, 31, 23, 59, 59}},
		{"fractional seconds", "2023-03-03T03:03:03.250+03:00", [6]int{2023, 3, 3, 3, 3, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, [6]int{got.Year(), int(got.Month()), got.Day(), got.Hour(), got.Minute(), got.Second()})
			assert.Equal(t, time.UTC, got.Location())
		})
	}

	_, err := ParseTimestamp("yesterday")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestParseTimestampKeepsWallClockInDaylightSavingGap(t *testing.T) {
	helsinki, err := time.LoadLocation("Europe/Helsinki")
	if err != nil {
		t.Skipf("zone database unavailable: %v", err)
	}
	local := time.Local
	time.Local = helsinki
	t.Cleanup(func() { time.Local = local })

	// 03:30 does not exist in Helsinki on 2024-03-31
	got, err := ParseTimestamp("2024-03-31T03:30:00+03:00")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Hour())
	assert.Equal(t, 30, got.Minute())
	assert.Equal(t, "2024-03-31T03:30:00", got.Format(isoLayout))

	// now is read by its wall clock in the same zone
	window := Availability{From: got, Until: got.Add(time.Hour)}
	now := time.Date(2024, 3, 31, 4, 0, 0, 0, helsinki)
	assert.Equal(t, 30*time.Minute, window.Remaining(now))
}

func TestWallClock(t *testing.T) {
	zone := time.FixedZone("EET", 2*60*60)
	in := time.Date(2024, 1, 5, 10, 15, 0, 0, zone)

	got := WallClock(in)
	assert.Equal(t, time.Date(2024, 1, 5, 10, 15, 0, 0, time.UTC), got)
	assert.Equal(t, got, WallClock(got))
}

func event(service, publisher, start, end string) rawPublicationEvent {
	var ev rawPublicationEvent
	ev.Service.ID = service
	if publisher != "" {
		ev.Publisher = append(ev.Publisher, struct {
			ID string `json:"id"`
		}{ID: publisher})
	}
	ev.StartTime = start
	ev.EndTime = end
	return ev
}

func TestResolveWindow(t *testing.T) {
	t.Run("first on-demand event wins", func(t *testing.T) {
		window, err := resolveWindow([]rawPublicationEvent{
			event("yle-tv1", "yle-tv1", "2020-01-01T10:00:00+02:00", "2020-01-01T11:00:00+02:00"),
			event("yle-areena", "yle-areena", "2020-02-01T10:00:00+02:00", "2020-03-01T10:00:00+02:00"),
			event("yle-areena", "yle-areena", "2020-04-01T10:00:00+03:00", ""),
		})
		require.NoError(t, err)
		assert.Equal(t, time.February, window.From.Month())
		assert.Equal(t, time.March, window.Until.Month())
		assert.False(t, window.OpenEnded())
	})

	t.Run("publisher must also be on-demand", func(t *testing.T) {
		window, err := resolveWindow([]rawPublicationEvent{
			event("yle-areena", "yle-tv2", "2020-02-01T10:00:00+02:00", ""),
			event("yle-areena", "", "2020-02-01T10:00:00+02:00", ""),
		})
		require.NoError(t, err)
		assert.False(t, window.Known())
	})

	t.Run("missing end is open-ended", func(t *testing.T) {
		now := time.Now()
		window, err := resolveWindow([]rawPublicationEvent{
			event("yle-areena", "yle-areena", "2020-02-01T10:00:00+02:00", ""),
		})
		require.NoError(t, err)
		assert.True(t, window.Known())
		assert.True(t, window.OpenEnded())
		assert.True(t, window.End(now).After(now.Add(500*7*24*time.Hour)))
	})

	t.Run("no events", func(t *testing.T) {
		window, err := resolveWindow(nil)
		require.NoError(t, err)
		assert.False(t, window.Known())
		assert.True(t, window.OpenEnded())
	})

	t.Run("end before start is clamped", func(t *testing.T) {
		window, err := resolveWindow([]rawPublicationEvent{
			event("yle-areena", "yle-areena", "2020-02-01T10:00:00+02:00", "2020-01-01T10:00:00+02:00"),
		})
		require.NoError(t, err)
		assert.True(t, window.From.Equal(window.Until))
	})

	t.Run("bad timestamp", func(t *testing.T) {
		_, err := resolveWindow([]rawPublicationEvent{
			event("yle-areena", "yle-areena", "not a date", ""),
		})
		assert.ErrorIs(t, err, ErrMalformed)
	})
}

func TestNormalizeSeries(t *testing.T) {
	raw := json.RawMessage(`{
		"id": "1-100",
		"title": {"sv": "Serien", "en": "The Series"},
		"subject": [
			{"id": "5-130", "title": {"fi": "Draama"}},
			{"id": "", "title": {"fi": "Tyhjä"}},
			{"id": "5-131", "title": {"en": "Comedy"}}
		]
	}`)

	s, ok, err := normalizeSeries(raw)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1-100", s.ID)
	assert.Equal(t, "The Series", s.Name)
	assert.Equal(t, []Category{{ID: "5-130", Name: "Draama"}, {ID: "5-131", Name: "Comedy"}}, s.Categories)

	_, ok, err = normalizeSeries(json.RawMessage(`{"id": "1-101", "title": {}}`))
	require.NoError(t, err)
	assert.False(t, ok)

	s, ok, err = normalizeSeries(json.RawMessage(`{"id": "1-102", "title": {"fi": "Ilman aiheita"}}`))
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotNil(t, s.Categories)
	assert.Empty(t, s.Categories)
}

func TestNormalizeCategory(t *testing.T) {
	c, ok, err := normalizeCategory(json.RawMessage(`{"id": "5-130", "title": {"fi": "Draama", "en": "Drama"}}`))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, Category{ID: "5-130", Name: "Draama"}, c)

	// Only the Finnish title is used for categories
	c, ok, err = normalizeCategory(json.RawMessage(`{"id": "5-131", "title": {"en": "Comedy"}}`))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "", c.Name)

	_, ok, err = normalizeCategory(json.RawMessage(`{"title": {"fi": "Ei id:tä"}}`))
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = normalizeCategory(json.RawMessage(`[1,2]`))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestNormalizeProgramDefaults(t *testing.T) {
	p, ok, err := normalizeProgram(json.RawMessage(`{"id": "1-5", "title": {"fi": "Ohjelma"}}`), true)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, NoDescription, p.Description)
	assert.False(t, p.Availability.Known())

	_, ok, err = normalizeProgram(json.RawMessage(`{"id": "1-6", "title": {}}`), true)
	require.NoError(t, err)
	assert.False(t, ok)

	p, ok, err = normalizeProgram(json.RawMessage(`{"id": "1-6", "title": {}}`), false)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1-6", p.ID)
}

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		d        time.Duration
		expected string
	}{
		{0, "0:00:00"},
		{90 * time.Second, "0:01:30"},
		{25 * time.Hour, "1 day, 1:00:00"},
		{3*24*time.Hour + 4*time.Hour + 5*time.Minute + 6*time.Second, "3 days, 4:05:06"},
		{-2 * time.Hour, "-2:00:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, formatRemaining(tt.d))
	}
}

func TestEpisodeView(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.Local)
	ep := Episode{
		ID:          "1-1",
		Season:      2,
		Number:      3,
		Title:       "Jakso",
		Description: "Kuvaus",
		Availability: Availability{
			From:  time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC),
			Until: time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC),
		},
	}

	v := ep.View(now)
	require.NotNil(t, v.Start)
	assert.Equal(t, "2023-12-01T00:00:00", *v.Start)
	assert.Equal(t, "2024-01-02T12:00:00", v.End)
	assert.Equal(t, int64(86400), v.AvailableSeconds)
	assert.Equal(t, "1 day, 0:00:00", v.AvailableHuman)

	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"s":2,"e":3,"start":"2023-12-01T00:00:00","end":"2024-01-02T12:00:00","id":"1-1","name":"Jakso","availableSeconds":86400,"availableHuman":"1 day, 0:00:00","descr":"Kuvaus"}`, string(data))
	assert.Regexp(t, `^\{"s":2,"e":3,"start":`, string(data))

	assert.Equal(t, "S02E03 [1-1] 2023-12-01T00:00:00 - 2024-01-02T12:00:00, 1 day, 0:00:00\n  Jakso\n  Kuvaus", ep.Text(now))

	open := Episode{ID: "1-2"}
	ov := open.View(now)
	assert.Nil(t, ov.Start)
	assert.Equal(t, int64(FarFuture/time.Second), ov.AvailableSeconds)
}

func TestSeasonJSON(t *testing.T) {
	data, err := json.Marshal(Season{ID: "1-7", Number: 1, Name: "Kausi 1"})
	require.NoError(t, err)
	assert.Equal(t, `{"id":"1-7","name":"Kausi 1","s":1}`, string(data))
	assert.Equal(t, "1-7\t\t[S01] Kausi 1", Season{ID: "1-7", Number: 1, Name: "Kausi 1"}.String())
}
