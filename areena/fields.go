package areena

import "time"

// FilterFields exposes the category to result filters
func (c Category) FilterFields() map[string]any {
	return map[string]any{
		"ID":   c.ID,
		"Name": c.Name,
	}
}

// FilterFields exposes the season to result filters
func (s Season) FilterFields() map[string]any {
	return map[string]any{
		"ID":     s.ID,
		"Name":   s.Name,
		"Number": s.Number,
	}
}

// FilterFields exposes the series to result filters. Categories holds the
// category ids.
func (s Series) FilterFields() map[string]any {
	return map[string]any{
		"ID":         s.ID,
		"Name":       s.Name,
		"Categories": categoryIDs(s.Categories),
	}
}

// FilterFields exposes the episode to result filters. End is materialized
// against the current time.
func (e Episode) FilterFields() map[string]any {
	fields := windowFields(e.Availability, time.Now())
	fields["ID"] = e.ID
	fields["Title"] = e.Title
	fields["Description"] = e.Description
	fields["Season"] = e.Season
	fields["Episode"] = e.Number
	return fields
}

// FilterFields exposes the program to result filters
func (p Program) FilterFields() map[string]any {
	fields := windowFields(p.Availability, time.Now())
	fields["ID"] = p.ID
	fields["Title"] = p.Title
	fields["Description"] = p.Description
	fields["Categories"] = categoryIDs(p.Categories)
	return fields
}

func windowFields(a Availability, now time.Time) map[string]any {
	return map[string]any{
		"Available": a.Known(),
		"OpenEnded": a.OpenEnded(),
		"Start":     a.From,
		"End":       a.End(now),
	}
}

func categoryIDs(categories []Category) []string {
	ids := make([]string, len(categories))
	for i, c := range categories {
		ids[i] = c.ID
	}
	return ids
}
