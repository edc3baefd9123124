package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Output formats accepted by --output
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// resolveFormat applies --json over --output
func resolveFormat() (string, error) {
	if jsonOutput {
		return formatJSON, nil
	}
	switch outputFormat {
	case formatText, formatJSON, formatYAML:
		return outputFormat, nil
	case "":
		return formatText, nil
	default:
		return "", fmt.Errorf("invalid output format: %s (must be text, json or yaml)", outputFormat)
	}
}

// writeList renders items in format. Text output writes one line per item.
func writeList[T any](w io.Writer, format string, items []T, line func(T) string) error {
	if items == nil {
		items = []T{}
	}
	switch format {
	case formatJSON:
		return writeJSON(w, items)
	case formatYAML:
		return writeYAML(w, items)
	default:
		for _, item := range items {
			if _, err := fmt.Fprintln(w, line(item)); err != nil {
				return err
			}
		}
		return nil
	}
}

// writeOne renders a single value
func writeOne(w io.Writer, format string, v any, text string) error {
	switch format {
	case formatJSON:
		return writeJSON(w, v)
	case formatYAML:
		return writeYAML(w, v)
	default:
		_, err := fmt.Fprintln(w, text)
		return err
	}
}

// writeRaw renders raw API records. YAML needs them decoded first.
func writeRaw(w io.Writer, format string, items []json.RawMessage) error {
	if format != formatYAML {
		return writeList(w, format, items, compact)
	}

	decoded := make([]any, 0, len(items))
	for _, raw := range items {
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("failed to decode record: %w", err)
		}
		decoded = append(decoded, v)
	}
	return writeYAML(w, decoded)
}

func compact(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
