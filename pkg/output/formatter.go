package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// Format identifies a supported output format
type Format string

const (
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTable Format = "table"
)

// Formatter renders analysis results for terminal or machine consumption
type Formatter interface {
	Format(v any) ([]byte, error)
}

// NewFormatter returns a formatter for the given format name
func NewFormatter(format string) (Formatter, error) {
	switch Format(format) {
	case FormatJSON:
		return &jsonFormatter{}, nil
	case FormatYAML:
		return &yamlFormatter{}, nil
	case FormatTable, "":
		return &tableFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

type jsonFormatter struct{}

func (f *jsonFormatter) Format(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("json formatting failed: %w", err)
	}
	return append(data, '\n'), nil
}

type yamlFormatter struct{}

func (f *yamlFormatter) Format(v any) ([]byte, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("yaml formatting failed: %w", err)
	}
	return data, nil
}

type tableFormatter struct{}

// Format renders a two-column key/value table. Structs and maps are
// flattened through their JSON representation so the table shows the
// same field names the JSON output would.
func (f *tableFormatter) Format(v any) ([]byte, error) {
	flat, err := flatten(v)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FIELD\tVALUE")
	for _, k := range keys {
		fmt.Fprintf(w, "%s\t%v\n", k, flat[k])
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func flatten(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("table formatting failed: %w", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		// Not an object; render under a single key
		return map[string]any{"value": string(data)}, nil
	}

	flat := make(map[string]any)
	flattenInto(flat, "", raw)
	return flat, nil
}

func flattenInto(dst map[string]any, prefix string, src map[string]any) {
	for k, v := range src {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok {
			flattenInto(dst, key, nested)
			continue
		}
		dst[key] = v
	}
}
