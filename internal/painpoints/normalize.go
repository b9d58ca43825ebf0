package painpoints

import (
	"bytes"
	"encoding/json"
	"math"
)

type options struct {
	ids IDSource
}

// Option configures normalization.
type Option func(*options)

// WithIDSource sets how ids are generated for records without one.
func WithIDSource(src IDSource) Option {
	return func(o *options) { o.ids = src }
}

func buildOptions(opts []Option) options {
	o := options{ids: ContentIDs}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// Normalize converts raw records into NormalizedPainPoints, one-to-one and in order.
// Malformed fields are replaced by defaults; it never fails.
func Normalize(raw []RawPainPoint, opts ...Option) []NormalizedPainPoint {
	o := buildOptions(opts)
	out := make([]NormalizedPainPoint, len(raw))
	ids := newIDAllocator(o.ids, len(raw))

	// Explicit ids are reserved first so generated ids never shadow a later record.
	for _, r := range raw {
		if id := stringField(r, "id"); id != "" {
			ids.reserve(id)
		}
	}

	for i, r := range raw {
		p := NormalizedPainPoint{
			Title:             stringField(r, "title"),
			Description:       stringField(r, "description"),
			Severity:          severityField(r, "typicalSeverity"),
			Manifestations:    stringsField(r, "commonManifestations"),
			IndustryRelevance: stringField(r, "industryRelevance"),
		}
		p.ID = stringField(r, "id")
		if p.ID == "" {
			p.ID = ids.generate(p.Title, p.Description)
		}
		out[i] = p
	}
	return out
}

// Raw converts a normalized pain point back into a raw record carrying its id.
func (p NormalizedPainPoint) Raw() RawPainPoint {
	manifestations := make([]any, len(p.Manifestations))
	for i, m := range p.Manifestations {
		manifestations[i] = m
	}
	return RawPainPoint{
		"id":                   p.ID,
		"title":                p.Title,
		"description":          p.Description,
		"typicalSeverity":      p.Severity,
		"commonManifestations": manifestations,
		"industryRelevance":    p.IndustryRelevance,
	}
}

// DecodeRaw parses a JSON array of pain point records. Elements that are not JSON
// objects become empty records so the output keeps the input length.
func DecodeRaw(data []byte) ([]RawPainPoint, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	out := make([]RawPainPoint, len(items))
	for i, item := range items {
		var rec map[string]any
		if json.Unmarshal(item, &rec) != nil || rec == nil {
			rec = map[string]any{}
		}
		out[i] = rec
	}
	return out, nil
}

// UnmarshalJSON decodes a pain point list tolerantly: malformed elements become
// empty records and a value that is not an array decodes as an empty list.
func (l *RawPainPoints) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		*l = nil
		return nil
	}
	raw, err := DecodeRaw(data)
	if err != nil {
		raw = []RawPainPoint{}
	}
	*l = raw
	return nil
}

func stringField(r RawPainPoint, key string) string {
	if r == nil {
		return ""
	}
	s, _ := r[key].(string)
	return s
}

func severityField(r RawPainPoint, key string) int {
	if r == nil {
		return DefaultSeverity
	}
	n, ok := number(r[key])
	if !ok {
		return DefaultSeverity
	}
	return int(math.Round(n))
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case float32:
		return number(float64(n))
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return number(f)
	default:
		return 0, false
	}
}

func stringsField(r RawPainPoint, key string) []string {
	out := []string{}
	if r == nil {
		return out
	}
	switch items := r[key].(type) {
	case []any:
		for _, item := range items {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	case []string:
		out = append(out, items...)
	}
	return out
}
