package painpoints

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDefaults(t *testing.T) {
	raw := []RawPainPoint{
		{
			"title":                42,
			"description":          []any{"nope"},
			"typicalSeverity":      "9",
			"commonManifestations": "not a list",
			"industryRelevance":    true,
		},
		nil,
	}
	got := Normalize(raw)
	require.Len(t, got, 2)
	for _, p := range got {
		assert.NotEmpty(t, p.ID)
		assert.Equal(t, "", p.Title)
		assert.Equal(t, "", p.Description)
		assert.Equal(t, DefaultSeverity, p.Severity)
		assert.NotNil(t, p.Manifestations)
		assert.Empty(t, p.Manifestations)
		assert.Equal(t, "", p.IndustryRelevance)
	}
}

func TestNormalizeKeepsWellTypedFields(t *testing.T) {
	raw := []RawPainPoint{{
		"id":                   "pp-1",
		"title":                "Manual reconciliation",
		"description":          "Finance staff reconcile by hand",
		"typicalSeverity":      8.0,
		"commonManifestations": []any{"late close", 3, "errors"},
		"industryRelevance":    "Common in retail",
	}}
	got := Normalize(raw)
	want := []NormalizedPainPoint{{
		ID:                "pp-1",
		Title:             "Manual reconciliation",
		Description:       "Finance staff reconcile by hand",
		Severity:          8,
		Manifestations:    []string{"late close", "errors"},
		IndustryRelevance: "Common in retail",
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Normalize mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeEmpty(t *testing.T) {
	got := Normalize(nil)
	assert.NotNil(t, got)
	assert.Len(t, got, 0)
}

func TestNormalizeIdempotentWithExplicitIDs(t *testing.T) {
	raw := []RawPainPoint{
		{"id": "a", "title": "One", "typicalSeverity": 2.0, "commonManifestations": []any{"x"}},
		{"id": "b", "description": "Two", "industryRelevance": "high"},
	}
	first := Normalize(raw)
	again := make([]RawPainPoint, len(first))
	for i, p := range first {
		again[i] = p.Raw()
	}
	second := Normalize(again)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("normalizing normalized output changed it (-first +second):\n%s", diff)
	}
}

func TestNormalizeSeverityNumbers(t *testing.T) {
	for _, tc := range []struct {
		in   any
		want int
	}{
		{in: 7, want: 7},
		{in: int64(3), want: 3},
		{in: 6.5, want: 7},
		{in: 0.0, want: 0},
		{in: json.Number("4"), want: 4},
		{in: json.Number("four"), want: DefaultSeverity},
		{in: nil, want: DefaultSeverity},
	} {
		got := Normalize([]RawPainPoint{{"typicalSeverity": tc.in}})
		assert.Equal(t, tc.want, got[0].Severity, "input %#v", tc.in)
	}
}

func TestNormalizeGeneratedIDsUniqueWithinCall(t *testing.T) {
	raw := []RawPainPoint{
		{"title": "Same", "description": "dup"},
		{"title": "Same", "description": "dup"},
		{"title": "Same", "description": "dup"},
		{"title": "Other"},
	}
	got := Normalize(raw)
	seen := map[string]bool{}
	for _, p := range got {
		assert.False(t, seen[p.ID], "duplicate id %s", p.ID)
		seen[p.ID] = true
	}
}

func TestNormalizeGeneratedIDDoesNotShadowExplicitID(t *testing.T) {
	fixed := IDSourceFunc(func(_, _ string) string { return "pain-fixed" })
	raw := []RawPainPoint{
		{"title": "generated first"},
		{"id": "pain-fixed", "title": "explicit later"},
	}
	got := Normalize(raw, WithIDSource(fixed))
	assert.Equal(t, "pain-fixed-2", got[0].ID)
	assert.Equal(t, "pain-fixed", got[1].ID)
}

func TestContentIDsStableAcrossCalls(t *testing.T) {
	raw := []RawPainPoint{{"title": "Churn", "description": "Customers leave"}}
	a := Normalize(raw)
	b := Normalize(raw)
	assert.Equal(t, a[0].ID, b[0].ID)
	assert.True(t, strings.HasPrefix(a[0].ID, "pain-"))
	assert.Len(t, a[0].ID, len("pain-")+12)

	other := Normalize([]RawPainPoint{{"title": "Churn", "description": "Different"}})
	assert.NotEqual(t, a[0].ID, other[0].ID)
}

func TestRandomIDsShape(t *testing.T) {
	got := Normalize([]RawPainPoint{{}, {}}, WithIDSource(RandomIDs))
	for _, p := range got {
		require.True(t, strings.HasPrefix(p.ID, "pain-"), p.ID)
		assert.Len(t, p.ID, len("pain-")+7)
	}
	assert.NotEqual(t, got[0].ID, got[1].ID)
}

func TestDecodeRawKeepsLength(t *testing.T) {
	raw, err := DecodeRaw([]byte(`[{"title":"a","typicalSeverity":4}, "junk", null, 12]`))
	require.NoError(t, err)
	require.Len(t, raw, 4)
	got := Normalize(raw)
	assert.Equal(t, "a", got[0].Title)
	assert.Equal(t, 4, got[0].Severity)
	assert.Equal(t, DefaultSeverity, got[1].Severity)

	_, err = DecodeRaw([]byte(`{"not":"an array"}`))
	assert.Error(t, err)
}

func TestRawPainPointsDecodeTolerantly(t *testing.T) {
	var doc struct {
		Points RawPainPoints `json:"possiblePainPoints"`
		Other  string        `json:"other"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"possiblePainPoints":[{"title":"ok","typicalSeverity":8},"junk",42],"other":"kept"}`), &doc))
	require.Len(t, doc.Points, 3)
	assert.Equal(t, "kept", doc.Other)
	got := Normalize(doc.Points)
	assert.Equal(t, "ok", got[0].Title)
	assert.Equal(t, 8, got[0].Severity)
	assert.Equal(t, "", got[1].Title)
	assert.Equal(t, DefaultSeverity, got[2].Severity)

	require.NoError(t, json.Unmarshal([]byte(`{"possiblePainPoints":"not a list"}`), &doc))
	assert.NotNil(t, doc.Points)
	assert.Empty(t, doc.Points)

	require.NoError(t, json.Unmarshal([]byte(`{"possiblePainPoints":null}`), &doc))
	assert.Nil(t, doc.Points)
}

func TestStrategyRelevanceFor(t *testing.T) {
	s := strategy("s", rel("p1", 4), rel("p2", 9), rel("p1", 8))
	got, ok := s.RelevanceFor("p1")
	require.True(t, ok)
	assert.Equal(t, 8.0, got.RelevanceScore)
	_, ok = s.RelevanceFor("p3")
	assert.False(t, ok)
}
