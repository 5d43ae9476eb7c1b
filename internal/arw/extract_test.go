package arw

import (
	"reflect"
	"strings"
	"testing"
)

func TestExtractMetrics_Citations(t *testing.T) {
	snap := &PageSnapshot{
		Links: []PageLink{
			{URL: "https://example.com/a", Host: "example.com"},
			{URL: "https://example.com/b", Host: "example.com"},
			{URL: "https://cdn.example.org/lib", Host: "cdn.example.org"},
			{URL: "https://research.example.net/paper", Host: "research.example.net"},
			{URL: "https://cdn.example.org/other", Host: "cdn.example.org"},
		},
	}

	m := ExtractMetrics(snap, "example.com")

	if m.Citations.TotalLinks != 5 {
		t.Errorf("TotalLinks = %d, want 5", m.Citations.TotalLinks)
	}
	if m.Citations.ExternalLinks != 3 {
		t.Errorf("ExternalLinks = %d, want 3", m.Citations.ExternalLinks)
	}
	// The page's own origin never appears in the domain set.
	want := []string{"cdn.example.org", "research.example.net"}
	if !reflect.DeepEqual(m.Citations.ExternalDomains, want) {
		t.Errorf("ExternalDomains = %v, want %v", m.Citations.ExternalDomains, want)
	}
}

func TestExtractMetrics_Statistics(t *testing.T) {
	snap := &PageSnapshot{
		Text: "Revenue grew 45% to $2.3 million in 2024, up from $1,800,000. " +
			"Adoption rose 12.5% among 15000 surveyed developers.",
	}

	m := ExtractMetrics(snap, "example.com")

	if m.Statistics.Percentages != 2 {
		t.Errorf("Percentages = %d, want 2", m.Statistics.Percentages)
	}
	if m.Statistics.Currencies != 2 {
		t.Errorf("Currencies = %d, want 2", m.Statistics.Currencies)
	}
	// 2024 and 15000. The comma-grouped 1,800,000 never forms a
	// four-digit run, so it counts only in the currency family.
	if m.Statistics.BigNumbers != 2 {
		t.Errorf("BigNumbers = %d, want 2", m.Statistics.BigNumbers)
	}
	if m.Statistics.Total != m.Statistics.Percentages+m.Statistics.Currencies+m.Statistics.BigNumbers {
		t.Errorf("Total = %d, want sum of families", m.Statistics.Total)
	}
}

func TestExtractMetrics_DoubleCountingByDesign(t *testing.T) {
	// A bare four-digit percentage matches two families; it counts in
	// both, which is two independent signal types, not a bug.
	snap := &PageSnapshot{Text: "Throughput hit 5000% of baseline."}

	m := ExtractMetrics(snap, "example.com")

	if m.Statistics.Percentages != 1 {
		t.Errorf("Percentages = %d, want 1", m.Statistics.Percentages)
	}
	if m.Statistics.BigNumbers != 1 {
		t.Errorf("BigNumbers = %d, want 1", m.Statistics.BigNumbers)
	}
	if m.Statistics.Total != 2 {
		t.Errorf("Total = %d, want 2", m.Statistics.Total)
	}
}

func TestExtractMetrics_Quotations(t *testing.T) {
	snap := &PageSnapshot{
		BlockquoteCount: 2,
		Text: `The CEO said "we are betting the company on this" while the CTO added ` +
			`"the architecture is finally ready for it" in the same briefing.`,
	}

	m := ExtractMetrics(snap, "example.com")

	if m.Quotations.BlockquoteCount != 2 {
		t.Errorf("BlockquoteCount = %d, want 2", m.Quotations.BlockquoteCount)
	}
	if m.Quotations.InlineQuoteCount != 2 {
		t.Errorf("InlineQuoteCount = %d, want 2", m.Quotations.InlineQuoteCount)
	}
	if len(m.Quotations.SampleQuotes) != 2 {
		t.Fatalf("SampleQuotes = %d, want 2", len(m.Quotations.SampleQuotes))
	}
	if m.Quotations.SampleQuotes[0] != "we are betting the company on this" {
		t.Errorf("SampleQuotes[0] = %q", m.Quotations.SampleQuotes[0])
	}
}

func TestExtractMetrics_SampleQuotesCapped(t *testing.T) {
	var sb strings.Builder
	for range 8 {
		sb.WriteString(`Someone said "a quote long enough to capture" today. `)
	}

	m := ExtractMetrics(&PageSnapshot{Text: sb.String()}, "example.com")

	if m.Quotations.InlineQuoteCount != 8 {
		t.Errorf("InlineQuoteCount = %d, want 8", m.Quotations.InlineQuoteCount)
	}
	if len(m.Quotations.SampleQuotes) != 5 {
		t.Errorf("SampleQuotes = %d, want 5 (cap)", len(m.Quotations.SampleQuotes))
	}
}

func TestExtractMetrics_Entities(t *testing.T) {
	snap := &PageSnapshot{
		Text: "Kubernetes orchestrates containers. Kubernetes clusters run at Google " +
			"and Amazon. The word the appears often but The is a stopword. " +
			"Vector-Search is a hyphenated candidate.",
	}

	m := ExtractMetrics(snap, "example.com")

	counts := make(map[string]int, len(m.Entities.TopEntities))
	for _, e := range m.Entities.TopEntities {
		counts[e.Name] = e.Count
	}

	if counts["Kubernetes"] != 2 {
		t.Errorf("Kubernetes count = %d, want 2", counts["Kubernetes"])
	}
	if counts["Google"] != 1 || counts["Amazon"] != 1 {
		t.Errorf("Google/Amazon missing: %v", counts)
	}
	if counts["Vector-Search"] != 1 {
		t.Errorf("hyphenated candidate missing: %v", counts)
	}
	if _, ok := counts["The"]; ok {
		t.Error("stopword The must not be an entity")
	}

	// Frequency-ranked: Kubernetes first.
	if m.Entities.TopEntities[0].Name != "Kubernetes" {
		t.Errorf("TopEntities[0] = %q, want Kubernetes", m.Entities.TopEntities[0].Name)
	}
}

func TestExtractMetrics_TopEntitiesCapped(t *testing.T) {
	var sb strings.Builder
	for i := range 40 {
		sb.WriteString("Entityword")
		sb.WriteByte(byte('a' + i%26))
		if i >= 26 {
			sb.WriteString("x")
		}
		sb.WriteString(" filler words here ")
	}

	m := ExtractMetrics(&PageSnapshot{Text: sb.String()}, "example.com")

	if m.Entities.TotalEntities != 40 {
		t.Errorf("TotalEntities = %d, want 40", m.Entities.TotalEntities)
	}
	if len(m.Entities.TopEntities) != 25 {
		t.Errorf("TopEntities = %d, want 25 (cap)", len(m.Entities.TopEntities))
	}
}

func TestExtractMetrics_Structure(t *testing.T) {
	snap := &PageSnapshot{
		Text:          "one two three four five",
		HeadingCount:  3,
		HasMainRegion: true,
	}

	m := ExtractMetrics(snap, "example.com")

	if m.Structure.WordCount != 5 {
		t.Errorf("WordCount = %d, want 5", m.Structure.WordCount)
	}
	if m.Structure.HeadingCount != 3 {
		t.Errorf("HeadingCount = %d, want 3", m.Structure.HeadingCount)
	}
	if !m.Structure.HasMainRegion {
		t.Error("HasMainRegion = false, want true")
	}
}
