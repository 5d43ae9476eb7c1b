package arw

import (
	"regexp"
	"sort"
	"strings"

	"github.com/arwscan/arwscan/internal/model"
)

const (
	maxSampleQuotes = 5
	maxTopEntities  = 25
)

// Statistical spans are counted by three independent pattern families.
// A span matching two families counts in both: it is evidence of two
// separate signal types, not a duplicate.
var (
	percentPattern  = regexp.MustCompile(`\d+(?:\.\d+)?\s?%`)
	currencyPattern = regexp.MustCompile(`[$€£¥]\s?\d[\d,]*(?:\.\d+)?\s?(?:[kKmMbB]\b|million\b|billion\b|trillion\b)?`)
	bigNumPattern   = regexp.MustCompile(`\b\d{4,}\b`)

	inlineQuotePattern = regexp.MustCompile(`["“]([^"”\n]{8,240})["”]`)

	// entityPattern is a deliberately crude named-entity proxy: one
	// capitalized word with an optional hyphenated tail. The scoring
	// model needs a density signal, not identity resolution.
	entityPattern = regexp.MustCompile(`^[A-Z][a-z]{2,}(?:-[A-Za-z][a-z]*)?$`)
)

// entityStopwords are capitalized sentence-starters that would otherwise
// dominate the census.
var entityStopwords = map[string]bool{
	"The": true, "This": true, "That": true, "These": true, "Those": true,
	"With": true, "From": true, "Your": true, "Our": true, "And": true,
	"But": true, "For": true, "Not": true, "You": true, "All": true,
	"New": true, "How": true, "What": true, "When": true, "Where": true,
	"Why": true, "Who": true, "They": true, "More": true, "Here": true,
}

// ExtractMetrics computes the GEO metrics from a page snapshot. Pure
// text analysis with no suspension points; it runs once per inspection.
func ExtractMetrics(snap *PageSnapshot, pageHost string) model.GeoMetrics {
	return model.GeoMetrics{
		Citations:  extractCitations(snap.Links, pageHost),
		Statistics: extractStatistics(snap.Text),
		Quotations: extractQuotations(snap.Text, snap.BlockquoteCount),
		Entities:   extractEntities(snap.Text),
		Structure: model.StructureMetrics{
			HeadingCount:  snap.HeadingCount,
			HasMainRegion: snap.HasMainRegion,
			WordCount:     len(strings.Fields(snap.Text)),
		},
	}
}

// extractCitations counts links whose resolved host differs from the
// page's own host. The page's own origin never appears in
// ExternalDomains.
func extractCitations(links []PageLink, pageHost string) model.CitationMetrics {
	pageHost = strings.ToLower(pageHost)

	domains := make(map[string]bool)
	external := 0
	for _, link := range links {
		if link.Host == pageHost {
			continue
		}
		external++
		domains[link.Host] = true
	}

	domainList := make([]string, 0, len(domains))
	for d := range domains {
		domainList = append(domainList, d)
	}
	sort.Strings(domainList)

	return model.CitationMetrics{
		TotalLinks:      len(links),
		ExternalLinks:   external,
		ExternalDomains: domainList,
	}
}

func extractStatistics(text string) model.StatisticMetrics {
	stats := model.StatisticMetrics{
		Percentages: len(percentPattern.FindAllString(text, -1)),
		Currencies:  len(currencyPattern.FindAllString(text, -1)),
		BigNumbers:  len(bigNumPattern.FindAllString(text, -1)),
	}
	stats.Total = stats.Percentages + stats.Currencies + stats.BigNumbers
	return stats
}

func extractQuotations(text string, blockquotes int) model.QuotationMetrics {
	matches := inlineQuotePattern.FindAllStringSubmatch(text, -1)

	// First few quotes are kept as illustrative samples for display;
	// nothing downstream consumes them.
	samples := make([]string, 0, maxSampleQuotes)
	for _, m := range matches {
		if len(samples) == maxSampleQuotes {
			break
		}
		samples = append(samples, m[1])
	}

	return model.QuotationMetrics{
		BlockquoteCount:  blockquotes,
		InlineQuoteCount: len(matches),
		SampleQuotes:     samples,
	}
}

// extractEntities frequency-ranks capitalized tokens, retaining the top
// 25. Ties break alphabetically so the census is deterministic.
func extractEntities(text string) model.EntityMetrics {
	counts := make(map[string]int)
	for _, field := range strings.Fields(text) {
		token := strings.Trim(field, `.,;:!?()[]{}"'“”`)
		if len(token) < 3 || entityStopwords[token] {
			continue
		}
		if entityPattern.MatchString(token) {
			counts[token]++
		}
	}

	ranked := make([]model.EntityCount, 0, len(counts))
	for name, count := range counts {
		ranked = append(ranked, model.EntityCount{Name: name, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Name < ranked[j].Name
	})

	top := ranked
	if len(top) > maxTopEntities {
		top = top[:maxTopEntities]
	}

	return model.EntityMetrics{
		TotalEntities: len(counts),
		TopEntities:   top,
	}
}
