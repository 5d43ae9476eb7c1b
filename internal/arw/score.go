package arw

import (
	"math"

	"github.com/arwscan/arwscan/internal/model"
)

// Saturation caps: each component ratio is clipped to [0,1] against a
// fixed constant. The caps and weights below are part of the scoring
// contract and are not configurable at run time.
const (
	capExternalLinks   = 10.0
	capExternalDomains = 5.0
	capStatistics      = 12.0
	capQuotes          = 8.0
	capHeadings        = 8.0
	capEntities        = 40.0
	capWords           = 1500.0
	capHeadingDepth    = 12.0
)

// ComputeGeoScore derives the composite content-quality score from the
// extracted metrics. Pure function: identical metrics always yield an
// identical score, and no input can make it fail — missing metrics are
// simply zero before normalization.
func ComputeGeoScore(m model.GeoMetrics) model.GeoScore {
	authority := subscore(
		0.6, clip(float64(m.Citations.ExternalLinks), capExternalLinks),
		0.4, clip(float64(len(m.Citations.ExternalDomains)), capExternalDomains),
		0, 0,
	)

	quotes := m.Quotations.BlockquoteCount + m.Quotations.InlineQuoteCount
	evidence := subscore(
		0.6, clip(float64(m.Statistics.Total), capStatistics),
		0.4, clip(float64(quotes), capQuotes),
		0, 0,
	)

	clarity := subscore(
		0.4, clip(float64(m.Structure.HeadingCount), capHeadings),
		0.3, clip(float64(m.Entities.TotalEntities), capEntities),
		0.3, boolRatio(m.Structure.HasMainRegion),
	)

	readiness := subscore(
		0.6, clip(float64(m.Structure.WordCount), capWords),
		0.2, boolRatio(m.Structure.HasMainRegion),
		0.2, clip(float64(m.Structure.HeadingCount), capHeadingDepth),
	)

	value := int(math.Round(
		0.30*float64(authority) +
			0.25*float64(evidence) +
			0.25*float64(clarity) +
			0.20*float64(readiness)))

	return model.GeoScore{
		Value: value,
		Subscores: model.Subscores{
			Authority:       authority,
			Evidence:        evidence,
			SemanticClarity: clarity,
			Readiness:       readiness,
		},
	}
}

// subscore combines up to three weighted component ratios into a 0-100
// integer. Weights within a subscore sum to 1.
func subscore(w1, r1, w2, r2, w3, r3 float64) int {
	return int(math.Round(100 * (w1*r1 + w2*r2 + w3*r3)))
}

// clip normalizes a count against its saturation cap, clipped to [0,1].
func clip(v, cap float64) float64 {
	if v <= 0 {
		return 0
	}
	if v >= cap {
		return 1
	}
	return v / cap
}

func boolRatio(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
