package model

import "time"

// ProtocolType enumerates the protocol families the engine recognizes.
type ProtocolType string

const (
	ProtocolREST  ProtocolType = "rest"
	ProtocolMCP   ProtocolType = "mcp"
	ProtocolOther ProtocolType = "other"
)

// DescriptorSource records where an MCP server descriptor was discovered.
type DescriptorSource string

const (
	SourceWellKnown    DescriptorSource = "well-known"
	SourceManifest     DescriptorSource = "manifest"
	SourceFallbackText DescriptorSource = "fallback-text"
)

// ProbeResult is the outcome of one retrieval attempt against a
// conventional resource path. Immutable once produced; Parsed is only
// ever set when Exists is true.
type ProbeResult struct {
	Key        string `json:"key"`
	Path       string `json:"path"`
	URL        string `json:"url"`
	Exists     bool   `json:"exists"`
	RawContent string `json:"raw_content,omitempty"`
	Parsed     any    `json:"parsed,omitempty"`
	Error      string `json:"error,omitempty"`
}

// ToolDescriptor describes a single tool exposed by a protocol or MCP server.
type ToolDescriptor struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// ResourceRef points at a resource exposed by a protocol or MCP server.
type ResourceRef struct {
	URI         string `json:"uri,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// TransportRef describes one transport a protocol accepts.
type TransportRef struct {
	Type     string `json:"type"`
	Endpoint string `json:"endpoint,omitempty"`
	Auth     string `json:"auth,omitempty"`
}

// ProtocolDescriptor is one machine-consumable protocol advertised by the
// domain, assembled from the structured manifest, the text manifest, or both.
type ProtocolDescriptor struct {
	Name        string           `json:"name"`
	Type        ProtocolType     `json:"type"`
	Endpoint    string           `json:"endpoint,omitempty"`
	Version     string           `json:"version,omitempty"`
	Description string           `json:"description,omitempty"`
	Tools       []ToolDescriptor `json:"tools"`
	Resources   []ResourceRef    `json:"resources"`
	Transports  []TransportRef   `json:"transports"`
}

// McpServerDescriptor is one discovered MCP server.
type McpServerDescriptor struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Endpoint    string           `json:"endpoint,omitempty"`
	Transport   string           `json:"transport"`
	Auth        string           `json:"auth"`
	Tools       []ToolDescriptor `json:"tools"`
	Resources   []ResourceRef    `json:"resources"`
	Source      DescriptorSource `json:"source"`
}

// CitationMetrics counts outbound link signals on the page.
type CitationMetrics struct {
	TotalLinks      int      `json:"total_links"`
	ExternalLinks   int      `json:"external_links"`
	ExternalDomains []string `json:"external_domains"`
}

// StatisticMetrics counts quantitative spans found in the page text.
// A span matching two pattern families counts once in each; Total is
// the plain sum of the three.
type StatisticMetrics struct {
	Percentages int `json:"percentages"`
	Currencies  int `json:"currencies"`
	BigNumbers  int `json:"big_numbers"`
	Total       int `json:"total"`
}

// QuotationMetrics counts quoted material. SampleQuotes is illustrative
// only and never feeds the scoring model.
type QuotationMetrics struct {
	BlockquoteCount  int      `json:"blockquote_count"`
	InlineQuoteCount int      `json:"inline_quote_count"`
	SampleQuotes     []string `json:"sample_quotes,omitempty"`
}

// EntityCount pairs a candidate entity token with its frequency.
type EntityCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// EntityMetrics holds the crude capitalized-token entity census.
type EntityMetrics struct {
	TotalEntities int           `json:"total_entities"`
	TopEntities   []EntityCount `json:"top_entities,omitempty"`
}

// StructureMetrics captures document-shape signals.
type StructureMetrics struct {
	HeadingCount  int  `json:"heading_count"`
	HasMainRegion bool `json:"has_main_region"`
	WordCount     int  `json:"word_count"`
}

// GeoMetrics is everything the Score Calculator consumes, extracted once
// from a snapshot of the rendered page.
type GeoMetrics struct {
	Citations  CitationMetrics  `json:"citations"`
	Statistics StatisticMetrics `json:"statistics"`
	Quotations QuotationMetrics `json:"quotations"`
	Entities   EntityMetrics    `json:"entities"`
	Structure  StructureMetrics `json:"structure"`
}

// Subscores are the four GEO component scores, each 0-100.
type Subscores struct {
	Authority       int `json:"authority"`
	Evidence        int `json:"evidence"`
	SemanticClarity int `json:"semantic_clarity"`
	Readiness       int `json:"readiness"`
}

// GeoScore is the composite content-quality score, 0-100, derived
// deterministically from GeoMetrics.
type GeoScore struct {
	Value     int       `json:"value"`
	Subscores Subscores `json:"subscores"`
}

// ComplianceResult is the additive discoverability score over found
// surface components, capped at 100.
type ComplianceResult struct {
	Score      int      `json:"score"`
	Components []string `json:"components"`
}

// MachineView records the outcome of machine-view discovery.
type MachineView struct {
	Found   bool   `json:"found"`
	URL     string `json:"url,omitempty"`
	Source  string `json:"source,omitempty"` // "link-rel" or "path-convention"
	Content string `json:"content,omitempty"`
}

// InspectionReport is the aggregate result of inspecting one page.
// Constructed exactly once per inspection; a new navigation produces a
// fresh report rather than mutating this one.
type InspectionReport struct {
	ID           string                 `json:"id"`
	URL          string                 `json:"url"`
	InspectedAt  time.Time              `json:"inspected_at"`
	PageBytes    int                    `json:"page_bytes"`
	Title        string                 `json:"title,omitempty"`
	Probes       map[string]ProbeResult `json:"probes"`
	Protocols    []ProtocolDescriptor   `json:"protocols"`
	McpServers   []McpServerDescriptor  `json:"mcp_servers"`
	MachineView  MachineView            `json:"machine_view"`
	Policies     map[string]Permission  `json:"policies,omitempty"`
	Metrics      GeoMetrics             `json:"metrics"`
	Score        GeoScore               `json:"score"`
	Compliance   ComplianceResult       `json:"compliance"`
	ArwCompliant bool                   `json:"arw_compliant"`
}

// ErrorResponse is the JSON shape returned on failure.
type ErrorResponse struct {
	Error      string `json:"error"`
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}
