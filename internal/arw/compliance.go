package arw

import (
	"strings"

	"github.com/arwscan/arwscan/internal/model"
)

// ComplianceInput records which ARW surface components an inspection
// discovered. It feeds the additive compliance model, which measures
// discoverability surface and is deliberately independent of the GEO
// content-quality score.
type ComplianceInput struct {
	MachineView   bool
	LlmsTxt       bool
	Manifest      bool
	McpServers    bool
	AIMetaTags    bool
	RobotsAIHints bool
}

// complianceComponents assigns the fixed point value for each component.
// The table order is the component order in the result.
var complianceComponents = []struct {
	name    string
	points  int
	present func(in ComplianceInput) bool
}{
	{"machine-view", 35, func(in ComplianceInput) bool { return in.MachineView }},
	{"llms.txt", 20, func(in ComplianceInput) bool { return in.LlmsTxt }},
	{"arw-manifest", 15, func(in ComplianceInput) bool { return in.Manifest }},
	{"mcp", 15, func(in ComplianceInput) bool { return in.McpServers }},
	{"ai-meta-tags", 10, func(in ComplianceInput) bool { return in.AIMetaTags }},
	{"robots-ai-hints", 5, func(in ComplianceInput) bool { return in.RobotsAIHints }},
}

// ComputeCompliance sums the point values of every discovered component
// and clamps the total to 100.
func ComputeCompliance(in ComplianceInput) model.ComplianceResult {
	result := model.ComplianceResult{Components: []string{}}
	for _, c := range complianceComponents {
		if c.present(in) {
			result.Score += c.points
			result.Components = append(result.Components, c.name)
		}
	}
	if result.Score > 100 {
		result.Score = 100
	}
	return result
}

// aiMetaNames are <meta> names that declare AI-oriented page metadata.
var aiMetaNames = map[string]bool{
	"ai-content":         true,
	"ai-instructions":    true,
	"agent-instructions": true,
	"llms-txt":           true,
}

// HasAIMetaTags reports whether the snapshot carries AI-oriented meta
// tags, either a known name or anything in the "ai:" property namespace.
func HasAIMetaTags(meta map[string]string) bool {
	for name := range meta {
		if aiMetaNames[name] || strings.HasPrefix(name, "ai:") {
			return true
		}
	}
	return false
}

// agentUserAgents are crawler tokens operated by AI systems. A robots
// file that addresses any of them is giving agents explicit hints.
var agentUserAgents = []string{
	"gptbot",
	"claudebot",
	"claude-web",
	"anthropic-ai",
	"ccbot",
	"google-extended",
	"perplexitybot",
	"bytespider",
	"cohere-ai",
}

// RobotsHasAgentHints reports whether a robots.txt body addresses AI
// agent crawlers or points at an llms.txt.
func RobotsHasAgentHints(body string) bool {
	lower := strings.ToLower(body)
	if strings.Contains(lower, "llms.txt") {
		return true
	}
	for line := range strings.Lines(lower) {
		rest, ok := strings.CutPrefix(strings.TrimSpace(line), "user-agent:")
		if !ok {
			continue
		}
		agent := strings.TrimSpace(rest)
		for _, known := range agentUserAgents {
			if agent == known {
				return true
			}
		}
	}
	return false
}
