package arw

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arwscan/arwscan/internal/model"
	"github.com/arwscan/arwscan/internal/platform/errs"
)

// resourceProber defines how the engine probes conventional paths.
type resourceProber interface {
	ProbeAll(ctx context.Context, origin *url.URL, targets []ProbeTarget) map[string]model.ProbeResult
}

// machineViewDiscoverer defines how the engine locates a machine view.
type machineViewDiscoverer interface {
	Discover(ctx context.Context, pageURL *url.URL, rels []LinkRel) model.MachineView
}

// Engine orchestrates the full inspection of one page: page fetch and
// snapshot, concurrent resource probes, machine-view discovery, manifest
// parsing and merging, signal extraction, and scoring. Each call builds
// a fresh InspectionReport; the engine holds no inspection state.
type Engine struct {
	fetcher     Fetcher
	prober      resourceProber
	machineView machineViewDiscoverer
}

// NewEngine returns an Engine backed by the given collaborators.
func NewEngine(fetcher Fetcher, prober resourceProber, machineView machineViewDiscoverer) *Engine {
	return &Engine{
		fetcher:     fetcher,
		prober:      prober,
		machineView: machineView,
	}
}

// Inspect fetches the page at targetURL and produces its inspection
// report. Only the page fetch itself can fail; every discovery step
// degrades to an empty or "not found" field in the report instead of
// raising.
func (e *Engine) Inspect(ctx context.Context, targetURL string) (*model.InspectionReport, error) {
	pageURL, err := url.Parse(targetURL)
	if err != nil {
		return nil, &errs.AppError{
			Kind:    errs.InvalidInput,
			Message: "Invalid URL format. Please ensure you entered a valid URL (e.g., https://example.com).",
			Cause:   err,
		}
	}
	if pageURL.Scheme == "" || pageURL.Host == "" {
		return nil, &errs.AppError{
			Kind:    errs.InvalidInput,
			Message: "Invalid URL format. Please ensure you entered a valid URL (e.g., https://example.com).",
		}
	}
	if pageURL.Scheme != "http" && pageURL.Scheme != "https" {
		return nil, &errs.AppError{
			Kind:    errs.InvalidInput,
			Message: "Only http and https URLs are supported.",
		}
	}

	body, statusCode, err := e.fetcher.Fetch(ctx, targetURL)
	if err != nil {
		return nil, &errs.AppError{
			Kind:    errs.Unreachable,
			Message: "The provided URL could not be reached. Check the address.",
			Cause:   err,
		}
	}
	defer func() { _ = body.Close() }()

	if statusCode >= 400 {
		return nil, &errs.AppError{
			Kind:           errs.Unreachable,
			UpstreamStatus: statusCode,
			Message:        "The provided URL returned an error status.",
		}
	}

	snap, err := ParsePage(body, pageURL)
	if err != nil {
		return nil, &errs.AppError{
			Kind:    errs.ParsingFailed,
			Message: "Failed to parse the HTML content.",
			Cause:   err,
		}
	}

	origin := &url.URL{Scheme: pageURL.Scheme, Host: pageURL.Host}

	// Probes are independent of machine-view discovery; run both sides
	// concurrently. The probes themselves fan out internally, each with
	// its own timeout.
	var (
		wg     sync.WaitGroup
		probes map[string]model.ProbeResult
		mview  model.MachineView
	)
	wg.Go(func() {
		probes = e.prober.ProbeAll(ctx, origin, WellKnownTargets)
	})
	wg.Go(func() {
		mview = e.machineView.Discover(ctx, pageURL, snap.LinkRels)
	})
	wg.Wait()

	report := e.assemble(pageURL, snap, probes, mview)
	report.URL = targetURL
	return report, nil
}

// assemble merges probe, parser, and extractor outputs into one report.
func (e *Engine) assemble(pageURL *url.URL, snap *PageSnapshot, probes map[string]model.ProbeResult, mview model.MachineView) *model.InspectionReport {
	var (
		protocols []model.ProtocolDescriptor
		servers   []model.McpServerDescriptor
		policies  map[string]model.Permission
	)

	if p, ok := probes["mcp"]; ok && p.Exists {
		servers = append(servers, ParseMcpWellKnown([]byte(p.RawContent))...)
	}

	// The structured manifest is ingested before the text fallback, so
	// its scalar fields win merge conflicts.
	if p, ok := probes["arw-manifest"]; ok && p.Exists {
		manifestProtocols, manifestServers := ParseManifest([]byte(p.RawContent))
		protocols = manifestProtocols
		servers = append(servers, manifestServers...)
	}

	if p, ok := probes["llms.txt"]; ok && p.Exists {
		text := ParseTextManifest(p.RawContent)
		protocols = MergeProtocols(protocols, text.Protocols)
		servers = append(servers, text.Servers...)
	}

	if p, ok := probes["policies"]; ok && p.Exists {
		policies = ParsePolicies([]byte(p.RawContent))
	}

	metrics := ExtractMetrics(snap, pageURL.Host)
	score := ComputeGeoScore(metrics)

	input := ComplianceInput{
		MachineView: mview.Found,
		LlmsTxt:     probes["llms.txt"].Exists,
		Manifest:    probes["arw-manifest"].Exists,
		McpServers:  len(servers) > 0,
		AIMetaTags:  HasAIMetaTags(snap.MetaTags),
	}
	if p, ok := probes["robots"]; ok && p.Exists {
		input.RobotsAIHints = RobotsHasAgentHints(p.RawContent)
	}
	compliance := ComputeCompliance(input)

	if protocols == nil {
		protocols = []model.ProtocolDescriptor{}
	}
	if servers == nil {
		servers = []model.McpServerDescriptor{}
	}

	return &model.InspectionReport{
		ID:          uuid.New().String(),
		InspectedAt: time.Now().UTC(),
		PageBytes:   snap.ByteCount,
		Title:       snap.Title,
		Probes:      probes,
		Protocols:   protocols,
		McpServers:  servers,
		MachineView: mview,
		Policies:    policies,
		Metrics:     metrics,
		Score:       score,
		Compliance:  compliance,
		ArwCompliant: compliance.Score > 0 &&
			(mview.Found || input.LlmsTxt || input.Manifest),
	}
}
