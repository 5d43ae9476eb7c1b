package arw

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/arwscan/arwscan/internal/model"
)

// ProbeTarget names one conventional resource path to attempt.
type ProbeTarget struct {
	Key  string
	Path string
	// JSON marks targets whose body must decode as JSON to count as
	// present. Absence of structure is treated the same as absence of
	// the resource.
	JSON bool
}

// WellKnownTargets is the fixed set of conventional paths probed on
// every inspection, relative to the page origin.
var WellKnownTargets = []ProbeTarget{
	{Key: "llms.txt", Path: "/llms.txt"},
	{Key: "arw-manifest", Path: "/.well-known/arw-manifest.json", JSON: true},
	{Key: "content-index", Path: "/.well-known/arw-content-index.json", JSON: true},
	{Key: "policies", Path: "/.well-known/arw-policies.json", JSON: true},
	{Key: "mcp", Path: "/.well-known/mcp.json", JSON: true},
	{Key: "robots", Path: "/robots.txt"},
}

// maxProbeBody caps a probe body well below the page-fetch limit; no
// conventional resource is legitimately this large.
const maxProbeBody = 2 << 20

// Prober issues bounded-time retrieval attempts against conventional
// resource paths. Probes are independent: each carries its own timeout
// and a failure on one never affects the others.
type Prober struct {
	fetcher Fetcher
	timeout time.Duration
}

// NewProber returns a Prober that gives each probe the supplied timeout.
func NewProber(fetcher Fetcher, timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Prober{fetcher: fetcher, timeout: timeout}
}

// ProbeAll attempts every target concurrently and returns one ProbeResult
// per target key. A straggler blocks only until its own timeout; there is
// no shared deadline. Each goroutine writes only its own slice slot, so
// no synchronization beyond the WaitGroup is needed.
func (p *Prober) ProbeAll(ctx context.Context, origin *url.URL, targets []ProbeTarget) map[string]model.ProbeResult {
	results := make([]model.ProbeResult, len(targets))

	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Go(func() {
			results[i] = p.probe(ctx, origin, target)
		})
	}
	wg.Wait()

	out := make(map[string]model.ProbeResult, len(targets))
	for _, r := range results {
		out[r.Key] = r
	}
	return out
}

// probe attempts a single target. Network errors, non-2xx statuses, and
// malformed JSON all yield Exists=false with a diagnostic; nothing here
// is fatal to the inspection.
func (p *Prober) probe(ctx context.Context, origin *url.URL, target ProbeTarget) model.ProbeResult {
	probeURL := origin.ResolveReference(&url.URL{Path: target.Path}).String()
	result := model.ProbeResult{
		Key:  target.Key,
		Path: target.Path,
		URL:  probeURL,
	}

	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	body, status, err := p.fetcher.Fetch(probeCtx, probeURL)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	defer func() { _ = body.Close() }()

	if status < 200 || status > 299 {
		result.Error = fmt.Sprintf("status %d", status)
		return result
	}

	raw, err := io.ReadAll(io.LimitReader(body, maxProbeBody))
	if err != nil {
		result.Error = err.Error()
		return result
	}

	if target.JSON {
		var parsed any
		if err := json.Unmarshal(raw, &parsed); err != nil {
			result.Error = "Invalid JSON"
			return result
		}
		result.Exists = true
		result.RawContent = string(raw)
		result.Parsed = parsed
		return result
	}

	// Text targets: an HTML body at a text path is a disguised error or
	// redirect page, downgraded to absent with a diagnostic.
	if Classify(string(raw)) == ClassHTML {
		result.Error = "HTML response where text expected"
		return result
	}

	result.Exists = true
	result.RawContent = string(raw)
	return result
}
