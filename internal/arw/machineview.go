package arw

import (
	"context"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/arwscan/arwscan/internal/model"
)

// machineViewRels are the <link> relation values that explicitly declare
// a machine view of the page.
var machineViewRels = map[string]bool{
	"machine-view":       true,
	"alternate+llm":      true,
	"alternate+markdown": true,
}

// MachineViewFinder locates a lightweight-markup alternate of a page:
// first via explicit link relations, then via path-convention
// candidates. The first candidate whose body passes the classifier's
// markup test wins; later candidates are never attempted.
type MachineViewFinder struct {
	fetcher Fetcher
	timeout time.Duration
}

// NewMachineViewFinder returns a finder that bounds each candidate fetch
// by the given timeout.
func NewMachineViewFinder(fetcher Fetcher, timeout time.Duration) *MachineViewFinder {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &MachineViewFinder{fetcher: fetcher, timeout: timeout}
}

// Discover checks candidates in priority order and returns the first
// confirmed machine view, or a zero-valued MachineView when none exists.
func (f *MachineViewFinder) Discover(ctx context.Context, pageURL *url.URL, rels []LinkRel) model.MachineView {
	for _, rel := range rels {
		if !machineViewRels[rel.Rel] {
			continue
		}
		if content, ok := f.tryCandidate(ctx, pageURL, rel.Href); ok {
			resolved := resolveCandidate(pageURL, rel.Href)
			return model.MachineView{Found: true, URL: resolved, Source: "link-rel", Content: content}
		}
	}

	for _, candidate := range CandidatePaths(pageURL) {
		if content, ok := f.tryCandidate(ctx, pageURL, candidate); ok {
			resolved := resolveCandidate(pageURL, candidate)
			return model.MachineView{Found: true, URL: resolved, Source: "path-convention", Content: content}
		}
	}

	return model.MachineView{}
}

// CandidatePaths derives the ordered machine-view path conventions from
// the page's own path: the .llm.md conventions first, then the plain .md
// fallbacks.
func CandidatePaths(pageURL *url.URL) []string {
	path := pageURL.Path
	if path == "" {
		path = "/"
	}

	var candidates []string
	add := func(p string) {
		for _, existing := range candidates {
			if existing == p {
				return
			}
		}
		candidates = append(candidates, p)
	}

	for _, ext := range []string{".llm.md", ".md"} {
		switch {
		case strings.HasSuffix(path, ".html"):
			add(strings.TrimSuffix(path, ".html") + ext)
		case strings.HasSuffix(path, "/"):
			add(path + "index" + ext)
		default:
			add(path + ext)
		}
	}
	return candidates
}

// tryCandidate fetches one candidate and accepts it only when the body
// classifies as lightweight markup. HTML bodies are rejected here — a
// 200-status HTML error page must never be mistaken for a machine view.
func (f *MachineViewFinder) tryCandidate(ctx context.Context, pageURL *url.URL, ref string) (string, bool) {
	target := resolveCandidate(pageURL, ref)
	if target == "" {
		return "", false
	}

	fetchCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	body, status, err := f.fetcher.Fetch(fetchCtx, target)
	if err != nil {
		return "", false
	}
	defer func() { _ = body.Close() }()

	if status < 200 || status > 299 {
		return "", false
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		return "", false
	}

	content := string(raw)
	if Classify(content) != ClassMarkup {
		return "", false
	}
	return content, true
}

func resolveCandidate(pageURL *url.URL, ref string) string {
	parsed, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	resolved := pageURL.ResolveReference(parsed)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}
