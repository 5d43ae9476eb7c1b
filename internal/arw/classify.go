package arw

import (
	"regexp"
	"strings"
)

// Classification is the Content Classifier's verdict on a body of text.
type Classification int

const (
	// ClassInvalid means the text is neither HTML nor acceptable
	// lightweight markup.
	ClassInvalid Classification = iota
	// ClassHTML means the text is an HTML document. Conventional paths
	// frequently serve an HTML error or redirect page with a 200 status;
	// such bodies must never pass as machine-readable content.
	ClassHTML
	// ClassMarkup means the text is lightweight markup or plain text,
	// acceptable as a machine view.
	ClassMarkup
)

// String returns a short name for the classification.
func (c Classification) String() string {
	switch c {
	case ClassHTML:
		return "html"
	case ClassMarkup:
		return "markup"
	default:
		return "invalid"
	}
}

// classRule pairs a name with a structural predicate. Rules stay
// declarative so each can be tested in isolation from the control flow
// that orders them.
type classRule struct {
	name  string
	match func(s string) bool
}

func prefixRule(name, prefix string) classRule {
	return classRule{name: name, match: func(s string) bool {
		return strings.HasPrefix(s, prefix)
	}}
}

func pairRule(name, open, close string) classRule {
	return classRule{name: name, match: func(s string) bool {
		return strings.Contains(s, open) && strings.Contains(s, close)
	}}
}

func regexpRule(name, pattern string) classRule {
	re := regexp.MustCompile(pattern)
	return classRule{name: name, match: re.MatchString}
}

// htmlRules run against the lowercased text. Any single match classifies
// the text as HTML.
var htmlRules = []classRule{
	prefixRule("doctype-prefix", "<!doctype"),
	prefixRule("html-prefix", "<html"),
	pairRule("html-pair", "<html", "</html>"),
	pairRule("div-pair", "<div", "</div>"),
}

// markupRules are structural patterns of lightweight markup. Any single
// match is enough to accept the text as a candidate machine view.
var markupRules = []classRule{
	regexpRule("atx-heading", `(?m)^#{1,6} \S`),
	regexpRule("list-marker", `(?m)^[-*+] \S`),
	regexpRule("fenced-code", "(?m)^```"),
	regexpRule("inline-link", `\[[^\]\n]+\]\([^)\n]+\)`),
	regexpRule("emphasis", `\*\*[^*\n]+\*\*|__[^_\n]+__`),
}

// blockTagSubstrings disqualify plain text from the no-HTML fallback.
var blockTagSubstrings = []string{
	"<p>", "<div", "<span", "<table", "<body", "<head>", "<script", "<ul>", "<ol>", "<li>",
}

// Classify decides whether text is an HTML document, acceptable
// lightweight markup, or neither. HTML rules run first so that an HTML
// page with embedded markdown-looking content is never accepted as a
// machine view. Plain text with no HTML block tags is accepted as valid
// markup even when it matches no markup pattern.
func Classify(text string) Classification {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ClassInvalid
	}

	lower := strings.ToLower(trimmed)
	for _, r := range htmlRules {
		if r.match(lower) {
			return ClassHTML
		}
	}

	for _, r := range markupRules {
		if r.match(trimmed) {
			return ClassMarkup
		}
	}

	for _, tag := range blockTagSubstrings {
		if strings.Contains(lower, tag) {
			return ClassInvalid
		}
	}
	return ClassMarkup
}
