package arw

import (
	"errors"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// PageSnapshot holds everything extracted from a single-pass HTML parse
// of the inspected page. The Extractor and machine-view discovery both
// work from this snapshot; the document is never traversed twice.
type PageSnapshot struct {
	Title           string
	Text            string
	Links           []PageLink
	LinkRels        []LinkRel
	MetaTags        map[string]string
	HeadingCount    int
	BlockquoteCount int
	HasMainRegion   bool
	ByteCount       int
}

// PageLink is one anchor found on the page, already resolved against the
// page URL. Fragment-only and script links are excluded at collection.
type PageLink struct {
	URL  string
	Host string
}

// LinkRel is one <link> element from the document head.
type LinkRel struct {
	Rel  string
	Href string
	Type string
}

// countingReader tracks how many bytes the tokenizer consumed, which
// becomes the report's raw page size.
type countingReader struct {
	r io.Reader
	n int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += n
	return n, err
}

// skippedTextTags are elements whose text content is not visible prose.
var skippedTextTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
}

// ParsePage performs a single-pass traversal of the HTML body,
// collecting the title, visible text, anchors, link relations, meta
// tags, and structural counts.
func ParsePage(body io.Reader, pageURL *url.URL) (*PageSnapshot, error) {
	snap := &PageSnapshot{MetaTags: make(map[string]string)}

	counter := &countingReader{r: body}
	z := html.NewTokenizer(counter)

	var text strings.Builder
	var inTitle bool
	var skipDepth int
	var skipTag string

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				snap.Text = text.String()
				snap.ByteCount = counter.n
				return snap, nil
			}
			return nil, z.Err()

		case html.StartTagToken, html.SelfClosingTagToken:
			tn, hasAttr := z.TagName()
			tag := string(tn)
			selfClosing := tt == html.SelfClosingTagToken

			if skippedTextTags[tag] && !selfClosing {
				if skipDepth == 0 {
					skipTag = tag
				}
				if tag == skipTag {
					skipDepth++
				}
				continue
			}

			switch {
			case tag == "title":
				inTitle = true

			case isHeadingTag(tag):
				snap.HeadingCount++

			case tag == "blockquote":
				snap.BlockquoteCount++

			case tag == "main":
				snap.HasMainRegion = true

			case tag == "a" && hasAttr:
				attrs := collectAttrs(z)
				if link, ok := resolvePageLink(attrs["href"], pageURL); ok {
					snap.Links = append(snap.Links, link)
				}

			case tag == "link" && hasAttr:
				attrs := collectAttrs(z)
				if attrs["rel"] != "" {
					snap.LinkRels = append(snap.LinkRels, LinkRel{
						Rel:  strings.ToLower(strings.TrimSpace(attrs["rel"])),
						Href: attrs["href"],
						Type: strings.ToLower(attrs["type"]),
					})
				}

			case tag == "meta" && hasAttr:
				attrs := collectAttrs(z)
				name := attrs["name"]
				if name == "" {
					name = attrs["property"]
				}
				if name != "" {
					snap.MetaTags[strings.ToLower(name)] = attrs["content"]
				}

			case hasAttr:
				attrs := collectAttrs(z)
				if strings.EqualFold(attrs["role"], "main") {
					snap.HasMainRegion = true
				}
			}

		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			chunk := string(z.Text())
			if inTitle {
				snap.Title = strings.TrimSpace(chunk)
				inTitle = false
				continue
			}
			if trimmed := strings.TrimSpace(chunk); trimmed != "" {
				text.WriteString(trimmed)
				text.WriteByte(' ')
			}

		case html.EndTagToken:
			tn, _ := z.TagName()
			tag := string(tn)
			if tag == "title" {
				inTitle = false
			}
			if skipDepth > 0 && tag == skipTag {
				skipDepth--
			}
		}
	}
}

func isHeadingTag(tag string) bool {
	switch tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return true
	}
	return false
}

// collectAttrs drains all attributes of the current tag into a map with
// lowercased keys.
func collectAttrs(z *html.Tokenizer) map[string]string {
	attrs := make(map[string]string, 4)
	for {
		key, val, more := z.TagAttr()
		attrs[strings.ToLower(string(key))] = string(val)
		if !more {
			return attrs
		}
	}
}

// resolvePageLink resolves an href against the page URL, dropping
// fragments, script pseudo-links, and non-http(s) schemes (mailto:,
// tel:, javascript:).
func resolvePageLink(href string, pageURL *url.URL) (PageLink, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return PageLink{}, false
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return PageLink{}, false
	}

	resolved := pageURL.ResolveReference(parsed)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return PageLink{}, false
	}

	return PageLink{URL: resolved.String(), Host: strings.ToLower(resolved.Host)}, true
}
