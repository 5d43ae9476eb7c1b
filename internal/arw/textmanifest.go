package arw

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/arwscan/arwscan/internal/model"
)

// TextManifest holds everything extracted from a loosely-YAML text
// manifest such as llms.txt.
type TextManifest struct {
	Protocols []model.ProtocolDescriptor
	Servers   []model.McpServerDescriptor
}

// ParseTextManifest extracts protocol and MCP server records from a text
// manifest. Well-formed YAML takes a strict fast path; anything else
// falls back to a lenient line scanner, because hand-authored manifests
// routinely carry inconsistent indentation and quoting that a strict
// parser would reject despite the author's intent being perfectly clear.
// Both paths produce identical record shapes.
func ParseTextManifest(text string) TextManifest {
	var doc manifestDoc
	if err := yaml.Unmarshal([]byte(text), &doc); err == nil {
		if len(doc.Protocols) > 0 || (doc.MCP != nil && len(doc.MCP.Servers) > 0) {
			protocols, servers := convertManifest(doc, model.SourceFallbackText)
			return TextManifest{Protocols: protocols, Servers: servers}
		}
	}
	return scanTextManifest(text)
}

// textRecord accumulates fields for one list item until it is flushed
// into a protocol or server descriptor. The two shapes overlap enough
// that a single builder serves both.
type textRecord struct {
	name        string
	typ         string
	endpoint    string
	version     string
	description string
	transport   string
	auth        string
	tools       []model.ToolDescriptor
	resources   []model.ResourceRef
	transports  []model.TransportRef
}

// textScanner is the line-oriented state machine of the lenient parser.
// It tracks the current top-level section, the record being built, and
// which nested list (tools/resources/transports) is accumulating.
type textScanner struct {
	out TextManifest

	section      string
	cur          *textRecord
	recordIndent int
	nested       string
}

// scanTextManifest scans loosely-YAML text line by line. A top-level
// section is announced by an unindented "key:" line and ends at the next
// one; records are announced by "- name:" or "- id:" list markers.
// Unknown keys are ignored rather than rejected.
func scanTextManifest(text string) TextManifest {
	s := &textScanner{}

	for line := range strings.Lines(text) {
		trimmed := strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(trimmed) == "" {
			continue
		}

		indent := len(trimmed) - len(strings.TrimLeft(trimmed, " \t"))
		content := strings.TrimSpace(trimmed)

		if indent == 0 {
			if key, value, ok := splitKeyValue(content); ok && value == "" {
				s.flush()
				s.section = strings.ToLower(key)
				s.nested = ""
				continue
			}
			// Unindented prose, headings, and blockquotes are manifest
			// front matter, not section content.
			continue
		}

		if s.section != "protocols" && s.section != "mcp" {
			continue
		}

		if rest, ok := strings.CutPrefix(content, "- "); ok {
			s.listItem(indent, strings.TrimSpace(rest))
			continue
		}
		s.scalarLine(content)
	}

	s.flush()
	return s.out
}

// listItem handles a "- key: value" line. Depth decides whether it opens
// a new record or adds an entry to the nested list in progress.
func (s *textScanner) listItem(indent int, rest string) {
	key, value, ok := splitKeyValue(rest)
	if !ok {
		return
	}
	key = strings.ToLower(key)
	value = unquote(value)

	nestedEntry := s.cur != nil && s.nested != "" && indent > s.recordIndent

	switch key {
	case "name", "id":
		if nestedEntry {
			s.appendNested(key, value)
			return
		}
		s.flush()
		s.cur = &textRecord{name: value}
		s.recordIndent = indent
		s.nested = ""
	case "uri":
		if nestedEntry && s.nested == "resources" {
			s.cur.resources = append(s.cur.resources, model.ResourceRef{URI: value})
		}
	case "type":
		if nestedEntry && s.nested == "transports" {
			s.cur.transports = append(s.cur.transports, model.TransportRef{Type: value})
		}
	}
}

// appendNested adds a keyed entry to whichever nested list is active.
func (s *textScanner) appendNested(key, value string) {
	switch s.nested {
	case "tools":
		tool := model.ToolDescriptor{}
		if key == "id" {
			tool.ID = value
		} else {
			tool.Name = value
		}
		s.cur.tools = append(s.cur.tools, tool)
	case "resources":
		s.cur.resources = append(s.cur.resources, model.ResourceRef{Name: value})
	case "transports":
		s.cur.transports = append(s.cur.transports, model.TransportRef{Type: value})
	}
}

// scalarLine handles an indented "key: value" line: either a nested list
// opener, a follow-up field on the last nested entry, or a scalar field
// on the current record.
func (s *textScanner) scalarLine(content string) {
	key, value, ok := splitKeyValue(content)
	if !ok {
		return
	}
	key = strings.ToLower(key)
	value = unquote(value)

	if value == "" {
		switch key {
		case "tools", "resources", "transports":
			if s.cur != nil {
				s.nested = key
			}
		case "servers":
			// The "servers:" wrapper inside the mcp section; records
			// below it announce themselves with "- name:" markers.
		}
		return
	}

	if s.cur == nil {
		return
	}

	if s.nested != "" && s.setNestedField(key, value) {
		return
	}

	// Scalars are never overwritten once set.
	switch key {
	case "type":
		setIfEmpty(&s.cur.typ, value)
	case "endpoint", "url":
		setIfEmpty(&s.cur.endpoint, value)
	case "version":
		setIfEmpty(&s.cur.version, value)
	case "description":
		setIfEmpty(&s.cur.description, value)
	case "transport":
		setIfEmpty(&s.cur.transport, value)
	case "auth":
		setIfEmpty(&s.cur.auth, value)
	}
}

// setNestedField applies a description/auth follow-up line to the most
// recent entry of the active nested list. Returns false when there is no
// entry to attach to, letting the field fall through to the record.
func (s *textScanner) setNestedField(key, value string) bool {
	switch s.nested {
	case "tools":
		if n := len(s.cur.tools); n > 0 && key == "description" {
			setIfEmpty(&s.cur.tools[n-1].Description, value)
			return true
		}
	case "resources":
		if n := len(s.cur.resources); n > 0 {
			switch key {
			case "description":
				setIfEmpty(&s.cur.resources[n-1].Description, value)
				return true
			case "name":
				setIfEmpty(&s.cur.resources[n-1].Name, value)
				return true
			}
		}
	case "transports":
		if n := len(s.cur.transports); n > 0 {
			switch key {
			case "endpoint", "url":
				setIfEmpty(&s.cur.transports[n-1].Endpoint, value)
				return true
			case "auth":
				setIfEmpty(&s.cur.transports[n-1].Auth, value)
				return true
			}
		}
	}
	return false
}

// flush finalizes the record in progress into the section's output list,
// filling the defaults the record omitted.
func (s *textScanner) flush() {
	if s.cur == nil {
		return
	}
	rec := s.cur
	s.cur = nil
	s.nested = ""

	if rec.name == "" {
		return
	}

	switch s.section {
	case "protocols":
		s.out.Protocols = append(s.out.Protocols, model.ProtocolDescriptor{
			Name:        rec.name,
			Type:        normalizeProtocolType(rec.typ),
			Endpoint:    rec.endpoint,
			Version:     rec.version,
			Description: rec.description,
			Tools:       emptyIfNilTools(rec.tools),
			Resources:   emptyIfNilResources(rec.resources),
			Transports:  emptyIfNilTransports(rec.transports),
		})
	case "mcp":
		s.out.Servers = append(s.out.Servers, model.McpServerDescriptor{
			Name:        rec.name,
			Description: rec.description,
			Endpoint:    rec.endpoint,
			Transport:   defaultString(rec.transport, "http"),
			Auth:        defaultString(rec.auth, "none"),
			Tools:       emptyIfNilTools(rec.tools),
			Resources:   emptyIfNilResources(rec.resources),
			Source:      model.SourceFallbackText,
		})
	}
}

// splitKeyValue splits "key: value" at the first colon. The key must be
// a bare word; URLs and prose with colons do not qualify.
func splitKeyValue(s string) (key, value string, ok bool) {
	idx := strings.Index(s, ":")
	if idx <= 0 {
		return "", "", false
	}
	key = strings.TrimSpace(s[:idx])
	for _, r := range key {
		if !isKeyRune(r) {
			return "", "", false
		}
	}
	return key, strings.TrimSpace(s[idx+1:]), true
}

func isKeyRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_', r == '-':
		return true
	}
	return false
}

// unquote strips one matching pair of single or double quotes.
func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

func setIfEmpty(dst *string, value string) {
	if *dst == "" {
		*dst = value
	}
}

func emptyIfNilTools(in []model.ToolDescriptor) []model.ToolDescriptor {
	if in == nil {
		return []model.ToolDescriptor{}
	}
	return in
}

func emptyIfNilResources(in []model.ResourceRef) []model.ResourceRef {
	if in == nil {
		return []model.ResourceRef{}
	}
	return in
}

func emptyIfNilTransports(in []model.TransportRef) []model.TransportRef {
	if in == nil {
		return []model.TransportRef{}
	}
	return in
}
