package arw

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/arwscan/arwscan/internal/model"
)

// manifestDoc is the subset of the ARW manifest schema this engine
// consumes. Unknown top-level keys are ignored by decoding.
type manifestDoc struct {
	Protocols []manifestProtocol `json:"protocols" yaml:"protocols"`
	Actions   []json.RawMessage  `json:"actions" yaml:"-"`
	Auth      map[string]any     `json:"auth" yaml:"auth"`
	MCP       *manifestMCP       `json:"mcp" yaml:"mcp"`
}

type manifestProtocol struct {
	Name        string             `json:"name" yaml:"name"`
	Type        string             `json:"type" yaml:"type"`
	Endpoint    string             `json:"endpoint" yaml:"endpoint"`
	Version     string             `json:"version" yaml:"version"`
	Description string             `json:"description" yaml:"description"`
	Tools       []flexTool         `json:"tools" yaml:"tools"`
	Resources   []flexResource     `json:"resources" yaml:"resources"`
	Transports  []manifestTransport `json:"transports" yaml:"transports"`
	Prompts     []json.RawMessage  `json:"prompts" yaml:"-"`
}

type manifestMCP struct {
	Version string           `json:"version" yaml:"version"`
	Servers []manifestServer `json:"servers" yaml:"servers"`
}

type manifestServer struct {
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	Endpoint    string         `json:"endpoint" yaml:"endpoint"`
	Transport   string         `json:"transport" yaml:"transport"`
	Auth        string         `json:"auth" yaml:"auth"`
	Tools       []flexTool     `json:"tools" yaml:"tools"`
	Resources   []flexResource `json:"resources" yaml:"resources"`
}

type manifestTransport struct {
	Type     string `json:"type" yaml:"type"`
	Endpoint string `json:"endpoint" yaml:"endpoint"`
	Auth     string `json:"auth" yaml:"auth"`
}

// flexTool accepts either a bare string ("search") or an object
// ({"id": "search", "description": ...}); hand-authored manifests use both.
type flexTool struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

func (t *flexTool) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		t.Name = s
		return nil
	}
	type plain flexTool
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("tool entry: %w", err)
	}
	*t = flexTool(p)
	return nil
}

func (t *flexTool) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		t.Name = node.Value
		return nil
	}
	type plain flexTool
	var p plain
	if err := node.Decode(&p); err != nil {
		return fmt.Errorf("tool entry: %w", err)
	}
	*t = flexTool(p)
	return nil
}

// flexResource accepts either a bare URI string or an object.
type flexResource struct {
	URI         string `yaml:"uri"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

func (r *flexResource) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		r.URI = s
		return nil
	}
	type plain flexResource
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("resource entry: %w", err)
	}
	*r = flexResource(p)
	return nil
}

func (r *flexResource) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		r.URI = node.Value
		return nil
	}
	type plain flexResource
	var p plain
	if err := node.Decode(&p); err != nil {
		return fmt.Errorf("resource entry: %w", err)
	}
	*r = flexResource(p)
	return nil
}

// ParseManifest decodes a structured arw-manifest.json body into protocol
// and MCP server descriptors. A decode failure yields empty slices, never
// an error: the probe layer already validated that the body is JSON, and
// schema drift must not fail the inspection.
func ParseManifest(raw []byte) ([]model.ProtocolDescriptor, []model.McpServerDescriptor) {
	var doc manifestDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, nil
	}
	return convertManifest(doc, model.SourceManifest)
}

// ParseMcpWellKnown decodes a /.well-known/mcp.json body. The file may be
// either a bare server object or a {servers: [...]} wrapper.
func ParseMcpWellKnown(raw []byte) []model.McpServerDescriptor {
	var wrapper manifestMCP
	if err := json.Unmarshal(raw, &wrapper); err == nil && len(wrapper.Servers) > 0 {
		return convertServers(wrapper.Servers, model.SourceWellKnown)
	}

	var single manifestServer
	if err := json.Unmarshal(raw, &single); err == nil && single.Name != "" {
		return convertServers([]manifestServer{single}, model.SourceWellKnown)
	}
	return nil
}

func convertManifest(doc manifestDoc, source model.DescriptorSource) ([]model.ProtocolDescriptor, []model.McpServerDescriptor) {
	var protocols []model.ProtocolDescriptor
	for _, p := range doc.Protocols {
		if p.Name == "" && p.Type == "" {
			continue
		}
		protocols = append(protocols, model.ProtocolDescriptor{
			Name:        p.Name,
			Type:        normalizeProtocolType(p.Type),
			Endpoint:    p.Endpoint,
			Version:     p.Version,
			Description: p.Description,
			Tools:       convertTools(p.Tools),
			Resources:   convertResources(p.Resources),
			Transports:  convertTransports(p.Transports),
		})
	}

	var servers []model.McpServerDescriptor
	if doc.MCP != nil {
		servers = convertServers(doc.MCP.Servers, source)
	}
	return protocols, servers
}

func convertServers(in []manifestServer, source model.DescriptorSource) []model.McpServerDescriptor {
	var servers []model.McpServerDescriptor
	for _, s := range in {
		if s.Name == "" {
			continue
		}
		servers = append(servers, model.McpServerDescriptor{
			Name:        s.Name,
			Description: s.Description,
			Endpoint:    s.Endpoint,
			Transport:   defaultString(s.Transport, "http"),
			Auth:        defaultString(s.Auth, "none"),
			Tools:       convertTools(s.Tools),
			Resources:   convertResources(s.Resources),
			Source:      source,
		})
	}
	return servers
}

func convertTools(in []flexTool) []model.ToolDescriptor {
	tools := make([]model.ToolDescriptor, 0, len(in))
	for _, t := range in {
		if t.ID == "" && t.Name == "" {
			continue
		}
		tools = append(tools, model.ToolDescriptor{ID: t.ID, Name: t.Name, Description: t.Description})
	}
	return tools
}

func convertResources(in []flexResource) []model.ResourceRef {
	resources := make([]model.ResourceRef, 0, len(in))
	for _, r := range in {
		if r.URI == "" && r.Name == "" {
			continue
		}
		resources = append(resources, model.ResourceRef{URI: r.URI, Name: r.Name, Description: r.Description})
	}
	return resources
}

func convertTransports(in []manifestTransport) []model.TransportRef {
	transports := make([]model.TransportRef, 0, len(in))
	for _, t := range in {
		if t.Type == "" {
			continue
		}
		transports = append(transports, model.TransportRef{Type: t.Type, Endpoint: t.Endpoint, Auth: t.Auth})
	}
	return transports
}

func normalizeProtocolType(raw string) model.ProtocolType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "rest", "http", "openapi":
		return model.ProtocolREST
	case "mcp":
		return model.ProtocolMCP
	default:
		return model.ProtocolOther
	}
}

func defaultString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// MergeProtocols combines protocol descriptors discovered from two
// sources. Records sharing a protocol type are merged: list-valued
// fields are concatenated, scalar fields keep the first non-empty value
// (the primary source is ingested first and wins conflicts). Types only
// present in the secondary source are appended as-is.
func MergeProtocols(primary, secondary []model.ProtocolDescriptor) []model.ProtocolDescriptor {
	merged := make([]model.ProtocolDescriptor, len(primary))
	copy(merged, primary)

	byType := make(map[model.ProtocolType]int, len(merged))
	for i, p := range merged {
		if _, seen := byType[p.Type]; !seen {
			byType[p.Type] = i
		}
	}

	for _, s := range secondary {
		i, seen := byType[s.Type]
		if !seen {
			merged = append(merged, s)
			byType[s.Type] = len(merged) - 1
			continue
		}

		dst := &merged[i]
		dst.Tools = append(dst.Tools, s.Tools...)
		dst.Resources = append(dst.Resources, s.Resources...)
		dst.Transports = append(dst.Transports, s.Transports...)
		if dst.Name == "" {
			dst.Name = s.Name
		}
		if dst.Endpoint == "" {
			dst.Endpoint = s.Endpoint
		}
		if dst.Version == "" {
			dst.Version = s.Version
		}
		if dst.Description == "" {
			dst.Description = s.Description
		}
	}
	return merged
}

// ParsePolicies flattens an arw-policies.json document into resolved
// permissions, keyed by policy name (nested maps use dotted keys, one
// level deep). Duck-typed values are resolved once here so downstream
// code never branches on raw booleans and strings.
func ParsePolicies(raw []byte) map[string]model.Permission {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil
	}

	policies := make(map[string]model.Permission)
	for key, value := range doc {
		if nested, ok := value.(map[string]any); ok {
			for sub, subValue := range nested {
				policies[key+"."+sub] = model.ResolvePermission(subValue)
			}
			continue
		}
		policies[key] = model.ResolvePermission(value)
	}
	if len(policies) == 0 {
		return nil
	}
	return policies
}
