// Package openapi renders an OpenAPI 3 document from a list of endpoints.
// Component schemas are reflected from the Go request and response types.
package openapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"

	"github.com/amphitheatre-app/playbooks/internal/api"
	"github.com/amphitheatre-app/playbooks/internal/constants"
)

// Version is the OpenAPI version of generated documents.
const Version = "3.0.3"

// Param describes a query parameter of an endpoint.
type Param struct {
	Name        string
	Description string
	// Type is a JSON schema type, "string" when empty.
	Type string
}

// Endpoint describes one route for documentation purposes.
type Endpoint struct {
	Method      string
	Path        string
	OperationID string
	Summary     string
	Tag         string
	Query       []Param
	// Request is a value of the JSON body type, nil when there is none.
	Request any
	// Response is a value of the JSON response type, nil for empty bodies.
	Response any
	// Status is the success status code.
	Status int
	// ContentType overrides the success content type.
	ContentType string
	// Errors lists the documented failure status codes.
	Errors []int
}

// Info is the document info block.
type Info struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Version     string `json:"version" yaml:"version"`
}

// Document is an OpenAPI 3 document.
type Document struct {
	OpenAPI    string              `json:"openapi"`
	Info       Info                `json:"info"`
	Paths      map[string]PathItem `json:"paths"`
	Components Components          `json:"components"`
}

// PathItem maps lower-case HTTP methods to operations.
type PathItem map[string]*Operation

// Operation is a single API operation.
type Operation struct {
	OperationID string              `json:"operationId"`
	Summary     string              `json:"summary,omitempty"`
	Tags        []string            `json:"tags,omitempty"`
	Parameters  []Parameter         `json:"parameters,omitempty"`
	RequestBody *RequestBody        `json:"requestBody,omitempty"`
	Responses   map[string]Response `json:"responses"`
}

// Parameter is a path or query parameter.
type Parameter struct {
	Name        string             `json:"name"`
	In          string             `json:"in"`
	Description string             `json:"description,omitempty"`
	Required    bool               `json:"required"`
	Schema      *jsonschema.Schema `json:"schema"`
}

// RequestBody is an operation request body.
type RequestBody struct {
	Required bool                 `json:"required"`
	Content  map[string]MediaType `json:"content"`
}

// Response is an operation response.
type Response struct {
	Description string               `json:"description"`
	Content     map[string]MediaType `json:"content,omitempty"`
}

// MediaType binds a schema to a content type.
type MediaType struct {
	Schema *jsonschema.Schema `json:"schema"`
}

// Components holds reusable schemas.
type Components struct {
	Schemas map[string]*jsonschema.Schema `json:"schemas"`
}

var pathParam = regexp.MustCompile(`\{([^}]+)\}`)

// Build renders the document of endpoints.
func Build(info Info, endpoints []Endpoint) *Document {
	b := &builder{
		reflector: &jsonschema.Reflector{DoNotReference: true, AllowAdditionalProperties: true},
		schemas:   make(map[string]*jsonschema.Schema),
	}

	doc := &Document{
		OpenAPI: Version,
		Info:    info,
		Paths:   make(map[string]PathItem),
	}

	for _, e := range endpoints {
		item, ok := doc.Paths[e.Path]
		if !ok {
			item = PathItem{}
			doc.Paths[e.Path] = item
		}
		item[strings.ToLower(e.Method)] = b.operation(e)
	}

	doc.Components.Schemas = b.schemas
	return doc
}

type builder struct {
	reflector *jsonschema.Reflector
	schemas   map[string]*jsonschema.Schema
}

func (b *builder) operation(e Endpoint) *Operation {
	op := &Operation{
		OperationID: e.OperationID,
		Summary:     e.Summary,
		Responses:   make(map[string]Response),
	}
	if e.Tag != "" {
		op.Tags = []string{e.Tag}
	}

	for _, m := range pathParam.FindAllStringSubmatch(e.Path, -1) {
		op.Parameters = append(op.Parameters, Parameter{
			Name:     m[1],
			In:       "path",
			Required: true,
			Schema:   &jsonschema.Schema{Type: "string"},
		})
	}
	for _, q := range e.Query {
		typ := q.Type
		if typ == "" {
			typ = "string"
		}
		op.Parameters = append(op.Parameters, Parameter{
			Name:        q.Name,
			In:          "query",
			Description: q.Description,
			Schema:      &jsonschema.Schema{Type: typ},
		})
	}

	if e.Request != nil {
		op.RequestBody = &RequestBody{
			Required: true,
			Content:  map[string]MediaType{constants.ContentTypeJSON: {Schema: b.ref(e.Request)}},
		}
	}

	status := e.Status
	if status == 0 {
		status = http.StatusOK
	}
	success := Response{Description: http.StatusText(status)}
	switch {
	case e.ContentType != "":
		success.Content = map[string]MediaType{e.ContentType: {Schema: &jsonschema.Schema{Type: "string"}}}
	case e.Response != nil:
		success.Content = map[string]MediaType{constants.ContentTypeJSON: {Schema: b.ref(e.Response)}}
	}
	op.Responses[fmt.Sprint(status)] = success

	for _, code := range e.Errors {
		op.Responses[fmt.Sprint(code)] = Response{
			Description: http.StatusText(code),
			Content: map[string]MediaType{
				constants.ContentTypeJSON: {Schema: b.ref(api.ErrorResponse{})},
			},
		}
	}

	return op
}

// ref registers the schema of v and returns a reference to it.
func (b *builder) ref(v any) *jsonschema.Schema {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	name := t.Name()

	if _, ok := b.schemas[name]; !ok {
		s := b.reflector.ReflectFromType(t)
		s.Version = ""
		s.ID = ""
		b.schemas[name] = s
	}
	return &jsonschema.Schema{Ref: "#/components/schemas/" + name}
}

// JSON renders the document as indented JSON.
func (d *Document) JSON() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// YAML renders the document as YAML. The JSON rendering is re-encoded so
// that key order and schema tags are preserved.
func (d *Document) YAML() ([]byte, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	blockStyle(&node)

	out, err := yaml.Marshal(&node)
	if err != nil {
		return nil, fmt.Errorf("failed to encode yaml: %w", err)
	}
	return out, nil
}

// blockStyle drops the flow and quoting styles inherited from JSON.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

// SortedPaths returns the document paths in lexical order.
func (d *Document) SortedPaths() []string {
	paths := make([]string, 0, len(d.Paths))
	for p := range d.Paths {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
