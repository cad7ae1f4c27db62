// Package catalog holds the fixed set of protocol tools and resources and
// validates tool arguments before any handler runs.
package catalog

import (
	"errors"
	"fmt"

	"business-assistant/internal/common/validation"
)

const (
	ToolQueryCustomers          = "query_customers"
	ToolAnalyzeSales            = "analyze_sales"
	ToolQueryProducts           = "query_products"
	ToolGenerateFinancialReport = "generate_financial_report"
	ToolGetBusinessOverview     = "get_business_overview"
)

const (
	ResourceCustomers = "business://database/customers"
	ResourceProducts  = "business://database/products"
	ResourceSales     = "business://database/sales"
	ResourceFinances  = "business://database/finances"
)

const MimeTypeJSON = "application/json"

var (
	ErrUnknownTool     = errors.New("UNKNOWN_TOOL")
	ErrUnknownResource = errors.New("UNKNOWN_RESOURCE")
)

type ToolDescriptor struct {
	Name        string                `json:"name"`
	Description string                `json:"description"`
	InputSchema validation.JSONSchema `json:"inputSchema"`
}

// ResourceDescriptor is a read-only view that resolves to a tool call with
// fixed arguments.
type ResourceDescriptor struct {
	URI         string                 `json:"uri"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	MimeType    string                 `json:"mimeType"`
	Tool        string                 `json:"-"`
	Arguments   map[string]interface{} `json:"-"`
}

type Catalog struct {
	tools      []ToolDescriptor
	resources  []ResourceDescriptor
	toolIndex  map[string]int
	uriIndex   map[string]int
	validators map[string]*validation.Validator
}

// New builds the catalog. It panics only if a built-in schema fails to
// compile, which is a programming error.
func New() *Catalog {
	c := &Catalog{
		tools:      defaultTools(),
		resources:  defaultResources(),
		toolIndex:  make(map[string]int),
		uriIndex:   make(map[string]int),
		validators: make(map[string]*validation.Validator),
	}
	for i, t := range c.tools {
		c.toolIndex[t.Name] = i
		c.validators[t.Name] = validation.MustCompile(t.InputSchema)
	}
	for i, r := range c.resources {
		c.uriIndex[r.URI] = i
	}
	return c
}

func (c *Catalog) Tools() []ToolDescriptor {
	out := make([]ToolDescriptor, len(c.tools))
	copy(out, c.tools)
	return out
}

func (c *Catalog) Resources() []ResourceDescriptor {
	out := make([]ResourceDescriptor, len(c.resources))
	for i, r := range c.resources {
		r.Arguments = copyArgs(r.Arguments)
		out[i] = r
	}
	return out
}

func (c *Catalog) Tool(name string) (ToolDescriptor, bool) {
	i, ok := c.toolIndex[name]
	if !ok {
		return ToolDescriptor{}, false
	}
	return c.tools[i], true
}

func (c *Catalog) Resource(uri string) (ResourceDescriptor, bool) {
	i, ok := c.uriIndex[uri]
	if !ok {
		return ResourceDescriptor{}, false
	}
	r := c.resources[i]
	r.Arguments = copyArgs(r.Arguments)
	return r, true
}

// Validate checks args against the tool schema. Schema violations come back
// as *validation.Error.
func (c *Catalog) Validate(name string, args map[string]interface{}) error {
	v, ok := c.validators[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return v.Validate(args)
}

// WithDefaults returns a copy of args with top-level schema defaults filled in.
func (c *Catalog) WithDefaults(name string, args map[string]interface{}) map[string]interface{} {
	out := copyArgs(args)
	if out == nil {
		out = map[string]interface{}{}
	}
	tool, ok := c.Tool(name)
	if !ok {
		return out
	}
	for key, prop := range tool.InputSchema.Properties {
		if _, set := out[key]; !set && prop.Default != nil {
			out[key] = prop.Default
		}
	}
	return out
}

// Accepts reports whether the tool schema declares the argument.
func (c *Catalog) Accepts(name, argument string) bool {
	tool, ok := c.Tool(name)
	if !ok {
		return false
	}
	_, ok = tool.InputSchema.Properties[argument]
	return ok
}

func copyArgs(args map[string]interface{}) map[string]interface{} {
	if args == nil {
		return nil
	}
	out := make(map[string]interface{}, len(args))
	for k, v := range args {
		out[k] = v
	}
	return out
}
