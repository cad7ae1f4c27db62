// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"business-assistant/internal/catalog"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}

// SaveRegistry writes reg as indented JSON.
func SaveRegistry(path string, reg *ActivityRegistry) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// Build assembles a registry from the catalog and the worker activities.
// Activities are ordered by ID; tools and resources keep catalog order.
func Build(version string, now time.Time, cat *catalog.Catalog, activities ...Activity) (*ActivityRegistry, error) {
	reg := &ActivityRegistry{
		Version:     version,
		LastUpdated: now.UTC().Format(time.RFC3339),
		Activities:  append([]Activity(nil), activities...),
	}
	sort.Slice(reg.Activities, func(i, j int) bool { return reg.Activities[i].ID < reg.Activities[j].ID })

	for _, t := range cat.Tools() {
		schema, err := SchemaMap(t.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("tool %s: %w", t.Name, err)
		}
		reg.Tools = append(reg.Tools, Tool{Name: t.Name, Description: t.Description, InputSchema: schema})
	}
	for _, r := range cat.Resources() {
		reg.Resources = append(reg.Resources, Resource{URI: r.URI, Name: r.Name, MimeType: r.MimeType, Tool: r.Tool})
	}

	return reg, Validate(reg)
}

// SchemaMap renders any JSON-serialisable schema as a generic map.
func SchemaMap(schema interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Validate checks that IDs and task types are present and unique, and that
// every resource points at a listed tool.
func Validate(reg *ActivityRegistry) error {
	ids := make(map[string]bool)
	taskTypes := make(map[string]bool)
	for _, a := range reg.Activities {
		if a.ID == "" || a.TaskType == "" {
			return fmt.Errorf("activity %q: id and taskType are required", a.ID)
		}
		if ids[a.ID] {
			return fmt.Errorf("duplicate activity id %q", a.ID)
		}
		if taskTypes[a.TaskType] {
			return fmt.Errorf("duplicate task type %q", a.TaskType)
		}
		ids[a.ID] = true
		taskTypes[a.TaskType] = true
	}

	tools := make(map[string]bool)
	for _, t := range reg.Tools {
		if tools[t.Name] {
			return fmt.Errorf("duplicate tool %q", t.Name)
		}
		tools[t.Name] = true
	}
	for _, r := range reg.Resources {
		if !tools[r.Tool] {
			return fmt.Errorf("resource %s refers to unknown tool %q", r.URI, r.Tool)
		}
	}
	return nil
}
