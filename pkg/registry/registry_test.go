package registry

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"business-assistant/internal/catalog"
)

var built = time.Date(2024, time.May, 15, 12, 0, 0, 0, time.UTC)

func activity(id string) Activity {
	return Activity{
		ID:          id,
		DisplayName: id,
		Category:    "assistant",
		Version:     "1.0.0",
		TaskType:    id,
		InputSchema: map[string]interface{}{"type": "object"},
		Timeout:     "30s",
	}
}

func TestBuild(t *testing.T) {
	reg, err := Build("1.2.0", built, catalog.New(), activity("parse-business-query"), activity("collect-business-data"))
	require.NoError(t, err)

	assert.Equal(t, "2024-05-15T12:00:00Z", reg.LastUpdated)
	require.Len(t, reg.Activities, 2)
	assert.Equal(t, "collect-business-data", reg.Activities[0].ID)
	require.Len(t, reg.Tools, 5)
	assert.Equal(t, catalog.ToolQueryCustomers, reg.Tools[0].Name)
	assert.Equal(t, "object", reg.Tools[0].InputSchema["type"])
	require.Len(t, reg.Resources, 4)
	assert.Equal(t, catalog.ResourceCustomers, reg.Resources[0].URI)
	assert.Equal(t, catalog.ToolQueryCustomers, reg.Resources[0].Tool)
}

func TestBuild_RejectsDuplicateActivity(t *testing.T) {
	_, err := Build("1.0.0", built, catalog.New(), activity("a"), activity("a"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate activity id")
}

func TestValidate_ResourceNeedsTool(t *testing.T) {
	err := Validate(&ActivityRegistry{Resources: []Resource{{URI: "business://x", Tool: "missing"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown tool")
}

func TestSaveAndLoadRegistry(t *testing.T) {
	reg, err := Build("1.0.0", built, catalog.New(), activity("parse-business-query"))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "activity-registry.json")

	require.NoError(t, SaveRegistry(path, reg))
	loaded, err := LoadRegistry(path)

	require.NoError(t, err)
	assert.Equal(t, reg.Version, loaded.Version)
	assert.Equal(t, reg.Activities[0].TaskType, loaded.Activities[0].TaskType)
	assert.Len(t, loaded.Tools, len(reg.Tools))
}
