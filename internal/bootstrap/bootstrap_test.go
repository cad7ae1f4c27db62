package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"business-assistant/internal/catalog"
	"business-assistant/internal/common/config"
	"business-assistant/internal/common/logger"
	"business-assistant/internal/intent"
	"business-assistant/internal/models"
	"business-assistant/internal/protocol"
)

func writeSnapshot(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	customers := `[
  {"id": "c1", "name": "Ada", "email": "ada@example.com", "createdAt": "2024-01-10T00:00:00Z"},
  {"id": "c2", "name": "Grace", "email": "grace@example.com", "createdAt": "2024-02-11T00:00:00Z"}
]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "customers.json"), []byte(customers), 0o600))
	return dir
}

func baseConfig(t *testing.T) *config.Config {
	return &config.Config{
		App:          config.AppConfig{Name: "business-assistant", Version: "test"},
		Primary:      config.PrimaryConfig{Driver: config.DriverNone},
		Snapshot:     config.SnapshotConfig{Dir: writeSnapshot(t)},
		Gateway:      config.GatewayConfig{Timeout: 1000, CacheTTL: 1000},
		Orchestrator: config.OrchestratorConfig{CallTimeout: 1000, OverviewThreshold: 2, MaxParallel: 2},
	}
}

func TestBuild_SnapshotOnly(t *testing.T) {
	s, err := Build(context.Background(), baseConfig(t), logger.NewTestLogger(t))
	require.NoError(t, err)
	defer s.Close()

	assert.Empty(t, s.Checks)

	answer, err := protocol.NewClient(s.Dispatcher).CallTool(context.Background(), catalog.ToolQueryCustomers, nil)
	require.NoError(t, err)
	assert.Equal(t, models.SourceSecondary, answer.Source)
	require.NotNil(t, answer.Total)
	assert.Equal(t, 2, *answer.Total)
}

func TestBuild_AssistantAnswersFromSnapshot(t *testing.T) {
	s, err := Build(context.Background(), baseConfig(t), logger.NewTestLogger(t))
	require.NoError(t, err)
	defer s.Close()

	answer, err := s.Assistant.Answer(context.Background(), "show me my customers")
	require.NoError(t, err)
	assert.Equal(t, intent.CustomerManagement, answer.Intent)
	require.NotNil(t, answer.Data.Customers)
	assert.True(t, answer.Data.Customers.IsDegraded())
}

func TestBuild_CacheRegistersRedisCheck(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := baseConfig(t)
	cfg.Gateway.CacheEnabled = true
	cfg.Database.Redis.Address = mr.Addr()

	s, err := Build(context.Background(), cfg, logger.NewTestLogger(t))
	require.NoError(t, err)
	defer s.Close()

	require.Contains(t, s.Checks, "redis")
	assert.NoError(t, s.Checks["redis"](context.Background()))
}

func TestBuild_UnreachablePostgresFallsBack(t *testing.T) {
	prev := ConnectAttempts
	ConnectAttempts = 1
	defer func() { ConnectAttempts = prev }()

	cfg := baseConfig(t)
	cfg.Primary.Driver = config.DriverPostgres
	cfg.Database.Postgres = config.PostgresConfig{
		Host: "127.0.0.1", Port: 1, Database: "business", User: "app", Password: "secret",
		SSLMode: "disable", MaxConnections: 1, MaxIdle: 1,
	}

	s, err := Build(context.Background(), cfg, logger.NewTestLogger(t))
	require.NoError(t, err)
	defer s.Close()

	require.Contains(t, s.Checks, "postgres")
	assert.Error(t, s.Checks["postgres"](context.Background()))

	answer, err := protocol.NewClient(s.Dispatcher).CallTool(context.Background(), catalog.ToolQueryCustomers, map[string]interface{}{"limit": 1})
	require.NoError(t, err)
	assert.Equal(t, models.SourceSecondary, answer.Source)
}

func TestBuild_MalformedSnapshotFails(t *testing.T) {
	cfg := baseConfig(t)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Snapshot.Dir, "sales.json"), []byte("{not json"), 0o600))

	_, err := Build(context.Background(), cfg, logger.NewTestLogger(t))
	require.Error(t, err)
}

func TestClassifier(t *testing.T) {
	t.Run("built-in rules", func(t *testing.T) {
		c, err := Classifier(config.IntentConfig{})
		require.NoError(t, err)
		assert.Equal(t, intent.SalesAnalysis, c.Classify("how are sales doing"))
	})

	t.Run("rules file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rules.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
rules:
  - intent: inventory-management
    locale: en
    keywords: [warehouse]
`), 0o600))

		c, err := Classifier(config.IntentConfig{RulesFile: path})
		require.NoError(t, err)
		assert.Equal(t, intent.InventoryManagement, c.Classify("Warehouse levels?"))
		assert.Equal(t, intent.GeneralQuery, c.Classify("how are sales doing"))
	})

	t.Run("missing rules file", func(t *testing.T) {
		_, err := Classifier(config.IntentConfig{RulesFile: "/nonexistent/rules.yaml"})
		assert.Error(t, err)
	})
}
