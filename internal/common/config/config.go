package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Server        ServerConfig            `mapstructure:"server"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Primary       PrimaryConfig           `mapstructure:"primary"`
	Snapshot      SnapshotConfig          `mapstructure:"snapshot"`
	Gateway       GatewayConfig           `mapstructure:"gateway"`
	Orchestrator  OrchestratorConfig      `mapstructure:"orchestrator"`
	Intent        IntentConfig            `mapstructure:"intent"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Logging       LoggingConfig           `mapstructure:"logging"`
	Observability ObservabilityConfig     `mapstructure:"observability"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig controls the HTTP transport of the dispatcher.
type ServerConfig struct {
	HTTPAddress string `mapstructure:"http_address"`
	ReadTimeout int    `mapstructure:"read_timeout"` // milliseconds
	RPCTimeout  int    `mapstructure:"rpc_timeout"`  // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses   []string `mapstructure:"addresses"`
	Username    string   `mapstructure:"username"`
	Password    string   `mapstructure:"password"`
	IndexPrefix string   `mapstructure:"index_prefix"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// PrimaryConfig selects the live store: "postgres" or "elasticsearch".
type PrimaryConfig struct {
	Driver string `mapstructure:"driver"`
}

// SnapshotConfig points at the directory holding one JSON blob per entity.
type SnapshotConfig struct {
	Dir string `mapstructure:"dir"`
}

type GatewayConfig struct {
	Timeout      int  `mapstructure:"timeout_ms"`
	CacheEnabled bool `mapstructure:"cache_enabled"`
	CacheTTL     int  `mapstructure:"cache_ttl_ms"`
}

type OrchestratorConfig struct {
	CallTimeout       int `mapstructure:"call_timeout_ms"`
	OverviewThreshold int `mapstructure:"overview_threshold"`
	MaxParallel       int `mapstructure:"max_parallel"`
}

// IntentConfig optionally replaces the built-in keyword rules with a YAML file.
type IntentConfig struct {
	RulesFile string   `mapstructure:"rules_file"`
	Locales   []string `mapstructure:"locales"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ObservabilityConfig struct {
	ServiceName    string `mapstructure:"service_name"`
	MetricsEnabled bool   `mapstructure:"metrics_enabled"`
}
