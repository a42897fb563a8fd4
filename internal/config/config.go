// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Loading layers defaults, an optional YAML file and environment variables.
// - External errors are wrapped with this package's sentinel errors.
package config

import "time"

// Store backends understood by the repository factory.
const (
	BackendDynamoDB = "dynamodb"
	BackendBadger   = "badger"
	BackendSQLite   = "sqlite"
)

// Lambda handler names. An empty name routes by method and resource.
const (
	HandlerLogEvent        = "log_event"
	HandlerGetEvent        = "get_event"
	HandlerListEvents      = "list_events"
	HandlerListMatchEvents = "list_match_events"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`
	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StoreBackend selects the event store: dynamodb, badger or sqlite.
	StoreBackend string `koanf:"store_backend"`
	// TableName is the DynamoDB table holding one item per event.
	TableName string `koanf:"table_name"`
	// MatchIndexName is the secondary index on match_id + timestamp.
	MatchIndexName string `koanf:"match_index_name"`
	// AWSRegion overrides the region from the default AWS config chain.
	AWSRegion string `koanf:"aws_region"`
	// DynamoDBEndpoint points the client at a local DynamoDB.
	DynamoDBEndpoint string `koanf:"dynamodb_endpoint"`
	// BadgerPath is the badger data directory. Empty means in-memory.
	BadgerPath string `koanf:"badger_path"`
	// SQLitePath is the sqlite database file.
	SQLitePath string `koanf:"sqlite_path"`

	// EventIDPrefix is prepended to generated event ids.
	EventIDPrefix string `koanf:"event_id_prefix"`
	// LambdaHandler pins the Lambda entrypoint to one operation.
	LambdaHandler string `koanf:"lambda_handler"`

	// MetricsNamespace prefixes every exported metric name.
	MetricsNamespace string `koanf:"metrics_namespace"`
	// MetricsRefreshInterval is how often runtime gauges are refreshed.
	MetricsRefreshInterval time.Duration `koanf:"metrics_refresh_interval"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      "text",
		Addr:           ":9080",
		StoreBackend:   BackendDynamoDB,
		TableName:      "TEST-SportsEvents",
		MatchIndexName: "match_idGSI",
		SQLitePath:     "events.db",
		EventIDPrefix:  "EVT-",

		MetricsNamespace:       "sports",
		MetricsRefreshInterval: 10 * time.Second,
	}
}
