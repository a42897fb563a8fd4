package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix     = "SPORTS_"
	envConfigFile = "SPORTS_CONFIG"
)

// legacyTableEnv lists table-name variables set by older deployments, in
// priority order. They are consulted only when SPORTS_TABLE_NAME is unset.
var legacyTableEnv = []string{"DDB_TABLE_NAME", "DYNAMODB_TABLE_NAME"}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if SPORTS_CONFIG is set
//  3. legacy table env (DDB_TABLE_NAME, DYNAMODB_TABLE_NAME)
//  4. env (prefix SPORTS_)
func Load(_ context.Context) (*Config, error) {
	base := New()
	k := koanf.New(".")

	if path := os.Getenv(envConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	for _, name := range legacyTableEnv {
		if v := os.Getenv(name); v != "" {
			if err := k.Set("table_name", v); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
			}
			break
		}
	}

	// SPORTS_TABLE_NAME -> table_name. Underscores are kept so keys match
	// the flat koanf tags on the struct.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, strings.ToLower(envPrefix))
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch c.StoreBackend {
	case BackendDynamoDB:
		if strings.TrimSpace(c.TableName) == "" {
			return fmt.Errorf("%w: table_name must not be empty", ErrInvalidConfig)
		}
		if strings.TrimSpace(c.MatchIndexName) == "" {
			return fmt.Errorf("%w: match_index_name must not be empty", ErrInvalidConfig)
		}
	case BackendBadger:
	case BackendSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("%w: sqlite_path must not be empty", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store_backend %q", ErrInvalidConfig, c.StoreBackend)
	}
	if strings.TrimSpace(c.MetricsNamespace) == "" {
		return fmt.Errorf("%w: metrics_namespace must not be empty", ErrInvalidConfig)
	}
	if c.MetricsRefreshInterval <= 0 {
		return fmt.Errorf("%w: metrics_refresh_interval must be positive", ErrInvalidConfig)
	}
	switch c.LambdaHandler {
	case "", HandlerLogEvent, HandlerGetEvent, HandlerListEvents, HandlerListMatchEvents:
	default:
		return fmt.Errorf("%w: unknown lambda_handler %q", ErrInvalidConfig, c.LambdaHandler)
	}
	return nil
}
