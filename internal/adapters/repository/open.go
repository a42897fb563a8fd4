package repository

import (
	"context"
	"fmt"

	"github.com/okian/sportsevents/internal/config"
)

// Open builds the store selected by cfg.StoreBackend and wraps it with
// metrics. Callers own the returned store and must Close it.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.StoreBackend {
	case config.BackendDynamoDB:
		client, cerr := NewDynamoClient(ctx, cfg.AWSRegion, cfg.DynamoDBEndpoint)
		if cerr != nil {
			return nil, cerr
		}
		s = NewDynamoStore(client, cfg.TableName, cfg.MatchIndexName)
	case config.BackendBadger:
		s, err = NewBadgerStore(cfg.BadgerPath)
	case config.BackendSQLite:
		s, err = NewSQLiteStore(ctx, cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.StoreBackend)
	}
	if err != nil {
		return nil, err
	}
	return NewInstrumented(cfg.StoreBackend, s), nil
}
