package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/MosYCo/test-data-generate/database"
	"github.com/MosYCo/test-data-generate/internal/clierr"
	"github.com/MosYCo/test-data-generate/internal/driver"
)

// Connection test tuning
const (
	pingTimeout     = 5 * time.Second
	maxPingAttempts = 3
)

// newBackOff is swapped in tests to avoid real sleeps.
var newBackOff = func() backoff.BackOff {
	return backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(250*time.Millisecond),
		backoff.WithMaxInterval(2*time.Second),
	)
}

// Open connects to the data source, retrying transient failures.
// The caller owns the returned handle.
func Open(ctx context.Context, ds DataSource) (*sql.DB, error) {
	if err := ds.Validate(); err != nil {
		return nil, err
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(newBackOff(), maxPingAttempts-1), ctx)

	return backoff.RetryWithData(func() (*sql.DB, error) {
		attemptCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()

		db, err := driver.Open(attemptCtx, ds.Type, ds.ConnectionString())
		if err != nil {
			if clierr.IsPermanent(err) {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		return db, nil
	}, bo)
}

// TestConnection verifies the data source is reachable.
func TestConnection(ctx context.Context, ds DataSource) error {
	db, err := Open(ctx, ds)
	if err != nil {
		return err
	}
	return db.Close()
}

// Introspect connects to the data source and reads its schema.
func Introspect(ctx context.Context, ds DataSource) (*database.Schema, error) {
	drv, err := driver.NewDriver(ds.Type)
	if err != nil {
		return nil, err
	}

	db, err := Open(ctx, ds)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	schema, err := drv.IntrospectSchema(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to introspect %s: %w", ds.Name, err)
	}
	return schema, nil
}
