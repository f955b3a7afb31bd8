package schooldb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// connect attempts to reach the external database and returns a live client
// or the reason it could not. The caller makes the fallback decision on the
// result; no errors escape past it.
func (s *Store) connect(ctx context.Context) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(s.opts.uri).
		SetConnectTimeout(s.opts.connectTimeout).
		SetServerSelectionTimeout(s.opts.connectTimeout)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", s.opts.uri, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, s.opts.connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("pinging %s: %w", s.opts.uri, err)
	}
	return client, nil
}
