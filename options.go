package schooldb

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Connection defaults, matching the deployment this module serves.
const (
	DefaultURI            = "mongodb://localhost:27017/"
	DefaultDatabase       = "mergington_high"
	DefaultConnectTimeout = 2 * time.Second
)

type storeOptions struct {
	uri            string
	database       string
	connectTimeout time.Duration
	snapshotDir    string
	logger         zerolog.Logger
}

// Option configures store behavior through the functional options pattern.
type Option func(*storeOptions)

// WithURI sets the MongoDB connection URI.
func WithURI(uri string) Option {
	return func(o *storeOptions) { o.uri = uri }
}

// WithDatabase sets the database name holding both collections.
func WithDatabase(name string) Option {
	return func(o *storeOptions) { o.database = name }
}

// WithConnectTimeout bounds the connection attempt and liveness check so
// startup latency stays bounded when the database is absent.
func WithConnectTimeout(d time.Duration) Option {
	return func(o *storeOptions) { o.connectTimeout = d }
}

// WithSnapshotDir enables snapshot persistence for the in-memory fallback:
// each collection keeps a JSON-lines file under dir. Has no effect when the
// real backend is reachable.
func WithSnapshotDir(dir string) Option {
	return func(o *storeOptions) { o.snapshotDir = dir }
}

// WithLogger sets the logger used for connection and seeding events.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *storeOptions) { o.logger = logger }
}

func newStoreOptions(options ...Option) storeOptions {
	opts := storeOptions{
		uri:            DefaultURI,
		database:       DefaultDatabase,
		connectTimeout: DefaultConnectTimeout,
		logger:         zerolog.New(os.Stderr).With().Timestamp().Logger(),
	}
	for _, option := range options {
		option(&opts)
	}
	return opts
}
