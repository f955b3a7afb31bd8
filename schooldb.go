// Package schooldb provides persistence for the school activities
// registration system: activities with schedules and participant rosters, and
// teacher accounts.
//
// A [Store] fronts two collections that satisfy [Collection] identically
// whether they are backed by MongoDB or by the in-memory emulation engine.
// The backend is chosen once, inside [Store.Open]: a short bounded connection
// attempt followed by a ping, with a silent-but-logged fallback to memory
// when the database is unreachable. The choice is irreversible for the
// process lifetime.
package schooldb

import (
	"context"
	"path/filepath"
	"sync"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/mergington/schooldb/domain"
	"github.com/mergington/schooldb/internal/adapter/decoder"
	"github.com/mergington/schooldb/internal/adapter/memcollection"
	"github.com/mergington/schooldb/internal/adapter/mongocollection"
	"github.com/mergington/schooldb/internal/adapter/passhash"
	"github.com/mergington/schooldb/internal/adapter/snapshot"
)

// Collection is the document store contract both backends satisfy.
type Collection = domain.Collection

// Document represents a stored keyed record.
type Document = domain.Document

// Filter selects documents; see the condition variants below.
type Filter = domain.Filter

// Filter condition variants.
type (
	// Eq matches a field by exact equality.
	Eq = domain.Eq
	// In matches an array-valued field by overlap with a candidate set.
	In = domain.In
	// Gte matches a string field at or after a lexicographic bound.
	Gte = domain.Gte
	// Lte matches a string field at or before a lexicographic bound.
	Lte = domain.Lte
)

// Update operation variants.
type (
	// Push appends a value to an array field.
	Push = domain.Push
	// Pull removes all occurrences of a value from an array field.
	Pull = domain.Pull
)

// Aggregation pipeline types.
type (
	// Pipeline is an ordered list of aggregation stages.
	Pipeline = domain.Pipeline
	// Unwind fans documents out over an array field.
	Unwind = domain.Unwind
	// GroupDistinct groups unwound values into {_id: value} documents.
	GroupDistinct = domain.GroupDistinct
	// SortAsc orders results ascending by identifier.
	SortAsc = domain.SortAsc
)

// Entity types stored by this module.
type (
	// Activity is a school activity document.
	Activity = domain.Activity
	// ScheduleDetails is an activity's structured schedule.
	ScheduleDetails = domain.ScheduleDetails
	// Teacher is a staff account document.
	Teacher = domain.Teacher
	// Role enumerates account roles.
	Role = domain.Role
)

// Account roles.
const (
	RoleTeacher = domain.RoleTeacher
	RoleAdmin   = domain.RoleAdmin
)

// ByID builds a filter resolved as a direct identifier lookup.
func ByID(id string) Filter { return domain.ByID(id) }

// ErrNotOpened is returned when collections are used before Open completed.
var ErrNotOpened = domain.ErrNotOpened

// ErrMissingID is returned when a document without an identifier is inserted.
var ErrMissingID = domain.ErrMissingID

// Decode converts a result document into a tagged struct such as [Activity]
// or [Teacher].
func Decode(doc Document, target any) error {
	return decoder.NewDecoder().Decode(map[string]any(doc), target)
}

// Store owns the two collection handles and the backend decision. Construct
// it with [New], then call [Store.Open] once at startup; Open is guarded so
// concurrent first callers observe either the pre- or post-open state, never
// a half-initialized handle.
type Store struct {
	opts storeOptions

	openOnce sync.Once
	openErr  error

	client     *mongo.Client
	activities domain.Collection
	teachers   domain.Collection
	inMemory   bool
	hasher     domain.PasswordHasher
}

// New creates an unopened store with the given options.
func New(options ...Option) *Store {
	return &Store{
		opts:   newStoreOptions(options...),
		hasher: passhash.NewHasher(),
	}
}

// Open creates a store and opens it in one call.
func Open(ctx context.Context, options ...Option) (*Store, error) {
	s := New(options...)
	if err := s.Open(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Open selects the backend and binds both collection handles. It is
// idempotent: every call after the first returns the first call's result.
//
// A connectivity failure is recovered locally — logged as a warning and
// answered with the emulation backend — and never surfaced as an error.
func (s *Store) Open(ctx context.Context) error {
	s.openOnce.Do(func() { s.openErr = s.open(ctx) })
	return s.openErr
}

func (s *Store) open(ctx context.Context) error {
	client, err := s.connect(ctx)
	if err != nil {
		s.opts.logger.Warn().Err(err).
			Str("uri", s.opts.uri).
			Msg("could not connect to MongoDB, using in-memory storage")
		return s.openMemory(ctx)
	}

	s.client = client
	db := client.Database(s.opts.database)
	s.activities = mongocollection.NewCollection(db.Collection(domain.ActivitiesCollection))
	s.teachers = mongocollection.NewCollection(db.Collection(domain.TeachersCollection))
	s.opts.logger.Debug().Str("database", s.opts.database).Msg("connected to MongoDB")
	return nil
}

func (s *Store) openMemory(ctx context.Context) error {
	s.inMemory = true
	for _, bind := range []struct {
		name   string
		target *domain.Collection
	}{
		{domain.ActivitiesCollection, &s.activities},
		{domain.TeachersCollection, &s.teachers},
	} {
		var options []memcollection.Option
		if s.opts.snapshotDir != "" {
			path := filepath.Join(s.opts.snapshotDir, bind.name+".jsonl")
			options = append(options, memcollection.WithSnapshotter(snapshot.NewSnapshot(path)))
		}
		coll := memcollection.NewCollection(options...)
		if err := coll.Load(ctx); err != nil {
			return err
		}
		*bind.target = coll
	}
	return nil
}

// Activities returns the activities collection handle, or nil before Open.
func (s *Store) Activities() Collection { return s.activities }

// Teachers returns the teacher accounts collection handle, or nil before
// Open.
func (s *Store) Teachers() Collection { return s.teachers }

// InMemory reports whether the store fell back to the emulation backend.
func (s *Store) InMemory() bool { return s.inMemory }

// HashPassword prepares a plaintext credential for storage.
func (s *Store) HashPassword(plaintext string) (string, error) {
	return s.hasher.Hash(plaintext)
}

// VerifyPassword checks a plaintext against a stored hash.
func (s *Store) VerifyPassword(plaintext, encoded string) (bool, error) {
	return s.hasher.Verify(plaintext, encoded)
}

// Close releases the MongoDB client when the real backend is active. Closing
// an unopened or in-memory store is a no-op.
func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}
