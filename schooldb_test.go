package schooldb

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
)

type A = []any

// unreachableURI makes connect fail fast so every test runs on the emulation
// backend.
const unreachableURI = "mongodb://127.0.0.1:1/"

type StoreTestSuite struct {
	suite.Suite
	ctx   context.Context
	store *Store
}

func (s *StoreTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = s.openStore()
}

func (s *StoreTestSuite) openStore(options ...Option) *Store {
	options = append([]Option{
		WithURI(unreachableURI),
		WithConnectTimeout(100 * time.Millisecond),
		WithLogger(zerolog.Nop()),
	}, options...)

	store, err := Open(s.ctx, options...)
	s.Require().NoError(err)
	return store
}

func (s *StoreTestSuite) seed() {
	s.Require().NoError(s.store.InitDatabase(s.ctx))
}

// An unreachable database is not an error; the store falls back to the
// emulation backend and serves both collections.
func (s *StoreTestSuite) TestFallback() {
	s.True(s.store.InMemory())
	s.NotNil(s.store.Activities())
	s.NotNil(s.store.Teachers())
	s.NoError(s.store.Close(s.ctx))
}

// Open is idempotent; later calls return the first decision.
func (s *StoreTestSuite) TestOpenIdempotent() {
	s.NoError(s.store.Open(s.ctx))
	s.True(s.store.InMemory())
}

// Seeding an unopened store fails instead of panicking.
func (s *StoreTestSuite) TestSeedBeforeOpen() {
	s.ErrorIs(New().InitDatabase(s.ctx), ErrNotOpened)
}

// Seeding populates both collections and never duplicates on a second run.
func (s *StoreTestSuite) TestSeedIdempotent() {
	s.seed()

	activities, err := s.store.Activities().Count(s.ctx, nil)
	s.NoError(err)
	s.EqualValues(12, activities)

	teachers, err := s.store.Teachers().Count(s.ctx, nil)
	s.NoError(err)
	s.EqualValues(3, teachers)

	s.seed()

	activities, err = s.store.Activities().Count(s.ctx, nil)
	s.NoError(err)
	s.EqualValues(12, activities)

	teachers, err = s.store.Teachers().Count(s.ctx, nil)
	s.NoError(err)
	s.EqualValues(3, teachers)
}

// Seeded passwords are stored hashed and verify against the well-known
// plaintexts.
func (s *StoreTestSuite) TestSeededCredentials() {
	s.seed()

	doc, found, err := s.store.Teachers().FindOne(s.ctx, ByID("mrodriguez"))
	s.Require().NoError(err)
	s.Require().True(found)

	var teacher Teacher
	s.Require().NoError(Decode(doc, &teacher))
	s.Equal("Ms. Rodriguez", teacher.DisplayName)
	s.Equal(RoleTeacher, teacher.Role)
	s.NotEqual("art123", teacher.Password)

	ok, err := s.store.VerifyPassword("art123", teacher.Password)
	s.NoError(err)
	s.True(ok)

	ok, err = s.store.VerifyPassword("wrong", teacher.Password)
	s.NoError(err)
	s.False(ok)
}

// The principal account carries the admin role.
func (s *StoreTestSuite) TestAdminAccount() {
	s.seed()

	doc, found, err := s.store.Teachers().FindOne(s.ctx, ByID("principal"))
	s.Require().NoError(err)
	s.Require().True(found)

	var teacher Teacher
	s.Require().NoError(Decode(doc, &teacher))
	s.Equal(RoleAdmin, teacher.Role)
}

// Day membership returns exactly the activities meeting on any of the named
// days.
func (s *StoreTestSuite) TestDayMembershipQuery() {
	s.seed()

	docs, err := s.store.Activities().Find(s.ctx, Filter{
		In{Path: "schedule_details.days", Values: A{"Monday", "Friday"}},
	})
	s.NoError(err)
	s.ElementsMatch([]string{
		"Chess Club",
		"Morning Fitness",
		"Basketball Team",
		"Drama Club",
		"Debate Team",
	}, ids(docs))
}

// Time-range filters keep activities inside the window and drop early-morning
// ones.
func (s *StoreTestSuite) TestTimeRangeQuery() {
	s.seed()

	docs, err := s.store.Activities().Find(s.ctx, Filter{
		Gte{Path: "schedule_details.start_time", Bound: "09:00"},
		Lte{Path: "schedule_details.end_time", Bound: "18:00"},
	})
	s.NoError(err)

	names := ids(docs)
	s.Contains(names, "Chess Club")
	s.Contains(names, "Weekend Robotics Workshop")
	s.NotContains(names, "Programming Class")
	s.NotContains(names, "Morning Fitness")
	s.NotContains(names, "Math Club")
	s.Len(names, 9)
}

// Combined day and time conditions intersect.
func (s *StoreTestSuite) TestCombinedQuery() {
	s.seed()

	docs, err := s.store.Activities().Find(s.ctx, Filter{
		In{Path: "schedule_details.days", Values: A{"Saturday"}},
		Gte{Path: "schedule_details.start_time", Bound: "12:00"},
	})
	s.NoError(err)
	s.Equal([]string{"Science Olympiad"}, ids(docs))
}

// Signing a student up and removing them again restores the original roster.
func (s *StoreTestSuite) TestSignupRoundTrip() {
	s.seed()

	n, err := s.store.Activities().UpdateOne(s.ctx, ByID("Chess Club"),
		Push{Path: "participants", Value: "newstudent@mergington.edu"})
	s.NoError(err)
	s.EqualValues(1, n)

	doc, _, err := s.store.Activities().FindOne(s.ctx, ByID("Chess Club"))
	s.Require().NoError(err)
	s.Contains(doc["participants"], "newstudent@mergington.edu")

	n, err = s.store.Activities().UpdateOne(s.ctx, ByID("Chess Club"),
		Pull{Path: "participants", Value: "newstudent@mergington.edu"})
	s.NoError(err)
	s.EqualValues(1, n)

	doc, _, err = s.store.Activities().FindOne(s.ctx, ByID("Chess Club"))
	s.Require().NoError(err)
	s.Equal(A{"michael@mergington.edu", "daniel@mergington.edu"}, doc["participants"])
}

// Updating an activity that does not exist reports zero matches, not an
// error.
func (s *StoreTestSuite) TestUpdateMissingActivity() {
	s.seed()

	n, err := s.store.Activities().UpdateOne(s.ctx, ByID("No Such Club"),
		Push{Path: "participants", Value: "x@mergington.edu"})
	s.NoError(err)
	s.EqualValues(0, n)
}

// The distinct-days aggregation lists every scheduled day once, ascending.
func (s *StoreTestSuite) TestDistinctDays() {
	s.seed()

	docs, err := s.store.Activities().Aggregate(s.ctx, Pipeline{
		Unwind{Path: "schedule_details.days"},
		GroupDistinct{},
		SortAsc{},
	})
	s.NoError(err)
	s.Equal([]string{
		"Friday", "Monday", "Saturday", "Sunday",
		"Thursday", "Tuesday", "Wednesday",
	}, ids(docs))
}

// With a snapshot directory, in-memory state survives a store restart.
func (s *StoreTestSuite) TestSnapshotPersistence() {
	dir := s.T().TempDir()

	s.store = s.openStore(WithSnapshotDir(dir))
	s.seed()

	_, err := s.store.Activities().UpdateOne(s.ctx, ByID("Chess Club"),
		Push{Path: "participants", Value: "persisted@mergington.edu"})
	s.Require().NoError(err)

	restarted := s.openStore(WithSnapshotDir(dir))
	s.Require().NoError(restarted.InitDatabase(s.ctx))

	count, err := restarted.Activities().Count(s.ctx, nil)
	s.NoError(err)
	s.EqualValues(12, count)

	doc, found, err := restarted.Activities().FindOne(s.ctx, ByID("Chess Club"))
	s.Require().NoError(err)
	s.Require().True(found)
	s.Contains(doc["participants"], "persisted@mergington.edu")
}

// Documents decode into the typed models.
func (s *StoreTestSuite) TestDecodeActivity() {
	s.seed()

	doc, found, err := s.store.Activities().FindOne(s.ctx, ByID("Programming Class"))
	s.Require().NoError(err)
	s.Require().True(found)

	var activity Activity
	s.Require().NoError(Decode(doc, &activity))
	s.Equal("Programming Class", activity.Name)
	s.Equal([]string{"Tuesday", "Thursday"}, activity.ScheduleDetails.Days)
	s.Equal("07:00", activity.ScheduleDetails.StartTime)
	s.Equal(20, activity.MaxParticipants)
}

func ids(docs []Document) []string {
	res := make([]string, len(docs))
	for n, doc := range docs {
		res[n] = doc.ID()
	}
	return res
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}
