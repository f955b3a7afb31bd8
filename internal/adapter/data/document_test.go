package data

import (
	"testing"

	"github.com/mergington/schooldb/domain"
	"github.com/stretchr/testify/suite"
)

type M = domain.Document

type A = []any

type DocumentTestSuite struct {
	suite.Suite
}

// Structs convert through their bson tags, with nested structs becoming
// nested documents and string slices becoming []any.
func (s *DocumentTestSuite) TestStructConversion() {
	doc, err := NewDocument(domain.Activity{
		Name:            "Chess Club",
		Description:     "Learn strategies and compete in chess tournaments",
		Schedule:        "Mondays and Fridays, 3:15 PM - 4:45 PM",
		ScheduleDetails: domain.ScheduleDetails{Days: []string{"Monday", "Friday"}, StartTime: "15:15", EndTime: "16:45"},
		MaxParticipants: 12,
		Participants:    []string{"michael@mergington.edu"},
	})
	s.Require().NoError(err)

	s.Equal("Chess Club", doc.ID())
	s.Equal(12, doc["max_participants"])
	s.Equal(A{"michael@mergington.edu"}, doc["participants"])

	nested, ok := doc["schedule_details"].(M)
	s.Require().True(ok)
	s.Equal(A{"Monday", "Friday"}, nested["days"])
	s.Equal("15:15", nested["start_time"])
}

// Maps normalize recursively so dot-path lookups always cross documents.
func (s *DocumentTestSuite) TestMapNormalization() {
	doc, err := NewDocument(map[string]any{
		"_id":              "a",
		"schedule_details": map[string]any{"days": []string{"Monday"}},
	})
	s.Require().NoError(err)

	nested, ok := doc["schedule_details"].(M)
	s.Require().True(ok)
	s.Equal(A{"Monday"}, nested["days"])
}

// Integer widths collapse to plain int.
func (s *DocumentTestSuite) TestIntNormalization() {
	type widths struct {
		A int32  `bson:"a"`
		B int64  `bson:"b"`
		C uint16 `bson:"c"`
	}
	doc, err := NewDocument(widths{A: 1, B: 2, C: 3})
	s.Require().NoError(err)
	s.Equal(1, doc["a"])
	s.Equal(2, doc["b"])
	s.Equal(3, doc["c"])
}

// A "-" tag and unexported fields are skipped; untagged fields keep their Go
// name.
func (s *DocumentTestSuite) TestFieldNames() {
	type tagged struct {
		Kept    string `bson:"kept"`
		Skipped string `bson:"-"`
		Plain   string
		hidden  string
	}
	doc, err := NewDocument(tagged{Kept: "a", Skipped: "b", Plain: "c", hidden: "d"})
	s.Require().NoError(err)

	s.Equal(M{"kept": "a", "Plain": "c"}, doc)
}

// Nil and nil pointers yield an empty document; scalars are rejected.
func (s *DocumentTestSuite) TestEdgeInputs() {
	doc, err := NewDocument(nil)
	s.NoError(err)
	s.Empty(doc)

	var activity *domain.Activity
	doc, err = NewDocument(activity)
	s.NoError(err)
	s.Empty(doc)

	_, err = NewDocument(42)
	s.Error(err)
}

// Nil slices come out as empty arrays so push can always append after a
// round-trip.
func (s *DocumentTestSuite) TestNilSlice() {
	doc, err := NewDocument(domain.Activity{Name: "a"})
	s.Require().NoError(err)
	s.Equal(A{}, doc["participants"])
}

func TestDocumentTestSuite(t *testing.T) {
	suite.Run(t, new(DocumentTestSuite))
}
