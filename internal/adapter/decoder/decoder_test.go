package decoder

import (
	"testing"

	"github.com/mergington/schooldb/domain"
	"github.com/stretchr/testify/suite"
)

type M = domain.Document

type A = []any

type DecoderTestSuite struct {
	suite.Suite
	dcdr *Decoder
}

func (s *DecoderTestSuite) SetupTest() {
	s.dcdr = NewDecoder()
}

// Documents decode into typed models through their bson tags.
func (s *DecoderTestSuite) TestDecodeActivity() {
	doc := M{
		"_id":         "Chess Club",
		"description": "Learn strategies and compete in chess tournaments",
		"schedule_details": M{
			"days":       A{"Monday", "Friday"},
			"start_time": "15:15",
			"end_time":   "16:45",
		},
		"max_participants": 12,
		"participants":     A{"michael@mergington.edu"},
	}

	var activity domain.Activity
	s.Require().NoError(s.dcdr.Decode(doc, &activity))

	s.Equal("Chess Club", activity.Name)
	s.Equal([]string{"Monday", "Friday"}, activity.ScheduleDetails.Days)
	s.Equal("15:15", activity.ScheduleDetails.StartTime)
	s.Equal(12, activity.MaxParticipants)
	s.Equal([]string{"michael@mergington.edu"}, activity.Participants)
}

// Numeric widths from other backends decode into plain ints.
func (s *DecoderTestSuite) TestDecodeWeakTypes() {
	var activity domain.Activity
	s.Require().NoError(s.dcdr.Decode(M{"_id": "a", "max_participants": float64(20)}, &activity))
	s.Equal(20, activity.MaxParticipants)

	s.Require().NoError(s.dcdr.Decode(M{"_id": "a", "max_participants": int32(15)}, &activity))
	s.Equal(15, activity.MaxParticipants)
}

// Fields absent from the document keep their zero value.
func (s *DecoderTestSuite) TestDecodePartial() {
	var teacher domain.Teacher
	s.Require().NoError(s.dcdr.Decode(M{"username": "mchen"}, &teacher))
	s.Equal("mchen", teacher.Username)
	s.Empty(teacher.DisplayName)
	s.Empty(teacher.Role)
}

// Type conflicts surface as decode errors.
func (s *DecoderTestSuite) TestDecodeError() {
	var activity domain.Activity
	err := s.dcdr.Decode(M{"description": M{"not": "a string"}}, &activity)
	s.ErrorAs(err, &domain.ErrDecode{})
}

func TestDecoderTestSuite(t *testing.T) {
	suite.Run(t, new(DecoderTestSuite))
}
