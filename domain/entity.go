package domain

// IDField is the identifier field present on every stored document.
const IDField = "_id"

// Collection names exposed to the application layer.
const (
	ActivitiesCollection = "activities"
	TeachersCollection   = "teachers"
)

// Document is a keyed field/value record, the storage unit for both
// activities and accounts. Nested objects are Documents and arrays are []any
// so both backends share one in-memory shape.
type Document map[string]any

// ID returns the document identifier, or an empty string if unset or not a
// string.
func (d Document) ID() string {
	id, _ := d[IDField].(string)
	return id
}

// Clone returns a deep copy of the document. Nested Documents and []any
// values are copied recursively; everything else is copied by value.
func (d Document) Clone() Document {
	res := make(Document, len(d))
	for k, v := range d {
		res[k] = cloneValue(v)
	}
	return res
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Document:
		return t.Clone()
	case map[string]any:
		return Document(t).Clone()
	case []any:
		res := make([]any, len(t))
		for n, item := range t {
			res[n] = cloneValue(item)
		}
		return res
	default:
		return t
	}
}

// Role enumerates teacher account roles.
type Role string

// Valid roles.
const (
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// ScheduleDetails is the structured schedule of an activity. Times are
// zero-padded 24h "HH:MM" strings, which order correctly under plain string
// comparison.
type ScheduleDetails struct {
	Days      []string `bson:"days"`
	StartTime string   `bson:"start_time"`
	EndTime   string   `bson:"end_time"`
}

// Activity is a school activity with its schedule and participant roster.
// The name doubles as the document identifier. The store does not enforce
// the participant limit; that invariant belongs to the caller.
type Activity struct {
	Name            string          `bson:"_id"`
	Description     string          `bson:"description"`
	Schedule        string          `bson:"schedule"`
	ScheduleDetails ScheduleDetails `bson:"schedule_details"`
	MaxParticipants int             `bson:"max_participants"`
	Participants    []string        `bson:"participants"`
}

// Teacher is a staff account. The password field holds an opaque Argon2 hash,
// never plaintext.
type Teacher struct {
	Username    string `bson:"username"`
	DisplayName string `bson:"display_name"`
	Password    string `bson:"password"`
	Role        Role   `bson:"role"`
}
