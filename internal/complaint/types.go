// Package complaint defines the complaint record and the rules a submission
// must satisfy before it is accepted.
package complaint

// Type is the enumerated complaint type.
type Type string

const (
	Commercial  Type = "Commercial"
	Operational Type = "Operational"
)

// Types lists the accepted values of Type, in the order they are reported.
var Types = []Type{Commercial, Operational}

// Field names as they appear on the wire and on disk.
const (
	FieldAccountNumber = "AccountNumber"
	FieldServiceNumber = "ServiceNumber"
	FieldPhone         = "Phone"
	FieldCategory      = "Category"
	FieldType          = "Type"
	FieldReference     = "Reference"
	FieldDescription   = "Description"
)

// RequiredFields is the declared order used when reporting missing fields.
var RequiredFields = []string{
	FieldAccountNumber,
	FieldPhone,
	FieldCategory,
	FieldType,
	FieldReference,
	FieldDescription,
}

// Record represents a single accepted complaint.
//
// Records are immutable once accepted: nothing in the service updates or
// deletes one. ServiceNumber keeps the raw submitted value and is nil when
// the field was absent.
type Record struct {
	AccountNumber string  `json:"AccountNumber"`
	ServiceNumber *string `json:"ServiceNumber,omitempty"`
	Phone         string  `json:"Phone"`
	Category      string  `json:"Category"`
	Type          Type    `json:"Type"`
	Reference     string  `json:"Reference"`
	Description   string  `json:"Description"`
}

// Collection is the ordered sequence of records, insertion order first.
type Collection []Record

// Last returns the most recently appended record, or nil for an empty collection.
func (c Collection) Last() *Record {
	if len(c) == 0 {
		return nil
	}
	last := c[len(c)-1]
	return &last
}
