package offline

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/nabha/core"
)

// EntryType tags the payload of a queued Entry.
type EntryType string

const (
	EntryProgress             EntryType = "progress"
	EntryAssignmentSubmission EntryType = "assignment_submission"
)

var (
	ErrUnknownEntryType = errors.New("unknown sync entry type")
	// ErrInvalidRecord means a write breaks the rules the remote API enforces and was not stored.
	ErrInvalidRecord = errors.New("invalid record")
)

// Payload is a write waiting for remote delivery.
// It is implemented only by ProgressRecord and Submission.
type Payload interface {
	EntryType() EntryType
	isPayload()
}

// ProgressRecord is a student's progress on one content item.
type ProgressRecord struct {
	ID                 string     `json:"id"`
	StudentID          string     `json:"student_id" validate:"required"`
	ContentItemID      string     `json:"content_item_id" validate:"required"`
	ProgressPercentage int        `json:"progress_percentage" validate:"min=0,max=100"`
	Score              *int       `json:"score,omitempty" validate:"omitempty,min=0,max=100"`
	TimeSpent          int        `json:"time_spent" validate:"min=0"` // minutes
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	LastAccessedAt     time.Time  `json:"last_accessed_at"`
}

func (ProgressRecord) EntryType() EntryType { return EntryProgress }
func (ProgressRecord) isPayload()           {}

// Validate applies the API's progress rules. The error is a *core.ValidationError wrapping ErrInvalidRecord.
func (rec ProgressRecord) Validate() error {
	return core.NewFieldValidationError(core.Validate.Struct(rec), ErrInvalidRecord)
}

// ProgressKey is the key of a record that has no explicit ID.
func ProgressKey(studentID, contentItemID string) string {
	return studentID + ":" + contentItemID
}

// Keyed returns rec with its ID derived from the student and content item if unset.
func (rec ProgressRecord) Keyed() ProgressRecord {
	if rec.ID == "" {
		rec.ID = ProgressKey(rec.StudentID, rec.ContentItemID)
	}
	return rec
}

// Submission is a student's answers to an assignment.
type Submission struct {
	AssignmentID string            `json:"assignment_id" validate:"required"`
	StudentID    string            `json:"student_id" validate:"required"`
	Answers      map[string]string `json:"answers" validate:"required"`
	SubmittedAt  time.Time         `json:"submitted_at"`
}

func (Submission) EntryType() EntryType { return EntryAssignmentSubmission }
func (Submission) isPayload()           {}

func (sub Submission) Validate() error {
	return core.NewFieldValidationError(core.Validate.Struct(sub), ErrInvalidRecord)
}

// ContentRecord is a learning item cached for offline use.
type ContentRecord struct {
	ID                string            `json:"id"`
	CategoryID        string            `json:"category_id"`
	Type              string            `json:"type"`
	Title             map[string]string `json:"title"`
	Description       map[string]string `json:"description,omitempty"`
	Body              map[string]string `json:"content,omitempty"`
	Difficulty        string            `json:"difficulty,omitempty"`
	EstimatedDuration int               `json:"estimated_duration"`
	HasAudio          bool              `json:"has_audio"`
	HasCaptions       bool              `json:"has_captions"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// Entry is a queued write. Entries are replayed in ascending ID order.
type Entry struct {
	ID        int64
	Payload   Payload
	Timestamp int64 // epoch ms
}

func (e Entry) Type() EntryType {
	if e.Payload == nil {
		return ""
	}
	return e.Payload.EntryType()
}

func (e Entry) QueuedAt() time.Time {
	return time.Unix(0, e.Timestamp*int64(time.Millisecond))
}

// EncodePayload returns the type tag and JSON data stored for p.
func EncodePayload(p Payload) (EntryType, []byte, error) {
	switch p.(type) {
	case ProgressRecord, Submission:
	default:
		return "", nil, errors.Wrapf(ErrUnknownEntryType, "%T", p)
	}
	data, err := json.Marshal(p)
	if err != nil {
		return "", nil, errors.Wrapf(err, "encoding %s payload", p.EntryType())
	}
	return p.EntryType(), data, nil
}

// DecodePayload is the inverse of EncodePayload.
func DecodePayload(typ EntryType, data []byte) (Payload, error) {
	switch typ {
	case EntryProgress:
		var rec ProgressRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, errors.Wrap(err, "decoding progress payload")
		}
		return rec, nil
	case EntryAssignmentSubmission:
		var sub Submission
		if err := json.Unmarshal(data, &sub); err != nil {
			return nil, errors.Wrap(err, "decoding submission payload")
		}
		return sub, nil
	default:
		return nil, errors.Wrapf(ErrUnknownEntryType, "%q", typ)
	}
}
