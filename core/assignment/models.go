package assignment

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/nabha/core"
)

// Submission statuses
const (
	StatusSubmitted = "submitted"
	StatusGraded    = "graded"
)

// Answers maps a question ID to the student's answer.
type Answers map[string]string

func (a Answers) Value() (driver.Value, error) {
	if a == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(a)
}

func (a *Answers) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*a = nil
		return nil
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return errors.Errorf("assignment.Answers: cannot scan %T", src)
	}
}

type Assignment struct {
	ID            string     `json:"id" db:"id"`
	TeacherID     string     `json:"teacher_id" db:"teacher_id"`
	ContentItemID string     `json:"content_item_id" db:"content_item_id"`
	Title         string     `json:"title" db:"title"`
	Description   string     `json:"description" db:"description"`
	DueDate       *time.Time `json:"due_date" db:"due_date"`
	SchoolID      string     `json:"school_id" db:"school_id"`
	ClassName     string     `json:"class_name" db:"class_name"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}

type Submission struct {
	ID           string    `json:"id" db:"id"`
	AssignmentID string    `json:"assignment_id" db:"assignment_id"`
	StudentID    string    `json:"student_id" db:"student_id"`
	Answers      Answers   `json:"answers" db:"answers"`
	Score        *int      `json:"score" db:"score"`
	Feedback     string    `json:"feedback" db:"feedback"`
	Status       string    `json:"status" db:"status"`
	SubmittedAt  time.Time `json:"submitted_at" db:"submitted_at"`
}

type NewAssignment struct {
	ContentItemID string     `json:"content_item_id"`
	Title         string     `json:"title" validate:"required,max=200"`
	Description   string     `json:"description"`
	DueDate       *time.Time `json:"due_date"`

	// SchoolID and ClassName assign the work to one class; both or neither.
	SchoolID  string `json:"school_id" validate:"required_with=ClassName"`
	ClassName string `json:"class_name" validate:"required_with=SchoolID,max=50"`
}

func (na *NewAssignment) Validate() error {
	na.Title = core.CleanString(na.Title)
	na.ContentItemID = core.CleanString(na.ContentItemID)
	na.SchoolID = core.CleanString(na.SchoolID)
	na.ClassName = core.CleanString(na.ClassName)
	return core.Validate.Struct(na)
}

// NewSubmission is posted by students, live or replayed from an offline queue.
// Any `student_id` sent by the client is ignored.
type NewSubmission struct {
	AssignmentID string    `json:"assignment_id" validate:"required"`
	Answers      Answers   `json:"answers" validate:"required"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

func (ns *NewSubmission) Validate() error {
	ns.AssignmentID = core.CleanString(ns.AssignmentID)
	return core.Validate.Struct(ns)
}

type Grade struct {
	Score    int    `json:"score" validate:"min=0,max=100"`
	Feedback string `json:"feedback"`
}

func (g *Grade) Validate() error {
	g.Feedback = core.CleanString(g.Feedback)
	return core.Validate.Struct(g)
}
