package progress

import (
	"time"

	"github.com/trezcool/nabha/core"
	"github.com/trezcool/nabha/core/user"
)

type Progress struct {
	ID                 string     `json:"id" db:"id"`
	StudentID          string     `json:"student_id" db:"student_id"`
	ContentItemID      string     `json:"content_item_id" db:"content_item_id"`
	ProgressPercentage int        `json:"progress_percentage" db:"progress_percentage"`
	Score              *int       `json:"score" db:"score"`
	TimeSpent          int        `json:"time_spent" db:"time_spent"` // minutes
	CompletedAt        *time.Time `json:"completed_at" db:"completed_at"`
	LastAccessedAt     time.Time  `json:"last_accessed_at" db:"last_accessed_at"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" db:"updated_at"`
}

// IsCompleted reports whether the student finished the content item.
func (p Progress) IsCompleted() bool {
	return p.CompletedAt != nil || p.ProgressPercentage == 100
}

// NewProgress is posted by students, live or replayed from an offline queue.
// Any `id` or `student_id` sent by the client is ignored.
type NewProgress struct {
	ContentItemID      string     `json:"content_item_id" validate:"required"`
	ProgressPercentage int        `json:"progress_percentage" validate:"min=0,max=100"`
	Score              *int       `json:"score" validate:"omitempty,min=0,max=100"`
	TimeSpent          int        `json:"time_spent" validate:"min=0"`
	CompletedAt        *time.Time `json:"completed_at"`
	LastAccessedAt     time.Time  `json:"last_accessed_at"`
}

func (np *NewProgress) Validate() error {
	np.ContentItemID = core.CleanString(np.ContentItemID)
	return core.Validate.Struct(np)
}

// Summary aggregates a student's progress.
type Summary struct {
	StudentID      string `json:"student_id"`
	ItemsStarted   int    `json:"items_started"`
	ItemsCompleted int    `json:"items_completed"`
	TotalTimeSpent int    `json:"total_time_spent"`
	AverageScore   *int   `json:"average_score"`
	ActiveDays     int    `json:"active_days"` // distinct UTC days with an access
}

func Summarize(studentID string, records []Progress) Summary {
	sum := Summary{StudentID: studentID, ItemsStarted: len(records)}
	var scored, total int
	days := make(map[string]bool)
	for _, p := range records {
		if !p.LastAccessedAt.IsZero() {
			days[p.LastAccessedAt.UTC().Format("2006-01-02")] = true
		}
		if p.IsCompleted() {
			sum.ItemsCompleted++
		}
		sum.TotalTimeSpent += p.TimeSpent
		if p.Score != nil {
			scored++
			total += *p.Score
		}
	}
	if scored > 0 {
		avg := total / scored
		sum.AverageScore = &avg
	}
	sum.ActiveDays = len(days)
	return sum
}

// ClassSummary aggregates the progress of a class roster.
type ClassSummary struct {
	SchoolID         string `json:"school_id"`
	ClassName        string `json:"class_name"`
	TotalStudents    int    `json:"total_students"`
	ActiveStudents   int    `json:"active_students"`
	AverageProgress  int    `json:"average_progress"` // mean percentage over every record, rounded
	LessonsCompleted int    `json:"lessons_completed"`
}

// SummarizeClass ignores records of students missing from the roster.
func SummarizeClass(schoolID, className string, roster []user.User, records []Progress) ClassSummary {
	sum := ClassSummary{SchoolID: schoolID, ClassName: className, TotalStudents: len(roster)}
	members := make(map[string]bool, len(roster))
	for _, usr := range roster {
		members[usr.ID] = true
		if usr.IsActive {
			sum.ActiveStudents++
		}
	}

	var n, total int
	for _, p := range records {
		if !members[p.StudentID] {
			continue
		}
		n++
		total += p.ProgressPercentage
		if p.IsCompleted() {
			sum.LessonsCompleted++
		}
	}
	if n > 0 {
		sum.AverageProgress = (total + n/2) / n
	}
	return sum
}
