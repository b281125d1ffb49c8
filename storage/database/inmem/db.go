package inmemdb

import (
	"sync"

	"github.com/google/uuid"

	"github.com/trezcool/nabha/core/alert"
	"github.com/trezcool/nabha/core/assignment"
	"github.com/trezcool/nabha/core/content"
	"github.com/trezcool/nabha/core/progress"
	"github.com/trezcool/nabha/core/school"
	"github.com/trezcool/nabha/core/user"
)

// DB holds every table in memory. Safe for concurrent use.
type DB struct {
	mu sync.RWMutex

	schools     map[string]school.School
	users       map[string]user.User
	categories  map[string]content.Category
	items       map[string]content.Item
	progress    map[string]progress.Progress // by student:content
	assignments map[string]assignment.Assignment
	submissions map[string]assignment.Submission
	alerts      map[string]alert.Alert
}

func Open() *DB {
	return &DB{
		schools:     make(map[string]school.School),
		users:       make(map[string]user.User),
		categories:  make(map[string]content.Category),
		items:       make(map[string]content.Item),
		progress:    make(map[string]progress.Progress),
		assignments: make(map[string]assignment.Assignment),
		submissions: make(map[string]assignment.Submission),
		alerts:      make(map[string]alert.Alert),
	}
}

func newID() string {
	return uuid.New().String()
}
