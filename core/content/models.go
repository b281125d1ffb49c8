package content

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/nabha/core"
)

// Types
const (
	TypeVideo       = "video"
	TypeAudio       = "audio"
	TypeText        = "text"
	TypeQuiz        = "quiz"
	TypeInteractive = "interactive"
)

// Statuses
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// Multilingual maps a language code (en, hi, pa) to text.
type Multilingual map[string]string

func (m Multilingual) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

func (m *Multilingual) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.Errorf("content.Multilingual: cannot scan %T", src)
	}
	return json.Unmarshal(data, m)
}

type Category struct {
	ID          string       `json:"id" db:"id"`
	Name        Multilingual `json:"name" db:"name"`
	Description Multilingual `json:"description" db:"description"`
	Subject     string       `json:"subject" db:"subject"`
	GradeLevel  int          `json:"grade_level" db:"grade_level"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
}

type Item struct {
	ID                 string       `json:"id" db:"id"`
	CategoryID         string       `json:"category_id" db:"category_id"`
	Type               string       `json:"type" db:"type"`
	Title              Multilingual `json:"title" db:"title"`
	Description        Multilingual `json:"description" db:"description"`
	Body               Multilingual `json:"content" db:"body"`
	Difficulty         string       `json:"difficulty" db:"difficulty"`
	EstimatedDuration  int          `json:"estimated_duration" db:"estimated_duration"` // minutes
	IsOfflineAvailable bool         `json:"is_offline_available" db:"is_offline_available"`
	HasAudio           bool         `json:"has_audio" db:"has_audio"`
	HasCaptions        bool         `json:"has_captions" db:"has_captions"`
	Status             string       `json:"status" db:"status"`
	CreatedAt          time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at" db:"updated_at"`
}

type NewCategory struct {
	Name        Multilingual `json:"name" validate:"required,dive,keys,required,endkeys,required"`
	Description Multilingual `json:"description"`
	Subject     string       `json:"subject" validate:"required"`
	GradeLevel  int          `json:"grade_level" validate:"min=0,max=12"`
}

func (nc *NewCategory) Validate() error {
	nc.Subject = core.CleanString(nc.Subject, true /* lower */)
	return core.Validate.Struct(nc)
}

type NewItem struct {
	CategoryID         string       `json:"category_id" validate:"required"`
	Type               string       `json:"type" validate:"required,oneof=video audio text quiz interactive"`
	Title              Multilingual `json:"title" validate:"required,dive,keys,required,endkeys,required"`
	Description        Multilingual `json:"description"`
	Body               Multilingual `json:"content"`
	Difficulty         string       `json:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced"`
	EstimatedDuration  int          `json:"estimated_duration" validate:"min=0"`
	IsOfflineAvailable bool         `json:"is_offline_available"`
	HasAudio           bool         `json:"has_audio"`
	HasCaptions        bool         `json:"has_captions"`
	Status             string       `json:"status" validate:"omitempty,oneof=draft published archived"`
}

func (ni *NewItem) Validate() error {
	ni.CategoryID = core.CleanString(ni.CategoryID)
	ni.Difficulty = core.CleanString(ni.Difficulty, true /* lower */)
	if ni.Difficulty == "" {
		ni.Difficulty = "beginner"
	}
	if ni.Status == "" {
		ni.Status = StatusPublished
	}
	return core.Validate.Struct(ni)
}

type QueryFilter struct {
	CategoryID  string `query:"category"`
	OfflineOnly bool   `query:"offline"`
	Status      string `query:"-"`
}
