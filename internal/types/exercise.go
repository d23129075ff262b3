package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ExerciseKindPlan    = "plan"
	ExerciseKindContent = "content"
)

type LetterItem struct {
	Letter            string   `json:"letter"`
	ArticulationPoint string   `json:"articulationPoint,omitempty"`
	Vowels            []string `json:"vowels,omitempty"`
	Difficulty        string   `json:"difficulty,omitempty"`
}

type WordItem struct {
	Word        string `json:"word"`
	Translation string `json:"translation,omitempty"`
	Category    string `json:"category,omitempty"`
	Difficulty  string `json:"difficulty,omitempty"`
}

// Exercise rows come in two kinds: append-only "plan" history (at most one
// active per child) and a single "content" library document per child,
// enforced by a partial unique index created at migration time.
type Exercise struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ChildID uuid.UUID `gorm:"type:uuid;not null;index;column:child_id" json:"child"`
	Kind    string    `gorm:"not null;index;column:kind" json:"kind"`

	SpecialistID *uuid.UUID `gorm:"type:uuid;index;column:specialist_id" json:"specialist,omitempty"`

	Letters []LetterItem `gorm:"serializer:json;column:letters" json:"letters"`
	Words   []WordItem   `gorm:"serializer:json;column:words" json:"words"`

	// Session metadata, plan kind only. SessionIndex is monotonically
	// increasing per child, computed as max existing + 1, never reused.
	SessionIndex int    `gorm:"column:session_index" json:"sessionIndex,omitempty"`
	SessionName  string `gorm:"column:session_name" json:"sessionName,omitempty"`

	// Required session settings for plans; the specialist must set them
	// explicitly, there are no defaults.
	TargetDuration *int `gorm:"column:target_duration" json:"targetDuration,omitempty"`
	BreakDuration  *int `gorm:"column:break_duration" json:"breakDuration,omitempty"`
	MaxAttempts    *int `gorm:"column:max_attempts" json:"maxAttempts,omitempty"`

	StartDate   *time.Time `gorm:"column:start_date" json:"startDate,omitempty"`
	EndDate     *time.Time `gorm:"column:end_date" json:"endDate,omitempty"`
	AllowedDays []int      `gorm:"serializer:json;column:allowed_days" json:"allowedDays"`

	// Plans are soft-deleted by flipping Active; history survives for
	// reset/audit operations.
	Active bool `gorm:"not null;index;column:active" json:"active"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Exercise) TableName() string {
	return "exercises"
}

func (e *Exercise) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
