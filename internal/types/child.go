package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Child struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string     `gorm:"not null;column:name" json:"name"`
	Age       int        `gorm:"not null;column:age" json:"age"`
	BirthDate *time.Time `gorm:"column:birth_date" json:"birthDate,omitempty"`
	Gender    string     `gorm:"not null;column:gender" json:"gender"`

	// Strong relationship: a child cannot exist without its parent.
	ParentID uuid.UUID `gorm:"type:uuid;not null;index;column:parent_id" json:"parent"`

	// Weak reference, nullable; direct assignment, no reverse-side list.
	AssignedSpecialistID *uuid.UUID `gorm:"type:uuid;index;column:assigned_specialist_id" json:"assignedSpecialist,omitempty"`

	DailyPlayDuration *int     `gorm:"column:daily_play_duration" json:"dailyPlayDuration,omitempty"`
	TargetLetters     []string `gorm:"serializer:json;column:target_letters" json:"targetLetters"`
	TargetWords       []string `gorm:"serializer:json;column:target_words" json:"targetWords"`
	DifficultyLevel   string   `gorm:"column:difficulty_level" json:"difficultyLevel,omitempty"`

	// Display id (CH-####) from the atomic counter; immutable once assigned.
	ChildID string `gorm:"uniqueIndex;column:child_id" json:"childId"`

	AvatarID string `gorm:"column:avatar_id" json:"avatarId"`
	Active   bool   `gorm:"not null;default:true;column:active" json:"active"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Child) TableName() string {
	return "children"
}

func (c *Child) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
