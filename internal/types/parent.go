package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Parent struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name                string     `gorm:"not null;column:name" json:"name"`
	Email               string     `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password            string     `gorm:"not null;column:password" json:"-"`
	Role                Role       `gorm:"not null;default:parent;column:role" json:"role"`
	Phone               string     `gorm:"column:phone" json:"phone"`
	Bio                 string     `gorm:"column:bio" json:"bio,omitempty"`
	EmailVerified       bool       `gorm:"not null;default:false;column:email_verified" json:"emailVerified"`
	ProfilePhoto        string     `gorm:"column:profile_photo" json:"profilePhoto,omitempty"`
	VerificationToken   string     `gorm:"column:verification_token" json:"-"`
	ResetPasswordToken  string     `gorm:"column:reset_password_token" json:"-"`
	ResetPasswordExpire *time.Time `gorm:"column:reset_password_expire" json:"-"`

	// Staff display id (PT-####), assigned once at creation, immutable.
	StaffID string `gorm:"uniqueIndex;column:staff_id" json:"staffId"`

	// Weak reference to the linked specialist; the authoritative set lives
	// on the specialist side (specialist_parent_links) and both are kept in
	// step by the link graph service.
	LinkedSpecialistID *uuid.UUID `gorm:"type:uuid;index;column:linked_specialist_id" json:"linkedSpecialist,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Parent) TableName() string {
	return "parents"
}

func (p *Parent) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
