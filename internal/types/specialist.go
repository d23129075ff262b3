package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Specialist struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name                string     `gorm:"not null;column:name" json:"name"`
	Email               string     `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password            string     `gorm:"not null;column:password" json:"-"`
	Role                Role       `gorm:"not null;default:specialist;column:role" json:"role"`
	Phone               string     `gorm:"column:phone" json:"phone"`
	Specialization      string     `gorm:"column:specialization" json:"specialization"`
	LicenseNumber       string     `gorm:"column:license_number" json:"licenseNumber,omitempty"`
	Bio                 string     `gorm:"column:bio" json:"bio,omitempty"`
	EmailVerified       bool       `gorm:"not null;default:false;column:email_verified" json:"emailVerified"`
	ProfilePhoto        string     `gorm:"column:profile_photo" json:"profilePhoto,omitempty"`
	VerificationToken   string     `gorm:"column:verification_token" json:"-"`
	ResetPasswordToken  string     `gorm:"column:reset_password_token" json:"-"`
	ResetPasswordExpire *time.Time `gorm:"column:reset_password_expire" json:"-"`

	// Staff display id (SP-####), assigned once at creation, immutable.
	StaffID string `gorm:"uniqueIndex;column:staff_id" json:"staffId"`

	// Weak reference; invariant: the referenced center's specialists set
	// contains this id whenever CenterID is non-nil.
	CenterID *uuid.UUID `gorm:"type:uuid;index;column:center_id" json:"center,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Specialist) TableName() string {
	return "specialists"
}

func (s *Specialist) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// SpecialistParentLink realizes specialist.linkedParents with set semantics:
// the unique index makes re-linking an idempotent no-op.
type SpecialistParentLink struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	SpecialistID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_specialist_parent;column:specialist_id"`
	ParentID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_specialist_parent;column:parent_id"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (SpecialistParentLink) TableName() string {
	return "specialist_parent_links"
}

func (l *SpecialistParentLink) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
