package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Admin struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name                string     `gorm:"not null;column:name" json:"name"`
	Email               string     `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password            string     `gorm:"not null;column:password" json:"-"`
	Role                Role       `gorm:"not null;default:admin;column:role" json:"role"`
	Phone               string     `gorm:"column:phone" json:"phone"`
	EmailVerified       bool       `gorm:"not null;default:false;column:email_verified" json:"emailVerified"`
	ProfilePhoto        string     `gorm:"column:profile_photo" json:"profilePhoto,omitempty"`
	VerificationToken   string     `gorm:"column:verification_token" json:"-"`
	ResetPasswordToken  string     `gorm:"column:reset_password_token" json:"-"`
	ResetPasswordExpire *time.Time `gorm:"column:reset_password_expire" json:"-"`

	// Staff display id (AD-####), assigned once at creation, immutable.
	StaffID string `gorm:"uniqueIndex;column:staff_id" json:"staffId"`

	// The one center this admin administers. Superadmins are center-unscoped
	// and leave this nil.
	CenterID *uuid.UUID `gorm:"type:uuid;index;column:center_id" json:"center,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Admin) TableName() string {
	return "admins"
}

func (a *Admin) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
