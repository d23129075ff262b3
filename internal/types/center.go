package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Center struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"not null;column:name" json:"name"`
	NameEn      string    `gorm:"column:name_en" json:"nameEn"`
	Address     string    `gorm:"column:address" json:"address"`
	Phone       string    `gorm:"column:phone" json:"phone"`
	Email       string    `gorm:"column:email" json:"email"`
	Description string    `gorm:"column:description" json:"description"`
	IsActive    bool      `gorm:"not null;default:true;column:is_active" json:"isActive"`

	// The owning admin. An admin's authority extends exactly to the center
	// whose AdminID points back at it.
	AdminID uuid.UUID `gorm:"type:uuid;index;column:admin_id" json:"admin"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Center) TableName() string {
	return "centers"
}

func (c *Center) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
