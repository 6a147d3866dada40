package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DoctorStatus represents the admin approval state of a doctor profile
type DoctorStatus string

const (
	DoctorStatusPending  DoctorStatus = "pending"
	DoctorStatusApproved DoctorStatus = "approved"
	DoctorStatusRejected DoctorStatus = "rejected"
)

// Doctor represents a bookable practitioner profile. Only approved doctors
// are listed to patients and accepted by the booking flow.
type Doctor struct {
	ID              uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID          `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Name            string             `gorm:"type:varchar(255);not null" json:"name"`
	Email           string             `gorm:"type:varchar(255);not null" json:"email"`
	Phone           string             `gorm:"type:varchar(20)" json:"phone,omitempty"`
	Specialization  string             `gorm:"type:varchar(100);not null" json:"specialization"`
	Category        string             `gorm:"type:varchar(100);not null;index" json:"category"`
	Experience      int                `gorm:"default:0" json:"experience"`
	Qualifications  StringList         `gorm:"type:jsonb" json:"qualifications,omitempty"`
	ConsultationFee decimal.Decimal    `gorm:"type:decimal(10,2);not null" json:"consultation_fee"`
	Availability    WeeklyAvailability `gorm:"type:jsonb" json:"availability,omitempty"`
	Status          DoctorStatus       `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt       time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time          `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Doctor) TableName() string {
	return "doctors"
}

func (d *Doctor) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// IsApproved checks if the doctor has been approved by an admin
func (d *Doctor) IsApproved() bool {
	return d.Status == DoctorStatusApproved
}
