package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Sender roles for a chat message
const (
	SenderRoleDoctor  = "doctor"
	SenderRolePatient = "patient"
)

// Message belongs to exactly one chat. Append-only, ordered by CreatedAt.
type Message struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ChatID     uuid.UUID `gorm:"type:uuid;not null;index" json:"chat_id"`
	SenderID   uuid.UUID `gorm:"type:uuid;not null" json:"sender_id"`
	SenderRole string    `gorm:"type:varchar(20);not null" json:"sender_role"`
	SenderName string    `gorm:"type:varchar(255);not null" json:"sender_name"`
	Body       string    `gorm:"type:text;not null" json:"body"`
	IsRead     *bool     `gorm:"not null;default:false" json:"is_read"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Message) TableName() string {
	return "messages"
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
