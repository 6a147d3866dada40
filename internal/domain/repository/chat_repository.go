package repository

import (
	"healthbridge/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatRepository interface {
	Create(db *gorm.DB, chat *entity.Chat) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Chat, error)
	FindByAppointmentID(db *gorm.DB, appointmentID uuid.UUID) (*entity.Chat, error)
	TouchLastActivity(db *gorm.DB, id uuid.UUID) error
}

type MessageRepository interface {
	Create(db *gorm.DB, message *entity.Message) error
	// FindRecentByChatID returns the most recent limit messages of a chat,
	// ordered oldest-first.
	FindRecentByChatID(db *gorm.DB, chatID uuid.UUID, limit int) ([]entity.Message, error)
}
