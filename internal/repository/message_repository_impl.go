package repository

import (
	"healthbridge/internal/domain/entity"
	domainRepo "healthbridge/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type messageRepository struct{}

func NewMessageRepository() domainRepo.MessageRepository {
	return &messageRepository{}
}

func (r *messageRepository) Create(db *gorm.DB, message *entity.Message) error {
	return db.Create(message).Error
}

// FindRecentByChatID selects the newest limit rows, then reverses so callers
// get the window oldest-first.
func (r *messageRepository) FindRecentByChatID(db *gorm.DB, chatID uuid.UUID, limit int) ([]entity.Message, error) {
	var messages []entity.Message
	err := db.Where("chat_id = ?", chatID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
