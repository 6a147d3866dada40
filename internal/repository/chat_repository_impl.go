package repository

import (
	"errors"
	"time"

	"healthbridge/internal/domain/entity"
	domainRepo "healthbridge/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type chatRepository struct{}

func NewChatRepository() domainRepo.ChatRepository {
	return &chatRepository{}
}

func (r *chatRepository) Create(db *gorm.DB, chat *entity.Chat) error {
	return db.Create(chat).Error
}

func (r *chatRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Chat, error) {
	var chat entity.Chat
	err := db.Preload("Doctor").Preload("Patient").Where("id = ?", id).First(&chat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &chat, nil
}

func (r *chatRepository) FindByAppointmentID(db *gorm.DB, appointmentID uuid.UUID) (*entity.Chat, error) {
	var chat entity.Chat
	err := db.Preload("Doctor").Preload("Patient").Where("appointment_id = ?", appointmentID).First(&chat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &chat, nil
}

func (r *chatRepository) TouchLastActivity(db *gorm.DB, id uuid.UUID) error {
	return db.Model(&entity.Chat{}).
		Where("id = ?", id).
		Update("last_activity", time.Now().UTC()).Error
}
