package repository

import (
	"healthbridge/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DoctorRepository interface {
	Create(db *gorm.DB, doctor *entity.Doctor) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Doctor, error)
	FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.Doctor, error)
	FindApproved(db *gorm.DB, category string) ([]entity.Doctor, error)
	UpdateStatus(db *gorm.DB, id uuid.UUID, status entity.DoctorStatus) (int64, error)
}
