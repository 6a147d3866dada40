package repository

import (
	"time"

	"healthbridge/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(db *gorm.DB, appointment *entity.Appointment) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error)
	// FindActiveSlot returns the pending/confirmed appointment occupying the
	// exact (doctor, timestamp) slot, or nil if the slot is free.
	FindActiveSlot(db *gorm.DB, doctorID uuid.UUID, at time.Time) (*entity.Appointment, error)
	FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.Appointment, error)
	FindByDoctorID(db *gorm.DB, doctorID uuid.UUID) ([]entity.Appointment, error)
	// UpdateStatus conditionally updates an appointment owned by doctorID.
	// Returns affected rows: 0 means not found or not owned.
	UpdateStatus(db *gorm.DB, id, doctorID uuid.UUID, status entity.AppointmentStatus, notes string) (int64, error)
}
