package database

import (
	"fmt"

	"healthbridge/internal/domain/entity"

	"gorm.io/gorm"
)

// Migrate creates the schema and the constraints the domain relies on.
//
// The slot-exclusivity invariant (at most one pending/confirmed appointment
// per doctor and exact timestamp) is enforced here with a partial unique
// index rather than an application-level check, since concurrent request
// handlers share no lock authority. GORM's index tags cannot express the
// WHERE clause, so it is raw DDL.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&entity.User{},
		&entity.Doctor{},
		&entity.Patient{},
		&entity.Appointment{},
		&entity.Chat{},
		&entity.Message{},
		&entity.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}

	stmt := fmt.Sprintf(
		"CREATE UNIQUE INDEX IF NOT EXISTS %s ON appointments (doctor_id, appointment_date) WHERE status IN ('pending', 'confirmed')",
		entity.ActiveSlotIndex,
	)
	if err := db.Exec(stmt).Error; err != nil {
		return fmt.Errorf("failed to create active slot index: %w", err)
	}

	return nil
}
