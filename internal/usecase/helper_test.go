package usecase

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"testing"
	"time"

	"healthbridge/internal/delivery/http/middleware"
	"healthbridge/internal/domain/entity"
	"healthbridge/internal/infrastructure/database"
	"healthbridge/internal/repository"
	"healthbridge/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-gateway-secret"

// newTestDB opens an in-memory database with the production schema, including
// the partial unique index guarding slot exclusivity.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A pooled second connection would see a different :memory: database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testAuditService() *service.AuditService {
	return service.NewAuditService(testLogger(), repository.NewAuditLogRepository())
}

// authContext simulates the values the auth middleware injects.
func authContext(userID uuid.UUID, role string) context.Context {
	ctx := context.WithValue(context.Background(), middleware.UserIDKey, userID)
	return context.WithValue(ctx, middleware.RoleKey, role)
}

type fakeGateway struct {
	lastAmount   int64
	lastCurrency string
	err          error
}

func (g *fakeGateway) CreateOrder(_ context.Context, amount int64, currency, _ string, _ map[string]interface{}) (*service.GatewayOrder, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.lastAmount = amount
	g.lastCurrency = currency
	return &service.GatewayOrder{
		OrderID:  fmt.Sprintf("order_%s", uuid.NewString()[:8]),
		Amount:   amount,
		Currency: currency,
	}, nil
}

type publishedEvent struct {
	Channel string
	Event   string
	Payload interface{}
}

type fakePublisher struct {
	events []publishedEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, channel, event string, payload interface{}) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{Channel: channel, Event: event, Payload: payload})
	return nil
}

// signPayment produces the signature the gateway would hand the client after
// a successful checkout.
func signPayment(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func seedUser(t *testing.T, db *gorm.DB, role, email string) *entity.User {
	t.Helper()
	user := &entity.User{
		Role:     role,
		Email:    email,
		Password: "hashed",
		FullName: "Test " + role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedDoctor(t *testing.T, db *gorm.DB, status entity.DoctorStatus, fee string) *entity.Doctor {
	t.Helper()
	user := seedUser(t, db, entity.RoleDoctor, fmt.Sprintf("doctor-%s@example.com", uuid.NewString()[:8]))
	doctor := &entity.Doctor{
		UserID:          user.ID,
		Name:            "Dr. " + user.FullName,
		Email:           user.Email,
		Specialization:  "Cardiology",
		Category:        "cardiology",
		ConsultationFee: decimal.RequireFromString(fee),
		Status:          status,
	}
	require.NoError(t, db.Create(doctor).Error)
	return doctor
}

func seedPatient(t *testing.T, db *gorm.DB) *entity.Patient {
	t.Helper()
	user := seedUser(t, db, entity.RolePatient, fmt.Sprintf("patient-%s@example.com", uuid.NewString()[:8]))
	patient := &entity.Patient{
		UserID: user.ID,
		Name:   user.FullName,
		Email:  user.Email,
	}
	require.NoError(t, db.Create(patient).Error)
	return patient
}

func seedAppointment(t *testing.T, db *gorm.DB, doctor *entity.Doctor, patient *entity.Patient, status entity.AppointmentStatus, at time.Time) *entity.Appointment {
	t.Helper()
	appointment := &entity.Appointment{
		DoctorID:        doctor.ID,
		PatientID:       patient.ID,
		AppointmentDate: at,
		Status:          status,
		Amount:          doctor.ConsultationFee,
	}
	require.NoError(t, db.Create(appointment).Error)
	return appointment
}

func slotTime(offset time.Duration) time.Time {
	return time.Now().Add(24 * time.Hour).Truncate(time.Hour).Add(offset).UTC()
}
