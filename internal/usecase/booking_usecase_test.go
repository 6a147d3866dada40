package usecase

import (
	"errors"
	"testing"
	"time"

	"healthbridge/internal/delivery/dto"
	"healthbridge/internal/domain/entity"
	"healthbridge/internal/repository"
	"healthbridge/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newBookingFixture(t *testing.T) (BookingUsecase, *gorm.DB, *fakeGateway) {
	t.Helper()
	db := newTestDB(t)
	gateway := &fakeGateway{}
	paymentService := service.NewPaymentService(gateway, testSecret, "INR", testLogger())
	uc := NewBookingUsecase(
		db,
		testLogger(),
		repository.NewDoctorRepository(),
		repository.NewPatientRepository(),
		repository.NewUserRepository(),
		repository.NewAppointmentRepository(),
		paymentService,
		testAuditService(),
	)
	return uc, db, gateway
}

func confirmRequest(doctorID uuid.UUID, at time.Time) *dto.ConfirmBookingRequest {
	orderID := "order_test"
	paymentID := "pay_test"
	return &dto.ConfirmBookingRequest{
		OrderID:         orderID,
		PaymentID:       paymentID,
		Signature:       signPayment(testSecret, orderID, paymentID),
		DoctorID:        doctorID,
		AppointmentDate: at,
		Reason:          "checkup",
	}
}

func TestCheckSlot(t *testing.T) {
	uc, db, _ := newBookingFixture(t)
	doctor := seedDoctor(t, db, entity.DoctorStatusApproved, "500")
	patient := seedPatient(t, db)
	at := slotTime(0)

	resp := uc.CheckSlot(authContext(patient.UserID, entity.RolePatient), &dto.CheckSlotRequest{
		DoctorID:        doctor.ID,
		AppointmentDate: at,
	})
	assert.True(t, resp.Available)

	seedAppointment(t, db, doctor, patient, entity.AppointmentStatusConfirmed, at)

	resp = uc.CheckSlot(authContext(patient.UserID, entity.RolePatient), &dto.CheckSlotRequest{
		DoctorID:        doctor.ID,
		AppointmentDate: at,
	})
	assert.False(t, resp.Available)
}

func TestCheckSlotIgnoresInactiveAppointments(t *testing.T) {
	uc, db, _ := newBookingFixture(t)
	doctor := seedDoctor(t, db, entity.DoctorStatusApproved, "500")
	patient := seedPatient(t, db)
	at := slotTime(time.Hour)

	seedAppointment(t, db, doctor, patient, entity.AppointmentStatusCancelled, at)

	resp := uc.CheckSlot(authContext(patient.UserID, entity.RolePatient), &dto.CheckSlotRequest{
		DoctorID:        doctor.ID,
		AppointmentDate: at,
	})
	assert.True(t, resp.Available)
}

func TestCheckSlotFailsOpen(t *testing.T) {
	uc, db, _ := newBookingFixture(t)
	patient := seedPatient(t, db)

	// Break the lookup path entirely; the advisory check must report free.
	require.NoError(t, db.Exec("DROP TABLE appointments").Error)

	resp := uc.CheckSlot(authContext(patient.UserID, entity.RolePatient), &dto.CheckSlotRequest{
		DoctorID:        uuid.New(),
		AppointmentDate: slotTime(0),
	})
	assert.True(t, resp.Available)
}

func TestCreateOrderScalesFeeToMinorUnits(t *testing.T) {
	uc, db, gateway := newBookingFixture(t)
	doctor := seedDoctor(t, db, entity.DoctorStatusApproved, "500")
	patient := seedPatient(t, db)

	resp, err := uc.CreateOrder(authContext(patient.UserID, entity.RolePatient), &dto.CreateOrderRequest{
		DoctorID: doctor.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(50000), resp.Amount)
	assert.Equal(t, int64(50000), gateway.lastAmount)
	assert.Equal(t, "INR", resp.Currency)
	assert.True(t, resp.DoctorFee.Equal(doctor.ConsultationFee))
	assert.NotEmpty(t, resp.OrderID)
}

func TestCreateOrderRejectsUnapprovedDoctor(t *testing.T) {
	uc, db, _ := newBookingFixture(t)
	doctor := seedDoctor(t, db, entity.DoctorStatusPending, "500")
	patient := seedPatient(t, db)

	_, err := uc.CreateOrder(authContext(patient.UserID, entity.RolePatient), &dto.CreateOrderRequest{
		DoctorID: doctor.ID,
	})
	assert.ErrorIs(t, err, ErrDoctorNotApproved)
}

func TestCreateOrderUnknownDoctor(t *testing.T) {
	uc, db, _ := newBookingFixture(t)
	patient := seedPatient(t, db)

	_, err := uc.CreateOrder(authContext(patient.UserID, entity.RolePatient), &dto.CreateOrderRequest{
		DoctorID: uuid.New(),
	})
	assert.ErrorIs(t, err, ErrDoctorNotFound)
}

func TestConfirmBookingHappyPath(t *testing.T) {
	uc, db, _ := newBookingFixture(t)
	doctor := seedDoctor(t, db, entity.DoctorStatusApproved, "750.50")
	user := seedUser(t, db, entity.RolePatient, "first-booking@example.com")
	at := slotTime(0)

	resp, err := uc.ConfirmBooking(authContext(user.ID, entity.RolePatient), confirmRequest(doctor.ID, at))
	require.NoError(t, err)

	assert.Equal(t, string(entity.AppointmentStatusConfirmed), resp.Status)
	assert.Equal(t, "pay_test", resp.PaymentID)

	var appointment entity.Appointment
	require.NoError(t, db.First(&appointment, "id = ?", resp.AppointmentID).Error)
	assert.Equal(t, entity.AppointmentStatusConfirmed, appointment.Status)
	assert.Equal(t, "pay_test", appointment.PaymentID)
	assert.True(t, appointment.Amount.Equal(doctor.ConsultationFee))

	// First booking lazily creates the patient profile from the user record.
	var patient entity.Patient
	require.NoError(t, db.First(&patient, "user_id = ?", user.ID).Error)
	assert.Equal(t, patient.ID, appointment.PatientID)
	assert.Equal(t, user.Email, patient.Email)
}

func TestConfirmBookingRejectsTamperedSignature(t *testing.T) {
	uc, db, _ := newBookingFixture(t)
	doctor := seedDoctor(t, db, entity.DoctorStatusApproved, "500")
	user := seedUser(t, db, entity.RolePatient, "tampered@example.com")

	req := confirmRequest(doctor.ID, slotTime(0))
	req.Signature = req.Signature[:len(req.Signature)-1] + "0"
	if req.Signature == signPayment(testSecret, req.OrderID, req.PaymentID) {
		req.Signature = req.Signature[:len(req.Signature)-1] + "1"
	}

	_, err := uc.ConfirmBooking(authContext(user.ID, entity.RolePatient), req)
	assert.ErrorIs(t, err, service.ErrSignatureMismatch)

	var count int64
	require.NoError(t, db.Model(&entity.Appointment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestConfirmBookingMissingFields(t *testing.T) {
	uc, db, _ := newBookingFixture(t)
	doctor := seedDoctor(t, db, entity.DoctorStatusApproved, "500")
	user := seedUser(t, db, entity.RolePatient, "missing@example.com")

	req := confirmRequest(doctor.ID, slotTime(0))
	req.PaymentID = ""

	_, err := uc.ConfirmBooking(authContext(user.ID, entity.RolePatient), req)
	assert.ErrorIs(t, err, service.ErrMissingPaymentFields)
}

func TestConfirmBookingSlotConflict(t *testing.T) {
	uc, db, _ := newBookingFixture(t)
	doctor := seedDoctor(t, db, entity.DoctorStatusApproved, "500")
	first := seedUser(t, db, entity.RolePatient, "winner@example.com")
	second := seedUser(t, db, entity.RolePatient, "loser@example.com")
	at := slotTime(0)

	_, err := uc.ConfirmBooking(authContext(first.ID, entity.RolePatient), confirmRequest(doctor.ID, at))
	require.NoError(t, err)

	_, err = uc.ConfirmBooking(authContext(second.ID, entity.RolePatient), confirmRequest(doctor.ID, at))
	assert.ErrorIs(t, err, ErrSlotTaken)

	var count int64
	require.NoError(t, db.Model(&entity.Appointment{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestConfirmBookingCancelledSlotIsRebookable(t *testing.T) {
	uc, db, _ := newBookingFixture(t)
	doctor := seedDoctor(t, db, entity.DoctorStatusApproved, "500")
	first := seedUser(t, db, entity.RolePatient, "cancelled@example.com")
	second := seedUser(t, db, entity.RolePatient, "rebooker@example.com")
	at := slotTime(0)

	resp, err := uc.ConfirmBooking(authContext(first.ID, entity.RolePatient), confirmRequest(doctor.ID, at))
	require.NoError(t, err)

	err = db.Model(&entity.Appointment{}).
		Where("id = ?", resp.AppointmentID).
		Update("status", entity.AppointmentStatusCancelled).Error
	require.NoError(t, err)

	_, err = uc.ConfirmBooking(authContext(second.ID, entity.RolePatient), confirmRequest(doctor.ID, at))
	require.NoError(t, err)
}

func TestConfirmBookingSurfacesReconciliationError(t *testing.T) {
	uc, db, _ := newBookingFixture(t)
	doctor := seedDoctor(t, db, entity.DoctorStatusApproved, "500")
	patient := seedPatient(t, db)

	// Payment verifies, then persistence fails: the payment reference must
	// still reach the caller.
	require.NoError(t, db.Exec("DROP TABLE appointments").Error)

	_, err := uc.ConfirmBooking(authContext(patient.UserID, entity.RolePatient), confirmRequest(doctor.ID, slotTime(0)))
	require.Error(t, err)

	var reconciliation *ReconciliationError
	require.True(t, errors.As(err, &reconciliation))
	assert.Equal(t, "pay_test", reconciliation.PaymentID)
	assert.Contains(t, reconciliation.Error(), "pay_test")
}

func TestConfirmBookingReusesPatientProfile(t *testing.T) {
	uc, db, _ := newBookingFixture(t)
	doctor := seedDoctor(t, db, entity.DoctorStatusApproved, "500")
	patient := seedPatient(t, db)

	resp, err := uc.ConfirmBooking(authContext(patient.UserID, entity.RolePatient), confirmRequest(doctor.ID, slotTime(0)))
	require.NoError(t, err)

	var appointment entity.Appointment
	require.NoError(t, db.First(&appointment, "id = ?", resp.AppointmentID).Error)
	assert.Equal(t, patient.ID, appointment.PatientID)

	var count int64
	require.NoError(t, db.Model(&entity.Patient{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
