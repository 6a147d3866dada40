package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"healthbridge/internal/delivery/dto"
	"healthbridge/internal/delivery/http/middleware"
	"healthbridge/internal/domain/entity"
	"healthbridge/internal/domain/repository"
	"healthbridge/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrDoctorNotApproved = errors.New("doctor is not available for booking")
	ErrSlotTaken         = errors.New("slot is already booked")
)

// ReconciliationError is returned when the payment verified but the
// appointment could not be persisted. Funds are captured gateway-side with
// no local record, so the payment reference must surface to the caller for
// manual reconciliation. There is no automatic refund path.
type ReconciliationError struct {
	PaymentID string
	Err       error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("payment %s captured but appointment was not created: %v", e.PaymentID, e.Err)
}

func (e *ReconciliationError) Unwrap() error {
	return e.Err
}

type BookingUsecase interface {
	// CheckSlot is the advisory availability check used by slot pickers. It
	// fails open: a lookup error reports the slot as free, because the
	// authoritative guard is the unique index hit inside ConfirmBooking.
	CheckSlot(ctx context.Context, req *dto.CheckSlotRequest) *dto.SlotAvailabilityResponse
	CreateOrder(ctx context.Context, req *dto.CreateOrderRequest) (*dto.PaymentOrderResponse, error)
	ConfirmBooking(ctx context.Context, req *dto.ConfirmBookingRequest) (*dto.ConfirmBookingResponse, error)
}

type bookingUsecase struct {
	db             *gorm.DB
	log            *logrus.Logger
	doctorRepo     repository.DoctorRepository
	patientRepo    repository.PatientRepository
	userRepo       repository.UserRepository
	apptRepo       repository.AppointmentRepository
	paymentService *service.PaymentService
	auditService   *service.AuditService
}

func NewBookingUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	doctorRepo repository.DoctorRepository,
	patientRepo repository.PatientRepository,
	userRepo repository.UserRepository,
	apptRepo repository.AppointmentRepository,
	paymentService *service.PaymentService,
	auditService *service.AuditService,
) BookingUsecase {
	return &bookingUsecase{
		db:             db,
		log:            log,
		doctorRepo:     doctorRepo,
		patientRepo:    patientRepo,
		userRepo:       userRepo,
		apptRepo:       apptRepo,
		paymentService: paymentService,
		auditService:   auditService,
	}
}

func (u *bookingUsecase) CheckSlot(ctx context.Context, req *dto.CheckSlotRequest) *dto.SlotAvailabilityResponse {
	existing, err := u.apptRepo.FindActiveSlot(u.db.WithContext(ctx), req.DoctorID, req.AppointmentDate)
	if err != nil {
		u.log.Warnf("Slot availability lookup failed for doctor %s, reporting free: %+v", req.DoctorID, err)
		return &dto.SlotAvailabilityResponse{Available: true}
	}
	return &dto.SlotAvailabilityResponse{Available: existing == nil}
}

// CreateOrder registers a payment order sized at the doctor's consultation
// fee. The doctor must exist and be approved before the gateway is called.
func (u *bookingUsecase) CreateOrder(ctx context.Context, req *dto.CreateOrderRequest) (*dto.PaymentOrderResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotFound
	}

	doctor, err := u.doctorRepo.FindByID(u.db.WithContext(ctx), req.DoctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", req.DoctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}
	if !doctor.IsApproved() {
		return nil, ErrDoctorNotApproved
	}

	receipt := fmt.Sprintf("appointment_%d", time.Now().UnixMilli())
	notes := map[string]interface{}{
		"doctor_id":   doctor.ID.String(),
		"doctor_name": doctor.Name,
		"user_id":     userID.String(),
	}

	order, err := u.paymentService.CreateOrder(ctx, doctor.ConsultationFee, receipt, notes)
	if err != nil {
		return nil, err
	}

	u.auditService.Record(u.db.WithContext(ctx), &userID, entity.AuditActionPaymentOrderCreate, entity.JSON{
		"order_id":  order.OrderID,
		"doctor_id": doctor.ID.String(),
		"amount":    order.Amount,
	})

	return &dto.PaymentOrderResponse{
		OrderID:   order.OrderID,
		Amount:    order.Amount,
		Currency:  order.Currency,
		DoctorFee: doctor.ConsultationFee,
	}, nil
}

// ConfirmBooking turns a verified payment into a confirmed appointment.
//
// Flow:
//  1. Verify the checkout signature (nothing is persisted on failure)
//  2. Resolve or lazily create the caller's patient profile
//  3. Re-validate the doctor exists and is approved
//  4. Insert the appointment as confirmed; the partial unique index on
//     (doctor_id, appointment_date) rejects a second active booking of the
//     same slot, surfaced as ErrSlotTaken
//
// Payment success confirms the appointment directly, skipping the pending
// review state used by doctor-driven transitions.
func (u *bookingUsecase) ConfirmBooking(ctx context.Context, req *dto.ConfirmBookingRequest) (*dto.ConfirmBookingResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotFound
	}

	paymentID, err := u.paymentService.VerifyPayment(req.OrderID, req.PaymentID, req.Signature)
	if err != nil {
		return nil, err
	}

	patient, err := u.resolvePatient(ctx, userID)
	if err != nil {
		return nil, err
	}

	doctor, err := u.doctorRepo.FindByID(u.db.WithContext(ctx), req.DoctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", req.DoctorID, err)
		return nil, &ReconciliationError{PaymentID: paymentID, Err: err}
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}
	if !doctor.IsApproved() {
		return nil, ErrDoctorNotApproved
	}

	appointment := &entity.Appointment{
		DoctorID:        doctor.ID,
		PatientID:       patient.ID,
		AppointmentDate: req.AppointmentDate,
		Reason:          req.Reason,
		Status:          entity.AppointmentStatusConfirmed,
		PaymentID:       paymentID,
		Amount:          doctor.ConsultationFee,
	}

	if err := u.apptRepo.Create(u.db.WithContext(ctx), appointment); err != nil {
		if isUniqueViolation(err, "active_slot") {
			return nil, ErrSlotTaken
		}
		u.log.Errorf("Appointment insert failed after verified payment %s: %+v", paymentID, err)
		return nil, &ReconciliationError{PaymentID: paymentID, Err: err}
	}

	u.auditService.Record(u.db.WithContext(ctx), &userID, entity.AuditActionAppointmentConfirm, entity.JSON{
		"appointment_id": appointment.ID.String(),
		"doctor_id":      doctor.ID.String(),
		"payment_id":     paymentID,
	})

	u.log.Infof("Appointment confirmed: id=%s, doctor=%s, payment=%s", appointment.ID, doctor.ID, paymentID)

	return &dto.ConfirmBookingResponse{
		AppointmentID: appointment.ID,
		Status:        string(appointment.Status),
		PaymentID:     paymentID,
	}, nil
}

// resolvePatient finds the caller's patient profile, creating a minimal one
// from the user record on first booking.
func (u *bookingUsecase) resolvePatient(ctx context.Context, userID uuid.UUID) (*entity.Patient, error) {
	patient, err := u.patientRepo.FindByUserID(u.db.WithContext(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find patient profile for user %s: %+v", userID, err)
		return nil, err
	}
	if patient != nil {
		return patient, nil
	}

	user, err := u.userRepo.FindByID(u.db.WithContext(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find user %s: %+v", userID, err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	patient = &entity.Patient{
		UserID: userID,
		Name:   user.FullName,
		Email:  user.Email,
	}
	if err := u.patientRepo.Create(u.db.WithContext(ctx), patient); err != nil {
		if isUniqueViolation(err, "user_id") {
			// Lost a create race, the winner's profile serves.
			return u.patientRepo.FindByUserID(u.db.WithContext(ctx), userID)
		}
		u.log.Warnf("Failed to create patient profile: %+v", err)
		return nil, err
	}

	return patient, nil
}
