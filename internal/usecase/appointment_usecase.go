package usecase

import (
	"context"
	"errors"

	"healthbridge/internal/converter"
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
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrPatientNotFound     = errors.New("patient profile not found")
)

type AppointmentUsecase interface {
	GetPatientAppointments(ctx context.Context) (*dto.AppointmentListResponse, error)
	GetDoctorAppointments(ctx context.Context) (*dto.AppointmentListResponse, error)
	UpdateStatus(ctx context.Context, appointmentID uuid.UUID, req *dto.UpdateAppointmentStatusRequest) error
}

type appointmentUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	apptRepo     repository.AppointmentRepository
	doctorRepo   repository.DoctorRepository
	patientRepo  repository.PatientRepository
	auditService *service.AuditService
}

func NewAppointmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	apptRepo repository.AppointmentRepository,
	doctorRepo repository.DoctorRepository,
	patientRepo repository.PatientRepository,
	auditService *service.AuditService,
) AppointmentUsecase {
	return &appointmentUsecase{
		db:           db,
		log:          log,
		apptRepo:     apptRepo,
		doctorRepo:   doctorRepo,
		patientRepo:  patientRepo,
		auditService: auditService,
	}
}

// GetPatientAppointments returns the caller's appointments, newest first. A
// caller without a patient profile has simply never booked: empty list.
func (u *appointmentUsecase) GetPatientAppointments(ctx context.Context) (*dto.AppointmentListResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotFound
	}

	patient, err := u.patientRepo.FindByUserID(u.db.WithContext(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find patient for user %s: %+v", userID, err)
		return nil, err
	}
	if patient == nil {
		return &dto.AppointmentListResponse{Appointments: []dto.AppointmentResponse{}}, nil
	}

	appointments, err := u.apptRepo.FindByPatientID(u.db.WithContext(ctx), patient.ID)
	if err != nil {
		u.log.Warnf("Failed to find appointments for patient %s: %+v", patient.ID, err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

func (u *appointmentUsecase) GetDoctorAppointments(ctx context.Context) (*dto.AppointmentListResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotFound
	}

	doctor, err := u.doctorRepo.FindByUserID(u.db.WithContext(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find doctor for user %s: %+v", userID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	appointments, err := u.apptRepo.FindByDoctorID(u.db.WithContext(ctx), doctor.ID)
	if err != nil {
		u.log.Warnf("Failed to find appointments for doctor %s: %+v", doctor.ID, err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

// UpdateStatus lets the owning doctor move an appointment through its
// lifecycle (confirmed, completed, cancelled) with optional notes.
func (u *appointmentUsecase) UpdateStatus(ctx context.Context, appointmentID uuid.UUID, req *dto.UpdateAppointmentStatusRequest) error {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return ErrUserNotFound
	}

	doctor, err := u.doctorRepo.FindByUserID(u.db.WithContext(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find doctor for user %s: %+v", userID, err)
		return err
	}
	if doctor == nil {
		return ErrDoctorNotFound
	}

	affected, err := u.apptRepo.UpdateStatus(u.db.WithContext(ctx), appointmentID, doctor.ID,
		entity.AppointmentStatus(req.Status), req.Notes)
	if err != nil {
		u.log.Warnf("Failed to update appointment %s: %+v", appointmentID, err)
		return err
	}
	if affected == 0 {
		return ErrAppointmentNotFound
	}

	u.auditService.Record(u.db.WithContext(ctx), &userID, entity.AuditActionAppointmentStatus, entity.JSON{
		"appointment_id": appointmentID.String(),
		"status":         req.Status,
	})

	return nil
}
