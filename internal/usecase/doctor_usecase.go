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
	ErrDoctorNotFound      = errors.New("doctor not found")
	ErrDoctorProfileExists = errors.New("doctor profile already exists")
)

type DoctorUsecase interface {
	CreateProfile(ctx context.Context, req *dto.CreateDoctorProfileRequest) (*dto.DoctorResponse, error)
	GetMyProfile(ctx context.Context) (*dto.DoctorResponse, error)
	GetApprovedDoctors(ctx context.Context, category string) (*dto.DoctorListResponse, error)
	UpdateStatus(ctx context.Context, doctorID uuid.UUID, status entity.DoctorStatus) error
}

type doctorUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	doctorRepo   repository.DoctorRepository
	userRepo     repository.UserRepository
	auditService *service.AuditService
}

func NewDoctorUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	doctorRepo repository.DoctorRepository,
	userRepo repository.UserRepository,
	auditService *service.AuditService,
) DoctorUsecase {
	return &doctorUsecase{
		db:           db,
		log:          log,
		doctorRepo:   doctorRepo,
		userRepo:     userRepo,
		auditService: auditService,
	}
}

// CreateProfile onboards a doctor. Profiles start as pending and stay
// unbookable until an admin approves them.
func (u *doctorUsecase) CreateProfile(ctx context.Context, req *dto.CreateDoctorProfileRequest) (*dto.DoctorResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotFound
	}

	user, err := u.userRepo.FindByID(u.db.WithContext(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find user %s: %+v", userID, err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	doctor := &entity.Doctor{
		UserID:          userID,
		Name:            req.Name,
		Email:           user.Email,
		Phone:           req.Phone,
		Specialization:  req.Specialization,
		Category:        req.Category,
		Experience:      req.Experience,
		Qualifications:  req.Qualifications,
		ConsultationFee: req.ConsultationFee,
		Availability:    req.Availability,
		Status:          entity.DoctorStatusPending,
	}

	if err := u.doctorRepo.Create(u.db.WithContext(ctx), doctor); err != nil {
		if isUniqueViolation(err, "user_id") {
			return nil, ErrDoctorProfileExists
		}
		u.log.Warnf("Failed to create doctor profile: %+v", err)
		return nil, err
	}

	u.auditService.Record(u.db.WithContext(ctx), &userID, entity.AuditActionDoctorOnboard, entity.JSON{
		"doctor_id": doctor.ID.String(),
		"category":  doctor.Category,
	})

	return converter.DoctorToResponse(doctor), nil
}

func (u *doctorUsecase) GetMyProfile(ctx context.Context) (*dto.DoctorResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotFound
	}

	doctor, err := u.doctorRepo.FindByUserID(u.db.WithContext(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile for user %s: %+v", userID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	return converter.DoctorToResponse(doctor), nil
}

// GetApprovedDoctors lists the bookable directory, optionally filtered by
// category.
func (u *doctorUsecase) GetApprovedDoctors(ctx context.Context, category string) (*dto.DoctorListResponse, error) {
	doctors, err := u.doctorRepo.FindApproved(u.db.WithContext(ctx), category)
	if err != nil {
		u.log.Warnf("Failed to list approved doctors: %+v", err)
		return nil, err
	}

	return &dto.DoctorListResponse{
		Doctors: converter.DoctorsToResponses(doctors),
		Total:   len(doctors),
	}, nil
}

// UpdateStatus is the admin approval flow: pending -> approved | rejected.
func (u *doctorUsecase) UpdateStatus(ctx context.Context, doctorID uuid.UUID, status entity.DoctorStatus) error {
	affected, err := u.doctorRepo.UpdateStatus(u.db.WithContext(ctx), doctorID, status)
	if err != nil {
		u.log.Warnf("Failed to update doctor %s status: %+v", doctorID, err)
		return err
	}
	if affected == 0 {
		return ErrDoctorNotFound
	}

	var adminID *uuid.UUID
	if callerID, ok := middleware.GetUserIDFromContext(ctx); ok {
		adminID = &callerID
	}
	u.auditService.Record(u.db.WithContext(ctx), adminID, entity.AuditActionDoctorStatusChange, entity.JSON{
		"doctor_id": doctorID.String(),
		"status":    string(status),
	})

	u.log.Infof("Doctor status updated: id=%s, status=%s", doctorID, status)
	return nil
}
