package usecase

import (
	"testing"

	"healthbridge/internal/delivery/dto"
	"healthbridge/internal/domain/entity"
	"healthbridge/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newDoctorFixture(t *testing.T) (DoctorUsecase, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	uc := NewDoctorUsecase(
		db,
		testLogger(),
		repository.NewDoctorRepository(),
		repository.NewUserRepository(),
		testAuditService(),
	)
	return uc, db
}

func profileRequest() *dto.CreateDoctorProfileRequest {
	return &dto.CreateDoctorProfileRequest{
		Name:            "Dr. Asha Verma",
		Specialization:  "Cardiology",
		Category:        "cardiology",
		Experience:      8,
		Qualifications:  []string{"MBBS", "MD"},
		ConsultationFee: decimal.RequireFromString("650"),
		Availability: map[string][]string{
			"monday": {"09:00-12:00"},
		},
	}
}

func TestCreateProfileStartsPending(t *testing.T) {
	uc, db := newDoctorFixture(t)
	user := seedUser(t, db, entity.RoleDoctor, "asha@example.com")
	ctx := authContext(user.ID, entity.RoleDoctor)

	resp, err := uc.CreateProfile(ctx, profileRequest())
	require.NoError(t, err)
	assert.Equal(t, string(entity.DoctorStatusPending), resp.Status)
	assert.Equal(t, user.Email, resp.Email)

	// A pending doctor is invisible to the patient directory.
	list, err := uc.GetApprovedDoctors(ctx, "")
	require.NoError(t, err)
	assert.Zero(t, list.Total)
}

func TestCreateProfileRejectsDuplicate(t *testing.T) {
	uc, db := newDoctorFixture(t)
	user := seedUser(t, db, entity.RoleDoctor, "dup@example.com")
	ctx := authContext(user.ID, entity.RoleDoctor)

	_, err := uc.CreateProfile(ctx, profileRequest())
	require.NoError(t, err)

	_, err = uc.CreateProfile(ctx, profileRequest())
	assert.ErrorIs(t, err, ErrDoctorProfileExists)
}

func TestApprovalMakesDoctorVisible(t *testing.T) {
	uc, db := newDoctorFixture(t)
	user := seedUser(t, db, entity.RoleDoctor, "approve-me@example.com")
	admin := seedUser(t, db, entity.RoleAdmin, "admin@example.com")
	ctx := authContext(user.ID, entity.RoleDoctor)

	created, err := uc.CreateProfile(ctx, profileRequest())
	require.NoError(t, err)

	err = uc.UpdateStatus(authContext(admin.ID, entity.RoleAdmin), created.ID, entity.DoctorStatusApproved)
	require.NoError(t, err)

	list, err := uc.GetApprovedDoctors(ctx, "")
	require.NoError(t, err)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, created.ID, list.Doctors[0].ID)

	filtered, err := uc.GetApprovedDoctors(ctx, "dermatology")
	require.NoError(t, err)
	assert.Zero(t, filtered.Total)
}

func TestUpdateStatusUnknownDoctor(t *testing.T) {
	uc, db := newDoctorFixture(t)
	admin := seedUser(t, db, entity.RoleAdmin, "admin2@example.com")

	err := uc.UpdateStatus(authContext(admin.ID, entity.RoleAdmin), uuid.New(), entity.DoctorStatusApproved)
	assert.ErrorIs(t, err, ErrDoctorNotFound)
}

func TestGetMyProfile(t *testing.T) {
	uc, db := newDoctorFixture(t)
	user := seedUser(t, db, entity.RoleDoctor, "me@example.com")
	ctx := authContext(user.ID, entity.RoleDoctor)

	_, err := uc.GetMyProfile(ctx)
	assert.ErrorIs(t, err, ErrDoctorNotFound)

	created, err := uc.CreateProfile(ctx, profileRequest())
	require.NoError(t, err)

	found, err := uc.GetMyProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.True(t, found.ConsultationFee.Equal(decimal.RequireFromString("650")))
}
