package handler

import (
	"encoding/json"
	"net/http"

	"healthbridge/internal/delivery/dto"
	"healthbridge/internal/domain/entity"
	"healthbridge/internal/usecase"
	"healthbridge/pkg/response"
	"healthbridge/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type DoctorHandler struct {
	doctorUsecase usecase.DoctorUsecase
	validator     *validator.CustomValidator
}

func NewDoctorHandler(doctorUsecase usecase.DoctorUsecase, validator *validator.CustomValidator) *DoctorHandler {
	return &DoctorHandler{
		doctorUsecase: doctorUsecase,
		validator:     validator,
	}
}

func (h *DoctorHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateDoctorProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	doctor, err := h.doctorUsecase.CreateProfile(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrDoctorProfileExists:
			response.Conflict(w, "Doctor profile already exists")
		case usecase.ErrUserNotFound:
			response.Unauthorized(w, "")
		default:
			response.InternalServerError(w, "Failed to create doctor profile")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Doctor profile created, pending approval", doctor)
}

func (h *DoctorHandler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	doctor, err := h.doctorUsecase.GetMyProfile(r.Context())
	if err != nil {
		switch err {
		case usecase.ErrDoctorNotFound:
			response.NotFound(w, "Doctor profile not found")
		default:
			response.InternalServerError(w, "Failed to get doctor profile")
		}
		return
	}

	response.Success(w, http.StatusOK, "Doctor profile retrieved successfully", doctor)
}

func (h *DoctorHandler) GetApprovedDoctors(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	doctors, err := h.doctorUsecase.GetApprovedDoctors(r.Context(), category)
	if err != nil {
		response.InternalServerError(w, "Failed to list doctors")
		return
	}

	response.Success(w, http.StatusOK, "Doctors retrieved successfully", doctors)
}

func (h *DoctorHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	doctorID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid doctor ID", nil)
		return
	}

	var req dto.UpdateDoctorStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	err = h.doctorUsecase.UpdateStatus(r.Context(), doctorID, entity.DoctorStatus(req.Status))
	if err != nil {
		switch err {
		case usecase.ErrDoctorNotFound:
			response.NotFound(w, "Doctor not found")
		default:
			response.InternalServerError(w, "Failed to update doctor status")
		}
		return
	}

	response.Success(w, http.StatusOK, "Doctor status updated successfully", nil)
}
