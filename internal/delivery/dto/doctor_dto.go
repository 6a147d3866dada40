package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type CreateDoctorProfileRequest struct {
	Name            string              `json:"name" validate:"required,min=2,max=255"`
	Phone           string              `json:"phone" validate:"omitempty,max=20"`
	Specialization  string              `json:"specialization" validate:"required,max=100"`
	Category        string              `json:"category" validate:"required,max=100"`
	Experience      int                 `json:"experience" validate:"gte=0"`
	Qualifications  []string            `json:"qualifications" validate:"omitempty,dive,max=255"`
	ConsultationFee decimal.Decimal     `json:"consultation_fee" validate:"required"`
	Availability    map[string][]string `json:"availability"`
}

type UpdateDoctorStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

// Response DTOs

type DoctorResponse struct {
	ID              uuid.UUID           `json:"id"`
	Name            string              `json:"name"`
	Email           string              `json:"email"`
	Phone           string              `json:"phone,omitempty"`
	Specialization  string              `json:"specialization"`
	Category        string              `json:"category"`
	Experience      int                 `json:"experience"`
	Qualifications  []string            `json:"qualifications,omitempty"`
	ConsultationFee decimal.Decimal     `json:"consultation_fee"`
	Availability    map[string][]string `json:"availability,omitempty"`
	Status          string              `json:"status"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

type DoctorListResponse struct {
	Doctors []DoctorResponse `json:"doctors"`
	Total   int              `json:"total"`
}
