package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type CreateOrderRequest struct {
	DoctorID uuid.UUID `json:"doctor_id" validate:"required"`
}

// ConfirmBookingRequest carries the checkout result plus the slot being
// booked. OrderID/PaymentID/Signature come back from the client-side
// checkout and are verified server-side before anything is persisted.
type ConfirmBookingRequest struct {
	OrderID         string    `json:"order_id" validate:"required"`
	PaymentID       string    `json:"payment_id" validate:"required"`
	Signature       string    `json:"signature" validate:"required"`
	DoctorID        uuid.UUID `json:"doctor_id" validate:"required"`
	AppointmentDate time.Time `json:"appointment_date" validate:"required"`
	Reason          string    `json:"reason" validate:"omitempty,max=2000"`
}

// Response DTOs

type PaymentOrderResponse struct {
	OrderID   string          `json:"order_id"`
	Amount    int64           `json:"amount"`
	Currency  string          `json:"currency"`
	DoctorFee decimal.Decimal `json:"doctor_fee"`
}

type ConfirmBookingResponse struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	Status        string    `json:"status"`
	PaymentID     string    `json:"payment_id"`
}
