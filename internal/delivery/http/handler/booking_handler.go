package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"healthbridge/internal/delivery/dto"
	"healthbridge/internal/service"
	"healthbridge/internal/usecase"
	"healthbridge/pkg/response"
	"healthbridge/pkg/validator"
)

type BookingHandler struct {
	bookingUsecase usecase.BookingUsecase
	validator      *validator.CustomValidator
}

func NewBookingHandler(bookingUsecase usecase.BookingUsecase, validator *validator.CustomValidator) *BookingHandler {
	return &BookingHandler{
		bookingUsecase: bookingUsecase,
		validator:      validator,
	}
}

// CheckSlot is advisory only, the authoritative check happens on confirm.
func (h *BookingHandler) CheckSlot(w http.ResponseWriter, r *http.Request) {
	var req dto.CheckSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	availability := h.bookingUsecase.CheckSlot(r.Context(), &req)
	response.Success(w, http.StatusOK, "Slot availability checked", availability)
}

func (h *BookingHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	order, err := h.bookingUsecase.CreateOrder(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrDoctorNotFound:
			response.NotFound(w, "Doctor not found")
		case usecase.ErrDoctorNotApproved:
			response.UnprocessableEntity(w, "Doctor is not available for booking")
		case usecase.ErrUserNotFound:
			response.Unauthorized(w, "")
		default:
			response.InternalServerError(w, "Failed to create payment order")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Payment order created successfully", order)
}

func (h *BookingHandler) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	var req dto.ConfirmBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	booking, err := h.bookingUsecase.ConfirmBooking(r.Context(), &req)
	if err != nil {
		var reconciliation *usecase.ReconciliationError
		switch {
		case errors.Is(err, service.ErrMissingPaymentFields):
			response.Error(w, http.StatusBadRequest, "Missing required payment verification fields", nil)
		case errors.Is(err, service.ErrSignatureMismatch):
			response.Error(w, http.StatusBadRequest, "Payment verification failed", nil)
		case errors.Is(err, service.ErrPaymentConfig):
			response.InternalServerError(w, "Payment verification configuration error")
		case errors.Is(err, usecase.ErrDoctorNotFound):
			response.NotFound(w, "Doctor not found")
		case errors.Is(err, usecase.ErrDoctorNotApproved):
			response.UnprocessableEntity(w, "Doctor is not available for booking")
		case errors.Is(err, usecase.ErrSlotTaken):
			response.Conflict(w, "This slot has just been booked by someone else")
		case errors.Is(err, usecase.ErrUserNotFound):
			response.Unauthorized(w, "")
		case errors.As(err, &reconciliation):
			// Funds are captured; the payment reference must reach the
			// caller so support can reconcile manually.
			response.Error(w, http.StatusInternalServerError,
				"Payment succeeded but the appointment could not be created, contact support with your payment reference",
				map[string]string{"payment_id": reconciliation.PaymentID})
		default:
			response.InternalServerError(w, "Failed to confirm booking")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Appointment booked successfully", booking)
}
