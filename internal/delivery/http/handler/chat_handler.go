package handler

import (
	"encoding/json"
	"net/http"

	"healthbridge/internal/delivery/dto"
	"healthbridge/internal/usecase"
	"healthbridge/pkg/response"
	"healthbridge/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type ChatHandler struct {
	chatUsecase usecase.ChatUsecase
	validator   *validator.CustomValidator
}

func NewChatHandler(chatUsecase usecase.ChatUsecase, validator *validator.CustomValidator) *ChatHandler {
	return &ChatHandler{
		chatUsecase: chatUsecase,
		validator:   validator,
	}
}

func (h *ChatHandler) GetOrCreateChat(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	appointmentID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid appointment ID", nil)
		return
	}

	chat, err := h.chatUsecase.GetOrCreateChat(r.Context(), appointmentID)
	if err != nil {
		switch err {
		case usecase.ErrAppointmentNotFound:
			response.NotFound(w, "Appointment not found")
		case usecase.ErrChatAccessDenied:
			response.Forbidden(w, "You are not a participant of this appointment")
		case usecase.ErrAppointmentNotConfirmed:
			response.Conflict(w, "Chat is only available for confirmed appointments")
		case usecase.ErrUserNotFound:
			response.Unauthorized(w, "")
		default:
			response.InternalServerError(w, "Failed to open chat")
		}
		return
	}

	response.Success(w, http.StatusOK, "Chat ready", chat)
}

func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	chatID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid chat ID", nil)
		return
	}

	var req dto.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	message, err := h.chatUsecase.SendMessage(r.Context(), chatID, &req)
	if err != nil {
		switch err {
		case usecase.ErrUserNotFound:
			response.Unauthorized(w, "")
		default:
			response.InternalServerError(w, "Failed to send message")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Message sent", message)
}

func (h *ChatHandler) GetChatMessages(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	chatID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid chat ID", nil)
		return
	}

	messages, err := h.chatUsecase.GetChatMessages(r.Context(), chatID)
	if err != nil {
		switch err {
		case usecase.ErrChatNotFound:
			response.NotFound(w, "Chat not found")
		case usecase.ErrChatAccessDenied:
			response.Forbidden(w, "You are not a participant of this chat")
		case usecase.ErrUserNotFound:
			response.Unauthorized(w, "")
		default:
			response.InternalServerError(w, "Failed to load messages")
		}
		return
	}

	response.Success(w, http.StatusOK, "Messages retrieved successfully", messages)
}
