package converter

import (
	"healthbridge/internal/delivery/dto"
	"healthbridge/internal/domain/entity"
)

// ChatToResponse converts a Chat entity to its response DTO
func ChatToResponse(chat *entity.Chat) *dto.ChatResponse {
	if chat == nil {
		return nil
	}

	return &dto.ChatResponse{
		ID:            chat.ID,
		AppointmentID: chat.AppointmentID,
		DoctorID:      chat.DoctorID,
		PatientID:     chat.PatientID,
		LastActivity:  chat.LastActivity,
		CreatedAt:     chat.CreatedAt,
	}
}

// MessageToResponse converts a Message entity to its response DTO
func MessageToResponse(message *entity.Message) *dto.MessageResponse {
	if message == nil {
		return nil
	}

	isRead := false
	if message.IsRead != nil {
		isRead = *message.IsRead
	}

	return &dto.MessageResponse{
		ID:         message.ID,
		ChatID:     message.ChatID,
		SenderID:   message.SenderID,
		SenderRole: message.SenderRole,
		SenderName: message.SenderName,
		Body:       message.Body,
		IsRead:     isRead,
		CreatedAt:  message.CreatedAt,
	}
}

// MessagesToResponses converts a slice of Message entities
func MessagesToResponses(messages []entity.Message) []dto.MessageResponse {
	responses := make([]dto.MessageResponse, len(messages))
	for i, message := range messages {
		resp := MessageToResponse(&message)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
