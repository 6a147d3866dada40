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
	ErrChatNotFound            = errors.New("chat not found")
	ErrChatAccessDenied        = errors.New("caller is not a participant of this chat")
	ErrAppointmentNotConfirmed = errors.New("chat is only available for confirmed appointments")
)

const messageHistoryLimit = 100

type ChatUsecase interface {
	GetOrCreateChat(ctx context.Context, appointmentID uuid.UUID) (*dto.ChatResponse, error)
	SendMessage(ctx context.Context, chatID uuid.UUID, req *dto.SendMessageRequest) (*dto.MessageResponse, error)
	GetChatMessages(ctx context.Context, chatID uuid.UUID) (*dto.MessageListResponse, error)
}

type chatUsecase struct {
	db          *gorm.DB
	log         *logrus.Logger
	chatRepo    repository.ChatRepository
	messageRepo repository.MessageRepository
	apptRepo    repository.AppointmentRepository
	userRepo    repository.UserRepository
	publisher   service.EventPublisher
}

func NewChatUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	chatRepo repository.ChatRepository,
	messageRepo repository.MessageRepository,
	apptRepo repository.AppointmentRepository,
	userRepo repository.UserRepository,
	publisher service.EventPublisher,
) ChatUsecase {
	return &chatUsecase{
		db:          db,
		log:         log,
		chatRepo:    chatRepo,
		messageRepo: messageRepo,
		apptRepo:    apptRepo,
		userRepo:    userRepo,
		publisher:   publisher,
	}
}

// GetOrCreateChat returns the conversation bound to a confirmed appointment,
// creating it on first access. Idempotent: the unique index on
// appointment_id means a concurrent create loses cleanly and re-fetches.
func (u *chatUsecase) GetOrCreateChat(ctx context.Context, appointmentID uuid.UUID) (*dto.ChatResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotFound
	}

	appointment, err := u.apptRepo.FindByID(u.db.WithContext(ctx), appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}

	if appointment.Doctor.UserID != userID && appointment.Patient.UserID != userID {
		return nil, ErrChatAccessDenied
	}

	if !appointment.IsConfirmed() {
		return nil, ErrAppointmentNotConfirmed
	}

	chat, err := u.chatRepo.FindByAppointmentID(u.db.WithContext(ctx), appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find chat for appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	if chat != nil {
		return converter.ChatToResponse(chat), nil
	}

	chat = &entity.Chat{
		AppointmentID: appointmentID,
		DoctorID:      appointment.DoctorID,
		PatientID:     appointment.PatientID,
	}
	if err := u.chatRepo.Create(u.db.WithContext(ctx), chat); err != nil {
		if isUniqueViolation(err, "appointment_id") {
			// Lost the create race, the winner's chat serves.
			chat, err = u.chatRepo.FindByAppointmentID(u.db.WithContext(ctx), appointmentID)
			if err != nil || chat == nil {
				return nil, ErrChatNotFound
			}
			return converter.ChatToResponse(chat), nil
		}
		u.log.Warnf("Failed to create chat for appointment %s: %+v", appointmentID, err)
		return nil, err
	}

	u.log.Infof("Chat created: id=%s, appointment=%s", chat.ID, appointmentID)
	return converter.ChatToResponse(chat), nil
}

// SendMessage persists the message append-only, then publishes the stored
// row (server-assigned id and timestamp) to the chat's channel. Access is
// assumed pre-validated: a caller only obtains chatID via GetOrCreateChat.
// Publish failures are logged, never surfaced; late subscribers fetch
// history separately.
func (u *chatUsecase) SendMessage(ctx context.Context, chatID uuid.UUID, req *dto.SendMessageRequest) (*dto.MessageResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotFound
	}
	role, _ := middleware.GetRoleFromContext(ctx)

	user, err := u.userRepo.FindByID(u.db.WithContext(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find user %s: %+v", userID, err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	message := &entity.Message{
		ChatID:     chatID,
		SenderID:   userID,
		SenderRole: role,
		SenderName: user.FullName,
		Body:       req.Body,
	}

	if err := u.messageRepo.Create(u.db.WithContext(ctx), message); err != nil {
		u.log.Warnf("Failed to persist message for chat %s: %+v", chatID, err)
		return nil, err
	}

	if err := u.chatRepo.TouchLastActivity(u.db.WithContext(ctx), chatID); err != nil {
		u.log.Warnf("Failed to update chat %s last activity: %+v", chatID, err)
	}

	resp := converter.MessageToResponse(message)
	if err := u.publisher.Publish(ctx, service.ChatChannel(chatID), service.EventNewMessage, resp); err != nil {
		u.log.Warnf("Failed to publish message %s to channel: %+v", message.ID, err)
	}

	return resp, nil
}

// GetChatMessages re-validates that the caller belongs to the chat, then
// returns the most recent window ordered oldest-first.
func (u *chatUsecase) GetChatMessages(ctx context.Context, chatID uuid.UUID) (*dto.MessageListResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotFound
	}

	chat, err := u.chatRepo.FindByID(u.db.WithContext(ctx), chatID)
	if err != nil {
		u.log.Warnf("Failed to find chat %s: %+v", chatID, err)
		return nil, err
	}
	if chat == nil {
		return nil, ErrChatNotFound
	}

	if chat.Doctor.UserID != userID && chat.Patient.UserID != userID {
		return nil, ErrChatAccessDenied
	}

	messages, err := u.messageRepo.FindRecentByChatID(u.db.WithContext(ctx), chatID, messageHistoryLimit)
	if err != nil {
		u.log.Warnf("Failed to load messages for chat %s: %+v", chatID, err)
		return nil, err
	}

	return &dto.MessageListResponse{
		Messages: converter.MessagesToResponses(messages),
		Total:    len(messages),
	}, nil
}
