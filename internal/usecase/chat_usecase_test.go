package usecase

import (
	"testing"
	"time"

	"healthbridge/internal/delivery/dto"
	"healthbridge/internal/domain/entity"
	"healthbridge/internal/repository"
	"healthbridge/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newChatFixture(t *testing.T) (ChatUsecase, *gorm.DB, *fakePublisher) {
	t.Helper()
	db := newTestDB(t)
	publisher := &fakePublisher{}
	uc := NewChatUsecase(
		db,
		testLogger(),
		repository.NewChatRepository(),
		repository.NewMessageRepository(),
		repository.NewAppointmentRepository(),
		repository.NewUserRepository(),
		publisher,
	)
	return uc, db, publisher
}

func seedConfirmedAppointment(t *testing.T, db *gorm.DB) (*entity.Appointment, *entity.Doctor, *entity.Patient) {
	t.Helper()
	doctor := seedDoctor(t, db, entity.DoctorStatusApproved, "500")
	patient := seedPatient(t, db)
	appointment := seedAppointment(t, db, doctor, patient, entity.AppointmentStatusConfirmed, slotTime(0))
	return appointment, doctor, patient
}

func TestGetOrCreateChatIsIdempotent(t *testing.T) {
	uc, db, _ := newChatFixture(t)
	appointment, doctor, patient := seedConfirmedAppointment(t, db)

	first, err := uc.GetOrCreateChat(authContext(patient.UserID, entity.RolePatient), appointment.ID)
	require.NoError(t, err)

	second, err := uc.GetOrCreateChat(authContext(patient.UserID, entity.RolePatient), appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	// The other participant resolves to the same conversation.
	third, err := uc.GetOrCreateChat(authContext(doctor.UserID, entity.RoleDoctor), appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, third.ID)

	var count int64
	require.NoError(t, db.Model(&entity.Chat{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGetOrCreateChatDeniesOutsider(t *testing.T) {
	uc, db, _ := newChatFixture(t)
	appointment, _, _ := seedConfirmedAppointment(t, db)
	outsider := seedUser(t, db, entity.RolePatient, "outsider@example.com")

	_, err := uc.GetOrCreateChat(authContext(outsider.ID, entity.RolePatient), appointment.ID)
	assert.ErrorIs(t, err, ErrChatAccessDenied)
}

func TestGetOrCreateChatRequiresConfirmedAppointment(t *testing.T) {
	uc, db, _ := newChatFixture(t)
	doctor := seedDoctor(t, db, entity.DoctorStatusApproved, "500")
	patient := seedPatient(t, db)
	appointment := seedAppointment(t, db, doctor, patient, entity.AppointmentStatusPending, slotTime(0))

	_, err := uc.GetOrCreateChat(authContext(patient.UserID, entity.RolePatient), appointment.ID)
	assert.ErrorIs(t, err, ErrAppointmentNotConfirmed)
}

func TestGetOrCreateChatUnknownAppointment(t *testing.T) {
	uc, db, _ := newChatFixture(t)
	user := seedUser(t, db, entity.RolePatient, "nochat@example.com")

	_, err := uc.GetOrCreateChat(authContext(user.ID, entity.RolePatient), uuid.New())
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestSendMessagePersistsThenPublishes(t *testing.T) {
	uc, db, publisher := newChatFixture(t)
	appointment, _, patient := seedConfirmedAppointment(t, db)

	ctx := authContext(patient.UserID, entity.RolePatient)
	chat, err := uc.GetOrCreateChat(ctx, appointment.ID)
	require.NoError(t, err)

	resp, err := uc.SendMessage(ctx, chat.ID, &dto.SendMessageRequest{Body: "hello doctor"})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, resp.ID)
	assert.Equal(t, "hello doctor", resp.Body)
	assert.Equal(t, entity.RolePatient, resp.SenderRole)

	var stored entity.Message
	require.NoError(t, db.First(&stored, "id = ?", resp.ID).Error)
	assert.Equal(t, chat.ID, stored.ChatID)
	assert.Equal(t, patient.UserID, stored.SenderID)

	require.Len(t, publisher.events, 1)
	event := publisher.events[0]
	assert.Equal(t, service.ChatChannel(chat.ID), event.Channel)
	assert.Equal(t, service.EventNewMessage, event.Event)

	published, ok := event.Payload.(*dto.MessageResponse)
	require.True(t, ok)
	assert.Equal(t, resp.ID, published.ID)
}

func TestSendMessageSurvivesPublishFailure(t *testing.T) {
	uc, db, publisher := newChatFixture(t)
	appointment, _, patient := seedConfirmedAppointment(t, db)

	ctx := authContext(patient.UserID, entity.RolePatient)
	chat, err := uc.GetOrCreateChat(ctx, appointment.ID)
	require.NoError(t, err)

	publisher.err = assert.AnError

	resp, err := uc.SendMessage(ctx, chat.ID, &dto.SendMessageRequest{Body: "still persisted"})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&entity.Message{}).Where("id = ?", resp.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGetChatMessagesOrderedOldestFirst(t *testing.T) {
	uc, db, _ := newChatFixture(t)
	appointment, doctor, patient := seedConfirmedAppointment(t, db)

	ctx := authContext(patient.UserID, entity.RolePatient)
	chat, err := uc.GetOrCreateChat(ctx, appointment.ID)
	require.NoError(t, err)

	base := time.Now().Add(-time.Hour).UTC()
	for i, body := range []string{"first", "second", "third"} {
		message := &entity.Message{
			ChatID:     chat.ID,
			SenderID:   patient.UserID,
			SenderRole: entity.RolePatient,
			SenderName: patient.Name,
			Body:       body,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(message).Error)
	}

	// A second conversation must not bleed into this one.
	otherPatient := seedPatient(t, db)
	otherAppointment := seedAppointment(t, db, doctor, otherPatient, entity.AppointmentStatusConfirmed, slotTime(time.Hour))
	otherChat, err := uc.GetOrCreateChat(authContext(otherPatient.UserID, entity.RolePatient), otherAppointment.ID)
	require.NoError(t, err)
	require.NoError(t, db.Create(&entity.Message{
		ChatID:     otherChat.ID,
		SenderID:   otherPatient.UserID,
		SenderRole: entity.RolePatient,
		SenderName: otherPatient.Name,
		Body:       "unrelated",
	}).Error)

	resp, err := uc.GetChatMessages(ctx, chat.ID)
	require.NoError(t, err)

	require.Equal(t, 3, resp.Total)
	assert.Equal(t, "first", resp.Messages[0].Body)
	assert.Equal(t, "second", resp.Messages[1].Body)
	assert.Equal(t, "third", resp.Messages[2].Body)
}

func TestGetChatMessagesRevalidatesMembership(t *testing.T) {
	uc, db, _ := newChatFixture(t)
	appointment, _, patient := seedConfirmedAppointment(t, db)
	outsider := seedUser(t, db, entity.RolePatient, "reader@example.com")

	chat, err := uc.GetOrCreateChat(authContext(patient.UserID, entity.RolePatient), appointment.ID)
	require.NoError(t, err)

	_, err = uc.GetChatMessages(authContext(outsider.ID, entity.RolePatient), chat.ID)
	assert.ErrorIs(t, err, ErrChatAccessDenied)
}

func TestGetChatMessagesUnknownChat(t *testing.T) {
	uc, db, _ := newChatFixture(t)
	user := seedUser(t, db, entity.RolePatient, "ghost@example.com")

	_, err := uc.GetChatMessages(authContext(user.ID, entity.RolePatient), uuid.New())
	assert.ErrorIs(t, err, ErrChatNotFound)
}
