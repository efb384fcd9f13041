package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/classwork-go-api/internal/dto"
	"github.com/noah-isme/classwork-go-api/internal/models"
)

type notificationRepoStub struct {
	created []models.Notification
	stored  map[uint]models.Notification
	nextID  uint
}

func newNotificationRepoStub() *notificationRepoStub {
	return &notificationRepoStub{stored: make(map[uint]models.Notification)}
}

func (s *notificationRepoStub) Create(ctx context.Context, notification *models.Notification) error {
	s.nextID++
	notification.ID = s.nextID
	notification.CreatedAt = time.Now()
	s.created = append(s.created, *notification)
	s.stored[notification.ID] = *notification
	return nil
}

func (s *notificationRepoStub) ListByRecipient(ctx context.Context, recipientID uint, limit, offset int) ([]models.Notification, error) {
	var notifications []models.Notification
	for _, notification := range s.stored {
		if notification.RecipientID == recipientID {
			notifications = append(notifications, notification)
		}
	}
	return notifications, nil
}

func (s *notificationRepoStub) MarkRead(ctx context.Context, id, recipientID uint) (models.Notification, error) {
	notification, ok := s.stored[id]
	if !ok || notification.RecipientID != recipientID {
		return models.Notification{}, gorm.ErrRecordNotFound
	}
	notification.Read = true
	s.stored[id] = notification
	return notification, nil
}

func TestNotificationPublishPersistsAndBroadcasts(t *testing.T) {
	repo := newNotificationRepoStub()
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewNotificationService(repo, nil, "", nil, validate, testLogger())

	events, cleanup := svc.Subscribe(5)
	defer cleanup()

	response, err := svc.Publish(context.Background(), dto.NotificationCreateRequest{
		RecipientID: 5,
		Title:       "Grade received",
		Message:     "Your submission was graded.",
		Type:        models.NotificationTypeGradeReceived,
	})
	require.NoError(t, err)
	require.NotZero(t, response.ID)
	require.Len(t, repo.created, 1)

	select {
	case received := <-events:
		require.Equal(t, response.ID, received.ID)
		require.Equal(t, uint(5), received.RecipientID)
	case <-time.After(time.Second):
		t.Fatal("expected a broadcast notification")
	}
}

func TestNotificationPublishSanitizesMessage(t *testing.T) {
	repo := newNotificationRepoStub()
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewNotificationService(repo, nil, "", nil, validate, testLogger())

	response, err := svc.Publish(context.Background(), dto.NotificationCreateRequest{
		RecipientID: 5,
		Title:       "Heads up",
		Message:     `Check <script>alert("x")</script> your grade`,
		Type:        models.NotificationTypeCommentAdded,
	})
	require.NoError(t, err)
	require.NotContains(t, response.Message, "<script>")

	_, err = svc.Publish(context.Background(), dto.NotificationCreateRequest{
		RecipientID: 5,
		Title:       "Empty",
		Message:     "<script>only markup</script>",
		Type:        models.NotificationTypeCommentAdded,
	})
	require.Error(t, err, "a message that sanitizes to nothing is rejected")
}

func TestNotificationPublishFansOutToRedis(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()
	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	repo := newNotificationRepoStub()
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewNotificationService(repo, redisClient, "classwork", nil, validate, testLogger())

	pubsub := redisClient.Subscribe(context.Background(), "classwork:notifications")
	defer func() { _ = pubsub.Close() }()
	_, err = pubsub.Receive(context.Background())
	require.NoError(t, err)

	_, err = svc.Publish(context.Background(), dto.NotificationCreateRequest{
		RecipientID: 7,
		Title:       "Grade received",
		Message:     "Graded.",
		Type:        models.NotificationTypeGradeReceived,
	})
	require.NoError(t, err)

	select {
	case msg := <-pubsub.Channel():
		require.Contains(t, msg.Payload, `"recipient_id":7`)
	case <-time.After(time.Second):
		t.Fatal("expected a redis fan-out event")
	}
}

func TestNotificationMarkReadScopedToRecipient(t *testing.T) {
	repo := newNotificationRepoStub()
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewNotificationService(repo, nil, "", nil, validate, testLogger())

	published, err := svc.Publish(context.Background(), dto.NotificationCreateRequest{
		RecipientID: 5,
		Title:       "Grade received",
		Message:     "Graded.",
		Type:        models.NotificationTypeGradeReceived,
	})
	require.NoError(t, err)

	_, err = svc.MarkRead(context.Background(), published.ID, 9)
	require.ErrorIs(t, err, ErrNotificationNotFound)

	read, err := svc.MarkRead(context.Background(), published.ID, 5)
	require.NoError(t, err)
	require.True(t, read.Read)
}

func TestNotificationUnsubscribeClosesChannel(t *testing.T) {
	repo := newNotificationRepoStub()
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewNotificationService(repo, nil, "", nil, validate, testLogger())

	events, cleanup := svc.Subscribe(5)
	cleanup()

	_, open := <-events
	require.False(t, open)
}
