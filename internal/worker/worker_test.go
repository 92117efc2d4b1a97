package worker

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"estimate-service/internal/broker"
	"estimate-service/internal/models"
	"estimate-service/internal/util"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	util.SetLogger(zap.NewNop())
	os.Exit(m.Run())
}

type sentMail struct {
	kind      string
	recipient string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (f *fakeMailer) Send(_ context.Context, kind, recipient string, _ map[string]string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{kind: kind, recipient: recipient})
	return nil
}

// sliceSource replays fixed messages, then returns
type sliceSource struct {
	messages []kafka.Message
	handled  int
	closed   bool
}

func (s *sliceSource) StartConsuming(ctx context.Context, handler broker.MessageHandler) error {
	for _, msg := range s.messages {
		if err := handler(ctx, msg); err != nil {
			return err
		}
		s.handled++
	}
	return nil
}

func (s *sliceSource) Close() error {
	s.closed = true
	return nil
}

func notificationMessage(t *testing.T, kind, recipient string) kafka.Message {
	t.Helper()
	b, err := json.Marshal(models.NotificationRequestedEvent{
		BaseEvent: models.BaseEvent{EventID: "e1", EventType: models.EventTypeNotificationRequested},
		Kind:      kind,
		Recipient: recipient,
	})
	require.NoError(t, err)
	return kafka.Message{Value: b}
}

func TestWorkerDeliversQueuedNotifications(t *testing.T) {
	source := &sliceSource{messages: []kafka.Message{
		notificationMessage(t, models.NotificationEstimateReceived, "minsu@example.com"),
		notificationMessage(t, models.NotificationEstimateAdmin, "admin@example.com"),
	}}
	mail := &fakeMailer{}

	w := NewNotificationWorker(source, mail)
	require.NoError(t, w.Start(context.Background()))

	assert.Equal(t, 2, source.handled)
	assert.Equal(t, []sentMail{
		{kind: models.NotificationEstimateReceived, recipient: "minsu@example.com"},
		{kind: models.NotificationEstimateAdmin, recipient: "admin@example.com"},
	}, mail.sent)

	require.NoError(t, w.Stop())
	assert.True(t, source.closed)
}

func TestWorkerDropsUndeliverableMail(t *testing.T) {
	source := &sliceSource{messages: []kafka.Message{
		notificationMessage(t, models.NotificationContractSigned, "minsu@example.com"),
	}}
	w := NewNotificationWorker(source, &fakeMailer{err: errors.New("smtp down")})

	require.NoError(t, w.Start(context.Background()))
	assert.Equal(t, 1, source.handled)
}

func TestInlineNotify(t *testing.T) {
	mail := &fakeMailer{}
	w := NewNotificationWorker(nil, mail)

	require.NoError(t, w.Notify(context.Background(), models.NotificationContractSigned, "minsu@example.com", nil))
	assert.Len(t, mail.sent, 1)

	mail.err = errors.New("smtp down")
	assert.Error(t, w.Notify(context.Background(), models.NotificationContractSigned, "minsu@example.com", nil))

	assert.NoError(t, w.Stop())
}
