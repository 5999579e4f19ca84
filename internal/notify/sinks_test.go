package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"fieldmatch-backend/internal/domain"
	"fieldmatch-backend/internal/notify"
	"fieldmatch-backend/internal/repository/memory"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func matchedEvent(eventType domain.MatchEventType, recipients ...int64) domain.MatchEvent {
	start := time.Date(2030, 6, 1, 18, 0, 0, 0, time.UTC)
	req := &domain.MatchRequest{
		ID:        7,
		BookingID: 100,
		Booking: domain.BookingSnapshot{
			FieldName:   "Pitch 2",
			ComplexName: "Riverside",
			SlotStart:   start,
			SlotEnd:     start.Add(90 * time.Minute),
		},
	}
	ev := domain.NewMatchEvent(eventType, req, start.Add(-48*time.Hour), recipients...)
	ev.ParticipantID = 3
	return ev
}

func TestRender(t *testing.T) {
	msg, ok := notify.Render(matchedEvent(domain.EventParticipantAccepted))
	require.True(t, ok)
	assert.Equal(t, "Match confirmed", msg.Title)
	assert.Contains(t, msg.Body, "Riverside, Pitch 2 on 2030-06-01 18:00-19:30")

	closed := matchedEvent(domain.EventParticipantRejected)
	closed.Reason = domain.RejectReasonMatchClosed
	msg, ok = notify.Render(closed)
	require.True(t, ok)
	assert.Equal(t, "Match filled", msg.Title)

	declined := matchedEvent(domain.EventParticipantRejected)
	declined.Reason = domain.RejectReasonOwnerRejected
	msg, _ = notify.Render(declined)
	assert.Equal(t, "Application declined", msg.Title)

	_, ok = notify.Render(matchedEvent(domain.EventMatchRequestCreated))
	assert.False(t, ok)
}

func TestInAppSink(t *testing.T) {
	store := memory.NewStore()
	sink := notify.NewInAppSink(store.NotificationRepository)
	ctx := context.Background()

	require.NoError(t, sink.Deliver(ctx, matchedEvent(domain.EventParticipantAccepted, 1, 2)))
	require.NoError(t, sink.Deliver(ctx, matchedEvent(domain.EventMatchRequestCreated)))

	notes := store.Notifications()
	require.Len(t, notes, 2)
	assert.Equal(t, int64(1), notes[0].UserID)
	assert.Equal(t, int64(2), notes[1].UserID)
	assert.Equal(t, "Match confirmed", notes[0].Title)
	assert.Equal(t, "7", notes[0].Attributes["match_request_id"])
	assert.Equal(t, "3", notes[0].Attributes["participant_id"])
	assert.Equal(t, string(domain.EventParticipantAccepted), notes[0].Attributes["type"])
}

type sentEmail struct {
	to, toName, subject, body string
}

type fakeSender struct {
	sent []sentEmail
	fail map[string]error
}

func (s *fakeSender) Send(ctx context.Context, to, toName, subject, body string) error {
	if err := s.fail[to]; err != nil {
		return err
	}
	s.sent = append(s.sent, sentEmail{to, toName, subject, body})
	return nil
}

func TestEmailSink(t *testing.T) {
	store := memory.NewStore()
	store.PutUser(domain.UserContact{ID: 1, Name: "Alex", Email: "alex@example.com"})
	store.PutUser(domain.UserContact{ID: 2, Name: "Blake"})
	store.PutUser(domain.UserContact{ID: 3, Name: "Casey", Email: "casey@example.com"})
	ctx := context.Background()

	t.Run("Skips users without address", func(t *testing.T) {
		sender := &fakeSender{}
		sink := notify.NewEmailSink(store.UserDirectory, sender)
		require.NoError(t, sink.Deliver(ctx, matchedEvent(domain.EventMatchRequestExpired, 1, 2, 99)))

		require.Len(t, sender.sent, 1)
		assert.Equal(t, "alex@example.com", sender.sent[0].to)
		assert.Equal(t, "Match request expired", sender.sent[0].subject)
		assert.Contains(t, sender.sent[0].body, "Hello Alex,")
	})

	t.Run("Reports failed sends", func(t *testing.T) {
		sender := &fakeSender{fail: map[string]error{"alex@example.com": errors.New("mailbox full")}}
		sink := notify.NewEmailSink(store.UserDirectory, sender)
		err := sink.Deliver(ctx, matchedEvent(domain.EventMatchRequestCancelled, 1, 3))

		assert.ErrorContains(t, err, "mailbox full")
		require.Len(t, sender.sent, 1)
		assert.Equal(t, "casey@example.com", sender.sent[0].to)
	})

	t.Run("Created events are not mailed", func(t *testing.T) {
		sender := &fakeSender{}
		sink := notify.NewEmailSink(store.UserDirectory, sender)
		require.NoError(t, sink.Deliver(ctx, matchedEvent(domain.EventMatchRequestCreated, 1)))
		assert.Empty(t, sender.sent)
	})
}

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaSink(t *testing.T) {
	writer := &fakeWriter{}
	sink := notify.NewKafkaSink(writer, "match-events")
	ev := matchedEvent(domain.EventMatchRequestCreated)

	require.NoError(t, sink.Deliver(context.Background(), ev))
	require.Len(t, writer.msgs, 1)
	msg := writer.msgs[0]
	assert.Equal(t, "7", string(msg.Key))
	assert.Equal(t, ev.OccurredAt, msg.Time)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, string(domain.EventMatchRequestCreated), string(msg.Headers[0].Value))

	var decoded domain.MatchEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, ev.ID, decoded.ID)
	assert.Equal(t, "Riverside", decoded.Booking.ComplexName)

	writer.err = errors.New("leader not available")
	assert.Error(t, sink.Deliver(context.Background(), ev))

	require.NoError(t, sink.Close())
	assert.True(t, writer.closed)
}
