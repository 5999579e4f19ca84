package notify

import (
	"context"
	"fmt"

	"fieldmatch-backend/internal/domain"
	"fieldmatch-backend/internal/repository"
)

// InAppSink writes one inbox row per recipient.
type InAppSink struct {
	noteRepo repository.NotificationRepository
}

func NewInAppSink(noteRepo repository.NotificationRepository) *InAppSink {
	return &InAppSink{noteRepo: noteRepo}
}

func (s *InAppSink) Name() string { return "in_app" }

func (s *InAppSink) Deliver(ctx context.Context, event domain.MatchEvent) error {
	msg, ok := Render(event)
	if !ok {
		return nil
	}
	for _, userID := range event.RecipientUserIDs {
		note := &domain.Notification{
			UserID:     userID,
			Title:      msg.Title,
			Message:    msg.Body,
			Attributes: attributes(event),
			CreatedAt:  event.OccurredAt,
		}
		if err := s.noteRepo.Create(ctx, note); err != nil {
			return fmt.Errorf("create notification for user %d: %w", userID, err)
		}
	}
	return nil
}
