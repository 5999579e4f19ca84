package domain

import (
	"time"

	"github.com/google/uuid"
)

type MatchEventType string

const (
	EventMatchRequestCreated   MatchEventType = "MATCH_REQUEST_CREATED"
	EventParticipantJoined     MatchEventType = "PARTICIPANT_JOINED"
	EventParticipantAccepted   MatchEventType = "PARTICIPANT_ACCEPTED"
	EventParticipantRejected   MatchEventType = "PARTICIPANT_REJECTED"
	EventParticipantWithdrawn  MatchEventType = "PARTICIPANT_WITHDRAWN"
	EventMatchRequestCancelled MatchEventType = "MATCH_REQUEST_CANCELLED"
	EventMatchRequestExpired   MatchEventType = "MATCH_REQUEST_EXPIRED"
)

// MatchEvent is emitted after a state change has committed.
type MatchEvent struct {
	ID               string          `json:"id"`
	Type             MatchEventType  `json:"type"`
	MatchRequestID   int64           `json:"match_request_id"`
	BookingID        int64           `json:"booking_id"`
	ParticipantID    int64           `json:"participant_id,omitempty"`
	ActorUserID      int64           `json:"actor_user_id,omitempty"`
	RecipientUserIDs []int64         `json:"recipient_user_ids"`
	Reason           RejectReason    `json:"reason,omitempty"`
	Booking          BookingSnapshot `json:"booking"`
	OccurredAt       time.Time       `json:"occurred_at"`
}

func NewMatchEvent(eventType MatchEventType, req *MatchRequest, occurredAt time.Time, recipients ...int64) MatchEvent {
	return MatchEvent{
		ID:               uuid.NewString(),
		Type:             eventType,
		MatchRequestID:   req.ID,
		BookingID:        req.BookingID,
		RecipientUserIDs: recipients,
		Booking:          req.Booking,
		OccurredAt:       occurredAt,
	}
}
