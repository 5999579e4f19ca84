package domain

import (
	"fmt"
	"time"
)

type MatchStatus string

const (
	MatchStatusOpen      MatchStatus = "OPEN"
	MatchStatusMatched   MatchStatus = "MATCHED"
	MatchStatusCancelled MatchStatus = "CANCELLED"
	MatchStatusExpired   MatchStatus = "EXPIRED"
)

const (
	MaxDescriptionLength = 500
	MaxTeamInfoLength    = 200
)

// matchTransitions lists every allowed status change. Anything absent is rejected.
var matchTransitions = map[MatchStatus][]MatchStatus{
	MatchStatusOpen: {MatchStatusMatched, MatchStatusCancelled, MatchStatusExpired},
}

// ParseMatchStatus converts a stored status string into the closed enumeration.
func ParseMatchStatus(s string) (MatchStatus, error) {
	switch st := MatchStatus(s); st {
	case MatchStatusOpen, MatchStatusMatched, MatchStatusCancelled, MatchStatusExpired:
		return st, nil
	}
	return "", fmt.Errorf("unknown match status %q", s)
}

func (s MatchStatus) IsTerminal() bool {
	return s == MatchStatusMatched || s == MatchStatusCancelled || s == MatchStatusExpired
}

// CanTransition reports whether from -> to is in the transition table.
func CanTransition(from, to MatchStatus) bool {
	for _, next := range matchTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type MatchRequest struct {
	ID                   int64           `json:"id"`
	BookingID            int64           `json:"booking_id"`
	CreatorUserID        int64           `json:"creator_user_id"`
	Description          string          `json:"description"`
	Status               MatchStatus     `json:"status"`
	MatchedParticipantID *int64          `json:"matched_participant_id,omitempty"`
	Booking              BookingSnapshot `json:"booking"`
	BookingSynced        bool            `json:"-"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
	ExpiresAt            time.Time       `json:"expires_at"`
}

// IsExpired is true once an open request has reached its expiry, whether or
// not the sweeper has persisted the EXPIRED status yet.
func (m *MatchRequest) IsExpired(now time.Time) bool {
	return m.Status == MatchStatusOpen && !now.Before(m.ExpiresAt)
}

// EffectiveStatus is the status every read and write decision is based on.
func (m *MatchRequest) EffectiveStatus(now time.Time) MatchStatus {
	if m.IsExpired(now) {
		return MatchStatusExpired
	}
	return m.Status
}

func (m *MatchRequest) IsOpen(now time.Time) bool {
	return m.EffectiveStatus(now) == MatchStatusOpen
}
