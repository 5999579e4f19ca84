package domain

import "time"

// MatchRequestDetail is the full view of one request for a given viewer.
type MatchRequestDetail struct {
	Request      MatchRequest      `json:"request"`
	Creator      *UserContact      `json:"creator,omitempty"`
	IsCreator    bool              `json:"is_creator"`
	Participants []ParticipantView `json:"participants"`
}

type ParticipantView struct {
	Participant
	UserName string `json:"user_name"`
	IsViewer bool   `json:"is_viewer"`
}

// MatchSuccess is returned to the owner after accepting an applicant.
type MatchSuccess struct {
	MatchRequestID int64           `json:"match_request_id"`
	BookingID      int64           `json:"booking_id"`
	Booking        BookingSnapshot `json:"booking"`
	Participant    Participant     `json:"participant"`
	Creator        UserContact     `json:"creator"`
	Opponent       UserContact     `json:"opponent"`
	MatchedAt      time.Time       `json:"matched_at"`
}

type BookingRequestInfo struct {
	HasRequest     bool   `json:"has_request"`
	MatchRequestID *int64 `json:"match_request_id,omitempty"`
}
