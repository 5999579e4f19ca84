package domain

import "time"

type OwnerStatus string

const (
	OwnerStatusPending  OwnerStatus = "PENDING"
	OwnerStatusAccepted OwnerStatus = "ACCEPTED"
	OwnerStatusRejected OwnerStatus = "REJECTED"
)

type ApplicantStatus string

const (
	ApplicantStatusAccepted  ApplicantStatus = "ACCEPTED"
	ApplicantStatusWithdrawn ApplicantStatus = "WITHDRAWN"
)

type RejectReason string

const (
	RejectReasonNone          RejectReason = ""
	RejectReasonOwnerRejected RejectReason = "OWNER_REJECTED"
	// RejectReasonMatchClosed marks applicants rejected automatically when
	// another applicant was accepted.
	RejectReasonMatchClosed RejectReason = "MATCH_CLOSED"
)

type Participant struct {
	ID              int64           `json:"id"`
	MatchRequestID  int64           `json:"match_request_id"`
	UserID          int64           `json:"user_id"`
	TeamInfo        string          `json:"team_info"`
	OwnerStatus     OwnerStatus     `json:"status_from_owner"`
	ApplicantStatus ApplicantStatus `json:"status_from_applicant"`
	RejectReason    RejectReason    `json:"reject_reason,omitempty"`
	JoinedAt        time.Time       `json:"joined_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (p *Participant) IsWithdrawn() bool {
	return p.ApplicantStatus == ApplicantStatusWithdrawn
}

// IsDecidable is true while the owner may still accept or reject.
func (p *Participant) IsDecidable() bool {
	return p.OwnerStatus == OwnerStatusPending && p.ApplicantStatus == ApplicantStatusAccepted
}
