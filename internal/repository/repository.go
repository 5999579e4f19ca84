package repository

import (
	"context"
	"errors"
	"time"

	"fieldmatch-backend/internal/domain"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrStaleState is returned when a conditional write found the row in a
	// different state than the one it was guarded on.
	ErrStaleState = errors.New("record state changed")
	ErrDuplicate  = errors.New("duplicate record")
)

type MatchRequestRepository interface {
	// Create expires any overdue open request for the same booking and inserts
	// req as OPEN, returning the requests it expired. Returns ErrDuplicate if
	// another open request exists.
	Create(ctx context.Context, req *domain.MatchRequest, now time.Time) ([]domain.MatchRequest, error)
	GetByID(ctx context.Context, id int64) (*domain.MatchRequest, error)
	// LatestForBooking returns the newest request for the booking that is
	// either still open at now or matched.
	LatestForBooking(ctx context.Context, bookingID int64, now time.Time) (*domain.MatchRequest, error)
	ListOpen(ctx context.Context, q domain.ActiveQuery, now time.Time) ([]domain.MatchRequest, int64, error)
	ListByUser(ctx context.Context, userID int64, q domain.PageQuery) ([]domain.MatchRequest, int64, error)

	// Transition moves an open, unexpired request to a terminal status.
	Transition(ctx context.Context, id int64, to domain.MatchStatus, now time.Time) error
	// Accept closes the request around one participant in a single
	// transaction and returns the applicants that were auto-rejected.
	Accept(ctx context.Context, requestID, participantID int64, now time.Time) ([]domain.Participant, error)
	// ExpireDue marks every overdue open request EXPIRED and returns them.
	ExpireDue(ctx context.Context, now time.Time) ([]domain.MatchRequest, error)

	ListUnsyncedMatched(ctx context.Context, limit int) ([]domain.MatchRequest, error)
	MarkBookingSynced(ctx context.Context, id int64) error
}

type ParticipantRepository interface {
	// Create inserts an application while the parent request is locked.
	// Returns ErrStaleState if the parent is not open at now, ErrDuplicate if
	// the user already holds a non-withdrawn application.
	Create(ctx context.Context, p *domain.Participant, now time.Time) error
	GetByID(ctx context.Context, id int64) (*domain.Participant, error)
	ListByRequest(ctx context.Context, requestID int64) ([]domain.Participant, error)
	FindActiveByUser(ctx context.Context, requestID, userID int64) (*domain.Participant, error)
	// Reject sets a pending participant to REJECTED while the parent is open.
	Reject(ctx context.Context, requestID, participantID int64, reason domain.RejectReason, now time.Time) error
	// Withdraw sets the applicant side to WITHDRAWN while the parent is open.
	Withdraw(ctx context.Context, requestID, participantID int64, now time.Time) error
}

// BookingGateway is the read side of the booking system plus the single
// write this subsystem is allowed to make.
type BookingGateway interface {
	GetBooking(ctx context.Context, bookingID int64) (*domain.Booking, error)
	MarkOpponentFound(ctx context.Context, bookingID, matchRequestID int64) error
}

type UserDirectory interface {
	GetContact(ctx context.Context, userID int64) (*domain.UserContact, error)
	GetContacts(ctx context.Context, userIDs []int64) (map[int64]domain.UserContact, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
}
