package service

import (
	"context"

	"fieldmatch-backend/internal/domain"
)

// MatchService is the matching engine: the only writer of match state.
type MatchService interface {
	CreateRequest(ctx context.Context, bookingID, creatorUserID int64, description string) (*domain.MatchRequest, error)
	ListActive(ctx context.Context, q domain.ActiveQuery) (domain.Page[domain.MatchRequest], error)
	GetDetail(ctx context.Context, id int64, viewerUserID *int64) (*domain.MatchRequestDetail, error)
	JoinRequest(ctx context.Context, id, applicantUserID int64, teamInfo string) (*domain.Participant, error)
	AcceptParticipant(ctx context.Context, id, participantID, actingUserID int64) (*domain.MatchSuccess, error)
	RejectOrWithdraw(ctx context.Context, id, participantID, actingUserID int64) error
	CancelRequest(ctx context.Context, id, actingUserID int64) error
	ExpireOldRequests(ctx context.Context) (int, error)
	GetMyHistory(ctx context.Context, userID int64, q domain.PageQuery) (domain.Page[domain.MatchRequest], error)
	GetBookingRequestInfo(ctx context.Context, bookingID int64) (*domain.BookingRequestInfo, error)
	SyncMatchedBookings(ctx context.Context, limit int) (int, error)
}

// EventPublisher receives match events after the state change committed.
// Implementations must not block the caller.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.MatchEvent)
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, domain.MatchEvent) {}
