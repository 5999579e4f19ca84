package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"fieldmatch-backend/internal/domain"
	"fieldmatch-backend/internal/logger"
	"fieldmatch-backend/internal/repository"
	"fieldmatch-backend/internal/utils"
)

// MatchPolicy holds the lifecycle knobs for match requests.
type MatchPolicy struct {
	RequestTTL  time.Duration
	JoinCutoff  time.Duration
	MaxPageSize int
}

type MatchOption func(*matchService)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) MatchOption {
	return func(s *matchService) { s.now = now }
}

type matchService struct {
	requestRepo     repository.MatchRequestRepository
	participantRepo repository.ParticipantRepository
	bookings        repository.BookingGateway
	users           repository.UserDirectory
	events          EventPublisher
	policy          MatchPolicy
	now             func() time.Time
}

func NewMatchService(
	requestRepo repository.MatchRequestRepository,
	participantRepo repository.ParticipantRepository,
	bookings repository.BookingGateway,
	users repository.UserDirectory,
	events EventPublisher,
	policy MatchPolicy,
	opts ...MatchOption,
) MatchService {
	if events == nil {
		events = NopPublisher{}
	}
	if policy.RequestTTL <= 0 {
		policy.RequestTTL = 72 * time.Hour
	}
	if policy.MaxPageSize <= 0 {
		policy.MaxPageSize = domain.MaxPageSize
	}
	s := &matchService{
		requestRepo:     requestRepo,
		participantRepo: participantRepo,
		bookings:        bookings,
		users:           users,
		events:          events,
		policy:          policy,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *matchService) CreateRequest(ctx context.Context, bookingID, creatorUserID int64, description string) (*domain.MatchRequest, error) {
	logger.EnterMethod("matchService.CreateRequest", "bookingID", bookingID, "userID", creatorUserID)

	description = strings.TrimSpace(description)
	verr := &domain.ValidationError{}
	if bookingID <= 0 {
		verr.Add("bookingId", "is required")
	}
	if utf8.RuneCountInString(description) > domain.MaxDescriptionLength {
		verr.Add("description", "must be at most 500 characters")
	}
	if verr.HasErrors() {
		logger.ExitMethodWithError("matchService.CreateRequest", verr, "bookingID", bookingID)
		return nil, verr
	}

	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		err = mapStoreError(err, "booking %d not found", bookingID)
		logger.ExitMethodWithError("matchService.CreateRequest", err, "bookingID", bookingID)
		return nil, err
	}
	// Someone else's booking is reported as missing.
	if booking.UserID != creatorUserID {
		err = domain.NotFoundf("booking %d not found", bookingID)
		logger.ExitMethodWithError("matchService.CreateRequest", err, "bookingID", bookingID)
		return nil, err
	}
	if !booking.IsMatchable() {
		err = domain.Conflictf("booking %d is %s and cannot look for an opponent", bookingID, strings.ToLower(string(booking.Status)))
		logger.ExitMethodWithError("matchService.CreateRequest", err, "bookingID", bookingID)
		return nil, err
	}
	if booking.OpponentFound {
		err = domain.Conflictf("booking %d already has an opponent", bookingID)
		logger.ExitMethodWithError("matchService.CreateRequest", err, "bookingID", bookingID)
		return nil, err
	}

	now := s.now()
	expiresAt := utils.ExpiryFor(now, booking.SlotStart, s.policy.RequestTTL, s.policy.JoinCutoff)
	if !now.Before(expiresAt) {
		err = domain.Conflictf("booking %d starts too soon to look for an opponent", bookingID)
		logger.ExitMethodWithError("matchService.CreateRequest", err, "bookingID", bookingID)
		return nil, err
	}

	existing, err := s.requestRepo.LatestForBooking(ctx, bookingID, now)
	switch {
	case err == nil && existing.Status == domain.MatchStatusMatched:
		err = domain.Conflictf("booking %d is already matched", bookingID)
		logger.ExitMethodWithError("matchService.CreateRequest", err, "bookingID", bookingID)
		return nil, err
	case err == nil:
		err = domain.Conflictf("booking %d already has an open match request", bookingID)
		logger.ExitMethodWithError("matchService.CreateRequest", err, "bookingID", bookingID)
		return nil, err
	case !errors.Is(err, repository.ErrNotFound):
		logger.ExitMethodWithError("matchService.CreateRequest", err, "bookingID", bookingID)
		return nil, err
	}

	req := &domain.MatchRequest{
		BookingID:     bookingID,
		CreatorUserID: creatorUserID,
		Description:   description,
		Status:        domain.MatchStatusOpen,
		Booking:       booking.Snapshot(),
		ExpiresAt:     expiresAt,
	}
	expired, err := s.requestRepo.Create(ctx, req, now)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			err = domain.Conflictf("booking %d already has an open match request", bookingID)
		}
		logger.ExitMethodWithError("matchService.CreateRequest", err, "bookingID", bookingID)
		return nil, err
	}

	s.publishExpired(ctx, expired, now)
	s.events.Publish(ctx, domain.NewMatchEvent(domain.EventMatchRequestCreated, req, now))

	logger.ExitMethod("matchService.CreateRequest", "matchRequestID", req.ID, "expiresAt", req.ExpiresAt)
	return req, nil
}

func (s *matchService) ListActive(ctx context.Context, q domain.ActiveQuery) (domain.Page[domain.MatchRequest], error) {
	page, err := q.PageQuery.Normalize(s.policy.MaxPageSize)
	if err != nil {
		return domain.Page[domain.MatchRequest]{}, err
	}
	q.PageQuery = page

	items, total, err := s.requestRepo.ListOpen(ctx, q, s.now())
	if err != nil {
		return domain.Page[domain.MatchRequest]{}, err
	}
	return domain.Page[domain.MatchRequest]{Items: items, Page: page.Page, Size: page.Size, Total: total}, nil
}

func (s *matchService) GetDetail(ctx context.Context, id int64, viewerUserID *int64) (*domain.MatchRequestDetail, error) {
	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "match request %d not found", id)
	}
	participants, err := s.participantRepo.ListByRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	userIDs := make([]int64, 0, len(participants)+1)
	userIDs = append(userIDs, req.CreatorUserID)
	for _, p := range participants {
		userIDs = append(userIDs, p.UserID)
	}
	contacts, err := s.users.GetContacts(ctx, userIDs)
	if err != nil {
		// Names are decoration; the detail is still correct without them.
		logger.WarnContext(ctx, "Failed to load user contacts for match detail", "matchRequestID", id, "error", err)
		contacts = map[int64]domain.UserContact{}
	}

	viewer := int64(0)
	if viewerUserID != nil {
		viewer = *viewerUserID
	}

	req.Status = req.EffectiveStatus(s.now())
	detail := &domain.MatchRequestDetail{
		Request:      *req,
		IsCreator:    viewer != 0 && viewer == req.CreatorUserID,
		Participants: make([]domain.ParticipantView, 0, len(participants)),
	}

	opponentID := int64(0)
	for _, p := range participants {
		if p.OwnerStatus == domain.OwnerStatusAccepted {
			opponentID = p.UserID
		}
		detail.Participants = append(detail.Participants, domain.ParticipantView{
			Participant: p,
			UserName:    contacts[p.UserID].Name,
			IsViewer:    viewer != 0 && viewer == p.UserID,
		})
	}

	creator := contacts[req.CreatorUserID]
	creator.ID = req.CreatorUserID
	// Contact details are only shared between the two matched sides.
	if !detail.IsCreator && (viewer == 0 || viewer != opponentID) {
		creator.Email = ""
		creator.PhoneNumber = ""
	}
	detail.Creator = &creator

	return detail, nil
}

func (s *matchService) JoinRequest(ctx context.Context, id, applicantUserID int64, teamInfo string) (*domain.Participant, error) {
	logger.EnterMethod("matchService.JoinRequest", "matchRequestID", id, "userID", applicantUserID)

	teamInfo = strings.TrimSpace(teamInfo)
	if utf8.RuneCountInString(teamInfo) > domain.MaxTeamInfoLength {
		err := domain.NewValidationError("teamInfo", "must be at most 200 characters")
		logger.ExitMethodWithError("matchService.JoinRequest", err, "matchRequestID", id)
		return nil, err
	}

	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		err = mapStoreError(err, "match request %d not found", id)
		logger.ExitMethodWithError("matchService.JoinRequest", err, "matchRequestID", id)
		return nil, err
	}
	now := s.now()
	if status := req.EffectiveStatus(now); status != domain.MatchStatusOpen {
		err = domain.Conflictf("match request %d is %s", id, strings.ToLower(string(status)))
		logger.ExitMethodWithError("matchService.JoinRequest", err, "matchRequestID", id)
		return nil, err
	}
	if req.CreatorUserID == applicantUserID {
		err = domain.Conflictf("cannot join your own match request")
		logger.ExitMethodWithError("matchService.JoinRequest", err, "matchRequestID", id)
		return nil, err
	}

	if _, err := s.participantRepo.FindActiveByUser(ctx, id, applicantUserID); err == nil {
		err = domain.Conflictf("you have already applied to match request %d", id)
		logger.ExitMethodWithError("matchService.JoinRequest", err, "matchRequestID", id)
		return nil, err
	} else if !errors.Is(err, repository.ErrNotFound) {
		logger.ExitMethodWithError("matchService.JoinRequest", err, "matchRequestID", id)
		return nil, err
	}

	p := &domain.Participant{
		MatchRequestID:  id,
		UserID:          applicantUserID,
		TeamInfo:        teamInfo,
		OwnerStatus:     domain.OwnerStatusPending,
		ApplicantStatus: domain.ApplicantStatusAccepted,
	}
	if err := s.participantRepo.Create(ctx, p, now); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			err = domain.Conflictf("you have already applied to match request %d", id)
		case errors.Is(err, repository.ErrStaleState):
			err = domain.Conflictf("match request %d is no longer open", id)
		case errors.Is(err, repository.ErrNotFound):
			err = domain.NotFoundf("match request %d not found", id)
		}
		logger.ExitMethodWithError("matchService.JoinRequest", err, "matchRequestID", id)
		return nil, err
	}

	ev := domain.NewMatchEvent(domain.EventParticipantJoined, req, now, req.CreatorUserID)
	ev.ParticipantID = p.ID
	ev.ActorUserID = applicantUserID
	s.events.Publish(ctx, ev)

	logger.ExitMethod("matchService.JoinRequest", "matchRequestID", id, "participantID", p.ID)
	return p, nil
}

func (s *matchService) AcceptParticipant(ctx context.Context, id, participantID, actingUserID int64) (*domain.MatchSuccess, error) {
	logger.EnterMethod("matchService.AcceptParticipant", "matchRequestID", id, "participantID", participantID, "userID", actingUserID)

	req, p, err := s.loadPair(ctx, id, participantID)
	if err != nil {
		logger.ExitMethodWithError("matchService.AcceptParticipant", err, "matchRequestID", id)
		return nil, err
	}
	if req.CreatorUserID != actingUserID {
		err = domain.Unauthorizedf("only the request owner can accept applicants")
		logger.ExitMethodWithError("matchService.AcceptParticipant", err, "matchRequestID", id)
		return nil, err
	}
	now := s.now()
	if status := req.EffectiveStatus(now); !domain.CanTransition(status, domain.MatchStatusMatched) {
		err = domain.Conflictf("match request %d is %s", id, strings.ToLower(string(status)))
		logger.ExitMethodWithError("matchService.AcceptParticipant", err, "matchRequestID", id)
		return nil, err
	}
	if !p.IsDecidable() {
		err = domain.Conflictf("participant %d is no longer pending", participantID)
		logger.ExitMethodWithError("matchService.AcceptParticipant", err, "matchRequestID", id)
		return nil, err
	}

	autoRejected, err := s.requestRepo.Accept(ctx, id, participantID, now)
	if err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			err = s.staleAcceptError(ctx, id, participantID)
		}
		logger.ExitMethodWithError("matchService.AcceptParticipant", err, "matchRequestID", id)
		return nil, err
	}

	req.Status = domain.MatchStatusMatched
	req.MatchedParticipantID = &participantID
	req.UpdatedAt = now
	p.OwnerStatus = domain.OwnerStatusAccepted
	p.UpdatedAt = now

	s.syncBooking(ctx, req)

	contacts, err := s.users.GetContacts(ctx, []int64{req.CreatorUserID, p.UserID})
	if err != nil {
		logger.WarnContext(ctx, "Failed to load contacts for match success", "matchRequestID", id, "error", err)
		contacts = map[int64]domain.UserContact{}
	}
	creator := contacts[req.CreatorUserID]
	creator.ID = req.CreatorUserID
	opponent := contacts[p.UserID]
	opponent.ID = p.UserID

	accepted := domain.NewMatchEvent(domain.EventParticipantAccepted, req, now, p.UserID, req.CreatorUserID)
	accepted.ParticipantID = p.ID
	accepted.ActorUserID = actingUserID
	s.events.Publish(ctx, accepted)

	for _, r := range autoRejected {
		if r.IsWithdrawn() {
			continue
		}
		ev := domain.NewMatchEvent(domain.EventParticipantRejected, req, now, r.UserID)
		ev.ParticipantID = r.ID
		ev.ActorUserID = actingUserID
		ev.Reason = domain.RejectReasonMatchClosed
		s.events.Publish(ctx, ev)
	}

	logger.ExitMethod("matchService.AcceptParticipant", "matchRequestID", id, "participantID", participantID, "autoRejected", len(autoRejected))
	return &domain.MatchSuccess{
		MatchRequestID: req.ID,
		BookingID:      req.BookingID,
		Booking:        req.Booking,
		Participant:    *p,
		Creator:        creator,
		Opponent:       opponent,
		MatchedAt:      now,
	}, nil
}

// staleAcceptError explains a lost race: either the request closed or the
// participant changed state first.
func (s *matchService) staleAcceptError(ctx context.Context, id, participantID int64) error {
	req, err := s.requestRepo.GetByID(ctx, id)
	if err == nil && !req.IsOpen(s.now()) {
		return domain.Conflictf("match request %d is %s", id, strings.ToLower(string(req.EffectiveStatus(s.now()))))
	}
	return domain.Conflictf("participant %d is no longer pending", participantID)
}

func (s *matchService) RejectOrWithdraw(ctx context.Context, id, participantID, actingUserID int64) error {
	logger.EnterMethod("matchService.RejectOrWithdraw", "matchRequestID", id, "participantID", participantID, "userID", actingUserID)

	req, p, err := s.loadPair(ctx, id, participantID)
	if err != nil {
		logger.ExitMethodWithError("matchService.RejectOrWithdraw", err, "matchRequestID", id)
		return err
	}
	now := s.now()

	switch actingUserID {
	case req.CreatorUserID:
		if p.OwnerStatus == domain.OwnerStatusRejected || p.IsWithdrawn() {
			logger.ExitMethod("matchService.RejectOrWithdraw", "matchRequestID", id, "noop", true)
			return nil
		}
		if status := req.EffectiveStatus(now); status != domain.MatchStatusOpen {
			err = domain.Conflictf("match request %d is %s", id, strings.ToLower(string(status)))
			logger.ExitMethodWithError("matchService.RejectOrWithdraw", err, "matchRequestID", id)
			return err
		}
		if p.OwnerStatus != domain.OwnerStatusPending {
			err = domain.Conflictf("participant %d was already accepted", participantID)
			logger.ExitMethodWithError("matchService.RejectOrWithdraw", err, "matchRequestID", id)
			return err
		}
		if err := s.participantRepo.Reject(ctx, id, participantID, domain.RejectReasonOwnerRejected, now); err != nil {
			err = mapStaleError(err, "match request %d changed state, try again", id)
			logger.ExitMethodWithError("matchService.RejectOrWithdraw", err, "matchRequestID", id)
			return err
		}
		ev := domain.NewMatchEvent(domain.EventParticipantRejected, req, now, p.UserID)
		ev.ParticipantID = p.ID
		ev.ActorUserID = actingUserID
		ev.Reason = domain.RejectReasonOwnerRejected
		s.events.Publish(ctx, ev)

	case p.UserID:
		if p.IsWithdrawn() || p.OwnerStatus == domain.OwnerStatusRejected {
			logger.ExitMethod("matchService.RejectOrWithdraw", "matchRequestID", id, "noop", true)
			return nil
		}
		if status := req.EffectiveStatus(now); status != domain.MatchStatusOpen {
			err = domain.Conflictf("match request %d is %s", id, strings.ToLower(string(status)))
			logger.ExitMethodWithError("matchService.RejectOrWithdraw", err, "matchRequestID", id)
			return err
		}
		if err := s.participantRepo.Withdraw(ctx, id, participantID, now); err != nil {
			err = mapStaleError(err, "match request %d changed state, try again", id)
			logger.ExitMethodWithError("matchService.RejectOrWithdraw", err, "matchRequestID", id)
			return err
		}
		ev := domain.NewMatchEvent(domain.EventParticipantWithdrawn, req, now, req.CreatorUserID)
		ev.ParticipantID = p.ID
		ev.ActorUserID = actingUserID
		s.events.Publish(ctx, ev)

	default:
		err = domain.Unauthorizedf("only the request owner or the applicant can change this application")
		logger.ExitMethodWithError("matchService.RejectOrWithdraw", err, "matchRequestID", id)
		return err
	}

	logger.ExitMethod("matchService.RejectOrWithdraw", "matchRequestID", id, "participantID", participantID)
	return nil
}

func (s *matchService) CancelRequest(ctx context.Context, id, actingUserID int64) error {
	logger.EnterMethod("matchService.CancelRequest", "matchRequestID", id, "userID", actingUserID)

	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		err = mapStoreError(err, "match request %d not found", id)
		logger.ExitMethodWithError("matchService.CancelRequest", err, "matchRequestID", id)
		return err
	}
	if req.CreatorUserID != actingUserID {
		err = domain.Unauthorizedf("only the request owner can cancel it")
		logger.ExitMethodWithError("matchService.CancelRequest", err, "matchRequestID", id)
		return err
	}
	now := s.now()
	if status := req.EffectiveStatus(now); !domain.CanTransition(status, domain.MatchStatusCancelled) {
		err = domain.Conflictf("cannot cancel a %s match request", strings.ToLower(string(status)))
		logger.ExitMethodWithError("matchService.CancelRequest", err, "matchRequestID", id)
		return err
	}

	if err := s.requestRepo.Transition(ctx, id, domain.MatchStatusCancelled, now); err != nil {
		err = mapStaleError(err, "match request %d is no longer open", id)
		logger.ExitMethodWithError("matchService.CancelRequest", err, "matchRequestID", id)
		return err
	}
	req.Status = domain.MatchStatusCancelled

	ev := domain.NewMatchEvent(domain.EventMatchRequestCancelled, req, now, s.pendingApplicants(ctx, id)...)
	ev.ActorUserID = actingUserID
	s.events.Publish(ctx, ev)

	logger.ExitMethod("matchService.CancelRequest", "matchRequestID", id)
	return nil
}

// ExpireOldRequests persists EXPIRED for every overdue open request. Safe to
// run concurrently with itself and with user operations.
func (s *matchService) ExpireOldRequests(ctx context.Context) (int, error) {
	logger.EnterMethod("matchService.ExpireOldRequests")

	now := s.now()
	expired, err := s.requestRepo.ExpireDue(ctx, now)
	if err != nil {
		logger.ExitMethodWithError("matchService.ExpireOldRequests", err)
		return 0, err
	}

	s.publishExpired(ctx, expired, now)

	logger.ExitMethod("matchService.ExpireOldRequests", "expired", len(expired))
	return len(expired), nil
}

// publishExpired tells the creator and pending applicants of each expired request.
func (s *matchService) publishExpired(ctx context.Context, expired []domain.MatchRequest, now time.Time) {
	for i := range expired {
		req := &expired[i]
		recipients := append([]int64{req.CreatorUserID}, s.pendingApplicants(ctx, req.ID)...)
		s.events.Publish(ctx, domain.NewMatchEvent(domain.EventMatchRequestExpired, req, now, recipients...))
	}
}

func (s *matchService) GetMyHistory(ctx context.Context, userID int64, q domain.PageQuery) (domain.Page[domain.MatchRequest], error) {
	page, err := q.Normalize(s.policy.MaxPageSize)
	if err != nil {
		return domain.Page[domain.MatchRequest]{}, err
	}
	items, total, err := s.requestRepo.ListByUser(ctx, userID, page)
	if err != nil {
		return domain.Page[domain.MatchRequest]{}, err
	}
	now := s.now()
	for i := range items {
		items[i].Status = items[i].EffectiveStatus(now)
	}
	return domain.Page[domain.MatchRequest]{Items: items, Page: page.Page, Size: page.Size, Total: total}, nil
}

func (s *matchService) GetBookingRequestInfo(ctx context.Context, bookingID int64) (*domain.BookingRequestInfo, error) {
	req, err := s.requestRepo.LatestForBooking(ctx, bookingID, s.now())
	if errors.Is(err, repository.ErrNotFound) {
		return &domain.BookingRequestInfo{HasRequest: false}, nil
	}
	if err != nil {
		return nil, err
	}
	id := req.ID
	return &domain.BookingRequestInfo{HasRequest: true, MatchRequestID: &id}, nil
}

// SyncMatchedBookings retries the booking write for matched requests whose
// post-commit update failed. Returns the number synced in this pass.
func (s *matchService) SyncMatchedBookings(ctx context.Context, limit int) (int, error) {
	logger.EnterMethod("matchService.SyncMatchedBookings", "limit", limit)

	pending, err := s.requestRepo.ListUnsyncedMatched(ctx, limit)
	if err != nil {
		logger.ExitMethodWithError("matchService.SyncMatchedBookings", err)
		return 0, err
	}

	synced := 0
	for i := range pending {
		if s.syncBooking(ctx, &pending[i]) {
			synced++
		}
	}

	logger.ExitMethod("matchService.SyncMatchedBookings", "pending", len(pending), "synced", synced)
	return synced, nil
}

// syncBooking marks the booking as having an opponent. Failures are logged
// and left for the next sync pass.
func (s *matchService) syncBooking(ctx context.Context, req *domain.MatchRequest) bool {
	if err := s.bookings.MarkOpponentFound(ctx, req.BookingID, req.ID); err != nil {
		logger.WarnContext(ctx, "Failed to mark booking opponent found", "bookingID", req.BookingID, "matchRequestID", req.ID, "error", err)
		return false
	}
	if err := s.requestRepo.MarkBookingSynced(ctx, req.ID); err != nil {
		logger.WarnContext(ctx, "Failed to record booking sync", "matchRequestID", req.ID, "error", err)
		return false
	}
	req.BookingSynced = true
	return true
}

// loadPair fetches a request and one of its participants. A participant that
// belongs to another request is reported as not found.
func (s *matchService) loadPair(ctx context.Context, id, participantID int64) (*domain.MatchRequest, *domain.Participant, error) {
	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, mapStoreError(err, "match request %d not found", id)
	}
	p, err := s.participantRepo.GetByID(ctx, participantID)
	if err != nil {
		return nil, nil, mapStoreError(err, "participant %d not found", participantID)
	}
	if p.MatchRequestID != id {
		return nil, nil, domain.NotFoundf("participant %d not found", participantID)
	}
	return req, p, nil
}

func (s *matchService) pendingApplicants(ctx context.Context, id int64) []int64 {
	participants, err := s.participantRepo.ListByRequest(ctx, id)
	if err != nil {
		logger.WarnContext(ctx, "Failed to list applicants for notification", "matchRequestID", id, "error", err)
		return nil
	}
	var ids []int64
	for _, p := range participants {
		if p.IsDecidable() {
			ids = append(ids, p.UserID)
		}
	}
	return ids
}

func mapStoreError(err error, format string, args ...any) error {
	if errors.Is(err, repository.ErrNotFound) {
		return domain.NotFoundf(format, args...)
	}
	return err
}

func mapStaleError(err error, format string, args ...any) error {
	if errors.Is(err, repository.ErrStaleState) {
		return domain.Conflictf(format, args...)
	}
	return mapStoreError(err, format, args...)
}
