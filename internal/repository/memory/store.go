// Package memory keeps match records in process memory. It is used for local
// development without PostgreSQL and gives the same conditional-write
// guarantees as the postgres store, serialized by one mutex.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"fieldmatch-backend/internal/domain"
	"fieldmatch-backend/internal/repository"
)

type state struct {
	mu sync.Mutex

	nextRequestID      int64
	nextParticipantID  int64
	nextNotificationID int64

	requests      map[int64]*domain.MatchRequest
	participants  map[int64]*domain.Participant
	bookings      map[int64]*domain.Booking
	users         map[int64]domain.UserContact
	notifications []domain.Notification
}

type Store struct {
	st *state
	repository.MatchRequestRepository
	repository.ParticipantRepository
	repository.BookingGateway
	repository.UserDirectory
	repository.NotificationRepository
}

func NewStore() *Store {
	st := &state{
		requests:     make(map[int64]*domain.MatchRequest),
		participants: make(map[int64]*domain.Participant),
		bookings:     make(map[int64]*domain.Booking),
		users:        make(map[int64]domain.UserContact),
	}
	return &Store{
		st:                     st,
		MatchRequestRepository: &matchRequestRepository{st: st},
		ParticipantRepository:  &participantRepository{st: st},
		BookingGateway:         &bookingGateway{st: st},
		UserDirectory:          &userDirectory{st: st},
		NotificationRepository: &notificationRepository{st: st},
	}
}

// PutBooking adds or replaces a booking owned by the external booking system.
func (s *Store) PutBooking(b domain.Booking) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	s.st.bookings[b.ID] = &b
}

func (s *Store) PutUser(u domain.UserContact) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	s.st.users[u.ID] = u
}

// Notifications returns a copy of every stored inbox row.
func (s *Store) Notifications() []domain.Notification {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	return append([]domain.Notification(nil), s.st.notifications...)
}

// openLocked reports whether the request exists and is open at now. Callers hold mu.
func (st *state) openLocked(requestID int64, now time.Time) error {
	req, ok := st.requests[requestID]
	if !ok {
		return repository.ErrNotFound
	}
	if !req.IsOpen(now) {
		return repository.ErrStaleState
	}
	return nil
}

type matchRequestRepository struct {
	st *state
}

func (r *matchRequestRepository) Create(ctx context.Context, req *domain.MatchRequest, now time.Time) ([]domain.MatchRequest, error) {
	st := r.st
	st.mu.Lock()
	defer st.mu.Unlock()

	var overdue []*domain.MatchRequest
	for _, existing := range st.requests {
		if existing.BookingID != req.BookingID || existing.Status != domain.MatchStatusOpen {
			continue
		}
		if existing.IsExpired(now) {
			overdue = append(overdue, existing)
			continue
		}
		return nil, repository.ErrDuplicate
	}
	var expired []domain.MatchRequest
	for _, existing := range overdue {
		existing.Status = domain.MatchStatusExpired
		existing.UpdatedAt = now
		expired = append(expired, *existing)
	}

	st.nextRequestID++
	req.ID = st.nextRequestID
	req.Status = domain.MatchStatusOpen
	req.CreatedAt = now
	req.UpdatedAt = now
	stored := *req
	st.requests[req.ID] = &stored
	return expired, nil
}

func (r *matchRequestRepository) GetByID(ctx context.Context, id int64) (*domain.MatchRequest, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	req, ok := r.st.requests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *req
	return &cp, nil
}

func (r *matchRequestRepository) LatestForBooking(ctx context.Context, bookingID int64, now time.Time) (*domain.MatchRequest, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var latest []domain.MatchRequest
	for _, req := range r.st.requests {
		if req.BookingID != bookingID {
			continue
		}
		if req.IsOpen(now) || req.Status == domain.MatchStatusMatched {
			latest = append(latest, *req)
		}
	}
	if len(latest) == 0 {
		return nil, repository.ErrNotFound
	}
	sortNewestFirst(latest)
	return &latest[0], nil
}

func (r *matchRequestRepository) ListOpen(ctx context.Context, q domain.ActiveQuery, now time.Time) ([]domain.MatchRequest, int64, error) {
	r.st.mu.Lock()
	var matched []domain.MatchRequest
	for _, req := range r.st.requests {
		if !req.IsOpen(now) {
			continue
		}
		if q.ViewerUserID != nil && req.CreatorUserID == *q.ViewerUserID {
			continue
		}
		matched = append(matched, *req)
	}
	r.st.mu.Unlock()

	sortNewestFirst(matched)
	return pageOf(matched, q.PageQuery), int64(len(matched)), nil
}

func (r *matchRequestRepository) ListByUser(ctx context.Context, userID int64, q domain.PageQuery) ([]domain.MatchRequest, int64, error) {
	r.st.mu.Lock()
	involved := make(map[int64]bool)
	for _, p := range r.st.participants {
		if p.UserID == userID && !p.IsWithdrawn() {
			involved[p.MatchRequestID] = true
		}
	}
	var matched []domain.MatchRequest
	for _, req := range r.st.requests {
		if req.CreatorUserID == userID || involved[req.ID] {
			matched = append(matched, *req)
		}
	}
	r.st.mu.Unlock()

	sortNewestFirst(matched)
	return pageOf(matched, q), int64(len(matched)), nil
}

func (r *matchRequestRepository) Transition(ctx context.Context, id int64, to domain.MatchStatus, now time.Time) error {
	st := r.st
	st.mu.Lock()
	defer st.mu.Unlock()
	if err := st.openLocked(id, now); err != nil {
		if err == repository.ErrNotFound {
			return repository.ErrStaleState
		}
		return err
	}
	if !domain.CanTransition(domain.MatchStatusOpen, to) {
		return repository.ErrStaleState
	}
	req := st.requests[id]
	req.Status = to
	req.UpdatedAt = now
	return nil
}

func (r *matchRequestRepository) Accept(ctx context.Context, requestID, participantID int64, now time.Time) ([]domain.Participant, error) {
	st := r.st
	st.mu.Lock()
	defer st.mu.Unlock()

	if err := st.openLocked(requestID, now); err != nil {
		if err == repository.ErrNotFound {
			return nil, repository.ErrStaleState
		}
		return nil, err
	}
	winner, ok := st.participants[participantID]
	if !ok || winner.MatchRequestID != requestID || !winner.IsDecidable() {
		return nil, repository.ErrStaleState
	}

	req := st.requests[requestID]
	req.Status = domain.MatchStatusMatched
	req.MatchedParticipantID = &participantID
	req.UpdatedAt = now
	winner.OwnerStatus = domain.OwnerStatusAccepted
	winner.UpdatedAt = now

	var rejected []domain.Participant
	for _, p := range st.participants {
		if p.MatchRequestID != requestID || p.ID == participantID || p.OwnerStatus != domain.OwnerStatusPending {
			continue
		}
		p.OwnerStatus = domain.OwnerStatusRejected
		p.RejectReason = domain.RejectReasonMatchClosed
		p.UpdatedAt = now
		rejected = append(rejected, *p)
	}
	sort.Slice(rejected, func(i, j int) bool { return rejected[i].ID < rejected[j].ID })
	return rejected, nil
}

func (r *matchRequestRepository) ExpireDue(ctx context.Context, now time.Time) ([]domain.MatchRequest, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var expired []domain.MatchRequest
	for _, req := range r.st.requests {
		if req.IsExpired(now) {
			req.Status = domain.MatchStatusExpired
			req.UpdatedAt = now
			expired = append(expired, *req)
		}
	}
	sort.Slice(expired, func(i, j int) bool { return expired[i].ID < expired[j].ID })
	return expired, nil
}

func (r *matchRequestRepository) ListUnsyncedMatched(ctx context.Context, limit int) ([]domain.MatchRequest, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var reqs []domain.MatchRequest
	for _, req := range r.st.requests {
		if req.Status == domain.MatchStatusMatched && !req.BookingSynced {
			reqs = append(reqs, *req)
		}
	}
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].ID < reqs[j].ID })
	if limit > 0 && len(reqs) > limit {
		reqs = reqs[:limit]
	}
	return reqs, nil
}

func (r *matchRequestRepository) MarkBookingSynced(ctx context.Context, id int64) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	req, ok := r.st.requests[id]
	if !ok {
		return repository.ErrNotFound
	}
	req.BookingSynced = true
	return nil
}

func sortNewestFirst(reqs []domain.MatchRequest) {
	sort.Slice(reqs, func(i, j int) bool {
		if !reqs[i].CreatedAt.Equal(reqs[j].CreatedAt) {
			return reqs[i].CreatedAt.After(reqs[j].CreatedAt)
		}
		return reqs[i].ID > reqs[j].ID
	})
}

func pageOf(reqs []domain.MatchRequest, q domain.PageQuery) []domain.MatchRequest {
	start := q.Offset()
	if start < 0 || start >= len(reqs) {
		return []domain.MatchRequest{}
	}
	end := start + q.Size
	if end > len(reqs) {
		end = len(reqs)
	}
	return reqs[start:end]
}
