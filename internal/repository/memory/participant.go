package memory

import (
	"context"
	"sort"
	"time"

	"fieldmatch-backend/internal/domain"
	"fieldmatch-backend/internal/repository"
)

type participantRepository struct {
	st *state
}

func (r *participantRepository) Create(ctx context.Context, p *domain.Participant, now time.Time) error {
	st := r.st
	st.mu.Lock()
	defer st.mu.Unlock()

	if err := st.openLocked(p.MatchRequestID, now); err != nil {
		return err
	}
	for _, existing := range st.participants {
		if existing.MatchRequestID == p.MatchRequestID && existing.UserID == p.UserID && !existing.IsWithdrawn() {
			return repository.ErrDuplicate
		}
	}

	st.nextParticipantID++
	p.ID = st.nextParticipantID
	p.OwnerStatus = domain.OwnerStatusPending
	p.ApplicantStatus = domain.ApplicantStatusAccepted
	p.RejectReason = domain.RejectReasonNone
	p.JoinedAt = now
	p.UpdatedAt = now
	stored := *p
	st.participants[p.ID] = &stored
	return nil
}

func (r *participantRepository) GetByID(ctx context.Context, id int64) (*domain.Participant, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	p, ok := r.st.participants[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *participantRepository) ListByRequest(ctx context.Context, requestID int64) ([]domain.Participant, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var ps []domain.Participant
	for _, p := range r.st.participants {
		if p.MatchRequestID == requestID {
			ps = append(ps, *p)
		}
	}
	sort.Slice(ps, func(i, j int) bool { return ps[i].ID < ps[j].ID })
	return ps, nil
}

func (r *participantRepository) FindActiveByUser(ctx context.Context, requestID, userID int64) (*domain.Participant, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, p := range r.st.participants {
		if p.MatchRequestID == requestID && p.UserID == userID && !p.IsWithdrawn() {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *participantRepository) Reject(ctx context.Context, requestID, participantID int64, reason domain.RejectReason, now time.Time) error {
	return r.updateWhileOpen(requestID, participantID, now, func(p *domain.Participant) bool {
		if p.OwnerStatus != domain.OwnerStatusPending {
			return false
		}
		p.OwnerStatus = domain.OwnerStatusRejected
		p.RejectReason = reason
		return true
	})
}

func (r *participantRepository) Withdraw(ctx context.Context, requestID, participantID int64, now time.Time) error {
	return r.updateWhileOpen(requestID, participantID, now, func(p *domain.Participant) bool {
		if p.ApplicantStatus != domain.ApplicantStatusAccepted {
			return false
		}
		p.ApplicantStatus = domain.ApplicantStatusWithdrawn
		return true
	})
}

func (r *participantRepository) updateWhileOpen(requestID, participantID int64, now time.Time, apply func(*domain.Participant) bool) error {
	st := r.st
	st.mu.Lock()
	defer st.mu.Unlock()

	if err := st.openLocked(requestID, now); err != nil {
		return err
	}
	p, ok := st.participants[participantID]
	if !ok || p.MatchRequestID != requestID {
		return repository.ErrStaleState
	}
	if !apply(p) {
		return repository.ErrStaleState
	}
	p.UpdatedAt = now
	return nil
}
