package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"fieldmatch-backend/internal/domain"
	"fieldmatch-backend/internal/logger"
	"fieldmatch-backend/internal/repository"
)

const participantColumns = `id, match_request_id, user_id, team_info, owner_status, applicant_status, reject_reason, joined_at, updated_at`

type participantRepository struct {
	db *sql.DB
}

func NewParticipantRepository(db *sql.DB) repository.ParticipantRepository {
	return &participantRepository{db: db}
}

func scanParticipant(row rowScanner) (*domain.Participant, error) {
	var p domain.Participant
	var owner, applicant, reason string
	err := row.Scan(&p.ID, &p.MatchRequestID, &p.UserID, &p.TeamInfo, &owner, &applicant, &reason, &p.JoinedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.OwnerStatus = domain.OwnerStatus(owner)
	p.ApplicantStatus = domain.ApplicantStatus(applicant)
	p.RejectReason = domain.RejectReason(reason)
	return &p, nil
}

func scanParticipants(rows *sql.Rows) ([]domain.Participant, error) {
	defer rows.Close()
	var ps []domain.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		ps = append(ps, *p)
	}
	return ps, rows.Err()
}

// lockOpenRequest share-locks the parent row for the rest of tx so that an
// accept, cancel or expiry cannot commit underneath a participant write.
func lockOpenRequest(ctx context.Context, tx *sql.Tx, requestID int64, now time.Time) error {
	var status string
	var expiresAt time.Time
	err := tx.QueryRowContext(ctx, `SELECT status, expires_at FROM match_requests WHERE id = $1 FOR SHARE`, requestID).Scan(&status, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	if err != nil {
		return err
	}
	if domain.MatchStatus(status) != domain.MatchStatusOpen || !now.Before(expiresAt) {
		return repository.ErrStaleState
	}
	return nil
}

func (r *participantRepository) Create(ctx context.Context, p *domain.Participant, now time.Time) error {
	logger.EnterMethod("participantRepository.Create", "matchRequestID", p.MatchRequestID, "userID", p.UserID)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := lockOpenRequest(ctx, tx, p.MatchRequestID, now); err != nil {
		logger.ExitMethodWithError("participantRepository.Create", err)
		return err
	}

	p.OwnerStatus = domain.OwnerStatusPending
	p.ApplicantStatus = domain.ApplicantStatusAccepted
	p.RejectReason = domain.RejectReasonNone
	p.JoinedAt = now
	p.UpdatedAt = now
	query := `INSERT INTO match_participants (match_request_id, user_id, team_info, owner_status, applicant_status, reject_reason, joined_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	err = tx.QueryRowContext(ctx, query, p.MatchRequestID, p.UserID, p.TeamInfo, p.OwnerStatus, p.ApplicantStatus, p.RejectReason, p.JoinedAt, p.UpdatedAt).Scan(&p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	logger.ExitMethod("participantRepository.Create", "participantID", p.ID)
	return nil
}

func (r *participantRepository) GetByID(ctx context.Context, id int64) (*domain.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM match_participants WHERE id = $1`
	p, err := scanParticipant(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return p, err
}

func (r *participantRepository) ListByRequest(ctx context.Context, requestID int64) ([]domain.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM match_participants WHERE match_request_id = $1 ORDER BY joined_at, id`
	rows, err := r.db.QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, err
	}
	return scanParticipants(rows)
}

func (r *participantRepository) FindActiveByUser(ctx context.Context, requestID, userID int64) (*domain.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM match_participants
	          WHERE match_request_id = $1 AND user_id = $2 AND applicant_status = $3`
	p, err := scanParticipant(r.db.QueryRowContext(ctx, query, requestID, userID, domain.ApplicantStatusAccepted))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return p, err
}

func (r *participantRepository) Reject(ctx context.Context, requestID, participantID int64, reason domain.RejectReason, now time.Time) error {
	return r.updateWhileOpen(ctx, requestID, now,
		`UPDATE match_participants SET owner_status = $1, reject_reason = $2, updated_at = $3
		 WHERE id = $4 AND match_request_id = $5 AND owner_status = $6`,
		domain.OwnerStatusRejected, reason, now, participantID, requestID, domain.OwnerStatusPending)
}

func (r *participantRepository) Withdraw(ctx context.Context, requestID, participantID int64, now time.Time) error {
	return r.updateWhileOpen(ctx, requestID, now,
		`UPDATE match_participants SET applicant_status = $1, updated_at = $2
		 WHERE id = $3 AND match_request_id = $4 AND applicant_status = $5`,
		domain.ApplicantStatusWithdrawn, now, participantID, requestID, domain.ApplicantStatusAccepted)
}

func (r *participantRepository) updateWhileOpen(ctx context.Context, requestID int64, now time.Time, query string, args ...interface{}) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := lockOpenRequest(ctx, tx, requestID, now); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if err := checkAffected(res); err != nil {
		return err
	}
	return tx.Commit()
}
