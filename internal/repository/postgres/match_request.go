package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fieldmatch-backend/internal/domain"
	"fieldmatch-backend/internal/logger"
	"fieldmatch-backend/internal/repository"
)

const matchRequestColumns = `id, booking_id, creator_user_id, description, status, matched_participant_id, booking_snapshot, booking_synced, created_at, updated_at, expires_at`

type matchRequestRepository struct {
	db *sql.DB
}

func NewMatchRequestRepository(db *sql.DB) repository.MatchRequestRepository {
	return &matchRequestRepository{db: db}
}

func scanMatchRequest(row rowScanner) (*domain.MatchRequest, error) {
	var (
		m        domain.MatchRequest
		status   string
		matched  sql.NullInt64
		snapshot []byte
	)
	err := row.Scan(&m.ID, &m.BookingID, &m.CreatorUserID, &m.Description, &status, &matched, &snapshot, &m.BookingSynced, &m.CreatedAt, &m.UpdatedAt, &m.ExpiresAt)
	if err != nil {
		return nil, err
	}
	if m.Status, err = domain.ParseMatchStatus(status); err != nil {
		return nil, err
	}
	if matched.Valid {
		id := matched.Int64
		m.MatchedParticipantID = &id
	}
	if len(snapshot) > 0 {
		if err := json.Unmarshal(snapshot, &m.Booking); err != nil {
			return nil, fmt.Errorf("failed to decode booking snapshot: %w", err)
		}
	}
	return &m, nil
}

func scanMatchRequests(rows *sql.Rows) ([]domain.MatchRequest, error) {
	defer rows.Close()
	var reqs []domain.MatchRequest
	for rows.Next() {
		m, err := scanMatchRequest(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, *m)
	}
	return reqs, rows.Err()
}

func (r *matchRequestRepository) Create(ctx context.Context, req *domain.MatchRequest, now time.Time) ([]domain.MatchRequest, error) {
	logger.EnterMethod("matchRequestRepository.Create", "bookingID", req.BookingID, "creatorID", req.CreatorUserID)

	snapshot, err := json.Marshal(req.Booking)
	if err != nil {
		logger.ExitMethodWithError("matchRequestRepository.Create", err, "reason", "failed to marshal snapshot")
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Free the booking from a request that ran out of time but was not swept yet.
	logger.DatabaseCall("UPDATE", "match_requests", "operation", "expire", "bookingID", req.BookingID)
	rows, err := tx.QueryContext(ctx, `UPDATE match_requests SET status = $1, updated_at = $2
	          WHERE booking_id = $3 AND status = $4 AND expires_at <= $2
	          RETURNING `+matchRequestColumns,
		domain.MatchStatusExpired, now, req.BookingID, domain.MatchStatusOpen)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err)
		return nil, err
	}
	expired, err := scanMatchRequests(rows)
	logger.DatabaseResult("UPDATE", int64(len(expired)), err)
	if err != nil {
		return nil, err
	}

	req.Status = domain.MatchStatusOpen
	req.CreatedAt = now
	req.UpdatedAt = now
	query := `INSERT INTO match_requests (booking_id, creator_user_id, description, status, booking_snapshot, created_at, updated_at, expires_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	logger.DatabaseCall("INSERT", "match_requests", "bookingID", req.BookingID)
	err = tx.QueryRowContext(ctx, query, req.BookingID, req.CreatorUserID, req.Description, req.Status, snapshot, req.CreatedAt, req.UpdatedAt, req.ExpiresAt).Scan(&req.ID)
	logger.DatabaseResult("INSERT", 1, err, "matchRequestID", req.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicate
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	logger.ExitMethod("matchRequestRepository.Create", "matchRequestID", req.ID, "expired", len(expired))
	return expired, nil
}

func (r *matchRequestRepository) GetByID(ctx context.Context, id int64) (*domain.MatchRequest, error) {
	query := `SELECT ` + matchRequestColumns + ` FROM match_requests WHERE id = $1`
	m, err := scanMatchRequest(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return m, err
}

func (r *matchRequestRepository) LatestForBooking(ctx context.Context, bookingID int64, now time.Time) (*domain.MatchRequest, error) {
	query := `SELECT ` + matchRequestColumns + ` FROM match_requests
	          WHERE booking_id = $1 AND ((status = $2 AND expires_at > $3) OR status = $4)
	          ORDER BY created_at DESC, id DESC LIMIT 1`
	m, err := scanMatchRequest(r.db.QueryRowContext(ctx, query, bookingID, domain.MatchStatusOpen, now, domain.MatchStatusMatched))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return m, err
}

func (r *matchRequestRepository) ListOpen(ctx context.Context, q domain.ActiveQuery, now time.Time) ([]domain.MatchRequest, int64, error) {
	where := ` FROM match_requests WHERE status = $1 AND expires_at > $2`
	args := []interface{}{domain.MatchStatusOpen, now}
	argIdx := 3
	if q.ViewerUserID != nil {
		where += fmt.Sprintf(" AND creator_user_id <> $%d", argIdx)
		args = append(args, *q.ViewerUserID)
		argIdx++
	}

	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT count(*)`+where, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + matchRequestColumns + where +
		fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, q.Size, q.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	reqs, err := scanMatchRequests(rows)
	if err != nil {
		return nil, 0, err
	}
	return reqs, count, nil
}

func (r *matchRequestRepository) ListByUser(ctx context.Context, userID int64, q domain.PageQuery) ([]domain.MatchRequest, int64, error) {
	where := ` FROM match_requests mr
	          WHERE mr.creator_user_id = $1
	             OR EXISTS (SELECT 1 FROM match_participants p
	                        WHERE p.match_request_id = mr.id AND p.user_id = $1 AND p.applicant_status <> $2)`
	args := []interface{}{userID, domain.ApplicantStatusWithdrawn}

	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT count(*)`+where, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + prefixed("mr", matchRequestColumns) + where + ` ORDER BY mr.created_at DESC, mr.id DESC LIMIT $3 OFFSET $4`
	args = append(args, q.Size, q.Offset())
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	reqs, err := scanMatchRequests(rows)
	if err != nil {
		return nil, 0, err
	}
	return reqs, count, nil
}

func (r *matchRequestRepository) Transition(ctx context.Context, id int64, to domain.MatchStatus, now time.Time) error {
	if !domain.CanTransition(domain.MatchStatusOpen, to) {
		return fmt.Errorf("transition OPEN -> %s is not allowed", to)
	}
	query := `UPDATE match_requests SET status = $1, updated_at = $2
	          WHERE id = $3 AND status = $4 AND expires_at > $2`
	logger.DatabaseCall("UPDATE", "match_requests", "id", id, "to", to)
	res, err := r.db.ExecContext(ctx, query, to, now, id, domain.MatchStatusOpen)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err)
		return err
	}
	return checkAffected(res)
}

func (r *matchRequestRepository) Accept(ctx context.Context, requestID, participantID int64, now time.Time) ([]domain.Participant, error) {
	logger.EnterMethod("matchRequestRepository.Accept", "matchRequestID", requestID, "participantID", participantID)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// The status guard is the serialization point: a concurrent accept blocks
	// on the row lock and then matches zero rows.
	res, err := tx.ExecContext(ctx, `UPDATE match_requests SET status = $1, matched_participant_id = $2, updated_at = $3
	          WHERE id = $4 AND status = $5 AND expires_at > $3`,
		domain.MatchStatusMatched, participantID, now, requestID, domain.MatchStatusOpen)
	if err != nil {
		return nil, err
	}
	if err := checkAffected(res); err != nil {
		logger.ExitMethodWithError("matchRequestRepository.Accept", err, "step", "close request")
		return nil, err
	}

	res, err = tx.ExecContext(ctx, `UPDATE match_participants SET owner_status = $1, updated_at = $2
	          WHERE id = $3 AND match_request_id = $4 AND owner_status = $5 AND applicant_status = $6`,
		domain.OwnerStatusAccepted, now, participantID, requestID, domain.OwnerStatusPending, domain.ApplicantStatusAccepted)
	if err != nil {
		return nil, err
	}
	if err := checkAffected(res); err != nil {
		logger.ExitMethodWithError("matchRequestRepository.Accept", err, "step", "accept participant")
		return nil, err
	}

	rows, err := tx.QueryContext(ctx, `UPDATE match_participants SET owner_status = $1, reject_reason = $2, updated_at = $3
	          WHERE match_request_id = $4 AND id <> $5 AND owner_status = $6
	          RETURNING `+participantColumns,
		domain.OwnerStatusRejected, domain.RejectReasonMatchClosed, now, requestID, participantID, domain.OwnerStatusPending)
	if err != nil {
		return nil, err
	}
	rejected, err := scanParticipants(rows)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	logger.ExitMethod("matchRequestRepository.Accept", "autoRejected", len(rejected))
	return rejected, nil
}

func (r *matchRequestRepository) ExpireDue(ctx context.Context, now time.Time) ([]domain.MatchRequest, error) {
	query := `UPDATE match_requests SET status = $1, updated_at = $2
	          WHERE status = $3 AND expires_at <= $2
	          RETURNING ` + matchRequestColumns
	logger.DatabaseCall("UPDATE", "match_requests", "operation", "expire")
	rows, err := r.db.QueryContext(ctx, query, domain.MatchStatusExpired, now, domain.MatchStatusOpen)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err)
		return nil, err
	}
	expired, err := scanMatchRequests(rows)
	logger.DatabaseResult("UPDATE", int64(len(expired)), err)
	return expired, err
}

func (r *matchRequestRepository) ListUnsyncedMatched(ctx context.Context, limit int) ([]domain.MatchRequest, error) {
	query := `SELECT ` + matchRequestColumns + ` FROM match_requests
	          WHERE status = $1 AND booking_synced = FALSE ORDER BY id LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, domain.MatchStatusMatched, limit)
	if err != nil {
		return nil, err
	}
	return scanMatchRequests(rows)
}

func (r *matchRequestRepository) MarkBookingSynced(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE match_requests SET booking_synced = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
