package postgres_test

import (
	"context"
	"testing"
	"time"

	"fieldmatch-backend/internal/domain"
	"fieldmatch-backend/internal/repository"
	"fieldmatch-backend/internal/repository/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lockQuery = "SELECT status, expires_at FROM match_requests WHERE id = \\$1 FOR SHARE"

func TestParticipantRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewParticipantRepository(db)
	ctx := context.Background()
	now := time.Date(2030, 5, 1, 10, 0, 0, 0, time.UTC)
	open := sqlmock.NewRows([]string{"status", "expires_at"}).AddRow("OPEN", now.Add(time.Hour))

	t.Run("Success", func(t *testing.T) {
		p := &domain.Participant{MatchRequestID: 7, UserID: 2, TeamInfo: "Blue FC"}
		mock.ExpectBegin()
		mock.ExpectQuery(lockQuery).WithArgs(int64(7)).WillReturnRows(open)
		mock.ExpectQuery("INSERT INTO match_participants").
			WithArgs(int64(7), int64(2), "Blue FC", domain.OwnerStatusPending, domain.ApplicantStatusAccepted, domain.RejectReasonNone, now, now).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
		mock.ExpectCommit()

		err := repo.Create(ctx, p, now)
		require.NoError(t, err)
		assert.Equal(t, int64(3), p.ID)
		assert.Equal(t, domain.OwnerStatusPending, p.OwnerStatus)
		assert.Equal(t, now, p.JoinedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Parent closed", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(lockQuery).WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"status", "expires_at"}).AddRow("MATCHED", now.Add(time.Hour)))
		mock.ExpectRollback()

		err := repo.Create(ctx, &domain.Participant{MatchRequestID: 7, UserID: 5}, now)
		assert.ErrorIs(t, err, repository.ErrStaleState)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Parent expired but not swept", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(lockQuery).WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"status", "expires_at"}).AddRow("OPEN", now))
		mock.ExpectRollback()

		err := repo.Create(ctx, &domain.Participant{MatchRequestID: 7, UserID: 5}, now)
		assert.ErrorIs(t, err, repository.ErrStaleState)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Parent missing", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(lockQuery).WithArgs(int64(99)).
			WillReturnRows(sqlmock.NewRows([]string{"status", "expires_at"}))
		mock.ExpectRollback()

		err := repo.Create(ctx, &domain.Participant{MatchRequestID: 99, UserID: 5}, now)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Duplicate application", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(lockQuery).WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"status", "expires_at"}).AddRow("OPEN", now.Add(time.Hour)))
		mock.ExpectQuery("INSERT INTO match_participants").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "match_participants_active_uq"})
		mock.ExpectRollback()

		err := repo.Create(ctx, &domain.Participant{MatchRequestID: 7, UserID: 2}, now)
		assert.ErrorIs(t, err, repository.ErrDuplicate)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestParticipantRepository_Reads(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewParticipantRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("ListByRequest", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM match_participants WHERE match_request_id = \\$1 ORDER BY joined_at, id").
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows(participantCols).
				AddRow(int64(1), int64(7), int64(2), "A", "PENDING", "ACCEPTED", "", now, now).
				AddRow(int64(2), int64(7), int64(3), "B", "REJECTED", "ACCEPTED", "OWNER_REJECTED", now, now))

		ps, err := repo.ListByRequest(ctx, 7)
		require.NoError(t, err)
		require.Len(t, ps, 2)
		assert.Equal(t, domain.OwnerStatusRejected, ps[1].OwnerStatus)
		assert.Equal(t, domain.RejectReasonOwnerRejected, ps[1].RejectReason)
	})

	t.Run("FindActiveByUser not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM match_participants WHERE match_request_id = \\$1 AND user_id = \\$2 AND applicant_status = \\$3").
			WithArgs(int64(7), int64(9), domain.ApplicantStatusAccepted).
			WillReturnRows(sqlmock.NewRows(participantCols))

		_, err := repo.FindActiveByUser(ctx, 7, 9)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("GetByID", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM match_participants WHERE id = \\$1").
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows(participantCols).
				AddRow(int64(1), int64(7), int64(2), "A", "PENDING", "WITHDRAWN", "", now, now))

		p, err := repo.GetByID(ctx, 1)
		require.NoError(t, err)
		assert.True(t, p.IsWithdrawn())
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParticipantRepository_RejectAndWithdraw(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewParticipantRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()
	openRow := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"status", "expires_at"}).AddRow("OPEN", now.Add(time.Hour))
	}

	t.Run("Reject", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(lockQuery).WithArgs(int64(7)).WillReturnRows(openRow())
		mock.ExpectExec("UPDATE match_participants SET owner_status = \\$1, reject_reason = \\$2").
			WithArgs(domain.OwnerStatusRejected, domain.RejectReasonOwnerRejected, now, int64(3), int64(7), domain.OwnerStatusPending).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, repo.Reject(ctx, 7, 3, domain.RejectReasonOwnerRejected, now))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Withdraw after accept is stale", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(lockQuery).WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"status", "expires_at"}).AddRow("MATCHED", now.Add(time.Hour)))
		mock.ExpectRollback()

		assert.ErrorIs(t, repo.Withdraw(ctx, 7, 3, now), repository.ErrStaleState)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Withdraw twice", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(lockQuery).WithArgs(int64(7)).WillReturnRows(openRow())
		mock.ExpectExec("UPDATE match_participants SET applicant_status = \\$1").
			WithArgs(domain.ApplicantStatusWithdrawn, now, int64(3), int64(7), domain.ApplicantStatusAccepted).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		assert.ErrorIs(t, repo.Withdraw(ctx, 7, 3, now), repository.ErrStaleState)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
