package postgres_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"fieldmatch-backend/internal/domain"
	"fieldmatch-backend/internal/repository"
	"fieldmatch-backend/internal/repository/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingGateway(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	gw := postgres.NewBookingGateway(db)
	ctx := context.Background()
	start := time.Date(2030, 6, 1, 18, 0, 0, 0, time.UTC)

	t.Run("GetBooking", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM bookings b JOIN fields f (.+) WHERE b.id = \\$1").
			WithArgs(int64(100)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "status", "field", "complex", "slot_start", "slot_end", "price", "opponent_found"}).
				AddRow(int64(100), int64(1), "PAID", "Pitch 2", "Riverside", start, start.Add(90*time.Minute), "120.50", false))

		b, err := gw.GetBooking(ctx, 100)
		require.NoError(t, err)
		assert.Equal(t, domain.BookingStatusPaid, b.Status)
		assert.True(t, b.IsMatchable())
		assert.True(t, decimal.RequireFromString("120.5").Equal(b.Price))
	})

	t.Run("GetBooking not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM bookings").WithArgs(int64(101)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		_, err := gw.GetBooking(ctx, 101)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("MarkOpponentFound", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings SET opponent_found = TRUE")).
			WithArgs(int64(100)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, gw.MarkOpponentFound(ctx, 100, 7))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserDirectory_GetContacts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	dir := postgres.NewUserDirectory(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email, phone_number FROM users WHERE id = ANY($1)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "phone_number"}).
			AddRow(int64(1), "Alex", "alex@example.com", "555").
			AddRow(int64(2), "Blake", "blake@example.com", ""))

	contacts, err := dir.GetContacts(context.Background(), []int64{1, 2, 3})
	require.NoError(t, err)
	assert.Len(t, contacts, 2)
	assert.Equal(t, "Blake", contacts[2].Name)

	empty, err := dir.GetContacts(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewNotificationRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery("INSERT INTO match_notifications").
		WithArgs(int64(2), "Match confirmed", "body", false, sqlmock.AnyArg(), now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

	n := &domain.Notification{UserID: 2, Title: "Match confirmed", Message: "body", Attributes: map[string]string{"type": "PARTICIPANT_ACCEPTED"}, CreatedAt: now}
	require.NoError(t, repo.Create(context.Background(), n))
	assert.Equal(t, int64(11), n.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
