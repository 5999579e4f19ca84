package postgres

import (
	"context"
	"database/sql"
	"errors"

	"fieldmatch-backend/internal/domain"
	"fieldmatch-backend/internal/logger"
	"fieldmatch-backend/internal/repository"
)

// bookingGateway reads reservations straight from the booking system's
// tables, which live in the same database.
type bookingGateway struct {
	db *sql.DB
}

func NewBookingGateway(db *sql.DB) repository.BookingGateway {
	return &bookingGateway{db: db}
}

func (g *bookingGateway) GetBooking(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	b := &domain.Booking{}
	var status string
	query := `SELECT b.id, b.user_id, b.status, f.name, c.name, b.slot_start, b.slot_end, b.price, b.opponent_found
	          FROM bookings b
	          JOIN fields f ON f.id = b.field_id
	          JOIN complexes c ON c.id = f.complex_id
	          WHERE b.id = $1`
	err := g.db.QueryRowContext(ctx, query, bookingID).Scan(&b.ID, &b.UserID, &status, &b.FieldName, &b.ComplexName, &b.SlotStart, &b.SlotEnd, &b.Price, &b.OpponentFound)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	b.Status = domain.BookingStatus(status)
	return b, nil
}

func (g *bookingGateway) MarkOpponentFound(ctx context.Context, bookingID, matchRequestID int64) error {
	logger.ExternalServiceCall("booking", "MarkOpponentFound", "bookingID", bookingID, "matchRequestID", matchRequestID)
	res, err := g.db.ExecContext(ctx, `UPDATE bookings SET opponent_found = TRUE, updated_at = NOW() WHERE id = $1`, bookingID)
	if err == nil {
		var n int64
		if n, err = res.RowsAffected(); err == nil && n == 0 {
			err = repository.ErrNotFound
		}
	}
	logger.ExternalServiceResult("booking", "MarkOpponentFound", err, "bookingID", bookingID)
	return err
}
