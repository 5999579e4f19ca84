package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusPaid      BookingStatus = "PAID"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
)

// Booking is the reservation record owned by the booking system.
type Booking struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"user_id"`
	Status        BookingStatus   `json:"status"`
	FieldName     string          `json:"field_name"`
	ComplexName   string          `json:"complex_name"`
	SlotStart     time.Time       `json:"slot_start"`
	SlotEnd       time.Time       `json:"slot_end"`
	Price         decimal.Decimal `json:"price"`
	OpponentFound bool            `json:"opponent_found"`
}

// IsMatchable reports whether the booking is paid for or confirmed.
func (b *Booking) IsMatchable() bool {
	return b.Status == BookingStatusConfirmed || b.Status == BookingStatusPaid
}

func (b *Booking) Snapshot() BookingSnapshot {
	return BookingSnapshot{
		FieldName:   b.FieldName,
		ComplexName: b.ComplexName,
		SlotStart:   b.SlotStart,
		SlotEnd:     b.SlotEnd,
		Price:       b.Price,
	}
}

// BookingSnapshot is copied onto the match request at creation time.
type BookingSnapshot struct {
	FieldName   string          `json:"field_name"`
	ComplexName string          `json:"complex_name"`
	SlotStart   time.Time       `json:"slot_start"`
	SlotEnd     time.Time       `json:"slot_end"`
	Price       decimal.Decimal `json:"price"`
}
