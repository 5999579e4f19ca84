package utils

import (
	"fmt"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// ExpiryFor returns when a request created at createdAt stops accepting
// applicants: the TTL or the slot start minus cutoff, whichever is sooner.
func ExpiryFor(createdAt, slotStart time.Time, ttl, cutoff time.Duration) time.Time {
	byTTL := createdAt.Add(ttl)
	bySlot := slotStart.Add(-cutoff)
	if bySlot.Before(byTTL) {
		return bySlot
	}
	return byTTL
}

// SlotLabel renders a reservation slot as "2024-05-01 18:00-19:30".
func SlotLabel(start, end time.Time) string {
	if start.IsZero() {
		return ""
	}
	label := fmt.Sprintf("%s %s", start.Format(DateLayout), start.Format(TimeLayout))
	if !end.IsZero() {
		label += "-" + end.Format(TimeLayout)
	}
	return label
}
