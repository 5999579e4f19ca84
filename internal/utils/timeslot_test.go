package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExpiryFor(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("TTL sooner than slot", func(t *testing.T) {
		slot := created.Add(10 * 24 * time.Hour)
		got := ExpiryFor(created, slot, 72*time.Hour, 30*time.Minute)
		assert.Equal(t, created.Add(72*time.Hour), got)
	})

	t.Run("Slot sooner than TTL", func(t *testing.T) {
		slot := created.Add(5 * time.Hour)
		got := ExpiryFor(created, slot, 72*time.Hour, 30*time.Minute)
		assert.Equal(t, slot.Add(-30*time.Minute), got)
	})

	t.Run("No cutoff", func(t *testing.T) {
		slot := created.Add(2 * time.Hour)
		got := ExpiryFor(created, slot, 72*time.Hour, 0)
		assert.Equal(t, slot, got)
	})
}

func TestSlotLabel(t *testing.T) {
	start := time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC)
	end := time.Date(2024, 5, 1, 19, 30, 0, 0, time.UTC)

	assert.Equal(t, "2024-05-01 18:00-19:30", SlotLabel(start, end))
	assert.Equal(t, "2024-05-01 18:00", SlotLabel(start, time.Time{}))
	assert.Equal(t, "", SlotLabel(time.Time{}, end))
}
