package memory

import (
	"fmt"
	"os"
	"time"

	"fieldmatch-backend/internal/domain"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Seed is the YAML fixture format used to populate bookings and users when
// running without the booking system's database.
type Seed struct {
	Users []struct {
		ID    int64  `yaml:"id"`
		Name  string `yaml:"name"`
		Email string `yaml:"email"`
		Phone string `yaml:"phone"`
	} `yaml:"users"`
	Bookings []struct {
		ID          int64  `yaml:"id"`
		UserID      int64  `yaml:"user_id"`
		Status      string `yaml:"status"`
		FieldName   string `yaml:"field_name"`
		ComplexName string `yaml:"complex_name"`
		SlotStart   string `yaml:"slot_start"`
		SlotEnd     string `yaml:"slot_end"`
		Price       string `yaml:"price"`
	} `yaml:"bookings"`
}

// LoadSeedFile reads a seed file and applies it to the store.
func (s *Store) LoadSeedFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("failed to parse seed file: %w", err)
	}
	return s.ApplySeed(seed)
}

func (s *Store) ApplySeed(seed Seed) error {
	for _, u := range seed.Users {
		s.PutUser(domain.UserContact{ID: u.ID, Name: u.Name, Email: u.Email, PhoneNumber: u.Phone})
	}
	for _, b := range seed.Bookings {
		start, err := time.Parse(time.RFC3339, b.SlotStart)
		if err != nil {
			return fmt.Errorf("booking %d: invalid slot_start: %w", b.ID, err)
		}
		end, err := time.Parse(time.RFC3339, b.SlotEnd)
		if err != nil {
			return fmt.Errorf("booking %d: invalid slot_end: %w", b.ID, err)
		}
		price := decimal.Zero
		if b.Price != "" {
			if price, err = decimal.NewFromString(b.Price); err != nil {
				return fmt.Errorf("booking %d: invalid price: %w", b.ID, err)
			}
		}
		s.PutBooking(domain.Booking{
			ID:          b.ID,
			UserID:      b.UserID,
			Status:      domain.BookingStatus(b.Status),
			FieldName:   b.FieldName,
			ComplexName: b.ComplexName,
			SlotStart:   start,
			SlotEnd:     end,
			Price:       price,
		})
	}
	return nil
}
