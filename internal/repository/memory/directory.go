package memory

import (
	"context"
	"time"

	"fieldmatch-backend/internal/domain"
	"fieldmatch-backend/internal/repository"
)

type bookingGateway struct {
	st *state
}

func (g *bookingGateway) GetBooking(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	g.st.mu.Lock()
	defer g.st.mu.Unlock()
	b, ok := g.st.bookings[bookingID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (g *bookingGateway) MarkOpponentFound(ctx context.Context, bookingID, matchRequestID int64) error {
	g.st.mu.Lock()
	defer g.st.mu.Unlock()
	b, ok := g.st.bookings[bookingID]
	if !ok {
		return repository.ErrNotFound
	}
	b.OpponentFound = true
	return nil
}

type userDirectory struct {
	st *state
}

func (d *userDirectory) GetContact(ctx context.Context, userID int64) (*domain.UserContact, error) {
	d.st.mu.Lock()
	defer d.st.mu.Unlock()
	u, ok := d.st.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (d *userDirectory) GetContacts(ctx context.Context, userIDs []int64) (map[int64]domain.UserContact, error) {
	d.st.mu.Lock()
	defer d.st.mu.Unlock()
	contacts := make(map[int64]domain.UserContact, len(userIDs))
	for _, id := range userIDs {
		if u, ok := d.st.users[id]; ok {
			contacts[id] = u
		}
	}
	return contacts, nil
}

type notificationRepository struct {
	st *state
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	r.st.nextNotificationID++
	n.ID = r.st.nextNotificationID
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	r.st.notifications = append(r.st.notifications, *n)
	return nil
}
