package postgres

import (
	"context"
	"database/sql"
	"errors"

	"fieldmatch-backend/internal/domain"
	"fieldmatch-backend/internal/repository"

	"github.com/lib/pq"
)

type userDirectory struct {
	db *sql.DB
}

func NewUserDirectory(db *sql.DB) repository.UserDirectory {
	return &userDirectory{db: db}
}

func (r *userDirectory) GetContact(ctx context.Context, userID int64) (*domain.UserContact, error) {
	u := &domain.UserContact{}
	query := `SELECT id, name, email, phone_number FROM users WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&u.ID, &u.Name, &u.Email, &u.PhoneNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *userDirectory) GetContacts(ctx context.Context, userIDs []int64) (map[int64]domain.UserContact, error) {
	contacts := make(map[int64]domain.UserContact, len(userIDs))
	if len(userIDs) == 0 {
		return contacts, nil
	}
	query := `SELECT id, name, email, phone_number FROM users WHERE id = ANY($1)`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(userIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var u domain.UserContact
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PhoneNumber); err != nil {
			return nil, err
		}
		contacts[u.ID] = u
	}
	return contacts, rows.Err()
}
