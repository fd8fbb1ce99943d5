package queries

import (
	"database/sql"
	"errors"
	"time"

	"github.com/aitracker-project/aitracker-server/internal/auth"
	"github.com/aitracker-project/aitracker-server/internal/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

type UserQueries struct {
	db *sqlx.DB
}

func NewUserQueries(db *sqlx.DB) *UserQueries {
	return &UserQueries{db: db}
}

// CreateUser inserts a new user. The password must already be hashed.
// A duplicate username is reported as ErrUsernameTaken; the uniqueness
// check is left entirely to the storage layer.
func (q *UserQueries) CreateUser(username, hashedPassword string, isAdmin bool) (*models.User, error) {
	user := &models.User{
		ID:        uuid.New(),
		Username:  username,
		Password:  hashedPassword,
		IsAdmin:   isAdmin,
		CreatedAt: time.Now().UTC(),
	}

	query := `
		INSERT INTO users (
			id, username, password, is_admin, created_at
		) VALUES (
			:id, :username, :password, :is_admin, :created_at
		)
	`

	if _, err := q.db.NamedExec(query, user); err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	return user, nil
}

// GetUserByUsername retrieves a user by username, including the password
// hash for credential verification.
func (q *UserQueries) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	query := `SELECT * FROM users WHERE username = ?`
	err := q.db.Get(&user, query, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID with the password hash excluded.
func (q *UserQueries) GetUserByID(id uuid.UUID) (*models.User, error) {
	var user models.User
	query := `SELECT id, username, is_admin, created_at FROM users WHERE id = ?`
	err := q.db.Get(&user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetAllUsers returns all users, newest first, with password hashes excluded.
func (q *UserQueries) GetAllUsers() ([]models.User, error) {
	var users []models.User
	query := `SELECT id, username, is_admin, created_at FROM users ORDER BY created_at DESC`
	err := q.db.Select(&users, query)
	return users, err
}

// CountUsers returns the total number of users.
func (q *UserQueries) CountUsers() (int, error) {
	var count int
	err := q.db.Get(&count, `SELECT COUNT(*) FROM users`)
	return count, err
}

// UpdateUserPassword replaces a user's password hash.
// Returns true iff a row matched.
func (q *UserQueries) UpdateUserPassword(id uuid.UUID, hashedPassword string) (bool, error) {
	query := `UPDATE users SET password = ? WHERE id = ?`
	res, err := q.db.Exec(query, hashedPassword, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteUser removes a user. Returns true iff a row matched. Entries
// authored by the user are kept; their creator resolves to nothing.
func (q *UserQueries) DeleteUser(id uuid.UUID) (bool, error) {
	res, err := q.db.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// EnsureDefaultAdmin creates the bootstrap admin account when no user with
// that username exists yet. Safe to call on every process start.
func (q *UserQueries) EnsureDefaultAdmin(username, password string) error {
	_, err := q.GetUserByUsername(username)
	if err == nil {
		return nil // already bootstrapped
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	if _, err := q.CreateUser(username, hashed, true); err != nil {
		return err
	}
	log.Info().Str("username", username).Msg("created default admin user")
	return nil
}
