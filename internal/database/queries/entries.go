package queries

import (
	"database/sql"
	"errors"
	"time"

	"github.com/aitracker-project/aitracker-server/internal/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type EntryQueries struct {
	db *sqlx.DB
}

func NewEntryQueries(db *sqlx.DB) *EntryQueries {
	return &EntryQueries{db: db}
}

// CreateEntry inserts a new entry authored by the given user.
func (q *EntryQueries) CreateEntry(websiteAddress string, videoLink, description, remarks *string, createdBy uuid.UUID) (*models.Entry, error) {
	now := time.Now().UTC()
	entry := &models.Entry{
		ID:             uuid.New(),
		WebsiteAddress: websiteAddress,
		VideoLink:      videoLink,
		Description:    description,
		Remarks:        remarks,
		CreatedAt:      now,
		UpdatedAt:      now,
		CreatedBy:      uuid.NullUUID{UUID: createdBy, Valid: true},
	}

	query := `
		INSERT INTO entries (
			id, website_address, video_link, description, remarks,
			created_at, updated_at, created_by
		) VALUES (
			:id, :website_address, :video_link, :description, :remarks,
			:created_at, :updated_at, :created_by
		)
	`

	if _, err := q.db.NamedExec(query, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// GetEntryByID retrieves a single entry.
func (q *EntryQueries) GetEntryByID(id uuid.UUID) (*models.Entry, error) {
	var entry models.Entry
	query := `SELECT * FROM entries WHERE id = ?`
	err := q.db.Get(&entry, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetAllEntries returns all entries joined with the author's username,
// newest first. The join is a LEFT JOIN so entries whose author has been
// deleted still appear, with no creator name.
func (q *EntryQueries) GetAllEntries() ([]models.EntryWithCreator, error) {
	var entries []models.EntryWithCreator
	query := `
		SELECT e.*, u.username AS creator_name
		FROM entries e
		LEFT JOIN users u ON e.created_by = u.id
		ORDER BY e.created_at DESC
	`
	err := q.db.Select(&entries, query)
	return entries, err
}

// UpdateEntry replaces an entry's editable fields and stamps updated_at.
// Returns true iff a row matched. created_at and created_by are immutable.
func (q *EntryQueries) UpdateEntry(id uuid.UUID, websiteAddress string, videoLink, description, remarks *string) (bool, error) {
	query := `
		UPDATE entries
		SET website_address = ?, video_link = ?, description = ?, remarks = ?,
			updated_at = ?
		WHERE id = ?
	`
	res, err := q.db.Exec(query, websiteAddress, videoLink, description, remarks, time.Now().UTC(), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteEntry removes an entry. Returns true iff a row matched.
func (q *EntryQueries) DeleteEntry(id uuid.UUID) (bool, error) {
	res, err := q.db.Exec(`DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CountEntries returns the total number of entries and the creation time of
// the newest one (nil when the table is empty).
func (q *EntryQueries) CountEntries() (int, *time.Time, error) {
	var count int
	if err := q.db.Get(&count, `SELECT COUNT(*) FROM entries`); err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	var newest time.Time
	if err := q.db.Get(&newest, `SELECT created_at FROM entries ORDER BY created_at DESC LIMIT 1`); err != nil {
		return 0, nil, err
	}
	return count, &newest, nil
}
