package models

import (
	"time"

	"github.com/google/uuid"
)

type Entry struct {
	ID             uuid.UUID     `json:"id" db:"id"`
	WebsiteAddress string        `json:"website_address" db:"website_address"`
	VideoLink      *string       `json:"video_link" db:"video_link"`
	Description    *string       `json:"description" db:"description"`
	Remarks        *string       `json:"remarks" db:"remarks"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at" db:"updated_at"`
	CreatedBy      uuid.NullUUID `json:"created_by" db:"created_by"`
}

// EntryWithCreator is an Entry joined with the author's username.
// CreatorName is nil when the authoring user has since been deleted.
type EntryWithCreator struct {
	Entry
	CreatorName *string `json:"creator_name" db:"creator_name"`
}

// EntryRequest is the add/edit entry form payload. Optional fields left
// blank are stored as NULL.
type EntryRequest struct {
	WebsiteAddress string `json:"website_address" binding:"required"`
	VideoLink      string `json:"video_link"`
	Description    string `json:"description"`
	Remarks        string `json:"remarks"`
}

// ConfirmActionRequest drives the two-step confirmation for destructive
// operations: "request" arms, "confirm" executes, "cancel" disarms.
type ConfirmActionRequest struct {
	Action string `json:"action" binding:"required"`
}
