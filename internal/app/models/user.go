package models

import (
	"time"

	"github.com/google/uuid"
)

// User mirrors an account owned by the session provider. Role and position are
// managed locally by the super-admin.
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Name      string    `json:"name" db:"name"`
	Role      RoleType  `json:"role" db:"role"`
	Position  string    `json:"position,omitempty" db:"position"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// EBProfile is the public profile of an Executive Board position holder
type EBProfile struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Position    string    `json:"position" db:"position"`
	Name        string    `json:"name" db:"name"`
	Email       string    `json:"email" db:"email"`
	MeetingLink string    `json:"meetingLink,omitempty" db:"meeting_link"`
	ImageRef    string    `json:"imageRef,omitempty" db:"image_ref"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}
