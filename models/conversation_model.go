package models

import (
	"time"

	"github.com/google/uuid"
)

type Conversation struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Participants []*User   `gorm:"many2many:conversation_participants;" json:"participants"`

	// Contact details stay masked in messages until the participants share a
	// confirmed booking.
	ContactsRevealed bool `gorm:"default:false" json:"contacts_revealed"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
