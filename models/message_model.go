package models

import (
	"time"

	"github.com/google/uuid"
)

type Message struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ConversationID uuid.UUID `gorm:"type:uuid;not null" json:"conversation_id"`
	SenderID       uuid.UUID `gorm:"type:uuid;not null" json:"sender_id"`

	Content   string `gorm:"type:text;not null" json:"content"`
	WasMasked bool   `gorm:"default:false" json:"was_masked"`
	IsRead    bool   `gorm:"default:false" json:"is_read"`

	Conversation Conversation `gorm:"foreignkey:ConversationID" json:"-"`
	Sender       User         `gorm:"foreignkey:SenderID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}
