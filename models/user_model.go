package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleStudent     Role = "student"
	RoleParent      Role = "parent"
	RoleTutor       Role = "tutor"
	RoleCityAdmin   Role = "city_admin"
	RoleGlobalAdmin Role = "global_admin"
)

type Capability string

const (
	CapBookLessons     Capability = "book_lessons"
	CapTeachLessons    Capability = "teach_lessons"
	CapModerateContent Capability = "moderate_content"
	CapManagePlatform  Capability = "manage_platform"
)

// roleCapabilities is the single place role-based access is decided.
// Handlers check capabilities, never raw role strings.
var roleCapabilities = map[Role]map[Capability]bool{
	RoleStudent:   {CapBookLessons: true},
	RoleParent:    {CapBookLessons: true},
	RoleTutor:     {CapTeachLessons: true},
	RoleCityAdmin: {CapModerateContent: true},
	RoleGlobalAdmin: {
		CapModerateContent: true,
		CapManagePlatform:  true,
	},
}

func (r Role) Can(cap Capability) bool {
	return roleCapabilities[r][cap]
}

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleStudent, RoleParent, RoleTutor, RoleCityAdmin, RoleGlobalAdmin:
		return Role(s), true
	}
	return "", false
}

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	FullName string    `gorm:"size:255;not null" json:"full_name"`
	Email    string    `gorm:"size:255;not null;unique" json:"email"`
	Password string    `gorm:"not null" json:"-"`
	Role     Role      `gorm:"size:20;not null;default:'student'" json:"role"`

	Phone         *string `gorm:"size:15" json:"phone"`
	IsActive      bool    `gorm:"default:true" json:"is_active"`
	EmailVerified bool    `gorm:"default:false" json:"email_verified"`

	Conversations []*Conversation `gorm:"many2many:conversation_participants;" json:"-"`

	ResetPasswordToken          *string    `gorm:"size:255;unique" json:"-"`
	ResetPasswordTokenExpiresAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
