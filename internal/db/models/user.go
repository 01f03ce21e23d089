package models

import (
	"time"

	"github.com/uptrace/bun"
)

// User is a person who owns tasks. Local users carry a bcrypt PasswordHash
// and authenticate with Basic credentials; users provisioned from the
// identity provider carry Subject instead.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           string    `bun:"id,pk,type:varchar(36)"`
	Subject      *string   `bun:"subject,unique"` // external subject, e.g. "auth0|5f1c..."
	FirstName    string    `bun:"first_name,notnull,default:''"`
	LastName     string    `bun:"last_name,notnull,default:''"`
	Username     string    `bun:"username,notnull"`
	Email        string    `bun:"email,notnull"`
	PasswordHash *string   `bun:"password_hash"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt    time.Time `bun:"updated_at,notnull,default:current_timestamp"`

	Tasks []*Task `bun:"rel:has-many,join:id=user_id"`
}

// ExternalSubject returns the identity provider subject or "" for local users.
func (u *User) ExternalSubject() string {
	if u == nil || u.Subject == nil {
		return ""
	}
	return *u.Subject
}

// HasPassword reports whether the user can authenticate with Basic credentials.
func (u *User) HasPassword() bool {
	return u != nil && u.PasswordHash != nil && *u.PasswordHash != ""
}
