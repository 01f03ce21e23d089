package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Task is a unit of work owned by exactly one user.
type Task struct {
	bun.BaseModel `bun:"table:tasks,alias:t"`

	ID          string    `bun:"id,pk,type:varchar(36)"`
	Title       string    `bun:"title,notnull"`
	IsCompleted bool      `bun:"is_completed,notnull,default:false"`
	UserID      string    `bun:"user_id,notnull,type:varchar(36)"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:current_timestamp"`

	User *User `bun:"rel:belongs-to,join:user_id=id"`
}
