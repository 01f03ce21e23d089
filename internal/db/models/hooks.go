package models

import (
	"context"
	"time"

	"github.com/terraconstructs/taskapi/internal/db/bunx"
	"github.com/uptrace/bun"
)

var (
	_ bun.BeforeAppendModelHook = (*User)(nil)
	_ bun.BeforeAppendModelHook = (*Task)(nil)
)

// BeforeAppendModel assigns the primary key and maintains timestamps.
func (u *User) BeforeAppendModel(_ context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.InsertQuery:
		if u.ID == "" {
			u.ID = bunx.NewUUIDv7()
		}
		touch(&u.CreatedAt, &u.UpdatedAt, true)
	case *bun.UpdateQuery:
		touch(&u.CreatedAt, &u.UpdatedAt, false)
	}
	return nil
}

// BeforeAppendModel assigns the primary key and maintains timestamps.
func (t *Task) BeforeAppendModel(_ context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.InsertQuery:
		if t.ID == "" {
			t.ID = bunx.NewUUIDv7()
		}
		touch(&t.CreatedAt, &t.UpdatedAt, true)
	case *bun.UpdateQuery:
		touch(&t.CreatedAt, &t.UpdatedAt, false)
	}
	return nil
}

func touch(created, updated *time.Time, insert bool) {
	now := time.Now().UTC()
	if insert && created.IsZero() {
		*created = now
	}
	*updated = now
}
