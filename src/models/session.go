package models

import (
	"time"

	"github.com/google/uuid"
)

type Session struct {
	ID        string    `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	ExpiresAt time.Time `db:"expires_at"`
}
