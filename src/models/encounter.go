package models

import (
	"time"

	"github.com/google/uuid"
)

type Encounter struct {
	ID     uuid.UUID `db:"id"`
	UserID uuid.UUID `db:"user_id"`

	Name            string  `db:"name"`
	BackgroundImage *string `db:"background_image"`
	Round           int     `db:"round"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
