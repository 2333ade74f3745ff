package models

import (
	"time"

	"github.com/google/uuid"
)

// A Preset is a reusable group of creatures that can be copied into an
// encounter in one go.
type Preset struct {
	ID     uuid.UUID `db:"id"`
	UserID uuid.UUID `db:"user_id"`

	Name            string  `db:"name"`
	Description     *string `db:"description"`
	BackgroundImage *string `db:"background_image"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type PresetCreature struct {
	ID       uuid.UUID `db:"id"`
	PresetID uuid.UUID `db:"preset_id"`

	Name         string       `db:"name"`
	Initiative   int          `db:"initiative"`
	CreatureType CreatureType `db:"creature_type"`
	ImageUrl     *string      `db:"image_url"`

	CreatedAt time.Time `db:"created_at"`
}
