package models

import (
	"time"

	"github.com/google/uuid"
)

type CreatureType string

const (
	CreatureTypePlayer CreatureType = "player"
	CreatureTypeEnemy  CreatureType = "enemy"
	CreatureTypeAlly   CreatureType = "ally"
	CreatureTypeOther  CreatureType = "other"
)

func (t CreatureType) Valid() bool {
	switch t {
	case CreatureTypePlayer, CreatureTypeEnemy, CreatureTypeAlly, CreatureTypeOther:
		return true
	}
	return false
}

type Creature struct {
	ID          uuid.UUID `db:"id"`
	EncounterID uuid.UUID `db:"encounter_id"`

	Name         string       `db:"name"`
	Initiative   int          `db:"initiative"`
	CreatureType CreatureType `db:"creature_type"`
	ImageUrl     *string      `db:"image_url"`

	CreatedAt time.Time `db:"created_at"`
}
