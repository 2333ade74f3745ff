package website

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/vanguardtable/vanguard/src/db"
	"github.com/vanguardtable/vanguard/src/models"
	"github.com/vanguardtable/vanguard/src/oops"
)

type creatureData struct {
	ID           uuid.UUID           `json:"id"`
	EncounterID  uuid.UUID           `json:"encounter_id"`
	Name         string              `json:"name"`
	Initiative   int                 `json:"initiative"`
	CreatureType models.CreatureType `json:"creature_type"`
	ImageUrl     *string             `json:"image_url"`
	CreatedAt    time.Time           `json:"created_at"`
}

func creatureToData(creature *models.Creature) creatureData {
	return creatureData{
		ID:           creature.ID,
		EncounterID:  creature.EncounterID,
		Name:         creature.Name,
		Initiative:   creature.Initiative,
		CreatureType: creature.CreatureType,
		ImageUrl:     creature.ImageUrl,
		CreatedAt:    creature.CreatedAt,
	}
}

func ListCreatures(c *RequestContext) ResponseData {
	encounter, err := fetchEncounter(c, "id")
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return FourOhFour(c)
		}
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch encounter"))
	}

	creatures, err := db.Query[models.Creature](c, c.Conn,
		`
		SELECT * FROM creatures
		WHERE encounter_id = $1
		ORDER BY initiative DESC, created_at ASC
		`,
		encounter.ID,
	)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch creatures"))
	}

	result := make([]creatureData, 0, len(creatures))
	for _, creature := range creatures {
		result = append(result, creatureToData(creature))
	}

	var res ResponseData
	res.WriteJson(result)
	return res
}

func AddCreature(c *RequestContext) ResponseData {
	encounter, err := fetchEncounter(c, "id")
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return FourOhFour(c)
		}
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch encounter"))
	}

	var body struct {
		Name         string              `json:"name"`
		Initiative   int                 `json:"initiative"`
		CreatureType models.CreatureType `json:"creature_type"`
		ImageUrl     string              `json:"image_url"`
	}
	if err := c.DecodeJson(&body); err != nil {
		return c.ErrorResponse(http.StatusBadRequest, err)
	}
	if body.Name == "" {
		return c.RejectRequest("Creature name is required")
	}
	if body.CreatureType == "" {
		body.CreatureType = models.CreatureTypeOther
	}
	if !body.CreatureType.Valid() {
		return c.RejectRequest("Invalid creature type")
	}

	// Every creature gets a portrait: an explicit URL is taken as-is, and
	// anything else goes through name matching, worst case landing on the
	// placeholder image.
	resolution := c.Bestiary.Resolve(body.Name, body.ImageUrl)

	creature, err := db.QueryOne[models.Creature](c, c.Conn,
		`
		INSERT INTO creatures (id, encounter_id, name, initiative, creature_type, image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING *
		`,
		uuid.New(), encounter.ID, body.Name, body.Initiative, body.CreatureType, resolution.Reference,
	)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to add creature"))
	}

	res := ResponseData{StatusCode: http.StatusCreated}
	res.WriteJson(creatureToData(creature))
	return res
}

// Fetches a creature by path params, via its encounter so ownership is
// enforced the same way as everywhere else.
func fetchCreature(c *RequestContext) (*models.Creature, error) {
	encounter, err := fetchEncounter(c, "id")
	if err != nil {
		return nil, err
	}

	creatureId, err := uuid.Parse(c.PathParams["creatureId"])
	if err != nil {
		return nil, db.NotFound
	}

	return db.QueryOne[models.Creature](c, c.Conn,
		`SELECT * FROM creatures WHERE id = $1 AND encounter_id = $2`,
		creatureId, encounter.ID,
	)
}

func UpdateCreature(c *RequestContext) ResponseData {
	creature, err := fetchCreature(c)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return FourOhFour(c)
		}
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch creature"))
	}

	var body struct {
		Name         *string              `json:"name"`
		Initiative   *int                 `json:"initiative"`
		CreatureType *models.CreatureType `json:"creature_type"`
		ImageUrl     *string              `json:"image_url"`
	}
	if err := c.DecodeJson(&body); err != nil {
		return c.ErrorResponse(http.StatusBadRequest, err)
	}

	var qb db.QueryBuilder
	qb.Add(`UPDATE creatures SET id = id`)
	if body.Name != nil {
		if *body.Name == "" {
			return c.RejectRequest("Creature name cannot be empty")
		}
		qb.Add(`, name = $?`, *body.Name)
	}
	if body.Initiative != nil {
		qb.Add(`, initiative = $?`, *body.Initiative)
	}
	if body.CreatureType != nil {
		if !body.CreatureType.Valid() {
			return c.RejectRequest("Invalid creature type")
		}
		qb.Add(`, creature_type = $?`, *body.CreatureType)
	}
	if body.ImageUrl != nil {
		qb.Add(`, image_url = $?`, *body.ImageUrl)
	}
	qb.Add(`WHERE id = $? RETURNING *`, creature.ID)

	updated, err := db.QueryOne[models.Creature](c, c.Conn, qb.String(), qb.Args()...)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to update creature"))
	}

	var res ResponseData
	res.WriteJson(creatureToData(updated))
	return res
}

func DeleteCreature(c *RequestContext) ResponseData {
	creature, err := fetchCreature(c)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return FourOhFour(c)
		}
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch creature"))
	}

	_, err = c.Conn.Exec(c, `DELETE FROM creatures WHERE id = $1`, creature.ID)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to delete creature"))
	}

	var res ResponseData
	res.WriteJson(struct {
		Deleted bool `json:"deleted"`
	}{true})
	return res
}
