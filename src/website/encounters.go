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

type encounterData struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	BackgroundImage *string   `json:"background_image"`
	Round           int       `json:"round"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Creatures []creatureData `json:"creatures,omitempty"`
}

func encounterToData(encounter *models.Encounter) encounterData {
	return encounterData{
		ID:              encounter.ID,
		Name:            encounter.Name,
		BackgroundImage: encounter.BackgroundImage,
		Round:           encounter.Round,
		CreatedAt:       encounter.CreatedAt,
		UpdatedAt:       encounter.UpdatedAt,
	}
}

// Fetches an encounter by its path param, enforcing that it belongs to the
// current user. Other users' encounters look like they don't exist.
func fetchEncounter(c *RequestContext, param string) (*models.Encounter, error) {
	id, err := uuid.Parse(c.PathParams[param])
	if err != nil {
		return nil, db.NotFound
	}

	return db.QueryOne[models.Encounter](c, c.Conn,
		`SELECT * FROM encounters WHERE id = $1 AND user_id = $2`,
		id, c.CurrentUser.ID,
	)
}

func ListEncounters(c *RequestContext) ResponseData {
	encounters, err := db.Query[models.Encounter](c, c.Conn,
		`SELECT * FROM encounters WHERE user_id = $1 ORDER BY created_at DESC`,
		c.CurrentUser.ID,
	)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch encounters"))
	}

	result := make([]encounterData, 0, len(encounters))
	for _, encounter := range encounters {
		result = append(result, encounterToData(encounter))
	}

	var res ResponseData
	res.WriteJson(result)
	return res
}

func CreateEncounter(c *RequestContext) ResponseData {
	var body struct {
		Name            string  `json:"name"`
		BackgroundImage *string `json:"background_image"`
	}
	if err := c.DecodeJson(&body); err != nil {
		return c.ErrorResponse(http.StatusBadRequest, err)
	}
	if body.Name == "" {
		return c.RejectRequest("Encounter name is required")
	}

	encounter, err := db.QueryOne[models.Encounter](c, c.Conn,
		`
		INSERT INTO encounters (id, user_id, name, background_image)
		VALUES ($1, $2, $3, $4)
		RETURNING *
		`,
		uuid.New(), c.CurrentUser.ID, body.Name, body.BackgroundImage,
	)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to create encounter"))
	}

	res := ResponseData{StatusCode: http.StatusCreated}
	res.WriteJson(encounterToData(encounter))
	return res
}

func GetEncounter(c *RequestContext) ResponseData {
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
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch creatures for encounter"))
	}

	result := encounterToData(encounter)
	result.Creatures = make([]creatureData, 0, len(creatures))
	for _, creature := range creatures {
		result.Creatures = append(result.Creatures, creatureToData(creature))
	}

	var res ResponseData
	res.WriteJson(result)
	return res
}

func UpdateEncounter(c *RequestContext) ResponseData {
	encounter, err := fetchEncounter(c, "id")
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return FourOhFour(c)
		}
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch encounter"))
	}

	var body struct {
		Name            *string `json:"name"`
		BackgroundImage *string `json:"background_image"`
		Round           *int    `json:"round"`
	}
	if err := c.DecodeJson(&body); err != nil {
		return c.ErrorResponse(http.StatusBadRequest, err)
	}

	var qb db.QueryBuilder
	qb.Add(`UPDATE encounters SET updated_at = CURRENT_TIMESTAMP`)
	if body.Name != nil {
		if *body.Name == "" {
			return c.RejectRequest("Encounter name cannot be empty")
		}
		qb.Add(`, name = $?`, *body.Name)
	}
	if body.BackgroundImage != nil {
		qb.Add(`, background_image = $?`, *body.BackgroundImage)
	}
	if body.Round != nil {
		if *body.Round < 0 {
			return c.RejectRequest("Round cannot be negative")
		}
		qb.Add(`, round = $?`, *body.Round)
	}
	qb.Add(`WHERE id = $? RETURNING *`, encounter.ID)

	updated, err := db.QueryOne[models.Encounter](c, c.Conn, qb.String(), qb.Args()...)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to update encounter"))
	}

	var res ResponseData
	res.WriteJson(encounterToData(updated))
	return res
}

func NextRound(c *RequestContext) ResponseData {
	encounter, err := fetchEncounter(c, "id")
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return FourOhFour(c)
		}
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch encounter"))
	}

	updated, err := db.QueryOne[models.Encounter](c, c.Conn,
		`
		UPDATE encounters
		SET round = round + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING *
		`,
		encounter.ID,
	)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to advance round"))
	}

	var res ResponseData
	res.WriteJson(encounterToData(updated))
	return res
}

func DeleteEncounter(c *RequestContext) ResponseData {
	encounter, err := fetchEncounter(c, "id")
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return FourOhFour(c)
		}
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch encounter"))
	}

	_, err = c.Conn.Exec(c, `DELETE FROM encounters WHERE id = $1`, encounter.ID)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to delete encounter"))
	}

	var res ResponseData
	res.WriteJson(struct {
		Deleted bool `json:"deleted"`
	}{true})
	return res
}
