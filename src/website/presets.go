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

type presetData struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Description     *string   `json:"description"`
	BackgroundImage *string   `json:"background_image"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Creatures []presetCreatureData `json:"creatures,omitempty"`
}

type presetCreatureData struct {
	ID           uuid.UUID           `json:"id"`
	PresetID     uuid.UUID           `json:"preset_id"`
	Name         string              `json:"name"`
	Initiative   int                 `json:"initiative"`
	CreatureType models.CreatureType `json:"creature_type"`
	ImageUrl     *string             `json:"image_url"`
}

func presetToData(preset *models.Preset) presetData {
	return presetData{
		ID:              preset.ID,
		Name:            preset.Name,
		Description:     preset.Description,
		BackgroundImage: preset.BackgroundImage,
		CreatedAt:       preset.CreatedAt,
		UpdatedAt:       preset.UpdatedAt,
	}
}

func presetCreatureToData(creature *models.PresetCreature) presetCreatureData {
	return presetCreatureData{
		ID:           creature.ID,
		PresetID:     creature.PresetID,
		Name:         creature.Name,
		Initiative:   creature.Initiative,
		CreatureType: creature.CreatureType,
		ImageUrl:     creature.ImageUrl,
	}
}

func fetchPreset(c *RequestContext) (*models.Preset, error) {
	id, err := uuid.Parse(c.PathParams["id"])
	if err != nil {
		return nil, db.NotFound
	}

	return db.QueryOne[models.Preset](c, c.Conn,
		`SELECT * FROM presets WHERE id = $1 AND user_id = $2`,
		id, c.CurrentUser.ID,
	)
}

func ListPresets(c *RequestContext) ResponseData {
	presets, err := db.Query[models.Preset](c, c.Conn,
		`SELECT * FROM presets WHERE user_id = $1 ORDER BY name ASC`,
		c.CurrentUser.ID,
	)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch presets"))
	}

	result := make([]presetData, 0, len(presets))
	for _, preset := range presets {
		result = append(result, presetToData(preset))
	}

	var res ResponseData
	res.WriteJson(result)
	return res
}

func CreatePreset(c *RequestContext) ResponseData {
	var body struct {
		Name            string  `json:"name"`
		Description     *string `json:"description"`
		BackgroundImage *string `json:"background_image"`
	}
	if err := c.DecodeJson(&body); err != nil {
		return c.ErrorResponse(http.StatusBadRequest, err)
	}
	if body.Name == "" {
		return c.RejectRequest("Preset name is required")
	}

	preset, err := db.QueryOne[models.Preset](c, c.Conn,
		`
		INSERT INTO presets (id, user_id, name, description, background_image)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING *
		`,
		uuid.New(), c.CurrentUser.ID, body.Name, body.Description, body.BackgroundImage,
	)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to create preset"))
	}

	res := ResponseData{StatusCode: http.StatusCreated}
	res.WriteJson(presetToData(preset))
	return res
}

func GetPreset(c *RequestContext) ResponseData {
	preset, err := fetchPreset(c)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return FourOhFour(c)
		}
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch preset"))
	}

	creatures, err := db.Query[models.PresetCreature](c, c.Conn,
		`
		SELECT * FROM preset_creatures
		WHERE preset_id = $1
		ORDER BY initiative DESC, created_at ASC
		`,
		preset.ID,
	)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch preset creatures"))
	}

	result := presetToData(preset)
	result.Creatures = make([]presetCreatureData, 0, len(creatures))
	for _, creature := range creatures {
		result.Creatures = append(result.Creatures, presetCreatureToData(creature))
	}

	var res ResponseData
	res.WriteJson(result)
	return res
}

func UpdatePreset(c *RequestContext) ResponseData {
	preset, err := fetchPreset(c)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return FourOhFour(c)
		}
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch preset"))
	}

	var body struct {
		Name            *string `json:"name"`
		Description     *string `json:"description"`
		BackgroundImage *string `json:"background_image"`
	}
	if err := c.DecodeJson(&body); err != nil {
		return c.ErrorResponse(http.StatusBadRequest, err)
	}

	var qb db.QueryBuilder
	qb.Add(`UPDATE presets SET updated_at = CURRENT_TIMESTAMP`)
	if body.Name != nil {
		if *body.Name == "" {
			return c.RejectRequest("Preset name cannot be empty")
		}
		qb.Add(`, name = $?`, *body.Name)
	}
	if body.Description != nil {
		qb.Add(`, description = $?`, *body.Description)
	}
	if body.BackgroundImage != nil {
		qb.Add(`, background_image = $?`, *body.BackgroundImage)
	}
	qb.Add(`WHERE id = $? RETURNING *`, preset.ID)

	updated, err := db.QueryOne[models.Preset](c, c.Conn, qb.String(), qb.Args()...)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to update preset"))
	}

	var res ResponseData
	res.WriteJson(presetToData(updated))
	return res
}

func DeletePreset(c *RequestContext) ResponseData {
	preset, err := fetchPreset(c)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return FourOhFour(c)
		}
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch preset"))
	}

	_, err = c.Conn.Exec(c, `DELETE FROM presets WHERE id = $1`, preset.ID)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to delete preset"))
	}

	var res ResponseData
	res.WriteJson(struct {
		Deleted bool `json:"deleted"`
	}{true})
	return res
}

func AddPresetCreature(c *RequestContext) ResponseData {
	preset, err := fetchPreset(c)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return FourOhFour(c)
		}
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch preset"))
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

	resolution := c.Bestiary.Resolve(body.Name, body.ImageUrl)

	creature, err := db.QueryOne[models.PresetCreature](c, c.Conn,
		`
		INSERT INTO preset_creatures (id, preset_id, name, initiative, creature_type, image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING *
		`,
		uuid.New(), preset.ID, body.Name, body.Initiative, body.CreatureType, resolution.Reference,
	)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to add creature to preset"))
	}

	res := ResponseData{StatusCode: http.StatusCreated}
	res.WriteJson(presetCreatureToData(creature))
	return res
}

func DeletePresetCreature(c *RequestContext) ResponseData {
	preset, err := fetchPreset(c)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return FourOhFour(c)
		}
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch preset"))
	}

	creatureId, err := uuid.Parse(c.PathParams["creatureId"])
	if err != nil {
		return FourOhFour(c)
	}

	tag, err := c.Conn.Exec(c,
		`DELETE FROM preset_creatures WHERE id = $1 AND preset_id = $2`,
		creatureId, preset.ID,
	)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to delete creature from preset"))
	}
	if tag.RowsAffected() == 0 {
		return FourOhFour(c)
	}

	var res ResponseData
	res.WriteJson(struct {
		Deleted bool `json:"deleted"`
	}{true})
	return res
}

// Copies all of a preset's creatures into an encounter. The preset's
// background image comes along too unless the encounter already has one.
func ApplyPreset(c *RequestContext) ResponseData {
	preset, err := fetchPreset(c)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return FourOhFour(c)
		}
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch preset"))
	}

	var body struct {
		EncounterID uuid.UUID `json:"encounter_id"`
	}
	if err := c.DecodeJson(&body); err != nil {
		return c.ErrorResponse(http.StatusBadRequest, err)
	}

	encounter, err := db.QueryOne[models.Encounter](c, c.Conn,
		`SELECT * FROM encounters WHERE id = $1 AND user_id = $2`,
		body.EncounterID, c.CurrentUser.ID,
	)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return FourOhFour(c)
		}
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch encounter"))
	}

	tx, err := c.Conn.Begin(c)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to start transaction"))
	}
	defer tx.Rollback(c)

	presetCreatures, err := db.Query[models.PresetCreature](c, tx,
		`SELECT * FROM preset_creatures WHERE preset_id = $1`,
		preset.ID,
	)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch preset creatures"))
	}

	for _, creature := range presetCreatures {
		_, err := tx.Exec(c,
			`
			INSERT INTO creatures (id, encounter_id, name, initiative, creature_type, image_url)
			VALUES ($1, $2, $3, $4, $5, $6)
			`,
			uuid.New(), encounter.ID, creature.Name, creature.Initiative, creature.CreatureType, creature.ImageUrl,
		)
		if err != nil {
			return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to copy creature into encounter"))
		}
	}

	if encounter.BackgroundImage == nil && preset.BackgroundImage != nil {
		_, err := tx.Exec(c,
			`UPDATE encounters SET background_image = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
			preset.BackgroundImage, encounter.ID,
		)
		if err != nil {
			return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to set encounter background"))
		}
	}

	err = tx.Commit(c)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to apply preset"))
	}

	var res ResponseData
	res.WriteJson(struct {
		Applied      bool `json:"applied"`
		NumCreatures int  `json:"num_creatures"`
	}{true, len(presetCreatures)})
	return res
}
