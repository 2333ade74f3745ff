package migration

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vanguardtable/vanguard/src/auth"
	"github.com/vanguardtable/vanguard/src/config"
	"github.com/vanguardtable/vanguard/src/db"
	"github.com/vanguardtable/vanguard/src/models"
)

// Creates only what's necessary to get the server running: a fresh schema.
// Not very useful for local dev on its own; sample data makes things a lot
// better.
func BareMinimumSeed() {
	resetDB()
	Migrate(LatestVersion())
}

// Seeds the database with sample data for local dev.
func SampleSeed() {
	BareMinimumSeed()

	ctx := context.Background()
	conn := db.NewConn()
	defer conn.Close(ctx)

	fmt.Println("Creating users (all with password \"password\")...")
	gm := seedUser(ctx, conn, "gm@example.com")
	seedUser(ctx, conn, "player@example.com")

	fmt.Println("Creating a sample encounter...")
	encounterId := uuid.New()
	_, err := conn.Exec(ctx,
		`INSERT INTO encounters (id, user_id, name) VALUES ($1, $2, $3)`,
		encounterId, gm.ID, "Ambush at the Crossroads",
	)
	if err != nil {
		panic(err)
	}

	type seedCreature struct {
		name         string
		initiative   int
		creatureType models.CreatureType
		imageUrl     string
	}
	creatures := []seedCreature{
		{"Aria", 18, models.CreatureTypePlayer, ""},
		{"Goblin Scout", 14, models.CreatureTypeEnemy, "/database_images/goblin.jpg"},
		{"Goblin Boss", 9, models.CreatureTypeEnemy, "/database_images/goblin.jpg"},
		{"Town Guard", 7, models.CreatureTypeAlly, ""},
	}
	for _, creature := range creatures {
		var imageUrl *string
		if creature.imageUrl != "" {
			imageUrl = &creature.imageUrl
		}
		_, err := conn.Exec(ctx,
			`
			INSERT INTO creatures (id, encounter_id, name, initiative, creature_type, image_url)
			VALUES ($1, $2, $3, $4, $5, $6)
			`,
			uuid.New(), encounterId, creature.name, creature.initiative, creature.creatureType, imageUrl,
		)
		if err != nil {
			panic(err)
		}
	}

	fmt.Println("Creating a sample preset...")
	presetId := uuid.New()
	_, err = conn.Exec(ctx,
		`INSERT INTO presets (id, user_id, name, description) VALUES ($1, $2, $3, $4)`,
		presetId, gm.ID, "Goblin Warband", "A classic low-level goblin fight",
	)
	if err != nil {
		panic(err)
	}
	for i := 0; i < 3; i++ {
		_, err := conn.Exec(ctx,
			`
			INSERT INTO preset_creatures (id, preset_id, name, initiative, creature_type, image_url)
			VALUES ($1, $2, $3, $4, $5, $6)
			`,
			uuid.New(), presetId, fmt.Sprintf("Goblin %d", i+1), 10+i, models.CreatureTypeEnemy, "/database_images/goblin.jpg",
		)
		if err != nil {
			panic(err)
		}
	}

	fmt.Println("Done!")
}

// Drops and recreates the configured database. The db role specified in the
// config must have the CREATEDB attribute: `ALTER ROLE vanguard WITH CREATEDB;`
func resetDB() {
	fmt.Println("Resetting database...")
	ctx := context.Background()

	// We connect to db "template1", because we have to connect to something
	// other than our own db in order to drop it. template1 must always exist
	// in postgres, as it's the db that gets cloned when you create new DBs.
	template1DSN := fmt.Sprintf("user=%s password=%s host=%s port=%d dbname=%s",
		config.Config.Postgres.User,
		config.Config.Postgres.Password,
		config.Config.Postgres.Hostname,
		config.Config.Postgres.Port,
		"template1",
	)
	// We have to use the low-level API of pgconn, because the pgx Exec always
	// wraps the query in a transaction.
	lowLevelConn, err := pgconn.Connect(ctx, template1DSN)
	if err != nil {
		panic(fmt.Errorf("failed to connect to db: %w", err))
	}
	defer lowLevelConn.Close(ctx)

	result := lowLevelConn.ExecParams(ctx, fmt.Sprintf("DROP DATABASE %s", config.Config.Postgres.DbName), nil, nil, nil, nil)
	_, err = result.Close()
	pgErr, isPgError := err.(*pgconn.PgError)
	if err != nil {
		if !(isPgError && pgErr.SQLState() == "3D000") { // 3D000 means "Database does not exist"
			panic(fmt.Errorf("failed to drop db: %w", err))
		}
	}

	result = lowLevelConn.ExecParams(ctx, fmt.Sprintf("CREATE DATABASE %s", config.Config.Postgres.DbName), nil, nil, nil, nil)
	_, err = result.Close()
	if err != nil {
		panic(fmt.Errorf("failed to create db: %w", err))
	}
}

func seedUser(ctx context.Context, conn db.ConnOrTx, email string) *models.User {
	user, err := db.QueryOne[models.User](ctx, conn,
		`
		INSERT INTO users (id, email, password)
		VALUES ($1, $2, '')
		RETURNING *
		`,
		uuid.New(), email,
	)
	if err != nil {
		panic(err)
	}

	err = auth.SetPassword(ctx, conn, user.ID, "password")
	if err != nil {
		panic(err)
	}

	return user
}
