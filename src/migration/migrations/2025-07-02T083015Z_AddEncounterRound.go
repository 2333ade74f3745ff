package migrations

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/vanguardtable/vanguard/src/migration/types"
)

func init() {
	registerMigration(AddEncounterRound{})
}

type AddEncounterRound struct{}

func (m AddEncounterRound) Version() types.MigrationVersion {
	return types.MigrationVersion(time.Date(2025, 7, 2, 8, 30, 15, 0, time.UTC))
}

func (m AddEncounterRound) Name() string {
	return "AddEncounterRound"
}

func (m AddEncounterRound) Description() string {
	return "Adds a round counter to encounters"
}

func (m AddEncounterRound) Up(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		ALTER TABLE encounters ADD COLUMN round INT NOT NULL DEFAULT 0;
	`)
	return err
}

func (m AddEncounterRound) Down(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		ALTER TABLE encounters DROP COLUMN round;
	`)
	return err
}
