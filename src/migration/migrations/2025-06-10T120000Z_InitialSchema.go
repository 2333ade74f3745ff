package migrations

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/vanguardtable/vanguard/src/migration/types"
)

func init() {
	registerMigration(InitialSchema{})
}

type InitialSchema struct{}

func (m InitialSchema) Version() types.MigrationVersion {
	return types.MigrationVersion(time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC))
}

func (m InitialSchema) Name() string {
	return "InitialSchema"
}

func (m InitialSchema) Description() string {
	return "Creates users, sessions, encounters, creatures, and presets"
}

func (m InitialSchema) Up(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		CREATE TABLE users (
			id UUID PRIMARY KEY,
			email VARCHAR(255) NOT NULL UNIQUE,
			password VARCHAR(128) NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE sessions (
			id VARCHAR(40) PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
			expires_at TIMESTAMP WITH TIME ZONE NOT NULL
		);

		CREATE TABLE encounters (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
			name VARCHAR(255) NOT NULL,
			background_image TEXT,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX encounters_user_id ON encounters (user_id);

		CREATE TABLE creatures (
			id UUID PRIMARY KEY,
			encounter_id UUID NOT NULL REFERENCES encounters (id) ON DELETE CASCADE,
			name VARCHAR(255) NOT NULL,
			initiative INT NOT NULL DEFAULT 0,
			creature_type VARCHAR(16) NOT NULL DEFAULT 'other',
			image_url TEXT,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX creatures_encounter_id ON creatures (encounter_id);

		CREATE TABLE presets (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
			name VARCHAR(255) NOT NULL,
			description TEXT,
			background_image TEXT,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX presets_user_id ON presets (user_id);

		CREATE TABLE preset_creatures (
			id UUID PRIMARY KEY,
			preset_id UUID NOT NULL REFERENCES presets (id) ON DELETE CASCADE,
			name VARCHAR(255) NOT NULL,
			initiative INT NOT NULL DEFAULT 0,
			creature_type VARCHAR(16) NOT NULL DEFAULT 'other',
			image_url TEXT,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX preset_creatures_preset_id ON preset_creatures (preset_id);
	`)
	return err
}

func (m InitialSchema) Down(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		DROP TABLE preset_creatures;
		DROP TABLE presets;
		DROP TABLE creatures;
		DROP TABLE encounters;
		DROP TABLE sessions;
		DROP TABLE users;
	`)
	return err
}
