package config

import (
	"fmt"

	"github.com/rs/zerolog"
)

type Environment string

const (
	Live Environment = "live"
	Beta             = "beta"
	Dev              = "dev"
)

type VanguardConfig struct {
	Env      Environment `env:"ENV" envDefault:"dev"`
	Addr     string      `env:"ADDR" envDefault:":9001"`
	BaseUrl  string      `env:"BASE_URL" envDefault:"http://localhost:9001"`
	LogLevel string      `env:"LOG_LEVEL" envDefault:"info"`

	Postgres PostgresConfig `envPrefix:"POSTGRES_"`
	Auth     AuthConfig     `envPrefix:"AUTH_"`
	Storage  StorageConfig  `envPrefix:"STORAGE_"`
	Bestiary BestiaryConfig `envPrefix:"BESTIARY_"`
}

type AuthConfig struct {
	CookieDomain string `env:"COOKIE_DOMAIN"`
	CookieSecure bool   `env:"COOKIE_SECURE" envDefault:"false"`
}

func (c VanguardConfig) ZerologLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

type PostgresConfig struct {
	User     string `env:"USER" envDefault:"vanguard"`
	Password string `env:"PASSWORD" envDefault:"password"`
	Hostname string `env:"HOSTNAME" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"5432"`
	DbName   string `env:"DBNAME" envDefault:"vanguard"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"warn"`
	MinConn  int32  `env:"MIN_CONN" envDefault:"2"`
	MaxConn  int32  `env:"MAX_CONN" envDefault:"8"`
}

func (info PostgresConfig) DSN() string {
	return fmt.Sprintf("user=%s password=%s host=%s port=%d dbname=%s", info.User, info.Password, info.Hostname, info.Port, info.DbName)
}

type StorageConfig struct {
	// When true, uploads go to the S3-compatible blob store below. Local
	// storage remains the fallback if the client cannot be initialized.
	UseCloud bool `env:"USE_CLOUD" envDefault:"false"`

	S3Endpoint string `env:"S3_ENDPOINT"`
	S3Region   string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Key      string `env:"S3_KEY"`
	S3Secret   string `env:"S3_SECRET"`
	Bucket     string `env:"BUCKET" envDefault:"creature-images"`

	UploadRoot     string `env:"UPLOAD_ROOT" envDefault:"./uploads"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`
	MaxImageWidth  int    `env:"MAX_IMAGE_WIDTH" envDefault:"1920"`
	MaxImageHeight int    `env:"MAX_IMAGE_HEIGHT" envDefault:"1080"`
}

type BestiaryConfig struct {
	LookupPath string `env:"LOOKUP_PATH" envDefault:"./creature_database.json"`
	ImageDir   string `env:"IMAGE_DIR" envDefault:"./database_images"`
}
