package config

import (
	"sync"
)

var (
	globalConfig Config
	initOnce     sync.Once
)

type Config struct {
	Database DatabaseConfig `json:"database" envPrefix:"DB_" validate:"required"`
	Redis    RedisConfig    `json:"redis" envPrefix:"REDIS_"`
	Token    TokenConfig    `json:"token" envPrefix:"TOKEN_" validate:"required"`
}

type DatabaseConfig struct {
	Host           string `json:"host" env:"HOST" validate:"required,hostname|ip"`
	Port           string `json:"port" env:"PORT" validate:"required,numeric"`
	User           string `json:"user" env:"USER" validate:"required"`
	Password       string `json:"password" env:"PASSWORD" validate:"required"`
	DBName         string `json:"db_name" env:"NAME" validate:"required"`
	SSLMode        string `json:"ssl_mode" env:"SSL_MODE" validate:"required,oneof=disable require verify-ca verify-full"`
	MigrationsPath string `json:"migrations_path" env:"MIGRATIONS_PATH" validate:"omitempty"`
}

// RedisConfig configures the access-token revocation blacklist. An empty Addr
// disables the blacklist entirely; the token store stays authoritative either way.
type RedisConfig struct {
	Addr     string `json:"addr" env:"ADDR" validate:"omitempty,hostname_port"`
	Password string `json:"password" env:"PASSWORD" validate:"omitempty"`
	DB       int    `json:"db" env:"DB" validate:"gte=0"`
}

type TokenConfig struct {
	// SigningSecret is base64-encoded HMAC key material. It must decode to at
	// least 256 bits; shorter secrets abort startup.
	SigningSecret   string   `json:"signing_secret" env:"SIGNING_SECRET" validate:"required,base64"`
	AccessTokenTTL  Duration `json:"access_token_ttl" env:"ACCESS_TTL" validate:"required,duration_gt0"`
	RefreshTokenTTL Duration `json:"refresh_token_ttl" env:"REFRESH_TTL" validate:"required,duration_gt0"`
	SweepInterval   Duration `json:"sweep_interval" env:"SWEEP_INTERVAL" validate:"required,duration_gt0"`
}
