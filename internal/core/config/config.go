package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

type App struct {
	Name string
	Env  string // "production" / "development" / "test"
}

type Log struct {
	Level string
	JSON  bool
}

type Auth struct {
	// BcryptCost of 0 picks a default by environment: full cost in
	// production, minimum cost elsewhere so test suites stay fast.
	BcryptCost       int
	ResetTokenTTLMin int
	// AdminEmails is the static allow-list consulted by the admin check.
	AdminEmails []string
}

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type Config struct {
	App   App
	Log   Log
	Auth  Auth
	DB    DB
	Redis Redis `mapstructure:"redis"`
}

func Load(path string) *Config {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("read config: %v", err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		log.Fatalf("unmarshal config: %v", err)
	}
	return &c
}

// EffectiveBcryptCost resolves the configured cost, dropping to
// bcrypt.MinCost outside production when unset.
func (c *Config) EffectiveBcryptCost() int {
	if c.Auth.BcryptCost > 0 {
		return c.Auth.BcryptCost
	}
	if c.App.Env == "production" {
		return bcrypt.DefaultCost
	}
	return bcrypt.MinCost
}

// ResetTokenTTL is the validity window for password-reset tokens.
func (c *Config) ResetTokenTTL() time.Duration {
	if c.Auth.ResetTokenTTLMin <= 0 {
		return 2 * time.Hour
	}
	return time.Duration(c.Auth.ResetTokenTTLMin) * time.Minute
}
