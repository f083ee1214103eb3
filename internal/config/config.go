// Package config loads router settings from a TOML file with TOORAK_*
// environment overrides.
//
// Key material never has a built-in default. Supply either a base64 master
// secret, from which each tier key is derived, or explicit base64 tier keys.
// An explicit tier key wins over the derived one.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"toorak_vpn/internal/cryptographic/encryption"
	"toorak_vpn/internal/cryptographic/kdf"
	"toorak_vpn/internal/model"
	"toorak_vpn/internal/protector"
)

type (
	Config struct {
		Server    ServerConfig    `toml:"server"`
		Redis     RedisConfig     `toml:"redis"`
		Mongo     MongoConfig     `toml:"mongo"`
		Protector ProtectorConfig `toml:"protector"`
		Keys      KeysConfig      `toml:"keys"`
		Log       LogConfig       `toml:"log"`
	}

	ServerConfig struct {
		Addr string `toml:"addr"`
	}

	RedisConfig struct {
		Addr     string `toml:"addr"`
		Password string `toml:"password"`
		DB       int    `toml:"db"`
		// Enabled turns on per-tier route queues.
		Enabled bool `toml:"enabled"`
		// RouteTTL expires a route queue that nobody drains. Zero disables it.
		RouteTTL time.Duration `toml:"route_ttl"`
	}

	MongoConfig struct {
		URI      string `toml:"uri"`
		Database string `toml:"database"`
		// Enabled turns on record persistence.
		Enabled bool `toml:"enabled"`
	}

	ProtectorConfig struct {
		CacheCapacity         int      `toml:"cache_capacity"`
		Jurisdiction          string   `toml:"jurisdiction"`
		AcceptedJurisdictions []string `toml:"accepted_jurisdictions"`
		SaltPrefix            string   `toml:"salt_prefix"`
	}

	// KeysConfig values are base64 encoded.
	KeysConfig struct {
		Master         string `toml:"master"`
		Standard       string `toml:"standard"`
		Justice        string `toml:"justice"`
		LawEnforcement string `toml:"law_enforcement"`
	}

	LogConfig struct {
		Level       string `toml:"level"`
		Development bool   `toml:"development"`
	}
)

var ErrNoKeyMaterial = errors.New("config: no key material (set keys.master or all tier keys)")

func Default() *Config {
	return &Config{
		Server: ServerConfig{Addr: "localhost:9090"},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			Enabled:  true,
			RouteTTL: 24 * time.Hour,
		},
		Mongo: MongoConfig{
			URI:      "mongodb://localhost:27017",
			Database: "toorak",
			Enabled:  true,
		},
		Protector: ProtectorConfig{
			CacheCapacity:         100,
			Jurisdiction:          protector.DefaultJurisdiction,
			AcceptedJurisdictions: append([]string(nil), protector.DefaultAcceptedJurisdictions...),
			SaltPrefix:            protector.DefaultSaltPrefix,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults (a missing path is allowed when empty),
// applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("config: decode %s: %w", path, err)
		}
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides reads:
//   - TOORAK_ADDR, TOORAK_LOG_LEVEL
//   - TOORAK_REDIS_ADDR, TOORAK_REDIS_PASSWORD, TOORAK_REDIS_DB,
//     TOORAK_REDIS_ROUTE_TTL (a Go duration such as "6h")
//   - TOORAK_MONGO_URI, TOORAK_MONGO_DB
//   - TOORAK_CACHE_CAPACITY
//   - TOORAK_MASTER_KEY, TOORAK_STANDARD_KEY, TOORAK_JUSTICE_KEY,
//     TOORAK_LAW_ENFORCEMENT_KEY
func (c *Config) applyEnvOverrides() error {
	strs := map[string]*string{
		"TOORAK_ADDR":                &c.Server.Addr,
		"TOORAK_LOG_LEVEL":           &c.Log.Level,
		"TOORAK_REDIS_ADDR":          &c.Redis.Addr,
		"TOORAK_REDIS_PASSWORD":      &c.Redis.Password,
		"TOORAK_MONGO_URI":           &c.Mongo.URI,
		"TOORAK_MONGO_DB":            &c.Mongo.Database,
		"TOORAK_MASTER_KEY":          &c.Keys.Master,
		"TOORAK_STANDARD_KEY":        &c.Keys.Standard,
		"TOORAK_JUSTICE_KEY":         &c.Keys.Justice,
		"TOORAK_LAW_ENFORCEMENT_KEY": &c.Keys.LawEnforcement,
	}
	for env, dst := range strs {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"TOORAK_REDIS_DB":       &c.Redis.DB,
		"TOORAK_CACHE_CAPACITY": &c.Protector.CacheCapacity,
	}
	for env, dst := range ints {
		v := os.Getenv(env)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", env, err)
		}
		*dst = n
	}

	if v := os.Getenv("TOORAK_REDIS_ROUTE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: TOORAK_REDIS_ROUTE_TTL: %w", err)
		}
		c.Redis.RouteTTL = ttl
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("config: server.addr is empty")
	}
	if c.Protector.CacheCapacity <= 0 {
		return fmt.Errorf("config: protector.cache_capacity must be positive, got %d", c.Protector.CacheCapacity)
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return errors.New("config: redis.addr is empty")
	}
	if c.Redis.RouteTTL < 0 {
		return fmt.Errorf("config: redis.route_ttl must not be negative, got %s", c.Redis.RouteTTL)
	}
	if c.Mongo.Enabled && (c.Mongo.URI == "" || c.Mongo.Database == "") {
		return errors.New("config: mongo.uri and mongo.database are required")
	}
	if _, err := c.TierKeys(); err != nil {
		return err
	}
	return nil
}

// TierKeys decodes or derives the three tier keys.
func (c *Config) TierKeys() (protector.Keys, error) {
	var master []byte
	if c.Keys.Master != "" {
		var err error
		master, err = decodeKey("master", c.Keys.Master, false)
		if err != nil {
			return protector.Keys{}, err
		}
	}

	resolve := func(tier model.Tier, explicit string) ([]byte, error) {
		if explicit != "" {
			return decodeKey(string(tier), explicit, true)
		}
		if master == nil {
			return nil, ErrNoKeyMaterial
		}
		return kdf.DeriveKey(master, string(tier))
	}

	var keys protector.Keys
	var err error
	if keys.Standard, err = resolve(model.TierStandard, c.Keys.Standard); err != nil {
		return protector.Keys{}, err
	}
	if keys.Justice, err = resolve(model.TierJustice, c.Keys.Justice); err != nil {
		return protector.Keys{}, err
	}
	if keys.LawEnforcement, err = resolve(model.TierLawEnforcement, c.Keys.LawEnforcement); err != nil {
		return protector.Keys{}, err
	}
	return keys, nil
}

func decodeKey(name, value string, aesKey bool) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(value))
	if err != nil {
		return nil, fmt.Errorf("config: %s key: %w", name, err)
	}
	if aesKey && !encryption.ValidKey(b) {
		return nil, fmt.Errorf("config: %s key: %w", name, encryption.ErrInvalidKey)
	}
	if len(b) < 16 {
		return nil, fmt.Errorf("config: %s key: need at least 16 bytes, got %d", name, len(b))
	}
	return b, nil
}

func (c *Config) ProtectorOptions() protector.Options {
	return protector.Options{
		CacheCapacity:         c.Protector.CacheCapacity,
		Jurisdiction:          c.Protector.Jurisdiction,
		AcceptedJurisdictions: c.Protector.AcceptedJurisdictions,
		SaltPrefix:            c.Protector.SaltPrefix,
	}
}
