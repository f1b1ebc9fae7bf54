package config

import (
	"fmt"

	"k8s.io/apimachinery/pkg/util/validation/field"
)

// Environment variable names for server configuration
const (
	EnvCharityPort            = "CHARITY_PORT"
	EnvCharityPersistenceType = "CHARITY_PERSISTENCE_TYPE"
	EnvCharityDataDir         = "CHARITY_DATA_DIR"
	EnvCharityRedisAddress    = "CHARITY_REDIS_ADDRESS"
	EnvCharityRedisPassword   = "CHARITY_REDIS_PASSWORD"
	EnvCharityRedisDB         = "CHARITY_REDIS_DB"
	EnvCharityRateLimit       = "CHARITY_RATE_LIMIT"
	EnvCharityVerbose         = "CHARITY_VERBOSE"
)

type PersistenceType string

func (p PersistenceType) String() string {
	return string(p)
}

const (
	PersistenceTypeMemory PersistenceType = "memory"
	PersistenceTypeBadger PersistenceType = "badger"
	PersistenceTypeRedis  PersistenceType = "redis"
)

// ParsePersistenceType converts a string flag value into a PersistenceType.
func ParsePersistenceType(s string) (PersistenceType, error) {
	switch PersistenceType(s) {
	case PersistenceTypeMemory:
		return PersistenceTypeMemory, nil
	case PersistenceTypeBadger:
		return PersistenceTypeBadger, nil
	case PersistenceTypeRedis:
		return PersistenceTypeRedis, nil
	default:
		return "", fmt.Errorf("unsupported persistence type: %s (supported: memory, badger, redis)", s)
	}
}

// RedisConfig is the Redis connection sub-config.
type RedisConfig struct {
	Address  string `json:"address"`
	Password string `json:"password,omitempty"`
	DB       int    `json:"db"`
}

// Validate validates the Redis sub-config.
func (rc *RedisConfig) Validate() error {
	var allErrors field.ErrorList
	if rc.Address == "" {
		allErrors = append(allErrors, field.Required(field.NewPath("address"), "redis address is required"))
	}
	if rc.DB < 0 || rc.DB > 15 {
		allErrors = append(allErrors, field.Invalid(field.NewPath("db"), rc.DB, "redis db must be between 0 and 15"))
	}
	if len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}

// ServerConfig represents the complete configuration for the charity ledger
// server.
type ServerConfig struct {
	Port int `json:"port"`

	// Persistence backend selection
	Persistence PersistenceType `json:"persistence_type"`
	DataDir     string          `json:"data_dir,omitempty"` // badger only
	Redis       *RedisConfig    `json:"redis,omitempty"`    // redis only

	// RateLimit is the allowed requests per second; 0 disables limiting.
	RateLimit float64 `json:"rate_limit"`
	RateBurst int     `json:"rate_burst"`

	// Operational settings
	Verbose bool `json:"verbose"`
}

// Validate validates the server configuration.
func (c *ServerConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1-65535, got %d", c.Port)
	}

	switch c.Persistence {
	case PersistenceTypeMemory:
		// No further settings needed
	case PersistenceTypeBadger:
		if c.DataDir == "" {
			return fmt.Errorf("data dir is required for badger persistence")
		}
	case PersistenceTypeRedis:
		if c.Redis == nil {
			return fmt.Errorf("redis config is required for redis persistence")
		}
		if err := c.Redis.Validate(); err != nil {
			return fmt.Errorf("invalid redis config: %w", err)
		}
	default:
		return fmt.Errorf("unsupported persistence type: %s", c.Persistence)
	}

	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit cannot be negative, got %f", c.RateLimit)
	}
	if c.RateLimit > 0 && c.RateBurst < 1 {
		return fmt.Errorf("rate burst must be at least 1 when rate limiting is enabled, got %d", c.RateBurst)
	}

	return nil
}
