// Package config loads the faucet configuration from FAUCET_* environment
// variables and validates it.
package config

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/gabapcia/faucet/internal/pkg/validator"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

// Prefix is prepended to every environment variable name.
const Prefix = "FAUCET"

const (
	StoreRedis    = "redis"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreDynamoDB = "dynamodb"

	ModeNative = "native"
	ModeERC20  = "erc20"

	LockNone   = "none"
	LockMemory = "memory"
	LockRedis  = "redis"
)

// ErrInvalidAmount is returned when the claim amount is not a positive number
// representable in the token's base units.
var ErrInvalidAmount = errors.New("invalid claim amount")

// Secret is a string that never prints its value.
type Secret string

func (s Secret) String() string {
	if s == "" {
		return ""
	}

	return "[redacted]"
}

type Config struct {
	LogLevel         string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	ServiceName      string `envconfig:"SERVICE_NAME" default:"faucet" validate:"required"`
	TelemetryEnabled bool   `envconfig:"TELEMETRY_ENABLED" default:"false"`

	HTTP  HTTP  `envconfig:"HTTP"`
	Store Store `envconfig:"STORE"`
	Chain Chain `envconfig:"CHAIN"`
	Claim Claim `envconfig:"CLAIM"`
	Lock  Lock  `envconfig:"LOCK"`
}

type HTTP struct {
	Addr            string        `envconfig:"ADDR" default:":8080" validate:"required"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"90s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`

	// RateLimit is the sustained number of requests per second allowed per client IP. Zero disables it.
	RateLimit float64 `envconfig:"RATE_LIMIT" default:"1" validate:"gte=0"`
	RateBurst int     `envconfig:"RATE_BURST" default:"5" validate:"gte=1"`
}

type Store struct {
	Backend string `envconfig:"BACKEND" default:"sqlite" validate:"oneof=redis sqlite postgres dynamodb"`

	SQLitePath  string `envconfig:"SQLITE_PATH" default:"faucet-claims.db" validate:"required_if=Backend sqlite"`
	PostgresDSN Secret `envconfig:"POSTGRES_DSN" validate:"required_if=Backend postgres"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379" validate:"required_if=Backend redis"`
	RedisUsername string `envconfig:"REDIS_USERNAME"`
	RedisPassword Secret `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0" validate:"gte=0"`

	DynamoDBTable    string `envconfig:"DYNAMODB_TABLE" default:"faucet-claims" validate:"required_if=Backend dynamodb"`
	DynamoDBRegion   string `envconfig:"DYNAMODB_REGION"`
	DynamoDBEndpoint string `envconfig:"DYNAMODB_ENDPOINT" validate:"omitempty,url"`

	// CacheTTL enables the positive claim cache when greater than zero.
	CacheTTL time.Duration `envconfig:"CACHE_TTL" default:"0s"`
}

type Chain struct {
	RPCURL       string `envconfig:"RPC_URL" validate:"required,url"`
	PrivateKey   Secret `envconfig:"PRIVATE_KEY" validate:"required,len=66,startswith=0x,hexadecimal"`
	Mode         string `envconfig:"MODE" default:"erc20" validate:"oneof=native erc20"`
	TokenAddress string `envconfig:"TOKEN_ADDRESS" default:"0x3eD4e0a08F406f30f663980776ce9Ba39dF0896b" validate:"required_if=Mode erc20,omitempty,eth_addr"`
	GasLimit     uint64 `envconfig:"GAS_LIMIT" default:"0"`
}

type Claim struct {
	// Amount is expressed in whole tokens, e.g. "1" or "0.25".
	Amount              string        `envconfig:"AMOUNT" default:"1" validate:"required"`
	Decimals            int32         `envconfig:"DECIMALS" default:"18" validate:"gte=0,lte=36"`
	DisbursementTimeout time.Duration `envconfig:"DISBURSEMENT_TIMEOUT" default:"60s"`
	RecordTimeout       time.Duration `envconfig:"RECORD_TIMEOUT" default:"10s" validate:"gt=0"`
}

type Lock struct {
	Mode         string        `envconfig:"MODE" default:"none" validate:"oneof=none memory redis"`
	TTL          time.Duration `envconfig:"TTL" default:"2m" validate:"gt=0"`
	WaitAttempts uint          `envconfig:"WAIT_ATTEMPTS" default:"50" validate:"gte=1"`
	WaitDelay    time.Duration `envconfig:"WAIT_DELAY" default:"100ms"`
}

// Load reads the configuration from the environment and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return Config{}, err
	}

	if err := validator.Validate(cfg); err != nil {
		return Config{}, err
	}

	if _, err := cfg.Claim.BaseUnits(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// BaseUnits converts Amount into the token's smallest unit using Decimals.
func (c Claim) BaseUnits() (*big.Int, error) {
	amount, err := decimal.NewFromString(c.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAmount, err)
	}

	units := amount.Shift(c.Decimals)
	if units.Sign() <= 0 {
		return nil, fmt.Errorf("%w: %s must be positive", ErrInvalidAmount, c.Amount)
	}

	if !units.IsInteger() {
		return nil, fmt.Errorf("%w: %s has more than %d decimal places", ErrInvalidAmount, c.Amount, c.Decimals)
	}

	return units.BigInt(), nil
}

// FormatUnits renders a base unit quantity as a decimal token amount.
func FormatUnits(v *big.Int, decimals int32) string {
	return decimal.NewFromBigInt(v, -decimals).String()
}
