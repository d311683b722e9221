package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const (
	StoreMemory   = "memory"
	StoreDynamoDB = "dynamodb"
	StorePostgres = "postgres"
	StoreRedis    = "redis"

	SMSProviderTwilio = "twilio"
	SMSProviderLog    = "log"
)

type Config struct {
	Environment  string
	Server       ServerConfig
	Log          LogConfig
	Store        StoreConfig
	DynamoDB     DynamoDBConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	OTP          OTPConfig
	SMS          SMSConfig
	Verification VerificationConfig
}

type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	CurriculumPath string
	EnableDebug    bool
}

type LogConfig struct {
	Level string
}

type StoreConfig struct {
	Driver string
}

type DynamoDBConfig struct {
	Endpoint  string
	Region    string
	TableName string
}

type PostgresConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Endpoint string
	Password string
	DB       int
}

type OTPConfig struct {
	Store    string
	Expiry   time.Duration
	HashCost int
}

type SMSConfig struct {
	Provider   string
	AccountSID string
	AuthToken  string
	FromNumber string
	OwnerPhone string
}

type VerificationConfig struct {
	SecretKey string
	Expiry    time.Duration
	Required  bool
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present; real environment variables win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:           getEnv("PORT", "8000"),
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			CurriculumPath: getEnv("CURRICULUM_PATH", "static/RByte.ai – AI Engineering Professional Program (3).pdf"),
			EnableDebug:    getEnvAsBool("ENABLE_DEBUG_ENDPOINTS", false),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(getEnv("STORE_DRIVER", StoreMemory)),
		},
		DynamoDB: DynamoDBConfig{
			Endpoint:  getEnv("DYNAMODB_ENDPOINT", ""),
			Region:    getEnv("DYNAMODB_REGION", "us-east-1"),
			TableName: getEnv("DYNAMODB_TABLE_NAME", "RByteLeads"),
		},
		Postgres: PostgresConfig{
			DSN:          getEnv("DATABASE_URL", ""),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
		},
		Redis: RedisConfig{
			Endpoint: getEnv("REDIS_ENDPOINT", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		OTP: OTPConfig{
			Store:    strings.ToLower(getEnv("OTP_STORE", StoreMemory)),
			Expiry:   getEnvAsDuration("OTP_EXPIRY", 5*time.Minute),
			HashCost: getEnvAsInt("OTP_HASH_COST", bcrypt.DefaultCost),
		},
		SMS: SMSConfig{
			Provider:   strings.ToLower(getEnv("SMS_PROVIDER", SMSProviderTwilio)),
			AccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
			FromNumber: getEnv("TWILIO_PHONE_NUMBER", ""),
			OwnerPhone: getEnv("OWNER_PHONE", ""),
		},
		Verification: VerificationConfig{
			SecretKey: getEnv("VERIFICATION_SECRET", ""),
			Expiry:    getEnvAsDuration("VERIFICATION_EXPIRY", 10*time.Minute),
			Required:  getEnvAsBool("REQUIRE_VERIFICATION", false),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case StoreMemory, StoreDynamoDB:
	case StorePostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("DATABASE_URL environment variable is required for the postgres store")
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.Store.Driver)
	}

	switch c.OTP.Store {
	case StoreMemory, StoreRedis, StoreDynamoDB:
	default:
		return fmt.Errorf("unsupported OTP_STORE %q", c.OTP.Store)
	}

	if c.OTP.HashCost < bcrypt.MinCost || c.OTP.HashCost > bcrypt.MaxCost {
		return fmt.Errorf("OTP_HASH_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	switch c.SMS.Provider {
	case SMSProviderLog:
	case SMSProviderTwilio:
		if c.SMS.AccountSID == "" || c.SMS.AuthToken == "" || c.SMS.FromNumber == "" {
			return fmt.Errorf("TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and TWILIO_PHONE_NUMBER are required for the twilio provider")
		}
	default:
		return fmt.Errorf("unsupported SMS_PROVIDER %q", c.SMS.Provider)
	}

	if c.Verification.SecretKey != "" && len(c.Verification.SecretKey) < 32 {
		return fmt.Errorf("VERIFICATION_SECRET must be at least 32 bytes (256 bits)")
	}

	if c.Verification.Required && c.Verification.SecretKey == "" {
		return fmt.Errorf("VERIFICATION_SECRET is required when REQUIRE_VERIFICATION is enabled")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
