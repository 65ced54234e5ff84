package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "BUDGETKEEPER_"

// dotEnvFile is loaded, when present, before reading the environment.
var dotEnvFile = ".env"

// parseEnv overlays BUDGETKEEPER_* variables. Values from a .env file never
// override variables already set in the process environment.
func parseEnv(config *Config) {
	if _, err := os.Stat(dotEnvFile); err == nil {
		if err := godotenv.Load(dotEnvFile); err != nil {
			panic(err)
		}
	}

	str := func(name string, dst *string) {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			*dst = v
		}
	}

	str("DATABASE_DSN", &config.DatabaseDSN)
	str("LOCAL_STORE_DRIVER", &config.LocalStoreDriver)
	str("LOCAL_STORE_PATH", &config.LocalStorePath)
	str("S3_ROOT_USER", &config.S3RootUser)
	str("S3_ROOT_PASSWORD", &config.S3RootPassword)
	str("S3_REGION", &config.S3Region)
	str("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
	str("BACKUP_BUCKET", &config.BackupBucket)
	str("SESSION_SECRET", &config.SessionSecret)
	str("INTEGRITY_SALT", &config.IntegritySalt)
	str("LOG_LEVEL", &config.LogLevel)

	if v, ok := os.LookupEnv(envPrefix + "RUN_MIGRATIONS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(fmt.Errorf("%sRUN_MIGRATIONS: %w", envPrefix, err))
		}
		config.RunMigrations = b
	}

	if v, ok := os.LookupEnv(envPrefix + "SESSION_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(fmt.Errorf("%sSESSION_TTL: %w", envPrefix, err))
		}
		config.SessionTTL = d
	}
}
