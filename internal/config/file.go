package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/dmitrijs2005/budgetkeeper/internal/flagx"
	"github.com/dmitrijs2005/budgetkeeper/internal/timex"
)

// FileConfig is the on-disk shape of the config file. Pointer fields tell
// "absent" from "zero", so only keys present in the file override
// earlier layers. Durations accept "24h" style strings.
type FileConfig struct {
	DatabaseDSN      *string         `json:"database_dsn" toml:"database_dsn"`
	RunMigrations    *bool           `json:"run_migrations" toml:"run_migrations"`
	LocalStoreDriver *string         `json:"local_store_driver" toml:"local_store_driver"`
	LocalStorePath   *string         `json:"local_store_path" toml:"local_store_path"`
	S3RootUser       *string         `json:"s3_root_user" toml:"s3_root_user"`
	S3RootPassword   *string         `json:"s3_root_password" toml:"s3_root_password"`
	S3Region         *string         `json:"s3_region" toml:"s3_region"`
	S3BaseEndpoint   *string         `json:"s3_base_endpoint" toml:"s3_base_endpoint"`
	BackupBucket     *string         `json:"backup_bucket" toml:"backup_bucket"`
	SessionSecret    *string         `json:"session_secret" toml:"session_secret"`
	SessionTTL       *timex.Duration `json:"session_ttl" toml:"session_ttl"`
	IntegritySalt    *string         `json:"integrity_salt" toml:"integrity_salt"`
	LogLevel         *string         `json:"log_level" toml:"log_level"`
}

// parseFile loads the file named by -c/-config. Files ending in .toml are
// decoded as TOML, anything else as JSON. Read or decode errors panic.
func parseFile(config *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	fc := &FileConfig{}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, fc)
	} else {
		err = json.Unmarshal(data, fc)
	}
	if err != nil {
		panic(err)
	}

	fc.apply(config)
}

func (fc *FileConfig) apply(config *Config) {
	setStr := func(src *string, dst *string) {
		if src != nil {
			*dst = *src
		}
	}

	setStr(fc.DatabaseDSN, &config.DatabaseDSN)
	setStr(fc.LocalStoreDriver, &config.LocalStoreDriver)
	setStr(fc.LocalStorePath, &config.LocalStorePath)
	setStr(fc.S3RootUser, &config.S3RootUser)
	setStr(fc.S3RootPassword, &config.S3RootPassword)
	setStr(fc.S3Region, &config.S3Region)
	setStr(fc.S3BaseEndpoint, &config.S3BaseEndpoint)
	setStr(fc.BackupBucket, &config.BackupBucket)
	setStr(fc.SessionSecret, &config.SessionSecret)
	setStr(fc.IntegritySalt, &config.IntegritySalt)
	setStr(fc.LogLevel, &config.LogLevel)

	if fc.RunMigrations != nil {
		config.RunMigrations = *fc.RunMigrations
	}
	if fc.SessionTTL != nil {
		config.SessionTTL = fc.SessionTTL.Duration
	}
}
