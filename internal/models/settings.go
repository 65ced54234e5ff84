// Package models defines the records the backup, restore and security
// services work with.
package models

import "time"

type SecurityLevel string

const (
	SecurityLevelLow    SecurityLevel = "low"
	SecurityLevelMedium SecurityLevel = "medium"
	SecurityLevelHigh   SecurityLevel = "high"
)

type PrivacyMode string

const (
	PrivacyModeStandard PrivacyMode = "standard"
	PrivacyModeEnhanced PrivacyMode = "enhanced"
	PrivacyModeMaximum  PrivacyMode = "maximum"
)

// SecuritySettings is the single security_settings row of a user.
type SecuritySettings struct {
	UserID                         string
	SecurityLevel                  SecurityLevel
	PrivacyMode                    PrivacyMode
	HideBalances                   bool
	HideTransactions               bool
	HideBudgets                    bool
	RequireAuthForSensitiveActions bool
	SessionTimeoutMinutes          int
	AutoLockMinutes                int
	MaxLoginAttempts               int
	UpdatedAt                      time.Time
}

// DefaultSecuritySettings returns the row created on first read.
func DefaultSecuritySettings(userID string) *SecuritySettings {
	return &SecuritySettings{
		UserID:                         userID,
		SecurityLevel:                  SecurityLevelMedium,
		PrivacyMode:                    PrivacyModeStandard,
		RequireAuthForSensitiveActions: true,
		SessionTimeoutMinutes:          30,
		AutoLockMinutes:                5,
		MaxLoginAttempts:               5,
	}
}

type BackupFrequency string

const (
	BackupFrequencyDaily   BackupFrequency = "daily"
	BackupFrequencyWeekly  BackupFrequency = "weekly"
	BackupFrequencyMonthly BackupFrequency = "monthly"
)

// Interval is the distance between two automatic backups.
func (f BackupFrequency) Interval() time.Duration {
	switch f {
	case BackupFrequencyDaily:
		return 24 * time.Hour
	case BackupFrequencyMonthly:
		return 30 * 24 * time.Hour
	default:
		return 7 * 24 * time.Hour
	}
}

type BackupLocation string

const (
	BackupLocationCloud BackupLocation = "cloud"
	BackupLocationLocal BackupLocation = "local"
	BackupLocationBoth  BackupLocation = "both"
)

// BackupSettings is the single backup_settings row of a user.
type BackupSettings struct {
	UserID              string
	AutoBackupEnabled   bool
	IncludeTransactions bool
	IncludeBudgets      bool
	IncludeChallenges   bool
	IncludeSettings     bool
	BackupFrequency     BackupFrequency
	BackupLocation      BackupLocation
	EncryptionEnabled   bool
	LastBackupAt        *time.Time
	BackupSizeMB        *float64
	UpdatedAt           time.Time
}

func DefaultBackupSettings(userID string) *BackupSettings {
	return &BackupSettings{
		UserID:              userID,
		IncludeTransactions: true,
		IncludeBudgets:      true,
		IncludeChallenges:   true,
		IncludeSettings:     true,
		BackupFrequency:     BackupFrequencyWeekly,
		BackupLocation:      BackupLocationCloud,
		EncryptionEnabled:   true,
	}
}
