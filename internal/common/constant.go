// Package common contains shared constants, sentinel errors and small helpers
// used across budgetkeeper components.
package common

import "time"

// Keys of the local key-value store that are shared between services.
const (
	SessionTokenKey      = "session_token"
	EncryptionEnabledKey = "encryption_enabled"
	EncryptionKeyKey     = "encryption_key"
	StoredCredentialsKey = "stored_credentials"
	BiometricEnabledKey  = "biometric_login_enabled"
)

// CredentialsValidity is how long stored login credentials stay usable
// after the last successful login.
const CredentialsValidity = 30 * 24 * time.Hour

// MaxHistoryEntries caps the backup history list query.
const MaxHistoryEntries = 10

// BackupFormatVersion is written into every envelope's metadata.
const BackupFormatVersion = "1.0"
