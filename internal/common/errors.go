// Package common defines shared constants and sentinel errors used across
// the service and storage layers of budgetkeeper. Callers should use errors.Is
// to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrBusy           = errors.New("operation already in progress")

	// Auth and session errors.
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
	ErrNotLoggedIn         = errors.New("not logged in")
	ErrInvalidEmail        = errors.New("invalid email")
	ErrEmptyPassword       = errors.New("empty password")
	ErrUserExists          = errors.New("user already exists")
	ErrAuthRequired        = errors.New("authentication required")
	ErrNoStoredCredentials = errors.New("no stored credentials")

	// Encryption errors.
	ErrEncryptionKeyMissing = errors.New("encryption key missing")

	// Backup and restore errors.
	ErrNoBackup          = errors.New("no backup available")
	ErrCorruptBackup     = errors.New("corrupt backup")
	ErrInvalidBackup     = errors.New("invalid backup")
	ErrRestoreCancelled  = errors.New("restore cancelled")
	ErrRestorePartial    = errors.New("restore partially applied")
	ErrObjectExists      = errors.New("object already exists")
	ErrUnknownCategory   = errors.New("unknown backup category")
	ErrInvalidSettingArg = errors.New("invalid settings value")
)
