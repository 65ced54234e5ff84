package models

import "time"

// StoredCredentials is the single identity remembered on this device.
// EncryptedPassword holds the password as produced by the encryption
// service, which is plaintext while encryption is disabled. PasswordEncrypted
// records which of the two forms was stored.
type StoredCredentials struct {
	Email             string    `json:"email"`
	EncryptedPassword string    `json:"encryptedPassword"`
	PasswordEncrypted bool      `json:"passwordEncrypted"`
	LastLoginTime     time.Time `json:"lastLoginTime"`
	UserID            string    `json:"userId"`
}

// LoginCredentials are handed back for a biometric login.
type LoginCredentials struct {
	Email    string
	Password string
}
