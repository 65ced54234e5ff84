package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/badoux/checkmail"
	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"github.com/dmitrijs2005/budgetkeeper/internal/logging"
	"github.com/dmitrijs2005/budgetkeeper/internal/models"
	"github.com/dmitrijs2005/budgetkeeper/internal/repositories/metadata"
)

// CredentialService remembers the last login on this device so that a
// biometric confirmation can replace typing the password.
type CredentialService struct {
	store metadata.Repository
	enc   *EncryptionService
	clock Clock
	log   logging.Logger
}

func NewCredentialService(store metadata.Repository, enc *EncryptionService, log logging.Logger) *CredentialService {
	return &CredentialService{store: store, enc: enc, log: log}
}

func (s *CredentialService) WithClock(c Clock) *CredentialService {
	s.clock = c
	return s
}

// StoreCredentials overwrites the remembered identity.
func (s *CredentialService) StoreCredentials(ctx context.Context, email, password, userID string) error {
	if err := checkmail.ValidateFormat(email); err != nil {
		return common.ErrInvalidEmail
	}

	isEncrypted := s.enc.IsEncryptionEnabled(ctx)
	stored := password
	if isEncrypted {
		var err error
		if stored, err = s.enc.EncryptData(ctx, password); err != nil {
			return fmt.Errorf("encrypt password: %w", err)
		}
	}

	b, err := json.Marshal(&models.StoredCredentials{
		Email:             email,
		EncryptedPassword: stored,
		PasswordEncrypted: isEncrypted,
		LastLoginTime:     s.clock.now().UTC(),
		UserID:            userID,
	})
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}

	if err := s.store.Set(ctx, common.StoredCredentialsKey, b); err != nil {
		return fmt.Errorf("store credentials: %w", err)
	}
	return nil
}

// GetStoredCredentials returns nil when nothing is stored. Records older than
// common.CredentialsValidity are purged and reported as absent.
func (s *CredentialService) GetStoredCredentials(ctx context.Context) (*models.StoredCredentials, error) {
	b, err := s.store.Get(ctx, common.StoredCredentialsKey)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	if b == nil {
		return nil, nil
	}

	var c models.StoredCredentials
	if err := json.Unmarshal(b, &c); err != nil {
		s.log.Warn(ctx, "dropping unreadable stored credentials", "error", err)
		return nil, s.ClearCredentials(ctx)
	}

	if s.clock.now().Sub(c.LastLoginTime) > common.CredentialsValidity {
		s.log.Info(ctx, "stored credentials expired", "email", c.Email)
		return nil, s.ClearCredentials(ctx)
	}
	return &c, nil
}

func (s *CredentialService) ClearCredentials(ctx context.Context) error {
	if err := s.store.Delete(ctx, common.StoredCredentialsKey); err != nil {
		return fmt.Errorf("delete credentials: %w", err)
	}
	return nil
}

func (s *CredentialService) EnableBiometricLogin(ctx context.Context) error {
	c, err := s.GetStoredCredentials(ctx)
	if err != nil {
		return err
	}
	if c == nil {
		return common.ErrNoStoredCredentials
	}

	if err := s.store.Set(ctx, common.BiometricEnabledKey, []byte("true")); err != nil {
		return fmt.Errorf("store biometric flag: %w", err)
	}
	return nil
}

func (s *CredentialService) DisableBiometricLogin(ctx context.Context) error {
	if err := s.store.Set(ctx, common.BiometricEnabledKey, []byte("false")); err != nil {
		return fmt.Errorf("store biometric flag: %w", err)
	}
	return nil
}

func (s *CredentialService) IsBiometricLoginEnabled(ctx context.Context) bool {
	v, err := s.store.Get(ctx, common.BiometricEnabledKey)
	if err != nil {
		s.log.Warn(ctx, "failed to read biometric flag", "error", err)
		return false
	}
	return string(v) == "true"
}

// GetBiometricLoginCredentials returns the remembered login only when the
// biometric flag is on, credentials are stored and the password decrypts.
// A password stored under a different encryption state than the current one
// cannot be read back and counts as absent. Any other outcome means manual
// login.
func (s *CredentialService) GetBiometricLoginCredentials(ctx context.Context) (*models.LoginCredentials, bool) {
	if !s.IsBiometricLoginEnabled(ctx) {
		return nil, false
	}

	c, err := s.GetStoredCredentials(ctx)
	if err != nil {
		s.log.Warn(ctx, "failed to load stored credentials", "error", err)
		return nil, false
	}
	if c == nil {
		return nil, false
	}

	if c.PasswordEncrypted != s.enc.IsEncryptionEnabled(ctx) {
		s.log.Info(ctx, "stored password predates an encryption toggle", "email", c.Email)
		return nil, false
	}
	if !c.PasswordEncrypted {
		return &models.LoginCredentials{Email: c.Email, Password: c.EncryptedPassword}, true
	}

	password, err := s.enc.DecryptData(ctx, c.EncryptedPassword)
	if err != nil {
		s.log.Warn(ctx, "failed to decrypt stored password", "error", err)
		return nil, false
	}
	return &models.LoginCredentials{Email: c.Email, Password: password}, true
}
