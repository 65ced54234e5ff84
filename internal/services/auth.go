package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"

	"github.com/badoux/checkmail"
	"github.com/dmitrijs2005/budgetkeeper/internal/biometric"
	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"github.com/dmitrijs2005/budgetkeeper/internal/cryptox"
	"github.com/dmitrijs2005/budgetkeeper/internal/dbx"
	"github.com/dmitrijs2005/budgetkeeper/internal/logging"
	"github.com/dmitrijs2005/budgetkeeper/internal/models"
	"github.com/dmitrijs2005/budgetkeeper/internal/repositories/repomanager"
)

// SessionStarter opens and closes the local session.
type SessionStarter interface {
	Start(ctx context.Context, userID, email string) error
	End(ctx context.Context) error
}

// AuthService registers accounts and logs users in against the remote store.
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	session     SessionStarter
	creds       *CredentialService
	prompt      biometric.Prompt
	log         logging.Logger
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, session SessionStarter, creds *CredentialService,
	prompt biometric.Prompt, log logging.Logger) *AuthService {
	return &AuthService{db: db, repomanager: m, session: session, creds: creds, prompt: prompt, log: log}
}

// Register creates the user with its profile and default settings in one
// transaction.
func (s *AuthService) Register(ctx context.Context, email, password, fullName string) (*models.User, error) {
	if err := checkmail.ValidateFormat(email); err != nil {
		return nil, common.ErrInvalidEmail
	}
	if password == "" {
		return nil, common.ErrEmptyPassword
	}

	salt := common.GenerateRandByteArray(32)
	key := cryptox.DeriveMasterKey([]byte(password), salt)
	defer common.WipeByteArray(key)

	user := &models.User{Email: email, Salt: salt, Verifier: cryptox.MakeVerifier(key)}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		created, err := s.repomanager.Users(tx).Create(ctx, user)
		if err != nil {
			return err
		}
		user = created

		if err := s.repomanager.Profiles(tx).Create(ctx, &models.Profile{UserID: user.ID, FullName: fullName}); err != nil {
			return fmt.Errorf("create profile: %w", err)
		}
		if err := s.repomanager.SecuritySettings(tx).CreateDefault(ctx, user.ID); err != nil {
			return fmt.Errorf("create security settings: %w", err)
		}
		if err := s.repomanager.BackupSettings(tx).CreateDefault(ctx, user.ID); err != nil {
			return fmt.Errorf("create backup settings: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrUserExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Login verifies the password, starts a session and remembers the
// credentials for biometric login.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	key := cryptox.DeriveMasterKey([]byte(password), user.Salt)
	defer common.WipeByteArray(key)

	if subtle.ConstantTimeCompare(user.Verifier, cryptox.MakeVerifier(key)) != 1 {
		return nil, common.ErrorUnauthorized
	}

	if err := s.session.Start(ctx, user.ID, user.Email); err != nil {
		return nil, err
	}
	if err := s.creds.StoreCredentials(ctx, email, password, user.ID); err != nil {
		s.log.Warn(ctx, "failed to remember credentials", "error", err)
	}

	s.log.Info(ctx, "user logged in", "user_id", user.ID)
	return user, nil
}

// BiometricLogin logs in with the remembered credentials after the
// biometric prompt succeeds.
func (s *AuthService) BiometricLogin(ctx context.Context) (*models.User, error) {
	creds, ok := s.creds.GetBiometricLoginCredentials(ctx)
	if !ok {
		return nil, common.ErrNoStoredCredentials
	}

	res, err := s.prompt.Authenticate(ctx, biometric.Options{
		PromptMessage: fmt.Sprintf("Masuk sebagai %s", creds.Email),
		FallbackLabel: "Gunakan kata sandi",
		CancelLabel:   "Batal",
	})
	if err != nil {
		return nil, fmt.Errorf("biometric prompt: %w", err)
	}
	if !res.Success {
		return nil, common.ErrAuthRequired
	}

	return s.Login(ctx, creds.Email, creds.Password)
}

func (s *AuthService) Logout(ctx context.Context) error {
	return s.session.End(ctx)
}
