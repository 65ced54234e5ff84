// Package cli is the interactive terminal front end of budgetkeeper.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/budgetkeeper/internal/logging"
	"github.com/dmitrijs2005/budgetkeeper/internal/models"
	"github.com/dmitrijs2005/budgetkeeper/internal/services"
	"github.com/dmitrijs2005/budgetkeeper/internal/session"
)

type AuthService interface {
	Register(ctx context.Context, email, password, fullName string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	BiometricLogin(ctx context.Context) (*models.User, error)
	Logout(ctx context.Context) error
}

type SettingsService interface {
	GetSecuritySettings(ctx context.Context) (*models.SecuritySettings, error)
	UpdateSecuritySettings(ctx context.Context, s *models.SecuritySettings) error
	GetBackupSettings(ctx context.Context) (*models.BackupSettings, error)
	UpdateBackupSettings(ctx context.Context, s *models.BackupSettings) error
	History(ctx context.Context) ([]*models.BackupHistory, error)
}

type BackupService interface {
	CreateBackup(ctx context.Context, backupType models.BackupType, progress services.ProgressFunc) (*services.BackupResult, error)
}

type RestoreService interface {
	Restore(ctx context.Context, historyID string, confirm services.ConfirmFunc, progress services.ProgressFunc) (*services.PreparedRestore, error)
}

type AutoBackupService interface {
	CheckAndRun(ctx context.Context) (bool, error)
}

type PolicyService interface {
	RequiresAuthentication(ctx context.Context, action models.Action) bool
	ShouldHideData(ctx context.Context, category models.DataCategory) bool
	Authorize(ctx context.Context, action models.Action) error
}

type EncryptionService interface {
	IsEncryptionEnabled(ctx context.Context) bool
	EnableEncryption(ctx context.Context) error
	DisableEncryption(ctx context.Context) error
}

type CredentialService interface {
	EnableBiometricLogin(ctx context.Context) error
	DisableBiometricLogin(ctx context.Context) error
	IsBiometricLoginEnabled(ctx context.Context) bool
}

type GreetingService interface {
	Greet(ctx context.Context, name string) (string, error)
}

type Session interface {
	Current(ctx context.Context) (*session.Identity, error)
}

// Services bundles everything the CLI talks to.
type Services struct {
	Auth        AuthService
	Settings    SettingsService
	Backup      BackupService
	Restore     RestoreService
	AutoBackup  AutoBackupService
	Policy      PolicyService
	Encryption  EncryptionService
	Credentials CredentialService
	Greeting    GreetingService
	Session     Session
}

type App struct {
	svc    Services
	reader *bufio.Reader
	out    io.Writer
	log    logging.Logger
}

// NewApp wires the CLI to svc. The reader is shared with any other consumer
// of the same input, such as the terminal biometric prompt.
func NewApp(svc Services, reader *bufio.Reader, out io.Writer, log logging.Logger) *App {
	return &App{svc: svc, reader: reader, out: out, log: log}
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) isLoggedIn(ctx context.Context) bool {
	_, err := a.svc.Session.Current(ctx)
	return err == nil
}

func (a *App) getStatus(ctx context.Context) string {
	id, err := a.svc.Session.Current(ctx)
	if err != nil {
		return "(tamu)"
	}
	return fmt.Sprintf("(%s)", id.Email)
}

// Run greets a returning user and starts the REPL.
func (a *App) Run(ctx context.Context) {
	a.println(RenderTitle("budgetkeeper"))
	a.println("Ketik 'help' untuk daftar perintah")

	if a.isLoggedIn(ctx) {
		a.afterLogin(ctx)
	}

	runREPL(ctx, a, func() string { return a.getStatus(ctx) }, a.reader)
}
