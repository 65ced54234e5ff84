package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"github.com/dmitrijs2005/budgetkeeper/internal/logging"
	"github.com/dmitrijs2005/budgetkeeper/internal/models"
	"github.com/dmitrijs2005/budgetkeeper/internal/services"
	"github.com/dmitrijs2005/budgetkeeper/internal/session"
)

type fakeSession struct{ id *session.Identity }

func (f *fakeSession) Current(context.Context) (*session.Identity, error) {
	if f.id == nil {
		return nil, common.ErrNotLoggedIn
	}
	return f.id, nil
}

type fakeAuth struct {
	sess *fakeSession

	email, password, name string
	err                   error
	calls                 []string
}

func (f *fakeAuth) login(email string) *models.User {
	f.sess.id = &session.Identity{UserID: "u1", Email: email}
	return &models.User{ID: "u1", Email: email}
}

func (f *fakeAuth) Register(_ context.Context, email, password, fullName string) (*models.User, error) {
	f.calls = append(f.calls, "register")
	f.email, f.password, f.name = email, password, fullName
	if f.err != nil {
		return nil, f.err
	}
	return &models.User{ID: "u1", Email: email}, nil
}

func (f *fakeAuth) Login(_ context.Context, email, password string) (*models.User, error) {
	f.calls = append(f.calls, "login")
	f.email, f.password = email, password
	if f.err != nil {
		return nil, f.err
	}
	return f.login(email), nil
}

func (f *fakeAuth) BiometricLogin(context.Context) (*models.User, error) {
	f.calls = append(f.calls, "biologin")
	if f.err != nil {
		return nil, f.err
	}
	return f.login("bio@example.com"), nil
}

func (f *fakeAuth) Logout(context.Context) error {
	f.calls = append(f.calls, "logout")
	f.sess.id = nil
	return f.err
}

type fakeSettings struct {
	sec     *models.SecuritySettings
	backup  *models.BackupSettings
	history []*models.BackupHistory

	secUpdates    int
	backupUpdates int
}

func (f *fakeSettings) GetSecuritySettings(context.Context) (*models.SecuritySettings, error) {
	c := *f.sec
	return &c, nil
}

func (f *fakeSettings) UpdateSecuritySettings(_ context.Context, s *models.SecuritySettings) error {
	f.secUpdates++
	f.sec = s
	return nil
}

func (f *fakeSettings) GetBackupSettings(context.Context) (*models.BackupSettings, error) {
	c := *f.backup
	return &c, nil
}

func (f *fakeSettings) UpdateBackupSettings(_ context.Context, s *models.BackupSettings) error {
	f.backupUpdates++
	f.backup = s
	return nil
}

func (f *fakeSettings) History(context.Context) ([]*models.BackupHistory, error) {
	return f.history, nil
}

type fakeBackup struct {
	errs  []error
	calls int
}

func (f *fakeBackup) CreateBackup(_ context.Context, _ models.BackupType, progress services.ProgressFunc) (*services.BackupResult, error) {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	progress("Mengunggah backup...")
	yes := true
	return &services.BackupResult{
		FilePath: "u1/backup_1.json",
		SizeMB:   0.5,
		Envelope: &models.Envelope{Metadata: &models.EnvelopeMetadata{Encrypted: &yes}},
	}, nil
}

type fakeRestore struct {
	prepared  *services.PreparedRestore
	err       error
	historyID string
	executed  bool
}

func (f *fakeRestore) Restore(ctx context.Context, historyID string, confirm services.ConfirmFunc, progress services.ProgressFunc) (*services.PreparedRestore, error) {
	f.historyID = historyID
	if f.err != nil {
		return nil, f.err
	}
	if !confirm(ctx, f.prepared) {
		return f.prepared, common.ErrRestoreCancelled
	}
	progress("Pemulihan selesai")
	f.executed = true
	return f.prepared, nil
}

type fakeAutoBackup struct {
	ran   bool
	err   error
	calls int
}

func (f *fakeAutoBackup) CheckAndRun(context.Context) (bool, error) {
	f.calls++
	return f.ran, f.err
}

type fakePolicy struct {
	required map[models.Action]bool
	hidden   map[models.DataCategory]bool
	denied   map[models.Action]bool

	authorized []models.Action
}

func (f *fakePolicy) RequiresAuthentication(_ context.Context, a models.Action) bool {
	return f.required[a]
}

func (f *fakePolicy) ShouldHideData(_ context.Context, c models.DataCategory) bool {
	return f.hidden[c]
}

func (f *fakePolicy) Authorize(_ context.Context, a models.Action) error {
	f.authorized = append(f.authorized, a)
	if f.denied[a] {
		return common.ErrAuthRequired
	}
	return nil
}

type fakeEncryption struct{ enabled bool }

func (f *fakeEncryption) IsEncryptionEnabled(context.Context) bool { return f.enabled }
func (f *fakeEncryption) EnableEncryption(context.Context) error {
	f.enabled = true
	return nil
}
func (f *fakeEncryption) DisableEncryption(context.Context) error {
	f.enabled = false
	return nil
}

type fakeCredentials struct {
	enabled bool
	stored  bool
}

func (f *fakeCredentials) EnableBiometricLogin(context.Context) error {
	if !f.stored {
		return common.ErrNoStoredCredentials
	}
	f.enabled = true
	return nil
}
func (f *fakeCredentials) DisableBiometricLogin(context.Context) error {
	f.enabled = false
	return nil
}
func (f *fakeCredentials) IsBiometricLoginEnabled(context.Context) bool { return f.enabled }

type fakeGreeting struct{ names []string }

func (f *fakeGreeting) Greet(_ context.Context, name string) (string, error) {
	f.names = append(f.names, name)
	return "Selamat pagi, " + name + "!", nil
}

type testEnv struct {
	app *App
	out *bytes.Buffer

	sess     *fakeSession
	auth     *fakeAuth
	settings *fakeSettings
	backup   *fakeBackup
	restore  *fakeRestore
	auto     *fakeAutoBackup
	policy   *fakePolicy
	enc      *fakeEncryption
	creds    *fakeCredentials
	greeting *fakeGreeting
}

// newTestEnv builds an App over fakes. Lines are what the user types.
func newTestEnv(t *testing.T, lines ...string) *testEnv {
	t.Helper()

	sess := &fakeSession{}
	e := &testEnv{
		out:  &bytes.Buffer{},
		sess: sess,
		auth: &fakeAuth{sess: sess},
		settings: &fakeSettings{
			sec:    models.DefaultSecuritySettings("u1"),
			backup: models.DefaultBackupSettings("u1"),
		},
		backup:   &fakeBackup{},
		restore:  &fakeRestore{},
		auto:     &fakeAutoBackup{},
		policy:   &fakePolicy{},
		enc:      &fakeEncryption{},
		creds:    &fakeCredentials{},
		greeting: &fakeGreeting{},
	}

	reader := bufio.NewReader(strings.NewReader(strings.Join(lines, "\n") + "\n"))
	e.app = NewApp(Services{
		Auth:        e.auth,
		Settings:    e.settings,
		Backup:      e.backup,
		Restore:     e.restore,
		AutoBackup:  e.auto,
		Policy:      e.policy,
		Encryption:  e.enc,
		Credentials: e.creds,
		Greeting:    e.greeting,
		Session:     e.sess,
	}, reader, e.out, logging.Discard())
	return e
}

func (e *testEnv) loggedIn() *testEnv {
	e.sess.id = &session.Identity{UserID: "u1", Email: "budi@example.com", ExpiresAt: time.Now().Add(time.Hour)}
	return e
}

// stubInput replaces the prompt seams with canned answers.
func stubInput(t *testing.T, texts []string, password string) {
	t.Helper()
	origText, origPw := getSimpleText, getPassword
	t.Cleanup(func() { getSimpleText, getPassword = origText, origPw })

	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if len(texts) == 0 {
			return "", io.EOF
		}
		s := texts[0]
		texts = texts[1:]
		return s, nil
	}
	getPassword = func(io.Writer) ([]byte, error) { return []byte(password), nil }
}
