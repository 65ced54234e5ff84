package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/budgetkeeper/internal/biometric"
	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"github.com/dmitrijs2005/budgetkeeper/internal/dbx"
	"github.com/dmitrijs2005/budgetkeeper/internal/localstore"
	"github.com/dmitrijs2005/budgetkeeper/internal/logging"
	"github.com/dmitrijs2005/budgetkeeper/internal/models"
	"github.com/dmitrijs2005/budgetkeeper/internal/objectstore"
	"github.com/dmitrijs2005/budgetkeeper/internal/repositories/backuphistory"
	"github.com/dmitrijs2005/budgetkeeper/internal/repositories/backupsettings"
	"github.com/dmitrijs2005/budgetkeeper/internal/repositories/profiles"
	"github.com/dmitrijs2005/budgetkeeper/internal/repositories/records"
	"github.com/dmitrijs2005/budgetkeeper/internal/repositories/securitysettings"
	"github.com/dmitrijs2005/budgetkeeper/internal/repositories/users"
	"github.com/stretchr/testify/require"
)

// ---- local store ----

func newLocalStore(t *testing.T) *localstore.Store {
	t.Helper()
	s, err := localstore.Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "local.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func fixedClock(t time.Time) Clock { return func() time.Time { return t } }

// ---- current user ----

type fakeUsers struct{ id string }

func (f *fakeUsers) CurrentUserID(context.Context) (string, error) {
	if f.id == "" {
		return "", common.ErrNotLoggedIn
	}
	return f.id, nil
}

// ---- biometric prompt ----

type fakePrompt struct {
	success bool
	err     error
	calls   int
	last    biometric.Options
}

func (f *fakePrompt) Authenticate(_ context.Context, opts biometric.Options) (biometric.Result, error) {
	f.calls++
	f.last = opts
	return biometric.Result{Success: f.success}, f.err
}

// ---- session ----

type fakeSession struct {
	userID, email string
	startErr      error
	ended         bool
}

func (f *fakeSession) Start(_ context.Context, userID, email string) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.userID, f.email = userID, email
	return nil
}

func (f *fakeSession) End(context.Context) error {
	f.ended = true
	f.userID, f.email = "", ""
	return nil
}

// ---- object store ----

type fakeObjects struct {
	mu        sync.Mutex
	buckets   []string
	objects   map[string][]byte
	createErr error
	uploadErr error
	created   []string
	opts      []objectstore.BucketOptions
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: map[string][]byte{}}
}

func (f *fakeObjects) ListBuckets(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.buckets...), nil
}

func (f *fakeObjects) CreateBucket(_ context.Context, name string, opts objectstore.BucketOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, name)
	f.opts = append(f.opts, opts)
	if f.createErr != nil {
		return f.createErr
	}
	f.buckets = append(f.buckets, name)
	return nil
}

func (f *fakeObjects) Upload(_ context.Context, bucket, key string, data []byte, opts objectstore.UploadOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return f.uploadErr
	}
	k := bucket + "/" + key
	if _, ok := f.objects[k]; ok && !opts.Upsert {
		return common.ErrObjectExists
	}
	f.objects[k] = append([]byte(nil), data...)
	return nil
}

func (f *fakeObjects) Download(_ context.Context, bucket, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.objects[bucket+"/"+key]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

// ---- repositories ----

type fakeRepoManager struct {
	users     *fakeUsersRepo
	profiles  *fakeProfilesRepo
	security  *fakeSecurityRepo
	backupSet *fakeBackupSettingsRepo
	history   *fakeHistoryRepo
	records   *fakeRecordsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		users:     &fakeUsersRepo{byEmail: map[string]*models.User{}},
		profiles:  &fakeProfilesRepo{rows: map[string]*models.Profile{}},
		security:  &fakeSecurityRepo{rows: map[string]*models.SecuritySettings{}},
		backupSet: &fakeBackupSettingsRepo{rows: map[string]*models.BackupSettings{}},
		history:   &fakeHistoryRepo{rows: map[string]*models.BackupHistory{}},
		records:   newFakeRecordsRepo(),
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository          { return m.users }
func (m *fakeRepoManager) Profiles(dbx.DBTX) profiles.Repository    { return m.profiles }
func (m *fakeRepoManager) SecuritySettings(dbx.DBTX) securitysettings.Repository {
	return m.security
}
func (m *fakeRepoManager) BackupSettings(dbx.DBTX) backupsettings.Repository { return m.backupSet }
func (m *fakeRepoManager) BackupHistory(dbx.DBTX) backuphistory.Repository   { return m.history }
func (m *fakeRepoManager) Records(dbx.DBTX) records.Repository               { return m.records }

type fakeUsersRepo struct {
	byEmail   map[string]*models.User
	createErr error
	getErr    error
	nextID    int
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return nil, common.ErrUserExists
	}
	f.nextID++
	cp := *u
	cp.ID = "user-" + string(rune('0'+f.nextID))
	f.byEmail[u.Email] = &cp
	return &cp, nil
}

func (f *fakeUsersRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

type fakeProfilesRepo struct {
	rows map[string]*models.Profile
	err  error
}

func (f *fakeProfilesRepo) Create(_ context.Context, p *models.Profile) error {
	if f.err != nil {
		return f.err
	}
	f.rows[p.UserID] = p
	return nil
}

func (f *fakeProfilesRepo) Get(_ context.Context, userID string) (*models.Profile, error) {
	p, ok := f.rows[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return p, nil
}

type fakeSecurityRepo struct {
	rows    map[string]*models.SecuritySettings
	getErr  error
	created int
}

func (f *fakeSecurityRepo) Get(_ context.Context, userID string) (*models.SecuritySettings, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	s, ok := f.rows[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSecurityRepo) CreateDefault(_ context.Context, userID string) error {
	if _, ok := f.rows[userID]; !ok {
		f.rows[userID] = models.DefaultSecuritySettings(userID)
		f.created++
	}
	return nil
}

func (f *fakeSecurityRepo) Update(_ context.Context, s *models.SecuritySettings) error {
	if _, ok := f.rows[s.UserID]; !ok {
		return common.ErrorNotFound
	}
	cp := *s
	f.rows[s.UserID] = &cp
	return nil
}

type fakeBackupSettingsRepo struct {
	rows    map[string]*models.BackupSettings
	created int
}

func (f *fakeBackupSettingsRepo) Get(_ context.Context, userID string) (*models.BackupSettings, error) {
	s, ok := f.rows[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeBackupSettingsRepo) CreateDefault(_ context.Context, userID string) error {
	if _, ok := f.rows[userID]; !ok {
		f.rows[userID] = models.DefaultBackupSettings(userID)
		f.created++
	}
	return nil
}

func (f *fakeBackupSettingsRepo) Update(_ context.Context, s *models.BackupSettings) error {
	if _, ok := f.rows[s.UserID]; !ok {
		return common.ErrorNotFound
	}
	cp := *s
	f.rows[s.UserID] = &cp
	return nil
}

func (f *fakeBackupSettingsRepo) MarkBackedUp(_ context.Context, userID string, at time.Time, sizeMB float64) error {
	s, ok := f.rows[userID]
	if !ok {
		return common.ErrorNotFound
	}
	s.LastBackupAt = &at
	s.BackupSizeMB = &sizeMB
	return nil
}

type fakeHistoryRepo struct {
	rows     map[string]*models.BackupHistory
	statuses []models.BackupStatus
}

func (f *fakeHistoryRepo) Create(_ context.Context, h *models.BackupHistory) error {
	cp := *h
	f.rows[h.ID] = &cp
	f.statuses = append(f.statuses, h.BackupStatus)
	return nil
}

func (f *fakeHistoryRepo) SetStatus(_ context.Context, id string, status models.BackupStatus) error {
	h, ok := f.rows[id]
	if !ok {
		return common.ErrorNotFound
	}
	h.BackupStatus = status
	f.statuses = append(f.statuses, status)
	return nil
}

func (f *fakeHistoryRepo) Complete(_ context.Context, id string, sizeMB float64, location models.BackupLocation, filePath string, completedAt time.Time) error {
	h, ok := f.rows[id]
	if !ok {
		return common.ErrorNotFound
	}
	h.BackupStatus = models.BackupStatusCompleted
	h.BackupSizeMB = &sizeMB
	h.BackupLocation = &location
	h.FilePath = &filePath
	h.CompletedAt = &completedAt
	f.statuses = append(f.statuses, h.BackupStatus)
	return nil
}

func (f *fakeHistoryRepo) Fail(_ context.Context, id string, message string, completedAt time.Time) error {
	h, ok := f.rows[id]
	if !ok {
		return common.ErrorNotFound
	}
	h.BackupStatus = models.BackupStatusFailed
	h.ErrorMessage = &message
	h.CompletedAt = &completedAt
	f.statuses = append(f.statuses, h.BackupStatus)
	return nil
}

func (f *fakeHistoryRepo) Get(_ context.Context, userID, id string) (*models.BackupHistory, error) {
	h, ok := f.rows[id]
	if !ok || h.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return h, nil
}

func (f *fakeHistoryRepo) sorted(userID string) []*models.BackupHistory {
	out := make([]*models.BackupHistory, 0, len(f.rows))
	for _, h := range f.rows {
		if h.UserID == userID {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out
}

func (f *fakeHistoryRepo) LatestCompleted(_ context.Context, userID string) (*models.BackupHistory, error) {
	for _, h := range f.sorted(userID) {
		if h.BackupStatus == models.BackupStatusCompleted && h.FilePath != nil {
			return h, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeHistoryRepo) List(_ context.Context, userID string, limit int) ([]*models.BackupHistory, error) {
	out := f.sorted(userID)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeRecordsRepo struct {
	mu        sync.Mutex
	rows      map[models.Category][]models.Record
	fetchErr  map[models.Category]error
	insertErr map[models.Category]error
	ops       []string
}

func newFakeRecordsRepo() *fakeRecordsRepo {
	return &fakeRecordsRepo{
		rows:      map[models.Category][]models.Record{},
		fetchErr:  map[models.Category]error{},
		insertErr: map[models.Category]error{},
	}
}

func (f *fakeRecordsRepo) Fetch(_ context.Context, c models.Category, userID string) ([]models.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fetchErr[c]; err != nil {
		return nil, err
	}
	out := []models.Record{}
	for _, r := range f.rows[c] {
		if r.UserID() == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRecordsRepo) DeleteByUser(_ context.Context, c models.Category, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, "delete:"+string(c))
	kept := f.rows[c][:0:0]
	for _, r := range f.rows[c] {
		if r.UserID() != userID {
			kept = append(kept, r)
		}
	}
	f.rows[c] = kept
	return nil
}

func (f *fakeRecordsRepo) Insert(_ context.Context, c models.Category, rows []models.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, "insert:"+string(c))
	if err := f.insertErr[c]; err != nil {
		return err
	}
	f.rows[c] = append(f.rows[c], rows...)
	return nil
}

func (f *fakeRecordsRepo) Upsert(_ context.Context, c models.Category, rows []models.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, "upsert:"+string(c))
	for _, r := range rows {
		kept := f.rows[c][:0:0]
		for _, old := range f.rows[c] {
			if old.UserID() != r.UserID() {
				kept = append(kept, old)
			}
		}
		f.rows[c] = append(kept, r)
	}
	return nil
}

func (f *fakeRecordsRepo) add(t *testing.T, c models.Category, jsonRows ...string) {
	t.Helper()
	for _, s := range jsonRows {
		f.rows[c] = append(f.rows[c], mustRecord(t, s))
	}
}

func (f *fakeRecordsRepo) forUser(c models.Category, userID string) []models.Record {
	rows, _ := f.Fetch(context.Background(), c, userID)
	return rows
}

func mustRecord(t *testing.T, s string) models.Record {
	t.Helper()
	var r models.Record
	require.NoError(t, json.Unmarshal([]byte(s), &r))
	return r
}

func discard() logging.Logger { return logging.Discard() }
