package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"github.com/dmitrijs2005/budgetkeeper/internal/cryptox"
	"github.com/dmitrijs2005/budgetkeeper/internal/logging"
	"github.com/dmitrijs2005/budgetkeeper/internal/models"
	"github.com/dmitrijs2005/budgetkeeper/internal/objectstore"
	"github.com/dmitrijs2005/budgetkeeper/internal/repositories/repomanager"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const backupContentType = "application/json"

// BackupBucketOptions are the limits of the backup bucket. They are passed
// to the object store both on creation and at start-up.
var BackupBucketOptions = objectstore.BucketOptions{
	Public:    false,
	SizeLimit: 50 * 1024 * 1024,
	MimeTypes: []string{backupContentType, "text/plain"},
}

// BackupResult describes an uploaded backup.
type BackupResult struct {
	HistoryID string
	FilePath  string
	SizeMB    float64
	Envelope  *models.Envelope
}

type BackupService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	objects     objectstore.Store
	enc         *EncryptionService
	users       CurrentUserProvider
	bucket      string
	salt        string
	clock       Clock
	log         logging.Logger

	busy atomic.Bool
}

func NewBackupService(db *sql.DB, m repomanager.RepositoryManager, objects objectstore.Store, enc *EncryptionService,
	users CurrentUserProvider, bucket, salt string, log logging.Logger) *BackupService {
	return &BackupService{
		db:          db,
		repomanager: m,
		objects:     objects,
		enc:         enc,
		users:       users,
		bucket:      bucket,
		salt:        salt,
		log:         log,
	}
}

func (s *BackupService) WithClock(c Clock) *BackupService {
	s.clock = c
	return s
}

// ensureBucket creates the backup bucket when it is missing. Failures are
// logged only, the bucket is expected to be provisioned already.
func (s *BackupService) ensureBucket(ctx context.Context) {
	buckets, err := s.objects.ListBuckets(ctx)
	if err != nil {
		s.log.Warn(ctx, "failed to list buckets", "error", err)
		return
	}
	if slices.Contains(buckets, s.bucket) {
		return
	}

	err = s.objects.CreateBucket(ctx, s.bucket, BackupBucketOptions)
	if err != nil {
		s.log.Warn(ctx, "failed to create backup bucket", "bucket", s.bucket, "error", err)
	}
}

// collect fetches every category enabled in settings. Any failing category
// fails the whole collection.
func (s *BackupService) collect(ctx context.Context, userID string, settings *models.BackupSettings) (map[models.Category][]models.Record, int, error) {
	included := make([]models.Category, 0, len(models.Categories))
	for _, c := range models.Categories {
		if c.Included(settings) {
			included = append(included, c)
		}
	}

	repo := s.repomanager.Records(s.db)
	results := make([][]models.Record, len(included))

	g, gctx := errgroup.WithContext(ctx)
	for i, c := range included {
		i, c := i, c
		g.Go(func() error {
			rows, err := repo.Fetch(gctx, c, userID)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", c, err)
			}
			results[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	data := make(map[models.Category][]models.Record, len(included))
	size := 0
	for i, c := range included {
		rows := results[i]
		if rows == nil {
			rows = []models.Record{}
		}
		b, err := json.Marshal(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("marshal %s: %w", c, err)
		}
		size += len(b)
		data[c] = rows
	}
	return data, size, nil
}

// encode renders env for upload. With encryption requested the JSON goes
// through the encryption transform and is sealed with the integrity tag;
// metadata.encrypted is set only when the transform was applied.
func (s *BackupService) encode(ctx context.Context, env *models.Envelope) (string, error) {
	if env.Metadata.Encryption && s.enc.IsEncryptionEnabled(ctx) {
		yes := true
		env.Metadata.Encrypted = &yes

		text, err := s.enc.EncryptObject(ctx, env)
		if err == nil {
			return cryptox.Seal(text, s.salt), nil
		}
		s.log.Warn(ctx, "backup encryption failed, storing plain JSON", "error", err)
	}

	no := false
	env.Metadata.Encrypted = &no
	b, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("marshal backup: %w", err)
	}
	if env.Metadata.Encryption {
		return cryptox.Seal(string(b), s.salt), nil
	}
	return string(b), nil
}

// PerformBackup snapshots the user's records and uploads them as a new
// object. Existing objects are never overwritten.
func (s *BackupService) PerformBackup(ctx context.Context, userID string, settings *models.BackupSettings, progress ProgressFunc) (*BackupResult, error) {
	progress.report("Menyiapkan backup...")
	s.ensureBucket(ctx)

	progress.report("Mengumpulkan data...")
	data, size, err := s.collect(ctx, userID, settings)
	if err != nil {
		return nil, err
	}

	now := s.clock.now()
	env := &models.Envelope{
		UserID:     userID,
		BackupDate: now.UTC(),
		Data:       data,
		Metadata: &models.EnvelopeMetadata{
			Version:    common.BackupFormatVersion,
			Encryption: settings.EncryptionEnabled,
		},
	}

	progress.report("Mengenkripsi backup...")
	body, err := s.encode(ctx, env)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("%s/backup_%d.json", userID, now.UnixMilli())

	progress.report("Mengunggah backup...")
	err = s.objects.Upload(ctx, s.bucket, path, []byte(body), objectstore.UploadOptions{
		ContentType: backupContentType,
		Upsert:      false,
	})
	if err != nil {
		return nil, fmt.Errorf("upload backup: %w", err)
	}

	return &BackupResult{
		FilePath: path,
		SizeMB:   float64(size) / 1024 / 1024,
		Envelope: env,
	}, nil
}

// CreateBackup runs a backup for the current user and records it in the
// backup history. Concurrent calls fail with common.ErrBusy.
func (s *BackupService) CreateBackup(ctx context.Context, backupType models.BackupType, progress ProgressFunc) (*BackupResult, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, common.ErrBusy
	}
	defer s.busy.Store(false)

	userID, err := s.users.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}

	settings, err := loadBackupSettings(ctx, s.repomanager.BackupSettings(s.db), userID)
	if err != nil {
		return nil, err
	}

	history := s.repomanager.BackupHistory(s.db)
	entry := &models.BackupHistory{
		ID:           uuid.NewString(),
		UserID:       userID,
		BackupType:   backupType,
		BackupStatus: models.BackupStatusPending,
		StartedAt:    s.clock.now().UTC(),
	}
	if err := history.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("create backup history: %w", err)
	}

	log := s.log.With("user_id", userID, "history_id", entry.ID, "type", backupType)

	result, err := s.run(ctx, entry.ID, userID, settings, progress)
	if err != nil {
		log.Error(ctx, "backup failed", "error", err)
		if ferr := history.Fail(ctx, entry.ID, err.Error(), s.clock.now().UTC()); ferr != nil {
			log.Warn(ctx, "failed to mark backup history as failed", "error", ferr)
		}
		return nil, err
	}

	result.HistoryID = entry.ID
	log.Info(ctx, "backup completed", "path", result.FilePath, "size_mb", result.SizeMB)
	progress.report("Backup selesai")
	return result, nil
}

func (s *BackupService) run(ctx context.Context, historyID, userID string, settings *models.BackupSettings, progress ProgressFunc) (*BackupResult, error) {
	history := s.repomanager.BackupHistory(s.db)

	if err := history.SetStatus(ctx, historyID, models.BackupStatusInProgress); err != nil {
		return nil, fmt.Errorf("update backup history: %w", err)
	}

	result, err := s.PerformBackup(ctx, userID, settings, progress)
	if err != nil {
		return nil, err
	}

	completedAt := s.clock.now().UTC()
	if err := history.Complete(ctx, historyID, result.SizeMB, settings.BackupLocation, result.FilePath, completedAt); err != nil {
		return nil, fmt.Errorf("complete backup history: %w", err)
	}
	if err := s.repomanager.BackupSettings(s.db).MarkBackedUp(ctx, userID, completedAt, result.SizeMB); err != nil {
		return nil, fmt.Errorf("update backup settings: %w", err)
	}
	return result, nil
}
