package services

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"github.com/dmitrijs2005/budgetkeeper/internal/cryptox"
	"github.com/dmitrijs2005/budgetkeeper/internal/logging"
	"github.com/dmitrijs2005/budgetkeeper/internal/models"
	"github.com/dmitrijs2005/budgetkeeper/internal/objectstore"
	"github.com/dmitrijs2005/budgetkeeper/internal/repositories/records"
	"github.com/dmitrijs2005/budgetkeeper/internal/repositories/repomanager"
)

// PreparedRestore is a downloaded and validated backup awaiting confirmation.
type PreparedRestore struct {
	History  *models.BackupHistory
	Envelope *models.Envelope
}

// ConfirmFunc is asked before any destructive write. Returning false cancels
// the restore.
type ConfirmFunc func(ctx context.Context, p *PreparedRestore) bool

type RestoreService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	objects     objectstore.Store
	enc         *EncryptionService
	users       CurrentUserProvider
	bucket      string
	salt        string
	log         logging.Logger

	busy atomic.Bool
}

func NewRestoreService(db *sql.DB, m repomanager.RepositoryManager, objects objectstore.Store, enc *EncryptionService,
	users CurrentUserProvider, bucket, salt string, log logging.Logger) *RestoreService {
	return &RestoreService{
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

func (s *RestoreService) findBackup(ctx context.Context, userID, historyID string) (*models.BackupHistory, error) {
	repo := s.repomanager.BackupHistory(s.db)

	var (
		h   *models.BackupHistory
		err error
	)
	if historyID == "" {
		h, err = repo.LatestCompleted(ctx, userID)
	} else {
		h, err = repo.Get(ctx, userID, historyID)
	}
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrNoBackup
		}
		return nil, fmt.Errorf("load backup history: %w", err)
	}

	if h.BackupStatus != models.BackupStatusCompleted || h.FilePath == nil || *h.FilePath == "" {
		return nil, common.ErrNoBackup
	}
	return h, nil
}

// Prepare downloads and decodes a backup without touching user data. An
// empty historyID selects the newest completed backup.
func (s *RestoreService) Prepare(ctx context.Context, historyID string, progress ProgressFunc) (*PreparedRestore, error) {
	userID, err := s.users.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}

	h, err := s.findBackup(ctx, userID, historyID)
	if err != nil {
		return nil, err
	}

	progress.report("Mengunduh backup...")
	body, err := s.objects.Download(ctx, s.bucket, *h.FilePath)
	if err != nil {
		return nil, fmt.Errorf("download backup: %w", err)
	}
	defer body.Close()

	text, err := objectstore.ReadAll(body)
	if err != nil {
		if errors.Is(err, objectstore.ErrInvalidPayloadEncoding) {
			return nil, fmt.Errorf("%w: %w", common.ErrCorruptBackup, err)
		}
		return nil, err
	}

	progress.report("Memeriksa backup...")
	env, err := s.decode(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := validateEnvelope(env); err != nil {
		return nil, err
	}

	return &PreparedRestore{History: h, Envelope: env}, nil
}

func parseEnvelope(text string) (*models.Envelope, bool) {
	var env models.Envelope
	if err := json.Unmarshal([]byte(text), &env); err != nil {
		return nil, false
	}
	return &env, true
}

// decode turns a downloaded backup into an envelope. Sealed blobs are
// verified first; unsealed ones are tried as JSON, as transformed text and
// finally as base64 encoded JSON.
func (s *RestoreService) decode(ctx context.Context, text string) (*models.Envelope, error) {
	if strings.Contains(text, cryptox.TagSeparator) {
		data, ok := cryptox.Open(text, s.salt)
		if !ok {
			if env, ok := parseEnvelope(text); ok {
				return env, nil
			}
			return nil, fmt.Errorf("%w: integrity tag mismatch", common.ErrCorruptBackup)
		}
		text = data
	}

	if env, ok := parseEnvelope(text); ok {
		return env, nil
	}

	if plain, err := s.enc.DecryptData(ctx, text); err == nil && plain != text {
		if env, ok := parseEnvelope(plain); ok {
			return env, nil
		}
	}

	if raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(text)); err == nil {
		if env, ok := parseEnvelope(string(raw)); ok {
			return env, nil
		}
	}

	return nil, common.ErrCorruptBackup
}

func validateEnvelope(env *models.Envelope) error {
	switch {
	case env.UserID == "":
		return fmt.Errorf("%w: missing user_id", common.ErrInvalidBackup)
	case env.Data == nil:
		return fmt.Errorf("%w: missing data", common.ErrInvalidBackup)
	case env.Metadata == nil:
		return fmt.Errorf("%w: missing metadata", common.ErrInvalidBackup)
	}
	return nil
}

// Restore prepares a backup, asks confirm and overwrites the user's records
// with its content.
func (s *RestoreService) Restore(ctx context.Context, historyID string, confirm ConfirmFunc, progress ProgressFunc) (*PreparedRestore, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, common.ErrBusy
	}
	defer s.busy.Store(false)

	p, err := s.Prepare(ctx, historyID, progress)
	if err != nil {
		return nil, err
	}

	if confirm == nil || !confirm(ctx, p) {
		return p, common.ErrRestoreCancelled
	}

	if err := s.Execute(ctx, p, progress); err != nil {
		return p, err
	}
	progress.report("Pemulihan selesai")
	return p, nil
}

// Execute replaces the current user's rows category by category. Rows are
// always reassigned to the current user. A failure stops at that category;
// categories already written stay written.
func (s *RestoreService) Execute(ctx context.Context, p *PreparedRestore, progress ProgressFunc) error {
	userID, err := s.users.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	log := s.log.With("user_id", userID, "backup_user_id", p.Envelope.UserID)
	repo := s.repomanager.Records(s.db)

	for c := range p.Envelope.Data {
		if _, err := records.TableFor(c); err != nil {
			log.Warn(ctx, "skipping unknown backup category", "category", c)
		}
	}

	for _, c := range models.Categories {
		rows, ok := p.Envelope.Data[c]
		if !ok {
			continue
		}

		progress.report(fmt.Sprintf("Memulihkan %s...", c))
		if err := s.restoreCategory(ctx, repo, c, userID, rows); err != nil {
			log.Error(ctx, "restore failed", "category", c, "error", err)
			return fmt.Errorf("%w: %s: %w", common.ErrRestorePartial, c, err)
		}
		log.Info(ctx, "category restored", "category", c, "rows", len(rows))
	}
	return nil
}

func (s *RestoreService) restoreCategory(ctx context.Context, repo records.Repository, c models.Category, userID string, rows []models.Record) error {
	table, err := records.TableFor(c)
	if err != nil {
		return err
	}

	owned := make([]models.Record, 0, len(rows))
	for _, r := range rows {
		owned = append(owned, r.WithUserID(userID))
	}

	if table.Singleton {
		if len(owned) == 0 {
			return nil
		}
		return repo.Upsert(ctx, c, owned[:1])
	}

	if err := repo.DeleteByUser(ctx, c, userID); err != nil {
		return err
	}
	if len(owned) == 0 {
		return nil
	}
	return repo.Insert(ctx, c, owned)
}
