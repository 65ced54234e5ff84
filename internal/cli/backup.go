package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"github.com/dmitrijs2005/budgetkeeper/internal/models"
	"github.com/dmitrijs2005/budgetkeeper/internal/services"
)

func (a *App) progress() services.ProgressFunc {
	return func(stage string) { a.println(RenderStage(stage)) }
}

// retryable reports whether running the same operation again can succeed.
func retryable(err error) bool {
	for _, target := range []error{
		common.ErrRestoreCancelled, common.ErrCorruptBackup, common.ErrInvalidBackup,
		common.ErrNoBackup, common.ErrNotLoggedIn, common.ErrBusy, common.ErrAuthRequired,
	} {
		if errors.Is(err, target) {
			return false
		}
	}
	return true
}

// withRetry runs op and, after a retryable failure, offers to run it again
// from scratch. The failure is shown to the user here.
func (a *App) withRetry(ctx context.Context, title string, op func() error) error {
	for {
		err := op()
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}

		a.println(RenderError(title+" gagal", err))
		again, rerr := GetConfirmation(a.reader, "Coba lagi?", a.out)
		if rerr != nil || !again {
			return nil
		}
	}
}

func (a *App) Backup(ctx context.Context) error {
	return a.withRetry(ctx, "Backup", func() error {
		res, err := a.svc.Backup.CreateBackup(ctx, models.BackupTypeManual, a.progress())
		if err != nil {
			return err
		}
		a.println(RenderResult("Backup berhasil", true,
			Field{"Lokasi", res.FilePath},
			Field{"Ukuran", formatSize(res.SizeMB)},
			Field{"Terenkripsi", yesNo(res.Envelope.IsEncrypted())},
		))
		return nil
	})
}

func (a *App) confirmRestore(ctx context.Context, p *services.PreparedRestore) bool {
	cats := make([]string, 0, len(p.Envelope.Data))
	for c, rows := range p.Envelope.Data {
		cats = append(cats, fmt.Sprintf("%s (%d)", c, len(rows)))
	}
	slices.Sort(cats)

	a.println(RenderResult("Pulihkan backup?", true,
		Field{"Tanggal", formatTime(p.Envelope.BackupDate)},
		Field{"Data", strings.Join(cats, ", ")},
		Field{"Terenkripsi", yesNo(p.Envelope.IsEncrypted())},
	))
	a.println(RenderWarning("Data Anda saat ini akan ditimpa."))

	ok, err := GetConfirmation(a.reader, "Lanjutkan pemulihan?", a.out)
	return err == nil && ok
}

func (a *App) Restore(ctx context.Context, historyID string) error {
	err := a.withRetry(ctx, "Pemulihan", func() error {
		if _, err := a.svc.Restore.Restore(ctx, historyID, a.confirmRestore, a.progress()); err != nil {
			return err
		}
		a.println(RenderResult("Pemulihan berhasil", true))
		return nil
	})

	switch {
	case errors.Is(err, common.ErrRestoreCancelled):
		a.println("Pemulihan dibatalkan")
		return nil
	case errors.Is(err, common.ErrNoBackup):
		return errors.New("belum ada backup, buat backup terlebih dahulu")
	case errors.Is(err, common.ErrCorruptBackup), errors.Is(err, common.ErrInvalidBackup):
		return fmt.Errorf("backup rusak atau tidak valid: %w", err)
	}
	return err
}

func (a *App) History(ctx context.Context) error {
	items, err := a.svc.Settings.History(ctx)
	if err != nil {
		return err
	}

	t := Table{Title: "Riwayat backup", Headers: []string{"ID", "Jenis", "Status", "Mulai", "Ukuran"}}
	for _, h := range items {
		size := "-"
		if h.BackupSizeMB != nil {
			size = formatSize(*h.BackupSizeMB)
		}
		t.Rows = append(t.Rows, []string{h.ID, string(h.BackupType), string(h.BackupStatus), formatTime(h.StartedAt), size})
	}
	a.println(RenderTable(t))
	return nil
}
