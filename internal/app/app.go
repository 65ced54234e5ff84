// Package app wires the budgetkeeper client: remote store, on-device store,
// object storage, session and services, and runs the terminal front end
// until the input ends or the process is signalled.
package app

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/budgetkeeper/internal/biometric"
	"github.com/dmitrijs2005/budgetkeeper/internal/cli"
	"github.com/dmitrijs2005/budgetkeeper/internal/config"
	"github.com/dmitrijs2005/budgetkeeper/internal/localstore"
	"github.com/dmitrijs2005/budgetkeeper/internal/logging"
	"github.com/dmitrijs2005/budgetkeeper/internal/objectstore"
	"github.com/dmitrijs2005/budgetkeeper/internal/repositories/repomanager"
	"github.com/dmitrijs2005/budgetkeeper/internal/services"
	"github.com/dmitrijs2005/budgetkeeper/internal/session"
)

type App struct {
	config *config.Config
	logger logging.Logger

	db    *sql.DB
	local *localstore.Store
	cli   *cli.App

	closeOnce sync.Once
	closeErr  error
}

// NewApp opens every store named in c and builds the services on top of
// them. Stores opened before a failure are closed again.
func NewApp(ctx context.Context, c *config.Config, in io.Reader, out io.Writer) (app *App, err error) {
	logger := logging.New(c.LogLevel, os.Stderr)

	db, err := repomanager.OpenDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	defer func() {
		if err != nil {
			db.Close()
		}
	}()

	rm := repomanager.NewPostgresRepositoryManager()
	if c.RunMigrations {
		if err := rm.RunMigrations(ctx, db); err != nil {
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}

	local, err := localstore.Open(ctx, c.LocalStoreDriver, c.LocalStorePath)
	if err != nil {
		return nil, fmt.Errorf("local store init error: %w", err)
	}
	defer func() {
		if err != nil {
			local.Close()
		}
	}()

	objects, err := objectstore.NewS3Store(ctx, objectstore.S3Config{
		Region:       c.S3Region,
		AccessKey:    c.S3RootUser,
		SecretKey:    c.S3RootPassword,
		BaseEndpoint: c.S3BaseEndpoint,
		Buckets:      map[string]objectstore.BucketOptions{c.BackupBucket: services.BackupBucketOptions},
	})
	if err != nil {
		return nil, fmt.Errorf("object store init error: %w", err)
	}

	reader := bufio.NewReader(in)
	prompt := biometric.NewTerminalPrompt(reader, out)
	sess := session.NewManager(local, c.SessionSecret, c.SessionTTL)

	enc := services.NewEncryptionService(local, logger)
	creds := services.NewCredentialService(local, enc, logger)
	settings := services.NewSettingsService(db, rm, sess, logger)
	backup := services.NewBackupService(db, rm, objects, enc, sess, c.BackupBucket, c.IntegritySalt, logger)

	svc := cli.Services{
		Auth:        services.NewAuthService(db, rm, sess, creds, prompt, logger),
		Settings:    settings,
		Backup:      backup,
		Restore:     services.NewRestoreService(db, rm, objects, enc, sess, c.BackupBucket, c.IntegritySalt, logger),
		AutoBackup:  services.NewAutoBackupService(local, settings, backup, sess, logger),
		Policy:      services.NewPolicyService(db, rm, sess, prompt, logger),
		Encryption:  enc,
		Credentials: creds,
		Greeting:    services.NewGreetingService(local, sess),
		Session:     sess,
	}

	return &App{
		config: c,
		logger: logger,
		db:     db,
		local:  local,
		cli:    cli.NewApp(svc, reader, out, logger),
	}, nil
}

// initSignalHandler cancels in-flight work and releases the stores on
// SIGINT, SIGTERM or SIGQUIT. The REPL may be blocked reading input, so the
// process exits from here.
func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
		if err := app.Close(); err != nil {
			app.logger.Error(context.Background(), "close failed", "error", err)
		}
		os.Exit(1)
	}()
}

// Run blocks until the REPL exits and then releases the stores.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Debug(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	app.cli.Run(ctx)

	return app.Close()
}

// Close releases the stores. Only the first call does any work.
func (app *App) Close() error {
	app.closeOnce.Do(func() {
		app.closeErr = errors.Join(app.local.Close(), app.db.Close())
	})
	return app.closeErr
}
