// Package cli implements the dairyctl command-line interface: a thin
// operator surface over the session manager and the query services.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dairyerp/dairyclient/internal/config"
	"github.com/dairyerp/dairyclient/internal/service/collections"
	"github.com/dairyerp/dairyclient/internal/service/farmers"
	"github.com/dairyerp/dairyclient/internal/session"
	"github.com/dairyerp/dairyclient/internal/storage"
	"github.com/dairyerp/dairyclient/internal/transport"
	"github.com/dairyerp/dairyclient/pkg/logger"
)

// app bundles the wired components every command needs.
type app struct {
	cfg         *config.Config
	logger      *zap.Logger
	store       *storage.SQLiteStore
	sessions    *session.Manager
	transport   *transport.Client
	farmers     *farmers.Service
	collections *collections.Service
}

func newApp(envFile string) (*app, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}

	baseLogger := logger.Must(logger.New(cfg.Logging.Level))

	if err := os.MkdirAll(filepath.Dir(cfg.State.Path), 0o700); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}

	store, err := storage.OpenSQLite(context.Background(), cfg.State.Path)
	if err != nil {
		return nil, err
	}

	tc := transport.New(transport.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
	}, logger.Named(baseLogger, "transport"))

	sessions := session.NewManager(tc, store, logger.Named(baseLogger, "session"))
	tc.SetCredentials(session.CredentialSource{Manager: sessions})

	return &app{
		cfg:         cfg,
		logger:      baseLogger,
		store:       store,
		sessions:    sessions,
		transport:   tc,
		farmers:     farmers.NewService(tc, logger.Named(baseLogger, "svc.farmers")),
		collections: collections.NewService(tc, logger.Named(baseLogger, "svc.collections")),
	}, nil
}

func (a *app) close() {
	if a.store != nil {
		_ = a.store.Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// Execute wires the application and runs the root command.
func Execute() error {
	var envFile string
	var a *app

	root := &cobra.Command{
		Use:           "dairyctl",
		Short:         "Operator CLI for the dairy co-op backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			a, err = newApp(envFile)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a != nil {
				a.close()
			}
		},
	}

	root.PersistentFlags().StringVar(&envFile, "env", "", "Path to an optional .env file")

	root.AddCommand(newLoginCmd(&a))
	root.AddCommand(newLogoutCmd(&a))
	root.AddCommand(newWhoamiCmd(&a))
	root.AddCommand(newPingCmd(&a))
	root.AddCommand(newFarmersCmd(&a))
	root.AddCommand(newCollectionsCmd(&a))

	return root.Execute()
}
