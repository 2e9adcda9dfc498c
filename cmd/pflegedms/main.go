package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/alexiosg111/pflegedms/internal/config"
	"github.com/alexiosg111/pflegedms/internal/domain/appointment"
	"github.com/alexiosg111/pflegedms/internal/domain/contract"
	"github.com/alexiosg111/pflegedms/internal/domain/document"
	"github.com/alexiosg111/pflegedms/internal/domain/invoice"
	"github.com/alexiosg111/pflegedms/internal/domain/mailbox"
	"github.com/alexiosg111/pflegedms/internal/domain/patient"
	"github.com/alexiosg111/pflegedms/internal/domain/qm"
	"github.com/alexiosg111/pflegedms/internal/domain/staff"
	"github.com/alexiosg111/pflegedms/internal/platform/audit"
	"github.com/alexiosg111/pflegedms/internal/platform/backup"
	"github.com/alexiosg111/pflegedms/internal/platform/bridge"
	"github.com/alexiosg111/pflegedms/internal/platform/db"
	"github.com/alexiosg111/pflegedms/internal/platform/search"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pflegedms",
		Short: "Encrypted records backend for home care providers",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(backupCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger
}

func openStore(cfg *config.Config, logger zerolog.Logger) (*db.Conn, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	conn := db.NewConn(cfg.DatabasePath(), logger)
	if err := conn.Open(cfg.MasterPassword); err != nil {
		return nil, err
	}
	return conn, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the records backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the schema ledger",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending schema units",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			conn, err := openStore(cfg, logger)
			if err != nil {
				return err
			}
			defer conn.Close()

			migrator := db.NewMigrator(conn, db.EmbeddedMigrations(), logger)
			count, err := migrator.Up(context.Background())
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d schema unit(s).\n", count)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show ledger status",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			conn, err := openStore(cfg, logger)
			if err != nil {
				return err
			}
			defer conn.Close()

			migrator := db.NewMigrator(conn, db.EmbeddedMigrations(), logger)
			statuses, err := migrator.Status(context.Background())
			if err != nil {
				return err
			}
			fmt.Printf("%-40s %-10s %s\n", "NAME", "STATUS", "EXECUTED AT")
			for _, s := range statuses {
				status := "pending"
				executedAt := ""
				if s.Applied {
					status = "applied"
					if s.ExecutedAt != nil {
						executedAt = s.ExecutedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-40s %-10s %s\n", s.Name, status, executedAt)
			}
			return nil
		},
	})

	return cmd
}

func backupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Create an encrypted snapshot now",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			conn, err := openStore(cfg, logger)
			if err != nil {
				return err
			}
			defer conn.Close()

			coord := backup.NewCoordinator(conn, backup.Config{
				Enabled:    true,
				Frequency:  cfg.BackupFrequency,
				BackupTime: cfg.BackupTime,
				Dir:        cfg.BackupDir,
				MaxBackups: cfg.MaxBackups,
			}, logger)
			if !coord.ExecuteBackup(context.Background()) {
				return fmt.Errorf("backup failed, see log output")
			}
			fmt.Printf("Snapshot written to %s\n", cfg.BackupDir)
			return nil
		},
	}
}

func runServer() error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	conn, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open store")
	}
	defer conn.Close()
	logger.Info().Str("path", cfg.DatabasePath()).Msg("store opened")

	ctx := context.Background()
	migrator := db.NewMigrator(conn, db.EmbeddedMigrations(), logger)
	applied, err := migrator.Up(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("migration failed")
	}
	if applied > 0 {
		logger.Info().Int("count", applied).Msg("schema units applied")
	}

	gw := db.NewGateway(conn, logger)
	recorder := audit.NewRecorder(gw, logger)
	engine := search.NewEngine(gw, logger)
	coordinator := backup.NewCoordinator(conn, backup.Config{
		Enabled:    cfg.BackupEnabled,
		Frequency:  cfg.BackupFrequency,
		BackupTime: cfg.BackupTime,
		Dir:        cfg.BackupDir,
		MaxBackups: cfg.MaxBackups,
	}, logger)

	srv := bridge.NewServer(cfg.Port, logger)
	api := srv.API()

	bridgeHandler := bridge.NewHandler(gw, coordinator, engine, bridge.Paths{
		Database:  cfg.DatabasePath(),
		BackupDir: cfg.BackupDir,
		DataDir:   cfg.DataDir,
	}, logger)
	bridgeHandler.RegisterRoutes(api)

	audit.NewHandler(recorder).RegisterRoutes(api)

	patientSvc := patient.NewService(patient.NewPatientRepoSQLite(gw), recorder)
	patient.NewHandler(patientSvc).RegisterRoutes(api)

	staffSvc := staff.NewService(staff.NewStaffRepoSQLite(gw), recorder)
	staff.NewHandler(staffSvc).RegisterRoutes(api)

	apptSvc := appointment.NewService(appointment.NewAppointmentRepoSQLite(gw), recorder)
	appointment.NewHandler(apptSvc).RegisterRoutes(api)

	docSvc := document.NewService(document.NewDocumentRepoSQLite(gw), gw, recorder)
	document.NewHandler(docSvc).RegisterRoutes(api)

	invoiceSvc := invoice.NewService(invoice.NewInvoiceRepoSQLite(gw), recorder)
	invoice.NewHandler(invoiceSvc).RegisterRoutes(api)

	contractSvc := contract.NewService(contract.NewContractRepoSQLite(gw), recorder)
	contract.NewHandler(contractSvc).RegisterRoutes(api)

	qmSvc := qm.NewService(qm.NewFolderRepoSQLite(gw), qm.NewDocumentRepoSQLite(gw), gw, recorder)
	qm.NewHandler(qmSvc).RegisterRoutes(api)

	mailboxSvc := mailbox.NewService(mailbox.NewItemRepoSQLite(gw), recorder)
	mailbox.NewHandler(mailboxSvc).RegisterRoutes(api)

	schedCtx, schedCancel := context.WithCancel(ctx)
	defer schedCancel()
	go coordinator.Run(schedCtx)

	go func() {
		logger.Info().Int("port", cfg.Port).Msg("bridge listening on loopback")
		if err := srv.Start(); err != nil {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	schedCancel()
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}
	return nil
}
