package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	internal "github.com/veidstad/craft-tracker/internal"
	"github.com/veidstad/craft-tracker/internal/backup"
	"github.com/veidstad/craft-tracker/internal/entry"
	"github.com/veidstad/craft-tracker/internal/expense"
	expenseSqlite "github.com/veidstad/craft-tracker/internal/expense/sqlite"
	"github.com/veidstad/craft-tracker/internal/job"
	jobSqlite "github.com/veidstad/craft-tracker/internal/job/sqlite"
	"github.com/veidstad/craft-tracker/internal/receipts"
	"github.com/veidstad/craft-tracker/internal/storage"
	"github.com/veidstad/craft-tracker/internal/workentry"
	workentrySqlite "github.com/veidstad/craft-tracker/internal/workentry/sqlite"
	"github.com/veidstad/craft-tracker/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "craft-tracker",
	Short: "Craft Tracker",
	Long:  `Offline time and expense tracking for craftsmen.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*internal.Config, error) {
	if os.Getenv("APP_ENV") == "production" || os.Getenv("DOCKER_ENV") == "true" {
		cfg := internal.LoadConfigFromEnv()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("error validating config from environment: %w", err)
		}
		return cfg, nil
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.SetEnvPrefix("CT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	var cfg internal.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("error validating config: %w", err)
	}

	return &cfg, nil
}

// Dependencies carries the explicitly constructed store and services.
// There is no global store handle: everything is wired here and passed
// down, which keeps tests free to build their own.
type Dependencies struct {
	Config        *internal.Config
	Store         *storage.Store
	Jobs          job.Repository
	Entries       workentry.Repository
	Expenses      expense.Repository
	JobService    *job.Service
	EntryService  *entry.Service
	BackupService *backup.Service
	Logger        *slog.Logger
}

func initializeDependencies() (*Dependencies, error) {
	cfg, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.L()

	if dir := filepath.Dir(cfg.Database.Path); cfg.Database.Path != ":memory:" && dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	store, err := storage.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	jobs := jobSqlite.NewJobRepository(store.DB())
	entries := workentrySqlite.NewWorkEntryRepository(store.DB())
	expenses := expenseSqlite.NewExpenseRepository(store.DB())
	receiptStorage := receipts.NewDiskStorage(cfg.Receipts.Dir, log)

	return &Dependencies{
		Config:        cfg,
		Store:         store,
		Jobs:          jobs,
		Entries:       entries,
		Expenses:      expenses,
		JobService:    job.NewService(jobs, log),
		EntryService:  entry.NewService(store, entries, expenses, receiptStorage, cfg.Receipts.Owner, log),
		BackupService: backup.NewService(store, log),
		Logger:        log,
	}, nil
}

func (d *Dependencies) Close() {
	if err := d.Store.Close(); err != nil {
		d.Logger.Error("store close error", "error", err)
	}
}

func init() {
	seedCmd.Flags().BoolVar(&clearData, "clear", false, "Clear existing data before seeding")
	exportCmd.Flags().StringVarP(&exportDir, "out", "o", ".", "Directory to write the backup file to")

	backupCmd.AddCommand(exportCmd)
	backupCmd.AddCommand(importCmd)

	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(seedCmd)
}
