package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/veidstad/craft-tracker/internal/backup"
)

var (
	exportDir string

	backupCmd = &cobra.Command{
		Use:   "backup",
		Short: "Export or restore the full dataset",
	}

	exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Write the entire store to a backup file",
		RunE:  runExport,
	}

	importCmd = &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the entire store with the contents of a backup file",
		Long: `Validates the backup document exhaustively, then replaces every
collection in one atomic transaction. The existing data is kept
untouched if any check or write fails.`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}
)

func runExport(_ *cobra.Command, _ []string) error {
	deps, err := initializeDependencies()
	if err != nil {
		return err
	}
	defer deps.Close()

	data, err := deps.BackupService.ExportJSON()
	if err != nil {
		return err
	}

	path := filepath.Join(exportDir, backup.Filename(time.Now()))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}

	deps.Logger.Info("backup written", "path", path)
	fmt.Println(path)
	return nil
}

func runImport(_ *cobra.Command, args []string) error {
	deps, err := initializeDependencies()
	if err != nil {
		return err
	}
	defer deps.Close()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read backup file: %w", err)
	}

	if err := deps.BackupService.Restore(data); err != nil {
		return err
	}

	fmt.Println("backup restored")
	return nil
}
