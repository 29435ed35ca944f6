package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fdg312/calorie-diary/internal/backup"
	"github.com/fdg312/calorie-diary/internal/diary"
)

func newBackupCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export, import or archive the whole diary",
	}
	cmd.AddCommand(newBackupExportCmd(a), newBackupImportCmd(a), newBackupArchiveCmd(a))
	return cmd
}

func newBackupExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file|-]",
		Short: "Write the diary as JSON (default calorie-tracker-backup-<today>.json)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, data, err := backup.NewService(a.registry, nil, 0).Export(cmd.Context(), owner)
			if err != nil {
				return describe(err)
			}
			target := optionalArg(args, name)
			if target == "-" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(target, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s (%d bytes)\n", target, len(data))
			return nil
		},
	}
}

func newBackupImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the diary with a backup file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			resp, err := backup.NewService(a.registry, nil, 0).Import(cmd.Context(), owner, data)
			if errors.Is(err, diary.ErrInvalidBackup) {
				return fmt.Errorf("%s is not a valid backup, diary left unchanged", args[0])
			}
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d days, %d entries, %d templates (goal %d kcal)\n",
				resp.Days, resp.Entries, resp.Templates, resp.Goal.Calories)
			return nil
		},
	}
}

func newBackupArchiveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "archive",
		Short: "Keep a dated copy under backups/ next to the diary file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := backup.NewService(a.registry, a.store, 0).Archive(cmd.Context(), owner)
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Archived %s (%d bytes)\n", resp.URL, resp.SizeBytes)
			return nil
		},
	}
}
