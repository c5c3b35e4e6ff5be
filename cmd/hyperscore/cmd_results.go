package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nvandessel/hyperscore/internal/backup"
	"github.com/nvandessel/hyperscore/internal/report"
	"github.com/nvandessel/hyperscore/internal/simulation"
	"github.com/nvandessel/hyperscore/internal/store"
)

func newResultsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Inspect stored simulation runs",
		Long: `Inspect runs saved with --save. Runs are stored in
<root>/.hyperscore/results.db unless store.path is configured.`,
	}

	cmd.AddCommand(
		newResultsListCmd(),
		newResultsShowCmd(),
		newResultsDeleteCmd(),
		newResultsExportCmd(),
		newResultsImportCmd(),
		newResultsHistoryCmd(),
		newResultsBackupCmd(),
		newResultsRestoreCmd(),
	)
	return cmd
}

func newResultsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			scenarioName, _ := cmd.Flags().GetString("scenario")
			profile, _ := cmd.Flags().GetString("profile")
			limit, _ := cmd.Flags().GetInt("limit")

			a, rs, err := openAppStore(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			defer rs.Close()

			sums, err := rs.List(cmd.Context(), store.Filter{Scenario: scenarioName, Profile: profile, Limit: limit})
			if err != nil {
				return err
			}

			if a.jsonOut {
				return writeJSON(a.out, map[string]any{"runs": sums, "count": len(sums)})
			}
			return report.WriteRunList(a.out, sums)
		},
	}
	cmd.Flags().String("scenario", "", "Only runs of this scenario or base scenario")
	cmd.Flags().String("profile", "", "Only runs under this weighting profile")
	cmd.Flags().Int("limit", 20, "Maximum number of runs (0 for all)")
	return cmd
}

func newResultsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, rs, err := openAppStore(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			defer rs.Close()

			res, err := rs.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if a.jsonOut {
				return writeJSON(a.out, res)
			}
			return report.WriteSummary(a.out, []*simulation.Result{res})
		},
	}
}

func newResultsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <run-id>",
		Short: "Delete a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, rs, err := openAppStore(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			defer rs.Close()

			if err := rs.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			if a.jsonOut {
				return writeJSON(a.out, map[string]string{"status": "deleted", "run_id": args[0]})
			}
			fmt.Fprintf(a.out, "Deleted run %s\n", args[0])
			return nil
		},
	}
}

func newResultsExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored runs as JSON lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")

			a, rs, err := openAppStore(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			defer rs.Close()

			w := a.out
			if output != "" {
				f, err := os.OpenFile(output, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
				if err != nil {
					return fmt.Errorf("create export file: %w", err)
				}
				defer f.Close()
				w = f
			}

			n, err := store.ExportJSONL(cmd.Context(), rs, w)
			if err != nil {
				return err
			}
			if output != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d runs to %s\n", n, output)
			}
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "", "Write to this file instead of stdout")
	return cmd
}

func newResultsImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import runs from a JSON lines export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, rs, err := openAppStore(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			defer rs.Close()

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open import file: %w", err)
			}
			defer f.Close()

			n, err := store.ImportJSONL(cmd.Context(), rs, f, a.logger)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return writeJSON(a.out, map[string]int{"imported": n})
			}
			fmt.Fprintf(a.out, "Imported %d runs\n", n)
			return nil
		},
	}
}

func newResultsHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <node-id> <label>",
		Short: "Show how one node's final score changed across stored runs",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, rs, err := openAppStore(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			defer rs.Close()

			points, err := rs.ScoreHistory(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if a.jsonOut {
				return writeJSON(a.out, map[string]any{"node_id": args[0], "label": args[1], "points": points})
			}
			return report.WriteScoreHistory(a.out, args[0], args[1], points)
		},
	}
}

func newResultsBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a compressed, checksummed archive of every stored run",
		Long: `Write every stored run to a backup archive. Without --output the archive
goes to ~/.hyperscore/backups/ and the retention flags prune older archives
there. An archive is kept if any retention rule keeps it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			keep, _ := cmd.Flags().GetInt("keep")
			maxAge, _ := cmd.Flags().GetString("max-age")
			maxSize, _ := cmd.Flags().GetString("max-size")

			policy, err := retentionPolicy(keep, maxAge, maxSize)
			if err != nil {
				return err
			}

			a, rs, err := openAppStore(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			defer rs.Close()

			dir := ""
			if output == "" {
				dir, err = backup.DefaultBackupDir()
				if err != nil {
					return err
				}
				output = backup.GenerateBackupPath(dir)
			}

			header, err := backup.Backup(cmd.Context(), rs, output)
			if err != nil {
				return err
			}

			var pruned []string
			if dir != "" {
				pruned, err = backup.ApplyRetention(dir, policy)
				if err != nil {
					return err
				}
			}

			if a.jsonOut {
				return writeJSON(a.out, map[string]any{
					"path":      output,
					"run_count": header.RunCount,
					"checksum":  header.Checksum,
					"pruned":    pruned,
				})
			}
			fmt.Fprintf(a.out, "Backed up %d runs to %s\n", header.RunCount, output)
			if len(pruned) > 0 {
				fmt.Fprintf(a.out, "Removed %d old backups\n", len(pruned))
			}
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "", "Archive path (default: timestamped file in ~/.hyperscore/backups)")
	cmd.Flags().Int("keep", 10, "Keep this many most recent backups")
	cmd.Flags().String("max-age", "", "Also keep backups younger than this (e.g. 30d, 2w, 720h)")
	cmd.Flags().String("max-size", "", "Also keep newest backups up to this total size (e.g. 100MB)")
	return cmd
}

func newResultsRestoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <archive>",
		Short: "Restore runs from a backup archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			replace, _ := cmd.Flags().GetBool("replace")
			verifyOnly, _ := cmd.Flags().GetBool("verify")

			if verifyOnly {
				if err := backup.VerifyChecksum(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: checksum OK\n", args[0])
				return nil
			}

			a, rs, err := openAppStore(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			defer rs.Close()

			mode := backup.RestoreMerge
			if replace {
				mode = backup.RestoreReplace
			}
			result, err := backup.Restore(cmd.Context(), rs, args[0], mode)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return writeJSON(a.out, result)
			}
			fmt.Fprintf(a.out, "Restored %d runs (%d skipped", result.RunsRestored, result.RunsSkipped)
			if result.RunsDeleted > 0 {
				fmt.Fprintf(a.out, ", %d replaced", result.RunsDeleted)
			}
			fmt.Fprintln(a.out, ")")
			return nil
		},
	}
	cmd.Flags().Bool("replace", false, "Delete every stored run before restoring")
	cmd.Flags().Bool("verify", false, "Only verify the archive checksum")
	return cmd
}

// retentionPolicy combines the retention flags into one policy.
func retentionPolicy(keep int, maxAge, maxSize string) (backup.RetentionPolicy, error) {
	policies := backup.AnyOf{backup.KeepLatest(keep)}
	if maxAge != "" {
		d, err := backup.ParseDuration(maxAge)
		if err != nil {
			return nil, err
		}
		policies = append(policies, backup.KeepWithin(d))
	}
	if maxSize != "" {
		n, err := backup.ParseSize(maxSize)
		if err != nil {
			return nil, err
		}
		policies = append(policies, backup.KeepUnderSize(n))
	}
	return policies, nil
}

// openAppStore sets up the app and opens its result store.
func openAppStore(cmd *cobra.Command) (*app, *store.SQLiteResultStore, error) {
	a, err := newApp(cmd)
	if err != nil {
		return nil, nil, err
	}
	rs, err := a.openStore()
	if err != nil {
		a.Close()
		return nil, nil, err
	}
	return a, rs, nil
}
