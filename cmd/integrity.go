package cmd

import (
	"fmt"

	"content-manager/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fixFlag bool

// integrityCmd runs every check.
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Perform integrity checks on bundles, storage and database",
	Long:  `Checks generated bundles against the build index, the storage bucket folder structure and the build cache table.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd, true, true, true)
	},
}

// structureCmd represents the integrity structure command
var structureCmd = &cobra.Command{
	Use:   "structure",
	Short: "Check and fix bucket folder structure",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd, true, false, false)
	},
}

// artifactsCmd represents the integrity artifacts command
var artifactsCmd = &cobra.Command{
	Use:   "artifacts",
	Short: "Verify generated bundles against their build records",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd, false, true, false)
	},
}

// databaseCmd represents the integrity database command
var databaseCmd = &cobra.Command{
	Use:   "database",
	Short: "Check the build cache table schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd, false, false, true)
	},
}

func init() {
	RootCmd.AddCommand(integrityCmd)
	integrityCmd.AddCommand(structureCmd, artifactsCmd, databaseCmd)
	structureCmd.Flags().BoolVar(&fixFlag, "fix", false, "Fix missing folders")
}

func runIntegrityChecks(cmd *cobra.Command, runStructure, runArtifacts, runDatabase bool) error {
	ctx := cmd.Context()
	rt, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()
	logg := rt.logg

	svc := integrity.NewService(integrity.Options{
		Client:       rt.store,
		Bucket:       rt.cfg.Storage.Bucket,
		DB:           rt.db,
		Fs:           rt.fs,
		Cache:        rt.cache,
		ArtifactPath: rt.pipeline.ArtifactPath,
	}, logg)

	healthy := true

	if runStructure && rt.store == nil {
		logg.Info("Storage is disabled, skipping structure check.")
	} else if runStructure {
		logg.Info("Checking folder structure...")
		missing, err := svc.CheckStructure(ctx)
		if err != nil {
			return fmt.Errorf("structure check failed: %w", err)
		}

		if len(missing) == 0 {
			logg.Info("Structure is intact.")
		} else {
			logg.Warn("Missing folders detected", zap.Strings("missing", missing))
			if fixFlag {
				logg.Info("Fixing missing folders...")
				if err := svc.FixStructure(ctx, missing); err != nil {
					return fmt.Errorf("failed to fix structure: %w", err)
				}
				logg.Info("Structure fixed successfully.")
			} else {
				healthy = false
				logg.Info("Run 'integrity structure --fix' to create missing folders.")
			}
		}
	}

	if runArtifacts {
		logg.Info("Checking generated bundles...")
		report := svc.CheckArtifacts()
		if report.Healthy() {
			logg.Info("Bundles match their build records.", zap.Int("checked", report.Checked))
		} else {
			healthy = false
			logg.Warn("Bundle problems detected",
				zap.Int("checked", report.Checked),
				zap.Strings("missing", report.Missing),
				zap.Strings("modified", report.Modified),
				zap.Strings("errors", report.Errors))
			logg.Info("Run 'build' to regenerate them or 'reconcile --purge' to drop stale records.")
		}
	}

	if runDatabase && rt.db == nil {
		logg.Info("Database is not connected, skipping schema check.")
	} else if runDatabase {
		logg.Info("Checking build cache table...")
		report, err := svc.CheckDatabase()
		if err != nil {
			return fmt.Errorf("database check failed: %w", err)
		}
		switch {
		case !report.Exists:
			logg.Info("Build cache table does not exist yet.", zap.String("table", report.Table))
		case report.Status != "ok":
			healthy = false
			logg.Warn("Build cache table is missing columns",
				zap.String("table", report.Table),
				zap.Strings("columns", report.MissingColumns))
		default:
			logg.Info("Build cache table matches expected definition.", zap.String("table", report.Table))
		}
	}

	if !healthy {
		return fmt.Errorf("integrity checks found problems")
	}
	return nil
}
