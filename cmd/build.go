package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"content-manager/feature/bundles"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build all plugin bundles once",
	Long: `Discovers every plugin, rebuilds the bundles whose content changed and prints
the run report. Unchanged bundles are skipped using the build cache.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Flags().GetBool("json")

		rt, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		svc := bundles.NewService(rt.pipeline, rt.fs, rt.cfg.Pipeline.PluginsDir, rt.logg)
		report, err := svc.Rebuild(cmd.Context())
		if err != nil {
			return err
		}

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
		} else {
			fmt.Println("\n=== Build Report ===")
			fmt.Printf("Built: %d\n", len(report.Built))
			fmt.Printf("Skipped: %d\n", len(report.Skipped))
			fmt.Printf("Empty: %d\n", len(report.Empty))
			fmt.Printf("Failed: %d\n", len(report.Failed))
			for owner, reason := range report.Failed {
				fmt.Printf("  %s: %s\n", owner, reason)
			}
			fmt.Printf("Execution Time: %s\n", report.Duration.String())
		}

		rt.logg.Info("Build completed",
			zap.Int("built", len(report.Built)),
			zap.Int("skipped", len(report.Skipped)),
			zap.Int("failed", len(report.Failed)),
			zap.Duration("execution_time", report.Duration))

		if len(report.Failed) > 0 {
			return fmt.Errorf("%d owner(s) failed to build", len(report.Failed))
		}
		return nil
	},
}

func init() {
	buildCmd.Flags().Bool("json", false, "Print the report as JSON")
	RootCmd.AddCommand(buildCmd)
}
