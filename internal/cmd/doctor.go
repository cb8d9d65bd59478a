package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chemflow/orcakit/internal/config"
	errwrap "github.com/chemflow/orcakit/internal/errors"
	"github.com/chemflow/orcakit/internal/observability"
)

var (
	doctorStrict bool
)

// clusterTools are the external commands orcakit shells out to.
var clusterTools = []struct {
	name    string
	purpose string
}{
	{"sbatch", "submit"},
	{"squeue", "status"},
	{"sacct", "status --history"},
	{"scancel", "status --cancel-menu"},
	{"scontrol", "status --job"},
	{"ssh", "status --ssh-menu, --nodeinfo=NODE"},
	{"rsync", "batch script copy-back"},
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run diagnostic checks",
	Long: `Run diagnostic checks on the system and suggest fixes for common issues.

Examples:
  orcakit doctor            # Full environment check
  orcakit doctor --strict   # Fail when a cluster tool is missing`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorStrict, "strict", false, "Exit non-zero when a Slurm/ssh tool is missing")
}

func runDoctor(cmd *cobra.Command, args []string) error {
	identity := GetAppIdentity()
	bannerName := "doctor"
	if identity != nil && identity.BinaryName != "" {
		bannerName = identity.BinaryName + " doctor"
	}
	observability.CLILogger.Info("=== " + bannerName + " ===")
	observability.CLILogger.Info("")
	observability.CLILogger.Info("Running diagnostic checks...")
	observability.CLILogger.Info("")

	allChecks := true
	checkNum := 1
	totalChecks := 5 + len(clusterTools)

	// Check 1: Go version
	goVersion := runtime.Version()
	observability.CLILogger.Info(fmt.Sprintf("[%d/%d] Checking Go runtime... ✅ %s", checkNum, totalChecks, goVersion),
		zap.String("go_version", goVersion))
	checkNum++

	// Check 2: Crucible access
	version := crucible.GetVersion()
	if version.Crucible != "" {
		observability.CLILogger.Info(fmt.Sprintf("[%d/%d] Checking Crucible access... ✅ v%s", checkNum, totalChecks, version.Crucible),
			zap.String("crucible_version", version.Crucible))
	} else {
		observability.CLILogger.Error(fmt.Sprintf("[%d/%d] Checking Crucible access... ❌ Cannot access Crucible", checkNum, totalChecks))
		return exitError(foundry.ExitExternalServiceUnavailable, "Cannot access Crucible",
			errwrap.NewExternalServiceError("Crucible service unavailable"))
	}
	checkNum++

	// Check 3: Gofulmen access
	if version.Gofulmen != "" {
		observability.CLILogger.Info(fmt.Sprintf("[%d/%d] Checking Gofulmen access... ✅ v%s", checkNum, totalChecks, version.Gofulmen),
			zap.String("gofulmen_version", version.Gofulmen))
	} else {
		observability.CLILogger.Error(fmt.Sprintf("[%d/%d] Checking Gofulmen access... ❌ Cannot access Gofulmen", checkNum, totalChecks))
		allChecks = false
	}
	checkNum++

	// Check 4: Config file
	allChecks = checkConfigFile(checkNum, totalChecks) && allChecks
	checkNum++

	// Check 5: Job registry
	cfg, _ := currentConfig(cmd.Context())
	regDir := registryDir(cfg)
	observability.CLILogger.Info(fmt.Sprintf("[%d/%d] Checking job registry... ✅ %s", checkNum, totalChecks, regDir),
		zap.String("registry_dir", regDir))
	checkNum++

	// Cluster tools
	runner := newRunner()
	missing := 0
	for _, tool := range clusterTools {
		path, err := runner.LookPath(tool.name)
		if err != nil {
			missing++
			observability.CLILogger.Warn(fmt.Sprintf("[%d/%d] Checking %s... ⚠️  not found (needed by %s)", checkNum, totalChecks, tool.name, tool.purpose),
				zap.String("tool", tool.name))
		} else {
			observability.CLILogger.Info(fmt.Sprintf("[%d/%d] Checking %s... ✅ %s", checkNum, totalChecks, tool.name, path),
				zap.String("tool", tool.name),
				zap.String("path", path))
		}
		checkNum++
	}
	if missing > 0 {
		printClusterToolsHelp()
	}

	observability.CLILogger.Info("")
	if allChecks && missing == 0 {
		observability.CLILogger.Info(fmt.Sprintf("✅ All checks passed! Your %s installation is healthy.", bannerName))
	} else {
		observability.CLILogger.Warn("⚠️  Some checks failed. Review the output above for details.")
	}
	observability.CLILogger.Info("")
	observability.CLILogger.Info("=== End Diagnostics ===")

	if doctorStrict && missing > 0 {
		return exitError(foundry.ExitExternalServiceUnavailable, "Cluster tools missing",
			errwrap.NewExternalServiceError(fmt.Sprintf("%d of %d tools not in PATH", missing, len(clusterTools))))
	}
	return nil
}

// checkConfigFile reports the config file in use. A missing default file
// is fine; defaults apply.
func checkConfigFile(checkNum, totalChecks int) bool {
	path := cfgFile
	if path == "" {
		path = os.Getenv(config.EnvPrefix + "_CONFIG")
	}
	if path == "" {
		p, err := config.UserConfigPath()
		if err != nil {
			observability.CLILogger.Error(fmt.Sprintf("[%d/%d] Checking config file... ❌ Cannot find config directory", checkNum, totalChecks),
				zap.Error(err))
			return false
		}
		path = p
	}
	if _, err := os.Stat(path); err != nil {
		observability.CLILogger.Info(fmt.Sprintf("[%d/%d] Checking config file... ✅ none (defaults) at %s", checkNum, totalChecks, path),
			zap.String("config_path", path))
		return true
	}
	observability.CLILogger.Info(fmt.Sprintf("[%d/%d] Checking config file... ✅ %s", checkNum, totalChecks, path),
		zap.String("config_path", path))
	return true
}

// printClusterToolsHelp prints help for missing cluster commands.
func printClusterToolsHelp() {
	observability.CLILogger.Info("")
	observability.CLILogger.Info("Missing cluster tools:")
	observability.CLILogger.Info("  1. Run orcakit on a Slurm login node, or")
	observability.CLILogger.Info("  2. Load the site's Slurm module (e.g. 'module load slurm'), or")
	observability.CLILogger.Info("  3. Add the Slurm bin directory to PATH")
	observability.CLILogger.Info("")
}

