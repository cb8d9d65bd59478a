// Package cmd implements the orcakit command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	gfconfig "github.com/fulmenhq/gofulmen/config"
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chemflow/orcakit/internal/config"
	"github.com/chemflow/orcakit/internal/observability"
)

// VersionInfo is stamped into the binary at build time.
type VersionInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

var versionInfo = VersionInfo{
	Version:   "dev",
	Commit:    "HEAD",
	BuildDate: "unknown",
}

// SetVersionInfo records build metadata for the version command.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

// AppIdentity names the binary and its config/data directories.
type AppIdentity struct {
	BinaryName string
	ConfigName string
	EnvPrefix  string
}

var appIdentity *AppIdentity

// GetAppIdentity returns the identity established by the root command, or
// nil before the first command runs.
func GetAppIdentity() *AppIdentity {
	return appIdentity
}

var (
	cfgFile  string
	logLevel string
	verbose  bool
	readOnly bool

	// appCfg is the configuration resolved for the running command.
	appCfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "orcakit",
	Short: "ORCA input generation and Slurm job tooling",
	Long: `orcakit generates ORCA input files, writes and submits Slurm batch
scripts for them, and shows or cancels your cluster jobs.

Examples:
  orcakit mkinput --xyz benzene.xyz --job optfreq --smd water
  orcakit submit --inp benzene.inp --submit
  orcakit status --watch`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initApp,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: $XDG_CONFIG_HOME/orcakit/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (debug logging)")
	rootCmd.PersistentFlags().BoolVar(&readOnly, "readonly", false, "Refuse scheduler mutations (sbatch, scancel)")
}

func initApp(cmd *cobra.Command, args []string) error {
	appIdentity = &AppIdentity{
		BinaryName: config.AppName,
		ConfigName: config.AppName,
		EnvPrefix:  config.EnvPrefix,
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var overrides map[string]any
	if cmd.Flags().Changed("log-level") {
		overrides = map[string]any{"logging": map[string]any{"level": logLevel}}
	}
	path := cfgFile
	if path == "" {
		path = os.Getenv(config.EnvPrefix + "_CONFIG")
	}
	cfg, err := config.LoadFile(ctx, path, overrides)
	if err != nil {
		observability.InitCLILogger(config.AppName, verbose)
		return exitError(foundry.ExitInvalidArgument, "Failed to load configuration", err)
	}
	appCfg = cfg

	if verbose {
		observability.InitCLILogger(config.AppName, true)
	} else {
		observability.InitCLILoggerWithLevel(config.AppName, cfg.Logging.Level)
	}
	observability.CLILogger.Debug("Configuration loaded",
		zap.String("config", path),
		zap.Bool("readonly", IsReadOnly()))
	return nil
}

// currentConfig returns the loaded config, loading defaults when a command
// runs without the root pre-run (tests calling run functions directly).
func currentConfig(ctx context.Context) (*config.Config, error) {
	if appCfg != nil {
		return appCfg, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.LoadFile(ctx, cfgFile)
	if err != nil {
		return nil, err
	}
	appCfg = cfg
	return cfg, nil
}

// IsReadOnly reports whether scheduler mutations are disabled, either by
// --readonly or by ORCAKIT_READONLY / readonly in the config file.
func IsReadOnly() bool {
	if readOnly {
		return true
	}
	return appCfg != nil && appCfg.ReadOnly
}

// requireWritable returns an exit error when readonly mode is on.
func requireWritable(action string) error {
	if !IsReadOnly() {
		return nil
	}
	return exitError(foundry.ExitInvalidArgument,
		fmt.Sprintf("readonly mode enabled: refusing to %s", action),
		fmt.Errorf("disable --readonly (or %s_READONLY) to proceed", config.EnvPrefix))
}

// registryDir returns the job registry root.
func registryDir(cfg *config.Config) string {
	if cfg != nil && strings.TrimSpace(cfg.Registry.Dir) != "" {
		return cfg.Registry.Dir
	}
	name := config.AppName
	if identity := GetAppIdentity(); identity != nil && identity.ConfigName != "" {
		name = identity.ConfigName
	}
	return filepath.Join(gfconfig.GetAppDataDir(name), "jobs")
}

// ExitError carries a process exit code through cobra's error return.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s (exit code %d)", e.Message, e.Code)
	}
	return fmt.Sprintf("%s: %v (exit code %d)", e.Message, e.Err, e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// exitError creates an error that will cause the CLI to exit with the given code.
func exitError(code int, message string, err error) error {
	return &ExitError{Code: code, Message: message, Err: err}
}

// exitCodeOf maps a command error to a process exit code.
func exitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	if errors.Is(err, context.Canceled) {
		return foundry.ExitSignalInt
	}
	return 1
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	observability.Sync()
	return exitCodeOf(err)
}
