package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for all orcakit environment variables.
const EnvPrefix = "ORCAKIT"

// AppName is used for config and data directory names.
const AppName = "orcakit"

var (
	configMu  sync.RWMutex
	appConfig *Config
)

// envSpec maps an environment variable onto a config key.
type envSpec struct {
	Name string
	Key  string
}

// getEnvSpecs returns the explicit env bindings. Keys not listed here are
// still reachable as ORCAKIT_<SECTION>_<KEY> through AutomaticEnv.
func getEnvSpecs() []envSpec {
	return []envSpec{
		{Name: EnvPrefix + "_LOG_LEVEL", Key: "logging.level"},
		{Name: EnvPrefix + "_READONLY", Key: "readonly"},
		{Name: EnvPrefix + "_PARTITION", Key: "slurm.partition"},
		{Name: EnvPrefix + "_ORCA_PATH", Key: "slurm.orca_path"},
		{Name: EnvPrefix + "_WATCH_INTERVAL", Key: "status.watch_interval"},
		{Name: EnvPrefix + "_SSH_DOMAIN", Key: "status.ssh_domain"},
		{Name: EnvPrefix + "_REGISTRY_DIR", Key: "registry.dir"},
	}
}

// SetDefaults registers built-in defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("input.method", "wB97X-D4")
	v.SetDefault("input.basis", "def2-TZVPPD")
	v.SetDefault("input.grid", "DEFGRID3")
	v.SetDefault("input.job", "sp")
	v.SetDefault("input.charge", 0)
	v.SetDefault("input.mult", 1)
	v.SetDefault("input.nstates", 10)
	v.SetDefault("input.pal", 32)
	v.SetDefault("input.maxcore_mb", 4000)
	v.SetDefault("input.pal_style", "block")
	v.SetDefault("input.pattern", "*.xyz")
	v.SetDefault("input.stage_method", "wB97X-D4")
	v.SetDefault("input.stage_basis", "def2-SVPD")
	v.SetDefault("input.neb_method", "r2SCAN-3c")

	v.SetDefault("slurm.partition", "normal")
	v.SetDefault("slurm.time", "48:00:00")
	v.SetDefault("slurm.exclusive", true)
	v.SetDefault("slurm.workdir", "lscratch")
	v.SetDefault("slurm.clean", "copy_tmp")
	v.SetDefault("slurm.orca_path", "")
	v.SetDefault("slurm.mpi_prefix", "")
	v.SetDefault("slurm.modules", []string{
		"GCC/12.3.0",
		"UCX/1.14.1-GCCcore-12.3.0",
		"PMIx/4.2.4-GCCcore-12.3.0",
		"libevent/2.1.12-GCCcore-12.3.0",
		"hwloc/2.9.1-GCCcore-12.3.0",
	})
	v.SetDefault("slurm.submit_rate", 2.0)

	v.SetDefault("status.watch_interval", "3s")
	v.SetDefault("status.ssh_domain", "")
	v.SetDefault("status.scratch_dirs", []string{"/lscratch", "/tmp", "/scratch"})

	v.SetDefault("logging.level", "info")
	v.SetDefault("registry.dir", "")
	v.SetDefault("readonly", false)
}

// Load resolves configuration from defaults, the config file named by
// ORCAKIT_CONFIG (or the user config dir), environment and overrides.
func Load(ctx context.Context, overrides ...map[string]any) (*Config, error) {
	return LoadFile(ctx, os.Getenv(EnvPrefix+"_CONFIG"), overrides...)
}

// LoadFile is Load with an explicit config file path. An empty path falls
// back to the user config dir; a missing default file is not an error.
func LoadFile(ctx context.Context, path string, overrides ...map[string]any) (*Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, spec := range getEnvSpecs() {
		if err := v.BindEnv(spec.Key, spec.Name); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", spec.Name, err)
		}
	}

	if err := readConfigFile(v, path); err != nil {
		return nil, err
	}

	// Set ranks above env; MergeConfigMap would land below it.
	for _, o := range overrides {
		for key, val := range flattenOverrides("", o) {
			v.Set(key, val)
		}
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	configMu.Lock()
	appConfig = &cfg
	configMu.Unlock()

	return &cfg, nil
}

// flattenOverrides turns nested override maps into dotted viper keys.
func flattenOverrides(prefix string, m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, val := range m {
		key := strings.ToLower(k)
		if prefix != "" {
			key = prefix + "." + key
		}
		if nested, ok := val.(map[string]any); ok {
			for nk, nv := range flattenOverrides(key, nested) {
				out[nk] = nv
			}
			continue
		}
		out[key] = val
	}
	return out
}

// GetConfig returns the most recently loaded configuration, or nil.
func GetConfig() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}

// UserConfigPath returns the default config file location.
func UserConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName, "config.yaml"), nil
}

func readConfigFile(v *viper.Viper, path string) error {
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		p, err := UserConfigPath()
		if err != nil {
			return nil
		}
		path = p
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("config file %s: %w", path, err)
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	return nil
}
