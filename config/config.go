package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Nexus-Agni/just-server-vpn-proxy/logger"

	"github.com/spf13/viper"
)

type DefaultPaths struct {
	ConfigDir        string
	DBPath           string
	LogPathApp       string
	LogPathEngine    string
	ManifestPath     string
	LogLevel         string
	ProbeBaseURL     string
	ProbeLivenessURL string
}

type Configuration struct {
	Database struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`
	Server struct {
		Port    string `mapstructure:"port"`
		LogPath string `mapstructure:"log_path"`
	} `mapstructure:"server"`
	Engine struct {
		BaseURL      string `mapstructure:"base_url"`
		APIToken     string `mapstructure:"api_token"`
		RulesetID    string `mapstructure:"ruleset_id"`
		ManifestPath string `mapstructure:"manifest_path"`
		LogPath      string `mapstructure:"log_path"`
		TimeoutMS    int    `mapstructure:"timeout_ms"`
	} `mapstructure:"engine"`
	Probe struct {
		BaseURL   string `mapstructure:"base_url"`
		Path      string `mapstructure:"path"`
		TimeoutMS int    `mapstructure:"timeout_ms"`
	} `mapstructure:"probe"`
	UI struct {
		RequestTimeoutMS int  `mapstructure:"request_timeout_ms"`
		TrayEnabled      bool `mapstructure:"tray_enabled"`
	} `mapstructure:"ui"`
	Logging struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"logging"`
}

var AppConfig Configuration

func expandTilde(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

func GetDefaultConfigPaths() DefaultPaths {
	var paths DefaultPaths
	userConfigDirBase, err := os.UserConfigDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not get user config dir: %v. Using current directory.\n", err)
		userConfigDirBase = "."
	}

	userConfigDir, err := expandTilde(userConfigDirBase)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not expand tilde in user config dir '%s': %v. Using potentially literal path.\n", userConfigDirBase, err)
		userConfigDir = userConfigDirBase
	}

	paths.ConfigDir = filepath.Join(userConfigDir, "proxyctl")
	logDir := filepath.Join(paths.ConfigDir, "logs")

	paths.DBPath = filepath.Join(paths.ConfigDir, "proxyctl.db")
	paths.LogPathApp = filepath.Join(logDir, "app.log")
	paths.LogPathEngine = filepath.Join(logDir, "engine.log")
	paths.ManifestPath = filepath.Join(paths.ConfigDir, "rulesets.json")
	paths.LogLevel = "INFO"
	paths.ProbeBaseURL = "http://localhost:8080"
	paths.ProbeLivenessURL = "/pqc-info"
	return paths
}

func Init(cfgFile string, flagAppLogPath, flagEngineLogPath, flagLogLevel string) error {
	v := viper.New()

	defaults := GetDefaultConfigPaths()
	v.SetDefault("database.path", defaults.DBPath)
	v.SetDefault("server.port", "8799")
	v.SetDefault("server.log_path", defaults.LogPathApp)
	v.SetDefault("engine.base_url", "")
	v.SetDefault("engine.api_token", "")
	// Empty means "not configured": the manifest may supply the id, and the
	// serve command falls back to the built-in default last.
	v.SetDefault("engine.ruleset_id", "")
	v.SetDefault("engine.manifest_path", defaults.ManifestPath)
	v.SetDefault("engine.log_path", defaults.LogPathEngine)
	v.SetDefault("engine.timeout_ms", 5000)
	v.SetDefault("probe.base_url", defaults.ProbeBaseURL)
	v.SetDefault("probe.path", defaults.ProbeLivenessURL)
	v.SetDefault("probe.timeout_ms", 5000)
	v.SetDefault("ui.request_timeout_ms", 5000)
	v.SetDefault("ui.tray_enabled", false)
	v.SetDefault("logging.level", defaults.LogLevel)

	if cfgFile != "" {
		expandedCfgFile, err := expandTilde(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Could not expand tilde in config file path '%s': %v. Trying original path.\n", cfgFile, err)
			expandedCfgFile = cfgFile
		}
		v.SetConfigFile(expandedCfgFile)
		v.SetConfigType("yaml")
	} else {
		v.AddConfigPath(defaults.ConfigDir)
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("PROXYCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := v.ReadInConfig()
	if readErr != nil {
		if _, ok := readErr.(viper.ConfigFileNotFoundError); ok {
			if cfgFile != "" {
				fmt.Fprintf(os.Stderr, "Warning: Config file specified by flag (%s) not found: %v\n", cfgFile, readErr)
			} else {
				fmt.Fprintln(os.Stderr, "No default config file found. Using defaults/environment variables.")
			}
		} else {
			fmt.Fprintf(os.Stderr, "Error reading config file %s: %v\n", v.ConfigFileUsed(), readErr)
		}
	}

	if err := v.Unmarshal(&AppConfig); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: Error unmarshalling configuration: %v\n", err)
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}

	// Apply flag overrides
	if flagAppLogPath != "" {
		expandedPath, err := expandTilde(flagAppLogPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Could not expand tilde in --app-log path '%s': %v. Using original path.\n", flagAppLogPath, err)
			AppConfig.Server.LogPath = flagAppLogPath
		} else {
			AppConfig.Server.LogPath = expandedPath
		}
	}
	if flagEngineLogPath != "" {
		expandedPath, err := expandTilde(flagEngineLogPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Could not expand tilde in --engine-log path '%s': %v. Using original path.\n", flagEngineLogPath, err)
			AppConfig.Engine.LogPath = flagEngineLogPath
		} else {
			AppConfig.Engine.LogPath = expandedPath
		}
	}
	if flagLogLevel != "" {
		AppConfig.Logging.Level = strings.ToUpper(flagLogLevel)
	}

	// Expand tilde for paths read from config that might contain it
	var err error
	AppConfig.Database.Path, err = expandTilde(AppConfig.Database.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not expand tilde in database.path '%s': %v.\n", AppConfig.Database.Path, err)
	}
	AppConfig.Engine.ManifestPath, err = expandTilde(AppConfig.Engine.ManifestPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not expand tilde in engine.manifest_path '%s': %v.\n", AppConfig.Engine.ManifestPath, err)
	}

	// Ensure directories exist
	if err := os.MkdirAll(filepath.Dir(AppConfig.Server.LogPath), 0750); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not create final app log directory %s: %v\n", filepath.Dir(AppConfig.Server.LogPath), err)
	}
	if err := os.MkdirAll(filepath.Dir(AppConfig.Engine.LogPath), 0750); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not create final engine log directory %s: %v\n", filepath.Dir(AppConfig.Engine.LogPath), err)
	}
	if err := os.MkdirAll(defaults.ConfigDir, 0750); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not create main config directory %s: %v\n", defaults.ConfigDir, err)
	}

	logger.Debug("Configuration loaded. Server port: %s, probe: %s%s", AppConfig.Server.Port, AppConfig.Probe.BaseURL, AppConfig.Probe.Path)
	return nil
}
