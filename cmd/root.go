package cmd

import (
	"fmt"

	"github.com/Nexus-Agni/just-server-vpn-proxy/config"
	"github.com/Nexus-Agni/just-server-vpn-proxy/logger"

	"github.com/spf13/cobra"
)

var (
	cfgFile           string
	appLogPathFlag    string
	engineLogPathFlag string
	logLevelFlag      string
)

var rootCmd = &cobra.Command{
	Use:   "proxyctl",
	Short: "Controller for switching browser traffic between direct and proxied mode",
	Long: `proxyctl keeps a single proxy on/off intent consistent across a persisted
flag, a remote rule-enforcement engine, a visual badge, and its UI surfaces.

The daemon ('proxyctl serve') owns the toggle state machine; the other
commands are thin clients talking to it over the loopback API.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(cfgFile, appLogPathFlag, engineLogPathFlag, logLevelFlag); err != nil {
			return fmt.Errorf("failed to initialize config in PersistentPreRunE: %w", err)
		}
		if err := logger.InitGlobalLoggers(config.AppConfig.Server.LogPath, config.AppConfig.Engine.LogPath, config.AppConfig.Logging.Level); err != nil {
			return fmt.Errorf("failed to re-initialize loggers with configured paths: %w", err)
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Fatal("Command execution failed: %v", err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/proxyctl/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&appLogPathFlag, "app-log", "", "path for the application log file")
	rootCmd.PersistentFlags().StringVar(&engineLogPathFlag, "engine-log", "", "path for the rule-engine log file")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level (DEBUG, INFO, WARN, ERROR)")
}
