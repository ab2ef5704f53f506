package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Nexus-Agni/just-server-vpn-proxy/api"
	"github.com/Nexus-Agni/just-server-vpn-proxy/config"
	"github.com/Nexus-Agni/just-server-vpn-proxy/core"
	"github.com/Nexus-Agni/just-server-vpn-proxy/database"
	"github.com/Nexus-Agni/just-server-vpn-proxy/logger"
	"github.com/Nexus-Agni/just-server-vpn-proxy/tray"

	"github.com/spf13/cobra"
)

var (
	servePort string
	serveTray bool
)

const shutdownGrace = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the background controller daemon",
	Long: `Starts the long-lived controller: opens the state store, reconciles the
rule engine with the persisted flag, and serves the loopback API the other
commands talk to. Press Ctrl+C to shut down gracefully.`,
	Run: func(cmd *cobra.Command, args []string) {
		logger.Info("--- Serve Command: Run ---")

		portToUse := servePort
		if !cmd.Flags().Changed("port") {
			portToUse = config.AppConfig.Server.Port
			logger.Debug("Using server port from config: %s", portToUse)
		} else {
			logger.Debug("Using server port from flag: %s", portToUse)
		}
		if portToUse == "" {
			portToUse = "8799"
		}

		store, err := database.InitDB(config.AppConfig.Database.Path)
		if err != nil {
			logger.Fatal("Serve Command: cannot open state store: %v", err)
			return
		}
		defer store.Close()

		engine := buildRuleEngine()
		probe := core.NewHealthProbe(
			config.AppConfig.Probe.BaseURL,
			config.AppConfig.Probe.Path,
			time.Duration(config.AppConfig.Probe.TimeoutMS)*time.Millisecond,
		)

		trayEnabled := serveTray || config.AppConfig.UI.TrayEnabled
		var trayIndicator *tray.Indicator
		var indicator core.Indicator
		if trayEnabled {
			trayIndicator = tray.New()
			indicator = trayIndicator
		} else {
			indicator = core.LogIndicator{}
		}

		ctrl := core.NewController(store, engine, probe, indicator)
		broker := core.NewBroker(ctrl, 16)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go broker.Run(ctx)

		apiRouter := api.NewRouter(broker, ctrl)
		mainMux := http.NewServeMux()
		mainMux.Handle("/api/", http.StripPrefix("/api", apiRouter))
		logger.Info("Serve Command: Registered API router under /api/ prefix with StripPrefix.")

		server := &http.Server{
			Addr:    "127.0.0.1:" + portToUse,
			Handler: mainMux,
		}

		go func() {
			<-ctx.Done()
			logger.Info("Serve Command: shutdown signal received, stopping HTTP server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				logger.Error("Serve Command: HTTP server shutdown error: %v", err)
			}
			if trayIndicator != nil {
				trayIndicator.Quit()
			}
		}()

		logger.Info("Serve Command: listening on 127.0.0.1:%s", portToUse)
		if trayEnabled {
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("Serve Command: HTTP server failed: %v", err)
					stop()
				}
			}()
			// The tray loop owns the foreground; quitting it cancels ctx
			// and brings the server down with it.
			trayIndicator.Run(stop)
		} else {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Fatal("Serve Command: could not start server: %v", err)
			}
		}
		logger.Info("Serve Command: stopped.")
	},
}

const defaultRulesetID = "proxy_redirect"

type engineSettings struct {
	baseURL   string
	token     string
	rulesetID string
}

// mergeManifest fills whichever settings the config left empty from the
// manifest. Explicit config values always win.
func (s engineSettings) mergeManifest(m core.RulesetManifest) engineSettings {
	if s.baseURL == "" {
		s.baseURL = m.EngineURL
	}
	if s.token == "" {
		s.token = m.APIToken
	}
	if s.rulesetID == "" {
		s.rulesetID = m.RulesetID
	}
	return s
}

// buildRuleEngine resolves the engine endpoint from config and the ruleset
// manifest, config winning. With no endpoint at all the controller runs on
// the no-op capability adapter instead of probing for a host API at call
// sites.
func buildRuleEngine() core.RuleEngine {
	settings := engineSettings{
		baseURL:   config.AppConfig.Engine.BaseURL,
		token:     config.AppConfig.Engine.APIToken,
		rulesetID: config.AppConfig.Engine.RulesetID,
	}

	if manifestPath := config.AppConfig.Engine.ManifestPath; manifestPath != "" {
		if _, err := os.Stat(manifestPath); err == nil {
			manifest, err := core.LoadRulesetManifest(manifestPath)
			if err != nil {
				logger.Error("Serve Command: ruleset manifest unusable, falling back to config: %v", err)
			} else {
				settings = settings.mergeManifest(manifest)
			}
		}
	}
	if settings.rulesetID == "" {
		settings.rulesetID = defaultRulesetID
	}

	if settings.baseURL == "" {
		logger.Warn("Serve Command: no rule engine endpoint configured, using no-op engine")
		return core.NoopRuleEngine{}
	}
	logger.Info("Serve Command: rule engine at %s, ruleset '%s'", settings.baseURL, settings.rulesetID)
	return core.NewHTTPRuleEngine(settings.baseURL, settings.token, settings.rulesetID,
		time.Duration(config.AppConfig.Engine.TimeoutMS)*time.Millisecond)
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "8799", "Port for the loopback API to listen on")
	serveCmd.Flags().BoolVar(&serveTray, "tray", false, "Show the system tray badge")
	rootCmd.AddCommand(serveCmd)
}
