package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/Nexus-Agni/just-server-vpn-proxy/api"
	"github.com/Nexus-Agni/just-server-vpn-proxy/config"
	"github.com/Nexus-Agni/just-server-vpn-proxy/logger"

	"github.com/spf13/cobra"
)

var statusPort string

func newDaemonClient(port string) *api.Client {
	timeout := time.Duration(config.AppConfig.UI.RequestTimeoutMS) * time.Millisecond
	return api.NewClient("http://127.0.0.1:"+port, timeout)
}

func resolvePort(cmd *cobra.Command, flagValue string) string {
	port := flagValue
	if !cmd.Flags().Changed("port") {
		port = config.AppConfig.Server.Port
	}
	if port == "" {
		port = "8799"
	}
	return port
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Shows the confirmed proxy toggle state",
	Run: func(cmd *cobra.Command, args []string) {
		client := newDaemonClient(resolvePort(cmd, statusPort))
		resp, err := client.GetProxyStatus(context.Background())
		if err != nil {
			logger.Error("Status Command: %v", err)
			fmt.Printf("Could not reach the controller daemon: %v\n", err)
			return
		}
		if resp.Enabled {
			fmt.Println("Proxy redirection is ON")
		} else {
			fmt.Println("Proxy redirection is off")
		}
	},
}

func init() {
	statusCmd.Flags().StringVarP(&statusPort, "port", "p", "8799", "Daemon API port")
	rootCmd.AddCommand(statusCmd)
}
