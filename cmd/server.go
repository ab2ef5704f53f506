package cmd

import (
	"context"
	"fmt"

	"github.com/Nexus-Agni/just-server-vpn-proxy/logger"

	"github.com/spf13/cobra"
)

var serverPort string

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Checks whether the remote proxy endpoint is reachable",
	Run: func(cmd *cobra.Command, args []string) {
		client := newDaemonClient(resolvePort(cmd, serverPort))
		resp, err := client.CheckServerStatus(context.Background())
		if err != nil {
			logger.Error("Server Command: %v", err)
			fmt.Printf("Could not reach the controller daemon: %v\n", err)
			return
		}
		if resp.Online {
			if resp.Status != nil {
				fmt.Printf("Proxy server is online (status %d)\n", *resp.Status)
			} else {
				fmt.Println("Proxy server is online")
			}
			return
		}
		if resp.Error != "" {
			fmt.Printf("Proxy server is offline: %s\n", resp.Error)
		} else {
			fmt.Println("Proxy server is offline")
		}
	},
}

func init() {
	serverCmd.Flags().StringVarP(&serverPort, "port", "p", "8799", "Daemon API port")
	rootCmd.AddCommand(serverCmd)
}
