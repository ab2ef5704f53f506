package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/Nexus-Agni/just-server-vpn-proxy/api"
	"github.com/Nexus-Agni/just-server-vpn-proxy/logger"

	"github.com/spf13/cobra"
)

var togglePort string

var toggleCmd = &cobra.Command{
	Use:   "toggle on|off",
	Short: "Switches proxy redirection on or off",
	Long: `Asks the controller daemon to switch modes. The displayed state is
optimistic; if the daemon does not answer within the UI deadline the wait
is abandoned, the display falls back to the last confirmed state, and the
command reconciles with a follow-up status query.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
			return fmt.Errorf("expected exactly one argument: 'on' or 'off'")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		enabled := args[0] == "on"
		client := newDaemonClient(resolvePort(cmd, togglePort))
		ctx := context.Background()

		// Last confirmed state, for the revert path.
		lastConfirmed := "unknown"
		if status, err := client.GetProxyStatus(ctx); err == nil {
			lastConfirmed = stateWord(status.Enabled)
		}

		fmt.Printf("Switching proxy redirection %s...\n", args[0])
		resp, err := client.ToggleProxy(ctx, enabled)
		if err != nil {
			if errors.Is(err, api.ErrRequestTimeout) {
				fmt.Printf("Timed out waiting for the controller; showing last confirmed state: %s\n", lastConfirmed)
				fmt.Println("The toggle may still complete in the background.")
				// Reconcile: the in-flight operation may have finished by now.
				if status, rErr := client.GetProxyStatus(ctx); rErr == nil {
					fmt.Printf("Reconciled state: %s\n", stateWord(status.Enabled))
				}
				return
			}
			logger.Error("Toggle Command: %v", err)
			fmt.Printf("Toggle failed: %v\n", err)
			return
		}

		if !resp.Success {
			fmt.Printf("Toggle rejected by the rule engine: %s\n", resp.Error)
			fmt.Printf("Proxy redirection remains %s\n", lastConfirmed)
			return
		}
		if resp.Enabled != nil {
			fmt.Printf("Proxy redirection is now %s\n", stateWord(*resp.Enabled))
		}
	},
}

func stateWord(enabled bool) string {
	if enabled {
		return "on"
	}
	return "off"
}

func init() {
	toggleCmd.Flags().StringVarP(&togglePort, "port", "p", "8799", "Daemon API port")
	rootCmd.AddCommand(toggleCmd)
}
