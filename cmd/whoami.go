package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// whoamiCmd authenticates and shows the identity behind the client credentials.
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the identity behind the client credentials",
	Long: `The whoami command exchanges the client credentials for a token and shows the
identity it belongs to: its id, whether it is a tenant, partner or organization,
and the data region queries are sent to.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		id, _ := s.Identity()

		details := fmt.Sprintf("ID:          %s\nType:        %s\nData region: %s", id.ID, id.IDType, id.APIHosts.DataRegion)
		if id.APIHosts.Global != "" {
			details += fmt.Sprintf("\nGlobal:      %s", id.APIHosts.Global)
		}
		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Identity")).
			WithPadding(1).
			Println(details)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
