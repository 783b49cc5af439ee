// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"xdrquery/cli/internal/keychain"
)

// logoutCmd removes stored client credentials.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove saved client credentials",
	Long: `The logout command removes the client id and secret saved by 'xdrq login'
from the OS keychain. Tokens are never stored, so there is nothing to revoke.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		km, err := keychain.GetManager()
		if err != nil {
			return err
		}
		if err := km.ClearCredentials(); err != nil {
			return err
		}
		pterm.Success.Println("Saved client credentials have been removed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
