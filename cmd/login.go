// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"xdrquery/cli/internal/config"
	"xdrquery/cli/internal/keychain"
	"xdrquery/cli/internal/model"
	"xdrquery/cli/internal/session"
	"xdrquery/cli/internal/terminal"
)

var skipVerify bool

// loginCmd stores API client credentials in the OS keychain.
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Save API client credentials in the OS keychain",
	Long: `The login command asks for an API client id and secret, checks them against
the identity service and stores them in the OS keychain. Later commands use them
when --client-id/--client-secret and the XDRQ_CLIENT_ID/XDRQ_CLIENT_SECRET
environment variables are not set.

When --environment is given it is saved as the default environment.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		in := bufio.NewReader(os.Stdin)

		creds := model.Credentials{ClientID: clientID, ClientSecret: clientSecret}
		if creds.ClientID == "" {
			prompt := "Client ID: "
			v, err := terminal.ReadLine(os.Stdout, in, prompt)
			if err != nil {
				return fmt.Errorf("read client id: %w", err)
			}
			if terminal.IsInteractive() {
				terminal.ClearPreviousLines(os.Stdout, len(prompt)+len(v))
			}
			creds.ClientID = v
		}
		if creds.ClientSecret == "" {
			v, err := terminal.ReadSecret(os.Stdout, in, "Client secret: ")
			if err != nil {
				return fmt.Errorf("read client secret: %w", err)
			}
			creds.ClientSecret = v
		}

		if !skipVerify {
			envs, err := loadEnvironments()
			if err != nil {
				return err
			}
			s, err := session.New(session.Options{
				Environments: envs,
				EnvName:      selectedEnvironment(),
				Credentials:  creds,
				Logger:       logger,
			})
			if err != nil {
				return err
			}
			stop := startSpinner("Checking credentials")
			err = s.Open(ctx)
			stop()
			if err != nil {
				return err
			}
			id, _ := s.Identity()
			pterm.Info.Printfln("Authenticated as %s %s", id.IDType, id.ID)
		}

		km, err := keychain.GetManager()
		if err != nil {
			return err
		}
		if err := km.SaveClientCredentials(creds); err != nil {
			return err
		}

		if envName != "" || configFile != "" {
			if envName != "" {
				settings.Environment = envName
			}
			if configFile != "" {
				settings.EnvironmentsFile = configFile
			}
			if err := config.Save(settings); err != nil {
				pterm.Warning.Printfln("Could not save settings: %v", err)
			}
		}

		pterm.Success.Println("Client credentials saved to the OS keychain")
		return nil
	},
}

func init() {
	loginCmd.Flags().BoolVar(&skipVerify, "no-verify", false, "save without checking the credentials")
	rootCmd.AddCommand(loginCmd)
}
