package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"xdrquery/cli/internal/environment"
)

// envsCmd lists the environments a query can target.
var envsCmd = &cobra.Command{
	Use:   "envs",
	Short: "List configured environments",
	RunE: func(cmd *cobra.Command, args []string) error {
		envs, err := loadEnvironments()
		if err != nil {
			return err
		}

		data := pterm.TableData{{"Name", "Token URL", "Whoami URL"}}
		data = append(data, []string{"(default)", environment.Production.TokenURL, environment.Production.WhoamiURL})
		for _, name := range envs.Names() {
			u, _ := envs.Resolve(name)
			data = append(data, []string{name, u.TokenURL, u.WhoamiURL})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	},
}

func init() {
	rootCmd.AddCommand(envsCmd)
}
