package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"xdrquery/cli/internal/httperrors"
	"xdrquery/cli/internal/results"
)

var (
	queryFile   string
	queryText   string
	tenantID    string
	outputFile  string
	queryFormat string
)

// queryCmd runs one query and prints or saves the results.
var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run a query and print the results",
	Long: `The query command submits a query read from a file (-f) or given inline (-q),
waits up to a minute for it to finish and prints the results.

A tenant identity queries itself; partner and organization identities must pass
the tenant with -t. Results are printed as a psql-style table unless --format json
is given, and are written to -o instead of stdout when an output file is set.`,
	Example: `  xdrq query -f lateral_movement.sql
  xdrq query -q "SELECT meta_hostname FROM xdr_data LIMIT 5" --format json -o out.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		text, err := readQuery()
		if err != nil {
			return err
		}
		format, err := resolveFormat(cmd)
		if err != nil {
			return err
		}

		s, err := openSession(ctx)
		if err != nil {
			return err
		}

		stop := startSpinner("Running query")
		res, err := s.RunQuery(ctx, text, normalizeTenant(tenantID), format)
		stop()
		if err != nil {
			return httperrors.FormatNetworkError(err, "running the query")
		}
		if !res.Succeeded {
			pterm.Warning.Printfln("Query %s finished without succeeding; showing what the service returned", res.ExecutionID)
		}
		logger.Info("query complete", "execution_id", res.ExecutionID, "succeeded", res.Succeeded)

		return writeOutput(res.Output)
	},
}

func init() {
	f := queryCmd.Flags()
	f.StringVarP(&queryFile, "query-file", "f", "", "file containing the query text")
	f.StringVarP(&queryText, "query", "q", "", "query text")
	f.StringVarP(&tenantID, "tenant-id", "t", "", "tenant to query (defaults to the authenticated tenant)")
	f.StringVarP(&outputFile, "output-file", "o", "", "write results to this file instead of stdout")
	f.StringVar(&queryFormat, "format", "", "output format: table or json (default from settings, else table)")
	queryCmd.MarkFlagsMutuallyExclusive("query-file", "query")
	queryCmd.MarkFlagsOneRequired("query-file", "query")
	rootCmd.AddCommand(queryCmd)
}

func readQuery() (string, error) {
	if queryText != "" {
		return queryText, nil
	}
	b, err := os.ReadFile(queryFile)
	if err != nil {
		return "", fmt.Errorf("read query file: %w", err)
	}
	text := strings.TrimSpace(string(b))
	if text == "" {
		return "", fmt.Errorf("query file %s is empty", queryFile)
	}
	return text, nil
}

func resolveFormat(cmd *cobra.Command) (results.Format, error) {
	if cmd.Flags().Changed("format") {
		return results.ParseFormat(queryFormat)
	}
	return results.ParseFormat(settings.Format)
}

func writeOutput(out string) error {
	if outputFile == "" {
		fmt.Println(out)
		return nil
	}
	if err := os.WriteFile(outputFile, []byte(out), 0o644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	pterm.Success.Printfln("Results written to %s", outputFile)
	return nil
}
