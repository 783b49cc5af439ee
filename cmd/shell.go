package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/c-bata/go-prompt"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"xdrquery/cli/internal/httperrors"
	"xdrquery/cli/internal/results"
	"xdrquery/cli/internal/session"
	"xdrquery/cli/internal/terminal"
	"xdrquery/cli/internal/xdg"
)

const maxHistory = 500

// shellCmd opens an interactive prompt on one authenticated session.
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Run queries interactively",
	Long: `The shell command authenticates once and reads queries from an interactive
prompt. A statement may span several lines and runs when a line ends with ';'.

Commands:
  .format [table|json]   show or set the output format
  .tenant [id]           show or set the tenant to query
  .whoami                show the authenticated identity
  .help                  show this help
  exit, quit, \q         leave the shell

When stdin is not a terminal, statements are read from it without a prompt.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		format, err := resolveFormat(cmd)
		if err != nil {
			return err
		}
		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		sh := newShell(s, format, normalizeTenant(tenantID), os.Stdout)

		if !terminal.IsInteractive() {
			return sh.runPiped(ctx, os.Stdin)
		}
		sh.loadHistory()
		defer sh.saveHistory()

		p := prompt.New(
			func(line string) { sh.execute(ctx, line) },
			sh.complete,
			prompt.OptionPrefix("xdrq> "),
			prompt.OptionLivePrefix(sh.prefix),
			prompt.OptionTitle("xdrq"),
			prompt.OptionHistory(sh.history),
			prompt.OptionMaxSuggestion(8),
			prompt.OptionSetExitCheckerOnInput(func(in string, breakline bool) bool {
				return breakline && isExitCommand(in)
			}),
		)
		p.Run()
		return nil
	},
}

func init() {
	shellCmd.Flags().StringVarP(&tenantID, "tenant-id", "t", "", "tenant to query (defaults to the authenticated tenant)")
	shellCmd.Flags().StringVar(&queryFormat, "format", "", "output format: table or json")
	rootCmd.AddCommand(shellCmd)
}

// runner is the part of a session the shell uses.
type runner interface {
	RunQuery(ctx context.Context, text, tenantID string, format results.Format) (session.Result, error)
}

type shell struct {
	run     runner
	session *session.Session
	format  results.Format
	tenant  string
	out     io.Writer

	buf     []string
	history []string
}

func newShell(s *session.Session, format results.Format, tenant string, out io.Writer) *shell {
	sh := &shell{format: format, tenant: tenant, out: out}
	if s != nil {
		sh.run = s
		sh.session = s
	}
	return sh
}

func (sh *shell) prefix() (string, bool) {
	if len(sh.buf) > 0 {
		return "   ...> ", true
	}
	return "xdrq> ", true
}

// feed adds one input line. It returns a complete statement when the line ends with ';',
// and reports whether the line was consumed as a dot command.
func (sh *shell) feed(line string) (stmt string, command bool) {
	trimmed := strings.TrimSpace(line)
	if len(sh.buf) == 0 {
		if trimmed == "" {
			return "", false
		}
		if strings.HasPrefix(trimmed, ".") {
			sh.command(trimmed)
			return "", true
		}
	}
	if trimmed != "" {
		sh.buf = append(sh.buf, trimmed)
	}
	if !strings.HasSuffix(trimmed, ";") {
		return "", false
	}
	stmt = strings.TrimSpace(strings.TrimSuffix(strings.Join(sh.buf, "\n"), ";"))
	sh.buf = nil
	return stmt, false
}

func (sh *shell) command(line string) {
	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case ".format":
		if len(fields) == 1 {
			fmt.Fprintf(sh.out, "Current output format: %s\n", sh.format)
			return
		}
		f, err := results.ParseFormat(fields[1])
		if err != nil {
			fmt.Fprintln(sh.out, "Usage: .format [table|json]")
			return
		}
		sh.format = f
		fmt.Fprintf(sh.out, "Output format set to: %s\n", f)
	case ".tenant":
		if len(fields) == 1 {
			if sh.tenant == "" {
				fmt.Fprintln(sh.out, "Tenant: (authenticated tenant)")
			} else {
				fmt.Fprintf(sh.out, "Tenant: %s\n", sh.tenant)
			}
			return
		}
		sh.tenant = fields[1]
		fmt.Fprintf(sh.out, "Tenant set to: %s\n", sh.tenant)
	case ".whoami":
		if sh.session == nil {
			return
		}
		id, _ := sh.session.Identity()
		fmt.Fprintf(sh.out, "%s %s (%s)\n", id.IDType, id.ID, id.APIHosts.DataRegion)
	default:
		fmt.Fprintln(sh.out, "Commands: .format [table|json], .tenant [id], .whoami, .help, exit")
	}
}

func (sh *shell) execute(ctx context.Context, line string) {
	stmt, _ := sh.feed(line)
	if stmt == "" {
		return
	}
	sh.remember(stmt)

	stop := startSpinner("Running query")
	res, err := sh.run.RunQuery(ctx, stmt, sh.tenant, sh.format)
	stop()
	if err != nil {
		err = httperrors.FormatNetworkError(err, "running the query")
		pterm.Error.Println(err)
		return
	}
	if !res.Succeeded {
		pterm.Warning.Printfln("Query %s finished without succeeding", res.ExecutionID)
	}
	fmt.Fprintln(sh.out, res.Output)
}

func (sh *shell) runPiped(ctx context.Context, r io.Reader) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if len(sh.buf) == 0 && isExitCommand(sc.Text()) {
			break
		}
		sh.execute(ctx, sc.Text())
	}
	return sc.Err()
}

func (sh *shell) complete(d prompt.Document) []prompt.Suggest {
	word := d.GetWordBeforeCursor()
	if word == "" {
		return nil
	}
	suggestions := []prompt.Suggest{
		{Text: ".format", Description: "Show or set the output format"},
		{Text: ".tenant", Description: "Show or set the tenant"},
		{Text: ".whoami", Description: "Show the authenticated identity"},
		{Text: "SELECT", Description: "Select data"},
		{Text: "FROM", Description: "Specify table source"},
		{Text: "WHERE", Description: "Filter condition"},
		{Text: "GROUP BY", Description: "Group results"},
		{Text: "ORDER BY", Description: "Sort results"},
		{Text: "LIMIT", Description: "Limit number of results"},
		{Text: "xdr_data", Description: "Endpoint and server activity"},
		{Text: "xdr_ti_data", Description: "Threat intelligence matches"},
	}
	return prompt.FilterHasPrefix(suggestions, word, true)
}

func (sh *shell) remember(stmt string) {
	sh.history = append(sh.history, strings.ReplaceAll(stmt, "\n", " ")+";")
	if len(sh.history) > maxHistory {
		sh.history = sh.history[len(sh.history)-maxHistory:]
	}
}

func historyFile() (string, error) {
	dir, err := xdg.StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history"), nil
}

func (sh *shell) loadHistory() {
	p, err := historyFile()
	if err != nil {
		return
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return
	}
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			sh.history = append(sh.history, line)
		}
	}
}

func (sh *shell) saveHistory() {
	p, err := historyFile()
	if err != nil {
		logger.Debug("history unavailable", "error", err)
		return
	}
	if err := os.WriteFile(p, []byte(strings.Join(sh.history, "\n")), 0o600); err != nil {
		logger.Debug("history not saved", "error", err)
	}
}

func isExitCommand(in string) bool {
	switch strings.ToLower(strings.TrimSpace(in)) {
	case "exit", "quit", `\q`, ".exit", ".quit":
		return true
	}
	return false
}
