package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/wcprobe/internal/scenarios"
	"github.com/roach88/wcprobe/internal/session"
)

// CaseInfo describes one declared case.
type CaseInfo struct {
	Name     string   `json:"name"`
	Group    string   `json:"group"`
	Expected string   `json:"expected"`
	Requires []string `json:"requires,omitempty"`
}

// NewCasesCommand creates the cases command.
func NewCasesCommand(rootOpts *RootOptions) *cobra.Command {
	var groups []string

	cmd := &cobra.Command{
		Use:           "cases",
		Short:         "List the cases of the edge-case battery",
		Long: `List the cases run by "wcprobe run" with the same --group flags.

Without --group the default battery is listed. The opt-in groups "node" and
"reconnect" are listed only when named.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCases(rootOpts, groups, cmd)
		},
	}

	cmd.Flags().StringArrayVarP(&groups, "group", "g", nil, "only list cases in this group (repeatable)")

	return cmd
}

func runCases(opts *RootOptions, groups []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	// Listing never calls the client, so a nil session is enough.
	suite, err := scenarios.Select(session.NewCapabilities(nil), nil, nil, groups...)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeSuite, "failed to select groups", err)
	}

	cases := make([]CaseInfo, 0, len(suite.Cases()))
	for _, c := range suite.Cases() {
		cases = append(cases, CaseInfo{
			Name:     c.Name,
			Group:    c.Group,
			Expected: c.Expected.String(),
			Requires: c.Requires,
		})
	}

	if opts.Format == "json" {
		return formatter.Success(cases)
	}

	w := tabwriter.NewWriter(formatter.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GROUP\tCASE\tEXPECTED\tREQUIRES")
	for _, c := range cases {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.Group, c.Name, c.Expected, strings.Join(c.Requires, ","))
	}
	return w.Flush()
}
