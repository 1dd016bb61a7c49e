package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"novaremote/utils/coerce"
	"novaremote/utils/filter"
)

// newMatchCommand checks a release title against the effective filtering
// terms of the selected profile.
func newMatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "match TITLE",
		Short: "Show which filtering terms a release title hits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := ctx.openSession(cmd.Context())
			if err != nil {
				return err
			}
			f := session.Mirror().Filtering

			var rows [][]string
			for _, group := range []struct{ kind, text string }{
				{"filter out", f.FilterOutTerms},
				{"preferred", f.PreferredTerms},
			} {
				for _, raw := range coerce.ToTermList(group.text) {
					term, err := filter.Compile(raw)
					note := ""
					if err != nil {
						note = "invalid pattern, matched as text"
					}
					if term.Matches(args[0]) {
						rows = append(rows, []string{group.kind, raw, note})
					}
				}
			}

			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "No terms match")
				return nil
			}
			fmt.Fprintln(out, renderTable([]string{"List", "Term", "Note"}, rows))
			return nil
		},
	}
}
