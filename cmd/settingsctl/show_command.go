package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"novaremote/services/settingsync"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var tab string
	var reveal bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the merged settings, one table per tab",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := ctx.openSession(cmd.Context())
			if err != nil {
				return err
			}

			specs := []settingsync.TabSpec(session.Layout())
			if tab != "" {
				spec, ok := session.Layout().Tab(settingsync.Tab(tab))
				if !ok {
					return fmt.Errorf("%w: %s", settingsync.ErrUnknownTab, tab)
				}
				specs = []settingsync.TabSpec{spec}
			}

			out := cmd.OutOrStdout()
			m := session.Mirror()
			for _, spec := range specs {
				fields := settingsync.Fields(m, spec.Sections...)
				if len(fields) == 0 {
					continue
				}
				fmt.Fprintf(out, "%s%s\n", spec.Title, scopeSuffix(spec, ctx.config.Remote.User))
				fmt.Fprintln(out, renderTable([]string{"Path", "Field", "Value"}, fieldRows(fields, reveal)))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&tab, "tab", "t", "", "Only show this tab")
	cmd.Flags().BoolVar(&reveal, "reveal", false, "Print passwords and API keys")
	return cmd
}

func scopeSuffix(spec settingsync.TabSpec, user string) string {
	if spec.PerUser && user != "" {
		return fmt.Sprintf(" (profile %s)", user)
	}
	return ""
}
