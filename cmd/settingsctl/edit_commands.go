package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"novaremote/services/settingsync"
)

var errValidationFailed = errors.New("settings are invalid; nothing was saved")

type edit struct {
	path  string
	value string
}

func parseEdits(args []string) ([]edit, error) {
	edits := make([]edit, 0, len(args))
	for _, arg := range args {
		path, value, ok := strings.Cut(arg, "=")
		path = strings.TrimSpace(path)
		if !ok || path == "" {
			return nil, fmt.Errorf("expected path=value, got %q", arg)
		}
		edits = append(edits, edit{path: path, value: value})
	}
	return edits, nil
}

// tabsFor returns the tabs covering paths, in first-use order.
func tabsFor(layout settingsync.Layout, paths []string) ([]settingsync.TabSpec, error) {
	var out []settingsync.TabSpec
	seen := make(map[settingsync.Tab]bool)
	for _, path := range paths {
		spec, ok := layout.TabFor(path)
		if !ok {
			return nil, fmt.Errorf("%s is not editable in this layout", path)
		}
		if !seen[spec.Tab] {
			seen[spec.Tab] = true
			out = append(out, spec)
		}
	}
	return out, nil
}

// saveTabs commits each tab in turn and stops at the first failure.
// Validation failures are printed as a table.
func saveTabs(cmd *cobra.Command, session *settingsync.Session, specs []settingsync.TabSpec, dryRun bool) error {
	out := cmd.OutOrStdout()
	for _, spec := range specs {
		if dryRun {
			if errs := settingsync.Validate(session.Mirror(), spec.Sections...); len(errs) > 0 {
				printErrors(out, errs)
				return errValidationFailed
			}
			fmt.Fprintf(out, "%s: valid (dry run, not saved)\n", spec.Title)
			continue
		}

		err := session.Save(cmd.Context(), spec.Tab)
		var verrs settingsync.ValidationErrors
		if errors.As(err, &verrs) {
			printErrors(out, verrs)
			return errValidationFailed
		}
		if err != nil {
			return fmt.Errorf("save %s: %w", spec.Title, err)
		}
		fmt.Fprintf(out, "%s: saved\n", spec.Title)
	}
	return nil
}

func printErrors(w io.Writer, errs settingsync.ValidationErrors) {
	fmt.Fprintln(w, renderTable([]string{"Path", "Error"}, errorRows(errs)))
}

func newSetCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "set path=value...",
		Short: "Change one or more fields and save the affected tabs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			edits, err := parseEdits(args)
			if err != nil {
				return err
			}
			paths := make([]string, len(edits))
			for i, e := range edits {
				paths[i] = e.path
			}

			session, err := ctx.openSession(cmd.Context())
			if err != nil {
				return err
			}
			specs, err := tabsFor(session.Layout(), paths)
			if err != nil {
				return err
			}
			for _, e := range edits {
				if err := session.Set(e.path, e.value); err != nil {
					return err
				}
			}
			return saveTabs(cmd, session, specs, dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate without saving")
	return cmd
}

type listFlags struct {
	list  string
	index int
}

func (f *listFlags) register(cmd *cobra.Command, withIndex bool) {
	cmd.Flags().StringVarP(&f.list, "list", "l", "", "List path: "+strings.Join(settingsync.Lists(), ", "))
	cmd.MarkFlagRequired("list")
	if withIndex {
		cmd.Flags().IntVarP(&f.index, "index", "i", -1, "Zero-based entry index")
		cmd.MarkFlagRequired("index")
	}
}

// runListEdit opens a session, applies fn to it, and saves the list's tab.
func runListEdit(cmd *cobra.Command, ctx *commandContext, list string, fn func(*settingsync.Session) error) error {
	session, err := ctx.openSession(cmd.Context())
	if err != nil {
		return err
	}
	specs, err := tabsFor(session.Layout(), []string{list})
	if err != nil {
		return err
	}
	if err := fn(session); err != nil {
		return err
	}
	return saveTabs(cmd, session, specs, false)
}

func newAddCommand(ctx *commandContext) *cobra.Command {
	var f listFlags
	var sets []string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Append an entry to a list",
		RunE: func(cmd *cobra.Command, args []string) error {
			edits, err := parseEdits(sets)
			if err != nil {
				return err
			}
			return runListEdit(cmd, ctx, f.list, func(s *settingsync.Session) error {
				if err := s.AddEntry(f.list); err != nil {
					return err
				}
				n, err := settingsync.EntryCount(s.Mirror(), f.list)
				if err != nil {
					return err
				}
				for _, e := range edits {
					if err := s.Set(fmt.Sprintf("%s.%d.%s", f.list, n-1, e.path), e.value); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	f.register(cmd, false)
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Initial field value for the new entry (name=value)")
	return cmd
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	var f listFlags

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Delete an entry from a list",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListEdit(cmd, ctx, f.list, func(s *settingsync.Session) error {
				return s.RemoveEntry(f.list, f.index)
			})
		},
	}

	f.register(cmd, true)
	return cmd
}

func newMoveCommand(ctx *commandContext) *cobra.Command {
	var f listFlags
	var dir string

	cmd := &cobra.Command{
		Use:   "move",
		Short: "Move an entry of an ordered list up or down",
		RunE: func(cmd *cobra.Command, args []string) error {
			var delta int
			switch dir {
			case "up":
				delta = -1
			case "down":
				delta = 1
			default:
				return fmt.Errorf("--dir must be up or down, got %q", dir)
			}
			return runListEdit(cmd, ctx, f.list, func(s *settingsync.Session) error {
				return s.MoveEntry(f.list, f.index, delta)
			})
		},
	}

	f.register(cmd, true)
	cmd.Flags().StringVar(&dir, "dir", "", "up or down")
	cmd.MarkFlagRequired("dir")
	return cmd
}
