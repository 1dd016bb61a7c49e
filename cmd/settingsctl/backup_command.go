package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"novaremote/services/backup"
)

func newBackupCommand(ctx *commandContext) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Snapshot and restore a backend data directory",
	}
	cmd.PersistentFlags().StringVarP(&dir, "dir", "d", "", "Backend data directory (defaults to --local, then serve.dir)")

	open := func() (*backup.Service, error) {
		target := strings.TrimSpace(dir)
		if target == "" {
			target = ctx.config.Remote.LocalDir
		}
		if target == "" {
			target = ctx.config.Serve.Dir
		}
		return backup.NewService(target)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "create",
		Short: "Snapshot settings.json and user_settings.json",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := open()
			if err != nil {
				return err
			}
			info, err := svc.Create(backup.TypeManual)
			if err != nil {
				return err
			}
			if _, err := svc.Prune(ctx.config.Backup.Keep); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", info.Filename)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List snapshots, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := open()
			if err != nil {
				return err
			}
			backups, err := svc.List()
			if err != nil {
				return err
			}
			if len(backups) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No backups")
				return nil
			}
			rows := make([][]string, 0, len(backups))
			for _, b := range backups {
				rows = append(rows, []string{
					b.Filename,
					b.CreatedAt.Local().Format(time.DateTime),
					string(b.Type),
					strconv.Itoa(b.Files),
					strconv.FormatInt(b.Size, 10),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"File", "Created", "Type", "Files", "Bytes"}, rows))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "restore FILE",
		Short: "Replace the settings documents with a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := open()
			if err != nil {
				return err
			}
			if err := svc.Restore(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %s\n", args[0])
			return nil
		},
	})

	return cmd
}
