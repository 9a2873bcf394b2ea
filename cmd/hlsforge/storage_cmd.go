// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ManuGH/hlsforge/internal/persistence/sqlite"
)

var errIntegrity = errors.New("database integrity check failed")

func newStorageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storage",
		Short: "Job database maintenance",
	}

	var path, mode string
	verify := &cobra.Command{
		Use:   "verify",
		Short: "Check the job database for corruption",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode = strings.ToLower(strings.TrimSpace(mode))
			if mode != sqlite.ModeQuick && mode != sqlite.ModeFull {
				return fmt.Errorf("invalid mode %q: use quick or full", mode)
			}
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("database %s: %w", path, err)
			}

			issues, err := sqlite.VerifyIntegrity(path, mode)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(issues) > 0 {
				for _, issue := range issues {
					_, _ = fmt.Fprintln(out, issue)
				}
				return fmt.Errorf("%w: %s", errIntegrity, path)
			}
			_, err = fmt.Fprintf(out, "%s: ok (%s)\n", path, mode)
			return err
		},
	}
	verify.Flags().StringVar(&path, "path", "", "path to the SQLite database file")
	verify.Flags().StringVar(&mode, "mode", sqlite.ModeQuick, "verification mode: quick or full")
	_ = verify.MarkFlagRequired("path")

	cmd.AddCommand(verify)
	return cmd
}
