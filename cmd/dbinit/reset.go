/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tomoncle/dbinit/database"
)

var errNotConfirmed = errors.New("refusing to drop tables without --yes")

func newResetCmd(opts *globalOptions) *cobra.Command {
	var (
		yes     bool
		seedDir string
	)
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Drop and recreate every application table",
		Long: `Drop every application table and create it again.

All rows in those tables are lost. Tables that are not part of the
application schema are left alone. The command refuses to run unless
--yes is given.

Example:
  dbinit reset --yes
  dbinit reset --yes --seed-dir db/seed`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errNotConfirmed
			}
			b, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = b.Close() }()

			ctx := cmd.Context()
			if err := b.InitDB(ctx); err != nil {
				return err
			}
			tables, err := database.ListTables(ctx, b.Engine().DB())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Reset %d tables: %s\n", b.Metadata().Len(), strings.Join(tables, ", "))

			if seedDir == "" {
				return nil
			}
			results, err := database.NewSeeder(b.Engine().DB(), os.DirFS(seedDir), b.Engine().Logger()).Run(ctx)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d files from %s\n", len(results), seedDir)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm that all table data may be destroyed")
	cmd.Flags().StringVar(&seedDir, "seed-dir", "", "Directory of .sql files to run after the reset")
	return cmd
}
