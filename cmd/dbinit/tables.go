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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomoncle/dbinit/database"
)

func newTablesCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the tables in the connected database",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = b.Close() }()

			tables, err := database.ListTables(cmd.Context(), b.Engine().DB())
			if err != nil {
				return err
			}
			for _, t := range tables {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), t)
			}
			return nil
		},
	}
}
