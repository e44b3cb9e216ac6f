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
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newPingCmd(opts *globalOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Open one connection and report database health",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = b.Close() }()

			ctx := cmd.Context()
			conn, err := b.Engine().Conn(ctx)
			if err != nil {
				return err
			}
			_ = conn.Close()

			status := b.Engine().HealthCheck(ctx)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(status); err != nil {
					return err
				}
			} else if status.Healthy {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s is healthy (%s)\n", b.Engine().Source(), status.ResponseTime)
			}
			if !status.Healthy {
				return fmt.Errorf("database is unhealthy: %s", status.LastError)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the health status as JSON")
	return cmd
}
