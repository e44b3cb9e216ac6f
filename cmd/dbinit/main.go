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

// Command dbinit builds the database engine from DATABASE_URL and resets the
// application schema.
//
//	dbinit reset --yes
//	dbinit tables
//	dbinit ping
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/tomoncle/dbinit"
	"github.com/tomoncle/dbinit/database"
	"github.com/tomoncle/dbinit/internal/models"
	"github.com/tomoncle/dbinit/utils"
)

// Set with -ldflags "-X main.version=...".
var version = "dev"

type globalOptions struct {
	envFiles   []string
	configFile string
	logLevel   string
}

func (o *globalOptions) open(cmd *cobra.Command) (*dbinit.Bootstrap, error) {
	return dbinit.Open(dbinit.Options{
		EnvFiles:   o.envFiles,
		ConfigFile: o.configFile,
		Metadata:   models.Metadata(),
		EchoWriter: cmd.OutOrStdout(),
	})
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	rootCmd := &cobra.Command{
		Use:   "dbinit",
		Short: "Bootstrap and reset the application database",
		Long: `Bootstrap the application database from DATABASE_URL.

Configuration is read from .env files, an optional YAML file and the
environment, in increasing order of precedence.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			utils.ConfigureOutput(cmd.ErrOrStderr())
			if opts.logLevel != "" {
				utils.ConfigureLogLevel(opts.logLevel)
				database.GetLogger().SetLevel(database.ParseLogLevel(opts.logLevel))
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringArrayVar(&opts.envFiles, "env-file", nil, "Env file to load, repeatable (default .env)")
	flags.StringVarP(&opts.configFile, "config", "c", "", "YAML config file (default $"+database.ConfigFileEnv+")")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(
		newResetCmd(opts),
		newPingCmd(opts),
		newTablesCmd(opts),
		newVersionCmd(),
	)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
