/*
Copyright 2025 Coopledger Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/coopledger/coopledger"
	"github.com/coopledger/coopledger/config"
	"github.com/coopledger/coopledger/database"
	"github.com/coopledger/coopledger/internal/notification"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// CLI wraps the root Cobra command.
type CLI struct {
	cmd *cobra.Command
}

// ledgerInstance holds the engine and its configuration for use by
// subcommands.
type ledgerInstance struct {
	ledger *coopledger.Coopledger
	cnf    *config.Configuration
}

// recoverPanic logs any panic during execution and exits with an error
// status.
func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun loads the configuration and initializes the engine before any
// subcommand executes.
func preRun(app *ledgerInstance) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig("coopledger.json")
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		engine, err := setupLedger(cnf)
		if err != nil {
			notification.NotifyError(err)
			log.Fatal(err)
		}

		app.ledger = engine
		app.cnf = cnf

		return nil
	}
}

// setupLedger connects the datasource and builds the engine from it.
func setupLedger(cfg *config.Configuration) (*coopledger.Coopledger, error) {
	db, err := database.NewDataSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("error getting datasource: %v", err)
	}

	engine, err := coopledger.NewCoopledger(db)
	if err != nil {
		return nil, fmt.Errorf("error creating ledger engine: %v", err)
	}
	return engine, nil
}

// NewCLI builds the command tree for the coopledger binary.
func NewCLI() *CLI {
	var configFile string
	b := &ledgerInstance{}

	var rootCmd = &cobra.Command{
		Use:   "coopledger",
		Short: "Cooperative society ledger",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./coopledger.json", "Configuration file for the ledger")

	rootCmd.PersistentPreRunE = preRun(b)

	rootCmd.AddCommand(serverCommands(b))
	rootCmd.AddCommand(migrateCommands(b))
	rootCmd.AddCommand(seedCommands(b))
	rootCmd.AddCommand(configCommands())

	return &CLI{cmd: rootCmd}
}

func (w CLI) executeCLI() {
	if err := w.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()

	cli := NewCLI()
	cli.executeCLI()
}
