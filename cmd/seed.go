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
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// seedCommands creates the command that seeds the standard chart of
// accounts. Seeding is idempotent, codes that already exist are left
// untouched.
func seedCommands(b *ledgerInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "seed the standard chart of accounts",
		Run: func(cmd *cobra.Command, args []string) {
			created, err := b.ledger.SeedChartOfAccounts(context.Background())
			if err != nil {
				logrus.Error(err)
				return
			}
			fmt.Printf("Seeded %d accounts!\n", created)
		},
	}

	return cmd
}
