package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/cafe/config"
	"github.com/shashiranjanraj/cafe/database/seeders"
	"github.com/shashiranjanraj/cafe/pkg/database"
	"github.com/shashiranjanraj/cafe/pkg/migration"
)

// bootDB loads config and opens the database connection.
func bootDB(ctx context.Context) error {
	if err := config.Load(); err != nil {
		return err
	}
	return database.Connect(ctx)
}

// cafe migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(cmd.Context()); err != nil {
			return err
		}
		return migration.New(database.DB).Verbose(os.Stdout).Run(cmd.Context())
	},
}

// cafe migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Roll back the most recent migration batches",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(cmd.Context()); err != nil {
			return err
		}
		steps, _ := cmd.Flags().GetInt("step")
		return migration.New(database.DB).Verbose(os.Stdout).Rollback(cmd.Context(), steps)
	},
}

// cafe migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(cmd.Context()); err != nil {
			return err
		}
		states, err := migration.New(database.DB).Status(cmd.Context())
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "MIGRATION\tBATCH\tRAN AT")
		for _, st := range states {
			if !st.Ran {
				fmt.Fprintf(tw, "%s\t-\tpending\n", st.Name)
				continue
			}
			fmt.Fprintf(tw, "%s\t%d\t%s\n", st.Name, st.Batch, st.RanAt.Format(time.DateTime))
		}
		return tw.Flush()
	},
}

// cafe seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the admin account and a starter menu",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(cmd.Context()); err != nil {
			return err
		}
		only, _ := cmd.Flags().GetStringSlice("only")
		return seeders.RunAll(database.DB, only...)
	},
}

func init() {
	migrateRollbackCmd.Flags().Int("step", 1, "number of batches to roll back")
	seedCmd.Flags().StringSlice("only", nil, "run just these seeders ("+strings.Join(seeders.Names(), ", ")+")")
}
