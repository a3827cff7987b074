// Command cafe runs the café service and its maintenance tasks.
//
//	cafe serve            # HTTP + gRPC health + in-process workers
//	cafe migrate          # run pending migrations
//	cafe migrate:rollback
//	cafe migrate:status
//	cafe seed             # admin user and a starter menu
//	cafe route:list
//	cafe queue:work -w 4  # standalone queue worker (QUEUE_DRIVER=redis)
//	cafe schedule:run     # standalone scheduler
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	_ "github.com/shashiranjanraj/cafe/app/jobs"
	_ "github.com/shashiranjanraj/cafe/database/migrations"
	_ "github.com/shashiranjanraj/cafe/database/seeders"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "cafe",
	Short:        "Café ordering and administration service",
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateRollbackCmd)
	rootCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(seedCmd)

	rootCmd.AddCommand(queueWorkCmd)
	rootCmd.AddCommand(queueFailedCmd)
	rootCmd.AddCommand(queueRetryCmd)
	rootCmd.AddCommand(scheduleRunCmd)
}
