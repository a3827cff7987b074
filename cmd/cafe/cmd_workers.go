package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/cafe/config"
	"github.com/shashiranjanraj/cafe/internal/server"
	"github.com/shashiranjanraj/cafe/pkg/database"
	"github.com/shashiranjanraj/cafe/pkg/queue"
	"github.com/shashiranjanraj/cafe/pkg/schedule"
)

var queueWorkersFlag int

// cafe queue:work
var queueWorkCmd = &cobra.Command{
	Use:   "queue:work",
	Short: "Process queued mail and staff alerts",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := server.Boot(cmd.Context()); err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		workers := queueWorkersFlag
		if workers < 1 {
			workers = 5
		}

		fmt.Printf("Queue worker started (%d workers). Press Ctrl+C to stop.\n", workers)
		queue.StartWorkers(ctx, workers)

		<-ctx.Done()
		fmt.Println("\nQueue worker stopped.")
		return nil
	},
}

// cafe schedule:run
var scheduleRunCmd = &cobra.Command{
	Use:   "schedule:run",
	Short: "Run the maintenance scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := server.Boot(cmd.Context()); err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		server.RegisterSchedule()
		fmt.Println("Registered scheduled tasks:")
		for _, t := range schedule.List() {
			fmt.Println("  •", t)
		}

		schedule.Start(ctx)

		<-ctx.Done()
		fmt.Println("\nScheduler stopped.")
		return nil
	},
}

// cafe queue:failed
var queueFailedCmd = &cobra.Command{
	Use:   "queue:failed",
	Short: "List jobs that ran out of attempts",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(cmd.Context()); err != nil {
			return err
		}
		queue.UseDB(database.DB)
		limit, _ := cmd.Flags().GetInt("limit")
		records, err := queue.StoredFailedJobs(limit)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTYPE\tATTEMPTS\tFAILED AT\tERROR")
		for _, r := range records {
			fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n", r.ID, r.JobType, r.Attempts, r.FailedAt.Format(time.DateTime), r.Error)
		}
		return w.Flush()
	},
}

// cafe queue:retry <id>...
var queueRetryCmd = &cobra.Command{
	Use:   "queue:retry <id>...",
	Short: "Push failed jobs back onto the queue",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := server.Boot(cmd.Context()); err != nil {
			return err
		}
		if config.Get("QUEUE_DRIVER", "memory") != "redis" {
			return fmt.Errorf("queue:retry needs QUEUE_DRIVER=redis; the memory queue lives inside the server process")
		}
		for _, arg := range args {
			id, err := strconv.ParseUint(arg, 10, 64)
			if err != nil {
				return fmt.Errorf("bad job id %q", arg)
			}
			if err := queue.Retry(cmd.Context(), uint(id)); err != nil {
				return err
			}
			fmt.Printf("Requeued failed job %d\n", id)
		}
		return nil
	},
}

func init() {
	queueFailedCmd.Flags().Int("limit", 50, "How many failures to show")
	queueWorkCmd.Flags().IntVarP(&queueWorkersFlag, "workers", "w", 5, "Number of concurrent workers")
}
