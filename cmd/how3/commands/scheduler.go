package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/how3io/how3-backend/internal/scheduler"
	"github.com/how3io/how3-backend/internal/scheduler/jobs"
)

// Data refresh runs an hour before the scoring pass so a pass always sees
// the freshest observations. The pass schedule itself comes from config.
const dataRefreshCron = "0 0 5 * * *"

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Manage the job scheduler",
	Long: `Starts the scheduler daemon or manages its jobs.

Registered jobs:
- data_refresh: daily 05:00 UTC (pull metric tables from Dune, update market caps)
- scoring_pass: daily 06:00 UTC by default (recompute all scores)

Subcommands:
  start   - start the scheduler daemon
  list    - list registered jobs
  run     - run one job immediately
  status  - job execution statistics

Example:
  go run ./cmd/how3 scheduler start
  go run ./cmd/how3 scheduler run scoring_pass`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler daemon",
		RunE:  runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run one job immediately",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}

	schedulerStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "Job execution statistics",
		RunE:  jobStatus,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
	schedulerCmd.AddCommand(schedulerStatusCmd)
}

// newScheduler wires the scheduler with its jobs
func newScheduler(a *app) (*scheduler.Scheduler, error) {
	sched := scheduler.New(a.log)

	refreshJob := jobs.NewDataRefreshJob(a.collector, dataRefreshCron, a.log)
	if err := sched.AddJob(refreshJob); err != nil {
		return nil, fmt.Errorf("add data refresh job: %w", err)
	}

	scoringJob := jobs.NewScoringPassJob(a.runner, a.cfg.Scoring.RefreshCron, a.log)
	if err := sched.AddJob(scoringJob); err != nil {
		return nil, fmt.Errorf("add scoring pass job: %w", err)
	}

	return sched, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== How3 Scheduler ===")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := newScheduler(a)
	if err != nil {
		return err
	}

	sched.Start()
	fmt.Println("\nScheduler running. Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := newScheduler(a)
	if err != nil {
		return err
	}

	for _, name := range sched.GetAllJobs() {
		fmt.Println(name)
	}
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := newScheduler(a)
	if err != nil {
		return err
	}

	jobName := args[0]
	fmt.Printf("Running job %s...\n", jobName)

	// RunJob is asynchronous; block on the job itself instead so the
	// process does not exit before the run finishes.
	switch jobName {
	case "data_refresh":
		return a.collector.RefreshAll(cmd.Context())
	case "scoring_pass":
		_, err := a.runner.RunScoringPass(cmd.Context(), nil)
		return err
	default:
		return sched.RunJob(jobName)
	}
}

func jobStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := newScheduler(a)
	if err != nil {
		return err
	}

	for name, stats := range sched.GetJobStats() {
		fmt.Printf("%-14s schedule=%q runs=%d success=%d failed=%d\n",
			name, stats.Schedule, stats.TotalRuns, stats.SuccessCount, stats.FailureCount)
	}
	return nil
}
