package main

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"storyreel/internal/api"
	"storyreel/internal/jobs"
	"storyreel/internal/render"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and manage persisted render jobs",
	}
	jobsCmd.AddCommand(newJobsListCommand(ctx))
	jobsCmd.AddCommand(newJobsShowCommand(ctx))
	jobsCmd.AddCommand(newJobsPollCommand(ctx))
	jobsCmd.AddCommand(newJobsRefreshCommand(ctx))
	jobsCmd.AddCommand(newJobsResubmitCommand(ctx))
	jobsCmd.AddCommand(newJobsRemoveCommand(ctx))
	jobsCmd.AddCommand(newJobsClearCommand(ctx))
	return jobsCmd
}

func newJobsListCommand(ctx *commandContext) *cobra.Command {
	var statusFlags []string
	var projectID string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs, optionally filtered by status or project",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses, err := parseStatuses(statusFlags)
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *jobs.Store) error {
				list, err := listJobs(cmd.Context(), store, strings.TrimSpace(projectID), statuses)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, api.FromJobs(list))
				}
				out := cmd.OutOrStdout()
				if len(list) == 0 {
					fmt.Fprintln(out, "No jobs")
					return nil
				}
				fmt.Fprintln(out, renderJobTable(list))
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVarP(&statusFlags, "status", "s", nil, "Filter by status (repeatable or comma separated)")
	cmd.Flags().StringVarP(&projectID, "project", "p", "", "Only jobs submitted for this project id")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func listJobs(ctx context.Context, store *jobs.Store, projectID string, statuses []jobs.Status) ([]*jobs.Job, error) {
	if projectID == "" {
		return store.List(ctx, statuses...)
	}
	list, err := store.ListByProject(ctx, projectID)
	if err != nil || len(statuses) == 0 {
		return list, err
	}
	filtered := list[:0]
	for _, job := range list {
		if slices.Contains(statuses, job.Status) {
			filtered = append(filtered, job)
		}
	}
	return filtered, nil
}

func newJobsShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a single job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseJobID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *jobs.Store) error {
				job, err := store.GetByID(cmd.Context(), id)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, api.FromJob(job))
				}
				printJobDetails(cmd.OutOrStdout(), job)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newJobsPollCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "poll <id>",
		Short: "Poll a job until it finishes or the poll budget runs out",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseJobID(args[0])
			if err != nil {
				return err
			}
			return ctx.withManager(func(mgr *render.Manager) error {
				return followJob(cmd, mgr, id)
			})
		},
	}
}

func newJobsRefreshCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh <id>",
		Short: "Fetch the current engine status of a job once",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseJobID(args[0])
			if err != nil {
				return err
			}
			return ctx.withManager(func(mgr *render.Manager) error {
				job, err := mgr.Refresh(cmd.Context(), id)
				if err != nil {
					return err
				}
				printOutcome(cmd.OutOrStdout(), job)
				return nil
			})
		},
	}
}

func newJobsResubmitCommand(ctx *commandContext) *cobra.Command {
	var wait bool

	cmd := &cobra.Command{
		Use:   "resubmit <id>",
		Short: "Submit a failed or stalled job again as a new job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseJobID(args[0])
			if err != nil {
				return err
			}
			return ctx.withManager(func(mgr *render.Manager) error {
				job, err := mgr.Resubmit(cmd.Context(), id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Resubmitted job %d as job %d (remote %s)\n", id, job.ID, job.RemoteID)
				if !wait {
					return nil
				}
				return followJob(cmd, mgr, job.ID)
			})
		},
	}
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "Poll until the new job finishes")
	return cmd
}

func newJobsRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a job record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseJobID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *jobs.Store) error {
				removed, err := store.Remove(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("job %d not found", id)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed job %d\n", id)
				return nil
			})
		},
	}
}

func newJobsClearCommand(ctx *commandContext) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete finished job records",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *jobs.Store) error {
				var (
					removed int64
					err     error
				)
				if all {
					removed, err = store.Clear(cmd.Context())
				} else {
					removed, err = store.ClearTerminal(cmd.Context())
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d job(s)\n", removed)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Also delete jobs that have not finished")
	return cmd
}

func parseJobID(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid job id %q", value)
	}
	return id, nil
}

func parseStatuses(values []string) ([]jobs.Status, error) {
	var out []jobs.Status
	for _, value := range values {
		if strings.TrimSpace(value) == "" {
			continue
		}
		status, ok := jobs.ParseStatus(value)
		if !ok {
			return nil, fmt.Errorf("unknown status %q", value)
		}
		out = append(out, status)
	}
	return out, nil
}

func renderJobTable(list []*jobs.Job) string {
	rows := make([][]string, 0, len(list))
	for _, job := range list {
		status := statusLabel(job.Status)
		if job.NeedsAttention() {
			status += " (" + string(job.PollState) + ")"
		}
		rows = append(rows, []string{
			strconv.FormatInt(job.ID, 10),
			string(job.Kind),
			job.ProjectID,
			job.RemoteID,
			status,
			formatSeconds(job.TotalDuration),
			job.UpdatedAt.Local().Format(time.DateTime),
		})
	}
	return renderTable(
		[]string{"ID", "Kind", "Project", "Remote", "Status", "Duration", "Updated"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	)
}

func printJobDetails(out io.Writer, job *jobs.Job) {
	field := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(out, "%-15s %s\n", label+":", value)
	}
	field("Job", strconv.FormatInt(job.ID, 10))
	field("Kind", string(job.Kind))
	field("Project", job.ProjectID)
	field("Remote ID", job.RemoteID)
	field("Status", statusLabel(job.Status))
	field("Poll state", string(job.PollState))
	field("Poll message", job.PollMessage)
	field("Asset URL", job.AssetURL)
	field("Error", job.ErrorMessage)
	field("Duration", formatSeconds(job.TotalDuration))
	field("Clips", strconv.Itoa(job.ClipCount))
	field("Polls", strconv.Itoa(job.Attempts))
	field("Correlation", job.CorrelationID)
	if job.RetryOf > 0 {
		field("Retry of", strconv.FormatInt(job.RetryOf, 10))
	}
	field("Created", job.CreatedAt.Local().Format(time.DateTime))
	field("Updated", job.UpdatedAt.Local().Format(time.DateTime))
	if job.LastPolledAt != nil {
		field("Last polled", job.LastPolledAt.Local().Format(time.DateTime))
	}
}
