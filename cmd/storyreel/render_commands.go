package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"storyreel/internal/jobs"
	"storyreel/internal/project"
	"storyreel/internal/render"
	"storyreel/internal/services/shotstack"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var wait bool

	cmd := &cobra.Command{
		Use:   "render <project.json>",
		Short: "Compile a project and submit it for rendering",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := project.Load(args[0])
			if err != nil {
				return err
			}
			return ctx.withManager(func(mgr *render.Manager) error {
				job, err := mgr.Submit(cmd.Context(), p)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Submitted job %d (render %s): %d clips, %s\n",
					job.ID, job.RemoteID, job.ClipCount, formatSeconds(job.TotalDuration))
				if !wait {
					return nil
				}
				return followJob(cmd, mgr, job.ID)
			})
		},
	}
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "Poll until the render finishes")
	return cmd
}

func newIngestCommand(ctx *commandContext) *cobra.Command {
	var wait bool

	cmd := &cobra.Command{
		Use:   "ingest <url>",
		Short: "Ask the engine to fetch and host a source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(func(mgr *render.Manager) error {
				job, err := mgr.Ingest(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Submitted ingest job %d (source %s)\n", job.ID, job.RemoteID)
				if !wait {
					return nil
				}
				return followJob(cmd, mgr, job.ID)
			})
		},
	}
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "Poll until the source is ready")
	return cmd
}

func newExtractAudioCommand(ctx *commandContext) *cobra.Command {
	var duration float64
	var wait bool

	cmd := &cobra.Command{
		Use:   "extract-audio <video-url>",
		Short: "Render the soundtrack of a video to mp3",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if duration <= 0 {
				return errors.New("--duration must be a positive number of seconds")
			}
			return ctx.withManager(func(mgr *render.Manager) error {
				job, err := mgr.ExtractAudio(cmd.Context(), args[0], duration)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Submitted audio job %d (render %s)\n", job.ID, job.RemoteID)
				if !wait {
					return nil
				}
				return followJob(cmd, mgr, job.ID)
			})
		},
	}
	cmd.Flags().Float64VarP(&duration, "duration", "d", 0, "Length of the source video in seconds")
	cmd.Flags().BoolVarP(&wait, "wait", "w", true, "Poll until the audio file is ready")
	return cmd
}

// followJob tracks a job to completion, printing progress as it goes.
func followJob(cmd *cobra.Command, mgr *render.Manager, jobID int64) error {
	progress := newProgressPrinter(cmd.OutOrStdout())
	job, err := mgr.Track(cmd.Context(), jobID, progress.observe)
	progress.finish()
	if job != nil {
		printOutcome(cmd.OutOrStdout(), job)
	}
	var timeout *shotstack.JobTimeoutError
	if errors.As(err, &timeout) {
		return fmt.Errorf("%w; the job keeps its last status, run `storyreel jobs poll %d` to keep waiting", err, jobID)
	}
	return err
}

func printOutcome(out io.Writer, job *jobs.Job) {
	switch job.Status {
	case jobs.StatusDone:
		fmt.Fprintf(out, "Job %d done: %s\n", job.ID, job.AssetURL)
	case jobs.StatusFailed:
		fmt.Fprintf(out, "Job %d failed: %s\n", job.ID, job.ErrorMessage)
	default:
		fmt.Fprintf(out, "Job %d is %s", job.ID, statusLabel(job.Status))
		if job.PollState != jobs.PollOK {
			fmt.Fprintf(out, " (polling %s)", job.PollState)
		}
		fmt.Fprintln(out)
	}
}
