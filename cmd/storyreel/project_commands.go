package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"storyreel/internal/fileutil"
	"storyreel/internal/project"
	"storyreel/internal/timeline"
)

func newValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate <project.json>",
		Short:       "Check a project for problems that would block a render",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := project.Load(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			problems := project.Validate(p)
			if len(problems) == 0 {
				total := timeline.ComputeTotalDuration(p.Scenes, p.ShotsByScene())
				fmt.Fprintf(out, "Project %s is valid: %d scenes, %d shots, %s\n",
					projectLabel(p), len(p.Scenes), len(p.Shots), formatSeconds(total))
				return nil
			}
			rows := make([][]string, 0, len(problems))
			for i, problem := range problems {
				rows = append(rows, []string{strconv.Itoa(i + 1), problem})
			}
			fmt.Fprintln(out, renderTable([]string{"#", "Problem"}, rows, []columnAlignment{alignRight, alignLeft}))
			return fmt.Errorf("project %s has %d problem(s)", projectLabel(p), len(problems))
		},
	}
}

func newCompileCommand(ctx *commandContext) *cobra.Command {
	var outputPath string
	var strict bool

	cmd := &cobra.Command{
		Use:   "compile <project.json>",
		Short: "Compile a project into an engine edit document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := project.Load(args[0])
			if err != nil {
				return err
			}
			mgr, err := ctx.compiler(strict)
			if err != nil {
				return err
			}
			res, err := mgr.Compile(p)
			if err != nil {
				var validation *project.ValidationError
				if errors.As(err, &validation) {
					for _, problem := range validation.Problems {
						fmt.Fprintf(cmd.ErrOrStderr(), "problem: %s\n", problem)
					}
				}
				return err
			}
			for _, diag := range res.Diagnostics {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", diag)
			}

			payload, err := json.MarshalIndent(res.Edit, "", "  ")
			if err != nil {
				return fmt.Errorf("encode edit: %w", err)
			}
			payload = append(payload, '\n')
			target := strings.TrimSpace(outputPath)
			if target == "" || target == "-" {
				_, err = cmd.OutOrStdout().Write(payload)
				return err
			}
			if err := fileutil.WriteFileAtomic(target, payload, 0o644); err != nil {
				return fmt.Errorf("write edit: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d clips (%s) to %s\n", res.ClipCount, formatSeconds(res.TotalDuration), target)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the edit document to a file instead of stdout")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when a shot has no resolvable video instead of skipping it")
	return cmd
}

func newDurationCommand(ctx *commandContext) *cobra.Command {
	var perScene bool

	cmd := &cobra.Command{
		Use:         "duration <project.json>",
		Short:       "Print the expanded timeline length of a project",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := project.Load(args[0])
			if err != nil {
				return err
			}
			shots := p.ShotsByScene()
			out := cmd.OutOrStdout()
			if !perScene {
				fmt.Fprintln(out, strconv.FormatFloat(timeline.ComputeTotalDuration(p.Scenes, shots), 'f', -1, 64))
				return nil
			}
			rows := [][]string{}
			for _, span := range timeline.SceneSpans(p.Scenes, shots) {
				rows = append(rows, []string{span.SceneID, formatSeconds(span.Start), formatSeconds(span.Length)})
			}
			fmt.Fprintln(out, renderTable([]string{"Scene", "Start", "Length"}, rows, []columnAlignment{alignLeft, alignRight, alignRight}))
			return nil
		},
	}
	cmd.Flags().BoolVar(&perScene, "scenes", false, "Show the window of every scene")
	return cmd
}

func projectLabel(p *project.Project) string {
	if title := strings.TrimSpace(p.Title); title != "" {
		return fmt.Sprintf("%q", title)
	}
	if p.ID != "" {
		return p.ID
	}
	return "(unnamed)"
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "s"
}
