package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/trezcool/nabha/core"
	"github.com/trezcool/nabha/offline"
)

type submitOptions struct {
	*rootOptions
	student    string
	assignment string
	answers    map[string]string
}

func newSubmitCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &submitOptions{rootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit answers to an assignment",
		Long: `Deliver an assignment submission to the API or queue it for the next sync.

Examples:
  nabha submit --assignment a1 --answer q1=4 --answer q2=blue`,
		Args: cobra.NoArgs,
	}
	cmd.RunE = opts.runWithAgent(func(ctx context.Context, a *agent, _ []string) error {
		studentID, err := a.studentID(opts.student)
		if err != nil {
			return err
		}
		sub := offline.Submission{
			AssignmentID: opts.assignment,
			StudentID:    studentID,
			Answers:      opts.answers,
			SubmittedAt:  core.NowFunc(),
		}
		d, err := a.coord.SubmitAssignment(ctx, sub)
		if err != nil {
			return describeInvalid(err)
		}
		a.printf("submission %s %s\n", opts.assignment, d)
		return nil
	})

	cmd.Flags().StringVar(&opts.student, "student", "", "student ID (defaults to the logged in user)")
	cmd.Flags().StringVar(&opts.assignment, "assignment", "", "assignment ID (required)")
	_ = cmd.MarkFlagRequired("assignment")
	cmd.Flags().StringToStringVar(&opts.answers, "answer", nil, "question=answer, repeatable")
	return cmd
}
