package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/trezcool/nabha/core"
	"github.com/trezcool/nabha/offline"
)

type progressOptions struct {
	*rootOptions
	student   string
	content   string
	percent   int
	score     int
	timeSpent int
	completed bool
}

func newProgressCommand(rootOpts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Record or inspect learning progress",
	}
	cmd.AddCommand(newProgressSaveCommand(rootOpts))
	cmd.AddCommand(newProgressListCommand(rootOpts))
	return cmd
}

func newProgressSaveCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &progressOptions{rootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save progress on a content item",
		Long: `Save progress locally, then deliver it to the API or queue it for the next sync.

Examples:
  nabha progress save --content c1 --percent 50
  nabha progress save --content c1 --percent 100 --score 8 --time 12`,
		Args: cobra.NoArgs,
	}
	cmd.RunE = opts.runWithAgent(func(ctx context.Context, a *agent, _ []string) error {
		studentID, err := a.studentID(opts.student)
		if err != nil {
			return err
		}

		now := core.NowFunc()
		rec := offline.ProgressRecord{
			StudentID:          studentID,
			ContentItemID:      opts.content,
			ProgressPercentage: opts.percent,
			TimeSpent:          opts.timeSpent,
			LastAccessedAt:     now,
		}
		if cmd.Flags().Changed("score") {
			score := opts.score
			rec.Score = &score
		}
		if opts.completed || opts.percent == 100 {
			rec.CompletedAt = &now
		}

		d, err := a.coord.SaveProgress(ctx, rec)
		if err != nil {
			return describeInvalid(err)
		}
		a.printf("progress %s %s\n", rec.Keyed().ID, d)
		return nil
	})

	cmd.Flags().StringVar(&opts.student, "student", "", "student ID (defaults to the logged in user)")
	cmd.Flags().StringVar(&opts.content, "content", "", "content item ID (required)")
	_ = cmd.MarkFlagRequired("content")
	cmd.Flags().IntVar(&opts.percent, "percent", 0, "progress percentage, 0 to 100")
	cmd.Flags().IntVar(&opts.score, "score", 0, "score obtained")
	cmd.Flags().IntVar(&opts.timeSpent, "time", 0, "time spent in minutes")
	cmd.Flags().BoolVar(&opts.completed, "completed", false, "mark the item completed")
	return cmd
}

func newProgressListCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &progressOptions{rootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List progress stored on this device",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = opts.runWithAgent(func(ctx context.Context, a *agent, _ []string) error {
		studentID, err := a.studentID(opts.student)
		if err != nil {
			return err
		}
		recs, err := a.store.GetStoredProgress(ctx, studentID)
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			a.printf("no progress stored for %s\n", studentID)
			return nil
		}
		for _, rec := range recs {
			a.printf("%s\t%d%%\t%dmin", rec.ContentItemID, rec.ProgressPercentage, rec.TimeSpent)
			if rec.Score != nil {
				a.printf("\tscore=%d", *rec.Score)
			}
			if rec.CompletedAt != nil {
				a.printf("\tcompleted")
			}
			a.printf("\n")
		}
		return nil
	})

	cmd.Flags().StringVar(&opts.student, "student", "", "student ID (defaults to the logged in user)")
	return cmd
}
