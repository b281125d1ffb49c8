package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/trezcool/nabha/offline"
)

func newSyncCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Replay queued writes to the API",
		Long: `Replay the sync queue in order. The queue is cleared only once every entry is delivered;
a failed delivery stops the replay and leaves the queue as it was.`,
		Args: cobra.NoArgs,
	}
	cmd.RunE = opts.runWithAgent(func(ctx context.Context, a *agent, _ []string) error {
		a.coord.SyncPendingData(ctx)
		entries, err := a.store.GetSyncQueue(ctx)
		if err != nil {
			return err
		}
		a.printf("%d pending\n", len(entries))
		return nil
	})
	return cmd
}

func newQueueCommand(rootOpts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect or clear the sync queue",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List queued writes, oldest first",
		Args:  cobra.NoArgs,
	}
	listCmd.RunE = rootOpts.runWithAgent(func(ctx context.Context, a *agent, _ []string) error {
		entries, err := a.store.GetSyncQueue(ctx)
		if err != nil {
			return err
		}
		for _, e := range entries {
			a.printf("%d\t%s\t%s\t%s\n", e.ID, e.Type(), e.QueuedAt().UTC().Format("2006-01-02T15:04:05Z"), describe(e.Payload))
		}
		a.printf("%d pending\n", len(entries))
		return nil
	})

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Drop every queued write without delivering it",
		Args:  cobra.NoArgs,
	}
	clearCmd.RunE = rootOpts.runWithAgent(func(ctx context.Context, a *agent, _ []string) error {
		if err := a.store.ClearSyncQueue(ctx); err != nil {
			return err
		}
		a.printf("sync queue cleared\n")
		return nil
	})

	cmd.AddCommand(listCmd, clearCmd)
	return cmd
}

func describe(p offline.Payload) string {
	switch v := p.(type) {
	case offline.ProgressRecord:
		return v.StudentID + " " + v.ContentItemID
	case offline.Submission:
		return v.StudentID + " " + v.AssignmentID
	default:
		return ""
	}
}
