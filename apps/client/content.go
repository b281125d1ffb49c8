package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/trezcool/nabha/offline"
)

type contentOptions struct {
	*rootOptions
	category string
	lang     string
}

func newContentCommand(rootOpts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "content",
		Short: "Cache and browse learning content",
	}
	cmd.AddCommand(newContentPrefetchCommand(rootOpts))
	cmd.AddCommand(newContentListCommand(rootOpts))
	return cmd
}

func newContentPrefetchCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &contentOptions{rootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "prefetch",
		Short: "Download offline-available content into the local store",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = opts.runWithAgent(func(ctx context.Context, a *agent, _ []string) error {
		items, err := a.remote.FetchContent(ctx, true, opts.category)
		if err != nil {
			return err
		}
		if err := a.store.StoreContent(ctx, items); err != nil {
			return err
		}
		a.printf("%d items cached\n", len(items))
		return nil
	})

	cmd.Flags().StringVar(&opts.category, "category", "", "only this category")
	return cmd
}

func newContentListCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &contentOptions{rootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List content cached on this device",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = opts.runWithAgent(func(ctx context.Context, a *agent, _ []string) error {
		var (
			items []offline.ContentRecord
			err   error
		)
		if opts.category != "" {
			items, err = a.store.GetContentByCategory(ctx, opts.category)
		} else {
			items, err = a.store.GetOfflineContent(ctx)
		}
		if err != nil {
			return err
		}
		for _, item := range items {
			a.printf("%s\t%s\t%s\t%s\n", item.ID, item.CategoryID, item.Type, localized(item.Title, opts.lang))
		}
		a.printf("%d items\n", len(items))
		return nil
	})

	cmd.Flags().StringVar(&opts.category, "category", "", "only this category")
	cmd.Flags().StringVar(&opts.lang, "lang", "en", "preferred language of titles")
	return cmd
}

// localized falls back to English, then to any translation.
func localized(texts map[string]string, lang string) string {
	if s, ok := texts[lang]; ok {
		return s
	}
	if s, ok := texts["en"]; ok {
		return s
	}
	for _, s := range texts {
		return s
	}
	return ""
}
