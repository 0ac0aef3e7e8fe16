/*
Copyright © 2024 paul <paul@denknerd.org>
*/
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/toothbrush/wp-migrate/migrate"
	"github.com/toothbrush/wp-migrate/wordpress"
	"github.com/vbauerster/mpb/v8"
)

var listUsage = strings.TrimSpace(`
Print every post or page on the source site, with the IDs you'll need for "transfer".  Without an
argument, lists the content type from --content-type.
`)

var (
	ContentTypeName string
	Search          string
)

var listCmd = &cobra.Command{
	Use:       "list [posts|pages]",
	Short:     "List the source site's posts or pages",
	Long:      listUsage,
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{string(wordpress.Posts), string(wordpress.Pages)},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		name := ContentTypeName
		if len(args) == 1 {
			name = args[0]
		}
		contentType, err := wordpress.ParseContentType(name)
		if err != nil {
			return fmt.Errorf("list: %w", err)
		}

		api, done, err := Source.open(ctx)
		if err != nil {
			return fmt.Errorf("list: %w", err)
		}
		defer done()

		items, err := fetchAll(ctx, os.Stderr, api, contentType)
		if err != nil {
			return fmt.Errorf("list: couldn't fetch %s from %s: %w", contentType, api, err)
		}

		items = filterByTitle(items, Search)
		fmt.Printf("%s (%d):\n", contentType, len(items))
		for _, item := range items {
			fmt.Printf("  - %d: %s [%s]", item.ID, item.Title.Text(), item.Status)
			if author := item.Embedded.AuthorName(); author != "" {
				fmt.Printf(" by %s", author)
			}
			fmt.Println()
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&ContentTypeName, "content-type", string(wordpress.Posts), "content type to list when none is given: posts or pages")
	listCmd.Flags().StringVarP(&Search, "search", "s", "", "only list items whose title contains this text")
}

// fetchAll loads every item of contentType with a progress bar on out.
func fetchAll(ctx context.Context, out io.Writer, api *wordpress.API, contentType wordpress.ContentType) ([]wordpress.ContentItem, error) {
	p := mpb.NewWithContext(ctx, mpb.WithWidth(64), mpb.WithOutput(out))
	bar := migrate.NewFetchBar(p, fmt.Sprintf("%s %s", api, contentType))

	items, err := api.FetchAllContent(ctx, contentType, bar.Update)
	bar.Finish(err)
	p.Wait()

	return items, err
}

func filterByTitle(items []wordpress.ContentItem, search string) []wordpress.ContentItem {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return items
	}

	var matched []wordpress.ContentItem
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Title.Text()), search) {
			matched = append(matched, item)
		}
	}
	return matched
}
