/*
Copyright © 2024 paul <paul@denknerd.org>
*/
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-homedir"

	"github.com/spf13/cobra"
	"github.com/toothbrush/wp-migrate/wordpress"
)

var showUsage = strings.TrimSpace(`
Print one item from the source site as Markdown, to check it's the one you mean before
transferring it.  With --output, the Markdown is saved under <dir>/<type>/<slug>.md instead.
`)

var ShowOutput string

var showCmd = &cobra.Command{
	Use:   "show <posts|pages> <id>",
	Short: "Print a source item as Markdown",
	Long:  showUsage,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		contentType, err := wordpress.ParseContentType(args[0])
		if err != nil {
			return fmt.Errorf("show: %w", err)
		}
		id, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("show: invalid id %q: %w", args[1], err)
		}

		api, done, err := Source.open(ctx)
		if err != nil {
			return fmt.Errorf("show: %w", err)
		}
		defer done()

		item, err := api.GetContent(ctx, contentType, id)
		if err != nil {
			return fmt.Errorf("show: couldn't get %s %d: %w", contentType, id, err)
		}

		md, err := api.ToMarkdown(*item)
		if err != nil {
			return fmt.Errorf("show: %w", err)
		}

		if ShowOutput == "" {
			fmt.Print(md)
			return nil
		}

		dir, err := homedir.Expand(ShowOutput)
		if err != nil {
			return fmt.Errorf("show: unable to expand homedir: %w", err)
		}
		written, err := writeMarkdown(dir, contentType, *item, md)
		if err != nil {
			return fmt.Errorf("show: %w", err)
		}
		fmt.Printf("Wrote %s\n", written)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().StringVarP(&ShowOutput, "output", "o", "", "directory to save the Markdown in")
}

// writeMarkdown saves md as <dir>/<type>/<slug>.md and returns the path written.
func writeMarkdown(dir string, contentType wordpress.ContentType, item wordpress.ContentItem, md string) (string, error) {
	stat, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("cannot stat '%s': %w", dir, err)
	}
	if !stat.IsDir() {
		return "", fmt.Errorf("output path not a directory: '%s'", dir)
	}

	name := item.Slug
	if name == "" {
		name = strconv.Itoa(item.ID)
	}
	abs := filepath.Join(dir, string(contentType), name+".md")

	if err := os.MkdirAll(filepath.Dir(abs), 0750); err != nil {
		return "", fmt.Errorf("couldn't create directory %s: %w", filepath.Dir(abs), err)
	}
	if err := os.WriteFile(abs, []byte(md), 0640); err != nil {
		return "", fmt.Errorf("couldn't write to file %s: %w", abs, err)
	}

	return abs, nil
}
