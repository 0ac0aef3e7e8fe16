/*
Copyright © 2024 paul <paul@denknerd.org>
*/
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/toothbrush/wp-migrate/migrate"
	"github.com/toothbrush/wp-migrate/wordpress"
	"github.com/vbauerster/mpb/v8"
)

var transferUsage = strings.TrimSpace(`
Recreate posts or pages from the source site on the destination site.  Name the source IDs to copy
(see "list"), or pass --all.  Items are created one after the other; one failing doesn't stop the
rest, and every item's outcome is printed at the end.
`)

var (
	TransferAll bool
	SkipImages  bool
	ReportPath  string
)

var transferCmd = &cobra.Command{
	Use:   "transfer <posts|pages> [ids...]",
	Short: "Copy items from the source site to the destination",
	Long:  transferUsage,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		contentType, err := wordpress.ParseContentType(args[0])
		if err != nil {
			return fmt.Errorf("transfer: %w", err)
		}
		ids, err := parseIDs(args[1:])
		if err != nil {
			return fmt.Errorf("transfer: %w", err)
		}
		if len(ids) == 0 && !TransferAll {
			return fmt.Errorf("transfer: name the IDs to transfer, or pass --all")
		}

		source, doneSource, err := Source.open(ctx)
		if err != nil {
			return fmt.Errorf("transfer: %w", err)
		}
		defer doneSource()

		destination, doneDestination, err := Destination.open(ctx)
		if err != nil {
			return fmt.Errorf("transfer: %w", err)
		}
		defer doneDestination()

		job := transferJob{
			Source:      source,
			Destination: destination,
			ContentType: contentType,
			IDs:         ids,
			All:         TransferAll,
			Options:     migrate.Options{SkipImageTransfer: SkipImages},
		}
		batch, err := job.run(ctx, os.Stdout, os.Stderr)
		if err != nil {
			return fmt.Errorf("transfer: %w", err)
		}

		if ReportPath != "" {
			path, err := homedir.Expand(ReportPath)
			if err != nil {
				return fmt.Errorf("transfer: unable to expand homedir: %w", err)
			}
			report := batch.Report()
			report.Source = source.String()
			report.Destination = destination.String()
			report.ContentType = string(contentType)
			if err := migrate.WriteReport(path, report); err != nil {
				return fmt.Errorf("transfer: %w", err)
			}
			fmt.Printf("Report written to %s\n", path)
		}

		summary := batch.Summary()
		if summary.Failed > 0 || !summary.Done() {
			return fmt.Errorf("transfer: %d of %d items didn't transfer", summary.Total-summary.Succeeded, summary.Total)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(transferCmd)

	transferCmd.Flags().BoolVarP(&TransferAll, "all", "a", false, "transfer every item of the content type")
	transferCmd.Flags().BoolVar(&SkipImages, "skip-images", false, "don't copy featured images")
	transferCmd.Flags().StringVar(&ReportPath, "report", "", "write a YAML report of the batch to this file")
}

func parseIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, arg := range args {
		id, err := strconv.Atoi(arg)
		if err != nil || id < 1 {
			return nil, fmt.Errorf("invalid id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

type transferJob struct {
	Source      *wordpress.API
	Destination *wordpress.API
	ContentType wordpress.ContentType
	IDs         []int
	All         bool
	Options     migrate.Options
}

// run validates both sites, fetches the source listing and drives the selected items through a
// batch.  Per-item results go to out once the batch is over; progress bars go to progress.
func (j transferJob) run(ctx context.Context, out, progress io.Writer) (*migrate.Batch, error) {
	logger := zerolog.Ctx(ctx)

	for _, api := range []*wordpress.API{j.Source, j.Destination} {
		if _, err := validateSite(ctx, out, api); err != nil {
			return nil, err
		}
	}

	items, err := fetchAll(ctx, progress, j.Source, j.ContentType)
	if err != nil {
		return nil, fmt.Errorf("couldn't fetch %s from %s: %w", j.ContentType, j.Source, err)
	}

	selected := j.IDs
	if j.All {
		selected = make([]int, 0, len(items))
		for _, item := range items {
			selected = append(selected, item.ID)
		}
	}

	transferrer := &migrate.Transferrer{
		Source:      j.Source,
		Destination: j.Destination,
		ContentType: j.ContentType,
		Options:     j.Options,
	}
	batch, err := migrate.NewBatch(transferrer, items, selected)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("batch", batch.ID).Int("items", len(batch.Order())).Msg("starting transfer")

	p := mpb.NewWithContext(ctx, mpb.WithWidth(64), mpb.WithOutput(progress))
	bar := migrate.NewBatchBar(p, fmt.Sprintf("%s -> %s", j.Source, j.Destination), len(batch.Order()))
	batch.OnStatus = bar.OnStatus

	summary := batch.Run(ctx)
	bar.Finish()
	p.Wait()

	printOutcome(out, batch)
	fmt.Fprintf(out, "%d transferred, %d failed, %d not attempted.\n", summary.Succeeded, summary.Failed, summary.Pending)

	return batch, nil
}

func printOutcome(w io.Writer, batch *migrate.Batch) {
	for _, item := range batch.Report().Items {
		switch item.Status {
		case migrate.Succeeded.String():
			fmt.Fprintf(w, "%s %d %s -> %d\n", color.GreenString("✓"), item.SourceID, item.Title, item.DestinationID)
		case migrate.Failed.String():
			fmt.Fprintf(w, "%s %d %s: %s\n", color.RedString("✗"), item.SourceID, item.Title, item.Message)
		default:
			fmt.Fprintf(w, "%s %d %s: not attempted\n", color.YellowString("-"), item.SourceID, item.Title)
		}
	}
}
