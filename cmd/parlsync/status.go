package main

import (
	"errors"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/westminster-data/parlsync/internal/adapters/driven/config/file"
	"github.com/westminster-data/parlsync/internal/adapters/driven/storage/csvfile"
	"github.com/westminster-data/parlsync/internal/core/domain"
	"github.com/westminster-data/parlsync/internal/core/services"
)

func newStatusCmd() *cobra.Command {
	var parties bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show archive sizes, high-water marks and recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if parties {
				return printParties(cmd, cfg)
			}
			return printStatus(cmd, cfg)
		},
	}

	cmd.Flags().BoolVar(&parties, "parties", false, "Show the state of the parties instead")
	return cmd
}

func printStatus(cmd *cobra.Command, cfg *file.Config) error {
	store := csvfile.New()
	ctx := cmd.Context()

	lastRuns := map[domain.ArchiveKind]domain.SyncRun{}
	if journal := openJournal(cfg); journal != nil {
		defer closeJournal(journal)
		runs, err := journal.LatestByKind(ctx)
		if err != nil {
			return err
		}
		lastRuns = runs
	}

	t := newStatusTable(cmd)
	t.AppendHeader(table.Row{"Archive", "Rows", "High water", "Last run", "Added", "Failed"})

	for _, kind := range domain.Kinds() {
		_, records, err := store.Load(ctx, cfg.ArchivePath(kind.Filename()))
		if errors.Is(err, domain.ErrNotFound) {
			t.AppendRow(table.Row{kind, "-", "-", "-", "-", "-"})
			continue
		}
		if err != nil {
			return err
		}

		watermark := "-"
		if field := kind.WatermarkField(); field != "" {
			if mark := domain.MaxWatermark(records, field); !mark.IsZero() {
				watermark = mark.Format("2006-01-02")
			}
		}

		lastRun, added, failed := "-", "-", "-"
		if run, ok := lastRuns[kind]; ok {
			lastRun = run.FinishedAt.Format("2006-01-02 15:04")
			added = strconv.Itoa(run.Added)
			failed = strconv.Itoa(run.FailedWindows)
		}
		t.AppendRow(table.Row{kind, len(records), watermark, lastRun, added, failed})
	}

	t.Render()
	return nil
}

func printParties(cmd *cobra.Command, cfg *file.Config) error {
	store := csvfile.New()
	path := cfg.ArchivePath(domain.MembersActive.Filename())
	_, records, err := store.Load(cmd.Context(), path)
	if errors.Is(err, domain.ErrNotFound) {
		return errors.New("no active-members archive; run `parlsync sweep members` first")
	}
	if err != nil {
		return err
	}

	t := newStatusTable(cmd)
	t.AppendHeader(table.Row{"Party", "Members"})
	for _, count := range services.PartyCounts(records) {
		t.AppendRow(table.Row{count.Party, count.Members})
	}
	t.Render()
	return nil
}

func newStatusTable(cmd *cobra.Command) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		t.SetAllowedRowLength(width)
	}
	return t
}
