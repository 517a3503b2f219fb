package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/westminster-data/parlsync/internal/adapters/driven/storage/csvfile"
	"github.com/westminster-data/parlsync/internal/core/domain"
	"github.com/westminster-data/parlsync/internal/core/services"
)

func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync [answered|tabled]",
		Short: "Sync the written-question archives",
		Long: "Fetches written questions answered or tabled since each archive's high-water\n" +
			"mark and merges them in. Without an argument both archives are synced.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds := []domain.ArchiveKind{domain.QuestionsAnswered, domain.QuestionsTabled}
			if len(args) == 1 {
				switch args[0] {
				case "answered":
					kinds = kinds[:1]
				case "tabled":
					kinds = kinds[1:]
				default:
					return fmt.Errorf("unknown archive %q (valid values: answered, tabled)", args[0])
				}
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			journal := openJournal(cfg)
			defer closeJournal(journal)

			syncer := services.NewSyncer(csvfile.New(), newParliamentClient(cfg), journal, cfg.DataDir, cfg.Sync.Concurrency)

			// The two question archives are independent and sync in
			// parallel.
			runs := make([]domain.SyncRun, len(kinds))
			g, ctx := errgroup.WithContext(cmd.Context())
			for i, kind := range kinds {
				g.Go(func() error {
					run, err := syncer.Sync(ctx, kind)
					if err != nil {
						return fmt.Errorf("sync %s: %w", kind, err)
					}
					runs[i] = run
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			for _, run := range runs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: fetched %d, added %d, dropped %d, failed windows %d\n",
					run.Kind, run.Fetched, run.Added, run.Dropped, run.FailedWindows)
			}
			return nil
		},
	}
	return cmd
}
