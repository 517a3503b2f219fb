package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/westminster-data/parlsync/internal/adapters/driven/storage/csvfile"
	"github.com/westminster-data/parlsync/internal/core/services"
)

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep [members|constituencies]",
		Short: "Refresh the member and constituency archives",
		Long: "Probes the remote id space and merges every entity found into the active or\n" +
			"former archive. Without an argument both entity kinds are swept.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			members, constituencies := true, true
			if len(args) == 1 {
				switch args[0] {
				case "members":
					constituencies = false
				case "constituencies":
					members = false
				default:
					return fmt.Errorf("unknown entity %q (valid values: members, constituencies)", args[0])
				}
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			journal := openJournal(cfg)
			defer closeJournal(journal)

			client := newParliamentClient(cfg)
			sweeper := services.NewSweeper(csvfile.New(), client, client, journal, cfg.DataDir,
				cfg.Sync.Concurrency, cfg.API.MaxMemberID, cfg.API.MaxConstituencyID)

			ctx := cmd.Context()
			if members {
				report, err := sweeper.SweepMembers(ctx)
				if err != nil {
					return fmt.Errorf("sweep members: %w", err)
				}
				printSweep(cmd, "members", report)
			}
			if constituencies {
				report, err := sweeper.SweepConstituencies(ctx)
				if err != nil {
					return fmt.Errorf("sweep constituencies: %w", err)
				}
				printSweep(cmd, "constituencies", report)
			}
			return nil
		},
	}
	return cmd
}

func printSweep(cmd *cobra.Command, what string, report *services.SweepReport) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s: found %d of %d ids, active +%d, former +%d, dropped %d, failed probes %d\n",
		what, report.Found, report.Probed, report.ActiveAdded, report.FormerAdded, report.Dropped, report.FailedProbes)
}
