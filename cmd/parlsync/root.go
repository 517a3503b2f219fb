package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/westminster-data/parlsync/internal/adapters/driven/config/file"
	"github.com/westminster-data/parlsync/internal/adapters/driven/storage/sqlite"
	"github.com/westminster-data/parlsync/internal/connectors/parliament"
	"github.com/westminster-data/parlsync/internal/core/ports/driven"
	"github.com/westminster-data/parlsync/internal/logger"
)

var (
	verbose    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "parlsync",
	Short: "parlsync - incremental CSV archives of UK Parliament records",
	Long: "parlsync maintains flat CSV archives of members, constituencies and written\n" +
		"parliamentary questions, synced incrementally from the Parliament APIs.",
	PersistentPreRun: func(*cobra.Command, []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")

	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newSweepCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newPushCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// loadConfig reads the configuration and ensures the data dir exists.
func loadConfig() (*file.Config, error) {
	cfg, err := file.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return cfg, nil
}

func newParliamentClient(cfg *file.Config) *parliament.Client {
	return parliament.NewClient(parliament.Options{
		MembersBaseURL:   cfg.API.MembersBaseURL,
		QuestionsBaseURL: cfg.API.QuestionsBaseURL,
		Timeout:          time.Duration(cfg.API.TimeoutSeconds) * time.Second,
		MaxRetries:       cfg.API.MaxRetries,
		RatePerSecond:    cfg.API.RatePerSecond,
	})
}

// openJournal opens the run journal. A broken journal degrades to nil
// rather than blocking the sync itself.
func openJournal(cfg *file.Config) driven.RunJournal {
	journal, err := sqlite.NewJournal(cfg.DataDir)
	if err != nil {
		logger.Error("Run journal unavailable: %v", err)
		return nil
	}
	return journal
}

func closeJournal(journal driven.RunJournal) {
	if journal != nil {
		_ = journal.Close()
	}
}
