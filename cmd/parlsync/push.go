package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/westminster-data/parlsync/internal/adapters/driven/crm/civicrm"
	"github.com/westminster-data/parlsync/internal/adapters/driven/storage/csvfile"
	"github.com/westminster-data/parlsync/internal/core/services"
)

func newPushCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Push sitting Commons members into the CRM",
		Long: "Checks every sitting Commons member against the CRM and creates a contact for\n" +
			"each one missing. Requires crm.base_url, crm.site_key and crm.user_key in the\n" +
			"config file.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			sink, err := civicrm.New(cfg.CRM.BaseURL, cfg.CRM.SiteKey, cfg.CRM.UserKey)
			if err != nil {
				return err
			}

			pusher := services.NewPusher(csvfile.New(), sink, cfg.DataDir)
			report, err := pusher.PushActiveCommons(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "checked %d, created %d, already present %d, duplicates %d, failed %d\n",
				report.Checked, report.Created, report.AlreadyPresent, report.Duplicates, report.Failed)
			return nil
		},
	}
	return cmd
}
