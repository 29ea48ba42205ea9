package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAuditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "audit <domain>",
		Short: "Submit a new audit and follow it until it settles.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, client, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck // best-effort flush

			result, err := client.CreateAudit(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("submit audit: %w", err)
			}
			fmt.Printf("Audit %s created for %s\n\n", result.ID, args[0])
			return watchJob(result.ID, cfg, client)
		},
	}
}
