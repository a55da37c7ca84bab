package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// GetHealthCmd returns the health command
func GetHealthCmd() *cobra.Command {
	return healthCmd
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the API server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		health, err := apiClient.HealthCheck(cmd.Context())
		if err != nil {
			return fmt.Errorf("error checking health: %w", err)
		}
		return printJSON(cmd.OutOrStdout(), health)
	},
}
