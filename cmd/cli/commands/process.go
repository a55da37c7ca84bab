package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/celestiaorg/faceswap/pkg/api/v1/client"
)

// GetProcessCmd returns the process command
func GetProcessCmd() *cobra.Command {
	return processCmd
}

func init() {
	addSwapFlags(processCmd)
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Send a swap request to the API server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		sourcePath, _ := cmd.Flags().GetString(flagSource)
		targetPath, _ := cmd.Flags().GetString(flagTarget)

		overlay, err := overlayFromFlags(cmd)
		if err != nil {
			return err
		}

		source, err := os.ReadFile(sourcePath)
		if err != nil {
			return fmt.Errorf("error reading source: %w", err)
		}
		target, err := os.ReadFile(targetPath)
		if err != nil {
			return fmt.Errorf("error reading target: %w", err)
		}

		resp, err := apiClient.Process(cmd.Context(), client.ProcessRequest{
			Source: client.File{Name: filepath.Base(sourcePath), Content: source},
			Target: client.File{Name: filepath.Base(targetPath), Content: target},
			Params: overlay,
		})
		if err != nil {
			return fmt.Errorf("error processing: %w", err)
		}

		dest := outputPath(cmd, targetPath)
		if err := os.WriteFile(dest, resp.Content, 0o644); err != nil {
			return fmt.Errorf("error writing output: %w", err)
		}

		return printJSON(cmd.OutOrStdout(), processOutput{JobID: resp.JobID, Output: dest})
	},
}
