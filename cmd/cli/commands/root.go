package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/celestiaorg/faceswap/config"
	"github.com/celestiaorg/faceswap/internal/constants"
	"github.com/celestiaorg/faceswap/internal/logger"
	"github.com/celestiaorg/faceswap/pkg/api/v1/client"
	"github.com/celestiaorg/faceswap/pkg/api/v1/routes"
)

// flag names
const (
	flagServerAddress = "server-address"
	flagSource        = "source"
	flagTarget        = "target"
	flagOutput        = "output"
	flagParams        = "params"
	flagSet           = "set"
	flagRemote        = "remote"
)

var (
	// apiClient is the shared API client instance
	apiClient client.Client
	// serverAddress holds the target API server address. Flag parsing sets this.
	serverAddress string
)

// initClient initializes the API client
func initClient() error {
	var err error
	opts := client.DefaultOptions()
	opts.BaseURL = serverAddress

	apiClient, err = client.NewClient(opts)
	return err
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&serverAddress, flagServerAddress, "s", routes.DefaultBaseURL, "Address of the faceswap API server (env: "+constants.EnvServerAddress+")")

	RootCmd.AddCommand(GetProcessCmd())
	RootCmd.AddCommand(GetRunCmd())
	RootCmd.AddCommand(GetJobsCmd())
	RootCmd.AddCommand(GetHealthCmd())
}

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "faceswap",
	Short: "faceswap CLI - swap faces locally or through the faceswap API",
	Long: `faceswap is a command line tool for the faceswap service. It sends swap
requests to a running API server, runs the pipeline locally, and shows the
jobs of either.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := config.LoadDotEnv(); err != nil {
			return err
		}
		logger.InitializeAndConfigure()
		// stdout carries command output
		logger.SetOutput(os.Stderr)

		// Flag > Env Var > Default
		if !cmd.Flags().Changed(flagServerAddress) {
			if envAddr := os.Getenv(constants.EnvServerAddress); envAddr != "" {
				serverAddress = envAddr
			}
		}
		if serverAddress == "" {
			return fmt.Errorf("server address cannot be empty")
		}
		// tests inject a client before running a command
		if apiClient != nil {
			return nil
		}
		return initClient()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return RootCmd.Execute()
}

// printJSON pretty prints v to w
func printJSON(w io.Writer, v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("error formatting output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
