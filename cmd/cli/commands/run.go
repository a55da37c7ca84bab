package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/celestiaorg/faceswap/internal/appctx"
	"github.com/celestiaorg/faceswap/internal/executor"
	"github.com/celestiaorg/faceswap/internal/services"
	"github.com/celestiaorg/faceswap/internal/staging"
)

// GetRunCmd returns the run command
func GetRunCmd() *cobra.Command {
	return runCmd
}

func init() {
	addSwapFlags(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a swap on this machine without the API server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		sourcePath, _ := cmd.Flags().GetString(flagSource)
		targetPath, _ := cmd.Flags().GetString(flagTarget)

		overlay, err := overlayFromFlags(cmd)
		if err != nil {
			return err
		}
		rawOverlay := ""
		if len(overlay) > 0 {
			b, err := jsonString(overlay)
			if err != nil {
				return err
			}
			rawOverlay = b
		}

		env, err := openLocal()
		if err != nil {
			return err
		}
		defer env.Close()

		st, err := staging.NewManager(env.cfg.UploadDir, env.cfg.OutputDir)
		if err != nil {
			return fmt.Errorf("error preparing staging directories: %w", err)
		}
		pipeline, err := executor.NewCommand(env.cfg.PipelineCommand)
		if err != nil {
			return err
		}
		pipeline.Dir = env.cfg.PipelineWorkdir
		defaults, err := env.cfg.Defaults()
		if err != nil {
			return fmt.Errorf("error loading parameter defaults: %w", err)
		}

		source, err := os.Open(sourcePath)
		if err != nil {
			return fmt.Errorf("error reading source: %w", err)
		}
		defer func() { _ = source.Close() }()
		target, err := os.Open(targetPath)
		if err != nil {
			return fmt.Errorf("error reading target: %w", err)
		}
		defer func() { _ = target.Close() }()

		svc := services.NewProcessService(st, env.jobs, pipeline, defaults)
		ctx := appctx.With(cmd.Context(), appctx.CLI)
		res, err := svc.Process(ctx, services.ProcessRequest{
			Source: &services.Upload{Name: filepath.Base(sourcePath), Reader: source},
			Target: &services.Upload{Name: filepath.Base(targetPath), Reader: target},
			Params: rawOverlay,
		})
		if err != nil {
			return fmt.Errorf("error processing: %w", err)
		}
		defer st.Cleanup(res.Output)

		dest := outputPath(cmd, targetPath)
		if err := copyFile(res.Output.Path, dest); err != nil {
			return fmt.Errorf("error writing output: %w", err)
		}

		return printJSON(cmd.OutOrStdout(), processOutput{JobID: res.JobID, Output: dest})
	},
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
