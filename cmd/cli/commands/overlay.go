package commands

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/celestiaorg/faceswap/internal/params"
)

// processOutput is printed after a swap
type processOutput struct {
	JobID  string `json:"job_id"`
	Output string `json:"output"`
}

// addSwapFlags registers the flags shared by process and run
func addSwapFlags(cmd *cobra.Command) {
	cmd.Flags().StringP(flagSource, "i", "", "Source image with the face to use")
	cmd.Flags().StringP(flagTarget, "t", "", "Target image or video")
	cmd.Flags().StringP(flagOutput, "O", "", "Output file (default: output_<target> next to the target)")
	cmd.Flags().String(flagParams, "", "Parameter overrides as a JSON object")
	cmd.Flags().StringArray(flagSet, nil, "Parameter override as key=value, repeatable")
	_ = cmd.MarkFlagRequired(flagSource)
	_ = cmd.MarkFlagRequired(flagTarget)
}

// overlayFromFlags merges --params and --set into one overlay. Values of
// --set are decoded as JSON when possible and taken as strings otherwise.
func overlayFromFlags(cmd *cobra.Command) (map[string]any, error) {
	raw, _ := cmd.Flags().GetString(flagParams)
	sets, _ := cmd.Flags().GetStringArray(flagSet)

	overlay, err := params.ParseOverlay(raw)
	if err != nil {
		return nil, err
	}
	if overlay == nil {
		overlay = make(map[string]any)
	}

	for _, kv := range sets {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --%s %q: expected key=value", flagSet, kv)
		}
		var decoded any
		if err := json.Unmarshal([]byte(value), &decoded); err != nil {
			decoded = value
		}
		overlay[key] = decoded
	}
	return overlay, nil
}

func jsonString(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("error encoding params: %w", err)
	}
	return string(b), nil
}

// outputPath returns --output or output_<target> next to the target
func outputPath(cmd *cobra.Command, target string) string {
	if out, _ := cmd.Flags().GetString(flagOutput); out != "" {
		return out
	}
	return filepath.Join(filepath.Dir(target), "output_"+filepath.Base(target))
}
