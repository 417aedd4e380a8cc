package main

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/five82/qrscan/internal/config"
	"github.com/five82/qrscan/internal/decode"
)

type decodeResult struct {
	File   string        `json:"file"`
	Found  bool          `json:"found"`
	Text   string        `json:"text,omitempty"`
	Points []image.Point `json:"points,omitempty"`
	Error  string        `json:"error,omitempty"`
}

func newDecodeCommand(loadConfig func() (config.Config, error)) *cobra.Command {
	var jsonOutput bool
	var tryHarder bool

	cmd := &cobra.Command{
		Use:   "decode FILE...",
		Short: "Decode QR codes from image files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			decoder := decode.New(tryHarder || cfg.Decoder.TryHarder)

			results := make([]decodeResult, 0, len(args))
			missing := 0
			for _, path := range args {
				res := decodeFile(decoder, path)
				if !res.Found {
					missing++
				}
				results = append(results, res)
			}

			if jsonOutput {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				printDecodeResults(cmd, results)
			}

			if missing > 0 {
				return fmt.Errorf("no QR code found in %d of %d files", missing, len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit results as JSON")
	cmd.Flags().BoolVar(&tryHarder, "try-harder", false, "Spend more time looking for a code")
	return cmd
}

func decodeFile(decoder *decode.Decoder, path string) decodeResult {
	res := decodeResult{File: path}
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		res.Error = fmt.Sprintf("open image: %v", err)
		return res
	}
	match, err := decoder.DecodeImage(img)
	switch {
	case errors.Is(err, decode.ErrNotFound):
		res.Error = "no QR code found"
	case err != nil:
		res.Error = err.Error()
	default:
		res.Found = true
		res.Text = match.Text
		res.Points = match.Points
	}
	return res
}

// printDecodeResults writes payloads to stdout and misses to stderr. With a
// single file the payload is printed bare so it can be piped.
func printDecodeResults(cmd *cobra.Command, results []decodeResult) {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	for _, res := range results {
		if !res.Found {
			fmt.Fprintf(errOut, "%s: %s\n", res.File, res.Error)
			continue
		}
		if len(results) == 1 {
			fmt.Fprintln(out, res.Text)
			continue
		}
		fmt.Fprintf(out, "%s: %s\n", res.File, res.Text)
	}
}
