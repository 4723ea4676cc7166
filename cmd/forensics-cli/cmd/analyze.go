package cmd

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/kschiffer/imgforensics/pkg/forensics/detect"
	"github.com/kschiffer/imgforensics/pkg/forensics/exifscan"
)

// NewAnalyzeCmd creates the analyze cobra command.
func NewAnalyzeCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the forensic analyzer battery against an image",
		Long:  "Decodes an image, runs every L1 analyzer and the L2 fusion detector, and prints a human-readable summary of any detected manipulations.",
		RunE: func(cmd *cobra.Command, args []string) error {
			filePath, _ := cmd.Flags().GetString("file")
			overlayOut, _ := cmd.Flags().GetString("overlay-out")

			if filePath == "" && len(args) > 0 {
				filePath = args[0]
			}
			if filePath == "" {
				return fmt.Errorf("file path is required. Use --file flag or provide as argument")
			}

			return runAnalyze(ctx, filePath, overlayOut)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringP("file", "f", "", "image file path to analyze")
	pf.String("overlay-out", "", "optional path to write the annotated overlay image (format inferred from extension)")

	return cmd
}

func runAnalyze(ctx context.Context, filePath, overlayOut string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open error: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("decode error: %w", err)
	}
	slog.InfoContext(ctx, "decoded image", "path", filePath, "format", format)

	cfg := detect.DefaultAnalysisConfig()
	result, err := detect.Detect(img, cfg)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	meta, err := exifscan.Extract(filePath)
	if err != nil {
		slog.WarnContext(ctx, "EXIF extraction failed, continuing without metadata", "error", err)
	}

	fmt.Printf("=== %s ===\n", filePath)
	fmt.Printf("Overall score: %.3f (%s)\n", result.OverallScore, result.OverallBucket)
	fmt.Printf("Manipulated: %v\n", result.IsManipulated)
	fmt.Printf("Findings: %d\n\n", len(result.Manipulations))

	for i, m := range result.Manipulations {
		fmt.Printf("[%d] %s at (%d,%d %dx%d) confidence=%.3f (%s)\n",
			i+1, m.Kind, m.Region.X, m.Region.Y, m.Region.Width, m.Region.Height,
			m.Confidence, m.ConfidenceBucket)
		fmt.Printf("    %s\n", m.Description)
		if len(m.Evidence) > 0 {
			fmt.Printf("    evidence: %v\n", m.Evidence)
		}
	}

	if meta != nil && len(meta.SuspiciousIndicators) > 0 {
		fmt.Println("\nMetadata indicators:")
		for _, s := range meta.SuspiciousIndicators {
			fmt.Printf("  - %s\n", s)
		}
	}

	if overlayOut != "" {
		if err := writeOverlay(overlayOut, result.OverlayImage); err != nil {
			return fmt.Errorf("failed to write overlay: %w", err)
		}
		fmt.Printf("\nOverlay written to %s\n", overlayOut)
	}

	return nil
}
