package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ironsheep/flyer-dates/internal/corpus"
	"github.com/ironsheep/flyer-dates/internal/extract"
	"github.com/ironsheep/flyer-dates/internal/report"
)

// scanTextCmd runs the detectors over text that has already been recognized.
var scanTextCmd = &cobra.Command{
	Use:   "scan-text [file]",
	Short: "Scan plain text for candidate dates without OCR",
	Long: `Scan-text reads text from a file, or from stdin when no file or "-" is
given, and prints the candidate date components it contains.

Example:
  flyerdates scan-text ocr.txt
  echo "Friday 15 March 2024" | flyerdates scan-text --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScanText,
}

func init() {
	rootCmd.AddCommand(scanTextCmd)
	scanTextCmd.Flags().String("format", "", "report format (text, json, yaml); defaults to output.format")
}

func runScanText(cmd *cobra.Command, args []string) error {
	var (
		data []byte
		err  error
		id   = "stdin"
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		id = filepath.Base(args[0])
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("read text: %w", err)
	}

	format, _ := cmd.Flags().GetString("format")
	if format == "" {
		format = viper.GetString("output.format")
	}

	res := extract.Scan(corpus.New(id, string(data)))
	return report.Write(cmd.OutOrStdout(), report.FromResult(res, nil, false), format)
}
