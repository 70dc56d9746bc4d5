package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ironsheep/flyer-dates/internal/batch"
	"github.com/ironsheep/flyer-dates/internal/config"
	"github.com/ironsheep/flyer-dates/internal/report"
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract [dir]",
	Short: "Extract candidate dates from every flyer in a directory",
	Long: `Extract runs OCR over every supported image directly inside dir and
prints the candidate date components found in each.

Example:
  flyerdates extract ./flyers
  flyerdates extract ./flyers --workers 4 --format json --output dates.json
  flyerdates extract ./flyers --xlsx dates.xlsx --sqlite dates.db
  flyerdates extract ./flyers --show-variants --fail-fast`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	f := extractCmd.Flags()
	f.Int("workers", 1, "number of images processed concurrently")
	f.Bool("fail-fast", false, "stop at the first image that fails")
	f.Duration("timeout", 0, "total timeout for the run (0 = none)")
	f.String("format", "text", "report format (text, json, yaml)")
	f.StringP("output", "o", "", "write the report to a file instead of stdout")
	f.String("xlsx", "", "also write an XLSX workbook to this path")
	f.String("sqlite", "", "also store the report in this SQLite database")
	f.Bool("show-variants", false, "include the OCR text of every variant")
	f.Bool("no-cache", false, "disable the OCR text cache")
	f.String("lang", "eng", "Tesseract language")
	f.Float64("rate-limit", 0, "maximum Tesseract calls per second (0 = unlimited)")
	f.Bool("include-hidden", false, "process dot files")

	bind := map[string]string{
		"concurrency.workers":   "workers",
		"concurrency.fail_fast": "fail-fast",
		"concurrency.timeout":   "timeout",
		"output.format":         "format",
		"output.file":           "output",
		"output.xlsx":           "xlsx",
		"output.sqlite":         "sqlite",
		"output.show_variants":  "show-variants",
		"ocr.language":          "lang",
		"ocr.rate_limit":        "rate-limit",
	}
	for key, flag := range bind {
		_ = viper.BindPFlag(key, f.Lookup(flag))
	}
}

func runExtract(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		viper.Set("input.dir", args[0])
	}
	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		viper.Set("cache.enabled", false)
	}
	if hidden, _ := cmd.Flags().GetBool("include-hidden"); hidden {
		viper.Set("input.skip_hidden", false)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.Concurrency.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Concurrency.Timeout)
		defer cancel()
	}

	stderr := cmd.ErrOrStderr()
	printBanner(stderr, cfg)

	driver := batch.NewDriver(newExtractor(cfg), batch.Options{
		Workers:    cfg.Concurrency.Workers,
		FailFast:   cfg.Concurrency.FailFast,
		Extensions: cfg.Input.Extensions,
		SkipHidden: cfg.Input.SkipHidden,
	}, logger)
	driver.SetProgress(stderr)

	items, stats, runErr := driver.RunDir(ctx, cfg.Input.Dir)
	if errors.Is(runErr, batch.ErrNoImages) {
		return fmt.Errorf("%w in %s", runErr, cfg.Input.Dir)
	}
	if items == nil && runErr != nil {
		return runErr
	}

	r := report.New(cfg.Input.Dir, items, stats, cfg.Output.ShowVariants)
	if err := writeReports(ctx, cmd.OutOrStdout(), r, cfg.Output); err != nil {
		return err
	}

	fmt.Fprintf(stderr, "\n  Total: %d  Succeeded: %d  Failed: %d  (%v)\n\n",
		stats.Total, stats.Succeeded, stats.Failed, stats.Duration.Round(time.Millisecond))

	return runErr
}

// writeReports sends r to every configured sink.
func writeReports(ctx context.Context, stdout io.Writer, r *report.Report, out config.OutputConfig) (err error) {
	w := stdout
	if out.File != "" {
		if dir := filepath.Dir(out.File); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
		}
		f, err := os.Create(out.File)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("close output file: %w", closeErr)
			}
		}()
		w = f
	}

	if err := report.Write(w, r, out.Format); err != nil {
		return err
	}

	if out.XLSX != "" {
		if err := report.WriteXLSXFile(out.XLSX, r); err != nil {
			return err
		}
		logger.Info("xlsx written", "path", out.XLSX)
	}

	if out.SQLite != "" {
		store, err := report.OpenSQLite(ctx, out.SQLite, logger)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		if err := store.Save(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func printBanner(w io.Writer, cfg config.Config) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "  Flyer Date Extraction\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Input dir:  %s\n", cfg.Input.Dir)
	fmt.Fprintf(w, "  Workers:    %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(w, "  Language:   %s\n", cfg.OCR.Language)
	fmt.Fprintf(w, "  Cache:      %v\n", cfg.Cache.Enabled)
	if cfg.Concurrency.Timeout > 0 {
		fmt.Fprintf(w, "  Timeout:    %v\n", cfg.Concurrency.Timeout)
	}
	fmt.Fprintf(w, "\n")
}
