// Package cli implements the flyerdates command line.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ironsheep/flyer-dates/internal/cache"
	"github.com/ironsheep/flyer-dates/internal/config"
	"github.com/ironsheep/flyer-dates/internal/extract"
	"github.com/ironsheep/flyer-dates/internal/ocr"
)

// BuildInfo is stamped into the binary by ldflags.
type BuildInfo struct {
	Version   string
	BuildTime string
	GitCommit string
}

var (
	cfgFile   string
	buildInfo = BuildInfo{Version: "dev", BuildTime: "unknown", GitCommit: "unknown"}

	// logger is configured before any subcommand runs.
	logger = slog.Default()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "flyerdates",
	Short: "Extract candidate event dates from flyer images",
	Long: `flyerdates runs OCR over flyer images and reports candidate date components.

Each image is recognized as-is and after five fixed thresholds. The combined
text is scanned for day names, month names, day-of-month numbers, years and
three-number dates. Candidates are not validated or resolved into one date.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = newLogger(viper.GetString("log.level"), cmd.ErrOrStderr())
		slog.SetDefault(logger)
		if f := viper.ConfigFileUsed(); f != "" {
			logger.Debug("using config file", "path", f)
		}
		return nil
	},
}

// Execute runs the root command
func Execute(info BuildInfo) error {
	if info.Version != "" {
		buildInfo = info
	}
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "flyerdates %s\n", buildInfo.Version)
		fmt.Fprintf(out, "  Build time: %s\n", buildInfo.BuildTime)
		fmt.Fprintf(out, "  Git commit: %s\n", buildInfo.GitCommit)

		info := ocr.NewEngine(ocr.Config{}).Info()
		if info.Available {
			fmt.Fprintf(out, "  Tesseract:  %s\n", info.Version)
		} else {
			fmt.Fprintf(out, "  Tesseract:  not available\n")
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.flyerdates/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	config.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(filepath.Join(home, ".flyerdates"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	config.ConfigureEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
		}
	}
}

// newLogger builds a text logger writing to w at the named level.
func newLogger(level string, w io.Writer) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn", "warning":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l}))
}

// loadConfig resolves the effective configuration.
func loadConfig() (config.Config, error) {
	return config.Load(viper.GetViper())
}

// newExtractor wires the OCR engine, its cache and the extractor.
func newExtractor(cfg config.Config) *extract.Extractor {
	opts := []ocr.Option{ocr.WithLogger(logger)}
	if cfg.Cache.Enabled {
		c := cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
		opts = append(opts, ocr.WithCache(c, 0))
	}

	engine := ocr.NewEngine(ocr.Config{
		Language:       cfg.OCR.Language,
		TessdataPrefix: cfg.OCR.TessdataPrefix,
		PageSegMode:    cfg.OCR.PageSegMode,
		RateLimit:      cfg.OCR.RateLimit,
		Burst:          cfg.OCR.Burst,
	}, opts...)

	return extract.New(engine, logger)
}
