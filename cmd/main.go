package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"roster-scraper/extractor"
	"roster-scraper/internal/types"
	"roster-scraper/output"
)

const debugPageFile = "debug.html"

var rootCmd = &cobra.Command{
	Use:   "roster-scraper",
	Short: "Scrape a handball team roster into CSV",
	Long: `roster-scraper extracts the player roster of a team page.

Pages embedding a club details API are read through that API; any other
page is parsed from its markup (table rows or player links). Player photos
are downloaded at the highest resolution the host offers.

Examples:
  # Scrape to player_roster.csv and store photos under images/
  roster-scraper -u "https://www.eurohandball.com/en/ehf-champions-league/clubs/..."

  # JSON output, no photos
  roster-scraper -u "https://www.ihf.info/..." -o roster.json --no-images`,
	SilenceUsage: true,
	RunE:         runScrape,
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := types.DefaultConfig()

	flags := rootCmd.Flags()
	flags.StringP("url", "u", "", "team page URL (required)")
	flags.StringP("output", "o", "player_roster.csv", "output file path")
	flags.String("format", "", "output format: csv, json or yaml (default from output extension)")
	flags.Bool("compact", false, "write JSON on a single line")
	flags.String("indent", "  ", "indentation for pretty JSON")
	flags.String("images-dir", defaults.ImagesDir, "directory for downloaded player photos")
	flags.Bool("no-images", false, "skip photo download")
	flags.Bool("debug", false, "save the raw page to "+debugPageFile+" when no players are found")
	flags.Int("workers", defaults.ImageWorkers, "concurrent photo workers")
	flags.Bool("verbose", false, "enable verbose logging")
	flags.String("config", "", "config file (default ./.roster-scraper.yaml)")
	_ = rootCmd.MarkFlagRequired("url")

	_ = viper.BindPFlag("config", flags.Lookup("config"))
	_ = viper.BindPFlag("images_dir", flags.Lookup("images-dir"))
	_ = viper.BindPFlag("image_workers", flags.Lookup("workers"))

	viper.SetDefault("page_timeout", defaults.PageTimeout)
	viper.SetDefault("probe_timeout", defaults.ProbeTimeout)
	viper.SetDefault("download_timeout", defaults.DownloadTimeout)
	viper.SetDefault("download_images", defaults.DownloadImages)
	viper.SetDefault("min_image_size", defaults.MinImageSize)
	viper.SetDefault("jpeg_quality", defaults.JPEGQuality)
	viper.SetDefault("user_agent", defaults.UserAgent)
}

func initConfig() {
	// Load .env file if present
	_ = godotenv.Load()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(".roster-scraper")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("ROSTER")
	viper.AutomaticEnv()

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()
}

func newLogger(verbose bool) *logrus.Logger {
	logger := logrus.New()

	// Set timestamp format with milliseconds
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})

	// Set log level from LOG_LEVEL env if present
	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		if level, err := logrus.ParseLevel(levelStr); err == nil {
			logger.SetLevel(level)
		}
	} else if verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
	return logger
}

func loadConfig(cmd *cobra.Command) (*types.Config, error) {
	config := types.DefaultConfig()
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}

	if noImages, _ := cmd.Flags().GetBool("no-images"); noImages {
		config.DownloadImages = false
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func runScrape(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := newLogger(verbose)

	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	pageURL, _ := cmd.Flags().GetString("url")
	outputPath, _ := cmd.Flags().GetString("output")
	formatName, _ := cmd.Flags().GetString("format")
	debug, _ := cmd.Flags().GetBool("debug")
	compact, _ := cmd.Flags().GetBool("compact")
	indent, _ := cmd.Flags().GetString("indent")

	format, err := output.ParseFormat(formatName, outputPath)
	if err != nil {
		return err
	}

	var debugPath string
	if debug {
		debugPath = debugPageFile
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rosterExtractor := extractor.NewRosterExtractor(config, logger)
	defer rosterExtractor.Close()

	startTime := time.Now()
	result, err := rosterExtractor.ExtractToFile(ctx, pageURL, outputPath, format, debugPath,
		output.WithPretty(!compact), output.WithIndent(indent))
	if errors.Is(err, types.ErrNoData) {
		// An empty roster is reported, not treated as a failure
		logger.Warnf("No player data found on %s: %v", pageURL, err)
		return nil
	}
	if err != nil {
		return err
	}

	withImages := 0
	for _, player := range result.Players {
		if types.Value(player.ImagePath) != "" {
			withImages++
		}
	}

	logger.Infof("Extraction completed successfully in %v", time.Since(startTime))
	logger.Infof("Strategy: %s", result.Strategy)
	logger.Infof("Total players found: %d", len(result.Players))
	logger.Infof("Players with photos: %d", withImages)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
