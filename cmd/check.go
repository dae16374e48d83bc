package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/brogergvhs/mangaup/internal/anilist"
	"github.com/brogergvhs/mangaup/internal/config"
	"github.com/brogergvhs/mangaup/internal/tracker"
	"github.com/brogergvhs/mangaup/internal/ui"
	"github.com/brogergvhs/mangaup/internal/util"

	"github.com/spf13/cobra"
)

var (
	flagUser       string
	flagUserAgent  string
	flagCookie     string
	flagSpacingMs  int
	flagMaxRetries int
)

func init() {
	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Scrape the latest chapters and report which series you are behind on",
		RunE:  runCheck,
	}

	checkCmd.Flags().StringVar(&flagUser, "user", "", "AniList user name (overrides config)")
	checkCmd.Flags().StringVar(&flagUserAgent, "user-agent", "", "override User-Agent")
	checkCmd.Flags().StringVar(&flagCookie, "cookie", "", "cookie string, e.g. \"key=value; other=123\"")
	checkCmd.Flags().IntVar(&flagSpacingMs, "api-spacing-ms", 0, "minimum gap between AniList calls in milliseconds")
	checkCmd.Flags().IntVar(&flagMaxRetries, "api-max-retries", 0, "cap on 429 retries (0 = retry forever)")

	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cfg, usedPath, err := config.LoadMerged(config.Options{
		IgnoreConfig:  flagIgnoreConfig,
		Debug:         flagDebug,
		User:          flagUser,
		UserAgent:     flagUserAgent,
		Cookie:        flagCookie,
		APISpacingMs:  flagSpacingMs,
		APIMaxRetries: flagMaxRetries,
	})
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logSvc := ui.NewLogger(cfg.Debug)
	if usedPath != "" {
		fmt.Printf("Config file: %s\n", usedPath)
	}

	if len(cfg.Series) == 0 {
		fmt.Println("No series tracked. Run `mangaup add` to track one.")
		return nil
	}

	client, err := util.NewHTTPClient(util.HTTPClientOptions{
		Timeout:     30 * time.Second,
		UserAgent:   util.PickUserAgent(cfg.UserAgent),
		Cookie:      cfg.Cookie,
		DebugLogger: logSvc,
	})
	if err != nil {
		return err
	}

	api := anilist.New(client, anilist.Options{
		Spacing:     time.Duration(cfg.APISpacingMs) * time.Millisecond,
		MaxAttempts: cfg.APIMaxRetries,
		DiagPath:    "anilist_error.json",
		DebugLogger: logSvc,
	})

	t := tracker.New(cfg, client, api)

	progress := ui.NewScrapeProgress(len(cfg.Series))
	t.OnSeries = progress.StartSeries
	t.OnScraped = func(string) { progress.SeriesDone() }

	start := time.Now()
	report, err := t.Run(context.Background())
	progress.Close()
	if err != nil {
		return err
	}

	fmt.Println()
	report.Write(os.Stdout)
	fmt.Printf("\nChecked %d series in %s\n", len(cfg.Series), time.Since(start).Round(time.Second))

	return nil
}
