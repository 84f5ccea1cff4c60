package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/moasaja/moasaja/api"
	"github.com/moasaja/moasaja/config"
	"github.com/moasaja/moasaja/filter"
	"github.com/moasaja/moasaja/storage"
	"github.com/moasaja/moasaja/terminal"
)

var (
	cfgFile   string
	cfg       *config.Config
	logger    zerolog.Logger
	client    *api.Client
	store     storage.Store
	filters   *filter.Manager
	formatter = terminal.NewConsoleFormatter()
	notifier  *terminal.Notifier

	// Global flags
	profile    string
	baseURL    string
	quiet      bool
	jsonOutput bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "moasaja",
	Short: "Command line client for the moasaja group-buying marketplace",
	Long: `moasaja lets you browse group-buying posts, join them, talk to other
participants and follow your matching history from the terminal.

The session token and cached profile are kept in local storage (a JSON file
under ~/.moasaja by default), so a login survives between invocations.`,
	PersistentPreRunE: initializeApp,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// API failures have already been reported by the notifier
		var apiErr *api.Error
		if !errors.As(err, &apiErr) {
			fmt.Fprintln(os.Stderr, err)
		}
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&profile, "profile", "", "keep session state under a separate profile")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "backend origin for this invocation")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only print errors and results")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
}

// loadConfig loads the configuration and sets up the logger
func loadConfig(cmd *cobra.Command) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Command line overrides
	if cmd.Flags().Changed("profile") {
		cfg.Profile = profile
	}
	if cmd.Flags().Changed("base-url") {
		cfg.API.BaseURL = baseURL
	}
	if cmd.Flags().Changed("quiet") {
		cfg.Quiet = quiet
	}

	logger = setupLogger(cfg.Logging)
	return nil
}

// initializeConfig is used by commands that don't talk to the backend
func initializeConfig(cmd *cobra.Command, args []string) error {
	return loadConfig(cmd)
}

// initializeApp initializes the configuration, storage and API client
func initializeApp(cmd *cobra.Command, args []string) error {
	if err := loadConfig(cmd); err != nil {
		return err
	}

	base, err := storage.Open(cfg.StorageOptions())
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	store = storage.Scoped(base, cfg.Profile)

	notifier = terminal.NewNotifier(cfg.Quiet)

	opts := []api.Option{
		api.WithHost(cfg.API.Host),
		api.WithDefaultURL(cfg.API.DefaultURL),
		api.WithDefaultTimeout(cfg.API.Timeout),
		api.WithDefaultRetries(cfg.API.Retries),
		api.WithNotifier(notifier),
		api.WithNavigator(terminal.NewNavigator()),
		// a CLI has nothing to show while waiting
		api.WithRedirectDelay(0),
	}
	if cfg.API.BaseURL != "" {
		opts = append(opts, api.WithBaseURL(cfg.API.BaseURL))
	}
	if !cfg.Quiet && !jsonOutput {
		spinner := terminal.NewSpinner()
		notifier.PauseSpinner(spinner)
		opts = append(opts, api.WithLoading(spinner))
	}

	client, err = api.NewClient(store, logger, opts...)
	if err != nil {
		return fmt.Errorf("failed to create API client: %w", err)
	}

	filters = filter.NewManager()
	if err := filters.RegisterFilters(cfg.Filter); err != nil {
		return fmt.Errorf("invalid filter preset: %w", err)
	}

	logger.Debug().
		Str("base_url", client.BaseURL()).
		Str("profile", cfg.Profile).
		Str("storage", cfg.Storage.Driver).
		Msg("Client initialized")

	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.WarnLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Console format, colored only on a terminal
	fd := os.Stderr.Fd()
	tty := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !tty,
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// render prints v as JSON when --json is set, otherwise the formatted text
func render(v any, text func() string) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	fmt.Print(text())
	return nil
}

// success reports a completed action
func success(result *api.ActionResult, fallback string) error {
	if jsonOutput {
		return render(result, nil)
	}
	msg := fallback
	if result != nil && result.Message != "" {
		msg = result.Message
	}
	notifier.Success(msg)
	return nil
}
