package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/areena/areena"
	"github.com/s0up4200/areena/cache"
	"github.com/s0up4200/areena/config"
)

// Exit codes returned by Execute
const (
	exitError    = 1
	exitNotFound = 2
)

var (
	cfgFile string
	cfg     *config.Config
	logger  = zerolog.Nop()
	client  areena.API
	store   cache.Backend

	// Persistent flags
	verbosity    int
	quiet        bool
	jsonOutput   bool
	outputFormat string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "areena",
	Short: "Browse the Yle Areena catalog from the command line",
	Long: `areena is a CLI for the Yle Areena catalog API. It lists categories,
series, seasons, episodes and programs available on demand, caching every
response on disk so repeated queries stay off the network.`,
	PersistentPreRunE:  initializeApp,
	PersistentPostRunE: closeStore,
	SilenceUsage:       true,
	SilenceErrors:      true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		printError(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// printError reports err along with a hint when the API rejected the credentials
func printError(w io.Writer, err error) {
	fmt.Fprintln(w, "Error:", err)

	var respErr *areena.ResponseError
	if errors.As(err, &respErr) && respErr.IsUnauthorized() {
		fmt.Fprintln(w, "Hint: check appid and appkey in your configuration or the AREENA_APPID and AREENA_APPKEY variables.")
	}
}

func exitCode(err error) int {
	if errors.Is(err, areena.ErrNotFound) {
		return exitNotFound
	}
	return exitError
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./config.json or ./config.yaml)")
	flags.CountVarP(&verbosity, "verbose", "v", "increase log verbosity (-v debug, -vv trace)")
	flags.BoolVarP(&quiet, "quiet", "Q", false, "only log warnings and errors")
	flags.BoolVarP(&jsonOutput, "json", "J", false, "shorthand for --output json")
	flags.StringVarP(&outputFormat, "output", "o", formatText, "output format: text, json or yaml")
}

// initializeApp loads configuration and builds the catalog client
func initializeApp(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger = setupLogger(cfg.Logging, verbosity, quiet)

	if _, err := resolveFormat(); err != nil {
		return err
	}

	store, err = cache.Open(cfg.Cache.Backend, cfg.Cache.Dir, time.Now)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}

	client, err = newClient(cfg, store, logger)
	if err != nil {
		return fmt.Errorf("failed to create catalog client: %w", err)
	}

	logger.Debug().
		Str("cache", cfg.Cache.Dir).
		Str("backend", cfg.Cache.Backend).
		Msg("Catalog client ready")
	return nil
}

// newClient maps the configuration onto client options
func newClient(cfg *config.Config, store cache.Store, logger zerolog.Logger) (*areena.Client, error) {
	policy, ok := areena.ParseEmptyResultPolicy(cfg.Catalog.EmptyResult)
	if !ok {
		return nil, fmt.Errorf("%w: empty result policy %q", areena.ErrInvalidConfig, cfg.Catalog.EmptyResult)
	}

	return areena.NewClient(
		areena.Credentials{AppID: cfg.AppID, AppKey: cfg.AppKey},
		logger,
		areena.WithCacheStore(store),
		areena.WithTimeout(cfg.HTTP.Timeout),
		areena.WithRequestDelay(cfg.HTTP.RequestDelay),
		areena.WithPageSize(cfg.HTTP.PageSize),
		areena.WithTTLs(cfg.TTL.Catalog, cfg.TTL.Listing),
		areena.WithEmptyResultPolicy(policy),
	)
}

func closeStore(cmd *cobra.Command, args []string) error {
	if store == nil {
		return nil
	}
	err := store.Close()
	store = nil
	return err
}

// skipInit replaces the root pre-run for commands that need no configuration
func skipInit(cmd *cobra.Command, args []string) error {
	return nil
}
