package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/lia-server/events"
	fakefavoriterepo "github.com/jrsteele09/lia-server/favorites/repofake"
	"github.com/jrsteele09/lia-server/internal/config"
	"github.com/jrsteele09/lia-server/internal/sqlstore"
	fakeinviterepo "github.com/jrsteele09/lia-server/invites/repofake"
	fakelistrepo "github.com/jrsteele09/lia-server/lists/repofake"
	"github.com/jrsteele09/lia-server/server"
	fakesessionrepo "github.com/jrsteele09/lia-server/sessions/repofakes"
	fakeuserrepo "github.com/jrsteele09/lia-server/users/repofake"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var rootCmd = &cobra.Command{
	Use:   "lia-server",
	Short: "Shared grocery and recipe list server",
	Long: `lia-server hosts shared grocery and recipe lists over HTTP.

Lists are shared through invite links and kept in sync between clients
with server-sent events.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file (default: $CONFIG_FILE)")
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE:  runServe,
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE:  runMigrate,
	}
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	c, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	setupLogging(c)
	return c, nil
}

// setupLogging writes human readable logs in DEV and JSON lines elsewhere.
func setupLogging(c config.Config) {
	var out io.Writer = os.Stderr
	if c.GetEnv() == "DEV" {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Str("app", c.GetAppName()).Logger()

	level, err := zerolog.ParseLevel(strings.ToLower(c.GetLogLevel()))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

// openRepos returns the repositories selected by the store driver and a
// function releasing whatever they hold open.
func openRepos(ctx context.Context, c config.Config) (server.Repos, func() error, error) {
	switch driver := c.GetStoreDriver(); driver {
	case config.StoreDriverMemory:
		log.Warn().Msg("using the in-memory store, nothing is persisted")
		return server.Repos{
			Users:     fakeuserrepo.NewFakeUserRepo(),
			Sessions:  fakesessionrepo.NewFakeSessionRepo(),
			Lists:     fakelistrepo.NewFakeListRepo(),
			Items:     fakelistrepo.NewFakeItemRepo(),
			Invites:   fakeinviterepo.NewFakeInviteRepo(),
			Joined:    fakeinviterepo.NewFakeJoinedRepo(),
			Favorites: fakefavoriterepo.NewFakeFavoriteRepo(),
		}, func() error { return nil }, nil
	case config.StoreDriverSQLite, config.StoreDriverPostgres:
		store, err := openStore(ctx, c)
		if err != nil {
			return server.Repos{}, nil, err
		}
		return server.Repos{
			Users:     store.Users(),
			Sessions:  store.Sessions(),
			Lists:     store.Lists(),
			Items:     store.Items(),
			Invites:   store.Invites(),
			Joined:    store.Joined(),
			Favorites: store.Favorites(),
		}, store.Close, nil
	default:
		return server.Repos{}, nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

func openStore(ctx context.Context, c config.Config) (*sqlstore.Store, error) {
	store, err := sqlstore.Open(ctx, sqlstore.Dialect(c.GetStoreDriver()), c.GetStoreDSN())
	if err != nil {
		return nil, fmt.Errorf("sqlstore.Open: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("store.Migrate: %w", err)
	}
	return store, nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	c, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if c.GetStoreDriver() == config.StoreDriverMemory {
		return errors.New("the memory store has no migrations")
	}
	store, err := openStore(cmd.Context(), c)
	if err != nil {
		return err
	}
	log.Info().Str("driver", c.GetStoreDriver()).Msg("migrations applied")
	return store.Close()
}

func runServe(cmd *cobra.Command, _ []string) error {
	c, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	displayAppname(c.GetAppName())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, closeRepos, err := openRepos(ctx, c)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeRepos(); err != nil {
			log.Error().Err(err).Msg("closing store")
		}
	}()

	bus, err := events.NewMemBus(events.MemBusConfig{
		ReplaySize:           c.GetEventsReplaySize(),
		SubscriberBufferSize: c.GetEventsBufferSize(),
	})
	if err != nil {
		return fmt.Errorf("events.NewMemBus: %w", err)
	}
	defer func() { _ = bus.Close() }()

	handler, err := server.New(ctx, c, repos, bus)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("Server listening on %s", httpServer.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down")
		// Event streams never finish on their own, so closing the bus ends them
		// before Shutdown waits on open connections.
		_ = bus.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server.Shutdown: %w", err)
		}
		log.Info().Msg("Server stopped")
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server.ListenAndServe: %w", err)
		}
		return nil
	}
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
