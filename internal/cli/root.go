package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/giannis84/character-favourites/internal/database"
	"github.com/giannis84/character-favourites/internal/favourites"
	"github.com/giannis84/character-favourites/internal/logging"
	"github.com/spf13/cobra"
)

// StorageOptions selects the favourites storage the commands operate on.
type StorageOptions struct {
	Backend     string
	Path        string
	PostgresDSN string
	Key         string
	LogLevel    string
}

// NewRootCommand creates the favctl root command.
func NewRootCommand(version string) *cobra.Command {
	opts := &StorageOptions{}

	cmd := &cobra.Command{
		Use:           "favctl",
		Short:         "Inspect and edit persisted character favourites",
		Long:          "favctl reads and writes the favourites index the API service persists, using the same storage backends.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.Backend, "backend", envOr("STORAGE_BACKEND", database.BackendFile), "storage backend: memory, file, sqlite or postgres")
	flags.StringVar(&opts.Path, "path", envOr("STORAGE_PATH", "data"), "directory (file) or database path (sqlite)")
	flags.StringVar(&opts.PostgresDSN, "dsn", os.Getenv("POSTGRES_DSN"), "postgres connection string")
	flags.StringVar(&opts.Key, "key", envOr("STORAGE_KEY", favourites.DefaultStorageKey), "storage key of the favourites index")
	flags.StringVar(&opts.LogLevel, "log-level", "warn", "log level: debug, info, warn or error")

	cmd.AddCommand(
		newListCommand(opts),
		newUsersCommand(opts),
		newCountCommand(opts),
		newCheckCommand(opts),
		newToggleCommand(opts),
		newClearCommand(opts),
		newHashPasswordCommand(),
	)

	return cmd
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

// openStore opens the configured backend and loads the favourites index.
// The returned close function must be called when the command is done.
func openStore(cmd *cobra.Command, opts *StorageOptions) (*favourites.Store, func() error, error) {
	logger := logging.NewLogger(logging.Options{
		Writer: cmd.ErrOrStderr(),
		Level:  opts.LogLevel,
		Format: logging.FormatText,
	})

	repo, closeRepo, err := database.Open(database.StorageConfig{
		Backend:     opts.Backend,
		Path:        opts.Path,
		PostgresDSN: opts.PostgresDSN,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s storage: %w", opts.Backend, err)
	}

	ctx := logging.NewContextWithLogger(commandContext(cmd), logger)
	store := favourites.Load(ctx, repo, favourites.Options{Key: opts.Key, Logger: logger})

	logging.With(logger).Layer("cli").Str("backend", opts.Backend).Key(store.Key()).
		Int("users", len(store.Users())).Debug("favourites opened")
	return store, closeRepo, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func requireUser(user string) error {
	if user == "" {
		return fmt.Errorf("--user is required")
	}
	return nil
}
