package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shopfront/internal/auth"
	"shopfront/internal/catalog"
	"shopfront/internal/config"
	"shopfront/internal/database"
	"shopfront/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "shopctl",
		Short: "Operator tooling for the shopfront API",
		Long: `shopctl applies the database schema, imports catalog feeds and mints
bearer tokens for local testing.

Database settings come from the same DB_* environment variables as the API.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "console", "Log format (json or console)")

	cmd.AddCommand(
		newMigrateCmd(opts),
		newDBCheckCmd(opts),
		newImportCatalogCmd(opts),
		newIssueTokenCmd(),
	)

	return cmd
}

func (o *rootOptions) logger() zerolog.Logger {
	return config.NewLogger(config.LoggerConfig{Level: o.logLevel, Format: o.logFormat})
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func openPool(ctx context.Context, logger zerolog.Logger) (*pgxpool.Pool, error) {
	dbCfg, err := config.LoadDatabase()
	if err != nil {
		return nil, err
	}
	return database.NewPool(ctx, dbCfg, logger)
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Long: `Apply the embedded schema. The schema is idempotent, so running it
against an up-to-date database is a no-op.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			logger := opts.logger()
			pool, err := openPool(ctx, logger)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := database.Migrate(ctx, pool, logger); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema applied")
			return nil
		},
	}
}

func newDBCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "db-check",
		Short: "Verify the database connection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			pool, err := openPool(ctx, opts.logger())
			if err != nil {
				return err
			}
			defer pool.Close()

			var dbName, version string
			if err := pool.QueryRow(ctx, "SELECT current_database(), current_setting('server_version')").Scan(&dbName, &version); err != nil {
				return fmt.Errorf("query failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "connected to %s (PostgreSQL %s)\n", dbName, version)
			return nil
		},
	}
}

func newImportCatalogCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import-catalog FEED [FEED...]",
		Short: "Import gzipped CSV catalog feeds",
		Long: `Load one or more gzipped CSV feeds (id,name,category,price,stock,status)
and upsert them into the catalog. When several feeds list the same product,
the later feed wins.

With S3_ENABLED=true each feed is first fetched from S3_BUCKET under
S3_PREFIX, falling back to the local path.

Examples:
  shopctl import-catalog data/catalog/base.csv.gz
  shopctl import-catalog base.csv.gz overrides.csv.gz`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			logger := opts.logger()
			s3Cfg, err := config.LoadS3()
			if err != nil {
				return err
			}

			pool, err := openPool(ctx, logger)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := database.Migrate(ctx, pool, logger); err != nil {
				return err
			}

			importer := catalog.NewImporter(
				catalog.NewLoaderFromConfig(ctx, s3Cfg, logger),
				repository.NewProductRepository(pool, logger),
				logger,
			)
			result, err := importer.Import(ctx, args)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
}

func newIssueTokenCmd() *cobra.Command {
	var (
		subject string
		role    string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "issue-token",
		Short: "Print a signed bearer token for local testing",
		Long: `Sign a token with AUTH_JWT_SECRET. Production tokens come from the
identity provider; this command exists for development and smoke tests.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			authCfg, err := config.LoadAuth()
			if err != nil {
				return err
			}

			r := auth.Role(role)
			if !r.Valid() {
				return fmt.Errorf("invalid role %q (must be user or admin)", role)
			}
			if subject == "" {
				return fmt.Errorf("--subject is required")
			}
			if ttl <= 0 {
				ttl = authCfg.TokenTTL
			}

			token, err := auth.IssueToken(authCfg, auth.Principal{ID: subject, Role: r}, ttl)
			if err != nil {
				return fmt.Errorf("failed to sign token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "User id placed in the sub claim")
	cmd.Flags().StringVar(&role, "role", string(auth.RoleUser), "Role claim (user or admin)")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (defaults to AUTH_TOKEN_TTL)")

	return cmd
}
