package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"shopfront/account"
	"shopfront/config"
	"shopfront/database"
	"shopfront/loader"
	"shopfront/model"
	"shopfront/session"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

type flagOverrides struct {
	addr, dbDriver, dbDSN string
}

// apply はコマンドラインで指定されたフラグだけを設定に反映します。
func (o flagOverrides) apply(cmd *cobra.Command) {
	cfg := config.GetConfig()
	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.Addr = o.addr
	}
	if flags.Changed("db-driver") {
		cfg.DatabaseDriver = o.dbDriver
	}
	if flags.Changed("db-dsn") {
		cfg.DatabaseDSN = o.dbDSN
	}
	config.SetConfig(cfg)
}

func newRootCmd() *cobra.Command {
	var overrides flagOverrides
	root := &cobra.Command{
		Use:           "shopfront",
		Short:         "Small ordering application",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.LoadConfig(); err != nil {
				log.Printf("WARN: Failed to load config file: %v. Using defaults.", err)
			}
			overrides.apply(cmd)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&config.ConfigFilePath, "config", config.ConfigFilePath, "path to the JSON config file")
	root.PersistentFlags().StringVar(&overrides.addr, "addr", "", "listen address (overrides config)")
	root.PersistentFlags().StringVar(&overrides.dbDriver, "db-driver", "", "database driver: sqlite3 or pgx")
	root.PersistentFlags().StringVar(&overrides.dbDSN, "db-dsn", "", "database DSN (overrides config)")

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newUserCmd(),
		newProductsCmd(),
		newConfigCmd(),
	)
	return root
}

// openDatabase は設定に従って接続し、スキーマを適用します。
func openDatabase(seed bool) (*sqlx.DB, error) {
	cfg := config.GetConfig()
	log.Println("Connecting to database...")
	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	log.Println("Database connection successful.")

	seedPath := ""
	if seed {
		seedPath = cfg.ProductSeedPath
	}
	if err := loader.InitDatabase(db, seedPath, cfg.ProductSeedCharset); err != nil {
		db.Close()
		return nil, fmt.Errorf("database initialization failed: %w", err)
	}
	log.Println("Database initialization complete.")
	return db, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDatabase(true)
			if err != nil {
				return err
			}
			defer db.Close()

			cfg := config.GetConfig()
			sm := session.NewManager(time.Duration(cfg.SessionLifetimeHour) * time.Hour)

			srv := &http.Server{
				Addr:              cfg.Addr,
				Handler:           newHandler(db, sm),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				log.Printf("Starting server on %s", cfg.Addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			log.Println("Shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func newMigrateCmd() *cobra.Command {
	var noSeed bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the schema and load the product seed file if the catalogue is empty",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDatabase(!noSeed)
			if err != nil {
				return err
			}
			return db.Close()
		},
	}
	cmd.Flags().BoolVar(&noSeed, "no-seed", false, "skip loading the product seed file")
	return cmd
}

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	var in account.RegisterInput
	var admin bool
	create := &cobra.Command{
		Use:   "create",
		Short: "Register a user account",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDatabase(false)
			if err != nil {
				return err
			}
			defer db.Close()

			role := model.RoleUser
			if admin {
				role = model.RoleAdmin
			}
			u, err := account.RegisterAs(db, in, role)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %q (id %d, role %s)\n", u.Username, u.ID, u.Role)
			return nil
		},
	}
	create.Flags().StringVar(&in.Username, "username", "", "login name")
	create.Flags().StringVar(&in.Password, "password", "", "password")
	create.Flags().StringVar(&in.Email, "email", "", "email address")
	create.Flags().StringVar(&in.BirthDate, "birth-date", "", "birth date (YYYY-MM-DD)")
	create.Flags().StringVar(&in.Street, "street", "", "street")
	create.Flags().StringVar(&in.City, "city", "", "city")
	create.Flags().StringVar(&in.State, "state", "", "state")
	create.Flags().StringVar(&in.PostalCode, "postal-code", "", "postal code")
	create.Flags().StringVar(&in.Phone, "phone", "", "phone number")
	create.Flags().BoolVar(&admin, "admin", false, "grant the admin role")
	for _, name := range []string{"username", "password", "email", "birth-date"} {
		_ = create.MarkFlagRequired(name)
	}

	promote := &cobra.Command{
		Use:   "promote <username>",
		Short: "Grant the admin role to an existing user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDatabase(false)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := account.SetRole(db, args[0], model.RoleAdmin); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user %q is now admin\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(create, promote)
	return cmd
}

func newProductsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Manage the product catalogue",
	}

	var charset string
	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import products from a CSV file (name,price,description)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDatabase(false)
			if err != nil {
				return err
			}
			defer db.Close()

			result, err := loader.LoadProductsFile(db, args[0], charset)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d products, skipped %d rows\n", result.Inserted, len(result.Skipped))
			for _, s := range result.Skipped {
				fmt.Fprintf(cmd.OutOrStdout(), "  skipped: %s\n", s)
			}
			return nil
		},
	}
	importCmd.Flags().StringVar(&charset, "charset", "", "source encoding (e.g. shift_jis); default UTF-8")

	cmd.AddCommand(importCmd)
	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or write the config file",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.SaveConfig(config.GetConfig()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", config.ConfigFilePath)
			return nil
		},
	})
	return cmd
}
