// Command persisto is an operator CLI for the persisto engine: seeding a
// starter config file, verifying a data source is reachable, and applying
// its connection-level PRAGMAs.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/syssam/persisto/config"
)

var configPath string

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "persisto",
		Short: "Operate a persisto-backed data store",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "persisto.toml", "path to the engine's TOML config file")
	root.AddCommand(initConfigCmd(), pingCmd())
	return root
}

func initConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-config",
		Short: "Write a starter TOML config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteDefault(configPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", configPath)
			return nil
		},
	}
}

func pingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Open the configured data source and apply its PRAGMAs",
		RunE: func(cmd *cobra.Command, args []string) error {
			loader, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cfg := loader.Current()

			driverName := cfg.Dialect
			if cfg.Dialect == "sqlite3" {
				driverName = "sqlite"
			}
			db, err := sql.Open(driverName, cfg.DataSource)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := context.Background()
			if err := db.PingContext(ctx); err != nil {
				return err
			}
			for _, stmt := range cfg.PragmaStatements() {
				if _, err := db.ExecContext(ctx, stmt); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}
