package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"callview/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and write configuration overrides stored in Postgres",
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a stored override",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withStore(func(ctx context.Context, store *config.Store) error {
			value, err := store.Get(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Println(value)
			return nil
		})
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Store an override, applied on the next start",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		withStore(func(ctx context.Context, store *config.Store) error {
			return store.Set(ctx, args[0], args[1])
		})
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}

func withStore(fn func(ctx context.Context, store *config.Store) error) {
	loggers := createLoggers(false)
	defer loggers.Close()

	databaseURL := viper.GetString(config.KeyDatabaseURL)
	if databaseURL == "" {
		loggers.Main.Fatal("database_url is not set")
	}

	ctx := context.Background()
	store, err := config.OpenStore(ctx, databaseURL)
	if err != nil {
		loggers.Main.Fatal("open config store", "error", err)
	}
	defer store.Close()

	if err := fn(ctx, store); err != nil {
		loggers.Main.Fatal("config", "error", err)
	}
}
