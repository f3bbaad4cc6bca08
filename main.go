package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"callview/config"
	"callview/logging"
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(configCmd)

	rootCmd.PersistentFlags().Int("port", 8000, "HTTP server port")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-file", "callview.log", "Diagnostic log file, empty to disable")
	rootCmd.PersistentFlags().String("database-url", "", "Postgres URL for configuration overrides")

	viper.BindPFlag(config.KeyWebPort, rootCmd.PersistentFlags().Lookup("port"))
	viper.BindPFlag(config.KeyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag(config.KeyLogFile, rootCmd.PersistentFlags().Lookup("log-file"))
	viper.BindPFlag(
		config.KeyDatabaseURL,
		rootCmd.PersistentFlags().Lookup("database-url"),
	)
}

func initConfig() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Printf("Error reading .env file: %s\n", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()
	config.SetDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Printf("Error reading config file: %s\n", err)
		}
	}
}

var rootCmd = &cobra.Command{
	Use:   "callview",
	Short: "callview shows the live transcript of a voice agent call",
	Long: `callview receives call events from the Vapi voice SDK, either relayed by the
browser widget or posted to the assistant's server URL, and renders the live
transcript in a web page or in the terminal. It also answers the agent's
book_appointment tool calls with Google Calendar.`,
}

// loadSettings applies database overrides, when configured, on top of
// the file and environment configuration.
func loadSettings(ctx context.Context, logger *log.Logger) config.Settings {
	settings := config.Load(viper.GetViper())
	if settings.DatabaseURL == "" {
		return settings
	}

	store, err := config.OpenStore(ctx, settings.DatabaseURL)
	if err != nil {
		logger.Warn("config overrides unavailable", "error", err)
		return settings
	}
	defer store.Close()

	if err := store.Load(ctx, viper.GetViper()); err != nil {
		logger.Warn("config overrides unavailable", "error", err)
		return settings
	}
	return config.Load(viper.GetViper())
}

func createLoggers(quiet bool) *logging.Loggers {
	return logging.New(logging.Options{
		Level: viper.GetString(config.KeyLogLevel),
		File:  viper.GetString(config.KeyLogFile),
		Quiet: quiet,
	})
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
