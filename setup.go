package main

import (
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"callview/config"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactively write config.yaml",
	Run: func(cmd *cobra.Command, args []string) {
		RunSetup()
	},
}

func RunSetup() {
	log.Info("Starting callview setup...")

	port := strconv.Itoa(viper.GetInt(config.KeyWebPort))
	publicKey := viper.GetString(config.KeyVapiPublicKey)
	assistantID := viper.GetString(config.KeyVapiAssistantID)
	serviceAccountFile := viper.GetString(config.KeyServiceAccountFile)
	calendarID := viper.GetString(config.KeyCalendarID)
	timeZone := viper.GetString(config.KeyTimeZone)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("HTTP port").
				Validate(func(s string) error {
					_, err := strconv.Atoi(s)
					return err
				}).
				Value(&port),
			huh.NewInput().
				Title("Enter your Vapi public key").
				Value(&publicKey),
			huh.NewInput().
				Title("Enter your Vapi assistant ID").
				Value(&assistantID),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Google service account key file").
				Value(&serviceAccountFile),
			huh.NewInput().
				Title("Google Calendar ID").
				Value(&calendarID),
			huh.NewInput().
				Title("Time zone for booked events").
				Value(&timeZone),
		),
	)

	if err := form.Run(); err != nil {
		log.Fatal("Error during setup", "error", err)
	}

	portNumber, _ := strconv.Atoi(port)
	viper.Set(config.KeyWebPort, portNumber)
	viper.Set(config.KeyVapiPublicKey, publicKey)
	viper.Set(config.KeyVapiAssistantID, assistantID)
	viper.Set(config.KeyServiceAccountFile, serviceAccountFile)
	viper.Set(config.KeyCalendarID, calendarID)
	viper.Set(config.KeyTimeZone, timeZone)

	if err := viper.WriteConfigAs("config.yaml"); err != nil {
		log.Fatal("Error saving config.yaml", "error", err)
	}

	log.Info("Setup completed successfully!", "file", "config.yaml")
}
