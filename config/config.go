package config

import (
	"github.com/spf13/viper"

	"callview/calendar"
)

// Keys read from config.yaml, the environment and the overrides table.
const (
	KeyWebPort            = "web_port"
	KeyLogLevel           = "log_level"
	KeyLogFile            = "log_file"
	KeyDatabaseURL        = "database_url"
	KeyVapiPublicKey      = "vapi_public_key"
	KeyVapiAssistantID    = "vapi_assistant_id"
	KeyServiceAccountJSON = "google_service_account_json"
	KeyServiceAccountFile = "google_service_account_file"
	KeyCalendarID         = "google_calendar_id"
	KeyTimeZone           = "timezone"
)

type Settings struct {
	WebPort         int
	LogLevel        string
	LogFile         string
	DatabaseURL     string
	VapiPublicKey   string
	VapiAssistantID string
	Calendar        calendar.Config
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyWebPort, 8000)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFile, "callview.log")
	v.SetDefault(KeyCalendarID, "primary")
	v.SetDefault(KeyTimeZone, "UTC")
}

func Load(v *viper.Viper) Settings {
	return Settings{
		WebPort:         v.GetInt(KeyWebPort),
		LogLevel:        v.GetString(KeyLogLevel),
		LogFile:         v.GetString(KeyLogFile),
		DatabaseURL:     v.GetString(KeyDatabaseURL),
		VapiPublicKey:   v.GetString(KeyVapiPublicKey),
		VapiAssistantID: v.GetString(KeyVapiAssistantID),
		Calendar: calendar.Config{
			ServiceAccountJSON: v.GetString(KeyServiceAccountJSON),
			ServiceAccountFile: v.GetString(KeyServiceAccountFile),
			CalendarID:         v.GetString(KeyCalendarID),
			TimeZone:           v.GetString(KeyTimeZone),
		},
	}
}
