package config

import (
	"testing"

	"github.com/spf13/viper"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	s := Load(v)
	if s.WebPort != 8000 {
		t.Errorf("WebPort = %d, want 8000", s.WebPort)
	}
	if s.Calendar.CalendarID != "primary" {
		t.Errorf("CalendarID = %q, want primary", s.Calendar.CalendarID)
	}
	if s.Calendar.TimeZone != "UTC" {
		t.Errorf("TimeZone = %q, want UTC", s.Calendar.TimeZone)
	}
	if s.LogFile != "callview.log" {
		t.Errorf("LogFile = %q", s.LogFile)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("WEB_PORT", "9100")
	t.Setenv("GOOGLE_CALENDAR_ID", "team@example.com")
	t.Setenv("VAPI_PUBLIC_KEY", "pk_test")

	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()

	s := Load(v)
	if s.WebPort != 9100 {
		t.Errorf("WebPort = %d, want 9100", s.WebPort)
	}
	if s.Calendar.CalendarID != "team@example.com" {
		t.Errorf("CalendarID = %q", s.Calendar.CalendarID)
	}
	if s.VapiPublicKey != "pk_test" {
		t.Errorf("VapiPublicKey = %q", s.VapiPublicKey)
	}
}
