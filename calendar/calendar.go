package calendar

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const DefaultDuration = 30 * time.Minute

var ErrNoCredentials = errors.New(
	"no Google credentials configured: set google_service_account_json or google_service_account_file",
)

type Config struct {
	ServiceAccountJSON string
	ServiceAccountFile string
	CalendarID         string
	TimeZone           string
}

type Appointment struct {
	Name  string
	Title string
	Start time.Time
	End   time.Time
}

type Booking struct {
	Summary string
	Start   string
	Link    string
}

type Client struct {
	service    *gcal.Service
	calendarID string
	timeZone   string
	logger     *log.Logger
}

func NewClient(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	opts := []option.ClientOption{option.WithScopes(gcal.CalendarScope)}
	switch {
	case cfg.ServiceAccountJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.ServiceAccountJSON)))
	case cfg.ServiceAccountFile != "":
		if _, err := os.Stat(cfg.ServiceAccountFile); err != nil {
			return nil, fmt.Errorf("service account file: %w", err)
		}
		opts = append(opts, option.WithCredentialsFile(cfg.ServiceAccountFile))
	default:
		return nil, ErrNoCredentials
	}

	service, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}

	calendarID := cfg.CalendarID
	if calendarID == "" {
		calendarID = "primary"
	}

	return &Client{
		service:    service,
		calendarID: calendarID,
		timeZone:   zoneName(cfg.TimeZone),
		logger:     logger,
	}, nil
}

func (c *Client) Location() *time.Location {
	loc, err := time.LoadLocation(c.timeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Client) Book(ctx context.Context, a Appointment) (Booking, error) {
	event := BuildEvent(a, c.timeZone)

	created, err := c.service.Events.Insert(c.calendarID, event).Context(ctx).Do()
	if err != nil {
		return Booking{}, fmt.Errorf("insert event: %w", err)
	}
	c.logger.Info("event created", "link", created.HtmlLink)

	booking := Booking{Summary: created.Summary, Link: created.HtmlLink}
	if created.Start != nil {
		booking.Start = created.Start.DateTime
	}
	return booking, nil
}

// NewAppointment applies the booking defaults: a missing name becomes
// "Unknown", a missing end is start plus DefaultDuration and a missing
// title is "Meeting with <name>". Times without an offset are read in loc.
func NewAppointment(name, start, end, title string, loc *time.Location) (Appointment, error) {
	if strings.TrimSpace(name) == "" {
		name = "Unknown"
	}
	if loc == nil {
		loc = time.UTC
	}

	if start == "" {
		return Appointment{}, errors.New("start_time is required")
	}
	startTime, err := ParseTime(start, loc)
	if err != nil {
		return Appointment{}, fmt.Errorf("start_time: %w", err)
	}

	endTime := startTime.Add(DefaultDuration)
	if end != "" {
		endTime, err = ParseTime(end, loc)
		if err != nil {
			return Appointment{}, fmt.Errorf("end_time: %w", err)
		}
		if !endTime.After(startTime) {
			return Appointment{}, fmt.Errorf("end_time %s is not after start_time %s", end, start)
		}
	}

	if title == "" {
		title = "Meeting with " + name
	}

	return Appointment{Name: name, Title: title, Start: startTime, End: endTime}, nil
}

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseTime reads an ISO 8601 date-time.
func ParseTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("not an ISO 8601 date-time: %q", s)
}

func BuildEvent(a Appointment, timeZone string) *gcal.Event {
	timeZone = zoneName(timeZone)
	return &gcal.Event{
		Summary:     a.Title,
		Description: fmt.Sprintf("Scheduled by Voice AI Agent for %s.", a.Name),
		Start: &gcal.EventDateTime{
			DateTime: a.Start.Format(time.RFC3339),
			TimeZone: timeZone,
		},
		End: &gcal.EventDateTime{
			DateTime: a.End.Format(time.RFC3339),
			TimeZone: timeZone,
		},
	}
}

func zoneName(tz string) string {
	if tz == "" {
		return "UTC"
	}
	return tz
}
