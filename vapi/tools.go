package vapi

import (
	"context"
	"fmt"
	"time"

	"callview/calendar"
)

const ToolBookAppointment = "book_appointment"

// ToolFunc runs one tool call and returns the text spoken back to the caller.
type ToolFunc func(ctx context.Context, args map[string]any) string

type Booker interface {
	Location() *time.Location
	Book(ctx context.Context, a calendar.Appointment) (calendar.Booking, error)
}

func BookAppointment(b Booker) ToolFunc {
	return func(ctx context.Context, args map[string]any) string {
		appointment, err := calendar.NewAppointment(
			stringArg(args, "name"),
			stringArg(args, "start_time"),
			stringArg(args, "end_time"),
			stringArg(args, "title"),
			b.Location(),
		)
		if err != nil {
			return bookingFailed(err)
		}

		booking, err := b.Book(ctx, appointment)
		if err != nil {
			return bookingFailed(err)
		}

		return fmt.Sprintf(
			"Appointment booked successfully! Event: %s on %s. Calendar link: %s",
			booking.Summary,
			booking.Start,
			booking.Link,
		)
	}
}

// UnavailableTool answers every call with err, for tools whose backend
// could not be configured.
func UnavailableTool(err error) ToolFunc {
	return func(context.Context, map[string]any) string {
		return bookingFailed(err)
	}
}

func bookingFailed(err error) string {
	return fmt.Sprintf("Sorry, I couldn't book the appointment. Error: %v", err)
}

func stringArg(args map[string]any, key string) string {
	switch v := args[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
