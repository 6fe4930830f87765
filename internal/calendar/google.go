package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// googleSource lists busy intervals from a Google Calendar over the events
// API. OAuth2 client credentials come from the environment; the user token is
// read from a JSON file produced by the one-time authorization flow.
type googleSource struct {
	config     *oauth2.Config
	token      *oauth2.Token
	calendarID string

	mu      sync.Mutex
	service *gcal.Service
}

// NewGoogleProvider builds a Provider backed by Google Calendar, blocking
// dates in loc. Returns an error when the integration is not configured;
// callers should fall back to the noop provider in that case.
func NewGoogleProvider(timeout time.Duration, loc *time.Location) (*Provider, error) {
	clientID := os.Getenv("GOOGLE_CLIENT_ID")
	clientSecret := os.Getenv("GOOGLE_CLIENT_SECRET")
	tokenFile := os.Getenv("GOOGLE_TOKEN_FILE")

	if clientID == "" || clientSecret == "" || tokenFile == "" {
		return nil, fmt.Errorf("google calendar not configured")
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scopes: []string{
			gcal.CalendarReadonlyScope,
		},
		Endpoint: google.Endpoint,
	}

	raw, err := os.ReadFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("could not read google token file: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(raw, &token); err != nil {
		return nil, fmt.Errorf("invalid google token file: %w", err)
	}

	calendarID := os.Getenv("GOOGLE_CALENDAR_ID")
	if calendarID == "" {
		calendarID = "primary"
	}

	source := &googleSource{
		config:     config,
		token:      &token,
		calendarID: calendarID,
	}
	return NewProvider(source, timeout, loc), nil
}

func (g *googleSource) ListBusyIntervals(ctx context.Context, from, to time.Time) ([]BusyInterval, error) {
	srv, err := g.calendarService(ctx)
	if err != nil {
		return nil, err
	}

	events, err := srv.Events.List(g.calendarID).
		SingleEvents(true).
		OrderBy("startTime").
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		MaxResults(2500).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve events: %w", err)
	}

	var intervals []BusyInterval
	for _, item := range events.Items {
		if item.Status == "cancelled" {
			continue
		}
		if item.Transparency == "transparent" {
			// Events marked "free" do not block availability.
			continue
		}
		iv, ok := intervalFromEvent(item)
		if !ok {
			continue
		}
		intervals = append(intervals, iv)
	}
	return intervals, nil
}

func (g *googleSource) calendarService(ctx context.Context) (*gcal.Service, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.service != nil {
		return g.service, nil
	}
	client := g.config.Client(ctx, g.token)
	srv, err := gcal.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	g.service = srv
	return srv, nil
}

func intervalFromEvent(item *gcal.Event) (BusyInterval, bool) {
	var iv BusyInterval
	if item.Start == nil || item.End == nil {
		return iv, false
	}

	if item.Start.DateTime != "" {
		start, err := time.Parse(time.RFC3339, item.Start.DateTime)
		if err != nil {
			return iv, false
		}
		end, err := time.Parse(time.RFC3339, item.End.DateTime)
		if err != nil {
			return iv, false
		}
		iv.Start = start
		iv.End = end
		return iv, true
	}

	if item.Start.Date != "" {
		start, err := time.Parse("2006-01-02", item.Start.Date)
		if err != nil {
			return iv, false
		}
		end, err := time.Parse("2006-01-02", item.End.Date)
		if err != nil {
			return iv, false
		}
		iv.Start = start
		iv.End = end
		iv.AllDay = true
		return iv, true
	}

	return iv, false
}
