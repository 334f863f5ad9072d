package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"roomdesk/internal/models"

	"github.com/valyala/fasthttp"
)

// Client talks to a Microsoft-Graph-style calendar REST API on behalf of
// one calendar owner. Both calls may fail; callers treat failure as
// non-fatal and never roll back committed state because of it.
type Client struct {
	BaseURL       string
	Token         string
	CalendarOwner string
	CalendarID    string

	HTTP *fasthttp.Client
}

func NewClient(baseURL, token, calendarOwner, calendarID string) *Client {
	return &Client{
		BaseURL:       baseURL,
		Token:         token,
		CalendarOwner: calendarOwner,
		CalendarID:    calendarID,
		HTTP: &fasthttp.Client{
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}
}

type eventPayload struct {
	Subject          string `json:"subject"`
	StartDateTime    string `json:"startDateTime"`
	EndDateTime      string `json:"endDateTime"`
	EventDescription string `json:"eventDescription,omitempty"`
}

type eventResponse struct {
	ID        string `json:"id"`
	ICalUID   string `json:"iCalUId"`
	WebLink   string `json:"webLink"`
	ChangeKey string `json:"changeKey"`
}

func (c *Client) eventsURL() string {
	return fmt.Sprintf("%s/users/%s/calendars/%s/events",
		c.BaseURL, c.CalendarOwner, c.CalendarID)
}

// CreateEvent creates the external calendar event mirroring a published
// reservation and returns its linkage.
func (c *Client) CreateEvent(ctx context.Context, subject, description string, start, end time.Time) (*models.GraphData, error) {
	return c.send(ctx, fasthttp.MethodPost, c.eventsURL(), eventPayload{
		Subject:          subject,
		StartDateTime:    start.UTC().Format(time.RFC3339),
		EndDateTime:      end.UTC().Format(time.RFC3339),
		EventDescription: description,
	})
}

// UpdateEvent pushes changed fields to an already-mirrored event.
func (c *Client) UpdateEvent(ctx context.Context, externalID, subject, description string, start, end time.Time) (*models.GraphData, error) {
	url := fmt.Sprintf("%s/%s", c.eventsURL(), externalID)
	return c.send(ctx, fasthttp.MethodPatch, url, eventPayload{
		Subject:          subject,
		StartDateTime:    start.UTC().Format(time.RFC3339),
		EndDateTime:      end.UTC().Format(time.RFC3339),
		EventDescription: description,
	})
}

func (c *Client) send(ctx context.Context, method, url string, payload eventPayload) (*models.GraphData, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	res := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(res)

	req.SetRequestURI(url)
	req.Header.SetMethod(method)
	req.Header.SetContentType("application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.SetBody(body)

	deadline := time.Now().Add(10 * time.Second)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := c.HTTP.DoDeadline(req, res, deadline); err != nil {
		return nil, err
	}

	status := res.StatusCode()
	if status < 200 || status > 299 {
		return nil, fmt.Errorf("calendar api returned %d", status)
	}

	var parsed eventResponse
	if err := json.Unmarshal(res.Body(), &parsed); err != nil {
		return nil, err
	}

	return &models.GraphData{
		ID:        parsed.ID,
		ICalUID:   parsed.ICalUID,
		WebLink:   parsed.WebLink,
		ChangeKey: parsed.ChangeKey,
	}, nil
}
