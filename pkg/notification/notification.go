// Package notification delivers vendor alerts over multiple channels.
//
// Define a Notification:
//
//	type ReservationAlert struct { Reservation models.Reservation }
//	func (n *ReservationAlert) Via() []string { return []string{"mail", "slack"} }
//	func (n *ReservationAlert) ToMail() notification.MailData {
//	    return notification.MailData{
//	        Subject: "New reservation",
//	        Body:    "<p>Table for " + strconv.Itoa(n.Reservation.Guests) + "</p>",
//	    }
//	}
//	func (n *ReservationAlert) ToSlack() notification.SlackData {
//	    return notification.SlackData{Text: "New reservation: " + n.Reservation.Name}
//	}
//
// Send:
//
//	notification.Send("owner@example.com", &ReservationAlert{Reservation: r})
package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shashiranjanraj/sofreh/pkg/logger"
	"github.com/shashiranjanraj/sofreh/pkg/mail"
)

// MailData carries the data needed to send an email notification.
type MailData struct {
	To      string // overrides the notifiable address if set
	Subject string
	Body    string // HTML
	Text    string // plain-text fallback
}

// SlackData carries a Slack message payload.
type SlackData struct {
	WebhookURL  string // override default if set
	Text        string
	Attachments []SlackAttachment
}

// SlackAttachment is a single Slack message attachment block.
type SlackAttachment struct {
	Color  string `json:"color,omitempty"` // "good" | "warning" | "danger"
	Title  string `json:"title,omitempty"`
	Text   string `json:"text,omitempty"`
	Footer string `json:"footer,omitempty"`
}

// WebhookData carries an arbitrary JSON payload to POST to a URL.
type WebhookData struct {
	URL     string
	Payload interface{}
	Headers map[string]string
}

// Notification is the interface every notification must satisfy.
type Notification interface {
	// Via returns the list of channel names: "mail", "slack", "webhook".
	Via() []string
}

// Mailable enables the mail channel for a notification.
type Mailable interface {
	ToMail() MailData
}

// Slackable enables the Slack channel.
type Slackable interface {
	ToSlack() SlackData
}

// Webhookable enables the webhook channel.
type Webhookable interface {
	ToWebhook() WebhookData
}

var defaultSlackWebhook string

// SetSlackWebhook sets the default Slack incoming webhook URL.
func SetSlackWebhook(url string) { defaultSlackWebhook = url }

// ─── Send ─────────────────────────────────────────────────────────────────────

// Send dispatches the notification through every channel Via() names.
// address is the email address used by the mail channel. Each channel
// failure is collected rather than aborting the rest.
func Send(address string, n Notification) []error {
	var errs []error
	for _, channel := range n.Via() {
		if err := dispatch(address, channel, n); err != nil {
			logger.Error("notification: channel failed",
				"channel", channel, "error", err)
			errs = append(errs, err)
		}
	}
	return errs
}

// SendAsync dispatches the notification in a background goroutine.
func SendAsync(address string, n Notification) {
	go func() {
		if errs := Send(address, n); len(errs) > 0 {
			for _, e := range errs {
				logger.Error("notification: async error", "error", e)
			}
		}
	}()
}

func dispatch(address, channel string, n Notification) error {
	switch channel {
	case "mail":
		m, ok := n.(Mailable)
		if !ok {
			return fmt.Errorf("notification: %T does not implement Mailable", n)
		}
		return sendMail(address, m.ToMail())

	case "slack":
		s, ok := n.(Slackable)
		if !ok {
			return fmt.Errorf("notification: %T does not implement Slackable", n)
		}
		return sendSlack(s.ToSlack())

	case "webhook":
		wh, ok := n.(Webhookable)
		if !ok {
			return fmt.Errorf("notification: %T does not implement Webhookable", n)
		}
		return sendWebhook(wh.ToWebhook())

	default:
		return fmt.Errorf("notification: unknown channel %q", channel)
	}
}

// ─── Channels ─────────────────────────────────────────────────────────────────

func sendMail(address string, d MailData) error {
	to := d.To
	if to == "" {
		to = address
	}
	body := d.Body
	if body == "" {
		body = d.Text
	}
	return mail.To(to).Subject(d.Subject).Body(body).Send()
}

type slackPayload struct {
	Text        string            `json:"text,omitempty"`
	Attachments []SlackAttachment `json:"attachments,omitempty"`
}

func sendSlack(d SlackData) error {
	url := d.WebhookURL
	if url == "" {
		url = defaultSlackWebhook
	}
	if url == "" {
		return fmt.Errorf("notification: slack webhook URL not configured")
	}
	return postJSON("slack", url, slackPayload{Text: d.Text, Attachments: d.Attachments}, nil, 5*time.Second)
}

func sendWebhook(d WebhookData) error {
	if d.URL == "" {
		return fmt.Errorf("notification: webhook URL is empty")
	}
	return postJSON("webhook", d.URL, d.Payload, d.Headers, 10*time.Second)
}

// postJSON is the shared delivery path for the HTTP-based channels.
func postJSON(channel, url string, payload interface{}, headers map[string]string, timeout time.Duration) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("notification: %s marshal: %w", channel, err)
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("notification: %s request: %w", channel, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("notification: %s send: %w", channel, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notification: %s returned HTTP %d", channel, resp.StatusCode)
	}
	return nil
}
