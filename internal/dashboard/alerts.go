package dashboard

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/sofreh/app/models"
	"github.com/shashiranjanraj/sofreh/config"
	"github.com/shashiranjanraj/sofreh/pkg/cache"
	"github.com/shashiranjanraj/sofreh/pkg/notification"
	"github.com/shashiranjanraj/sofreh/pkg/queue"
)

// reservationAlert tells the vendor about a new booking. Channels are
// picked from config: ALERT_EMAIL enables mail, SLACK_WEBHOOK_URL enables
// Slack. With neither set the alert is silently skipped.
type reservationAlert struct {
	Reservation models.Reservation
}

func (a *reservationAlert) Via() []string {
	var via []string
	if config.Get("ALERT_EMAIL", "") != "" {
		via = append(via, "mail")
	}
	if config.Get("SLACK_WEBHOOK_URL", "") != "" {
		via = append(via, "slack")
	}
	return via
}

func (a *reservationAlert) ToMail() notification.MailData {
	r := a.Reservation
	return notification.MailData{
		Subject: fmt.Sprintf("New reservation: %s, %d guests", r.Name, r.Guests),
		Body: fmt.Sprintf("<p><strong>%s</strong> booked a table for %d on %s at %s.<br>Phone: %s</p>",
			r.Name, r.Guests, r.Date, r.Time, r.Phone),
	}
}

func (a *reservationAlert) ToSlack() notification.SlackData {
	r := a.Reservation
	return notification.SlackData{
		Text: fmt.Sprintf("New reservation: %s, %d guests, %s %s", r.Name, r.Guests, r.Date, r.Time),
	}
}

// ReservationAlertJob delivers the alert off the feed path, with the
// queue's retry policy covering flaky SMTP and webhooks.
type ReservationAlertJob struct {
	Reservation models.Reservation `json:"reservation"`
}

func (j *ReservationAlertJob) Handle() error {
	alert := &reservationAlert{Reservation: j.Reservation}
	if len(alert.Via()) == 0 {
		return nil
	}
	if errs := notification.Send(config.Get("ALERT_EMAIL", ""), alert); len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// StartAlerts wires the alert pipeline: job registration, the Slack webhook,
// the queue driver (Redis when available, in-memory otherwise) and the
// workers. Call once before the feed starts ingesting.
func StartAlerts(ctx context.Context) {
	notification.SetSlackWebhook(config.Get("SLACK_WEBHOOK_URL", ""))
	queue.Register("*dashboard.ReservationAlertJob", func() queue.Job { return &ReservationAlertJob{} })

	if cache.RDB != nil {
		queue.SetDriver(queue.NewRedisDriver(cache.RDB))
	}

	queue.StartWorkers(ctx, 2)
}
