package worker_service

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xenn00/collab-hub/internal/queue"
	"gopkg.in/gomail.v2"
)

const defaultAlertWindow = 10 * time.Minute

type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

// DeadLetterAlerter raises at most one alert per job type within Window. The
// alert is always logged and mailed when an SMTP host is configured.
type DeadLetterAlerter struct {
	Mail   MailConfig
	Window time.Duration

	mu   sync.Mutex
	last map[string]time.Time
	now  func() time.Time
	send func(m *gomail.Message) error
}

func NewDeadLetterAlerter(mail MailConfig, window time.Duration) *DeadLetterAlerter {
	if window <= 0 {
		window = defaultAlertWindow
	}
	a := &DeadLetterAlerter{
		Mail:   mail,
		Window: window,
		last:   make(map[string]time.Time),
		now:    time.Now,
	}
	a.send = a.dialAndSend
	return a
}

func (a *DeadLetterAlerter) Alert(job queue.Job) bool {
	a.mu.Lock()
	now := a.now()
	if lastAlert, ok := a.last[job.Type]; ok && now.Sub(lastAlert) < a.Window {
		a.mu.Unlock()
		return false
	}
	a.last[job.Type] = now
	a.mu.Unlock()

	log.Error().Str("job_id", job.ID).Str("type", job.Type).Str("error", job.ErrorMsg).Msg("Dead Letter Alert: Job failed permanently")

	if a.Mail.Host == "" {
		return true
	}

	m := gomail.NewMessage()
	m.SetHeader("From", a.Mail.From)
	m.SetHeader("To", a.Mail.To)
	m.SetHeader("Subject", fmt.Sprintf("Dead letter: %s job failed", job.Type))
	m.SetBody("text/plain", fmt.Sprintf("Job %s (%s) failed after %d attempts.\n\nLast error: %s", job.ID, job.Type, job.Retry, job.ErrorMsg))

	if err := a.send(m); err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Msg("failed to send dead letter alert email")
	}
	return true
}

func (a *DeadLetterAlerter) dialAndSend(m *gomail.Message) error {
	d := gomail.NewDialer(a.Mail.Host, a.Mail.Port, a.Mail.Username, a.Mail.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send alert email: %w", err)
	}
	return nil
}
