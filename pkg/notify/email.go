/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package notify delivers alert e-mails through the Brevo transactional API.
package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	brevo "github.com/getbrevo/brevo-go/lib"
	"golang.org/x/time/rate"

	"github.com/carverauto/centraldanone/pkg/logger"
	"github.com/carverauto/centraldanone/pkg/models"
)

const (
	senderName         = "Central Danone"
	defaultRatePerHour = 30
	sendTimeout        = 15 * time.Second
	reportTimeLayout   = "2006-01-02 15:04:05 MST"
)

// Sender delivers one transactional e-mail.
type Sender interface {
	Send(ctx context.Context, email *brevo.SendSmtpEmail) error
}

type brevoSender struct {
	client *brevo.APIClient
}

// NewBrevoSender builds a Sender backed by the Brevo API. An empty basePath
// keeps the client's default endpoint.
func NewBrevoSender(apiKey, basePath string) Sender {
	cfg := brevo.NewConfiguration()
	cfg.AddDefaultHeader("api-key", apiKey)

	if basePath != "" {
		cfg.BasePath = basePath
	}

	return &brevoSender{client: brevo.NewAPIClient(cfg)}
}

func (s *brevoSender) Send(ctx context.Context, email *brevo.SendSmtpEmail) error {
	if _, _, err := s.client.TransactionalEmailsApi.SendTransacEmail(ctx, *email); err != nil {
		return fmt.Errorf("%w: %w", errSendFailed, err)
	}

	return nil
}

// EmailNotifier mails newly opened offline and scan_failed alerts. Other
// kinds and resolutions are ignored.
type EmailNotifier struct {
	sender  Sender
	from    string
	to      string
	limiter *rate.Limiter
	logger  logger.Logger
}

func NewEmailNotifier(cfg *models.EmailConfig, sender Sender, log logger.Logger) (*EmailNotifier, error) {
	if cfg.APIKey == "" || cfg.From == "" || cfg.To == "" {
		return nil, ErrEmailNotConfigured
	}

	perHour := cfg.RateLimitPerHour
	if perHour <= 0 {
		perHour = defaultRatePerHour
	}

	if sender == nil {
		sender = NewBrevoSender(cfg.APIKey, "")
	}

	return &EmailNotifier{
		sender:  sender,
		from:    cfg.From,
		to:      cfg.To,
		limiter: rate.NewLimiter(rate.Every(time.Hour/time.Duration(perHour)), perHour),
		logger:  log,
	}, nil
}

// Notify sends one e-mail per qualifying change. Mails over the hourly
// budget are dropped with a warning.
func (n *EmailNotifier) Notify(ctx context.Context, changes []models.AlertChange) error {
	var errs []error

	for i := range changes {
		c := &changes[i]

		if c.Resolved || !mailable(c.Alert.Kind) {
			continue
		}

		if !n.limiter.Allow() {
			n.logger.Warn().
				Str("kind", string(c.Alert.Kind)).
				Str("ip", c.DeviceIP).
				Msg("Email rate limit reached, alert not mailed")

			continue
		}

		sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
		err := n.sender.Send(sendCtx, n.compose(c))
		cancel()

		if err != nil {
			errs = append(errs, err)

			continue
		}

		n.logger.Info().
			Int64("alert_id", c.Alert.ID).
			Str("kind", string(c.Alert.Kind)).
			Msg("Alert e-mail sent")
	}

	return errors.Join(errs...)
}

func mailable(kind models.AlertKind) bool {
	return kind == models.AlertKindOffline || kind == models.AlertKindScanFailed
}

func (n *EmailNotifier) compose(c *models.AlertChange) *brevo.SendSmtpEmail {
	subject, body := render(c)

	return &brevo.SendSmtpEmail{
		Sender: &brevo.SendSmtpEmailSender{
			Name:  senderName,
			Email: n.from,
		},
		To: []brevo.SendSmtpEmailTo{
			{Email: n.to},
		},
		Subject:     subject,
		HtmlContent: "<pre>" + html.EscapeString(body) + "</pre>",
		TextContent: body,
	}
}

func render(c *models.AlertChange) (subject, body string) {
	var b strings.Builder

	ip := c.DeviceIP
	if ip == "" {
		ip = c.Alert.DeviceIP
	}

	switch c.Alert.Kind {
	case models.AlertKindOffline:
		subject = fmt.Sprintf("Central Danone alert: %s is OFFLINE", ip)

		b.WriteString("Central Danone device alert\n\n")
		fmt.Fprintf(&b, "Device: %s\n", ip)
		b.WriteString("Status: OFFLINE\n")
	default:
		subject = "Central Danone alert: network scan failed"

		b.WriteString("Central Danone scan alert\n\n")
	}

	fmt.Fprintf(&b, "Priority: %s\n", c.Alert.Priority)
	fmt.Fprintf(&b, "Time: %s\n", c.Alert.CreatedAt.UTC().Format(reportTimeLayout))
	fmt.Fprintf(&b, "\n%s\n", c.Alert.Message)

	return subject, b.String()
}
