package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/meisaku/ms-go-user/config"

	"github.com/sirupsen/logrus"
)

// ResendMailer renders a named template and delivers the result through the
// Resend HTTP API. It makes exactly one delivery attempt per Send call;
// retry policy belongs to the caller.
type ResendMailer struct {
	client    *http.Client
	apiURL    string
	apiKey    string
	from      string
	templates *TemplateRegistry
}

func NewResendMailer(client *http.Client, cfg config.ResendConfig, templates *TemplateRegistry) *ResendMailer {
	if client == nil {
		client = http.DefaultClient
	}
	return &ResendMailer{
		client:    client,
		apiURL:    cfg.APIURL,
		apiKey:    cfg.APIKey,
		from:      cfg.FromEmail,
		templates: templates,
	}
}

type sendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type sendEmailResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// Send renders templateName with data and posts the email. A render failure,
// transport failure or non-2xx API response all surface as errors.
func (m *ResendMailer) Send(ctx context.Context, to []string, subject, templateName string, data any) error {
	html, err := m.templates.Render(templateName, data)
	if err != nil {
		return err
	}

	payload := sendEmailRequest{
		From:    m.from,
		To:      to,
		Subject: subject,
		HTML:    html,
	}

	var body bytes.Buffer
	if err := json.NewEncoder(&body).Encode(payload); err != nil {
		return fmt.Errorf("failed to encode email request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiURL, &body)
	if err != nil {
		return fmt.Errorf("failed to create email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach email api: %w", err)
	}
	defer resp.Body.Close()

	var apiResp sendEmailResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil && resp.StatusCode < 300 {
		return fmt.Errorf("failed to decode email api response: %w", err)
	}

	if resp.StatusCode >= 300 {
		return fmt.Errorf("email api returned status %d: %s", resp.StatusCode, apiResp.Message)
	}

	logrus.WithFields(logrus.Fields{
		"message_id": apiResp.ID,
		"template":   templateName,
	}).Debug("Email dispatched")

	return nil
}
