package storage

import (
	"context"
	"fmt"

	"github.com/raushankrgupta/style-auditor/report"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailSink mails the summary of a run through SendGrid.
type EmailSink struct {
	apiKey string
	from   string
	to     string
	target string
}

// NewEmailSink returns a sink sending to `to`. target names the audited site
// in the subject line.
func NewEmailSink(apiKey, from, to, target string) (*EmailSink, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("SENDGRID_API_KEY is not set")
	}
	if to == "" {
		return nil, fmt.Errorf("REPORT_EMAIL_TO is not set")
	}
	if from == "" {
		from = "no-reply@style-auditor.dev"
	}
	return &EmailSink{apiKey: apiKey, from: from, to: to, target: target}, nil
}

func (e *EmailSink) Name() string { return "email" }

func (e *EmailSink) Put(ctx context.Context, runID string, artifacts []Artifact) error {
	msg, err := e.message(runID, artifacts)
	if err != nil {
		return err
	}

	client := sendgrid.NewSendClient(e.apiKey)
	response, err := client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", e.to, err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("failed to send email, status code: %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

func (e *EmailSink) message(runID string, artifacts []Artifact) (*mail.SGMailV3, error) {
	summary, ok := find(artifacts, report.SummaryName)
	if !ok {
		return nil, fmt.Errorf("missing artifact %s", report.SummaryName)
	}
	var html string
	if a, ok := find(artifacts, report.HTMLName); ok {
		html = string(a.Data)
	}

	subject := fmt.Sprintf("Style audit %s", runID)
	if e.target != "" {
		subject = fmt.Sprintf("Style audit of %s (%s)", e.target, runID)
	}
	from := mail.NewEmail("Style Auditor", e.from)
	to := mail.NewEmail("", e.to)
	return mail.NewSingleEmail(from, subject, to, string(summary.Data), html), nil
}

func (e *EmailSink) Close(ctx context.Context) error { return nil }
