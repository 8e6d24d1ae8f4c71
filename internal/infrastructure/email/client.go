// Package email provides the email client for sending transactional emails.
package email

import (
	"fmt"
	"os"

	"github.com/lannapoly/pathfinder-go/internal/infrastructure/email/templates"
	"github.com/resendlabs/resend-go"
)

// Service defines the interface for sending emails, allowing for mock implementations in tests.
type Service interface {
	SendLeadNotification(props templates.LeadNotificationProps) error
}

// ResendClient is the concrete implementation of the email Service using the Resend API.
type ResendClient struct {
	client    *resend.Client
	fromEmail string
	fromName  string
	toEmail   string
}

// NewService creates a new email service client, returning the Service interface.
func NewService() (Service, error) {
	apiKey := os.Getenv("RESEND_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("RESEND_API_KEY environment variable is required")
	}

	fromEmail := os.Getenv("LEAD_EMAIL_FROM")
	if fromEmail == "" {
		fromEmail = "kiosk@lannapoly.ac.th" // Default from address
	}

	fromName := os.Getenv("LEAD_EMAIL_FROM_NAME")
	if fromName == "" {
		fromName = "PathFinder Kiosk" // Default from name
	}

	toEmail := os.Getenv("LEAD_EMAIL_TO")
	if toEmail == "" {
		toEmail = "admissions@lannapoly.ac.th" // Admissions office inbox
	}

	return &ResendClient{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
		toEmail:   toEmail,
	}, nil
}

// SendLeadNotification composes and sends the admissions lead email.
func (c *ResendClient) SendLeadNotification(props templates.LeadNotificationProps) error {
	subject := fmt.Sprintf("Kiosk lead: %s", props.Name)

	content := templates.GetLeadNotificationContent(props)

	htmlContent := templates.GetEmailLayout(templates.EmailLayoutProps{
		Preheader: "New admissions lead from the kiosk",
		Content:   content,
	})

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", c.fromName, c.fromEmail),
		To:      []string{c.toEmail},
		Subject: subject,
		Html:    htmlContent,
	}

	_, err := c.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send lead notification via Resend: %w", err)
	}

	return nil
}
