package email

import (
	"encoding/base64"
	"fmt"

	"github.com/apex/log"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"inspection-service/config"
	"inspection-service/models"
)

// Sender delivers finished report PDFs by email. Delivery is a single
// strategy: the PDF is attached directly to the message.
type Sender struct {
	config *config.Config
	client *sendgrid.Client
}

// NewSender creates a new report sender
func NewSender(cfg *config.Config) *Sender {
	client := sendgrid.NewSendClient(cfg.SendGridAPIKey)
	return &Sender{
		config: cfg,
		client: client,
	}
}

// SendReport sends the report PDF to the recipient as an attachment.
func (s *Sender) SendReport(recipient, filename string, pdf []byte, inspection *models.InspectionRecord) error {
	from := mail.NewEmail(s.config.SendGridFromName, s.config.SendGridFromEmail)
	subject := fmt.Sprintf("Vehicle Inspection Report %s", inspection.ShortID())
	to := mail.NewEmail(recipient, recipient)

	attachment := mail.NewAttachment()
	attachment.SetContent(base64.StdEncoding.EncodeToString(pdf))
	attachment.SetType("application/pdf")
	attachment.SetFilename(filename)
	attachment.SetDisposition("attachment")

	message := mail.NewV3Mail()
	message.SetFrom(from)
	message.Subject = subject

	p := mail.NewPersonalization()
	p.AddTos(to)
	message.AddPersonalizations(p)

	message.AddContent(mail.NewContent("text/plain", s.getEmailText(inspection)))
	message.AddContent(mail.NewContent("text/html", s.getEmailHtml(inspection)))
	message.AddAttachment(attachment)

	response, err := s.client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send report to %s: %w", recipient, err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("failed to send report to %s: status %d", recipient, response.StatusCode)
	}

	log.Infof("Report for inspection %s sent to %s! Status: %d", inspection.ID, recipient, response.StatusCode)
	return nil
}

// getEmailText returns the plain text body for report emails
func (s *Sender) getEmailText(inspection *models.InspectionRecord) string {
	return fmt.Sprintf(`Hello,

The vehicle inspection report %s is attached to this email.

Insured: %s
Policy number: %s
Vehicles inspected: %d

Best regards,
%s`,
		inspection.ShortID(),
		inspection.InsuredName,
		inspection.PolicyNumber,
		len(inspection.Vehicles),
		s.config.SendGridFromName)
}

// getEmailHtml returns the HTML body for report emails
func (s *Sender) getEmailHtml(inspection *models.InspectionRecord) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>Vehicle Inspection Report</title>
</head>
<body>
    <h2>Hello,</h2>
    <p>The vehicle inspection report <strong>%s</strong> is attached to this email.</p>

    <ul>
        <li>Insured: %s</li>
        <li>Policy number: %s</li>
        <li>Vehicles inspected: %d</li>
    </ul>

    <p>Best regards,<br>%s</p>
</body>
</html>`,
		inspection.ShortID(),
		inspection.InsuredName,
		inspection.PolicyNumber,
		len(inspection.Vehicles),
		s.config.SendGridFromName)
}
