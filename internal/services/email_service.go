package services

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// EmailService delivers invitation notifications. Delivery is best-effort:
// callers hand the message off and do not wait for the outcome.
type EmailService interface {
	SendInvitationEmail(email, organizationName, token string) error
}

// LogEmailService is a development notifier that writes the invitation link
// to the log instead of sending mail.
type LogEmailService struct {
	baseURL string
}

// NewLogEmailService creates a LogEmailService. baseURL is the public address
// the acceptance link is built against.
func NewLogEmailService(baseURL string) *LogEmailService {
	return &LogEmailService{baseURL: baseURL}
}

func (s *LogEmailService) SendInvitationEmail(email, organizationName, token string) error {
	link := fmt.Sprintf("%s/api/memberships/invitations/accept?token=%s", s.baseURL, token)
	logrus.WithFields(logrus.Fields{
		"email":        email,
		"organization": organizationName,
	}).Infof("Invitation email (mock): accept at %s", link)
	return nil
}
