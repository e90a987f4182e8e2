// internal/notify/ses.go
package notify

import (
	"context"
	"fmt"
	"strings"

	"swipe-screening/internal/models"
)

// Mailer is satisfied by aws.SESClient.
type Mailer interface {
	SendText(ctx context.Context, from, to, subject, body string) (string, error)
}

// SESNotifier e-mails the candidate about the outcome of their application.
type SESNotifier struct {
	mail Mailer
	from string
}

func NewSESNotifier(mail Mailer, from string) *SESNotifier {
	return &SESNotifier{mail: mail, from: from}
}

func (n *SESNotifier) ApplicationDecided(ctx context.Context, ev models.DecisionEvent) error {
	if ev.CandidateMail == "" {
		return nil
	}
	subject, body := candidateMail(ev)
	_, err := n.mail.SendText(ctx, n.from, ev.CandidateMail, subject, body)
	return err
}

func candidateMail(ev models.DecisionEvent) (string, string) {
	name := strings.TrimSpace(ev.CandidateName)
	if name == "" {
		name = "there"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", name)
	switch ev.Status {
	case models.ApplicationStatusShortlisted:
		fmt.Fprintf(&b, "Good news: you have been shortlisted for %s. The hiring team will reach out with next steps.\n", ev.JobTitle)
		return "You have been shortlisted for " + ev.JobTitle, b.String()
	default:
		fmt.Fprintf(&b, "Thank you for applying to %s. The team has decided not to move forward with your application.\n", ev.JobTitle)
		return "Update on your application for " + ev.JobTitle, b.String()
	}
}
