// Package managers handles the sending of fine notices using the Mailgun service
// and the Hermes package for email formatting.
package managers

import (
	"context"
	"fmt"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/matcornic/hermes/v2"
	log "github.com/sirupsen/logrus"

	"library-admin/internal/config"
	"library-admin/internal/schemas"
)

// MailMgr is an interface that outlines the contract for email management.
type MailMgr interface {
	SendFineNotice(notice *schemas.FineNotice) error
}

// MailManager is a concrete implementation of the MailMgr interface.
// It uses the Mailgun service for sending emails and the Hermes package for formatting emails.
type MailManager struct {
	Hermes     *hermes.Hermes
	Mailgun    *mailgun.MailgunImpl
	from       string
	production bool
}

// SendFineNotice informs a member about a fine recorded on one of their loans.
// Outside production the mail is only logged.
func (mm *MailManager) SendFineNotice(notice *schemas.FineNotice) error {
	if !mm.production {
		log.Info("Skipping fine notice in development mode")
		return nil
	}

	outro := "Please settle the amount at the library desk."
	if notice.Status == schemas.FineStatusPaid {
		outro = "The fine has already been marked as paid, no further action is needed."
	}

	mailBody := hermes.Email{
		Body: hermes.Body{
			Name: notice.MemberName,
			Intros: []string{
				fmt.Sprintf("A late fine of %.2f has been recorded for your loan of \"%s\".", notice.Amount, notice.BookTitle),
			},
			Dictionary: []hermes.Entry{
				{Key: "Book", Value: notice.BookTitle},
				{Key: "Amount", Value: fmt.Sprintf("%.2f", notice.Amount)},
				{Key: "Status", Value: string(notice.Status)},
			},
			Outros: []string{outro},
		},
	}

	emailBody, err := mm.Hermes.GenerateHTML(mailBody)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(2*time.Second))
	defer func() {
		if err := ctx.Err(); err != nil {
			log.Debug("Context error: ", err)
		}
		cancel()
		log.Debug("Context canceled")
	}()

	message := mm.Mailgun.NewMessage(mm.from, "A fine has been recorded on your library account", "", notice.Email)
	message.SetHtml(emailBody)
	_, _, err = mm.Mailgun.Send(ctx, message)
	if err != nil {
		log.Warning("Error sending fine notice: " + err.Error())
		return err
	}
	log.Debug("Fine notice sent to ", notice.Email)

	return nil
}

// NewMailManager initializes a new MailManager instance with configured Mailgun and Hermes settings.
// Mails are only sent when production is set.
func NewMailManager(cfg config.Mail, production bool) MailMgr {
	log.Info("Initializing mail manager")

	if !production {
		log.Println("Running in development mode, email will not be sent to members")
	}

	mailgunInstance := mailgun.NewMailgun(cfg.Domain, cfg.APIKey)
	mailgunInstance.SetAPIBase(mailgun.APIBaseEU)

	mm := &MailManager{
		Hermes: &hermes.Hermes{
			Theme:         new(hermes.Default),
			TextDirection: hermes.TDLeftToRight,
			Product: hermes.Product{
				Name:        "Library Administration",
				Link:        "http://localhost:8080/",
				Copyright:   "Library Administration",
				TroubleText: "If you’re having trouble with the button '{ACTION}', copy and paste the URL below into your web browser.",
			},
		},
		Mailgun:    mailgunInstance,
		from:       cfg.From,
		production: production,
	}
	log.Info("Initialized mail manager")
	return mm
}
