package email

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/dkovalev/transactions-api/internal/config"
	"github.com/dkovalev/transactions-api/internal/models"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendImportSummary sends a summary email after a CSV import
func (s *Sender) SendImportSummary(to string, imported int, balance *models.Balance) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = "Transaction Import Completed"

	body := fmt.Sprintf(
		"Your CSV import finished at %s.\n\n"+
			"Imported transactions: %d\n"+
			"Total income: %.2f\n"+
			"Total outcome: %.2f\n"+
			"Current balance: %.2f\n",
		time.Now().Format("2006-01-02 15:04:05"),
		imported, balance.Income, balance.Outcome, balance.Total,
	)
	body += "\nBest regards,\nTransactions API"
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}
