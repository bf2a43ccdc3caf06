package notify

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"babsy-voucher-platform/internal/config"
	"babsy-voucher-platform/internal/domain/model"
	"babsy-voucher-platform/internal/domain/ports/adapter"
)

var _ adapter.Notifier = (*EmailNotifier)(nil)

// EmailNotifier delivers voucher lifecycle mail over SMTP.
type EmailNotifier struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailNotifier(cfg *config.SMTPConfig) *EmailNotifier {
	return &EmailNotifier{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (n *EmailNotifier) NotifyIssued(ctx context.Context, owner *model.User, v *model.Voucher, p *model.Partner) error {
	subject := fmt.Sprintf("Your voucher for %s", p.Name)
	body := fmt.Sprintf(
		"Hi %s,\n\nA new voucher is waiting for you:\n\n  %s\n  Code: %s\n\n%s",
		owner.Username, v.Title, v.Code, expiryLine(v),
	)
	return n.send(ctx, owner.Email, subject, body)
}

func (n *EmailNotifier) NotifyRedeemed(ctx context.Context, owner *model.User, v *model.Voucher, p *model.Partner) error {
	redeemedAt := time.Now()
	if v.RedeemedAt != nil {
		redeemedAt = *v.RedeemedAt
	}
	subject := fmt.Sprintf("Voucher redeemed at %s", p.Name)
	body := fmt.Sprintf(
		"Hi %s,\n\nYour voucher %q (code %s) was redeemed at %s on %s.\n",
		owner.Username, v.Title, v.Code, p.Name, redeemedAt.Format("2006-01-02 15:04"),
	)
	return n.send(ctx, owner.Email, subject, body)
}

func (n *EmailNotifier) send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

func expiryLine(v *model.Voucher) string {
	if v.ExpiresAt == nil {
		return "This voucher does not expire."
	}
	return fmt.Sprintf("Valid until %s.", v.ExpiresAt.Format("2006-01-02"))
}
