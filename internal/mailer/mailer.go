package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"yamdb/internal/config"
)

const (
	confirmationSubject = "API YamDb confirmation code"
	sendTimeout         = 10 * time.Second
)

// Mailer delivers confirmation codes. Callers treat delivery as best effort.
type Mailer interface {
	SendConfirmationCode(ctx context.Context, to, code string) error
}

// New returns an SMTP mailer when SMTP_HOST is set, otherwise a mailer
// that only writes the message to the log. The code itself is logged in
// development only.
func New(cfg *config.Config, logger *zap.Logger) Mailer {
	logMailer := NewLogMailer(logger, cfg.IsDevelopment())
	if !cfg.MailEnabled() {
		return logMailer
	}
	m, err := NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom)
	if err != nil {
		logger.Error("SMTP client setup failed, falling back to log mailer", zap.Error(err))
		return logMailer
	}
	return m
}

// sender is the part of *mail.Client the SMTP mailer uses.
type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

type SMTPMailer struct {
	client sender
	from   string
}

func NewSMTPMailer(host string, port int, username, password, from string) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithPort(port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(sendTimeout),
	}
	if username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(username),
			mail.WithPassword(password),
		)
	}
	client, err := mail.NewClient(host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPMailer{client: client, from: from}, nil
}

// SendConfirmationCode dials the relay and sends one message. ctx bounds
// both the dial and the SMTP conversation.
func (m *SMTPMailer) SendConfirmationCode(ctx context.Context, to, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if to == "" || code == "" {
		return nil
	}
	msg, err := buildMessage(m.from, to, code)
	if err != nil {
		return err
	}
	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send confirmation code: %w", err)
	}
	return nil
}

func buildMessage(from, to, code string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("sender address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("recipient address: %w", err)
	}
	msg.Subject(confirmationSubject)
	msg.SetBodyString(mail.TypeTextPlain, "confirmation_code: "+code)
	return msg, nil
}

// LogMailer stands in for SMTP when no relay is configured. Outside
// development the code is never written to the log.
type LogMailer struct {
	logger     *zap.Logger
	revealCode bool
}

func NewLogMailer(logger *zap.Logger, revealCode bool) *LogMailer {
	return &LogMailer{logger: logger, revealCode: revealCode}
}

func (m *LogMailer) SendConfirmationCode(ctx context.Context, to, code string) error {
	if to == "" || code == "" {
		return nil
	}
	fields := []zap.Field{
		zap.String("to", to),
		zap.String("subject", confirmationSubject),
	}
	if m.revealCode {
		fields = append(fields, zap.String("confirmation_code", code))
	}
	m.logger.Info("confirmation code issued", fields...)
	return nil
}
