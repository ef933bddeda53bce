// Package mail sends account notifications over SMTP.
package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"log/slog"
	texttemplate "text/template"
	"time"

	gomail "github.com/wneessen/go-mail"

	"github.com/phrazzld/useradmin/internal/config"
	"github.com/phrazzld/useradmin/internal/events"
	"github.com/phrazzld/useradmin/internal/platform/logger"
)

// WelcomeSubject is the subject line of the registration confirmation.
const WelcomeSubject = "Your account has been created"

const sendTimeout = 30 * time.Second

//go:embed templates/*
var templateFS embed.FS

var (
	welcomeText = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/welcome.txt"))
	welcomeHTML = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/welcome.html"))
)

// Sender delivers prepared messages. *gomail.Client satisfies it.
type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*gomail.Msg) error
}

// Notifier sends a confirmation email for every registered user.
// It implements events.EventHandler.
type Notifier struct {
	sender Sender
	from   string
	logger *slog.Logger
}

var _ events.EventHandler = (*Notifier)(nil)

// NewNotifier creates a Notifier backed by an SMTP client built from cfg.
func NewNotifier(cfg config.MailConfig, logger *slog.Logger) (*Notifier, error) {
	policy, err := tlsPolicy(cfg.TLS)
	if err != nil {
		return nil, err
	}

	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTimeout(sendTimeout),
		gomail.WithTLSPolicy(policy),
		gomail.WithTLSConfig(&tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}),
	}
	if cfg.Username != "" && cfg.Password != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client for %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	return NewNotifierWithSender(client, cfg.From, logger), nil
}

// NewNotifierWithSender creates a Notifier that delivers through sender.
func NewNotifierWithSender(sender Sender, from string, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		sender: sender,
		from:   from,
		logger: logger.With("component", "mail_notifier"),
	}
}

func tlsPolicy(name string) (gomail.TLSPolicy, error) {
	switch name {
	case "mandatory":
		return gomail.TLSMandatory, nil
	case "", "opportunistic":
		return gomail.TLSOpportunistic, nil
	case "none":
		return gomail.NoTLS, nil
	default:
		return gomail.NoTLS, fmt.Errorf("unknown mail tls policy %q", name)
	}
}

// HandleEvent sends the confirmation email for UserRegistered events and
// ignores every other event type.
func (n *Notifier) HandleEvent(ctx context.Context, event *events.Event) error {
	if event == nil || event.Type != events.UserRegistered {
		return nil
	}
	log := logger.FromContextOrDefault(ctx, n.logger)

	var payload events.UserRegisteredPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", event.Type, err)
	}

	msg, err := n.WelcomeMessage(payload)
	if err != nil {
		return err
	}

	if err := n.sender.DialAndSendWithContext(ctx, msg); err != nil {
		log.Error("failed to send confirmation email",
			"error", err,
			"user_id", payload.UserID,
			"event_id", event.ID)
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}

	log.Info("confirmation email sent",
		"user_id", payload.UserID,
		"event_id", event.ID)
	return nil
}

// WelcomeMessage renders the confirmation email for a newly registered user.
func (n *Notifier) WelcomeMessage(payload events.UserRegisteredPayload) (*gomail.Msg, error) {
	var text, html bytes.Buffer
	if err := welcomeText.Execute(&text, payload); err != nil {
		return nil, fmt.Errorf("failed to render text body: %w", err)
	}
	if err := welcomeHTML.Execute(&html, payload); err != nil {
		return nil, fmt.Errorf("failed to render html body: %w", err)
	}

	msg := gomail.NewMsg()
	if err := msg.From(n.from); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(payload.Email); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(WelcomeSubject)
	msg.SetBodyString(gomail.TypeTextPlain, text.String())
	msg.AddAlternativeString(gomail.TypeTextHTML, html.String())
	return msg, nil
}
