// Package bugreport forwards user bug descriptions to the maintainer's
// mailbox over SMTP.
package bugreport

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"os"
	"strings"
	"time"
)

// Opts holds configuration options for the SMTP reporter.
type Opts struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	To       string
}

// Option defines a configuration option for the SMTP reporter.
type Option func(*Opts)

// WithHost sets the SMTP server host.
func WithHost(host string) Option {
	return func(o *Opts) { o.Host = host }
}

// WithPort sets the SMTP server port.
func WithPort(port string) Option {
	return func(o *Opts) { o.Port = port }
}

// WithCredentials sets the SMTP auth username and password.
func WithCredentials(username, password string) Option {
	return func(o *Opts) { o.Username = username; o.Password = password }
}

// WithAddresses sets the sender and recipient mailboxes.
func WithAddresses(from, to string) Option {
	return func(o *Opts) { o.From = from; o.To = to }
}

// SMTPReporter sends each bug report as one email.
type SMTPReporter struct {
	opts Opts
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPReporter creates a reporter, falling back to the SMTP_HOST,
// SMTP_PORT, SMTP_USERNAME, SMTP_PASSWORD, SMTP_FROM and BUG_REPORT_TO
// environment variables for anything not provided via options.
func NewSMTPReporter(opts ...Option) (*SMTPReporter, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Host == "" {
		cfg.Host = os.Getenv("SMTP_HOST")
	}
	if cfg.Port == "" {
		cfg.Port = os.Getenv("SMTP_PORT")
	}
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	if cfg.Username == "" {
		cfg.Username = os.Getenv("SMTP_USERNAME")
	}
	if cfg.Password == "" {
		cfg.Password = os.Getenv("SMTP_PASSWORD")
	}
	if cfg.From == "" {
		cfg.From = os.Getenv("SMTP_FROM")
	}
	if cfg.To == "" {
		cfg.To = os.Getenv("BUG_REPORT_TO")
	}

	if cfg.Host == "" || cfg.From == "" || cfg.To == "" {
		return nil, fmt.Errorf("SMTP host, from and to addresses must be provided")
	}

	return &SMTPReporter{opts: cfg, send: smtp.SendMail}, nil
}

// Report emails one bug description to the configured mailbox.
func (r *SMTPReporter) Report(ctx context.Context, userID int64, description string) error {
	var auth smtp.Auth
	if r.opts.Username != "" {
		auth = smtp.PlainAuth("", r.opts.Username, r.opts.Password, r.opts.Host)
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", r.opts.From)
	fmt.Fprintf(&msg, "To: %s\r\n", r.opts.To)
	fmt.Fprintf(&msg, "Subject: [Jovis] Bug report from user %d\r\n", userID)
	msg.WriteString("\r\n")
	fmt.Fprintf(&msg, "User: %d\nTime: %s\n\n%s\n", userID, time.Now().Format(time.RFC3339), description)

	addr := r.opts.Host + ":" + r.opts.Port
	if err := r.send(addr, auth, r.opts.From, []string{r.opts.To}, []byte(msg.String())); err != nil {
		slog.Error("bug report email failed", "error", err, "userID", userID)
		return fmt.Errorf("failed to send bug report email: %w", err)
	}
	slog.Debug("bug report email sent", "userID", userID)
	return nil
}

// NopReporter discards bug reports, used when SMTP is not configured.
type NopReporter struct{}

func (NopReporter) Report(ctx context.Context, userID int64, description string) error {
	slog.Warn("bug report discarded: no SMTP reporter configured", "userID", userID)
	return nil
}
