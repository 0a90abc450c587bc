// Package messaging provides the pluggable message delivery abstraction for
// Jovis: outbound texts and choice menus, plus the inbound response channel
// the bot consumes.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jovisbot/jovis/internal/models"
)

// Constants for service channel configuration.
const (
	// DefaultChannelBufferSize defines the default buffer size for response channels
	DefaultChannelBufferSize = 100
	// DefaultChannelTimeout defines the default timeout for non-blocking channel operations
	DefaultChannelTimeout = 1 * time.Second
)

// ErrServiceStopped is returned by send operations after Stop.
var ErrServiceStopped = errors.New("messaging service stopped")

// phoneNumberRegex strips every non-digit rune during canonicalization.
var phoneNumberRegex = regexp.MustCompile(`\D`)

// Service defines a pluggable message delivery abstraction.
// It supports sending messages and provides a channel of inbound responses.
type Service interface {
	// ValidateAndCanonicalizeRecipient validates and canonicalizes a recipient
	// identifier. Each service implements its own recipient rules.
	ValidateAndCanonicalizeRecipient(recipient string) (string, error)

	// SendMessage sends a plain text message to a recipient.
	SendMessage(ctx context.Context, to string, body string) error

	// SendChoices sends a message followed by a numbered option list. On
	// transports without native buttons the user answers with the number.
	SendChoices(ctx context.Context, to string, body string, choices []models.Choice) error

	// Start begins any background processing (e.g., polling for events).
	Start(ctx context.Context) error

	// Stop stops background processing and cleans up resources.
	Stop() error

	// Responses returns a channel of incoming user responses.
	Responses() <-chan models.Response
}

// canonicalizePhone strips formatting from a phone number and validates the
// remaining digits.
func canonicalizePhone(recipient string) (string, error) {
	if recipient == "" {
		return "", fmt.Errorf("recipient cannot be empty")
	}
	canonical := phoneNumberRegex.ReplaceAllString(recipient, "")
	if canonical == "" {
		return "", fmt.Errorf("invalid phone number: no digits found in recipient %q", recipient)
	}
	if len(canonical) < 6 {
		return "", fmt.Errorf("invalid phone number: %q is too short (minimum 6 digits required)", canonical)
	}
	return canonical, nil
}

// renderChoices appends the numbered option list to the message body. The
// bot maps a numeric reply back to the matching choice token.
func renderChoices(body string, choices []models.Choice) string {
	var b strings.Builder
	b.WriteString(body)
	for i, c := range choices {
		fmt.Fprintf(&b, "\n*%d* - %s", i+1, c.Label)
	}
	return b.String()
}
