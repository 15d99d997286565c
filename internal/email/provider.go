// Package email provides email provider interface.
package email

import (
	"context"
	"fmt"
)

type Provider interface {
	SendEmail(ctx context.Context, email *Email) error
	ValidateAPIKey(ctx context.Context) error
}

type Email struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

type Config struct {
	Provider string
	APIKey   string
	From     string
}

// NewProvider builds the configured provider. An empty provider name yields
// the noop provider so deployments without an email account still work.
func NewProvider(config Config) (Provider, error) {
	switch config.Provider {
	case "resend":
		return NewResendProvider(config.APIKey, config.From), nil
	case "":
		return NoopProvider{}, nil
	default:
		return nil, fmt.Errorf("EMAIL_PROVIDER must be 'resend' or empty")
	}
}

// NoopProvider discards outgoing mail.
type NoopProvider struct{}

func (NoopProvider) SendEmail(context.Context, *Email) error { return nil }

func (NoopProvider) ValidateAPIKey(context.Context) error { return nil }
