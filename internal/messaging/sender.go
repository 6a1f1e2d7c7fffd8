// Package messaging defines the outbound message gateway boundary and its
// Twilio implementation.
package messaging

import (
	"context"
	"fmt"
)

// Result describes an accepted outbound message
type Result struct {
	MessageID string
	Segments  int
}

// Sender delivers message bodies to a phone number over SMS or WhatsApp.
// Implementations report failure through the error return; a nil error
// means the gateway accepted the message.
type Sender interface {
	SendSMS(ctx context.Context, to, body string) (*Result, error)
	SendWhatsApp(ctx context.Context, to, body string) (*Result, error)
}

// Disabled stands in when gateway credentials are absent. Every send fails,
// which surfaces as a per-channel failure rather than a startup error, so
// the redirect side of the service keeps working without Twilio.
type Disabled struct{}

func (Disabled) SendSMS(context.Context, string, string) (*Result, error) {
	return nil, fmt.Errorf("messaging gateway not configured")
}

func (Disabled) SendWhatsApp(context.Context, string, string) (*Result, error) {
	return nil, fmt.Errorf("messaging gateway not configured")
}
