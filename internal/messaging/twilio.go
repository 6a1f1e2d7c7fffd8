package messaging

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/reviewrelay/review-relay/config"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

const whatsappPrefix = "whatsapp:"

// TwilioSender sends SMS and WhatsApp messages through the Twilio API
type TwilioSender struct {
	client  *twilio.RestClient
	smsFrom string
	waFrom  string
}

// NewTwilioSender creates a sender from Twilio credentials. The account SID
// and auth token are required; the per-channel from-numbers are validated at
// send time so a deployment can enable only one channel.
func NewTwilioSender(cfg *config.TwilioConfig) (*TwilioSender, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil, fmt.Errorf("twilio credentials not configured")
	}
	if !strings.HasPrefix(cfg.AccountSID, "AC") {
		return nil, fmt.Errorf("twilio account SID must start with AC")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})

	return &TwilioSender{
		client:  client,
		smsFrom: cfg.SMSNumber,
		waFrom:  cfg.WhatsAppNumber,
	}, nil
}

// SendSMS delivers body to the given number as an SMS
func (s *TwilioSender) SendSMS(_ context.Context, to, body string) (*Result, error) {
	if s.smsFrom == "" {
		return nil, fmt.Errorf("twilio SMS number not configured")
	}

	// A number copied from a WhatsApp flow may still carry the channel prefix
	to = strings.TrimPrefix(to, whatsappPrefix)

	params := &openapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.smsFrom)
	params.SetBody(body)

	msg, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return nil, fmt.Errorf("twilio SMS send failed: %w", err)
	}

	return resultFromMessage(msg), nil
}

// SendWhatsApp delivers body to the given number over the WhatsApp channel
func (s *TwilioSender) SendWhatsApp(_ context.Context, to, body string) (*Result, error) {
	if s.waFrom == "" {
		return nil, fmt.Errorf("twilio WhatsApp number not configured")
	}

	if !strings.HasPrefix(to, whatsappPrefix) {
		to = whatsappPrefix + to
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(whatsappPrefix + s.waFrom)
	params.SetBody(body)

	msg, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return nil, fmt.Errorf("twilio WhatsApp send failed: %w", err)
	}

	return resultFromMessage(msg), nil
}

func resultFromMessage(msg *openapi.ApiV2010Message) *Result {
	res := &Result{Segments: 1}
	if msg.Sid != nil {
		res.MessageID = *msg.Sid
	}
	if msg.NumSegments != nil {
		if n, err := strconv.Atoi(*msg.NumSegments); err == nil {
			res.Segments = n
		}
	}
	return res
}
