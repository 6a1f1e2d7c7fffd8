package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/reviewrelay/review-relay/internal/messaging"
	"github.com/reviewrelay/review-relay/internal/model"
	"github.com/reviewrelay/review-relay/internal/repository"
	"github.com/reviewrelay/review-relay/internal/sms"
	"github.com/reviewrelay/review-relay/internal/utils"
)

// ErrNoChannelSelected is returned when a submission requests neither SMS
// nor WhatsApp delivery.
var ErrNoChannelSelected = errors.New("select at least one notification channel")

// smsTemplate keeps the SMS body short and GSM-7 safe; the review itself
// travels behind the short link.
const smsTemplate = "Hi %s, thanks for choosing %s. Please share your review: %s Thank you!"

const whatsAppTemplate = "Hi %s, thanks for choosing %s. We value your feedback! Please share your review:\n\n%s"

const defaultShopName = "our business"

// ReviewService persists review submissions and dispatches delivery over
// the requested channels.
type ReviewService struct {
	reviews  repository.ReviewStore
	links    *ShortLinkService
	sender   messaging.Sender
	baseURL  string
	shopName string
}

// NewReviewService creates a new review dispatch service
func NewReviewService(reviews repository.ReviewStore, links *ShortLinkService, sender messaging.Sender, baseURL, shopName string) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		links:    links,
		sender:   sender,
		baseURL:  baseURL,
		shopName: shopName,
	}
}

// SubmitReviewParams is a validated review submission
type SubmitReviewParams struct {
	ShopName      string
	ShopEmail     string
	CustomerName  string
	CustomerEmail string
	PhoneNumber   string
	ProductName   string
	Rating        int
	ReviewText    string
	SendSMS       bool
	SendWhatsApp  bool
}

// ChannelResult is the delivery outcome for one channel
type ChannelResult struct {
	Success   bool   `json:"success"`
	MessageID string `json:"message_id,omitempty"`
	Segments  int    `json:"segments,omitempty"`
	Encoding  string `json:"encoding,omitempty"`
	Error     string `json:"error,omitempty"`
}

// DispatchResults holds per-channel outcomes; only requested channels are set
type DispatchResults struct {
	SMS      *ChannelResult `json:"sms,omitempty"`
	WhatsApp *ChannelResult `json:"whatsapp,omitempty"`
}

// SubmitReviewResult is the aggregate outcome of a submission
type SubmitReviewResult struct {
	ReviewID int64
	Results  DispatchResults
	Status   string
}

// SubmitReview persists the review, dispatches the requested channels
// concurrently and returns the aggregate status: SENT when at least one
// channel succeeded, FAILED when every requested channel failed.
func (s *ReviewService) SubmitReview(ctx context.Context, params SubmitReviewParams) (*SubmitReviewResult, error) {
	if !params.SendSMS && !params.SendWhatsApp {
		return nil, ErrNoChannelSelected
	}

	id, err := utils.GenerateID()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate review ID: %w", err)
	}

	review := &model.Review{
		ID:            id,
		ShopName:      params.ShopName,
		ShopEmail:     params.ShopEmail,
		CustomerName:  params.CustomerName,
		CustomerEmail: params.CustomerEmail,
		PhoneNumber:   params.PhoneNumber,
		ProductName:   params.ProductName,
		Rating:        params.Rating,
		ReviewText:    params.ReviewText,
		SendSMS:       params.SendSMS,
		SendWhatsApp:  params.SendWhatsApp,
		Status:        model.StatusPending,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}

	// The channels have no ordering dependency; send them in parallel and
	// aggregate once both finish.
	var results DispatchResults
	var wg sync.WaitGroup
	if params.SendSMS {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results.SMS = s.sendSMS(ctx, params)
		}()
	}
	if params.SendWhatsApp {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results.WhatsApp = s.sendWhatsApp(ctx, params)
		}()
	}
	wg.Wait()

	status := aggregateStatus(params, results)
	if err := s.reviews.UpdateStatus(ctx, id, status); err != nil {
		log.Printf("failed to update review %d status to %s: %v", id, status, err)
	}

	return &SubmitReviewResult{
		ReviewID: id,
		Results:  results,
		Status:   status,
	}, nil
}

// sendSMS builds the templated SMS body around a short link and hands it to
// the gateway. Gateway errors become a per-channel failure, never a fault.
func (s *ReviewService) sendSMS(ctx context.Context, params SubmitReviewParams) *ChannelResult {
	link := s.reviewLink(ctx, params)

	body := fmt.Sprintf(smsTemplate, params.CustomerName, s.shopNameFor(params), link)
	body = sms.ApplySmartEncoding(body)
	body = sms.TruncateMessage(body, sms.MaxRecommendedLength)

	info := sms.CalculateSegments(body)
	if info.Encoding == sms.EncodingUCS2 {
		log.Printf("SMS body requires UCS-2 after smart encoding, %d segment(s)", info.Segments)
	}

	res, err := s.sender.SendSMS(ctx, params.PhoneNumber, body)
	if err != nil {
		log.Printf("SMS send failed for review by %s: %v", params.CustomerName, err)
		return &ChannelResult{Success: false, Error: "failed to send SMS", Encoding: string(info.Encoding)}
	}

	segments := res.Segments
	if segments == 0 {
		segments = info.Segments
	}
	return &ChannelResult{
		Success:   true,
		MessageID: res.MessageID,
		Segments:  segments,
		Encoding:  string(info.Encoding),
	}
}

// sendWhatsApp embeds the review text directly; WhatsApp has no segment
// budget comparable to SMS.
func (s *ReviewService) sendWhatsApp(ctx context.Context, params SubmitReviewParams) *ChannelResult {
	body := fmt.Sprintf(whatsAppTemplate, params.CustomerName, s.shopNameFor(params), params.ReviewText)

	res, err := s.sender.SendWhatsApp(ctx, params.PhoneNumber, body)
	if err != nil {
		log.Printf("WhatsApp send failed for review by %s: %v", params.CustomerName, err)
		return &ChannelResult{Success: false, Error: "failed to send WhatsApp message"}
	}

	return &ChannelResult{Success: true, MessageID: res.MessageID}
}

// reviewLink returns the short link for the review, degrading to a direct
// redirect URL with the text query-encoded when persistence fails. SMS
// delivery never hard-fails because the link store is down.
func (s *ReviewService) reviewLink(ctx context.Context, params SubmitReviewParams) string {
	code, err := s.links.Create(ctx, CreateLinkParams{
		ReviewText:   params.ReviewText,
		CustomerName: params.CustomerName,
		ShopName:     optional(params.ShopName),
		ProductName:  optional(params.ProductName),
	})
	if err != nil {
		log.Printf("short link creation failed, using direct redirect: %v", err)
		return s.baseURL + "/api/wa-redirect?text=" + encodeDeepLinkText(params.ReviewText)
	}
	return s.baseURL + "/r/" + code
}

func (s *ReviewService) shopNameFor(params SubmitReviewParams) string {
	if params.ShopName != "" {
		return params.ShopName
	}
	if s.shopName != "" {
		return s.shopName
	}
	return defaultShopName
}

func aggregateStatus(params SubmitReviewParams, results DispatchResults) string {
	smsOK := results.SMS != nil && results.SMS.Success
	waOK := results.WhatsApp != nil && results.WhatsApp.Success

	if smsOK || waOK {
		return model.StatusSent
	}

	smsSettled := !params.SendSMS || results.SMS != nil
	waSettled := !params.SendWhatsApp || results.WhatsApp != nil
	if smsSettled && waSettled {
		return model.StatusFailed
	}
	return model.StatusPending
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
