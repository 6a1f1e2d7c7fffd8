package service

import (
	"context"
	"net/url"
	"regexp"
	"strings"
)

const waBaseURL = "https://wa.me/"

var nonPhoneChars = regexp.MustCompile(`[^\d+]`)

// RedirectService turns short codes and raw text into WhatsApp deep links
type RedirectService struct {
	links          *ShortLinkService
	businessNumber string
}

// NewRedirectService creates a redirect service. businessNumber may be
// empty, in which case deep links let the user pick the chat target.
func NewRedirectService(links *ShortLinkService, businessNumber string) *RedirectService {
	return &RedirectService{
		links:          links,
		businessNumber: businessNumber,
	}
}

// ResolveDeepLink resolves a short code to a WhatsApp deep link carrying the
// stored review text. A missing or expired code returns ("", nil).
func (s *RedirectService) ResolveDeepLink(ctx context.Context, shortCode string) (string, error) {
	payload, err := s.links.Resolve(ctx, shortCode)
	if err != nil {
		return "", err
	}
	if payload == nil {
		return "", nil
	}
	return s.DeepLink(payload.ReviewText), nil
}

// DeepLink builds the WhatsApp deep link for text. When a business number is
// configured the link opens that chat directly; formatting characters other
// than digits and a leading plus are stripped from the number.
func (s *RedirectService) DeepLink(text string) string {
	if s.businessNumber != "" {
		number := nonPhoneChars.ReplaceAllString(s.businessNumber, "")
		return waBaseURL + number + "?text=" + encodeDeepLinkText(text)
	}
	return waBaseURL + "?text=" + encodeDeepLinkText(text)
}

// GenericDeepLink builds a WhatsApp deep link that lets the user pick the
// chat target, regardless of any configured business number. The wa-redirect
// endpoints use this; only short-code resolution targets the business chat.
func (s *RedirectService) GenericDeepLink(text string) string {
	return waBaseURL + "?text=" + encodeDeepLinkText(text)
}

// encodeDeepLinkText percent-encodes text for the wa.me text parameter.
// Spaces must be %20, not +, or WhatsApp renders literal plus signs.
func encodeDeepLinkText(text string) string {
	return strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}
