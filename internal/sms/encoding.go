// Package sms implements SMS payload encoding rules: GSM-7 vs UCS-2
// classification, segment counting, smart character substitution and
// length-bounded truncation that never drops a trailing link.
package sms

import (
	"regexp"
	"strings"
	"unicode/utf16"
)

// Encoding identifies the character repertoire an SMS body requires
type Encoding string

const (
	EncodingGSM7 Encoding = "GSM-7"
	EncodingUCS2 Encoding = "UCS-2"
)

// Carrier character budgets. A message over the single-message budget is
// split into segments, each smaller due to concatenation headers.
const (
	GSM7SingleLimit  = 160
	GSM7SegmentLimit = 153
	UCS2SingleLimit  = 70
	UCS2SegmentLimit = 67

	// MaxRecommendedLength bounds total body length for deliverability
	MaxRecommendedLength = 320
)

// gsm7Alphabet is the GSM 03.38 default alphabet: ASCII letters, digits and
// punctuation plus a small set of accented Latin and Greek letters.
const gsm7Alphabet = "@£$¥èéùìòÇ\nØø\rÅåΔ_ΦΓΛΩΠΨΣΘΞ\x1bÆæßÉ !\"#¤%&'()*+,-./0123456789:;<=>?" +
	"¡ABCDEFGHIJKLMNOPQRSTUVWXYZÄÖÑÜ§¿abcdefghijklmnopqrstuvwxyzäöñüà"

var gsm7Set = func() map[rune]struct{} {
	set := make(map[rune]struct{}, len(gsm7Alphabet))
	for _, r := range gsm7Alphabet {
		set[r] = struct{}{}
	}
	return set
}()

var trailingURLPattern = regexp.MustCompile(`https?://\S+$`)

// IsGSM7Char reports whether r is part of the GSM 7-bit default alphabet
func IsGSM7Char(r rune) bool {
	_, ok := gsm7Set[r]
	return ok
}

// RequiresUCS2 reports whether any character in text falls outside the
// GSM-7 alphabet. A single such character forces the whole message to
// UCS-2 and more than halves the per-segment budget.
func RequiresUCS2(text string) bool {
	for _, r := range text {
		if !IsGSM7Char(r) {
			return true
		}
	}
	return false
}

// SegmentInfo describes how a message body maps onto SMS transmission units
type SegmentInfo struct {
	Segments int      `json:"segments"`
	Encoding Encoding `json:"encoding"`
}

// CalculateSegments computes the segment count and encoding for text.
// Lengths are counted in UTF-16 code units, which is what carriers bill
// against for UCS-2 payloads.
func CalculateSegments(text string) SegmentInfo {
	length := utf16Length(text)

	if RequiresUCS2(text) {
		if length <= UCS2SingleLimit {
			return SegmentInfo{Segments: 1, Encoding: EncodingUCS2}
		}
		return SegmentInfo{Segments: ceilDiv(length, UCS2SegmentLimit), Encoding: EncodingUCS2}
	}

	if length <= GSM7SingleLimit {
		return SegmentInfo{Segments: 1, Encoding: EncodingGSM7}
	}
	return SegmentInfo{Segments: ceilDiv(length, GSM7SegmentLimit), Encoding: EncodingGSM7}
}

// ApplySmartEncoding substitutes characters that commonly force UCS-2 with
// GSM-7-safe equivalents: curly quotes become straight quotes, dashes and
// bullets become hyphens, the ellipsis character becomes three periods,
// non-breaking spaces become spaces and emoji are removed. The transform is
// idempotent and trims surrounding whitespace.
func ApplySmartEncoding(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))

	for _, r := range text {
		switch {
		case r == '“' || r == '”':
			sb.WriteByte('"')
		case r == '‘' || r == '’':
			sb.WriteByte('\'')
		case r == '–' || r == '—':
			sb.WriteByte('-')
		case r == '…':
			sb.WriteString("...")
		case r == '•' || r == '‣':
			sb.WriteByte('-')
		case r == ' ':
			sb.WriteByte(' ')
		case isEmoji(r):
			// dropped entirely
		default:
			sb.WriteRune(r)
		}
	}

	return strings.TrimSpace(sb.String())
}

// TruncateMessage bounds text to maxLength UTF-16 code units. If the text
// ends with an http(s) URL the URL is preserved verbatim and the preceding
// text is shortened instead, so a delivery link is never lost. maxLength <= 0
// selects MaxRecommendedLength.
func TruncateMessage(text string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = MaxRecommendedLength
	}
	if utf16Length(text) <= maxLength {
		return text
	}

	if url := trailingURLPattern.FindString(text); url != "" {
		keep := maxLength - utf16Length(url) - 5 // room for "...\n" plus slack
		if keep < 0 {
			keep = 0
		}
		truncated := strings.TrimSpace(utf16Truncate(text, keep))
		return truncated + "...\n" + url
	}

	return strings.TrimSpace(utf16Truncate(text, maxLength-3)) + "..."
}

// isEmoji covers the common emoji and pictograph blocks
func isEmoji(r rune) bool {
	switch {
	case r >= 0x1F600 && r <= 0x1F64F: // emoticons
		return true
	case r >= 0x1F300 && r <= 0x1F5FF: // symbols and pictographs
		return true
	case r >= 0x1F680 && r <= 0x1F6FF: // transport and map
		return true
	case r >= 0x1F1E0 && r <= 0x1F1FF: // regional indicators
		return true
	case r >= 0x2600 && r <= 0x26FF: // miscellaneous symbols
		return true
	case r >= 0x2700 && r <= 0x27BF: // dingbats
		return true
	}
	return false
}

func utf16Length(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// utf16Truncate cuts s to at most n UTF-16 code units without splitting a
// surrogate pair.
func utf16Truncate(s string, n int) string {
	count := 0
	for i, r := range s {
		count += utf16.RuneLen(r)
		if count > n {
			return s[:i]
		}
	}
	return s
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
