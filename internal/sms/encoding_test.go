package sms

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsGSM7Char(t *testing.T) {
	for _, r := range "Hello world 123 !?@#" {
		assert.True(t, IsGSM7Char(r), "expected %q to be GSM-7", r)
	}
	assert.True(t, IsGSM7Char('é'))
	assert.True(t, IsGSM7Char('Ω'))
	assert.True(t, IsGSM7Char('\n'))

	assert.False(t, IsGSM7Char('—'))
	assert.False(t, IsGSM7Char('’'))
	assert.False(t, IsGSM7Char('😀'))
	assert.False(t, IsGSM7Char('中'))
}

func TestRequiresUCS2(t *testing.T) {
	assert.False(t, RequiresUCS2("Hello world"))
	assert.False(t, RequiresUCS2(""))

	// é is GSM-7 but the em dash and curly apostrophe are not
	msg := "Café — thanks’"
	assert.True(t, RequiresUCS2(msg))
	assert.False(t, RequiresUCS2(ApplySmartEncoding(msg)))
}

func TestCalculateSegmentsGSM7(t *testing.T) {
	exactly160 := strings.Repeat("a", 160)
	info := CalculateSegments(exactly160)
	assert.Equal(t, 1, info.Segments)
	assert.Equal(t, EncodingGSM7, info.Encoding)

	info = CalculateSegments(exactly160 + "b")
	assert.Equal(t, 2, info.Segments)
	assert.Equal(t, EncodingGSM7, info.Encoding)

	// 153*3 = 459 chars still fit in 3 segments; 460 spill into 4
	info = CalculateSegments(strings.Repeat("a", 459))
	assert.Equal(t, 3, info.Segments)
	info = CalculateSegments(strings.Repeat("a", 460))
	assert.Equal(t, 4, info.Segments)
}

func TestCalculateSegmentsUCS2(t *testing.T) {
	// One emoji forces UCS-2: 69 ASCII chars + a surrogate-pair emoji is 71
	// UTF-16 code units, over the 70-unit single-message budget
	msg := strings.Repeat("a", 69) + "😀"
	info := CalculateSegments(msg)
	assert.Equal(t, EncodingUCS2, info.Encoding)
	assert.Equal(t, 2, info.Segments)

	short := "hello 😀"
	info = CalculateSegments(short)
	assert.Equal(t, EncodingUCS2, info.Encoding)
	assert.Equal(t, 1, info.Segments)
}

func TestApplySmartEncoding(t *testing.T) {
	in := "“Smart” ‘quotes’ – and — dashes… • bullet space"
	out := ApplySmartEncoding(in)

	assert.Equal(t, `"Smart" 'quotes' - and - dashes... - bullet space`, out)
	assert.False(t, RequiresUCS2(out))

	// non-breaking space becomes a plain space
	assert.Equal(t, "a b", ApplySmartEncoding("a\u00a0b"))
}

func TestApplySmartEncodingRemovesEmoji(t *testing.T) {
	out := ApplySmartEncoding("Great service 😀🚀! ☀")
	assert.Equal(t, "Great service !", out)
}

func TestApplySmartEncodingIdempotent(t *testing.T) {
	in := "  “Hi” — there… 😀  "
	once := ApplySmartEncoding(in)
	twice := ApplySmartEncoding(once)
	assert.Equal(t, once, twice)
}

func TestTruncateMessageShortUnchanged(t *testing.T) {
	msg := "short message"
	assert.Equal(t, msg, TruncateMessage(msg, 320))
}

func TestTruncateMessagePreservesTrailingURL(t *testing.T) {
	url := "https://example.com/r/abc123"
	msg := strings.Repeat("word ", 75) + "more filler text here " + url
	assert.Greater(t, len(msg), 320)

	out := TruncateMessage(msg, 320)
	assert.LessOrEqual(t, len(out), 320)
	assert.True(t, strings.HasSuffix(out, url), "URL must survive truncation: %q", out)
	assert.Contains(t, out, "...\n"+url)
}

func TestTruncateMessageNoURL(t *testing.T) {
	msg := strings.Repeat("abcde ", 100)
	out := TruncateMessage(msg, 320)

	assert.LessOrEqual(t, len(out), 320)
	assert.True(t, strings.HasSuffix(out, "..."))
}

func TestTruncateMessageDefaultLength(t *testing.T) {
	msg := strings.Repeat("x", 500)
	out := TruncateMessage(msg, 0)
	assert.LessOrEqual(t, len(out), MaxRecommendedLength)
}
