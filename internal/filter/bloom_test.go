package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeFilterAddAndTest(t *testing.T) {
	f := NewCodeFilter(1000, 0.01)

	f.Add("abc123")
	assert.True(t, f.MightContain("abc123"))
	assert.False(t, f.MightContain("zzz999"))
}

func TestCodeFilterAddBatch(t *testing.T) {
	f := NewCodeFilter(1000, 0.01)

	codes := []string{"aaa111", "bbb222", "ccc333"}
	f.AddBatch(codes)

	for _, code := range codes {
		assert.True(t, f.MightContain(code))
	}
	assert.False(t, f.MightContain("ddd444"))
}
