package timeout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short"))

	long := strings.Repeat("é", MaxTruncateLength+10)
	got := Truncate(long)
	assert.Equal(t, MaxTruncateLength+3, len([]rune(got)))
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestModelTimeouts(t *testing.T) {
	assert.Greater(t, LocalModelTimeout, RemoteModelTimeout)
}
