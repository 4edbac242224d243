package namespace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchFilename(t *testing.T) {
	tests := []struct {
		requested string
		stored    string
		want      string
	}{
		{"café.txt", "café.txt", "exact"},
		{"a b.txt", "a%20b.txt", "path-escaped"},
		{"café.txt", "caf%C3%A9.txt", "path-escaped"},
		{"a b.txt", "a+b.txt", "form-encoded"},
		{"a&b=c.txt", "a%26b%3Dc.txt", "form-encoded"},
		{"cafÃ©.txt", "café.txt", "latin1"},
		{"café.txt", "cafe.txt", ""},
	}
	for _, tt := range tests {
		t.Run(tt.requested+"/"+tt.stored, func(t *testing.T) {
			got, ok := matchFilename(tt.requested, tt.stored)
			assert.Equal(t, tt.want != "", ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchFilename_FirstMatcherWins(t *testing.T) {
	// plain ASCII names match every encoding; exact must be reported
	got, ok := matchFilename("readme", "readme")
	assert.True(t, ok)
	assert.Equal(t, "exact", got)
}

func TestEscapePath(t *testing.T) {
	assert.Equal(t, "/ws/a%20b", escapePath("/ws/a b"))
	assert.Equal(t, "/ws/caf%C3%A9", escapePath("/ws/café"))
	assert.Equal(t, "/ws/a+b&c=d", escapePath("/ws/a+b&c=d"))
	assert.Equal(t, "/ws/a%3Fb", escapePath("/ws/a?b"))
}

func TestFormEncode(t *testing.T) {
	assert.Equal(t, "a+b", formEncode("a b"))
	assert.Equal(t, "a*b%7Ec", formEncode("a*b~c"))
	assert.Equal(t, "caf%C3%A9", formEncode("café"))
	assert.Equal(t, "a%2Fb", formEncode("a/b"))
}
