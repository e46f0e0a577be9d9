package urlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"nas.local:8096", "http://nas.local:8096"},
		{"http://nas.local:8096/", "http://nas.local:8096"},
		{"https://media.example/", "https://media.example"},
		{"  http://x  ", "http://x"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeBaseURL(tt.input))
		})
	}
}

func TestJoinPath(t *testing.T) {
	assert.Equal(t, "http://x/Videos/1", JoinPath("http://x", "/Videos/1"))
	assert.Equal(t, "http://x/Videos/1", JoinPath("http://x/", "Videos/1"))
	assert.Equal(t, "/Videos/1", JoinPath("", "/Videos/1"))
}

func TestValidateBaseURL(t *testing.T) {
	assert.NoError(t, ValidateBaseURL("http://nas.local:8096"))
	assert.NoError(t, ValidateBaseURL("https://media.example"))
	assert.Error(t, ValidateBaseURL(""))
	assert.Error(t, ValidateBaseURL("nas.local"))
	assert.Error(t, ValidateBaseURL("ftp://x"))
	assert.Error(t, ValidateBaseURL("http://"))
}
