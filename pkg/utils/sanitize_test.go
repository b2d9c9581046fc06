package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactQueryParams(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		params []string
		want   string
	}{
		{
			name:   "url error",
			text:   `Get "https://api.spoonacular.com/recipes/complexSearch?apiKey=abc123&number=1&query=pasta": dial tcp: connection refused`,
			params: []string{"apiKey"},
			want:   `Get "https://api.spoonacular.com/recipes/complexSearch?apiKey=***&number=1&query=pasta": dial tcp: connection refused`,
		},
		{
			name:   "last param and case",
			text:   "https://x/y?number=1&APIKEY=secret",
			params: []string{"apiKey"},
			want:   "https://x/y?number=1&APIKEY=***",
		},
		{
			name:   "several params",
			text:   "https://x/y?token=t1&key=k1&q=1",
			params: []string{"token", "key"},
			want:   "https://x/y?token=***&key=***&q=1",
		},
		{
			name:   "no match",
			text:   "plain error",
			params: []string{"apiKey"},
			want:   "plain error",
		},
		{
			name: "no params",
			text: "https://x/y?apiKey=abc",
			want: "https://x/y?apiKey=abc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RedactQueryParams(tt.text, tt.params...))
		})
	}
}

func TestRedactValue(t *testing.T) {
	assert.Equal(t, "key=*** and *** again", RedactValue("key=s3cr3t and s3cr3t again", "s3cr3t"))
	assert.Equal(t, "unchanged", RedactValue("unchanged", ""))
}
