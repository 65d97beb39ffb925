// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseAuthors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"single", "Jane Doe", []string{"Jane Doe"}},
		{"trims entries", "  Jane Doe ,John Smith  ,\tAda Lovelace", []string{"Jane Doe", "John Smith", "Ada Lovelace"}},
		{"keeps order", "B, A, C", []string{"B", "A", "C"}},
		{"drops blanks", "Jane Doe,, ,John Smith", []string{"Jane Doe", "John Smith"}},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseAuthors(tt.in))
		})
	}
}

func TestAuthorDisplayName(t *testing.T) {
	assert.Equal(t, "Jane Doe", Author{FirstName: "Jane", LastName: "Doe"}.DisplayName())
	assert.Equal(t, "Doe", Author{LastName: "Doe"}.DisplayName())
	assert.Equal(t, "Jane", Author{FirstName: "Jane"}.DisplayName())
	assert.Equal(t, "", Author{}.DisplayName())
}

func TestArticleHasAuthor(t *testing.T) {
	a := Article{Authors: []Author{{FirstName: "Jane", LastName: "Doe"}, {LastName: "Smith"}}}
	assert.True(t, a.HasAuthor("Jane Doe"))
	assert.True(t, a.HasAuthor("Smith"))
	assert.False(t, a.HasAuthor("jane doe"))
	assert.False(t, a.HasAuthor("Doe"))
}

func TestAccessTokenExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tok := AccessToken{Value: "abc", ExpiresAt: now.Add(time.Minute)}
	assert.True(t, tok.Valid(now))
	assert.False(t, tok.Expired(now))

	// Expiry instant itself is already invalid.
	assert.True(t, tok.Expired(now.Add(time.Minute)))
	assert.False(t, tok.Valid(now.Add(time.Minute)))

	assert.False(t, AccessToken{}.Valid(now))
	assert.True(t, AccessToken{}.IsZero())
}
