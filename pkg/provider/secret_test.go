package provider

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSecret_Reveal(t *testing.T) {
	s := NewSecret("sk-abc123")
	assert.Equal(t, "sk-abc123", s.Reveal())
}

func TestSecret_Reveal_NilReceiver(t *testing.T) {
	var s *Secret
	assert.Equal(t, "", s.Reveal())
}

func TestSecret_Empty(t *testing.T) {
	assert.True(t, NewSecret("").Empty())
	assert.False(t, NewSecret("x").Empty())

	var nilSecret *Secret
	assert.True(t, nilSecret.Empty())
}

func TestSecret_String_NeverLeaksValue(t *testing.T) {
	s := NewSecret("super-secret-key")
	assert.Equal(t, "<redacted>", s.String())
	assert.NotContains(t, s.String(), "super-secret-key")
}

func TestSecret_String_EmptyIsDistinct(t *testing.T) {
	assert.Equal(t, "<empty>", NewSecret("").String())
}

func TestSecret_GoString(t *testing.T) {
	s := NewSecret("key")
	assert.Equal(t, "provider.Secret{<redacted>}", s.GoString())
}

func TestSecret_FormattingVerbsDoNotLeak(t *testing.T) {
	s := NewSecret("sk-leak-me-not")

	out := fmt.Sprintf("%v", s)
	assert.NotContains(t, out, "sk-leak-me-not")

	out = fmt.Sprintf("%+v", s)
	assert.NotContains(t, out, "sk-leak-me-not")

	out = fmt.Sprintf("%#v", s)
	assert.NotContains(t, out, "sk-leak-me-not")
}
