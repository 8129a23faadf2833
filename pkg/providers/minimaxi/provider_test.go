package minimaxi

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/corvidai/gollm/pkg/provider"
)

func TestCapabilities_FileManagementOnly(t *testing.T) {
	caps := New().Capabilities()
	assert.True(t, caps.Has(provider.CapabilityFileManagement))
	assert.False(t, caps.Has(provider.CapabilityChat))
}

func TestBuildHeaders_SetsBearerAndOrgProject(t *testing.T) {
	s := New()
	ctx := provider.Context{
		APIKey:       provider.NewSecret("mm-key"),
		Organization: "org-1",
		Project:      "proj-1",
	}

	h, err := s.BuildHeaders(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "Bearer mm-key", h.Get("Authorization"))
	assert.Equal(t, "org-1", h.Get("OpenAI-Organization"))
	assert.Equal(t, "proj-1", h.Get("OpenAI-Project"))
}

func TestFilesBaseURL_DefaultsWhenContextBaseURLEmpty(t *testing.T) {
	s := New()
	assert.Equal(t, DefaultBaseURL+"/files/upload", s.FilesBaseURL(provider.Context{}))
}

func TestFilesBaseURL_UsesContextBaseURL(t *testing.T) {
	s := New()
	assert.Equal(t, "https://custom.host/v1/files/upload", s.FilesBaseURL(provider.Context{BaseURL: "https://custom.host/v1"}))
}
